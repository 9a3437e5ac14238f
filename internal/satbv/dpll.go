package satbv

// assignment values: 0 unassigned, 1 true, 2 false.
const (
	unassigned int8 = 0
	assignedT  int8 = 1
	assignedF  int8 = 2
)

// dpll is a small recursive DPLL search: unit propagation, then
// chronological case-split on the first unassigned variable (no
// pure-literal elimination is performed). It is intentionally not watched-literal/CDCL — the formulas
// this package bit-blasts stay small enough (one CFG path's worth of
// 8/16/32/64-bit arithmetic) that a straightforward decision procedure is
// the right amount of engineering for this repo's scope.
func dpll(nVars int, clauses [][]Lit, assumptions []Lit) Result {
	assign := make([]int8, nVars+1)
	for _, a := range assumptions {
		v := a.VarOf()
		want := assignedT
		if a.Sign() {
			want = assignedF
		}
		if assign[v] != unassigned && assign[v] != want {
			return Unsat
		}
		assign[v] = want
	}
	if search(clauses, assign) {
		return Sat
	}
	return Unsat
}

// occurrences builds, for each variable, the indices of clauses it appears in.
func occurrences(nVars int, clauses [][]Lit) [][]int {
	occ := make([][]int, nVars+1)
	for ci, c := range clauses {
		seen := map[int]bool{}
		for _, l := range c {
			v := int(l.VarOf())
			if seen[v] {
				continue
			}
			seen[v] = true
			occ[v] = append(occ[v], ci)
		}
	}
	return occ
}

// clauseStatus reports whether a clause is satisfied, conflicting (all
// literals assigned false), unit (exactly one unassigned literal, the
// rest false), or none-of-the-above, given the current assignment.
func clauseStatus(c []Lit, assign []int8) (satisfied, conflict bool, unit Lit) {
	unassignedCount := 0
	for _, l := range c {
		v := l.VarOf()
		a := assign[v]
		if a == unassigned {
			unassignedCount++
			unit = l
			continue
		}
		isTrue := (a == assignedT && !l.Sign()) || (a == assignedF && l.Sign())
		if isTrue {
			return true, false, 0
		}
	}
	if unassignedCount == 0 {
		return false, true, 0
	}
	if unassignedCount == 1 {
		return false, false, unit
	}
	return false, false, 0
}

// propagate runs unit propagation to a fixed point, using an occurrence
// list to avoid rescanning every clause on every pass. Returns false on
// conflict.
func propagate(clauses [][]Lit, occ [][]int, assign []int8, queue []Var) bool {
	for len(queue) > 0 {
		v := queue[len(queue)-1]
		queue = queue[:len(queue)-1]
		for _, ci := range occ[v] {
			c := clauses[ci]
			satisfied, conflict, unit := clauseStatus(c, assign)
			if satisfied {
				continue
			}
			if conflict {
				return false
			}
			if unit != 0 {
				uv := unit.VarOf()
				want := assignedT
				if unit.Sign() {
					want = assignedF
				}
				if assign[uv] == unassigned {
					assign[uv] = want
					queue = append(queue, uv)
				} else if assign[uv] != want {
					return false
				}
			}
		}
	}
	return true
}

// fullPropagate scans every clause once to find the initial unit/conflict
// set, then delegates to propagate for the occurrence-list-driven fixpoint.
func fullPropagate(clauses [][]Lit, occ [][]int, assign []int8) bool {
	var queue []Var
	for _, c := range clauses {
		satisfied, conflict, unit := clauseStatus(c, assign)
		if satisfied {
			continue
		}
		if conflict {
			return false
		}
		if unit != 0 {
			uv := unit.VarOf()
			want := assignedT
			if unit.Sign() {
				want = assignedF
			}
			if assign[uv] == unassigned {
				assign[uv] = want
				queue = append(queue, uv)
			} else if assign[uv] != want {
				return false
			}
		}
	}
	return propagate(clauses, occ, assign, queue)
}

func search(clauses [][]Lit, assign []int8) bool {
	occ := occurrences(len(assign)-1, clauses)
	return searchRec(clauses, occ, assign)
}

func searchRec(clauses [][]Lit, occ [][]int, assign []int8) bool {
	work := append([]int8(nil), assign...)
	if !fullPropagate(clauses, occ, work) {
		return false
	}

	pick := Var(0)
	for v := 1; v < len(work); v++ {
		if work[v] == unassigned {
			pick = Var(v)
			break
		}
	}
	if pick == 0 {
		copy(assign, work)
		return true
	}

	tryTrue := append([]int8(nil), work...)
	tryTrue[pick] = assignedT
	if searchRec(clauses, occ, tryTrue) {
		copy(assign, tryTrue)
		return true
	}

	tryFalse := append([]int8(nil), work...)
	tryFalse[pick] = assignedF
	if searchRec(clauses, occ, tryFalse) {
		copy(assign, tryFalse)
		return true
	}
	return false
}
