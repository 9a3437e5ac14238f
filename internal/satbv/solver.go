// Package satbv implements a small, fully self-contained decision
// procedure: a DPLL boolean core plus a Tseitin bit-blaster giving
// bit-vector arithmetic, comparisons, and sort-folded Real/String equality
// (see DESIGN.md's entry on internal/satbv for why this is hand-rolled
// rather than bound to an external SMT/SAT library).
package satbv

import "fmt"

// Var is a boolean variable, numbered from 1.
type Var int32

// Lit is a literal: a positive value asserts its variable true, a negative
// value asserts it false. Zero is never a valid literal.
type Lit int32

// Pos returns the positive literal for v.
func (v Var) Pos() Lit { return Lit(v) }

// Neg returns the negative literal for v.
func (v Var) Neg() Lit { return Lit(-v) }

// Not negates a literal.
func Not(l Lit) Lit { return -l }

// VarOf returns the underlying variable of a literal.
func (l Lit) VarOf() Var {
	if l < 0 {
		return Var(-l)
	}
	return Var(l)
}

// Sign reports whether l is a negative literal.
func (l Lit) Sign() bool { return l < 0 }

// Result is the outcome of a satisfiability query.
type Result int

const (
	Unknown Result = iota
	Sat
	Unsat
)

func (r Result) String() string {
	switch r {
	case Sat:
		return "sat"
	case Unsat:
		return "unsat"
	default:
		return "unknown"
	}
}

// Solver is a small DPLL SAT core. Clauses added while one or more scopes
// are pushed (see Push/Pop) are automatically guarded so they vacate once
// popped, without ever being physically removed from the clause database —
// this is the standard "activation literal" idiom for incremental SAT and
// is what backs the engine's push/assert/check/pop publicness query
// (spec.md §4.3).
type Solver struct {
	nVars       int32
	clauses     [][]Lit
	trueVar     Var
	scopeGuards []Var
	auxCount    int
}

// New creates a Solver with a permanently-true variable wired in, used to
// synthesize constant-true/false literals.
func New() *Solver {
	s := &Solver{}
	s.trueVar = s.newVar()
	s.clauses = append(s.clauses, []Lit{s.trueVar.Pos()})
	return s
}

func (s *Solver) newVar() Var {
	s.nVars++
	return Var(s.nVars)
}

// NewBoolVar allocates a fresh, otherwise-unconstrained boolean variable.
func (s *Solver) NewBoolVar() Var { return s.newVar() }

// TrueLit returns a literal that is always true.
func (s *Solver) TrueLit() Lit { return s.trueVar.Pos() }

// FalseLit returns a literal that is always false.
func (s *Solver) FalseLit() Lit { return s.trueVar.Neg() }

func (s *Solver) newAux() Lit {
	s.auxCount++
	return s.newVar().Pos()
}

// addClause stores a clause, guarding it against the innermost active scope
// if any scope is currently pushed.
func (s *Solver) addClause(lits ...Lit) {
	if len(s.scopeGuards) > 0 {
		guard := s.scopeGuards[len(s.scopeGuards)-1]
		cl := make([]Lit, 0, len(lits)+1)
		cl = append(cl, lits...)
		cl = append(cl, guard.Neg())
		s.clauses = append(s.clauses, cl)
		return
	}
	cl := append([]Lit(nil), lits...)
	s.clauses = append(s.clauses, cl)
}

// Assert adds a permanent unit clause. Used for base assertions (path
// conditions, transmitter equalities) that must hold for the remainder of
// the analysis, not just for one push/pop query.
func (s *Solver) Assert(l Lit) { s.addClause(l) }

// Push opens a new scope: clauses added until the matching Pop are
// automatically retracted (made vacuously satisfiable) once popped.
func (s *Solver) Push() {
	s.scopeGuards = append(s.scopeGuards, s.newVar())
}

// Pop closes the innermost scope opened by Push.
func (s *Solver) Pop() {
	if len(s.scopeGuards) == 0 {
		panic("satbv: Pop without matching Push")
	}
	s.scopeGuards = s.scopeGuards[:len(s.scopeGuards)-1]
}

// Check runs the solver with every currently-open scope's guard assumed true.
func (s *Solver) Check() Result {
	return s.CheckAssuming(nil)
}

// CheckAssuming runs the solver with every open scope's guard assumed true,
// plus any caller-supplied assumption literals.
func (s *Solver) CheckAssuming(extra []Lit) Result {
	assumps := make([]Lit, 0, len(s.scopeGuards)+len(extra))
	for _, g := range s.scopeGuards {
		assumps = append(assumps, g.Pos())
	}
	assumps = append(assumps, extra...)
	return dpll(int(s.nVars), s.clauses, assumps)
}

// ClauseCount reports the number of clauses in the permanent + scoped
// database. The engine's query-cache key is built from Sexpr, not from
// this count.
func (s *Solver) ClauseCount() int { return len(s.clauses) }

// Sexpr returns a deterministic textual serialization of every clause
// currently in the database, in insertion order. It stands in for the
// "serialized assertion set" spec.md §4.3 asks the query cache to hash;
// unlike a true solver snapshot this is just the clause log, which is
// sufficient because clause insertion order here is itself deterministic
// per path (§8 path-replay-determinism).
func (s *Solver) Sexpr() string {
	buf := make([]byte, 0, 32*len(s.clauses))
	for _, c := range s.clauses {
		buf = append(buf, '(')
		for i, l := range c {
			if i > 0 {
				buf = append(buf, ' ')
			}
			buf = append(buf, []byte(fmt.Sprintf("%d", l))...)
		}
		buf = append(buf, ')')
	}
	return string(buf)
}
