package engine

import "github.com/RovayL/ct-publicness/internal/satbv"

// SymState is one of the two symbolic stores (A or B) the dual-execution
// engine evaluates the same instruction stream into. The tag ("A_" or
// "B_") is recorded at construction time but is not part of any solver
// variable: every fresh symbol is a newly allocated solver variable, and
// each state keeps its own env map, so A and B never alias the same solver
// variable for an unconstrained value.
type SymState struct {
	solver *satbv.Solver
	tag    string
	env    map[string]satbv.BV
	mem    map[string]satbv.BV
}

// NewState builds an empty symbolic state sharing the given solver.
func NewState(s *satbv.Solver, tag string) *SymState {
	return &SymState{
		solver: s,
		tag:    tag,
		env:    map[string]satbv.BV{},
		mem:    map[string]satbv.BV{},
	}
}

// Resolve implements constraints.SymbolSource: it returns the bit-vector
// bound to token, minting a fresh one of the requested width on first
// reference. Because each SymState owns a disjoint env map, state A and
// state B never share a fresh symbol for the same source identifier even
// though they run identical logic over identical tokens.
func (s *SymState) Resolve(token string, width int) satbv.BV {
	if v, ok := s.env[token]; ok {
		return s.solver.CoerceWidth(v, width)
	}
	v := s.solver.NewVar(width)
	s.env[token] = v
	return v
}

// Bind records the value a defining instruction produced.
func (s *SymState) Bind(defID string, v satbv.BV) {
	s.env[defID] = v
}

// Lookup returns the bit-vector bound to a defined value, if any.
func (s *SymState) Lookup(defID string) (satbv.BV, bool) {
	v, ok := s.env[defID]
	return v, ok
}

// Load reads the flat memory model (spec.md §9: "a flat map from pointer
// identifier to last value written... deliberately approximate").
func (s *SymState) Load(ptr string) (satbv.BV, bool) {
	v, ok := s.mem[ptr]
	return v, ok
}

// Store writes the flat memory model.
func (s *SymState) Store(ptr string, v satbv.BV) {
	s.mem[ptr] = v
}
