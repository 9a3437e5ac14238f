package satbv

// andGate returns a fresh literal Tseitin-equivalent to (a && b).
func (s *Solver) andGate(a, b Lit) Lit {
	o := s.newAux()
	s.addClause(Not(o), a)
	s.addClause(Not(o), b)
	s.addClause(o, Not(a), Not(b))
	return o
}

// orGate returns a fresh literal Tseitin-equivalent to (a || b).
func (s *Solver) orGate(a, b Lit) Lit {
	o := s.newAux()
	s.addClause(o, Not(a))
	s.addClause(o, Not(b))
	s.addClause(Not(o), a, b)
	return o
}

// xorGate returns a fresh literal Tseitin-equivalent to (a != b).
func (s *Solver) xorGate(a, b Lit) Lit {
	o := s.newAux()
	s.addClause(Not(o), a, b)
	s.addClause(Not(o), Not(a), Not(b))
	s.addClause(o, Not(a), b)
	s.addClause(o, a, Not(b))
	return o
}

// iteGate returns a fresh literal Tseitin-equivalent to (c ? t : f).
func (s *Solver) iteGate(c, t, f Lit) Lit {
	o := s.newAux()
	s.addClause(Not(o), Not(c), t)
	s.addClause(Not(o), c, f)
	s.addClause(o, Not(c), Not(t))
	s.addClause(o, c, Not(f))
	return o
}

// andMany returns a fresh literal equivalent to the conjunction of lits.
// An empty input is vacuously true.
func (s *Solver) andMany(lits []Lit) Lit {
	if len(lits) == 0 {
		return s.TrueLit()
	}
	o := s.newAux()
	for _, l := range lits {
		s.addClause(Not(o), l)
	}
	cl := make([]Lit, 0, len(lits)+1)
	for _, l := range lits {
		cl = append(cl, Not(l))
	}
	cl = append(cl, o)
	s.addClause(cl...)
	return o
}

// orMany returns a fresh literal equivalent to the disjunction of lits.
// An empty input is vacuously false.
func (s *Solver) orMany(lits []Lit) Lit {
	if len(lits) == 0 {
		return s.FalseLit()
	}
	o := s.newAux()
	for _, l := range lits {
		s.addClause(o, Not(l))
	}
	cl := make([]Lit, 0, len(lits)+1)
	cl = append(cl, lits...)
	cl = append(cl, Not(o))
	s.addClause(cl...)
	return o
}

// fullAdder returns the sum and carry-out literals for a+b+cin.
func (s *Solver) fullAdder(a, b, cin Lit) (sum, cout Lit) {
	axb := s.xorGate(a, b)
	sum = s.xorGate(axb, cin)
	cout = s.orGate(s.andGate(a, b), s.andGate(cin, axb))
	return
}
