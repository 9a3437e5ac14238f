package condlang

// Cond is a parsed textual path condition: a conjunction of atoms.
type Cond struct {
	Atoms []*Atom `@@ ("&&" @@)*`
}

// Atom is a single equality or disequality comparison between two tokens.
type Atom struct {
	Lhs string `@Token`
	Op  string `( @Eq | @Ne )`
	Rhs string `@Token`
}

// IsEq reports whether this atom is an `==` comparison (as opposed to `!=`).
func (a *Atom) IsEq() bool { return a.Op == "==" }
