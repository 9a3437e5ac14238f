package condlang

import (
	"github.com/alecthomas/participle/v2"
	"github.com/pkg/errors"

	"github.com/RovayL/ct-publicness/internal/model"
)

var parser = participle.MustBuild[Cond](
	participle.Lexer(condLexer),
	participle.Elide("Whitespace"),
)

// ParseAtom parses a single `lhs==rhs` / `lhs!=rhs` token.
func ParseAtom(s string) (*Atom, error) {
	c, err := parser.ParseString("", s)
	if err != nil {
		return nil, errors.Wrapf(err, "condlang: parse atom %q", s)
	}
	if len(c.Atoms) != 1 {
		return nil, errors.Errorf("condlang: expected a single atom, got %d in %q", len(c.Atoms), s)
	}
	return c.Atoms[0], nil
}

// ParseTextual parses a path's textual path_cond entries (spec.md §4.1/§4.2:
// each string may itself be a ` && `-compound conjunction) into a flat list
// of atoms.
func ParseTextual(lines []string) ([]*Atom, error) {
	var out []*Atom
	for _, line := range lines {
		c, err := parser.ParseString("", line)
		if err != nil {
			return nil, errors.Wrapf(err, "condlang: parse path_cond line %q", line)
		}
		out = append(out, c.Atoms...)
	}
	return out, nil
}

// ToCondExprs converts parsed atoms into the structured model.CondExpr form,
// so that the constraint encoder (internal/constraints) can operate over a
// single tree shape regardless of whether path_cond or path_cond_json was
// the source.
func ToCondExprs(atoms []*Atom) []*model.CondExpr {
	out := make([]*model.CondExpr, 0, len(atoms))
	for _, a := range atoms {
		op := "=="
		if !a.IsEq() {
			op = "!="
		}
		out = append(out, &model.CondExpr{Op: op, Lhs: a.Lhs, Rhs: a.Rhs})
	}
	return out
}
