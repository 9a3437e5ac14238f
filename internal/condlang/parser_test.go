package condlang_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/RovayL/ct-publicness/internal/condlang"
)

func TestParseAtomEq(t *testing.T) {
	a, err := condlang.ParseAtom("c==const:i1:1")
	assert.NoError(t, err)
	assert.Equal(t, "c", a.Lhs)
	assert.Equal(t, "const:i1:1", a.Rhs)
	assert.True(t, a.IsEq())
}

func TestParseAtomNe(t *testing.T) {
	a, err := condlang.ParseAtom("v!=const:i32:0")
	assert.NoError(t, err)
	assert.False(t, a.IsEq())
}

func TestParseTextualCompound(t *testing.T) {
	atoms, err := condlang.ParseTextual([]string{"a==b && c!=const:i32:0"})
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	assert.Equal(t, 2, len(atoms))
	assert.Equal(t, "a", atoms[0].Lhs)
	assert.Equal(t, "b", atoms[0].Rhs)
	assert.Equal(t, "c", atoms[1].Lhs)
	assert.False(t, atoms[1].IsEq())
}

func TestParseTextualMultipleLines(t *testing.T) {
	atoms, err := condlang.ParseTextual([]string{"a==b", "c==d"})
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	assert.Equal(t, 2, len(atoms))
}

func TestToCondExprs(t *testing.T) {
	atoms, err := condlang.ParseTextual([]string{"a==b && c!=d"})
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	exprs := condlang.ToCondExprs(atoms)
	assert.Equal(t, 2, len(exprs))
	assert.Equal(t, "==", exprs[0].Op)
	assert.Equal(t, "!=", exprs[1].Op)
}

func TestParseAtomRejectsMalformed(t *testing.T) {
	_, err := condlang.ParseAtom("not a valid atom at all")
	assert.Error(t, err)
}
