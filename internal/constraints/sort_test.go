package constraints_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/RovayL/ct-publicness/internal/constraints"
)

func TestInferTokenIntConst(t *testing.T) {
	tk, ok := constraints.InferToken("const:i32:7")
	assert.True(t, ok)
	assert.Equal(t, constraints.KindBV, tk.Kind)
	assert.Equal(t, 32, tk.Width)
	assert.Equal(t, uint64(7), tk.Value)
}

func TestInferTokenFpConst(t *testing.T) {
	tk, ok := constraints.InferToken("const:fp:1.5")
	assert.True(t, ok)
	assert.Equal(t, constraints.KindReal, tk.Kind)
	assert.Equal(t, constraints.RealWidth, tk.Width)
}

func TestInferTokenNullUndefPoison(t *testing.T) {
	for _, tok := range []string{"const:null", "const:undef", "const:poison"} {
		tk, ok := constraints.InferToken(tok)
		assert.True(t, ok)
		assert.Equal(t, constraints.KindBV, tk.Kind)
		assert.Equal(t, constraints.PointerWidth, tk.Width)
		assert.Equal(t, uint64(0), tk.Value)
	}
}

func TestInferTokenLabel(t *testing.T) {
	tk, ok := constraints.InferToken("label:entry")
	assert.True(t, ok)
	assert.Equal(t, constraints.KindBV, tk.Kind)
	assert.Equal(t, constraints.PointerWidth, tk.Width)
}

func TestInferTokenOpaqueConst(t *testing.T) {
	tk, ok := constraints.InferToken("const:hello")
	assert.True(t, ok)
	assert.Equal(t, constraints.KindString, tk.Kind)
}

func TestInferTokenVariable(t *testing.T) {
	_, ok := constraints.InferToken("v1")
	assert.False(t, ok)
}

func TestResolvePairVariableAdoptsConstantWidth(t *testing.T) {
	vk, ck := constraints.ResolvePair("v1", "const:i8:3")
	assert.Equal(t, 8, vk.Width)
	assert.Equal(t, 8, ck.Width)
}

func TestResolvePairTwoVariablesDefaultPointerWidth(t *testing.T) {
	ak, bk := constraints.ResolvePair("v1", "v2")
	assert.Equal(t, constraints.PointerWidth, ak.Width)
	assert.Equal(t, constraints.PointerWidth, bk.Width)
}

func TestHashDerivedTokensAreStable(t *testing.T) {
	a, _ := constraints.InferToken("label:bb3")
	b, _ := constraints.InferToken("label:bb3")
	assert.Equal(t, a.Value, b.Value)

	c, _ := constraints.InferToken("label:bb4")
	assert.NotEqual(t, a.Value, c.Value)
}
