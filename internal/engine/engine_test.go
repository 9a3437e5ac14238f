package engine_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/RovayL/ct-publicness/internal/engine"
	"github.com/RovayL/ct-publicness/internal/model"
)

func verdictFor(t *testing.T, r engine.Result, value string) *bool {
	t.Helper()
	for _, v := range r.Verdicts {
		if v.Value == value {
			return v.Public
		}
	}
	t.Fatalf("no verdict for value %q", value)
	return nil
}

// Scenario 1: constant copy — both runs compute the same constant, UNSAT
// on A!=B, so public=false.
func TestConstantCopy(t *testing.T) {
	in := engine.PathInput{
		Fn: "f", PathID: 1,
		Insts: []model.Instruction{
			{Fn: "f", BB: "entry", PP: "p0", Op: "add", DefID: "d",
				Uses: []string{"const:i32:1", "const:i32:2"}, DefTy: "i32"},
		},
	}
	r, err := engine.AnalyzePath(in, nil)
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	pub := verdictFor(t, r, "d")
	if assert.NotNil(t, pub) {
		assert.False(t, *pub)
	}
}

// Scenario 2: free secret — a load with no transmitter and no path
// condition introduces independent fresh symbols in A and B, so
// A(s)!=B(s) is SAT, public=true.
func TestFreeSecret(t *testing.T) {
	in := engine.PathInput{
		Fn: "f", PathID: 1,
		Insts: []model.Instruction{
			{Fn: "f", BB: "entry", PP: "p0", Op: "load", DefID: "s",
				Uses: []string{"ptrX"}, DefTy: "i32"},
		},
	}
	r, err := engine.AnalyzePath(in, nil)
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	pub := verdictFor(t, r, "s")
	if assert.NotNil(t, pub) {
		assert.True(t, *pub)
	}
}

// Scenario 3: transmitter-fixed secret — the same load, but the secret
// then reaches a transmitter, forcing A(s)=B(s) and making s non-public.
func TestTransmitterFixedSecret(t *testing.T) {
	in := engine.PathInput{
		Fn: "f", PathID: 1,
		Insts: []model.Instruction{
			{Fn: "f", BB: "entry", PP: "p0", Op: "load", DefID: "s",
				Uses: []string{"ptrX"}, DefTy: "i32"},
			{Fn: "f", BB: "entry", PP: "p1", Op: "call", DefID: "sink",
				Uses: []string{"s"}, Tx: &model.TxInfo{Kind: "leak", Which: 0}},
		},
	}
	r, err := engine.AnalyzePath(in, nil)
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	pub := verdictFor(t, r, "s")
	if assert.NotNil(t, pub) {
		assert.False(t, *pub)
	}
}

// Scenario 4: path-condition tie — the condition c==const:i1:1 pins s=0 in
// both runs, so both s and c are non-public.
func TestPathConditionTie(t *testing.T) {
	in := engine.PathInput{
		Fn: "f", PathID: 1,
		Insts: []model.Instruction{
			{Fn: "f", BB: "entry", PP: "p0", Op: "load", DefID: "s",
				Uses: []string{"ptrX"}, DefTy: "i32"},
			{Fn: "f", BB: "entry", PP: "p1", Op: "icmp", DefID: "c",
				Uses: []string{"s", "const:i32:0"}, ICmpPred: "eq",
				UseTys: []string{"i32", "i32"}},
		},
		PathCondText: []string{"c==const:i1:1"},
	}
	r, err := engine.AnalyzePath(in, nil)
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	sPub := verdictFor(t, r, "s")
	cPub := verdictFor(t, r, "c")
	if assert.NotNil(t, sPub) {
		assert.False(t, *sPub)
	}
	if assert.NotNil(t, cPub) {
		assert.False(t, *cPub)
	}
}

func TestCacheEquivalence(t *testing.T) {
	in := engine.PathInput{
		Fn: "f", PathID: 1,
		Insts: []model.Instruction{
			{Fn: "f", BB: "entry", PP: "p0", Op: "load", DefID: "s",
				Uses: []string{"ptrX"}, DefTy: "i32"},
			{Fn: "f", BB: "entry", PP: "p1", Op: "call", DefID: "sink",
				Uses: []string{"s"}, Tx: &model.TxInfo{Kind: "leak", Which: 0}},
		},
	}
	withoutCache, err := engine.AnalyzePath(in, nil)
	if err != nil {
		t.Fatalf("analyze without cache: %v", err)
	}
	withCache, err := engine.AnalyzePath(in, engine.NewQueryCache())
	if err != nil {
		t.Fatalf("analyze with cache: %v", err)
	}
	assert.Equal(t, len(withoutCache.Verdicts), len(withCache.Verdicts))
	for i := range withoutCache.Verdicts {
		assert.Equal(t, withoutCache.Verdicts[i].Public, withCache.Verdicts[i].Public)
	}
}

func TestPhiPicksIncomingForPreviousBlock(t *testing.T) {
	in := engine.PathInput{
		Fn: "f", PathID: 1,
		Insts: []model.Instruction{
			{Fn: "f", BB: "b0", PP: "p0", Op: "add", DefID: "v0",
				Uses: []string{"const:i32:1", "const:i32:1"}, DefTy: "i32"},
			{Fn: "f", BB: "b1", PP: "p1", Op: "add", DefID: "v1",
				Uses: []string{"const:i32:9", "const:i32:9"}, DefTy: "i32"},
			{Fn: "f", BB: "b2", PP: "p2", Op: "phi", DefID: "phi",
				Uses: []string{"v0", "b0", "v1", "b1"}, DefTy: "i32"},
		},
	}
	r, err := engine.AnalyzePath(in, nil)
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	pub := verdictFor(t, r, "phi")
	// v1's value (9+9 = 18) is picked since b1 is the previous block; it is a
	// constant in both A and B, so the phi result is non-public.
	if assert.NotNil(t, pub) {
		assert.False(t, *pub)
	}
}
