// Package engine implements the dual-execution symbolic engine: the core
// of this analyzer (spec.md §4.3). For one CFG path it evaluates the same
// instruction stream twice into two symbolic stores sharing one solver,
// asserts transmitter equalities and the path condition against both, and
// then issues a minimal satisfiability query per defined value.
package engine

import (
	"fmt"
	"time"

	"github.com/pkg/errors"

	"github.com/RovayL/ct-publicness/internal/constraints"
	"github.com/RovayL/ct-publicness/internal/model"
	"github.com/RovayL/ct-publicness/internal/satbv"
)

// PathInput is everything AnalyzePath needs for one path.
type PathInput struct {
	Fn           string
	PathID       int
	HasPathID    bool
	Insts        []model.Instruction
	PathCondText []string
	PathCondJSON []*model.CondExpr
}

// Result is one path's analysis output.
type Result struct {
	Verdicts []model.PathPublicness
	Summary  model.PathAnalysisSummary
}

// AnalyzePath runs the dual-execution engine over one path. cache may be
// nil to disable memoization; per spec.md §8's cache-equivalence property,
// the emitted verdicts are identical either way.
func AnalyzePath(in PathInput, cache *QueryCache) (Result, error) {
	s := satbv.New()
	stA := NewState(s, "A_")
	stB := NewState(s, "B_")

	summary := model.PathAnalysisSummary{Fn: in.Fn, PathID: in.PathID}

	var prevBB, curBB string
	for _, inst := range in.Insts {
		if inst.BB != curBB {
			prevBB = curBB
			curBB = inst.BB
		}
		if err := Eval(s, stA, inst, prevBB); err != nil {
			return Result{}, errors.Wrapf(err, "engine: evaluating %s in state A", inst.PP)
		}
		if err := Eval(s, stB, inst, prevBB); err != nil {
			return Result{}, errors.Wrapf(err, "engine: evaluating %s in state B", inst.PP)
		}
		summary.InstCount++
		if inst.HasDef() {
			summary.DefCount++
		}

		if inst.Tx != nil {
			if err := assertTransmitter(s, stA, stB, inst); err != nil {
				return Result{}, errors.Wrapf(err, "engine: transmitter equality at %s", inst.PP)
			}
		}
	}

	encA := constraints.New(s, stA)
	encB := constraints.New(s, stB)
	if err := encA.AssertPath(in.PathCondText, in.PathCondJSON); err != nil {
		return Result{}, errors.Wrap(err, "engine: asserting path condition against state A")
	}
	if err := encB.AssertPath(in.PathCondText, in.PathCondJSON); err != nil {
		return Result{}, errors.Wrap(err, "engine: asserting path condition against state B")
	}

	baseSexpr := s.Sexpr()
	verdicts := make([]model.PathPublicness, 0, summary.DefCount)

	for _, inst := range in.Insts {
		if !inst.HasDef() {
			continue
		}
		va, okA := stA.Lookup(inst.DefID)
		vb, okB := stB.Lookup(inst.DefID)
		pv := model.PathPublicness{Fn: in.Fn, PathID: in.PathID, PP: inst.PP, Value: inst.DefID}

		if !okA || !okB {
			summary.UnknownCount++
			verdicts = append(verdicts, pv)
			continue
		}

		summary.QueryCount++
		width := va.Width()
		if vb.Width() > width {
			width = vb.Width()
		}
		a := s.CoerceWidth(va, width)
		b := s.CoerceWidth(vb, width)

		key := Key(baseSexpr, fmt.Sprintf("%v!=%v", a.Bits, b.Bits))
		if entry, hit := cache.get(key); hit {
			summary.CacheHits++
			pv.Public = entry.Public
			verdicts = append(verdicts, pv)
			tallyOutcome(&summary, entry.Public)
			continue
		}
		summary.CacheMisses++

		started := time.Now()
		s.Push()
		s.AssertBVNe(a, b)
		result := s.Check()
		s.Pop()
		summary.SolverTimeMs += float64(time.Since(started).Microseconds()) / 1000.0

		pv.Public = polarityOf(result)
		cache.put(key, cacheEntry{Public: pv.Public})
		tallyOutcome(&summary, pv.Public)
		verdicts = append(verdicts, pv)
	}

	return Result{Verdicts: verdicts, Summary: summary}, nil
}

// polarityOf maps a solver outcome to the recorded publicness field,
// preserving the spec's documented (and explicitly not-to-be-inverted)
// polarity: public=true exactly when A(def)!=B(def) is SAT (spec.md §9's
// first Open Question).
func polarityOf(r satbv.Result) *bool {
	switch r {
	case satbv.Sat:
		v := true
		return &v
	case satbv.Unsat:
		v := false
		return &v
	default:
		return nil
	}
}

func tallyOutcome(summary *model.PathAnalysisSummary, public *bool) {
	switch {
	case public == nil:
		summary.UnknownCount++
	case *public:
		summary.SatCount++
	default:
		summary.UnsatCount++
	}
}

// assertTransmitter encodes spec.md §4.3's transmitter-equality rule: at an
// instruction tagged {kind, which}, the operand uses[which] must agree
// across A and B.
func assertTransmitter(s *satbv.Solver, stA, stB *SymState, inst model.Instruction) error {
	if inst.Tx.Which < 0 || inst.Tx.Which >= len(inst.Uses) {
		return errors.Errorf("transmitter index %d out of range for %d operands", inst.Tx.Which, len(inst.Uses))
	}
	tok := inst.Uses[inst.Tx.Which]
	w := useWidth(inst.UseTys, inst.Tx.Which)
	va := constraints.ResolveValue(s, stA, tok, w)
	vb := constraints.ResolveValue(s, stB, tok, w)
	width := va.Width()
	if vb.Width() > width {
		width = vb.Width()
	}
	s.AssertBVEq(s.CoerceWidth(va, width), s.CoerceWidth(vb, width))
	return nil
}
