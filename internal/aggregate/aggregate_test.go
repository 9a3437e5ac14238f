package aggregate_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/RovayL/ct-publicness/internal/aggregate"
	"github.com/RovayL/ct-publicness/internal/model"
)

func boolPtr(b bool) *bool { return &b }

func findPoint(t *testing.T, pts []model.PublicAtPoint, pp, value string) model.PublicAtPoint {
	t.Helper()
	for _, p := range pts {
		if p.PP == pp && p.Value == value {
			return p
		}
	}
	t.Fatalf("no public_at_point for pp=%s value=%s", pp, value)
	return model.PublicAtPoint{}
}

// Scenario 5: branch-specific divergence — two paths through pp1 define v;
// P1 has v non-public, P2 has v unconstrained (public). The aggregate is
// true only when every covering path is true, so here, with P1 false, the
// aggregate must be false; this also exercises aggregation soundness
// (spec.md §8: any false verdict wins regardless of missing_policy).
func TestAggregationSoundnessAnyFalseWins(t *testing.T) {
	cov := []model.PpCoverage{{Fn: "f", PP: "pp1", PathIDs: []int{1, 2}}}
	results := []model.PathPublicness{
		{Fn: "f", PathID: 1, PP: "pp1", Value: "v", Public: boolPtr(false)},
		{Fn: "f", PathID: 2, PP: "pp1", Value: "v", Public: boolPtr(true)},
	}
	for _, policy := range []aggregate.MissingPolicy{aggregate.MissingUnknown, aggregate.MissingPublic, aggregate.MissingSecret} {
		out := aggregate.AggregatePublicAtPoint(nil, cov, results, policy)
		pt := findPoint(t, out, "pp1", "v")
		if assert.NotNil(t, pt.Public) {
			assert.False(t, *pt.Public)
		}
	}
}

// When every covering path reports true, the aggregate is true.
func TestAggregateAllTrue(t *testing.T) {
	cov := []model.PpCoverage{{Fn: "f", PP: "pp1", PathIDs: []int{1, 2}}}
	results := []model.PathPublicness{
		{Fn: "f", PathID: 1, PP: "pp1", Value: "v", Public: boolPtr(true)},
		{Fn: "f", PathID: 2, PP: "pp1", Value: "v", Public: boolPtr(true)},
	}
	out := aggregate.AggregatePublicAtPoint(nil, cov, results, aggregate.MissingUnknown)
	pt := findPoint(t, out, "pp1", "v")
	if assert.NotNil(t, pt.Public) {
		assert.True(t, *pt.Public)
	}
}

// Scenario 6: coverage truncation — pp covered by {1,2}, truncated=true,
// only path 1 reports false: with missing_policy=unknown, any_false wins.
func TestCoverageTruncationAnyFalseStillWins(t *testing.T) {
	cov := []model.PpCoverage{{Fn: "f", PP: "pp", PathIDs: []int{1, 2}, Truncated: true}}
	results := []model.PathPublicness{
		{Fn: "f", PathID: 1, PP: "pp", Value: "v", Public: boolPtr(false)},
	}
	out := aggregate.AggregatePublicAtPoint(nil, cov, results, aggregate.MissingUnknown)
	pt := findPoint(t, out, "pp", "v")
	if assert.NotNil(t, pt.Public) {
		assert.False(t, *pt.Public)
	}
	assert.True(t, pt.Truncated)
	assert.Equal(t, 1, pt.MissingPaths)
}

// Scenario 6 (continued): only path 1 reports true, path 2 missing, and
// coverage is truncated: with missing_policy=unknown the aggregate is nil.
func TestCoverageTruncationUnknownPolicy(t *testing.T) {
	cov := []model.PpCoverage{{Fn: "f", PP: "pp", PathIDs: []int{1, 2}, Truncated: true}}
	results := []model.PathPublicness{
		{Fn: "f", PathID: 1, PP: "pp", Value: "v", Public: boolPtr(true)},
	}
	out := aggregate.AggregatePublicAtPoint(nil, cov, results, aggregate.MissingUnknown)
	pt := findPoint(t, out, "pp", "v")
	assert.Nil(t, pt.Public)
}

// Missing-policy identity: when no path is missing, coverage is not
// truncated, and no verdict is unknown, missing_policy has no effect.
func TestMissingPolicyIdentityWhenFullyCovered(t *testing.T) {
	cov := []model.PpCoverage{{Fn: "f", PP: "pp", PathIDs: []int{1}}}
	results := []model.PathPublicness{
		{Fn: "f", PathID: 1, PP: "pp", Value: "v", Public: boolPtr(true)},
	}
	for _, policy := range []aggregate.MissingPolicy{aggregate.MissingUnknown, aggregate.MissingPublic, aggregate.MissingSecret} {
		out := aggregate.AggregatePublicAtPoint(nil, cov, results, policy)
		pt := findPoint(t, out, "pp", "v")
		if assert.NotNil(t, pt.Public) {
			assert.True(t, *pt.Public)
		}
	}
}

func TestAggregateFallsBackToPPSeqWithoutCoverage(t *testing.T) {
	paths := []model.CfgPath{
		{Fn: "f", PathID: 1, HasPathID: true, PPSeq: []string{"p0", "p1", "p0"}},
	}
	results := []model.PathPublicness{
		{Fn: "f", PathID: 1, PP: "p0", Value: "v", Public: boolPtr(false)},
	}
	out := aggregate.AggregatePublicAtPoint(paths, nil, results, aggregate.MissingUnknown)
	pt := findPoint(t, out, "p0", "v")
	assert.Equal(t, 1, pt.TotalPaths)
}

func TestRollupFunctions(t *testing.T) {
	summaries := []model.PathAnalysisSummary{
		{Fn: "f", PathID: 1, InstCount: 3, DefCount: 2, QueryCount: 2, SatCount: 1, UnsatCount: 1},
		{Fn: "f", PathID: 2, InstCount: 5, DefCount: 3, QueryCount: 3, SatCount: 2, UnsatCount: 1},
	}
	out := aggregate.RollupFunctions(summaries)
	assert.Equal(t, 1, len(out))
	assert.Equal(t, "f", out[0].Fn)
	assert.Equal(t, 2, out[0].PathsAnalyzed)
	assert.Equal(t, 8, out[0].InstCount)
	assert.Equal(t, 5, out[0].QueryCount)
}
