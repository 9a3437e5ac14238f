// Package aggregate folds per-path publicness verdicts into per-program-
// point verdicts under a configurable missing-data policy (spec.md §4.5).
package aggregate

import (
	"sort"

	"github.com/RovayL/ct-publicness/internal/model"
)

// MissingPolicy governs how a program point's aggregate is decided when
// some covering path has no verdict, or coverage is marked truncated, and
// no verdict along the way is outright false (spec.md §4.5 step 4).
type MissingPolicy string

const (
	MissingUnknown MissingPolicy = "unknown"
	MissingPublic  MissingPolicy = "public"
	MissingSecret  MissingPolicy = "secret"
)

type ppKey struct {
	fn, pp string
}

type coverage struct {
	pathIDs   []int
	truncated bool
}

// buildPPPaths returns, for each (fn, pp), the path_ids that traverse it and
// whether enumeration there was truncated — preferring coverage records
// (authoritative when present) and otherwise deriving the mapping from each
// path's pp_seq, deduplicated within a path (spec.md §4.5 step 1).
func buildPPPaths(paths []model.CfgPath, ppCoverage []model.PpCoverage) map[ppKey]coverage {
	out := map[ppKey]coverage{}
	if len(ppCoverage) > 0 {
		for _, c := range ppCoverage {
			out[ppKey{c.Fn, c.PP}] = coverage{pathIDs: append([]int(nil), c.PathIDs...), truncated: c.Truncated}
		}
		return out
	}

	for _, p := range paths {
		if !p.HasPathID || len(p.PPSeq) == 0 {
			continue
		}
		seen := map[string]bool{}
		for _, pp := range p.PPSeq {
			if seen[pp] {
				continue
			}
			seen[pp] = true
			k := ppKey{p.Fn, pp}
			c := out[k]
			c.pathIDs = append(c.pathIDs, p.PathID)
			out[k] = c
		}
	}
	return out
}

type resultKey struct {
	fn, pp, value string
}

// AggregatePublicAtPoint implements spec.md §4.5's algorithm: for every
// (fn, pp, value) observed in pathResults whose (fn, pp) is covered by at
// least one path (per coverage records or pp_seq), fold the verdicts from
// every path covering pp into one PublicAtPoint. Results at a (fn, pp) with
// no covering path produce no record.
func AggregatePublicAtPoint(paths []model.CfgPath, ppCoverage []model.PpCoverage, pathResults []model.PathPublicness, policy MissingPolicy) []model.PublicAtPoint {
	ppPaths := buildPPPaths(paths, ppCoverage)

	byKey := map[resultKey]map[int]*bool{}
	valuesAt := map[ppKey]map[string]bool{}
	for _, r := range pathResults {
		rk := resultKey{r.Fn, r.PP, r.Value}
		if byKey[rk] == nil {
			byKey[rk] = map[int]*bool{}
		}
		byKey[rk][r.PathID] = r.Public

		pk := ppKey{r.Fn, r.PP}
		if valuesAt[pk] == nil {
			valuesAt[pk] = map[string]bool{}
		}
		valuesAt[pk][r.Value] = true
	}

	var out []model.PublicAtPoint
	// Sort (fn, pp) pairs for deterministic output, matching the
	// path-replay-determinism property (spec.md §8).
	keys := make([]ppKey, 0, len(ppPaths))
	for k := range ppPaths {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].fn != keys[j].fn {
			return keys[i].fn < keys[j].fn
		}
		return keys[i].pp < keys[j].pp
	})

	for _, pk := range keys {
		cov := ppPaths[pk]
		values := valuesAt[pk]
		if len(values) == 0 {
			continue
		}
		sortedValues := make([]string, 0, len(values))
		for v := range values {
			sortedValues = append(sortedValues, v)
		}
		sort.Strings(sortedValues)

		for _, value := range sortedValues {
			rk := resultKey{pk.fn, pk.pp, value}
			perPath := byKey[rk]

			missing := 0
			anyFalse := false
			anyUnknown := false
			for _, pid := range cov.pathIDs {
				v, ok := perPath[pid]
				if !ok {
					missing++
					anyUnknown = true
					continue
				}
				switch {
				case v == nil:
					anyUnknown = true
				case !*v:
					anyFalse = true
				}
			}

			var public *bool
			switch {
			case anyFalse:
				f := false
				public = &f
			case anyUnknown || cov.truncated:
				public = resolveMissingPolicy(policy)
			default:
				tr := true
				public = &tr
			}

			out = append(out, model.PublicAtPoint{
				Fn:           pk.fn,
				PP:           pk.pp,
				Value:        value,
				Public:       public,
				TotalPaths:   len(cov.pathIDs),
				MissingPaths: missing,
				Truncated:    cov.truncated,
			})
		}
	}
	return out
}

func resolveMissingPolicy(policy MissingPolicy) *bool {
	switch policy {
	case MissingPublic:
		v := true
		return &v
	case MissingSecret:
		v := false
		return &v
	default:
		return nil
	}
}
