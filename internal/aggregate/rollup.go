package aggregate

import (
	"sort"

	"github.com/RovayL/ct-publicness/internal/model"
)

// RollupFunctions folds per-path analysis summaries into one
// FunctionAnalysisSummary per function (SPEC_FULL.md's supplemented
// function_analysis_summary record; the Python original's analyze.py never
// emits this, only per-path summaries).
func RollupFunctions(summaries []model.PathAnalysisSummary) []model.FunctionAnalysisSummary {
	byFn := map[string][]model.PathAnalysisSummary{}
	for _, s := range summaries {
		byFn[s.Fn] = append(byFn[s.Fn], s)
	}
	fns := make([]string, 0, len(byFn))
	for fn := range byFn {
		fns = append(fns, fn)
	}
	sort.Strings(fns)

	out := make([]model.FunctionAnalysisSummary, 0, len(fns))
	for _, fn := range fns {
		out = append(out, model.RollupFunction(fn, byFn[fn]))
	}
	return out
}
