package export

import (
	"encoding/csv"
	"os"
	"sort"
	"strconv"

	"github.com/pkg/errors"

	"github.com/RovayL/ct-publicness/internal/model"
)

var metricsFieldnames = []string{
	"fn",
	"inst_count",
	"bb_count",
	"tx_count",
	"trace_emitted",
	"trace_truncated",
	"trace_max_inst",
	"paths_emitted",
	"truncated",
	"max_paths",
	"max_depth",
	"max_loop_iters",
	"cutoff_depth",
	"cutoff_loop",
	"const_pruned_br",
	"const_pruned_switch",
	"const_pruned_indirect",
	"dfs_calls",
	"dfs_leaves",
	"dfs_prune_max_paths",
	"dfs_prune_max_depth",
	"dfs_prune_loop",
	"batch_id",
}

type metricsRow struct {
	fn                                                     string
	instCount, bbCount, txCount, traceMaxInst, traceEmitted *int
	traceTruncated                                         *bool
	pathsEmitted                                           *int
	truncated, cutoffDepth, cutoffLoop                     *bool
	maxPaths, maxDepth, maxLoopIters                       *int
	constPrunedBr, constPrunedSwitch, constPrunedIndirect  *int
	dfsCalls, dfsLeaves, dfsPruneMaxPaths, dfsPruneMaxDepth, dfsPruneLoop *int
}

// WriteMetricsCSV emits one row per function merging FuncSummary (trace
// counts) and PathSummary (path-enumeration/pruning counts), grounded on
// the Python original's metrics.py merge-by-fn behavior: a function present
// in only one source still gets a row, with the other source's columns
// left blank. batchID is stamped into every row's batch_id column; it never
// participates in the merge or in any computed column.
func WriteMetricsCSV(path string, funcSummaries []model.FuncSummary, pathSummaries []model.PathSummary, batchID string) error {
	byFn := map[string]*metricsRow{}
	get := func(fn string) *metricsRow {
		if r, ok := byFn[fn]; ok {
			return r
		}
		r := &metricsRow{fn: fn}
		byFn[fn] = r
		return r
	}

	for _, s := range funcSummaries {
		r := get(s.Fn)
		ic, bc, tc, tmi, te := s.InstCount, s.BBCount, s.TxCount, s.TraceMaxInst, s.TraceEmitted
		tt := s.TraceTruncated
		r.instCount, r.bbCount, r.txCount, r.traceMaxInst, r.traceEmitted = &ic, &bc, &tc, &tmi, &te
		r.traceTruncated = &tt
	}

	for _, s := range pathSummaries {
		r := get(s.Fn)
		pe := s.PathsEmitted
		r.pathsEmitted = &pe
		r.truncated = s.Truncated
		r.maxPaths = s.MaxPaths
		r.maxDepth = s.MaxDepth
		r.maxLoopIters = s.MaxLoopIters
		r.cutoffDepth = s.CutoffDepth
		r.cutoffLoop = s.CutoffLoop
		r.constPrunedBr = s.ConstPrunedBr
		r.constPrunedSwitch = s.ConstPrunedSwitch
		r.constPrunedIndirect = s.ConstPrunedIndirect
		r.dfsCalls = s.DfsCalls
		r.dfsLeaves = s.DfsLeaves
		r.dfsPruneMaxPaths = s.DfsPruneMaxPaths
		r.dfsPruneMaxDepth = s.DfsPruneMaxDepth
		r.dfsPruneLoop = s.DfsPruneLoop
	}

	fns := make([]string, 0, len(byFn))
	for fn := range byFn {
		fns = append(fns, fn)
	}
	sort.Strings(fns)

	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "creating %s", path)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(metricsFieldnames); err != nil {
		return errors.Wrap(err, "export: writing CSV header")
	}
	for _, fn := range fns {
		r := byFn[fn]
		row := []string{
			r.fn,
			fmtInt(r.instCount), fmtInt(r.bbCount), fmtInt(r.txCount),
			fmtInt(r.traceEmitted), fmtBool(r.traceTruncated), fmtInt(r.traceMaxInst),
			fmtInt(r.pathsEmitted), fmtBool(r.truncated),
			fmtInt(r.maxPaths), fmtInt(r.maxDepth), fmtInt(r.maxLoopIters),
			fmtBool(r.cutoffDepth), fmtBool(r.cutoffLoop),
			fmtInt(r.constPrunedBr), fmtInt(r.constPrunedSwitch), fmtInt(r.constPrunedIndirect),
			fmtInt(r.dfsCalls), fmtInt(r.dfsLeaves),
			fmtInt(r.dfsPruneMaxPaths), fmtInt(r.dfsPruneMaxDepth), fmtInt(r.dfsPruneLoop),
			batchID,
		}
		if err := w.Write(row); err != nil {
			return errors.Wrapf(err, "export: writing row for %s", fn)
		}
	}
	w.Flush()
	return errors.Wrap(w.Error(), "export: flushing CSV")
}

func fmtInt(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}

func fmtBool(v *bool) string {
	if v == nil {
		return ""
	}
	if *v {
		return "true"
	}
	return "false"
}
