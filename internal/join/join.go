// Package join groups trace instructions by function and materializes, for
// each enumerated CFG path, the ordered instruction list the symbolic
// engine will run (spec.md §4.1).
package join

import (
	"github.com/RovayL/ct-publicness/internal/ingest"
	"github.com/RovayL/ct-publicness/internal/model"
)

// PathBundle pairs a CFG path with the trace instructions that make it up,
// in execution order.
type PathBundle struct {
	Path  model.CfgPath
	Insts []model.Instruction
}

// FunctionPipeline is everything the symbolic engine needs for one function.
type FunctionPipeline struct {
	Fn            string
	Insts         []model.Instruction
	InstsByBB     map[string][]model.Instruction
	InstByPP      map[string]model.Instruction
	Blocks        []model.CfgBlock
	Edges         []model.CfgEdge
	Paths         []PathBundle
	Summaries     []model.PathSummary
	PpCoverage    []model.PpCoverage
	TraceIndex    []model.TraceIndex
}

// materializePath builds the ordered instruction list for one path: it
// prefers an explicit pp_seq (skipping program points absent from the
// trace), and otherwise concatenates each bb's in-trace instruction order
// (spec.md §4.1). This function is purely functional — it makes no
// decisions about which instructions are "correct", only which order to
// present them in.
func materializePath(p model.CfgPath, instByPP map[string]model.Instruction, instsByBB map[string][]model.Instruction) []model.Instruction {
	if len(p.PPSeq) > 0 {
		out := make([]model.Instruction, 0, len(p.PPSeq))
		for _, pp := range p.PPSeq {
			if inst, ok := instByPP[pp]; ok {
				out = append(out, inst)
			}
		}
		return out
	}
	var out []model.Instruction
	for _, bb := range p.BBs {
		out = append(out, instsByBB[bb]...)
	}
	return out
}

// Build joins trace instructions, a CFG, and an optional trace index into
// per-function pipelines.
func Build(insts []model.Instruction, cfg ingest.CFG, traceIndex []model.TraceIndex) map[string]*FunctionPipeline {
	byFn := map[string][]model.Instruction{}
	for _, inst := range insts {
		byFn[inst.Fn] = append(byFn[inst.Fn], inst)
	}
	blocksByFn := map[string][]model.CfgBlock{}
	for _, b := range cfg.Blocks {
		blocksByFn[b.Fn] = append(blocksByFn[b.Fn], b)
	}
	edgesByFn := map[string][]model.CfgEdge{}
	for _, e := range cfg.Edges {
		edgesByFn[e.Fn] = append(edgesByFn[e.Fn], e)
	}
	pathsByFn := map[string][]model.CfgPath{}
	for _, p := range cfg.Paths {
		pathsByFn[p.Fn] = append(pathsByFn[p.Fn], p)
	}
	summariesByFn := map[string][]model.PathSummary{}
	for _, s := range cfg.Summaries {
		summariesByFn[s.Fn] = append(summariesByFn[s.Fn], s)
	}
	ppCovByFn := map[string][]model.PpCoverage{}
	for _, c := range cfg.PpCoverage {
		ppCovByFn[c.Fn] = append(ppCovByFn[c.Fn], c)
	}
	traceIdxByFn := map[string][]model.TraceIndex{}
	for _, t := range traceIndex {
		traceIdxByFn[t.Fn] = append(traceIdxByFn[t.Fn], t)
	}

	fnset := map[string]struct{}{}
	for fn := range byFn {
		fnset[fn] = struct{}{}
	}
	for fn := range blocksByFn {
		fnset[fn] = struct{}{}
	}
	for fn := range pathsByFn {
		fnset[fn] = struct{}{}
	}

	out := make(map[string]*FunctionPipeline, len(fnset))
	for fn := range fnset {
		fnInsts := byFn[fn]
		instsByBB := map[string][]model.Instruction{}
		instByPP := map[string]model.Instruction{}
		for _, inst := range fnInsts {
			instsByBB[inst.BB] = append(instsByBB[inst.BB], inst)
			instByPP[inst.PP] = inst
		}

		var bundles []PathBundle
		for _, p := range pathsByFn[fn] {
			bundles = append(bundles, PathBundle{
				Path:  p,
				Insts: materializePath(p, instByPP, instsByBB),
			})
		}

		out[fn] = &FunctionPipeline{
			Fn:         fn,
			Insts:      fnInsts,
			InstsByBB:  instsByBB,
			InstByPP:   instByPP,
			Blocks:     blocksByFn[fn],
			Edges:      edgesByFn[fn],
			Paths:      bundles,
			Summaries:  summariesByFn[fn],
			PpCoverage: ppCovByFn[fn],
			TraceIndex: traceIdxByFn[fn],
		}
	}
	return out
}

// TraceIndexLookup resolves program points and trace line numbers against a
// trace_index stream (SPEC_FULL.md §5).
type TraceIndexLookup struct {
	byPP   map[string]model.TraceIndex
	byLine map[int]model.TraceIndex
}

// BuildTraceIndexLookup indexes a trace_index stream by pp and by line.
func BuildTraceIndexLookup(entries []model.TraceIndex) TraceIndexLookup {
	l := TraceIndexLookup{
		byPP:   make(map[string]model.TraceIndex, len(entries)),
		byLine: make(map[int]model.TraceIndex, len(entries)),
	}
	for _, e := range entries {
		l.byPP[e.PP] = e
		l.byLine[e.Line] = e
	}
	return l
}

// ByPP returns the trace_index entry for a program point, if any.
func (l TraceIndexLookup) ByPP(pp string) (model.TraceIndex, bool) {
	e, ok := l.byPP[pp]
	return e, ok
}

// ByLine returns the trace_index entry for a trace line number, if any.
func (l TraceIndexLookup) ByLine(line int) (model.TraceIndex, bool) {
	e, ok := l.byLine[line]
	return e, ok
}
