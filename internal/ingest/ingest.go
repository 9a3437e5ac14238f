// Package ingest reads the line-delimited JSON streams produced by the
// upstream compiler pass (trace, trace_index, and CFG/path records) and
// decodes them into internal/model types.
package ingest

import (
	"bufio"
	"encoding/json"
	"io"
	"os"
	"strings"

	"github.com/pkg/errors"

	"github.com/RovayL/ct-publicness/internal/model"
)

// Counts tracks how many records of each disposition were seen while
// reading a stream, for the ingest-error accounting spec.md §7 requires.
type Counts struct {
	Lines     int
	Malformed int
}

// rawRecord is the wire shape shared by every NDJSON line; kind-specific
// fields are decoded lazily via json.RawMessage so one malformed record
// never prevents decoding the rest of the stream.
type rawRecord struct {
	Kind string `json:"kind"`
}

// readLines yields one decoded JSON object (as json.RawMessage) per
// non-empty line of an NDJSON file, along with its kind discriminator.
// Malformed lines are reported via onError and skipped; the caller's
// Counts accumulate so a driver can report "ingest errors" without aborting
// the whole file (spec.md §7 class 1).
func readLines(path string, counts *Counts, onError func(lineNo int, err error)) ([]json.RawMessage, []string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "opening %s", path)
	}
	defer f.Close()

	var records []json.RawMessage
	var kinds []string
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		counts.Lines++
		var raw rawRecord
		if err := json.Unmarshal([]byte(line), &raw); err != nil {
			counts.Malformed++
			if onError != nil {
				onError(lineNo, errors.Wrapf(err, "line %d", lineNo))
			}
			continue
		}
		records = append(records, json.RawMessage(line))
		kinds = append(kinds, raw.Kind)
	}
	if err := scanner.Err(); err != nil && err != io.EOF {
		return nil, nil, errors.Wrapf(err, "reading %s", path)
	}
	return records, kinds, nil
}

// traceRecord mirrors one line of the implicit "trace" kind (spec.md §6).
type traceRecord struct {
	Fn       string   `json:"fn"`
	BB       string   `json:"bb"`
	PP       string   `json:"pp"`
	Op       string   `json:"op"`
	Def      string   `json:"def"`
	Uses     []string `json:"uses"`
	Tx       *struct {
		Kind  string `json:"kind"`
		Which int    `json:"which"`
	} `json:"tx"`
	DefTy    string   `json:"def_ty"`
	UseTys   []string `json:"use_tys"`
	ICmpPred string   `json:"icmp_pred"`
}

// LoadTrace reads trace NDJSON into a flat instruction list. A record whose
// `use_tys` length disagrees with `uses` is an ingest error (spec.md §3
// invariant) and is reported through counts/onError, not returned.
func LoadTrace(path string, counts *Counts, onError func(lineNo int, err error)) ([]model.Instruction, error) {
	raws, _, err := readLines(path, counts, onError)
	if err != nil {
		return nil, err
	}
	insts := make([]model.Instruction, 0, len(raws))
	for i, raw := range raws {
		var rec traceRecord
		if err := json.Unmarshal(raw, &rec); err != nil {
			counts.Malformed++
			if onError != nil {
				onError(i+1, errors.Wrap(err, "decoding trace record"))
			}
			continue
		}
		if rec.UseTys != nil && len(rec.UseTys) != len(rec.Uses) {
			counts.Malformed++
			if onError != nil {
				onError(i+1, errors.Errorf("use_tys length %d != uses length %d for %s:%s", len(rec.UseTys), len(rec.Uses), rec.Fn, rec.PP))
			}
			continue
		}
		var tx *model.TxInfo
		if rec.Tx != nil {
			if rec.Tx.Which >= len(rec.Uses) {
				counts.Malformed++
				if onError != nil {
					onError(i+1, errors.Errorf("tx.which %d out of range for %s:%s", rec.Tx.Which, rec.Fn, rec.PP))
				}
				continue
			}
			tx = &model.TxInfo{Kind: rec.Tx.Kind, Which: rec.Tx.Which}
		}
		insts = append(insts, model.Instruction{
			Fn:       rec.Fn,
			BB:       rec.BB,
			PP:       rec.PP,
			Op:       rec.Op,
			DefID:    rec.Def,
			Uses:     rec.Uses,
			Tx:       tx,
			DefTy:    rec.DefTy,
			UseTys:   rec.UseTys,
			ICmpPred: rec.ICmpPred,
		})
	}
	return insts, nil
}

type traceIndexRecord struct {
	Kind string `json:"kind"`
	Fn   string `json:"fn"`
	BB   string `json:"bb"`
	PP   string `json:"pp"`
	Op   string `json:"op"`
	Def  string `json:"def"`
	Line int    `json:"line"`
}

// LoadTraceIndex reads trace_index NDJSON records.
func LoadTraceIndex(path string, counts *Counts, onError func(lineNo int, err error)) ([]model.TraceIndex, error) {
	raws, kinds, err := readLines(path, counts, onError)
	if err != nil {
		return nil, err
	}
	var out []model.TraceIndex
	for i, raw := range raws {
		if kinds[i] != "trace_index" {
			continue
		}
		var rec traceIndexRecord
		if err := json.Unmarshal(raw, &rec); err != nil {
			counts.Malformed++
			if onError != nil {
				onError(i+1, errors.Wrap(err, "decoding trace_index record"))
			}
			continue
		}
		out = append(out, model.TraceIndex{Fn: rec.Fn, BB: rec.BB, PP: rec.PP, Op: rec.Op, DefID: rec.Def, Line: rec.Line})
	}
	return out, nil
}

type cfgBlockRecord struct {
	Fn     string   `json:"fn"`
	BB     string   `json:"bb"`
	Succs  []string `json:"succs"`
	TermPP string   `json:"term_pp"`
	TermOp string   `json:"term_op"`
	Cond   string   `json:"cond"`
	Target string   `json:"target"`
}

type cfgEdgeRecord struct {
	Fn      string `json:"fn"`
	From    string `json:"from"`
	To      string `json:"to"`
	TermPP  string `json:"term_pp"`
	Branch  string `json:"branch"`
	Cond    string `json:"cond"`
	Sense   string `json:"sense"`
	Case    string `json:"case"`
	Default bool   `json:"default"`
	Target  string `json:"target"`
}

type condExprRecord struct {
	Op    string            `json:"op"`
	Terms []*condExprRecord `json:"terms"`
	Lhs   string            `json:"lhs"`
	Rhs   string            `json:"rhs"`
}

func (c *condExprRecord) toModel() *model.CondExpr {
	if c == nil {
		return nil
	}
	out := &model.CondExpr{Op: c.Op, Lhs: c.Lhs, Rhs: c.Rhs}
	for _, t := range c.Terms {
		out.Terms = append(out.Terms, t.toModel())
	}
	return out
}

type pathDecisionRecord struct {
	PP      string `json:"pp"`
	Kind    string `json:"kind"`
	Succ    string `json:"succ"`
	Cond    string `json:"cond"`
	Sense   string `json:"sense"`
	Case    string `json:"case"`
	Default bool   `json:"default"`
	Target  string `json:"target"`
}

type cfgPathRecord struct {
	Fn           string               `json:"fn"`
	PathID       *int                 `json:"path_id"`
	BBs          []string             `json:"bbs"`
	Decisions    []pathDecisionRecord `json:"decisions"`
	PathCond     []string             `json:"path_cond"`
	PathCondJSON []*condExprRecord    `json:"path_cond_json"`
	PPSeq        []string             `json:"pp_seq"`
}

type funcSummaryRecord struct {
	Fn             string `json:"fn"`
	InstCount      int    `json:"inst_count"`
	BBCount        int    `json:"bb_count"`
	TxCount        int    `json:"tx_count"`
	TraceEmitted   int    `json:"trace_emitted"`
	TraceTruncated bool   `json:"trace_truncated"`
	TraceMaxInst   int    `json:"trace_max_inst"`
}

type pathSummaryRecord struct {
	Fn                  string `json:"fn"`
	PathsEmitted        int    `json:"paths_emitted"`
	Truncated           *bool  `json:"truncated"`
	MaxPaths            *int   `json:"max_paths"`
	MaxDepth            *int   `json:"max_depth"`
	MaxLoopIters        *int   `json:"max_loop_iters"`
	CutoffDepth         *bool  `json:"cutoff_depth"`
	CutoffLoop          *bool  `json:"cutoff_loop"`
	Disabled            *bool  `json:"disabled"`
	ConstPrunedBr       *int   `json:"const_pruned_br"`
	ConstPrunedSwitch   *int   `json:"const_pruned_switch"`
	ConstPrunedIndirect *int   `json:"const_pruned_indirect"`
	DfsCalls            *int   `json:"dfs_calls"`
	DfsLeaves           *int   `json:"dfs_leaves"`
	DfsPruneMaxPaths    *int   `json:"dfs_prune_max_paths"`
	DfsPruneMaxDepth    *int   `json:"dfs_prune_max_depth"`
	DfsPruneLoop        *int   `json:"dfs_prune_loop"`
}

type ppCoverageRecord struct {
	Fn        string `json:"fn"`
	PP        string `json:"pp"`
	PathCount int    `json:"path_count"`
	PathIDs   []int  `json:"path_ids"`
	Truncated bool   `json:"truncated"`
}

// CFG bundles every record kind the CFG/path NDJSON file can carry
// (spec.md §6: block, edge, path, path_summary, pp_coverage, func_summary).
type CFG struct {
	Blocks       []model.CfgBlock
	Edges        []model.CfgEdge
	Paths        []model.CfgPath
	Summaries    []model.PathSummary
	PpCoverage   []model.PpCoverage
	FuncSummaries []model.FuncSummary
}

// LoadCFG reads a CFG/path NDJSON file and demultiplexes records by kind.
func LoadCFG(path string, counts *Counts, onError func(lineNo int, err error)) (CFG, error) {
	var out CFG
	raws, kinds, err := readLines(path, counts, onError)
	if err != nil {
		return out, err
	}
	for i, raw := range raws {
		switch kinds[i] {
		case "block":
			var rec cfgBlockRecord
			if err := json.Unmarshal(raw, &rec); err != nil {
				counts.Malformed++
				reportDecodeErr(onError, i, err, "block")
				continue
			}
			out.Blocks = append(out.Blocks, model.CfgBlock{
				Fn: rec.Fn, BB: rec.BB, Succs: rec.Succs,
				TermPP: rec.TermPP, TermOp: rec.TermOp, Cond: rec.Cond, Target: rec.Target,
			})
		case "edge":
			var rec cfgEdgeRecord
			if err := json.Unmarshal(raw, &rec); err != nil {
				counts.Malformed++
				reportDecodeErr(onError, i, err, "edge")
				continue
			}
			out.Edges = append(out.Edges, model.CfgEdge{
				Fn: rec.Fn, From: rec.From, To: rec.To, TermPP: rec.TermPP,
				Branch: rec.Branch, Cond: rec.Cond, Sense: rec.Sense, Case: rec.Case,
				IsDefault: rec.Default, Target: rec.Target,
			})
		case "path":
			var rec cfgPathRecord
			if err := json.Unmarshal(raw, &rec); err != nil {
				counts.Malformed++
				reportDecodeErr(onError, i, err, "path")
				continue
			}
			p := model.CfgPath{
				Fn: rec.Fn, BBs: rec.BBs, PathCond: rec.PathCond, PPSeq: rec.PPSeq,
			}
			if rec.PathID != nil {
				p.PathID = *rec.PathID
				p.HasPathID = true
			}
			for _, d := range rec.Decisions {
				p.Decisions = append(p.Decisions, model.PathDecision{
					PP: d.PP, Kind: d.Kind, Succ: d.Succ, Cond: d.Cond,
					Sense: d.Sense, Case: d.Case, IsDefault: d.Default, Target: d.Target,
				})
			}
			for _, c := range rec.PathCondJSON {
				p.PathCondJSON = append(p.PathCondJSON, c.toModel())
			}
			out.Paths = append(out.Paths, p)
		case "path_summary":
			var rec pathSummaryRecord
			if err := json.Unmarshal(raw, &rec); err != nil {
				counts.Malformed++
				reportDecodeErr(onError, i, err, "path_summary")
				continue
			}
			out.Summaries = append(out.Summaries, model.PathSummary{
				Fn: rec.Fn, PathsEmitted: rec.PathsEmitted, Truncated: rec.Truncated,
				MaxPaths: rec.MaxPaths, MaxDepth: rec.MaxDepth, MaxLoopIters: rec.MaxLoopIters,
				CutoffDepth: rec.CutoffDepth, CutoffLoop: rec.CutoffLoop, Disabled: rec.Disabled,
				ConstPrunedBr: rec.ConstPrunedBr, ConstPrunedSwitch: rec.ConstPrunedSwitch,
				ConstPrunedIndirect: rec.ConstPrunedIndirect, DfsCalls: rec.DfsCalls,
				DfsLeaves: rec.DfsLeaves, DfsPruneMaxPaths: rec.DfsPruneMaxPaths,
				DfsPruneMaxDepth: rec.DfsPruneMaxDepth, DfsPruneLoop: rec.DfsPruneLoop,
			})
		case "pp_coverage":
			var rec ppCoverageRecord
			if err := json.Unmarshal(raw, &rec); err != nil {
				counts.Malformed++
				reportDecodeErr(onError, i, err, "pp_coverage")
				continue
			}
			out.PpCoverage = append(out.PpCoverage, model.PpCoverage{
				Fn: rec.Fn, PP: rec.PP, PathCount: rec.PathCount, PathIDs: rec.PathIDs, Truncated: rec.Truncated,
			})
		case "func_summary":
			var rec funcSummaryRecord
			if err := json.Unmarshal(raw, &rec); err != nil {
				counts.Malformed++
				reportDecodeErr(onError, i, err, "func_summary")
				continue
			}
			out.FuncSummaries = append(out.FuncSummaries, model.FuncSummary{
				Fn: rec.Fn, InstCount: rec.InstCount, BBCount: rec.BBCount, TxCount: rec.TxCount,
				TraceEmitted: rec.TraceEmitted, TraceTruncated: rec.TraceTruncated, TraceMaxInst: rec.TraceMaxInst,
			})
		case "run_summary":
			// Carried through untouched by every consumer in this repo;
			// nothing downstream needs its fields (spec.md §6).
		}
	}
	return out, nil
}

type pathPublicnessRecord struct {
	Fn     string `json:"fn"`
	PathID int    `json:"path_id"`
	PP     string `json:"pp"`
	Value  string `json:"value"`
	Public *bool  `json:"public"`
}

// LoadPathPublicness reads a path_publicness NDJSON stream, such as the one
// `cmd/ctpublic analyze` writes, back into model.PathPublicness records —
// the input to `cmd/ctpublic aggregate`. Lines of any other kind are
// skipped, same as LoadTraceIndex does for the trace_index stream.
func LoadPathPublicness(path string, counts *Counts, onError func(lineNo int, err error)) ([]model.PathPublicness, error) {
	raws, kinds, err := readLines(path, counts, onError)
	if err != nil {
		return nil, err
	}
	var out []model.PathPublicness
	for i, raw := range raws {
		if kinds[i] != "path_publicness" {
			continue
		}
		var rec pathPublicnessRecord
		if err := json.Unmarshal(raw, &rec); err != nil {
			counts.Malformed++
			reportDecodeErr(onError, i, err, "path_publicness")
			continue
		}
		out = append(out, model.PathPublicness{Fn: rec.Fn, PathID: rec.PathID, PP: rec.PP, Value: rec.Value, Public: rec.Public})
	}
	return out, nil
}

func reportDecodeErr(onError func(int, error), idx int, err error, kind string) {
	if onError != nil {
		onError(idx+1, errors.Wrapf(err, "decoding %s record", kind))
	}
}
