// Package model defines the tagged record types exchanged between the
// upstream compiler pass and this analyzer: instructions, basic blocks,
// edges, paths, coverage, and the verdicts this analyzer emits.
package model

// TxInfo marks an instruction operand as observable by an attacker: its
// value must agree across the A and B executions.
type TxInfo struct {
	Kind  string
	Which int
}

// Instruction is one record from the trace NDJSON (spec.md §3, §6).
type Instruction struct {
	Fn        string
	BB        string
	PP        string
	Op        string
	DefID     string // empty when the instruction defines nothing
	Uses      []string
	Tx        *TxInfo
	DefTy     string
	UseTys    []string
	ICmpPred  string
}

// HasDef reports whether this instruction binds a value.
func (i *Instruction) HasDef() bool {
	return i.DefID != ""
}

// TraceIndex maps a program point to the trace line it was emitted from.
type TraceIndex struct {
	Fn    string
	BB    string
	PP    string
	Op    string
	DefID string
	Line  int
}

// FuncSummary is the per-function trace summary emitted by the upstream pass.
type FuncSummary struct {
	Fn             string
	InstCount      int
	BBCount        int
	TxCount        int
	TraceEmitted   int
	TraceTruncated bool
	TraceMaxInst   int
}

// CfgBlock is a basic-block record from the CFG NDJSON.
type CfgBlock struct {
	Fn      string
	BB      string
	Succs   []string
	TermPP  string
	TermOp  string
	Cond    string
	Target  string
}

// CfgEdge is an edge record from the CFG NDJSON.
type CfgEdge struct {
	Fn        string
	From      string
	To        string
	TermPP    string
	Branch    string
	Cond      string
	Sense     string
	Case      string
	IsDefault bool
	Target    string
}

// PathDecision is one branch decision taken along an enumerated path.
type PathDecision struct {
	PP        string
	Kind      string // br | switch | indirect
	Succ      string
	Cond      string
	Sense     string
	Case      string
	IsDefault bool
	Target    string
}

// CondExpr is a structured path-condition tree node: either an "and" of
// Terms, or an "==" / "!=" comparison of Lhs/Rhs tokens.
type CondExpr struct {
	Op    string // "and" | "==" | "!="
	Terms []*CondExpr
	Lhs   string
	Rhs   string
}

// CfgPath is a single enumerated path through one function's CFG.
type CfgPath struct {
	Fn            string
	PathID        int
	HasPathID     bool
	BBs           []string
	Decisions     []PathDecision
	PathCond      []string
	PathCondJSON  []*CondExpr
	PPSeq         []string
}

// PpCoverage records which paths traverse a program point, and whether
// enumeration of those paths was truncated.
type PpCoverage struct {
	Fn        string
	PP        string
	PathCount int
	PathIDs   []int
	Truncated bool
}

// PathSummary is the per-function path-enumeration summary and pruning
// statistics. Pointer fields mirror the Python original's Optional[int]/
// Optional[bool] columns, which may be entirely absent from a given record.
type PathSummary struct {
	Fn                  string
	PathsEmitted        int
	Truncated           *bool
	MaxPaths            *int
	MaxDepth            *int
	MaxLoopIters        *int
	CutoffDepth         *bool
	CutoffLoop          *bool
	Disabled            *bool
	ConstPrunedBr       *int
	ConstPrunedSwitch   *int
	ConstPrunedIndirect *int
	DfsCalls            *int
	DfsLeaves           *int
	DfsPruneMaxPaths    *int
	DfsPruneMaxDepth    *int
	DfsPruneLoop        *int
}

// PathPublicness is the per-path publicness verdict for one defined value
// at one program point (spec.md §3, §6).
type PathPublicness struct {
	Fn     string
	PathID int
	PP     string
	Value  string
	// Public is nil for "unknown" — the solver returned neither SAT nor UNSAT,
	// or the definition had no binding in one of the two states.
	Public *bool
}

// PublicAtPoint is the aggregated publicness verdict at a program point
// across all paths that traverse it.
type PublicAtPoint struct {
	Fn            string
	PP            string
	Value         string
	Public        *bool
	TotalPaths    int
	MissingPaths  int
	Truncated     bool
}

// PathAnalysisSummary is the per-path solver/query accounting emitted
// alongside a path's verdicts (spec.md §6).
type PathAnalysisSummary struct {
	Fn            string
	PathID        int
	InstCount     int
	DefCount      int
	QueryCount    int
	SatCount      int
	UnsatCount    int
	UnknownCount  int
	SolverTimeMs  float64
	CacheHits     int
	CacheMisses   int
}

// FunctionAnalysisSummary folds every path's PathAnalysisSummary for one
// function into a single rollup (SPEC_FULL.md §5 — not present in the
// Python original, whose analyze.py is a stub).
type FunctionAnalysisSummary struct {
	Fn            string
	PathsAnalyzed int
	InstCount     int
	DefCount      int
	QueryCount    int
	SatCount      int
	UnsatCount    int
	UnknownCount  int
	SolverTimeMs  float64
	CacheHits     int
	CacheMisses   int
}

// RollupFunction folds a function's per-path summaries into one
// FunctionAnalysisSummary.
func RollupFunction(fn string, paths []PathAnalysisSummary) FunctionAnalysisSummary {
	out := FunctionAnalysisSummary{Fn: fn}
	for _, p := range paths {
		out.PathsAnalyzed++
		out.InstCount += p.InstCount
		out.DefCount += p.DefCount
		out.QueryCount += p.QueryCount
		out.SatCount += p.SatCount
		out.UnsatCount += p.UnsatCount
		out.UnknownCount += p.UnknownCount
		out.SolverTimeMs += p.SolverTimeMs
		out.CacheHits += p.CacheHits
		out.CacheMisses += p.CacheMisses
	}
	return out
}
