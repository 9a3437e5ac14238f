// Package export writes this analyzer's output records: the NDJSON
// verdict/summary streams of spec.md §6, and the per-function metrics CSV
// the Python original's metrics.py emits.
package export

import (
	"bufio"
	"encoding/json"
	"io"
	"os"

	"github.com/pkg/errors"

	"github.com/RovayL/ct-publicness/internal/model"
)

type pathPublicnessRecord struct {
	Kind   string `json:"kind"`
	Fn     string `json:"fn"`
	PathID int    `json:"path_id"`
	PP     string `json:"pp"`
	Value  string `json:"value"`
	Public *bool  `json:"public"`
}

type publicAtPointRecord struct {
	Kind         string `json:"kind"`
	Fn           string `json:"fn"`
	PP           string `json:"pp"`
	Value        string `json:"value"`
	Public       *bool  `json:"public"`
	TotalPaths   int    `json:"total_paths"`
	MissingPaths int    `json:"missing_paths"`
	Truncated    bool   `json:"truncated"`
}

type pathAnalysisSummaryRecord struct {
	Kind         string  `json:"kind"`
	Fn           string  `json:"fn"`
	PathID       int     `json:"path_id"`
	InstCount    int     `json:"inst_count"`
	DefCount     int     `json:"def_count"`
	QueryCount   int     `json:"query_count"`
	SatCount     int     `json:"sat_count"`
	UnsatCount   int     `json:"unsat_count"`
	UnknownCount int     `json:"unknown_count"`
	SolverTimeMs float64 `json:"solver_time_ms"`
	CacheHits    int     `json:"cache_hits"`
	CacheMisses  int     `json:"cache_misses"`
}

type functionAnalysisSummaryRecord struct {
	Kind          string  `json:"kind"`
	Fn            string  `json:"fn"`
	PathsAnalyzed int     `json:"paths_analyzed"`
	InstCount     int     `json:"inst_count"`
	DefCount      int     `json:"def_count"`
	QueryCount    int     `json:"query_count"`
	SatCount      int     `json:"sat_count"`
	UnsatCount    int     `json:"unsat_count"`
	UnknownCount  int     `json:"unknown_count"`
	SolverTimeMs  float64 `json:"solver_time_ms"`
	CacheHits     int     `json:"cache_hits"`
	CacheMisses   int     `json:"cache_misses"`
}

// Writer emits this analyzer's NDJSON output records, one JSON object per
// line (spec.md §6's output formats).
type Writer struct {
	w *bufio.Writer
}

// NewWriter wraps an io.Writer (typically an *os.File) for NDJSON output.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: bufio.NewWriter(w)}
}

// CreateWriter opens path for writing and returns a Writer over it; the
// caller must call Close when done.
func CreateWriter(path string) (*Writer, *os.File, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "creating %s", path)
	}
	return NewWriter(f), f, nil
}

func (w *Writer) writeRecord(v interface{}) error {
	b, err := json.Marshal(v)
	if err != nil {
		return errors.Wrap(err, "export: marshaling record")
	}
	if _, err := w.w.Write(b); err != nil {
		return errors.Wrap(err, "export: writing record")
	}
	if err := w.w.WriteByte('\n'); err != nil {
		return errors.Wrap(err, "export: writing newline")
	}
	return nil
}

// WritePathPublicness emits a per-path verdict record.
func (w *Writer) WritePathPublicness(v model.PathPublicness) error {
	return w.writeRecord(pathPublicnessRecord{
		Kind: "path_publicness", Fn: v.Fn, PathID: v.PathID, PP: v.PP, Value: v.Value, Public: v.Public,
	})
}

// WritePublicAtPoint emits a per-point aggregate record.
func (w *Writer) WritePublicAtPoint(v model.PublicAtPoint) error {
	return w.writeRecord(publicAtPointRecord{
		Kind: "public_at_point", Fn: v.Fn, PP: v.PP, Value: v.Value, Public: v.Public,
		TotalPaths: v.TotalPaths, MissingPaths: v.MissingPaths, Truncated: v.Truncated,
	})
}

// WritePathAnalysisSummary emits a per-path solver accounting record.
func (w *Writer) WritePathAnalysisSummary(v model.PathAnalysisSummary) error {
	return w.writeRecord(pathAnalysisSummaryRecord{
		Kind: "path_analysis_summary", Fn: v.Fn, PathID: v.PathID,
		InstCount: v.InstCount, DefCount: v.DefCount, QueryCount: v.QueryCount,
		SatCount: v.SatCount, UnsatCount: v.UnsatCount, UnknownCount: v.UnknownCount,
		SolverTimeMs: v.SolverTimeMs, CacheHits: v.CacheHits, CacheMisses: v.CacheMisses,
	})
}

// WriteFunctionAnalysisSummary emits a per-function solver accounting
// rollup record (SPEC_FULL.md's supplemented feature).
func (w *Writer) WriteFunctionAnalysisSummary(v model.FunctionAnalysisSummary) error {
	return w.writeRecord(functionAnalysisSummaryRecord{
		Kind: "function_analysis_summary", Fn: v.Fn, PathsAnalyzed: v.PathsAnalyzed,
		InstCount: v.InstCount, DefCount: v.DefCount, QueryCount: v.QueryCount,
		SatCount: v.SatCount, UnsatCount: v.UnsatCount, UnknownCount: v.UnknownCount,
		SolverTimeMs: v.SolverTimeMs, CacheHits: v.CacheHits, CacheMisses: v.CacheMisses,
	})
}

// Flush flushes any buffered output.
func (w *Writer) Flush() error {
	return errors.Wrap(w.w.Flush(), "export: flushing output")
}
