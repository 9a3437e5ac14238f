// SPDX-License-Identifier: Apache-2.0

package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

// writeFile is a small fixture helper: write content to path under dir.
func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatalf("writing fixture %s: %v", p, err)
	}
	return p
}

// This exercises the full analyze -> aggregate -> enrich -> metrics chain
// end to end over spec.md §8's "constant copy" scenario: two constants
// summed identically in both executions, so the value is not public.
func TestAnalyzeAggregateEnrichMetricsChain(t *testing.T) {
	dir := t.TempDir()

	trace := writeFile(t, dir, "trace.ndjson",
		`{"fn":"f","bb":"entry","pp":"p0","op":"add","def":"d","uses":["const:i32:1","const:i32:2"],"def_ty":"i32","use_tys":["i32","i32"]}`+"\n")

	cfg := writeFile(t, dir, "cfg.ndjson",
		`{"kind":"path","fn":"f","path_id":1,"bbs":["entry"],"pp_seq":["p0"],"path_cond":[]}`+"\n"+
			`{"kind":"pp_coverage","fn":"f","pp":"p0","path_count":1,"path_ids":[1]}`+"\n"+
			`{"kind":"func_summary","fn":"f","inst_count":1,"bb_count":1,"tx_count":0,"trace_emitted":1,"trace_max_inst":100}`+"\n"+
			`{"kind":"path_summary","fn":"f","paths_emitted":1}`+"\n")

	traceIndex := writeFile(t, dir, "trace_index.ndjson",
		`{"kind":"trace_index","fn":"f","bb":"entry","pp":"p0","op":"add","def":"d","line":10}`+"\n")

	analyzeOut := filepath.Join(dir, "verdicts.ndjson")
	err := runAnalyze([]string{"-trace", trace, "-cfg", cfg, "-out", analyzeOut, "-workers", "1"})
	assert.NoError(t, err)

	verdictBytes, err := os.ReadFile(analyzeOut)
	assert.NoError(t, err)
	assert.Contains(t, string(verdictBytes), `"kind":"path_publicness"`)
	assert.Contains(t, string(verdictBytes), `"public":false`)

	aggOut := filepath.Join(dir, "points.ndjson")
	err = runAggregate([]string{"-cfg", cfg, "-results", analyzeOut, "-out", aggOut})
	assert.NoError(t, err)

	pointBytes, err := os.ReadFile(aggOut)
	assert.NoError(t, err)
	assert.Contains(t, string(pointBytes), `"kind":"public_at_point"`)
	assert.Contains(t, string(pointBytes), `"public":false`)

	enrichOut := filepath.Join(dir, "enriched.ndjson")
	err = runEnrich([]string{"-results", analyzeOut, "-trace-index", traceIndex, "-out", enrichOut})
	assert.NoError(t, err)

	enrichedBytes, err := os.ReadFile(enrichOut)
	assert.NoError(t, err)
	assert.Contains(t, string(enrichedBytes), `"trace_line":10`)

	metricsOut := filepath.Join(dir, "metrics.csv")
	err = runMetrics([]string{"-cfg", cfg, "-out", metricsOut})
	assert.NoError(t, err)

	metricsBytes, err := os.ReadFile(metricsOut)
	assert.NoError(t, err)
	assert.Contains(t, string(metricsBytes), "batch_id")
	assert.Contains(t, string(metricsBytes), "f,")
}

func TestCheckSucceedsForUnconstrainedPath(t *testing.T) {
	dir := t.TempDir()
	cfg := writeFile(t, dir, "cfg.ndjson",
		`{"kind":"path","fn":"f","path_id":1,"bbs":["entry"],"pp_seq":[],"path_cond":[]}`+"\n")

	err := runCheck([]string{"-cfg", cfg})
	assert.NoError(t, err)
}

func TestInspectRequiresAtLeastOneInput(t *testing.T) {
	err := runInspect(nil)
	assert.Error(t, err)
}
