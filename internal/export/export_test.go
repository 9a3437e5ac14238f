package export_test

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/RovayL/ct-publicness/internal/export"
	"github.com/RovayL/ct-publicness/internal/model"
)

func boolPtr(b bool) *bool { return &b }
func intPtr(i int) *int    { return &i }

func TestWritePathPublicnessNDJSON(t *testing.T) {
	var buf bytes.Buffer
	w := export.NewWriter(&buf)
	err := w.WritePathPublicness(model.PathPublicness{Fn: "f", PathID: 1, PP: "p0", Value: "d", Public: boolPtr(false)})
	assert.NoError(t, err)
	assert.NoError(t, w.Flush())

	sc := bufio.NewScanner(&buf)
	assert.True(t, sc.Scan())
	assert.Contains(t, sc.Text(), `"kind":"path_publicness"`)
	assert.Contains(t, sc.Text(), `"public":false`)
}

func TestWritePublicAtPointNullPublic(t *testing.T) {
	var buf bytes.Buffer
	w := export.NewWriter(&buf)
	assert.NoError(t, w.WritePublicAtPoint(model.PublicAtPoint{Fn: "f", PP: "p0", Value: "d", Public: nil, TotalPaths: 2, MissingPaths: 1, Truncated: true}))
	assert.NoError(t, w.Flush())

	sc := bufio.NewScanner(&buf)
	assert.True(t, sc.Scan())
	assert.Contains(t, sc.Text(), `"public":null`)
	assert.Contains(t, sc.Text(), `"truncated":true`)
}

func TestWriteMetricsCSVMergesBothSources(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "metrics.csv")

	funcSummaries := []model.FuncSummary{
		{Fn: "f", InstCount: 10, BBCount: 3, TxCount: 1, TraceEmitted: 10, TraceTruncated: false, TraceMaxInst: 100},
	}
	pathSummaries := []model.PathSummary{
		{Fn: "f", PathsEmitted: 4, Truncated: boolPtr(false), MaxPaths: intPtr(64)},
		{Fn: "g", PathsEmitted: 1},
	}

	err := export.WriteMetricsCSV(out, funcSummaries, pathSummaries, "batch123")
	assert.NoError(t, err)

	f, err := os.Open(out)
	if err != nil {
		t.Fatalf("open output: %v", err)
	}
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("read csv: %v", err)
	}
	// header + 2 function rows (f, g), sorted by fn.
	assert.Equal(t, 3, len(rows))
	assert.Equal(t, "fn", rows[0][0])
	assert.Equal(t, "f", rows[1][0])
	assert.Equal(t, "10", rows[1][1]) // inst_count
	assert.Equal(t, "g", rows[2][0])
	assert.Equal(t, "", rows[2][1]) // g has no FuncSummary
}
