// SPDX-License-Identifier: Apache-2.0

package main

import (
	"bufio"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/pkg/errors"

	"github.com/RovayL/ct-publicness/internal/ingest"
	"github.com/RovayL/ct-publicness/internal/join"
)

// runEnrich joins a path_publicness stream against a trace_index stream,
// attaching trace_line/trace_op/trace_def to each path_publicness record
// and passing every other record kind through unchanged (SPEC_FULL.md §5,
// the Go counterpart of original_source/symex/join_trace_index.py).
func runEnrich(args []string) error {
	fs := flag.NewFlagSet("enrich", flag.ExitOnError)
	resultsPath := fs.String("results", "", "path_publicness NDJSON path")
	traceIndexPath := fs.String("trace-index", "", "trace_index NDJSON path")
	outPath := fs.String("out", "", "enriched NDJSON output path")
	verbose := fs.Bool("v", false, "verbose logging")
	fs.Parse(args)
	setupLogging(*verbose)

	if *resultsPath == "" || *traceIndexPath == "" || *outPath == "" {
		return errors.New("enrich: -results, -trace-index, and -out are required")
	}

	var counts ingest.Counts
	tiEntries, err := ingest.LoadTraceIndex(*traceIndexPath, &counts, onIngestError("trace_index"))
	if err != nil {
		return errors.Wrap(err, "enrich")
	}
	lookup := join.BuildTraceIndexLookup(tiEntries)

	in, err := os.Open(*resultsPath)
	if err != nil {
		return errors.Wrapf(err, "enrich: opening %s", *resultsPath)
	}
	defer in.Close()

	out, err := os.Create(*outPath)
	if err != nil {
		return errors.Wrapf(err, "enrich: creating %s", *outPath)
	}
	defer out.Close()
	w := bufio.NewWriter(out)
	defer w.Flush()

	sc := bufio.NewScanner(in)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	enriched, lineNo := 0, 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}

		var disc struct {
			Kind string `json:"kind"`
		}
		if err := json.Unmarshal([]byte(line), &disc); err != nil {
			log.Printf("enrich: line %d: %v", lineNo, err)
			continue
		}
		if disc.Kind != "path_publicness" {
			fmt.Fprintln(w, line)
			continue
		}

		var rec map[string]interface{}
		if err := json.Unmarshal([]byte(line), &rec); err != nil {
			log.Printf("enrich: line %d: %v", lineNo, err)
			continue
		}
		if pp, ok := rec["pp"].(string); ok {
			if ti, found := lookup.ByPP(pp); found {
				rec["trace_line"] = ti.Line
				rec["trace_op"] = ti.Op
				rec["trace_def"] = ti.DefID
				enriched++
			}
		}
		b, err := json.Marshal(rec)
		if err != nil {
			return errors.Wrap(err, "enrich: marshaling enriched record")
		}
		w.Write(b)
		w.WriteByte('\n')
	}
	if err := sc.Err(); err != nil {
		return errors.Wrap(err, "enrich: reading input")
	}

	color.Green("✅ enrich: %d path_publicness record(s) enriched with trace_line", enriched)
	return nil
}
