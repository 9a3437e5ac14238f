// SPDX-License-Identifier: Apache-2.0

package main

import (
	"flag"

	"github.com/fatih/color"
	"github.com/pkg/errors"

	"github.com/RovayL/ct-publicness/internal/export"
	"github.com/RovayL/ct-publicness/internal/ingest"
)

// runMetrics emits the per-function metrics CSV (SPEC_FULL.md §5, the Go
// counterpart of original_source/symex/metrics.py), merging func_summary
// records (trace counts) with path_summary records (path-enumeration and
// pruning counts) by function name. Both kinds are read out of -cfg, since
// ingest.LoadCFG demultiplexes any kind-tagged NDJSON stream by its "kind"
// field rather than assuming a fixed file layout; -extra accepts a second
// stream in case an upstream pipeline splits func_summary records out on
// their own.
func runMetrics(args []string) error {
	fs := flag.NewFlagSet("metrics", flag.ExitOnError)
	cfgPath := fs.String("cfg", "", "CFG/path NDJSON path (path_summary, pp_coverage, func_summary)")
	extraPath := fs.String("extra", "", "additional kind-tagged NDJSON stream (optional)")
	outPath := fs.String("out", "", "metrics CSV output path")
	verbose := fs.Bool("v", false, "verbose logging")
	fs.Parse(args)
	setupLogging(*verbose)

	if *cfgPath == "" || *outPath == "" {
		return errors.New("metrics: -cfg and -out are required")
	}

	batch := newBatchID()

	var counts ingest.Counts
	cfg, err := ingest.LoadCFG(*cfgPath, &counts, onIngestError("cfg"))
	if err != nil {
		return errors.Wrap(err, "metrics")
	}

	funcSummaries := cfg.FuncSummaries
	pathSummaries := cfg.Summaries
	if *extraPath != "" {
		extra, err := ingest.LoadCFG(*extraPath, &counts, onIngestError("extra"))
		if err != nil {
			return errors.Wrap(err, "metrics")
		}
		funcSummaries = append(funcSummaries, extra.FuncSummaries...)
		pathSummaries = append(pathSummaries, extra.Summaries...)
	}

	if err := export.WriteMetricsCSV(*outPath, funcSummaries, pathSummaries, batch); err != nil {
		return errors.Wrap(err, "metrics")
	}

	color.Green("✅ metrics: wrote %s (batch=%s)", *outPath, batch)
	return nil
}
