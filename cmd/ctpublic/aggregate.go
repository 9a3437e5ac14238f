// SPDX-License-Identifier: Apache-2.0

package main

import (
	"flag"
	"log"

	"github.com/fatih/color"
	"github.com/pkg/errors"

	"github.com/RovayL/ct-publicness/internal/aggregate"
	"github.com/RovayL/ct-publicness/internal/export"
	"github.com/RovayL/ct-publicness/internal/ingest"
)

// runAggregate folds a CFG's pp_coverage (or, failing that, each path's
// pp_seq) together with per-path verdicts from `analyze` into one
// public_at_point record per (fn, pp, value) (spec.md §4.5).
func runAggregate(args []string) error {
	fs := flag.NewFlagSet("aggregate", flag.ExitOnError)
	cfgPath := fs.String("cfg", "", "CFG/path NDJSON path")
	resultsPath := fs.String("results", "", "path_publicness NDJSON path (analyze output)")
	outPath := fs.String("out", "", "public_at_point NDJSON output path")
	missing := fs.String("missing-policy", "unknown", "missing-path policy: unknown|public|secret")
	verbose := fs.Bool("v", false, "verbose logging")
	fs.Parse(args)
	setupLogging(*verbose)

	if *cfgPath == "" || *resultsPath == "" || *outPath == "" {
		return errors.New("aggregate: -cfg, -results, and -out are required")
	}

	var policy aggregate.MissingPolicy
	switch *missing {
	case "unknown":
		policy = aggregate.MissingUnknown
	case "public":
		policy = aggregate.MissingPublic
	case "secret":
		policy = aggregate.MissingSecret
	default:
		return errors.Errorf("aggregate: unknown -missing-policy %q", *missing)
	}

	var counts ingest.Counts
	cfg, err := ingest.LoadCFG(*cfgPath, &counts, onIngestError("cfg"))
	if err != nil {
		return errors.Wrap(err, "aggregate")
	}
	results, err := ingest.LoadPathPublicness(*resultsPath, &counts, onIngestError("results"))
	if err != nil {
		return errors.Wrap(err, "aggregate")
	}

	points := aggregate.AggregatePublicAtPoint(cfg.Paths, cfg.PpCoverage, results, policy)

	w, f, err := export.CreateWriter(*outPath)
	if err != nil {
		return errors.Wrap(err, "aggregate")
	}
	defer f.Close()
	for _, p := range points {
		if err := w.WritePublicAtPoint(p); err != nil {
			return errors.Wrap(err, "aggregate")
		}
	}
	if err := w.Flush(); err != nil {
		return errors.Wrap(err, "aggregate")
	}

	log.Printf("aggregate: %d point(s), missing-policy=%s, %d malformed ingest line(s)", len(points), *missing, counts.Malformed)
	color.Green("✅ aggregate: %d (fn,pp,value) point(s) written to %s", len(points), *outPath)
	return nil
}
