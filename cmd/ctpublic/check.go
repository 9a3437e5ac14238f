// SPDX-License-Identifier: Apache-2.0

package main

import (
	"flag"
	"fmt"
	"sort"

	"github.com/fatih/color"
	"github.com/pkg/errors"

	"github.com/RovayL/ct-publicness/internal/constraints"
	"github.com/RovayL/ct-publicness/internal/engine"
	"github.com/RovayL/ct-publicness/internal/ingest"
	"github.com/RovayL/ct-publicness/internal/satbv"
)

// runCheck probes each enumerated path's condition for satisfiability
// against a fresh single-state solver, with no trace involved — the Go
// counterpart of original_source/symex/main.py's check_paths, useful for
// validating a CFG emitter independently of trace generation.
func runCheck(args []string) error {
	fs := flag.NewFlagSet("check", flag.ExitOnError)
	cfgPath := fs.String("cfg", "", "CFG/path NDJSON path")
	fn := fs.String("fn", "", "restrict to one function")
	verbose := fs.Bool("v", false, "verbose logging")
	fs.Parse(args)
	setupLogging(*verbose)

	if *cfgPath == "" {
		return errors.New("check: -cfg is required")
	}

	var counts ingest.Counts
	cfg, err := ingest.LoadCFG(*cfgPath, &counts, onIngestError("cfg"))
	if err != nil {
		return errors.Wrap(err, "check")
	}

	paths := cfg.Paths
	sort.Slice(paths, func(i, j int) bool {
		if paths[i].Fn != paths[j].Fn {
			return paths[i].Fn < paths[j].Fn
		}
		return paths[i].PathID < paths[j].PathID
	})

	satCount, unsatCount, unknownCount := 0, 0, 0
	for _, p := range paths {
		if *fn != "" && p.Fn != *fn {
			continue
		}
		s := satbv.New()
		st := engine.NewState(s, "")
		enc := constraints.New(s, st)
		if err := enc.AssertPath(p.PathCond, p.PathCondJSON); err != nil {
			color.Red("❌ %s path %d: %v", p.Fn, p.PathID, err)
			continue
		}

		switch s.Check() {
		case satbv.Sat:
			satCount++
			fmt.Printf("  %-24s path %-4d sat\n", p.Fn, p.PathID)
		case satbv.Unsat:
			unsatCount++
			color.Yellow("  %-24s path %-4d unsat (unreachable path condition)", p.Fn, p.PathID)
		default:
			unknownCount++
			fmt.Printf("  %-24s path %-4d unknown\n", p.Fn, p.PathID)
		}
	}

	color.Green("✅ check: %d sat, %d unsat, %d unknown", satCount, unsatCount, unknownCount)
	return nil
}
