// SPDX-License-Identifier: Apache-2.0

package main

import (
	"flag"
	"fmt"
	"sort"

	"github.com/fatih/color"
	"github.com/iancoleman/strcase"
	"github.com/pkg/errors"

	"github.com/RovayL/ct-publicness/internal/ingest"
	"github.com/RovayL/ct-publicness/internal/model"
)

// runInspect prints trace/CFG summary statistics: per-function instruction
// and path counts, an opcode histogram, transmitter-site counts, and
// path-enumeration cutoff stats (SPEC_FULL.md §5, the Go counterpart of
// original_source/symex/main.py's inspection mode).
func runInspect(args []string) error {
	fs := flag.NewFlagSet("inspect", flag.ExitOnError)
	tracePath := fs.String("trace", "", "trace NDJSON path (optional)")
	cfgPath := fs.String("cfg", "", "CFG/path NDJSON path (optional)")
	fn := fs.String("fn", "", "restrict output to one function")
	verbose := fs.Bool("v", false, "verbose logging")
	fs.Parse(args)
	setupLogging(*verbose)

	if *tracePath == "" && *cfgPath == "" {
		return errors.New("inspect: at least one of -trace or -cfg is required")
	}

	var counts ingest.Counts
	if *tracePath != "" {
		insts, err := ingest.LoadTrace(*tracePath, &counts, onIngestError("trace"))
		if err != nil {
			return errors.Wrap(err, "inspect")
		}
		printTraceStats(insts, *fn)
	}
	if *cfgPath != "" {
		cfg, err := ingest.LoadCFG(*cfgPath, &counts, onIngestError("cfg"))
		if err != nil {
			return errors.Wrap(err, "inspect")
		}
		printCFGStats(cfg, *fn)
	}
	if counts.Malformed > 0 {
		color.Yellow("⚠ %d malformed line(s) skipped", counts.Malformed)
	}
	return nil
}

func printTraceStats(insts []model.Instruction, fn string) {
	byFn := map[string]int{}
	opHist := map[string]int{}
	txCount := 0
	for _, inst := range insts {
		if fn != "" && inst.Fn != fn {
			continue
		}
		byFn[inst.Fn]++
		opHist[strcase.ToScreamingSnake(inst.Op)]++
		if inst.Tx != nil {
			txCount++
		}
	}

	fns := sortedKeys(byFn)
	fmt.Printf("trace: %d function(s), %d transmitter site(s)\n", len(fns), txCount)
	for _, f := range fns {
		fmt.Printf("  %-24s %d instruction(s)\n", f, byFn[f])
	}

	ops := sortedKeys(opHist)
	fmt.Println("opcode histogram:")
	for _, op := range ops {
		fmt.Printf("  %-24s %d\n", op, opHist[op])
	}
}

func printCFGStats(cfg ingest.CFG, fn string) {
	pathsByFn := map[string]int{}
	for _, p := range cfg.Paths {
		if fn != "" && p.Fn != fn {
			continue
		}
		pathsByFn[p.Fn]++
	}

	fmt.Printf("cfg: %d block(s), %d edge(s), %d enumerated path(s)\n", len(cfg.Blocks), len(cfg.Edges), len(cfg.Paths))
	for _, f := range sortedKeys(pathsByFn) {
		fmt.Printf("  %-24s %d path(s)\n", f, pathsByFn[f])
	}

	for _, s := range cfg.Summaries {
		if fn != "" && s.Fn != fn {
			continue
		}
		trunc := s.Truncated != nil && *s.Truncated
		fmt.Printf("  %-24s paths_emitted=%d truncated=%v\n", s.Fn, s.PathsEmitted, trunc)
	}
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
