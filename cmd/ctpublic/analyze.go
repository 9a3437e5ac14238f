// SPDX-License-Identifier: Apache-2.0

package main

import (
	"flag"
	"log"
	"sort"
	"sync"

	"github.com/fatih/color"
	"github.com/pkg/errors"
	"github.com/sasha-s/go-deadlock"

	"github.com/RovayL/ct-publicness/internal/aggregate"
	"github.com/RovayL/ct-publicness/internal/engine"
	"github.com/RovayL/ct-publicness/internal/export"
	"github.com/RovayL/ct-publicness/internal/ingest"
	"github.com/RovayL/ct-publicness/internal/join"
	"github.com/RovayL/ct-publicness/internal/model"
)

// pathJob is one (function, path) unit of work for the concurrent driver.
type pathJob struct {
	fn string
	in engine.PathInput
}

// runAnalyze runs the dual-execution engine over every path the CFG/trace
// pair describes. Paths are distributed across a bounded pool of worker
// goroutines, each running its own engine instance with its own query
// cache (spec.md §5: parallelism by distinct engine instances on distinct
// paths, merging results); go-deadlock guards the shared result collector.
func runAnalyze(args []string) error {
	fs := flag.NewFlagSet("analyze", flag.ExitOnError)
	tracePath := fs.String("trace", "", "trace NDJSON path")
	cfgPath := fs.String("cfg", "", "CFG/path NDJSON path")
	outPath := fs.String("out", "", "output NDJSON path (verdicts + summaries)")
	workers := fs.Int("workers", 4, "concurrent engine instances")
	noCache := fs.Bool("no-cache", false, "disable each worker's query cache")
	verbose := fs.Bool("v", false, "verbose logging")
	fs.Parse(args)
	setupLogging(*verbose)

	if *tracePath == "" || *cfgPath == "" || *outPath == "" {
		return errors.New("analyze: -trace, -cfg, and -out are required")
	}
	if *workers < 1 {
		return errors.New("analyze: -workers must be >= 1")
	}

	batch := newBatchID()
	log.Printf("analyze: batch=%s trace=%s cfg=%s workers=%d", batch, *tracePath, *cfgPath, *workers)

	var counts ingest.Counts
	insts, err := ingest.LoadTrace(*tracePath, &counts, onIngestError("trace"))
	if err != nil {
		return errors.Wrap(err, "analyze")
	}
	cfg, err := ingest.LoadCFG(*cfgPath, &counts, onIngestError("cfg"))
	if err != nil {
		return errors.Wrap(err, "analyze")
	}

	pipelines := join.Build(insts, cfg, nil)

	var jobs []pathJob
	for fn, p := range pipelines {
		for _, b := range p.Paths {
			jobs = append(jobs, pathJob{
				fn: fn,
				in: engine.PathInput{
					Fn: fn, PathID: b.Path.PathID, HasPathID: b.Path.HasPathID,
					Insts: b.Insts, PathCondText: b.Path.PathCond, PathCondJSON: b.Path.PathCondJSON,
				},
			})
		}
	}
	sort.Slice(jobs, func(i, j int) bool {
		if jobs[i].fn != jobs[j].fn {
			return jobs[i].fn < jobs[j].fn
		}
		return jobs[i].in.PathID < jobs[j].in.PathID
	})

	jobsCh := make(chan pathJob)
	go func() {
		for _, j := range jobs {
			jobsCh <- j
		}
		close(jobsCh)
	}()

	var mu deadlock.Mutex
	var allVerdicts []model.PathPublicness
	var allSummaries []model.PathAnalysisSummary
	var firstErr error

	var wg sync.WaitGroup
	for i := 0; i < *workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			var cache *engine.QueryCache
			if !*noCache {
				cache = engine.NewQueryCache()
			}
			for j := range jobsCh {
				res, err := engine.AnalyzePath(j.in, cache)
				mu.Lock()
				if err != nil {
					if firstErr == nil {
						firstErr = errors.Wrapf(err, "analyzing %s path %d", j.fn, j.in.PathID)
					}
				} else {
					allVerdicts = append(allVerdicts, res.Verdicts...)
					allSummaries = append(allSummaries, res.Summary)
				}
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	if firstErr != nil {
		return firstErr
	}

	sort.Slice(allVerdicts, func(i, j int) bool {
		a, b := allVerdicts[i], allVerdicts[j]
		if a.Fn != b.Fn {
			return a.Fn < b.Fn
		}
		if a.PathID != b.PathID {
			return a.PathID < b.PathID
		}
		if a.PP != b.PP {
			return a.PP < b.PP
		}
		return a.Value < b.Value
	})
	sort.Slice(allSummaries, func(i, j int) bool {
		a, b := allSummaries[i], allSummaries[j]
		if a.Fn != b.Fn {
			return a.Fn < b.Fn
		}
		return a.PathID < b.PathID
	})

	w, f, err := export.CreateWriter(*outPath)
	if err != nil {
		return errors.Wrap(err, "analyze")
	}
	defer f.Close()

	for _, v := range allVerdicts {
		if err := w.WritePathPublicness(v); err != nil {
			return errors.Wrap(err, "analyze")
		}
	}
	for _, s := range allSummaries {
		if err := w.WritePathAnalysisSummary(s); err != nil {
			return errors.Wrap(err, "analyze")
		}
	}
	for _, fsum := range aggregate.RollupFunctions(allSummaries) {
		if err := w.WriteFunctionAnalysisSummary(fsum); err != nil {
			return errors.Wrap(err, "analyze")
		}
	}
	if err := w.Flush(); err != nil {
		return errors.Wrap(err, "analyze")
	}

	log.Printf("analyze: batch=%s wrote %d verdict(s), %d path summary(ies); %d malformed ingest line(s)",
		batch, len(allVerdicts), len(allSummaries), counts.Malformed)
	color.Green("✅ analyze: %d path(s) across %d function(s) written to %s", len(jobs), len(pipelines), *outPath)
	return nil
}
