// SPDX-License-Identifier: Apache-2.0

package main

import (
	"log"

	"github.com/segmentio/ksuid"
	"github.com/tliron/commonlog"
)

// setupLogging configures commonlog once per invocation, exactly as
// cmd/kanso-lsp/main.go does; stdlib log calls throughout the drivers are
// routed through whatever backend that leaves in place.
func setupLogging(verbose bool) {
	level := 1
	if verbose {
		level = 2
	}
	commonlog.Configure(level, nil)
}

// newBatchID stamps a per-invocation id for log lines and the metrics CSV's
// batch_id column. It is cosmetic only — it must never reach a solver-visible
// symbol name, or path-replay determinism would break.
func newBatchID() string {
	return ksuid.New().String()
}

// onIngestError returns an onError callback for the ingest loaders that logs malformed lines
// instead of aborting the read.
func onIngestError(kind string) func(int, error) {
	return func(lineNo int, err error) {
		log.Printf("ingest: %s line %d: %v", kind, lineNo, err)
	}
}
