// SPDX-License-Identifier: Apache-2.0

// Command ctpublic drives the dual-execution publicness analyzer over the
// NDJSON trace and CFG/path streams the upstream compiler pass emits.
package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	cmd := os.Args[1]
	args := os.Args[2:]

	var err error
	switch cmd {
	case "analyze":
		err = runAnalyze(args)
	case "aggregate":
		err = runAggregate(args)
	case "enrich":
		err = runEnrich(args)
	case "inspect":
		err = runInspect(args)
	case "metrics":
		err = runMetrics(args)
	case "check":
		err = runCheck(args)
	case "help", "-h", "--help":
		usage()
		return
	default:
		color.Red("❌ unknown subcommand %q", cmd)
		usage()
		os.Exit(1)
	}

	if err != nil {
		color.Red("❌ %s: %v", cmd, err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Println("Usage: ctpublic <subcommand> [flags]")
	fmt.Println()
	fmt.Println("Subcommands:")
	fmt.Println("  analyze     run the dual-execution engine over every path in a CFG/trace pair")
	fmt.Println("  aggregate   fold per-path verdicts into per-program-point publicness")
	fmt.Println("  enrich      attach trace_index line numbers to path_publicness records")
	fmt.Println("  inspect     print trace/CFG summary statistics")
	fmt.Println("  metrics     emit the per-function metrics CSV")
	fmt.Println("  check       probe path-condition satisfiability without a trace")
}
