// Copyright 2025 KrakLabs
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"
	"os"

	"github.com/kraklabs/revet/internal/output"
	"github.com/kraklabs/revet/internal/ui"
	"github.com/kraklabs/revet/pkg/analyze"
	"github.com/kraklabs/revet/pkg/runlog"
	"github.com/kraklabs/revet/pkg/suppress"
)

// printFindingsTerminal renders kept findings as colored, human-readable
// lines, one per finding, then a summary. Suppressed findings are
// omitted from the listing but counted in the summary, so suppression
// accounting stays visible even though the findings themselves don't
// print.
func printFindingsTerminal(log *runlog.RunLog) {
	for _, o := range log.Findings {
		if o.Suppressed {
			continue
		}
		line := fmt.Sprintf("%s:%d", o.File, o.Line)
		switch o.Severity {
		case analyze.SeverityError:
			fmt.Printf("%s %s %s — %s\n", ui.Red.Sprint("error"), ui.Bold.Sprint(o.ID), ui.DimText(line), o.Message)
		case analyze.SeverityWarning:
			fmt.Printf("%s %s %s — %s\n", ui.Yellow.Sprint("warning"), ui.Bold.Sprint(o.ID), ui.DimText(line), o.Message)
		default:
			fmt.Printf("%s %s %s — %s\n", ui.Cyan.Sprint("info"), ui.Bold.Sprint(o.ID), ui.DimText(line), o.Message)
		}
		if o.Suggestion != "" {
			fmt.Printf("  %s %s\n", ui.DimText("suggestion:"), o.Suggestion)
		}
	}

	fmt.Println()
	fmt.Printf("%s %s errors, %s warnings, %s info, %s suppressed\n",
		ui.Label("Summary:"),
		ui.CountText(log.Summary.Errors),
		ui.CountText(log.Summary.Warnings),
		ui.CountText(log.Summary.Info),
		ui.CountText(log.Summary.Suppressed),
	)
}

func printFindingsJSON(log *runlog.RunLog) {
	if err := output.JSON(log); err != nil {
		fmt.Fprintf(os.Stderr, "revet: failed to encode run log as JSON: %v\n", err)
	}
}

// exitCodeForSummary implements the general.fail_on threshold: the CLI
// exits nonzero once a kept finding at or above the configured severity
// exists.
func exitCodeForSummary(failOn string, summary suppress.Summary) int {
	switch failOn {
	case "never":
		return 0
	case "info":
		if summary.Errors+summary.Warnings+summary.Info > 0 {
			return 1
		}
	case "warning":
		if summary.Errors+summary.Warnings > 0 {
			return 1
		}
	default: // "error"
		if summary.Errors > 0 {
			return 1
		}
	}
	return 0
}
