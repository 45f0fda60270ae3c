// Copyright 2025 KrakLabs
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"
	"os"

	flag "github.com/spf13/pflag"

	"github.com/kraklabs/revet/internal/errors"
	"github.com/kraklabs/revet/internal/output"
	"github.com/kraklabs/revet/internal/ui"
	"github.com/kraklabs/revet/pkg/runlog"
)

// runRuns executes the 'runs' command: list previously written run log
// IDs (newest first), or show one in full with --show.
func runRuns(args []string) {
	fs := flag.NewFlagSet("runs", flag.ExitOnError)
	root := fs.String("root", ".", "Repository root whose cache to inspect")
	show := fs.String("show", "", "Print the full run log for this id")
	jsonOutput := fs.Bool("json", false, "Output as JSON")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: revet runs [options]

Lists run log ids under <root>/.revet-cache/runs/, newest first, or
prints one in full with --show <id>.

Options:
`)
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	writer := runlog.NewWriter(cacheRoot(*root))

	if *show != "" {
		log, err := writer.ByID(*show)
		if err != nil {
			errors.FatalError(err, *jsonOutput)
		}
		if *jsonOutput {
			if err := output.JSON(log); err != nil {
				fmt.Fprintf(os.Stderr, "revet: failed to encode run log as JSON: %v\n", err)
			}
		} else {
			printFindingsTerminal(log)
		}
		return
	}

	ids, err := writer.Enumerate()
	if err != nil {
		errors.FatalError(err, *jsonOutput)
	}

	if *jsonOutput {
		if err := output.JSON(ids); err != nil {
			fmt.Fprintf(os.Stderr, "revet: failed to encode run ids as JSON: %v\n", err)
		}
		return
	}

	if len(ids) == 0 {
		ui.Info("no run logs found")
		return
	}
	for _, id := range ids {
		fmt.Println(id)
	}
}
