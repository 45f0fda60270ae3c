// Copyright 2025 KrakLabs
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"fmt"
	"os"

	flag "github.com/spf13/pflag"

	"github.com/kraklabs/revet/internal/errors"
	"github.com/kraklabs/revet/internal/ui"
	"github.com/kraklabs/revet/pkg/baseline"
)

// runBaseline executes the 'baseline' command: run a full (never
// diff-scoped) analysis and snapshot the complete, pre-suppression
// finding set, so subsequent review runs treat today's findings as
// already known.
func runBaseline(args []string) {
	fs := flag.NewFlagSet("baseline", flag.ExitOnError)
	root := fs.String("root", ".", "Repository root to analyze")
	configPath := fs.String("config", "", "Path to .revet.toml (default: <root>/.revet.toml)")
	quiet := fs.Bool("quiet", false, "Suppress progress output")
	noColor := fs.Bool("no-color", false, "Disable colored terminal output")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: revet baseline [options]

Runs a full analysis and writes every surviving finding to
<root>/.revet-cache/baseline.json, replacing any existing baseline.
Future 'revet review' runs will not re-report these findings.

Options:
`)
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	globals := GlobalFlags{Quiet: *quiet, NoColor: *noColor, Config: *configPath, Root: *root}
	ui.InitColors(globals.NoColor)

	cfg, err := loadConfigFor(globals)
	if err != nil {
		errors.FatalError(err, false)
	}

	if !globals.Quiet {
		ui.Header("revet baseline")
	}

	res, err := runEngine(context.Background(), cfg, globals, false, cfg.General.DiffBase, "")
	if err != nil {
		errors.FatalError(err, false)
	}

	// Baseline the full, pre-suppression finding set — the raw analyzer
	// output before the four suppression filters run — so a prior
	// baseline's entries aren't silently dropped from the new one.
	if err := baseline.Save(baselinePath(globals.Root), res.allFindings); err != nil {
		errors.FatalError(err, false)
	}

	ui.Successf("baselined %d findings", len(res.allFindings))
}
