// Copyright 2025 KrakLabs
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	flag "github.com/spf13/pflag"

	"github.com/kraklabs/revet/internal/errors"
	"github.com/kraklabs/revet/internal/ui"
	"github.com/kraklabs/revet/pkg/config"
	"github.com/kraklabs/revet/pkg/runlog"
)

// runReview executes the 'review' command: parse the repository (or a
// diff-scoped subset of it), run every enabled analyzer, apply the four
// suppression filters, write a run log, and print the surviving
// findings.
func runReview(args []string) {
	fs := flag.NewFlagSet("review", flag.ExitOnError)
	root := fs.String("root", ".", "Repository root to analyze")
	configPath := fs.String("config", "", "Path to .revet.toml (default: <root>/.revet.toml)")
	diffMode := fs.Bool("diff", false, "Scope the review to the impact set of a diff, instead of the whole repo")
	base := fs.String("base", "", "Diff base ref (default: general.diff_base from config, or HEAD)")
	worktree := fs.String("worktree", "", "Diff worktree ref (empty means the working tree)")
	jsonOutput := fs.Bool("json", false, "Output the run log as JSON")
	quiet := fs.Bool("quiet", false, "Suppress progress output")
	noColor := fs.Bool("no-color", false, "Disable colored terminal output")
	saveRunLog := fs.Bool("save-run-log", true, "Persist the run log under <root>/.revet-cache/runs/")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: revet review [options]

Parses the repository, runs every enabled analyzer, applies inline,
per-path, global-id, and baseline suppression, then prints surviving
findings. Exits nonzero once a finding at or above general.fail_on is
present (unless --json is requested, in which case the exit code still
applies but findings print as one JSON document).

Options:
`)
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	globals := GlobalFlags{JSON: *jsonOutput, Quiet: *quiet, NoColor: *noColor, Config: *configPath, Root: *root}
	ui.InitColors(globals.NoColor)

	cfg, err := loadConfigFor(globals)
	if err != nil {
		errors.FatalError(err, globals.JSON)
	}

	if *base == "" {
		*base = cfg.General.DiffBase
	}

	if !globals.Quiet && !globals.JSON {
		ui.Header("revet review")
	}

	var runResult *engineResult
	func() {
		defer func() {
			if r := recover(); r != nil {
				invariant := errors.Recover(r, "cmd/revet.runReview")
				now := time.Now()
				log := runlog.Build(runlog.NewID(now, map[string]bool{}), now, 0, 0, nil)
				log.MarkFailed(invariant.Error())
				runResult = &engineResult{runLog: log}
			}
		}()

		res, runErr := runEngine(context.Background(), cfg, globals, *diffMode, *base, *worktree)
		if runErr != nil {
			errors.FatalError(runErr, globals.JSON)
		}
		runResult = res
	}()

	if runResult.runLog.Failed {
		if globals.JSON {
			printFindingsJSON(runResult.runLog)
		} else {
			ui.Errorf("run aborted: %s", runResult.runLog.FailureReason)
		}
		os.Exit(errors.ExitInternal)
	}

	if *saveRunLog {
		writer := runlog.NewWriter(cacheRoot(globals.Root))
		if err := writer.Write(runResult.runLog); err != nil {
			ui.Warningf("could not persist run log: %v", err)
		}
	}

	if globals.JSON {
		printFindingsJSON(runResult.runLog)
	} else {
		printFindingsTerminal(runResult.runLog)
	}

	os.Exit(exitCodeForSummary(string(cfg.General.FailOn), runResult.runLog.Summary))
}

func loadConfigFor(globals GlobalFlags) (*config.Config, error) {
	path := globals.Config
	if path == "" {
		path = filepath.Join(globals.Root, ".revet.toml")
	}
	return config.Load(path)
}
