// Copyright 2025 KrakLabs
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0

// Package main implements the revet CLI: a thin driver over the core
// parse/analyze/suppress pipeline in pkg/.
//
// Usage:
//
//	revet review [--diff] [--base REF] [--full] [--json]   Analyze a repo
//	revet baseline                                          Snapshot current findings
//	revet runs [--show ID]                                  List or show past run logs
package main

import (
	"flag"
	"fmt"
	"os"
)

var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// GlobalFlags are options every subcommand accepts, threaded through
// explicitly rather than via package-level state.
type GlobalFlags struct {
	JSON    bool
	Quiet   bool
	NoColor bool
	Verbose int
	Config  string
	Root    string
}

func main() {
	var (
		showVersion = flag.Bool("version", false, "Show version and exit")
	)

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, `revet - static review core CLI

Usage:
  revet <command> [options]

Commands:
  review     Parse and analyze a repository, emitting findings and a run log
  baseline   Snapshot the current finding set so future runs treat it as known
  runs       List or inspect previously written run logs

Global Options:
  --version  Show version and exit

Run 'revet <command> --help' for per-command options.
`)
	}

	flag.Parse()

	if *showVersion {
		fmt.Printf("revet version %s\n", version)
		fmt.Printf("commit: %s\n", commit)
		fmt.Printf("built: %s\n", date)
		os.Exit(0)
	}

	args := flag.Args()
	if len(args) == 0 {
		flag.Usage()
		os.Exit(1)
	}

	command := args[0]
	cmdArgs := args[1:]

	switch command {
	case "review":
		runReview(cmdArgs)
	case "baseline":
		runBaseline(cmdArgs)
	case "runs":
		runRuns(cmdArgs)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		flag.Usage()
		os.Exit(1)
	}
}
