// Copyright 2025 KrakLabs
// SPDX-License-Identifier: Apache-2.0

package file

import (
	"regexp"

	"github.com/kraklabs/revet/pkg/analyze"
)

var mlPatternRules = []rule{
	{
		pattern:  regexp.MustCompile(`(?i)\.fit\s*\(\s*X\s*,\s*y\s*\)`),
		message:  "model fit on the full dataset with no train/test split in scope",
		suggestion: "split into train/validation/test sets before fitting",
		severity: analyze.SeverityWarning,
		langs:    []string{"python"},
	},
	{
		pattern:  regexp.MustCompile(`(?i)random_state\s*=\s*None\b`),
		message:  "unset random_state makes the run non-reproducible",
		severity: analyze.SeverityInfo,
		langs:    []string{"python"},
	},
	{
		pattern:  regexp.MustCompile(`(?i)\btorch\.manual_seed\b`),
		message:  "seeding torch without also seeding numpy/random leaves partial nondeterminism",
		severity: analyze.SeverityInfo,
		langs:    []string{"python"},
	},
	{
		pattern:  regexp.MustCompile(`(?i)StandardScaler\(\)\.fit\s*\(\s*(X_test|test)`),
		message:  "scaler fit on test data leaks test distribution into preprocessing",
		suggestion: "fit the scaler on training data only, then transform test data with it",
		severity: analyze.SeverityError,
		langs:    []string{"python"},
	},
	{
		pattern:  regexp.MustCompile(`(?i)\.fit_transform\s*\(\s*(X_test|test_data|X_val)`),
		message:  "fit_transform called on held-out data, leaking its statistics into the fitted transform",
		severity: analyze.SeverityError,
		langs:    []string{"python"},
	},
	{
		pattern:  regexp.MustCompile(`(?i)eval\(\)\s*$`),
		message:  "model switched to eval() without a corresponding train() elsewhere in scope",
		severity: analyze.SeverityInfo,
		langs:    []string{"python"},
	},
}

// MLPatterns flags common machine-learning pitfalls: data leakage
// between train/test splits, unset random seeds, and eval/train-mode
// mismatches.
type MLPatterns struct{}

func (MLPatterns) Name() string   { return "mlpatterns" }
func (MLPatterns) Prefix() string { return "ML" }

func (MLPatterns) Enabled(cfg analyze.Config) bool {
	return enabledByDefault(cfg, "mlpatterns")
}

func (MLPatterns) Analyze(f analyze.File, cfg analyze.Config) []analyze.Finding {
	return scanLines(f, "ML", mlPatternRules)
}
