// Copyright 2025 KrakLabs
// SPDX-License-Identifier: Apache-2.0

package file

import (
	"regexp"

	"github.com/kraklabs/revet/pkg/analyze"
)

var secretRules = []rule{
	{
		pattern:  regexp.MustCompile(`AKIA[0-9A-Z]{16}`),
		message:  "hardcoded AWS access key ID",
		severity: analyze.SeverityError,
	},
	{
		pattern:  regexp.MustCompile(`(?i)aws_secret_access_key\s*[:=]\s*["'][A-Za-z0-9/+=]{40}["']`),
		message:  "hardcoded AWS secret access key",
		severity: analyze.SeverityError,
	},
	{
		pattern:  regexp.MustCompile(`-----BEGIN (RSA |EC |OPENSSH |)PRIVATE KEY-----`),
		message:  "embedded private key material",
		severity: analyze.SeverityError,
	},
	{
		pattern:  regexp.MustCompile(`(?i)(api[_-]?key|secret|token|password|passwd)\s*[:=]\s*["'][A-Za-z0-9_\-./+=]{12,}["']`),
		message:  "hardcoded credential-shaped literal",
		severity: analyze.SeverityError,
	},
	{
		pattern:  regexp.MustCompile(`ghp_[A-Za-z0-9]{36}`),
		message:  "hardcoded GitHub personal access token",
		severity: analyze.SeverityError,
	},
	{
		pattern:  regexp.MustCompile(`sk-[A-Za-z0-9]{20,}`),
		message:  "hardcoded API secret key",
		severity: analyze.SeverityError,
	},
	{
		pattern:  regexp.MustCompile(`(?i)://[^:/\s]+:[^@/\s]+@`),
		message:  "credentials embedded in connection URL",
		severity: analyze.SeverityWarning,
	},
}

// Secrets flags hardcoded credentials: cloud access keys, private key
// blocks, generic API-key/password literals, and userinfo embedded in
// connection URLs.
type Secrets struct{}

func (Secrets) Name() string   { return "secrets" }
func (Secrets) Prefix() string { return "SEC" }

func (Secrets) Enabled(cfg analyze.Config) bool {
	return enabledByDefault(cfg, "secrets")
}

func (Secrets) Analyze(f analyze.File, cfg analyze.Config) []analyze.Finding {
	return scanLines(f, "SEC", secretRules)
}
