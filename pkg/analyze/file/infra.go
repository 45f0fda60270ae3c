// Copyright 2025 KrakLabs
// SPDX-License-Identifier: Apache-2.0

package file

import (
	"regexp"
	"strings"

	"github.com/kraklabs/revet/pkg/analyze"
)

var infraRules = []rule{
	{
		pattern:  regexp.MustCompile(`(?i)^\s*FROM\s+\S+:latest\b`),
		message:  "base image pinned to \"latest\" rather than a fixed tag or digest",
		suggestion: "pin the image to a specific tag or digest for reproducible builds",
		severity: analyze.SeverityWarning,
	},
	{
		pattern:  regexp.MustCompile(`(?i)^\s*USER\s+root\s*$`),
		message:  "container explicitly runs as root",
		severity: analyze.SeverityWarning,
	},
	{
		pattern:  regexp.MustCompile(`(?i)privileged\s*:\s*true`),
		message:  "container/pod spec requests privileged mode",
		severity: analyze.SeverityError,
	},
	{
		pattern:  regexp.MustCompile(`(?i)hostNetwork\s*:\s*true`),
		message:  "pod spec requests host networking",
		severity: analyze.SeverityWarning,
	},
	{
		pattern:  regexp.MustCompile(`(?i)allowPrivilegeEscalation\s*:\s*true`),
		message:  "container explicitly allows privilege escalation",
		severity: analyze.SeverityError,
	},
	{
		pattern:  regexp.MustCompile(`(?i)0\.0\.0\.0/0`),
		message:  "security-group or ingress rule opens to the entire internet",
		severity: analyze.SeverityWarning,
	},
	{
		pattern:  regexp.MustCompile(`(?i)^\s*-\s*(ADD|COPY)\s.*\s--chmod\s*=?\s*777\b`),
		message:  "copied file made world-writable",
		severity: analyze.SeverityWarning,
	},
}

// infraPaths gates this analyzer to the file names infrastructure tools
// actually scan — Dockerfiles, compose files, Kubernetes/Terraform-style
// manifests — since these checks are not language-scoped like the
// others in this package.
func infraPathMatches(path string) bool {
	base := strings.ToLower(path)
	switch {
	case strings.HasSuffix(base, "dockerfile"), strings.Contains(base, "/dockerfile"):
		return true
	case strings.HasSuffix(base, ".yaml"), strings.HasSuffix(base, ".yml"):
		return true
	case strings.HasSuffix(base, ".tf"):
		return true
	default:
		return false
	}
}

// Infra flags infrastructure-as-code misconfigurations in Dockerfiles,
// Kubernetes manifests, and Terraform files.
type Infra struct{}

func (Infra) Name() string   { return "infra" }
func (Infra) Prefix() string { return "INFRA" }

func (Infra) Enabled(cfg analyze.Config) bool {
	return enabledByDefault(cfg, "infra")
}

func (Infra) Analyze(f analyze.File, cfg analyze.Config) []analyze.Finding {
	if !infraPathMatches(f.Path) {
		return nil
	}
	return scanLines(f, "INFRA", infraRules)
}
