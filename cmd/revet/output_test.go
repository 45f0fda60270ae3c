// Copyright 2025 KrakLabs
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"testing"

	"github.com/kraklabs/revet/pkg/suppress"
)

func TestExitCodeForSummary(t *testing.T) {
	tests := []struct {
		name    string
		failOn  string
		summary suppress.Summary
		want    int
	}{
		{"never always zero", "never", suppress.Summary{Errors: 5}, 0},
		{"error threshold trips only on errors", "error", suppress.Summary{Warnings: 3}, 0},
		{"error threshold trips on one error", "error", suppress.Summary{Errors: 1}, 1},
		{"warning threshold trips on warnings", "warning", suppress.Summary{Warnings: 1}, 1},
		{"warning threshold ignores info", "warning", suppress.Summary{Info: 4}, 0},
		{"info threshold trips on info", "info", suppress.Summary{Info: 1}, 1},
		{"info threshold zero when nothing kept", "info", suppress.Summary{Suppressed: 9}, 0},
		{"unknown fail_on behaves like error", "", suppress.Summary{Errors: 1}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := exitCodeForSummary(tt.failOn, tt.summary)
			if got != tt.want {
				t.Fatalf("exitCodeForSummary(%q, %+v) = %d, want %d", tt.failOn, tt.summary, got, tt.want)
			}
		})
	}
}
