// Copyright 2026 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-only

package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKindConstructors(t *testing.T) {
	underlying := fmt.Errorf("boom")

	tests := []struct {
		name        string
		constructor func() *UserError
		wantCode    int
	}{
		{"NewDiscoveryError", func() *UserError { return NewDiscoveryError("m", "c", "f", underlying) }, ExitDiscovery},
		{"NewParseError", func() *UserError { return NewParseError("m", "c", "f", underlying) }, ExitParse},
		{"NewResolutionError", func() *UserError { return NewResolutionError("m", "c", "f", underlying) }, ExitResolution},
		{"NewCacheError", func() *UserError { return NewCacheError("m", "c", "f", underlying) }, ExitCache},
		{"NewGitError", func() *UserError { return NewGitError("m", "c", "f", underlying) }, ExitGit},
		{"NewAnalyzerError", func() *UserError { return NewAnalyzerError("m", "c", "f", underlying) }, ExitAnalyzer},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.constructor()
			assert.Equal(t, "m", got.Message)
			assert.Equal(t, "c", got.Cause)
			assert.Equal(t, "f", got.Fix)
			assert.Equal(t, tt.wantCode, got.ExitCode)
			assert.Equal(t, underlying, got.Err)
		})
	}
}

func TestKindExitCodesAreUniqueFromCLICodes(t *testing.T) {
	cliCodes := []int{ExitSuccess, ExitConfig, ExitDatabase, ExitNetwork, ExitInput, ExitPermission, ExitNotFound, ExitInternal}
	kindCodes := []int{ExitDiscovery, ExitParse, ExitResolution, ExitCache, ExitGit, ExitAnalyzer}

	seen := make(map[int]bool)
	for _, c := range cliCodes {
		seen[c] = true
	}
	for _, c := range kindCodes {
		assert.False(t, seen[c], "kind exit code %d collides with a CLI exit code", c)
		seen[c] = true
	}
}

func TestNewKindErrorUnknownKindFallsBackToInternal(t *testing.T) {
	got := NewKindError(Kind("bogus"), "m", "c", "f", nil)
	assert.Equal(t, ExitInternal, got.ExitCode)
}

func TestInvariantError_Error(t *testing.T) {
	withErr := &InvariantError{Invariant: "graph: dangling node", Err: fmt.Errorf("nil lookup")}
	assert.Equal(t, "invariant violated: graph: dangling node: nil lookup", withErr.Error())

	withoutErr := &InvariantError{Invariant: "graph: dangling node"}
	assert.Equal(t, "invariant violated: graph: dangling node", withoutErr.Error())
}

func TestInvariantError_Unwrap(t *testing.T) {
	sentinel := fmt.Errorf("sentinel")
	wrapped := &InvariantError{Invariant: "x", Err: sentinel}
	assert.True(t, errors.Is(wrapped, sentinel))
}

func TestRecover_FromError(t *testing.T) {
	sentinel := fmt.Errorf("sentinel panic")
	got := Recover(sentinel, "pipeline: merge phase")
	require.NotNil(t, got)
	assert.Equal(t, "pipeline: merge phase", got.Invariant)
	assert.Equal(t, sentinel, got.Err)
}

func TestRecover_FromNonError(t *testing.T) {
	got := Recover("index out of range [3] with length 2", "resolver: alias table")
	require.NotNil(t, got)
	assert.Equal(t, "resolver: alias table", got.Invariant)
	require.Error(t, got.Err)
	assert.Contains(t, got.Err.Error(), "index out of range")
}

func TestInvariantError_AsUserError(t *testing.T) {
	inv := &InvariantError{Invariant: "dispatcher: prefix mismatch", Err: fmt.Errorf("boom")}
	ue := inv.AsUserError()
	require.NotNil(t, ue)
	assert.Equal(t, ExitInternal, ue.ExitCode)
	assert.Equal(t, "dispatcher: prefix mismatch", ue.Cause)
	assert.ErrorIs(t, ue, ue.Err)
}

func TestRecoverIntegratesWithDeferredPanic(t *testing.T) {
	var runErr error
	func() {
		defer func() {
			if r := recover(); r != nil {
				runErr = Recover(r, "analyzer dispatch")
			}
		}()
		panic("unexpected nil graph")
	}()

	require.Error(t, runErr)
	var inv *InvariantError
	require.True(t, errors.As(runErr, &inv))
	assert.Equal(t, "analyzer dispatch", inv.Invariant)
}
