// Copyright 2025 KrakLabs
// SPDX-License-Identifier: Apache-2.0

package graph

import "github.com/kraklabs/revet/pkg/analyze"

// enabledByDefault reports whether a module is active given cfg: absent
// from EnabledModules (nil map or missing key) defaults to enabled, an
// explicit false opts a module out.
func enabledByDefault(cfg analyze.Config, name string) bool {
	if cfg.EnabledModules == nil {
		return true
	}
	v, ok := cfg.EnabledModules[name]
	if !ok {
		return true
	}
	return v
}
