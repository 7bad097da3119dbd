// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: defaults/embedded.go
// Summary: Embedded default configuration files.

package defaults

import (
	"embed"
	"fmt"
)

//go:embed fwviews.json tools/*/config.json
var fs embed.FS

// SystemConfig returns the embedded system config JSON.
func SystemConfig() ([]byte, error) {
	return fs.ReadFile("fwviews.json")
}

// ToolConfig returns the embedded config JSON for the named tool.
func ToolConfig(tool string) ([]byte, error) {
	if tool == "" {
		return nil, fmt.Errorf("tool name is required")
	}
	return fs.ReadFile(fmt.Sprintf("tools/%s/config.json", tool))
}
