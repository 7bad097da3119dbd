// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: config/embedded.go
// Summary: Loads and caches parsed defaults from embedded JSON files.
// The embedded JSON files in defaults/ are the single source of truth.

package config

import (
	"encoding/json"
	"sync"

	"fwviews/defaults"
)

var (
	embeddedSystemOnce sync.Once
	embeddedSystem     Config
	embeddedSystemErr  error

	embeddedTools   = make(map[string]Config)
	embeddedToolsMu sync.RWMutex
)

func embeddedSystemDefaults() (Config, error) {
	embeddedSystemOnce.Do(func() {
		data, err := defaults.SystemConfig()
		if err != nil {
			embeddedSystemErr = err
			return
		}
		var cfg Config
		if err := json.Unmarshal(data, &cfg); err != nil {
			embeddedSystemErr = err
			return
		}
		embeddedSystem = cfg
	})
	return embeddedSystem, embeddedSystemErr
}

func embeddedToolDefaults(tool string) (Config, error) {
	embeddedToolsMu.RLock()
	if cfg, ok := embeddedTools[tool]; ok {
		embeddedToolsMu.RUnlock()
		return cfg, nil
	}
	embeddedToolsMu.RUnlock()

	data, err := defaults.ToolConfig(tool)
	if err != nil {
		// No embedded config for this tool.
		return nil, nil
	}
	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	embeddedToolsMu.Lock()
	embeddedTools[tool] = cfg
	embeddedToolsMu.Unlock()
	return cfg, nil
}

// defaultSystemConfig returns a copy of the embedded system defaults.
func defaultSystemConfig() Config {
	cfg, err := embeddedSystemDefaults()
	if err != nil || cfg == nil {
		return nil
	}
	return Clone(cfg)
}

// defaultToolConfig returns a copy of the embedded tool defaults.
func defaultToolConfig(tool string) Config {
	cfg, err := embeddedToolDefaults(tool)
	if err != nil || cfg == nil {
		return nil
	}
	return Clone(cfg)
}
