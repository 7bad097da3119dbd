// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: config/store.go
// Summary: Load logic for the config store, seeding files from embedded defaults.

package config

import "log"

func (s *Store) loadSystemLocked() error {
	path, err := s.systemConfigPath()
	if err != nil {
		log.Printf("Config: Failed to resolve system config path: %v", err)
		s.system = make(Config)
		applySystemDefaults(s.system)
		return err
	}
	cfg, readErr := loadSeeded(path, defaultSystemConfig)
	applySystemDefaults(cfg)
	s.system = cfg
	return readErr
}

func (s *Store) loadToolLocked(name string) (Config, error) {
	path, err := s.toolConfigPath(name)
	if err != nil {
		return nil, err
	}
	cfg, readErr := loadSeeded(path, func() Config { return defaultToolConfig(name) })
	applyToolDefaults(name, cfg)
	return cfg, readErr
}

// loadSeeded reads path. A missing or empty file is replaced by the embedded
// defaults, which are written back so users have a file to edit.
func loadSeeded(path string, seed func() Config) (Config, error) {
	cfg, exists, readErr := readConfig(path)
	if readErr != nil {
		log.Printf("Config: Failed to read config %s: %v", path, readErr)
		return make(Config), readErr
	}
	if exists && len(cfg) > 0 {
		log.Printf("Config: Loaded config from %s", path)
		return cfg, nil
	}
	cfg = seed()
	if cfg == nil {
		return make(Config), nil
	}
	if err := writeConfig(path, cfg); err != nil {
		log.Printf("Config: Failed to write default config %s: %v", path, err)
		return cfg, err
	}
	return cfg, nil
}
