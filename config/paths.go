// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: config/paths.go
// Summary: Path helpers for fwviews configuration and data files.

package config

import (
	"fmt"
	"os"
	"path/filepath"
)

func (s *Store) configRoot() (string, error) {
	if s.root != "" {
		return s.root, nil
	}
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "fwviews"), nil
}

func (s *Store) systemConfigPath() (string, error) {
	root, err := s.configRoot()
	if err != nil {
		return "", err
	}
	return filepath.Join(root, systemConfigName), nil
}

func (s *Store) toolConfigPath(tool string) (string, error) {
	if tool == "" {
		return "", fmt.Errorf("tool name is required")
	}
	root, err := s.configRoot()
	if err != nil {
		return "", err
	}
	return filepath.Join(root, "tools", tool, "config.json"), nil
}

// DataPath resolves name against the config root unless it is absolute.
func (s *Store) DataPath(name string) (string, error) {
	if filepath.IsAbs(name) {
		return name, nil
	}
	root, err := s.configRoot()
	if err != nil {
		return "", err
	}
	return filepath.Join(root, name), nil
}

// SettingsDBPath returns the SQLite settings database location from the
// settings.db_path key, defaulting to settings.db in the config root.
func (s *Store) SettingsDBPath() (string, error) {
	name := s.System().GetString("settings", "db_path", "")
	if name == "" {
		name = "settings.db"
	}
	return s.DataPath(name)
}
