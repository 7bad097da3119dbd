// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: config/config.go
// Summary: System + tool configuration store for fwviews.

package config

import (
	"encoding/json"
	"log"
	"os"
	"path/filepath"
	"sync"
)

const systemConfigName = "fwviews.json"

// Config stores configuration sections as JSON-compatible data.
type Config map[string]interface{}

// Section stores key/value pairs for a configuration section.
type Section map[string]interface{}

// Store owns the system config and the per-tool configs rooted at one
// directory. It is safe for concurrent use.
type Store struct {
	root string

	mu      sync.RWMutex
	system  Config
	tools   map[string]Config
	loadErr error
}

// NewStore loads the system config under root. An empty root resolves to
// the user config directory.
func NewStore(root string) *Store {
	s := &Store{root: root, tools: make(map[string]Config)}
	s.mu.Lock()
	s.loadErr = s.loadSystemLocked()
	s.mu.Unlock()
	return s
}

// Root returns the directory holding the config files.
func (s *Store) Root() (string, error) {
	return s.configRoot()
}

// Err returns the most recent system config load error.
func (s *Store) Err() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loadErr
}

// System returns the system configuration (fwviews.json).
func (s *Store) System() Config {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.system
}

// Tool returns the config for a named tool (tools/<tool>/config.json).
func (s *Store) Tool(name string) Config {
	if name == "" {
		return nil
	}
	s.mu.RLock()
	cfg := s.tools[name]
	s.mu.RUnlock()
	if cfg != nil {
		return cfg
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if cfg, ok := s.tools[name]; ok {
		return cfg
	}
	loaded, err := s.loadToolLocked(name)
	if err != nil {
		log.Printf("Config: Failed to load tool %q config: %v", name, err)
		loaded = make(Config)
		applyToolDefaults(name, loaded)
	}
	s.tools[name] = loaded
	return loaded
}

// Reload refreshes the system config and every cached tool config.
func (s *Store) Reload() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.loadErr = s.loadSystemLocked()
	for name := range s.tools {
		loaded, err := s.loadToolLocked(name)
		if err != nil {
			log.Printf("Config: Failed to reload tool %q config: %v", name, err)
			continue
		}
		s.tools[name] = loaded
	}
	return s.loadErr
}

// SaveSystem persists the current system config to disk.
func (s *Store) SaveSystem() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	path, err := s.systemConfigPath()
	if err != nil {
		return err
	}
	return writeConfig(path, s.system)
}

// SaveTool persists a named tool config to disk.
func (s *Store) SaveTool(name string) error {
	if name == "" {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	cfg := s.tools[name]
	if cfg == nil {
		cfg = make(Config)
		applyToolDefaults(name, cfg)
		s.tools[name] = cfg
	}
	path, err := s.toolConfigPath(name)
	if err != nil {
		return err
	}
	return writeConfig(path, cfg)
}

// SetSystem replaces the in-memory system config.
func (s *Store) SetSystem(cfg Config) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if cfg == nil {
		cfg = make(Config)
	}
	s.system = Clone(cfg)
}

// SetTool replaces the in-memory config of a tool.
func (s *Store) SetTool(name string, cfg Config) {
	if name == "" {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if cfg == nil {
		cfg = make(Config)
	}
	s.tools[name] = Clone(cfg)
}

func readConfig(path string) (Config, bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, err
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, true, err
	}
	return cfg, true, nil
}

func writeConfig(path string, cfg Config) error {
	if cfg == nil {
		cfg = make(Config)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
