// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later

package findrep

import "fwviews/config"

// Options tunes the controller.
type Options struct {
	// CheckpointInterval is the number of replacements between checkpoints.
	CheckpointInterval int
	// HistoryLimit bounds the remembered find strings.
	HistoryLimit int
}

// DefaultOptions checkpoints every 50 replacements.
func DefaultOptions() Options {
	return Options{CheckpointInterval: 50, HistoryLimit: 20}
}

// OptionsFromConfig reads the "find_replace" section.
func OptionsFromConfig(cfg config.Config) Options {
	opts := DefaultOptions()
	opts.CheckpointInterval = cfg.GetInt("find_replace", "checkpoint_interval", opts.CheckpointInterval)
	opts.HistoryLimit = cfg.GetInt("find_replace", "history_limit", opts.HistoryLimit)
	if opts.CheckpointInterval <= 0 {
		opts.CheckpointInterval = DefaultOptions().CheckpointInterval
	}
	return opts
}
