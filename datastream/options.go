// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: datastream/options.go
// Summary: Stream configuration and its config-store view.

package datastream

import "fwviews/config"

// DefaultInsertChunkBytes caps the size of the in-memory insertion chunk.
const DefaultInsertChunkBytes = 4096

// Options configures a Stream.
type Options struct {
	// InsertChunkBytes caps the in-memory insertion chunk. Larger inserts go
	// straight to the backing store.
	InsertChunkBytes int

	// ScratchDir holds the scratch file. Empty keeps flushed data in memory.
	ScratchDir string
}

// DefaultOptions returns in-memory backing with a 4 KiB insertion chunk.
func DefaultOptions() Options {
	return Options{InsertChunkBytes: DefaultInsertChunkBytes}
}

// OptionsFromConfig reads the "datastream" section.
func OptionsFromConfig(cfg config.Config) Options {
	opts := DefaultOptions()
	opts.InsertChunkBytes = cfg.GetInt("datastream", "insert_chunk_bytes", opts.InsertChunkBytes)
	opts.ScratchDir = cfg.GetString("datastream", "scratch_dir", opts.ScratchDir)
	if opts.InsertChunkBytes <= 0 {
		opts.InsertChunkBytes = DefaultInsertChunkBytes
	}
	return opts
}
