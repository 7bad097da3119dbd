// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: config/defaults.go
// Summary: Default values for system and tool configuration files.

package config

func applySystemDefaults(cfg Config) {
	if cfg == nil {
		return
	}
	cfg.RegisterDefaults("datastream", Section{
		"insert_chunk_bytes": 4096,
		"scratch_dir":        "",
	})
	cfg.RegisterDefaults("concordance", Section{
		"initial_context": 150,
		"final_context":   200,
		"bold_item":       true,
	})
	cfg.RegisterDefaults("find_replace", Section{
		"checkpoint_interval": 50,
		"history_limit":       20,
		"match_case":          false,
		"match_whole_word":    false,
		"match_diacritics":    true,
	})
	cfg.RegisterDefaults("settings", Section{
		"db_path": "",
	})
}

func applyToolDefaults(tool string, cfg Config) {
	if cfg == nil {
		return
	}
	switch tool {
	case "fwview":
		cfg.RegisterDefaults("fwview", Section{
			"highlight_style": "monokai",
			"lexer":           "",
			"spelling_marks":  true,
		})
	case "fwfind":
		cfg.RegisterDefaults("fwfind", Section{
			"color":          "auto",
			"preview_lines":  true,
			"max_preview_cx": 0,
		})
	}
}
