// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: pattern/options.go
// Summary: Match criteria for find patterns.

package pattern

import "fwviews/config"

// Options selects how text is compared.
type Options struct {
	MatchCase             bool
	MatchWholeWord        bool
	MatchDiacritics       bool
	MatchWritingSystem    bool
	MatchOldWritingSystem bool
	MatchStyles           bool
}

// DefaultOptions ignores case and honours diacritics.
func DefaultOptions() Options {
	return Options{MatchDiacritics: true}
}

// OptionsFromConfig reads the "find_replace" section.
func OptionsFromConfig(cfg config.Config) Options {
	opts := DefaultOptions()
	opts.MatchCase = cfg.GetBool("find_replace", "match_case", opts.MatchCase)
	opts.MatchWholeWord = cfg.GetBool("find_replace", "match_whole_word", opts.MatchWholeWord)
	opts.MatchDiacritics = cfg.GetBool("find_replace", "match_diacritics", opts.MatchDiacritics)
	return opts
}

// propertyCriteria reports whether any property must match.
func (o Options) propertyCriteria() bool {
	return o.MatchWritingSystem || o.MatchOldWritingSystem || o.MatchStyles
}
