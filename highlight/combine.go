// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later

package highlight

import (
	"slices"
	"strings"
	"unicode"

	"github.com/rivo/uniseg"

	"fwviews/textprops"
	"fwviews/tsstring"
	"fwviews/txtsrc"
)

// overlay returns base with the set fields of top applied.
func overlay(base, top textprops.Partial) textprops.Partial {
	if top.ForeColor.IsSet() {
		base.ForeColor = top.ForeColor
	}
	if top.BackColor.IsSet() {
		base.BackColor = top.BackColor
	}
	if top.UnderColor.IsSet() {
		base.UnderColor = top.UnderColor
	}
	if top.Underline != tsstring.UnderlineUnset {
		base.Underline = top.Underline
	}
	if top.Bold != tsstring.ToggleUnset {
		base.Bold = top.Bold
	}
	if top.Italic != tsstring.ToggleUnset {
		base.Italic = top.Italic
	}
	return base
}

func propsAt(list []txtsrc.DispPropOverride, ich int) textprops.Partial {
	for _, d := range list {
		if d.Min <= ich && ich < d.Lim {
			return d.Props
		}
	}
	return textprops.Partial{}
}

// Combine layers top over base. Both lists must be sorted and
// non-overlapping; so is the result.
func Combine(base, top []txtsrc.DispPropOverride) []txtsrc.DispPropOverride {
	if len(top) == 0 {
		return base
	}
	if len(base) == 0 {
		return top
	}
	var cuts []int
	for _, list := range [][]txtsrc.DispPropOverride{base, top} {
		for _, d := range list {
			cuts = append(cuts, d.Min, d.Lim)
		}
	}
	slices.Sort(cuts)
	cuts = slices.Compact(cuts)

	var out []txtsrc.DispPropOverride
	for i := 0; i+1 < len(cuts); i++ {
		lo, hi := cuts[i], cuts[i+1]
		p := overlay(propsAt(base, lo), propsAt(top, lo))
		if p.IsZero() {
			continue
		}
		if k := len(out) - 1; k >= 0 && out[k].Lim == lo && out[k].Props == p {
			out[k].Lim = hi
			continue
		}
		out = append(out, txtsrc.DispPropOverride{Min: lo, Lim: hi, Props: p})
	}
	return out
}

// DoubledWords returns the rune ranges of words that repeat the word
// before them, ignoring case.
func DoubledWords(text string) []txtsrc.Range {
	var out []txtsrc.Range
	prev := ""
	pos := 0
	state := -1
	rest := text
	for len(rest) > 0 {
		var word string
		word, rest, state = uniseg.FirstWordInString(rest, state)
		n := len([]rune(word))
		switch {
		case isWord(word):
			if prev != "" && strings.EqualFold(word, prev) {
				out = append(out, txtsrc.Range{Min: pos, Lim: pos + n})
			}
			prev = word
		case strings.TrimSpace(word) != "":
			prev = ""
		}
		pos += n
	}
	return out
}

func isWord(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return true
		}
	}
	return false
}
