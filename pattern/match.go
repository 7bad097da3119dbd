// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: pattern/match.go
// Summary: Paragraph-level matching in search coordinates.
// Usage: Pattern.matches returns candidate ranges in logical coordinates.

package pattern

import (
	"slices"
	"unicode"
	"unicode/utf8"

	"fwviews/textprops"
	"fwviews/txtsrc"

	"github.com/rivo/uniseg"
	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// folded is normalized text with a map back to the source characters.
type folded struct {
	runes  []rune
	origin []int // source index of each folded rune
	first  []int // first folded rune of each source index, -1 if none
	count  []int // folded runes produced by each source index
}

// folder reduces characters to the form compared by a pattern.
type folder struct {
	opts  Options
	caser cases.Caser
	strip transform.Transformer
}

func newFolder(opts Options) *folder {
	return &folder{
		opts:  opts,
		caser: cases.Fold(),
		strip: transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn))),
	}
}

func (f *folder) fold(s string) string {
	if !f.opts.MatchDiacritics {
		if out, _, err := transform.String(f.strip, s); err == nil {
			s = out
		}
	}
	if !f.opts.MatchCase {
		s = f.caser.String(s)
	}
	return s
}

func (f *folder) foldText(text []rune) folded {
	out := folded{
		first: make([]int, len(text)),
		count: make([]int, len(text)),
	}
	for i, r := range text {
		out.first[i] = -1
		for _, fr := range f.fold(string(r)) {
			if out.first[i] < 0 {
				out.first[i] = len(out.runes)
			}
			out.runes = append(out.runes, fr)
			out.origin = append(out.origin, i)
			out.count[i]++
		}
	}
	return out
}

// wordBounds returns the word segmentation boundaries of text as rune
// offsets.
func wordBounds(text []rune) map[int]bool {
	bounds := map[int]bool{0: true}
	s := string(text)
	pos, state := 0, -1
	for len(s) > 0 {
		var word string
		word, s, state = uniseg.FirstWordInString(s, state)
		pos += utf8.RuneCountInString(word)
		bounds[pos] = true
	}
	return bounds
}

// searchLimToLog maps the end of a search range to a logical limit that
// includes any object whose substitute the range ends inside.
func searchLimToLog(src txtsrc.Source, ich int) int {
	l := src.SearchToLog(ich)
	if src.LogToSearch(l) < ich {
		l++
	}
	return l
}

// propsMatch checks the property criteria against resolved properties.
func (p *Pattern) propsMatch(c textprops.CharRenderProps) bool {
	want := p.find.PropsAt(0)
	if p.opts.MatchWritingSystem && c.WS != want.WS {
		return false
	}
	if p.opts.MatchOldWritingSystem && c.OWS != want.OWS {
		return false
	}
	if p.opts.MatchStyles && c.Style != want.Style {
		return false
	}
	for _, id := range want.Tags {
		if !slices.Contains(c.Tags, id) {
			return false
		}
	}
	return true
}

// rangeProps reports whether every character of the logical range
// satisfies the property criteria.
func (p *Pattern) rangeProps(src txtsrc.Source, logMin, logLim int) (bool, error) {
	if !p.checksProps() {
		return true, nil
	}
	ren, renLim := src.LogToRen(logMin), src.LogToRen(logLim)
	for ren < renLim {
		c, _, lim, err := src.CharProps(ren)
		if err != nil {
			return false, err
		}
		if !p.propsMatch(c) {
			return false, nil
		}
		ren = max(lim, ren+1)
	}
	return true, nil
}

func (p *Pattern) checksProps() bool {
	return p.opts.propertyCriteria() || len(p.find.PropsAt(0).Tags) > 0
}

// matches returns every candidate match in src as logical ranges ordered
// by start. Candidates may overlap.
func (p *Pattern) matches(src txtsrc.Source) ([]txtsrc.Range, error) {
	if p.find.Len() == 0 {
		return p.formatMatches(src)
	}
	text, err := src.FetchSearch(0, src.LengthSearch())
	if err != nil {
		return nil, err
	}
	f := newFolder(p.opts)
	ft := f.foldText(text)
	pat := []rune(f.fold(p.find.Text()))
	if len(pat) == 0 {
		return nil, nil
	}
	var bounds map[int]bool
	if p.opts.MatchWholeWord {
		bounds = wordBounds(text)
	}

	var out []txtsrc.Range
	for k := 0; k+len(pat) <= len(ft.runes); k++ {
		if !slices.Equal(ft.runes[k:k+len(pat)], pat) {
			continue
		}
		s, last := ft.origin[k], ft.origin[k+len(pat)-1]
		// Matches must cover whole source characters.
		if ft.first[s] != k || ft.first[last]+ft.count[last] != k+len(pat) {
			continue
		}
		e := last + 1
		for e < len(text) && ft.count[e] == 0 {
			e++
		}
		if bounds != nil && (!bounds[s] || !bounds[e]) {
			continue
		}
		logMin, logLim := src.SearchToLog(s), searchLimToLog(src, e)
		if logMin >= logLim {
			continue
		}
		ok, err := p.rangeProps(src, logMin, logLim)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, txtsrc.Range{Min: logMin, Lim: logLim})
		}
	}
	return out, nil
}

// formatMatches returns maximal runs satisfying the property criteria.
// Without criteria an empty pattern matches nothing.
func (p *Pattern) formatMatches(src txtsrc.Source) ([]txtsrc.Range, error) {
	if !p.checksProps() {
		return nil, nil
	}
	var out []txtsrc.Range
	start := -1
	n := src.Length()
	flush := func(lim int) {
		if start >= 0 {
			lo, hi := src.RenToLog(start), src.RenToLog(lim)
			if lo < hi {
				out = append(out, txtsrc.Range{Min: lo, Lim: hi})
			}
			start = -1
		}
	}
	for ren := 0; ren < n; {
		c, _, lim, err := src.CharProps(ren)
		if err != nil {
			return nil, err
		}
		lim = min(max(lim, ren+1), n)
		if p.propsMatch(c) {
			if start < 0 {
				start = ren
			}
		} else {
			flush(ren)
		}
		ren = lim
	}
	flush(n)
	return out, nil
}
