// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: tsstring/string.go
// Summary: Immutable formatted string made of maximal property runs.
// Usage: Paragraph contents, find/replace patterns and substitute text.

package tsstring

import (
	"fmt"
	"sort"
	"strings"
)

// Run is a maximal range of characters sharing the same properties.
type Run struct {
	Min, Lim int
	Props    Props
}

// Len is the number of characters covered by the run.
func (r Run) Len() int { return r.Lim - r.Min }

// String is an immutable sequence of characters partitioned into runs.
// Adjacent runs never have equal properties. An empty string keeps one empty
// run so that its properties survive.
type String struct {
	text []rune
	runs []Run
}

// New builds a single-run string.
func New(text string, props Props) *String {
	rs := []rune(text)
	props.Tags = SortTags(props.Tags)
	return &String{
		text: rs,
		runs: []Run{{Min: 0, Lim: len(rs), Props: props}},
	}
}

// Empty returns a zero-length string carrying props.
func Empty(props Props) *String {
	return New("", props)
}

// Len returns the number of characters.
func (s *String) Len() int {
	if s == nil {
		return 0
	}
	return len(s.text)
}

// Text returns the characters as a Go string.
func (s *String) Text() string {
	if s == nil {
		return ""
	}
	return string(s.text)
}

// Runes returns a copy of the characters.
func (s *String) Runes() []rune {
	if s == nil {
		return nil
	}
	return append([]rune(nil), s.text...)
}

// RuneAt returns the character at ich.
func (s *String) RuneAt(ich int) rune { return s.text[ich] }

// Fetch copies characters [ichMin, ichLim).
func (s *String) Fetch(ichMin, ichLim int) ([]rune, error) {
	if ichMin < 0 || ichMin > ichLim || ichLim > s.Len() {
		return nil, fmt.Errorf("fetch [%d,%d) of %d: %w", ichMin, ichLim, s.Len(), ErrOutOfRange)
	}
	return append([]rune(nil), s.text[ichMin:ichLim]...), nil
}

// RunCount returns the number of runs.
func (s *String) RunCount() int {
	if s == nil {
		return 0
	}
	return len(s.runs)
}

// Run returns run i.
func (s *String) Run(i int) Run {
	r := s.runs[i]
	r.Props = r.Props.Clone()
	return r
}

// RunAt returns the index of the run containing ich. ich == Len() maps to the
// last run.
func (s *String) RunAt(ich int) int {
	if ich >= len(s.text) {
		return len(s.runs) - 1
	}
	if ich < 0 {
		return 0
	}
	return sort.Search(len(s.runs), func(i int) bool { return s.runs[i].Lim > ich })
}

// PropsAt returns the properties of the character at ich.
func (s *String) PropsAt(ich int) Props {
	if s == nil || len(s.runs) == 0 {
		return Props{}
	}
	return s.runs[s.RunAt(ich)].Props.Clone()
}

// Slice returns the substring [ichMin, ichLim) with its runs.
func (s *String) Slice(ichMin, ichLim int) (*String, error) {
	if ichMin < 0 || ichMin > ichLim || ichLim > s.Len() {
		return nil, fmt.Errorf("slice [%d,%d) of %d: %w", ichMin, ichLim, s.Len(), ErrOutOfRange)
	}
	out := &String{text: append([]rune(nil), s.text[ichMin:ichLim]...)}
	if ichMin == ichLim {
		out.runs = []Run{{Props: s.PropsAt(ichMin)}}
		return out, nil
	}
	for _, r := range s.runs {
		lo, hi := max(r.Min, ichMin), min(r.Lim, ichLim)
		if lo >= hi {
			continue
		}
		out.runs = append(out.runs, Run{Min: lo - ichMin, Lim: hi - ichMin, Props: r.Props.Clone()})
	}
	return out, nil
}

// Equal compares text and runs.
func (s *String) Equal(o *String) bool {
	if s.Len() != o.Len() || s.RunCount() != o.RunCount() {
		return false
	}
	if s.Text() != o.Text() {
		return false
	}
	for i := range s.runs {
		a, b := s.runs[i], o.runs[i]
		if a.Min != b.Min || a.Lim != b.Lim || !a.Props.Equal(b.Props) {
			return false
		}
	}
	return true
}

// Builder returns a builder seeded with the contents of s.
func (s *String) Builder() *Builder {
	b := NewBuilder()
	if s != nil {
		b.text = append(b.text, s.text...)
		b.runs = make([]Run, len(s.runs))
		for i, r := range s.runs {
			r.Props = r.Props.Clone()
			b.runs[i] = r
		}
	}
	return b
}

// String renders a debugging form such as "ab[ws=1]|cd[style=Em]".
func (s *String) String() string {
	if s == nil {
		return "<nil>"
	}
	var sb strings.Builder
	for i, r := range s.runs {
		if i > 0 {
			sb.WriteByte('|')
		}
		sb.WriteString(string(s.text[r.Min:r.Lim]))
		var attrs []string
		if r.Props.WS != 0 {
			attrs = append(attrs, fmt.Sprintf("ws=%d", r.Props.WS))
		}
		if r.Props.Style != "" {
			attrs = append(attrs, "style="+r.Props.Style)
		}
		if n := len(r.Props.Tags); n > 0 {
			attrs = append(attrs, fmt.Sprintf("tags=%d", n))
		}
		if r.Props.ObjData.Kind != ObjNone {
			attrs = append(attrs, fmt.Sprintf("obj=%d", r.Props.ObjData.Kind))
		}
		if len(attrs) > 0 {
			sb.WriteString("[" + strings.Join(attrs, ",") + "]")
		}
	}
	return sb.String()
}
