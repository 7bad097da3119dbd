// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: tsstring/builder.go
// Summary: Mutable builder producing normalized formatted strings.

package tsstring

import (
	"errors"
	"fmt"
	"slices"
)

// ErrOutOfRange is returned when a character range falls outside a string.
var ErrOutOfRange = errors.New("tsstring: range out of bounds")

// Builder accumulates edits and produces an immutable String. Its runs may be
// fragmented while editing; String() merges them.
type Builder struct {
	text []rune
	runs []Run
}

// NewBuilder returns an empty builder.
func NewBuilder() *Builder {
	return &Builder{runs: []Run{{}}}
}

// Len returns the current number of characters.
func (b *Builder) Len() int { return len(b.text) }

func (b *Builder) check(ichMin, ichLim int) error {
	if ichMin < 0 || ichMin > ichLim || ichLim > len(b.text) {
		return fmt.Errorf("builder [%d,%d) of %d: %w", ichMin, ichLim, len(b.text), ErrOutOfRange)
	}
	return nil
}

func (b *Builder) propsAt(ich int) Props {
	for _, r := range b.runs {
		if ich < r.Lim || (r.Min == r.Lim && ich == r.Min) {
			return r.Props
		}
	}
	return b.runs[len(b.runs)-1].Props
}

// Append adds text at the end with the given properties.
func (b *Builder) Append(text string, props Props) *Builder {
	n := len(b.text)
	_ = b.Replace(n, n, text, &props)
	return b
}

// Replace substitutes [ichMin, ichLim) with text. A nil props gives the new
// text the properties of the character before ichMin, or of the first
// character when inserting at the start.
func (b *Builder) Replace(ichMin, ichLim int, text string, props *Props) error {
	if err := b.check(ichMin, ichLim); err != nil {
		return err
	}
	var p Props
	switch {
	case props != nil:
		p = props.Clone()
	case ichMin > 0:
		p = b.propsAt(ichMin - 1).Clone()
	default:
		p = b.propsAt(0).Clone()
	}
	rs := []rune(text)
	b.splice(ichMin, ichLim, rs, []Run{{Min: 0, Lim: len(rs), Props: p}})
	return nil
}

// ReplaceString substitutes [ichMin, ichLim) with s, keeping its runs.
func (b *Builder) ReplaceString(ichMin, ichLim int, s *String) error {
	if err := b.check(ichMin, ichLim); err != nil {
		return err
	}
	if s == nil {
		s = Empty(b.propsAt(ichMin))
	}
	runs := make([]Run, len(s.runs))
	for i, r := range s.runs {
		r.Props = r.Props.Clone()
		runs[i] = r
	}
	b.splice(ichMin, ichLim, s.text, runs)
	return nil
}

// SetProps replaces the properties of [ichMin, ichLim).
func (b *Builder) SetProps(ichMin, ichLim int, props Props) error {
	return b.ModifyProps(ichMin, ichLim, func(p *Props) { *p = props.Clone() })
}

// ModifyProps applies fn to the properties of every run piece inside
// [ichMin, ichLim).
func (b *Builder) ModifyProps(ichMin, ichLim int, fn func(*Props)) error {
	if err := b.check(ichMin, ichLim); err != nil {
		return err
	}
	if ichMin == ichLim {
		if len(b.text) == 0 {
			fn(&b.runs[0].Props)
		}
		return nil
	}
	b.splitAt(ichMin)
	b.splitAt(ichLim)
	for i := range b.runs {
		r := &b.runs[i]
		if r.Min >= ichMin && r.Lim <= ichLim && r.Min < r.Lim {
			fn(&r.Props)
		}
	}
	return nil
}

// String returns the normalized immutable string.
func (b *Builder) String() *String {
	s := &String{text: append([]rune(nil), b.text...)}
	s.runs = normalizeRuns(b.runs, len(b.text))
	return s
}

func (b *Builder) splitAt(ich int) {
	for i, r := range b.runs {
		if r.Min < ich && ich < r.Lim {
			left := Run{Min: r.Min, Lim: ich, Props: r.Props.Clone()}
			b.runs[i].Min = ich
			b.runs = slices.Insert(b.runs, i, left)
			return
		}
	}
}

func (b *Builder) splice(ichMin, ichLim int, text []rune, ins []Run) {
	delta := len(text) - (ichLim - ichMin)
	fallback := b.propsAt(ichMin)

	var runs []Run
	for _, r := range b.runs {
		if lo, hi := r.Min, min(r.Lim, ichMin); lo < hi {
			runs = append(runs, Run{Min: lo, Lim: hi, Props: r.Props})
		}
	}
	for _, r := range ins {
		runs = append(runs, Run{Min: r.Min + ichMin, Lim: r.Lim + ichMin, Props: r.Props})
	}
	for _, r := range b.runs {
		if lo, hi := max(r.Min, ichLim), r.Lim; lo < hi {
			runs = append(runs, Run{Min: lo + delta, Lim: hi + delta, Props: r.Props})
		}
	}

	b.text = slices.Replace(b.text, ichMin, ichLim, text...)
	if len(b.text) == 0 {
		p := fallback
		if len(ins) > 0 {
			p = ins[0].Props
		}
		b.runs = []Run{{Props: p}}
		return
	}
	b.runs = runs
}

// normalizeRuns drops empty runs and merges equal neighbours.
func normalizeRuns(in []Run, n int) []Run {
	if n == 0 {
		p := Props{}
		if len(in) > 0 {
			p = in[0].Props.Clone()
		}
		return []Run{{Props: p}}
	}
	out := make([]Run, 0, len(in))
	for _, r := range in {
		if r.Min >= r.Lim {
			continue
		}
		if k := len(out); k > 0 && out[k-1].Lim == r.Min && out[k-1].Props.Equal(r.Props.WithTags(r.Props.Tags...)) {
			out[k-1].Lim = r.Lim
			continue
		}
		r.Props.Tags = SortTags(r.Props.Tags)
		out = append(out, r)
	}
	return out
}
