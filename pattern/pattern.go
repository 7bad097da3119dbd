// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: pattern/pattern.go
// Summary: Find pattern searching a document of paragraph text sources.
// Usage: The find/replace controller drives Find, FindFrom and NextMatch and
// installs the resulting selection in the host view.

package pattern

import (
	"errors"
	"fmt"

	"fwviews/tsstring"
	"fwviews/txtsrc"
)

var (
	// ErrAborted reports a search stopped through its AbortSignal.
	ErrAborted = errors.New("pattern: search aborted")
	// ErrNoMatch reports an operation that needs a current match.
	ErrNoMatch = errors.New("pattern: no current match")
)

// Root is a document searched paragraph by paragraph.
type Root interface {
	ParagraphCount() int
	ParagraphSource(i int) txtsrc.Source
}

// Selection is a logical character range in one paragraph.
type Selection struct {
	Para     int
	Min, Lim int
}

// IsInsertion reports whether the selection is empty.
func (s Selection) IsInsertion() bool { return s.Min == s.Lim }

// Selector receives a match to display as the current selection.
type Selector interface {
	SetSelection(sel Selection) error
}

// Pattern holds a find string, an optional replacement and the last match.
type Pattern struct {
	find  *tsstring.String
	repl  *tsstring.String
	opts  Options
	abort *AbortSignal

	sel   Selection
	found bool
}

// New returns a pattern searching for find. A nil find is an empty pattern.
func New(find *tsstring.String, opts Options) *Pattern {
	if find == nil {
		find = tsstring.Empty(tsstring.Props{})
	}
	return &Pattern{find: find, opts: opts}
}

// FindString returns the find string.
func (p *Pattern) FindString() *tsstring.String { return p.find }

// FindText returns the plain text of the find string.
func (p *Pattern) FindText() string { return p.find.Text() }

// Options returns the match criteria.
func (p *Pattern) Options() Options { return p.opts }

// SetReplacement sets the replacement string.
func (p *Pattern) SetReplacement(repl *tsstring.String) { p.repl = repl }

// Replacement returns the replacement string, never nil.
func (p *Pattern) Replacement() *tsstring.String {
	if p.repl == nil {
		return tsstring.Empty(tsstring.Props{})
	}
	return p.repl
}

// SetAbort installs the signal polled between paragraphs.
func (p *Pattern) SetAbort(a *AbortSignal) { p.abort = a }

// Selection returns the last match.
func (p *Pattern) Selection() (Selection, bool) { return p.sel, p.found }

// Install shows the last match in the host.
func (p *Pattern) Install(s Selector) error {
	if !p.found {
		return ErrNoMatch
	}
	return s.SetSelection(p.sel)
}

// Find searches the whole document from its start, or from its end when
// searching backward.
func (p *Pattern) Find(root Root, forward bool) (bool, error) {
	n := root.ParagraphCount()
	if n == 0 {
		p.found = false
		return false, nil
	}
	if forward {
		return p.FindFrom(root, Selection{}, true)
	}
	last := root.ParagraphSource(n - 1)
	end := last.RenToLog(last.Length())
	return p.FindFrom(root, Selection{Para: n - 1, Min: end, Lim: end}, false)
}

// NextMatch continues from the last match.
func (p *Pattern) NextMatch(root Root, forward bool) (bool, error) {
	if !p.found {
		return p.Find(root, forward)
	}
	return p.FindFrom(root, p.sel, forward)
}

// FindFrom searches from a selection without wrapping. Forward matches
// start at or after from.Lim; backward matches end at or before from.Min.
func (p *Pattern) FindFrom(root Root, from Selection, forward bool) (bool, error) {
	p.found = false
	n := root.ParagraphCount()
	if from.Para < 0 || from.Para >= n {
		return false, fmt.Errorf("paragraph %d of %d: %w", from.Para, n, txtsrc.ErrOutOfRange)
	}
	step := 1
	if !forward {
		step = -1
	}
	for i := from.Para; i >= 0 && i < n; i += step {
		if p.abort.Aborted() {
			return false, ErrAborted
		}
		ms, err := p.matches(root.ParagraphSource(i))
		if err != nil {
			return false, fmt.Errorf("paragraph %d: %w", i, err)
		}
		if r, ok := pick(ms, i == from.Para, from, forward); ok {
			p.sel, p.found = Selection{Para: i, Min: r.Min, Lim: r.Lim}, true
			return true, nil
		}
	}
	return false, nil
}

func pick(ms []txtsrc.Range, same bool, from Selection, forward bool) (txtsrc.Range, bool) {
	if forward {
		for _, r := range ms {
			if !same || r.Min >= from.Lim {
				return r, true
			}
		}
		return txtsrc.Range{}, false
	}
	for i := len(ms) - 1; i >= 0; i-- {
		if !same || ms[i].Lim <= from.Min {
			return ms[i], true
		}
	}
	return txtsrc.Range{}, false
}

// MatchWhole reports whether sel is exactly a match of the pattern.
func (p *Pattern) MatchWhole(root Root, sel Selection) (bool, error) {
	if sel.Para < 0 || sel.Para >= root.ParagraphCount() || sel.IsInsertion() {
		return false, nil
	}
	ms, err := p.matches(root.ParagraphSource(sel.Para))
	if err != nil {
		return false, err
	}
	for _, r := range ms {
		if r.Min == sel.Min && r.Lim == sel.Lim {
			return true, nil
		}
	}
	return false, nil
}
