// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: txtsrc/source.go
// Summary: Text source contract shared by simple, mapped, concordance and override sources.
// Usage: Layout and search read paragraphs through Source in rendered or search coordinates.
//
// Three coordinate spaces are in play. Logical positions index the stored
// text, where an embedded object is one replacement character. Rendered
// positions index the displayed text, where each mapped object character is
// expanded to its substitute string. Search positions are rendered positions
// minus substitutes whose object is omitted from search.

package txtsrc

import (
	"errors"
	"fmt"
	"strings"

	"fwviews/textprops"
	"fwviews/tsstring"

	"github.com/google/uuid"
)

var (
	// ErrOutOfRange reports an index outside the source.
	ErrOutOfRange = errors.New("txtsrc: index out of range")
	// ErrEmptyParagraph reports an edit that would leave no strings.
	ErrEmptyParagraph = errors.New("txtsrc: paragraph would have no strings")
	// ErrMissingSubstitute reports an object whose substitute text is required but absent.
	ErrMissingSubstitute = errors.New("txtsrc: no substitute string for object")
	// ErrInternal marks a violated internal invariant.
	ErrInternal = errors.New("txtsrc: internal error")
	// ErrBadOverrides reports an unsorted or overlapping override list.
	ErrBadOverrides = errors.New("txtsrc: overrides must be sorted and non-overlapping")
)

// Source answers character and property queries in rendered coordinates
// and converts between the coordinate spaces.
type Source interface {
	// Length is the rendered length.
	Length() int
	// LengthSearch is the length of the search text.
	LengthSearch() int
	// Fetch returns rendered characters [ichMin, ichLim).
	Fetch(ichMin, ichLim int) ([]rune, error)
	// FetchSearch returns search characters [ichMin, ichLim).
	FetchSearch(ichMin, ichLim int) ([]rune, error)
	// CharProps returns the properties at rendered position ich and the
	// rendered range over which they hold.
	CharProps(ich int) (textprops.CharRenderProps, int, int, error)

	LogToRen(ich int) int
	RenToLog(ich int) int
	LogToSearch(ich int) int
	SearchToLog(ich int) int
	RenToSearch(ich int) int
	SearchToRen(ich int) int
}

// ViewConstructor supplies substitute strings for objects referenced by GUID.
type ViewConstructor interface {
	StrForGuid(id uuid.UUID) *tsstring.String
}

// ViewConstructorFunc adapts a function to ViewConstructor.
type ViewConstructorFunc func(id uuid.UUID) *tsstring.String

// StrForGuid calls f.
func (f ViewConstructorFunc) StrForGuid(id uuid.UUID) *tsstring.String { return f(id) }

// StyledString is one entry of a paragraph: formatted text with the
// property store it resolves against. A nil Str is an embedded box that
// occupies one object replacement character.
type StyledString struct {
	Store *textprops.Store
	Str   *tsstring.String
}

// Len is the logical length of the entry.
func (s StyledString) Len() int {
	if s.Str == nil {
		return 1
	}
	return s.Str.Len()
}

// IsBox reports whether the entry is an embedded box.
func (s StyledString) IsBox() bool { return s.Str == nil }

// PropInfo locates the run covering a position.
type PropInfo struct {
	Store       *textprops.Store
	Props       tsstring.Props
	Min, Lim    int
	StringIndex int
	RunIndex    int
}

// Chrp returns the resolved properties.
func (p PropInfo) Chrp() textprops.CharRenderProps { return p.Store.Chrp() }

// StringInfo locates the string owning a position.
type StringInfo struct {
	Str      *tsstring.String
	Store    *textprops.Store
	Min, Lim int
	Index    int
}

// InternalError carries the paragraph state at the point an internal
// invariant was violated.
type InternalError struct {
	Op          string
	Ich         int
	StringCount int
	Lengths     []int
	Text        string
}

func (e *InternalError) Error() string {
	lens := make([]string, len(e.Lengths))
	for i, n := range e.Lengths {
		lens[i] = fmt.Sprint(n)
	}
	return fmt.Sprintf("txtsrc: %s(%d): %d strings, lengths [%s], text %q",
		e.Op, e.Ich, e.StringCount, strings.Join(lens, " "), e.Text)
}

// Unwrap lets callers test for ErrInternal.
func (e *InternalError) Unwrap() error { return ErrInternal }

// Range is a half-open character range.
type Range struct {
	Min, Lim int
}

// Contains reports whether ich is inside the range.
func (r Range) Contains(ich int) bool { return ich >= r.Min && ich < r.Lim }
