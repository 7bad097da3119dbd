// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: txtsrc/simple.go
// Summary: Paragraph text source over an ordered list of styled strings.

package txtsrc

import (
	"fmt"
	"log"
	"slices"
	"strings"

	"fwviews/textprops"
	"fwviews/tsstring"
)

// Simple owns a paragraph's styled strings and answers logical-coordinate
// queries. Its rendered and search spaces equal the logical space.
type Simple struct {
	strs     []StyledString
	defStore *textprops.Store
}

// NewSimple returns an empty source. store is used for strings added
// without a store of their own.
func NewSimple(store *textprops.Store) *Simple {
	if store == nil {
		store = textprops.NewDefaultStore(nil)
	}
	return &Simple{defStore: store}
}

func (s *Simple) storeOr(store *textprops.Store) *textprops.Store {
	if store != nil {
		return store
	}
	return s.defStore
}

// AddString appends a formatted string.
func (s *Simple) AddString(str *tsstring.String, store *textprops.Store) {
	if str == nil {
		str = tsstring.Empty(tsstring.Props{})
	}
	s.strs = append(s.strs, StyledString{Store: s.storeOr(store), Str: str})
}

// AddBox appends an embedded box, one object replacement character long.
func (s *Simple) AddBox(store *textprops.Store) {
	s.strs = append(s.strs, StyledString{Store: s.storeOr(store)})
}

// CStrings returns the number of styled strings.
func (s *Simple) CStrings() int { return len(s.strs) }

// StringAtIndex returns styled string i.
func (s *Simple) StringAtIndex(i int) (StyledString, error) {
	if i < 0 || i >= len(s.strs) {
		return StyledString{}, fmt.Errorf("string %d of %d: %w", i, len(s.strs), ErrOutOfRange)
	}
	return s.strs[i], nil
}

// SetString replaces the text of string i, keeping its store.
func (s *Simple) SetString(i int, str *tsstring.String) error {
	if i < 0 || i >= len(s.strs) {
		return fmt.Errorf("string %d of %d: %w", i, len(s.strs), ErrOutOfRange)
	}
	s.strs[i].Str = str
	return nil
}

// Cch is the logical length of the paragraph.
func (s *Simple) Cch() int {
	n := 0
	for _, ss := range s.strs {
		n += ss.Len()
	}
	return n
}

// stringStart returns the logical offset of string i; i may equal CStrings().
func (s *Simple) stringStart(i int) int {
	n := 0
	for _, ss := range s.strs[:i] {
		n += ss.Len()
	}
	return n
}

// FetchLog returns logical characters [ichMin, ichLim).
func (s *Simple) FetchLog(ichMin, ichLim int) ([]rune, error) {
	if ichMin < 0 || ichMin > ichLim || ichLim > s.Cch() {
		return nil, fmt.Errorf("fetch [%d,%d) of %d: %w", ichMin, ichLim, s.Cch(), ErrOutOfRange)
	}
	out := make([]rune, 0, ichLim-ichMin)
	base := 0
	for _, ss := range s.strs {
		n := ss.Len()
		lo, hi := max(ichMin, base), min(ichLim, base+n)
		if lo < hi {
			if ss.IsBox() {
				out = append(out, tsstring.ObjReplacementChar)
			} else {
				rs, _ := ss.Str.Fetch(lo-base, hi-base)
				out = append(out, rs...)
			}
		}
		base += n
		if base >= ichLim {
			break
		}
	}
	return out, nil
}

// GetCharPropInfo returns the run covering logical position ich. ich may
// equal Cch(), which reports the last run. A box reports a one-character
// pseudo-run.
func (s *Simple) GetCharPropInfo(ich int) (PropInfo, error) {
	if ich < 0 || ich > s.Cch() || len(s.strs) == 0 {
		return PropInfo{}, s.internalError("GetCharPropInfo", ich)
	}
	base := 0
	last := len(s.strs) - 1
	for i, ss := range s.strs {
		n := ss.Len()
		if ich < base+n || (ich == base+n && i == last) {
			if ss.IsBox() {
				return PropInfo{Store: ss.Store, Min: base, Lim: base + 1, StringIndex: i}, nil
			}
			r := ss.Str.RunAt(ich - base)
			run := ss.Str.Run(r)
			return PropInfo{
				Store:       ss.Store.Derive(run.Props),
				Props:       run.Props,
				Min:         base + run.Min,
				Lim:         base + run.Lim,
				StringIndex: i,
				RunIndex:    r,
			}, nil
		}
		base += n
	}
	return PropInfo{}, s.internalError("GetCharPropInfo", ich)
}

// StringFromIch returns the string owning logical position ich. When ich
// sits on a boundary between strings, assocPrev selects the preceding one.
func (s *Simple) StringFromIch(ich int, assocPrev bool) (StringInfo, error) {
	if ich < 0 || ich > s.Cch() || len(s.strs) == 0 {
		return StringInfo{}, fmt.Errorf("string at %d of %d: %w", ich, s.Cch(), ErrOutOfRange)
	}
	base := 0
	last := len(s.strs) - 1
	for i, ss := range s.strs {
		lim := base + ss.Len()
		atEnd := ich == lim && (assocPrev || i == last)
		if (ich >= base && ich < lim && !(assocPrev && ich == base && i > 0)) || atEnd {
			return StringInfo{Str: ss.Str, Store: ss.Store, Min: base, Lim: lim, Index: i}, nil
		}
		base = lim
	}
	return StringInfo{}, s.internalError("StringFromIch", ich)
}

// ReplaceContents replaces strings [itssMin, itssLim) with the strings of
// src. itssLim of -1 means the end. A change that would leave the paragraph
// with no strings is rejected without modifying it.
func (s *Simple) ReplaceContents(itssMin, itssLim int, src *Simple) error {
	itssMin, itssLim, err := s.checkStringRange(itssMin, itssLim)
	if err != nil {
		return err
	}
	var add []StyledString
	if src != nil {
		add = slices.Clone(src.strs)
	}
	if len(s.strs)-(itssLim-itssMin)+len(add) == 0 {
		log.Printf("[TXTSRC] Rejected edit leaving paragraph empty: %v", s.internalError("ReplaceContents", itssMin))
		return fmt.Errorf("replace strings [%d,%d): %w", itssMin, itssLim, ErrEmptyParagraph)
	}
	s.strs = slices.Replace(s.strs, itssMin, itssLim, add...)
	return nil
}

func (s *Simple) checkStringRange(itssMin, itssLim int) (int, int, error) {
	if itssLim == -1 {
		itssLim = len(s.strs)
	}
	if itssMin < 0 || itssMin > itssLim || itssLim > len(s.strs) {
		return 0, 0, fmt.Errorf("strings [%d,%d) of %d: %w", itssMin, itssLim, len(s.strs), ErrOutOfRange)
	}
	return itssMin, itssLim, nil
}

func (s *Simple) internalError(op string, ich int) *InternalError {
	e := &InternalError{Op: op, Ich: ich, StringCount: len(s.strs)}
	var sb strings.Builder
	for _, ss := range s.strs {
		e.Lengths = append(e.Lengths, ss.Len())
		if ss.IsBox() {
			sb.WriteRune(tsstring.ObjReplacementChar)
		} else {
			sb.WriteString(ss.Str.Text())
		}
	}
	e.Text = sb.String()
	return e
}

// Length implements Source.
func (s *Simple) Length() int { return s.Cch() }

// LengthSearch implements Source.
func (s *Simple) LengthSearch() int { return s.Cch() }

// Fetch implements Source.
func (s *Simple) Fetch(ichMin, ichLim int) ([]rune, error) { return s.FetchLog(ichMin, ichLim) }

// FetchSearch implements Source.
func (s *Simple) FetchSearch(ichMin, ichLim int) ([]rune, error) { return s.FetchLog(ichMin, ichLim) }

// CharProps implements Source.
func (s *Simple) CharProps(ich int) (textprops.CharRenderProps, int, int, error) {
	info, err := s.GetCharPropInfo(ich)
	if err != nil {
		return textprops.CharRenderProps{}, 0, 0, err
	}
	return info.Chrp(), info.Min, info.Lim, nil
}

func (s *Simple) LogToRen(ich int) int    { return ich }
func (s *Simple) RenToLog(ich int) int    { return ich }
func (s *Simple) LogToSearch(ich int) int { return ich }
func (s *Simple) SearchToLog(ich int) int { return ich }
func (s *Simple) RenToSearch(ich int) int { return ich }
func (s *Simple) SearchToRen(ich int) int { return ich }
