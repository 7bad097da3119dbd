// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: txtsrc/tmi.go
// Summary: Text map item table and coordinate conversions for mapped sources.
// Usage: Mapped keeps one item per substituted object character.

package txtsrc

import (
	"fmt"
	"sort"

	"fwviews/tsstring"
)

// TextMapItem records one substituted object character. IchLog is the
// logical position just after the object character; IchRen is the rendered
// position just after its substitute.
type TextMapItem struct {
	IchLog     int
	IchRen     int
	Subs       *tsstring.String
	OmitSearch bool
}

// Cch is the rendered length of the substitute.
func (t TextMapItem) Cch() int { return t.Subs.Len() }

// DichRenLog is the cumulative rendered-minus-logical offset after the item.
func (t TextMapItem) DichRenLog() int { return t.IchRen - t.IchLog }

// RenStart is the rendered position of the first substitute character.
func (t TextMapItem) RenStart() int { return t.IchRen - t.Cch() }

type tmiTable []TextMapItem

// sourceIndex returns the first item with IchLog >= ich.
func (tt tmiTable) sourceIndex(ich int) int {
	return sort.Search(len(tt), func(i int) bool { return tt[i].IchLog >= ich })
}

// renderIndex returns the first item with IchRen >= ich. When several items
// share that IchRen, the last of them is returned.
func (tt tmiTable) renderIndex(ich int) int {
	i := sort.Search(len(tt), func(i int) bool { return tt[i].IchRen >= ich })
	if i < len(tt) && tt[i].IchRen == ich {
		for i+1 < len(tt) && tt[i+1].IchRen == ich {
			i++
		}
	}
	return i
}

func (tt tmiTable) logToRen(ich int) int {
	if len(tt) == 0 {
		return ich
	}
	i := tt.sourceIndex(ich)
	if i < len(tt) && tt[i].IchLog == ich {
		return tt[i].IchRen
	}
	if i == 0 {
		return ich
	}
	return ich + tt[i-1].DichRenLog()
}

func (tt tmiTable) renToLog(ich int) int {
	if len(tt) == 0 {
		return ich
	}
	i := tt.renderIndex(ich)
	if i < len(tt) {
		t := tt[i]
		if t.IchRen == ich {
			return t.IchLog
		}
		if ich > t.RenStart() {
			// Inside the substitute: collapse to the object character.
			return t.IchLog - 1
		}
	}
	if i == 0 {
		return ich
	}
	return ich - tt[i-1].DichRenLog()
}

func (t TextMapItem) searchLen() int {
	if t.OmitSearch {
		return 0
	}
	return t.Cch()
}

func (tt tmiTable) logToSearch(ich int) int {
	dich := 0
	for _, t := range tt {
		if ich <= t.IchLog-1 {
			return ich + dich
		}
		dich += t.searchLen() - 1
	}
	return ich + dich
}

func (tt tmiTable) searchToLog(ich int) int {
	dich := 0
	for _, t := range tt {
		start := t.IchLog - 1 + dich
		cs := t.searchLen()
		if cs > 0 {
			if ich <= start {
				return ich - dich
			}
			if ich < start+cs {
				return t.IchLog - 1
			}
		} else if ich < start {
			return ich - dich
		}
		dich += cs - 1
	}
	return ich - dich
}

// verify checks the ordering invariants of the table.
func (tt tmiTable) verify() error {
	prevLog, prevRen := 0, -1
	for i, t := range tt {
		if t.IchLog <= prevLog {
			return fmt.Errorf("item %d: ichlog %d not after %d: %w", i, t.IchLog, prevLog, ErrInternal)
		}
		if t.IchRen < prevRen {
			return fmt.Errorf("item %d: ichren %d before %d: %w", i, t.IchRen, prevRen, ErrInternal)
		}
		if want := t.IchLog + t.Cch() - 1 + dichBefore(tt, i); t.IchRen != want {
			return fmt.Errorf("item %d: ichren %d, want %d: %w", i, t.IchRen, want, ErrInternal)
		}
		prevLog, prevRen = t.IchLog, t.IchRen
	}
	return nil
}

func dichBefore(tt tmiTable, i int) int {
	if i == 0 {
		return 0
	}
	return tt[i-1].DichRenLog()
}

// renumber recomputes IchRen for items from index k on.
func (tt tmiTable) renumber(k int) {
	dich := dichBefore(tt, k)
	for i := k; i < len(tt); i++ {
		// The substitute ends where the object character would, shifted by
		// the growth of every earlier substitute.
		tt[i].IchRen = tt[i].IchLog + tt[i].Cch() - 1 + dich
		dich = tt[i].DichRenLog()
	}
}
