// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: txtsrc/fetch.go
// Summary: Lockstep traversal of strings and map items producing rendered or search text.

package txtsrc

import "fmt"

// fetchSpace describes the coordinate space a fetch produces.
type fetchSpace interface {
	toLog(ich int) int
	fromLog(ich int) int
	length() int
	skip(t TextMapItem) bool
}

type renderFetch struct{ m *Mapped }

func (f renderFetch) toLog(ich int) int     { return f.m.RenToLog(ich) }
func (f renderFetch) fromLog(ich int) int   { return f.m.LogToRen(ich) }
func (f renderFetch) length() int           { return f.m.Length() }
func (f renderFetch) skip(TextMapItem) bool { return false }

type searchFetch struct{ m *Mapped }

func (f searchFetch) toLog(ich int) int       { return f.m.SearchToLog(ich) }
func (f searchFetch) fromLog(ich int) int     { return f.m.LogToSearch(ich) }
func (f searchFetch) length() int             { return f.m.LengthSearch() }
func (f searchFetch) skip(t TextMapItem) bool { return t.OmitSearch }

func (m *Mapped) fetch(ichMin, ichLim int, sp fetchSpace) ([]rune, error) {
	if total := sp.length(); ichMin < 0 || ichMin > ichLim || ichLim > total {
		return nil, fmt.Errorf("fetch [%d,%d) of %d: %w", ichMin, ichLim, total, ErrOutOfRange)
	}
	out := make([]rune, 0, ichLim-ichMin)
	if ichMin == ichLim {
		return out, nil
	}

	// Start at the logical character holding ichMin. When ichMin falls
	// inside a substitute, pos lands on its first rune and emit drops the
	// runes before ichMin.
	ichLog := sp.toLog(ichMin)
	pos := sp.fromLog(ichLog)
	cch := m.Cch()
	logText, err := m.FetchLog(ichLog, cch)
	if err != nil {
		return nil, err
	}
	// First item whose object character is at or after ichLog.
	k := m.tmis.sourceIndex(ichLog + 1)

	emit := func(r rune) {
		if pos >= ichMin && pos < ichLim {
			out = append(out, r)
		}
		pos++
	}
	for l := ichLog; l < cch && pos < ichLim; l++ {
		if k < len(m.tmis) && m.tmis[k].IchLog == l+1 {
			t := m.tmis[k]
			k++
			if sp.skip(t) {
				continue
			}
			for _, r := range t.Subs.Runes() {
				emit(r)
			}
			continue
		}
		emit(logText[l-ichLog])
	}
	return out, nil
}
