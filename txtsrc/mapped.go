// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: txtsrc/mapped.go
// Summary: Text source expanding object characters into substitute strings.

package txtsrc

import (
	"fmt"
	"log"
	"sort"

	"fwviews/textprops"
	"fwviews/tsstring"
)

// Contents is anything whose strings can be spliced into a paragraph.
// *Simple, *Mapped and *Conc all qualify.
type Contents interface {
	simple() *Simple
}

func (s *Simple) simple() *Simple { return s }

type mappedContents interface {
	mapItems() []TextMapItem
}

// Mapped is a Simple source whose object replacement characters may be
// rendered as substitute strings supplied by a ViewConstructor.
type Mapped struct {
	Simple
	vc   ViewConstructor
	tmis tmiTable
}

// NewMapped returns an empty mapped source.
func NewMapped(store *textprops.Store, vc ViewConstructor) *Mapped {
	return &Mapped{Simple: *NewSimple(store), vc: vc}
}

func (m *Mapped) mapItems() []TextMapItem {
	return append([]TextMapItem(nil), m.tmis...)
}

// Items returns a copy of the text map table.
func (m *Mapped) Items() []TextMapItem { return m.mapItems() }

// substituted reports whether objects of this kind are rendered through a
// substitute string, and whether they are left out of the search text.
func substituted(kind tsstring.ObjKind) (mapped, omit bool) {
	switch kind {
	case tsstring.ObjNameGuidHot:
		return true, false
	case tsstring.ObjOwnNameGuidHot, tsstring.ObjGuidMoveableObjDisp:
		return true, true
	}
	return false, false
}

// scan builds the map items for str appended at logical offset base after
// an item table ending with offset dich.
func (m *Mapped) scan(str *tsstring.String, base, dich int) ([]TextMapItem, error) {
	var items []TextMapItem
	for i, r := range str.Runes() {
		if r != tsstring.ObjReplacementChar {
			continue
		}
		props := str.PropsAt(i)
		mapped, omit := substituted(props.ObjData.Kind)
		if !mapped {
			continue
		}
		var subs *tsstring.String
		if m.vc != nil {
			subs = m.vc.StrForGuid(props.ObjData.Guid)
		}
		if subs == nil {
			if props.ObjData.Kind != tsstring.ObjGuidMoveableObjDisp {
				log.Printf("[TXTSRC] No substitute for object %s (kind %d) at %d", props.ObjData.Guid, props.ObjData.Kind, base+i)
				return nil, fmt.Errorf("object %s at %d: %w", props.ObjData.Guid, base+i, ErrMissingSubstitute)
			}
			placeholder := props.Clone()
			placeholder.ObjData = tsstring.ObjData{}
			subs = tsstring.New(string(tsstring.ObjReplacementChar), placeholder)
		}
		t := TextMapItem{IchLog: base + i + 1, Subs: subs, OmitSearch: omit}
		t.IchRen = t.IchLog + t.Cch() - 1 + dich
		dich = t.DichRenLog()
		items = append(items, t)
	}
	return items, nil
}

func (m *Mapped) lastDich() int {
	if len(m.tmis) == 0 {
		return 0
	}
	return m.tmis[len(m.tmis)-1].DichRenLog()
}

// AddString appends a formatted string and maps its object characters. A
// string referencing an object that needs but lacks a substitute is
// rejected as a whole.
func (m *Mapped) AddString(str *tsstring.String, store *textprops.Store) error {
	if str == nil {
		str = tsstring.Empty(tsstring.Props{})
	}
	items, err := m.scan(str, m.Cch(), m.lastDich())
	if err != nil {
		return err
	}
	m.Simple.AddString(str, store)
	m.tmis = append(m.tmis, items...)
	return nil
}

// SetString replaces the text of string i and remaps the paragraph tail.
func (m *Mapped) SetString(i int, str *tsstring.String) error {
	ss, err := m.StringAtIndex(i)
	if err != nil {
		return err
	}
	tmp := NewMapped(ss.Store, m.vc)
	if err := tmp.AddString(str, ss.Store); err != nil {
		return err
	}
	return m.ReplaceContents(i, i+1, tmp)
}

// ReplaceContents replaces strings [itssMin, itssLim) with the strings of
// src, splicing src's map items when it is mapped. itssLim of -1 means the
// end. Nothing is modified when the change is rejected.
func (m *Mapped) ReplaceContents(itssMin, itssLim int, src Contents) error {
	itssMin, itssLim, err := m.checkStringRange(itssMin, itssLim)
	if err != nil {
		return err
	}
	var ns *Simple
	var srcItems []TextMapItem
	if src != nil {
		ns = src.simple()
		if mc, ok := src.(mappedContents); ok {
			srcItems = mc.mapItems()
		}
	}
	ichMin, ichLim := m.stringStart(itssMin), m.stringStart(itssLim)
	cchNew := 0
	if ns != nil {
		cchNew = ns.Cch()
	}

	// Items whose object character lies in [ichMin, ichLim) are replaced.
	lo := sort.Search(len(m.tmis), func(i int) bool { return m.tmis[i].IchLog > ichMin })
	hi := sort.Search(len(m.tmis), func(i int) bool { return m.tmis[i].IchLog > ichLim })

	items := make(tmiTable, 0, len(m.tmis)-(hi-lo)+len(srcItems))
	items = append(items, m.tmis[:lo]...)
	for _, t := range srcItems {
		t.IchLog += ichMin
		items = append(items, t)
	}
	// Trailing items keep their offsets relative to the replaced span.
	shift := cchNew - (ichLim - ichMin)
	for _, t := range m.tmis[hi:] {
		t.IchLog += shift
		items = append(items, t)
	}
	// Render offsets change from the first spliced item on.
	items.renumber(lo)
	if err := items.verify(); err != nil {
		log.Printf("[TXTSRC] Rejected splice of strings [%d,%d): %v", itssMin, itssLim, err)
		return err
	}

	if err := m.Simple.ReplaceContents(itssMin, itssLim, ns); err != nil {
		return err
	}
	m.tmis = items
	return nil
}

// GetSourceTmi returns the index of the first item with IchLog >= ich.
func (m *Mapped) GetSourceTmi(ich int) int { return m.tmis.sourceIndex(ich) }

// GetRenderTmi returns the index of the first item with IchRen >= ich,
// resolving ties to the last such item.
func (m *Mapped) GetRenderTmi(ich int) int { return m.tmis.renderIndex(ich) }

func (m *Mapped) LogToRen(ich int) int    { return m.tmis.logToRen(ich) }
func (m *Mapped) RenToLog(ich int) int    { return m.tmis.renToLog(ich) }
func (m *Mapped) LogToSearch(ich int) int { return m.tmis.logToSearch(ich) }
func (m *Mapped) SearchToLog(ich int) int { return m.tmis.searchToLog(ich) }
func (m *Mapped) RenToSearch(ich int) int { return m.LogToSearch(m.RenToLog(ich)) }
func (m *Mapped) SearchToRen(ich int) int { return m.LogToRen(m.SearchToLog(ich)) }

// Length is the rendered length.
func (m *Mapped) Length() int { return m.LogToRen(m.Cch()) }

// CchRen is an alias of Length.
func (m *Mapped) CchRen() int { return m.Length() }

// LengthSearch is the search length.
func (m *Mapped) LengthSearch() int { return m.LogToSearch(m.Cch()) }

// Fetch returns rendered characters [ichMin, ichLim).
func (m *Mapped) Fetch(ichMin, ichLim int) ([]rune, error) {
	return m.fetch(ichMin, ichLim, renderFetch{m})
}

// FetchSearch returns search characters [ichMin, ichLim).
func (m *Mapped) FetchSearch(ichMin, ichLim int) ([]rune, error) {
	return m.fetch(ichMin, ichLim, searchFetch{m})
}

// GetCharPropInfo returns the run covering rendered position ich, with its
// range in rendered coordinates. Characters of a substitute resolve through
// the paragraph store, then the object character's run, then the
// substitute's own run.
func (m *Mapped) GetCharPropInfo(ich int) (PropInfo, error) {
	cchRen := m.Length()
	if ich < 0 || ich > cchRen {
		return PropInfo{}, m.internalError("GetCharPropInfo", ich)
	}
	ichLog := m.RenToLog(ich)
	if k := m.tmis.sourceIndex(ichLog + 1); ich < cchRen && k < len(m.tmis) && m.tmis[k].IchLog == ichLog+1 {
		t := m.tmis[k]
		if off := ich - t.RenStart(); t.Cch() > 0 && off >= 0 && off < t.Cch() {
			orc, err := m.Simple.GetCharPropInfo(ichLog)
			if err != nil {
				return PropInfo{}, err
			}
			r := t.Subs.RunAt(off)
			run := t.Subs.Run(r)
			return PropInfo{
				Store:       orc.Store.Derive(run.Props),
				Props:       run.Props,
				Min:         t.RenStart() + run.Min,
				Lim:         t.RenStart() + run.Lim,
				StringIndex: orc.StringIndex,
				RunIndex:    orc.RunIndex,
			}, nil
		}
	}

	info, err := m.Simple.GetCharPropInfo(ichLog)
	if err != nil {
		return PropInfo{}, err
	}
	lo, hi := info.Min, info.Lim
	for k := m.tmis.sourceIndex(lo + 1); k < len(m.tmis); k++ {
		orc := m.tmis[k].IchLog - 1
		if orc >= hi {
			break
		}
		switch {
		case orc < ichLog:
			lo = orc + 1
		case orc > ichLog:
			hi = orc
		}
	}
	info.Min, info.Lim = m.LogToRen(lo), m.LogToRen(hi)
	return info, nil
}

// CharProps implements Source.
func (m *Mapped) CharProps(ich int) (textprops.CharRenderProps, int, int, error) {
	info, err := m.GetCharPropInfo(ich)
	if err != nil {
		return textprops.CharRenderProps{}, 0, 0, err
	}
	return info.Chrp(), info.Min, info.Lim, nil
}
