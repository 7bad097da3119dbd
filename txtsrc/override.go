// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: txtsrc/override.go
// Summary: Transient display overrides (spelling squiggles, highlighting) over another source.

package txtsrc

import (
	"fmt"
	"sort"

	"fwviews/textprops"
	"fwviews/tsstring"
)

// DispPropOverride applies partial properties to [Min, Lim).
type DispPropOverride struct {
	Min, Lim int
	Props    textprops.Partial
}

// Override decorates an inner source with a sorted, non-overlapping list of
// overrides. The inner source is never modified.
type Override struct {
	inner     Source
	overrides []DispPropOverride // rendered coordinates
}

// NewOverride wraps inner. The overrides are given in logical coordinates.
func NewOverride(inner Source, overrides []DispPropOverride) (*Override, error) {
	o := &Override{inner: inner}
	if _, err := o.UpdateOverrides(overrides); err != nil {
		return nil, err
	}
	return o, nil
}

// NewSpellingOverride marks each logical range with a red squiggle.
func NewSpellingOverride(inner Source, ranges []Range) (*Override, error) {
	list := make([]DispPropOverride, 0, len(ranges))
	for _, r := range ranges {
		list = append(list, DispPropOverride{Min: r.Min, Lim: r.Lim, Props: SpellingProps()})
	}
	return NewOverride(inner, list)
}

// SpellingProps is the decoration used for misspelled words.
func SpellingProps() textprops.Partial {
	return textprops.Partial{Underline: tsstring.UnderlineSquiggle, UnderColor: tsstring.ColorRed}
}

// Inner returns the wrapped source.
func (o *Override) Inner() Source { return o.inner }

// Overrides returns a copy of the list in rendered coordinates.
func (o *Override) Overrides() []DispPropOverride {
	return append([]DispPropOverride(nil), o.overrides...)
}

func validateOverrides(list []DispPropOverride) error {
	for i, d := range list {
		if d.Min < 0 || d.Min > d.Lim {
			return fmt.Errorf("override %d [%d,%d): %w", i, d.Min, d.Lim, ErrBadOverrides)
		}
		if i > 0 && d.Min < list[i-1].Lim {
			return fmt.Errorf("override %d starts at %d before %d: %w", i, d.Min, list[i-1].Lim, ErrBadOverrides)
		}
	}
	return nil
}

// AdjustOverrideOffsets converts logical override ranges to rendered ones.
func (o *Override) AdjustOverrideOffsets(list []DispPropOverride) []DispPropOverride {
	out := make([]DispPropOverride, 0, len(list))
	for _, d := range list {
		d.Min, d.Lim = o.inner.LogToRen(d.Min), o.inner.LogToRen(d.Lim)
		if d.Min < d.Lim {
			out = append(out, d)
		}
	}
	return out
}

// UpdateOverrides installs a new logical override list and reports whether
// any range or decoration changed.
func (o *Override) UpdateOverrides(list []DispPropOverride) (bool, error) {
	if err := validateOverrides(list); err != nil {
		return false, err
	}
	next := o.AdjustOverrideOffsets(list)
	changed := len(next) != len(o.overrides)
	for i := 0; !changed && i < len(next); i++ {
		a, b := next[i], o.overrides[i]
		changed = a.Min != b.Min || a.Lim != b.Lim || a.Props != b.Props
	}
	o.overrides = next
	return changed, nil
}

// find returns the index of the first override ending after ich.
func (o *Override) find(ich int) int {
	return sort.Search(len(o.overrides), func(i int) bool { return o.overrides[i].Lim > ich })
}

// CharProps merges the override covering ich, if any, and reports the
// override's range. Otherwise the inner range is clipped to the gap between
// overrides.
func (o *Override) CharProps(ich int) (textprops.CharRenderProps, int, int, error) {
	chrp, lo, hi, err := o.inner.CharProps(ich)
	if err != nil {
		return chrp, lo, hi, err
	}
	k := o.find(ich)
	if k < len(o.overrides) && o.overrides[k].Min <= ich {
		d := o.overrides[k]
		return chrp.Merge(d.Props), d.Min, d.Lim, nil
	}
	if k > 0 {
		lo = max(lo, o.overrides[k-1].Lim)
	}
	if k < len(o.overrides) {
		hi = min(hi, o.overrides[k].Min)
	}
	return chrp, lo, hi, nil
}

func (o *Override) Length() int                                    { return o.inner.Length() }
func (o *Override) LengthSearch() int                              { return o.inner.LengthSearch() }
func (o *Override) Fetch(ichMin, ichLim int) ([]rune, error)       { return o.inner.Fetch(ichMin, ichLim) }
func (o *Override) FetchSearch(ichMin, ichLim int) ([]rune, error) { return o.inner.FetchSearch(ichMin, ichLim) }
func (o *Override) LogToRen(ich int) int                           { return o.inner.LogToRen(ich) }
func (o *Override) RenToLog(ich int) int                           { return o.inner.RenToLog(ich) }
func (o *Override) LogToSearch(ich int) int                        { return o.inner.LogToSearch(ich) }
func (o *Override) SearchToLog(ich int) int                        { return o.inner.SearchToLog(ich) }
func (o *Override) RenToSearch(ich int) int                        { return o.inner.RenToSearch(ich) }
func (o *Override) SearchToRen(ich int) int                        { return o.inner.SearchToRen(ich) }
