// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: txtsrc/conc.go
// Summary: Concordance source trimming context around one highlighted item.

package txtsrc

import (
	"fmt"
	"unicode"

	"fwviews/config"
	"fwviews/textprops"
	"fwviews/tsstring"
)

// ConcOptions bounds the context kept around a concordance item.
type ConcOptions struct {
	InitialContext int // base characters kept before the item
	FinalContext   int // base characters kept after the item
	BoldItem       bool
}

// DefaultConcOptions keeps 150 base characters before and 200 after.
func DefaultConcOptions() ConcOptions {
	return ConcOptions{InitialContext: 150, FinalContext: 200, BoldItem: true}
}

// ConcOptionsFromConfig reads the "concordance" section.
func ConcOptionsFromConfig(cfg config.Config) ConcOptions {
	opts := DefaultConcOptions()
	opts.InitialContext = cfg.GetInt("concordance", "initial_context", opts.InitialContext)
	opts.FinalContext = cfg.GetInt("concordance", "final_context", opts.FinalContext)
	opts.BoldItem = cfg.GetBool("concordance", "bold_item", opts.BoldItem)
	return opts
}

// Conc is a mapped source that hides leading and trailing context beyond a
// fixed number of base characters around the item [ichMinItem, ichLimItem).
// All of its public coordinates are relative to the visible window.
type Conc struct {
	Mapped
	opts           ConcOptions
	ichMinItem     int
	ichLimItem     int
	discardInitial int
	discardFinal   int
}

// NewConc returns an empty concordance source.
func NewConc(store *textprops.Store, vc ViewConstructor, opts ConcOptions) *Conc {
	return &Conc{Mapped: *NewMapped(store, vc), opts: opts}
}

func isBaseChar(r rune) bool {
	return !unicode.In(r, unicode.Mn, unicode.Mc, unicode.Me)
}

// SetItem sets the highlighted item in full logical coordinates.
func (c *Conc) SetItem(ichMin, ichLim int) error {
	if ichMin < 0 || ichMin > ichLim || ichLim > c.Mapped.Cch() {
		return fmt.Errorf("item [%d,%d) of %d: %w", ichMin, ichLim, c.Mapped.Cch(), ErrOutOfRange)
	}
	c.ichMinItem, c.ichLimItem = ichMin, ichLim
	return c.AdjustDiscards()
}

// Item returns the item range in visible logical coordinates.
func (c *Conc) Item() (int, int) {
	return c.ichMinItem - c.discardInitial, c.ichLimItem - c.discardInitial
}

// Discards returns the number of logical characters hidden at each end.
func (c *Conc) Discards() (initial, final int) { return c.discardInitial, c.discardFinal }

// AdjustDiscards recomputes the hidden context so that each discard
// boundary falls on a base character.
func (c *Conc) AdjustDiscards() error {
	cch := c.Mapped.Cch()
	text, err := c.Mapped.FetchLog(0, cch)
	if err != nil {
		return err
	}
	c.ichMinItem = min(c.ichMinItem, cch)
	c.ichLimItem = min(max(c.ichLimItem, c.ichMinItem), cch)

	c.discardInitial = 0
	seen := 0
	for i := c.ichMinItem - 1; i >= 0; i-- {
		if isBaseChar(text[i]) {
			seen++
			if seen >= c.opts.InitialContext {
				c.discardInitial = i
				break
			}
		}
	}

	c.discardFinal = 0
	seen = 0
	for i := c.ichLimItem; i < cch; i++ {
		if !isBaseChar(text[i]) {
			continue
		}
		if seen == c.opts.FinalContext {
			c.discardFinal = cch - i
			break
		}
		seen++
	}
	return nil
}

// AddString appends a string and recomputes the discards.
func (c *Conc) AddString(str *tsstring.String, store *textprops.Store) error {
	if err := c.Mapped.AddString(str, store); err != nil {
		return err
	}
	return c.AdjustDiscards()
}

// ReplaceContents splices strings and recomputes the discards.
func (c *Conc) ReplaceContents(itssMin, itssLim int, src Contents) error {
	if err := c.Mapped.ReplaceContents(itssMin, itssLim, src); err != nil {
		return err
	}
	return c.AdjustDiscards()
}

// SetString replaces string i and recomputes the discards.
func (c *Conc) SetString(i int, str *tsstring.String) error {
	if err := c.Mapped.SetString(i, str); err != nil {
		return err
	}
	return c.AdjustDiscards()
}

func (c *Conc) renMin() int { return c.Mapped.LogToRen(c.discardInitial) }
func (c *Conc) renLim() int { return c.Mapped.LogToRen(c.Mapped.Cch() - c.discardFinal) }
func (c *Conc) searchMin() int {
	return c.Mapped.LogToSearch(c.discardInitial)
}
func (c *Conc) searchLim() int {
	return c.Mapped.LogToSearch(c.Mapped.Cch() - c.discardFinal)
}

// Cch is the visible logical length.
func (c *Conc) Cch() int { return c.Mapped.Cch() - c.discardInitial - c.discardFinal }

// Length is the visible rendered length.
func (c *Conc) Length() int { return c.renLim() - c.renMin() }

// LengthSearch is the visible search length.
func (c *Conc) LengthSearch() int { return c.searchLim() - c.searchMin() }

func (c *Conc) clampLog(ich int) int { return min(max(ich, 0), c.Cch()) }

func (c *Conc) LogToRen(ich int) int {
	return c.Mapped.LogToRen(ich+c.discardInitial) - c.renMin()
}

func (c *Conc) RenToLog(ich int) int {
	return c.clampLog(c.Mapped.RenToLog(ich+c.renMin()) - c.discardInitial)
}

func (c *Conc) LogToSearch(ich int) int {
	return c.Mapped.LogToSearch(ich+c.discardInitial) - c.searchMin()
}

func (c *Conc) SearchToLog(ich int) int {
	return c.clampLog(c.Mapped.SearchToLog(ich+c.searchMin()) - c.discardInitial)
}

func (c *Conc) RenToSearch(ich int) int { return c.LogToSearch(c.RenToLog(ich)) }
func (c *Conc) SearchToRen(ich int) int { return c.LogToRen(c.SearchToLog(ich)) }

// FetchLog returns visible logical characters.
func (c *Conc) FetchLog(ichMin, ichLim int) ([]rune, error) {
	if ichMin < 0 || ichMin > ichLim || ichLim > c.Cch() {
		return nil, fmt.Errorf("fetch [%d,%d) of %d: %w", ichMin, ichLim, c.Cch(), ErrOutOfRange)
	}
	return c.Mapped.FetchLog(ichMin+c.discardInitial, ichLim+c.discardInitial)
}

// Fetch returns visible rendered characters.
func (c *Conc) Fetch(ichMin, ichLim int) ([]rune, error) {
	if ichMin < 0 || ichMin > ichLim || ichLim > c.Length() {
		return nil, fmt.Errorf("fetch [%d,%d) of %d: %w", ichMin, ichLim, c.Length(), ErrOutOfRange)
	}
	return c.Mapped.Fetch(ichMin+c.renMin(), ichLim+c.renMin())
}

// FetchSearch returns visible search characters.
func (c *Conc) FetchSearch(ichMin, ichLim int) ([]rune, error) {
	if ichMin < 0 || ichMin > ichLim || ichLim > c.LengthSearch() {
		return nil, fmt.Errorf("fetch [%d,%d) of %d: %w", ichMin, ichLim, c.LengthSearch(), ErrOutOfRange)
	}
	return c.Mapped.FetchSearch(ichMin+c.searchMin(), ichLim+c.searchMin())
}

// GetCharPropInfo returns the run at visible rendered position ich, clipped
// to the visible window. With BoldItem the item range is bolded and never
// merged with its surroundings.
func (c *Conc) GetCharPropInfo(ich int) (PropInfo, error) {
	if ich < 0 || ich > c.Length() {
		return PropInfo{}, c.internalError("GetCharPropInfo", ich)
	}
	off := c.renMin()
	full := ich + off
	info, err := c.Mapped.GetCharPropInfo(full)
	if err != nil {
		return PropInfo{}, err
	}
	info.Min = max(info.Min, off)
	info.Lim = min(info.Lim, c.renLim())

	itemMin := c.Mapped.LogToRen(c.ichMinItem)
	itemLim := c.Mapped.LogToRen(c.ichLimItem)
	switch {
	case full >= itemMin && full < itemLim:
		info.Min, info.Lim = max(info.Min, itemMin), min(info.Lim, itemLim)
		if c.opts.BoldItem {
			info.Store = info.Store.Derive(tsstring.Props{Bold: tsstring.ToggleOn})
		}
	case full < itemMin:
		info.Lim = min(info.Lim, itemMin)
	default:
		info.Min = max(info.Min, itemLim)
	}
	info.Min -= off
	info.Lim -= off
	return info, nil
}

// CharProps implements Source.
func (c *Conc) CharProps(ich int) (textprops.CharRenderProps, int, int, error) {
	info, err := c.GetCharPropInfo(ich)
	if err != nil {
		return textprops.CharRenderProps{}, 0, 0, err
	}
	return info.Chrp(), info.Min, info.Lim, nil
}
