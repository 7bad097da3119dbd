// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: textprops/props.go
// Summary: Resolved character render properties and partial overrides.

package textprops

import (
	"slices"

	"fwviews/tsstring"

	"github.com/google/uuid"
)

// DefaultFontSize is 10pt in millipoints.
const DefaultFontSize = 10000

// CharRenderProps is the fully resolved formatting of one character.
type CharRenderProps struct {
	ForeColor  tsstring.Color
	BackColor  tsstring.Color
	UnderColor tsstring.Color
	Underline  tsstring.Underline
	Bold       bool
	Italic     bool
	FontSize   int
	WS         int
	OWS        int
	Style      string
	Tags       []uuid.UUID
}

// DefaultCharRenderProps returns black text on a transparent background.
func DefaultCharRenderProps() CharRenderProps {
	return CharRenderProps{
		ForeColor:  tsstring.ColorBlack,
		BackColor:  tsstring.ColorTransparent,
		UnderColor: tsstring.ColorUnset,
		Underline:  tsstring.UnderlineNone,
		FontSize:   DefaultFontSize,
	}
}

// Equal compares all fields.
func (c CharRenderProps) Equal(o CharRenderProps) bool {
	return c.ForeColor == o.ForeColor && c.BackColor == o.BackColor &&
		c.UnderColor == o.UnderColor && c.Underline == o.Underline &&
		c.Bold == o.Bold && c.Italic == o.Italic && c.FontSize == o.FontSize &&
		c.WS == o.WS && c.OWS == o.OWS && c.Style == o.Style &&
		slices.Equal(c.Tags, o.Tags)
}

// EffectiveUnderColor is the colour an underline is drawn in. An unset
// under colour follows the foreground.
func (c CharRenderProps) EffectiveUnderColor() tsstring.Color {
	if c.UnderColor.IsSet() {
		return c.UnderColor
	}
	return c.ForeColor
}

// Partial is a display override. Zero-valued fields leave the base value
// untouched.
type Partial struct {
	ForeColor  tsstring.Color
	BackColor  tsstring.Color
	UnderColor tsstring.Color
	Underline  tsstring.Underline
	Bold       tsstring.Toggle
	Italic     tsstring.Toggle
}

// IsZero reports whether the override changes nothing.
func (p Partial) IsZero() bool {
	return p == Partial{}
}

// Merge applies the set fields of p.
func (c CharRenderProps) Merge(p Partial) CharRenderProps {
	if p.ForeColor.IsSet() {
		c.ForeColor = p.ForeColor
	}
	if p.BackColor.IsSet() {
		c.BackColor = p.BackColor
	}
	if p.UnderColor.IsSet() {
		c.UnderColor = p.UnderColor
	}
	if p.Underline != tsstring.UnderlineUnset {
		c.Underline = p.Underline
	}
	c.Bold = p.Bold.Apply(c.Bold)
	c.Italic = p.Italic.Apply(c.Italic)
	return c
}

// Apply resolves run properties on top of c. Named styles are expanded from
// sheet before the run's own properties, and tag display colours last.
func (c CharRenderProps) Apply(p tsstring.Props, sheet *StyleSheet) CharRenderProps {
	if p.Style != "" {
		if sp, ok := sheet.Lookup(p.Style); ok {
			c = c.applyDirect(sp)
		}
		c.Style = p.Style
	}
	c = c.applyDirect(p)
	if len(p.Tags) > 0 {
		c.Tags = append([]uuid.UUID(nil), p.Tags...)
		for _, id := range p.Tags {
			if info, ok := sheet.Tag(id); ok && !info.Hidden {
				c = c.Merge(info.Overlay())
			}
		}
	}
	return c
}

func (c CharRenderProps) applyDirect(p tsstring.Props) CharRenderProps {
	if p.WS != 0 {
		c.WS = p.WS
	}
	if p.OWS != 0 {
		c.OWS = p.OWS
	}
	if p.FontSize != 0 {
		c.FontSize = p.FontSize
	}
	c.Bold = p.Bold.Apply(c.Bold)
	c.Italic = p.Italic.Apply(c.Italic)
	if p.ForeColor.IsSet() {
		c.ForeColor = p.ForeColor
	}
	if p.BackColor.IsSet() {
		c.BackColor = p.BackColor
	}
	if p.UnderColor.IsSet() {
		c.UnderColor = p.UnderColor
	}
	if p.Underline != tsstring.UnderlineUnset {
		c.Underline = p.Underline
	}
	return c
}
