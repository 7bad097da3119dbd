// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: tsstring/props.go
// Summary: Character-level text properties carried by formatted string runs.

package tsstring

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// ObjReplacementChar stands in for an embedded object in logical text.
const ObjReplacementChar = '\uFFFC'

// Color is a packed RGB colour. The zero value means "not set".
type Color uint32

const (
	ColorUnset       Color = 0
	colorRGB         Color = 1 << 24
	ColorTransparent Color = 1 << 25
)

// Common colours.
var (
	ColorBlack = RGB(0, 0, 0)
	ColorWhite = RGB(0xff, 0xff, 0xff)
	ColorRed   = RGB(0xff, 0, 0)
	ColorBlue  = RGB(0, 0, 0xff)
)

// RGB packs an opaque colour.
func RGB(r, g, b uint8) Color {
	return colorRGB | Color(r)<<16 | Color(g)<<8 | Color(b)
}

// IsSet reports whether the colour carries a value.
func (c Color) IsSet() bool { return c != ColorUnset }

// IsTransparent reports whether c is the transparent colour.
func (c Color) IsTransparent() bool { return c == ColorTransparent }

// Components returns the red, green and blue channels.
func (c Color) Components() (r, g, b uint8) {
	return uint8(c >> 16), uint8(c >> 8), uint8(c)
}

func (c Color) String() string {
	switch {
	case c == ColorUnset:
		return "unset"
	case c == ColorTransparent:
		return "transparent"
	}
	r, g, b := c.Components()
	return fmt.Sprintf("#%02x%02x%02x", r, g, b)
}

// Toggle is a tri-state boolean property with an "invert" option.
type Toggle uint8

const (
	ToggleUnset Toggle = iota
	ToggleOff
	ToggleOn
	ToggleInvert
)

// Apply resolves the toggle against an inherited value.
func (t Toggle) Apply(inherited bool) bool {
	switch t {
	case ToggleOff:
		return false
	case ToggleOn:
		return true
	case ToggleInvert:
		return !inherited
	}
	return inherited
}

// Underline selects the underline decoration.
type Underline uint8

const (
	UnderlineUnset Underline = iota
	UnderlineNone
	UnderlineSingle
	UnderlineDouble
	UnderlineDotted
	UnderlineDashed
	UnderlineSquiggle
	UnderlineStrikethrough
)

func (u Underline) String() string {
	switch u {
	case UnderlineNone:
		return "none"
	case UnderlineSingle:
		return "single"
	case UnderlineDouble:
		return "double"
	case UnderlineDotted:
		return "dotted"
	case UnderlineDashed:
		return "dashed"
	case UnderlineSquiggle:
		return "squiggle"
	case UnderlineStrikethrough:
		return "strikethrough"
	}
	return "unset"
}

// ObjKind identifies what an object replacement character refers to.
type ObjKind uint8

const (
	ObjNone ObjKind = iota
	ObjPictEvenHot
	ObjPictOddHot
	ObjNameGuidHot
	ObjExternalPathName
	ObjOwnNameGuidHot
	ObjEmbeddedObjectData
	ObjContextString
	ObjGuidMoveableObjDisp
)

// ObjData is the object reference attached to an object replacement character.
type ObjData struct {
	Kind ObjKind
	Guid uuid.UUID
	Path string
}

// IsZero reports whether no object is referenced.
func (o ObjData) IsZero() bool {
	return o.Kind == ObjNone && o.Guid == uuid.Nil && o.Path == ""
}

// Props are the properties of one run. Zero fields are unset and inherit from
// the enclosing context. Tags are kept sorted in descending order with no
// duplicates.
type Props struct {
	WS         int
	OWS        int
	Style      string
	FontSize   int // millipoints
	Bold       Toggle
	Italic     Toggle
	ForeColor  Color
	BackColor  Color
	UnderColor Color
	Underline  Underline
	Tags       []uuid.UUID
	ObjData    ObjData
}

// Equal compares two property sets. A nil and an empty tag list are equal.
func (p Props) Equal(o Props) bool {
	if p.WS != o.WS || p.OWS != o.OWS || p.Style != o.Style || p.FontSize != o.FontSize ||
		p.Bold != o.Bold || p.Italic != o.Italic ||
		p.ForeColor != o.ForeColor || p.BackColor != o.BackColor || p.UnderColor != o.UnderColor ||
		p.Underline != o.Underline || p.ObjData != o.ObjData {
		return false
	}
	if len(p.Tags) != len(o.Tags) {
		return false
	}
	for i := range p.Tags {
		if p.Tags[i] != o.Tags[i] {
			return false
		}
	}
	return true
}

// Clone returns a copy that shares no slices with p.
func (p Props) Clone() Props {
	if p.Tags != nil {
		p.Tags = append([]uuid.UUID(nil), p.Tags...)
	}
	return p
}

// WithTags returns a copy of p carrying the given tags in canonical order.
func (p Props) WithTags(tags ...uuid.UUID) Props {
	p.Tags = SortTags(tags)
	return p
}

// HasTag reports whether id is among the run's tags.
func (p Props) HasTag(id uuid.UUID) bool {
	for _, t := range p.Tags {
		if t == id {
			return true
		}
	}
	return false
}

// Overlay returns p with every set field of o applied on top.
func (p Props) Overlay(o Props) Props {
	r := p.Clone()
	if o.WS != 0 {
		r.WS = o.WS
	}
	if o.OWS != 0 {
		r.OWS = o.OWS
	}
	if o.Style != "" {
		r.Style = o.Style
	}
	if o.FontSize != 0 {
		r.FontSize = o.FontSize
	}
	if o.Bold != ToggleUnset {
		r.Bold = o.Bold
	}
	if o.Italic != ToggleUnset {
		r.Italic = o.Italic
	}
	if o.ForeColor.IsSet() {
		r.ForeColor = o.ForeColor
	}
	if o.BackColor.IsSet() {
		r.BackColor = o.BackColor
	}
	if o.UnderColor.IsSet() {
		r.UnderColor = o.UnderColor
	}
	if o.Underline != UnderlineUnset {
		r.Underline = o.Underline
	}
	if len(o.Tags) > 0 {
		r.Tags = append([]uuid.UUID(nil), o.Tags...)
	}
	if !o.ObjData.IsZero() {
		r.ObjData = o.ObjData
	}
	return r
}

// Key returns a stable textual fingerprint, usable as a map key.
func (p Props) Key() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%d|%d|%s|%d|%d|%d|%x|%x|%x|%d|%d|%s|%s",
		p.WS, p.OWS, p.Style, p.FontSize, p.Bold, p.Italic,
		uint32(p.ForeColor), uint32(p.BackColor), uint32(p.UnderColor), p.Underline,
		p.ObjData.Kind, p.ObjData.Guid, p.ObjData.Path)
	for _, t := range p.Tags {
		sb.WriteByte('|')
		sb.WriteString(t.String())
	}
	return sb.String()
}
