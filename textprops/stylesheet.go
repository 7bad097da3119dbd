// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: textprops/stylesheet.go
// Summary: Named character styles and the overlay tag catalog.

package textprops

import (
	"sort"
	"sync"

	"fwviews/tsstring"

	"github.com/google/uuid"
)

// TagInfo describes how an overlay tag is displayed.
type TagInfo struct {
	Guid       uuid.UUID
	Name       string
	Abbr       string
	Hidden     bool
	ForeColor  tsstring.Color
	BackColor  tsstring.Color
	UnderColor tsstring.Color
	Underline  tsstring.Underline
}

// Overlay converts the display colours into a partial override.
func (t TagInfo) Overlay() Partial {
	return Partial{
		ForeColor:  t.ForeColor,
		BackColor:  t.BackColor,
		UnderColor: t.UnderColor,
		Underline:  t.Underline,
	}
}

// StyleSheet is the catalog of named styles and overlay tags. A nil
// StyleSheet is empty.
type StyleSheet struct {
	mu     sync.RWMutex
	styles map[string]tsstring.Props
	tags   map[uuid.UUID]TagInfo
}

// NewStyleSheet returns an empty catalog.
func NewStyleSheet() *StyleSheet {
	return &StyleSheet{
		styles: make(map[string]tsstring.Props),
		tags:   make(map[uuid.UUID]TagInfo),
	}
}

// Define adds or replaces a named style. The style's own Style field is ignored.
func (s *StyleSheet) Define(name string, props tsstring.Props) {
	s.mu.Lock()
	defer s.mu.Unlock()
	props = props.Clone()
	props.Style = ""
	s.styles[name] = props
}

// Lookup returns the properties of a named style.
func (s *StyleSheet) Lookup(name string) (tsstring.Props, bool) {
	if s == nil {
		return tsstring.Props{}, false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.styles[name]
	return p.Clone(), ok
}

// Names lists the defined styles in sorted order.
func (s *StyleSheet) Names() []string {
	if s == nil {
		return nil
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := make([]string, 0, len(s.styles))
	for n := range s.styles {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// DefineTag registers display information for an overlay tag.
func (s *StyleSheet) DefineTag(info TagInfo) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tags[info.Guid] = info
}

// Tag returns the display information for a tag GUID.
func (s *StyleSheet) Tag(id uuid.UUID) (TagInfo, bool) {
	if s == nil {
		return TagInfo{}, false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	info, ok := s.tags[id]
	return info, ok
}

// Tags lists the registered tags in canonical (descending GUID) order.
func (s *StyleSheet) Tags() []TagInfo {
	if s == nil {
		return nil
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]TagInfo, 0, len(s.tags))
	for _, info := range s.tags {
		out = append(out, info)
	}
	sort.Slice(out, func(i, j int) bool {
		return tsstring.CompareGuids(out[i].Guid, out[j].Guid) > 0
	})
	return out
}
