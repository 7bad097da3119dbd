// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: textprops/store.go
// Summary: Immutable, shareable property stores forming a derivation chain.

package textprops

import (
	"sync"

	"fwviews/tsstring"
)

// Store is an immutable resolved property context. Deriving a store with run
// properties yields a child store; children are cached so repeated lookups
// share one instance. Stores may be shared between paragraphs and goroutines.
type Store struct {
	parent *Store
	sheet  *StyleSheet
	chrp   CharRenderProps
	props  tsstring.Props

	mu       sync.Mutex
	children map[string]*Store
}

// NewStore returns a root store with the given base properties.
func NewStore(sheet *StyleSheet, base CharRenderProps) *Store {
	return &Store{sheet: sheet, chrp: base}
}

// NewDefaultStore returns a root store with DefaultCharRenderProps.
func NewDefaultStore(sheet *StyleSheet) *Store {
	return NewStore(sheet, DefaultCharRenderProps())
}

// Chrp returns the resolved properties of the store.
func (s *Store) Chrp() CharRenderProps {
	c := s.chrp
	if c.Tags != nil {
		c.Tags = append(c.Tags[:0:0], c.Tags...)
	}
	return c
}

// Props returns the run properties this store was derived with.
func (s *Store) Props() tsstring.Props { return s.props.Clone() }

// Parent returns the store this one was derived from, or nil for a root.
func (s *Store) Parent() *Store { return s.parent }

// Sheet returns the style catalog used for derivation.
func (s *Store) Sheet() *StyleSheet { return s.sheet }

// Derive returns the store resolved from s with props applied.
func (s *Store) Derive(props tsstring.Props) *Store {
	key := props.Key()
	s.mu.Lock()
	defer s.mu.Unlock()
	if child, ok := s.children[key]; ok {
		return child
	}
	child := &Store{
		parent: s,
		sheet:  s.sheet,
		chrp:   s.chrp.Apply(props, s.sheet),
		props:  props.Clone(),
	}
	if s.children == nil {
		s.children = make(map[string]*Store)
	}
	s.children[key] = child
	return child
}

// Depth is the number of derivations between s and its root.
func (s *Store) Depth() int {
	n := 0
	for p := s.parent; p != nil; p = p.parent {
		n++
	}
	return n
}
