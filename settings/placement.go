// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: settings/placement.go
// Summary: Window placement blobs for the find/replace dialog.

package settings

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
)

// Placement is a window rectangle in screen cells.
type Placement struct {
	X, Y          int32
	Width, Height int32
}

// SavePlacement stores the dialog position and expanded state.
func (s *Store) SavePlacement(title string, p Placement, expanded bool) error {
	var buf bytes.Buffer
	if err := binary.Write(&buf, binary.LittleEndian, p); err != nil {
		return err
	}
	if err := s.Put(title, ValuePosition, buf.Bytes()); err != nil {
		return err
	}
	flag := []byte{0}
	if expanded {
		flag[0] = 1
	}
	return s.Put(title, ValueExpanded, flag)
}

// LoadPlacement returns the stored placement. ok is false when nothing has
// been saved.
func (s *Store) LoadPlacement(title string) (p Placement, expanded, ok bool, err error) {
	raw, err := s.Get(title, ValuePosition)
	if errors.Is(err, ErrNotFound) {
		return Placement{}, false, false, nil
	}
	if err != nil {
		return Placement{}, false, false, err
	}
	if err := binary.Read(bytes.NewReader(raw), binary.LittleEndian, &p); err != nil {
		return Placement{}, false, false, fmt.Errorf("decode %s/%s: %w", title, ValuePosition, err)
	}
	flag, err := s.Get(title, ValueExpanded)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return Placement{}, false, false, err
	}
	return p, len(flag) > 0 && flag[0] != 0, true, nil
}
