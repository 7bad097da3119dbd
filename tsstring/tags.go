// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: tsstring/tags.go
// Summary: Ordering and merging of overlay tag GUID lists.

package tsstring

import (
	"bytes"
	"slices"

	"github.com/google/uuid"
)

// CompareGuids orders two GUIDs by their byte representation.
func CompareGuids(a, b uuid.UUID) int {
	return bytes.Compare(a[:], b[:])
}

// SortTags returns a copy of tags in descending order with duplicates removed.
func SortTags(tags []uuid.UUID) []uuid.UUID {
	if len(tags) == 0 {
		return nil
	}
	out := append([]uuid.UUID(nil), tags...)
	slices.SortFunc(out, func(a, b uuid.UUID) int { return CompareGuids(b, a) })
	return slices.Compact(out)
}

// AddReplacementTags merges two tag lists that are each already in
// descending order. The result is descending and holds every GUID once.
func AddReplacementTags(retained, added []uuid.UUID) []uuid.UUID {
	out := make([]uuid.UUID, 0, len(retained)+len(added))
	i, j := 0, 0
	push := func(id uuid.UUID) {
		if n := len(out); n > 0 && out[n-1] == id {
			return
		}
		out = append(out, id)
	}
	for i < len(retained) && j < len(added) {
		switch c := CompareGuids(retained[i], added[j]); {
		case c > 0:
			push(retained[i])
			i++
		case c < 0:
			push(added[j])
			j++
		default:
			push(retained[i])
			i++
			j++
		}
	}
	for ; i < len(retained); i++ {
		push(retained[i])
	}
	for ; j < len(added); j++ {
		push(added[j])
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// RemoveTags returns the tags of list that are not in drop.
func RemoveTags(list, drop []uuid.UUID) []uuid.UUID {
	if len(drop) == 0 {
		return slices.Clone(list)
	}
	var out []uuid.UUID
	for _, id := range list {
		if !slices.Contains(drop, id) {
			out = append(out, id)
		}
	}
	return out
}
