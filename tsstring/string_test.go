// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: tsstring/string_test.go
// Summary: Tests for formatted strings, the builder and tag merging.

package tsstring

import (
	"errors"
	"testing"

	"github.com/google/uuid"
)

func TestBuilderMergesEqualRuns(t *testing.T) {
	en := Props{WS: 1}
	fr := Props{WS: 2}
	s := NewBuilder().Append("ab", en).Append("cd", en).Append("ef", fr).String()

	if s.Text() != "abcdef" {
		t.Fatalf("text = %q", s.Text())
	}
	if s.RunCount() != 2 {
		t.Fatalf("RunCount = %d, want 2 (%s)", s.RunCount(), s)
	}
	if r := s.Run(0); r.Min != 0 || r.Lim != 4 || r.Props.WS != 1 {
		t.Errorf("run 0 = %+v", r)
	}
	if r := s.Run(1); r.Min != 4 || r.Lim != 6 || r.Props.WS != 2 {
		t.Errorf("run 1 = %+v", r)
	}
}

func TestBuilderReplaceInheritsPrecedingProps(t *testing.T) {
	s := NewBuilder().Append("abc", Props{WS: 1}).Append("def", Props{WS: 2}).String()

	tests := []struct {
		name   string
		min    int
		lim    int
		wantWS []int
	}{
		{"start", 0, 0, []int{1, 1, 1, 1, 1, 2, 2, 2}},
		{"after first run", 3, 3, []int{1, 1, 1, 1, 1, 2, 2, 2}},
		{"inside second run", 4, 5, []int{1, 1, 1, 2, 2, 2, 2}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := s.Builder()
			if err := b.Replace(tt.min, tt.lim, "XX", nil); err != nil {
				t.Fatalf("Replace: %v", err)
			}
			got := b.String()
			if got.Len() != len(tt.wantWS) {
				t.Fatalf("Len = %d, want %d", got.Len(), len(tt.wantWS))
			}
			for i, ws := range tt.wantWS {
				if p := got.PropsAt(i); p.WS != ws {
					t.Errorf("PropsAt(%d).WS = %d, want %d (%s)", i, p.WS, ws, got)
				}
			}
		})
	}
}

func TestBuilderOutOfRange(t *testing.T) {
	b := New("abc", Props{}).Builder()
	if err := b.Replace(2, 5, "x", nil); !errors.Is(err, ErrOutOfRange) {
		t.Errorf("Replace past end: err = %v, want ErrOutOfRange", err)
	}
	if err := b.SetProps(2, 1, Props{}); !errors.Is(err, ErrOutOfRange) {
		t.Errorf("SetProps reversed: err = %v, want ErrOutOfRange", err)
	}
}

func TestEmptyStringKeepsProps(t *testing.T) {
	b := New("abc", Props{Style: "Emphasis"}).Builder()
	if err := b.Replace(0, 3, "", nil); err != nil {
		t.Fatal(err)
	}
	s := b.String()
	if s.Len() != 0 || s.RunCount() != 1 {
		t.Fatalf("Len=%d RunCount=%d", s.Len(), s.RunCount())
	}
	if s.PropsAt(0).Style != "Emphasis" {
		t.Errorf("empty string lost style: %+v", s.PropsAt(0))
	}
}

func TestSetPropsSplitsRuns(t *testing.T) {
	b := New("abcdef", Props{WS: 1}).Builder()
	if err := b.SetProps(2, 4, Props{WS: 1, Style: "Strong"}); err != nil {
		t.Fatal(err)
	}
	s := b.String()
	if s.RunCount() != 3 {
		t.Fatalf("RunCount = %d, want 3 (%s)", s.RunCount(), s)
	}
	if s.RunAt(2) != 1 || s.RunAt(3) != 1 || s.RunAt(4) != 2 {
		t.Errorf("RunAt mismatch: %d %d %d", s.RunAt(2), s.RunAt(3), s.RunAt(4))
	}
	if s.RunAt(6) != 2 {
		t.Errorf("RunAt(Len) = %d, want last run", s.RunAt(6))
	}
}

func TestSlice(t *testing.T) {
	s := NewBuilder().Append("abc", Props{WS: 1}).Append("def", Props{WS: 2}).String()
	sub, err := s.Slice(2, 5)
	if err != nil {
		t.Fatal(err)
	}
	if sub.Text() != "cde" || sub.RunCount() != 2 {
		t.Fatalf("Slice = %s", sub)
	}
	if r := sub.Run(1); r.Min != 1 || r.Lim != 3 || r.Props.WS != 2 {
		t.Errorf("run 1 = %+v", r)
	}
	empty, _ := s.Slice(4, 4)
	if empty.PropsAt(0).WS != 2 {
		t.Errorf("empty slice props = %+v", empty.PropsAt(0))
	}
}

func mustGuid(t *testing.T, s string) uuid.UUID {
	t.Helper()
	id, err := uuid.Parse(s)
	if err != nil {
		t.Fatal(err)
	}
	return id
}

func TestAddReplacementTags(t *testing.T) {
	a := mustGuid(t, "10000000-0000-0000-0000-000000000000")
	b := mustGuid(t, "20000000-0000-0000-0000-000000000000")
	c := mustGuid(t, "30000000-0000-0000-0000-000000000000")
	d := mustGuid(t, "40000000-0000-0000-0000-000000000000")

	tests := []struct {
		name     string
		retained []uuid.UUID
		added    []uuid.UUID
		want     []uuid.UUID
	}{
		{"both empty", nil, nil, nil},
		{"retained only", []uuid.UUID{c, a}, nil, []uuid.UUID{c, a}},
		{"added only", nil, []uuid.UUID{d, b}, []uuid.UUID{d, b}},
		{"interleaved", []uuid.UUID{c, a}, []uuid.UUID{d, b}, []uuid.UUID{d, c, b, a}},
		{"duplicates collapse", []uuid.UUID{c, b}, []uuid.UUID{c, b, a}, []uuid.UUID{c, b, a}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := AddReplacementTags(tt.retained, tt.added)
			if len(got) != len(tt.want) {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("got[%d] = %v, want %v", i, got[i], tt.want[i])
				}
				if i > 0 && CompareGuids(got[i-1], got[i]) <= 0 {
					t.Errorf("result not strictly descending at %d", i)
				}
			}
		})
	}
}

func TestSortTagsCanonical(t *testing.T) {
	a := mustGuid(t, "10000000-0000-0000-0000-000000000000")
	b := mustGuid(t, "20000000-0000-0000-0000-000000000000")
	p1 := Props{}.WithTags(a, b, a)
	p2 := Props{}.WithTags(b, a)
	if !p1.Equal(p2) {
		t.Errorf("tag order should not matter: %v vs %v", p1.Tags, p2.Tags)
	}
	if len(p1.Tags) != 2 || p1.Tags[0] != b {
		t.Errorf("tags = %v, want [b a]", p1.Tags)
	}
}

func TestToggleApply(t *testing.T) {
	cases := []struct {
		tog       Toggle
		inherited bool
		want      bool
	}{
		{ToggleUnset, true, true},
		{ToggleOff, true, false},
		{ToggleOn, false, true},
		{ToggleInvert, true, false},
		{ToggleInvert, false, true},
	}
	for _, c := range cases {
		if got := c.tog.Apply(c.inherited); got != c.want {
			t.Errorf("Toggle(%d).Apply(%v) = %v, want %v", c.tog, c.inherited, got, c.want)
		}
	}
}
