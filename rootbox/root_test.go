// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later

package rootbox

import (
	"errors"
	"slices"
	"testing"

	"fwviews/pattern"
	"fwviews/textprops"
	"fwviews/tsstring"
	"fwviews/txtsrc"

	"github.com/google/uuid"
)

func mustRoot(t *testing.T, text string) *Root {
	t.Helper()
	r, err := FromLines(nil, text, tsstring.Props{})
	if err != nil {
		t.Fatalf("FromLines: %v", err)
	}
	return r
}

func TestReplaceRangeAndUndo(t *testing.T) {
	r := mustRoot(t, "hello world\nsecond")
	var changed [][]int
	r.OnPropChanged(func(paras []int) { changed = append(changed, paras) })

	p := r.Paragraph(0)
	if err := p.ReplaceRange(6, 11, tsstring.New("there", tsstring.Props{})); err != nil {
		t.Fatalf("ReplaceRange: %v", err)
	}
	if got := r.Text(); got != "hello there\nsecond" {
		t.Fatalf("Text = %q", got)
	}
	if len(changed) != 1 || !slices.Equal(changed[0], []int{0}) {
		t.Errorf("PropChanged = %v", changed)
	}
	if label, ok := r.UndoLabel(); !ok || label != "Undo Typing" {
		t.Errorf("UndoLabel = %q, %v", label, ok)
	}

	if err := r.Undo(); err != nil {
		t.Fatalf("Undo: %v", err)
	}
	if got := r.Text(); got != "hello world\nsecond" {
		t.Errorf("after undo Text = %q", got)
	}
	if err := r.Redo(); err != nil {
		t.Fatalf("Redo: %v", err)
	}
	if got := r.Text(); got != "hello there\nsecond" {
		t.Errorf("after redo Text = %q", got)
	}
	if err := r.Redo(); !errors.Is(err, ErrNothingToUndo) {
		t.Errorf("second Redo: %v", err)
	}
}

func TestUndoTaskGroupsEdits(t *testing.T) {
	r := mustRoot(t, "aa\nbb")
	r.BeginUndoTask("Undo Replace All", "Redo Replace All")
	r.BeginUndoTask("nested", "nested")
	for i := 0; i < 2; i++ {
		if err := r.Paragraph(i).ReplaceRange(0, 1, tsstring.New("x", tsstring.Props{})); err != nil {
			t.Fatalf("ReplaceRange: %v", err)
		}
	}
	r.EndUndoTask()

	if label, _ := r.UndoLabel(); label != "Undo Replace All" {
		t.Errorf("UndoLabel = %q", label)
	}
	if err := r.Undo(); err != nil {
		t.Fatalf("Undo: %v", err)
	}
	if got := r.Text(); got != "aa\nbb" {
		t.Errorf("Text = %q, want both edits undone", got)
	}
	if _, ok := r.UndoLabel(); ok {
		t.Errorf("undo stack should be empty")
	}
}

func TestHeldPropChangedIsBatched(t *testing.T) {
	r := mustRoot(t, "a\nb\nc")
	var calls [][]int
	r.OnPropChanged(func(paras []int) { calls = append(calls, paras) })

	r.HoldPropChanged()
	for _, i := range []int{2, 0, 2} {
		if err := r.Paragraph(i).ReplaceRange(0, 1, tsstring.New("z", tsstring.Props{})); err != nil {
			t.Fatalf("ReplaceRange: %v", err)
		}
	}
	if len(calls) != 0 {
		t.Fatalf("notified while held: %v", calls)
	}
	r.FlushPropChanged()
	if len(calls) != 1 || !slices.Equal(calls[0], []int{0, 2}) {
		t.Errorf("PropChanged = %v, want one call with [0 2]", calls)
	}
}

func TestCanFormatChar(t *testing.T) {
	r := mustRoot(t, "0123456789")
	p := r.Paragraph(0)
	p.SetReadOnly(4, 6)

	tests := []struct {
		min, lim int
		want     bool
	}{
		{0, 4, true},
		{3, 5, false},
		{5, 7, false},
		{6, 9, true},
	}
	for _, tt := range tests {
		if got := p.CanFormatChar(tt.min, tt.lim); got != tt.want {
			t.Errorf("CanFormatChar(%d,%d) = %v, want %v", tt.min, tt.lim, got, tt.want)
		}
	}

	if err := p.ReplaceRange(0, 2, tsstring.New("abcd", tsstring.Props{})); err != nil {
		t.Fatalf("ReplaceRange: %v", err)
	}
	if p.CanFormatChar(6, 8) || !p.CanFormatChar(4, 6) {
		t.Errorf("read-only range did not move with the edit")
	}
	p.SetEditable(false)
	if p.CanFormatChar(0, 1) {
		t.Errorf("non-editable paragraph accepted an edit")
	}
}

func TestSetSelectionValidates(t *testing.T) {
	r := mustRoot(t, "abc")
	if err := r.SetSelection(pattern.Selection{Para: 0, Min: 1, Lim: 9}); !errors.Is(err, txtsrc.ErrOutOfRange) {
		t.Errorf("expected ErrOutOfRange, got %v", err)
	}
	if err := r.SetSelection(pattern.Selection{Para: 0, Min: 1, Lim: 3}); err != nil {
		t.Fatalf("SetSelection: %v", err)
	}
	if got := r.SelectedText(); got != "bc" {
		t.Errorf("SelectedText = %q", got)
	}
}

func TestOverridesFollowEdits(t *testing.T) {
	r := mustRoot(t, "teh cat")
	p := r.Paragraph(0)
	if err := p.SetOverrides([]txtsrc.DispPropOverride{{Min: 0, Lim: 3, Props: txtsrc.SpellingProps()}}); err != nil {
		t.Fatalf("SetOverrides: %v", err)
	}
	c, _, _, err := p.Source().CharProps(1)
	if err != nil {
		t.Fatalf("CharProps: %v", err)
	}
	if c.Underline != tsstring.UnderlineSquiggle {
		t.Errorf("override not applied: %+v", c)
	}

	if err := p.ReplaceRange(0, 7, tsstring.New("a", tsstring.Props{})); err != nil {
		t.Fatalf("ReplaceRange: %v", err)
	}
	if n := p.Source().Length(); n != 1 {
		t.Errorf("Length = %d, want 1", n)
	}
	if c, _, _, _ := p.Source().CharProps(0); c.Underline != tsstring.UnderlineSquiggle {
		t.Errorf("clamped override lost: %+v", c)
	}
}

func TestRejectedEditLeavesParagraph(t *testing.T) {
	id := uuid.MustParse("44444444-0000-0000-0000-000000000001")
	vc := txtsrc.ViewConstructorFunc(func(uuid.UUID) *tsstring.String { return nil })
	r := New(textprops.NewDefaultStore(nil), vc)
	p, err := r.AddParagraph(tsstring.New("abc", tsstring.Props{}))
	if err != nil {
		t.Fatalf("AddParagraph: %v", err)
	}
	obj := tsstring.New(string(tsstring.ObjReplacementChar), tsstring.Props{
		ObjData: tsstring.ObjData{Kind: tsstring.ObjNameGuidHot, Guid: id},
	})
	if err := p.ReplaceRange(1, 2, obj); !errors.Is(err, txtsrc.ErrMissingSubstitute) {
		t.Fatalf("expected ErrMissingSubstitute, got %v", err)
	}
	if got := r.Text(); got != "abc" {
		t.Errorf("Text = %q after rejected edit", got)
	}
	if _, ok := r.UndoLabel(); ok {
		t.Errorf("rejected edit was recorded for undo")
	}
}

func TestUndoRestoresReadOnlyRanges(t *testing.T) {
	r := mustRoot(t, "cat and LOCK")
	p := r.Paragraph(0)
	p.SetReadOnly(8, 12)
	if err := p.ReplaceRange(0, 3, tsstring.New("a", tsstring.Props{})); err != nil {
		t.Fatalf("ReplaceRange: %v", err)
	}
	if p.CanFormatChar(6, 10) || !p.CanFormatChar(4, 6) {
		t.Fatalf("read-only range did not follow the edit")
	}

	if err := r.Undo(); err != nil {
		t.Fatalf("Undo: %v", err)
	}
	tests := []struct {
		min, lim int
		want     bool
	}{
		{6, 8, true},
		{8, 12, false},
		{10, 12, false},
	}
	for _, tt := range tests {
		if got := p.CanFormatChar(tt.min, tt.lim); got != tt.want {
			t.Errorf("after undo CanFormatChar(%d,%d) = %v, want %v", tt.min, tt.lim, got, tt.want)
		}
	}

	if err := r.Redo(); err != nil {
		t.Fatalf("Redo: %v", err)
	}
	if p.CanFormatChar(6, 10) || !p.CanFormatChar(4, 6) {
		t.Errorf("after redo read-only range is not at [6,10)")
	}
}

func streamText(t *testing.T, r *Root) string {
	t.Helper()
	data, err := r.Bytes()
	if err != nil {
		t.Fatalf("Bytes: %v", err)
	}
	return string(data)
}

func TestStreamFollowsEdits(t *testing.T) {
	r := mustRoot(t, "caf\u00e9 one\nsecond\nthird")
	if got := streamText(t, r); got != r.Text() {
		t.Fatalf("stream = %q, want %q", got, r.Text())
	}

	steps := []struct {
		name string
		do   func() error
		want string
	}{
		{"replace after multibyte", func() error {
			return r.Paragraph(0).ReplaceRange(5, 8, tsstring.New("two", tsstring.Props{}))
		}, "caf\u00e9 two\nsecond\nthird"},
		{"grow middle paragraph", func() error {
			return r.Paragraph(1).ReplaceRange(0, 6, tsstring.New("2nd line", tsstring.Props{}))
		}, "caf\u00e9 two\n2nd line\nthird"},
		{"empty last paragraph", func() error {
			return r.Paragraph(2).ReplaceRange(0, 5, tsstring.Empty(tsstring.Props{}))
		}, "caf\u00e9 two\n2nd line\n"},
		{"undo", r.Undo, "caf\u00e9 two\n2nd line\nthird"},
		{"undo again", r.Undo, "caf\u00e9 two\nsecond\nthird"},
		{"redo", r.Redo, "caf\u00e9 two\n2nd line\nthird"},
	}
	for _, st := range steps {
		if err := st.do(); err != nil {
			t.Fatalf("%s: %v", st.name, err)
		}
		if got := streamText(t, r); got != st.want {
			t.Errorf("%s: stream = %q, want %q", st.name, got, st.want)
		}
		if got := r.Text(); got != st.want {
			t.Errorf("%s: Text = %q, want %q", st.name, got, st.want)
		}
	}
	if err := r.Close(); err != nil {
		t.Errorf("Close: %v", err)
	}
}

func TestRejectedEditLeavesStream(t *testing.T) {
	vc := txtsrc.ViewConstructorFunc(func(uuid.UUID) *tsstring.String { return nil })
	r := New(nil, vc)
	p, err := r.AddParagraph(tsstring.New("abc", tsstring.Props{}))
	if err != nil {
		t.Fatalf("AddParagraph: %v", err)
	}
	obj := tsstring.New(string(tsstring.ObjReplacementChar), tsstring.Props{
		ObjData: tsstring.ObjData{Kind: tsstring.ObjNameGuidHot, Guid: uuid.New()},
	})
	if err := p.ReplaceRange(0, 1, obj); err == nil {
		t.Fatal("expected the unmappable edit to fail")
	}
	if got := streamText(t, r); got != "abc" {
		t.Errorf("stream = %q after rejected edit", got)
	}
}
