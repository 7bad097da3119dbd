// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later

package txtsrc

import (
	"errors"
	"testing"

	"fwviews/textprops"
	"fwviews/tsstring"
)

func TestOverrideScenarioD(t *testing.T) {
	base := NewSimple(nil)
	base.AddString(tsstring.New("abcdefgh", tsstring.Props{}), nil)
	o, err := NewOverride(base, []DispPropOverride{
		{Min: 2, Lim: 5, Props: textprops.Partial{UnderColor: tsstring.ColorBlue}},
	})
	if err != nil {
		t.Fatalf("NewOverride: %v", err)
	}

	tests := []struct {
		ich        int
		underColor tsstring.Color
		min, lim   int
	}{
		{3, tsstring.ColorBlue, 2, 5},
		{2, tsstring.ColorBlue, 2, 5},
		{6, tsstring.ColorUnset, 5, 8},
		{5, tsstring.ColorUnset, 5, 8},
		{1, tsstring.ColorUnset, 0, 2},
	}
	for _, tt := range tests {
		chrp, lo, hi, err := o.CharProps(tt.ich)
		if err != nil {
			t.Fatalf("CharProps(%d): %v", tt.ich, err)
		}
		if chrp.UnderColor != tt.underColor || lo != tt.min || hi != tt.lim {
			t.Errorf("CharProps(%d) = %v [%d,%d), want %v [%d,%d)",
				tt.ich, chrp.UnderColor, lo, hi, tt.underColor, tt.min, tt.lim)
		}
	}
	if got, _ := o.Fetch(0, 3); string(got) != "abc" {
		t.Errorf("Fetch = %q", string(got))
	}
}

func TestOverrideConvertsToRendered(t *testing.T) {
	m := scenarioB(t)
	o, err := NewOverride(m, []DispPropOverride{
		{Min: 2, Lim: 3, Props: textprops.Partial{BackColor: tsstring.ColorRed}},
	})
	if err != nil {
		t.Fatalf("NewOverride: %v", err)
	}
	list := o.Overrides()
	if len(list) != 1 || list[0].Min != 4 || list[0].Lim != 5 {
		t.Fatalf("overrides = %+v, want [4,5)", list)
	}
	chrp, _, _, err := o.CharProps(4)
	if err != nil {
		t.Fatalf("CharProps: %v", err)
	}
	if chrp.BackColor != tsstring.ColorRed {
		t.Errorf("BackColor = %v", chrp.BackColor)
	}
	if chrp, _, _, _ := o.CharProps(2); chrp.BackColor == tsstring.ColorRed {
		t.Errorf("substitute text should not be overridden")
	}
}

func TestUpdateOverrides(t *testing.T) {
	base := NewSimple(nil)
	base.AddString(tsstring.New("abcdefgh", tsstring.Props{}), nil)
	first := []DispPropOverride{{Min: 1, Lim: 3, Props: SpellingProps()}}
	o, err := NewOverride(base, first)
	if err != nil {
		t.Fatalf("NewOverride: %v", err)
	}

	changed, err := o.UpdateOverrides(first)
	if err != nil || changed {
		t.Errorf("same list: changed=%v err=%v", changed, err)
	}
	changed, err = o.UpdateOverrides([]DispPropOverride{{Min: 1, Lim: 4, Props: SpellingProps()}})
	if err != nil || !changed {
		t.Errorf("wider range: changed=%v err=%v", changed, err)
	}
	changed, err = o.UpdateOverrides([]DispPropOverride{{Min: 1, Lim: 4, Props: textprops.Partial{Bold: tsstring.ToggleOn}}})
	if err != nil || !changed {
		t.Errorf("new decoration: changed=%v err=%v", changed, err)
	}

	_, err = o.UpdateOverrides([]DispPropOverride{{Min: 4, Lim: 6}, {Min: 5, Lim: 7}})
	if !errors.Is(err, ErrBadOverrides) {
		t.Errorf("overlap: expected ErrBadOverrides, got %v", err)
	}
	if len(o.Overrides()) != 1 {
		t.Errorf("rejected list was installed")
	}
}

func TestSpellingOverride(t *testing.T) {
	base := NewSimple(nil)
	base.AddString(tsstring.New("teh cat", tsstring.Props{}), nil)
	o, err := NewSpellingOverride(base, []Range{{Min: 0, Lim: 3}})
	if err != nil {
		t.Fatalf("NewSpellingOverride: %v", err)
	}
	chrp, lo, hi, err := o.CharProps(1)
	if err != nil {
		t.Fatalf("CharProps: %v", err)
	}
	if chrp.Underline != tsstring.UnderlineSquiggle || chrp.EffectiveUnderColor() != tsstring.ColorRed {
		t.Errorf("spelling props = %+v", chrp)
	}
	if lo != 0 || hi != 3 {
		t.Errorf("range = [%d,%d)", lo, hi)
	}
	if chrp, _, _, _ := o.CharProps(4); chrp.Underline != tsstring.UnderlineNone {
		t.Errorf("CharProps(4).Underline = %v", chrp.Underline)
	}
	if o.Inner() != Source(base) {
		t.Errorf("Inner should return the wrapped source")
	}
}
