// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later

package txtsrc

import (
	"errors"
	"testing"

	"fwviews/tsstring"

	"github.com/google/uuid"
)

var (
	guidXYZ   = uuid.MustParse("11111111-0000-0000-0000-000000000001")
	guidQQ    = uuid.MustParse("11111111-0000-0000-0000-000000000002")
	guidNone  = uuid.MustParse("11111111-0000-0000-0000-000000000003")
	orcString = string(tsstring.ObjReplacementChar)
)

// testVC returns fixed substitutes; italic text for guidXYZ.
func testVC() ViewConstructor {
	return ViewConstructorFunc(func(id uuid.UUID) *tsstring.String {
		switch id {
		case guidXYZ:
			return tsstring.New("XYZ", tsstring.Props{Italic: tsstring.ToggleOn})
		case guidQQ:
			return tsstring.New("QQ", tsstring.Props{})
		}
		return nil
	})
}

func objProps(kind tsstring.ObjKind, id uuid.UUID) tsstring.Props {
	return tsstring.Props{Bold: tsstring.ToggleOn, ObjData: tsstring.ObjData{Kind: kind, Guid: id}}
}

// scenarioB is "a" + object("XYZ") + "b".
func scenarioB(t *testing.T) *Mapped {
	t.Helper()
	str := tsstring.NewBuilder().
		Append("a", tsstring.Props{}).
		Append(orcString, objProps(tsstring.ObjNameGuidHot, guidXYZ)).
		Append("b", tsstring.Props{}).
		String()
	m := NewMapped(nil, testVC())
	if err := m.AddString(str, nil); err != nil {
		t.Fatalf("AddString: %v", err)
	}
	return m
}

// twoObjects is "ab" + object("XYZ") + "c" + own-name object("QQ", omitted from search) + "d".
func twoObjects(t *testing.T) *Mapped {
	t.Helper()
	m := NewMapped(nil, testVC())
	first := tsstring.NewBuilder().
		Append("ab", tsstring.Props{}).
		Append(orcString, objProps(tsstring.ObjNameGuidHot, guidXYZ)).
		String()
	second := tsstring.NewBuilder().
		Append("c", tsstring.Props{}).
		Append(orcString, objProps(tsstring.ObjOwnNameGuidHot, guidQQ)).
		Append("d", tsstring.Props{}).
		String()
	for _, s := range []*tsstring.String{first, second} {
		if err := m.AddString(s, nil); err != nil {
			t.Fatalf("AddString: %v", err)
		}
	}
	return m
}

func TestMappedScenarioB(t *testing.T) {
	m := scenarioB(t)

	if m.Cch() != 3 || m.Length() != 5 {
		t.Fatalf("Cch/Length = %d/%d, want 3/5", m.Cch(), m.Length())
	}
	for ichLog, ichRen := range []int{0, 1, 4, 5} {
		if got := m.LogToRen(ichLog); got != ichRen {
			t.Errorf("LogToRen(%d) = %d, want %d", ichLog, got, ichRen)
		}
	}
	for ichRen, ichLog := range []int{0, 1, 1, 1, 2, 3} {
		if got := m.RenToLog(ichRen); got != ichLog {
			t.Errorf("RenToLog(%d) = %d, want %d", ichRen, got, ichLog)
		}
	}
	got, err := m.Fetch(0, 5)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if string(got) != "aXYZb" {
		t.Errorf("Fetch = %q, want aXYZb", string(got))
	}
}

func TestMappedSubstitutionAccounting(t *testing.T) {
	m := scenarioB(t)
	if d := m.LogToRen(2) - m.LogToRen(1); d != 3 {
		t.Errorf("object contributes %d rendered chars, want 3", d)
	}
	items := m.Items()
	if len(items) != 1 {
		t.Fatalf("items = %d, want 1", len(items))
	}
	if it := items[0]; it.IchLog != 2 || it.IchRen != 4 || it.Cch() != 3 || it.OmitSearch {
		t.Errorf("item = %+v", it)
	}
}

func TestMappedRoundTripAndMonotonic(t *testing.T) {
	m := twoObjects(t)
	prevRen, prevSearch := -1, -1
	for i := 0; i <= m.Cch(); i++ {
		ren := m.LogToRen(i)
		if back := m.RenToLog(ren); back != i {
			t.Errorf("RenToLog(LogToRen(%d)) = %d", i, back)
		}
		if ren < prevRen {
			t.Errorf("LogToRen not monotonic at %d: %d < %d", i, ren, prevRen)
		}
		search := m.LogToSearch(i)
		if search < prevSearch {
			t.Errorf("LogToSearch not monotonic at %d: %d < %d", i, search, prevSearch)
		}
		prevRen, prevSearch = ren, search
	}
	if m.Length() != 9 || m.LengthSearch() != 7 {
		t.Errorf("Length/LengthSearch = %d/%d, want 9/7", m.Length(), m.LengthSearch())
	}
}

func TestMappedSearchOmission(t *testing.T) {
	m := twoObjects(t)
	// The own-name object is logical character 4.
	if before, after := m.LogToSearch(4), m.LogToSearch(5); before != after {
		t.Errorf("omitted object has search width %d", after-before)
	}
	if before, after := m.LogToSearch(2), m.LogToSearch(3); after-before != 3 {
		t.Errorf("searchable object has search width %d, want 3", after-before)
	}

	got, err := m.FetchSearch(0, m.LengthSearch())
	if err != nil {
		t.Fatalf("FetchSearch: %v", err)
	}
	if string(got) != "abXYZcd" {
		t.Errorf("FetchSearch = %q, want abXYZcd", string(got))
	}
	if got := m.SearchToLog(4); got != 2 {
		t.Errorf("SearchToLog inside substitute = %d, want 2", got)
	}
	if got := m.SearchToLog(6); got != 5 {
		t.Errorf("SearchToLog past omitted object = %d, want 5", got)
	}
}

func TestMappedFetchPartial(t *testing.T) {
	m := twoObjects(t)
	tests := []struct {
		min, lim int
		want     string
	}{
		{0, 9, "abXYZcQQd"},
		{3, 7, "YZcQ"},
		{5, 6, "c"},
		{7, 9, "Qd"},
		{4, 4, ""},
	}
	for _, tt := range tests {
		got, err := m.Fetch(tt.min, tt.lim)
		if err != nil {
			t.Fatalf("Fetch(%d,%d): %v", tt.min, tt.lim, err)
		}
		if string(got) != tt.want {
			t.Errorf("Fetch(%d,%d) = %q, want %q", tt.min, tt.lim, string(got), tt.want)
		}
	}
	if _, err := m.Fetch(0, 10); !errors.Is(err, ErrOutOfRange) {
		t.Errorf("expected ErrOutOfRange, got %v", err)
	}
}

func TestMappedReplaceContentsIdempotent(t *testing.T) {
	m := twoObjects(t)
	before := m.Items()
	cch, cchRen := m.Cch(), m.CchRen()

	ss, err := m.StringAtIndex(1)
	if err != nil {
		t.Fatalf("StringAtIndex: %v", err)
	}
	same := NewMapped(nil, testVC())
	if err := same.AddString(ss.Str, ss.Store); err != nil {
		t.Fatalf("AddString: %v", err)
	}
	if err := m.ReplaceContents(1, 2, same); err != nil {
		t.Fatalf("ReplaceContents: %v", err)
	}

	if m.Cch() != cch || m.CchRen() != cchRen {
		t.Errorf("Cch/CchRen = %d/%d, want %d/%d", m.Cch(), m.CchRen(), cch, cchRen)
	}
	after := m.Items()
	if len(after) != len(before) {
		t.Fatalf("items = %d, want %d", len(after), len(before))
	}
	for i := range before {
		a, b := after[i], before[i]
		if a.IchLog != b.IchLog || a.IchRen != b.IchRen || a.Cch() != b.Cch() || a.OmitSearch != b.OmitSearch {
			t.Errorf("item %d = %+v, want %+v", i, a, b)
		}
	}
}

func TestMappedReplaceContentsShiftsItems(t *testing.T) {
	m := twoObjects(t)
	repl := NewSimple(nil)
	repl.AddString(tsstring.New("wxyz", tsstring.Props{}), nil)

	// "ab"+obj becomes "wxyz"; the second object moves from 5 to 6.
	if err := m.ReplaceContents(0, 1, repl); err != nil {
		t.Fatalf("ReplaceContents: %v", err)
	}
	items := m.Items()
	if len(items) != 1 {
		t.Fatalf("items = %d, want 1", len(items))
	}
	if items[0].IchLog != 6 || items[0].IchRen != 7 {
		t.Errorf("item = %+v, want ichlog 6 ichren 7", items[0])
	}
	got, _ := m.Fetch(0, m.Length())
	if string(got) != "wxyzcQQd" {
		t.Errorf("Fetch = %q", string(got))
	}
}

func TestMappedRejectsEmptyParagraph(t *testing.T) {
	m := scenarioB(t)
	if err := m.ReplaceContents(0, -1, nil); !errors.Is(err, ErrEmptyParagraph) {
		t.Fatalf("expected ErrEmptyParagraph, got %v", err)
	}
	if m.Length() != 5 || len(m.Items()) != 1 {
		t.Errorf("paragraph modified after rejected edit")
	}
}

func TestMappedMissingSubstitute(t *testing.T) {
	m := NewMapped(nil, testVC())
	str := tsstring.NewBuilder().
		Append("x", tsstring.Props{}).
		Append(orcString, objProps(tsstring.ObjNameGuidHot, guidNone)).
		String()
	if err := m.AddString(str, nil); !errors.Is(err, ErrMissingSubstitute) {
		t.Fatalf("expected ErrMissingSubstitute, got %v", err)
	}
	if m.CStrings() != 0 {
		t.Errorf("rejected string was added")
	}
}

func TestMappedMoveableObjectPlaceholder(t *testing.T) {
	m := NewMapped(nil, testVC())
	str := tsstring.NewBuilder().
		Append("x", tsstring.Props{}).
		Append(orcString, objProps(tsstring.ObjGuidMoveableObjDisp, guidNone)).
		String()
	if err := m.AddString(str, nil); err != nil {
		t.Fatalf("AddString: %v", err)
	}
	items := m.Items()
	if len(items) != 1 || items[0].Cch() != 1 || !items[0].OmitSearch {
		t.Fatalf("items = %+v", items)
	}
	if !items[0].Subs.PropsAt(0).ObjData.IsZero() {
		t.Errorf("placeholder still references the object")
	}
	got, _ := m.Fetch(0, m.Length())
	if string(got) != "x"+orcString {
		t.Errorf("Fetch = %q", string(got))
	}
	if m.LengthSearch() != 1 {
		t.Errorf("LengthSearch = %d, want 1", m.LengthSearch())
	}
}

func TestMappedUnmappedObjectKinds(t *testing.T) {
	m := NewMapped(nil, testVC())
	str := tsstring.NewBuilder().
		Append(orcString, objProps(tsstring.ObjPictEvenHot, guidNone)).
		String()
	if err := m.AddString(str, nil); err != nil {
		t.Fatalf("AddString: %v", err)
	}
	if len(m.Items()) != 0 || m.Length() != 1 {
		t.Errorf("pictures should not be substituted")
	}
}

func TestMappedSubstituteProps(t *testing.T) {
	m := scenarioB(t)

	// Rendered 2 is "Y": paragraph store, then the bold object run, then
	// the italic substitute run.
	info, err := m.GetCharPropInfo(2)
	if err != nil {
		t.Fatalf("GetCharPropInfo: %v", err)
	}
	c := info.Chrp()
	if !c.Bold || !c.Italic {
		t.Errorf("substitute props = %+v, want bold italic", c)
	}
	if info.Min != 1 || info.Lim != 4 {
		t.Errorf("range = [%d,%d), want [1,4)", info.Min, info.Lim)
	}
	if info.Store.Depth() != 2 {
		t.Errorf("store depth = %d, want 2", info.Store.Depth())
	}

	info, err = m.GetCharPropInfo(4)
	if err != nil {
		t.Fatalf("GetCharPropInfo: %v", err)
	}
	if c := info.Chrp(); c.Bold || c.Italic {
		t.Errorf("plain props = %+v", c)
	}
	if info.Min != 4 || info.Lim != 5 {
		t.Errorf("range = [%d,%d), want [4,5)", info.Min, info.Lim)
	}

	if _, err := m.GetCharPropInfo(6); !errors.Is(err, ErrInternal) {
		t.Errorf("expected ErrInternal past the end, got %v", err)
	}
}

func TestMappedSetString(t *testing.T) {
	m := twoObjects(t)
	if err := m.SetString(0, tsstring.New("z", tsstring.Props{})); err != nil {
		t.Fatalf("SetString: %v", err)
	}
	got, _ := m.Fetch(0, m.Length())
	if string(got) != "zcQQd" {
		t.Errorf("Fetch = %q, want zcQQd", string(got))
	}
	if items := m.Items(); len(items) != 1 || items[0].IchLog != 3 {
		t.Errorf("items = %+v", items)
	}
}

func TestGetRenderTmiTies(t *testing.T) {
	// Adjacent objects where the second substitute is empty share IchRen.
	tt := tmiTable{
		{IchLog: 1, Subs: tsstring.New("Q", tsstring.Props{})},
		{IchLog: 2, Subs: tsstring.Empty(tsstring.Props{})},
	}
	tt.renumber(0)
	if tt[0].IchRen != 1 || tt[1].IchRen != 1 {
		t.Fatalf("ichren = %d,%d", tt[0].IchRen, tt[1].IchRen)
	}
	if err := tt.verify(); err != nil {
		t.Fatalf("verify: %v", err)
	}
	if i := tt.renderIndex(1); i != 1 {
		t.Errorf("renderIndex(1) = %d, want 1", i)
	}
	if i := tt.renderIndex(0); i != 0 {
		t.Errorf("renderIndex(0) = %d, want 0", i)
	}
	if i := tt.sourceIndex(2); i != 1 {
		t.Errorf("sourceIndex(2) = %d, want 1", i)
	}
}

func TestMappedIdentityWithoutItems(t *testing.T) {
	str := tsstring.NewBuilder().
		Append("ab", tsstring.Props{}).
		Append(orcString, tsstring.Props{}).
		Append("c", tsstring.Props{}).
		Append(orcString, objProps(tsstring.ObjPictEvenHot, guidNone)).
		String()
	m := NewMapped(nil, testVC())
	if err := m.AddString(str, nil); err != nil {
		t.Fatalf("AddString: %v", err)
	}
	if len(m.Items()) != 0 {
		t.Fatalf("Items = %v, want none", m.Items())
	}

	n := m.Cch()
	if m.Length() != n || m.LengthSearch() != n {
		t.Errorf("lengths = %d/%d, want %d", m.Length(), m.LengthSearch(), n)
	}
	for i := 0; i <= n; i++ {
		conv := []struct {
			name string
			fn   func(int) int
		}{
			{"LogToRen", m.LogToRen},
			{"RenToLog", m.RenToLog},
			{"LogToSearch", m.LogToSearch},
			{"SearchToLog", m.SearchToLog},
		}
		for _, c := range conv {
			if got := c.fn(i); got != i {
				t.Errorf("%s(%d) = %d", c.name, i, got)
			}
		}
	}
	got, err := m.Fetch(0, n)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if want := "ab" + orcString + "c" + orcString; string(got) != want {
		t.Errorf("Fetch = %q, want %q", string(got), want)
	}
}
