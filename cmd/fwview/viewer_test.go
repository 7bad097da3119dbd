// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later

package main

import (
	"strings"
	"testing"

	"github.com/gdamore/tcell/v2"

	"fwviews/config"
	"fwviews/findrep"
	"fwviews/rootbox"
	"fwviews/tsstring"
)

func newTestViewer(t *testing.T, text, lexer string) *viewer {
	t.Helper()
	root, err := rootbox.FromLines(viewerStore(), text, tsstring.Props{})
	if err != nil {
		t.Fatalf("FromLines: %v", err)
	}
	return newViewer(viewerConfig{
		Path:     "doc.txt",
		Lexer:    lexer,
		Style:    "monokai",
		Spelling: true,
		System:   make(config.Config),
	}, root)
}

func typeKeys(v *viewer, keys string) {
	for _, r := range keys {
		v.handleKey(tcell.NewEventKey(tcell.KeyRune, r, 0), 10)
	}
}

func press(v *viewer, k tcell.Key) bool {
	return v.handleKey(tcell.NewEventKey(k, 0, 0), 10)
}

func simScreen(t *testing.T, w, h int) tcell.SimulationScreen {
	t.Helper()
	s := tcell.NewSimulationScreen("UTF-8")
	if err := s.Init(); err != nil {
		t.Fatalf("init screen: %v", err)
	}
	t.Cleanup(s.Fini)
	s.SetSize(w, h)
	return s
}

func rowText(s tcell.SimulationScreen, row int) string {
	cells, w, _ := s.GetContents()
	var sb strings.Builder
	for x := 0; x < w; x++ {
		c := cells[row*w+x]
		if len(c.Runes) > 0 {
			sb.WriteRune(c.Runes[0])
		}
	}
	return strings.TrimRight(sb.String(), " ")
}

func TestDrawShowsParagraphs(t *testing.T) {
	v := newTestViewer(t, "first line\nsecond\tline", "text")
	s := simScreen(t, 30, 4)
	v.draw(s)
	if got := rowText(s, 0); got != "first line" {
		t.Errorf("row 0 = %q", got)
	}
	if got := rowText(s, 1); got != "second  line" {
		t.Errorf("row 1 = %q, want tab expanded", got)
	}
}

func TestFindPromptSelectsMatch(t *testing.T) {
	v := newTestViewer(t, "alpha\nthe cat", "text")
	typeKeys(v, "/cat")
	press(v, tcell.KeyEnter)
	sel, ok := v.root.Selection()
	if !ok || sel.Para != 1 || sel.Min != 4 || sel.Lim != 7 {
		t.Fatalf("selection = %+v (%v), want para 1 [4,7)", sel, ok)
	}
	if got := v.ctl.State(); got != findrep.StateFound {
		t.Errorf("state = %v, want found", got)
	}
}

func TestReplaceAllAndUndo(t *testing.T) {
	v := newTestViewer(t, "cat\na cat", "text")
	typeKeys(v, "/cat")
	press(v, tcell.KeyEnter)
	typeKeys(v, "Rdog")
	press(v, tcell.KeyEnter)
	typeKeys(v, "a")
	if got := v.root.Text(); got != "dog\na dog" {
		t.Fatalf("text = %q", got)
	}
	if v.status != "Made 2 replacement(s)." {
		t.Errorf("status = %q", v.status)
	}
	typeKeys(v, "u")
	if got := v.root.Text(); got != "cat\na cat" {
		t.Errorf("after undo text = %q", got)
	}
}

func TestNoPatternStatus(t *testing.T) {
	v := newTestViewer(t, "abc", "text")
	typeKeys(v, "n")
	if v.status != "Press / to search." {
		t.Errorf("status = %q", v.status)
	}
}

func TestHighlightingReachesSource(t *testing.T) {
	v := newTestViewer(t, "func main() {}", "go")
	chrp, _, _, err := v.root.ParagraphSource(0).CharProps(0)
	if err != nil {
		t.Fatal(err)
	}
	if !chrp.ForeColor.IsSet() {
		t.Error("keyword has no highlight colour")
	}
}

func TestDoubledWordMarked(t *testing.T) {
	v := newTestViewer(t, "see the the cat", "text")
	chrp, lo, hi, err := v.root.ParagraphSource(0).CharProps(9)
	if err != nil {
		t.Fatal(err)
	}
	if chrp.Underline != tsstring.UnderlineSquiggle || lo != 8 || hi != 11 {
		t.Errorf("props at 9 = %v over [%d,%d), want squiggle over [8,11)", chrp.Underline, lo, hi)
	}
}

func TestQuitKeys(t *testing.T) {
	v := newTestViewer(t, "abc", "text")
	if !v.handleKey(tcell.NewEventKey(tcell.KeyRune, 'q', 0), 10) {
		t.Error("q did not quit")
	}
	typeKeys(v, "/")
	if press(v, tcell.KeyEscape) {
		t.Error("escape in the prompt quit the viewer")
	}
	if v.mode != modeView {
		t.Error("escape did not close the prompt")
	}
	if !press(v, tcell.KeyEscape) {
		t.Error("escape did not quit")
	}
}
