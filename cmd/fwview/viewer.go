// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: cmd/fwview/viewer.go
// Summary: Viewer state, key handling and drawing of decorated paragraphs.

package main

import (
	"errors"
	"fmt"
	"log"

	"github.com/atotto/clipboard"
	"github.com/gdamore/tcell/v2"
	"github.com/mattn/go-runewidth"

	"fwviews/config"
	"fwviews/findrep"
	"fwviews/highlight"
	"fwviews/pattern"
	"fwviews/rootbox"
	"fwviews/settings"
	"fwviews/textprops"
	"fwviews/tsstring"
	"fwviews/txtsrc"
)

const tabWidth = 4

type viewerConfig struct {
	Path     string
	Lexer    string
	Style    string
	Spelling bool
	System   config.Config
	Settings *settings.Store
}

type inputMode int

const (
	modeView inputMode = iota
	modeFind
	modeReplace
)

type viewer struct {
	cfg   viewerConfig
	root  *rootbox.Root
	ctl   *findrep.Controller
	lexer string

	top      int
	status   string
	mode     inputMode
	input    []rune
	findText string
	replText string
	expanded bool
}

// viewerStore is the root property store. Text without an explicit colour
// uses the terminal's default foreground.
func viewerStore() *textprops.Store {
	base := textprops.DefaultCharRenderProps()
	base.ForeColor = tsstring.ColorUnset
	return textprops.NewStore(nil, base)
}

func newViewer(cfg viewerConfig, root *rootbox.Root) *viewer {
	v := &viewer{cfg: cfg, root: root, lexer: cfg.Lexer}
	if v.lexer == "" {
		v.lexer = highlight.DetectLexer(cfg.Path, root.Text())
	}
	deps := findrep.Deps{Undo: root, Reporter: v, Notifier: root}
	if cfg.Settings != nil {
		deps.History = cfg.Settings
	}
	v.ctl = findrep.New(root, deps, findrep.OptionsFromConfig(cfg.System))
	root.OnPropChanged(func([]int) { v.decorate() })
	v.decorate()
	return v
}

// Message implements findrep.Reporter.
func (v *viewer) Message(msg string) { v.status = msg }

// Confirm implements findrep.Reporter. The viewer has no modal prompt, so
// the question is shown and accepted.
func (v *viewer) Confirm(msg string) bool {
	v.status = msg
	return true
}

// decorate recomputes highlighting and doubled-word marks for every
// paragraph.
func (v *viewer) decorate() {
	n := v.root.ParagraphCount()
	lines := make([]string, n)
	for i := range lines {
		lines[i] = v.root.Paragraph(i).Contents().Text()
	}
	per, err := highlight.Lines(lines, v.lexer, v.cfg.Style)
	if err != nil {
		log.Printf("[FWVIEW] Highlighting disabled: %v", err)
		per = make([][]txtsrc.DispPropOverride, n)
	}
	for i, line := range lines {
		list := per[i]
		if v.cfg.Spelling {
			var marks []txtsrc.DispPropOverride
			for _, r := range highlight.DoubledWords(line) {
				marks = append(marks, txtsrc.DispPropOverride{Min: r.Min, Lim: r.Lim, Props: txtsrc.SpellingProps()})
			}
			list = highlight.Combine(list, marks)
		}
		if err := v.root.Paragraph(i).SetOverrides(list); err != nil {
			log.Printf("[FWVIEW] Paragraph %d overrides rejected: %v", i, err)
		}
	}
}

func (v *viewer) setPattern() {
	pat := pattern.New(tsstring.New(v.findText, tsstring.Props{}), pattern.OptionsFromConfig(v.cfg.System))
	pat.SetReplacement(tsstring.New(v.replText, tsstring.Props{}))
	v.ctl.SetPattern(pat)
}

func (v *viewer) report(err error) {
	switch {
	case err == nil:
	case errors.Is(err, findrep.ErrNoPattern):
		v.status = "Press / to search."
	case errors.Is(err, rootbox.ErrNothingToUndo):
		v.status = "Nothing to undo."
	default:
		v.status = err.Error()
	}
}

// handleKey applies one key and reports whether the viewer should quit.
func (v *viewer) handleKey(ev *tcell.EventKey, rows int) bool {
	if v.mode != modeView {
		v.handlePromptKey(ev)
		v.reveal(rows)
		return false
	}
	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return true
	case tcell.KeyDown:
		v.scroll(1, rows)
	case tcell.KeyUp:
		v.scroll(-1, rows)
	case tcell.KeyPgDn:
		v.scroll(rows, rows)
	case tcell.KeyPgUp:
		v.scroll(-rows, rows)
	case tcell.KeyRune:
		v.status = ""
		switch ev.Rune() {
		case 'q':
			return true
		case '/':
			v.mode, v.input = modeFind, []rune(v.findText)
		case 'R':
			v.mode, v.input, v.expanded = modeReplace, []rune(v.replText), true
		case 'n', 'N':
			_, err := v.ctl.FindNow(ev.Rune() == 'n')
			v.report(err)
		case 'r':
			v.report(v.ctl.Replace())
		case 'a':
			_, err := v.ctl.ReplaceAll()
			v.report(err)
		case 'u':
			v.report(v.root.Undo())
		case 'U':
			v.report(v.root.Redo())
		case 'y':
			text := v.root.SelectedText()
			if err := clipboard.WriteAll(text); err != nil {
				v.report(err)
			} else {
				v.status = fmt.Sprintf("Copied %d character(s).", len([]rune(text)))
			}
		}
	}
	v.reveal(rows)
	return false
}

func (v *viewer) handlePromptKey(ev *tcell.EventKey) {
	switch ev.Key() {
	case tcell.KeyEscape:
		v.mode, v.input = modeView, nil
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		if len(v.input) > 0 {
			v.input = v.input[:len(v.input)-1]
		}
	case tcell.KeyEnter:
		text := string(v.input)
		mode := v.mode
		v.mode, v.input = modeView, nil
		if mode == modeFind {
			v.findText = text
			v.setPattern()
			_, err := v.ctl.FindNow(true)
			v.report(err)
			return
		}
		v.replText = text
		v.setPattern()
	case tcell.KeyRune:
		v.input = append(v.input, ev.Rune())
	}
}

func (v *viewer) scroll(delta, rows int) {
	v.top = max(0, min(v.top+delta, v.root.ParagraphCount()-rows))
}

// reveal scrolls the selection into view.
func (v *viewer) reveal(rows int) {
	sel, ok := v.root.Selection()
	if !ok || rows <= 0 {
		return
	}
	if sel.Para < v.top || sel.Para >= v.top+rows {
		v.top = max(0, sel.Para-rows/2)
	}
}

func (v *viewer) loop(screen tcell.Screen) {
	for {
		v.draw(screen)
		switch ev := screen.PollEvent().(type) {
		case nil:
			return
		case *tcell.EventResize:
			screen.Sync()
		case *tcell.EventKey:
			_, h := screen.Size()
			if v.handleKey(ev, h-1) {
				return
			}
		}
	}
}

func tcellColor(c tsstring.Color) tcell.Color {
	if !c.IsSet() || c.IsTransparent() {
		return tcell.ColorDefault
	}
	r, g, b := c.Components()
	return tcell.NewRGBColor(int32(r), int32(g), int32(b))
}

func cellStyle(c textprops.CharRenderProps) tcell.Style {
	st := tcell.StyleDefault.
		Foreground(tcellColor(c.ForeColor)).
		Background(tcellColor(c.BackColor)).
		Bold(c.Bold).
		Italic(c.Italic)
	switch c.Underline {
	case tsstring.UnderlineUnset, tsstring.UnderlineNone:
	case tsstring.UnderlineStrikethrough:
		st = st.StrikeThrough(true)
	default:
		st = st.Underline(true)
	}
	return st
}

func (v *viewer) draw(screen tcell.Screen) {
	screen.Clear()
	w, h := screen.Size()
	rows := h - 1
	for row := 0; row < rows; row++ {
		i := v.top + row
		if i >= v.root.ParagraphCount() {
			break
		}
		v.drawPara(screen, row, w, i)
	}
	v.drawStatus(screen, h-1, w)
	screen.Show()
}

func (v *viewer) drawPara(screen tcell.Screen, row, w, i int) {
	src := v.root.ParagraphSource(i)
	selMin, selLim := -1, -1
	if sel, ok := v.root.Selection(); ok && sel.Para == i {
		selMin, selLim = src.LogToRen(sel.Min), src.LogToRen(sel.Lim)
	}
	x := 0
	for ich, n := 0, src.Length(); ich < n && x < w; {
		chrp, _, hi, err := src.CharProps(ich)
		if err != nil {
			log.Printf("[FWVIEW] Paragraph %d at %d: %v", i, ich, err)
			return
		}
		hi = max(hi, ich+1)
		text, err := src.Fetch(ich, min(hi, n))
		if err != nil {
			log.Printf("[FWVIEW] Paragraph %d fetch: %v", i, err)
			return
		}
		style := cellStyle(chrp)
		for k, r := range text {
			st := style
			if pos := ich + k; pos >= selMin && pos < selLim {
				st = st.Reverse(true)
			}
			if r == '\t' {
				for next := (x/tabWidth + 1) * tabWidth; x < next && x < w; x++ {
					screen.SetContent(x, row, ' ', nil, st)
				}
				continue
			}
			rw := runewidth.RuneWidth(r)
			if rw == 0 {
				continue
			}
			if x+rw > w {
				return
			}
			screen.SetContent(x, row, r, nil, st)
			x += rw
		}
		ich = hi
	}
}

func (v *viewer) drawStatus(screen tcell.Screen, row, w int) {
	var line string
	switch v.mode {
	case modeFind:
		line = "Find: " + string(v.input)
	case modeReplace:
		line = "Replace with: " + string(v.input)
	default:
		line = v.status
		if v.expanded && v.replText != "" {
			line = fmt.Sprintf("[%s -> %s] %s", v.findText, v.replText, line)
		}
	}
	st := tcell.StyleDefault.Reverse(true)
	x := 0
	for _, r := range runewidth.Truncate(line, w, "") {
		rw := runewidth.RuneWidth(r)
		if rw == 0 {
			continue
		}
		screen.SetContent(x, row, r, nil, st)
		x += rw
	}
	for ; x < w; x++ {
		screen.SetContent(x, row, ' ', nil, st)
	}
}

func (v *viewer) restorePlacement(screen tcell.Screen) error {
	if v.cfg.Settings == nil {
		return nil
	}
	_, expanded, ok, err := v.cfg.Settings.LoadPlacement(settings.FindDialogTitle)
	if err != nil || !ok {
		return err
	}
	v.expanded = expanded
	return nil
}

// savePlacement records where the find bar sat and whether the
// replacement was showing.
func (v *viewer) savePlacement(screen tcell.Screen) error {
	if v.cfg.Settings == nil {
		return nil
	}
	w, h := screen.Size()
	p := settings.Placement{X: 0, Y: int32(h - 1), Width: int32(w), Height: 1}
	return v.cfg.Settings.SavePlacement(settings.FindDialogTitle, p, v.expanded)
}
