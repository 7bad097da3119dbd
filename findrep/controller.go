// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: findrep/controller.go
// Summary: Find/replace state machine driving a pattern over a host view.
// Usage: A dialog or command binds FindNow, Replace, ReplaceAll and Stop.

package findrep

import (
	"errors"
	"fmt"
	"log"
	"slices"
	"sync"

	"fwviews/pattern"
	"fwviews/tsstring"
)

var (
	// ErrBusy reports a command issued while another one runs.
	ErrBusy = errors.New("findrep: a find or replace is already running")
	// ErrAmbiguousReplace reports an empty find string with a non-empty replacement.
	ErrAmbiguousReplace = errors.New("findrep: cannot replace an empty pattern with text")
	// ErrNoPattern reports a command issued before SetPattern.
	ErrNoPattern = errors.New("findrep: no pattern")
)

// User-visible messages.
const (
	MsgNotFound       = "The search item was not found."
	MsgNoMatches      = "No matches found."
	MsgReplacedFormat = "Made %d replacement(s)."
	MsgAmbiguous      = "Enter the text to find before replacing it with something."
	MsgConfirmFormat  = "Replace the formatting of every match?"
)

// State is the controller's position in a command.
type State int

const (
	// StateIdle means no command is running.
	StateIdle State = iota
	// StateSearching means a search is in progress.
	StateSearching
	// StateFound means the last search selected a match.
	StateFound
	// StateNotFound means the last search found nothing.
	StateNotFound
	// StateReplacing means a replacement is in progress.
	StateReplacing
)

func (s State) String() string {
	switch s {
	case StateSearching:
		return "searching"
	case StateFound:
		return "found"
	case StateNotFound:
		return "not found"
	case StateReplacing:
		return "replacing"
	}
	return "idle"
}

// Controller runs find and replace commands against a Site.
type Controller struct {
	site Site
	deps Deps
	opts Options

	abort pattern.AbortSignal

	mu      sync.Mutex
	pat     *pattern.Pattern
	state   State
	busy    bool
	history []string
}

// New returns an idle controller.
func New(site Site, deps Deps, opts Options) *Controller {
	if opts.CheckpointInterval <= 0 {
		opts.CheckpointInterval = DefaultOptions().CheckpointInterval
	}
	return &Controller{site: site, deps: deps.withDefaults(), opts: opts}
}

// SetPattern installs the pattern used by later commands.
func (c *Controller) SetPattern(p *pattern.Pattern) {
	c.mu.Lock()
	defer c.mu.Unlock()
	p.SetAbort(&c.abort)
	c.pat = p
}

// Pattern returns the current pattern.
func (c *Controller) Pattern() *pattern.Pattern {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pat
}

// State returns the current state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Busy reports whether a command is running.
func (c *Controller) Busy() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.busy
}

// History returns recent find strings, newest first.
func (c *Controller) History() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.history)
}

// Stop asks a running command to finish early.
func (c *Controller) Stop() { c.abort.Set(true) }

func (c *Controller) enter(state State) (*pattern.Pattern, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.busy {
		return nil, ErrBusy
	}
	if c.pat == nil {
		return nil, ErrNoPattern
	}
	c.busy = true
	c.state = state
	c.abort.Set(false)
	return c.pat, nil
}

func (c *Controller) leave(state State) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.busy = false
	c.state = state
}

func (c *Controller) setState(state State) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = state
}

func (c *Controller) remember(p *pattern.Pattern) {
	text := p.FindText()
	if text == "" {
		return
	}
	c.mu.Lock()
	c.history = slices.DeleteFunc(c.history, func(s string) bool { return s == text })
	c.history = slices.Insert(c.history, 0, text)
	if c.opts.HistoryLimit > 0 && len(c.history) > c.opts.HistoryLimit {
		c.history = c.history[:c.opts.HistoryLimit]
	}
	c.mu.Unlock()
	if err := c.deps.History.AddFindWhat(text); err != nil {
		log.Printf("[FINDREP] Failed to save find history: %v", err)
	}
}

// FindNow selects the next match after the current selection, wrapping
// around the document once.
func (c *Controller) FindNow(forward bool) (bool, error) {
	p, err := c.enter(StateSearching)
	if err != nil {
		return false, err
	}
	final := StateNotFound
	defer func() { c.leave(final) }()

	c.remember(p)
	found, err := c.findNext(p, forward)
	if err != nil {
		final = StateIdle
		return false, err
	}
	if found {
		final = StateFound
	}
	return found, nil
}

// findNext searches from the selection, wraps, and installs any match.
func (c *Controller) findNext(p *pattern.Pattern, forward bool) (bool, error) {
	var found bool
	var err error
	if sel, ok := c.site.Selection(); ok {
		found, err = p.FindFrom(c.site, sel, forward)
		// Wrap once from the document edge.
		if err == nil && !found {
			found, err = p.Find(c.site, forward)
		}
	} else {
		found, err = p.Find(c.site, forward)
	}
	if err != nil {
		return false, err
	}
	if !found {
		c.deps.Reporter.Message(MsgNotFound)
		return false, nil
	}
	return true, p.Install(c.site)
}

// checkReplace rejects ambiguous patterns and confirms format-only
// replacement. It reports whether to go on.
func (c *Controller) checkReplace(p *pattern.Pattern) (bool, error) {
	if p.FindString().Len() > 0 {
		return true, nil
	}
	if p.Replacement().Len() > 0 {
		c.deps.Reporter.Message(MsgAmbiguous)
		return false, ErrAmbiguousReplace
	}
	return c.deps.Reporter.Confirm(MsgConfirmFormat), nil
}

// Replace replaces the current selection when it is an editable match of
// the pattern, then selects the next match. Otherwise it behaves as
// FindNow.
func (c *Controller) Replace() error {
	p, err := c.enter(StateReplacing)
	if err != nil {
		return err
	}
	final := StateIdle
	defer func() { c.leave(final) }()

	ok, err := c.checkReplace(p)
	if !ok || err != nil {
		return err
	}
	c.remember(p)

	if sel, has := c.site.Selection(); has {
		match, err := p.MatchWhole(c.site, sel)
		if err != nil {
			return err
		}
		if match && c.site.Para(sel.Para).CanFormatChar(sel.Min, sel.Lim) {
			n, err := c.replaceOne(p, sel, "Undo Replace", "Redo Replace")
			if err != nil {
				c.deps.Reporter.Message(err.Error())
				return err
			}
			// Collapse after the inserted text so the next search starts there.
			after := pattern.Selection{Para: sel.Para, Min: sel.Min + n, Lim: sel.Min + n}
			if err := c.site.SetSelection(after); err != nil {
				return err
			}
		}
	}

	c.setState(StateSearching)
	found, err := c.findNext(p, true)
	if err != nil {
		return err
	}
	if found {
		final = StateFound
	} else {
		final = StateNotFound
	}
	return nil
}

// replaceOne substitutes one match inside its own undo task and returns
// the length of the inserted text.
func (c *Controller) replaceOne(p *pattern.Pattern, sel pattern.Selection, undo, redo string) (int, error) {
	c.deps.Undo.BeginUndoTask(undo, redo)
	defer c.deps.Undo.EndUndoTask()
	return c.substitute(p, sel)
}

func (c *Controller) substitute(p *pattern.Pattern, sel pattern.Selection) (int, error) {
	para := c.site.Para(sel.Para)
	matched, err := para.Contents().Slice(sel.Min, sel.Lim)
	if err != nil {
		return 0, err
	}
	tss, err := DoReplacement(matched, p.FindString(), p.Replacement(), p.Options())
	if err != nil {
		return 0, err
	}
	if err := para.ReplaceRange(sel.Min, sel.Lim, tss); err != nil {
		return 0, fmt.Errorf("replace paragraph %d [%d,%d): %w", sel.Para, sel.Min, sel.Lim, err)
	}
	return tss.Len(), nil
}

// ReplaceAll replaces every editable match from the start of the document
// and reports the count. A stopped run reports the replacements made so far.
func (c *Controller) ReplaceAll() (int, error) {
	p, err := c.enter(StateReplacing)
	if err != nil {
		return 0, err
	}
	defer c.leave(StateIdle)

	ok, err := c.checkReplace(p)
	if !ok || err != nil {
		return 0, err
	}
	c.remember(p)

	c.deps.Undo.BeginUndoTask("Undo Replace All", "Redo Replace All")
	c.deps.Notifier.HoldPropChanged()
	count, err := c.replaceAll(p)
	c.deps.Notifier.FlushPropChanged()
	c.deps.Undo.EndUndoTask()

	log.Printf("[FINDREP] Replace all %q: %d replacement(s)", p.FindText(), count)
	if count == 0 {
		c.deps.Reporter.Message(MsgNoMatches)
	} else {
		c.deps.Reporter.Message(fmt.Sprintf(MsgReplacedFormat, count))
	}
	return count, err
}

func (c *Controller) replaceAll(p *pattern.Pattern) (int, error) {
	count := 0
	found, err := p.Find(c.site, true)
	for {
		if errors.Is(err, pattern.ErrAborted) {
			return count, nil
		}
		if err != nil || !found {
			return count, err
		}
		// A stop raised while this match was being found drops it uncommitted.
		if c.abort.Aborted() {
			return count, nil
		}
		sel, _ := p.Selection()
		next := sel
		if c.site.Para(sel.Para).CanFormatChar(sel.Min, sel.Lim) {
			n, err := c.substitute(p, sel)
			if err != nil {
				c.deps.Reporter.Message(err.Error())
				return count, err
			}
			count++
			// Resume after the inserted text so it is never rematched.
			next = pattern.Selection{Para: sel.Para, Min: sel.Min + n, Lim: sel.Min + n}
			if count%c.opts.CheckpointInterval == 0 {
				c.deps.Checkpoint.ExcessiveChanges()
			}
		}
		if c.abort.Aborted() {
			return count, nil
		}
		found, err = p.FindFrom(c.site, next, true)
	}
}

// Replacement previews the text DoReplacement would produce for sel.
func (c *Controller) Replacement(sel pattern.Selection) (*tsstring.String, error) {
	p := c.Pattern()
	if p == nil {
		return nil, ErrNoPattern
	}
	matched, err := c.site.Para(sel.Para).Contents().Slice(sel.Min, sel.Lim)
	if err != nil {
		return nil, err
	}
	return DoReplacement(matched, p.FindString(), p.Replacement(), p.Options())
}
