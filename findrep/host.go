// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: findrep/host.go
// Summary: Contracts the find/replace controller needs from its host view.

package findrep

import (
	"fwviews/pattern"
	"fwviews/tsstring"
	"fwviews/txtsrc"
)

// Paragraph is one editable paragraph of the host document.
type Paragraph interface {
	Source() txtsrc.Source
	// Contents returns the logical text of the paragraph.
	Contents() *tsstring.String
	// CanFormatChar reports whether [ichMin, ichLim) may be edited.
	CanFormatChar(ichMin, ichLim int) bool
	// ReplaceRange replaces logical [ichMin, ichLim) with tss.
	ReplaceRange(ichMin, ichLim int, tss *tsstring.String) error
}

// Site is the root view being searched.
type Site interface {
	pattern.Root
	pattern.Selector
	Para(i int) Paragraph
	Selection() (pattern.Selection, bool)
}

// UndoHost groups the edits of one command into a single undo step.
type UndoHost interface {
	BeginUndoTask(undo, redo string)
	EndUndoTask()
}

// Reporter shows messages to the user.
type Reporter interface {
	Message(msg string)
	Confirm(msg string) bool
}

// Notifier batches paragraph change notifications while a command runs.
type Notifier interface {
	HoldPropChanged()
	FlushPropChanged()
}

// Checkpoint is given a chance to save during long replace-all runs.
type Checkpoint interface {
	ExcessiveChanges()
}

// History remembers find strings.
type History interface {
	AddFindWhat(text string) error
}

// Deps are the optional collaborators of a Controller. Missing ones do
// nothing, and Confirm answers yes.
type Deps struct {
	Undo       UndoHost
	Reporter   Reporter
	Notifier   Notifier
	Checkpoint Checkpoint
	History    History
}

type nopHost struct{}

func (nopHost) BeginUndoTask(string, string) {}
func (nopHost) EndUndoTask()                 {}
func (nopHost) Message(string)               {}
func (nopHost) Confirm(string) bool          { return true }
func (nopHost) HoldPropChanged()             {}
func (nopHost) FlushPropChanged()            {}
func (nopHost) ExcessiveChanges()            {}
func (nopHost) AddFindWhat(string) error     { return nil }

func (d Deps) withDefaults() Deps {
	if d.Undo == nil {
		d.Undo = nopHost{}
	}
	if d.Reporter == nil {
		d.Reporter = nopHost{}
	}
	if d.Notifier == nil {
		d.Notifier = nopHost{}
	}
	if d.Checkpoint == nil {
		d.Checkpoint = nopHost{}
	}
	if d.History == nil {
		d.History = nopHost{}
	}
	return d
}
