// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: rootbox/undo.go
// Summary: Grouped undo/redo of paragraph edits.

package rootbox

import (
	"errors"
	"log"

	"fwviews/tsstring"
	"fwviews/txtsrc"
)

// ErrNothingToUndo reports an empty undo or redo stack.
var ErrNothingToUndo = errors.New("rootbox: nothing to undo")

// edit records one paragraph before and after a change, together with its
// read-only ranges.
type edit struct {
	para              int
	before, after     *tsstring.String
	roBefore, roAfter []txtsrc.Range
}

// task is the group of edits undone together.
type task struct {
	undo, redo string
	edits      []edit
}

type undoStack struct {
	done   []*task
	undone []*task
	open   *task
}

func (u *undoStack) begin(undo, redo string) {
	if u.open != nil {
		log.Printf("[ROOTBOX] Nested undo task %q ignored inside %q", undo, u.open.undo)
		return
	}
	u.open = &task{undo: undo, redo: redo}
}

func (u *undoStack) end() {
	if u.open == nil {
		return
	}
	if len(u.open.edits) > 0 {
		u.done = append(u.done, u.open)
		u.undone = nil
	}
	u.open = nil
}

func (u *undoStack) record(e edit) {
	if u.open != nil {
		u.open.edits = append(u.open.edits, e)
		return
	}
	u.done = append(u.done, &task{undo: "Undo Typing", redo: "Redo Typing", edits: []edit{e}})
	u.undone = nil
}

// Undo reverts the most recent task.
func (r *Root) Undo() error {
	u := &r.undo
	if len(u.done) == 0 || u.open != nil {
		return ErrNothingToUndo
	}
	t := u.done[len(u.done)-1]
	u.done = u.done[:len(u.done)-1]
	for i := len(t.edits) - 1; i >= 0; i-- {
		e := t.edits[i]
		if err := r.paras[e.para].restore(e.before, e.roBefore); err != nil {
			return err
		}
	}
	u.undone = append(u.undone, t)
	r.notify(t.paras())
	return nil
}

// Redo reapplies the most recently undone task.
func (r *Root) Redo() error {
	u := &r.undo
	if len(u.undone) == 0 || u.open != nil {
		return ErrNothingToUndo
	}
	t := u.undone[len(u.undone)-1]
	u.undone = u.undone[:len(u.undone)-1]
	for _, e := range t.edits {
		if err := r.paras[e.para].restore(e.after, e.roAfter); err != nil {
			return err
		}
	}
	u.done = append(u.done, t)
	r.notify(t.paras())
	return nil
}

// UndoLabel names the task Undo would revert.
func (r *Root) UndoLabel() (string, bool) {
	if len(r.undo.done) == 0 {
		return "", false
	}
	return r.undo.done[len(r.undo.done)-1].undo, true
}

// RedoLabel names the task Redo would reapply.
func (r *Root) RedoLabel() (string, bool) {
	if len(r.undo.undone) == 0 {
		return "", false
	}
	return r.undo.undone[len(r.undo.undone)-1].redo, true
}

// BeginUndoTask opens a task grouping the following edits. Tasks do not
// nest.
func (r *Root) BeginUndoTask(undo, redo string) { r.undo.begin(undo, redo) }

// EndUndoTask closes the open task.
func (r *Root) EndUndoTask() { r.undo.end() }

func (t *task) paras() []int {
	var out []int
	for _, e := range t.edits {
		out = append(out, e.para)
	}
	return out
}
