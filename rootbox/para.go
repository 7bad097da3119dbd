// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: rootbox/para.go
// Summary: Paragraph of a root box: contents, mapped source, overrides and edit guards.

package rootbox

import (
	"fmt"
	"slices"

	"fwviews/tsstring"
	"fwviews/txtsrc"
)

// Para is one paragraph. Its source is rebuilt whenever the contents change.
type Para struct {
	root     *Root
	index    int
	contents *tsstring.String
	src      *txtsrc.Mapped

	overrides []txtsrc.DispPropOverride
	over      *txtsrc.Override

	editable bool
	readOnly []txtsrc.Range

	// nbytes is the UTF-8 length of the contents in the root stream and
	// term the length of the line end that follows them.
	nbytes, term int
}

// Index is the paragraph's position in the root.
func (p *Para) Index() int { return p.index }

// Len is the logical length.
func (p *Para) Len() int { return p.contents.Len() }

// Contents implements findrep.Paragraph.
func (p *Para) Contents() *tsstring.String { return p.contents }

// Mapped returns the undecorated source.
func (p *Para) Mapped() *txtsrc.Mapped { return p.src }

// Source returns the decorated source when overrides are set.
func (p *Para) Source() txtsrc.Source {
	if p.over != nil {
		return p.over
	}
	return p.src
}

// SetEditable allows or forbids all edits.
func (p *Para) SetEditable(editable bool) { p.editable = editable }

// SetReadOnly protects the logical range [ichMin, ichLim).
func (p *Para) SetReadOnly(ichMin, ichLim int) {
	p.readOnly = append(p.readOnly, txtsrc.Range{Min: ichMin, Lim: ichLim})
}

// CanFormatChar implements findrep.Paragraph.
func (p *Para) CanFormatChar(ichMin, ichLim int) bool {
	if !p.editable {
		return false
	}
	for _, r := range p.readOnly {
		if ichMin < r.Lim && r.Min < ichLim {
			return false
		}
	}
	return true
}

// SetOverrides decorates the paragraph with logical override ranges. A nil
// list removes the decoration.
func (p *Para) SetOverrides(list []txtsrc.DispPropOverride) error {
	if len(list) == 0 {
		p.overrides, p.over = nil, nil
		return nil
	}
	over, err := txtsrc.NewOverride(p.src, list)
	if err != nil {
		return err
	}
	p.overrides, p.over = list, over
	return nil
}

// ReplaceRange implements findrep.Paragraph. The edit is applied to the
// root stream, recorded for undo and reported to PropChanged listeners.
func (p *Para) ReplaceRange(ichMin, ichLim int, tss *tsstring.String) error {
	if ichMin < 0 || ichMin > ichLim || ichLim > p.Len() {
		return fmt.Errorf("replace [%d,%d) of %d: %w", ichMin, ichLim, p.Len(), txtsrc.ErrOutOfRange)
	}
	b := p.contents.Builder()
	if err := b.ReplaceString(ichMin, ichLim, tss); err != nil {
		return err
	}
	before, roBefore := p.contents, slices.Clone(p.readOnly)
	after := b.String()
	if err := p.restore(after, roBefore); err != nil {
		return err
	}
	p.shiftReadOnly(ichLim, tss.Len()-(ichLim-ichMin))
	p.root.undo.record(edit{
		para:     p.index,
		before:   before,
		after:    after,
		roBefore: roBefore,
		roAfter:  slices.Clone(p.readOnly),
	})
	p.root.notify([]int{p.index})
	return nil
}

// restore installs contents and read-only ranges and brings the root
// stream in line. The paragraph is unchanged when either step fails.
func (p *Para) restore(tss *tsstring.String, readOnly []txtsrc.Range) error {
	prev := p.contents
	if err := p.setContents(tss); err != nil {
		return err
	}
	n, err := p.root.spliceBytes(p.root.paraOffset(p.index), prev.Text(), p.contents.Text())
	if err != nil {
		if rerr := p.setContents(prev); rerr != nil {
			return fmt.Errorf("%w (rollback: %v)", err, rerr)
		}
		return err
	}
	p.nbytes = n
	p.readOnly = slices.Clone(readOnly)
	return nil
}

// setContents rebuilds the mapped source. Nothing changes when the new
// contents cannot be mapped.
func (p *Para) setContents(tss *tsstring.String) error {
	if tss == nil {
		tss = tsstring.Empty(tsstring.Props{})
	}
	next := txtsrc.NewMapped(p.root.store, p.root.vc)
	if err := next.AddString(tss, nil); err != nil {
		return err
	}
	if p.src == nil {
		p.src = next
	} else if err := p.src.ReplaceContents(0, -1, next); err != nil {
		return err
	}
	p.contents = tss
	if p.overrides != nil {
		if _, err := p.over.UpdateOverrides(p.clampedOverrides()); err != nil {
			p.overrides, p.over = nil, nil
		}
	}
	return nil
}

// clampedOverrides drops override ranges past the end of the contents.
func (p *Para) clampedOverrides() []txtsrc.DispPropOverride {
	n := p.Len()
	var out []txtsrc.DispPropOverride
	for _, d := range p.overrides {
		if d.Min >= n {
			break
		}
		d.Lim = min(d.Lim, n)
		out = append(out, d)
	}
	p.overrides = out
	return out
}

func (p *Para) shiftReadOnly(from, delta int) {
	for i := range p.readOnly {
		r := &p.readOnly[i]
		if r.Min >= from {
			r.Min += delta
			r.Lim += delta
		}
	}
}
