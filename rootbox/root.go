// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: rootbox/root.go
// Summary: In-memory root box of mapped paragraphs with a selection.
// Usage: Hosts find/replace for commands and tests; implements findrep.Site.

package rootbox

import (
	"fmt"
	"slices"
	"strings"

	"fwviews/datastream"
	"fwviews/findrep"
	"fwviews/pattern"
	"fwviews/textprops"
	"fwviews/tsstring"
	"fwviews/txtsrc"
)

// Root is a document of paragraphs backed by a byte stream holding the
// UTF-8 text and line ends. It is not safe for concurrent use.
type Root struct {
	store  *textprops.Store
	vc     txtsrc.ViewConstructor
	paras  []*Para
	stream *datastream.Stream[uint8]

	sel    pattern.Selection
	hasSel bool

	undo undoStack

	listeners []func(paras []int)
	hold      int
	pending   []int
}

// New returns an empty root over an in-memory stream. store resolves
// paragraph properties; vc supplies object substitutes and may be nil.
func New(store *textprops.Store, vc txtsrc.ViewConstructor) *Root {
	return newRoot(store, vc, datastream.New[uint8](datastream.DefaultOptions()))
}

func newRoot(store *textprops.Store, vc txtsrc.ViewConstructor, s *datastream.Stream[uint8]) *Root {
	if store == nil {
		store = textprops.NewDefaultStore(nil)
	}
	return &Root{store: store, vc: vc, stream: s}
}

// FromLines builds a root with one paragraph per line of text.
func FromLines(store *textprops.Store, text string, props tsstring.Props) (*Root, error) {
	r := New(store, nil)
	for _, line := range strings.Split(text, "\n") {
		if _, err := r.AddParagraph(tsstring.New(line, props)); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Store returns the root property store.
func (r *Root) Store() *textprops.Store { return r.store }

// AddParagraph appends a paragraph holding tss, separated from the
// previous one by a newline in the stream.
func (r *Root) AddParagraph(tss *tsstring.String) (*Para, error) {
	p, err := r.appendParagraph(tss, 0)
	if err != nil {
		return nil, err
	}
	var ins []byte
	if p.index > 0 {
		ins = append(ins, '\n')
	}
	ins = append(ins, p.contents.Text()...)
	if err := r.stream.Replace(r.stream.Size(), r.stream.Size(), ins); err != nil {
		r.paras = r.paras[:p.index]
		return nil, fmt.Errorf("append paragraph %d: %w", p.index, err)
	}
	if p.index > 0 {
		r.paras[p.index-1].term = 1
	}
	return p, nil
}

// appendParagraph adds a paragraph whose bytes and term-byte line end are
// already in the stream.
func (r *Root) appendParagraph(tss *tsstring.String, term int) (*Para, error) {
	p := &Para{root: r, index: len(r.paras), editable: true, term: term}
	if err := p.setContents(tss); err != nil {
		return nil, err
	}
	p.nbytes = len(p.contents.Text())
	r.paras = append(r.paras, p)
	return p, nil
}

// ParagraphCount implements pattern.Root.
func (r *Root) ParagraphCount() int { return len(r.paras) }

// ParagraphSource implements pattern.Root.
func (r *Root) ParagraphSource(i int) txtsrc.Source { return r.paras[i].Source() }

// Para implements findrep.Site.
func (r *Root) Para(i int) findrep.Paragraph { return r.paras[i] }

// Paragraph returns paragraph i.
func (r *Root) Paragraph(i int) *Para { return r.paras[i] }

// Selection returns the current selection.
func (r *Root) Selection() (pattern.Selection, bool) { return r.sel, r.hasSel }

// SetSelection selects a logical range of one paragraph.
func (r *Root) SetSelection(sel pattern.Selection) error {
	if sel.Para < 0 || sel.Para >= len(r.paras) {
		return fmt.Errorf("paragraph %d of %d: %w", sel.Para, len(r.paras), txtsrc.ErrOutOfRange)
	}
	if n := r.paras[sel.Para].Len(); sel.Min < 0 || sel.Min > sel.Lim || sel.Lim > n {
		return fmt.Errorf("selection [%d,%d) of %d: %w", sel.Min, sel.Lim, n, txtsrc.ErrOutOfRange)
	}
	r.sel, r.hasSel = sel, true
	return nil
}

// ClearSelection removes the selection.
func (r *Root) ClearSelection() { r.sel, r.hasSel = pattern.Selection{}, false }

// SelectedText returns the logical text of the selection.
func (r *Root) SelectedText() string {
	if !r.hasSel {
		return ""
	}
	s, err := r.paras[r.sel.Para].contents.Slice(r.sel.Min, r.sel.Lim)
	if err != nil {
		return ""
	}
	return s.Text()
}

// Text returns all paragraphs joined by newlines.
func (r *Root) Text() string {
	lines := make([]string, len(r.paras))
	for i, p := range r.paras {
		lines[i] = p.contents.Text()
	}
	return strings.Join(lines, "\n")
}

// OnPropChanged registers fn to receive the indices of changed paragraphs.
func (r *Root) OnPropChanged(fn func(paras []int)) {
	r.listeners = append(r.listeners, fn)
}

// HoldPropChanged defers notifications until the matching flush.
func (r *Root) HoldPropChanged() { r.hold++ }

// FlushPropChanged ends one hold and delivers the deferred notifications
// once no hold remains.
func (r *Root) FlushPropChanged() {
	if r.hold > 0 {
		r.hold--
	}
	if r.hold > 0 || len(r.pending) == 0 {
		return
	}
	paras := r.pending
	r.pending = nil
	r.deliver(paras)
}

func (r *Root) notify(paras []int) {
	if r.hold > 0 {
		r.pending = append(r.pending, paras...)
		return
	}
	r.deliver(paras)
}

func (r *Root) deliver(paras []int) {
	paras = slices.Clone(paras)
	slices.Sort(paras)
	paras = slices.Compact(paras)
	for _, fn := range r.listeners {
		fn(paras)
	}
}
