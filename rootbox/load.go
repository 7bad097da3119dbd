// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: rootbox/load.go
// Summary: Builds a root box from a file read through a chunked byte stream.

package rootbox

import (
	"bytes"
	"fmt"
	"io"
	"log"

	"fwviews/datastream"
	"fwviews/textprops"
	"fwviews/tsstring"
)

const loadWindow = 64 << 10

// Load reads the file at path one window at a time and adds one paragraph
// per line. A single trailing newline does not start a paragraph, and CRLF
// line ends are accepted. The root keeps the stream open; Close it when done.
func Load(store *textprops.Store, path string, opts datastream.Options, props tsstring.Props) (*Root, error) {
	s, err := datastream.Open[uint8](path, opts)
	if err != nil {
		return nil, err
	}
	r, err := loadStream(store, path, s, props)
	if err != nil {
		_ = s.Close()
		return nil, err
	}
	return r, nil
}

// Read is Load for a reader, such as standard input.
func Read(store *textprops.Store, name string, rd io.Reader, opts datastream.Options, props tsstring.Props) (*Root, error) {
	data, err := io.ReadAll(rd)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	s := datastream.New[uint8](opts)
	if err := s.Replace(0, 0, data); err != nil {
		return nil, err
	}
	r, err := loadStream(store, name, s, props)
	if err != nil {
		_ = s.Close()
		return nil, err
	}
	return r, nil
}

// fixup replaces raw line bytes that do not survive decoding, such as
// invalid UTF-8, with the text the paragraph actually holds.
type fixup struct {
	off, n int
	text   []byte
}

func loadStream(store *textprops.Store, name string, s *datastream.Stream[uint8], props tsstring.Props) (*Root, error) {
	r := newRoot(store, nil, s)
	var fixes []fixup
	start := 0
	add := func(line []byte, term int) error {
		text := bytes.TrimSuffix(line, []byte{'\r'})
		term += len(line) - len(text)
		p, err := r.appendParagraph(tsstring.New(string(text), props), term)
		if err != nil {
			return fmt.Errorf("%s line %d: %w", name, r.ParagraphCount()+1, err)
		}
		if got := p.contents.Text(); got != string(text) {
			fixes = append(fixes, fixup{off: start, n: len(text), text: []byte(got)})
		}
		return nil
	}

	size := s.Size()
	buf := make([]uint8, loadWindow)
	var line []byte
	for ie := 0; ie < size; ie += loadWindow {
		lim := min(ie+loadWindow, size)
		if err := s.Fetch(ie, lim, buf); err != nil {
			return nil, fmt.Errorf("read %s: %w", name, err)
		}
		for i, b := range buf[:lim-ie] {
			if b != '\n' {
				line = append(line, b)
				continue
			}
			if err := add(line, 1); err != nil {
				return nil, err
			}
			line = line[:0]
			start = ie + i + 1
		}
	}
	if len(line) > 0 || r.ParagraphCount() == 0 {
		if err := add(line, 0); err != nil {
			return nil, err
		}
	}

	// Apply fixups from the end so earlier offsets stay valid.
	for i := len(fixes) - 1; i >= 0; i-- {
		f := fixes[i]
		if err := s.Replace(f.off, f.off+f.n, f.text); err != nil {
			return nil, fmt.Errorf("normalize %s: %w", name, err)
		}
	}
	if len(fixes) > 0 {
		log.Printf("[ROOTBOX] %s: re-encoded %d line(s)", name, len(fixes))
	}
	log.Printf("[ROOTBOX] Loaded %s: %d bytes, %d paragraph(s)", name, size, r.ParagraphCount())
	return r, nil
}
