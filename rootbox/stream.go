// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: rootbox/stream.go
// Summary: Byte view of a root box kept in its chunked stream.

package rootbox

import (
	"fmt"

	"fwviews/datastream"
)

// Stream exposes the byte stream behind the root.
func (r *Root) Stream() *datastream.Stream[uint8] { return r.stream }

// Bytes returns the document as stored: paragraph text and the line ends
// read with it.
func (r *Root) Bytes() ([]byte, error) {
	return r.stream.Elements(0, r.stream.Size())
}

// Close releases the stream's scratch store and source file.
func (r *Root) Close() error { return r.stream.Close() }

// paraOffset is the stream offset of paragraph i.
func (r *Root) paraOffset(i int) int {
	off := 0
	for _, p := range r.paras[:i] {
		off += p.nbytes + p.term
	}
	return off
}

// spliceBytes rewrites the text was stored at off as now and returns the
// new byte length. Only the bytes between the common prefix and suffix
// are replaced.
func (r *Root) spliceBytes(off int, was, now string) (int, error) {
	pre := 0
	for pre < len(was) && pre < len(now) && was[pre] == now[pre] {
		pre++
	}
	suf := 0
	for suf < len(was)-pre && suf < len(now)-pre && was[len(was)-1-suf] == now[len(now)-1-suf] {
		suf++
	}
	ieMin, ieLim := off+pre, off+len(was)-suf
	if err := r.stream.Replace(ieMin, ieLim, []byte(now[pre:len(now)-suf])); err != nil {
		return 0, fmt.Errorf("stream [%d,%d): %w", ieMin, ieLim, err)
	}
	return len(now), nil
}
