// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: datastream/stream.go
// Summary: Chunked sequence of fixed-size elements with one hot insertion chunk.
// Usage: Large editable buffers that should not be fully memory resident.
//
// The stream is a table of chunks sorted by starting index. A stored chunk
// references a contiguous element range in an append-only backing store
// (scratch file, memory, or a read-only source file). At most one chunk is
// "hot": it owns an in-memory slice that edits near it modify in place,
// bounded by Options.InsertChunkBytes. Edits elsewhere flush the hot chunk
// to the scratch store and split the table at the edit boundaries.

package datastream

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"slices"
	"sort"
)

// Element is the set of fixed-size values a Stream can hold.
type Element interface {
	~uint8 | ~uint16 | ~uint32 | ~uint64 | ~int8 | ~int16 | ~int32 | ~int64
}

var (
	// ErrOutOfRange is returned for indices outside [0, Size()].
	ErrOutOfRange = errors.New("datastream: index out of range")
	// ErrClosed is returned after Close.
	ErrClosed = errors.New("datastream: stream closed")
	// ErrMisaligned is returned when a source file is not a whole number of elements.
	ErrMisaligned = errors.New("datastream: file size not a multiple of element size")
)

type chunkKind uint8

const (
	chunkStored chunkKind = iota
	chunkHot
)

type chunk[E Element] struct {
	kind  chunkKind
	ieMin int
	store backing // chunkStored
	off   int64   // element offset in store
	hot   []E     // chunkHot
}

// Stream is a chunked sequence of E. It is not safe for concurrent mutation.
type Stream[E Element] struct {
	opts     Options
	elemSize int
	hotCap   int

	chunks []chunk[E]
	hot    int // index of the hot chunk, -1 when none
	size   int

	scratch backing
	sources []backing
	closed  bool
}

// New returns an empty stream.
func New[E Element](opts Options) *Stream[E] {
	if opts.InsertChunkBytes <= 0 {
		opts.InsertChunkBytes = DefaultInsertChunkBytes
	}
	var zero E
	elemSize := binary.Size(zero)
	hotCap := opts.InsertChunkBytes / elemSize
	if hotCap < 1 {
		hotCap = 1
	}
	return &Stream[E]{opts: opts, elemSize: elemSize, hotCap: hotCap, hot: -1}
}

// Open returns a stream whose initial contents are the little-endian
// elements of the file at path. The file is only read; edits go to the
// scratch store.
func Open[E Element](path string, opts Options) (*Stream[E], error) {
	s := New[E](opts)
	src, err := openSourceFile(path)
	if err != nil {
		return nil, fmt.Errorf("open stream source: %w", err)
	}
	if src.size%int64(s.elemSize) != 0 {
		src.Close()
		return nil, fmt.Errorf("%s: %w", path, ErrMisaligned)
	}
	s.sources = append(s.sources, src)
	if n := int(src.size / int64(s.elemSize)); n > 0 {
		s.chunks = []chunk[E]{{kind: chunkStored, store: src}}
		s.size = n
	}
	return s, nil
}

// Size returns the number of elements.
func (s *Stream[E]) Size() int { return s.size }

// ChunkCount returns the number of chunks in the table.
func (s *Stream[E]) ChunkCount() int { return len(s.chunks) }

// HotRange reports the element range of the hot chunk.
func (s *Stream[E]) HotRange() (ieMin, ieLim int, ok bool) {
	if s.hot < 0 {
		return 0, 0, false
	}
	c := s.chunks[s.hot]
	return c.ieMin, c.ieMin + len(c.hot), true
}

// FindChunk returns the index of the chunk containing ie, or ChunkCount()
// when ie == Size().
func (s *Stream[E]) FindChunk(ie int) int {
	if ie >= s.size {
		return len(s.chunks)
	}
	return sort.Search(len(s.chunks), func(i int) bool { return s.chunks[i].ieMin > ie }) - 1
}

func (s *Stream[E]) chunkLim(k int) int {
	if k+1 < len(s.chunks) {
		return s.chunks[k+1].ieMin
	}
	return s.size
}

func (s *Stream[E]) checkRange(ieMin, ieLim int) error {
	if s.closed {
		return ErrClosed
	}
	if ieMin < 0 || ieMin > ieLim || ieLim > s.size {
		return fmt.Errorf("[%d,%d) of %d: %w", ieMin, ieLim, s.size, ErrOutOfRange)
	}
	return nil
}

// Fetch copies elements [ieMin, ieLim) into out, which must hold at least
// ieLim-ieMin elements.
func (s *Stream[E]) Fetch(ieMin, ieLim int, out []E) error {
	if err := s.checkRange(ieMin, ieLim); err != nil {
		return err
	}
	if len(out) < ieLim-ieMin {
		return fmt.Errorf("fetch buffer holds %d, need %d: %w", len(out), ieLim-ieMin, ErrOutOfRange)
	}
	pos := ieMin
	for k := s.FindChunk(ieMin); pos < ieLim; k++ {
		c := &s.chunks[k]
		take := min(s.chunkLim(k), ieLim) - pos
		dst := out[pos-ieMin : pos-ieMin+take]
		if c.kind == chunkHot {
			copy(dst, c.hot[pos-c.ieMin:])
		} else if err := s.readStored(c, pos-c.ieMin, dst); err != nil {
			return err
		}
		pos += take
	}
	return nil
}

// Elements is Fetch into a freshly allocated slice.
func (s *Stream[E]) Elements(ieMin, ieLim int) ([]E, error) {
	if err := s.checkRange(ieMin, ieLim); err != nil {
		return nil, err
	}
	out := make([]E, ieLim-ieMin)
	if err := s.Fetch(ieMin, ieLim, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Stream[E]) readStored(c *chunk[E], rel int, dst []E) error {
	buf := make([]byte, len(dst)*s.elemSize)
	off := (c.off + int64(rel)) * int64(s.elemSize)
	if _, err := c.store.ReadAt(buf, off); err != nil {
		return fmt.Errorf("read chunk at %d: %w", off, err)
	}
	return binary.Read(bytes.NewReader(buf), binary.LittleEndian, dst)
}

// Replace deletes [ieMin, ieLim) and inserts ins at ieMin.
func (s *Stream[E]) Replace(ieMin, ieLim int, ins []E) error {
	if err := s.checkRange(ieMin, ieLim); err != nil {
		return err
	}
	n := len(ins)
	if ieMin == ieLim && n == 0 {
		return nil
	}

	if s.hot >= 0 {
		h := &s.chunks[s.hot]
		hMin, hLim := h.ieMin, h.ieMin+len(h.hot)
		newLen := len(h.hot) - (ieLim - ieMin) + n
		if ieMin >= hMin && ieLim <= hLim && newLen <= s.hotCap {
			h.hot = slices.Replace(h.hot, ieMin-hMin, ieLim-hMin, ins...)
			delta := n - (ieLim - ieMin)
			s.shift(s.hot+1, delta)
			s.size += delta
			if len(h.hot) == 0 {
				k := s.hot
				s.chunks = slices.Delete(s.chunks, k, k+1)
				s.hot = -1
				s.AttemptMerge(k - 1)
			}
			return nil
		}
		if err := s.flushHot(); err != nil {
			return err
		}
	}

	if ieLim > ieMin {
		s.deleteRange(ieMin, ieLim)
	}
	if n == 0 {
		return nil
	}
	return s.insert(ieMin, ins)
}

// Clear empties the stream. The scratch store is kept for reuse.
func (s *Stream[E]) Clear() {
	s.chunks = nil
	s.hot = -1
	s.size = 0
}

// Close releases the scratch store and any source files.
func (s *Stream[E]) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	var firstErr error
	if s.scratch != nil {
		firstErr = s.scratch.Close()
	}
	for _, src := range s.sources {
		if err := src.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	s.Clear()
	return firstErr
}

// AttemptMerge joins chunks k and k+1 when both are stored and reference
// contiguous elements of the same backing store.
func (s *Stream[E]) AttemptMerge(k int) bool {
	if k < 0 || k+1 >= len(s.chunks) {
		return false
	}
	a, b := &s.chunks[k], &s.chunks[k+1]
	if a.kind != chunkStored || b.kind != chunkStored || a.store != b.store {
		return false
	}
	if a.off+int64(b.ieMin-a.ieMin) != b.off {
		return false
	}
	s.chunks = slices.Delete(s.chunks, k+1, k+2)
	if s.hot > k {
		s.hot--
	}
	return true
}

func (s *Stream[E]) shift(from, delta int) {
	if delta == 0 {
		return
	}
	for k := from; k < len(s.chunks); k++ {
		s.chunks[k].ieMin += delta
	}
}

func (s *Stream[E]) scratchStore() (backing, error) {
	if s.scratch != nil {
		return s.scratch, nil
	}
	if s.opts.ScratchDir == "" {
		s.scratch = &memBacking{}
		return s.scratch, nil
	}
	f, err := newScratchFile(s.opts.ScratchDir)
	if err != nil {
		return nil, err
	}
	s.scratch = f
	return s.scratch, nil
}

// writeScratch appends elems to the scratch store and returns their element offset.
func (s *Stream[E]) writeScratch(elems []E) (backing, int64, error) {
	store, err := s.scratchStore()
	if err != nil {
		return nil, 0, err
	}
	var buf bytes.Buffer
	buf.Grow(len(elems) * s.elemSize)
	if err := binary.Write(&buf, binary.LittleEndian, elems); err != nil {
		return nil, 0, err
	}
	off, err := store.appendBytes(buf.Bytes())
	if err != nil {
		return nil, 0, err
	}
	return store, off / int64(s.elemSize), nil
}

func (s *Stream[E]) flushHot() error {
	k := s.hot
	c := &s.chunks[k]
	store, off, err := s.writeScratch(c.hot)
	if err != nil {
		return fmt.Errorf("flush insertion chunk: %w", err)
	}
	c.kind, c.store, c.off, c.hot = chunkStored, store, off, nil
	s.hot = -1
	s.AttemptMerge(k)
	s.AttemptMerge(k - 1)
	return nil
}

// splitAt makes ie the start of a chunk and returns that chunk's index. The
// hot chunk must have been flushed.
func (s *Stream[E]) splitAt(ie int) int {
	if ie >= s.size {
		return len(s.chunks)
	}
	k := s.FindChunk(ie)
	c := s.chunks[k]
	if c.ieMin == ie {
		return k
	}
	right := chunk[E]{kind: chunkStored, ieMin: ie, store: c.store, off: c.off + int64(ie-c.ieMin)}
	s.chunks = slices.Insert(s.chunks, k+1, right)
	return k + 1
}

func (s *Stream[E]) deleteRange(ieMin, ieLim int) {
	i := s.splitAt(ieMin)
	j := s.splitAt(ieLim)
	s.chunks = slices.Delete(s.chunks, i, j)
	s.shift(i, -(ieLim - ieMin))
	s.size -= ieLim - ieMin
	s.AttemptMerge(i - 1)
}

func (s *Stream[E]) insert(ie int, ins []E) error {
	i := s.splitAt(ie)
	n := len(ins)
	if n <= s.hotCap {
		hot := make([]E, n, s.hotCap)
		copy(hot, ins)
		s.chunks = slices.Insert(s.chunks, i, chunk[E]{kind: chunkHot, ieMin: ie, hot: hot})
		s.hot = i
		s.shift(i+1, n)
		s.size += n
		return nil
	}
	store, off, err := s.writeScratch(ins)
	if err != nil {
		return err
	}
	s.chunks = slices.Insert(s.chunks, i, chunk[E]{kind: chunkStored, ieMin: ie, store: store, off: off})
	s.shift(i+1, n)
	s.size += n
	s.AttemptMerge(i)
	s.AttemptMerge(i - 1)
	return nil
}
