// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: datastream/backing.go
// Summary: Append-only byte stores (memory or scratch file) behind stream chunks.

package datastream

import (
	"fmt"
	"io"
	"log"
	"os"
	"sync"
)

// backing is an append-only byte store. Chunks reference byte ranges in it
// and never rewrite them.
type backing interface {
	io.ReaderAt
	// appendBytes stores p and returns its byte offset.
	appendBytes(p []byte) (int64, error)
	io.Closer
}

type memBacking struct {
	mu   sync.RWMutex
	data []byte
}

func (m *memBacking) ReadAt(p []byte, off int64) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if off < 0 || off > int64(len(m.data)) {
		return 0, io.EOF
	}
	n := copy(p, m.data[off:])
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}

func (m *memBacking) appendBytes(p []byte) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	off := int64(len(m.data))
	m.data = append(m.data, p...)
	return off, nil
}

func (m *memBacking) Close() error { return nil }

// fileBacking wraps a file. Scratch files are created in a directory and
// removed on Close; source files are opened read-only.
type fileBacking struct {
	f        *os.File
	size     int64
	readOnly bool
	scratch  bool
}

func newScratchFile(dir string) (*fileBacking, error) {
	f, err := os.CreateTemp(dir, "datastream-*.bin")
	if err != nil {
		return nil, fmt.Errorf("create scratch file: %w", err)
	}
	log.Printf("DataStream: Created scratch file %s", f.Name())
	return &fileBacking{f: f, scratch: true}, nil
}

func openSourceFile(path string) (*fileBacking, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}
	return &fileBacking{f: f, size: info.Size(), readOnly: true}, nil
}

func (b *fileBacking) ReadAt(p []byte, off int64) (int, error) {
	return b.f.ReadAt(p, off)
}

func (b *fileBacking) appendBytes(p []byte) (int64, error) {
	if b.readOnly {
		return 0, fmt.Errorf("append to read-only file %s", b.f.Name())
	}
	off := b.size
	n, err := b.f.WriteAt(p, off)
	b.size += int64(n)
	if err != nil {
		return off, fmt.Errorf("write scratch file: %w", err)
	}
	return off, nil
}

func (b *fileBacking) Close() error {
	name := b.f.Name()
	err := b.f.Close()
	if b.scratch {
		if rmErr := os.Remove(name); rmErr != nil && err == nil {
			err = rmErr
		}
	}
	return err
}
