// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later

package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mattn/go-runewidth"

	"fwviews/pattern"
	"fwviews/tsstring"
	"fwviews/txtsrc"
)

func writeDoc(t *testing.T, text string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "doc.txt")
	if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
		t.Fatalf("write doc: %v", err)
	}
	return path
}

func TestListMatches(t *testing.T) {
	doc := writeDoc(t, "the cat sat\nno match here\nCat and cat\n")
	var out, errOut bytes.Buffer
	args := []string{"-config", t.TempDir(), "-find", "cat", doc}
	if err := run(args, nil, &out, &errOut); err != nil {
		t.Fatalf("run: %v (stderr %q)", err, errOut.String())
	}
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	want := []string{doc + ":1:5:", doc + ":3:1:", doc + ":3:9:"}
	if len(lines) != len(want) {
		t.Fatalf("got %d lines %q, want %d", len(lines), lines, len(want))
	}
	for i, prefix := range want {
		if !strings.HasPrefix(lines[i], prefix) {
			t.Errorf("line %d = %q, want prefix %q", i, lines[i], prefix)
		}
	}
}

func TestMatchCaseFlag(t *testing.T) {
	doc := writeDoc(t, "Cat cat\n")
	var out, errOut bytes.Buffer
	args := []string{"-config", t.TempDir(), "-find", "Cat", "-case", doc}
	if err := run(args, nil, &out, &errOut); err != nil {
		t.Fatalf("run: %v", err)
	}
	if got := strings.Count(out.String(), "\n"); got != 1 {
		t.Errorf("got %d matches, want 1: %q", got, out.String())
	}
}

func TestNotFound(t *testing.T) {
	doc := writeDoc(t, "nothing here\n")
	var out, errOut bytes.Buffer
	err := run([]string{"-config", t.TempDir(), "-find", "zebra", doc}, nil, &out, &errOut)
	if err == nil {
		t.Fatal("expected an error when nothing matches")
	}
}

func TestReplaceAllToStdout(t *testing.T) {
	doc := writeDoc(t, "the cat sat on the mat\ncat\n")
	var out, errOut bytes.Buffer
	args := []string{"-config", t.TempDir(), "-find", "cat", "-replace", "dog", "-all", doc}
	if err := run(args, nil, &out, &errOut); err != nil {
		t.Fatalf("run: %v", err)
	}
	if got, want := out.String(), "the dog sat on the mat\ndog\n"; got != want {
		t.Errorf("output = %q, want %q", got, want)
	}
	if !strings.Contains(errOut.String(), "Made 2 replacement(s).") {
		t.Errorf("stderr = %q, want replacement summary", errOut.String())
	}
}

func TestReplaceFirstInPlace(t *testing.T) {
	doc := writeDoc(t, "a cat and a cat\n")
	var out, errOut bytes.Buffer
	args := []string{"-config", t.TempDir(), "-find", "cat", "-replace", "cow", "-w", doc}
	if err := run(args, nil, &out, &errOut); err != nil {
		t.Fatalf("run: %v", err)
	}
	data, err := os.ReadFile(doc)
	if err != nil {
		t.Fatal(err)
	}
	if got, want := string(data), "a cow and a cat\n"; got != want {
		t.Errorf("file = %q, want %q", got, want)
	}
}

func TestStdinAndHistory(t *testing.T) {
	cfg := t.TempDir()
	var out, errOut bytes.Buffer
	if err := run([]string{"-config", cfg, "-find", "b"}, strings.NewReader("abc\n"), &out, &errOut); err != nil {
		t.Fatalf("run: %v", err)
	}
	if !strings.HasPrefix(out.String(), "-:1:2:") {
		t.Errorf("output = %q", out.String())
	}
	out.Reset()
	if err := run([]string{"-config", cfg, "-history"}, nil, &out, &errOut); err != nil {
		t.Fatalf("history: %v", err)
	}
	if got := strings.TrimSpace(out.String()); got != "b" {
		t.Errorf("history = %q, want b", got)
	}
}

func TestMissingFind(t *testing.T) {
	var out, errOut bytes.Buffer
	if err := run([]string{"-config", t.TempDir()}, nil, &out, &errOut); err == nil {
		t.Fatal("expected an error without -find")
	}
}

func TestPreviewKeepsCombiningMarks(t *testing.T) {
	line := strings.Repeat("e\u0301", 30) + "cat"
	var out bytes.Buffer
	p := &printer{w: &out, preview: true, width: 20, conc: txtsrc.DefaultConcOptions()}
	p.match("f", tsstring.New(line, tsstring.Props{}), pattern.Selection{Para: 0, Min: 60, Lim: 63})

	got := strings.TrimSuffix(out.String(), "\n")
	preview, ok := strings.CutPrefix(got, "f:1:61: ")
	if !ok {
		t.Fatalf("output = %q, want prefix f:1:61:", got)
	}
	if strings.HasPrefix(preview, "\u0301") {
		t.Errorf("preview %q starts with a detached combining mark", preview)
	}
	if !strings.HasSuffix(preview, "cat") {
		t.Errorf("preview %q lost the match", preview)
	}
	if w := runewidth.StringWidth(got); w > 20 {
		t.Errorf("preview width = %d, want at most 20", w)
	}
}

func TestReplaceInPlaceKeepsLineEnds(t *testing.T) {
	tests := []struct {
		name, doc, repl, want string
	}{
		{"crlf", "one cat\r\ntwo cat\r\n", "dog", "one dog\r\ntwo dog\r\n"},
		{"no final newline", "cat\ncat", "dog", "dog\ndog"},
		{"longer replacement", "a cat b\n", "caterpillar", "a caterpillar b\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := writeDoc(t, tt.doc)
			var out, errOut bytes.Buffer
			args := []string{"-config", t.TempDir(), "-find", "cat", "-replace", tt.repl, "-all", "-w", doc}
			if err := run(args, nil, &out, &errOut); err != nil {
				t.Fatalf("run: %v (stderr %q)", err, errOut.String())
			}
			data, err := os.ReadFile(doc)
			if err != nil {
				t.Fatal(err)
			}
			if string(data) != tt.want {
				t.Errorf("file = %q, want %q", data, tt.want)
			}
		})
	}
}

func TestReplaceStdinToStdout(t *testing.T) {
	var out, errOut bytes.Buffer
	args := []string{"-config", t.TempDir(), "-find", "b", "-replace", "x", "-all"}
	if err := run(args, strings.NewReader("abc\r\nb\n"), &out, &errOut); err != nil {
		t.Fatalf("run: %v", err)
	}
	if got, want := out.String(), "axc\r\nx\n"; got != want {
		t.Errorf("output = %q, want %q", got, want)
	}
}
