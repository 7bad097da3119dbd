// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: cmd/fwfind/main.go
// Summary: Command-line find and replace over plain text documents.
// Usage: fwfind -find word [-replace text -all] [-w] file...
// Notes: Each input line becomes one paragraph; matches are reported as
// file:line:column with a width-limited preview.

package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/mattn/go-runewidth"
	"golang.org/x/term"

	"fwviews/config"
	"fwviews/datastream"
	"fwviews/findrep"
	"fwviews/pattern"
	"fwviews/rootbox"
	"fwviews/settings"
	"fwviews/tsstring"
	"fwviews/txtsrc"
)

const toolName = "fwfind"

type cliFlags struct {
	find       string
	replace    string
	hasReplace bool
	all        bool
	write      bool
	matchCase  bool
	wholeWord  bool
	diacritics bool
	configDir  string
	logPath    string
	verbose    bool
	history    bool
	set        map[string]bool
}

func parseFlags(args []string, stderr io.Writer) (*cliFlags, []string, error) {
	fs := flag.NewFlagSet(toolName, flag.ContinueOnError)
	fs.SetOutput(stderr)
	f := &cliFlags{set: make(map[string]bool)}
	fs.StringVar(&f.find, "find", "", "Text to find")
	fs.StringVar(&f.replace, "replace", "", "Replacement text")
	fs.BoolVar(&f.all, "all", false, "Replace every match")
	fs.BoolVar(&f.write, "w", false, "Write replaced documents back to their files")
	fs.BoolVar(&f.matchCase, "case", false, "Match case")
	fs.BoolVar(&f.wholeWord, "word", false, "Match whole words only")
	fs.BoolVar(&f.diacritics, "diacritics", true, "Match diacritics")
	fs.StringVar(&f.configDir, "config", "", "Config directory (default: user config dir)")
	fs.StringVar(&f.logPath, "log", "", "Append diagnostic logs to this file")
	fs.BoolVar(&f.verbose, "verbose", false, "Log diagnostics to stderr")
	fs.BoolVar(&f.history, "history", false, "Print the saved find history and exit")
	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}
	fs.Visit(func(fl *flag.Flag) { f.set[fl.Name] = true })
	f.hasReplace = f.set["replace"]
	return f, fs.Args(), nil
}

// patternOptions layers explicitly given flags over the configured defaults.
func (f *cliFlags) patternOptions(cfg config.Config) pattern.Options {
	opts := pattern.OptionsFromConfig(cfg)
	if f.set["case"] {
		opts.MatchCase = f.matchCase
	}
	if f.set["word"] {
		opts.MatchWholeWord = f.wholeWord
	}
	if f.set["diacritics"] {
		opts.MatchDiacritics = f.diacritics
	}
	return opts
}

func main() {
	if err := run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		if !errors.Is(err, flag.ErrHelp) {
			fmt.Fprintf(os.Stderr, "%s: %v\n", toolName, err)
		}
		os.Exit(1)
	}
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	f, files, err := parseFlags(args, stderr)
	if err != nil {
		return err
	}
	closeLog, err := setupLogging(f, stderr)
	if err != nil {
		return err
	}
	defer closeLog()

	store := config.NewStore(f.configDir)
	if err := store.Err(); err != nil {
		log.Printf("[SETTINGS] Using defaults: %v", err)
	}
	db, err := settings.OpenFromConfig(store)
	if err != nil {
		log.Printf("[SETTINGS] Find history disabled: %v", err)
		db = nil
	}
	if db != nil {
		defer db.Close()
	}

	if f.history {
		if db == nil {
			return errors.New("settings database unavailable")
		}
		items, err := db.FindWhatHistory(0)
		if err != nil {
			return err
		}
		for _, item := range items {
			fmt.Fprintln(stdout, item)
		}
		return nil
	}
	if f.find == "" && !f.hasReplace {
		return errors.New("-find is required")
	}

	tool := store.Tool(toolName)
	opts := f.patternOptions(store.System())
	streamOpts := datastream.OptionsFromConfig(store.System())
	out := newPrinter(stdout, tool, txtsrc.ConcOptionsFromConfig(store.System()))

	if len(files) == 0 {
		files = []string{"-"}
	}
	total := 0
	for _, name := range files {
		root, err := loadDocument(name, stdin, streamOpts)
		if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		pat := pattern.New(tsstring.New(f.find, tsstring.Props{}), opts)
		n, err := handleDocument(name, root, pat, f, db, store, out, stdout, stderr)
		if cerr := root.Close(); cerr != nil {
			log.Printf("[ROOTBOX] Closing %s: %v", name, cerr)
		}
		if err != nil {
			return err
		}
		total += n
	}
	if db != nil && f.find != "" && !f.hasReplace {
		if err := db.AddFindWhat(f.find); err != nil {
			log.Printf("[SETTINGS] Failed to save find history: %v", err)
		}
	}
	if total == 0 && !f.hasReplace {
		return errors.New(strings.ToLower(strings.TrimSuffix(findrep.MsgNotFound, ".")))
	}
	return nil
}

func setupLogging(f *cliFlags, stderr io.Writer) (func(), error) {
	switch {
	case f.logPath != "":
		file, err := os.OpenFile(f.logPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, fmt.Errorf("open log: %w", err)
		}
		log.SetOutput(file)
		return func() { _ = file.Close() }, nil
	case f.verbose:
		log.SetOutput(stderr)
	default:
		log.SetOutput(io.Discard)
	}
	return func() {}, nil
}

// loadDocument reads a named file through a chunked stream, or stdin
// when name is "-".
func loadDocument(name string, stdin io.Reader, opts datastream.Options) (*rootbox.Root, error) {
	if name != "-" {
		return rootbox.Load(nil, name, opts, tsstring.Props{})
	}
	return rootbox.Read(nil, name, stdin, opts, tsstring.Props{})
}

// handleDocument lists the matches of one document, or replaces them and
// emits the result.
func handleDocument(name string, root *rootbox.Root, pat *pattern.Pattern, f *cliFlags, db *settings.Store, store *config.Store, out *printer, stdout, stderr io.Writer) (int, error) {
	if !f.hasReplace {
		n, err := listMatches(name, root, pat, out)
		if err != nil {
			return 0, fmt.Errorf("%s: %w", name, err)
		}
		return n, nil
	}
	n, err := replaceDocument(root, pat, f, db, store, stderr)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", name, err)
	}
	return n, emitDocument(name, root, f.write, stdout)
}

// reporter prints controller messages to stderr.
type reporter struct{ w io.Writer }

func (r reporter) Message(msg string)      { fmt.Fprintln(r.w, msg) }
func (r reporter) Confirm(msg string) bool { return true }

func replaceDocument(root *rootbox.Root, pat *pattern.Pattern, f *cliFlags, db *settings.Store, store *config.Store, stderr io.Writer) (int, error) {
	pat.SetReplacement(tsstring.New(f.replace, tsstring.Props{}))
	deps := findrep.Deps{Undo: root, Reporter: reporter{stderr}, Notifier: root}
	if db != nil {
		deps.History = db
	}
	ctl := findrep.New(root, deps, findrep.OptionsFromConfig(store.System()))
	ctl.SetPattern(pat)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-sigCh:
			log.Printf("[FINDREP] Interrupted, stopping")
			ctl.Stop()
		case <-done:
		}
	}()

	if f.all {
		return ctl.ReplaceAll()
	}
	// Without -all only the first match is replaced.
	found, err := ctl.FindNow(true)
	if err != nil || !found {
		return 0, err
	}
	if err := ctl.Replace(); err != nil {
		return 0, err
	}
	if _, replaced := root.UndoLabel(); !replaced {
		return 0, nil
	}
	return 1, nil
}

// emitDocument writes the edited stream, with its original line ends, to
// the file or to stdout.
func emitDocument(name string, root *rootbox.Root, write bool, stdout io.Writer) error {
	data, err := root.Bytes()
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	if write && name != "-" {
		info, err := os.Stat(name)
		if err != nil {
			return err
		}
		// Release the source file before overwriting it.
		if err := root.Close(); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		return os.WriteFile(name, data, info.Mode().Perm())
	}
	_, err = stdout.Write(data)
	return err
}

func listMatches(name string, root *rootbox.Root, pat *pattern.Pattern, out *printer) (int, error) {
	count := 0
	found, err := pat.Find(root, true)
	for ; err == nil && found; found, err = pat.NextMatch(root, true) {
		sel, _ := pat.Selection()
		out.match(name, root.Paragraph(sel.Para).Contents(), sel)
		count++
	}
	return count, err
}

// printer formats match lines, colouring and truncating them when stdout
// is a terminal.
type printer struct {
	w       io.Writer
	color   bool
	preview bool
	width   int
	conc    txtsrc.ConcOptions
}

func newPrinter(w io.Writer, tool config.Config, conc txtsrc.ConcOptions) *printer {
	p := &printer{w: w, preview: tool.GetBool(toolName, "preview_lines", true), conc: conc}
	p.width = tool.GetInt(toolName, "max_preview_cx", 0)
	tty := false
	if file, ok := w.(*os.File); ok && term.IsTerminal(int(file.Fd())) {
		tty = true
		if cols, _, err := term.GetSize(int(file.Fd())); err == nil && (p.width <= 0 || cols < p.width) {
			p.width = cols
		}
	}
	switch tool.GetString(toolName, "color", "auto") {
	case "always":
		p.color = true
	case "never":
		p.color = false
	default:
		p.color = tty
	}
	return p
}

func (p *printer) match(name string, line *tsstring.String, sel pattern.Selection) {
	prefix := fmt.Sprintf("%s:%d:%d:", name, sel.Para+1, sel.Min+1)
	if !p.preview {
		fmt.Fprintln(p.w, prefix)
		return
	}
	before, hit, after, err := p.window(line, sel)
	if err != nil {
		log.Printf("[FINDREP] Preview of %s failed: %v", prefix, err)
		fmt.Fprintln(p.w, prefix)
		return
	}
	if p.width > 0 {
		room := p.width - runewidth.StringWidth(prefix) - 1
		// Keep the match visible by dropping leading clusters first.
		if over := runewidth.StringWidth(before+hit) - room; over > 0 && room > 0 {
			before = runewidth.TruncateLeft(before, over, "")
		}
		rest := max(room-runewidth.StringWidth(before+hit), 0)
		after = runewidth.Truncate(after, rest, "...")
	}
	if p.color {
		hit = "\x1b[1;31m" + hit + "\x1b[0m"
	}
	fmt.Fprintf(p.w, "%s %s%s%s\n", prefix, before, hit, after)
}

// window cuts the context around sel through a concordance source, whose
// ends never separate a base character from its marks.
func (p *printer) window(line *tsstring.String, sel pattern.Selection) (before, hit, after string, err error) {
	opts := p.conc
	if p.width > 0 {
		opts.InitialContext = min(opts.InitialContext, p.width)
		opts.FinalContext = min(opts.FinalContext, p.width)
	}
	c := txtsrc.NewConc(nil, nil, opts)
	if err := c.AddString(line, nil); err != nil {
		return "", "", "", err
	}
	if err := c.SetItem(sel.Min, sel.Lim); err != nil {
		return "", "", "", err
	}
	text, err := c.FetchLog(0, c.Cch())
	if err != nil {
		return "", "", "", err
	}
	lo, hi := c.Item()
	return string(text[:lo]), string(text[lo:hi]), string(text[hi:]), nil
}
