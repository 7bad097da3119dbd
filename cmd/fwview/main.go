// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: cmd/fwview/main.go
// Summary: Terminal viewer with find and replace over a highlighted document.
// Usage: fwview [-lexer go] [-style monokai] file
// Notes: Keys: / find, R set replacement, n/N next/previous, r replace,
// a replace all, u/U undo/redo, y copy selection, q quit.

package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/gdamore/tcell/v2"

	"fwviews/config"
	"fwviews/datastream"
	"fwviews/rootbox"
	"fwviews/settings"
	"fwviews/tsstring"
)

const toolName = "fwview"

var screenFactory = tcell.NewScreen

func main() {
	tcell.SetEncodingFallback(tcell.EncodingFallbackASCII)

	configDir := flag.String("config", "", "Config directory (default: user config dir)")
	lexer := flag.String("lexer", "", "Highlighting lexer (default: detect)")
	style := flag.String("style", "", "Highlighting style")
	logPath := flag.String("log", "", "Append diagnostic logs to this file")
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintf(os.Stderr, "usage: %s [flags] file\n", toolName)
		os.Exit(2)
	}
	if err := run(flag.Arg(0), *configDir, *lexer, *style, *logPath); err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", toolName, err)
		os.Exit(1)
	}
}

func run(path, configDir, lexer, style, logPath string) error {
	if logPath != "" {
		f, err := os.OpenFile(logPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return fmt.Errorf("open log: %w", err)
		}
		defer f.Close()
		log.SetOutput(f)
	} else {
		log.SetOutput(io.Discard)
	}

	store := config.NewStore(configDir)
	if err := store.Err(); err != nil {
		log.Printf("[SETTINGS] Using defaults: %v", err)
	}
	tool := store.Tool(toolName)
	if lexer == "" {
		lexer = tool.GetString(toolName, "lexer", "")
	}
	if style == "" {
		style = tool.GetString(toolName, "highlight_style", "")
	}

	db, err := settings.OpenFromConfig(store)
	if err != nil {
		log.Printf("[SETTINGS] Find history disabled: %v", err)
		db = nil
	}
	if db != nil {
		defer db.Close()
	}

	root, err := rootbox.Load(viewerStore(), path, datastream.OptionsFromConfig(store.System()), tsstring.Props{})
	if err != nil {
		return err
	}
	defer root.Close()
	v := newViewer(viewerConfig{
		Path:     path,
		Lexer:    lexer,
		Style:    style,
		Spelling: tool.GetBool(toolName, "spelling_marks", true),
		System:   store.System(),
		Settings: db,
	}, root)

	screen, err := screenFactory()
	if err != nil {
		return fmt.Errorf("init screen: %w", err)
	}
	if err := screen.Init(); err != nil {
		return fmt.Errorf("screen init: %w", err)
	}
	defer screen.Fini()

	if err := v.restorePlacement(screen); err != nil {
		log.Printf("[SETTINGS] Failed to load placement: %v", err)
	}
	v.loop(screen)
	if err := v.savePlacement(screen); err != nil {
		log.Printf("[SETTINGS] Failed to save placement: %v", err)
	}
	return nil
}
