// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: highlight/highlight.go
// Summary: Syntax highlighting expressed as display property overrides.
// Usage: Viewers wrap a paragraph source in txtsrc.Override with the ranges
// returned by Overrides; the stored text is never touched.

package highlight

import (
	"fmt"
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/go-enry/go-enry/v2"

	"fwviews/textprops"
	"fwviews/tsstring"
	"fwviews/txtsrc"
)

const defaultStyleName = "catppuccin-mocha"

// Style resolves a style name, falling back to the default.
func Style(name string) *chroma.Style {
	if name == "" {
		name = defaultStyleName
	}
	return styles.Get(name)
}

// DetectLexer names the lexer for a document. The filename is consulted
// first, then the content classifier, then chroma's own analysers. An empty
// result means plain text.
func DetectLexer(filename, content string) string {
	if lang := enry.GetLanguage(filename, []byte(content)); lang != "" {
		if l := lexers.Get(lang); l != nil {
			return l.Config().Name
		}
	}
	if l := lexers.Match(filename); l != nil {
		return l.Config().Name
	}
	if content != "" {
		if l := lexers.Analyse(content); l != nil {
			return l.Config().Name
		}
	}
	return ""
}

func getLexer(name, text string) chroma.Lexer {
	if name != "" {
		if l := lexers.Get(name); l != nil {
			return l
		}
	}
	if l := lexers.Analyse(text); l != nil {
		return l
	}
	return lexers.Fallback
}

// tokenProps converts a style entry into an override. Colours equal to the
// style's base text colour are dropped so the paragraph's own colour shows.
func tokenProps(entry chroma.StyleEntry, base chroma.Colour) textprops.Partial {
	var p textprops.Partial
	if entry.Bold == chroma.Yes {
		p.Bold = tsstring.ToggleOn
	}
	if entry.Italic == chroma.Yes {
		p.Italic = tsstring.ToggleOn
	}
	if entry.Underline == chroma.Yes {
		p.Underline = tsstring.UnderlineSingle
	}
	if entry.Colour.IsSet() && entry.Colour != base {
		p.ForeColor = tsstring.RGB(entry.Colour.Red(), entry.Colour.Green(), entry.Colour.Blue())
	}
	return p
}

// Overrides tokenises text and returns one override per styled token run,
// in rune offsets of text. Adjacent runs with equal properties are merged.
func Overrides(text, lexerName, styleName string) ([]txtsrc.DispPropOverride, error) {
	if text == "" {
		return nil, nil
	}
	style := Style(styleName)
	lexer := chroma.Coalesce(getLexer(lexerName, text))
	it, err := chroma.Tokenise(lexer, nil, text)
	if err != nil {
		return nil, fmt.Errorf("highlight: tokenise with %s: %w", lexer.Config().Name, err)
	}

	total := len([]rune(text))
	base := style.Get(chroma.Text).Colour
	var out []txtsrc.DispPropOverride
	pos := 0
	for _, tok := range it {
		if tok.Type == chroma.EOFType || pos >= total {
			break
		}
		n := len([]rune(tok.Value))
		lim := min(pos+n, total)
		p := tokenProps(style.Get(tok.Type), base)
		if !p.IsZero() && lim > pos {
			if k := len(out) - 1; k >= 0 && out[k].Lim == pos && out[k].Props == p {
				out[k].Lim = lim
			} else {
				out = append(out, txtsrc.DispPropOverride{Min: pos, Lim: lim, Props: p})
			}
		}
		pos += n
	}
	return out, nil
}

// Lines highlights a paragraph list as one block so the lexer sees the
// whole document. The result holds one override list per line.
func Lines(lines []string, lexerName, styleName string) ([][]txtsrc.DispPropOverride, error) {
	all, err := Overrides(strings.Join(lines, "\n")+"\n", lexerName, styleName)
	if err != nil {
		return nil, err
	}
	out := make([][]txtsrc.DispPropOverride, len(lines))
	start, k := 0, 0
	for i, line := range lines {
		end := start + len([]rune(line))
		for k < len(all) && all[k].Min < end {
			d := all[k]
			if d.Lim > start {
				d.Min, d.Lim = max(d.Min, start)-start, min(d.Lim, end)-start
				out[i] = append(out[i], d)
			}
			if all[k].Lim > end {
				break
			}
			k++
		}
		start = end + 1
	}
	return out, nil
}
