// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: findrep/replace.go
// Summary: Builds the text that replaces a match.

package findrep

import (
	"fmt"

	"fwviews/pattern"
	"fwviews/tsstring"

	"github.com/google/uuid"
)

// DoReplacement returns the text substituted for matched. Replacement runs
// take the properties of the first matched character, except that
//   - a writing system given in the replacement wins when the search
//     matched on writing systems,
//   - a named style given in the replacement wins,
//   - tags are recomputed when the find or replacement string has any:
//     matched tags minus those in find, merged with the replacement's.
//
// Object data of the replacement is kept. When find and repl are both empty
// the matched text is kept and only its properties change.
func DoReplacement(matched, find, repl *tsstring.String, opts pattern.Options) (*tsstring.String, error) {
	findTags := stringTags(find)
	if repl.Len() == 0 && find.Len() == 0 {
		rp := repl.PropsAt(0)
		b := matched.Builder()
		err := b.ModifyProps(0, b.Len(), func(p *tsstring.Props) {
			obj := p.ObjData
			*p = transferProps(*p, rp, findTags, opts)
			p.ObjData = obj
		})
		if err != nil {
			return nil, fmt.Errorf("restyle matched text: %w", err)
		}
		return b.String(), nil
	}

	base := matched.PropsAt(0)
	b := repl.Builder()
	err := b.ModifyProps(0, b.Len(), func(p *tsstring.Props) {
		*p = transferProps(base, *p, findTags, opts)
	})
	if err != nil {
		return nil, fmt.Errorf("restyle replacement: %w", err)
	}
	return b.String(), nil
}

// transferProps applies the replacement run rp onto the matched props base.
func transferProps(base, rp tsstring.Props, findTags []uuid.UUID, opts pattern.Options) tsstring.Props {
	out := base.Clone()
	out.ObjData = rp.ObjData
	if opts.MatchWritingSystem || opts.MatchOldWritingSystem {
		if rp.WS != 0 {
			out.WS = rp.WS
		}
		if rp.OWS != 0 {
			out.OWS = rp.OWS
		}
	}
	if rp.Style != "" {
		out.Style = rp.Style
	}
	if len(findTags) > 0 || len(rp.Tags) > 0 {
		retained := tsstring.RemoveTags(base.Tags, findTags)
		out.Tags = tsstring.AddReplacementTags(retained, rp.Tags)
	}
	return out
}

// stringTags collects the tags used anywhere in s, in canonical order.
func stringTags(s *tsstring.String) []uuid.UUID {
	var all []uuid.UUID
	for i := 0; i < s.RunCount(); i++ {
		all = append(all, s.Run(i).Props.Tags...)
	}
	return tsstring.SortTags(all)
}
