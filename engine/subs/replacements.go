package subs

import (
	"strings"
	"unicode/utf8"

	"github.com/npillmayer/adoc/engine/grammar"
)

// attributes replaces attribute references. Unresolved references are
// handled by the missing-attribute policy of the attribute store.
func (r *run) attributes(text string) string {
	if !strings.Contains(text, "{") {
		return text
	}
	text, warnings := r.s.doc.Attributes.Interpolate(text)
	for _, w := range warnings {
		r.warn("%s", w.Msg)
	}
	return text
}

// replacements applies the typographic replacements. Replacement text is
// stashed, so no two replacements overlap.
func (r *run) replacements(text string) string {
	for _, rep := range r.s.g.Replacements() {
		rep := rep
		text = replaceMatches(rep.Pattern, text, func(m match) string {
			src := m.text(0)
			if rep.Lookahead != nil {
				next, _ := utf8.DecodeRuneInString(m.src[m.end():])
				if m.end() >= len(m.src) || !rep.Lookahead(next) {
					return src
				}
			}
			lead := ""
			if rep.Policy == grammar.PolicyLeading {
				lead = m.text(1)
			}
			rest := src[len(lead):]
			if strings.HasPrefix(rest, `\`) {
				return lead + rest[1:]
			}
			if rep.Policy == grammar.PolicyBounding {
				return m.text(1) + m.text(2)
			}
			return lead + r.stash(rep.Text)
		})
	}
	return text
}

// postReplacements turns a trailing " +" into a line break. With option
// (or document attribute) 'hardbreaks', every line break is kept.
func (r *run) postReplacements(text string) string {
	lb := r.s.syntax.LineBreak
	attrs := r.s.doc.Attributes
	if attrs.IsSet("hardbreaks") || attrs.IsSet("hardbreaks-option") ||
		(r.block != nil && r.block.HasOption("hardbreaks")) {
		lines := strings.Split(text, "\n")
		for i := range lines[:len(lines)-1] {
			lines[i] = strings.TrimSuffix(lines[i], " +") + lb
		}
		last := len(lines) - 1
		if strings.HasSuffix(lines[last], " +") {
			lines[last] = strings.TrimSuffix(lines[last], " +") + lb
		}
		return strings.Join(lines, "\n")
	}
	if !strings.Contains(text, " +") {
		return text
	}
	return replaceMatches(r.s.g.Inline(grammar.HardBreak), text, func(m match) string {
		return m.text(1) + lb
	})
}
