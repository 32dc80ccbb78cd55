package subs

import (
	"strings"

	"github.com/npillmayer/adoc/engine/grammar"
)

// callouts replaces the callout markers at the end of verbatim lines.
// Marker IDs are read from the callout registry in the order the parser
// registered them. Escaped markers lose their backslash.
func (r *run) callouts(text string) string {
	lt, gt := "<", ">"
	if r.set.Has(grammar.SpecialChars) {
		lt, gt = "&lt;", "&gt;"
	}
	lines := strings.Split(text, "\n")
	auto := 0
	for i, line := range lines {
		marks := grammar.TrailingCallouts(line, lt, gt)
		if len(marks) == 0 {
			continue
		}
		var b strings.Builder
		last := 0
		for _, mk := range marks {
			b.WriteString(line[last:mk.Start])
			last = mk.End
			if mk.Escaped {
				b.WriteString(strings.Replace(line[mk.Start:mk.End], `\`, "", 1))
				continue
			}
			n := mk.Number(&auto)
			id := r.s.doc.Callouts.ReadNextID()
			b.WriteString(r.stash(r.s.syntax.Callout(id, n)))
		}
		b.WriteString(line[last:])
		lines[i] = b.String()
	}
	return strings.Join(lines, "\n")
}
