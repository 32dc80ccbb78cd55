/*
Package grammar holds the grammar table of the markup language: named line
patterns for block constructs, the delimited-block fences, the ordered quote
forms, typographic replacements and inline macro patterns, together with
the substitution sets.

A Grammar is an immutable value, created once for a set of compliance
flags and shared by the reader, the parser and the substitutor.

	g := grammar.Default()
	level, title, ok := g.SectionTitle("== Introduction")

Precedence of block rules is the order of their definition. Ambiguous list
markers are resolved by this order, too: "a. text" is an ordered list item.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

*/
package grammar

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'adoc.grammar'.
func tracer() tracing.Trace {
	return tracing.Select("adoc.grammar")
}
