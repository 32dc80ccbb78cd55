/*
Package subs implements inline substitutions.

A Substitutor applies the steps of a substitution set to a text, always in
the same order:

	passthroughs   pass:[], +++, ++, +, $$ are stashed away
	specialchars   & < > become entities
	quotes         strong, emphasis, monospace, mark, super- and subscript
	macros         anchors, images, index terms, links, footnotes, xrefs
	attributes     {name} references
	replacements   typographic replacements, like (C) and --
	post           hard line breaks
	callouts       <1> markers of verbatim content

Markup generated by a step is stashed away as well, so later steps do not
see it. Stashed text is restored as the very last step.

The markup itself is produced by an OutputSyntax. HTMLSyntax is used by
default; renderers for other formats may supply their own.

Document substitutes all the text of a parsed document: titles,
paragraphs, list items, table cells and verbatim blocks. Attribute entries
in the body of the document are replayed while walking the tree, so every
block sees the attribute values in effect at its position.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

*/
package subs

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'adoc.subs'.
func tracer() tracing.Trace {
	return tracing.Select("adoc.subs")
}
