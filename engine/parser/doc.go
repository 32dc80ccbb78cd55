/*
Package parser implements the block lexer. It reads preprocessed lines from
a reader.Reader and assembles the block tree of a dom.Document.

The parser processes lines sequentially. Open containers (sections,
compound delimited blocks, lists and list items) are kept on an explicit
stack of block IDs; leaf blocks (paragraphs, verbatim blocks, tables, block
macros) are read in one go. Block metadata (attribute lists, anchors,
titles and attribute entries) is collected and attached to the next block.

When the tree is complete, the inline substitutions of package subs are
applied to all blocks.

	doc, err := parser.Parse(reader.FromString(text, attrs), attrs, safemode.Secure)

Parse returns the document even in the presence of errors. Structural and
security problems are returned as a *core.ParseError; other diagnostics are
available from the document.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

*/
package parser

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'adoc.parser'.
func tracer() tracing.Trace {
	return tracing.Select("adoc.parser")
}
