/*
Package dom is the document object model produced by the parser.

A Document owns an arena of blocks. Blocks refer to their parent and
children by BlockID, an index into the arena; block 0 is the document
itself. The tree is built by the parser and completed by substitution,
which fills in the Title and Content fields of the blocks. After that a
document is read-only for renderers, which traverse it with Walk:

	doc.Walk(func(b *dom.Block, depth int) dom.WalkResult {
		switch b.Context {
		case dom.CtxSection:
			fmt.Printf("%s %s\n", strings.Repeat("=", b.Level+1), b.Title)
		case dom.CtxParagraph:
			fmt.Println(b.Content)
		}
		return dom.WalkContinue
	})

Cross references are weak. The catalog of a document maps IDs to blocks,
it never owns them.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

*/
package dom

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'adoc.dom'.
func tracer() tracing.Trace {
	return tracing.Select("adoc.dom")
}
