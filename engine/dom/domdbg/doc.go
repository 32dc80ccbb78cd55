/*
Package domdbg exports document trees for inspection.

ToHTML renders the block tree as an HTML tree: every block becomes an
element named after its context, carrying the block ID, anchor, style,
roles and level as attributes, and its substituted title and content as
parsed markup. The result may be queried with CSS selectors:

	sel, _ := cascadia.Compile("section[data-level='1'] > paragraph strong")
	matches := sel.MatchAll(domdbg.Tree(doc))

ToGraphViz writes a DOT graph of the block tree.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

*/
package domdbg

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'adoc.dom'.
func tracer() tracing.Trace {
	return tracing.Select("adoc.dom")
}
