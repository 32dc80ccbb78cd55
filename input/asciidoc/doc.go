/*
Package asciidoc is the entry point for reading AsciiDoc documents. It sets
up the attribute store, the safe mode gate and the reader, seeds the
provenance attributes of the input and hands over to the parser.

	doc, err := asciidoc.ParseFile("manual.adoc", asciidoc.Options{SafeMode: safemode.Safe})

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

*/
package asciidoc

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'adoc.input'.
func tracer() tracing.Trace {
	return tracing.Select("adoc.input")
}
