/*
Package reader supplies the lines of a document to the parser.

The reader keeps a stack of frames, one for the document and one for each
open include file. Preprocessor directives are expanded when a line is
peeked: conditionals (ifdef, ifndef, ifeval, endif) suppress lines, and
include directives push the content of another file or URI. Lines pushed
back with Unshift are not preprocessed again.

Includes are resolved through the safe mode gate of the loader. A file may
not include itself, directly or indirectly, and the depth of nested
includes is bounded by attribute 'max-include-depth'.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

*/
package reader

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'adoc.reader'.
func tracer() tracing.Trace {
	return tracing.Select("adoc.reader")
}
