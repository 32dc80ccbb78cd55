/*
Package safemode implements the safe-mode gate: four ascending security tiers
controlling file system access and privileged macros.

   UNSAFE(0)   no restrictions
   SAFE(1)     file reads restricted to the directory tree of the source (the jail)
   SERVER(10)  additionally, document content may not set rendering-critical attributes
   SECURE(20)  additionally, no file inclusion and no embedding of local data

The gate normalizes requested paths, collapsing traversal segments
explicitly, and denies paths escaping the jail root.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

*/
package safemode

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'adoc.safemode'.
func tracer() tracing.Trace {
	return tracing.Select("adoc.safemode")
}
