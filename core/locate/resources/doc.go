/*
Package resources loads the resources a document refers to: include files,
remote content and images to embed as data URIs. Every access is checked by
a safe mode gate.

As reading remote content may be a time-consuming task, URIs are resolved in
an async/await fashion. ResolveURI returns a promise, which the client will
call later to receive the content. The call to the promise-function will
then block until loading has completed or the context is done.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

*/
package resources

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces to tracing key 'adoc.resources'.
func tracer() tracing.Trace {
	return tracing.Select("adoc.resources")
}
