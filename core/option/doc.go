package option

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'adoc.core'.
func tracer() tracing.Trace {
	return tracing.Select("adoc.core")
}
