/*
Package attributes implements the attribute store of a document: an ordered
table of named string values with tombstones for unset attributes, locks
for attributes the document may not change, and scoped overrides.

Attribute references in text are resolved by Interpolate:

	{name}              value of an attribute
	{name=default}      value, or default if the attribute is not set
	{name?text}         text, if the attribute is set
	{name!text}         text, if the attribute is not set
	{set:name:value}    sets an attribute, produces no text
	{set:name!}         unsets an attribute
	{counter:name:seed} increments a counter and produces its value
	{counter2:name}     increments a counter silently

References to missing attributes are treated according to the attribute
'attribute-missing' (skip, drop, drop-line or warn).

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

*/
package attributes

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'adoc.attributes'.
func tracer() tracing.Trace {
	return tracing.Select("adoc.attributes")
}
