/*
Package core contains types shared by all packages of adoc: error codes,
application errors and source diagnostics.

Problems found in a document are classified by error code:

   ESTRUCTURE   unterminated delimited block, illegal section level jump, malformed table
   ESECURITY    path escapes the jail, macro forbidden by the safe mode
   EREFERENCE   unresolved attribute or cross reference (recovered locally)
   EINVALID     malformed attribute list or macro arguments (taken literally)

Only the first two terminate the construct they occur in.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

*/
package core
