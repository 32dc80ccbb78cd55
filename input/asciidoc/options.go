package asciidoc

import (
	"context"
	"time"

	"github.com/npillmayer/adoc/core/safemode"
	"github.com/npillmayer/adoc/engine/grammar"
	"github.com/npillmayer/adoc/engine/subs"
	"github.com/npillmayer/schuko"
)

// Options configure the parsing of a document.
type Options struct {
	SafeMode safemode.Mode
	// Attributes set by the application. They are locked against changes
	// by the document, unless the name or the value ends in '@'.
	Attributes map[string]string
	// BaseDir is the directory relative paths are resolved against. It
	// defaults to the directory of the input file, or the working directory.
	BaseDir string
	// JailDir confines file access at safe mode Safe and above. It
	// defaults to BaseDir.
	JailDir string
	Doctype string
	// Compliance overrides the default compliance flags of the grammar.
	Compliance      *grammar.Compliance
	ParseHeaderOnly bool
	Syntax          *subs.OutputSyntax
	// Now is the clock for attributes localdate and localtime.
	Now func() time.Time
	// Context is used for reading remote includes.
	Context context.Context
	// Conf is consulted by the resource loader, e.g. for the cache folder.
	Conf schuko.Configuration
}

func (o Options) now() time.Time {
	if o.Now != nil {
		return o.Now()
	}
	return time.Now()
}

func (o Options) grammar() *grammar.Grammar {
	if o.Compliance != nil {
		return grammar.New(*o.Compliance)
	}
	return grammar.Default()
}
