package asciidoc

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/npillmayer/adoc/core"
	"github.com/npillmayer/adoc/core/attributes"
	"github.com/npillmayer/adoc/core/locate/resources"
	"github.com/npillmayer/adoc/core/safemode"
	"github.com/npillmayer/adoc/engine/dom"
	"github.com/npillmayer/adoc/engine/parser"
	"github.com/npillmayer/adoc/engine/reader"
)

// ParseString parses a document given as a string.
func ParseString(text string, opts Options) (*dom.Document, error) {
	text = strings.TrimSuffix(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	var lines []string
	if text != "" {
		lines = strings.Split(text, "\n")
	}
	return ParseLines(lines, opts)
}

// ParseLines parses a document given as lines without line terminators.
func ParseLines(lines []string, opts Options) (*dom.Document, error) {
	base := opts.BaseDir
	if base == "" {
		base, _ = os.Getwd()
	}
	return parse(lines, source{dir: base}, opts)
}

// ParseFile reads and parses a document file. A file which cannot be read
// results in an EMISSING error and no document.
func ParseFile(path string, opts Options) (*dom.Document, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, core.WrapError(err, core.EMISSING, "cannot locate %s", path)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, core.WrapError(err, core.EMISSING, "cannot read %s", path)
	}
	data, err := os.ReadFile(abs)
	if err != nil {
		return nil, core.WrapError(err, core.EMISSING, "cannot read %s", path)
	}
	src := source{
		file:    path,
		abspath: abs,
		dir:     filepath.Dir(abs),
		mtime:   info.ModTime(),
	}
	if opts.BaseDir == "" {
		opts.BaseDir = src.dir
	}
	tracer().Infof("reading %s (%d bytes)", abs, len(data))
	return parse(resources.Content{Path: abs, Dir: src.dir, Data: data}.Lines(), src, opts)
}

// source describes where the input comes from.
type source struct {
	file    string // as given by the caller, empty for string input
	abspath string
	dir     string
	mtime   time.Time
}

func parse(lines []string, src source, opts Options) (*dom.Document, error) {
	mode := opts.SafeMode
	attrs := NewAttributes(opts)
	seedProvenance(attrs, src, opts)
	jail := opts.JailDir
	if jail == "" {
		jail = opts.BaseDir
	}
	if jail == "" {
		jail = src.dir
	}
	gate := safemode.NewGate(mode, jail)
	loader := resources.NewLoader(gate, opts.Conf)
	ropts := []reader.Option{reader.WithGrammar(opts.grammar()), reader.WithLoader(loader)}
	if opts.Context != nil {
		ropts = append(ropts, reader.WithContext(opts.Context))
	}
	cursor := core.Cursor{File: src.file, Dir: src.dir, LineNo: 1}
	if src.file != "" {
		cursor.Path = gate.RelativeToJail(src.abspath)
	}
	r := reader.New(lines, cursor, attrs, ropts...)
	var popts []parser.Option
	if opts.Syntax != nil {
		popts = append(popts, parser.WithSyntax(opts.Syntax))
	}
	if opts.ParseHeaderOnly {
		popts = append(popts, parser.HeaderOnly(true))
	}
	doc, err := parser.Parse(r, attrs, mode, popts...)
	if err != nil {
		tracer().Errorf("%v", err)
	}
	return doc, err
}

// NewAttributes creates the attribute store for a document: the
// application's attributes, which are locked unless soft-set, and the
// attributes describing the safe mode.
func NewAttributes(opts Options) *attributes.Store {
	attrs := attributes.New()
	for k, v := range safemode.Attributes(opts.SafeMode) {
		attrs.SetFromAPI(k, v)
	}
	if opts.Doctype != "" {
		attrs.SetFromAPI("doctype", opts.Doctype)
	}
	if opts.Compliance != nil && opts.Compliance.AttributeMissing != "" {
		attrs.SetFromAPI("attribute-missing@", opts.Compliance.AttributeMissing)
	}
	for k, v := range opts.Attributes {
		attrs.SetFromAPI(k, v)
	}
	return attrs
}

// seedProvenance sets the attributes describing the input document and the
// time of processing. Above safe mode Safe, the location of the document
// on the file system is not revealed.
func seedProvenance(attrs *attributes.Store, src source, opts Options) {
	now := opts.now()
	setDateTime(attrs, "local", now)
	doctime := now
	if !src.mtime.IsZero() {
		doctime = src.mtime
	}
	setDateTime(attrs, "doc", doctime)
	if src.file == "" {
		return
	}
	base := filepath.Base(src.file)
	ext := filepath.Ext(base)
	docfile, docdir := src.abspath, src.dir
	if opts.SafeMode.Tier() >= safemode.Server {
		docfile, docdir = base, ""
	}
	seed(attrs, "docfile", docfile)
	seed(attrs, "docdir", docdir)
	seed(attrs, "docname", strings.TrimSuffix(base, ext))
	seed(attrs, "docfilesuffix", ext)
}

func setDateTime(attrs *attributes.Store, prefix string, t time.Time) {
	date := t.Format("2006-01-02")
	tm := t.Format("15:04:05 -0700")
	seed(attrs, prefix+"date", date)
	seed(attrs, prefix+"time", tm)
	seed(attrs, prefix+"year", t.Format("2006"))
	seed(attrs, prefix+"datetime", date+" "+tm)
}

// seed sets an attribute unless the application has set or unset it
// already.
func seed(attrs *attributes.Store, key, value string) {
	if o := attrs.Get(key); !o.IsNone() || o.IsUnset() {
		return
	}
	attrs.Set(key, value)
}
