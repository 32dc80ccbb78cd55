package dom

import (
	"strings"

	"github.com/npillmayer/adoc/core"
	"github.com/npillmayer/adoc/core/attributes"
	"github.com/npillmayer/adoc/core/safemode"
	"golang.org/x/text/language"
)

// Author is an author of a document, as given in the header.
type Author struct {
	Name       string
	Firstname  string
	Middlename string
	Lastname   string
	Initials   string
	Email      string
}

// Revision is the revision line of a document header.
type Revision struct {
	Number string
	Date   string
	Remark string
}

// Footnote is a footnote collected during substitution.
type Footnote struct {
	Index int
	ID    string
	Text  string
}

// IndexTerm is an index entry: a primary term and optional secondary and
// tertiary terms. Visible terms are part of the text.
type IndexTerm struct {
	Terms   []string
	Visible bool
	Block   BlockID
}

// Document is the root of a document tree. It owns the arena of blocks and
// the attribute store. Once parsing is complete, a document is not
// restructured any more.
type Document struct {
	Blocks      []*Block
	Attributes  *attributes.Store
	Header      attributes.Snapshot // attributes at the end of the header
	SafeMode    safemode.Mode
	Authors     []Author
	Revision    Revision
	FrontMatter map[string]interface{}
	Diagnostics []core.Diagnostic
	Refs        *Catalog
	Footnotes   []Footnote
	IndexTerms  []IndexTerm
	Callouts    *Callouts
}

// NewDocument creates a document with an empty root block.
func NewDocument(attrs *attributes.Store, mode safemode.Mode) *Document {
	if attrs == nil {
		attrs = attributes.New()
	}
	doc := &Document{
		Attributes: attrs,
		SafeMode:   mode,
		Refs:       NewCatalog(),
		Callouts:   NewCallouts(),
	}
	doc.NewBlock(CtxDocument, NoBlock)
	return doc
}

// Root returns the document block.
func (d *Document) Root() *Block {
	return d.Blocks[Root]
}

// Block returns the block for an ID, or nil.
func (d *Document) Block(id BlockID) *Block {
	if id < 0 || int(id) >= len(d.Blocks) {
		return nil
	}
	return d.Blocks[id]
}

// Children returns the child blocks of a block.
func (d *Document) Children(id BlockID) []*Block {
	b := d.Block(id)
	if b == nil {
		return nil
	}
	children := make([]*Block, len(b.Children))
	for i, ch := range b.Children {
		children[i] = d.Blocks[ch]
	}
	return children
}

// Parent returns the parent of a block, or nil for the root.
func (d *Document) Parent(id BlockID) *Block {
	if b := d.Block(id); b != nil {
		return d.Block(b.Parent)
	}
	return nil
}

// NewBlock allocates a block in the arena. If parent is not NoBlock, the
// block is appended to the children of parent.
func (d *Document) NewBlock(ctx Context, parent BlockID) *Block {
	b := &Block{
		ID:      BlockID(len(d.Blocks)),
		Context: ctx,
		Parent:  NoBlock,
	}
	d.Blocks = append(d.Blocks, b)
	if parent != NoBlock {
		d.Append(parent, b.ID)
	}
	return b
}

// Append makes a block the last child of parent. If the block already has
// a parent, it is moved.
func (d *Document) Append(parent, child BlockID) {
	c := d.Block(child)
	if c == nil || d.Block(parent) == nil {
		return
	}
	d.Detach(child)
	c.Parent = parent
	p := d.Blocks[parent]
	p.Children = append(p.Children, child)
}

// Detach removes a block from the children of its parent. The block stays
// in the arena, but is no longer reachable from the root.
func (d *Document) Detach(id BlockID) {
	b := d.Block(id)
	if b == nil || b.Parent == NoBlock {
		return
	}
	p := d.Blocks[b.Parent]
	for i, ch := range p.Children {
		if ch == id {
			p.Children = append(p.Children[:i], p.Children[i+1:]...)
			break
		}
	}
	b.Parent = NoBlock
}

// Ancestor returns the nearest ancestor of a block (or the block itself)
// with context ctx.
func (d *Document) Ancestor(id BlockID, ctx Context) *Block {
	for b := d.Block(id); b != nil; b = d.Block(b.Parent) {
		if b.Context == ctx {
			return b
		}
	}
	return nil
}

// Sections returns the sections of the document in document order.
func (d *Document) Sections() []*Block {
	var sections []*Block
	d.Walk(func(b *Block, depth int) WalkResult {
		if b.Context == CtxSection {
			sections = append(sections, b)
		}
		return WalkContinue
	})
	return sections
}

// Title returns the document title after substitution, or the raw title if
// substitution has not happened yet.
func (d *Document) Title() string {
	root := d.Root()
	if root.Title != "" {
		return root.Title
	}
	if root.RawTitle != "" {
		return root.RawTitle
	}
	return d.Attributes.ValueOr("doctitle", "")
}

// Doctype returns the doctype of the document.
func (d *Document) Doctype() string {
	return d.Attributes.ValueOr("doctype", "article")
}

// Language returns the language of the document as set by attribute 'lang',
// defaulting to English.
func (d *Document) Language() language.Tag {
	lang, ok := d.Attributes.Value("lang")
	if !ok || lang == "" {
		return language.English
	}
	tag, err := language.Parse(lang)
	if err != nil {
		tracer().Infof("illegal language %q: %v", lang, err)
		return language.English
	}
	return tag
}

// Diag records a diagnostic for the document and traces it.
func (d *Document) Diag(code int, at core.Cursor, format string, v ...interface{}) {
	diag := core.Diag(code, at, format, v...)
	switch code {
	case core.EREFERENCE, core.EINVALID:
		tracer().Infof("%s", diag.UserMessage())
	default:
		tracer().Errorf("%s", diag.UserMessage())
	}
	d.Diagnostics = append(d.Diagnostics, diag)
}

// AddDiagnostics appends diagnostics collected elsewhere, e.g. by a reader.
func (d *Document) AddDiagnostics(diags ...core.Diagnostic) {
	d.Diagnostics = append(d.Diagnostics, diags...)
}

// Err returns a *core.ParseError if there are diagnostics of structural or
// security errors, nil otherwise.
func (d *Document) Err() error {
	return core.FatalDiagnostics(d.Diagnostics)
}

// RegisterFootnote adds a footnote and returns its index (1-based). A
// footnote with the ID of an existing one is not added again.
func (d *Document) RegisterFootnote(id, text string) Footnote {
	if id != "" {
		if fn, ok := d.Footnote(id); ok {
			return fn
		}
	}
	fn := Footnote{Index: len(d.Footnotes) + 1, ID: id, Text: text}
	d.Footnotes = append(d.Footnotes, fn)
	return fn
}

// Footnote finds a footnote by ID.
func (d *Document) Footnote(id string) (Footnote, bool) {
	for _, fn := range d.Footnotes {
		if fn.ID == id {
			return fn, true
		}
	}
	return Footnote{}, false
}

// AddIndexTerm records an index term.
func (d *Document) AddIndexTerm(block BlockID, visible bool, terms ...string) {
	var clean []string
	for _, t := range terms {
		if t = strings.TrimSpace(t); t != "" {
			clean = append(clean, t)
		}
	}
	if len(clean) == 0 {
		return
	}
	d.IndexTerms = append(d.IndexTerms, IndexTerm{Terms: clean, Visible: visible, Block: block})
}
