package parser

import (
	"github.com/emirpasic/gods/stacks/arraystack"
	"github.com/npillmayer/adoc/core"
	"github.com/npillmayer/adoc/core/attributes"
	"github.com/npillmayer/adoc/core/safemode"
	"github.com/npillmayer/adoc/engine/dom"
	"github.com/npillmayer/adoc/engine/grammar"
	"github.com/npillmayer/adoc/engine/reader"
	"github.com/npillmayer/adoc/engine/subs"
)

// Parser assembles the block tree of a document from the lines of a
// reader. A Parser is used for a single document and is not safe for
// concurrent use.
type Parser struct {
	r          *reader.Reader
	g          *grammar.Grammar
	doc        *dom.Document
	attrs      *attributes.Store
	syntax     *subs.OutputSyntax
	subs       *subs.Substitutor
	stack      *arraystack.Stack // of *container
	meta       metadata
	headerOnly bool
	sectnums   []int          // section numbers by level
	appendix   int            // number of appendix sections seen
}

// Option configures a parser.
type Option func(*Parser)

// WithGrammar sets the grammar. It defaults to the grammar of the reader.
func WithGrammar(g *grammar.Grammar) Option {
	return func(p *Parser) {
		p.g = g
	}
}

// WithSyntax sets the output syntax of inline substitutions.
func WithSyntax(syntax *subs.OutputSyntax) Option {
	return func(p *Parser) {
		p.syntax = syntax
	}
}

// HeaderOnly stops parsing after the document header.
func HeaderOnly(yes bool) Option {
	return func(p *Parser) {
		p.headerOnly = yes
	}
}

// Parse reads a document from r. If attrs is nil, the attribute store of
// the reader is used. Parse always returns a document; the error is a
// *core.ParseError if structural or security problems have been found.
func Parse(r *reader.Reader, attrs *attributes.Store, mode safemode.Mode, opts ...Option) (*dom.Document, error) {
	if attrs == nil {
		attrs = r.Attributes()
	}
	p := &Parser{
		r:     r,
		g:     r.Grammar(),
		attrs: attrs,
		stack: arraystack.New(),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.doc = dom.NewDocument(attrs, mode)
	p.subs = subs.New(p.doc, p.g, p.syntax, subs.WithLoader(r.Loader()))
	p.parseHeader()
	if !p.headerOnly {
		p.parseBody(p.doc.Root())
		p.wrapPreamble()
	}
	p.doc.AddDiagnostics(r.Diagnostics()...)
	p.subs.Document()
	tracer().Infof("parsed %d blocks", len(p.doc.Blocks))
	return p.doc, p.doc.Err()
}

// nested creates a parser for content embedded in the current document,
// e.g. the content of an AsciiDoc table cell.
func (p *Parser) nested(r *reader.Reader) *Parser {
	return &Parser{
		r:        r,
		g:        p.g,
		doc:      p.doc,
		attrs:    p.attrs,
		syntax:   p.syntax,
		subs:     p.subs,
		stack:    arraystack.New(),
		sectnums: p.sectnums,
	}
}

// --- Open containers -------------------------------------------------------

type containerKind int8

const (
	kindRoot containerKind = iota
	kindSection
	kindDelimited
	kindList
	kindItem
)

// container is an open block which may receive further children.
type container struct {
	kind     containerKind
	id       dom.BlockID
	delim    grammar.Delimiter // fence of a delimited block
	opened   core.Cursor
	key      string // marker identity of a list
	listKind grammar.ListKind
	attach   bool // an item has seen a list continuation
}

func (p *Parser) push(c *container) {
	p.stack.Push(c)
}

func (p *Parser) top() *container {
	c, ok := p.stack.Peek()
	if !ok {
		return nil
	}
	return c.(*container)
}

// containers returns the open containers, innermost first.
func (p *Parser) containers() []*container {
	values := p.stack.Values()
	cs := make([]*container, len(values))
	for i, v := range values {
		cs[i] = v.(*container)
	}
	return cs
}

// pop closes the innermost container.
func (p *Parser) pop() *container {
	v, ok := p.stack.Pop()
	if !ok {
		return nil
	}
	c := v.(*container)
	b := p.doc.Block(c.id)
	if last := p.r.LastCursor().LineNo; last > b.EndLine {
		b.EndLine = last
	}
	if c.kind == kindList && c.listKind == grammar.Callout {
		p.doc.Callouts.NextList()
	}
	tracer().Debugf("closed %s", b.Context)
	return c
}

// innermostDelimited returns the innermost open delimited block, or nil.
func (p *Parser) innermostDelimited() *container {
	for _, c := range p.containers() {
		if c.kind == kindDelimited {
			return c
		}
	}
	return nil
}

// closes returns true if line is the closing fence of the innermost open
// delimited block.
func (p *Parser) closes(line string) bool {
	c := p.innermostDelimited()
	return c != nil && p.g.Closes(c.delim, line)
}

// closeLists closes all lists and list items on top of the stack.
func (p *Parser) closeLists() {
	for c := p.top(); c != nil && (c.kind == kindList || c.kind == kindItem); c = p.top() {
		p.pop()
	}
}

// --- Body ------------------------------------------------------------------

// parseBody reads blocks into parent until the input is exhausted.
func (p *Parser) parseBody(parent *dom.Block) {
	p.push(&container{kind: kindRoot, id: parent.ID})
	for p.step() {
	}
	for p.stack.Size() > 0 {
		c := p.top()
		if c.kind == kindDelimited {
			b := p.doc.Block(c.id)
			p.doc.Diag(core.ESTRUCTURE, c.opened, "unterminated %s block", b.Context)
		}
		p.pop()
	}
}

// step processes the next line. It returns false at end of input.
func (p *Parser) step() bool {
	line, ok := p.r.Peek()
	if !ok {
		return false
	}
	if p.closes(line.Text) {
		p.r.Read()
		for c := p.top(); c.kind != kindDelimited; c = p.top() {
			p.pop()
		}
		c := p.pop()
		p.doc.Block(c.id).EndLine = line.Cursor.LineNo
		p.dropMeta()
		return true
	}
	top := p.top()
	if top.kind == kindItem || top.kind == kindList {
		p.listStep(top, line)
		return true
	}
	if grammar.IsBlank(line.Text) {
		p.r.Read()
		return true
	}
	p.block(top)
	return true
}

// listStep processes a line while a list item is open.
func (p *Parser) listStep(item *container, line reader.Line) {
	text := line.Text
	switch {
	case grammar.IsBlank(text):
		p.r.Read()
		return
	case item.attach:
		if p.block(item) {
			item.attach = false
		}
		return
	case text == "+":
		p.r.Read()
		item.attach = true
		return
	case p.g.IsComment(text):
		p.r.Read()
		return
	}
	if li, ok := p.g.MatchListItem(text); ok {
		p.r.Read()
		p.listItem(li, line)
		return
	}
	p.closeLists()
}

// block reads the next block into the container parent. Metadata lines
// are collected for the block following them. It returns true if a block
// has been created.
func (p *Parser) block(parent *container) bool {
	line, _ := p.r.Read()
	if p.metadataLine(line) {
		return false
	}
	pb := p.doc.Block(parent.id)
	text := line.Text
	if p.sectionAllowed(parent) {
		if p.section(line) {
			return true
		}
	} else if p.meta.discrete() {
		if p.floatingTitle(pb, line) {
			return true
		}
	}
	if d, ok := p.g.Delimiter(text); ok {
		p.delimited(pb, d, line)
		return true
	}
	if m := p.g.Match(grammar.RuleBlockMacro, text); m != nil {
		if p.blockMacro(pb, m, line) {
			return true
		}
	}
	if p.g.Matches(grammar.RuleThematicBreak, text) || p.g.Matches(grammar.RuleMarkdownBreak, text) {
		p.leaf(dom.CtxThematicBreak, pb, line)
		return true
	}
	if p.g.Matches(grammar.RulePageBreak, text) {
		p.leaf(dom.CtxPageBreak, pb, line)
		return true
	}
	if li, ok := p.g.MatchListItem(text); ok && !p.meta.verbatim() {
		p.list(pb, li, line)
		return true
	}
	return p.paragraph(pb, line)
}

// sectionAllowed is true if sections may start in container c.
func (p *Parser) sectionAllowed(c *container) bool {
	switch c.kind {
	case kindSection:
		return true
	case kindRoot:
		return p.doc.Block(c.id).Context == dom.CtxDocument
	}
	return false
}

// leaf creates a block without content.
func (p *Parser) leaf(ctx dom.Context, parent *dom.Block, line reader.Line) *dom.Block {
	b := p.newBlock(ctx, parent, line)
	b.EndLine = line.Cursor.LineNo
	return b
}

// wrapPreamble moves the blocks before the first section of a document
// with a title and sections into a preamble block.
func (p *Parser) wrapPreamble() {
	root := p.doc.Root()
	if root.RawTitle == "" || len(root.Children) == 0 {
		return
	}
	first := -1
	for i, ch := range root.Children {
		if p.doc.Block(ch).Context == dom.CtxSection {
			first = i
			break
		}
	}
	if first <= 0 {
		return
	}
	moved := append([]dom.BlockID(nil), root.Children[:first]...)
	preamble := p.doc.NewBlock(dom.CtxPreamble, dom.NoBlock)
	preamble.Loc = p.doc.Block(moved[0]).Loc
	for _, id := range moved {
		p.doc.Append(preamble.ID, id)
	}
	preamble.Parent = dom.Root
	root.Children = append([]dom.BlockID{preamble.ID}, root.Children...)
	tracer().Debugf("wrapped %d blocks into preamble", len(moved))
}
