/*
Package xpathadapter implements an xpath.NodeNavigator.

We use this library for XPath queries:

	github.com/antchfx/xpath

Package xpathadapter implements an adapter to enable antchfx/xpath to
access the block tree of a dom.Document. Element names are the names of
block contexts ("section", "paragraph", "listing", ...). Blocks expose
their id, style, level, title and named block attributes as XPath
attributes. The string value of a block is its plain inner text.

	nav := xpathadapter.NewNavigator(doc)
	expr := xpath.MustCompile("//section[@level=1]/paragraph")
	for _, b := range xpathadapter.Select(nav, expr) {
		...
	}

The document block is the single child of a virtual root node, so
absolute paths start with "/document".

For a description of the various methods of interface xpath.NodeNavigator
please refer to the documentation of antchfx/xpath. It is not replicated here.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

*/
package xpathadapter

import (
	"errors"
	"strconv"

	"github.com/antchfx/xpath"
	"github.com/npillmayer/adoc/engine/dom"
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'adoc.dom'.
func tracer() tracing.Trace {
	return tracing.Select("adoc.dom")
}

// ErrNotANavigator is returned by CurrentBlock for foreign navigators.
var ErrNotANavigator = errors.New("navigator is not of type xpathadapter.NodeNavigator")

type attribute struct {
	key, value string
}

// NodeNavigator navigates the block tree of a document.
type NodeNavigator struct {
	doc     *dom.Document
	current dom.BlockID // dom.NoBlock is the virtual root
	attrs   []attribute // attributes of current, if attr >= 0
	attr    int         // attributes index
}

// NewNavigator creates a new xpath.NodeNavigator for a document, positioned
// at the virtual root.
func NewNavigator(doc *dom.Document) *NodeNavigator {
	return &NodeNavigator{
		doc:     doc,
		current: dom.NoBlock,
		attr:    -1,
	}
}

// CurrentBlock returns the block a navigator is positioned at. For the
// virtual root it returns nil.
func CurrentBlock(nav xpath.NodeNavigator) (*dom.Block, error) {
	mynav, ok := nav.(*NodeNavigator)
	if !ok {
		return nil, ErrNotANavigator
	}
	return mynav.doc.Block(mynav.current), nil
}

// Select evaluates a compiled expression and returns the matching blocks
// in document order. Duplicates are dropped.
func Select(nav *NodeNavigator, expr *xpath.Expr) []*dom.Block {
	var blocks []*dom.Block
	seen := make(map[dom.BlockID]bool)
	iter := expr.Select(nav)
	for iter.MoveNext() {
		b, err := CurrentBlock(iter.Current())
		if err != nil || b == nil || seen[b.ID] {
			continue
		}
		seen[b.ID] = true
		blocks = append(blocks, b)
	}
	tracer().Debugf("xpath %s selected %d blocks", expr.String(), len(blocks))
	return blocks
}

// Query compiles an XPath expression and selects blocks from a document.
func Query(doc *dom.Document, expr string) ([]*dom.Block, error) {
	x, err := xpath.Compile(expr)
	if err != nil {
		return nil, err
	}
	return Select(NewNavigator(doc), x), nil
}

func (nav *NodeNavigator) block() *dom.Block {
	return nav.doc.Block(nav.current)
}

func (nav *NodeNavigator) NodeType() xpath.NodeType {
	if nav.current == dom.NoBlock {
		return xpath.RootNode
	}
	if nav.attr != -1 {
		return xpath.AttributeNode
	}
	if nav.block().Context == dom.CtxComment {
		return xpath.CommentNode
	}
	return xpath.ElementNode
}

func (nav *NodeNavigator) LocalName() string {
	if nav.attr != -1 {
		return nav.attrs[nav.attr].key
	}
	if b := nav.block(); b != nil {
		return b.Context.String()
	}
	return ""
}

func (*NodeNavigator) Prefix() string {
	return ""
}

func (nav *NodeNavigator) Value() string {
	if nav.attr != -1 {
		return nav.attrs[nav.attr].value
	}
	id := nav.current
	if id == dom.NoBlock {
		id = dom.Root
	}
	text, err := dom.InnerText(nav.doc, id)
	if err != nil {
		return ""
	}
	return text.String()
}

func (nav *NodeNavigator) Copy() xpath.NodeNavigator {
	n := *nav
	return &n
}

func (nav *NodeNavigator) MoveToRoot() {
	nav.current = dom.NoBlock
	nav.attr = -1
}

func (nav *NodeNavigator) MoveToParent() bool {
	if nav.attr != -1 {
		nav.attr = -1 // move from attributes to element
		return true
	}
	if nav.current == dom.NoBlock {
		return false
	}
	if nav.current == dom.Root {
		nav.current = dom.NoBlock
		return true
	}
	b := nav.block()
	if b.Parent == dom.NoBlock { // detached
		return false
	}
	nav.current = b.Parent
	return true
}

func (nav *NodeNavigator) MoveToNextAttribute() bool {
	if nav.current == dom.NoBlock {
		return false
	}
	if nav.attr == -1 {
		nav.attrs = attributesOf(nav.block())
	}
	if nav.attr >= len(nav.attrs)-1 {
		return false
	}
	nav.attr++
	return true
}

func (nav *NodeNavigator) MoveToChild() bool {
	if nav.attr != -1 {
		return false
	}
	if nav.current == dom.NoBlock {
		nav.current = dom.Root
		return true
	}
	b := nav.block()
	if len(b.Children) == 0 {
		return false
	}
	nav.current = b.Children[0]
	return true
}

func (nav *NodeNavigator) MoveToFirst() bool {
	if nav.attr != -1 {
		return false
	}
	siblings, i := nav.siblings()
	if i <= 0 {
		return false
	}
	nav.current = siblings[0]
	return true
}

func (nav *NodeNavigator) String() string {
	return nav.Value()
}

func (nav *NodeNavigator) MoveToNext() bool {
	if nav.attr != -1 {
		return false
	}
	siblings, i := nav.siblings()
	if i < 0 || i+1 >= len(siblings) {
		return false
	}
	nav.current = siblings[i+1]
	return true
}

func (nav *NodeNavigator) MoveToPrevious() bool {
	if nav.attr != -1 {
		return false
	}
	siblings, i := nav.siblings()
	if i <= 0 {
		return false
	}
	nav.current = siblings[i-1]
	return true
}

func (nav *NodeNavigator) MoveTo(other xpath.NodeNavigator) bool {
	n, ok := other.(*NodeNavigator)
	if !ok || n.doc != nav.doc {
		return false
	}
	nav.current = n.current
	nav.attr = n.attr
	nav.attrs = n.attrs
	return true
}

var _ xpath.NodeNavigator = &NodeNavigator{}

// siblings returns the children of the parent of the current block and the
// index of the current block within them. The index is -1 for the virtual
// root and for detached blocks.
func (nav *NodeNavigator) siblings() ([]dom.BlockID, int) {
	if nav.current == dom.NoBlock || nav.current == dom.Root {
		return nil, -1
	}
	parent := nav.doc.Parent(nav.current)
	if parent == nil {
		return nil, -1
	}
	for i, ch := range parent.Children {
		if ch == nav.current {
			return parent.Children, i
		}
	}
	return nil, -1
}

func attributesOf(b *dom.Block) []attribute {
	var attrs []attribute
	add := func(k, v string) {
		if v != "" {
			attrs = append(attrs, attribute{k, v})
		}
	}
	add("id", b.Anchor)
	add("style", b.Style)
	switch b.Context {
	case dom.CtxSection, dom.CtxFloatingTitle, dom.CtxListItem,
		dom.CtxUList, dom.CtxOList, dom.CtxDList, dom.CtxColist:
		attrs = append(attrs, attribute{"level", strconv.Itoa(b.Level)})
	}
	if b.Title != "" {
		add("title", dom.PlainText(b.Title))
	} else {
		add("title", b.RawTitle)
	}
	add("numeral", b.Numeral)
	add("marker", b.Marker)
	add("target", b.Target)
	if b.Attrs != nil {
		for _, k := range b.Attrs.Keys() {
			switch k {
			case "id", "style", "level", "title":
				continue
			}
			v, _ := b.Attrs.Named(k)
			attrs = append(attrs, attribute{k, v})
		}
	}
	return attrs
}
