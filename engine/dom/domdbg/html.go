package domdbg

import (
	"io"
	"strconv"
	"strings"

	"github.com/andybalholm/cascadia"
	"github.com/npillmayer/adoc/engine/dom"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// BlockAttr is the attribute holding the block ID of an exported element.
const BlockAttr = "data-block"

// ToHTML renders the block tree of a document as HTML.
func ToHTML(doc *dom.Document, w io.Writer) error {
	return html.Render(w, Tree(doc))
}

// Tree exports the block tree of a document as a tree of HTML nodes. The
// returned node is the element for the document block.
func Tree(doc *dom.Document) *html.Node {
	return element(doc, doc.Root())
}

// Select returns the blocks matching a CSS selector, in document order.
// Matches on inline markup resolve to the enclosing block.
func Select(doc *dom.Document, selector string) ([]*dom.Block, error) {
	sel, err := cascadia.Compile(selector)
	if err != nil {
		return nil, err
	}
	var blocks []*dom.Block
	seen := make(map[dom.BlockID]bool)
	for _, n := range sel.MatchAll(Tree(doc)) {
		b := enclosingBlock(doc, n)
		if b == nil || seen[b.ID] {
			continue
		}
		seen[b.ID] = true
		blocks = append(blocks, b)
	}
	tracer().Debugf("selector %q matched %d blocks", selector, len(blocks))
	return blocks, nil
}

func enclosingBlock(doc *dom.Document, n *html.Node) *dom.Block {
	for ; n != nil; n = n.Parent {
		for _, a := range n.Attr {
			if a.Key == BlockAttr {
				id, err := strconv.Atoi(a.Val)
				if err != nil {
					return nil
				}
				return doc.Block(dom.BlockID(id))
			}
		}
	}
	return nil
}

func element(doc *dom.Document, b *dom.Block) *html.Node {
	n := &html.Node{
		Type: html.ElementNode,
		Data: b.Context.String(),
	}
	attr := func(key, val string) {
		if val != "" {
			n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
		}
	}
	attr(BlockAttr, strconv.Itoa(int(b.ID)))
	attr("id", b.Anchor)
	var class []string
	if b.Style != "" {
		class = append(class, b.Style)
	}
	if b.Attrs != nil {
		class = append(class, b.Attrs.Roles()...)
	}
	attr("class", strings.Join(class, " "))
	switch b.Context {
	case dom.CtxSection, dom.CtxFloatingTitle, dom.CtxUList, dom.CtxOList,
		dom.CtxDList, dom.CtxColist, dom.CtxListItem:
		attr("data-level", strconv.Itoa(b.Level))
	}
	attr("data-numeral", b.Numeral)
	attr("data-marker", b.Marker)
	attr("data-target", b.Target)
	attr("data-coids", strings.Join(b.Coids, " "))
	if b.Cell != nil {
		attr("data-colspan", strconv.Itoa(b.Cell.Colspan))
		attr("data-rowspan", strconv.Itoa(b.Cell.Rowspan))
	}
	if b.Title != "" {
		n.AppendChild(wrap("blocktitle", b.Title))
	} else if b.RawTitle != "" {
		n.AppendChild(textElement("blocktitle", b.RawTitle))
	}
	for i, term := range b.Terms {
		if i < len(b.TermText) {
			n.AppendChild(wrap("term", b.TermText[i]))
		} else {
			n.AppendChild(textElement("term", term))
		}
	}
	if b.Content != "" {
		n.AppendChild(wrap("content", b.Content))
	} else if len(b.Lines) > 0 && b.Context != dom.CtxTable {
		n.AppendChild(textElement("content", b.Source()))
	}
	for _, ch := range doc.Children(b.ID) {
		n.AppendChild(element(doc, ch))
	}
	return n
}

// wrap parses substituted markup into the children of a new element.
func wrap(name, markup string) *html.Node {
	n := &html.Node{Type: html.ElementNode, Data: name}
	ctx := &html.Node{Type: html.ElementNode, Data: "div", DataAtom: atom.Div}
	nodes, err := html.ParseFragment(strings.NewReader(markup), ctx)
	if err != nil {
		tracer().Debugf("cannot parse markup of %s: %v", name, err)
		n.AppendChild(&html.Node{Type: html.TextNode, Data: markup})
		return n
	}
	for _, ch := range nodes {
		n.AppendChild(ch)
	}
	return n
}

func textElement(name, text string) *html.Node {
	n := &html.Node{Type: html.ElementNode, Data: name}
	n.AppendChild(&html.Node{Type: html.TextNode, Data: text})
	return n
}
