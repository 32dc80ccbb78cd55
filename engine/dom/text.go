package dom

import (
	"strings"

	"github.com/npillmayer/cords"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// InnerText creates a text cord for the textual content of a block and all
// its descendents: titles, terms and content, with markup removed and
// entities decoded. Each block contributes one leaf per text fragment, so
// the leaves of the cord reflect the structure of the tree.
func InnerText(doc *Document, id BlockID) (cords.Cord, error) {
	if doc == nil || doc.Block(id) == nil {
		return cords.Cord{}, cords.ErrIllegalArguments
	}
	b := cords.NewBuilder()
	doc.WalkFrom(id, func(blk *Block, _ int) WalkResult {
		if blk.Context == CtxComment {
			return WalkSkip
		}
		for _, frag := range blockText(blk) {
			if frag == "" {
				continue
			}
			b.Append(&Leaf{block: blk.ID, content: frag + "\n"})
		}
		return WalkContinue
	})
	return b.Cord(), nil
}

func blockText(b *Block) []string {
	var frags []string
	if b.Title != "" {
		frags = append(frags, PlainText(b.Title))
	} else if b.RawTitle != "" {
		frags = append(frags, b.RawTitle)
	}
	for i, t := range b.Terms {
		if i < len(b.TermText) {
			t = PlainText(b.TermText[i])
		}
		frags = append(frags, t)
	}
	if b.Content != "" {
		frags = append(frags, PlainText(b.Content))
	} else if len(b.Lines) > 0 && b.Context != CtxTable {
		frags = append(frags, b.Source())
	}
	return frags
}

// PlainText removes markup from substituted text and decodes entities.
func PlainText(markup string) string {
	if !strings.ContainsAny(markup, "<&") {
		return markup
	}
	ctx := &html.Node{Type: html.ElementNode, Data: "div", DataAtom: atom.Div}
	nodes, err := html.ParseFragment(strings.NewReader(markup), ctx)
	if err != nil {
		tracer().Debugf("cannot parse markup: %v", err)
		return markup
	}
	var b strings.Builder
	var collect func(*html.Node)
	collect = func(n *html.Node) {
		switch n.Type {
		case html.TextNode:
			b.WriteString(n.Data)
			return
		case html.CommentNode:
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			collect(c)
		}
	}
	for _, n := range nodes {
		collect(n)
	}
	return b.String()
}

// ---------------------------------------------------------------------------

// Leaf is the leaf type of cords created by InnerText. It remembers the
// block its text stems from.
type Leaf struct {
	block   BlockID
	content string
}

// Block returns the ID of the block the text of the leaf stems from.
func (l Leaf) Block() BlockID {
	return l.block
}

// Weight of a leaf is its string length in bytes.
func (l Leaf) Weight() uint64 {
	return uint64(len(l.content))
}

func (l Leaf) String() string {
	return l.content
}

// Split splits a leaf at position i, resulting in 2 new leafs.
func (l Leaf) Split(i uint64) (cords.Leaf, cords.Leaf) {
	left := &Leaf{block: l.block, content: l.content[:i]}
	right := &Leaf{block: l.block, content: l.content[i:]}
	return left, right
}

// Substring returns a string segment of the leaf's text fragment.
func (l Leaf) Substring(i, j uint64) []byte {
	return []byte(l.content)[i:j]
}

var _ cords.Leaf = Leaf{}
