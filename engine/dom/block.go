package dom

import (
	"strings"

	"github.com/npillmayer/adoc/core"
	"github.com/npillmayer/adoc/engine/grammar"
)

// BlockID is the index of a block in the arena of its document.
type BlockID int32

// NoBlock is the ID of a non-existing block.
const NoBlock BlockID = -1

// Root is the ID of the document block.
const Root BlockID = 0

// Context is the type of a block.
type Context int8

// Block contexts.
const (
	CtxDocument Context = iota
	CtxPreamble
	CtxSection
	CtxParagraph
	CtxAdmonition
	CtxOpen
	CtxListing
	CtxLiteral
	CtxExample
	CtxSidebar
	CtxQuote
	CtxVerse
	CtxPass
	CtxComment
	CtxTable
	CtxTableCell
	CtxUList
	CtxOList
	CtxDList
	CtxColist
	CtxListItem
	CtxImage
	CtxVideo
	CtxAudio
	CtxToc
	CtxThematicBreak
	CtxPageBreak
	CtxFloatingTitle
)

var contextNames = [...]string{
	"document", "preamble", "section", "paragraph", "admonition", "open",
	"listing", "literal", "example", "sidebar", "quote", "verse", "pass",
	"comment", "table", "table_cell", "ulist", "olist", "dlist", "colist",
	"list_item", "image", "video", "audio", "toc", "thematic_break",
	"page_break", "floating_title",
}

func (c Context) String() string {
	if c < 0 || int(c) >= len(contextNames) {
		return "unknown"
	}
	return contextNames[c]
}

// ContextByName returns the context for a name as returned by String.
func ContextByName(name string) (Context, bool) {
	for i, n := range contextNames {
		if n == name {
			return Context(i), true
		}
	}
	return CtxParagraph, false
}

// IsList is true for list contexts.
func (c Context) IsList() bool {
	return c == CtxUList || c == CtxOList || c == CtxDList || c == CtxColist
}

// IsVerbatim is true for contexts whose content is kept line by line.
func (c Context) IsVerbatim() bool {
	return c == CtxListing || c == CtxLiteral || c == CtxPass || c == CtxVerse
}

// AttributeEntry is an attribute entry of the document body. Entries are
// recorded on the block following them and replayed during substitution.
type AttributeEntry struct {
	Name  string
	Value string
	Unset bool
}

// Block is a node of the document tree. Blocks live in the arena of their
// document and refer to each other by ID.
type Block struct {
	ID       BlockID
	Context  Context
	Parent   BlockID
	Children []BlockID
	Style    string
	Subs     grammar.SubSet
	Lines    []string // raw content
	Content  string   // content after substitution
	Attrs    *AttributeList
	Anchor   string // ID of the block
	Reftext  string
	RawTitle string
	Title    string // title after substitution
	Caption  string
	Loc      core.Cursor // location of the first line
	EndLine  int
	Level    int    // section level, or nesting depth of lists and list items
	Numeral  string // section number or ordinal of a list item
	Sectname string
	Numbered bool
	Marker   string // list item marker
	Terms    []string
	TermText []string // terms after substitution
	Coids    []string // callout IDs of a verbatim block or a callout list item
	Target   string   // target of a block macro
	Entries  []AttributeEntry
	Table    *Table
	Cell     *Cell
}

// Attr returns the value of a block attribute.
func (b *Block) Attr(name string) (string, bool) {
	if b.Attrs == nil {
		return "", false
	}
	return b.Attrs.Named(name)
}

// HasOption returns true if an option is set for the block.
func (b *Block) HasOption(opt string) bool {
	return b.Attrs != nil && b.Attrs.HasOption(opt)
}

// HasRole returns true if the block has a role.
func (b *Block) HasRole(role string) bool {
	if b.Attrs == nil {
		return false
	}
	for _, r := range b.Attrs.Roles() {
		if r == role {
			return true
		}
	}
	return false
}

// Source returns the raw content lines joined by newlines.
func (b *Block) Source() string {
	return strings.Join(b.Lines, "\n")
}
