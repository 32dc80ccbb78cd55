package parser_test

import (
	"errors"
	"testing"

	"github.com/npillmayer/adoc/core"
	"github.com/npillmayer/adoc/core/attributes"
	"github.com/npillmayer/adoc/core/safemode"
	"github.com/npillmayer/adoc/engine/dom"
	"github.com/npillmayer/adoc/engine/parser"
	"github.com/npillmayer/adoc/engine/reader"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/suite"
)

// --- Test Suite Preparation ------------------------------------------------

type ParserTestEnviron struct {
	suite.Suite
	attrs *attributes.Store
}

// listen for 'go test' command --> run test methods
func TestParser(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "adoc.parser")
	defer teardown()
	suite.Run(t, new(ParserTestEnviron))
}

// run before each test method
func (env *ParserTestEnviron) SetupTest() {
	env.attrs = attributes.New()
}

func (env *ParserTestEnviron) parse(text string) *dom.Document {
	doc, err := parser.Parse(reader.FromString(text, env.attrs), env.attrs, safemode.Unsafe)
	env.Require().NoError(err)
	return doc
}

func (env *ParserTestEnviron) parseWithErrors(text string) (*dom.Document, error) {
	return parser.Parse(reader.FromString(text, env.attrs), env.attrs, safemode.Unsafe)
}

func children(doc *dom.Document, b *dom.Block) []*dom.Block {
	return doc.Children(b.ID)
}

// --- Tests -----------------------------------------------------------------

func (env *ParserTestEnviron) TestSectionWithParagraph() {
	doc := env.parse("== Title\n\nfoo *bar* _baz_\n")
	sections := doc.Sections()
	env.Require().Len(sections, 1)
	sec := sections[0]
	env.Equal(1, sec.Level)
	env.Equal("Title", sec.Title)
	env.Equal("_title", sec.Anchor)
	env.Equal("section", sec.Sectname)
	paras := children(doc, sec)
	env.Require().Len(paras, 1)
	env.Equal(dom.CtxParagraph, paras[0].Context)
	env.Equal("foo <strong>bar</strong> <em>baz</em>", paras[0].Content)
}

func (env *ParserTestEnviron) TestOrderedList() {
	doc := env.parse(". one\n. two\n")
	blocks := children(doc, doc.Root())
	env.Require().Len(blocks, 1)
	list := blocks[0]
	env.Equal(dom.CtxOList, list.Context)
	env.Equal(0, list.Level)
	items := children(doc, list)
	env.Require().Len(items, 2)
	env.Equal("one", items[0].Content)
	env.Equal("two", items[1].Content)
	env.Equal(0, items[1].Level)
	env.Equal("2", items[1].Numeral)
}

func (env *ParserTestEnviron) TestAttributeReference() {
	doc := env.parse(":name: value\nHello {name}!\n")
	blocks := children(doc, doc.Root())
	env.Require().Len(blocks, 1)
	env.Equal("Hello value!", blocks[0].Content)
}

func (env *ParserTestEnviron) TestCallouts() {
	doc := env.parse("----\nputs \"hello\" <1>\n----\n<1> Greets the world.\n")
	blocks := children(doc, doc.Root())
	env.Require().Len(blocks, 2)
	listing, colist := blocks[0], blocks[1]
	env.Equal(dom.CtxListing, listing.Context)
	env.Equal([]string{"CO1-1"}, listing.Coids)
	env.Contains(listing.Content, `<b class="conum">(1)</b>`)
	env.NotContains(listing.Content, "&lt;1&gt;")
	env.Equal(dom.CtxColist, colist.Context)
	items := children(doc, colist)
	env.Require().Len(items, 1)
	item, ok := doc.Callouts.ItemFor("CO1-1")
	env.True(ok)
	env.Equal(items[0].ID, item)
	env.Equal("Greets the world.", items[0].Content)
}

func (env *ParserTestEnviron) TestCalloutListClosesOpenLists() {
	doc := env.parse("* a\n<1> co\n* b\n")
	blocks := children(doc, doc.Root())
	env.Require().Len(blocks, 3)
	env.Equal(dom.CtxUList, blocks[0].Context)
	env.Equal(dom.CtxColist, blocks[1].Context)
	env.Equal(dom.CtxUList, blocks[2].Context)
	env.Equal(0, blocks[1].Level)
	items := children(doc, blocks[0])
	env.Require().Len(items, 1)
	env.Empty(children(doc, items[0]))
	env.Equal("co", children(doc, blocks[1])[0].Content)
	env.Equal("b", children(doc, blocks[2])[0].Content)
	env.Require().NotEmpty(doc.Diagnostics)
	env.Equal(core.EREFERENCE, doc.Diagnostics[0].Code)
}

func (env *ParserTestEnviron) TestListItemClosesCalloutList() {
	doc := env.parse("<1> co\n** nested\n")
	blocks := children(doc, doc.Root())
	env.Require().Len(blocks, 2)
	env.Equal(dom.CtxColist, blocks[0].Context)
	items := children(doc, blocks[0])
	env.Require().Len(items, 1)
	env.Empty(children(doc, items[0]))
	env.Equal(dom.CtxUList, blocks[1].Context)
	env.Equal(0, blocks[1].Level)
	env.Equal("nested", children(doc, blocks[1])[0].Content)
}

func (env *ParserTestEnviron) TestCongruentFences() {
	doc := env.parse("----\ncode\n------\nmore\n----\nafter\n")
	blocks := children(doc, doc.Root())
	env.Require().Len(blocks, 2)
	env.Equal([]string{"code", "------", "more"}, blocks[0].Lines)
	env.Equal("after", blocks[1].Content)
}

func (env *ParserTestEnviron) TestSectionLevelGap() {
	doc, err := env.parseWithErrors("= Doc\n\n== One\n\n==== Deep\n")
	env.Require().Error(err)
	var perr *core.ParseError
	env.Require().True(errors.As(err, &perr))
	env.Require().Len(perr.Diagnostics, 1)
	env.Equal(core.ESTRUCTURE, perr.Diagnostics[0].Code)
	env.Equal(5, perr.Diagnostics[0].Cursor.LineNo)
	sections := doc.Sections()
	env.Require().Len(sections, 2)
	env.Equal(3, sections[1].Level)
	env.Equal(sections[0].ID, sections[1].Parent, "deep section is nested under the current one")
}

func (env *ParserTestEnviron) TestUnterminatedBlock() {
	doc, err := env.parseWithErrors("para\n\n====\ntext\n")
	env.Require().Error(err)
	env.Equal(core.ESTRUCTURE, doc.Diagnostics[0].Code)
	env.Equal(3, doc.Diagnostics[0].Cursor.LineNo)
	blocks := children(doc, doc.Root())
	env.Require().Len(blocks, 2)
	env.Equal(dom.CtxExample, blocks[1].Context)
	env.Len(blocks[1].Children, 1)
}

func (env *ParserTestEnviron) TestHeader() {
	doc := env.parse(`= Document Title
Jane Q Doe <jane@example.org>; John Smith
v1.2, 2024-01-02: First draft
:toc:
:product: ACME

Preamble text.

== First
`)
	env.Equal("Document Title", doc.Title())
	env.Require().Len(doc.Authors, 2)
	env.Equal("Jane Q Doe", doc.Authors[0].Name)
	env.Equal("Q", doc.Authors[0].Middlename)
	env.Equal("JQD", doc.Authors[0].Initials)
	env.Equal("jane@example.org", doc.Authors[0].Email)
	env.Equal("Smith", doc.Authors[1].Lastname)
	env.Equal(dom.Revision{Number: "1.2", Date: "2024-01-02", Remark: "First draft"}, doc.Revision)
	env.Equal("Jane Q Doe, John Smith", doc.Attributes.ValueOr("authors", ""))
	env.Equal("John Smith", doc.Attributes.ValueOr("author_2", ""))
	env.Equal("ACME", doc.Attributes.ValueOr("product", ""))
	env.True(doc.Attributes.IsSet("toc"))
	blocks := children(doc, doc.Root())
	env.Require().Len(blocks, 2)
	env.Equal(dom.CtxPreamble, blocks[0].Context)
	env.Equal("Preamble text.", doc.Children(blocks[0].ID)[0].Content)
	env.Equal(dom.CtxSection, blocks[1].Context)
}

func (env *ParserTestEnviron) TestRenderingKeysLockAfterHeaderInServerMode() {
	text := "= Doc\n:doctype: book\n:foo: bar\n\n:doctype: manpage\n:foo: baz\n\n{foo} {doctype}\n"
	doc, err := parser.Parse(reader.FromString(text, env.attrs), env.attrs, safemode.Server)
	env.Require().NoError(err)
	env.Equal("book", doc.Doctype())
	blocks := children(doc, doc.Root())
	env.Require().Len(blocks, 1)
	para := blocks[0]
	if para.Context == dom.CtxPreamble {
		para = children(doc, para)[0]
	}
	env.Equal("baz book", para.Content)
}

func (env *ParserTestEnviron) TestDelimitedBlocksAndParagraphStyles() {
	doc := env.parse(`NOTE: Mind the gap.

[source,go]
----
fmt.Println("hi")
----

 indented literal
 second line

[quote, Someone, Book]
____
Wise words.
____
`)
	blocks := children(doc, doc.Root())
	env.Require().Len(blocks, 4)
	env.Equal(dom.CtxAdmonition, blocks[0].Context)
	env.Equal("NOTE", blocks[0].Style)
	env.Equal("Note", blocks[0].Caption)
	env.Equal("Mind the gap.", blocks[0].Content)
	env.Equal(dom.CtxListing, blocks[1].Context)
	env.Equal("source", blocks[1].Style)
	lang, _ := blocks[1].Attr("language")
	env.Equal("go", lang)
	env.Equal(dom.CtxLiteral, blocks[2].Context)
	env.Equal([]string{"indented literal", "second line"}, blocks[2].Lines)
	env.Equal(dom.CtxQuote, blocks[3].Context)
	who, _ := blocks[3].Attr("attribution")
	env.Equal("Someone", who)
	cite, _ := blocks[3].Attr("citetitle")
	env.Equal("Book", cite)
	env.Equal("Wise words.", doc.Children(blocks[3].ID)[0].Content)
}

func (env *ParserTestEnviron) TestDescriptionListWithNestedList() {
	doc := env.parse("CPU:: The brain.\nRAM::\nMemory.\n* bullet\n")
	blocks := children(doc, doc.Root())
	env.Require().Len(blocks, 1)
	dlist := blocks[0]
	env.Equal(dom.CtxDList, dlist.Context)
	items := children(doc, dlist)
	env.Require().Len(items, 2)
	env.Equal([]string{"CPU"}, items[0].Terms)
	env.Equal("The brain.", items[0].Content)
	env.Equal([]string{"RAM"}, items[1].Terms)
	env.Equal([]string{"Memory."}, items[1].Lines)
	nested := children(doc, items[1])
	env.Require().Len(nested, 1)
	env.Equal(dom.CtxUList, nested[0].Context)
	env.Equal(1, nested[0].Level)
}

func (env *ParserTestEnviron) TestListNesting() {
	doc := env.parse("* a\n** b\n* c\n\n[start=3]\n. three\n. four\n")
	blocks := children(doc, doc.Root())
	env.Require().Len(blocks, 2)
	items := children(doc, blocks[0])
	env.Require().Len(items, 2)
	nested := children(doc, items[0])
	env.Require().Len(nested, 1)
	env.Equal(1, nested[0].Level)
	env.Equal("b", doc.Children(nested[0].ID)[0].Content)
	olist := children(doc, blocks[1])
	env.Require().Len(olist, 2)
	env.Equal("3", olist[0].Numeral)
	env.Equal("4", olist[1].Numeral)
}

func (env *ParserTestEnviron) TestListContinuation() {
	doc := env.parse("* item\n+\n----\ncode\n----\n* next\n")
	list := children(doc, doc.Root())[0]
	items := children(doc, list)
	env.Require().Len(items, 2)
	attached := children(doc, items[0])
	env.Require().Len(attached, 1)
	env.Equal(dom.CtxListing, attached[0].Context)
}

func (env *ParserTestEnviron) TestSectionNumbersAndIDs() {
	doc := env.parse("= Book\n:sectnums:\n\n== Intro\n\n== Intro\n\n[appendix]\n== Extra\n")
	sections := doc.Sections()
	env.Require().Len(sections, 3)
	env.Equal("_intro", sections[0].Anchor)
	env.Equal("_intro_2", sections[1].Anchor)
	env.Equal("1", sections[0].Numeral)
	env.Equal("2", sections[1].Numeral)
	env.Equal("appendix", sections[2].Sectname)
	env.Equal("A", sections[2].Numeral)
	env.Equal("Appendix A: ", sections[2].Caption)
	env.True(doc.Refs.Contains("_intro_2"))
}

func (env *ParserTestEnviron) TestBodyAttributeEntriesAreReplayed() {
	doc := env.parse(":x: one\n\n{x}\n\n:x: two\n\n{x}\n")
	blocks := children(doc, doc.Root())
	env.Require().Len(blocks, 2)
	env.Equal("one", blocks[0].Content)
	env.Equal("two", blocks[1].Content)
}

func (env *ParserTestEnviron) TestFrontMatter() {
	env.attrs.Set("skip-front-matter", "")
	doc := env.parse("---\ntitle: Hi\ntags: [a, b]\n---\n= Doc\n")
	env.Equal("Hi", doc.FrontMatter["title"])
	env.Equal("Doc", doc.Title())
}

func (env *ParserTestEnviron) TestDiscreteHeadingAndComments() {
	doc := env.parse("// comment\n////\nblock\n////\n[discrete]\n== Not a section\n\ntext\n")
	env.Empty(doc.Sections())
	blocks := children(doc, doc.Root())
	env.Require().Len(blocks, 2)
	env.Equal(dom.CtxFloatingTitle, blocks[0].Context)
	env.Equal("Not a section", blocks[0].Title)
	env.Equal("text", blocks[1].Content)
}

func (env *ParserTestEnviron) TestSetextTitle() {
	doc := env.parse("Section Title\n-------------\n\ntext\n")
	sections := doc.Sections()
	env.Require().Len(sections, 1)
	env.Equal(1, sections[0].Level)
	env.Equal("Section Title", sections[0].Title)
}

func (env *ParserTestEnviron) TestBlockMetadata() {
	doc := env.parse(".A title\n[[intro,Introduction]]\n[.lead]\nSome text.\n\nSee <<intro>>.\n")
	blocks := children(doc, doc.Root())
	env.Require().Len(blocks, 2)
	env.Equal("A title", blocks[0].Title)
	env.Equal("intro", blocks[0].Anchor)
	env.True(blocks[0].HasRole("lead"))
	env.Equal(`See <a href="#intro">Introduction</a>.`, blocks[1].Content)
}

func (env *ParserTestEnviron) TestImageMacro() {
	doc := env.parse("image::sunset.jpg[Sunset,300,200]\n")
	blocks := children(doc, doc.Root())
	env.Require().Len(blocks, 1)
	img := blocks[0]
	env.Equal(dom.CtxImage, img.Context)
	env.Equal("sunset.jpg", img.Target)
	alt, _ := img.Attr("alt")
	env.Equal("Sunset", alt)
	w, _ := img.Attr("width")
	env.Equal("300", w)
}

func (env *ParserTestEnviron) TestMalformedAttributeListIsText() {
	doc := env.parse("[\"unclosed]\ntext\n")
	blocks := children(doc, doc.Root())
	env.Require().Len(blocks, 1)
	env.Equal(dom.CtxParagraph, blocks[0].Context)
	env.Contains(blocks[0].Content, "unclosed")
	env.Equal(core.EINVALID, doc.Diagnostics[0].Code)
}
