package dom_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/npillmayer/adoc/core"
	"github.com/npillmayer/adoc/core/attributes"
	"github.com/npillmayer/adoc/core/safemode"
	"github.com/npillmayer/adoc/engine/dom"
	"github.com/npillmayer/cords"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"
)

func TestAttributeList(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "adoc.dom")
	defer teardown()
	//
	al, err := dom.ParseAttributeList(`source, go ,linenums`)
	require.NoError(t, err)
	assert.Equal(t, 3, al.PositionalCount())
	p, ok := al.Positional(2)
	assert.True(t, ok)
	assert.Equal(t, "go", p)
	assert.Equal(t, "source", al.Style())
	//
	al, err = dom.ParseAttributeList(`leveloffset=+1,lines="1..3,5", tag='a \'b\''`)
	require.NoError(t, err)
	v, _ := al.Named("leveloffset")
	assert.Equal(t, "+1", v)
	v, _ = al.Named("lines")
	assert.Equal(t, "1..3,5", v)
	v, _ = al.Named("tag")
	assert.Equal(t, "a 'b'", v)
	assert.Equal(t, []string{"leveloffset", "lines", "tag"}, al.Keys())
	//
	al, err = dom.ParseAttributeList(`opts=optional`)
	require.NoError(t, err)
	assert.True(t, al.HasOption("optional"))
}

func TestAttributeListShorthand(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "adoc.dom")
	defer teardown()
	//
	al, err := dom.ParseBlockAttributes(`quote#wisdom.lead.big%collapsible, Author, cols="1,2"`)
	require.NoError(t, err)
	assert.Equal(t, "quote", al.Style())
	assert.Equal(t, "wisdom", al.ID())
	assert.Equal(t, []string{"lead", "big"}, al.Roles())
	assert.True(t, al.HasOption("collapsible"))
	a, _ := al.Positional(2)
	assert.Equal(t, "Author", a)
	al.MapPositional("style", "attribution")
	a, _ = al.Named("attribution")
	assert.Equal(t, "Author", a)
	//
	al, err = dom.ParseAttributeList(`Sunset.png,200`)
	require.NoError(t, err)
	assert.Equal(t, "Sunset.png", al.Style(), "macro attributes have no shorthand")
}

func TestAttributeListFallback(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "adoc.dom")
	defer teardown()
	//
	for _, text := range []string{`"unterminated`, `=value`, `"a" b`, `#.x`} {
		_, err := dom.ParseBlockAttributes(text)
		assert.True(t, errors.Is(err, dom.ErrAttributeSyntax), "expected syntax error for %q", text)
	}
	al, err := dom.ParseAttributeList(`a,,b,`)
	require.NoError(t, err)
	assert.Equal(t, 4, al.PositionalCount())
}

func TestArena(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "adoc.dom")
	defer teardown()
	//
	doc := dom.NewDocument(attributes.New(), safemode.Safe)
	sect := doc.NewBlock(dom.CtxSection, dom.Root)
	para := doc.NewBlock(dom.CtxParagraph, sect.ID)
	lone := doc.NewBlock(dom.CtxParagraph, dom.NoBlock)
	assert.Equal(t, dom.NoBlock, lone.Parent)
	doc.Append(sect.ID, lone.ID)
	assert.Equal(t, []dom.BlockID{para.ID, lone.ID}, sect.Children)
	assert.Equal(t, sect, doc.Parent(para.ID))
	assert.Equal(t, sect, doc.Ancestor(para.ID, dom.CtxSection))
	doc.Append(dom.Root, lone.ID)
	assert.Equal(t, []dom.BlockID{para.ID}, sect.Children, "append moves a block")
	assert.Len(t, doc.Children(dom.Root), 2)
	assert.Equal(t, "section", sect.Context.String())
	ctx, ok := dom.ContextByName("olist")
	assert.True(t, ok)
	assert.Equal(t, dom.CtxOList, ctx)
}

func TestWalk(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "adoc.dom")
	defer teardown()
	//
	doc := dom.NewDocument(nil, safemode.Unsafe)
	s1 := doc.NewBlock(dom.CtxSection, dom.Root)
	doc.NewBlock(dom.CtxParagraph, s1.ID)
	s2 := doc.NewBlock(dom.CtxSection, dom.Root)
	doc.NewBlock(dom.CtxListing, s2.ID)
	var visited []string
	doc.Walk(func(b *dom.Block, depth int) dom.WalkResult {
		visited = append(visited, strings.Repeat(">", depth)+b.Context.String())
		if b.ID == s1.ID {
			return dom.WalkSkip
		}
		return dom.WalkContinue
	})
	assert.Equal(t, []string{"document", ">section", ">section", ">>listing"}, visited)
	found := doc.Find(func(b *dom.Block) bool { return b.Context == dom.CtxListing })
	require.NotNil(t, found)
	assert.Equal(t, s2.ID, found.Parent)
	assert.Len(t, doc.Sections(), 2)
}

func TestCallouts(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "adoc.dom")
	defer teardown()
	//
	co := dom.NewCallouts()
	assert.Equal(t, "CO1-1", co.Register(1))
	assert.Equal(t, "CO1-2", co.Register(2))
	assert.Equal(t, "CO1-3", co.Register(1))
	assert.Equal(t, "CO1-1 CO1-3", co.IDs(1))
	co.Associate("CO1-1", 7)
	co.NextList()
	assert.Equal(t, "CO2-1", co.Register(1))
	co.Rewind()
	assert.Equal(t, "CO1-1", co.ReadNextID())
	assert.Equal(t, "CO1-2", co.ReadNextID())
	assert.Equal(t, "CO1-3", co.ReadNextID())
	assert.Equal(t, "", co.ReadNextID())
	item, ok := co.ItemFor("CO1-1")
	assert.True(t, ok)
	assert.Equal(t, dom.BlockID(7), item)
}

func TestCatalog(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "adoc.dom")
	defer teardown()
	//
	c := dom.NewCatalog()
	assert.True(t, c.Register(dom.Ref{ID: "_introduction", Kind: dom.RefSection, Block: 1}))
	assert.True(t, c.Register(dom.Ref{ID: "_install", Kind: dom.RefSection, Block: 2}))
	assert.True(t, c.Register(dom.Ref{ID: "fig-arch", Block: 3}))
	assert.False(t, c.Register(dom.Ref{ID: "_install", Block: 4}), "first registration wins")
	ref, ok := c.Lookup("_install")
	require.True(t, ok)
	assert.Equal(t, dom.BlockID(2), ref.Block)
	assert.Equal(t, []string{"_install", "_introduction"}, c.WithPrefix("_in"))
	assert.Equal(t, []string{"_install"}, c.Suggest("_installation"))
	assert.Equal(t, 3, c.Len())
	_, ok = c.Lookup("nope")
	assert.False(t, ok)
}

func TestInnerText(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "adoc.dom")
	defer teardown()
	//
	doc := dom.NewDocument(nil, safemode.Unsafe)
	s := doc.NewBlock(dom.CtxSection, dom.Root)
	s.Title = "Intro &amp; <em>more</em>"
	p := doc.NewBlock(dom.CtxParagraph, s.ID)
	p.Content = "Hello <strong>world</strong>!"
	c := doc.NewBlock(dom.CtxComment, s.ID)
	c.Lines = []string{"hidden"}
	text, err := dom.InnerText(doc, s.ID)
	require.NoError(t, err)
	assert.Equal(t, "Intro & more\nHello world!\n", text.String())
	assert.Equal(t, uint64(len("Intro & more\nHello world!\n")), text.Len())
	_, err = dom.InnerText(doc, 99)
	assert.Equal(t, cords.ErrIllegalArguments, err)
}

func TestLanguageAndDiagnostics(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "adoc.dom")
	defer teardown()
	//
	attrs := attributes.New()
	doc := dom.NewDocument(attrs, safemode.Unsafe)
	assert.Equal(t, language.English, doc.Language())
	attrs.Set("lang", "de-AT")
	assert.Equal(t, "de-AT", doc.Language().String())
	//
	assert.NoError(t, doc.Err())
	doc.Diag(core.EREFERENCE, core.Cursor{LineNo: 3}, "possible invalid reference: %s", "x")
	assert.NoError(t, doc.Err(), "reference warnings are not fatal")
	doc.Diag(core.ESTRUCTURE, core.Cursor{LineNo: 5}, "unterminated listing block")
	err := doc.Err()
	require.Error(t, err)
	var perr *core.ParseError
	require.True(t, errors.As(err, &perr))
	assert.Len(t, perr.Diagnostics, 1)
	assert.Equal(t, 5, perr.Diagnostics[0].Cursor.LineNo)
}

func TestFootnotes(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "adoc.dom")
	defer teardown()
	//
	doc := dom.NewDocument(nil, safemode.Unsafe)
	fn := doc.RegisterFootnote("", "first")
	assert.Equal(t, 1, fn.Index)
	fn = doc.RegisterFootnote("disclaimer", "second")
	assert.Equal(t, 2, fn.Index)
	fn = doc.RegisterFootnote("disclaimer", "ignored")
	assert.Equal(t, 2, fn.Index)
	assert.Equal(t, "second", fn.Text)
	assert.Len(t, doc.Footnotes, 2)
}
