package xpathadapter_test

import (
	"testing"

	"github.com/antchfx/xpath"
	"github.com/npillmayer/adoc/core/safemode"
	"github.com/npillmayer/adoc/engine/dom"
	"github.com/npillmayer/adoc/engine/dom/xpathadapter"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildDoc() *dom.Document {
	doc := dom.NewDocument(nil, safemode.Unsafe)
	s1 := doc.NewBlock(dom.CtxSection, dom.Root)
	s1.Level, s1.Anchor, s1.Title = 1, "_intro", "Intro"
	p := doc.NewBlock(dom.CtxParagraph, s1.ID)
	p.Content = "Hello <strong>world</strong>"
	l := doc.NewBlock(dom.CtxListing, s1.ID)
	l.Style = "source"
	l.Attrs = dom.NewAttributeList()
	l.Attrs.Set("language", "go")
	l.Lines = []string{"fmt.Println()"}
	s2 := doc.NewBlock(dom.CtxSection, dom.Root)
	s2.Level, s2.Anchor, s2.Title = 1, "_usage", "Usage"
	s3 := doc.NewBlock(dom.CtxSection, s2.ID)
	s3.Level, s3.Anchor, s3.Title = 2, "_details", "Details"
	doc.NewBlock(dom.CtxParagraph, s3.ID).Content = "deep"
	return doc
}

func TestNavigation(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "adoc.dom")
	defer teardown()
	//
	nav := xpathadapter.NewNavigator(buildDoc())
	assert.Equal(t, xpath.RootNode, nav.NodeType())
	require.True(t, nav.MoveToChild())
	assert.Equal(t, "document", nav.LocalName())
	require.True(t, nav.MoveToChild())
	assert.Equal(t, "section", nav.LocalName())
	assert.False(t, nav.MoveToPrevious())
	require.True(t, nav.MoveToNext())
	assert.False(t, nav.MoveToNext())
	require.True(t, nav.MoveToNextAttribute())
	assert.Equal(t, xpath.AttributeNode, nav.NodeType())
	assert.Equal(t, "id", nav.LocalName())
	assert.Equal(t, "_usage", nav.Value())
	require.True(t, nav.MoveToParent())
	assert.Equal(t, xpath.ElementNode, nav.NodeType())
	require.True(t, nav.MoveToFirst())
	b, err := xpathadapter.CurrentBlock(nav)
	require.NoError(t, err)
	assert.Equal(t, "_intro", b.Anchor)
	nav.MoveToRoot()
	assert.False(t, nav.MoveToParent())
}

func TestQuery(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "adoc.dom")
	defer teardown()
	//
	doc := buildDoc()
	blocks, err := xpathadapter.Query(doc, "//section[@level=1]")
	require.NoError(t, err)
	require.Len(t, blocks, 2)
	assert.Equal(t, "_intro", blocks[0].Anchor)
	assert.Equal(t, "_usage", blocks[1].Anchor)
	//
	blocks, err = xpathadapter.Query(doc, "/document/section/listing[@language='go']")
	require.NoError(t, err)
	require.Len(t, blocks, 1)
	assert.Equal(t, "source", blocks[0].Style)
	//
	blocks, err = xpathadapter.Query(doc, "//section[@id='_usage']//paragraph")
	require.NoError(t, err)
	require.Len(t, blocks, 1)
	assert.Equal(t, "deep", blocks[0].Content)
	//
	expr := xpath.MustCompile("count(//paragraph)")
	n := expr.Evaluate(xpathadapter.NewNavigator(doc))
	assert.Equal(t, float64(2), n)
	//
	expr = xpath.MustCompile("string(/document/section[1]/paragraph)")
	assert.Equal(t, "Hello world\n", expr.Evaluate(xpathadapter.NewNavigator(doc)))
	//
	_, err = xpathadapter.Query(doc, "//[")
	assert.Error(t, err)
}
