package domdbg_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/andybalholm/cascadia"
	"github.com/npillmayer/adoc/core/safemode"
	"github.com/npillmayer/adoc/engine/dom"
	"github.com/npillmayer/adoc/engine/dom/domdbg"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildDoc() *dom.Document {
	doc := dom.NewDocument(nil, safemode.Unsafe)
	s := doc.NewBlock(dom.CtxSection, dom.Root)
	s.Level, s.Anchor, s.RawTitle, s.Title = 1, "_title", "Title", "Title"
	p := doc.NewBlock(dom.CtxParagraph, s.ID)
	p.Lines = []string{"foo *bar* _baz_"}
	p.Content = "foo <strong>bar</strong> <em>baz</em>"
	l := doc.NewBlock(dom.CtxListing, s.ID)
	l.Lines = []string{`fmt.Println("hi") <1>`}
	l.Content = `fmt.Println(&quot;hi&quot;) <b class="conum">(1)</b>`
	l.Coids = []string{"CO1-1"}
	return doc
}

func TestSelect(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "adoc.dom")
	defer teardown()
	//
	doc := buildDoc()
	sel := cascadia.MustCompile("section[data-level='1'] > paragraph strong")
	matches := sel.MatchAll(domdbg.Tree(doc))
	require.Len(t, matches, 1)
	require.NotNil(t, matches[0].FirstChild)
	assert.Equal(t, "bar", matches[0].FirstChild.Data)
	//
	blocks, err := domdbg.Select(doc, "listing .conum")
	require.NoError(t, err)
	require.Len(t, blocks, 1)
	assert.Equal(t, dom.CtxListing, blocks[0].Context)
	//
	blocks, err = domdbg.Select(doc, "#_title")
	require.NoError(t, err)
	require.Len(t, blocks, 1)
	assert.Equal(t, "Title", blocks[0].Title)
	//
	_, err = domdbg.Select(doc, "section[")
	assert.Error(t, err)
}

func TestExports(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "adoc.dom")
	defer teardown()
	//
	doc := buildDoc()
	var buf bytes.Buffer
	require.NoError(t, domdbg.ToHTML(doc, &buf))
	out := buf.String()
	assert.True(t, strings.HasPrefix(out, `<document data-block="0">`), out)
	assert.Contains(t, out, `<section data-block="1" id="_title" data-level="1">`)
	assert.Contains(t, out, `<em>baz</em>`)
	//
	buf.Reset()
	require.NoError(t, domdbg.ToGraphViz(doc, &buf))
	out = buf.String()
	assert.True(t, strings.HasPrefix(out, "digraph g {"))
	assert.Contains(t, out, "node00000 -> node00001")
	assert.Contains(t, out, `"section #_title L1\nTitle"`)
	assert.True(t, strings.HasSuffix(out, "}\n"))
}
