package subs_test

import (
	"testing"

	"github.com/npillmayer/adoc/core"
	"github.com/npillmayer/adoc/core/safemode"
	"github.com/npillmayer/adoc/engine/dom"
	"github.com/npillmayer/adoc/engine/grammar"
	"github.com/npillmayer/adoc/engine/subs"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSubstitutor() (*dom.Document, *subs.Substitutor) {
	doc := dom.NewDocument(nil, safemode.Unsafe)
	return doc, subs.New(doc, nil, nil)
}

func paragraph(doc *dom.Document, parent dom.BlockID, lines ...string) *dom.Block {
	p := doc.NewBlock(dom.CtxParagraph, parent)
	p.Subs = grammar.SubsNormal
	p.Lines = lines
	return p
}

func TestSpecialChars(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "adoc.subs")
	defer teardown()
	//
	_, s := newSubstitutor()
	assert.Equal(t, "a &lt; b &amp; c &gt; d", s.Apply("a < b & c > d", grammar.SubsBasic))
	assert.Equal(t, "&lt;", s.Apply("&lt;", grammar.SubsNormal), "entity references are restored")
	assert.Equal(t, "unchanged", s.Apply("unchanged", grammar.SubsNone))
}

func TestQuotes(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "adoc.subs")
	defer teardown()
	//
	_, s := newSubstitutor()
	tests := []struct {
		in, out string
	}{
		{"*bold* and _em_ and `code`", "<strong>bold</strong> and <em>em</em> and <code>code</code>"},
		{`\*not bold*`, "*not bold*"},
		{"**un**constrained", "<strong>un</strong>constrained"},
		{"E=mc^2^ and H~2~O", "E=mc<sup>2</sup> and H<sub>2</sub>O"},
		{"snake_case_name", "snake_case_name"},
		{"#marked#", "<mark>marked</mark>"},
	}
	for _, test := range tests {
		assert.Equal(t, test.out, s.Apply(test.in, grammar.SubsNormal), test.in)
	}
}

func TestPassthroughs(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "adoc.subs")
	defer teardown()
	//
	_, s := newSubstitutor()
	assert.Equal(t, "<b>raw</b> and <strong>x</strong>",
		s.Apply("+++<b>raw</b>+++ and pass:q[*x*]", grammar.SubsNormal))
	assert.Equal(t, "*not bold* &lt;tag&gt;", s.Apply("+*not bold* <tag>+", grammar.SubsNormal))
	assert.Equal(t, "&lt;b&gt;", s.Apply("pass:c[<b>]", grammar.SubsNormal))
}

func TestAttributesAndReplacements(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "adoc.subs")
	defer teardown()
	//
	doc, s := newSubstitutor()
	doc.Attributes.Set("product", "ACME")
	assert.Equal(t, "Use ACME.", s.Apply("Use {product}.", grammar.SubsNormal))
	assert.Equal(t, "{missing}", s.Apply("{missing}", grammar.SubsNormal))
	assert.Equal(t, "&#169; 2024&#8201;&#8212;&#8201;it&#8217;s &#8230;&#8203;",
		s.Apply("(C) 2024 -- it's ...", grammar.SubsNormal))
	assert.Equal(t, "line one<br>\nline two", s.Apply("line one +\nline two", grammar.SubsNormal))
}

func TestLinksAndImages(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "adoc.subs")
	defer teardown()
	//
	doc, s := newSubstitutor()
	assert.Equal(t, `See <a href="https://example.org">Example</a> now`,
		s.Apply("See https://example.org[Example] now", grammar.SubsNormal))
	assert.Equal(t, `Visit <a href="https://example.org">https://example.org</a>.`,
		s.Apply("Visit https://example.org.", grammar.SubsNormal))
	doc.Attributes.Set("imagesdir", "img")
	assert.Equal(t, `<span class="image"><img src="img/logo.png" alt="Logo" width="32"></span>`,
		s.Apply("image:logo.png[Logo,32]", grammar.SubsNormal))
	assert.Equal(t, "company logo", subs.DefaultAlt("images/company_logo.png"))
}

func TestCrossReferences(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "adoc.subs")
	defer teardown()
	//
	doc := dom.NewDocument(nil, safemode.Unsafe)
	sec := doc.NewBlock(dom.CtxSection, dom.Root)
	sec.Level, sec.Anchor, sec.RawTitle = 1, "_intro", "Intro"
	doc.Refs.Register(dom.Ref{ID: "_intro", Kind: dom.RefSection, Block: sec.ID})
	p1 := paragraph(doc, sec.ID, "See <<_intro>> and <<_intro,the intro>> and <<nope>>.")
	p2 := paragraph(doc, sec.ID, "Forward to <<here>>.")
	p3 := paragraph(doc, sec.ID, "[[here,Here]]Target")
	subs.Document(doc, nil, nil)
	assert.Equal(t, "Intro", sec.Title)
	assert.Equal(t, `See <a href="#_intro">Intro</a> and <a href="#_intro">the intro</a> and <a href="#nope">[nope]</a>.`,
		p1.Content)
	assert.Equal(t, `Forward to <a href="#here">Here</a>.`, p2.Content)
	assert.Equal(t, `<a id="here"></a>Target`, p3.Content)
	require.Len(t, doc.Diagnostics, 1)
	assert.Equal(t, core.EREFERENCE, doc.Diagnostics[0].Code)
	assert.NoError(t, doc.Err())
}

func TestFootnotes(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "adoc.subs")
	defer teardown()
	//
	doc := dom.NewDocument(nil, safemode.Unsafe)
	p := paragraph(doc, dom.Root, "Text.footnote:[A note.] More.footnote:fn1[Named.] Again.footnote:fn1[]")
	subs.Document(doc, nil, nil)
	require.Len(t, doc.Footnotes, 2)
	assert.Equal(t, "A note.", doc.Footnotes[0].Text)
	assert.Equal(t, "fn1", doc.Footnotes[1].ID)
	assert.Equal(t, 2, doc.Footnotes[1].Index)
	assert.Contains(t, p.Content, `<sup class="footnoteref">`)
	assert.NotContains(t, p.Content, "footnote:")
}

func TestCallouts(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "adoc.subs")
	defer teardown()
	//
	doc := dom.NewDocument(nil, safemode.Unsafe)
	l := doc.NewBlock(dom.CtxListing, dom.Root)
	l.Subs = grammar.SubsVerbatim
	l.Lines = []string{"a := 1 // <1>", "b := a < 2 <2>", `c := 3 \<3>`}
	doc.Callouts.Register(1)
	doc.Callouts.Register(2)
	subs.Document(doc, nil, nil)
	assert.Equal(t, "a := 1 <b class=\"conum\">(1)</b>\n"+
		"b := a &lt; 2 <b class=\"conum\">(2)</b>\n"+
		"c := 3 &lt;3&gt;", l.Content)
}

func TestDocumentReplay(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "adoc.subs")
	defer teardown()
	//
	doc := dom.NewDocument(nil, safemode.Unsafe)
	p1 := paragraph(doc, dom.Root, "x is {x}")
	p1.Entries = []dom.AttributeEntry{{Name: "x", Value: "1"}}
	p2 := paragraph(doc, dom.Root, "x is {x}")
	p2.Entries = []dom.AttributeEntry{{Name: "x", Unset: true}}
	ex := doc.NewBlock(dom.CtxExample, dom.Root)
	ex.RawTitle = "Sample"
	ex2 := doc.NewBlock(dom.CtxExample, dom.Root)
	ex2.RawTitle = "Another"
	adm := doc.NewBlock(dom.CtxAdmonition, dom.Root)
	adm.Style = "TIP"
	subs.Document(doc, nil, nil)
	assert.Equal(t, "x is 1", p1.Content)
	assert.Equal(t, "x is {x}", p2.Content)
	assert.Equal(t, "Example 1. ", ex.Caption)
	assert.Equal(t, "Example 2. ", ex2.Caption)
	assert.Equal(t, "Tip", adm.Caption)
}
