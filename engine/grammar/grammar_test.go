package grammar_test

import (
	"fmt"
	"strings"
	"testing"

	"github.com/npillmayer/adoc/engine/grammar"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSectionTitleLevels(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "adoc.grammar")
	defer teardown()
	//
	g := grammar.Default()
	for n := 1; n <= 6; n++ {
		line := strings.Repeat("=", n) + " Title"
		level, title, ok := g.SectionTitle(line)
		require.True(t, ok, line)
		assert.Equal(t, n-1, level, line)
		assert.Equal(t, "Title", title)
	}
	_, _, ok := g.SectionTitle("======= Too Deep")
	assert.False(t, ok, "seven markers must not be a section title")
	_, _, ok = g.SectionTitle("==No Blank")
	assert.False(t, ok)
	level, title, ok := g.SectionTitle("== Closed ==")
	require.True(t, ok)
	assert.Equal(t, 1, level)
	assert.Equal(t, "Closed", title)
	_, title, _ = g.SectionTitle("== Unbalanced ===")
	assert.Equal(t, "Unbalanced ===", title)
	level, _, ok = g.SectionTitle("### Markdown")
	require.True(t, ok)
	assert.Equal(t, 2, level)
}

func TestSetextTitle(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "adoc.grammar")
	defer teardown()
	//
	g := grammar.Default()
	level, ok := g.SetextTitle("Section", "-------")
	assert.True(t, ok)
	assert.Equal(t, 1, level)
	_, ok = g.SetextTitle("Section", "----------------")
	assert.False(t, ok, "underline length must be within two characters")
	_, ok = g.SetextTitle(".Title", "------")
	assert.False(t, ok)
	c := grammar.DefaultCompliance()
	c.UnderlineStyleSectionTitles = false
	_, ok = grammar.New(c).SetextTitle("Section", "=======")
	assert.False(t, ok)
}

func TestDelimiters(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "adoc.grammar")
	defer teardown()
	//
	g := grammar.Default()
	cases := []struct {
		line    string
		context string
		model   grammar.ContentModel
	}{
		{"--", "open", grammar.Compound},
		{"----", "listing", grammar.Verbatim},
		{"......", "literal", grammar.Verbatim},
		{"====", "example", grammar.Compound},
		{"****", "sidebar", grammar.Compound},
		{"____", "quote", grammar.Compound},
		{"++++", "pass", grammar.Raw},
		{"////", "comment", grammar.Skip},
		{"|===", "table", grammar.TableModel},
		{"!=====", "table", grammar.TableModel},
		{"```ruby", "fenced_code", grammar.Verbatim},
		{"~~~", "fenced_code", grammar.Verbatim},
	}
	for _, c := range cases {
		d, ok := g.Delimiter(c.line)
		require.True(t, ok, c.line)
		assert.Equal(t, c.context, d.Context, c.line)
		assert.Equal(t, c.model, d.Model, c.line)
	}
	for _, line := range []string{"---", "===", "--- ", "----x", "|==", "```a b"} {
		_, ok := g.Delimiter(line)
		assert.False(t, ok, line)
	}
	d, _ := g.Delimiter("```ruby")
	assert.Equal(t, "ruby", d.Language)
}

func TestCongruentFences(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "adoc.grammar")
	defer teardown()
	//
	g := grammar.Default()
	for l := 4; l <= 8; l++ {
		fence := strings.Repeat("-", l)
		open, ok := g.Delimiter(fence)
		require.True(t, ok)
		assert.True(t, g.Closes(open, fence))
		assert.False(t, g.Closes(open, fence+"-"), "longer fence closes %q", fence)
		if l > 4 {
			assert.False(t, g.Closes(open, fence[1:]), "shorter fence closes %q", fence)
		}
	}
	c := grammar.DefaultCompliance()
	c.CongruentBlockDelimiters = false
	lax := grammar.New(c)
	open, _ := lax.Delimiter("------")
	assert.True(t, lax.Closes(open, "----"))
	open, _ = g.Delimiter("```go")
	assert.True(t, g.Closes(open, "```"))
	assert.False(t, g.Closes(open, "```go"))
}

func TestListItems(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "adoc.grammar")
	defer teardown()
	//
	g := grammar.Default()
	cases := []struct {
		line  string
		kind  grammar.ListKind
		key   string
		style string
		text  string
	}{
		{"* one", grammar.Unordered, "*", "", "one"},
		{"*** deep", grammar.Unordered, "***", "", "deep"},
		{"- dash", grammar.Unordered, "-", "", "dash"},
		{". one", grammar.Ordered, ".", "arabic", "one"},
		{".. two", grammar.Ordered, "..", "loweralpha", "two"},
		{"1. num", grammar.Ordered, "arabic", "arabic", "num"},
		{"b. alpha", grammar.Ordered, "loweralpha", "loweralpha", "alpha"},
		{"B. alpha", grammar.Ordered, "upperalpha", "upperalpha", "alpha"},
		{"iv) roman", grammar.Ordered, "lowerroman", "lowerroman", "roman"},
		{"IV) roman", grammar.Ordered, "upperroman", "upperroman", "roman"},
		{"<1> callout", grammar.Callout, "<>", "", "callout"},
		{"<.> auto", grammar.Callout, "<>", "", "auto"},
	}
	for _, c := range cases {
		item, ok := g.MatchListItem(c.line)
		require.True(t, ok, c.line)
		assert.Equal(t, c.kind, item.Kind, c.line)
		assert.Equal(t, c.key, item.Key, c.line)
		assert.Equal(t, c.style, item.Style, c.line)
		assert.Equal(t, c.text, item.Text, c.line)
	}
	for _, delim := range []string{"::", ":::", "::::", ";;"} {
		item, ok := g.MatchListItem("CPU" + delim + " The brain")
		require.True(t, ok, delim)
		assert.Equal(t, grammar.Description, item.Kind)
		assert.Equal(t, delim, item.Key)
		assert.Equal(t, "CPU", item.Term)
		assert.Equal(t, "The brain", item.Text)
	}
	item, ok := g.MatchListItem("Term::")
	require.True(t, ok)
	assert.Equal(t, "", item.Text)
	for _, line := range []string{"*bold* text", "image::a.png[]", "plain text", "1.5 million", "//comment:: x"} {
		_, ok := g.MatchListItem(line)
		assert.False(t, ok, line)
	}
}

func TestRomanNumerals(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "adoc.grammar")
	defer teardown()
	//
	for n := 1; n < 40; n++ {
		r := grammar.IntToRoman(n)
		assert.Equal(t, n, grammar.RomanToInt(r), r)
		assert.Equal(t, n, grammar.RomanToInt(strings.ToUpper(r)), r)
	}
	assert.Equal(t, 0, grammar.RomanToInt("abc"))
	assert.Equal(t, 4, grammar.OrdinalOf("iv)"))
	assert.Equal(t, 3, grammar.OrdinalOf("c."))
	assert.Equal(t, 12, grammar.OrdinalOf("12."))
	assert.Equal(t, 0, grammar.OrdinalOf(".."))
}

func TestBlockRules(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "adoc.grammar")
	defer teardown()
	//
	g := grammar.Default()
	m := g.Match(grammar.RuleAttributeEntry, ":name: value")
	require.NotNil(t, m)
	assert.Equal(t, "name", m[1])
	assert.Equal(t, "value", m[2])
	m = g.Match(grammar.RuleAttributeEntry, ":!name:")
	require.NotNil(t, m)
	assert.Equal(t, "!name", m[1])
	assert.True(t, g.Matches(grammar.RuleBlockAttributes, "[source,ruby]"))
	assert.True(t, g.Matches(grammar.RuleBlockAttributes, "[#id.role]"))
	assert.False(t, g.Matches(grammar.RuleBlockAttributes, "[ not attrs]"))
	m = g.Match(grammar.RuleBlockAnchor, "[[anchor,Ref Text]]")
	require.NotNil(t, m)
	assert.Equal(t, "anchor", m[1])
	assert.Equal(t, "Ref Text", m[2])
	m = g.Match(grammar.RuleBlockTitle, ".A Title")
	require.NotNil(t, m)
	assert.Equal(t, "A Title", m[1])
	assert.False(t, g.Matches(grammar.RuleBlockTitle, ". item"))
	assert.True(t, g.IsComment("// note"))
	assert.False(t, g.IsComment("/// not"))
	m = g.Match(grammar.RuleBlockMacro, "image::sunset.jpg[Sunset,300,200]")
	require.NotNil(t, m)
	assert.Equal(t, []string{"image", "sunset.jpg", "Sunset,300,200"}, m[1:])
	m = g.Match(grammar.RuleConditional, "ifdef::a,b[]")
	require.NotNil(t, m)
	assert.Equal(t, "ifdef", m[2])
	assert.Equal(t, "a,b", m[3])
	assert.Equal(t, ",", m[4])
	m = g.Match(grammar.RuleInclude, "include::chapters/one.adoc[leveloffset=+1]")
	require.NotNil(t, m)
	assert.Equal(t, "chapters/one.adoc", m[2])
	assert.Equal(t, "leveloffset=+1", m[3])
	m = g.Match(grammar.RuleColspec, "2*^.>3e")
	require.NotNil(t, m)
	assert.Equal(t, []string{"2", "^", ">", "3", "e"}, m[1:])
	r, _ := g.Classify("'''", grammar.RuleThematicBreak, grammar.RuleLiteralLine)
	require.NotNil(t, r)
	assert.Equal(t, grammar.RuleThematicBreak, r.Name)
}

func TestResolveSubs(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "adoc.grammar")
	defer teardown()
	//
	set, err := grammar.ResolveSubs("normal", grammar.SubsVerbatim)
	require.NoError(t, err)
	assert.Equal(t, grammar.SubsNormal, set)
	set, err = grammar.ResolveSubs("+quotes", grammar.SubsVerbatim)
	require.NoError(t, err)
	assert.True(t, set.Has(grammar.Quotes))
	assert.True(t, set.Has(grammar.Callouts))
	set, err = grammar.ResolveSubs("attributes+,-callouts", grammar.SubsVerbatim)
	require.NoError(t, err)
	assert.True(t, set.Has(grammar.Attributes))
	assert.False(t, set.Has(grammar.Callouts))
	set, err = grammar.ResolveSubs("q,a", grammar.SubsNormal)
	require.NoError(t, err)
	assert.Equal(t, grammar.SubSet(grammar.Quotes|grammar.Attributes), set)
	set, err = grammar.ResolveSubs("none", grammar.SubsNormal)
	require.NoError(t, err)
	assert.Equal(t, grammar.SubsNone, set)
	_, err = grammar.ResolveSubs("quotes,bogus", grammar.SubsNormal)
	assert.Error(t, err)
}

func TestTrailingCallouts(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "adoc.grammar")
	defer teardown()
	//
	cases := []struct {
		line string
		want string
	}{
		{"puts 'hello' <1>", "1@13"},
		{"puts x # <2>", "2@7"},
		{"foo <1> <2>", "1@4 2@8"},
		{"<!--3-->", "3@0"},
		{"x = 1 // <.>", ".@6"},
		{"a \\<4>", "4!@2"},
		{"no callout <a>", ""},
		{"a < b > c", ""},
	}
	for _, c := range cases {
		marks := grammar.TrailingCallouts(c.line, "<", ">")
		var got []string
		for _, m := range marks {
			s := m.Ordinal
			if m.Escaped {
				s += "!"
			}
			got = append(got, fmt.Sprintf("%s@%d", s, m.Start))
		}
		assert.Equal(t, c.want, strings.Join(got, " "), c.line)
	}
	marks := grammar.TrailingCallouts("x &lt;1&gt;", "&lt;", "&gt;")
	require.Len(t, marks, 1)
	assert.Equal(t, "1", marks[0].Ordinal)
}
