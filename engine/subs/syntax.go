package subs

import (
	"fmt"
	"html"
	"strings"

	"github.com/npillmayer/adoc/engine/dom"
	"github.com/npillmayer/adoc/engine/grammar"
)

// TagPair is the markup around a span of text.
type TagPair struct {
	Open, Close string
}

// Wrap puts text between the tags.
func (tp TagPair) Wrap(text string) string {
	return tp.Open + text + tp.Close
}

// OutputSyntax produces the markup for inline elements. Text passed to the
// functions has been substituted already, with the exception of targets,
// which are raw. Functions returning a TagPair leave the enclosed text to
// the substitutor.
type OutputSyntax struct {
	Quote     func(kind grammar.QuoteKind, id string, roles []string) TagPair
	Anchor    func(id, reftext string) string
	Bibref    func(id, reftext string) string
	Image     func(src, alt string, attrs *dom.AttributeList) string
	Icon      func(name string, attrs *dom.AttributeList) string
	Link      func(target string, attrs *dom.AttributeList) TagPair
	Footnote  func(fn dom.Footnote, ref bool) string
	Xref      func(href string) TagPair
	IndexTerm func(terms []string, visible bool) string
	Callout   func(id string, n int) string
	LineBreak string
}

// HTMLSyntax produces HTML markup.
var HTMLSyntax = &OutputSyntax{
	Quote:     htmlQuote,
	Anchor:    htmlAnchor,
	Bibref:    htmlBibref,
	Image:     htmlImage,
	Icon:      htmlIcon,
	Link:      htmlLink,
	Footnote:  htmlFootnote,
	Xref:      htmlXref,
	IndexTerm: htmlIndexTerm,
	Callout:   htmlCallout,
	LineBreak: "<br>",
}

var htmlQuoteTags = map[grammar.QuoteKind]TagPair{
	grammar.Strong:       {"<strong>", "</strong>"},
	grammar.Emphasis:     {"<em>", "</em>"},
	grammar.Monospaced:   {"<code>", "</code>"},
	grammar.DoubleQuoted: {"&#8220;", "&#8221;"},
	grammar.SingleQuoted: {"&#8216;", "&#8217;"},
	grammar.Marked:       {"<mark>", "</mark>"},
	grammar.Superscript:  {"<sup>", "</sup>"},
	grammar.Subscript:    {"<sub>", "</sub>"},
}

func attr(name, value string) string {
	if value == "" {
		return ""
	}
	return fmt.Sprintf(` %s="%s"`, name, html.EscapeString(value))
}

func htmlQuote(kind grammar.QuoteKind, id string, roles []string) TagPair {
	tags := htmlQuoteTags[kind]
	if id == "" && len(roles) == 0 {
		return tags
	}
	attrs := attr("id", id) + attr("class", strings.Join(roles, " "))
	switch kind {
	case grammar.DoubleQuoted, grammar.SingleQuoted:
		return TagPair{"<span" + attrs + ">" + tags.Open, tags.Close + "</span>"}
	case grammar.Marked:
		return TagPair{"<span" + attrs + ">", "</span>"}
	}
	return TagPair{tags.Open[:len(tags.Open)-1] + attrs + ">", tags.Close}
}

func htmlAnchor(id, reftext string) string {
	return `<a id="` + html.EscapeString(id) + `"></a>`
}

func htmlBibref(id, reftext string) string {
	if reftext == "" {
		reftext = id
	}
	return htmlAnchor(id, "") + "[" + reftext + "]"
}

func htmlImage(src, alt string, attrs *dom.AttributeList) string {
	var b strings.Builder
	b.WriteString(`<span class="image`)
	for _, role := range attrs.Roles() {
		b.WriteString(" " + role)
	}
	b.WriteString(`"><img src="` + html.EscapeString(src) + `" alt="` + html.EscapeString(alt) + `"`)
	for _, k := range []string{"width", "height", "title"} {
		if v, ok := attrs.Named(k); ok {
			b.WriteString(attr(k, v))
		}
	}
	b.WriteString("></span>")
	if link, ok := attrs.Named("link"); ok {
		return `<a class="image" href="` + html.EscapeString(link) + `">` + b.String() + "</a>"
	}
	return b.String()
}

func htmlIcon(name string, attrs *dom.AttributeList) string {
	class := "fa fa-" + name
	if size, ok := attrs.Named("size"); ok {
		class += " fa-" + size
	}
	return `<span class="icon"><i class="` + html.EscapeString(class) + `"></i></span>`
}

func htmlLink(target string, attrs *dom.AttributeList) TagPair {
	var b strings.Builder
	b.WriteString(`<a href="` + html.EscapeString(target) + `"`)
	if roles := attrs.Roles(); len(roles) > 0 {
		b.WriteString(attr("class", strings.Join(roles, " ")))
	}
	if w, ok := attrs.Named("window"); ok {
		b.WriteString(attr("target", w))
		if w == "_blank" {
			b.WriteString(` rel="noopener"`)
		}
	}
	b.WriteString(">")
	return TagPair{b.String(), "</a>"}
}

func htmlFootnote(fn dom.Footnote, ref bool) string {
	n := fn.Index
	if ref {
		return fmt.Sprintf(`<sup class="footnoteref">[<a class="footnote" href="#_footnotedef_%d" title="View footnote.">%d</a>]</sup>`, n, n)
	}
	id := ""
	if fn.ID != "" {
		id = attr("id", "_footnote_"+fn.ID)
	}
	return fmt.Sprintf(`<sup class="footnote"%s>[<a id="_footnoteref_%d" class="footnote" href="#_footnotedef_%d" title="View footnote.">%d</a>]</sup>`,
		id, n, n, n)
}

func htmlXref(href string) TagPair {
	return TagPair{`<a href="` + html.EscapeString(href) + `">`, "</a>"}
}

func htmlIndexTerm(terms []string, visible bool) string {
	if visible && len(terms) > 0 {
		return terms[0]
	}
	return ""
}

func htmlCallout(id string, n int) string {
	return fmt.Sprintf(`<b class="conum">(%d)</b>`, n)
}
