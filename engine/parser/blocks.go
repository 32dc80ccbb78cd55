package parser

import (
	"strings"

	"github.com/npillmayer/adoc/core"
	"github.com/npillmayer/adoc/engine/dom"
	"github.com/npillmayer/adoc/engine/grammar"
	"github.com/npillmayer/adoc/engine/reader"
)

// --- Delimited blocks ------------------------------------------------------

// styledContexts maps block styles to the context they turn a delimited
// block into.
var styledContexts = map[string]dom.Context{
	"source":  dom.CtxListing,
	"listing": dom.CtxListing,
	"literal": dom.CtxLiteral,
	"pass":    dom.CtxPass,
	"verse":   dom.CtxVerse,
	"quote":   dom.CtxQuote,
	"example": dom.CtxExample,
	"sidebar": dom.CtxSidebar,
	"comment": dom.CtxComment,
}

// delimited reads a delimited block opened by fence d. Blocks with
// compound content are pushed on the container stack, all others are
// read up to their closing fence.
func (p *Parser) delimited(parent *dom.Block, d grammar.Delimiter, line reader.Line) {
	style := p.meta.style()
	ctx := dom.CtxOpen
	switch d.Context {
	case "comment":
		p.readVerbatim(d, line)
		p.dropMeta()
		return
	case "table":
		p.table(parent, d, line)
		return
	case "listing", "fenced_code":
		ctx = dom.CtxListing
	case "literal":
		ctx = dom.CtxLiteral
	case "pass":
		ctx = dom.CtxPass
	case "example":
		ctx = dom.CtxExample
	case "sidebar":
		ctx = dom.CtxSidebar
	case "quote":
		ctx = dom.CtxQuote
	}
	switch {
	case grammar.IsAdmonition(style) && (ctx == dom.CtxExample || ctx == dom.CtxOpen):
		ctx = dom.CtxAdmonition
	case style == "verse" && ctx == dom.CtxQuote:
		ctx = dom.CtxVerse
	case ctx == dom.CtxOpen:
		if c, ok := styledContexts[style]; ok {
			ctx = c
		}
	case ctx == dom.CtxListing && style == "literal":
		ctx = dom.CtxLiteral
	}
	if ctx == dom.CtxComment {
		p.readVerbatim(d, line)
		p.dropMeta()
		return
	}
	b := p.newBlock(ctx, parent, line)
	switch ctx {
	case dom.CtxListing:
		if d.Context == "fenced_code" {
			b.Style = "source"
			if d.Language != "" {
				b.Attrs.Set("language", d.Language)
			}
		} else if b.Style == "source" {
			b.Attrs.MapPositional("", "language", "linenums")
		}
		if _, ok := b.Attr("language"); ok && b.Style == "" {
			b.Style = "source"
		}
	case dom.CtxQuote, dom.CtxVerse:
		b.Attrs.MapPositional("", "attribution", "citetitle")
	case dom.CtxAdmonition:
		b.Style = strings.ToUpper(b.Style)
	}
	switch ctx {
	case dom.CtxListing, dom.CtxLiteral, dom.CtxVerse, dom.CtxPass:
		b.Lines = p.readVerbatim(d, line)
		b.EndLine = p.r.LastCursor().LineNo
		if ctx == dom.CtxPass {
			p.setSubs(b, grammar.SubsNone)
		} else {
			p.setSubs(b, grammar.SubsVerbatim)
		}
		p.registerCallouts(b)
	default:
		p.setSubs(b, grammar.SubsNormal)
		p.push(&container{kind: kindDelimited, id: b.ID, delim: d, opened: line.Cursor})
	}
	tracer().Debugf("%s: %s block", line.Cursor, b.Context)
}

// readVerbatim reads the lines of a delimited block up to its closing fence.
// A missing fence is reported at the opening line.
func (p *Parser) readVerbatim(d grammar.Delimiter, line reader.Line) []string {
	lines, found := p.r.ReadLinesUntil(func(text string) bool {
		return p.g.Closes(d, text)
	})
	if !found {
		p.doc.Diag(core.ESTRUCTURE, line.Cursor, "unterminated %s block", d.Context)
	}
	return lines
}

// readBlockLines reads the lines of a delimited block like readVerbatim,
// keeping the location of every line.
func (p *Parser) readBlockLines(d grammar.Delimiter, line reader.Line) []reader.Line {
	var lines []reader.Line
	for {
		l, ok := p.r.Read()
		if !ok {
			p.doc.Diag(core.ESTRUCTURE, line.Cursor, "unterminated %s block", d.Context)
			return lines
		}
		if p.g.Closes(d, l.Text) {
			return lines
		}
		lines = append(lines, l)
	}
}

// registerCallouts catalogs the callout markers of a verbatim block.
func (p *Parser) registerCallouts(b *dom.Block) {
	if !b.Subs.Has(grammar.Callouts) {
		return
	}
	auto := 0
	for _, line := range b.Lines {
		for _, mk := range grammar.TrailingCallouts(line, "<", ">") {
			if mk.Escaped {
				continue
			}
			b.Coids = append(b.Coids, p.doc.Callouts.Register(mk.Number(&auto)))
		}
	}
}

// --- Block macros ----------------------------------------------------------

// blockMacro reads an image, video, audio or toc block macro. A macro with
// a malformed attribute list is read as a paragraph.
func (p *Parser) blockMacro(parent *dom.Block, m []string, line reader.Line) bool {
	name, target, attrlist := m[1], m[2], m[3]
	if target == "" && name != "toc" {
		return false
	}
	if strings.Contains(attrlist, "{") {
		attrlist, _ = p.interpolate(attrlist)
	}
	al, err := dom.ParseAttributeList(attrlist)
	if err != nil {
		p.doc.Diag(core.EINVALID, line.Cursor, "%v: %s", err, line.Text)
		return false
	}
	ctx := map[string]dom.Context{
		"image": dom.CtxImage, "video": dom.CtxVideo, "audio": dom.CtxAudio, "toc": dom.CtxToc,
	}[name]
	switch ctx {
	case dom.CtxImage:
		al.MapPositional("alt", "width", "height")
	case dom.CtxVideo:
		al.MapPositional("poster", "width", "height")
	}
	b := p.leaf(ctx, parent, line)
	b.Target = target
	for _, k := range al.Keys() {
		if k == "role" || k == "options" {
			continue
		}
		if v, ok := al.Named(k); ok {
			b.Attrs.Set(k, v)
		}
	}
	for _, r := range al.Roles() {
		b.Attrs.AddRole(r)
	}
	for _, o := range al.Options() {
		b.Attrs.AddOption(o)
	}
	b.Subs = grammar.SubsNone
	return true
}

// --- Paragraphs ------------------------------------------------------------

// paragraph reads a paragraph starting at line. Depending on the style
// and the first line, the paragraph becomes a literal, admonition,
// listing, verse, quote or passthrough block.
func (p *Parser) paragraph(parent *dom.Block, line reader.Line) bool {
	style := p.meta.style()
	text := line.Text
	inList := parent.Context == dom.CtxListItem
	if style == "" || style == "normal" {
		if p.g.Matches(grammar.RuleLiteralLine, text) && style == "" {
			p.literalParagraph(parent, line)
			return true
		}
		if m := p.g.Match(grammar.RuleAdmonition, text); m != nil && style == "" {
			b := p.newBlock(dom.CtxAdmonition, parent, line)
			b.Style = m[1]
			b.Lines = p.paragraphLines(m[2], inList)
			p.finishParagraph(b, grammar.SubsNormal)
			return true
		}
	}
	lines := p.paragraphLines(text, inList)
	ctx, subs := dom.CtxParagraph, grammar.SubsNormal
	switch {
	case style == "comment":
		p.dropMeta()
		return false
	case style == "source" || style == "listing":
		ctx, subs = dom.CtxListing, grammar.SubsVerbatim
	case style == "literal":
		ctx, subs = dom.CtxLiteral, grammar.SubsVerbatim
	case style == "verse":
		ctx, subs = dom.CtxVerse, grammar.SubsVerbatim
	case style == "quote":
		ctx = dom.CtxQuote
	case style == "pass":
		ctx, subs = dom.CtxPass, grammar.SubsNone
	case style == "sidebar":
		ctx = dom.CtxSidebar
	case style == "example":
		ctx = dom.CtxExample
	case grammar.IsAdmonition(style):
		ctx = dom.CtxAdmonition
	case style == "normal":
		for i := range lines {
			lines[i] = strings.TrimLeft(lines[i], " \t")
		}
	}
	b := p.newBlock(ctx, parent, line)
	b.Lines = lines
	switch ctx {
	case dom.CtxListing:
		if b.Style == "source" {
			b.Attrs.MapPositional("", "language", "linenums")
		}
	case dom.CtxQuote, dom.CtxVerse:
		b.Attrs.MapPositional("", "attribution", "citetitle")
	}
	p.finishParagraph(b, subs)
	return true
}

func (p *Parser) finishParagraph(b *dom.Block, subs grammar.SubSet) {
	p.setSubs(b, subs)
	b.EndLine = p.r.LastCursor().LineNo
	if b.Context.IsVerbatim() {
		p.registerCallouts(b)
	}
}

// paragraphLines reads the lines of a paragraph following its first line.
// A paragraph ends at a blank line, at the closing fence of the enclosing
// block, and, if blocks terminate paragraphs, at a fence or block
// attribute line. Paragraphs of list items also end at list markers and
// list continuations.
func (p *Parser) paragraphLines(first string, inList bool) []string {
	lines := []string{first}
	for {
		l, ok := p.r.Peek()
		if !ok || grammar.IsBlank(l.Text) || p.interrupts(l.Text, inList) {
			return lines
		}
		p.r.Read()
		if p.g.IsComment(l.Text) {
			continue
		}
		if inList {
			lines = append(lines, strings.TrimLeft(l.Text, " \t"))
		} else {
			lines = append(lines, l.Text)
		}
	}
}

func (p *Parser) interrupts(text string, inList bool) bool {
	if p.closes(text) {
		return true
	}
	if inList {
		if text == "+" {
			return true
		}
		if _, ok := p.g.MatchListItem(text); ok {
			return true
		}
	}
	if !p.g.Compliance().BlockTerminatesParagraph {
		return false
	}
	if _, ok := p.g.Delimiter(text); ok {
		return true
	}
	return p.g.Matches(grammar.RuleBlockAttributes, text) || p.g.Matches(grammar.RuleBlockAnchor, text)
}

// literalParagraph reads an indented paragraph as a literal block. The
// lines are outdented by their common indentation.
func (p *Parser) literalParagraph(parent *dom.Block, line reader.Line) {
	lines := []string{line.Text}
	strict := p.g.Compliance().StrictVerbatimParagraphs
	for {
		l, ok := p.r.Peek()
		if !ok || grammar.IsBlank(l.Text) || p.closes(l.Text) {
			break
		}
		if !strict && !p.g.Matches(grammar.RuleLiteralLine, l.Text) {
			break
		}
		p.r.Read()
		lines = append(lines, l.Text)
	}
	b := p.newBlock(dom.CtxLiteral, parent, line)
	b.Lines = outdent(lines)
	p.finishParagraph(b, grammar.SubsVerbatim)
}

// outdent removes the common leading white space of lines.
func outdent(lines []string) []string {
	indent := -1
	for _, l := range lines {
		if grammar.IsBlank(l) {
			continue
		}
		n := len(l) - len(strings.TrimLeft(l, " \t"))
		if indent < 0 || n < indent {
			indent = n
		}
	}
	if indent <= 0 {
		return lines
	}
	out := make([]string, len(lines))
	for i, l := range lines {
		if len(l) >= indent {
			out[i] = l[indent:]
		}
	}
	return out
}
