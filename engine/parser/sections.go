package parser

import (
	"strconv"
	"strings"
	"unicode"

	"github.com/npillmayer/adoc/core"
	"github.com/npillmayer/adoc/engine/dom"
	"github.com/npillmayer/adoc/engine/reader"
	"github.com/npillmayer/uax/segment"
	"github.com/npillmayer/uax/uax29"
)

// specialSections are section styles which name the section.
var specialSections = map[string]bool{
	"abstract": true, "acknowledgments": true, "appendix": true, "bibliography": true,
	"colophon": true, "dedication": true, "glossary": true, "index": true, "preface": true,
}

// sectionTitle matches an ATX or underline style section title at line.
// The underline of a two-line title is consumed.
func (p *Parser) sectionTitle(line reader.Line) (level int, title string, ok bool) {
	if level, title, ok = p.g.SectionTitle(line.Text); ok {
		return level, title, true
	}
	next, more := p.r.Peek()
	if !more {
		return 0, "", false
	}
	if level, ok = p.g.SetextTitle(line.Text, next.Text); ok {
		p.r.Read()
		return level, strings.TrimSpace(line.Text), true
	}
	return 0, "", false
}

// section checks if line starts a section and opens it.
func (p *Parser) section(line reader.Line) bool {
	if p.meta.discrete() {
		return p.floatingTitle(p.doc.Block(p.top().id), line)
	}
	level, title, ok := p.sectionTitle(line)
	if !ok {
		return false
	}
	title, anchor, reftext := inlineAnchor(title)
	level += p.attrs.Int("leveloffset", 0)
	if level < 0 {
		level = 0
	} else if level > 5 {
		level = 5
	}
	book := p.doc.Doctype() == "book"
	if level == 0 && !book {
		p.doc.Diag(core.ESTRUCTURE, line.Cursor, "level 0 sections can only be used when doctype is book")
		level = 1
	}
	for c := p.top(); c.kind == kindSection && p.doc.Block(c.id).Level >= level; c = p.top() {
		p.pop()
	}
	parent := p.doc.Block(p.top().id)
	expected := 1
	if parent.Context == dom.CtxSection {
		expected = parent.Level + 1
	}
	if level > expected {
		p.doc.Diag(core.ESTRUCTURE, line.Cursor,
			"section title out of sequence: expected level %d, got level %d", expected, level)
	}
	if anchor != "" && p.meta.anchor == "" {
		p.meta.anchor, p.meta.reftext = anchor, reftext
	}
	b := p.newBlock(dom.CtxSection, parent, line)
	b.Level = level
	b.RawTitle = title
	b.Sectname = sectname(b.Style, level, book)
	if b.Anchor == "" && p.attrs.IsSet("sectids") {
		b.Anchor = p.generateID(title)
	}
	if b.Anchor != "" {
		p.register(b, dom.RefSection)
	}
	p.number(b)
	p.push(&container{kind: kindSection, id: b.ID, opened: line.Cursor})
	tracer().Debugf("section level %d %q", level, title)
	return true
}

// floatingTitle reads a discrete heading, which is not a section.
func (p *Parser) floatingTitle(parent *dom.Block, line reader.Line) bool {
	level, title, ok := p.sectionTitle(line)
	if !ok {
		return false
	}
	title, anchor, reftext := inlineAnchor(title)
	if anchor != "" && p.meta.anchor == "" {
		p.meta.anchor, p.meta.reftext = anchor, reftext
	}
	b := p.newBlock(dom.CtxFloatingTitle, parent, line)
	b.Level = level
	b.RawTitle = title
	if b.Anchor == "" && p.attrs.IsSet("sectids") {
		b.Anchor = p.generateID(title)
		p.register(b, dom.RefBlock)
	}
	return true
}

func sectname(style string, level int, book bool) string {
	switch {
	case specialSections[style]:
		return style
	case level == 0:
		return "part"
	case level == 1 && book:
		return "chapter"
	}
	return "section"
}

// inlineAnchor splits a trailing anchor "[[id]]" or "[[id,reftext]]" off a
// title.
func inlineAnchor(title string) (string, string, string) {
	if !strings.HasSuffix(title, "]]") {
		return title, "", ""
	}
	i := strings.LastIndex(title, "[[")
	if i < 0 || (i > 0 && title[i-1] == '\\') {
		return title, "", ""
	}
	id, reftext, _ := strings.Cut(title[i+2:len(title)-2], ",")
	if !isID(id) {
		return title, "", ""
	}
	return strings.TrimSpace(title[:i]), id, strings.TrimSpace(reftext)
}

func isID(id string) bool {
	if id == "" {
		return false
	}
	for i, r := range id {
		switch {
		case unicode.IsLetter(r) || r == '_' || r == ':':
		case i > 0 && (unicode.IsDigit(r) || r == '-' || r == '.'):
		default:
			return false
		}
	}
	return true
}

// generateID derives a section ID from a title. The title is split into
// words by Unicode word segmentation; words are lower-cased and joined by
// the ID separator. IDs already in use get a numeric suffix.
func (p *Parser) generateID(title string) string {
	prefix := p.attrs.ValueOr("idprefix", "_")
	sep := p.attrs.ValueOr("idseparator", "_")
	var words []string
	for _, w := range titleWords(title) {
		words = append(words, strings.ToLower(w))
	}
	id := prefix + strings.Join(words, sep)
	if id == "" {
		id = "_"
	}
	base := id
	for n := 2; p.doc.Refs.Contains(id); n++ {
		id = base + sep + strconv.Itoa(n)
	}
	return id
}

// titleWords returns the words of a title, skipping punctuation, white
// space and markup.
func titleWords(title string) []string {
	seg := segment.NewSegmenter(uax29.NewWordBreaker(1))
	seg.BreakOnZero(true, false)
	seg.Init(strings.NewReader(title))
	var words []string
	for seg.Next() {
		w := seg.Text()
		if strings.IndexFunc(w, isWordRune) < 0 {
			continue
		}
		words = append(words, strings.TrimFunc(w, func(r rune) bool { return !isWordRune(r) }))
	}
	return words
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.Is(unicode.M, r)
}

// number assigns section numbers. Sections are numbered if attribute
// 'sectnums' is set, up to level 'sectnumlevels'. Appendices are numbered
// by letters and get a caption.
func (p *Parser) number(b *dom.Block) {
	if b.Sectname == "appendix" {
		p.appendix++
		letter := string(rune('A' + (p.appendix-1)%26))
		b.Numeral = letter
		b.Numbered = true
		if label := p.attrs.ValueOr("appendix-caption", "Appendix"); label != "" {
			b.Caption = label + " " + letter + ": "
		}
		p.resetNumbers(b.Level)
		return
	}
	if !p.attrs.IsSet("sectnums") || b.Level == 0 || b.Level > p.attrs.Int("sectnumlevels", 3) {
		return
	}
	if specialSections[b.Sectname] {
		return
	}
	for len(p.sectnums) < b.Level {
		p.sectnums = append(p.sectnums, 0)
	}
	p.sectnums[b.Level-1]++
	p.resetNumbers(b.Level)
	parts := make([]string, b.Level)
	for i := range parts {
		parts[i] = strconv.Itoa(p.sectnums[i])
	}
	b.Numeral = strings.Join(parts, ".")
	b.Numbered = true
}

// resetNumbers resets the numbering of levels below level.
func (p *Parser) resetNumbers(level int) {
	for i := level; i < len(p.sectnums); i++ {
		p.sectnums[i] = 0
	}
}
