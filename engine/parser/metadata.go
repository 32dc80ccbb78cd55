package parser

import (
	"strings"

	"github.com/npillmayer/adoc/core"
	"github.com/npillmayer/adoc/engine/dom"
	"github.com/npillmayer/adoc/engine/grammar"
	"github.com/npillmayer/adoc/engine/reader"
)

// metadata is collected from the lines preceding a block: attribute
// lists, anchors, titles and attribute entries.
type metadata struct {
	attrs   *dom.AttributeList
	anchor  string
	reftext string
	title   string
	entries []dom.AttributeEntry
}

func (m *metadata) style() string {
	if m.attrs == nil {
		return ""
	}
	return m.attrs.Style()
}

func (m *metadata) discrete() bool {
	s := m.style()
	return s == "discrete" || s == "float"
}

// verbatim is true if the style turns the next block into a paragraph-like
// block even if it looks like a list.
func (m *metadata) verbatim() bool {
	switch m.style() {
	case "literal", "listing", "source", "pass", "verse", "quote", "normal":
		return true
	}
	return false
}

func (m *metadata) empty() bool {
	return m.attrs == nil && m.anchor == "" && m.title == ""
}

// dropMeta forgets metadata which has not been attached to a block.
// Attribute entries are kept for the next block.
func (p *Parser) dropMeta() {
	if !p.meta.empty() {
		tracer().Debugf("dropping dangling block metadata")
	}
	p.meta = metadata{entries: p.meta.entries}
}

// metadataLine consumes a line of block metadata. It returns false if
// the line is not metadata.
func (p *Parser) metadataLine(line reader.Line) bool {
	text := line.Text
	if text == "" {
		return false
	}
	switch text[0] {
	case '/':
		return p.g.IsComment(text)
	case ':':
		if m := p.g.Match(grammar.RuleAttributeEntry, text); m != nil {
			p.attributeEntry(m, line, true)
			return true
		}
	case '[':
		if m := p.g.Match(grammar.RuleBlockAnchor, text); m != nil {
			p.meta.anchor, p.meta.reftext = m[1], m[2]
			return true
		}
		if m := p.g.Match(grammar.RuleBlockAttributes, text); m != nil {
			return p.blockAttributes(m[1], line)
		}
	case '.':
		if m := p.g.Match(grammar.RuleBlockTitle, text); m != nil {
			p.meta.title = m[1]
			return true
		}
	}
	return false
}

// blockAttributes parses a block attribute list and merges it into the
// pending metadata. A malformed list is reported and the line is read as
// text.
func (p *Parser) blockAttributes(text string, line reader.Line) bool {
	if strings.Contains(text, "{") {
		var warnings []string
		text, warnings = p.interpolate(text)
		for _, w := range warnings {
			p.doc.Diag(core.EREFERENCE, line.Cursor, "%s", w)
		}
	}
	al, err := dom.ParseBlockAttributes(text)
	if err != nil {
		p.doc.Diag(core.EINVALID, line.Cursor, "%v: [%s]", err, text)
		return false
	}
	if p.meta.attrs == nil {
		p.meta.attrs = al
	} else {
		p.meta.attrs.Merge(al)
	}
	return true
}

func (p *Parser) interpolate(text string) (string, []string) {
	text, warnings := p.attrs.Interpolate(text)
	msgs := make([]string, len(warnings))
	for i, w := range warnings {
		msgs[i] = w.Msg
	}
	return text, msgs
}

// attributeEntry applies an attribute entry to the store. Values ending in
// " +" or " \" continue on the next line. Entries of the body are recorded
// for the next block, so substitution can replay them.
func (p *Parser) attributeEntry(m []string, line reader.Line, record bool) {
	name, value := m[1], m[2]
	for strings.HasSuffix(value, " +") || strings.HasSuffix(value, ` \`) {
		next, ok := p.r.Read()
		if !ok {
			break
		}
		value = strings.TrimRight(value[:len(value)-2], " ") + " " + strings.TrimSpace(next.Text)
	}
	unset := strings.HasPrefix(name, "!") || strings.HasSuffix(name, "!")
	name = strings.Trim(name, "!")
	var ok bool
	if unset {
		ok = p.attrs.Unset(name)
	} else {
		if value != "" {
			value = p.subs.Apply(value, grammar.SubsHeader)
		}
		ok = p.attrs.Set(name, value)
	}
	if !ok {
		tracer().Infof("%s: attribute %q not changed", line.Cursor, name)
		return
	}
	if record {
		p.meta.entries = append(p.meta.entries, dom.AttributeEntry{Name: name, Value: value, Unset: unset})
	}
}

// newBlock creates a block in parent and attaches the pending metadata.
func (p *Parser) newBlock(ctx dom.Context, parent *dom.Block, line reader.Line) *dom.Block {
	b := p.doc.NewBlock(ctx, parent.ID)
	b.Loc = line.Cursor
	meta := p.meta
	p.meta = metadata{}
	b.Attrs = meta.attrs
	if b.Attrs == nil {
		b.Attrs = dom.NewAttributeList()
	}
	b.Style = b.Attrs.Style()
	b.RawTitle = meta.title
	b.Entries = meta.entries
	b.Anchor = meta.anchor
	if b.Anchor == "" {
		b.Anchor = b.Attrs.ID()
	}
	b.Reftext = meta.reftext
	if b.Reftext == "" {
		b.Reftext, _ = b.Attrs.Named("reftext")
	}
	if b.Anchor != "" && ctx != dom.CtxSection {
		p.register(b, dom.RefBlock)
	}
	return b
}

// register adds the anchor of a block to the references of the document.
func (p *Parser) register(b *dom.Block, kind dom.RefKind) {
	ref := dom.Ref{ID: b.Anchor, Kind: kind, Block: b.ID, Reftext: b.Reftext}
	if !p.doc.Refs.Register(ref) {
		p.doc.Diag(core.EINVALID, b.Loc, "id assigned already: %s", b.Anchor)
	}
}

// setSubs sets the substitutions of a block, honoring attribute 'subs'.
func (p *Parser) setSubs(b *dom.Block, dflt grammar.SubSet) {
	b.Subs = dflt
	spec, ok := b.Attr("subs")
	if !ok {
		return
	}
	set, err := grammar.ResolveSubs(spec, dflt)
	if err != nil {
		p.doc.Diag(core.EINVALID, b.Loc, "%v", err)
	}
	b.Subs = set
}
