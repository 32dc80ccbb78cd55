package parser

import (
	"strconv"
	"strings"

	"github.com/npillmayer/adoc/core"
	"github.com/npillmayer/adoc/engine/dom"
	"github.com/npillmayer/adoc/engine/grammar"
	"github.com/npillmayer/adoc/engine/reader"
)

var listContexts = map[grammar.ListKind]dom.Context{
	grammar.Unordered:   dom.CtxUList,
	grammar.Ordered:     dom.CtxOList,
	grammar.Description: dom.CtxDList,
	grammar.Callout:     dom.CtxColist,
}

// list opens a list in parent, starting with item li.
func (p *Parser) list(parent *dom.Block, li grammar.ListItem, line reader.Line) {
	depth := 0
	for _, c := range p.containers() {
		if c.kind == kindList {
			depth++
		}
	}
	b := p.newBlock(listContexts[li.Kind], parent, line)
	b.Level = depth
	if li.Kind == grammar.Ordered {
		if b.Style == "" {
			b.Style = li.Style
		}
		if _, ok := b.Attr("start"); !ok {
			if n := grammar.OrdinalOf(li.Marker); n > 1 {
				b.Attrs.Set("start", strconv.Itoa(n))
			}
		}
	}
	b.Subs = grammar.SubsNone
	p.push(&container{kind: kindList, id: b.ID, key: li.Key, listKind: li.Kind, opened: line.Cursor})
	tracer().Debugf("%s: %s level %d", line.Cursor, b.Context, depth)
	p.item(b, li, line)
}

// listItem places an item found while a list is open. If an open list of
// the enclosing block uses the same marker, the item is a sibling of that
// list's items and the lists nested deeper are closed. Otherwise the item
// starts a list nested in the current item.
//
// Callout lists do not nest: a callout item without an open callout list
// closes all open lists, and any other item closes an open callout list.
func (p *Parser) listItem(li grammar.ListItem, line reader.Line) {
	if li.Kind == grammar.Callout {
		if !p.siblingItem(li, line) {
			p.closeLists()
			p.list(p.doc.Block(p.top().id), li, line)
		}
		return
	}
	if l := p.innermostList(); l != nil && l.listKind == grammar.Callout {
		for p.pop() != l {
		}
	}
	if !p.siblingItem(li, line) {
		p.list(p.doc.Block(p.top().id), li, line)
	}
}

// siblingItem adds li to the innermost open list with the same marker.
func (p *Parser) siblingItem(li grammar.ListItem, line reader.Line) bool {
	for i, c := range p.containers() {
		if c.kind != kindList && c.kind != kindItem {
			break
		}
		if c.kind == kindList && c.listKind == li.Kind && c.key == li.Key {
			for j := 0; j < i; j++ {
				p.pop()
			}
			p.item(p.doc.Block(c.id), li, line)
			return true
		}
	}
	return false
}

// innermostList returns the innermost list open in the current block, or nil.
func (p *Parser) innermostList() *container {
	for _, c := range p.containers() {
		if c.kind == kindList {
			return c
		}
		if c.kind != kindItem {
			return nil
		}
	}
	return nil
}

// item adds an item to list and reads its text.
func (p *Parser) item(list *dom.Block, li grammar.ListItem, line reader.Line) {
	it := p.doc.NewBlock(dom.CtxListItem, list.ID)
	it.Loc = line.Cursor
	it.Marker = li.Marker
	it.Level = list.Level
	it.Subs = grammar.SubsNormal
	text := li.Text
	switch li.Kind {
	case grammar.Description:
		it.Terms = []string{li.Term}
		text = p.moreTerms(it, li)
	case grammar.Ordered:
		it.Numeral = numeral(list, len(list.Children))
	case grammar.Callout:
		p.associateCallout(it, list, li, line)
	}
	if text != "" {
		it.Lines = p.paragraphLines(text, true)
	}
	it.EndLine = p.r.LastCursor().LineNo
	p.push(&container{kind: kindItem, id: it.ID, opened: line.Cursor})
}

// moreTerms reads further terms of a description list item and the first
// line of its description, which may follow on the next line.
func (p *Parser) moreTerms(it *dom.Block, li grammar.ListItem) string {
	text := li.Text
	for text == "" {
		l, ok := p.r.Peek()
		if !ok || grammar.IsBlank(l.Text) || l.Text == "+" || p.interrupts(l.Text, false) {
			return ""
		}
		next, isItem := p.g.MatchListItem(l.Text)
		if isItem {
			if next.Kind != grammar.Description || next.Key != li.Key {
				return ""
			}
			p.r.Read()
			it.Terms = append(it.Terms, next.Term)
			text = next.Text
			continue
		}
		p.r.Read()
		text = strings.TrimSpace(l.Text)
	}
	return text
}

// numeral returns the numeral of the n-th item of an ordered list.
func numeral(list *dom.Block, n int) string {
	start := 1
	if s, ok := list.Attr("start"); ok {
		if v, err := strconv.Atoi(s); err == nil {
			start = v
		}
	}
	n += start - 1
	switch list.Style {
	case "loweralpha":
		return alpha(n, 'a')
	case "upperalpha":
		return alpha(n, 'A')
	case "lowerroman":
		return grammar.IntToRoman(n)
	case "upperroman":
		return strings.ToUpper(grammar.IntToRoman(n))
	}
	return strconv.Itoa(n)
}

func alpha(n int, base byte) string {
	if n < 1 {
		return strconv.Itoa(n)
	}
	var b []byte
	for n > 0 {
		n--
		b = append([]byte{base + byte(n%26)}, b...)
		n /= 26
	}
	return string(b)
}

// associateCallout links a callout list item to the callouts with its
// number in the preceding verbatim blocks.
func (p *Parser) associateCallout(it, list *dom.Block, li grammar.ListItem, line reader.Line) {
	ordinal := len(list.Children)
	if n, err := strconv.Atoi(strings.Trim(li.Marker, "<>")); err == nil {
		ordinal = n
	}
	it.Numeral = strconv.Itoa(ordinal)
	ids := p.doc.Callouts.IDs(ordinal)
	if ids == "" {
		p.doc.Diag(core.EREFERENCE, line.Cursor, "no callout found for <%d>", ordinal)
		return
	}
	it.Coids = strings.Fields(ids)
	for _, coid := range it.Coids {
		p.doc.Callouts.Associate(coid, it.ID)
	}
}
