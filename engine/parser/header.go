package parser

import (
	"strconv"
	"strings"
	"unicode"

	"github.com/npillmayer/adoc/core"
	"github.com/npillmayer/adoc/engine/dom"
	"github.com/npillmayer/adoc/engine/grammar"
	"gopkg.in/yaml.v3"
)

// parseHeader reads the document header: the document title, author and
// revision lines and the header attribute entries. The header ends at the
// first blank line after the title. Without a title, only the attribute
// entries and comments at the top of the document belong to the header.
func (p *Parser) parseHeader() {
	p.frontMatter()
	root := p.doc.Root()
	for {
		line, ok := p.r.Peek()
		if !ok {
			break
		}
		if grammar.IsBlank(line.Text) || p.g.IsComment(line.Text) {
			p.r.Read()
			continue
		}
		if d, ok := p.g.Delimiter(line.Text); ok && d.Context == "comment" {
			p.r.Read()
			p.readVerbatim(d, line)
			continue
		}
		if m := p.g.Match(grammar.RuleAttributeEntry, line.Text); m != nil {
			p.r.Read()
			p.attributeEntry(m, line, false)
			continue
		}
		break
	}
	line, ok := p.r.Peek()
	if ok {
		if level, title, isTitle := p.g.SectionTitle(line.Text); isTitle && level == 0 {
			p.r.Read()
			root.Loc = line.Cursor
			root.RawTitle = title
			if !p.attrs.IsSet("doctitle") {
				p.attrs.Set("doctitle", title)
			}
			p.authorAndRevision()
			p.headerEntries()
		}
	}
	p.headerAttributes()
	p.attrs.LockRenderingKeys(p.doc.SafeMode)
	p.doc.Header = p.attrs.Snapshot()
	tracer().Debugf("header done, title = %q", root.RawTitle)
}

// frontMatter decodes the front matter removed by the reader.
func (p *Parser) frontMatter() {
	lines := p.r.FrontMatter()
	if len(lines) == 0 {
		return
	}
	fm := make(map[string]interface{})
	if err := yaml.Unmarshal([]byte(strings.Join(lines, "\n")), &fm); err != nil {
		p.doc.Diag(core.EINVALID, core.Cursor{LineNo: 1}, "front matter: %v", err)
		return
	}
	p.doc.FrontMatter = fm
}

// authorAndRevision reads the optional author line and revision line
// following the document title.
func (p *Parser) authorAndRevision() {
	line, ok := p.r.Peek()
	if !ok || p.headerLineDone(line.Text) {
		return
	}
	p.r.Read()
	p.doc.Authors = p.parseAuthors(line.Text)
	line, ok = p.r.Peek()
	if !ok || p.headerLineDone(line.Text) {
		return
	}
	if rev, isRev := parseRevision(line.Text); isRev {
		p.r.Read()
		p.doc.Revision = rev
	}
}

// headerLineDone is true if a line cannot be an author or revision line.
func (p *Parser) headerLineDone(text string) bool {
	return grammar.IsBlank(text) || p.g.IsComment(text) || p.g.Matches(grammar.RuleAttributeEntry, text)
}

// headerEntries reads attribute entries and comments up to the end of the
// header.
func (p *Parser) headerEntries() {
	for {
		line, ok := p.r.Peek()
		if !ok || grammar.IsBlank(line.Text) {
			return
		}
		if p.g.IsComment(line.Text) {
			p.r.Read()
			continue
		}
		m := p.g.Match(grammar.RuleAttributeEntry, line.Text)
		if m == nil {
			return
		}
		p.r.Read()
		p.attributeEntry(m, line, false)
	}
}

// parseAuthors reads an author line. Authors are separated by semicolons.
func (p *Parser) parseAuthors(text string) []dom.Author {
	var authors []dom.Author
	for _, part := range strings.Split(text, ";") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		authors = append(authors, p.parseAuthor(part))
	}
	return authors
}

func (p *Parser) parseAuthor(text string) dom.Author {
	m := p.g.Match(grammar.RuleAuthor, text)
	if m == nil {
		return dom.Author{Name: text, Firstname: text, Initials: initials(text)}
	}
	name := func(s string) string {
		return strings.ReplaceAll(s, "_", " ")
	}
	a := dom.Author{Firstname: name(m[1]), Email: m[4]}
	if m[3] != "" {
		a.Middlename, a.Lastname = name(m[2]), name(m[3])
	} else {
		a.Lastname = name(m[2])
	}
	var parts []string
	for _, s := range []string{a.Firstname, a.Middlename, a.Lastname} {
		if s != "" {
			parts = append(parts, s)
		}
	}
	a.Name = strings.Join(parts, " ")
	a.Initials = initials(a.Firstname, a.Middlename, a.Lastname)
	return a
}

func initials(names ...string) string {
	var b strings.Builder
	for _, n := range names {
		for _, r := range n {
			b.WriteRune(unicode.ToUpper(r))
			break
		}
	}
	return b.String()
}

// parseRevision reads a revision line: "v1.0, 2024-01-02: remark". A
// single component is a revision number if it starts with 'v', and a date
// otherwise.
func parseRevision(text string) (dom.Revision, bool) {
	var rev dom.Revision
	if strings.HasPrefix(text, ":") || strings.HasPrefix(text, "[") {
		return rev, false
	}
	if i := strings.Index(text, ": "); i >= 0 {
		rev.Remark = strings.TrimSpace(text[i+2:])
		text = text[:i]
	} else {
		text = strings.TrimSuffix(text, ":")
	}
	number, date, hasDate := strings.Cut(text, ",")
	number = strings.TrimSpace(number)
	if hasDate {
		rev.Number = revnumber(number)
		rev.Date = strings.TrimSpace(date)
	} else if len(number) > 1 && number[0] == 'v' && unicode.IsDigit(rune(number[1])) {
		rev.Number = number[1:]
	} else {
		rev.Date = number
	}
	return rev, rev != dom.Revision{}
}

// revnumber strips everything up to the first digit or attribute
// reference from a revision number.
func revnumber(s string) string {
	i := strings.IndexFunc(s, func(r rune) bool {
		return unicode.IsDigit(r) || r == '{'
	})
	if i < 0 {
		return s
	}
	return s[i:]
}

// headerAttributes sets the attributes derived from the header, unless
// they have been set explicitly.
func (p *Parser) headerAttributes() {
	doc := p.doc
	if len(doc.Authors) == 0 {
		if author, ok := p.attrs.Value("author"); ok && author != "" {
			a := p.parseAuthor(author)
			if email, ok := p.attrs.Value("email"); ok {
				a.Email = email
			}
			doc.Authors = []dom.Author{a}
		}
	}
	setDefault := func(key, value string) {
		if value != "" && !p.attrs.IsSet(key) {
			p.attrs.Set(key, value)
		}
	}
	names := make([]string, len(doc.Authors))
	for i, a := range doc.Authors {
		names[i] = a.Name
		suffix := ""
		if i > 0 {
			suffix = "_" + strconv.Itoa(i+1)
		}
		setDefault("author"+suffix, a.Name)
		setDefault("firstname"+suffix, a.Firstname)
		setDefault("middlename"+suffix, a.Middlename)
		setDefault("lastname"+suffix, a.Lastname)
		setDefault("authorinitials"+suffix, a.Initials)
		setDefault("email"+suffix, a.Email)
	}
	if len(names) > 0 {
		setDefault("authors", strings.Join(names, ", "))
		setDefault("authorcount", strconv.Itoa(len(names)))
	}
	setDefault("revnumber", doc.Revision.Number)
	setDefault("revdate", doc.Revision.Date)
	setDefault("revremark", doc.Revision.Remark)
}
