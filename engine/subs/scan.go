package subs

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/npillmayer/adoc/engine/dom"
	"github.com/npillmayer/adoc/engine/grammar"
)

var (
	triplePlusRx   = regexp.MustCompile(`(?s)(\\)?\+\+\+(.*?)\+\+\+`)
	doubleDollarRx = regexp.MustCompile(`(?s)(\\)?\$\$(.*?)\$\$`)
)

// match is a regular expression match with its sub-matches.
type match struct {
	src string
	loc []int
}

// has is true if group n took part in the match.
func (m match) has(n int) bool {
	return 2*n+1 < len(m.loc) && m.loc[2*n] >= 0
}

// text returns group n, or "" if it did not take part in the match.
func (m match) text(n int) string {
	if !m.has(n) {
		return ""
	}
	return m.src[m.loc[2*n]:m.loc[2*n+1]]
}

// end returns the end offset of the match in the source text.
func (m match) end() int {
	return m.loc[1]
}

// replaceMatches replaces all matches of rx with the result of fn.
func replaceMatches(rx *regexp.Regexp, text string, fn func(m match) string) string {
	locs := rx.FindAllStringSubmatchIndex(text, -1)
	if locs == nil {
		return text
	}
	var b strings.Builder
	last := 0
	for _, loc := range locs {
		b.WriteString(text[last:loc[0]])
		b.WriteString(fn(match{src: text, loc: loc}))
		last = loc[1]
	}
	b.WriteString(text[last:])
	return b.String()
}

// span is a quoted span of text found by scanSpans.
type span struct {
	source  string // the complete match, including backslash and attribute prefix
	content string
	id      string
	roles   []string
	escaped bool
}

// scanSpans finds the spans of one quote rule in a single left-to-right
// scan and replaces them with the result of fn.
func scanSpans(text string, q grammar.QuoteRule, fn func(sp span) string) string {
	if !strings.Contains(text, q.Open) {
		return text
	}
	var b strings.Builder
	pos, i := 0, 0
	for i < len(text) {
		j := strings.Index(text[i:], q.Open)
		if j < 0 {
			break
		}
		j += i
		sp, start, end, ok := matchSpan(text, pos, j, q)
		if !ok {
			i = j + 1
			continue
		}
		b.WriteString(text[pos:start])
		b.WriteString(fn(sp))
		pos, i = end, end
	}
	b.WriteString(text[pos:])
	return b.String()
}

// matchSpan tries to match a span with its opening delimiter at j. Text
// before pos has been consumed already. It returns the span and its start
// and end offsets.
func matchSpan(text string, pos, j int, q grammar.QuoteRule) (span, int, int, bool) {
	if k, inner, ok := attributePrefix(text, pos, j); ok {
		if id, roles, ok := parseQuoteAttributes(inner); ok {
			if sp, start, end, ok := matchSpanAt(text, pos, k, j, q); ok {
				sp.id, sp.roles = id, roles
				return sp, start, end, true
			}
		}
	}
	return matchSpanAt(text, pos, j, j, q)
}

// matchSpanAt matches a span starting at start (an attribute prefix or the
// opening delimiter at j).
func matchSpanAt(text string, pos, start, j int, q grammar.QuoteRule) (span, int, int, bool) {
	escaped := start-1 >= pos && text[start-1] == '\\'
	if escaped {
		start--
	}
	if q.Constrained && start > 0 {
		before, _ := utf8.DecodeLastRuneInString(text[:start])
		if grammar.IsWordChar(before) || strings.ContainsRune(q.NotBefore, before) {
			return span{}, 0, 0, false
		}
	}
	cstart := j + len(q.Open)
	if cstart >= len(text) {
		return span{}, 0, 0, false
	}
	if q.Constrained {
		first, _ := utf8.DecodeRuneInString(text[cstart:])
		if unicode.IsSpace(first) || strings.HasPrefix(text[cstart:], q.Open[:1]) {
			return span{}, 0, 0, false
		}
	}
	from := cstart + 1
	for from <= len(text) {
		c := strings.Index(text[from:], q.Close)
		if c < 0 {
			return span{}, 0, 0, false
		}
		c += from
		content := text[cstart:c]
		end := c + len(q.Close)
		if q.NoSpace && strings.IndexFunc(content, unicode.IsSpace) >= 0 {
			return span{}, 0, 0, false
		}
		if q.Constrained {
			last, _ := utf8.DecodeLastRuneInString(content)
			ok := !unicode.IsSpace(last)
			if ok && end < len(text) {
				after, _ := utf8.DecodeRuneInString(text[end:])
				ok = !grammar.IsWordChar(after) && !strings.ContainsRune(q.NotAfter, after)
			}
			if !ok {
				from = c + 1
				continue
			}
		}
		sp := span{source: text[start:end], content: content, escaped: escaped}
		return sp, start, end, true
	}
	return span{}, 0, 0, false
}

// attributePrefix finds an attribute list `[...]` immediately in front of
// position j. Anchors `[[...]]` are not attribute lists.
func attributePrefix(text string, pos, j int) (int, string, bool) {
	if j == 0 || text[j-1] != ']' {
		return 0, "", false
	}
	k := strings.LastIndexByte(text[pos:j-1], '[')
	if k < 0 {
		return 0, "", false
	}
	k += pos
	inner := text[k+1 : j-1]
	if inner == "" || strings.ContainsAny(inner, "[]\n") || (k > 0 && text[k-1] == '[') {
		return 0, "", false
	}
	return k, inner, true
}

// parseQuoteAttributes reads the id and roles of a quote attribute prefix,
// e.g. `[#id.role]` or `[role]`.
func parseQuoteAttributes(inner string) (string, []string, bool) {
	al, err := dom.ParseBlockAttributes(inner)
	if err != nil {
		return "", nil, false
	}
	var roles []string
	if style := al.Style(); style != "" {
		roles = append(roles, strings.Fields(style)...)
	}
	roles = append(roles, al.Roles()...)
	return al.ID(), roles, true
}
