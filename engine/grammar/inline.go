package grammar

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

// QuoteKind is the kind of an inline quote span.
type QuoteKind int

// Quote kinds.
const (
	Strong QuoteKind = iota
	Emphasis
	Monospaced
	DoubleQuoted
	SingleQuoted
	Marked
	Superscript
	Subscript
)

func (k QuoteKind) String() string {
	switch k {
	case Strong:
		return "strong"
	case Emphasis:
		return "emphasis"
	case Monospaced:
		return "monospaced"
	case DoubleQuoted:
		return "double"
	case SingleQuoted:
		return "single"
	case Marked:
		return "mark"
	case Superscript:
		return "superscript"
	case Subscript:
		return "subscript"
	}
	return "unquoted"
}

// QuoteRule describes one quote form.
//
// A constrained span must be bounded by non-word characters (or the text's
// edges) and its content must neither start nor end with white space.
// Content of a constrained span may not start with the delimiter character,
// which leaves doubled delimiters to the unconstrained form.
type QuoteRule struct {
	Kind        QuoteKind
	Constrained bool
	Open, Close string
	NoSpace     bool   // content may not contain white space
	NotBefore   string // characters which may not precede a constrained span
	NotAfter    string // characters which may not follow a constrained span
}

func quoteRules() []QuoteRule {
	return []QuoteRule{
		{Kind: Strong, Open: "**", Close: "**"},
		{Kind: Strong, Constrained: true, Open: "*", Close: "*", NotBefore: ";:}"},
		{Kind: DoubleQuoted, Constrained: true, Open: "\"`", Close: "`\"", NotBefore: ";:}"},
		{Kind: Emphasis, Constrained: true, Open: "_", Close: "_", NotBefore: ";:}"},
		{Kind: SingleQuoted, Constrained: true, Open: "'`", Close: "`'", NotBefore: ";:`}"},
		{Kind: Monospaced, Open: "``", Close: "``"},
		{Kind: Monospaced, Constrained: true, Open: "`", Close: "`", NotBefore: ";:\"'`}", NotAfter: "\"'`"},
		{Kind: Emphasis, Open: "__", Close: "__"},
		{Kind: Marked, Open: "##", Close: "##"},
		{Kind: Marked, Constrained: true, Open: "#", Close: "#", NotBefore: "&;:}"},
		{Kind: Superscript, Open: "^", Close: "^", NoSpace: true},
		{Kind: Subscript, Open: "~", Close: "~", NoSpace: true},
	}
}

// IsWordChar returns true for characters which bind constrained quotes.
func IsWordChar(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.Is(unicode.Pc, r) ||
		unicode.Is(unicode.M, r)
}

// --- Replacements ----------------------------------------------------------

// BoundaryPolicy controls which part of a replacement match is replaced.
type BoundaryPolicy int

// Boundary policies of replacements.
const (
	PolicyNone     BoundaryPolicy = iota // replace the whole match
	PolicyLeading                        // keep group 1 in front of the replacement
	PolicyBounding                       // keep group 1 and group 2 around the replacement
)

// Replacement is a typographic replacement rule. A match which contains a
// backslash is escaped: it is emitted with the backslash removed.
type Replacement struct {
	Name      string
	Pattern   *regexp.Regexp
	Text      string
	Policy    BoundaryPolicy
	Lookahead func(rune) bool // if non-nil, must hold for the character following the match
}

func isAlphaRune(r rune) bool {
	return unicode.IsLetter(r)
}

func replacementRules() []Replacement {
	rx := regexp.MustCompile
	return []Replacement{
		{Name: "copyright", Pattern: rx(`\\?\(C\)`), Text: "&#169;"},
		{Name: "registered", Pattern: rx(`\\?\(R\)`), Text: "&#174;"},
		{Name: "trademark", Pattern: rx(`\\?\(TM\)`), Text: "&#8482;"},
		{Name: "em-dash-spaced", Pattern: rx(`(?m)(?:^|\n| |\\)--(?: |\n|$)`), Text: "&#8201;&#8212;&#8201;"},
		{Name: "em-dash", Pattern: rx(`([` + wordClass + `])\\?--`), Text: "&#8212;&#8203;",
			Policy: PolicyLeading, Lookahead: IsWordChar},
		{Name: "ellipsis", Pattern: rx(`\\?\.\.\.`), Text: "&#8230;&#8203;"},
		{Name: "closing-single-quote", Pattern: rx("\\\\?`'"), Text: "&#8217;"},
		{Name: "apostrophe", Pattern: rx(`([\p{L}\p{N}])\\?'`), Text: "&#8217;",
			Policy: PolicyLeading, Lookahead: isAlphaRune},
		{Name: "right-arrow", Pattern: rx(`\\?-&gt;`), Text: "&#8594;"},
		{Name: "right-double-arrow", Pattern: rx(`\\?=&gt;`), Text: "&#8658;"},
		{Name: "left-arrow", Pattern: rx(`\\?&lt;-`), Text: "&#8592;"},
		{Name: "left-double-arrow", Pattern: rx(`\\?&lt;=`), Text: "&#8656;"},
		{Name: "restore-entity", Pattern: rx(`\\?(&)amp;((?:[a-zA-Z][a-zA-Z]+\d{0,2}|#\d\d\d{0,4}|#x[\da-fA-F][\da-fA-F][\da-fA-F]{0,3});)`),
			Text: "", Policy: PolicyBounding},
	}
}

// --- Inline macros ---------------------------------------------------------

// Names of inline patterns.
const (
	InlineAnchor       = "inline-anchor"
	InlineBiblioAnchor = "inline-biblio-anchor"
	InlineImage        = "inline-image"
	InlineIndexTerm    = "inline-indexterm"
	InlineConcealed    = "inline-indexterm-concealed"
	InlineFlowTerm     = "inline-indexterm-flow"
	InlineLink         = "inline-link"
	InlineLinkMacro    = "inline-link-macro"
	InlineEmail        = "inline-email"
	InlineFootnote     = "inline-footnote"
	InlineXref         = "inline-xref"
	PassMacro          = "pass-macro"
	HardBreak          = "hard-break"
)

var inlinePatterns = map[string]*regexp.Regexp{
	InlineAnchor: regexp.MustCompile(`(\\)?(?:\[\[(` + idStart + idContinue + `*)(?:, *(.+?))?\]\]|anchor:(` +
		idStart + idContinue + `*)\[(?:\]|(.*?[^\\])\]))`),
	InlineBiblioAnchor: regexp.MustCompile(`(\\)?\[\[\[(` + idStart + idContinue + `*)(?:, *(.+?))?\]\]\]`),
	InlineImage:        regexp.MustCompile(`(?s)(\\)?(image|icon):([^:\s\[](?:[^\n\[]*[^\s\[])?)\[(|.*?[^\\])\]`),
	InlineIndexTerm:    regexp.MustCompile(`(?s)(\\)?(indexterm2?):\[(.*?[^\\])\]`),
	InlineConcealed:    regexp.MustCompile(`(?s)(\\)?\(\(\((.+?)\)\)\)`),
	InlineFlowTerm:     regexp.MustCompile(`(?s)(\\)?\(\(([^(].*?)\)\)`),
	InlineLink: regexp.MustCompile(`(?s)(^|link:|[ \t\n]|&lt;|[>\(\)\[\];"'])(\\?(?:https?|file|ftp|irc)://)` +
		`(?:([^\s\[\]]+)\[(|.*?[^\\])\]|([^\s\[\]<]*([^\s,.?!\[\]<\)])))`),
	InlineLinkMacro: regexp.MustCompile(`(?s)(\\)?(?:link|(mailto)):(|[^:\s\[][^\s\[]*)\[(|.*?[^\\])\]`),
	InlineEmail: regexp.MustCompile(`([\\>:/])?[` + wordClass + `](?:&amp;|[` + wordClass + `\-.%+])*@[\p{L}\p{N}]` +
		`[\p{L}\p{N}_\-.]*\.[a-z]{2,5}\b`),
	InlineFootnote: regexp.MustCompile(`(?s)(\\)?footnote(?:(ref):|:([` + wordClass + `\-]+)?)\[(|.*?[^\\])\]`),
	InlineXref: regexp.MustCompile(`(?s)(\\)?(?:&lt;&lt;([` + wordClass + `#/.:{].*?)&gt;&gt;|xref:([` +
		wordClass + `#/.:{].*?)\[(|.*?[^\\])\])`),
	PassMacro: regexp.MustCompile(`(?s)(\\)?pass:([a-z]+(?:,[a-z\-]+)*)?\[(|.*?[^\\])\]`),
	HardBreak: regexp.MustCompile(`(?m)^(.*) \+$`),
}

// Inline returns a named inline pattern, or nil.
func (g *Grammar) Inline(name string) *regexp.Regexp {
	return inlinePatterns[name]
}

// --- Callouts --------------------------------------------------------------

// CalloutMark is a callout marker found at the end of a verbatim line.
type CalloutMark struct {
	Ordinal    string // digits, or "." for auto-numbered
	Escaped    bool
	Start, End int // byte range in the line, including a comment prefix
}

// TrailingCallouts finds the callout markers at the end of a line, in
// left-to-right order. lt and gt are the marker brackets ("<" and ">" for raw
// text, "&lt;" and "&gt;" after special character replacement). A marker may
// be preceded by a line comment token (//, #, --, ;;) and may be written in
// XML comment form (<!--1-->).
func TrailingCallouts(line, lt, gt string) []CalloutMark {
	var marks []CalloutMark
	end := len(strings.TrimRight(line, " \t"))
	for end > 0 {
		m, ok := calloutBefore(line[:end], lt, gt)
		if !ok {
			break
		}
		marks = append(marks, m)
		end = len(strings.TrimRight(line[:m.Start], " \t"))
	}
	for i, j := 0, len(marks)-1; i < j; i, j = i+1, j-1 {
		marks[i], marks[j] = marks[j], marks[i]
	}
	return marks
}

// Number returns the ordinal of a marker. Auto-numbered markers take the
// next value of *auto.
func (m CalloutMark) Number(auto *int) int {
	if m.Ordinal == "." {
		*auto++
		return *auto
	}
	n, _ := strconv.Atoi(m.Ordinal)
	return n
}

func calloutBefore(s, lt, gt string) (CalloutMark, bool) {
	if !strings.HasSuffix(s, gt) {
		return CalloutMark{}, false
	}
	body := s[:len(s)-len(gt)]
	xml := strings.HasSuffix(body, "--")
	if xml {
		body = body[:len(body)-2]
	}
	i := len(body)
	for i > 0 && body[i-1] >= '0' && body[i-1] <= '9' {
		i--
	}
	ordinal := body[i:]
	if ordinal == "" {
		if i > 0 && body[i-1] == '.' {
			i--
			ordinal = "."
		} else {
			return CalloutMark{}, false
		}
	}
	body = body[:i]
	if xml {
		if !strings.HasSuffix(body, "!--") {
			return CalloutMark{}, false
		}
		body = body[:len(body)-3]
	} else if strings.HasSuffix(body, "!") {
		body = body[:len(body)-1]
	}
	if !strings.HasSuffix(body, lt) {
		return CalloutMark{}, false
	}
	start := len(body) - len(lt)
	mark := CalloutMark{Ordinal: ordinal, End: len(s)}
	if start > 0 && s[start-1] == '\\' {
		mark.Escaped = true
		start--
	}
	for _, prefix := range []string{"// ", "//", "# ", "#", "-- ", "--", ";; ", ";;"} {
		if strings.HasSuffix(s[:start], prefix) {
			start -= len(prefix)
			break
		}
	}
	mark.Start = start
	return mark, true
}
