package grammar

import (
	"strings"
)

// Character classes shared by the rules. Word characters include letters
// of all scripts, marks, decimal digits and connector punctuation.
const (
	wordClass  = `\p{L}\p{M}\p{Nd}\p{Pc}`
	idStart    = `[\p{L}_:]`
	idContinue = `[` + wordClass + `:.\-]`
)

// Names of the block-level rules.
const (
	RuleComment          = "comment"
	RuleAttributeEntry   = "attribute-entry"
	RuleBlockAnchor      = "block-anchor"
	RuleBlockAttributes  = "block-attribute-list"
	RuleBlockTitle       = "block-title"
	RuleSectionTitle     = "section-title"
	RuleMarkdownTitle    = "markdown-section-title"
	RuleSetextTitle      = "setext-title"
	RuleSetextUnderline  = "setext-underline"
	RuleThematicBreak    = "thematic-break"
	RuleMarkdownBreak    = "markdown-thematic-break"
	RulePageBreak        = "page-break"
	RuleBlockMacro       = "block-macro"
	RuleCalloutList      = "callout-list"
	RuleUnorderedList    = "unordered-list"
	RuleOrderedList      = "ordered-list"
	RuleDescriptionList  = "description-list"
	RuleListContinuation = "list-continuation"
	RuleAdmonition       = "admonition"
	RuleLiteralLine      = "literal-line"
	RuleConditional      = "conditional"
	RuleEvalExpression   = "eval-expression"
	RuleInclude          = "include"
	RuleTagDirective     = "tag-directive"
	RuleAuthor           = "author"
	RuleColspec          = "colspec"
	RuleCellspecStart    = "cellspec-start"
	RuleCellspecEnd      = "cellspec-end"
)

type ruleDef struct {
	name    string
	pattern string
	depends Flag
}

// blockRules is ordered by precedence.
var blockRules = []ruleDef{
	{RuleComment, `^//(?:$|[^/].*$)`, Always},
	{RuleConditional, `^(\\)?(ifdef|ifndef|ifeval|endif)::(\S*?(?:([,+])\S*?)?)\[(.+)?\]$`, Always},
	{RuleInclude, `^(\\)?include::([^\s\[](?:[^\[]*[^\s\[])?)\[(.*)\]$`, Always},
	{RuleAttributeEntry, `^:(!?[` + wordClass + `][^:]*):(?:[ \t]+(.*))?$`, Always},
	{RuleBlockAnchor, `^\[\[(?:|(` + idStart + idContinue + `*)(?:, *(.+))?)\]\]$`, Always},
	{RuleBlockAttributes, `^\[(|[` + wordClass + `.#%{,"'].*)\]$`, Always},
	{RuleBlockTitle, `^\.(\.?[^ \t.].*)$`, Always},
	{RuleSectionTitle, `^(=={0,5})[ \t]+(.+)$`, Always},
	{RuleMarkdownTitle, `^(##{0,5})[ \t]+(.+)$`, NeedsMarkdown},
	{RuleSetextTitle, `^[^.\s].*[` + wordClass + `].*$|^[` + wordClass + `]$`, NeedsUnderlineTitles},
	{RuleSetextUnderline, `^(?:=+|-+|~+|\^+|\++)$`, NeedsUnderlineTitles},
	{RuleThematicBreak, `^'{3,}$`, Always},
	{RuleMarkdownBreak, `^(?:---|\*\*\*|___|- - -|\* \* \*|_ _ _)$`, NeedsMarkdown},
	{RulePageBreak, `^<{3,}$`, Always},
	{RuleBlockMacro, `^(image|video|audio|toc)::(|\S|\S.*?\S)\[(.*)\]$`, Always},
	{RuleCalloutList, `^<(\d+|\.)>[ \t]+(.*)$`, Always},
	{RuleUnorderedList, `^[ \t]*(-|\*{1,5}|\x{2022}{1,5})[ \t]+(.*)$`, Always},
	{RuleOrderedList, `^[ \t]*(\.{1,5}|\d+\.|[a-zA-Z]\.|[IVXivx]+\))[ \t]+(.*)$`, Always},
	{RuleDescriptionList, `^[ \t]*([^ \t]|[^ \t].*?[^ \t])(::::|:::|::|;;)(?:$|[ \t]+(.*)$)`, Always},
	{RuleListContinuation, `^\+$`, Always},
	{RuleAdmonition, `^(NOTE|TIP|IMPORTANT|WARNING|CAUTION):[ \t]+(.*)$`, Always},
	{RuleLiteralLine, `^[ \t]+\S.*$`, Always},
	{RuleEvalExpression, `^(.+?)[ \t]*(==|!=|<=|>=|<|>)[ \t]*(.+)$`, Always},
	{RuleTagDirective, `(?:^|[^` + wordClass + `])(tag|end)::(\S+?)\[\](?:$|[ \r])`, Always},
	{RuleAuthor, `^([` + wordClass + `][` + wordClass + `\-'.]*)(?: +([` + wordClass + `][` + wordClass + `\-'.]*))?(?: +([` + wordClass + `][` + wordClass + `\-'.]*))?(?: +<([^>]+)>)?$`, Always},
	{RuleColspec, `^(?:(\d+)\*)?([<^>])?(?:\.([<^>]))?(\d+%?|~)?([a-z])?$`, Always},
	{RuleCellspecStart, `^[ \t]*(?:(\d+(?:\.\d*)?|(?:\d*\.)?\d+)([*+]))?([<^>](?:\.[<^>]?)?|(?:[<^>]?\.)?[<^>])?([a-z])?$`, Always},
	{RuleCellspecEnd, `[ \t]+(?:(\d+(?:\.\d*)?|(?:\d*\.)?\d+)([*+]))?([<^>](?:\.[<^>]?)?|(?:[<^>]?\.)?[<^>])?([a-z])?$`, Always},
}

// --- Sections --------------------------------------------------------------

// SectionTitle matches an ATX style section title ("== Title" or, with
// markdown syntax, "## Title"). It returns the level (markers - 1) and the
// title with an optional closing marker run removed. A marker run of
// seven or more does not match.
func (g *Grammar) SectionTitle(line string) (level int, title string, ok bool) {
	m := g.Match(RuleSectionTitle, line)
	if m == nil {
		if m = g.Match(RuleMarkdownTitle, line); m == nil {
			return 0, "", false
		}
	}
	marker, title := m[1], strings.TrimRight(m[2], " \t")
	if strings.HasSuffix(title, " "+marker) || strings.HasSuffix(title, "\t"+marker) {
		title = strings.TrimRight(title[:len(title)-len(marker)], " \t")
	}
	if title == "" {
		return 0, "", false
	}
	return len(marker) - 1, title, true
}

var setextLevels = map[byte]int{'=': 0, '-': 1, '~': 2, '^': 3, '+': 4}

// SetextLevel returns the section level for an underline character.
func SetextLevel(c byte) (int, bool) {
	l, ok := setextLevels[c]
	return l, ok
}

// SetextTitle checks if two lines form an underline style section title.
// The underline must consist of one repeated character from the level table
// and its length must be within ±2 of the title's length.
func (g *Grammar) SetextTitle(title, underline string) (level int, ok bool) {
	if !g.compliance.UnderlineStyleSectionTitles {
		return 0, false
	}
	if !g.Matches(RuleSetextTitle, title) || !g.Matches(RuleSetextUnderline, underline) {
		return 0, false
	}
	if len(underline) < 2 && len([]rune(title)) > 2 {
		return 0, false
	}
	diff := len([]rune(title)) - len(underline)
	if diff < -2 || diff > 2 {
		return 0, false
	}
	return setextLevels[underline[0]], true
}

// --- Lists -----------------------------------------------------------------

// ListKind distinguishes the list contexts.
type ListKind int

// The list contexts.
const (
	NoList ListKind = iota
	Unordered
	Ordered
	Description
	Callout
)

func (k ListKind) String() string {
	switch k {
	case Unordered:
		return "ulist"
	case Ordered:
		return "olist"
	case Description:
		return "dlist"
	case Callout:
		return "colist"
	}
	return "none"
}

// ListItem is the result of matching a list item line.
type ListItem struct {
	Kind   ListKind
	Marker string // marker as written ("**", "2.", "::", "<1>")
	Key    string // marker identity used for nesting decisions
	Style  string // numbering style for ordered lists
	Term   string // description list term
	Text   string
}

// MatchListItem recognizes a list item line. The rules are tried in order
// callout, unordered, ordered, description; "a." therefore reads as an
// ordered item, never as text.
func (g *Grammar) MatchListItem(line string) (ListItem, bool) {
	if m := g.Match(RuleCalloutList, line); m != nil {
		return ListItem{Kind: Callout, Marker: "<" + m[1] + ">", Key: "<>", Text: m[2]}, true
	}
	if m := g.Match(RuleUnorderedList, line); m != nil {
		mk := m[1]
		if mk == "-" || strings.HasPrefix(mk, "*") {
			return ListItem{Kind: Unordered, Marker: mk, Key: mk, Text: m[2]}, true
		}
		// bullets are equivalent to asterisks
		n := len([]rune(mk))
		return ListItem{Kind: Unordered, Marker: mk, Key: strings.Repeat("*", n), Text: m[2]}, true
	}
	if m := g.Match(RuleOrderedList, line); m != nil {
		style := OrderedListStyle(m[1])
		key := style
		if strings.Trim(m[1], ".") == "" {
			key = m[1]
		}
		return ListItem{Kind: Ordered, Marker: m[1], Key: key, Style: style, Text: m[2]}, true
	}
	if m := g.Match(RuleDescriptionList, line); m != nil {
		term := strings.TrimSpace(m[1])
		if strings.HasPrefix(term, "//") {
			return ListItem{}, false
		}
		return ListItem{Kind: Description, Marker: m[2], Key: m[2], Term: term, Text: m[3]}, true
	}
	return ListItem{}, false
}

// OrderedListStyle returns the numbering style of an ordered list marker.
func OrderedListStyle(marker string) string {
	if strings.Trim(marker, ".") == "" {
		switch len(marker) {
		case 2:
			return "loweralpha"
		case 3:
			return "lowerroman"
		case 4:
			return "upperalpha"
		case 5:
			return "upperroman"
		}
		return "arabic"
	}
	if strings.HasSuffix(marker, ")") {
		r := marker[:len(marker)-1]
		if strings.ToLower(r) == r {
			return "lowerroman"
		}
		return "upperroman"
	}
	r := marker[:len(marker)-1]
	if r[0] >= '0' && r[0] <= '9' {
		return "arabic"
	}
	if r[0] >= 'a' && r[0] <= 'z' {
		return "loweralpha"
	}
	return "upperalpha"
}

// OrdinalOf returns the ordinal number a marker denotes (1 for "1.", "a.",
// "i)"), or 0 if the marker does not carry an ordinal.
func OrdinalOf(marker string) int {
	if marker == "" || strings.Trim(marker, ".") == "" {
		return 0
	}
	r := marker[:len(marker)-1]
	switch OrderedListStyle(marker) {
	case "arabic":
		n := 0
		for _, c := range r {
			n = n*10 + int(c-'0')
		}
		return n
	case "loweralpha":
		return int(r[0]-'a') + 1
	case "upperalpha":
		return int(r[0]-'A') + 1
	}
	return RomanToInt(r)
}

var romanValues = []struct {
	n int
	s string
}{
	{1000, "m"}, {900, "cm"}, {500, "d"}, {400, "cd"}, {100, "c"}, {90, "xc"},
	{50, "l"}, {40, "xl"}, {10, "x"}, {9, "ix"}, {5, "v"}, {4, "iv"}, {1, "i"},
}

// RomanToInt converts a roman numeral (either case) to an integer.
// It returns 0 for illegal numerals.
func RomanToInt(s string) int {
	s = strings.ToLower(s)
	n, i := 0, 0
	for _, rv := range romanValues {
		for strings.HasPrefix(s[i:], rv.s) {
			n += rv.n
			i += len(rv.s)
		}
	}
	if i != len(s) {
		return 0
	}
	return n
}

// IntToRoman converts a positive integer to a lower-case roman numeral.
func IntToRoman(n int) string {
	if n <= 0 {
		return ""
	}
	var b strings.Builder
	for _, rv := range romanValues {
		for n >= rv.n {
			b.WriteString(rv.s)
			n -= rv.n
		}
	}
	return b.String()
}

// --- Admonitions -----------------------------------------------------------

// AdmonitionStyles are the admonition labels, upper-case.
var AdmonitionStyles = []string{"NOTE", "TIP", "IMPORTANT", "WARNING", "CAUTION"}

// IsAdmonition returns true if style names an admonition.
func IsAdmonition(style string) bool {
	for _, s := range AdmonitionStyles {
		if s == style {
			return true
		}
	}
	return false
}

// --- Misc ------------------------------------------------------------------

// IsComment returns true for a single-line comment.
func (g *Grammar) IsComment(line string) bool {
	return strings.HasPrefix(line, "//") && !strings.HasPrefix(line, "///")
}

// IsBlank returns true for lines containing only whitespace.
func IsBlank(line string) bool {
	return strings.TrimSpace(line) == ""
}
