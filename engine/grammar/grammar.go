package grammar

import (
	"fmt"
	"regexp"
)

// Compliance holds the flags which switch between alternative readings of
// the grammar. The zero value is not useful; start from DefaultCompliance.
type Compliance struct {
	// Delimiter lines and block attribute lines interrupt a paragraph.
	BlockTerminatesParagraph bool
	// A delimited block is closed only by a fence of the same token and length.
	CongruentBlockDelimiters bool
	// An indented (literal) paragraph extends to the next blank line. If false,
	// it ends at the first line which is not indented.
	StrictVerbatimParagraphs bool
	// Two-line section titles (title + underline) are recognized.
	UnderlineStyleSectionTitles bool
	// Policy for references to missing attributes: skip, drop, drop-line, warn.
	AttributeMissing string
	// Cross references may use a section title instead of an id.
	NaturalXrefs bool
	// Markdown-flavoured headings, fences and breaks are recognized.
	MarkdownSyntax bool
}

// DefaultCompliance returns the compliance flags of a standard processor.
func DefaultCompliance() Compliance {
	return Compliance{
		BlockTerminatesParagraph:    true,
		CongruentBlockDelimiters:    true,
		StrictVerbatimParagraphs:    true,
		UnderlineStyleSectionTitles: true,
		AttributeMissing:            "skip",
		NaturalXrefs:                true,
		MarkdownSyntax:              true,
	}
}

// Flag names a compliance flag a rule depends on.
type Flag int

// Flags rules may depend on.
const (
	Always Flag = iota
	NeedsUnderlineTitles
	NeedsMarkdown
)

// Rule is a named line pattern of the grammar.
// Rules are ordered by precedence: when a line could be read in more than
// one way, the rule with the lower precedence value wins.
type Rule struct {
	Name       string
	Pattern    *regexp.Regexp
	Precedence int
	Depends    Flag
}

// Grammar is the immutable table of rules, delimiters, quote forms and
// replacements. It is created once and shared by reader, parser and
// substitutor. A Grammar must not be modified after creation.
type Grammar struct {
	compliance   Compliance
	rules        []*Rule
	byName       map[string]*Rule
	delimiters   map[string]delimiterSpec
	quotes       []QuoteRule
	replacements []Replacement
}

var defaultGrammar = New(DefaultCompliance())

// Default returns a grammar with default compliance settings.
func Default() *Grammar {
	return defaultGrammar
}

// New creates a grammar for a set of compliance flags.
func New(c Compliance) *Grammar {
	g := &Grammar{
		compliance: c,
		byName:     make(map[string]*Rule),
		delimiters: delimiterTable(),
	}
	for i, r := range blockRules {
		if !g.enabled(r.depends) {
			continue
		}
		rule := &Rule{
			Name:       r.name,
			Pattern:    regexp.MustCompile(r.pattern),
			Precedence: i,
			Depends:    r.depends,
		}
		g.rules = append(g.rules, rule)
		g.byName[r.name] = rule
	}
	g.quotes = quoteRules()
	g.replacements = replacementRules()
	tracer().Debugf("grammar created with %d block rules, compliance %+v", len(g.rules), c)
	return g
}

func (g *Grammar) enabled(f Flag) bool {
	switch f {
	case NeedsUnderlineTitles:
		return g.compliance.UnderlineStyleSectionTitles
	case NeedsMarkdown:
		return g.compliance.MarkdownSyntax
	}
	return true
}

// Compliance returns the compliance flags the grammar was built with.
func (g *Grammar) Compliance() Compliance {
	return g.compliance
}

// WithCompliance returns a grammar for different compliance flags, sharing
// nothing mutable with g.
func (g *Grammar) WithCompliance(c Compliance) *Grammar {
	if c == g.compliance {
		return g
	}
	return New(c)
}

// Rule returns a rule by name, or nil if the rule is not part of the grammar
// (e.g., disabled by a compliance flag).
func (g *Grammar) Rule(name string) *Rule {
	return g.byName[name]
}

// Rules returns the enabled block rules in order of precedence.
func (g *Grammar) Rules() []*Rule {
	r := make([]*Rule, len(g.rules))
	copy(r, g.rules)
	return r
}

// Match matches a line against the named rule and returns the sub-matches,
// or nil for no match or a disabled rule.
func (g *Grammar) Match(name, line string) []string {
	r := g.byName[name]
	if r == nil {
		return nil
	}
	return r.Pattern.FindStringSubmatch(line)
}

// Matches reports if a line matches the named rule.
func (g *Grammar) Matches(name, line string) bool {
	r := g.byName[name]
	if r == nil {
		return false
	}
	return r.Pattern.MatchString(line)
}

// Classify returns the first rule (by precedence) out of names which
// matches line, together with its sub-matches.
func (g *Grammar) Classify(line string, names ...string) (*Rule, []string) {
	var best *Rule
	var bestMatch []string
	for _, name := range names {
		r := g.byName[name]
		if r == nil || (best != nil && r.Precedence > best.Precedence) {
			continue
		}
		if m := r.Pattern.FindStringSubmatch(line); m != nil {
			best, bestMatch = r, m
		}
	}
	return best, bestMatch
}

// Quotes returns the quote rules in order of application.
func (g *Grammar) Quotes() []QuoteRule {
	q := make([]QuoteRule, len(g.quotes))
	copy(q, g.quotes)
	return q
}

// Replacements returns the typographic replacement rules in order of application.
func (g *Grammar) Replacements() []Replacement {
	r := make([]Replacement, len(g.replacements))
	copy(r, g.replacements)
	return r
}

func (r *Rule) String() string {
	return fmt.Sprintf("rule[%d:%s]", r.Precedence, r.Name)
}
