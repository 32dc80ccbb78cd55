package subs

import (
	"strconv"
	"strings"

	"github.com/npillmayer/adoc/core"
	"github.com/npillmayer/adoc/core/locate/resources"
	"github.com/npillmayer/adoc/core/safemode"
	"github.com/npillmayer/adoc/engine/dom"
	"github.com/npillmayer/adoc/engine/grammar"
)

// Placeholders for stashed text: start mark, index, end mark.
const (
	stashStart = '\u0096'
	stashEnd   = '\u0097'
)

// Substitutor applies inline substitutions to the text of a document.
// A Substitutor is not safe for concurrent use.
type Substitutor struct {
	doc    *dom.Document
	g      *grammar.Grammar
	syntax *OutputSyntax
	loader *resources.Loader
}

// Option configures a Substitutor.
type Option func(*Substitutor)

// WithLoader sets the loader used to embed images as data URIs.
func WithLoader(l *resources.Loader) Option {
	return func(s *Substitutor) {
		s.loader = l
	}
}

// New creates a substitutor for a document. If g is nil, the default
// grammar is used; if syntax is nil, HTMLSyntax is used.
func New(doc *dom.Document, g *grammar.Grammar, syntax *OutputSyntax, opts ...Option) *Substitutor {
	if g == nil {
		g = grammar.Default()
	}
	if syntax == nil {
		syntax = HTMLSyntax
	}
	s := &Substitutor{doc: doc, g: g, syntax: syntax}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Loader returns the loader for local images, creating one which is jailed
// to the document directory if none has been set.
func (s *Substitutor) Loader() *resources.Loader {
	if s.loader == nil {
		docdir := s.doc.Attributes.ValueOr("docdir", "")
		s.loader = resources.NewLoader(safemode.NewGate(s.doc.SafeMode, docdir), nil)
	}
	return s.loader
}

// Apply substitutes text with the steps of set.
func (s *Substitutor) Apply(text string, set grammar.SubSet) string {
	return s.ApplyTo(nil, text, set)
}

// ApplyTo substitutes the text of block b. Anchors, footnotes and index
// terms found in the text are registered for b, and diagnostics carry the
// location of b. b may be nil.
func (s *Substitutor) ApplyTo(b *dom.Block, text string, set grammar.SubSet) string {
	if text == "" || set == grammar.SubsNone {
		return text
	}
	r := &run{s: s, set: set, block: b}
	return r.apply(text)
}

// run holds the state of one substitution.
type run struct {
	s       *Substitutor
	set     grammar.SubSet
	block   *dom.Block
	stashed []string
}

func (r *run) apply(text string) string {
	text = strings.Map(func(c rune) rune {
		if c == stashStart || c == stashEnd {
			return -1
		}
		return c
	}, text)
	if r.set.Has(grammar.Macros) {
		text = r.extractPassthroughs(text)
	}
	if r.set.Has(grammar.SpecialChars) {
		text = escapeSpecialChars(text)
	}
	if r.set.Has(grammar.Quotes) {
		text = r.quotes(text)
	}
	if r.set.Has(grammar.Macros) {
		text = r.macros(text)
	}
	text = r.tail(text)
	if r.set.Has(grammar.Callouts) {
		text = r.callouts(text)
	}
	return r.restore(text)
}

// tail runs the steps after macro substitution, except callouts.
func (r *run) tail(text string) string {
	if r.set.Has(grammar.Attributes) {
		text = r.attributes(text)
	}
	if r.set.Has(grammar.Replacements) {
		text = r.replacements(text)
	}
	if r.set.Has(grammar.PostReplacements) {
		text = r.postReplacements(text)
	}
	return text
}

// stash puts text aside and returns a placeholder for it.
func (r *run) stash(text string) string {
	r.stashed = append(r.stashed, text)
	return string(stashStart) + strconv.Itoa(len(r.stashed)-1) + string(stashEnd)
}

// restore replaces placeholders by the stashed text. Stashed text may
// contain placeholders itself.
func (r *run) restore(text string) string {
	for i := 0; i <= len(r.stashed) && strings.ContainsRune(text, stashStart); i++ {
		var b strings.Builder
		for {
			start := strings.IndexRune(text, stashStart)
			if start < 0 {
				b.WriteString(text)
				break
			}
			end := strings.IndexRune(text[start:], stashEnd)
			if end < 0 {
				b.WriteString(text)
				break
			}
			end += start
			b.WriteString(text[:start])
			n, err := strconv.Atoi(text[start+len(string(stashStart)) : end])
			if err == nil && n < len(r.stashed) {
				b.WriteString(r.stashed[n])
			}
			text = text[end+len(string(stashEnd)):]
		}
		text = b.String()
	}
	return text
}

func (r *run) cursor() core.Cursor {
	if r.block == nil {
		return core.Cursor{}
	}
	return r.block.Loc
}

func (r *run) blockID() dom.BlockID {
	if r.block == nil {
		return dom.NoBlock
	}
	return r.block.ID
}

func (r *run) warn(format string, v ...interface{}) {
	r.s.doc.Diag(core.EREFERENCE, r.cursor(), format, v...)
}

var specialChars = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")

func escapeSpecialChars(text string) string {
	if !strings.ContainsAny(text, "&<>") {
		return text
	}
	return specialChars.Replace(text)
}

// unescapeBrackets removes the backslash of escaped closing brackets in
// macro arguments.
func unescapeBrackets(text string) string {
	return strings.ReplaceAll(text, `\]`, "]")
}

// --- Passthroughs ----------------------------------------------------------

// extractPassthroughs stashes passthrough content. Content is escaped
// according to its passthrough form, and is not touched by any other step.
func (r *run) extractPassthroughs(text string) string {
	if strings.Contains(text, "+++") {
		text = replaceMatches(triplePlusRx, text, func(m match) string {
			if m.has(1) {
				return m.text(0)[1:]
			}
			return r.stash(m.text(2))
		})
	}
	if strings.Contains(text, "pass:") {
		text = replaceMatches(r.s.g.Inline(grammar.PassMacro), text, func(m match) string {
			if m.has(1) {
				return m.text(0)[1:]
			}
			content := unescapeBrackets(m.text(3))
			if m.has(2) {
				set, err := grammar.ResolveSubs(m.text(2), grammar.SubsNone)
				if err != nil {
					r.s.doc.Diag(core.EINVALID, r.cursor(), "pass macro: %v", err)
				}
				content = r.s.ApplyTo(r.block, content, set)
			}
			return r.stash(content)
		})
	}
	if strings.Contains(text, "$$") {
		text = replaceMatches(doubleDollarRx, text, func(m match) string {
			if m.has(1) {
				return m.text(0)[1:]
			}
			return r.stash(escapeSpecialChars(m.text(2)))
		})
	}
	if strings.Contains(text, "++") {
		text = scanSpans(text, doublePlus, func(sp span) string {
			if sp.escaped {
				return sp.source[1:]
			}
			return r.stash(escapeSpecialChars(sp.content))
		})
	}
	if strings.Contains(text, "+") {
		text = scanSpans(text, singlePlus, func(sp span) string {
			if sp.escaped {
				return sp.source[1:]
			}
			return r.stash(escapeSpecialChars(sp.content))
		})
	}
	if r.s.doc.Attributes.IsSet("compat-mode") && strings.Contains(text, "`") {
		text = scanSpans(text, compatBacktick, func(sp span) string {
			if sp.escaped {
				return sp.source[1:]
			}
			tags := r.s.syntax.Quote(grammar.Monospaced, sp.id, sp.roles)
			return r.stash(tags.Wrap(escapeSpecialChars(sp.content)))
		})
	}
	return text
}

var doublePlus = grammar.QuoteRule{Constrained: true, Open: "++", Close: "++", NotBefore: ";:}"}
var singlePlus = grammar.QuoteRule{Constrained: true, Open: "+", Close: "+", NotBefore: ";:}+"}
var compatBacktick = grammar.QuoteRule{Kind: grammar.Monospaced, Constrained: true, Open: "`", Close: "`",
	NotBefore: ";:\"'`}", NotAfter: "\"'`"}
