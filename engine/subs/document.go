package subs

import (
	"strings"

	"github.com/npillmayer/adoc/engine/dom"
	"github.com/npillmayer/adoc/engine/grammar"
)

// Document substitutes all blocks of a parsed document. See
// Substitutor.Document.
func Document(doc *dom.Document, g *grammar.Grammar, syntax *OutputSyntax, opts ...Option) {
	New(doc, g, syntax, opts...).Document()
}

// Document substitutes the titles, terms and content of all blocks in
// document order. Attribute entries of the body are replayed on the way,
// starting from the header snapshot, so each block sees the attributes in
// effect at its position.
//
// Substitution runs in two passes. The first pass substitutes section
// titles, which become the default text of cross references. The second
// pass substitutes everything else.
func (s *Substitutor) Document() {
	doc := s.doc
	s.collectAnchors()
	s.replay(func(b *dom.Block) {
		switch b.Context {
		case dom.CtxDocument, dom.CtxSection, dom.CtxFloatingTitle:
			s.title(b)
		}
	})
	doc.Callouts.Rewind()
	s.replay(s.block)
	tracer().Infof("substituted %d blocks, %d diagnostics", len(doc.Blocks), len(doc.Diagnostics))
}

// replay walks the document with the attribute entries of each block
// applied before the block is visited.
func (s *Substitutor) replay(visit func(b *dom.Block)) {
	attrs := s.doc.Attributes
	if !s.doc.Header.IsZero() {
		attrs.Restore(s.doc.Header)
	}
	s.doc.Walk(func(b *dom.Block, _ int) dom.WalkResult {
		for _, e := range b.Entries {
			if e.Unset {
				attrs.Unset(e.Name)
			} else {
				attrs.Set(e.Name, e.Value)
			}
		}
		visit(b)
		return dom.WalkContinue
	})
}

// collectAnchors registers the inline anchors of all blocks before
// substitution, so that cross references may point forward.
func (s *Substitutor) collectAnchors() {
	collect := func(b *dom.Block, text string) {
		if !strings.Contains(text, "[[") && !strings.Contains(text, "anchor:") {
			return
		}
		for _, m := range s.g.Inline(grammar.InlineBiblioAnchor).FindAllStringSubmatch(text, -1) {
			if m[1] == "" {
				s.doc.Refs.Register(dom.Ref{ID: m[2], Kind: dom.RefBibliography, Block: b.ID, Reftext: m[3]})
			}
		}
		for _, m := range s.g.Inline(grammar.InlineAnchor).FindAllStringSubmatch(text, -1) {
			if m[1] != "" {
				continue
			}
			if m[2] != "" {
				s.doc.Refs.Register(dom.Ref{ID: m[2], Kind: dom.RefInline, Block: b.ID, Reftext: m[3]})
			} else {
				s.doc.Refs.Register(dom.Ref{ID: m[4], Kind: dom.RefInline, Block: b.ID, Reftext: unescapeBrackets(m[5])})
			}
		}
	}
	s.doc.Walk(func(b *dom.Block, _ int) dom.WalkResult {
		if b.RawTitle != "" {
			collect(b, b.RawTitle)
		}
		for _, term := range b.Terms {
			collect(b, term)
		}
		if b.Subs.Has(grammar.Macros) {
			collect(b, b.Source())
		}
		return dom.WalkContinue
	})
}

// title substitutes the title of a block.
func (s *Substitutor) title(b *dom.Block) {
	if b.RawTitle != "" && b.Title == "" {
		b.Title = s.ApplyTo(b, b.RawTitle, grammar.SubsTitle)
	}
}

// block substitutes a single block.
func (s *Substitutor) block(b *dom.Block) {
	if b.Context == dom.CtxComment {
		return
	}
	s.title(b)
	if len(b.Terms) > 0 && len(b.TermText) == 0 {
		b.TermText = make([]string, len(b.Terms))
		for i, term := range b.Terms {
			b.TermText[i] = s.ApplyTo(b, term, grammar.SubsNormal)
		}
	}
	switch b.Context {
	case dom.CtxImage:
		s.imageBlock(b)
	case dom.CtxVideo, dom.CtxAudio:
		b.Target = s.ApplyTo(b, b.Target, grammar.SubSet(grammar.Attributes))
	case dom.CtxColist:
		s.doc.Callouts.NextList()
	case dom.CtxTable:
	default:
		if len(b.Lines) > 0 {
			b.Content = s.ApplyTo(b, b.Source(), b.Subs)
		}
	}
	s.caption(b)
}

// imageBlock creates the markup of a block image.
func (s *Substitutor) imageBlock(b *dom.Block) {
	r := &run{s: s, set: grammar.SubSet(grammar.Attributes), block: b}
	target := r.interpolate(b.Target)
	al := b.Attrs
	if al == nil {
		al = dom.NewAttributeList()
	}
	alt, ok := al.Named("alt")
	if !ok {
		alt = DefaultAlt(target)
	}
	b.Content = s.syntax.Image(s.ImageURI(target, b.Loc), alt, al)
}

// captionKeys maps contexts to the prefix of their caption attributes.
var captionKeys = map[dom.Context]string{
	dom.CtxExample: "example",
	dom.CtxTable:   "table",
	dom.CtxImage:   "figure",
	dom.CtxListing: "listing",
}

// caption numbers titled blocks, e.g. "Table 2. ", and labels admonitions.
// A block attribute 'caption' overrides the generated caption.
func (s *Substitutor) caption(b *dom.Block) {
	attrs := s.doc.Attributes
	if b.Context == dom.CtxAdmonition {
		name := strings.ToLower(b.Style)
		if name == "" {
			return
		}
		b.Caption = attrs.ValueOr(name+"-caption", strings.ToUpper(name[:1])+name[1:])
		return
	}
	if b.Title == "" || b.Caption != "" {
		return
	}
	if c, ok := b.Attr("caption"); ok {
		b.Caption = c
		return
	}
	key, ok := captionKeys[b.Context]
	if !ok {
		return
	}
	label, ok := attrs.Value(key + "-caption")
	if !ok || label == "" {
		return
	}
	n := attrs.Counter(key+"-number", "")
	b.Caption = label + " " + n + ". "
}
