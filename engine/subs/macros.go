package subs

import (
	"path"
	"strings"

	"github.com/npillmayer/adoc/core"
	"github.com/npillmayer/adoc/core/locate/resources"
	"github.com/npillmayer/adoc/engine/dom"
	"github.com/npillmayer/adoc/engine/grammar"
)

// macros runs the inline macro families in a fixed order. Results are
// stashed, except for text enclosed by links and xrefs, which stays in the
// flow for the steps to come.
func (r *run) macros(text string) string {
	if strings.Contains(text, "[[") || strings.Contains(text, "anchor:") {
		text = r.anchors(text)
	}
	if strings.Contains(text, "image:") || strings.Contains(text, "icon:") {
		text = r.images(text)
	}
	if strings.Contains(text, "((") || strings.Contains(text, "indexterm") {
		text = r.indexTerms(text)
	}
	if strings.Contains(text, ":") || strings.Contains(text, "@") {
		text = r.links(text)
	}
	if strings.Contains(text, "footnote") {
		text = r.footnotes(text)
	}
	if strings.Contains(text, "&lt;&lt;") || strings.Contains(text, "xref:") {
		text = r.xrefs(text)
	}
	return text
}

// --- Anchors ---------------------------------------------------------------

func (r *run) anchors(text string) string {
	g := r.s.g
	text = replaceMatches(g.Inline(grammar.InlineBiblioAnchor), text, func(m match) string {
		if m.has(1) {
			return m.text(0)[1:]
		}
		id, reftext := m.text(2), m.text(3)
		r.register(dom.Ref{ID: id, Kind: dom.RefBibliography, Block: r.blockID(), Reftext: reftext})
		return r.stash(r.s.syntax.Bibref(id, reftext))
	})
	return replaceMatches(g.Inline(grammar.InlineAnchor), text, func(m match) string {
		if m.has(1) {
			return m.text(0)[1:]
		}
		id, reftext := m.text(2), m.text(3)
		if !m.has(2) {
			id, reftext = m.text(4), unescapeBrackets(m.text(5))
		}
		r.register(dom.Ref{ID: id, Kind: dom.RefInline, Block: r.blockID(), Reftext: reftext})
		return r.stash(r.s.syntax.Anchor(id, reftext))
	})
}

// register adds an inline anchor to the catalog. Anchors collected before
// substitution are registered already and are not reported as duplicates.
func (r *run) register(ref dom.Ref) {
	if r.s.doc.Refs.Register(ref) {
		return
	}
	if prev, ok := r.s.doc.Refs.Lookup(ref.ID); ok && prev.Block != ref.Block {
		r.s.doc.Diag(core.EINVALID, r.cursor(), "id assigned already: %s", ref.ID)
	}
}

// --- Images and icons ------------------------------------------------------

func (r *run) images(text string) string {
	return replaceMatches(r.s.g.Inline(grammar.InlineImage), text, func(m match) string {
		if m.has(1) {
			return m.text(0)[1:]
		}
		kind, target := m.text(2), r.interpolate(m.text(3))
		al, err := dom.ParseAttributeList(unescapeBrackets(m.text(4)))
		if err != nil {
			r.s.doc.Diag(core.EINVALID, r.cursor(), "%s macro: %v", kind, err)
			return m.text(0)
		}
		if kind == "icon" {
			al.MapPositional("size")
			return r.stash(r.s.syntax.Icon(target, al))
		}
		al.MapPositional("alt", "width", "height")
		alt, ok := al.Named("alt")
		if !ok {
			alt = DefaultAlt(target)
		}
		return r.stash(r.s.syntax.Image(r.s.ImageURI(target, r.cursor()), alt, al))
	})
}

// DefaultAlt derives the alternative text of an image from its file name.
func DefaultAlt(target string) string {
	base := path.Base(target)
	base = strings.TrimSuffix(base, path.Ext(base))
	return strings.NewReplacer("_", " ", "-", " ").Replace(base)
}

// ImageURI resolves the target of an image against attribute 'imagesdir'.
// If attribute 'data-uri' is set, local images are embedded as data URIs.
func (s *Substitutor) ImageURI(target string, at core.Cursor) string {
	attrs := s.doc.Attributes
	local := !resources.IsURI(target) && !strings.HasPrefix(target, "data:")
	if local && !path.IsAbs(target) {
		if dir := attrs.ValueOr("imagesdir", ""); dir != "" {
			target = strings.TrimSuffix(dir, "/") + "/" + target
		}
	}
	if !local || resources.IsURI(target) || !attrs.IsSet("data-uri") {
		return target
	}
	uri, err := s.Loader().DataURI(target, attrs.ValueOr("docdir", ""))
	if err != nil {
		code := core.Code(err)
		if code == core.NOERROR {
			code = core.EMISSING
		}
		s.doc.Diag(code, at, "cannot embed image %s: %s", target, core.UserMessage(err))
		return target
	}
	return uri
}

// --- Index terms -----------------------------------------------------------

func (r *run) indexTerms(text string) string {
	g := r.s.g
	syntax := r.s.syntax
	concealed := func(terms []string) string {
		r.s.doc.AddIndexTerm(r.blockID(), false, terms...)
		return r.stash(syntax.IndexTerm(terms, false))
	}
	visible := func(term string) string {
		r.s.doc.AddIndexTerm(r.blockID(), true, term)
		return syntax.IndexTerm([]string{term}, true)
	}
	if strings.Contains(text, "indexterm") {
		text = replaceMatches(g.Inline(grammar.InlineIndexTerm), text, func(m match) string {
			if m.has(1) {
				return m.text(0)[1:]
			}
			content := unescapeBrackets(m.text(3))
			if m.text(2) == "indexterm2" {
				return visible(strings.TrimSpace(content))
			}
			return concealed(splitTerms(content))
		})
	}
	if strings.Contains(text, "(((") {
		text = replaceMatches(g.Inline(grammar.InlineConcealed), text, func(m match) string {
			if m.has(1) {
				return m.text(0)[1:]
			}
			return concealed(splitTerms(m.text(2)))
		})
	}
	if strings.Contains(text, "((") {
		text = replaceMatches(g.Inline(grammar.InlineFlowTerm), text, func(m match) string {
			if m.has(1) {
				return m.text(0)[1:]
			}
			return visible(strings.TrimSpace(m.text(2)))
		})
	}
	return text
}

// splitTerms splits the comma separated terms of an index entry. Quoted
// terms may contain commas.
func splitTerms(content string) []string {
	if al, err := dom.ParseAttributeList(content); err == nil && al.Len() == al.PositionalCount() {
		terms := make([]string, 0, al.PositionalCount())
		for i := 1; i <= al.PositionalCount(); i++ {
			t, _ := al.Positional(i)
			terms = append(terms, t)
		}
		return terms
	}
	return strings.Split(content, ",")
}

// --- Links -----------------------------------------------------------------

func (r *run) links(text string) string {
	g := r.s.g
	if strings.Contains(text, "://") {
		text = replaceMatches(g.Inline(grammar.InlineLink), text, func(m match) string {
			prefix, scheme := m.text(1), m.text(2)
			if strings.HasPrefix(scheme, `\`) {
				return prefix + m.text(0)[len(prefix)+1:]
			}
			lead := prefix
			if lead == "link:" {
				lead = ""
			}
			if m.has(3) {
				target := r.interpolate(scheme + m.text(3))
				return lead + r.link(target, unescapeBrackets(m.text(4)))
			}
			target, trailing := scheme+m.text(5), ""
			if prefix == "&lt;" {
				if i := strings.Index(target, "&gt;"); i >= 0 {
					target, trailing, lead = target[:i], target[i:], ""
					trailing = trailing[len("&gt;"):]
				}
			}
			return lead + r.link(target, "") + trailing
		})
	}
	if strings.Contains(text, "link:") || strings.Contains(text, "mailto:") {
		text = replaceMatches(g.Inline(grammar.InlineLinkMacro), text, func(m match) string {
			if m.has(1) {
				return m.text(0)[1:]
			}
			target := r.interpolate(m.text(3))
			if target == "" {
				return m.text(0)
			}
			linktext := unescapeBrackets(m.text(4))
			if m.has(2) {
				if linktext == "" {
					linktext = target
				}
				target = "mailto:" + target
			}
			return r.link(target, linktext)
		})
	}
	if strings.Contains(text, "@") {
		text = replaceMatches(g.Inline(grammar.InlineEmail), text, func(m match) string {
			switch lead := m.text(1); lead {
			case `\`:
				return m.text(0)[1:]
			case "":
			default:
				return m.text(0)
			}
			addr := m.text(0)
			tags := r.s.syntax.Link("mailto:"+unescapeSpecialChars(addr), dom.NewAttributeList())
			return r.stash(tags.Wrap(addr))
		})
	}
	return text
}

// link creates the markup of a link. A trailing caret in the link text
// opens the link in a new window. Without link text, the target is shown.
func (r *run) link(target, linktext string) string {
	al := dom.NewAttributeList()
	if strings.Contains(linktext, "=") {
		if parsed, err := dom.ParseAttributeList(linktext); err == nil {
			al = parsed
			linktext, _ = al.Positional(1)
		}
	}
	if strings.HasSuffix(linktext, "^") {
		linktext = strings.TrimSuffix(linktext, "^")
		al.Set("window", "_blank")
	}
	tags := r.s.syntax.Link(unescapeSpecialChars(target), al)
	if linktext != "" {
		return r.stash(tags.Open) + linktext + r.stash(tags.Close)
	}
	shown := target
	if r.s.doc.Attributes.IsSet("hide-uri-scheme") {
		if i := strings.Index(shown, "://"); i > 0 {
			shown = shown[i+3:]
		} else {
			shown = strings.TrimPrefix(shown, "mailto:")
		}
	}
	return r.stash(tags.Wrap(shown))
}

var specialCharsReverse = strings.NewReplacer("&lt;", "<", "&gt;", ">", "&amp;", "&")

func unescapeSpecialChars(text string) string {
	if !strings.Contains(text, "&") {
		return text
	}
	return specialCharsReverse.Replace(text)
}

// --- Footnotes -------------------------------------------------------------

func (r *run) footnotes(text string) string {
	doc, syntax := r.s.doc, r.s.syntax
	return replaceMatches(r.s.g.Inline(grammar.InlineFootnote), text, func(m match) string {
		if m.has(1) {
			return m.text(0)[1:]
		}
		var id, content string
		if m.has(2) {
			args := unescapeBrackets(m.text(4))
			id, content, _ = strings.Cut(args, ",")
		} else {
			id, content = m.text(3), unescapeBrackets(m.text(4))
		}
		id, content = strings.TrimSpace(id), strings.TrimSpace(content)
		if fn, ok := doc.Footnote(id); ok && id != "" {
			return r.stash(syntax.Footnote(fn, true))
		}
		if content == "" {
			r.warn("invalid footnote reference: %s", id)
			return r.stash("[" + id + "]")
		}
		content = r.restore(r.tail(r.xrefs(r.anchors(content))))
		fn := doc.RegisterFootnote(id, content)
		tracer().Debugf("footnote %d registered", fn.Index)
		return r.stash(syntax.Footnote(fn, false))
	})
}

// --- Cross references ------------------------------------------------------

func (r *run) xrefs(text string) string {
	return replaceMatches(r.s.g.Inline(grammar.InlineXref), text, func(m match) string {
		if m.has(1) {
			return m.text(0)[1:]
		}
		var target, reftext string
		if m.has(2) {
			target, reftext, _ = strings.Cut(m.text(2), ",")
		} else {
			target, reftext = m.text(3), unescapeBrackets(m.text(4))
		}
		target = r.interpolate(strings.TrimSpace(target))
		reftext = strings.TrimSpace(reftext)
		href, shown := r.resolveXref(target)
		tags := r.s.syntax.Xref(href)
		if reftext != "" {
			return r.stash(tags.Open) + reftext + r.stash(tags.Close)
		}
		return r.stash(tags.Wrap(shown))
	})
}

// resolveXref returns the href of an xref target and the text shown if the
// xref has no text of its own. Targets naming an .adoc file refer to other
// documents. Internal targets must be registered IDs or, with natural
// cross references, section titles.
func (r *run) resolveXref(target string) (string, string) {
	doc := r.s.doc
	file, fragment, hasFragment := strings.Cut(target, "#")
	if !hasFragment && !strings.HasSuffix(file, ".adoc") {
		file, fragment = "", target
	}
	if file != "" {
		file = strings.TrimSuffix(file, ".adoc")
		if file != doc.Attributes.ValueOr("docname", "") {
			href := file + doc.Attributes.ValueOr("outfilesuffix", ".html")
			if fragment != "" {
				href += "#" + fragment
			}
			return href, href
		}
	}
	id := fragment
	if id == "" {
		return "#", doc.Title()
	}
	ref, ok := doc.Refs.Lookup(id)
	if !ok && r.s.g.Compliance().NaturalXrefs {
		ref, ok = r.s.sectionByTitle(id)
	}
	if !ok {
		if hints := doc.Refs.Suggest(id); len(hints) > 0 {
			r.warn("possible invalid reference: %s (did you mean %s?)", id, strings.Join(hints, ", "))
		} else {
			r.warn("possible invalid reference: %s", id)
		}
		return "#" + id, "[" + id + "]"
	}
	return "#" + ref.ID, r.s.xrefText(ref)
}

// xrefText is the text shown for a reference without explicit text.
func (s *Substitutor) xrefText(ref dom.Ref) string {
	if ref.Reftext != "" {
		return escapeSpecialChars(ref.Reftext)
	}
	b := s.doc.Block(ref.Block)
	switch {
	case ref.Kind == dom.RefInline || ref.Kind == dom.RefBibliography || b == nil:
	case b.Reftext != "":
		return escapeSpecialChars(b.Reftext)
	case b.Title != "":
		return b.Title
	case b.RawTitle != "":
		return escapeSpecialChars(b.RawTitle)
	}
	return "[" + ref.ID + "]"
}

// sectionByTitle finds a section or floating title by its title.
func (s *Substitutor) sectionByTitle(title string) (dom.Ref, bool) {
	b := s.doc.Find(func(b *dom.Block) bool {
		if b.Context != dom.CtxSection && b.Context != dom.CtxFloatingTitle {
			return false
		}
		return b.Anchor != "" && (b.RawTitle == title || (b.Title != "" && dom.PlainText(b.Title) == title))
	})
	if b == nil {
		return dom.Ref{}, false
	}
	if ref, ok := s.doc.Refs.Lookup(b.Anchor); ok {
		return ref, true
	}
	return dom.Ref{ID: b.Anchor, Kind: dom.RefSection, Block: b.ID}, true
}

// interpolate replaces attribute references in a macro target.
func (r *run) interpolate(target string) string {
	if !strings.Contains(target, "{") {
		return target
	}
	text, warnings := r.s.doc.Attributes.Interpolate(target)
	for _, w := range warnings {
		r.warn("%s", w.Msg)
	}
	return text
}
