package subs

// quotes applies the quote rules in order, one scan per rule. Generated
// tags are stashed; the content of a span stays in the text for the
// following rules and steps. An escaped span keeps its delimiters, which
// are stashed as well so no later rule picks them up.
func (r *run) quotes(text string) string {
	for _, q := range r.s.g.Quotes() {
		q := q
		text = scanSpans(text, q, func(sp span) string {
			if sp.escaped {
				open := sp.source[1 : len(sp.source)-len(sp.content)-len(q.Close)]
				return r.stash(open) + sp.content + r.stash(q.Close)
			}
			tags := r.s.syntax.Quote(q.Kind, sp.id, sp.roles)
			return r.stash(tags.Open) + sp.content + r.stash(tags.Close)
		})
	}
	return text
}
