package dom

import (
	"sort"

	"github.com/derekparker/trie"
)

// RefKind tells what a reference ID points to.
type RefKind int8

// Kinds of references.
const (
	RefBlock RefKind = iota
	RefSection
	RefInline
	RefBibliography
)

func (k RefKind) String() string {
	switch k {
	case RefSection:
		return "section"
	case RefInline:
		return "inline"
	case RefBibliography:
		return "bibref"
	}
	return "block"
}

// Ref is the target of a cross reference. References are weak: they name
// a block, but do not own it.
type Ref struct {
	ID      string
	Kind    RefKind
	Block   BlockID // the block holding the anchor
	Reftext string
}

// Catalog maps reference IDs to their targets. IDs are kept in a trie for
// prefix and fuzzy lookups.
type Catalog struct {
	ids   *trie.Trie
	order []string
}

// NewCatalog creates an empty catalog.
func NewCatalog() *Catalog {
	return &Catalog{ids: trie.New()}
}

// Register adds a reference. If the ID is already registered, the first
// registration wins and false is returned.
func (c *Catalog) Register(ref Ref) bool {
	if ref.ID == "" {
		return false
	}
	if _, ok := c.ids.Find(ref.ID); ok {
		tracer().Debugf("duplicate reference id %q", ref.ID)
		return false
	}
	c.ids.Add(ref.ID, ref)
	c.order = append(c.order, ref.ID)
	return true
}

// Update replaces a registered reference, e.g. to set its reftext once it
// is known.
func (c *Catalog) Update(ref Ref) {
	if _, ok := c.ids.Find(ref.ID); !ok {
		c.Register(ref)
		return
	}
	c.ids.Add(ref.ID, ref)
}

// Contains returns true if an ID is registered.
func (c *Catalog) Contains(id string) bool {
	_, ok := c.ids.Find(id)
	return ok
}

// Lookup returns the reference for an ID.
func (c *Catalog) Lookup(id string) (Ref, bool) {
	node, ok := c.ids.Find(id)
	if !ok {
		return Ref{}, false
	}
	return node.Meta().(Ref), true
}

// IDs returns the registered IDs in order of registration.
func (c *Catalog) IDs() []string {
	return c.order
}

// Len returns the number of registered references.
func (c *Catalog) Len() int {
	return len(c.order)
}

// WithPrefix returns the registered IDs starting with prefix, sorted.
func (c *Catalog) WithPrefix(prefix string) []string {
	if prefix == "" {
		ids := append([]string(nil), c.order...)
		sort.Strings(ids)
		return ids
	}
	ids := c.ids.PrefixSearch(prefix)
	sort.Strings(ids)
	return ids
}

// Suggest returns IDs similar to an unknown ID, for hints in diagnostics.
// Candidates share a prefix with id or contain its characters in order.
func (c *Catalog) Suggest(id string) []string {
	if id == "" || len(c.order) == 0 {
		return nil
	}
	prefix := id
	for len(prefix) > 0 {
		if c.ids.HasKeysWithPrefix(prefix) {
			return c.WithPrefix(prefix)
		}
		if len(prefix) <= 3 {
			break
		}
		prefix = prefix[:len(prefix)-1]
	}
	ids := c.ids.FuzzySearch(id)
	sort.Strings(ids)
	return ids
}
