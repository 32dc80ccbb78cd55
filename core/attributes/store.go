package attributes

import (
	"strconv"
	"strings"
	"unicode"

	"github.com/emirpasic/gods/maps/linkedhashmap"
	"github.com/emirpasic/gods/sets/hashset"
	"github.com/npillmayer/adoc/core/option"
	"github.com/npillmayer/adoc/core/safemode"
)

// unset is the tombstone value of an explicitly unset attribute.
type unset struct{}

// group holds the overrides of one scope level.
type group struct {
	attrs *linkedhashmap.Map
	level int
	next  *group
}

// Store is the ordered attribute table of a document. Keys keep the order
// of their first definition. Unsetting an attribute records a tombstone,
// which makes it possible to tell "never set" from "explicitly unset".
//
// Scoped overrides are supported by Begingroup/Endgroup: while a group is
// open, Set and Unset go to the group and are dropped by Endgroup.
type Store struct {
	table      *linkedhashmap.Map // string → string | unset
	locked     *hashset.Set
	groups     *group
	grouplevel int
}

// New creates an attribute store seeded with the intrinsic attributes and
// the document defaults.
func New() *Store {
	s := NewEmpty()
	for _, kv := range intrinsics {
		s.table.Put(kv[0], kv[1])
	}
	for _, kv := range documentDefaults {
		s.table.Put(kv[0], kv[1])
	}
	return s
}

// NewEmpty creates an attribute store without any attributes.
func NewEmpty() *Store {
	return &Store{
		table:  linkedhashmap.New(),
		locked: hashset.New(),
	}
}

// Normalize returns the canonical form of an attribute name: lower-case,
// with every character other than word characters and '-' removed.
func Normalize(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		if r == '-' || r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.Is(unicode.M, r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Set sets an attribute. It returns false if the attribute is locked.
func (s *Store) Set(key, value string) bool {
	key = Normalize(key)
	if key == "" {
		return false
	}
	if s.Locked(key) {
		tracer().Debugf("attribute %q is locked, ignoring new value %q", key, value)
		return false
	}
	s.put(key, value)
	return true
}

// Unset unsets an attribute, recording a tombstone. It returns false if
// the attribute is locked.
func (s *Store) Unset(key string) bool {
	key = Normalize(key)
	if key == "" {
		return false
	}
	if s.Locked(key) {
		tracer().Debugf("attribute %q is locked, cannot unset", key)
		return false
	}
	s.put(key, unset{})
	return true
}

func (s *Store) put(key string, value interface{}) {
	if s.grouplevel > 0 {
		s.currentGroup().attrs.Put(key, value)
		return
	}
	s.table.Put(key, value)
}

// currentGroup returns the group for the current group level, creating it
// if necessary.
func (s *Store) currentGroup() *group {
	if s.groups == nil || s.groups.level < s.grouplevel {
		s.groups = &group{
			attrs: linkedhashmap.New(),
			level: s.grouplevel,
			next:  s.groups,
		}
	}
	return s.groups
}

func (s *Store) lookup(key string) (interface{}, bool) {
	for g := s.groups; g != nil; g = g.next {
		if v, found := g.attrs.Get(key); found {
			return v, true
		}
	}
	return s.table.Get(key)
}

// Get returns an attribute value as an option: a value, an unset tombstone,
// or none if the attribute has never been set.
func (s *Store) Get(key string) option.StringT {
	v, found := s.lookup(Normalize(key))
	if !found {
		return option.String()
	}
	if str, ok := v.(string); ok {
		return option.SomeString(str)
	}
	return option.UnsetString()
}

// Value returns the value of an attribute and true, or "" and false if the
// attribute is not set.
func (s *Store) Value(key string) (string, bool) {
	o := s.Get(key)
	return o.Unwrap(), !o.IsNone()
}

// ValueOr returns the value of an attribute or a default value.
func (s *Store) ValueOr(key, dflt string) string {
	return s.Get(key).OrElse(dflt)
}

// Int returns the value of an attribute as an integer, or dflt if the
// attribute is not set or not numeric.
func (s *Store) Int(key string, dflt int) int {
	v, ok := s.Value(key)
	if !ok {
		return dflt
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return dflt
	}
	return n
}

// IsSet returns true if an attribute is set.
func (s *Store) IsSet(key string) bool {
	return !s.Get(key).IsNone()
}

// Lock locks attributes against changes by document content. Locked
// attributes keep their current value (or absence of a value).
func (s *Store) Lock(keys ...string) {
	for _, k := range keys {
		s.locked.Add(Normalize(k))
	}
}

// Locked returns true if an attribute is locked.
func (s *Store) Locked(key string) bool {
	return s.locked.Contains(Normalize(key))
}

// LockRenderingKeys locks the rendering-critical attributes of safe mode m.
// It is called when header parsing ends and does nothing below safe mode
// Server.
func (s *Store) LockRenderingKeys(m safemode.Mode) {
	keys := safemode.LockedKeys(m)
	if len(keys) > 0 {
		tracer().Debugf("locking rendering-critical attributes %v", keys)
		s.Lock(keys...)
	}
}

// SetFromAPI sets an attribute on behalf of the embedding application.
// Such attributes are locked, unless the name or the value ends in '@',
// which makes it a soft default the document may override. A name ending
// in (or starting with) '!' unsets the attribute.
func (s *Store) SetFromAPI(key, value string) {
	soft := false
	if strings.HasSuffix(key, "@") {
		soft, key = true, strings.TrimSuffix(key, "@")
	} else if strings.HasSuffix(value, "@") {
		soft, value = true, strings.TrimSuffix(value, "@")
	}
	remove := false
	if strings.HasSuffix(key, "!") {
		remove, key = true, strings.TrimSuffix(key, "!")
	} else if strings.HasPrefix(key, "!") {
		remove, key = true, strings.TrimPrefix(key, "!")
	}
	key = Normalize(key)
	s.locked.Remove(key)
	if remove {
		s.put(key, unset{})
	} else {
		s.put(key, value)
	}
	if !soft {
		s.locked.Add(key)
	}
}

// Keys returns the names of all set attributes in order of definition.
func (s *Store) Keys() []string {
	var keys []string
	seen := make(map[string]bool)
	collect := func(m *linkedhashmap.Map) {
		it := m.Iterator()
		for it.Next() {
			k := it.Key().(string)
			if seen[k] {
				continue
			}
			seen[k] = true
			if s.IsSet(k) {
				keys = append(keys, k)
			}
		}
	}
	collect(s.table)
	var groups []*group
	for g := s.groups; g != nil; g = g.next {
		groups = append(groups, g)
	}
	for i := len(groups) - 1; i >= 0; i-- {
		collect(groups[i].attrs)
	}
	return keys
}

// Each calls f for every set attribute, in order of definition.
func (s *Store) Each(f func(key, value string)) {
	for _, k := range s.Keys() {
		v, _ := s.Value(k)
		f(k, v)
	}
}

// Begingroup opens a scope for attribute overrides.
func (s *Store) Begingroup() {
	s.grouplevel++
}

// Endgroup closes a scope, dropping all changes made within it.
func (s *Store) Endgroup() {
	if s.grouplevel > 0 {
		if s.groups != nil && s.groups.level == s.grouplevel {
			s.groups = s.groups.next
		}
		s.grouplevel--
	}
}

// Counter increments a counter attribute and returns its new value.
// A counter not set before starts at seed, or at 1 if seed is empty.
// Counters with a single letter value count through the alphabet.
func (s *Store) Counter(name, seed string) string {
	var next string
	if cur, ok := s.Value(name); ok && cur != "" {
		next = succ(cur)
	} else if seed != "" {
		next = seed
	} else {
		next = "1"
	}
	s.Set(name, next)
	return next
}

func succ(v string) string {
	if n, err := strconv.Atoi(v); err == nil {
		return strconv.Itoa(n + 1)
	}
	if len(v) == 1 {
		c := v[0]
		switch {
		case c >= 'a' && c < 'z', c >= 'A' && c < 'Z':
			return string(c + 1)
		case c == 'z':
			return "aa"
		case c == 'Z':
			return "AA"
		}
	}
	return v + "1"
}

// --- Snapshots -------------------------------------------------------------

// Snapshot is a saved state of a store.
type Snapshot struct {
	keys   []interface{}
	values []interface{}
	locked []interface{}
}

// Snapshot saves the current (ungrouped) state of the store.
func (s *Store) Snapshot() Snapshot {
	snap := Snapshot{locked: s.locked.Values()}
	it := s.table.Iterator()
	for it.Next() {
		snap.keys = append(snap.keys, it.Key())
		snap.values = append(snap.values, it.Value())
	}
	return snap
}

// IsZero is true for a snapshot which has never been taken.
func (snap Snapshot) IsZero() bool {
	return snap.keys == nil && snap.locked == nil
}

// Restore resets the store to a saved state. Open groups are discarded.
func (s *Store) Restore(snap Snapshot) {
	s.table.Clear()
	for i, k := range snap.keys {
		s.table.Put(k, snap.values[i])
	}
	s.locked.Clear()
	s.locked.Add(snap.locked...)
	s.groups = nil
	s.grouplevel = 0
}

// Clone returns an independent copy of the store.
func (s *Store) Clone() *Store {
	c := NewEmpty()
	c.Restore(s.Snapshot())
	return c
}
