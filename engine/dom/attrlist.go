package dom

import (
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/emirpasic/gods/maps/linkedhashmap"
)

// ErrAttributeSyntax is returned for malformed attribute lists. Callers
// fall back to treating the text literally.
var ErrAttributeSyntax = errors.New("malformed attribute list")

// AttributeList holds the attributes of a block or a macro: positional
// values and named values in order of appearance. Roles and options are
// collected separately.
type AttributeList struct {
	positional []string
	named      *linkedhashmap.Map
	roles      []string
	options    []string
}

// NewAttributeList creates an empty attribute list.
func NewAttributeList() *AttributeList {
	return &AttributeList{named: linkedhashmap.New()}
}

// ParseAttributeList parses the text between the brackets of an attribute
// list, e.g. `source,go,linenums` or `leveloffset=+1,lines="1..3,5"`.
// Values may be quoted with single or double quotes, and quotes inside
// values are escaped by a backslash. A list with an unterminated quoted
// value or an empty attribute name is malformed.
func ParseAttributeList(text string) (*AttributeList, error) {
	return parseAttributes(text, false)
}

// ParseBlockAttributes parses the attribute list of a block attribute line.
// Unlike ParseAttributeList, the first positional attribute may be given in
// shorthand form `style#id.role%option`.
func ParseBlockAttributes(text string) (*AttributeList, error) {
	return parseAttributes(text, true)
}

func parseAttributes(text string, shorthand bool) (*AttributeList, error) {
	al := NewAttributeList()
	s := &attrScanner{text: text}
	for i := 0; ; i++ {
		s.skipSpace()
		if s.eof() {
			break
		}
		if s.peek() == ',' {
			s.pos++
			al.positional = append(al.positional, "")
			if s.eof() {
				al.positional = append(al.positional, "")
			}
			continue
		}
		value, quoted, err := s.value(true)
		if err != nil {
			return al, err
		}
		s.skipSpace()
		if !quoted && s.peek() == '=' {
			s.pos++
			name := strings.TrimSpace(value)
			if !isAttrName(name) {
				return al, fmt.Errorf("%w: illegal attribute name %q", ErrAttributeSyntax, name)
			}
			s.skipSpace()
			v, _, err := s.value(false)
			if err != nil {
				return al, err
			}
			al.setNamed(name, v)
		} else if shorthand && i == 0 && !quoted && strings.ContainsAny(value, "#.%") {
			if err := al.shorthand(value); err != nil {
				return al, err
			}
		} else {
			al.positional = append(al.positional, value)
		}
		s.skipSpace()
		if s.eof() {
			break
		}
		if s.peek() != ',' {
			return al, fmt.Errorf("%w: unexpected %q at position %d", ErrAttributeSyntax, s.peek(), s.pos)
		}
		s.pos++
		if s.eof() {
			al.positional = append(al.positional, "")
		}
	}
	return al, nil
}

type attrScanner struct {
	text string
	pos  int
}

func (s *attrScanner) eof() bool {
	return s.pos >= len(s.text)
}

func (s *attrScanner) peek() byte {
	if s.eof() {
		return 0
	}
	return s.text[s.pos]
}

func (s *attrScanner) skipSpace() {
	for !s.eof() && (s.text[s.pos] == ' ' || s.text[s.pos] == '\t') {
		s.pos++
	}
}

// value scans a quoted or unquoted value. Unquoted values end at a comma
// and, if stopAtEquals is set, at an equals sign.
func (s *attrScanner) value(stopAtEquals bool) (string, bool, error) {
	if q := s.peek(); q == '"' || q == '\'' {
		start := s.pos
		s.pos++
		var b strings.Builder
		for !s.eof() {
			c := s.text[s.pos]
			if c == '\\' && s.pos+1 < len(s.text) && s.text[s.pos+1] == q {
				b.WriteByte(q)
				s.pos += 2
				continue
			}
			if c == q {
				s.pos++
				return b.String(), true, nil
			}
			b.WriteByte(c)
			s.pos++
		}
		return "", false, fmt.Errorf("%w: unterminated quoted value at position %d", ErrAttributeSyntax, start)
	}
	start := s.pos
	for !s.eof() {
		c := s.text[s.pos]
		if c == ',' || (stopAtEquals && c == '=') {
			break
		}
		s.pos++
	}
	return strings.TrimSpace(s.text[start:s.pos]), false, nil
}

func isAttrName(name string) bool {
	if name == "" {
		return false
	}
	for _, r := range name {
		if r != '-' && r != '_' && !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

// shorthand parses `style#id.role.role%option`.
func (al *AttributeList) shorthand(value string) error {
	cut := strings.IndexAny(value, "#.%")
	style := value[:cut]
	al.positional = append(al.positional, style)
	rest := value[cut:]
	for rest != "" {
		marker := rest[0]
		rest = rest[1:]
		end := strings.IndexAny(rest, "#.%")
		if end < 0 {
			end = len(rest)
		}
		part := rest[:end]
		rest = rest[end:]
		if part == "" {
			return fmt.Errorf("%w: empty shorthand %q in %q", ErrAttributeSyntax, marker, value)
		}
		switch marker {
		case '#':
			al.named.Put("id", part)
		case '.':
			al.AddRole(part)
		case '%':
			al.AddOption(part)
		}
	}
	return nil
}

func (al *AttributeList) setNamed(name, value string) {
	switch name {
	case "role":
		for _, r := range strings.Fields(value) {
			al.AddRole(r)
		}
	case "options", "opts":
		for _, o := range strings.Split(value, ",") {
			if o = strings.TrimSpace(o); o != "" {
				al.AddOption(o)
			}
		}
	default:
		al.named.Put(name, value)
	}
}

// --- Queries ---------------------------------------------------------------

// Len returns the number of positional and named attributes.
func (al *AttributeList) Len() int {
	return len(al.positional) + al.named.Size()
}

// Positional returns the n-th positional attribute (1-based).
func (al *AttributeList) Positional(n int) (string, bool) {
	if n < 1 || n > len(al.positional) {
		return "", false
	}
	return al.positional[n-1], true
}

// PositionalCount returns the number of positional attributes.
func (al *AttributeList) PositionalCount() int {
	return len(al.positional)
}

// Named returns a named attribute. The names "role" and "options" yield
// the collected roles and options.
func (al *AttributeList) Named(name string) (string, bool) {
	switch name {
	case "role":
		return strings.Join(al.roles, " "), len(al.roles) > 0
	case "options", "opts":
		return strings.Join(al.options, ","), len(al.options) > 0
	}
	v, ok := al.named.Get(name)
	if !ok {
		return "", false
	}
	return v.(string), true
}

// Set sets a named attribute.
func (al *AttributeList) Set(name, value string) {
	al.setNamed(name, value)
}

// Keys returns the names of the named attributes in order of appearance.
func (al *AttributeList) Keys() []string {
	keys := make([]string, 0, al.named.Size()+2)
	for _, k := range al.named.Keys() {
		keys = append(keys, k.(string))
	}
	if len(al.roles) > 0 {
		keys = append(keys, "role")
	}
	if len(al.options) > 0 {
		keys = append(keys, "options")
	}
	return keys
}

// Style returns the named attribute 'style' or the first positional
// attribute.
func (al *AttributeList) Style() string {
	if s, ok := al.named.Get("style"); ok {
		return s.(string)
	}
	if len(al.positional) > 0 {
		return al.positional[0]
	}
	return ""
}

// ID returns the ID given by the list.
func (al *AttributeList) ID() string {
	id, _ := al.Named("id")
	return id
}

// Roles returns the roles given by the list.
func (al *AttributeList) Roles() []string {
	return al.roles
}

// Options returns the options given by the list.
func (al *AttributeList) Options() []string {
	return al.options
}

// HasOption returns true if option opt is set, either as `%opt`, by
// attribute `options` or `opts`, or as attribute `opt-option`.
func (al *AttributeList) HasOption(opt string) bool {
	for _, o := range al.options {
		if o == opt {
			return true
		}
	}
	_, ok := al.named.Get(opt + "-option")
	return ok
}

// AddRole adds a role, if not already present.
func (al *AttributeList) AddRole(role string) {
	for _, r := range al.roles {
		if r == role {
			return
		}
	}
	al.roles = append(al.roles, role)
}

// AddOption adds an option, if not already present.
func (al *AttributeList) AddOption(opt string) {
	if !al.HasOption(opt) {
		al.options = append(al.options, opt)
	}
}

// MapPositional assigns positional attributes to names, unless a name is
// already set. An empty name skips a position.
func (al *AttributeList) MapPositional(names ...string) {
	for i, name := range names {
		if name == "" || i >= len(al.positional) {
			continue
		}
		if _, ok := al.Named(name); ok || al.positional[i] == "" {
			continue
		}
		al.setNamed(name, al.positional[i])
	}
}

// Merge adds the attributes of other. Positional attributes of other
// replace those at the same position; named attributes of other win.
func (al *AttributeList) Merge(other *AttributeList) {
	if other == nil {
		return
	}
	for i, p := range other.positional {
		if i < len(al.positional) {
			if p != "" {
				al.positional[i] = p
			}
		} else {
			al.positional = append(al.positional, p)
		}
	}
	it := other.named.Iterator()
	for it.Next() {
		al.named.Put(it.Key(), it.Value())
	}
	for _, r := range other.roles {
		al.AddRole(r)
	}
	for _, o := range other.options {
		al.AddOption(o)
	}
}

// String returns the list in source form.
func (al *AttributeList) String() string {
	var parts []string
	parts = append(parts, al.positional...)
	for _, k := range al.Keys() {
		v, _ := al.Named(k)
		if strings.ContainsAny(v, ", \"") {
			v = `"` + strings.ReplaceAll(v, `"`, `\"`) + `"`
		}
		parts = append(parts, k+"="+v)
	}
	return strings.Join(parts, ",")
}
