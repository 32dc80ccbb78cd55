package grammar

import (
	"fmt"
	"strings"
)

// Sub is a single substitution step.
type Sub uint16

// Substitution steps. Steps are always applied in this order, whatever
// order a set was written in.
const (
	SpecialChars Sub = 1 << iota
	Quotes
	Macros
	Attributes
	Replacements
	PostReplacements
	Callouts
)

// SubSet is a set of substitution steps.
type SubSet uint16

// Predefined substitution sets.
const (
	SubsNone     SubSet = 0
	SubsBasic    SubSet = SubSet(SpecialChars)
	SubsNormal   SubSet = SubSet(SpecialChars | Quotes | Attributes | Replacements | Macros | PostReplacements)
	SubsVerbatim SubSet = SubSet(SpecialChars | Callouts)
	SubsHeader   SubSet = SubSet(SpecialChars | Attributes)
	SubsTitle    SubSet = SubsNormal
)

// Has returns true if step s is a member of the set.
func (set SubSet) Has(s Sub) bool {
	return set&SubSet(s) != 0
}

// With returns the set with step s added.
func (set SubSet) With(s Sub) SubSet {
	return set | SubSet(s)
}

// Without returns the set with step s removed.
func (set SubSet) Without(s Sub) SubSet {
	return set &^ SubSet(s)
}

var subOrder = []Sub{SpecialChars, Quotes, Macros, Attributes, Replacements, PostReplacements, Callouts}

func (s Sub) String() string {
	switch s {
	case SpecialChars:
		return "specialcharacters"
	case Quotes:
		return "quotes"
	case Attributes:
		return "attributes"
	case Replacements:
		return "replacements"
	case Macros:
		return "macros"
	case PostReplacements:
		return "post_replacements"
	case Callouts:
		return "callouts"
	}
	return "?"
}

func (set SubSet) String() string {
	switch set {
	case SubsNone:
		return "none"
	case SubsNormal:
		return "normal"
	case SubsVerbatim:
		return "verbatim"
	}
	var names []string
	for _, s := range subOrder {
		if set.Has(s) {
			names = append(names, s.String())
		}
	}
	return strings.Join(names, ",")
}

func lookupSub(name string) (SubSet, bool) {
	switch name {
	case "none":
		return SubsNone, true
	case "normal", "n":
		return SubsNormal, true
	case "verbatim", "v":
		return SubsVerbatim, true
	case "basic":
		return SubsBasic, true
	case "header":
		return SubsHeader, true
	case "specialcharacters", "specialchars", "c":
		return SubSet(SpecialChars), true
	case "quotes", "q":
		return SubSet(Quotes), true
	case "attributes", "a":
		return SubSet(Attributes), true
	case "replacements", "r":
		return SubSet(Replacements), true
	case "macros", "m":
		return SubSet(Macros), true
	case "post_replacements", "p":
		return SubSet(PostReplacements), true
	case "callouts":
		return SubSet(Callouts), true
	}
	return 0, false
}

// ResolveSubs parses the value of a subs attribute. Items are separated by
// commas. "+name" and "name+" add to the default set, "-name" removes from
// it, and a plain name starts from an empty set. Unknown names are
// reported by an error, with the remaining items still applied.
func ResolveSubs(spec string, defaults SubSet) (SubSet, error) {
	set := defaults
	started := false
	var unknown []string
	for _, item := range strings.Split(spec, ",") {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		op := byte('=')
		switch {
		case strings.HasPrefix(item, "+"):
			op, item = '+', item[1:]
		case strings.HasSuffix(item, "+"):
			op, item = '+', item[:len(item)-1]
		case strings.HasPrefix(item, "-"):
			op, item = '-', item[1:]
		}
		s, ok := lookupSub(item)
		if !ok {
			unknown = append(unknown, item)
			continue
		}
		switch op {
		case '+':
			set |= s
		case '-':
			set &^= s
		default:
			if !started {
				set = SubsNone
				started = true
			}
			set |= s
		}
	}
	if len(unknown) > 0 {
		return set, fmt.Errorf("unknown substitution: %s", strings.Join(unknown, ", "))
	}
	return set, nil
}
