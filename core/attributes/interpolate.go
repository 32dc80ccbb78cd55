package attributes

import (
	"fmt"
	"regexp"
	"strings"
)

// ReferencePattern matches attribute references: {name}, {name=default},
// {name?value}, {name!value}, {set:name:value}, {counter:name:seed} and
// {counter2:name:seed}, each optionally escaped by a backslash in front of
// the opening or the closing brace.
var ReferencePattern = regexp.MustCompile(`(\\)?\{((?:set|counter2?):[^{}]*|` +
	`[\p{L}\p{M}\p{Nd}\p{Pc}][\p{L}\p{M}\p{Nd}\p{Pc}\-]*(?:[=?!][^{}]*)?)(\\)?\}`)

// Warning reports a reference which could not be resolved.
type Warning struct {
	Name string
	Msg  string
}

func (w Warning) String() string {
	return w.Msg
}

// Policies for references to missing attributes.
const (
	MissingSkip     = "skip"      // leave the reference as is
	MissingDrop     = "drop"      // remove the reference
	MissingDropLine = "drop-line" // remove the line containing the reference
	MissingWarn     = "warn"      // leave the reference and report a warning
)

// Resolution is the result of resolving a single attribute reference.
// If the attribute is missing, Value holds the fallback text chosen by the
// missing-attribute policy and Warning is non-empty.
type Resolution struct {
	Value    string
	Found    bool
	DropLine bool
	Warning  string
}

// Resolve looks up an attribute for a reference, applying the policy of
// attribute 'attribute-missing' if it is not set.
func (s *Store) Resolve(name string) Resolution {
	if v, ok := s.Value(name); ok {
		return Resolution{Value: v, Found: true}
	}
	policy := s.ValueOr("attribute-missing", MissingSkip)
	r := Resolution{Warning: fmt.Sprintf("dropping reference to missing attribute: %s", name)}
	switch policy {
	case MissingDrop:
	case MissingDropLine:
		r.DropLine = true
		r.Warning = fmt.Sprintf("dropping line containing reference to missing attribute: %s", name)
	default:
		r.Value = "{" + name + "}"
		r.Warning = fmt.Sprintf("skipping reference to missing attribute: %s", name)
	}
	return r
}

// Interpolate replaces attribute references in text. References to
// missing attributes are handled according to attribute 'attribute-missing';
// with policy "warn" a warning is returned for each of them. Malformed
// references ("{}", "{a b}") are left untouched.
func (s *Store) Interpolate(text string) (string, []Warning) {
	if !strings.Contains(text, "{") {
		return text, nil
	}
	warn := s.ValueOr("attribute-missing", MissingSkip) == MissingWarn
	lines := strings.Split(text, "\n")
	out := make([]string, 0, len(lines))
	var warnings []Warning
	for _, line := range lines {
		res, drop, ws := s.interpolateLine(line, warn)
		warnings = append(warnings, ws...)
		if !drop {
			out = append(out, res)
		}
	}
	return strings.Join(out, "\n"), warnings
}

func (s *Store) interpolateLine(line string, warn bool) (string, bool, []Warning) {
	matches := ReferencePattern.FindAllStringSubmatchIndex(line, -1)
	if matches == nil {
		return line, false, nil
	}
	var b strings.Builder
	var warnings []Warning
	last, directives := 0, false
	for _, m := range matches {
		b.WriteString(line[last:m[0]])
		last = m[1]
		body := line[m[4]:m[5]]
		if m[2] >= 0 || m[6] >= 0 { // escaped
			b.WriteString("{" + body + "}")
			continue
		}
		switch {
		case strings.HasPrefix(body, "set:"):
			directives = true
			s.setDirective(body[4:])
		case strings.HasPrefix(body, "counter:"), strings.HasPrefix(body, "counter2:"):
			kind, rest, _ := strings.Cut(body, ":")
			name, seed, _ := strings.Cut(rest, ":")
			v := s.Counter(name, seed)
			if kind == "counter" {
				b.WriteString(v)
			} else {
				directives = true
			}
		default:
			v, drop, w := s.reference(body)
			if drop {
				tracer().Infof("%s", w)
				return "", true, warnings
			}
			if w != "" {
				tracer().Infof("%s", w)
				if warn {
					warnings = append(warnings, Warning{Name: body, Msg: w})
				}
			}
			b.WriteString(v)
		}
	}
	b.WriteString(line[last:])
	res := b.String()
	if directives && strings.TrimSpace(res) == "" {
		return "", true, warnings
	}
	return res, false, warnings
}

// reference resolves the body of a reference which is not a directive.
func (s *Store) reference(body string) (string, bool, string) {
	i := strings.IndexAny(body, "=?!")
	if i < 0 {
		r := s.Resolve(body)
		return r.Value, r.DropLine, r.Warning
	}
	name, op, arg := body[:i], body[i], body[i+1:]
	v, ok := s.Value(name)
	switch op {
	case '=':
		if ok {
			return v, false, ""
		}
		return arg, false, ""
	case '?':
		if ok {
			return arg, false, ""
		}
		return "", false, ""
	}
	if !ok {
		return arg, false, ""
	}
	return "", false, ""
}

func (s *Store) setDirective(spec string) {
	name, value, hasValue := strings.Cut(spec, ":")
	if strings.HasSuffix(name, "!") {
		s.Unset(strings.TrimSuffix(name, "!"))
		return
	}
	if !hasValue {
		value = ""
	}
	s.Set(name, value)
}
