package reader

import (
	"strconv"
	"strings"

	"github.com/npillmayer/adoc/core"
	"github.com/npillmayer/adoc/engine/grammar"
)

// conditional handles a conditional directive. A single-line ifdef or
// ifndef with content yields that content if the condition holds.
func (r *Reader) conditional(keyword, target, delim, text string, at core.Cursor) (string, bool) {
	if keyword == "endif" {
		r.endif(target, text, at)
		return "", false
	}
	if keyword == "ifeval" {
		if target != "" || text == "" {
			r.diag(core.EINVALID, at, "malformed preprocessor directive: %s::%s[%s]", keyword, target, text)
			return "", false
		}
	} else if target == "" {
		r.diag(core.EINVALID, at, "malformed preprocessor directive: %s::[%s]", keyword, text)
		return "", false
	}
	skip := false
	if !r.skipping {
		switch keyword {
		case "ifdef":
			skip = !r.defined(target, delim)
		case "ifndef":
			skip = r.defined(target, delim)
		case "ifeval":
			skip = !r.evaluate(text, at)
		}
	}
	if keyword == "ifeval" || text == "" {
		if skip {
			r.skipping = true
		}
		r.conds = append(r.conds, conditional{
			target:   target,
			skip:     skip,
			skipping: r.skipping,
			cursor:   at,
		})
		return "", false
	}
	if r.skipping || skip {
		return "", false
	}
	return text, true
}

func (r *Reader) endif(target, text string, at core.Cursor) {
	if text != "" {
		r.diag(core.EINVALID, at, "malformed preprocessor directive: text not permitted in endif::%s[]", target)
		return
	}
	if len(r.conds) == 0 {
		r.diag(core.EINVALID, at, "unmatched preprocessor directive: endif::%s[]", target)
		return
	}
	open := r.conds[len(r.conds)-1]
	if target != "" && target != open.target {
		r.diag(core.EINVALID, at, "mismatched preprocessor directive: endif::%s[], expected endif::%s[]",
			target, open.target)
		return
	}
	r.conds = r.conds[:len(r.conds)-1]
	if len(r.conds) == 0 {
		r.skipping = false
	} else {
		r.skipping = r.conds[len(r.conds)-1].skipping
	}
}

// defined checks a target of ifdef: a single name, names separated by ','
// (any defined) or by '+' (all defined).
func (r *Reader) defined(target, delim string) bool {
	switch delim {
	case ",":
		return r.anyDefined(strings.Split(target, ","))
	case "+":
		for _, name := range strings.Split(target, "+") {
			if !r.attrs.IsSet(name) {
				return false
			}
		}
		return true
	}
	return r.attrs.IsSet(target)
}

func (r *Reader) anyDefined(names []string) bool {
	for _, name := range names {
		if r.attrs.IsSet(name) {
			return true
		}
	}
	return false
}

// evaluate evaluates the expression of an ifeval directive. Operands are
// interpolated first, then compared as numbers if both are numeric, as
// booleans if both are booleans, else as strings.
func (r *Reader) evaluate(expr string, at core.Cursor) bool {
	m := r.g.Match(grammar.RuleEvalExpression, strings.TrimSpace(expr))
	if m == nil {
		r.diag(core.EINVALID, at, "malformed preprocessor directive: ifeval::[%s]", expr)
		return false
	}
	lhs, op, rhs := r.operand(m[1]), m[2], r.operand(m[3])
	tracer().Debugf("ifeval %q %s %q", lhs, op, rhs)
	cmp, ok := compareOperands(lhs, rhs)
	if !ok {
		switch op {
		case "==":
			return lhs == rhs
		case "!=":
			return lhs != rhs
		}
		return false
	}
	switch op {
	case "==":
		return cmp == 0
	case "!=":
		return cmp != 0
	case "<":
		return cmp < 0
	case "<=":
		return cmp <= 0
	case ">":
		return cmp > 0
	case ">=":
		return cmp >= 0
	}
	return false
}

func (r *Reader) operand(s string) string {
	s = strings.TrimSpace(s)
	quoted := len(s) >= 2 && (s[0] == '"' || s[0] == '\'') && s[len(s)-1] == s[0]
	if quoted {
		s = s[1 : len(s)-1]
	}
	s, _ = r.attrs.Interpolate(s)
	return s
}

// compareOperands returns -1, 0 or 1. ok is false if the operands are
// not ordered (e.g. two booleans).
func compareOperands(lhs, rhs string) (int, bool) {
	if a, err := strconv.ParseFloat(lhs, 64); err == nil {
		if b, err := strconv.ParseFloat(rhs, 64); err == nil {
			switch {
			case a < b:
				return -1, true
			case a > b:
				return 1, true
			}
			return 0, true
		}
	}
	if isBool(lhs) && isBool(rhs) {
		return 0, false
	}
	return strings.Compare(lhs, rhs), true
}

func isBool(s string) bool {
	return s == "true" || s == "false"
}
