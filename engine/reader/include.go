package reader

import (
	"errors"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/npillmayer/adoc/core"
	"github.com/npillmayer/adoc/core/locate/resources"
	"github.com/npillmayer/adoc/core/safemode"
	"github.com/npillmayer/adoc/engine/dom"
	"github.com/npillmayer/adoc/engine/grammar"
)

// ErrIncludeCycle is wrapped by diagnostics of files including themselves.
var ErrIncludeCycle = errors.New("include cycle")

// include handles an include directive. The content of the target is pushed
// as a new frame. If the include cannot be resolved, a line describing the
// unresolved directive is returned instead.
func (r *Reader) include(target, attrlist string, at core.Cursor) (string, bool) {
	gate := r.loader.Gate
	if !gate.Permits(safemode.IncludeFiles) {
		return "link:" + target + "[role=include]", true
	}
	expanded, _ := r.attrs.Interpolate(target)
	if strings.TrimSpace(expanded) == "" {
		tracer().Infof("%s: dropping include with empty target %q", at, target)
		return "", false
	}
	al, err := dom.ParseAttributeList(attrlist)
	if err != nil {
		r.diag(core.EINVALID, at, "malformed include attributes [%s]: %v", attrlist, err)
		al = dom.NewAttributeList()
	}
	optional := al.HasOption("optional")
	unresolved := func() (string, bool) {
		return r.unresolved(target, attrlist, at), true
	}
	if limit := r.attrs.Int("max-include-depth", 64); r.Depth() >= limit {
		r.diag(core.ESTRUCTURE, at, "maximum include depth of %d exceeded", limit)
		return unresolved()
	}
	dir := r.top().cursor.Dir
	if resources.IsURI(expanded) || (resources.IsURI(dir) && !filepath.IsAbs(expanded)) {
		uri := expanded
		if !resources.IsURI(uri) {
			uri = strings.TrimSuffix(dir, "/") + "/" + expanded
		}
		if !gate.Permits(safemode.ReadURIs) || !r.attrs.IsSet("allow-uri-read") {
			return "link:" + uri + "[role=include]", true
		}
		c, err := r.loader.ResolveURI(r.ctx, uri, true, r.attrs.IsSet("cache-uri")).Content()
		if err != nil {
			if optional {
				tracer().Infof("%s: optional include dropped: %s", at, core.UserMessage(err))
				return "", false
			}
			r.diag(codeOf(err), at, "%s", core.UserMessage(err))
			return unresolved()
		}
		r.push(c, expanded, al, at)
		return "", false
	}
	c, err := r.loader.ReadFile(expanded, dir)
	if err != nil {
		if optional && core.Code(err) == core.EMISSING {
			tracer().Infof("%s: optional include dropped: %s", at, core.UserMessage(err))
			return "", false
		}
		r.diag(codeOf(err), at, "%s", core.UserMessage(err))
		return unresolved()
	}
	if r.open.Contains(c.Path) {
		r.diag(core.ESTRUCTURE, at, "%v: %s is already being included", ErrIncludeCycle, gate.RelativeToJail(c.Path))
		return unresolved()
	}
	r.push(c, expanded, al, at)
	return "", false
}

func codeOf(err error) int {
	if code := core.Code(err); code != core.NOERROR {
		return code
	}
	return core.EMISSING
}

func (r *Reader) unresolved(target, attrlist string, at core.Cursor) string {
	file := at.Path
	if file == "" {
		file = at.File
	}
	if file == "" {
		file = "<stdin>"
	}
	return "Unresolved directive in " + file + " - include::" + target + "[" + attrlist + "]"
}

// push opens a frame for included content, filtered by lines or tags and
// re-indented as requested by the attributes of the directive.
func (r *Reader) push(c resources.Content, target string, al *dom.AttributeList, at core.Cursor) {
	lines := prepare(c.Lines())
	var linenos []int
	if spec, ok := al.Named("lines"); ok && spec != "" {
		lines, linenos = selectLines(lines, parseLineRanges(spec))
	} else if spec, ok := tagSpec(al); ok {
		lines, linenos = r.selectTags(lines, spec, target, at)
	}
	if indent, ok := al.Named("indent"); ok {
		if n, err := strconv.Atoi(indent); err == nil && n >= 0 {
			lines = reindent(lines, n)
		}
	}
	f := &frame{
		lines:   lines,
		linenos: linenos,
		cursor: core.Cursor{
			File:   c.Path,
			Dir:    c.Dir,
			Path:   target,
			LineNo: 1,
		},
		abspath: c.Path,
	}
	if lo, ok := al.Named("leveloffset"); ok {
		f.setsOffset = true
		f.leveloffset = r.attrs.Get("leveloffset")
		r.attrs.Set("leveloffset", r.levelOffset(lo))
	}
	tracer().Debugf("%s: including %s (%d lines)", at, c.Path, len(lines))
	r.open.Add(c.Path)
	r.frames.Push(f)
}

// levelOffset computes the value of leveloffset; signed values are relative
// to the current offset.
func (r *Reader) levelOffset(v string) string {
	if strings.HasPrefix(v, "+") || strings.HasPrefix(v, "-") {
		n, err := strconv.Atoi(v)
		if err != nil {
			return v
		}
		return strconv.Itoa(r.attrs.Int("leveloffset", 0) + n)
	}
	return v
}

// --- Line ranges -----------------------------------------------------------

type lineRange struct {
	from, to int // to < 0: to the end
}

// parseLineRanges parses specifications like "1..3;7;9..-1". Ranges are
// separated by ';' or, if there is no ';', by ','.
func parseLineRanges(spec string) []lineRange {
	sep := ";"
	if !strings.Contains(spec, ";") {
		sep = ","
	}
	var ranges []lineRange
	for _, part := range strings.Split(strings.Trim(spec, `"`), sep) {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		from, to, isRange := strings.Cut(part, "..")
		a, err := strconv.Atoi(from)
		if err != nil {
			continue
		}
		if !isRange {
			ranges = append(ranges, lineRange{a, a})
			continue
		}
		b := -1
		if to != "" {
			if b, err = strconv.Atoi(to); err != nil {
				continue
			}
		}
		ranges = append(ranges, lineRange{a, b})
	}
	return ranges
}

// selectLines keeps lines whose number is in any of the ranges, in
// document order.
func selectLines(lines []string, ranges []lineRange) ([]string, []int) {
	var sel []string
	var nos []int
	for i, l := range lines {
		n := i + 1
		for _, rg := range ranges {
			if n >= rg.from && (rg.to < 0 || n <= rg.to) {
				sel = append(sel, l)
				nos = append(nos, n)
				break
			}
		}
	}
	return sel, nos
}

// --- Tagged regions --------------------------------------------------------

func tagSpec(al *dom.AttributeList) (string, bool) {
	if tag, ok := al.Named("tag"); ok && tag != "" {
		return tag, true
	}
	if tags, ok := al.Named("tags"); ok && tags != "" {
		return tags, true
	}
	return "", false
}

type tagEntry struct {
	name     string
	selected bool
}

// selectTags keeps the lines of tagged regions. Names prefixed with '!'
// exclude a region. '*' stands for all tagged regions, '**' for all lines.
// Tag directive lines are removed.
func (r *Reader) selectTags(lines []string, spec, target string, at core.Cursor) ([]string, []int) {
	sep := ";"
	if !strings.Contains(spec, ";") {
		sep = ","
	}
	tags := map[string]bool{}
	var order []string
	for _, name := range strings.Split(spec, sep) {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		sel := true
		if strings.HasPrefix(name, "!") {
			name, sel = name[1:], false
		}
		if _, dup := tags[name]; !dup {
			order = append(order, name)
		}
		tags[name] = sel
	}
	var selected, baseSelect bool
	var wildcard *bool
	if sel, ok := tags["**"]; ok {
		delete(tags, "**")
		selected, baseSelect = sel, sel
		if w, ok := tags["*"]; ok {
			delete(tags, "*")
			wildcard = &w
		} else if !sel && !firstValue(order, tags) {
			w := true
			wildcard = &w
		}
	} else if w, ok := tags["*"]; ok {
		delete(tags, "*")
		wildcard = &w
		if firstName(order) == "*" {
			selected, baseSelect = !w, !w
		}
	} else {
		anyPositive := false
		for _, v := range tags {
			anyPositive = anyPositive || v
		}
		selected, baseSelect = !anyPositive, !anyPositive
	}
	var stack []tagEntry
	active := ""
	found := map[string]bool{}
	var sel []string
	var nos []int
	for i, l := range lines {
		if strings.Contains(l, "::") && strings.Contains(l, "[]") {
			if m := r.g.Match(grammar.RuleTagDirective, l); m != nil {
				name := m[2]
				if m[1] == "end" {
					if name == active {
						stack = stack[:len(stack)-1]
						if len(stack) == 0 {
							active, selected = "", baseSelect
						} else {
							active, selected = stack[len(stack)-1].name, stack[len(stack)-1].selected
						}
					} else if _, ok := tags[name]; ok {
						tracer().Infof("%s: mismatched end tag %q in include file %s, line %d", at, name, target, i+1)
					}
				} else if v, ok := tags[name]; ok {
					found[name] = true
					stack = append(stack, tagEntry{name, v})
					active, selected = name, v
				} else if wildcard != nil {
					if active == "" || selected {
						selected = *wildcard
					}
					stack = append(stack, tagEntry{name, selected})
					active = name
				}
				continue
			}
		}
		if selected {
			sel = append(sel, l)
			nos = append(nos, i+1)
		}
	}
	for _, name := range order {
		if _, ok := tags[name]; ok && !found[name] {
			r.diag(core.EREFERENCE, at, "tag '%s' not found in include file %s", name, target)
		}
	}
	return sel, nos
}

func firstName(order []string) string {
	if len(order) == 0 {
		return ""
	}
	return order[0]
}

// firstValue is the selection of the first tag which is not a wildcard.
func firstValue(order []string, tags map[string]bool) bool {
	for _, name := range order {
		if v, ok := tags[name]; ok {
			return v
		}
	}
	return true
}

// reindent removes the common indentation of lines and indents them by n
// spaces.
func reindent(lines []string, n int) []string {
	common := -1
	for _, l := range lines {
		if strings.TrimSpace(l) == "" {
			continue
		}
		ind := len(l) - len(strings.TrimLeft(l, " \t"))
		if common < 0 || ind < common {
			common = ind
		}
	}
	if common < 0 {
		common = 0
	}
	pad := strings.Repeat(" ", n)
	out := make([]string, len(lines))
	for i, l := range lines {
		if strings.TrimSpace(l) == "" {
			out[i] = ""
			continue
		}
		out[i] = pad + l[common:]
	}
	return out
}
