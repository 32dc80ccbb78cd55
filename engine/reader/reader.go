package reader

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/emirpasic/gods/sets/hashset"
	"github.com/emirpasic/gods/stacks/arraystack"
	"github.com/npillmayer/adoc/core"
	"github.com/npillmayer/adoc/core/attributes"
	"github.com/npillmayer/adoc/core/locate/resources"
	"github.com/npillmayer/adoc/core/option"
	"github.com/npillmayer/adoc/core/safemode"
	"github.com/npillmayer/adoc/engine/grammar"
	"golang.org/x/text/unicode/norm"
)

// Line is an input line together with its source location.
type Line struct {
	Text   string
	Cursor core.Cursor
}

// frame is a scope of input lines: the document itself or an included
// file. Frames are kept on an explicit stack.
type frame struct {
	lines       []string
	linenos     []int // original line numbers if lines have been filtered
	pos         int
	cursor      core.Cursor
	abspath     string // for the cycle guard; empty for the root frame
	leveloffset option.StringT
	setsOffset  bool
}

func (f *frame) cursorAt(i int) core.Cursor {
	c := f.cursor
	if f.linenos != nil && i < len(f.linenos) {
		c.LineNo = f.linenos[i]
	} else {
		c.LineNo = f.cursor.LineNo + i
	}
	return c
}

// conditional is an open conditional preprocessor directive.
type conditional struct {
	target   string
	skip     bool
	skipping bool
	cursor   core.Cursor
}

// Reader supplies lines to the parser. It expands preprocessor
// directives (conditionals and includes) before lines reach the parser,
// and supports peeking and pushing back lines.
type Reader struct {
	g           *grammar.Grammar
	attrs       *attributes.Store
	loader      *resources.Loader
	ctx         context.Context
	frames      *arraystack.Stack // of *frame
	open        *hashset.Set      // absolute paths of the open include files
	conds       []conditional
	skipping    bool
	buffer      []Line // processed lines ready to be read, LIFO
	last        core.Cursor
	diags       []core.Diagnostic
	frontMatter []string
}

// Option configures a reader.
type Option func(*Reader)

// WithGrammar sets the grammar used to recognize directives.
func WithGrammar(g *grammar.Grammar) Option {
	return func(r *Reader) {
		r.g = g
	}
}

// WithLoader sets the loader for included content.
func WithLoader(l *resources.Loader) Option {
	return func(r *Reader) {
		r.loader = l
	}
}

// WithContext sets a context for reading remote content.
func WithContext(ctx context.Context) Option {
	return func(r *Reader) {
		r.ctx = ctx
	}
}

// New creates a reader for lines of input located at cursor (whose LineNo
// is the number of the first line, usually 1). Lines are normalized to NFC,
// and line terminators and trailing white space are removed. If attribute
// 'skip-front-matter' is set, a leading front matter block is removed and
// stored in attribute 'front-matter'.
func New(lines []string, cursor core.Cursor, attrs *attributes.Store, opts ...Option) *Reader {
	if cursor.LineNo == 0 {
		cursor.LineNo = 1
	}
	if attrs == nil {
		attrs = attributes.New()
	}
	r := &Reader{
		g:      grammar.Default(),
		attrs:  attrs,
		ctx:    context.Background(),
		frames: arraystack.New(),
		open:   hashset.New(),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.loader == nil {
		r.loader = resources.NewLoader(safemode.NewGate(safemode.Secure, cursor.Dir), nil)
	}
	lines = prepare(lines)
	if r.attrs.IsSet("skip-front-matter") {
		var skipped int
		lines, skipped = r.skipFrontMatter(lines)
		cursor.LineNo += skipped
	}
	root := &frame{lines: lines, cursor: cursor}
	if cursor.File != "" && cursor.Dir != "" {
		root.abspath = filepath.Join(cursor.Dir, filepath.Base(cursor.File))
		r.open.Add(root.abspath)
	}
	r.frames.Push(root)
	return r
}

// FromString creates a reader for a string of input.
func FromString(text string, attrs *attributes.Store, opts ...Option) *Reader {
	text = strings.TrimSuffix(text, "\n")
	var lines []string
	if text != "" {
		lines = strings.Split(text, "\n")
	}
	return New(lines, core.Cursor{LineNo: 1}, attrs, opts...)
}

// prepare normalizes lines.
func prepare(lines []string) []string {
	prepared := make([]string, len(lines))
	for i, l := range lines {
		if i == 0 {
			l = strings.TrimPrefix(l, "\ufeff")
		}
		l = strings.TrimRight(l, " \t\r\n")
		prepared[i] = norm.NFC.String(l)
	}
	return prepared
}

func (r *Reader) skipFrontMatter(lines []string) ([]string, int) {
	if len(lines) == 0 || lines[0] != "---" {
		return lines, 0
	}
	for i := 1; i < len(lines); i++ {
		if lines[i] == "---" {
			r.frontMatter = append([]string(nil), lines[1:i]...)
			r.attrs.Set("front-matter", strings.Join(r.frontMatter, "\n"))
			tracer().Debugf("skipped %d lines of front matter", i+1)
			return lines[i+1:], i + 1
		}
	}
	return lines, 0
}

// FrontMatter returns the lines of a skipped front matter block.
func (r *Reader) FrontMatter() []string {
	return r.frontMatter
}

// Attributes returns the attribute store of the reader.
func (r *Reader) Attributes() *attributes.Store {
	return r.attrs
}

// Grammar returns the grammar of the reader.
func (r *Reader) Grammar() *grammar.Grammar {
	return r.g
}

// Loader returns the resource loader of the reader.
func (r *Reader) Loader() *resources.Loader {
	return r.loader
}

// Diagnostics returns the diagnostics collected while preprocessing.
func (r *Reader) Diagnostics() []core.Diagnostic {
	return r.diags
}

func (r *Reader) diag(code int, at core.Cursor, format string, v ...interface{}) {
	d := core.Diag(code, at, format, v...)
	if code == core.EINVALID || code == core.EREFERENCE {
		tracer().Infof("%s", d.UserMessage())
	} else {
		tracer().Errorf("%s", d.UserMessage())
	}
	r.diags = append(r.diags, d)
}

// --- Cursor API ------------------------------------------------------------

// HasMoreLines returns true if there is at least one more line.
func (r *Reader) HasMoreLines() bool {
	_, ok := r.peek()
	return ok
}

// PeekLine returns the next line without consuming it.
func (r *Reader) PeekLine() (string, bool) {
	l, ok := r.peek()
	return l.Text, ok
}

// Peek returns the next line together with its location.
func (r *Reader) Peek() (Line, bool) {
	return r.peek()
}

// ReadLine consumes and returns the next line.
func (r *Reader) ReadLine() (string, bool) {
	l, ok := r.Read()
	return l.Text, ok
}

// Read consumes and returns the next line together with its location.
func (r *Reader) Read() (Line, bool) {
	l, ok := r.peek()
	if !ok {
		return Line{}, false
	}
	r.buffer = r.buffer[:len(r.buffer)-1]
	r.last = l.Cursor
	return l, true
}

// Unshift pushes a line back in front of the remaining input. It will be
// returned by the next call to ReadLine without being preprocessed again.
func (r *Reader) Unshift(text string) {
	r.buffer = append(r.buffer, Line{Text: text, Cursor: r.last})
}

// UnshiftLine pushes a line with its location back.
func (r *Reader) UnshiftLine(l Line) {
	r.buffer = append(r.buffer, l)
}

// SkipBlankLines consumes blank lines and returns their number.
func (r *Reader) SkipBlankLines() int {
	n := 0
	for {
		l, ok := r.peek()
		if !ok || !grammar.IsBlank(l.Text) {
			return n
		}
		r.Read()
		n++
	}
}

// ReadLinesUntil reads lines until pred returns true for a line. The
// terminating line is consumed, but not returned. found is false if the
// input ended before a terminating line.
func (r *Reader) ReadLinesUntil(pred func(string) bool) (lines []string, found bool) {
	for {
		l, ok := r.Read()
		if !ok {
			return lines, false
		}
		if pred(l.Text) {
			return lines, true
		}
		lines = append(lines, l.Text)
	}
}

// Cursor returns the location of the next line, or of the last line read
// at the end of input.
func (r *Reader) Cursor() core.Cursor {
	if l, ok := r.peek(); ok {
		return l.Cursor
	}
	return r.last
}

// LastCursor returns the location of the line read last.
func (r *Reader) LastCursor() core.Cursor {
	return r.last
}

// LineNo returns the line number of the next line.
func (r *Reader) LineNo() int {
	return r.Cursor().LineNo
}

// Depth returns the current include depth (0 for the document itself).
func (r *Reader) Depth() int {
	return r.frames.Size() - 1
}

// --- Preprocessing ---------------------------------------------------------

func (r *Reader) top() *frame {
	f, ok := r.frames.Peek()
	if !ok {
		return nil
	}
	return f.(*frame)
}

// peek makes sure the next processed line is in the buffer and returns it.
func (r *Reader) peek() (Line, bool) {
	for len(r.buffer) == 0 {
		f := r.top()
		if f == nil {
			return Line{}, false
		}
		if f.pos >= len(f.lines) {
			if r.frames.Size() == 1 {
				return Line{}, false
			}
			r.popFrame()
			continue
		}
		text, at := f.lines[f.pos], f.cursorAt(f.pos)
		f.pos++
		if out, ok := r.preprocess(text, at); ok {
			r.buffer = append(r.buffer, Line{Text: out, Cursor: at})
		}
	}
	return r.buffer[len(r.buffer)-1], true
}

// preprocess handles a raw line. It returns the line to emit, or false if
// the line has been consumed by a directive or is skipped.
func (r *Reader) preprocess(text string, at core.Cursor) (string, bool) {
	if strings.Contains(text, "::") && strings.HasSuffix(text, "]") {
		if m := r.g.Match(grammar.RuleConditional, text); m != nil {
			if m[1] != "" {
				return text[1:], !r.skipping
			}
			return r.conditional(m[2], m[3], m[4], m[5], at)
		}
		if r.skipping {
			return "", false
		}
		if m := r.g.Match(grammar.RuleInclude, text); m != nil {
			if m[1] != "" {
				return text[1:], true
			}
			return r.include(m[2], m[3], at)
		}
	}
	if r.skipping {
		return "", false
	}
	return text, true
}

func (r *Reader) popFrame() {
	v, _ := r.frames.Pop()
	f := v.(*frame)
	if f.abspath != "" {
		r.open.Remove(f.abspath)
	}
	if f.setsOffset {
		if f.leveloffset.IsNone() {
			r.attrs.Unset("leveloffset")
		} else {
			r.attrs.Set("leveloffset", f.leveloffset.Unwrap())
		}
	}
	tracer().Debugf("end of include %s", f.cursor.Path)
}
