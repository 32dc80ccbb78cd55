package core

import (
	"fmt"
	"strings"
)

// Cursor locates a line of input: the file it came from (empty for
// string input) and its 1-based line number.
type Cursor struct {
	File   string // file name as given, or "<stdin>"
	Dir    string // directory of the file
	Path   string // path of the file as referenced by an include
	LineNo int
}

func (c Cursor) String() string {
	f := c.Path
	if f == "" {
		f = c.File
	}
	if f == "" {
		f = "<stdin>"
	}
	return fmt.Sprintf("%s: line %d", f, c.LineNo)
}

// Diagnostic is a message about a problem in the input, carrying the
// source location it stems from. Diagnostics implement AppError.
type Diagnostic struct {
	Code   int
	Cursor Cursor
	Msg    string
}

// Diag creates a diagnostic for a source location.
func Diag(code int, at Cursor, format string, v ...interface{}) Diagnostic {
	return Diagnostic{
		Code:   code,
		Cursor: at,
		Msg:    fmt.Sprintf(format, v...),
	}
}

func (d Diagnostic) Error() string {
	return fmt.Sprintf("[%d] %s: %s", d.Code, d.Cursor, d.Msg)
}

func (d Diagnostic) ErrorCode() int {
	return d.Code
}

func (d Diagnostic) UserMessage() string {
	return fmt.Sprintf("%s: %s", d.Cursor, d.Msg)
}

var _ AppError = Diagnostic{}

// ParseError collects the fatal diagnostics of a parse (structural errors and
// security violations). The document returned alongside a ParseError is
// still usable: processing of siblings continued where feasible.
type ParseError struct {
	Diagnostics []Diagnostic
}

func (e *ParseError) Error() string {
	if len(e.Diagnostics) == 1 {
		return e.Diagnostics[0].Error()
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%d errors while parsing:", len(e.Diagnostics))
	for _, d := range e.Diagnostics {
		b.WriteString("\n  ")
		b.WriteString(d.Error())
	}
	return b.String()
}

func (e *ParseError) ErrorCode() int {
	if len(e.Diagnostics) == 0 {
		return NOERROR
	}
	return e.Diagnostics[0].Code
}

func (e *ParseError) UserMessage() string {
	if len(e.Diagnostics) == 0 {
		return ""
	}
	return e.Diagnostics[0].UserMessage()
}

// Unwrap makes every contained diagnostic visible to errors.As.
func (e *ParseError) Unwrap() []error {
	errs := make([]error, len(e.Diagnostics))
	for i, d := range e.Diagnostics {
		errs[i] = d
	}
	return errs
}

var _ AppError = &ParseError{}

// FatalDiagnostics returns a *ParseError holding the fatal ones of diags,
// or nil if none of them is fatal.
func FatalDiagnostics(diags []Diagnostic) error {
	var fatal []Diagnostic
	for _, d := range diags {
		if IsFatal(d) {
			fatal = append(fatal, d)
		}
	}
	if len(fatal) == 0 {
		return nil
	}
	return &ParseError{Diagnostics: fatal}
}
