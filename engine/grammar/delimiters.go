package grammar

import "strings"

// ContentModel tells how the lines of a delimited block are processed.
type ContentModel int

// Content models of delimited blocks.
const (
	Compound ContentModel = iota // nested blocks
	Simple                       // a paragraph of inline content
	Verbatim                     // lines kept as is, verbatim substitutions
	Raw                          // lines kept as is, no substitutions
	Skip                         // lines dropped
	TableModel                   // cells
	Empty                        // no content
)

func (m ContentModel) String() string {
	switch m {
	case Compound:
		return "compound"
	case Simple:
		return "simple"
	case Verbatim:
		return "verbatim"
	case Raw:
		return "raw"
	case Skip:
		return "skip"
	case TableModel:
		return "table"
	}
	return "empty"
}

type delimiterSpec struct {
	context  string
	model    ContentModel
	variable bool // may be written with more than four characters
	markdown bool
}

// Delimiter is a delimited-block fence, as found in the input.
type Delimiter struct {
	Token    string // the complete fence line
	Tip      string // the first four (for "--" and fences: all) characters
	Context  string // block context opened by the fence
	Model    ContentModel
	Language string // language of a markdown style fenced code block
}

func delimiterTable() map[string]delimiterSpec {
	return map[string]delimiterSpec{
		"--":   {"open", Compound, false, false},
		"----": {"listing", Verbatim, true, false},
		"....": {"literal", Verbatim, true, false},
		"====": {"example", Compound, true, false},
		"****": {"sidebar", Compound, true, false},
		"____": {"quote", Compound, true, false},
		"++++": {"pass", Raw, true, false},
		"////": {"comment", Skip, true, false},
		"|===": {"table", TableModel, true, false},
		"!===": {"table", TableModel, true, false},
		",===": {"table", TableModel, true, false},
		":===": {"table", TableModel, true, false},
		"```":  {"fenced_code", Verbatim, false, true},
		"~~~":  {"fenced_code", Verbatim, false, true},
	}
}

// Delimiter checks if line is a delimited-block fence.
func (g *Grammar) Delimiter(line string) (Delimiter, bool) {
	n := len(line)
	if n < 2 {
		return Delimiter{}, false
	}
	if line == "--" {
		s := g.delimiters["--"]
		return Delimiter{Token: line, Tip: line, Context: s.context, Model: s.model}, true
	}
	if n >= 3 && g.compliance.MarkdownSyntax {
		if tip := line[:3]; tip == "```" || tip == "~~~" {
			s := g.delimiters[tip]
			lang := strings.TrimSpace(line[3:])
			if strings.ContainsAny(lang, "`~ ") {
				return Delimiter{}, false
			}
			return Delimiter{Token: tip, Tip: tip, Context: s.context, Model: s.model, Language: lang}, true
		}
	}
	if n < 4 {
		return Delimiter{}, false
	}
	tip := line[:4]
	s, ok := g.delimiters[tip]
	if !ok || s.markdown {
		return Delimiter{}, false
	}
	if n > 4 {
		if !s.variable {
			return Delimiter{}, false
		}
		c := tip[3]
		for i := 4; i < n; i++ {
			if line[i] != c {
				return Delimiter{}, false
			}
		}
	}
	return Delimiter{Token: line, Tip: tip, Context: s.context, Model: s.model}, true
}

// Closes returns true if line closes a block opened with fence open.
// With congruent block delimiters the closing fence has to repeat the
// opening fence exactly; otherwise any fence with the same tip closes.
func (g *Grammar) Closes(open Delimiter, line string) bool {
	if open.Language != "" || open.Tip == "```" || open.Tip == "~~~" {
		return line == open.Tip
	}
	if g.compliance.CongruentBlockDelimiters {
		return line == open.Token
	}
	d, ok := g.Delimiter(line)
	return ok && d.Tip == open.Tip
}

// IsTableDelimiter returns true for table fences. The first character is
// the cell separator of the default format for that fence.
func IsTableDelimiter(d Delimiter) bool {
	return d.Model == TableModel
}
