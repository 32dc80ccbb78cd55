package dom

import "github.com/npillmayer/adoc/core/percent"

// Column is a column of a table, as specified by the colspec mini-grammar
// `[multiplier*][halign][.valign][width|~][style]`.
type Column struct {
	Index        int
	Width        int     // relative width weight
	PcWidth      float64 // width in percent of the table width
	Autowidth    bool
	HAlign       string // left, center or right
	VAlign       string // top, middle or bottom
	Style        string // default, asciidoc, emphasis, header, literal, monospaced, strong
	DisplayWidth int    // widest cell content in terminal cells, for autowidth columns
}

// Cell holds the table-specific properties of a table cell block. They
// default to those of the column and may be overridden by a cellspec
// `[colspan][.rowspan]+` or `[n]*`, followed by `[halign][.valign][style]`.
type Cell struct {
	Column  int
	Colspan int
	Rowspan int
	HAlign  string
	VAlign  string
	Style   string
}

// Table holds the structure of a table block. Rows are lists of cell
// blocks.
type Table struct {
	Format    string // psv, dsv or csv
	Separator string
	Columns   []*Column
	Head      [][]BlockID
	Body      [][]BlockID
	Foot      [][]BlockID
	Autowidth bool
	Width     percent.Percent // width of the table relative to the page, attribute 'width'
}

// Rows returns all rows of a table in order head, body, foot.
func (t *Table) Rows() [][]BlockID {
	rows := make([][]BlockID, 0, len(t.Head)+len(t.Body)+len(t.Foot))
	rows = append(rows, t.Head...)
	rows = append(rows, t.Body...)
	return append(rows, t.Foot...)
}

// Styles of table cells, by the letter used in colspecs and cellspecs.
var cellStyles = map[byte]string{
	'a': "asciidoc",
	'd': "default",
	'e': "emphasis",
	'h': "header",
	'l': "literal",
	'm': "monospaced",
	's': "strong",
}

// CellStyle returns the cell style for a style letter.
func CellStyle(letter byte) (string, bool) {
	s, ok := cellStyles[letter]
	return s, ok
}

var halignments = map[byte]string{'<': "left", '^': "center", '>': "right"}
var valignments = map[byte]string{'<': "top", '^': "middle", '>': "bottom"}

// HAlign returns the horizontal alignment for an alignment operator.
func HAlign(op byte) string {
	return halignments[op]
}

// VAlign returns the vertical alignment for an alignment operator.
func VAlign(op byte) string {
	return valignments[op]
}
