package parser

import (
	"encoding/csv"
	"io"
	"math"
	"regexp"
	"strconv"
	"strings"
	"sync"

	"github.com/npillmayer/adoc/core"
	"github.com/npillmayer/adoc/core/percent"
	"github.com/npillmayer/adoc/engine/dom"
	"github.com/npillmayer/adoc/engine/grammar"
	"github.com/npillmayer/adoc/engine/reader"
	"github.com/npillmayer/uax/grapheme"
	"github.com/npillmayer/uax/uax11"
)

// cellSpec is a parsed cellspec: spans or repetition, alignment and style.
type cellSpec struct {
	colspan, rowspan int
	repeat           int
	halign, valign   string
	style            string
}

// rawCell is the text of a cell before it is placed in a row.
type rawCell struct {
	text string
	spec cellSpec
	row  int // index of the source line or record the cell starts on
	at   core.Cursor
}

// table reads a table block opened by fence d.
func (p *Parser) table(parent *dom.Block, d grammar.Delimiter, line reader.Line) {
	lines := p.readBlockLines(d, line)
	b := p.newBlock(dom.CtxTable, parent, line)
	b.EndLine = p.r.LastCursor().LineNo
	b.Subs = grammar.SubsNone
	t := &dom.Table{Format: "psv", Separator: d.Tip[:1]}
	switch t.Separator {
	case ",":
		t.Format = "csv"
	case ":":
		t.Format = "dsv"
	}
	if f, ok := b.Attr("format"); ok {
		switch f {
		case "csv", "tsv":
			t.Format, t.Separator = "csv", ","
			if f == "tsv" {
				t.Separator = "\t"
			}
		case "dsv":
			t.Format, t.Separator = "dsv", ":"
		case "psv":
			t.Format = "psv"
			if t.Separator != "!" {
				t.Separator = "|"
			}
		default:
			p.doc.Diag(core.EINVALID, line.Cursor, "unknown table format %q", f)
		}
	}
	if sep, ok := b.Attr("separator"); ok && sep != "" {
		if sep == `\t` {
			sep = "\t"
		}
		t.Separator = sep
	}
	t.Autowidth = b.HasOption("autowidth")
	t.Width = 100
	if w, ok := b.Attr("width"); ok {
		if pc, err := percent.FromString(w); err == nil {
			t.Width = pc
		} else {
			p.doc.Diag(core.EINVALID, line.Cursor, "table width: %v", err)
		}
	}
	b.Attrs.Set("tablepcwidth", strconv.Itoa(int(t.Width)))
	b.Table = t
	var cells []rawCell
	switch t.Format {
	case "csv":
		cells = p.splitCSV(lines, t.Separator)
	case "dsv":
		cells = splitDSV(lines, t.Separator)
	default:
		cells = splitPSV(lines, t.Separator)
	}
	if spec, ok := b.Attr("cols"); ok {
		cols, valid := parseColumns(p.g, spec)
		if !valid {
			p.doc.Diag(core.ESTRUCTURE, line.Cursor, "malformed colspec %q in table", spec)
		}
		t.Columns = cols
	}
	if len(t.Columns) == 0 {
		t.Columns = implicitColumns(cells)
	}
	normalizeWidths(t)
	header := b.HasOption("header")
	if !header && !b.HasOption("noheader") && len(lines) > 1 {
		header = !grammar.IsBlank(lines[0].Text) && grammar.IsBlank(lines[1].Text) &&
			len(cells) > 0 && cells[0].row == 0
	}
	rows := p.rows(b, cells)
	if header && len(rows) > 0 {
		t.Head, rows = rows[:1], rows[1:]
		for _, id := range t.Head[0] {
			p.doc.Block(id).Cell.Style = "header"
		}
	}
	if b.HasOption("footer") && len(rows) > 0 {
		t.Foot, rows = rows[len(rows)-1:], rows[:len(rows)-1]
	}
	t.Body = rows
	p.fillCells(b)
	measureColumns(p.doc, t)
	tracer().Debugf("%s: table %dx%d (%s)", line.Cursor, len(t.Rows()), len(t.Columns), t.Format)
}

// --- Splitting into cells --------------------------------------------------

// splitPSV splits the lines of a prefix-separated table into cells. A cell
// starts at a separator and extends to the next one, possibly across
// lines. The text in front of a separator may be the cellspec of the cell.
func splitPSV(lines []reader.Line, sep string) []rawCell {
	var cells []rawCell
	var spec cellSpec
	for i, line := range lines {
		parts := splitUnescaped(line.Text, sep)
		if len(parts) == 1 {
			if len(cells) > 0 {
				cells[len(cells)-1].text += "\n" + parts[0]
			}
			continue
		}
		if s, ok := parseCellSpec(parts[0], cellspecStart); ok {
			spec = s
		} else {
			if len(cells) > 0 {
				c := &cells[len(cells)-1]
				c.text += "\n" + parts[0]
				if s, ok := trailingCellSpec(c); ok {
					spec = s
				}
			}
		}
		for j := 1; j < len(parts); j++ {
			cells = append(cells, rawCell{text: parts[j], spec: spec, row: i, at: line.Cursor})
			spec = cellSpec{}
			if j < len(parts)-1 {
				if s, ok := trailingCellSpec(&cells[len(cells)-1]); ok {
					spec = s
				}
			}
		}
	}
	for i := range cells {
		cells[i].text = strings.TrimSpace(cells[i].text)
	}
	return cells
}

// trailingCellSpec removes the cellspec of the next cell from the end of
// cell c.
func trailingCellSpec(c *rawCell) (cellSpec, bool) {
	loc := cellspecEnd.FindStringSubmatchIndex(c.text)
	if loc == nil || loc[1]-loc[0] == 0 {
		return cellSpec{}, false
	}
	spec, ok := parseCellSpec(c.text[loc[0]:], cellspecEnd)
	if ok {
		c.text = c.text[:loc[0]]
	}
	return spec, ok
}

// splitUnescaped splits text at every separator not preceded by a
// backslash. Escaped separators lose their backslash.
func splitUnescaped(text, sep string) []string {
	var parts []string
	var cur []byte
	for i := 0; i < len(text); {
		if strings.HasPrefix(text[i:], sep) {
			if len(cur) > 0 && cur[len(cur)-1] == '\\' {
				cur = append(cur[:len(cur)-1], sep...)
			} else {
				parts = append(parts, string(cur))
				cur = cur[:0:0]
			}
			i += len(sep)
			continue
		}
		cur = append(cur, text[i])
		i++
	}
	return append(parts, string(cur))
}

// splitDSV splits the lines of a delimiter-separated table. Each line is
// a row.
func splitDSV(lines []reader.Line, sep string) []rawCell {
	var cells []rawCell
	for i, line := range lines {
		if grammar.IsBlank(line.Text) {
			continue
		}
		for _, text := range splitUnescaped(line.Text, sep) {
			cells = append(cells, rawCell{text: strings.TrimSpace(text), row: i, at: line.Cursor})
		}
	}
	return cells
}

// splitCSV splits the lines of a comma-separated table. Quoted fields may
// span lines.
func (p *Parser) splitCSV(lines []reader.Line, sep string) []rawCell {
	texts := make([]string, len(lines))
	for i, l := range lines {
		texts[i] = l.Text
	}
	r := csv.NewReader(strings.NewReader(strings.Join(texts, "\n")))
	r.Comma = []rune(sep)[0]
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	r.TrimLeadingSpace = true
	var cells []rawCell
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			p.doc.Diag(core.EINVALID, p.r.LastCursor(), "table: %v", err)
			continue
		}
		lineno, _ := r.FieldPos(0)
		row := lineno - 1
		at := p.r.LastCursor()
		if row >= 0 && row < len(lines) {
			at = lines[row].Cursor
		}
		for _, field := range record {
			cells = append(cells, rawCell{text: strings.TrimSpace(field), row: row, at: at})
		}
	}
	return cells
}

// --- Specs -----------------------------------------------------------------

var (
	cellspecStart = grammar.Default().Rule(grammar.RuleCellspecStart).Pattern
	cellspecEnd   = grammar.Default().Rule(grammar.RuleCellspecEnd).Pattern
)

// parseCellSpec parses a cellspec at the start or the end of a cell.
func parseCellSpec(text string, rx *regexp.Regexp) (cellSpec, bool) {
	spec := cellSpec{colspan: 1, rowspan: 1, repeat: 1}
	m := rx.FindStringSubmatch(text)
	if m == nil {
		return spec, false
	}
	if m[4] != "" {
		style, ok := dom.CellStyle(m[4][0])
		if !ok {
			return spec, false
		}
		spec.style = style
	}
	if m[1] != "" {
		if m[2] == "*" {
			spec.repeat = atoiOr(m[1], 1)
		} else {
			span, rows, _ := strings.Cut(m[1], ".")
			spec.colspan = atoiOr(span, 1)
			spec.rowspan = atoiOr(rows, 1)
		}
	}
	if m[3] != "" {
		h, v, _ := strings.Cut(m[3], ".")
		if h != "" {
			spec.halign = dom.HAlign(h[0])
		}
		if v != "" {
			spec.valign = dom.VAlign(v[0])
		}
	}
	return spec, true
}

func atoiOr(s string, dflt int) int {
	if n, err := strconv.Atoi(s); err == nil && n > 0 {
		return n
	}
	return dflt
}

// parseColumns parses attribute 'cols'. It returns false if a colspec is
// malformed; the columns parsed so far are returned nonetheless.
func parseColumns(g *grammar.Grammar, spec string) ([]*dom.Column, bool) {
	spec = strings.TrimSpace(spec)
	if n, err := strconv.Atoi(spec); err == nil && n > 0 {
		cols := make([]*dom.Column, n)
		for i := range cols {
			cols[i] = &dom.Column{Index: i, Width: 1}
		}
		return cols, true
	}
	var cols []*dom.Column
	for _, part := range strings.FieldsFunc(spec, func(r rune) bool { return r == ',' || r == ';' }) {
		m := g.Match(grammar.RuleColspec, strings.TrimSpace(part))
		if m == nil {
			return nil, false
		}
		col := dom.Column{Width: 1}
		if m[2] != "" {
			col.HAlign = dom.HAlign(m[2][0])
		}
		if m[3] != "" {
			col.VAlign = dom.VAlign(m[3][0])
		}
		switch w := m[4]; {
		case w == "~":
			col.Autowidth = true
		case w != "":
			col.Width = atoiOr(strings.TrimSuffix(w, "%"), 1)
		}
		if m[5] != "" {
			style, ok := dom.CellStyle(m[5][0])
			if !ok {
				return nil, false
			}
			col.Style = style
		}
		for n := atoiOr(m[1], 1); n > 0; n-- {
			c := col
			c.Index = len(cols)
			cols = append(cols, &c)
		}
	}
	return cols, len(cols) > 0
}

// implicitColumns creates as many columns as there are cells in the first
// row.
func implicitColumns(cells []rawCell) []*dom.Column {
	if len(cells) == 0 {
		return nil
	}
	n := 0
	for _, c := range cells {
		if c.row != cells[0].row {
			break
		}
		n += c.spec.colspan * c.spec.repeat
		if c.spec.colspan == 0 {
			n++
		}
	}
	cols := make([]*dom.Column, n)
	for i := range cols {
		cols[i] = &dom.Column{Index: i, Width: 1}
	}
	return cols
}

// normalizeWidths computes the percentage widths of the columns.
func normalizeWidths(t *dom.Table) {
	total := 0
	for _, c := range t.Columns {
		if !c.Autowidth {
			total += c.Width
		}
	}
	if total == 0 {
		return
	}
	for _, c := range t.Columns {
		if !c.Autowidth {
			pc := float64(c.Width) * 100 / float64(total)
			c.PcWidth = math.Round(pc*10000) / 10000
		}
	}
}

// --- Rows ------------------------------------------------------------------

// rows places the cells into rows, honoring column and row spans.
func (p *Parser) rows(table *dom.Block, cells []rawCell) [][]dom.BlockID {
	t := table.Table
	ncols := len(t.Columns)
	if ncols == 0 {
		return nil
	}
	var rows [][]dom.BlockID
	var row []dom.BlockID
	spans := make([]int, ncols)
	blocked := make([]bool, ncols)
	col := 0
	newRow := func() {
		for c := range spans {
			blocked[c] = spans[c] > 0
			if spans[c] > 0 {
				spans[c]--
			}
		}
		col = 0
	}
	skipBlocked := func() {
		for col < ncols && blocked[col] {
			col++
		}
	}
	newRow()
	for _, rc := range cells {
		spec := rc.spec
		if spec.colspan == 0 {
			spec = cellSpec{colspan: 1, rowspan: 1, repeat: 1}
		}
		for n := 0; n < spec.repeat; n++ {
			skipBlocked()
			if col >= ncols {
				rows = append(rows, row)
				row = nil
				newRow()
				skipBlocked()
			}
			colspan := spec.colspan
			if col+colspan > ncols {
				colspan = ncols - col
			}
			cell := p.cellBlock(table, rc, spec, col, colspan)
			row = append(row, cell.ID)
			if spec.rowspan > 1 {
				for c := col; c < col+colspan; c++ {
					if spans[c] < spec.rowspan-1 {
						spans[c] = spec.rowspan - 1
					}
				}
			}
			col += colspan
			skipBlocked()
			if col >= ncols {
				rows = append(rows, row)
				row = nil
				newRow()
			}
		}
	}
	if len(row) > 0 {
		p.doc.Diag(core.EINVALID, table.Loc, "table has an incomplete row of %d cells", len(row))
		rows = append(rows, row)
	}
	return rows
}

// cellBlock creates the block of a cell.
func (p *Parser) cellBlock(table *dom.Block, rc rawCell, spec cellSpec, col, colspan int) *dom.Block {
	column := table.Table.Columns[col]
	b := p.doc.NewBlock(dom.CtxTableCell, table.ID)
	b.Loc = rc.at
	b.Lines = strings.Split(rc.text, "\n")
	cell := &dom.Cell{
		Column:  col,
		Colspan: colspan,
		Rowspan: spec.rowspan,
		HAlign:  spec.halign,
		VAlign:  spec.valign,
		Style:   spec.style,
	}
	if cell.HAlign == "" {
		cell.HAlign = column.HAlign
	}
	if cell.VAlign == "" {
		cell.VAlign = column.VAlign
	}
	if cell.Style == "" {
		cell.Style = column.Style
	}
	b.Cell = cell
	return b
}

// fillCells sets the substitutions of the cells and parses the content of
// AsciiDoc cells.
func (p *Parser) fillCells(table *dom.Block) {
	for _, row := range table.Table.Rows() {
		for _, id := range row {
			b := p.doc.Block(id)
			switch b.Cell.Style {
			case "literal":
				b.Subs = grammar.SubsVerbatim
			case "asciidoc":
				lines := b.Lines
				b.Lines = nil
				b.Subs = grammar.SubsNone
				p.parseCell(b, lines)
			default:
				b.Subs = grammar.SubsNormal
			}
		}
	}
}

// parseCell parses the content of an AsciiDoc cell into blocks.
func (p *Parser) parseCell(cell *dom.Block, lines []string) {
	r := reader.New(lines, cell.Loc, p.attrs, reader.WithGrammar(p.g), reader.WithLoader(p.r.Loader()))
	sub := p.nested(r)
	sub.parseBody(cell)
	p.doc.AddDiagnostics(r.Diagnostics()...)
}

// --- Autowidth -------------------------------------------------------------

var graphemeSetup sync.Once

// displayWidth returns the width of text in terminal cells, as the
// maximum width of its lines.
func displayWidth(text string) int {
	graphemeSetup.Do(grapheme.SetupGraphemeClasses)
	max := 0
	for _, line := range strings.Split(text, "\n") {
		gstr := grapheme.StringFromString(line)
		w := 0
		for i := 0; i < gstr.Len(); i++ {
			w += uax11.Width([]byte(gstr.Nth(i)), uax11.LatinContext)
		}
		if w > max {
			max = w
		}
	}
	return max
}

// measureColumns sets the display width of autowidth columns to the
// widest content of their single-column cells. In an autowidth table, all
// columns are autowidth columns.
func measureColumns(doc *dom.Document, t *dom.Table) {
	measure := t.Autowidth
	for _, col := range t.Columns {
		if t.Autowidth {
			col.Autowidth = true
			col.PcWidth = 0
		}
		measure = measure || col.Autowidth
	}
	if !measure {
		return
	}
	for _, row := range t.Rows() {
		for _, id := range row {
			b := doc.Block(id)
			if b.Cell.Colspan != 1 {
				continue
			}
			col := t.Columns[b.Cell.Column]
			if !col.Autowidth {
				continue
			}
			if w := displayWidth(b.Source()); w > col.DisplayWidth {
				col.DisplayWidth = w
			}
		}
	}
}
