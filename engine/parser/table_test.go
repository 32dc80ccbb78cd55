package parser_test

import (
	"testing"

	"github.com/npillmayer/adoc/core"
	"github.com/npillmayer/adoc/core/attributes"
	"github.com/npillmayer/adoc/core/percent"
	"github.com/npillmayer/adoc/core/safemode"
	"github.com/npillmayer/adoc/engine/dom"
	"github.com/npillmayer/adoc/engine/parser"
	"github.com/npillmayer/adoc/engine/reader"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parseTable(t *testing.T, text string) (*dom.Document, *dom.Block) {
	attrs := attributes.New()
	doc, _ := parser.Parse(reader.FromString(text, attrs), attrs, safemode.Unsafe)
	blocks := doc.Children(dom.Root)
	require.Len(t, blocks, 1)
	require.Equal(t, dom.CtxTable, blocks[0].Context)
	require.NotNil(t, blocks[0].Table)
	return doc, blocks[0]
}

func TestTableWithImplicitHeader(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "adoc.parser")
	defer teardown()
	//
	doc, table := parseTable(t, "[cols=\"1,2\"]\n|===\n|Name |Value\n\n|a |1\n2+|wide\n|===\n")
	tbl := table.Table
	require.Len(t, tbl.Columns, 2)
	assert.InDelta(t, 33.3333, tbl.Columns[0].PcWidth, 0.001)
	assert.InDelta(t, 66.6667, tbl.Columns[1].PcWidth, 0.001)
	require.Len(t, tbl.Head, 1)
	require.Len(t, tbl.Body, 2)
	name := doc.Block(tbl.Head[0][0])
	assert.Equal(t, "header", name.Cell.Style)
	assert.Equal(t, "Name", name.Content)
	require.Len(t, tbl.Body[1], 1)
	assert.Equal(t, 2, doc.Block(tbl.Body[1][0]).Cell.Colspan)
	assert.Equal(t, "wide", doc.Block(tbl.Body[1][0]).Content)
}

func TestTableMalformedColspec(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "adoc.parser")
	defer teardown()
	//
	doc, table := parseTable(t, "[cols=\"1,x\"]\n|===\n|a |b\n|===\n")
	assert.Len(t, table.Table.Columns, 2)
	require.NotEmpty(t, doc.Diagnostics)
	assert.Equal(t, core.ESTRUCTURE, doc.Diagnostics[0].Code)
	assert.Error(t, doc.Err())
}

func TestTableAsciiDocCell(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "adoc.parser")
	defer teardown()
	//
	doc, table := parseTable(t, "[cols=\"1a\"]\n|===\n|\n* one\n* two\n|===\n")
	rows := table.Table.Rows()
	require.Len(t, rows, 1)
	cell := doc.Block(rows[0][0])
	assert.Equal(t, "asciidoc", cell.Cell.Style)
	content := doc.Children(cell.ID)
	require.Len(t, content, 1)
	assert.Equal(t, dom.CtxUList, content[0].Context)
	assert.Len(t, content[0].Children, 2)
}

func TestTableWidthAndCSV(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "adoc.parser")
	defer teardown()
	//
	doc, table := parseTable(t, "[format=csv,width=50%]\n|===\na,b\nc,\"d, e\"\n|===\n")
	tbl := table.Table
	assert.Equal(t, percent.Percent(50), tbl.Width)
	w, _ := table.Attr("tablepcwidth")
	assert.Equal(t, "50", w)
	assert.Equal(t, "csv", tbl.Format)
	require.Len(t, tbl.Columns, 2)
	require.Len(t, tbl.Body, 2)
	assert.Equal(t, "d, e", doc.Block(tbl.Body[1][1]).Content)
}
