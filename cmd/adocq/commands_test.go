package main

import (
	"strconv"
	"testing"

	"github.com/npillmayer/adoc/input/asciidoc"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCommand(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "adoc.cli")
	defer teardown()
	//
	cmd, err := parseCommand("xpath://section[@level=1]")
	require.NoError(t, err)
	assert.Equal(t, XPATH, cmd.code)
	assert.Equal(t, "//section[@level=1]", cmd.arg)
	cmd, err = parseCommand("Tree")
	require.NoError(t, err)
	assert.Equal(t, TREE, cmd.code)
	_, err = parseCommand("jump:3")
	assert.Error(t, err)
}

func TestExecuteQueries(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "adoc.cli")
	defer teardown()
	//
	doc, err := asciidoc.ParseString("= Doc\n\n== Intro\n\nHello.\n", asciidoc.Options{})
	require.NoError(t, err)
	intp := &Intp{doc: doc}
	for _, line := range []string{"attr:doctitle", "refs", "diag", "text", "help"} {
		cmd, err := parseCommand(line)
		require.NoError(t, err)
		quit, err := intp.execute(cmd)
		assert.NoError(t, err, line)
		assert.False(t, quit)
	}
	quit, err := intp.execute(Command{code: QUIT})
	assert.NoError(t, err)
	assert.True(t, quit)
	sec := doc.Sections()[0]
	assert.Equal(t, "#"+strconv.Itoa(int(sec.ID))+` section id=_intro "Intro" (line 3)`, label(sec))
}
