package safemode

import (
	"errors"
	"testing"

	"github.com/npillmayer/adoc/core"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTiers(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "adoc.safemode")
	defer teardown()
	//
	assert.Equal(t, Unsafe, Mode(0).Tier())
	assert.Equal(t, Safe, Mode(5).Tier())
	assert.Equal(t, Server, Mode(15).Tier())
	assert.Equal(t, Secure, Mode(99).Tier())
	assert.Equal(t, "server", Mode(12).String())
	m, err := ParseMode("SECURE")
	assert.NoError(t, err)
	assert.Equal(t, Secure, m)
	m, err = ParseMode("11")
	assert.NoError(t, err)
	assert.Equal(t, Server, m.Tier())
	_, err = ParseMode("paranoid")
	assert.Error(t, err)
}

func TestJailDeniesEscape(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "adoc.safemode")
	defer teardown()
	//
	g := NewGate(Safe, "/docs")
	_, err := g.ResolvePath("../../etc/passwd", "/docs/sub")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrPathOutsideJail))
	assert.Equal(t, core.ESECURITY, core.Code(err))
	//
	p, err := g.ResolvePath("sub/child.adoc", "/docs")
	require.NoError(t, err)
	assert.Equal(t, "/docs/sub/child.adoc", p)
	//
	p, err = g.ResolvePath("../other.adoc", "/docs/sub")
	require.NoError(t, err)
	assert.Equal(t, "/docs/other.adoc", p)
	//
	_, err = g.ResolvePath("/etc/passwd", "/docs")
	assert.Error(t, err)
	_, err = g.ResolvePath("../docs2/x.adoc", "/docs")
	assert.Error(t, err, "sibling directory sharing the jail's prefix must be denied")
}

func TestUnsafeDoesNotJail(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "adoc.safemode")
	defer teardown()
	//
	g := NewGate(Unsafe, "/docs")
	assert.Equal(t, "", g.JailRoot)
	p, err := g.ResolvePath("../../etc/passwd", "/docs/sub")
	require.NoError(t, err)
	assert.Equal(t, "/etc/passwd", p)
}

func TestPrivileges(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "adoc.safemode")
	defer teardown()
	//
	assert.True(t, NewGate(Safe, "/docs").Permits(IncludeFiles))
	assert.True(t, NewGate(Server, "/docs").Permits(IncludeFiles))
	assert.False(t, NewGate(Server, "/docs").Permits(AttributeOverride))
	assert.False(t, NewGate(Secure, "/docs").Permits(IncludeFiles))
	assert.False(t, NewGate(Secure, "/docs").Permits(EmbedLocalData))
	err := NewGate(Secure, "/docs").Check(IncludeFiles, "a.adoc")
	assert.Equal(t, core.ESECURITY, core.Code(err))
	assert.Empty(t, LockedKeys(Safe))
	assert.Contains(t, LockedKeys(Server), "backend")
	assert.NotContains(t, LockedKeys(Server), "icons")
	assert.Contains(t, LockedKeys(Secure), "icons")
	attrs := Attributes(Server)
	assert.Equal(t, "server", attrs["safe-mode-name"])
	assert.Equal(t, "10", attrs["safe-mode-level"])
	_, ok := attrs["safe-mode-server"]
	assert.True(t, ok)
}
