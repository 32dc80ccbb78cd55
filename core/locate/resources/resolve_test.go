package resources

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/npillmayer/adoc/core"
	"github.com/npillmayer/adoc/core/safemode"
	"github.com/npillmayer/schuko/schukonf/testconfig"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadFileInJail(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "adoc.resources")
	defer teardown()
	//
	root := t.TempDir()
	sub := filepath.Join(root, "sub")
	require.NoError(t, os.MkdirAll(sub, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(sub, "child.adoc"), []byte("one\r\ntwo\n"), 0644))
	l := NewLoader(safemode.NewGate(safemode.Safe, root), nil)
	//
	c, err := l.ReadFile("sub/child.adoc", root)
	require.NoError(t, err)
	assert.Equal(t, []string{"one", "two"}, c.Lines())
	assert.Equal(t, sub, c.Dir)
	//
	_, err = l.ReadFile("../../etc/passwd", sub)
	assert.Equal(t, core.ESECURITY, core.Code(err))
	_, err = l.ReadFile("missing.adoc", root)
	assert.Equal(t, core.EMISSING, core.Code(err))
	assert.NotContains(t, core.UserMessage(err), root, "message must not leak the jail path")
}

func TestDataURI(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "adoc.resources")
	defer teardown()
	//
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "dot.png"), []byte{0x89, 'P', 'N', 'G'}, 0644))
	l := NewLoader(safemode.NewGate(safemode.Safe, root), nil)
	uri, err := l.DataURI("dot.png", root)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(uri, "data:image/png;base64,"), uri)
	//
	l = NewLoader(safemode.NewGate(safemode.Secure, root), nil)
	_, err = l.DataURI("dot.png", root)
	assert.Equal(t, core.ESECURITY, core.Code(err))
}

func TestResolveURI(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "adoc.resources")
	defer teardown()
	//
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/doc.adoc" {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte("remote line\n"))
	}))
	defer srv.Close()
	conf := testconfig.Conf{"app-key": "adoc-test"}
	l := NewLoader(safemode.NewGate(safemode.Safe, t.TempDir()), conf)
	ctx := context.Background()
	//
	c, err := l.ResolveURI(ctx, srv.URL+"/doc.adoc", true, false).Content()
	require.NoError(t, err)
	assert.Equal(t, []string{"remote line"}, c.Lines())
	assert.Equal(t, srv.URL, c.Dir)
	//
	_, err = l.ResolveURI(ctx, srv.URL+"/doc.adoc", false, false).Content()
	assert.Equal(t, core.ESECURITY, core.Code(err), "allow-uri-read is required")
	_, err = l.ResolveURI(ctx, srv.URL+"/other.adoc", true, false).Content()
	assert.Equal(t, core.ECONNECTION, core.Code(err))
}

func TestIsURI(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "adoc.resources")
	defer teardown()
	//
	assert.True(t, IsURI("https://example.org/a.adoc"))
	assert.False(t, IsURI("chapters/a.adoc"))
	assert.False(t, IsURI("/abs/a.adoc"))
}
