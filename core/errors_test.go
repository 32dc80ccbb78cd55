package core

import (
	"errors"
	"os"
	"testing"

	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/assert"
)

func TestErrorCodes(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "adoc.core")
	defer teardown()
	//
	err := WrapError(os.ErrNotExist, EMISSING, "include file not found: %s", "a.adoc")
	assert.Equal(t, EMISSING, Code(err))
	assert.Equal(t, "include file not found: a.adoc", UserMessage(err))
	assert.True(t, errors.Is(err, os.ErrNotExist))
	assert.Equal(t, NOERROR, Code(nil))
	assert.Equal(t, EINTERNAL, Code(errors.New("x")))
	assert.False(t, IsFatal(err))
	assert.True(t, IsFatal(Error(ESECURITY, "denied")))
}

func TestParseErrorUnwrapsDiagnostics(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "adoc.core")
	defer teardown()
	//
	at := Cursor{File: "doc.adoc", LineNo: 7}
	perr := &ParseError{Diagnostics: []Diagnostic{
		Diag(ESTRUCTURE, at, "unterminated listing block"),
		Diag(ESECURITY, at, "include denied"),
	}}
	var d Diagnostic
	assert.True(t, errors.As(perr, &d))
	assert.Equal(t, ESTRUCTURE, d.Code)
	assert.Equal(t, 7, d.Cursor.LineNo)
	assert.Equal(t, ESTRUCTURE, Code(perr))
	assert.Contains(t, perr.Error(), "2 errors")
	assert.Equal(t, "doc.adoc: line 7: unterminated listing block", perr.UserMessage())
}

func TestFatalDiagnostics(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "adoc.core")
	defer teardown()
	//
	at := Cursor{LineNo: 3}
	assert.NoError(t, FatalDiagnostics(nil))
	assert.NoError(t, FatalDiagnostics([]Diagnostic{Diag(EREFERENCE, at, "no callout found for <1>")}))
	err := FatalDiagnostics([]Diagnostic{
		Diag(EREFERENCE, at, "no callout found for <1>"),
		Diag(ESECURITY, at, "include denied"),
	})
	var perr *ParseError
	assert.True(t, errors.As(err, &perr))
	assert.Len(t, perr.Diagnostics, 1)
	assert.Equal(t, ESECURITY, Code(err))
	assert.True(t, IsFatal(err))
}
