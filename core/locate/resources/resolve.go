package resources

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/npillmayer/adoc/core"
	"github.com/npillmayer/adoc/core/safemode"
	"github.com/npillmayer/schuko"
)

type resourceType int

// resource types
const (
	unknownResourceType resourceType = iota
	includeResourceType
	imageResourceType
	uriResourceType
)

// NotFound returns an application error for a missing resource.
func NotFound(res string, rtype resourceType) error {
	e := fmt.Errorf("resource missing: %v", res)
	var s string
	switch rtype {
	case includeResourceType:
		s = fmt.Sprintf("include file not found: %s", res)
	case imageResourceType:
		s = fmt.Sprintf("image not found: %s", res)
	case uriResourceType:
		s = fmt.Sprintf("remote resource not readable: %s", res)
	default:
		s = fmt.Sprintf("resource not found: %s", res)
	}
	err := core.WrapError(e, core.EMISSING, s)
	return err
}

var uriRx = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9.+-]+:/{0,2}[^/]`)

// IsURI returns true if target looks like a URI (scheme followed by a colon),
// rather than like a file path. Windows drive letters are not URIs.
func IsURI(target string) bool {
	return uriRx.MatchString(target) && !filepath.IsAbs(target)
}

// Content is the content of a loaded resource.
type Content struct {
	Path string // absolute path or URI
	Dir  string // directory to resolve relative references in the content
	Data []byte
}

// Lines splits content into lines, stripping line terminators.
func (c Content) Lines() []string {
	s := string(c.Data)
	if s == "" {
		return nil
	}
	s = strings.TrimSuffix(strings.ReplaceAll(s, "\r\n", "\n"), "\n")
	return strings.Split(s, "\n")
}

// Loader loads local and remote resources through a safe mode gate.
// Conf may be nil; it is consulted for the 'app-key', which names the
// application's cache folder.
type Loader struct {
	Gate   *safemode.Gate
	Conf   schuko.Configuration
	Client *http.Client
}

// NewLoader creates a loader for a gate.
func NewLoader(gate *safemode.Gate, conf schuko.Configuration) *Loader {
	return &Loader{
		Gate:   gate,
		Conf:   conf,
		Client: &http.Client{Timeout: 30 * time.Second},
	}
}

// ReadFile reads a local file. The path is resolved relative to startDir
// and checked against the gate's jail. A path outside of the jail results
// in a security error, a missing file in an EMISSING error.
func (l *Loader) ReadFile(target, startDir string) (Content, error) {
	p, err := l.Gate.ResolvePath(target, startDir)
	if err != nil {
		return Content{}, err
	}
	data, err := os.ReadFile(p)
	if err != nil {
		tracer().Infof("cannot read %s: %v", p, err)
		return Content{Path: p}, NotFound(l.Gate.RelativeToJail(p), includeResourceType)
	}
	return Content{Path: p, Dir: filepath.Dir(p), Data: data}, nil
}

// ContentPromise is returned by ResolveURI. Content blocks until loading
// has completed.
type ContentPromise interface {
	Content() (Content, error)
}

type contentPlusErr struct {
	content Content
	err     error
}

type contentLoader struct {
	await func(ctx context.Context) (Content, error)
	ctx   context.Context
}

func (loader contentLoader) Content() (Content, error) {
	return loader.await(loader.ctx)
}

// ResolveURI starts reading a remote resource. Reading URIs is a privilege
// of the safe mode and has to be allowed by the document
// (attribute 'allow-uri-read'). If useCache is set, the content is served
// from (and stored into) the application's cache folder.
func (l *Loader) ResolveURI(ctx context.Context, uri string, allowed, useCache bool) ContentPromise {
	ch := make(chan contentPlusErr, 1)
	go func(ch chan<- contentPlusErr) {
		result := contentPlusErr{}
		result.content, result.err = l.readURI(ctx, uri, allowed, useCache)
		ch <- result
		close(ch)
	}(ch)
	return contentLoader{
		ctx: ctx,
		await: func(ctx context.Context) (Content, error) {
			select {
			case <-ctx.Done():
				return Content{}, ctx.Err()
			case r := <-ch:
				return r.content, r.err
			}
		},
	}
}

func (l *Loader) readURI(ctx context.Context, uri string, allowed, useCache bool) (Content, error) {
	if err := l.Gate.Check(safemode.ReadURIs, uri); err != nil {
		return Content{}, err
	}
	if !allowed {
		return Content{}, core.Error(core.ESECURITY,
			"cannot read %s: attribute allow-uri-read is not set", uri)
	}
	dir := uri
	if i := strings.LastIndex(uri, "/"); i > 0 {
		dir = uri[:i]
	}
	var cachefile string
	if useCache {
		if cachedir, err := CacheDirPath(l.Conf, "uri-cache"); err == nil {
			cachefile = filepath.Join(cachedir, cacheKey(uri))
			if data, err := os.ReadFile(cachefile); err == nil {
				tracer().Debugf("serving %s from cache", uri)
				return Content{Path: uri, Dir: dir, Data: data}, nil
			}
		}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, uri, nil)
	if err != nil {
		return Content{}, core.WrapError(err, core.EINVALID, "illegal URI %s", uri)
	}
	client := l.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return Content{}, core.WrapError(err, core.ECONNECTION, "cannot read %s", uri)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return Content{}, core.WrapError(NotFound(uri, uriResourceType), core.ECONNECTION,
			"cannot read %s: %s", uri, resp.Status)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return Content{}, core.WrapError(err, core.ECONNECTION, "cannot read %s", uri)
	}
	if cachefile != "" {
		if err := os.WriteFile(cachefile, data, 0644); err != nil {
			tracer().Errorf("cannot cache %s: %v", uri, err)
		}
	}
	return Content{Path: uri, Dir: dir, Data: data}, nil
}

// DataURI reads a local image and encodes it as a data URI. Embedding local
// files is denied in safe mode Secure.
func (l *Loader) DataURI(target, startDir string) (string, error) {
	if err := l.Gate.Check(safemode.EmbedLocalData, target); err != nil {
		return "", err
	}
	p, err := l.Gate.ResolvePath(target, startDir)
	if err != nil {
		return "", err
	}
	data, err := os.ReadFile(p)
	if err != nil {
		return "", NotFound(target, imageResourceType)
	}
	mimetype := mime.TypeByExtension(strings.ToLower(path.Ext(p)))
	if mimetype == "" {
		mimetype = "application/octet-stream"
	}
	if i := strings.Index(mimetype, ";"); i > 0 {
		mimetype = mimetype[:i]
	}
	return "data:" + mimetype + ";base64," + base64.StdEncoding.EncodeToString(data), nil
}
