package safemode

import (
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/npillmayer/adoc/core"
)

// Mode is a safe mode level. Levels are an ordinal public contract;
// values between the named tiers are legal and inherit the restrictions
// of the next-lower tier.
type Mode int

// The safe mode tiers.
const (
	Unsafe Mode = 0  // no restrictions
	Safe   Mode = 1  // file access jailed to the base directory
	Server Mode = 10 // additionally locks rendering-critical attributes
	Secure Mode = 20 // additionally forbids includes and embedding local data
)

// Tier returns the named tier whose restrictions apply to m.
func (m Mode) Tier() Mode {
	switch {
	case m >= Secure:
		return Secure
	case m >= Server:
		return Server
	case m >= Safe:
		return Safe
	}
	return Unsafe
}

func (m Mode) String() string {
	switch m.Tier() {
	case Safe:
		return "safe"
	case Server:
		return "server"
	case Secure:
		return "secure"
	}
	return "unsafe"
}

// ParseMode parses either a tier name or a numeric level.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "unsafe":
		return Unsafe, nil
	case "safe":
		return Safe, nil
	case "server":
		return Server, nil
	case "secure":
		return Secure, nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 0 {
		return Secure, fmt.Errorf("illegal safe mode: %q", s)
	}
	return Mode(n), nil
}

// Privilege is an operation which may be denied by the safe mode.
type Privilege int

// Privileges checked by the gate.
const (
	IncludeFiles      Privilege = iota // include:: directive for local files
	ReadURIs                           // include:: or data-uri for remote content (needs allow-uri-read)
	EmbedLocalData                     // embed local files as data URIs
	AttributeOverride                  // document may redefine rendering-critical attributes
)

func (p Privilege) String() string {
	switch p {
	case IncludeFiles:
		return "include"
	case ReadURIs:
		return "read-uri"
	case EmbedLocalData:
		return "embed-local-data"
	case AttributeOverride:
		return "attribute-override"
	}
	return "unknown-privilege"
}

// ErrPathOutsideJail is returned for paths resolving outside of the jail root.
var ErrPathOutsideJail = errors.New("path is outside of jail")

// ErrForbidden is returned for operations denied by the safe mode.
var ErrForbidden = errors.New("operation forbidden by safe mode")

// Gate checks file system access and privileged operations against a safe
// mode. The zero value is an unrestricted gate.
type Gate struct {
	Mode     Mode
	JailRoot string // absolute, cleaned; empty below Safe
}

// NewGate creates a gate for a safe mode. At tier Safe and above, paths are
// jailed to jailRoot (which is made absolute). Below Safe the jail is
// ignored.
func NewGate(mode Mode, jailRoot string) *Gate {
	g := &Gate{Mode: mode}
	if mode.Tier() >= Safe && jailRoot != "" {
		if abs, err := filepath.Abs(jailRoot); err == nil {
			g.JailRoot = filepath.Clean(abs)
		} else {
			g.JailRoot = filepath.Clean(jailRoot)
		}
	}
	tracer().Debugf("safe mode gate: mode=%s, jail=%q", mode, g.JailRoot)
	return g
}

// Permits returns true if the gate's safe mode allows privilege p.
// ReadURIs additionally requires the document to set allow-uri-read, which is
// up to the caller.
func (g *Gate) Permits(p Privilege) bool {
	if g == nil {
		return true
	}
	tier := g.Mode.Tier()
	switch p {
	case IncludeFiles, EmbedLocalData, ReadURIs:
		return tier < Secure
	case AttributeOverride:
		return tier < Server
	}
	return false
}

// Check is like Permits, but returns a security error for a denied privilege.
func (g *Gate) Check(p Privilege, target string) error {
	if g.Permits(p) {
		return nil
	}
	return core.WrapError(ErrForbidden, core.ESECURITY,
		"%s of %q denied in %s mode", p, target, g.Mode)
}

// ResolvePath resolves a requested path relative to a start directory.
// Traversal segments are collapsed explicitly. If the gate has a jail root,
// a path whose normalized form falls outside the jail is denied with a
// security error wrapping ErrPathOutsideJail.
func (g *Gate) ResolvePath(requested, startDir string) (string, error) {
	var p string
	if filepath.IsAbs(requested) {
		p = requested
	} else {
		if startDir == "" {
			if g != nil && g.JailRoot != "" {
				startDir = g.JailRoot
			} else {
				startDir = "."
			}
		}
		if !filepath.IsAbs(startDir) {
			if abs, err := filepath.Abs(startDir); err == nil {
				startDir = abs
			}
		}
		p = joinSegments(startDir, requested)
	}
	p = filepath.Clean(p)
	if g == nil || g.JailRoot == "" {
		return p, nil
	}
	if !within(p, g.JailRoot) {
		tracer().Errorf("path %q resolves outside of jail %q", requested, g.JailRoot)
		return "", core.WrapError(ErrPathOutsideJail, core.ESECURITY,
			"path %q is outside of the jail", requested)
	}
	return p, nil
}

// joinSegments appends the segments of rel to base, collapsing "." and "..".
// ".." never climbs above the file system root.
func joinSegments(base, rel string) string {
	segs := splitPath(base)
	for _, s := range strings.Split(filepath.ToSlash(rel), "/") {
		switch s {
		case "", ".":
			continue
		case "..":
			if len(segs) > 0 {
				segs = segs[:len(segs)-1]
			}
		default:
			segs = append(segs, s)
		}
	}
	root := filepath.VolumeName(base) + string(filepath.Separator)
	return root + filepath.Join(segs...)
}

func splitPath(p string) []string {
	p = filepath.ToSlash(strings.TrimPrefix(p, filepath.VolumeName(p)))
	var segs []string
	for _, s := range strings.Split(p, "/") {
		if s != "" && s != "." {
			segs = append(segs, s)
		}
	}
	return segs
}

func within(p, root string) bool {
	if p == root {
		return true
	}
	rel, err := filepath.Rel(root, p)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// RelativeToJail returns path p relative to the jail root, if possible.
// It is used to avoid leaking absolute paths into documents.
func (g *Gate) RelativeToJail(p string) string {
	if g == nil || g.JailRoot == "" {
		return p
	}
	if rel, err := filepath.Rel(g.JailRoot, p); err == nil && within(p, g.JailRoot) {
		return filepath.ToSlash(rel)
	}
	return p
}

// LockedKeys returns the rendering-critical attribute keys which document
// content may not redefine at safe mode m.
func LockedKeys(m Mode) []string {
	tier := m.Tier()
	if tier < Server {
		return nil
	}
	keys := []string{"backend", "doctype", "copycss", "source-highlighter", "docinfo",
		"stylesheet", "stylesdir", "max-include-depth", "allow-uri-read"}
	if tier >= Secure {
		keys = append(keys, "linkcss", "icons", "data-uri")
	}
	return keys
}

// Attributes returns the attributes describing safe mode m, which are
// seeded into every document.
func Attributes(m Mode) map[string]string {
	return map[string]string{
		"safe-mode-name":                 m.String(),
		"safe-mode-level":                strconv.Itoa(int(m)),
		"safe-mode-" + m.Tier().String(): "",
	}
}
