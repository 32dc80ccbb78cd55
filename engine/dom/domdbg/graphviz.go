package domdbg

import (
	"fmt"
	"io"
	"strings"
	"text/template"

	"github.com/npillmayer/adoc/engine/dom"
)

// Parameters for GraphViz drawing.
type graphParamsType struct {
	Fontname  string
	BlockTmpl *template.Template
	EdgeTmpl  *template.Template
}

type gblock struct {
	B    *dom.Block
	Name string
}

type gedge struct {
	N1, N2 gblock
}

// ToGraphViz creates a graphical representation of a block tree.
// It produces a DOT file format suitable as input for Graphviz, given a Writer.
func ToGraphViz(doc *dom.Document, w io.Writer) error {
	header, err := template.New("blockTree").Parse(graphHeadTmpl)
	if err != nil {
		return err
	}
	gparams := graphParamsType{Fontname: "Helvetica"}
	gparams.BlockTmpl, err = template.New("block").Funcs(
		template.FuncMap{
			"label":      label,
			"isverbatim": isVerbatim,
		}).Parse(blockTmpl)
	if err != nil {
		return err
	}
	gparams.EdgeTmpl = template.Must(template.New("blockedge").Parse(edgeTmpl))
	if err = header.Execute(w, gparams); err != nil {
		return err
	}
	var werr error
	doc.Walk(func(b *dom.Block, depth int) dom.WalkResult {
		if werr = gparams.BlockTmpl.Execute(w, gblock{b, nodeName(b.ID)}); werr != nil {
			return dom.WalkStop
		}
		if b.Parent != dom.NoBlock {
			e := gedge{gblock{nil, nodeName(b.Parent)}, gblock{b, nodeName(b.ID)}}
			if werr = gparams.EdgeTmpl.Execute(w, e); werr != nil {
				return dom.WalkStop
			}
		}
		return dom.WalkContinue
	})
	if werr != nil {
		return werr
	}
	_, err = w.Write([]byte("}\n"))
	return err
}

func nodeName(id dom.BlockID) string {
	return fmt.Sprintf("node%05d", id)
}

func label(b *dom.Block) string {
	s := b.Context.String()
	if b.Style != "" && b.Style != s {
		s += " [" + b.Style + "]"
	}
	if b.Anchor != "" {
		s += " #" + b.Anchor
	}
	if b.Context == dom.CtxSection {
		s += fmt.Sprintf(" L%d", b.Level)
	}
	if t := shortText(b); t != "" {
		s += "\\n" + t
	}
	return "\"" + s + "\""
}

func shortText(b *dom.Block) string {
	txt := b.RawTitle
	if txt == "" && len(b.Lines) > 0 {
		txt = b.Lines[0]
	}
	if r := []rune(txt); len(r) > 16 {
		txt = string(r[:16]) + "…"
	}
	txt = strings.Replace(txt, "\\", "\\\\", -1)
	txt = strings.Replace(txt, "\t", " ", -1)
	return strings.Replace(txt, "\"", "'", -1)
}

func isVerbatim(b *dom.Block) bool {
	return b.Context.IsVerbatim()
}

// --- Templates --------------------------------------------------------

const graphHeadTmpl = `digraph g {
  graph [labelloc="t" label="" splines=true overlap=false rankdir = "LR"];
  graph [fontname = "{{ .Fontname }}" fontsize=12] ;
   node [fontname = "{{ .Fontname }}" fontsize=12] ;
   edge [fontname = "{{ .Fontname }}" fontsize=12] ;
`

const blockTmpl = `{{ if isverbatim .B }}
{{ .Name }}	[ label={{ label .B }} shape=box style=filled fillcolor=grey95 fontname="Courier" fontsize=11.0 ] ;
{{ else }}
{{ .Name }}	[ label={{ label .B }} shape=box style=filled fillcolor=lightblue3 ] ;
{{ end }}
`

const edgeTmpl = `{{ .N1.Name }} -> {{ .N2.Name }} [weight=1] ;
`
