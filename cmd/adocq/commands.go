package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/npillmayer/adoc/engine/dom"
	"github.com/npillmayer/adoc/engine/dom/domdbg"
	"github.com/npillmayer/adoc/engine/dom/xpathadapter"
	"github.com/pterm/pterm"
	"github.com/pterm/pterm/putils"
)

// Op codes of the interpreter.
const (
	QUIT int = iota
	HELP
	TREE
	ATTR
	REFS
	XPATH
	CSS
	HTML
	DOT
	TEXT
	DIAG
)

var opcodes = map[string]int{
	"quit":  QUIT,
	"help":  HELP,
	"tree":  TREE,
	"attr":  ATTR,
	"refs":  REFS,
	"xpath": XPATH,
	"css":   CSS,
	"html":  HTML,
	"dot":   DOT,
	"text":  TEXT,
	"diag":  DIAG,
}

// Command is a single operation with an optional argument, written as
// 'op' or 'op:arg'.
type Command struct {
	code int
	arg  string
}

func parseCommand(line string) (Command, error) {
	op, arg, _ := strings.Cut(line, ":")
	code, ok := opcodes[strings.ToLower(strings.TrimSpace(op))]
	if !ok {
		return Command{code: HELP}, fmt.Errorf("unknown command %q", op)
	}
	tracer().Debugf("command %s, argument %q", op, arg)
	return Command{code: code, arg: strings.TrimSpace(arg)}, nil
}

func (intp *Intp) execute(cmd Command) (bool, error) {
	doc := intp.doc
	switch cmd.code {
	case QUIT:
		return true, nil
	case HELP:
		help()
	case TREE:
		return false, printTree(doc)
	case ATTR:
		if cmd.arg == "" {
			data := pterm.TableData{{"Attribute", "Value"}}
			doc.Attributes.Each(func(k, v string) {
				data = append(data, []string{k, v})
			})
			return false, pterm.DefaultTable.WithHasHeader().WithData(data).Render()
		}
		v, ok := doc.Attributes.Value(cmd.arg)
		if !ok {
			pterm.Warning.Printfln("attribute %s is not set", cmd.arg)
			break
		}
		pterm.Printfln("%s = %q", cmd.arg, v)
	case REFS:
		data := pterm.TableData{{"ID", "Kind", "Block", "Reftext"}}
		for _, id := range doc.Refs.WithPrefix(cmd.arg) {
			ref, _ := doc.Refs.Lookup(id)
			data = append(data, []string{id, ref.Kind.String(), strconv.Itoa(int(ref.Block)), ref.Reftext})
		}
		return false, pterm.DefaultTable.WithHasHeader().WithData(data).Render()
	case XPATH:
		if cmd.arg == "" {
			return false, errors.New("xpath: missing expression")
		}
		blocks, err := xpathadapter.Query(doc, cmd.arg)
		if err != nil {
			return false, err
		}
		printBlocks(blocks)
	case CSS:
		if cmd.arg == "" {
			return false, errors.New("css: missing selector")
		}
		blocks, err := domdbg.Select(doc, cmd.arg)
		if err != nil {
			return false, err
		}
		printBlocks(blocks)
	case HTML:
		return false, domdbg.ToHTML(doc, os.Stdout)
	case DOT:
		return false, domdbg.ToGraphViz(doc, os.Stdout)
	case TEXT:
		id := dom.Root
		if cmd.arg != "" {
			n, err := strconv.Atoi(cmd.arg)
			if err != nil {
				return false, fmt.Errorf("text: block number expected, got %q", cmd.arg)
			}
			id = dom.BlockID(n)
		}
		text, err := dom.InnerText(doc, id)
		if err != nil {
			return false, err
		}
		pterm.Println(text.String())
	case DIAG:
		if len(doc.Diagnostics) == 0 {
			pterm.Info.Println("no diagnostics")
		}
		for _, d := range doc.Diagnostics {
			pterm.Printfln("[%d] %s", d.Code, d.UserMessage())
		}
	}
	return false, nil
}

func printTree(doc *dom.Document) error {
	var list pterm.LeveledList
	doc.Walk(func(b *dom.Block, depth int) dom.WalkResult {
		list = append(list, pterm.LeveledListItem{Level: depth, Text: label(b)})
		return dom.WalkContinue
	})
	root := putils.TreeFromLeveledList(list)
	return pterm.DefaultTree.WithRoot(root).Render()
}

func printBlocks(blocks []*dom.Block) {
	if len(blocks) == 0 {
		pterm.Info.Println("no match")
	}
	for _, b := range blocks {
		pterm.Println(label(b))
	}
}

// label describes a block in one line.
func label(b *dom.Block) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "#%d %s", b.ID, b.Context)
	if b.Style != "" {
		fmt.Fprintf(&sb, " [%s]", b.Style)
	}
	if b.Anchor != "" {
		fmt.Fprintf(&sb, " id=%s", b.Anchor)
	}
	if b.Numeral != "" {
		fmt.Fprintf(&sb, " %s", b.Numeral)
	}
	switch {
	case b.Title != "":
		fmt.Fprintf(&sb, " %q", b.Title)
	case len(b.Lines) > 0:
		first := b.Lines[0]
		if len(first) > 40 {
			first = first[:40] + "..."
		}
		fmt.Fprintf(&sb, " %q", first)
	}
	fmt.Fprintf(&sb, " (line %d)", b.Loc.LineNo)
	return sb.String()
}

func help() {
	pterm.Info.Println("Commands")
	pterm.Println(`
	tree            print the block tree
	attr[:name]     list all attributes, or show one
	refs[:prefix]   list reference ids
	xpath:expr      select blocks by an XPath expression, e.g. //section[@level=1]
	css:selector    select blocks by a CSS selector over the debug HTML, e.g. .paragraph
	html            print the debug HTML of the tree
	dot             print the tree in GraphViz format
	text[:block]    print the plain text of a block, default is the document
	diag            list diagnostics
	quit            leave the inspector
	`)
}
