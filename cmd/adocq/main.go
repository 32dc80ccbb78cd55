/*
Command adocq is an interactive inspector for AsciiDoc document trees.

	adocq -file manual.adoc [-safe secure] [-trace Info]

It parses a document and accepts commands to look at the resulting tree,
its attributes, references and diagnostics. Type 'help' for a list of
commands.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

*/
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/chzyer/readline"
	"github.com/npillmayer/adoc/core"
	"github.com/npillmayer/adoc/core/safemode"
	"github.com/npillmayer/adoc/engine/dom"
	"github.com/npillmayer/adoc/input/asciidoc"
	"github.com/npillmayer/schuko/schukonf/testconfig"
	"github.com/npillmayer/schuko/tracing"
	"github.com/npillmayer/schuko/tracing/gologadapter"
	"github.com/npillmayer/schuko/tracing/trace2go"
	"github.com/pterm/pterm"
)

// tracer traces with key 'adoc.cli'
func tracer() tracing.Trace {
	return tracing.Select("adoc.cli")
}

func main() {
	initDisplay()

	// command line flags
	tlevel := flag.String("trace", "Error", "Trace level [Debug|Info|Error]")
	filename := flag.String("file", "", "AsciiDoc document to load")
	safe := flag.String("safe", "secure", "Safe mode [unsafe|safe|server|secure] or level")
	flag.Parse()

	// set up logging
	tracing.RegisterTraceAdapter("go", gologadapter.GetAdapter(), false)
	conf := testconfig.Conf{
		"tracing.adapter":       "go",
		"trace.adoc.cli":        "Info",
		"trace.adoc.input":      *tlevel,
		"trace.adoc.parser":     *tlevel,
		"trace.adoc.reader":     *tlevel,
		"trace.adoc.subs":       *tlevel,
		"trace.adoc.attributes": *tlevel,
		"trace.adoc.safemode":   *tlevel,
		"trace.adoc.dom":        *tlevel,
	}
	if err := trace2go.ConfigureRoot(conf, "trace", trace2go.ReplaceTracers(true)); err != nil {
		fmt.Printf("error configuring tracing")
		os.Exit(1)
	}
	tracing.SetTraceSelector(trace2go.Selector())
	pterm.Info.Println("Welcome to the AsciiDoc tree inspector")
	tracer().Infof("Trace level is %s", *tlevel)
	//
	mode, err := safemode.ParseMode(*safe)
	if err != nil {
		tracer().Errorf(err.Error())
		os.Exit(2)
	}
	if *filename == "" {
		tracer().Errorf("no document given, use -file")
		os.Exit(2)
	}
	doc, err := asciidoc.ParseFile(*filename, asciidoc.Options{SafeMode: mode, Conf: conf})
	if doc == nil {
		core.UserError(err)
		os.Exit(4)
	}
	if err != nil {
		pterm.Warning.Println(core.UserMessage(err))
	}
	pterm.Info.Printfln("%s: %d blocks, %d diagnostics", *filename, len(doc.Blocks), len(doc.Diagnostics))
	//
	// set up REPL
	repl, err := readline.New("adoc > ")
	if err != nil {
		tracer().Errorf(err.Error())
		os.Exit(3)
	}
	intp := &Intp{repl: repl, doc: doc}
	//
	// start receiving commands
	pterm.Info.Println("Quit with <ctrl>D") // inform user how to stop the CLI
	intp.REPL()                              // go into interactive mode
}

// We use pterm for moderately fancy output.
func initDisplay() {
	pterm.EnableDebugMessages()
	pterm.Info.Prefix = pterm.Prefix{
		Text:  " !  ",
		Style: pterm.NewStyle(pterm.BgCyan, pterm.FgBlack),
	}
	pterm.Error.Prefix = pterm.Prefix{
		Text:  " Error",
		Style: pterm.NewStyle(pterm.BgRed, pterm.FgBlack),
	}
}

// Intp is our interpreter object
type Intp struct {
	repl *readline.Instance
	doc  *dom.Document
}

// REPL starts interactive mode.
func (intp *Intp) REPL() {
	defer intp.repl.Close()
	for {
		line, err := intp.repl.Readline()
		if err != nil { // io.EOF
			break
		}
		if line = strings.TrimSpace(line); line == "" {
			continue
		}
		cmd, err := parseCommand(line)
		if err != nil {
			pterm.Error.Println(err.Error())
			continue
		}
		quit, err := intp.execute(cmd)
		if err != nil {
			pterm.Error.Println(err.Error())
			continue
		}
		if quit {
			break
		}
	}
	pterm.Info.Println("Good bye!")
}
