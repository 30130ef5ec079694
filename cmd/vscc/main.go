// Command vscc is the vertex shader compiler CLI.
//
// Usage:
//
//	vscc [options] <input>
//
// Examples:
//
//	vscc shader.vsh                    # Compile to stdout
//	vscc -o shader.asm shader.vsh      # Compile to file
//	vscc -tokens shader.vsh            # Print the token stream
//	vscc -tree shader.vsh              # Print the parse tree
//	vscc -map shader.vsh               # Print the register map
//	vscc -ast shader.vsh               # Dump the semantic tree
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/sanity-io/litter"

	"github.com/gogpu/vsc"
	"github.com/gogpu/vsc/gles"
	"github.com/gogpu/vsc/vsasm"
)

var (
	output  = flag.String("o", "", "output file (default: stdout)")
	tokens  = flag.Bool("tokens", false, "print the token stream instead of assembly")
	tree    = flag.Bool("tree", false, "print the parse tree instead of assembly")
	dumpAST = flag.Bool("ast", false, "dump the semantic tree instead of assembly")
	regmap  = flag.Bool("map", false, "print the register map instead of assembly")
	quiet   = flag.Bool("q", false, "do not print warnings")
	werror  = flag.Bool("Werror", false, "treat warnings as errors")
	version = flag.Bool("version", false, "print version")
)

const vscVersion = "0.1.0-dev"

func main() {
	flag.Usage = usage
	flag.Parse()

	if *version {
		fmt.Printf("vscc version %s\n", vscVersion)
		return
	}

	args := flag.Args()
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Error: no input file specified")
		usage()
		os.Exit(1)
	}

	inputPath := args[0]

	source, err := os.ReadFile(inputPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading file: %v\n", err)
		os.Exit(1)
	}

	if *tokens {
		printTokens(string(source))
		return
	}

	if *tree {
		parsed, err := vsc.Parse(string(source))
		if err != nil {
			fail(err)
		}
		write([]byte(parsed.String()))
		return
	}

	if *dumpAST {
		parsed, err := vsc.Parse(string(source))
		if err != nil {
			fail(err)
		}
		root, warnings := vsc.Build(parsed)
		if !*quiet {
			for _, w := range warnings {
				fmt.Fprintf(os.Stderr, "warning: %s\n", w)
			}
		}
		dump := litter.Options{
			StripPackageNames: true,
			HideZeroValues:    true,
		}
		write([]byte(dump.Sdump(root) + "\n"))
		return
	}

	opts := vsc.DefaultCompileOptions()
	opts.WarningsAsErrors = *werror
	res, err := vsc.CompileWithOptions(string(source), opts)
	if res != nil && !*quiet {
		for _, w := range res.Warnings {
			fmt.Fprintf(os.Stderr, "warning: %s\n", w)
		}
	}
	if err != nil {
		fail(err)
	}

	if *regmap {
		printMap(res.Assembly)
		return
	}
	write([]byte(res.Assembly))
	if *output != "" {
		fmt.Printf("Successfully compiled %s to %s (%d temporaries, %d constants)\n",
			inputPath, *output, res.Info.TempRegisters, res.Info.ConstantRegisters)
	}
}

// fail reports err and exits. Syntax errors are shown with source context.
func fail(err error) {
	var pe *gles.ParseError
	var we *vsc.WarningsError
	switch {
	case errors.As(err, &pe):
		fmt.Fprint(os.Stderr, pe.FormatWithContext())
	case errors.As(err, &we):
		fmt.Fprintf(os.Stderr, "Compilation failed: %d warning(s) with -Werror\n", len(we.Warnings))
	default:
		fmt.Fprintf(os.Stderr, "Compilation error: %v\n", err)
	}
	os.Exit(1)
}

func write(data []byte) {
	var err error
	if *output != "" {
		err = os.WriteFile(*output, data, 0644)
	} else {
		_, err = os.Stdout.Write(data)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error writing output: %v\n", err)
		os.Exit(1)
	}
}

// printTokens lists every token of source with its position and kind.
func printTokens(source string) {
	var sb strings.Builder
	tw := tabwriter.NewWriter(&sb, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "POS\tKIND\tTEXT")
	for _, tok := range gles.NewLexer(source).Tokenize() {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", tok.Pos(), tok.Kind, tok.Text)
	}
	flushTable(tw, &sb)
}

// printMap lists every alias of the generated assembly with its register
// and binding.
func printMap(assembly string) {
	aliases, err := vsasm.ParseAliases(assembly)
	if err != nil {
		fail(err)
	}
	var sb strings.Builder
	tw := tabwriter.NewWriter(&sb, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tREGISTER\tBINDING")
	for _, a := range aliases {
		binding := a.Semantic.String()
		if a.Value != nil {
			v := *a.Value
			binding = fmt.Sprintf("(%g, %g, %g, %g)", v[0], v[1], v[2], v[3])
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\n", a.Name, a.Register, binding)
	}
	flushTable(tw, &sb)
}

// flushTable completes a table built in sb and writes it out.
func flushTable(tw *tabwriter.Writer, sb *strings.Builder) {
	if err := tw.Flush(); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing output: %v\n", err)
		os.Exit(1)
	}
	write([]byte(sb.String()))
}

func usage() {
	fmt.Fprintf(os.Stderr, "Usage: vscc [options] <input.vsh>\n\n")
	fmt.Fprintf(os.Stderr, "Options:\n")
	flag.PrintDefaults()
	fmt.Fprintf(os.Stderr, "\nExamples:\n")
	fmt.Fprintf(os.Stderr, "  vscc shader.vsh                Compile to stdout\n")
	fmt.Fprintf(os.Stderr, "  vscc -o shader.asm shader.vsh  Compile to file\n")
	fmt.Fprintf(os.Stderr, "  vscc -tokens shader.vsh        Print the token stream\n")
	fmt.Fprintf(os.Stderr, "  vscc -tree shader.vsh          Print the parse tree\n")
	fmt.Fprintf(os.Stderr, "  vscc -map shader.vsh           Print the register map\n")
	fmt.Fprintf(os.Stderr, "  vscc -ast shader.vsh           Dump the semantic tree\n")
}
