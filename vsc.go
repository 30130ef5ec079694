// Package vsc compiles a GLSL ES 1.0 vertex shader dialect to vertex shader
// assembly.
//
// The pipeline has three stages, each available on its own:
//
//	tree, err := vsc.Parse(source)         // gles: source -> parse tree
//	root, warnings := vsc.Build(tree)      // ast: parse tree -> semantic tree
//	text, info, err := vsc.Generate(root, vsasm.DefaultOptions())
//
// Most callers only need Compile:
//
//	source := `
//	attribute vec4 normal;
//	void main() {
//	    asm("mul gl_Position, @0, gl_ModelViewProjectionMatrix", gl_Vertex);
//	    gl_FrontColor = vec4(1.0, 0.5, 0.25, 1.0);
//	}
//	`
//	res, err := vsc.Compile(source)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Print(res.Assembly)
//
// Syntax errors are *gles.ParseError values and code generation errors are
// *vsasm.Error values; both can be recovered with errors.As.
package vsc

import (
	"fmt"

	"github.com/gogpu/vsc/ast"
	"github.com/gogpu/vsc/gles"
	"github.com/gogpu/vsc/vsasm"
)

// CompileOptions configures shader compilation.
type CompileOptions struct {
	// Asm controls the assembly output.
	Asm vsasm.Options

	// WarningsAsErrors fails compilation when any warning was produced.
	WarningsAsErrors bool
}

// DefaultCompileOptions returns sensible default options.
func DefaultCompileOptions() CompileOptions {
	return CompileOptions{
		Asm: vsasm.DefaultOptions(),
	}
}

// Result is the output of a successful compilation.
type Result struct {
	// Assembly is the generated program text.
	Assembly string

	// Warnings holds the constructs that were skipped, from both the AST
	// builder and the code generator, in that order.
	Warnings []ast.Warning

	// Info describes the generated program.
	Info vsasm.TranslationInfo
}

// WarningsError is returned when CompileOptions.WarningsAsErrors is set and
// compilation produced warnings.
type WarningsError struct {
	Warnings []ast.Warning
}

// Error implements the error interface.
func (e *WarningsError) Error() string {
	if len(e.Warnings) == 1 {
		return "1 warning treated as error: " + e.Warnings[0].String()
	}
	return fmt.Sprintf("%d warnings treated as errors; first: %s", len(e.Warnings), e.Warnings[0])
}

// Compile compiles source to assembly using default options.
func Compile(source string) (*Result, error) {
	return CompileWithOptions(source, DefaultCompileOptions())
}

// CompileWithOptions compiles source to assembly with custom options.
//
// The compilation pipeline is:
//  1. Parse source to a parse tree
//  2. Build the semantic tree, collecting warnings
//  3. Generate and emit assembly
func CompileWithOptions(source string, opts CompileOptions) (*Result, error) {
	tree, err := Parse(source)
	if err != nil {
		return nil, fmt.Errorf("parse error: %w", err)
	}

	root, warnings := Build(tree)

	text, info, err := Generate(root, opts.Asm)
	if err != nil {
		return nil, fmt.Errorf("codegen error: %w", err)
	}

	res := &Result{
		Assembly: text,
		Warnings: append(warnings, info.Warnings...),
		Info:     info,
	}
	if opts.WarningsAsErrors && len(res.Warnings) > 0 {
		return res, &WarningsError{Warnings: res.Warnings}
	}
	return res, nil
}

// Parse parses shader source into a concrete parse tree.
//
// This is the first stage of compilation. On failure the error is a
// *gles.ParseError.
func Parse(source string) (*gles.Node, error) {
	return gles.Parse(source)
}

// Build converts a parse tree into the semantic tree used for code
// generation. Unsupported constructs are dropped and reported as warnings.
func Build(tree *gles.Node) (*ast.Node, []ast.Warning) {
	return ast.Build(tree)
}

// Generate produces assembly text from a semantic tree.
//
// This is the final stage of compilation. On failure the error wraps a
// *vsasm.Error.
func Generate(root *ast.Node, opts vsasm.Options) (string, vsasm.TranslationInfo, error) {
	return vsasm.Compile(root, opts)
}
