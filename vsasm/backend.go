package vsasm

import (
	"fmt"

	"github.com/gogpu/vsc/ast"
)

// Options configures assembly generation.
type Options struct {
	// VersionAlias names the constant register carrying the compiler
	// version. Defaults to "CompilerVersion" if empty.
	VersionAlias string

	// Indent prefixes every instruction line. Defaults to a single space
	// if empty.
	Indent string
}

// DefaultOptions returns the options used when none are given.
func DefaultOptions() Options {
	return Options{
		VersionAlias: "CompilerVersion",
		Indent:       " ",
	}
}

// TranslationInfo contains metadata about the translation.
type TranslationInfo struct {
	// Functions lists the emitted functions in output order.
	Functions []string

	// Warnings holds the constructs the generator skipped.
	Warnings []ast.Warning

	// TempRegisters is the peak number of temporaries any function needed,
	// the return register excluded.
	TempRegisters int

	// ConstantRegisters counts the constant registers issued, built-ins
	// included.
	ConstantRegisters int
}

// Compile generates assembly text from a semantic tree.
// Returns the assembly as a string, translation info, or an error.
func Compile(root *ast.Node, options Options) (string, TranslationInfo, error) {
	defaults := DefaultOptions()
	if options.VersionAlias == "" {
		options.VersionAlias = defaults.VersionAlias
	}
	if options.Indent == "" {
		options.Indent = defaults.Indent
	}

	prog, info, err := Generate(root)
	if err != nil {
		return "", TranslationInfo{}, fmt.Errorf("vsasm: %w", err)
	}
	return Emit(prog, options), info, nil
}
