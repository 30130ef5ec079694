// Package gles provides the front end for a GLSL ES 1.0 vertex shader
// dialect: a lexer and a recursive-descent parser that produce a concrete
// parse tree.
//
// # Components
//
//   - Lexer: Tokenizes shader source on demand, with one token of lookahead
//   - Parser: Builds the parse tree, backtracking where the grammar is ambiguous
//   - Node: Parse tree nodes; every consumed token is kept as a terminal
//
// # Usage
//
//	tree, err := gles.Parse(`
//	uniform vec4 tint;
//	void main() {
//	    gl_Position = gl_Vertex;
//	}
//	`)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Print(tree) // indented E/T dump
//
// # Dialect
//
// Comments are line comments only. The lexer synthesizes just two
// multi-character operators, << and <=; every other operator reaches the
// parser as single-character tokens. String literals are accepted in
// either quote style so that inline assembly can be written as
// asm("mov @0, @1", dst, src).
//
// Parsing stops at the first error, reported as a *ParseError with the
// line and column of the offending token.
package gles
