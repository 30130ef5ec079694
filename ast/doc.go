// Package ast turns a gles parse tree into the semantic tree consumed by
// the vsasm code generator.
//
// The tree is deliberately small. It knows functions, struct types,
// variable declarations and references, assignments, calls, literals,
// returns, and a multiply/divide form whose left operand is usually a
// plain name:
//
//	y = x * 2.0   ->  (assign y (multiply x (float literal 2)))
//	y = 1.0 / x   ->  (assign y (divide lit=1 (variable x)))
//
// Anything else the grammar accepts (control flow, most operators, field
// selection, indexing) is reported as a Warning and left out.
//
// Struct types are resolved through a Scope chain that exists only while
// Build runs.
package ast
