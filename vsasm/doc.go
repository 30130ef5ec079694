// Package vsasm generates vertex shader assembly from an ast tree.
//
// Code generation runs in two steps. Generate lowers the tree into a
// Program, binding every value to a physical register from a small fixed
// register file:
//
//   - v0-v15: vertex inputs (attributes)
//   - r0-r14: temporaries, reset after each function; r15 holds return values
//   - c0-c94: constants (uniforms and literals); c95 holds the version header
//   - o0-o6:  outputs, bound to position, color, texcoords and so on
//
// Emit then renders the Program as text. Every named value becomes an
// .alias line, so instructions refer to names rather than registers:
//
//	.alias CompilerVersion c95 as (0, 0, 0, 0.1)
//	.alias gl_Position o0 as position
//	...
//	main:
//	 mov gl_Position, gl_Vertex
//	main_end:
//
// # Basic Usage
//
//	text, info, err := vsasm.Compile(root, vsasm.DefaultOptions())
//
// # Inline Assembly
//
// A call asm("mnemonic operands", args...) emits one instruction. Operands
// are variable names, physical registers, or @N for the N-th argument
// after the template:
//
//	asm("mul gl_Position, @0, gl_ModelViewProjectionMatrix", gl_Vertex);
//
// A comma with no operand in front of it leaves that slot empty.
// Mnemonics other than mov, mul, rcp, rsq, nop and end are copied to the
// output as written, with operands resolved.
package vsasm
