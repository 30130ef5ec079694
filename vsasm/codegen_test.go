package vsasm

import (
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/gogpu/vsc/ast"
	"github.com/gogpu/vsc/gles"
)

func generateSource(t *testing.T, source string) (*Program, TranslationInfo) {
	t.Helper()
	tree, err := gles.Parse(source)
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	root, _ := ast.Build(tree)
	prog, info, err := Generate(root)
	if err != nil {
		t.Fatalf("Generate error: %v", err)
	}
	return prog, info
}

func generateError(t *testing.T, source string) *Error {
	t.Helper()
	tree, err := gles.Parse(source)
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	root, _ := ast.Build(tree)
	_, _, err = Generate(root)
	var e *Error
	if !errors.As(err, &e) {
		t.Fatalf("expected *Error, got %v", err)
	}
	return e
}

// emitted returns the instructions of f that produce output.
func emitted(f *Function) []Instruction {
	var out []Instruction
	for _, in := range f.Instructions {
		if in.Op != OpPlaceholder {
			out = append(out, in)
		}
	}
	return out
}

func countOp(f *Function, op Opcode) int {
	n := 0
	for _, in := range f.Instructions {
		if in.Op == op {
			n++
		}
	}
	return n
}

func TestGenerateBuiltins(t *testing.T) {
	prog, _ := generateSource(t, "void main() {}")
	tests := []struct {
		name     string
		reg      string
		semantic Semantic
	}{
		{"gl_Position", "o0", SemanticPosition},
		{"gl_FrontColor", "o1", SemanticColor},
		{"gl_Vertex", "v0", SemanticNone},
		{"gl_Color", "v1", SemanticNone},
		{"gl_ModelViewProjectionMatrix", "c0", SemanticNone},
	}
	if len(prog.Globals) != len(tests) {
		t.Fatalf("expected %d globals, got %d", len(tests), len(prog.Globals))
	}
	for i, tt := range tests {
		g := prog.Globals[i]
		if g.Name != tt.name || g.Register.String() != tt.reg || g.Semantic != tt.semantic {
			t.Errorf("global %d: got %s %s %s", i, g.Name, g.Register, g.Semantic)
		}
	}
}

func TestGenerateLocalDeclaration(t *testing.T) {
	prog, info := generateSource(t, "void main() { float x; }")
	main := prog.function("main")
	if main == nil {
		t.Fatal("main not generated")
	}
	if len(main.Variables) != 1 {
		t.Fatalf("expected 1 local, got %d", len(main.Variables))
	}
	x := main.Variables[0]
	if x.Name != "main_x" || x.Register != (Register{ClassTemp, 0}) {
		t.Errorf("unexpected local %s in %s", x.Name, x.Register)
	}
	if info.TempRegisters != 1 {
		t.Errorf("expected exactly one temp, got %d", info.TempRegisters)
	}
	if len(emitted(main)) != 0 {
		t.Errorf("declaration without initializer should emit nothing, got %v", emitted(main))
	}
}

func TestGenerateInitializer(t *testing.T) {
	prog, _ := generateSource(t, "void main() { float x = 2.0; }")
	out := emitted(prog.function("main"))
	if len(out) != 1 || out[0].Op != OpMov {
		t.Fatalf("expected a single mov, got %v", out)
	}
	if out[0].Dst.Name != "main_x" || out[0].Src1.Name != "Anonymous_float_c4" {
		t.Errorf("unexpected mov %s, %s", out[0].Dst.Operand(), out[0].Src1.Operand())
	}
	lit, ok := prog.Global("Anonymous_float_c4")
	if !ok || lit.Value == nil || *lit.Value != Broadcast(2) {
		t.Errorf("expected broadcast constant 2, got %+v", lit)
	}
}

func TestGenerateIntLiteral(t *testing.T) {
	prog, _ := generateSource(t, "void main() { float x; x = 3; }")
	if _, ok := prog.Global("Anonymous_int_c4"); !ok {
		t.Error("expected Anonymous_int_c4")
	}
}

func TestGenerateDivideByOne(t *testing.T) {
	prog, _ := generateSource(t, "void main() { float x; float y; y = x / 1.0; }")
	main := prog.function("main")
	if n := countOp(main, OpRcp); n != 1 {
		t.Errorf("expected one rcp, got %d", n)
	}
	if n := countOp(main, OpMul); n != 0 {
		t.Errorf("expected no mul, got %d", n)
	}
	out := emitted(main)
	last := out[len(out)-1]
	if last.Op != OpMov || last.Dst.Name != "main_y" || last.Src1.Name != "main_x" {
		t.Errorf("expected mov main_y, main_x; got %s %s, %s", last.Op, last.Dst.Operand(), last.Src1.Operand())
	}
}

func TestGenerateDivide(t *testing.T) {
	prog, _ := generateSource(t, "void main() { float x; float y; y = x / 2.0; }")
	out := emitted(prog.function("main"))
	if len(out) != 3 {
		t.Fatalf("expected rcp, mul, mov; got %v", out)
	}
	rcp, mul, mov := out[0], out[1], out[2]
	if rcp.Op != OpRcp || rcp.Src1.Name != "Anonymous_float_c4" {
		t.Errorf("unexpected rcp %v", rcp)
	}
	if mul.Op != OpMul || mul.Dst.Register != rcp.Dst.Register ||
		mul.Src1.Register != rcp.Dst.Register || mul.Src2.Name != "main_x" {
		t.Errorf("unexpected mul %v", mul)
	}
	if mov.Op != OpMov || mov.Src1.Register != mul.Dst.Register {
		t.Errorf("unexpected mov %v", mov)
	}
}

func TestGenerateReciprocal(t *testing.T) {
	prog, _ := generateSource(t, "void main() { float x; float y; y = 1.0 / x; }")
	main := prog.function("main")
	if countOp(main, OpRcp) != 1 || countOp(main, OpMul) != 0 {
		t.Errorf("expected a bare rcp, got %v", emitted(main))
	}
}

func TestGenerateMultiply(t *testing.T) {
	prog, _ := generateSource(t, "void main() { float x; float y; y = x * 2.0; }")
	out := emitted(prog.function("main"))
	if len(out) != 2 {
		t.Fatalf("expected mul and mov, got %v", out)
	}
	mul := out[0]
	if mul.Op != OpMul || mul.Src1.Name != "main_x" || mul.Src2.Name != "Anonymous_float_c4" {
		t.Errorf("unexpected mul %v", mul)
	}
	if mul.Dst.Register != (Register{ClassTemp, 2}) {
		t.Errorf("expected r2 as scratch, got %s", mul.Dst.Register)
	}
}

func TestGenerateChainedMultiplyKeepsOperands(t *testing.T) {
	prog, _ := generateSource(t, "void main() { float a; float b; float c; float y; y = a * b * c; }")
	out := emitted(prog.function("main"))
	if len(out) != 3 {
		t.Fatalf("expected two muls and a mov, got %v", out)
	}
	inner, outer := out[0], out[1]
	if inner.Src1.Name != "main_a" || inner.Src2.Name != "main_b" {
		t.Errorf("unexpected inner mul %v", inner)
	}
	if outer.Src1.Register != inner.Dst.Register || outer.Src2.Name != "main_c" {
		t.Errorf("outer mul should read the inner result, got %v", outer)
	}
	if outer.Dst.Register == inner.Dst.Register {
		t.Errorf("outer scratch %s clobbers the held inner result", outer.Dst.Register)
	}
}

func TestGenerateReturn(t *testing.T) {
	prog, _ := generateSource(t, "float f(float v) { return v; }")
	out := emitted(prog.function("f"))
	if len(out) != 1 || out[0].Op != OpMov || out[0].Dst.Register != ReturnRegister || out[0].Src1.Name != "f_v" {
		t.Errorf("expected mov r15, f_v; got %v", out)
	}
}

func TestGenerateTempsResetPerFunction(t *testing.T) {
	prog, info := generateSource(t, `
void a() { float x; float y; }
void b() { float z; }
`)
	z := prog.function("b").Variables[0]
	if z.Register.Index != 0 {
		t.Errorf("expected b_z in r0, got %s", z.Register)
	}
	if info.TempRegisters != 2 {
		t.Errorf("expected peak of 2 temps, got %d", info.TempRegisters)
	}
	if strings.Join(info.Functions, ",") != "a,b" {
		t.Errorf("unexpected functions %v", info.Functions)
	}
}

func TestGenerateSkipsPrototypes(t *testing.T) {
	prog, _ := generateSource(t, "float h(float v);\nfloat h(float v) { return v; }")
	if len(prog.Functions) != 1 {
		t.Errorf("expected only the definition, got %d functions", len(prog.Functions))
	}
}

func TestGenerateGlobals(t *testing.T) {
	prog, info := generateSource(t, `
attribute vec4 normal;
uniform mat3 rot;
uniform vec4 tint;
varying vec4 color;
uniform vec4 tint;
void main() {}
`)
	tests := []struct {
		name string
		reg  string
	}{
		{"normal", "v2"},
		{"rot", "c4"},
		{"tint", "c7"},
	}
	for _, tt := range tests {
		v, ok := prog.Global(tt.name)
		if !ok || v.Register.String() != tt.reg {
			t.Errorf("%s: got %s, want %s", tt.name, v.Register, tt.reg)
		}
	}
	if _, ok := prog.Global("color"); ok {
		t.Error("varying should not be bound")
	}
	if len(info.Warnings) != 2 {
		t.Fatalf("expected 2 warnings, got %v", info.Warnings)
	}
	if !strings.Contains(info.Warnings[0].Message, `"color" is neither attribute nor uniform`) {
		t.Errorf("unexpected warning %s", info.Warnings[0])
	}
	if !strings.Contains(info.Warnings[1].Message, `"tint" redeclared`) {
		t.Errorf("unexpected warning %s", info.Warnings[1])
	}
}

func TestGenerateConstructor(t *testing.T) {
	tests := []struct {
		name string
		body string
		want Vec4
	}{
		{"full", "gl_FrontColor = vec4(1.0, 0.5, 0.25, 1.0);", Vec4{1, 0.5, 0.25, 1}},
		{"broadcast", "gl_FrontColor = vec4(0.5);", Vec4{0.5, 0.5, 0.5, 0.5}},
		{"partial", "gl_FrontColor = vec4(1.0, 2.0);", Vec4{1, 2, 0, 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prog, _ := generateSource(t, "void main() {"+tt.body+"}")
			v, ok := prog.Global("Anonymous_vec4_c4")
			if !ok || v.Value == nil {
				t.Fatalf("expected Anonymous_vec4_c4")
			}
			if *v.Value != tt.want {
				t.Errorf("got %v, want %v", *v.Value, tt.want)
			}
			out := emitted(prog.function("main"))
			if len(out) != 1 || out[0].Src1.Name != "Anonymous_vec4_c4" {
				t.Errorf("expected mov from the constant, got %v", out)
			}
		})
	}
}

func TestGenerateConstructorExtraArguments(t *testing.T) {
	_, info := generateSource(t, "void main() { gl_FrontColor = vec4(1.0, 2.0, 3.0, 4.0, 5.0); }")
	if len(info.Warnings) != 1 || !strings.Contains(info.Warnings[0].Message, "extra arguments to vec4") {
		t.Errorf("expected extra argument warning, got %v", info.Warnings)
	}
}

func TestGenerateInlineAsm(t *testing.T) {
	prog, _ := generateSource(t, `void main() { asm("mov gl_Position, @0", gl_Vertex); }`)
	out := emitted(prog.function("main"))
	if len(out) != 1 {
		t.Fatalf("expected exactly one instruction, got %v", out)
	}
	if out[0].Op != OpMov || out[0].Dst.Name != "gl_Position" || out[0].Src1.Name != "gl_Vertex" {
		t.Errorf("unexpected instruction %v", out[0])
	}
}

func TestGenerateInlineAsmOperandForms(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		op       Opcode
		operands []string
	}{
		{"commas optional", `asm("mul gl_Position gl_Vertex gl_Color");`, OpMul,
			[]string{"gl_Position", "gl_Vertex", "gl_Color"}},
		{"physical registers", `asm("mov o0, v0");`, OpMov, []string{"o0", "v0"}},
		{"second argument", `asm("mov @1, @0", gl_Vertex, gl_Position);`, OpMov,
			[]string{"gl_Position", "gl_Vertex"}},
		{"no operands", `asm("nop");`, OpNop, nil},
		{"lowered argument", `asm("rsq gl_Position, @0", 2.0);`, OpRsq,
			[]string{"gl_Position", "Anonymous_float_c4"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prog, _ := generateSource(t, "void main() {"+tt.body+"}")
			out := emitted(prog.function("main"))
			if len(out) != 1 || out[0].Op != tt.op {
				t.Fatalf("expected one %s, got %v", tt.op, out)
			}
			got := []Variable{out[0].Dst, out[0].Src1, out[0].Src2}[:len(tt.operands)]
			for i, want := range tt.operands {
				if got[i].Operand() != want {
					t.Errorf("operand %d: got %q, want %q", i, got[i].Operand(), want)
				}
			}
		})
	}
}

func TestGenerateInlineAsmEmptyDestination(t *testing.T) {
	prog, info := generateSource(t, `void main() { asm("mov, @0", gl_Vertex); }`)
	out := emitted(prog.function("main"))
	if len(out) != 1 || out[0].Op != OpMov {
		t.Fatalf("expected exactly one mov, got %v", out)
	}
	if out[0].Dst.Name != "" || out[0].Dst.Register.IsValid() || out[0].Src1.Name != "gl_Vertex" {
		t.Errorf("expected an empty destination and gl_Vertex as source, got %v", out[0])
	}
	if len(info.Warnings) != 0 {
		t.Errorf("unexpected warnings %v", info.Warnings)
	}
}

func TestGenerateInlineAsmMissingOperands(t *testing.T) {
	prog, info := generateSource(t, `void main() { asm("mul gl_Position, @0", gl_Vertex); }`)
	out := emitted(prog.function("main"))
	if len(out) != 1 || out[0].Op != OpMul || out[0].Src1.Name != "gl_Vertex" || out[0].Src2.Register.IsValid() {
		t.Errorf("expected mul with an empty second source, got %v", out)
	}
	if len(info.Warnings) != 1 || !strings.Contains(info.Warnings[0].Message, "mul takes 3 operands, got 2") {
		t.Errorf("expected a warning for the missing operand, got %v", info.Warnings)
	}
}

func TestGenerateInlineAsmRaw(t *testing.T) {
	prog, _ := generateSource(t, `void main() { float x; asm("dp4 @0, gl_Vertex, c1", x); }`)
	out := emitted(prog.function("main"))
	if len(out) != 1 || out[0].Op != OpRaw {
		t.Fatalf("expected a raw instruction, got %v", out)
	}
	if want := "dp4 main_x, gl_Vertex, c1"; out[0].Raw != want {
		t.Errorf("got %q, want %q", out[0].Raw, want)
	}
}

func TestGenerateErrors(t *testing.T) {
	tests := []struct {
		name   string
		source string
		kind   ErrorKind
		substr string
	}{
		{"unresolved", "void main() { y = 2.0; }", ErrUnresolvedSymbol, `"y"`},
		{"unresolved in asm", `void main() { asm("mov gl_Position, nothing"); }`, ErrUnresolvedSymbol, `"nothing"`},
		{"asm without template", "void main() { asm(gl_Vertex); }", ErrInvalidInlineAsm, "string template"},
		{"asm index out of range", `void main() { asm("mov gl_Position, @1", gl_Vertex); }`, ErrInvalidInlineAsm, "@1"},
		{"asm too many operands", `void main() { asm("mov gl_Position, gl_Vertex, gl_Color"); }`, ErrInvalidInlineAsm, "takes 2 operands, got 3"},
		{"asm bad operand", `void main() { asm("mov gl_Position, (");}`, ErrInvalidInlineAsm, "unexpected"},
		{"asm index without arguments", `void main() { asm("mov, @0"); }`, ErrInvalidInlineAsm, "(0 given)"},
		{"asm missing index", `void main() { asm("mov gl_Position, @x", gl_Vertex); }`, ErrInvalidInlineAsm, "argument index"},
		{"non-literal constructor", "void main() { gl_FrontColor = vec4(gl_Vertex); }", ErrUnsupported, "not a literal"},
		{"string outside asm", `void main() { gl_Position = "x"; }`, ErrUnsupported, "string literal"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := generateError(t, tt.source)
			if e.Kind != tt.kind {
				t.Errorf("got kind %s, want %s (%v)", e.Kind, tt.kind, e)
			}
			if !strings.Contains(e.Message, tt.substr) {
				t.Errorf("message %q does not contain %q", e.Message, tt.substr)
			}
			if e.Pos == nil {
				t.Error("expected a source position")
			}
		})
	}
}

func TestGenerateLiteralOverflow(t *testing.T) {
	prog, info := generateSource(t, "void main() { float x = 1.0e39; gl_FrontColor = vec4(1.0e39, 1.0); }")

	literal, ok := prog.Global("Anonymous_float_c4")
	if !ok || *literal.Value != Broadcast(math.MaxFloat32) {
		t.Errorf("expected a clamped literal, got %+v", literal)
	}
	ctor, ok := prog.Global("Anonymous_vec4_c5")
	if !ok || *ctor.Value != (Vec4{math.MaxFloat32, 1, 0, 0}) {
		t.Errorf("expected a clamped constructor lane, got %+v", ctor)
	}
	if len(info.Warnings) != 2 || !strings.Contains(info.Warnings[0].Message, "clamped") {
		t.Errorf("expected two clamp warnings, got %v", info.Warnings)
	}

	aliases, err := ParseAliases(Emit(prog, DefaultOptions()))
	if err != nil {
		t.Fatalf("ParseAliases: %v", err)
	}
	for _, a := range aliases {
		if a.Name == "Anonymous_float_c4" && *a.Value != Broadcast(math.MaxFloat32) {
			t.Errorf("clamped constant read back as %v", *a.Value)
		}
	}
}

func TestGenerateTempExhaustion(t *testing.T) {
	var sb strings.Builder
	sb.WriteString("void main() {")
	for i := 0; i < NumTemps; i++ {
		sb.WriteString(" float v")
		sb.WriteByte(byte('a' + i))
		sb.WriteString(";")
	}
	sb.WriteString(" }")

	e := generateError(t, sb.String())
	if !e.IsRegisterExhausted() {
		t.Errorf("expected RegisterExhausted, got %v", e)
	}
}
