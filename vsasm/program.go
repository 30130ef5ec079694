package vsasm

import (
	"github.com/gogpu/vsc/ast"
)

// Semantic binds an output register to its hardware role.
type Semantic uint8

const (
	SemanticNone Semantic = iota
	SemanticPosition
	SemanticQuaternion
	SemanticColor
	SemanticTexcoord0
	SemanticTexcoord1
	SemanticTexcoord2
	SemanticView
)

var semanticNames = [...]string{
	SemanticNone:       "",
	SemanticPosition:   "position",
	SemanticQuaternion: "quaternion",
	SemanticColor:      "color",
	SemanticTexcoord0:  "texcoord0",
	SemanticTexcoord1:  "texcoord1",
	SemanticTexcoord2:  "texcoord2",
	SemanticView:       "view",
}

func (s Semantic) String() string {
	if int(s) < len(semanticNames) {
		return semanticNames[s]
	}
	return ""
}

// ParseSemantic maps an output binding name back to its Semantic.
func ParseSemantic(name string) (Semantic, bool) {
	for i, n := range semanticNames {
		if n != "" && n == name {
			return Semantic(i), true
		}
	}
	return SemanticNone, false
}

// Vec4 is the four-lane payload of a constant register.
type Vec4 [4]float32

// Broadcast returns v in all four lanes.
func Broadcast(v float32) Vec4 {
	return Vec4{v, v, v, v}
}

// Variable is a named or anonymous operand bound to a register.
type Variable struct {
	// Name is function-qualified for locals ("main_x") and empty for
	// anonymous temporaries.
	Name     string
	Type     ast.Type
	Register Register
	Semantic Semantic
	// Value is the payload of compiler-generated constants.
	Value *Vec4
}

// Operand returns the text used for v in an instruction: its alias when
// it has one, its physical register otherwise.
func (v Variable) Operand() string {
	if v.Name != "" {
		return v.Name
	}
	return v.Register.String()
}

// Opcode is an instruction mnemonic.
type Opcode uint8

const (
	// OpPlaceholder carries an operand without emitting anything.
	OpPlaceholder Opcode = iota
	OpMov
	OpMul
	OpRcp
	OpRsq
	OpNop
	OpEnd
	// OpRaw is an inline assembly line passed through as text.
	OpRaw
)

var opcodeInfo = [...]struct {
	mnemonic string
	operands int
}{
	OpPlaceholder: {"", 0},
	OpMov:         {"mov", 2},
	OpMul:         {"mul", 3},
	OpRcp:         {"rcp", 2},
	OpRsq:         {"rsq", 2},
	OpNop:         {"nop", 0},
	OpEnd:         {"end", 0},
	OpRaw:         {"", 0},
}

func (op Opcode) String() string {
	if int(op) < len(opcodeInfo) {
		return opcodeInfo[op].mnemonic
	}
	return ""
}

// Operands returns the number of operands op takes, destination included.
func (op Opcode) Operands() int {
	if int(op) < len(opcodeInfo) {
		return opcodeInfo[op].operands
	}
	return 0
}

// LookupOpcode returns the opcode for a mnemonic.
func LookupOpcode(mnemonic string) (Opcode, bool) {
	for op := OpMov; op <= OpEnd; op++ {
		if opcodeInfo[op].mnemonic == mnemonic {
			return op, true
		}
	}
	return OpPlaceholder, false
}

// Instruction is a single assembly instruction. Operands are held by value.
type Instruction struct {
	Op   Opcode
	Dst  Variable
	Src1 Variable
	Src2 Variable
	Raw  string
}

// Function is a lowered function body.
type Function struct {
	Name         string
	Variables    []Variable
	Instructions []Instruction

	program *Program
}

// Lookup resolves name as a local of f, then as a program global.
func (f *Function) Lookup(name string) (Variable, bool) {
	qualified := f.Name + "_" + name
	for _, v := range f.Variables {
		if v.Name == qualified {
			return v, true
		}
	}
	return f.program.Global(name)
}

func (f *Function) emit(in Instruction) Instruction {
	f.Instructions = append(f.Instructions, in)
	return in
}

// Program is the lowered translation unit.
type Program struct {
	// Globals starts with the built-in variables.
	Globals   []Variable
	Functions []*Function
	Registers *Allocator
}

// NewProgram creates a program holding the built-in globals.
func NewProgram() *Program {
	p := &Program{Registers: NewAllocator()}
	vec4 := ast.Type{Prim: ast.PrimVec4}

	p.Globals = []Variable{
		{Name: "gl_Position", Type: vec4, Register: mustAlloc(p.Registers.AllocOutput()), Semantic: SemanticPosition},
		{Name: "gl_FrontColor", Type: vec4, Register: mustAlloc(p.Registers.AllocOutput()), Semantic: SemanticColor},
		{Name: "gl_Vertex", Type: vec4, Register: mustAlloc(p.Registers.AllocInput())},
		{Name: "gl_Color", Type: vec4, Register: mustAlloc(p.Registers.AllocInput())},
		{
			Name:     "gl_ModelViewProjectionMatrix",
			Type:     ast.Type{Prim: ast.PrimMat4},
			Register: mustAlloc(p.Registers.AllocConstants(ast.PrimMat4.Registers())),
		},
	}
	return p
}

// mustAlloc unwraps allocations that cannot fail on a fresh allocator.
func mustAlloc(r Register, err error) Register {
	if err != nil {
		panic(err)
	}
	return r
}

// Global returns the global named name.
func (p *Program) Global(name string) (Variable, bool) {
	for _, v := range p.Globals {
		if v.Name == name {
			return v, true
		}
	}
	return Variable{}, false
}

// function returns the function named name, or nil.
func (p *Program) function(name string) *Function {
	for _, f := range p.Functions {
		if f.Name == name {
			return f
		}
	}
	return nil
}

func (p *Program) newFunction(name string) *Function {
	f := &Function{Name: name, program: p}
	p.Functions = append(p.Functions, f)
	return f
}
