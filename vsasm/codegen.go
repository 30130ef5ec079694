package vsasm

import (
	"fmt"
	"math"

	"github.com/gogpu/vsc/ast"
	"github.com/gogpu/vsc/gles"
)

// generator lowers a semantic tree into a Program.
type generator struct {
	prog     *Program
	fn       *Function
	warnings []ast.Warning
}

// Generate lowers root into a program. Globals are placed first; then every
// function with a body is lowered in source order, with temporaries reset
// after each one.
func Generate(root *ast.Node) (*Program, TranslationInfo, error) {
	g := &generator{prog: NewProgram()}

	if err := g.globals(root); err != nil {
		return nil, TranslationInfo{}, err
	}
	for _, n := range root.Children {
		if n.Kind != ast.KindFunction || n.Modifiers.Has(ast.ModForward) {
			continue
		}
		if err := g.function(n); err != nil {
			return nil, TranslationInfo{}, err
		}
	}

	info := TranslationInfo{
		Warnings:          g.warnings,
		TempRegisters:     g.prog.Registers.PeakTemps(),
		ConstantRegisters: g.prog.Registers.Used(ClassConstant),
	}
	for _, f := range g.prog.Functions {
		info.Functions = append(info.Functions, f.Name)
	}
	return g.prog, info, nil
}

func (g *generator) warn(pos gles.Position, format string, args ...interface{}) {
	g.warnings = append(g.warnings, ast.Warning{
		Message: fmt.Sprintf(format, args...),
		Pos:     pos,
	})
}

// globals binds attributes to input registers and uniforms to constant
// registers.
func (g *generator) globals(root *ast.Node) error {
	for _, n := range root.Children {
		if n.Kind == ast.KindFunction {
			continue
		}
		if !n.IsDeclaration() {
			g.warn(n.Pos, "top-level %s ignored", n.Kind)
			continue
		}
		if _, exists := g.prog.Global(n.Name); exists {
			g.warn(n.Pos, "global %q redeclared", n.Name)
			continue
		}

		v := Variable{Name: n.Name, Type: n.Type}
		var err error
		switch {
		case n.Modifiers.Has(ast.ModAttribute):
			v.Register, err = g.prog.Registers.AllocInput()
		case n.Modifiers.Has(ast.ModUniform):
			v.Register, err = g.prog.Registers.AllocConstants(n.Type.Prim.Registers())
		default:
			g.warn(n.Pos, "global %q is neither attribute nor uniform; ignored", n.Name)
			continue
		}
		if err != nil {
			return withPos(err, n.Pos)
		}
		g.prog.Globals = append(g.prog.Globals, v)
	}
	return nil
}

func (g *generator) function(n *ast.Node) error {
	g.fn = g.prog.newFunction(n.Name)
	defer g.prog.Registers.FreeAllTemps()

	for _, param := range n.Params() {
		if _, err := g.lower(param); err != nil {
			return err
		}
	}
	for _, stmt := range n.Body() {
		if _, err := g.lower(stmt); err != nil {
			return err
		}
	}
	return nil
}

// withPos attaches pos to a position-less *Error.
func withPos(err error, pos gles.Position) error {
	if e, ok := err.(*Error); ok && e.Pos == nil {
		e.Pos = &pos
	}
	return err
}

// lower emits the instructions for n and returns the instruction whose
// Dst carries the result.
func (g *generator) lower(n *ast.Node) (Instruction, error) {
	switch {
	case n.IsDeclaration():
		return g.declaration(n)
	case n.IsLiteral():
		return g.literal(n.Kind, n.Value, n.Pos)
	}

	switch n.Kind {
	case ast.KindVariable:
		return g.reference(n.Name, n.Pos)
	case ast.KindMultiply:
		return g.multiply(n)
	case ast.KindDivide:
		return g.divide(n)
	case ast.KindAssign:
		return g.assign(n)
	case ast.KindReturn:
		return g.ret(n)
	case ast.KindCall:
		if n.Name == "asm" {
			return g.inlineAsm(n)
		}
		return g.constructor(n)
	case ast.KindStringLiteral:
		return Instruction{}, errorAt(ErrUnsupported, n.Pos, "string literal outside asm")
	}
	return Instruction{}, errorAt(ErrUnsupported, n.Pos, "cannot lower %s", n.Kind)
}

func (g *generator) temp(pos gles.Position) (Variable, error) {
	r, err := g.prog.Registers.AllocTemp()
	if err != nil {
		return Variable{}, withPos(err, pos)
	}
	return Variable{Register: r}, nil
}

// hold keeps an unnamed temporary result from being handed out again while
// a sibling operand is lowered. The returned func releases it.
func (g *generator) hold(v Variable) func() {
	r := v.Register
	if v.Name != "" || r.Class != ClassTemp || !g.prog.Registers.Claim(r) {
		return func() {}
	}
	return func() { g.prog.Registers.Free(r) }
}

func (g *generator) declaration(n *ast.Node) (Instruction, error) {
	r, err := g.prog.Registers.AllocTemp()
	if err != nil {
		return Instruction{}, withPos(err, n.Pos)
	}
	v := Variable{Name: g.fn.Name + "_" + n.Name, Type: n.Type, Register: r}
	g.fn.Variables = append(g.fn.Variables, v)
	in := g.fn.emit(Instruction{Op: OpPlaceholder, Dst: v})

	if len(n.Children) > 0 {
		init, err := g.lower(n.Children[0])
		if err != nil {
			return Instruction{}, err
		}
		in = g.fn.emit(Instruction{Op: OpMov, Dst: v, Src1: init.Dst})
	}
	return in, nil
}

// literal places value in a fresh constant register, broadcast to all lanes.
func (g *generator) literal(kind ast.Kind, value float64, pos gles.Position) (Instruction, error) {
	r, err := g.prog.Registers.AllocConstant()
	if err != nil {
		return Instruction{}, withPos(err, pos)
	}
	typ, tag := ast.Type{Prim: ast.PrimFloat}, "float"
	if kind == ast.KindIntLiteral {
		typ, tag = ast.Type{Prim: ast.PrimInt}, "int"
	}
	lanes := Broadcast(g.lane(value, pos))
	v := Variable{
		Name:     "Anonymous_" + tag + "_" + r.String(),
		Type:     typ,
		Register: r,
		Value:    &lanes,
	}
	g.prog.Globals = append(g.prog.Globals, v)
	return g.fn.emit(Instruction{Op: OpPlaceholder, Dst: v}), nil
}

// lane narrows a literal to a register lane. Values outside the float32
// range are clamped to the largest finite lane value.
func (g *generator) lane(value float64, pos gles.Position) float32 {
	if math.IsNaN(value) || math.Abs(value) <= math.MaxFloat32 {
		return float32(value)
	}
	clamped := float32(math.Copysign(math.MaxFloat32, value))
	g.warn(pos, "literal %g does not fit in a register lane; clamped to %g", value, clamped)
	return clamped
}

func (g *generator) reference(name string, pos gles.Position) (Instruction, error) {
	v, ok := g.fn.Lookup(name)
	if !ok {
		return Instruction{}, errorAt(ErrUnresolvedSymbol, pos, "unresolved symbol %q", name)
	}
	return g.fn.emit(Instruction{Op: OpPlaceholder, Dst: v}), nil
}

// leftOperand lowers the left side of a multiply or divide node.
func (g *generator) leftOperand(n *ast.Node) (Instruction, error) {
	switch {
	case len(n.Children) > 1:
		return g.lower(n.Children[1])
	case n.Literal != ast.KindNone:
		return g.literal(n.Literal, n.Value, n.Pos)
	}
	return g.reference(n.Name, n.Pos)
}

func (g *generator) multiply(n *ast.Node) (Instruction, error) {
	left, err := g.leftOperand(n)
	if err != nil {
		return Instruction{}, err
	}
	release := g.hold(left.Dst)
	defer release()

	right, err := g.lower(n.Children[0])
	if err != nil {
		return Instruction{}, err
	}
	tmp, err := g.temp(n.Pos)
	if err != nil {
		return Instruction{}, err
	}
	in := g.fn.emit(Instruction{Op: OpMul, Dst: tmp, Src1: left.Dst, Src2: right.Dst})
	g.prog.Registers.Free(tmp.Register)
	return in, nil
}

// divide emits a reciprocal of the right operand and multiplies it by the
// left one. A literal 1 on the left leaves just the reciprocal; a literal
// 1 on the right yields the left operand unchanged.
func (g *generator) divide(n *ast.Node) (Instruction, error) {
	divisor := n.Children[0]
	right, err := g.lower(divisor)
	if err != nil {
		return Instruction{}, err
	}
	tmp, err := g.temp(n.Pos)
	if err != nil {
		return Instruction{}, err
	}
	defer g.prog.Registers.Free(tmp.Register)

	rcp := g.fn.emit(Instruction{Op: OpRcp, Dst: tmp, Src1: right.Dst})
	if n.Literal != ast.KindNone && n.Value == 1 && len(n.Children) == 1 {
		return rcp, nil
	}

	left, err := g.leftOperand(n)
	if err != nil {
		return Instruction{}, err
	}
	if divisor.IsLiteral() && divisor.Value == 1 {
		return left, nil
	}
	return g.fn.emit(Instruction{Op: OpMul, Dst: tmp, Src1: tmp, Src2: left.Dst}), nil
}

// assign lowers the value, then the target, and moves one into the other.
func (g *generator) assign(n *ast.Node) (Instruction, error) {
	value, err := g.lower(n.Children[0])
	if err != nil {
		return Instruction{}, err
	}
	target, err := g.reference(n.Name, n.Pos)
	if err != nil {
		return Instruction{}, err
	}
	return g.fn.emit(Instruction{Op: OpMov, Dst: target.Dst, Src1: value.Dst}), nil
}

func (g *generator) ret(n *ast.Node) (Instruction, error) {
	if len(n.Children) == 0 {
		return Instruction{Op: OpPlaceholder}, nil
	}
	value, err := g.lower(n.Children[0])
	if err != nil {
		return Instruction{}, err
	}
	return g.fn.emit(Instruction{
		Op:   OpMov,
		Dst:  Variable{Register: ReturnRegister},
		Src1: value.Dst,
	}), nil
}

// constructor turns a call such as vec4(1.0, 0.5, 0.25, 1.0) into an
// anonymous constant. One argument fills every lane; missing lanes are 0.
func (g *generator) constructor(n *ast.Node) (Instruction, error) {
	if len(n.Children) == 0 {
		return Instruction{}, errorAt(ErrUnsupported, n.Pos, "%s() needs at least one literal argument", n.Name)
	}
	var lanes Vec4
	for i, arg := range n.Children {
		if i >= len(lanes) {
			g.warn(arg.Pos, "extra arguments to %s ignored", n.Name)
			break
		}
		if !arg.IsLiteral() {
			return Instruction{}, errorAt(ErrUnsupported, arg.Pos,
				"argument %d of %s is not a literal; only constant constructors are supported", i, n.Name)
		}
		lanes[i] = g.lane(arg.Value, arg.Pos)
	}
	if len(n.Children) == 1 {
		lanes = Broadcast(lanes[0])
	}

	r, err := g.prog.Registers.AllocConstant()
	if err != nil {
		return Instruction{}, withPos(err, n.Pos)
	}
	v := Variable{
		Name:     "Anonymous_" + n.Name + "_" + r.String(),
		Type:     n.Type,
		Register: r,
		Value:    &lanes,
	}
	g.prog.Globals = append(g.prog.Globals, v)
	return g.fn.emit(Instruction{Op: OpPlaceholder, Dst: v}), nil
}
