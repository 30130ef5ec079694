package ast

import (
	"fmt"
	"strings"

	"github.com/gogpu/vsc/gles"
)

// Kind identifies what an AST node represents.
type Kind uint8

const (
	// KindNone is a container: the translation unit, a parameter list,
	// or the temporary result of building a parse subtree.
	KindNone Kind = iota
	KindStruct
	KindFunction
	KindCall
	// KindVariable is a declaration when ModDeclare is set, else a reference.
	KindVariable
	KindAssign
	KindMultiply
	KindDivide
	KindReturn
	KindFloatLiteral
	KindIntLiteral
	KindStringLiteral
)

var kindNames = [...]string{
	KindNone:          "none",
	KindStruct:        "struct",
	KindFunction:      "function",
	KindCall:          "call",
	KindVariable:      "variable",
	KindAssign:        "assign",
	KindMultiply:      "multiply",
	KindDivide:        "divide",
	KindReturn:        "return",
	KindFloatLiteral:  "float literal",
	KindIntLiteral:    "int literal",
	KindStringLiteral: "string literal",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", k)
}

// Primitive is a built-in type.
type Primitive uint8

const (
	PrimNone Primitive = iota
	PrimVoid
	PrimFloat
	PrimInt
	PrimBool
	PrimVec2
	PrimVec3
	PrimVec4
	PrimBVec2
	PrimBVec3
	PrimBVec4
	PrimIVec2
	PrimIVec3
	PrimIVec4
	PrimMat2
	PrimMat3
	PrimMat4
	PrimSampler2D
	PrimSamplerCube
	// PrimStruct marks a user-defined struct type; Type.Struct holds its name.
	PrimStruct
)

var primitiveTokens = map[gles.TokenKind]Primitive{
	gles.TokenVoid:        PrimVoid,
	gles.TokenFloat:       PrimFloat,
	gles.TokenInt:         PrimInt,
	gles.TokenBool:        PrimBool,
	gles.TokenVec2:        PrimVec2,
	gles.TokenVec3:        PrimVec3,
	gles.TokenVec4:        PrimVec4,
	gles.TokenBVec2:       PrimBVec2,
	gles.TokenBVec3:       PrimBVec3,
	gles.TokenBVec4:       PrimBVec4,
	gles.TokenIVec2:       PrimIVec2,
	gles.TokenIVec3:       PrimIVec3,
	gles.TokenIVec4:       PrimIVec4,
	gles.TokenMat2:        PrimMat2,
	gles.TokenMat3:        PrimMat3,
	gles.TokenMat4:        PrimMat4,
	gles.TokenSampler2D:   PrimSampler2D,
	gles.TokenSamplerCube: PrimSamplerCube,
}

// PrimitiveOf maps a type keyword to its primitive.
func PrimitiveOf(kind gles.TokenKind) (Primitive, bool) {
	p, ok := primitiveTokens[kind]
	return p, ok
}

func (p Primitive) String() string {
	switch p {
	case PrimNone:
		return "none"
	case PrimStruct:
		return "struct"
	}
	for kind, prim := range primitiveTokens {
		if prim == p {
			return kind.String()
		}
	}
	return fmt.Sprintf("Primitive(%d)", p)
}

// Registers returns how many 4-lane registers a value of type p occupies.
func (p Primitive) Registers() int {
	switch p {
	case PrimMat2:
		return 2
	case PrimMat3:
		return 3
	case PrimMat4:
		return 4
	}
	return 1
}

// Type is the declared type of a variable or the return type of a function.
type Type struct {
	Prim   Primitive
	Struct string
}

func (t Type) String() string {
	if t.Prim == PrimStruct {
		return t.Struct
	}
	return t.Prim.String()
}

// Modifiers is a set of declaration flags.
type Modifiers uint16

const (
	ModDeclare Modifiers = 1 << iota
	ModInline
	ModConst
	ModAttribute
	ModUniform
	ModVarying
	ModInvariant
	// ModForward marks a function prototype without a body.
	ModForward
)

var modifierNames = []struct {
	mod  Modifiers
	name string
}{
	{ModDeclare, "declare"},
	{ModInline, "inline"},
	{ModConst, "const"},
	{ModAttribute, "attribute"},
	{ModUniform, "uniform"},
	{ModVarying, "varying"},
	{ModInvariant, "invariant"},
	{ModForward, "forward"},
}

// Has reports whether all flags in f are set.
func (m Modifiers) Has(f Modifiers) bool {
	return m&f == f
}

func (m Modifiers) String() string {
	var names []string
	for _, mn := range modifierNames {
		if m.Has(mn.mod) {
			names = append(names, mn.name)
		}
	}
	return strings.Join(names, "|")
}

var qualifierModifiers = map[gles.TokenKind]Modifiers{
	gles.TokenConst:     ModConst,
	gles.TokenAttribute: ModAttribute,
	gles.TokenUniform:   ModUniform,
	gles.TokenVarying:   ModVarying,
	gles.TokenInvariant: ModInvariant,
	gles.TokenInline:    ModInline,
}

// Node is a semantic tree node.
//
// Function nodes keep their parameter container as Children[0] and their
// body statements after it. Multiply and divide nodes hold the right operand
// as Children[0]; the left operand is Name, or the literal in Literal/Value,
// or Children[1] when it is a more complex expression.
type Node struct {
	Kind      Kind
	Name      string
	Type      Type
	Modifiers Modifiers

	// Value is the payload of numeric literals.
	Value float64
	// Literal is the kind of a literal left operand of a multiply or
	// divide node, KindNone otherwise.
	Literal Kind

	Children []*Node
	// Types holds the struct definitions made in this node's scope.
	Types []*Node

	Pos gles.Position
}

// Params returns the parameter declarations of a function node.
func (n *Node) Params() []*Node {
	if n.Kind != KindFunction || len(n.Children) == 0 {
		return nil
	}
	return n.Children[0].Children
}

// Body returns the statements of a function node.
func (n *Node) Body() []*Node {
	if n.Kind != KindFunction || len(n.Children) == 0 {
		return nil
	}
	return n.Children[1:]
}

// IsDeclaration reports whether n declares a variable.
func (n *Node) IsDeclaration() bool {
	return n.Kind == KindVariable && n.Modifiers.Has(ModDeclare)
}

// IsLiteral reports whether n is a numeric literal.
func (n *Node) IsLiteral() bool {
	return n.Kind == KindFloatLiteral || n.Kind == KindIntLiteral
}

func (n *Node) empty() bool {
	return len(n.Children) == 0 && len(n.Types) == 0
}

func (n *Node) add(child *Node) {
	n.Children = append(n.Children, child)
}

// String renders n and its subtree on one line, for diagnostics and tests.
func (n *Node) String() string {
	var sb strings.Builder
	n.write(&sb)
	return sb.String()
}

func (n *Node) write(sb *strings.Builder) {
	sb.WriteByte('(')
	sb.WriteString(n.Kind.String())
	switch {
	case n.IsLiteral():
		fmt.Fprintf(sb, " %g", n.Value)
	case n.Kind == KindStringLiteral:
		fmt.Fprintf(sb, " %q", n.Name)
	case n.Name != "":
		sb.WriteString(" " + n.Name)
	}
	if n.Literal != KindNone {
		fmt.Fprintf(sb, " lit=%g", n.Value)
	}
	if n.Type.Prim != PrimNone {
		sb.WriteString(" :" + n.Type.String())
	}
	if n.Modifiers != 0 {
		sb.WriteString(" [" + n.Modifiers.String() + "]")
	}
	for _, c := range n.Children {
		sb.WriteByte(' ')
		c.write(sb)
	}
	sb.WriteByte(')')
}

// Warning represents a non-fatal problem found while building the tree.
type Warning struct {
	Message string
	Pos     gles.Position
}

func (w Warning) String() string {
	return w.Pos.String() + ": " + w.Message
}
