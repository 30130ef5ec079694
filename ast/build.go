package ast

import (
	"fmt"

	"github.com/gogpu/vsc/gles"
)

// builder carries the warnings collected while lowering a parse tree.
type builder struct {
	warnings []Warning
}

// Build lowers a parse tree into a semantic tree rooted at a KindNone
// container. Constructs without a representation (control flow, most
// operators, field selection) are skipped with a warning; Build itself
// never fails.
func Build(tree *gles.Node) (*Node, []Warning) {
	root := &Node{Kind: KindNone}
	b := &builder{}
	if tree != nil {
		b.buildInto(NewScope(nil, root), root, tree)
	}
	return root, b.warnings
}

func (b *builder) warn(pos gles.Position, format string, args ...interface{}) {
	b.warnings = append(b.warnings, Warning{
		Message: fmt.Sprintf(format, args...),
		Pos:     pos,
	})
}

// buildInto lowers pn and adds the resulting nodes, and any struct types
// it defines, to dst.
func (b *builder) buildInto(scope *Scope, dst *Node, pn *gles.Node) {
	if pn == nil {
		return
	}
	if pn.IsTerminal() {
		if n := b.terminal(pn.Token); n != nil {
			dst.add(n)
		}
		return
	}
	if pn.Empty() {
		return
	}

	if pn.Children[0].IsTerminal() {
		b.classify(scope, dst, pn)
		return
	}

	// A nonterminal operand followed by an operator is an expression,
	// e.g. [[a * b] * c] or [[v . xyz] = w].
	if next := pn.Child(1); next != nil && next.IsTerminal() && !next.Is(gles.TokenSemicolon) {
		if n := b.operatorExpression(scope, pn); n != nil {
			dst.add(n)
		}
		return
	}

	for _, child := range pn.Children {
		if !child.IsTerminal() {
			b.buildInto(scope, dst, child)
		}
	}
}

// expr lowers pn as a single expression. It returns nil when nothing could
// be built; a warning has been recorded in that case.
func (b *builder) expr(scope *Scope, pn *gles.Node) *Node {
	if pn == nil {
		return nil
	}
	if pn.IsTerminal() {
		return b.terminal(pn.Token)
	}
	tmp := &Node{Kind: KindNone}
	b.buildInto(scope, tmp, pn)
	if len(tmp.Children) == 0 {
		return nil
	}
	return tmp.Children[0]
}

func (b *builder) terminal(tok gles.Token) *Node {
	switch tok.Kind {
	case gles.TokenIdent:
		return reference(tok)
	case gles.TokenString:
		return &Node{Kind: KindStringLiteral, Name: tok.Text, Pos: tok.Pos()}
	}
	if n := literal(tok); n != nil {
		return n
	}
	b.warn(tok.Pos(), "unexpected %q in expression", tok.Text)
	return nil
}

func reference(tok gles.Token) *Node {
	return &Node{Kind: KindVariable, Name: tok.Text, Pos: tok.Pos()}
}

func literal(tok gles.Token) *Node {
	switch tok.Kind {
	case gles.TokenFloatLiteral:
		return &Node{Kind: KindFloatLiteral, Value: tok.Float, Pos: tok.Pos()}
	case gles.TokenIntLiteral, gles.TokenBoolLiteral:
		return &Node{Kind: KindIntLiteral, Value: float64(tok.Int), Pos: tok.Pos()}
	}
	return nil
}

func isLiteral(tok gles.Token) bool {
	switch tok.Kind {
	case gles.TokenFloatLiteral, gles.TokenIntLiteral, gles.TokenBoolLiteral:
		return true
	}
	return false
}

// firstToken returns the leftmost token under pn.
func firstToken(pn *gles.Node) gles.Token {
	for !pn.IsTerminal() {
		if pn.Empty() {
			return gles.Token{}
		}
		pn = pn.Children[0]
	}
	return pn.Token
}

// classify lowers a nonterminal whose first child is a terminal.
func (b *builder) classify(scope *Scope, dst *Node, pn *gles.Node) {
	lead := pn.Children[0].Token
	pos := lead.Pos()

	switch {
	case lead.Kind == gles.TokenSemicolon, lead.Kind == gles.TokenPrecision:
		// Empty statement or default precision: nothing to build.

	case lead.Kind == gles.TokenIdent:
		b.identifier(scope, dst, pn)

	case lead.Kind == gles.TokenReturn:
		n := &Node{Kind: KindReturn, Pos: pos}
		if value := pn.Child(1); value != nil && !value.Is(gles.TokenSemicolon) {
			if v := b.expr(scope, value); v != nil {
				n.add(v)
			}
		}
		dst.add(n)

	case lead.Kind.IsTypeQualifier(), lead.Kind.IsPrecisionQualifier(),
		lead.Kind.IsPrimitiveType(), lead.Kind == gles.TokenStruct:
		b.declaration(scope, dst, pn)

	case isLiteral(lead):
		next := pn.Child(1)
		switch {
		case next == nil || next.Is(gles.TokenSemicolon):
			dst.add(literal(lead))
		case next.Is(gles.TokenStar), next.Is(gles.TokenSlash):
			if n := b.arithmetic(scope, pn); n != nil {
				dst.add(n)
			}
		default:
			b.unsupportedOperator(next)
		}

	case lead.Kind == gles.TokenString:
		dst.add(&Node{Kind: KindStringLiteral, Name: lead.Text, Pos: pos})

	case lead.Kind == gles.TokenLeftParen:
		if n := b.expr(scope, pn.Child(1)); n != nil {
			dst.add(n)
		}

	case lead.Kind == gles.TokenLeftBrace:
		b.buildInto(scope, dst, pn.Child(1))

	case lead.Kind == gles.TokenMinus, lead.Kind == gles.TokenPlus:
		if n := b.sign(scope, pn); n != nil {
			dst.add(n)
		}

	case lead.Kind == gles.TokenIf, lead.Kind == gles.TokenWhile, lead.Kind == gles.TokenDo,
		lead.Kind == gles.TokenFor, lead.Kind == gles.TokenBreak, lead.Kind == gles.TokenContinue,
		lead.Kind == gles.TokenDiscard:
		b.warn(pos, "%s statement is not supported", lead.Kind)

	default:
		b.warn(pos, "unsupported construct starting with %q", lead.Text)
	}
}

// identifier lowers constructs led by an identifier: assignments, the
// multiply/divide shorthand, struct-typed declarations, calls and plain
// references.
func (b *builder) identifier(scope *Scope, dst *Node, pn *gles.Node) {
	lead := pn.Children[0].Token
	next := pn.Child(1)

	switch {
	case next == nil || next.Is(gles.TokenSemicolon):
		dst.add(reference(lead))

	case !next.IsTerminal():
		b.warn(lead.Pos(), "unsupported expression after %q", lead.Text)

	case next.Token.Kind.IsAssignmentOp():
		if n := b.assignment(scope, pn); n != nil {
			dst.add(n)
		}

	case next.Is(gles.TokenStar), next.Is(gles.TokenSlash):
		if n := b.arithmetic(scope, pn); n != nil {
			dst.add(n)
		}

	case next.Is(gles.TokenIdent):
		if scope.LookupType(lead.Text) == nil {
			b.warn(lead.Pos(), "unknown type %q", lead.Text)
			return
		}
		b.declaration(scope, dst, pn)

	case next.Is(gles.TokenLeftParen):
		dst.add(b.call(scope, pn))

	case next.Is(gles.TokenDot):
		b.warn(lead.Pos(), "field selection on %q is not supported", lead.Text)

	case next.Is(gles.TokenLeftBracket):
		b.warn(lead.Pos(), "indexing %q is not supported", lead.Text)

	default:
		b.unsupportedOperator(next)
	}
}

func (b *builder) unsupportedOperator(op *gles.Node) {
	b.warn(op.Token.Pos(), "operator %s is not supported", op.Token.Kind)
}

// operatorExpression lowers [operand op ...] where operand is a nonterminal.
func (b *builder) operatorExpression(scope *Scope, pn *gles.Node) *Node {
	next := pn.Child(1)
	switch {
	case next.Is(gles.TokenStar), next.Is(gles.TokenSlash):
		return b.arithmetic(scope, pn)
	case next.Token.Kind.IsAssignmentOp():
		b.warn(firstToken(pn).Pos(), "unsupported assignment target")
	case next.Is(gles.TokenDot):
		b.warn(next.Token.Pos(), "field selection is not supported")
	case next.Is(gles.TokenLeftBracket):
		b.warn(next.Token.Pos(), "indexing is not supported")
	case next.Is(gles.TokenQuestion):
		b.warn(next.Token.Pos(), "conditional expressions are not supported")
	default:
		b.unsupportedOperator(next)
	}
	return nil
}

// assignment lowers [target = value]. Only plain "=" has an equivalent.
func (b *builder) assignment(scope *Scope, pn *gles.Node) *Node {
	target := pn.Children[0].Token
	op := pn.Children[1].Token
	if op.Kind != gles.TokenEqual {
		b.warn(op.Pos(), "compound assignment %s is not supported", op.Kind)
		return nil
	}
	value := b.expr(scope, pn.Child(2))
	if value == nil {
		return nil
	}
	return &Node{
		Kind:     KindAssign,
		Name:     target.Text,
		Children: []*Node{value},
		Pos:      target.Pos(),
	}
}

// arithmetic lowers [left * right] and [left / right].
func (b *builder) arithmetic(scope *Scope, pn *gles.Node) *Node {
	left := pn.Children[0]
	n := &Node{Kind: KindMultiply}
	if pn.Children[1].Is(gles.TokenSlash) {
		n.Kind = KindDivide
	}

	right := b.expr(scope, pn.Child(2))
	if right == nil {
		return nil
	}
	n.Children = []*Node{right}

	switch {
	case left.Is(gles.TokenIdent):
		n.Name = left.Token.Text
		n.Pos = left.Token.Pos()
	case left.IsTerminal() && isLiteral(left.Token):
		lit := literal(left.Token)
		n.Literal = lit.Kind
		n.Value = lit.Value
		n.Pos = lit.Pos
	default:
		l := b.expr(scope, left)
		if l == nil {
			return nil
		}
		n.Children = append(n.Children, l)
		n.Pos = l.Pos
	}
	return n
}

// sign folds a unary + or - into the literal it precedes.
func (b *builder) sign(scope *Scope, pn *gles.Node) *Node {
	op := pn.Children[0].Token
	operand := b.expr(scope, pn.Child(1))
	if operand == nil {
		return nil
	}
	if !operand.IsLiteral() {
		b.warn(op.Pos(), "unary %s is only supported on literals", op.Kind)
		return nil
	}
	if op.Kind == gles.TokenMinus {
		operand.Value = -operand.Value
	}
	operand.Pos = op.Pos()
	return operand
}

// call lowers [callee ( args )]. Type constructors are calls too.
func (b *builder) call(scope *Scope, pn *gles.Node) *Node {
	callee := pn.Children[0].Token
	n := &Node{Kind: KindCall, Name: callee.Text, Pos: callee.Pos()}
	if prim, ok := PrimitiveOf(callee.Kind); ok {
		n.Type = Type{Prim: prim}
	} else if scope.LookupType(callee.Text) != nil {
		n.Type = Type{Prim: PrimStruct, Struct: callee.Text}
	}

	if args := pn.Child(2); args != nil && !args.IsTerminal() {
		for _, arg := range args.Children {
			if arg.Is(gles.TokenComma) || arg.Is(gles.TokenVoid) {
				continue
			}
			if v := b.expr(scope, arg); v != nil {
				n.add(v)
			}
		}
	}
	return n
}

// functionName returns the index of the identifier that names a function
// in a declaration-shaped node, or -1.
func functionName(c []*gles.Node) int {
	for i := 0; i+1 < len(c); i++ {
		if c[i].Is(gles.TokenIdent) && c[i+1].Is(gles.TokenLeftParen) {
			return i
		}
	}
	return -1
}

func (b *builder) typeOf(scope *Scope, pn *gles.Node) (Type, bool) {
	if !pn.IsTerminal() {
		return Type{}, false
	}
	if prim, ok := PrimitiveOf(pn.Token.Kind); ok {
		return Type{Prim: prim}, true
	}
	if pn.Token.Kind == gles.TokenIdent && scope.LookupType(pn.Token.Text) != nil {
		return Type{Prim: PrimStruct, Struct: pn.Token.Text}, true
	}
	return Type{}, false
}

// declaration lowers a node led by qualifiers or a type: a constructor
// call, a function, a struct definition or a list of variable declarations.
func (b *builder) declaration(scope *Scope, dst *Node, pn *gles.Node) {
	c := pn.Children
	if c[0].Token.Kind.IsPrimitiveType() && pn.Child(1).Is(gles.TokenLeftParen) {
		dst.add(b.call(scope, pn))
		return
	}
	if idx := functionName(c); idx >= 0 {
		dst.add(b.function(scope, pn, idx))
		return
	}

	var mods Modifiers
	i := 0
	for ; i < len(c) && c[i].IsTerminal(); i++ {
		tok := c[i].Token
		if m, ok := qualifierModifiers[tok.Kind]; ok {
			mods |= m
			continue
		}
		if !tok.Kind.IsPrecisionQualifier() {
			break
		}
	}
	if i >= len(c) {
		b.warn(c[0].Token.Pos(), "declaration without a type")
		return
	}

	if c[i].Is(gles.TokenStruct) {
		b.structure(scope, dst, pn, i, mods)
		return
	}

	typ, ok := b.typeOf(scope, c[i])
	if !ok {
		b.warn(firstToken(c[i]).Pos(), "expected a type, found %q", firstToken(c[i]).Text)
		return
	}
	b.declarators(scope, dst, c[i+1:], typ, mods)
}

// declarators adds one declaration per name in rest, which is the part
// of a declaration after its type: "a, b = init, c[4] ;".
func (b *builder) declarators(scope *Scope, dst *Node, rest []*gles.Node, typ Type, mods Modifiers) {
	at := func(i int) *gles.Node {
		if i < len(rest) {
			return rest[i]
		}
		return nil
	}

	for i := 0; i < len(rest); i++ {
		name := rest[i]
		if !name.Is(gles.TokenIdent) {
			continue
		}
		decl := &Node{
			Kind:      KindVariable,
			Name:      name.Token.Text,
			Type:      typ,
			Modifiers: ModDeclare | mods,
			Pos:       name.Token.Pos(),
		}
		switch next := at(i + 1); {
		case next.Is(gles.TokenEqual):
			if init := b.expr(scope, at(i+2)); init != nil {
				decl.add(init)
			}
			i += 2
		case next.Is(gles.TokenLeftBracket):
			b.warn(decl.Pos, "array %q is declared as a scalar", decl.Name)
			i += 3
		}
		dst.add(decl)
	}
}

// structure lowers [struct Name? { members } declarators... ;]; c[i] is
// the struct keyword.
func (b *builder) structure(scope *Scope, dst *Node, pn *gles.Node, i int, mods Modifiers) {
	c := pn.Children
	s := &Node{Kind: KindStruct, Pos: c[i].Token.Pos()}
	j := i + 1
	if pn.Child(j).Is(gles.TokenIdent) {
		s.Name = c[j].Token.Text
		j++
	}

	// c[j] is "{", c[j+1] the member list, c[j+2] "}".
	if members := pn.Child(j + 1); members != nil && !members.IsTerminal() {
		for _, m := range members.Children {
			b.member(scope, s, m)
		}
	}
	dst.Types = append(dst.Types, s)

	if j+3 < len(c) {
		b.declarators(scope, dst, c[j+3:], Type{Prim: PrimStruct, Struct: s.Name}, mods)
	}
}

// member flattens one struct member declaration into s.
func (b *builder) member(scope *Scope, s *Node, m *gles.Node) {
	if m.IsTerminal() || m.Empty() {
		return
	}
	mc := m.Children
	k := 0
	for k < len(mc) && mc[k].IsTerminal() && mc[k].Token.Kind.IsPrecisionQualifier() {
		k++
	}
	if k >= len(mc) {
		return
	}
	if mc[k].Is(gles.TokenStruct) {
		b.warn(mc[k].Token.Pos(), "nested struct definition in %q dropped", s.Name)
		return
	}
	typ, ok := b.typeOf(scope, mc[k])
	if !ok {
		b.warn(firstToken(mc[k]).Pos(), "unknown member type %q in %q", firstToken(mc[k]).Text, s.Name)
		return
	}
	b.declarators(scope, s, mc[k+1:], typ, 0)
}

// function lowers a function definition or prototype whose name is
// c[nameIdx]. Children[0] of the result is the parameter container.
func (b *builder) function(scope *Scope, pn *gles.Node, nameIdx int) *Node {
	c := pn.Children
	name := c[nameIdx].Token
	fn := &Node{Kind: KindFunction, Name: name.Text, Pos: name.Pos()}

	for _, spec := range c[:nameIdx] {
		tok := firstToken(spec)
		if m, ok := qualifierModifiers[tok.Kind]; ok && spec.IsTerminal() {
			fn.Modifiers |= m
			continue
		}
		if tok.Kind.IsPrecisionQualifier() && spec.IsTerminal() {
			continue
		}
		if typ, ok := b.typeOf(scope, spec); ok {
			fn.Type = typ
			continue
		}
		b.warn(tok.Pos(), "unrecognized function specifier %q", tok.Text)
	}

	fnScope := NewScope(scope, fn)
	params := &Node{Kind: KindNone}
	if list := pn.Child(nameIdx + 2); list != nil && !list.IsTerminal() {
		for _, p := range list.Children {
			if d := b.parameter(fnScope, p); d != nil {
				params.add(d)
			}
		}
	}
	fn.Children = []*Node{params}

	// [... name ( params ) { body }] or [... name ( params ) ;]
	if pn.Child(nameIdx + 4).Is(gles.TokenLeftBrace) {
		b.buildInto(fnScope, fn, pn.Child(nameIdx+5))
	} else {
		fn.Modifiers |= ModForward
	}
	return fn
}

// parameter lowers [qualifiers... type name?]. Unnamed parameters,
// "void" included, produce nothing.
func (b *builder) parameter(scope *Scope, p *gles.Node) *Node {
	if p.IsTerminal() {
		return nil
	}
	pc := p.Children
	var mods Modifiers
	for k, t := range pc {
		if !t.IsTerminal() {
			continue
		}
		if t.Token.Kind == gles.TokenConst {
			mods |= ModConst
			continue
		}
		typ, ok := b.typeOf(scope, t)
		if !ok {
			continue
		}
		if k+1 >= len(pc) || !pc[k+1].Is(gles.TokenIdent) {
			return nil
		}
		name := pc[k+1].Token
		if k+2 < len(pc) && pc[k+2].Is(gles.TokenLeftBracket) {
			b.warn(name.Pos(), "array %q is declared as a scalar", name.Text)
		}
		return &Node{
			Kind:      KindVariable,
			Name:      name.Text,
			Type:      typ,
			Modifiers: ModDeclare | mods,
			Pos:       name.Pos(),
		}
	}
	b.warn(firstToken(p).Pos(), "parameter without a type")
	return nil
}
