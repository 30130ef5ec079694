package gles

import (
	"fmt"
)

// Parser builds a concrete parse tree by recursive descent with
// backtracking checkpoints.
type Parser struct {
	lex    *Lexer
	tok    Token
	source string

	// typeNames holds struct names seen so far; they parse as type specifiers.
	typeNames map[string]struct{}
}

// checkpoint is a saved parser position. The lexer is copied by value.
type checkpoint struct {
	lex Lexer
	tok Token
}

// NewParser creates a new parser for the given source.
func NewParser(source string) *Parser {
	return &Parser{
		lex:       NewLexer(source),
		source:    source,
		typeNames: make(map[string]struct{}),
	}
}

// Parse parses source as one translation unit.
func Parse(source string) (*Node, error) {
	return NewParser(source).Parse()
}

// Parse parses the whole translation unit. It stops at the first
// unexpected token and returns a *ParseError.
func (p *Parser) Parse() (*Node, error) {
	p.tok = p.lex.Next()
	root, err := p.translationUnit()
	if err != nil {
		return nil, err
	}
	return root, nil
}

func (p *Parser) save() checkpoint {
	return checkpoint{lex: *p.lex, tok: p.tok}
}

func (p *Parser) restore(c checkpoint) {
	*p.lex = c.lex
	p.tok = c.tok
}

// advance consumes the current token and returns it as a terminal.
func (p *Parser) advance() *Node {
	n := NewTerminal(p.tok)
	p.tok = p.lex.Next()
	return n
}

func (p *Parser) check(kind TokenKind) bool {
	return p.tok.Kind == kind
}

// match consumes the current token if it has the expected kind.
func (p *Parser) match(kind TokenKind) (*Node, *ParseError) {
	if p.tok.Kind != kind {
		return nil, p.errorf("expected %s, found %s", kind, describe(p.tok))
	}
	return p.advance(), nil
}

func (p *Parser) errorf(format string, args ...interface{}) *ParseError {
	return &ParseError{
		Message: fmt.Sprintf(format, args...),
		Token:   p.tok,
		Source:  p.source,
	}
}

func (p *Parser) isTypeName(tok Token) bool {
	if tok.Kind != TokenIdent {
		return false
	}
	_, ok := p.typeNames[tok.Text]
	return ok
}

func (p *Parser) isTypeSpecifier(tok Token) bool {
	return tok.Kind.IsPrimitiveType() || tok.Kind == TokenStruct || p.isTypeName(tok)
}

func (p *Parser) isConstructor(tok Token) bool {
	switch tok.Kind {
	case TokenVoid, TokenSampler2D, TokenSamplerCube:
		return false
	}
	return tok.Kind.IsPrimitiveType() || p.isTypeName(tok)
}

func (p *Parser) startsDeclaration() bool {
	k := p.tok.Kind
	return k.IsTypeQualifier() || k.IsPrecisionQualifier() || k == TokenPrecision || p.isTypeSpecifier(p.tok)
}

// ---------------------------------------------------------------------------
// Types
// ---------------------------------------------------------------------------

func (p *Parser) typeSpecifier() (*Node, *ParseError) {
	n := NewNonTerminal()
	if p.tok.Kind.IsPrecisionQualifier() {
		q, err := p.precisionQualifier()
		if err != nil {
			return nil, err
		}
		n.Add(q)
	}
	t, err := p.typeSpecifierNoPrecision()
	if err != nil {
		return nil, err
	}
	n.Append(t)
	return n, nil
}

func (p *Parser) typeSpecifierNoPrecision() (*Node, *ParseError) {
	if p.check(TokenStruct) {
		return p.structSpecifier()
	}
	if p.isTypeSpecifier(p.tok) {
		return p.advance(), nil
	}
	return nil, p.errorf("expected type specifier, found %s", describe(p.tok))
}

func (p *Parser) precisionQualifier() (*Node, *ParseError) {
	if !p.tok.Kind.IsPrecisionQualifier() {
		return nil, p.errorf("expected precision qualifier, found %s", describe(p.tok))
	}
	return p.advance(), nil
}

// typeQualifier parses one or more qualifiers, e.g. "invariant varying".
func (p *Parser) typeQualifier() (*Node, *ParseError) {
	if !p.tok.Kind.IsTypeQualifier() {
		return nil, p.errorf("expected type qualifier, found %s", describe(p.tok))
	}
	n := NewNonTerminal()
	for p.tok.Kind.IsTypeQualifier() {
		n.Add(p.advance())
	}
	return n, nil
}

func (p *Parser) fullySpecifiedType() (*Node, *ParseError) {
	n := NewNonTerminal()
	if p.tok.Kind.IsTypeQualifier() {
		q, err := p.typeQualifier()
		if err != nil {
			return nil, err
		}
		n.Append(q)
	}
	t, err := p.typeSpecifier()
	if err != nil {
		return nil, err
	}
	n.Append(t)
	return n, nil
}

// arraySuffix parses an optional "[ constant-expression ]" into n.
func (p *Parser) arraySuffix(n *Node) *ParseError {
	if !p.check(TokenLeftBracket) {
		return nil
	}
	n.Add(p.advance())
	size, err := p.constantExpression()
	if err != nil {
		return err
	}
	n.Add(size)
	closing, err := p.match(TokenRightBracket)
	if err != nil {
		return err
	}
	n.Add(closing)
	return nil
}

// ---------------------------------------------------------------------------
// Structs
// ---------------------------------------------------------------------------

func (p *Parser) structSpecifier() (*Node, *ParseError) {
	kw, err := p.match(TokenStruct)
	if err != nil {
		return nil, err
	}
	n := NewNonTerminal(kw)
	if p.check(TokenIdent) {
		name := p.advance()
		p.typeNames[name.Token.Text] = struct{}{}
		n.Add(name)
	}
	open, err := p.match(TokenLeftBrace)
	if err != nil {
		return nil, err
	}
	n.Add(open)
	members, err := p.structDeclarationList()
	if err != nil {
		return nil, err
	}
	n.Add(members)
	closing, err := p.match(TokenRightBrace)
	if err != nil {
		return nil, err
	}
	n.Add(closing)
	return n, nil
}

func (p *Parser) structDeclarationList() (*Node, *ParseError) {
	n := NewNonTerminal()
	for !p.check(TokenRightBrace) {
		if p.check(TokenEOF) {
			return nil, p.errorf("expected }, found %s", describe(p.tok))
		}
		member, err := p.structDeclaration()
		if err != nil {
			return nil, err
		}
		n.Add(member)
	}
	return n, nil
}

func (p *Parser) structDeclaration() (*Node, *ParseError) {
	n := NewNonTerminal()
	t, err := p.typeSpecifier()
	if err != nil {
		return nil, err
	}
	n.Append(t)
	declarators, err := p.structDeclaratorList()
	if err != nil {
		return nil, err
	}
	n.Append(declarators)
	semi, err := p.match(TokenSemicolon)
	if err != nil {
		return nil, err
	}
	n.Add(semi)
	return n, nil
}

func (p *Parser) structDeclaratorList() (*Node, *ParseError) {
	n := NewNonTerminal()
	d, err := p.structDeclarator()
	if err != nil {
		return nil, err
	}
	n.Append(d)
	for p.check(TokenComma) {
		n.Add(p.advance())
		d, err := p.structDeclarator()
		if err != nil {
			return nil, err
		}
		n.Append(d)
	}
	return n, nil
}

func (p *Parser) structDeclarator() (*Node, *ParseError) {
	name, err := p.match(TokenIdent)
	if err != nil {
		return nil, err
	}
	n := NewNonTerminal(name)
	if err := p.arraySuffix(n); err != nil {
		return nil, err
	}
	return n, nil
}

// ---------------------------------------------------------------------------
// Functions
// ---------------------------------------------------------------------------

func (p *Parser) parameterDeclaration() (*Node, *ParseError) {
	n := NewNonTerminal()
	for p.tok.Kind.IsParameterQualifier() || p.check(TokenConst) {
		n.Add(p.advance())
	}
	if !p.tok.Kind.IsPrecisionQualifier() && !p.isTypeSpecifier(p.tok) {
		return nil, p.errorf("expected parameter type, found %s", describe(p.tok))
	}
	t, err := p.typeSpecifier()
	if err != nil {
		return nil, err
	}
	n.Append(t)

	switch {
	case p.check(TokenIdent):
		n.Add(p.advance())
		if err := p.arraySuffix(n); err != nil {
			return nil, err
		}
	case p.check(TokenLeftBracket):
		if err := p.arraySuffix(n); err != nil {
			return nil, err
		}
	case p.check(TokenComma), p.check(TokenRightParen):
		// Unnamed parameter, e.g. "void".
	default:
		return nil, p.errorf("unexpected %s in parameter declaration", describe(p.tok))
	}
	return n, nil
}

func (p *Parser) functionHeader() (*Node, *ParseError) {
	n := NewNonTerminal()
	t, err := p.fullySpecifiedType()
	if err != nil {
		return nil, err
	}
	n.Append(t)
	name, err := p.match(TokenIdent)
	if err != nil {
		return nil, err
	}
	n.Add(name)
	open, err := p.match(TokenLeftParen)
	if err != nil {
		return nil, err
	}
	n.Add(open)
	return n, nil
}

// functionDeclarator adds the parameter list as a single nonterminal,
// empty when the function takes no parameters.
func (p *Parser) functionDeclarator() (*Node, *ParseError) {
	n, err := p.functionHeader()
	if err != nil {
		return nil, err
	}
	params := NewNonTerminal()
	if !p.check(TokenRightParen) {
		param, err := p.parameterDeclaration()
		if err != nil {
			return nil, err
		}
		params.Add(param)
		for p.check(TokenComma) {
			params.Add(p.advance())
			param, err := p.parameterDeclaration()
			if err != nil {
				return nil, err
			}
			params.Add(param)
		}
	}
	n.Add(params)
	return n, nil
}

func (p *Parser) functionPrototype() (*Node, *ParseError) {
	n, err := p.functionDeclarator()
	if err != nil {
		return nil, err
	}
	closing, err := p.match(TokenRightParen)
	if err != nil {
		return nil, err
	}
	n.Add(closing)
	return n, nil
}

func (p *Parser) functionDefinition() (*Node, *ParseError) {
	n, err := p.functionPrototype()
	if err != nil {
		return nil, err
	}
	body, err := p.compoundStatement()
	if err != nil {
		return nil, err
	}
	n.Append(body)
	return n, nil
}

// ---------------------------------------------------------------------------
// Declarations
// ---------------------------------------------------------------------------

// singleDeclaration parses a type and an optional declarator. The name is
// optional so that "struct S { ... };" parses.
func (p *Parser) singleDeclaration() (*Node, *ParseError) {
	n := NewNonTerminal()
	t, err := p.fullySpecifiedType()
	if err != nil {
		return nil, err
	}
	n.Append(t)
	if !p.check(TokenIdent) {
		return n, nil
	}
	n.Add(p.advance())
	if err := p.declaratorTail(n); err != nil {
		return nil, err
	}
	return n, nil
}

// declaratorTail parses an optional array size or initializer.
func (p *Parser) declaratorTail(n *Node) *ParseError {
	switch {
	case p.check(TokenLeftBracket):
		return p.arraySuffix(n)
	case p.check(TokenEqual):
		n.Add(p.advance())
		init, err := p.initializer()
		if err != nil {
			return err
		}
		n.Add(init)
	}
	return nil
}

func (p *Parser) initDeclaratorList() (*Node, *ParseError) {
	n, err := p.singleDeclaration()
	if err != nil {
		return nil, err
	}
	for p.check(TokenComma) {
		n.Add(p.advance())
		name, err := p.match(TokenIdent)
		if err != nil {
			return nil, err
		}
		n.Add(name)
		if err := p.declaratorTail(n); err != nil {
			return nil, err
		}
	}
	return n, nil
}

// declaration parses a precision statement, a function prototype or a
// declarator list, each terminated by a semicolon.
func (p *Parser) declaration() (*Node, *ParseError) {
	if p.check(TokenPrecision) {
		n := NewNonTerminal(p.advance())
		q, err := p.precisionQualifier()
		if err != nil {
			return nil, err
		}
		n.Add(q)
		t, err := p.typeSpecifierNoPrecision()
		if err != nil {
			return nil, err
		}
		n.Append(t)
		return p.terminate(n)
	}

	cp := p.save()
	if _, err := p.singleDeclaration(); err == nil && p.check(TokenLeftParen) {
		p.restore(cp)
		proto, err := p.functionPrototype()
		if err != nil {
			return nil, err
		}
		return p.terminate(proto)
	}
	p.restore(cp)

	n, err := p.initDeclaratorList()
	if err != nil {
		return nil, err
	}
	return p.terminate(n)
}

func (p *Parser) terminate(n *Node) (*Node, *ParseError) {
	semi, err := p.match(TokenSemicolon)
	if err != nil {
		return nil, err
	}
	n.Add(semi)
	return n, nil
}

// externalDeclaration decides between a function definition and a
// declaration by speculative parsing.
func (p *Parser) externalDeclaration() (*Node, *ParseError) {
	cp := p.save()
	if _, err := p.singleDeclaration(); err == nil && p.check(TokenLeftParen) {
		p.restore(cp)
		if _, err := p.functionPrototype(); err == nil && p.check(TokenLeftBrace) {
			p.restore(cp)
			return p.functionDefinition()
		}
	}
	p.restore(cp)
	return p.declaration()
}

func (p *Parser) translationUnit() (*Node, *ParseError) {
	n := NewNonTerminal()
	for !p.check(TokenEOF) {
		decl, err := p.externalDeclaration()
		if err != nil {
			return nil, err
		}
		n.Add(decl)
	}
	return n, nil
}

// ---------------------------------------------------------------------------
// Expressions
// ---------------------------------------------------------------------------

// Binary precedence levels, loosest first. Every level is left-associative.
const (
	levelLogicalOr = iota
	levelLogicalXor
	levelLogicalAnd
	levelInclusiveOr
	levelExclusiveOr
	levelAnd
	levelEquality
	levelRelational
	levelShift
	levelAdditive
	levelMultiplicative
)

var binaryLevels = [...][]TokenKind{
	levelLogicalOr:      {TokenPipePipe},
	levelLogicalXor:     {TokenCaretCaret},
	levelLogicalAnd:     {TokenAmpAmp},
	levelInclusiveOr:    {TokenPipe},
	levelExclusiveOr:    {TokenCaret},
	levelAnd:            {TokenAmpersand},
	levelEquality:       {TokenEqualEqual, TokenBangEqual},
	levelRelational:     {TokenLess, TokenGreater, TokenLessEqual, TokenGreaterEqual},
	levelShift:          {TokenLessLess, TokenGreaterGreater},
	levelAdditive:       {TokenPlus, TokenMinus},
	levelMultiplicative: {TokenStar, TokenSlash, TokenPercent},
}

func (p *Parser) atOperator(level int) bool {
	for _, k := range binaryLevels[level] {
		if p.tok.Kind == k {
			return true
		}
	}
	return false
}

// binaryExpression parses one operand at the next tighter level and
// hands it to binaryTail.
func (p *Parser) binaryExpression(level int) (*Node, *ParseError) {
	if level == len(binaryLevels) {
		return p.unaryExpression()
	}
	left, err := p.binaryExpression(level + 1)
	if err != nil {
		return nil, err
	}
	return p.binaryTail(level, left)
}

// binaryTail folds "op operand" pairs of this level onto left, nesting
// leftward so that a - b - c becomes [[a - b] - c].
func (p *Parser) binaryTail(level int, left *Node) (*Node, *ParseError) {
	if !p.atOperator(level) {
		return left, nil
	}
	op := p.advance()
	right, err := p.binaryExpression(level + 1)
	if err != nil {
		return nil, err
	}
	return p.binaryTail(level, NewNonTerminal(left, op, right))
}

func (p *Parser) primaryExpression() (*Node, *ParseError) {
	switch p.tok.Kind {
	case TokenLeftParen:
		n := NewNonTerminal(p.advance())
		e, err := p.expression()
		if err != nil {
			return nil, err
		}
		n.Add(e)
		closing, err := p.match(TokenRightParen)
		if err != nil {
			return nil, err
		}
		n.Add(closing)
		return n, nil
	case TokenIntLiteral, TokenFloatLiteral, TokenBoolLiteral, TokenIdent, TokenString:
		return p.advance(), nil
	}
	return nil, p.errorf("unexpected %s in primary expression", describe(p.tok))
}

// functionCall parses callee "(" arguments ")". The arguments are kept in
// one nonterminal, commas included.
func (p *Parser) functionCall() (*Node, *ParseError) {
	if p.tok.Kind != TokenIdent && !p.isConstructor(p.tok) {
		return nil, p.errorf("expected function identifier or type constructor, found %s", describe(p.tok))
	}
	n := NewNonTerminal(p.advance())
	open, err := p.match(TokenLeftParen)
	if err != nil {
		return nil, err
	}
	n.Add(open)

	args := NewNonTerminal()
	switch {
	case p.check(TokenVoid):
		args.Add(p.advance())
	case !p.check(TokenRightParen):
		arg, err := p.assignmentExpression()
		if err != nil {
			return nil, err
		}
		args.Add(arg)
		for p.check(TokenComma) {
			args.Add(p.advance())
			arg, err := p.assignmentExpression()
			if err != nil {
				return nil, err
			}
			args.Add(arg)
		}
	}
	n.Add(args)

	closing, err := p.match(TokenRightParen)
	if err != nil {
		return nil, err
	}
	n.Add(closing)
	return n, nil
}

func (p *Parser) postfixExpression() (*Node, *ParseError) {
	var base *Node
	var err *ParseError
	if (p.check(TokenIdent) || p.isConstructor(p.tok)) && p.lex.Peek().Kind == TokenLeftParen {
		base, err = p.functionCall()
	} else {
		base, err = p.primaryExpression()
	}
	if err != nil {
		return nil, err
	}
	return p.postfixTail(base)
}

func (p *Parser) postfixTail(base *Node) (*Node, *ParseError) {
	switch p.tok.Kind {
	case TokenLeftBracket:
		n := NewNonTerminal(base, p.advance())
		index, err := p.expression()
		if err != nil {
			return nil, err
		}
		n.Add(index)
		closing, err := p.match(TokenRightBracket)
		if err != nil {
			return nil, err
		}
		n.Add(closing)
		return p.postfixTail(n)
	case TokenDot:
		n := NewNonTerminal(base, p.advance())
		field, err := p.match(TokenIdent)
		if err != nil {
			return nil, err
		}
		n.Add(field)
		return p.postfixTail(n)
	case TokenPlusPlus, TokenMinusMinus:
		return p.postfixTail(NewNonTerminal(base, p.advance()))
	}
	return base, nil
}

func (p *Parser) unaryExpression() (*Node, *ParseError) {
	switch p.tok.Kind {
	case TokenPlusPlus, TokenMinusMinus, TokenPlus, TokenMinus, TokenBang, TokenTilde:
		op := p.advance()
		operand, err := p.unaryExpression()
		if err != nil {
			return nil, err
		}
		return NewNonTerminal(op, operand), nil
	}
	return p.postfixExpression()
}

func (p *Parser) conditionalExpression() (*Node, *ParseError) {
	cond, err := p.binaryExpression(levelLogicalOr)
	if err != nil {
		return nil, err
	}
	if !p.check(TokenQuestion) {
		return cond, nil
	}
	n := NewNonTerminal(cond, p.advance())
	then, err := p.expression()
	if err != nil {
		return nil, err
	}
	n.Add(then)
	colon, err := p.match(TokenColon)
	if err != nil {
		return nil, err
	}
	n.Add(colon)
	otherwise, err := p.assignmentExpression()
	if err != nil {
		return nil, err
	}
	n.Add(otherwise)
	return n, nil
}

func (p *Parser) assignmentOperator() (*Node, *ParseError) {
	switch p.tok.Kind {
	case TokenEqual, TokenStarEqual, TokenSlashEqual, TokenPlusEqual, TokenMinusEqual:
		return p.advance(), nil
	}
	if p.tok.Kind.IsAssignmentOp() {
		return nil, p.errorf("use of reserved operator %s", p.tok.Kind)
	}
	return nil, p.errorf("expected assignment operator, found %s", describe(p.tok))
}

// assignmentExpression parses a conditional expression and, when an
// assignment operator follows, uses it as the target. Assignment is
// right-associative: a = b = c is [a = [b = c]].
func (p *Parser) assignmentExpression() (*Node, *ParseError) {
	target, err := p.conditionalExpression()
	if err != nil {
		return nil, err
	}
	if !p.tok.Kind.IsAssignmentOp() {
		return target, nil
	}

	op, err := p.assignmentOperator()
	if err != nil {
		return nil, err
	}
	value, err := p.assignmentExpression()
	if err != nil {
		return nil, err
	}
	return NewNonTerminal(target, op, value), nil
}

// expression parses a comma-separated list of assignment expressions.
// A single expression is returned unwrapped.
func (p *Parser) expression() (*Node, *ParseError) {
	first, err := p.assignmentExpression()
	if err != nil {
		return nil, err
	}
	if !p.check(TokenComma) {
		return first, nil
	}
	n := NewNonTerminal(first)
	for p.check(TokenComma) {
		n.Add(p.advance())
		e, err := p.assignmentExpression()
		if err != nil {
			return nil, err
		}
		n.Add(e)
	}
	return n, nil
}

func (p *Parser) constantExpression() (*Node, *ParseError) {
	return p.conditionalExpression()
}

func (p *Parser) initializer() (*Node, *ParseError) {
	return p.assignmentExpression()
}

// ---------------------------------------------------------------------------
// Statements
// ---------------------------------------------------------------------------

func (p *Parser) expressionStatement() (*Node, *ParseError) {
	n := NewNonTerminal()
	if !p.check(TokenSemicolon) {
		e, err := p.expression()
		if err != nil {
			return nil, err
		}
		n.Append(e)
	}
	return p.terminate(n)
}

func (p *Parser) declarationStatement() (*Node, *ParseError) {
	return p.declaration()
}

// condition parses either an expression or "type name = initializer".
func (p *Parser) condition() (*Node, *ParseError) {
	if !p.tok.Kind.IsTypeQualifier() && !p.isTypeSpecifier(p.tok) {
		return p.expression()
	}
	n := NewNonTerminal()
	t, err := p.fullySpecifiedType()
	if err != nil {
		return nil, err
	}
	n.Append(t)
	name, err := p.match(TokenIdent)
	if err != nil {
		return nil, err
	}
	n.Add(name)
	eq, err := p.match(TokenEqual)
	if err != nil {
		return nil, err
	}
	n.Add(eq)
	init, err := p.initializer()
	if err != nil {
		return nil, err
	}
	n.Add(init)
	return n, nil
}

func (p *Parser) selectionStatement() (*Node, *ParseError) {
	kw, err := p.match(TokenIf)
	if err != nil {
		return nil, err
	}
	n := NewNonTerminal(kw)
	if err := p.parenthesized(n, p.expression); err != nil {
		return nil, err
	}
	then, err := p.statement()
	if err != nil {
		return nil, err
	}
	n.Add(then)
	if p.check(TokenElse) {
		n.Add(p.advance())
		otherwise, err := p.statement()
		if err != nil {
			return nil, err
		}
		n.Add(otherwise)
	}
	return n, nil
}

// parenthesized parses "( inner )" into n.
func (p *Parser) parenthesized(n *Node, inner func() (*Node, *ParseError)) *ParseError {
	open, err := p.match(TokenLeftParen)
	if err != nil {
		return err
	}
	n.Add(open)
	e, err := inner()
	if err != nil {
		return err
	}
	n.Add(e)
	closing, err := p.match(TokenRightParen)
	if err != nil {
		return err
	}
	n.Add(closing)
	return nil
}

func (p *Parser) iterationStatement() (*Node, *ParseError) {
	n := NewNonTerminal()
	switch p.tok.Kind {
	case TokenWhile:
		n.Add(p.advance())
		if err := p.parenthesized(n, p.condition); err != nil {
			return nil, err
		}
		body, err := p.statement()
		if err != nil {
			return nil, err
		}
		n.Add(body)

	case TokenDo:
		n.Add(p.advance())
		body, err := p.statement()
		if err != nil {
			return nil, err
		}
		n.Add(body)
		kw, err := p.match(TokenWhile)
		if err != nil {
			return nil, err
		}
		n.Add(kw)
		if err := p.parenthesized(n, p.expression); err != nil {
			return nil, err
		}
		return p.terminate(n)

	case TokenFor:
		n.Add(p.advance())
		open, err := p.match(TokenLeftParen)
		if err != nil {
			return nil, err
		}
		n.Add(open)

		var init *Node
		if p.startsDeclaration() {
			init, err = p.declarationStatement()
		} else {
			init, err = p.expressionStatement()
		}
		if err != nil {
			return nil, err
		}
		n.Add(init)

		if !p.check(TokenSemicolon) {
			cond, err := p.condition()
			if err != nil {
				return nil, err
			}
			n.Add(cond)
		}
		semi, err := p.match(TokenSemicolon)
		if err != nil {
			return nil, err
		}
		n.Add(semi)

		if !p.check(TokenRightParen) {
			step, err := p.expression()
			if err != nil {
				return nil, err
			}
			n.Add(step)
		}
		closing, err := p.match(TokenRightParen)
		if err != nil {
			return nil, err
		}
		n.Add(closing)

		body, err := p.statement()
		if err != nil {
			return nil, err
		}
		n.Add(body)

	default:
		return nil, p.errorf("expected iteration statement, found %s", describe(p.tok))
	}
	return n, nil
}

func (p *Parser) jumpStatement() (*Node, *ParseError) {
	switch p.tok.Kind {
	case TokenContinue, TokenBreak, TokenDiscard:
		return p.terminate(NewNonTerminal(p.advance()))
	case TokenReturn:
		n := NewNonTerminal(p.advance())
		if !p.check(TokenSemicolon) {
			value, err := p.expression()
			if err != nil {
				return nil, err
			}
			n.Add(value)
		}
		return p.terminate(n)
	}
	return nil, p.errorf("expected jump statement, found %s", describe(p.tok))
}

func (p *Parser) simpleStatement() (*Node, *ParseError) {
	switch p.tok.Kind {
	case TokenIf:
		return p.selectionStatement()
	case TokenWhile, TokenDo, TokenFor:
		return p.iterationStatement()
	case TokenContinue, TokenBreak, TokenReturn, TokenDiscard:
		return p.jumpStatement()
	}
	if !p.startsDeclaration() {
		return p.expressionStatement()
	}

	// A type name may also start an expression, as in vec4(1.0) or
	// float(x) * y. Try the declaration first and fall back to an
	// expression only when a constructor call is what failed.
	cp := p.save()
	decl, err := p.declarationStatement()
	if err == nil {
		return decl, nil
	}
	p.restore(cp)
	if !p.isConstructor(p.tok) || p.lex.Peek().Kind != TokenLeftParen {
		return nil, err
	}
	return p.expressionStatement()
}

// compoundStatement parses "{ statements }". The statement list is always
// present, empty when the block is.
func (p *Parser) compoundStatement() (*Node, *ParseError) {
	open, err := p.match(TokenLeftBrace)
	if err != nil {
		return nil, err
	}
	list, err := p.statementList()
	if err != nil {
		return nil, err
	}
	closing, err := p.match(TokenRightBrace)
	if err != nil {
		return nil, err
	}
	return NewNonTerminal(open, list, closing), nil
}

func (p *Parser) statementList() (*Node, *ParseError) {
	n := NewNonTerminal()
	for !p.check(TokenRightBrace) {
		if p.check(TokenEOF) {
			return nil, p.errorf("expected }, found %s", describe(p.tok))
		}
		stmt, err := p.statement()
		if err != nil {
			return nil, err
		}
		n.Add(stmt)
	}
	return n, nil
}

func (p *Parser) statement() (*Node, *ParseError) {
	if p.check(TokenLeftBrace) {
		return p.compoundStatement()
	}
	return p.simpleStatement()
}
