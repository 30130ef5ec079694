package gles

import (
	"strconv"
	"strings"
)

// Lexer tokenizes shader source one token at a time.
//
// A Lexer holds no slices or maps, so copying the struct is a complete
// snapshot of its position; the parser relies on that for backtracking.
type Lexer struct {
	source string
	pos    int
	line   int
	column int

	peeked  Token
	hasPeek bool
}

// NewLexer creates a new lexer for the given source.
func NewLexer(source string) *Lexer {
	return &Lexer{
		source: source,
		line:   1,
		column: 1,
	}
}

// Next consumes and returns the next token.
func (l *Lexer) Next() Token {
	if l.hasPeek {
		l.hasPeek = false
		return l.peeked
	}
	return l.scan()
}

// Peek returns the next token without consuming it.
func (l *Lexer) Peek() Token {
	if !l.hasPeek {
		l.peeked = l.scan()
		l.hasPeek = true
	}
	return l.peeked
}

// Tokenize returns all remaining tokens, ending with TokenEOF.
func (l *Lexer) Tokenize() []Token {
	// Estimate ~1 token per 4 characters of source.
	estTokens := len(l.source) / 4
	if estTokens < 16 {
		estTokens = 16
	}
	tokens := make([]Token, 0, estTokens)
	for {
		tok := l.Next()
		tokens = append(tokens, tok)
		if tok.Kind == TokenEOF {
			return tokens
		}
	}
}

func (l *Lexer) scan() Token {
	l.skipTrivia()

	if l.isAtEnd() {
		return Token{Kind: TokenEOF, Line: l.line, Column: l.column}
	}

	c := l.source[l.pos]
	switch {
	case isLetter(c):
		return l.identifier()
	case isDigit(c), c == '.' && isDigit(l.peekNext()):
		return l.number()
	case c == '"' || c == '\'':
		return l.str(c)
	}

	tok := Token{Line: l.line, Column: l.column}
	start := l.pos
	l.advance()

	if c == '<' {
		switch l.peek() {
		case '<':
			l.advance()
			tok.Kind = TokenLessLess
		case '=':
			l.advance()
			tok.Kind = TokenLessEqual
		default:
			tok.Kind = TokenLess
		}
		tok.Text = l.source[start:l.pos]
		return tok
	}

	kind, ok := punctuation[c]
	if !ok {
		kind = TokenChar
	}
	tok.Kind = kind
	tok.Text = l.source[start:l.pos]
	return tok
}

// skipTrivia skips whitespace and line comments until neither is next.
func (l *Lexer) skipTrivia() {
	for {
		for !l.isAtEnd() && isSpace(l.source[l.pos]) {
			l.advance()
		}
		if l.peek() == '/' && l.peekNext() == '/' {
			for !l.isAtEnd() && l.source[l.pos] != '\n' {
				l.advance()
			}
			continue
		}
		return
	}
}

func (l *Lexer) identifier() Token {
	tok := Token{Kind: TokenIdent, Line: l.line, Column: l.column}
	start := l.pos
	for !l.isAtEnd() && (isLetter(l.source[l.pos]) || isDigit(l.source[l.pos])) {
		l.advance()
	}
	tok.Text = l.source[start:l.pos]

	if kind, ok := keywords[tok.Text]; ok {
		tok.Kind = kind
	} else if tok.Text == "true" || tok.Text == "false" {
		tok.Kind = TokenBoolLiteral
		if tok.Text == "true" {
			tok.Int = 1
		}
	}
	return tok
}

// number scans an integer or float literal. The literal becomes a float
// as soon as a dot is seen; a second dot ends it, so "1.2.3" is 1.2 then .3.
func (l *Lexer) number() Token {
	tok := Token{Kind: TokenIntLiteral, Line: l.line, Column: l.column}
	start := l.pos
	for isDigit(l.peek()) {
		l.advance()
	}

	if l.peek() == '.' {
		tok.Kind = TokenFloatLiteral
		l.advance()
		for isDigit(l.peek()) {
			l.advance()
		}
		// Exponent only when digits follow it.
		if e := l.peek(); e == 'e' || e == 'E' {
			next := l.peekNext()
			if isDigit(next) || ((next == '+' || next == '-') && l.pos+2 < len(l.source) && isDigit(l.source[l.pos+2])) {
				l.advance()
				if l.peek() == '+' || l.peek() == '-' {
					l.advance()
				}
				for isDigit(l.peek()) {
					l.advance()
				}
			}
		}
	}

	tok.Text = l.source[start:l.pos]
	if tok.Kind == TokenFloatLiteral {
		// ParseFloat saturates to ±Inf on overflow, like strtod.
		tok.Float, _ = strconv.ParseFloat(tok.Text, 64)
	} else {
		// ParseInt returns the max int64 on overflow.
		tok.Int, _ = strconv.ParseInt(tok.Text, 10, 64)
	}
	return tok
}

// str scans a quoted string. Both quote styles produce TokenString.
func (l *Lexer) str(quote byte) Token {
	tok := Token{Kind: TokenString, Line: l.line, Column: l.column}
	l.advance() // opening quote

	var sb strings.Builder
	for !l.isAtEnd() && l.source[l.pos] != quote {
		c := l.source[l.pos]
		if c == '\\' && l.pos+1 < len(l.source) {
			l.advance()
			sb.WriteByte(unescape(l.source[l.pos]))
			l.advance()
			continue
		}
		sb.WriteByte(c)
		l.advance()
	}
	if !l.isAtEnd() {
		l.advance() // closing quote
	}

	tok.Text = sb.String()
	return tok
}

func unescape(c byte) byte {
	switch c {
	case 't':
		return '\t'
	case 'n':
		return '\n'
	case 'r':
		return '\r'
	case 'f':
		return '\f'
	}
	// \" \' \\ and unknown escapes keep the character itself.
	return c
}

func (l *Lexer) advance() {
	if l.source[l.pos] == '\n' {
		l.line++
		l.column = 1
	} else {
		l.column++
	}
	l.pos++
}

func (l *Lexer) peek() byte {
	if l.isAtEnd() {
		return 0
	}
	return l.source[l.pos]
}

func (l *Lexer) peekNext() byte {
	if l.pos+1 >= len(l.source) {
		return 0
	}
	return l.source[l.pos+1]
}

func (l *Lexer) isAtEnd() bool {
	return l.pos >= len(l.source)
}

var punctuation = map[byte]TokenKind{
	'(': TokenLeftParen,
	')': TokenRightParen,
	'[': TokenLeftBracket,
	']': TokenRightBracket,
	'{': TokenLeftBrace,
	'}': TokenRightBrace,
	'.': TokenDot,
	',': TokenComma,
	':': TokenColon,
	';': TokenSemicolon,
	'=': TokenEqual,
	'+': TokenPlus,
	'-': TokenMinus,
	'*': TokenStar,
	'/': TokenSlash,
	'%': TokenPercent,
	'>': TokenGreater,
	'!': TokenBang,
	'~': TokenTilde,
	'&': TokenAmpersand,
	'|': TokenPipe,
	'^': TokenCaret,
	'?': TokenQuestion,
	'@': TokenAt,
}

var keywords = map[string]TokenKind{
	"attribute": TokenAttribute,
	"const":     TokenConst,
	"uniform":   TokenUniform,
	"varying":   TokenVarying,
	"invariant": TokenInvariant,
	"inline":    TokenInline,
	"highp":     TokenHighPrecision,
	"mediump":   TokenMediumPrecision,
	"lowp":      TokenLowPrecision,
	"precision": TokenPrecision,
	"in":        TokenIn,
	"out":       TokenOut,
	"inout":     TokenInout,

	// Types
	"void":        TokenVoid,
	"float":       TokenFloat,
	"int":         TokenInt,
	"bool":        TokenBool,
	"vec2":        TokenVec2,
	"vec3":        TokenVec3,
	"vec4":        TokenVec4,
	"bvec2":       TokenBVec2,
	"bvec3":       TokenBVec3,
	"bvec4":       TokenBVec4,
	"ivec2":       TokenIVec2,
	"ivec3":       TokenIVec3,
	"ivec4":       TokenIVec4,
	"mat2":        TokenMat2,
	"mat3":        TokenMat3,
	"mat4":        TokenMat4,
	"sampler2D":   TokenSampler2D,
	"samplerCube": TokenSamplerCube,
	"struct":      TokenStruct,

	"if":       TokenIf,
	"else":     TokenElse,
	"while":    TokenWhile,
	"do":       TokenDo,
	"for":      TokenFor,
	"continue": TokenContinue,
	"break":    TokenBreak,
	"return":   TokenReturn,
	"discard":  TokenDiscard,
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\f'
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isLetter(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}
