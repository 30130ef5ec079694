package gles

import "strconv"

// TokenKind represents the type of token.
type TokenKind uint8

const (
	TokenEOF TokenKind = iota

	// Literals
	TokenIdent
	TokenIntLiteral
	TokenFloatLiteral
	TokenBoolLiteral
	TokenString

	// TokenChar is any byte the lexer has no other kind for.
	TokenChar

	// Punctuation
	TokenLeftParen    // (
	TokenRightParen   // )
	TokenLeftBracket  // [
	TokenRightBracket // ]
	TokenLeftBrace    // {
	TokenRightBrace   // }
	TokenDot          // .
	TokenComma        // ,
	TokenColon        // :
	TokenSemicolon    // ;
	TokenEqual        // =
	TokenPlus         // +
	TokenMinus        // -
	TokenStar         // *
	TokenSlash        // /
	TokenPercent      // %
	TokenLess         // <
	TokenGreater      // >
	TokenBang         // !
	TokenTilde        // ~
	TokenAmpersand    // &
	TokenPipe         // |
	TokenCaret        // ^
	TokenQuestion     // ?
	TokenAt           // @

	// Two-character operators produced by the lexer
	TokenLessLess  // <<
	TokenLessEqual // <=

	// Operators the grammar knows but the lexer never synthesizes
	TokenGreaterGreater      // >>
	TokenGreaterEqual        // >=
	TokenEqualEqual          // ==
	TokenBangEqual           // !=
	TokenAmpAmp              // &&
	TokenPipePipe            // ||
	TokenCaretCaret          // ^^
	TokenPlusPlus            // ++
	TokenMinusMinus          // --
	TokenStarEqual           // *=
	TokenSlashEqual          // /=
	TokenPlusEqual           // +=
	TokenMinusEqual          // -=
	TokenPercentEqual        // %=
	TokenLessLessEqual       // <<=
	TokenGreaterGreaterEqual // >>=
	TokenAmpEqual            // &=
	TokenCaretEqual          // ^=
	TokenPipeEqual           // |=

	// Qualifiers
	TokenAttribute
	TokenConst
	TokenUniform
	TokenVarying
	TokenInvariant
	TokenInline
	TokenHighPrecision
	TokenMediumPrecision
	TokenLowPrecision
	TokenPrecision
	TokenIn
	TokenOut
	TokenInout

	// Type keywords
	TokenVoid
	TokenFloat
	TokenInt
	TokenBool
	TokenVec2
	TokenVec3
	TokenVec4
	TokenBVec2
	TokenBVec3
	TokenBVec4
	TokenIVec2
	TokenIVec3
	TokenIVec4
	TokenMat2
	TokenMat3
	TokenMat4
	TokenSampler2D
	TokenSamplerCube
	TokenStruct

	// Statement keywords
	TokenIf
	TokenElse
	TokenWhile
	TokenDo
	TokenFor
	TokenContinue
	TokenBreak
	TokenReturn
	TokenDiscard
)

var tokenNames = map[TokenKind]string{
	TokenEOF:          "EOF",
	TokenIdent:        "Ident",
	TokenIntLiteral:   "IntLiteral",
	TokenFloatLiteral: "FloatLiteral",
	TokenBoolLiteral:  "BoolLiteral",
	TokenString:       "String",
	TokenChar:         "Char",

	TokenLeftParen:    "(",
	TokenRightParen:   ")",
	TokenLeftBracket:  "[",
	TokenRightBracket: "]",
	TokenLeftBrace:    "{",
	TokenRightBrace:   "}",
	TokenDot:          ".",
	TokenComma:        ",",
	TokenColon:        ":",
	TokenSemicolon:    ";",
	TokenEqual:        "=",
	TokenPlus:         "+",
	TokenMinus:        "-",
	TokenStar:         "*",
	TokenSlash:        "/",
	TokenPercent:      "%",
	TokenLess:         "<",
	TokenGreater:      ">",
	TokenBang:         "!",
	TokenTilde:        "~",
	TokenAmpersand:    "&",
	TokenPipe:         "|",
	TokenCaret:        "^",
	TokenQuestion:     "?",
	TokenAt:           "@",

	TokenLessLess:            "<<",
	TokenLessEqual:           "<=",
	TokenGreaterGreater:      ">>",
	TokenGreaterEqual:        ">=",
	TokenEqualEqual:          "==",
	TokenBangEqual:           "!=",
	TokenAmpAmp:              "&&",
	TokenPipePipe:            "||",
	TokenCaretCaret:          "^^",
	TokenPlusPlus:            "++",
	TokenMinusMinus:          "--",
	TokenStarEqual:           "*=",
	TokenSlashEqual:          "/=",
	TokenPlusEqual:           "+=",
	TokenMinusEqual:          "-=",
	TokenPercentEqual:        "%=",
	TokenLessLessEqual:       "<<=",
	TokenGreaterGreaterEqual: ">>=",
	TokenAmpEqual:            "&=",
	TokenCaretEqual:          "^=",
	TokenPipeEqual:           "|=",
}

func init() {
	for text, kind := range keywords {
		tokenNames[kind] = text
	}
}

// String returns the string representation of the token kind.
func (k TokenKind) String() string {
	if name, ok := tokenNames[k]; ok {
		return name
	}
	return "Unknown"
}

// IsPrimitiveType reports whether k names a built-in type.
func (k TokenKind) IsPrimitiveType() bool {
	return k >= TokenVoid && k <= TokenSamplerCube
}

// IsTypeQualifier reports whether k is a storage or function qualifier.
func (k TokenKind) IsTypeQualifier() bool {
	switch k {
	case TokenConst, TokenAttribute, TokenVarying, TokenInvariant, TokenUniform, TokenInline:
		return true
	}
	return false
}

// IsPrecisionQualifier reports whether k is highp, mediump or lowp.
func (k TokenKind) IsPrecisionQualifier() bool {
	return k == TokenHighPrecision || k == TokenMediumPrecision || k == TokenLowPrecision
}

// IsParameterQualifier reports whether k is in, out or inout.
func (k TokenKind) IsParameterQualifier() bool {
	return k == TokenIn || k == TokenOut || k == TokenInout
}

// IsAssignmentOp reports whether k is = or one of the compound assignments.
func (k TokenKind) IsAssignmentOp() bool {
	switch k {
	case TokenEqual, TokenStarEqual, TokenSlashEqual, TokenPlusEqual, TokenMinusEqual,
		TokenPercentEqual, TokenLessLessEqual, TokenGreaterGreaterEqual,
		TokenAmpEqual, TokenCaretEqual, TokenPipeEqual:
		return true
	}
	return false
}

// Token represents a lexical token.
type Token struct {
	Kind TokenKind
	// Text is the identifier or keyword spelling, the punctuation,
	// or the unescaped payload of a string literal.
	Text   string
	Int    int64
	Float  float64
	Line   int
	Column int
}

// Pos returns the token's source position.
func (t Token) Pos() Position {
	return Position{Line: t.Line, Column: t.Column}
}

// String renders the token the way parse tree dumps print it.
func (t Token) String() string {
	switch t.Kind {
	case TokenEOF:
		return "EOF"
	case TokenFloatLiteral:
		return strconv.FormatFloat(t.Float, 'f', 6, 64)
	case TokenIntLiteral:
		return strconv.FormatInt(t.Int, 10)
	case TokenString:
		return strconv.Quote(t.Text)
	default:
		return t.Text
	}
}

// Position represents a position in source code.
type Position struct {
	Line   int
	Column int
}

// String formats the position as line:column.
func (p Position) String() string {
	return strconv.Itoa(p.Line) + ":" + strconv.Itoa(p.Column)
}
