package gles

import (
	"fmt"
	"strings"
)

// ParseError is the first grammar violation found in a translation unit.
// Parsing stops at the first one; there is no recovery.
type ParseError struct {
	Message string
	Token   Token
	Source  string // Original source code (for context display)
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	return fmt.Sprintf("line %d, column %d: %s", e.Token.Line, e.Token.Column, e.Message)
}

// Pos returns the position of the offending token.
func (e *ParseError) Pos() Position {
	return e.Token.Pos()
}

// FormatWithContext returns the error message with source context.
// Shows the problematic line with a caret pointing to the error location.
func (e *ParseError) FormatWithContext() string {
	if e.Source == "" || e.Token.Line == 0 {
		return e.Error()
	}

	lines := strings.Split(e.Source, "\n")
	lineNum := e.Token.Line
	if lineNum < 1 || lineNum > len(lines) {
		return e.Error()
	}

	line := strings.TrimRight(lines[lineNum-1], "\r")
	col := e.Token.Column
	if col < 1 {
		col = 1
	}
	if col > len(line)+1 {
		col = len(line) + 1
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "error: %s\n", e.Message)
	fmt.Fprintf(&sb, "  --> line %d:%d\n", lineNum, col)
	sb.WriteString("   |\n")
	fmt.Fprintf(&sb, "%3d| %s\n", lineNum, line)
	fmt.Fprintf(&sb, "   | %s^\n", strings.Repeat(" ", col-1))

	return sb.String()
}

func describe(tok Token) string {
	switch tok.Kind {
	case TokenEOF:
		return "end of input"
	case TokenIdent:
		return fmt.Sprintf("identifier %q", tok.Text)
	case TokenIntLiteral, TokenFloatLiteral, TokenBoolLiteral:
		return fmt.Sprintf("literal %s", tok)
	case TokenString:
		return fmt.Sprintf("string %s", tok)
	default:
		return fmt.Sprintf("%q", tok.Text)
	}
}
