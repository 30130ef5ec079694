package vsasm

import (
	"fmt"

	"github.com/gogpu/vsc/gles"
)

// ErrorKind categorizes code generation errors.
type ErrorKind uint8

const (
	// ErrUnresolvedSymbol indicates a name found in neither the function's
	// locals nor the program's globals.
	ErrUnresolvedSymbol ErrorKind = iota

	// ErrRegisterExhausted indicates a register class ran out of registers.
	ErrRegisterExhausted

	// ErrInvalidInlineAsm indicates a malformed asm("...") template.
	ErrInvalidInlineAsm

	// ErrUnsupported indicates a construct the target cannot express.
	ErrUnsupported
)

// String returns a human-readable error kind name.
func (k ErrorKind) String() string {
	switch k {
	case ErrUnresolvedSymbol:
		return "UnresolvedSymbol"
	case ErrRegisterExhausted:
		return "RegisterExhausted"
	case ErrInvalidInlineAsm:
		return "InvalidInlineAsm"
	case ErrUnsupported:
		return "Unsupported"
	default:
		return "Unknown"
	}
}

// Error represents a code generation error.
type Error struct {
	// Kind categorizes the error.
	Kind ErrorKind

	// Message provides details about the error.
	Message string

	// Pos optionally identifies the source location.
	Pos *gles.Position
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Pos != nil {
		return fmt.Sprintf("vsasm %s at %s: %s", e.Kind, e.Pos, e.Message)
	}
	return fmt.Sprintf("vsasm %s: %s", e.Kind, e.Message)
}

// NewError creates a new error without position information.
func NewError(kind ErrorKind, message string) *Error {
	return &Error{
		Kind:    kind,
		Message: message,
	}
}

// errorAt creates an error tagged with the source position pos.
func errorAt(kind ErrorKind, pos gles.Position, format string, args ...interface{}) *Error {
	return &Error{
		Kind:    kind,
		Message: fmt.Sprintf(format, args...),
		Pos:     &pos,
	}
}

// IsUnresolvedSymbol returns true if the error is ErrUnresolvedSymbol.
func (e *Error) IsUnresolvedSymbol() bool {
	return e.Kind == ErrUnresolvedSymbol
}

// IsRegisterExhausted returns true if the error is ErrRegisterExhausted.
func (e *Error) IsRegisterExhausted() bool {
	return e.Kind == ErrRegisterExhausted
}

// IsInvalidInlineAsm returns true if the error is ErrInvalidInlineAsm.
func (e *Error) IsInvalidInlineAsm() bool {
	return e.Kind == ErrInvalidInlineAsm
}

// IsUnsupported returns true if the error is ErrUnsupported.
func (e *Error) IsUnsupported() bool {
	return e.Kind == ErrUnsupported
}
