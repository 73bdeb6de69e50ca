package objj

import (
	"fmt"
)

// PreprocessError represents a fatal macro-processing error: a
// conflicting redefinition, an arity mismatch, recursive expansion or
// a malformed directive. Macro problems always abort the unit; they
// are never downgraded to warnings.
type PreprocessError struct {
	Line    int    // 1-based line number
	Column  int    // 1-based column number
	Message string // Error description
}

func (e *PreprocessError) Error() string {
	return fmt.Sprintf("preprocess error at %d:%d: %s", e.Line, e.Column, e.Message)
}

// SyntaxError represents a syntax error in Objective-J source code.
type SyntaxError struct {
	Line    int    // 1-based line number
	Column  int    // 1-based column number
	Message string // Error description
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("syntax error at %d:%d: %s", e.Line, e.Column, e.Message)
}

// SemanticError represents an error found during analysis of a
// syntactically valid program, such as a missing superclass or a
// duplicate method.
type SemanticError struct {
	Line    int    // 1-based line number
	Column  int    // 1-based column number
	Message string // Error description
}

func (e *SemanticError) Error() string {
	return fmt.Sprintf("semantic error at %d:%d: %s", e.Line, e.Column, e.Message)
}

// InternalError represents a failure inside the compiler itself.
// Encountering one is a bug.
type InternalError struct {
	Message string // Error description
}

func (e *InternalError) Error() string {
	return fmt.Sprintf("internal error: %s", e.Message)
}

// ErrorPosition reports the source position of a compilation error.
// Returns (line, column, true) for the positioned error kinds, or
// (0, 0, false) otherwise.
func ErrorPosition(err error) (line, column int, ok bool) {
	switch e := err.(type) {
	case *PreprocessError:
		return e.Line, e.Column, true
	case *SyntaxError:
		return e.Line, e.Column, true
	case *SemanticError:
		return e.Line, e.Column, true
	}
	return 0, 0, false
}
