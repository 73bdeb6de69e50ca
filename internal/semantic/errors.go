// Package semantic annotates parsed programs for code generation.
//
// The annotator performs:
//   - Class table construction: recording classes, categories,
//     protocols, instance variables and methods in declaration order
//   - Accessor synthesis: deriving getter and setter methods from
//     @accessors attributes
//   - Scope analysis: binding identifiers to locals, instance
//     variables, classes and globals
//   - Receiver analysis: marking class receivers and hoisting
//     receiver temporaries for nil-guarded dispatch
//
// Objective-J has unique semantics:
//   - A superclass must be declared earlier in the unit or be a
//     configured root class
//   - Bare identifiers inside instance methods may resolve to
//     instance variables
//   - Assignment to an undeclared identifier creates a global
//   - self and _cmd are implicit method parameters
package semantic

import (
	"fmt"
	"strings"

	"github.com/cappuccino/objj-compiler/internal/token"
)

// Error represents a semantic analysis error with source location.
type Error struct {
	Pos     token.Position
	Message string
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Pos, e.Message)
}

// Warning represents a semantic warning (non-fatal issue).
type Warning struct {
	Pos     token.Position
	Message string
}

// String returns the warning as a formatted string.
func (w *Warning) String() string {
	return fmt.Sprintf("%s: warning: %s", w.Pos, w.Message)
}

// ErrorList is a collection of semantic errors.
type ErrorList []*Error

// Add appends an error to the list.
func (el *ErrorList) Add(pos token.Position, format string, args ...any) {
	*el = append(*el, errorf(pos, format, args...))
}

// Err returns an error if the list is non-empty, nil otherwise.
func (el ErrorList) Err() error {
	if len(el) == 0 {
		return nil
	}
	return el
}

// Error implements the error interface for ErrorList.
func (el ErrorList) Error() string {
	switch len(el) {
	case 0:
		return "no errors"
	case 1:
		return el[0].Error()
	default:
		var sb strings.Builder
		sb.WriteString(el[0].Error())
		for _, e := range el[1:] {
			sb.WriteByte('\n')
			sb.WriteString(e.Error())
		}
		return sb.String()
	}
}

// WarningList is a collection of semantic warnings.
type WarningList []*Warning

// Add appends a warning to the list.
func (wl *WarningList) Add(pos token.Position, format string, args ...any) {
	*wl = append(*wl, warnf(pos, format, args...))
}

// errorf creates a new semantic error.
func errorf(pos token.Position, format string, args ...any) *Error {
	return &Error{
		Pos:     pos,
		Message: fmt.Sprintf(format, args...),
	}
}

// warnf creates a new semantic warning.
func warnf(pos token.Position, format string, args ...any) *Warning {
	return &Warning{
		Pos:     pos,
		Message: fmt.Sprintf(format, args...),
	}
}

// Common error messages as constants for consistency.
const (
	errSelfOutsideMethod  = "self used outside of a method"
	errSuperOutsideMethod = "super used outside of a method"
	errDuplicateClass     = "duplicate definition of class %q"
	errDuplicateProtocol  = "duplicate definition of protocol %q"
	errDuplicateMethod    = "duplicate definition of method %q in class %q"
	errDuplicateIvar      = "instance variable %q is declared twice in class %q"
	errDuplicateParam     = "duplicate parameter %q in method %q"
	errUnknownProtocol    = "cannot find protocol declaration for %q"
	errSuperclassMissing  = "cannot find implementation of class %q referenced as superclass of %q"
)

// Common warning messages.
const (
	warnUnusedVar         = "variable %q is declared but never used"
	warnShadowsIvar       = "local declaration of %q hides instance variable"
	warnImplicitGlobal    = "assignment to undeclared variable %q creates an implicit global"
	warnUnknownClass      = "unknown class %q in message send"
	warnDuplicateProtocol = "protocol %q is listed more than once"
	warnWithStmt          = "with statement defeats variable scope analysis"
	warnLeadingZero       = "number literal %q with a leading zero is parsed as decimal"
)
