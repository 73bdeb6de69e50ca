package preprocessor

import (
	"fmt"

	"github.com/cappuccino/objj-compiler/internal/token"
)

// Error represents a fatal preprocessing error.
// Any Error aborts the compilation unit; macro problems are never
// downgraded to warnings.
type Error struct {
	Pos     token.Position // Position where the error occurred
	Message string         // Human-readable error message
}

// Error returns a formatted error message with position information.
func (e *Error) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s: %s", e.Pos, e.Message)
	}
	return e.Message
}

// errorf creates an Error at the given position with a formatted message.
func errorf(pos token.Position, format string, args ...any) *Error {
	return &Error{
		Pos:     pos,
		Message: fmt.Sprintf(format, args...),
	}
}
