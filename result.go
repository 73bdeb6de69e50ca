package objj

import (
	"fmt"

	"github.com/cappuccino/objj-compiler/internal/preprocessor"
)

// Result holds the output of one successfully compiled unit.
// It is immutable once returned.
type Result struct {
	// Code is the generated JavaScript, or the canonical Objective-J
	// when compiling with EmitSupersetDialect. Empty under
	// SourceMapOnly.
	Code string

	// SourceMap is the Source Map v3 JSON document, or "" when no
	// map was requested.
	SourceMap string

	// Warnings are the non-fatal issues found while compiling, in
	// source order.
	Warnings []Warning

	// Dependencies lists the @import paths of the unit, in source
	// order.
	Dependencies []string

	// Macros is the unit's final macro table, including definitions
	// picked up from #define directives. Pass it as PrefixMacros to
	// reuse a prefix file across units. nil when the preprocessor
	// was disabled.
	Macros *MacroSet
}

// Warning describes a non-fatal issue found during compilation.
type Warning struct {
	Line    int    // 1-based line number
	Column  int    // 1-based column number
	Message string // Warning description
}

// String returns the warning as a formatted string.
func (w Warning) String() string {
	return fmt.Sprintf("warning at %d:%d: %s", w.Line, w.Column, w.Message)
}

// MacroSet is a compiled macro table. Compile never modifies a set it
// is given (each unit extends a copy), so one set is safe to reuse
// across any number of concurrent compilations.
type MacroSet struct {
	table *preprocessor.Table
}

// Len returns the number of definitions in the set.
func (s *MacroSet) Len() int {
	if s == nil || s.table == nil {
		return 0
	}
	return s.table.Len()
}

// Names returns the defined macro names in sorted order.
func (s *MacroSet) Names() []string {
	if s == nil || s.table == nil {
		return nil
	}
	return s.table.Names()
}

// Defined reports whether name is defined in the set.
func (s *MacroSet) Defined(name string) bool {
	if s == nil || s.table == nil {
		return false
	}
	return s.table.Lookup(name) != nil
}
