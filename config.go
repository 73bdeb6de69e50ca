package objj

import (
	"strings"

	"github.com/cappuccino/objj-compiler/internal/codegen"
	"github.com/cappuccino/objj-compiler/internal/parser"
)

// FormatConfig controls the layout of generated code. It aliases the
// generator's own type so format descriptions can be built in code or
// loaded with ParseFormat without reaching into internal packages.
type FormatConfig = codegen.FormatConfig

// FormatRule adjusts the text emitted before and after one construct
// in a FormatConfig.
type FormatRule = codegen.FormatRule

// ParseFormat decodes a JSON format description and validates its
// version against the supported range.
func ParseFormat(data []byte) (*FormatConfig, error) {
	return codegen.ParseFormat(data)
}

// DialectLevel selects the ECMAScript rules the parser enforces for
// the JavaScript part of the language.
type DialectLevel int

const (
	// ECMA5 allows reserved words as property names, trailing commas
	// in object literals, and getter/setter properties. The default.
	ECMA5 DialectLevel = iota

	// ECMA3 rejects all of the above.
	ECMA3
)

// Config holds configuration options for compilation.
// The zero value compiles the full Objective-J superset under
// ECMAScript 5 rules with the preprocessor enabled.
type Config struct {
	// DialectLevel is the ECMAScript dialect (default: ECMA5).
	DialectLevel DialectLevel

	// StrictSemicolons rejects statements terminated only by
	// automatic semicolon insertion.
	StrictSemicolons bool

	// EnableSuperset accepts Objective-J syntax on top of JavaScript.
	// When nil (default: true), the superset is enabled. Disabling it
	// turns the compiler into a plain JavaScript checker/formatter.
	EnableSuperset *bool

	// EnablePreprocessor runs the macro preprocessor over the token
	// stream. When nil (default: true), the preprocessor is enabled.
	EnablePreprocessor *bool

	// Macros are definitions applied before the source is read,
	// written "NAME", "NAME=body" or "NAME(a,b)=body".
	// A bare name defines the body as 1.
	Macros []string

	// PrefixMacros seeds the unit's macro table with definitions
	// extracted from a prefix file (see ExtractMacros). The set
	// itself is not modified.
	PrefixMacros *MacroSet

	// TrackComments collects comments during parsing so formatted
	// output can re-insert them. Only meaningful with
	// EmitSupersetDialect.
	TrackComments bool

	// TrackCommentLineBreaks keeps a trailing comment attached to the
	// line it followed. Without it every comment starts its own line.
	TrackCommentLineBreaks bool

	// GenerateSourceMap produces a Source Map v3 document alongside
	// the generated code.
	GenerateSourceMap bool

	// SourceMapOnly produces only the source map; Result.Code is
	// left empty. Implies GenerateSourceMap.
	SourceMapOnly bool

	// Format controls the layout of generated code.
	// nil means the default four-space layout.
	Format *FormatConfig

	// EmitSupersetDialect re-emits the Objective-J source in
	// canonical form instead of lowering it to plain JavaScript.
	EmitSupersetDialect bool

	// SourceName is the file name used in diagnostics and in the
	// source map (default: "input.j" in the map, no name in
	// diagnostics).
	SourceName string

	// RootClasses are class names assumed to exist outside the
	// compilation unit. nil means CPObject, NSObject and Object.
	RootClasses []string
}

// applyDefaults normalizes dependent options.
func (c *Config) applyDefaults() {
	if c.SourceMapOnly {
		c.GenerateSourceMap = true
	}
	if c.Format == nil {
		c.Format = codegen.DefaultFormat()
	}
}

// superset reports whether Objective-J syntax is enabled.
func (c *Config) superset() bool {
	if c.EnableSuperset != nil {
		return *c.EnableSuperset
	}
	return true
}

// preprocess reports whether the macro preprocessor is enabled.
func (c *Config) preprocess() bool {
	if c.EnablePreprocessor != nil {
		return *c.EnablePreprocessor
	}
	return true
}

// dialect maps the public dialect level onto the parser's.
func (c *Config) dialect() parser.Dialect {
	if c.DialectLevel == ECMA3 {
		return parser.Ecma3
	}
	return parser.Ecma5
}

// mapNames returns the source and generated-file names recorded in
// the source map.
func (c *Config) mapNames() (file, source string) {
	source = c.SourceName
	if source == "" {
		source = "input.j"
	}
	return strings.TrimSuffix(source, ".j") + ".js", source
}
