package objj

import (
	"os"

	"github.com/cappuccino/objj-compiler/internal/codegen"
	"github.com/cappuccino/objj-compiler/internal/lexer"
	"github.com/cappuccino/objj-compiler/internal/parser"
	"github.com/cappuccino/objj-compiler/internal/preprocessor"
	"github.com/cappuccino/objj-compiler/internal/semantic"
	"github.com/cappuccino/objj-compiler/internal/sourcemap"
	"github.com/cappuccino/objj-compiler/internal/token"
)

// Version is the compiler version string.
const Version = "0.1.0"

// Compile translates one Objective-J source unit to JavaScript.
//
// The source is preprocessed, parsed, analyzed and generated in one
// sequential pass; on any error no partial code is produced. Warnings
// never abort the unit and ride the successful Result.
//
// Example:
//
//	res, err := objj.Compile(`@implementation App : CPObject
//	@end`, nil)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Print(res.Code)
func Compile(source string, config *Config) (*Result, error) {
	var cfg Config
	if config != nil {
		cfg = *config
	}
	cfg.applyDefaults()

	lex := lexer.New([]byte(source), cfg.SourceName)

	var scanner parser.Scanner = lex
	var expander *preprocessor.Expander
	if cfg.preprocess() {
		table, err := macroTable(&cfg)
		if err != nil {
			return nil, err
		}
		expander = preprocessor.New(lex, table)
		scanner = expander
	}

	prog, parseErr := parser.New(scanner, parser.Config{
		Filename:         cfg.SourceName,
		Dialect:          cfg.dialect(),
		StrictSemicolons: cfg.StrictSemicolons,
		Superset:         cfg.superset(),
		TrackComments:    cfg.TrackComments,
	}).ParseProgram()

	// A preprocessing failure truncates the token stream, so it
	// outranks whatever parse error the truncation caused.
	if expander != nil {
		if ppErr := expander.Err(); ppErr != nil {
			return nil, preprocessError(ppErr)
		}
	}
	if parseErr != nil {
		return nil, syntaxError(parseErr)
	}

	info, semErr := semantic.Annotate(prog, semantic.Options{
		Superset:    cfg.superset(),
		RootClasses: cfg.RootClasses,
	})
	if semErr != nil {
		return nil, semanticError(semErr)
	}

	var sm *sourcemap.Builder
	if cfg.GenerateSourceMap {
		file, src := cfg.mapNames()
		sm = sourcemap.NewBuilder(file, src)
		sm.SetContent(source)
	}

	code, genErr := codegen.Generate(prog, info, codegen.Options{
		Beautify:          cfg.EmitSupersetDialect,
		CommentLineBreaks: cfg.TrackCommentLineBreaks,
		Format:            cfg.Format,
		SourceMap:         sm,
	})
	if genErr != nil {
		return nil, &InternalError{Message: genErr.Error()}
	}

	res := &Result{
		Code:         code,
		Warnings:     convertWarnings(info.Warnings),
		Dependencies: info.Dependencies,
	}
	if cfg.SourceMapOnly {
		res.Code = ""
	}
	if sm != nil {
		data, err := sm.Build().JSON()
		if err != nil {
			return nil, &InternalError{Message: err.Error()}
		}
		res.SourceMap = string(data)
	}
	if expander != nil {
		res.Macros = &MacroSet{table: expander.Table()}
	}
	return res, nil
}

// MustCompile is like Compile but panics if the unit cannot be
// compiled. It simplifies initialization of global variables.
func MustCompile(source string, config *Config) *Result {
	res, err := Compile(source, config)
	if err != nil {
		panic(err)
	}
	return res
}

// CompileFile reads path and compiles its contents. Unless the
// configuration already names the unit, the path becomes its
// SourceName, so diagnostics and the source map point at the file.
func CompileFile(path string, config *Config) (*Result, error) {
	source, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg Config
	if config != nil {
		cfg = *config
	}
	if cfg.SourceName == "" {
		cfg.SourceName = path
	}
	return Compile(string(source), &cfg)
}

// ExtractMacros preprocesses source purely for its #define
// directives and returns the resulting macro table. Use it to compile
// a prefix file once and seed every subsequent unit through
// Config.PrefixMacros.
func ExtractMacros(source string, config *Config) (*MacroSet, error) {
	var cfg Config
	if config != nil {
		cfg = *config
	}
	cfg.applyDefaults()

	table, err := macroTable(&cfg)
	if err != nil {
		return nil, err
	}
	expander := preprocessor.New(lexer.New([]byte(source), cfg.SourceName), table)
	for expander.Scan().Type != token.EOF {
	}
	if ppErr := expander.Err(); ppErr != nil {
		return nil, preprocessError(ppErr)
	}
	return &MacroSet{table: expander.Table()}, nil
}

// macroTable builds the unit's initial macro table from the prefix
// set and the definition specs.
func macroTable(cfg *Config) (*preprocessor.Table, error) {
	var table *preprocessor.Table
	if cfg.PrefixMacros != nil && cfg.PrefixMacros.table != nil {
		table = cfg.PrefixMacros.table.Clone()
	} else {
		table = preprocessor.NewTable()
	}
	for _, spec := range cfg.Macros {
		m, err := preprocessor.ParseSpec(spec)
		if err != nil {
			return nil, preprocessError(err)
		}
		if err := table.Define(m); err != nil {
			return nil, preprocessError(err)
		}
	}
	return table, nil
}

// preprocessError converts an internal preprocessor error to the
// public type.
func preprocessError(err *preprocessor.Error) error {
	return &PreprocessError{
		Line:    err.Pos.Line,
		Column:  err.Pos.Column,
		Message: err.Message,
	}
}

// syntaxError converts a parser error to the public type, keeping the
// first error of a list.
func syntaxError(err error) error {
	if pe, ok := err.(*parser.ParseError); ok {
		return &SyntaxError{
			Line:    pe.Pos.Line,
			Column:  pe.Pos.Column,
			Message: pe.Message,
		}
	}
	if el, ok := err.(parser.ErrorList); ok && len(el) > 0 {
		return &SyntaxError{
			Line:    el[0].Pos.Line,
			Column:  el[0].Pos.Column,
			Message: el[0].Message,
		}
	}
	return &SyntaxError{Message: err.Error()}
}

// semanticError converts an analysis error to the public type,
// keeping the first error of a list.
func semanticError(err error) error {
	if se, ok := err.(*semantic.Error); ok {
		return &SemanticError{
			Line:    se.Pos.Line,
			Column:  se.Pos.Column,
			Message: se.Message,
		}
	}
	if el, ok := err.(semantic.ErrorList); ok && len(el) > 0 {
		return &SemanticError{
			Line:    el[0].Pos.Line,
			Column:  el[0].Pos.Column,
			Message: el[0].Message,
		}
	}
	return &SemanticError{Message: err.Error()}
}

func convertWarnings(list semantic.WarningList) []Warning {
	if len(list) == 0 {
		return nil
	}
	warnings := make([]Warning, len(list))
	for i, w := range list {
		warnings[i] = Warning{
			Line:    w.Pos.Line,
			Column:  w.Pos.Column,
			Message: w.Message,
		}
	}
	return warnings
}
