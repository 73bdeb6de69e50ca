// Package objj compiles Objective-J source to JavaScript.
//
// Objective-J layers Smalltalk-style message sends, class and
// protocol declarations and a handful of @-literals on top of
// JavaScript. This compiler translates one source unit at a time,
// featuring:
//   - Full superset lowering: classes, categories, protocols,
//     message sends with nil-safe dispatch, accessor synthesis,
//     @selector/@protocol/@ref/@deref and collection literals
//   - A C-style macro preprocessor with function-like macros,
//     variadic arguments and recursion detection
//   - A formatting mode that re-emits canonical Objective-J
//   - Source Map v3 output for debugging the generated code
//
// # Quick Start
//
// For a one-off translation:
//
//	res, err := objj.Compile(source, nil)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Print(res.Code)
//
// With configuration:
//
//	res, err := objj.Compile(source, &objj.Config{
//	    Macros:            []string{"DEBUG", "MAX(a,b)=((a) > (b) ? (a) : (b))"},
//	    GenerateSourceMap: true,
//	})
//
// # Prefix Files
//
// Shared macro definitions can be compiled once and reused:
//
//	prefix, err := objj.ExtractMacros(prefixSource, nil)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for _, unit := range units {
//	    res, err := objj.Compile(unit, &objj.Config{PrefixMacros: prefix})
//	    // ...
//	}
//
// # Formatting
//
// With Config.EmitSupersetDialect the compiler acts as a formatter,
// re-emitting the Objective-J itself in canonical layout instead of
// lowering it. The layout is adjustable through a [FormatConfig],
// loadable from a versioned JSON format description with [ParseFormat].
//
// # Error Handling
//
// Errors are returned as specific types for detailed handling:
//   - [PreprocessError]: macro definition or expansion failures
//   - [SyntaxError]: malformed source
//   - [SemanticError]: analysis failures such as a missing superclass
//   - [InternalError]: compiler bugs
//
// Non-fatal issues are reported as [Warning] values on the Result and
// never abort a unit.
//
// # Thread Safety
//
// Compilation is purely sequential within a unit and shares no state
// between calls. [MacroSet] and [FormatConfig] values are read-only
// after construction and safe to reuse across concurrent
// compilations.
package objj
