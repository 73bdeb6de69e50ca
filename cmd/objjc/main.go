// objjc - Objective-J compiler
//
// Compiles Objective-J source files to plain JavaScript, or reformats
// them in place of lowering when asked to beautify.
// Uses manual argument parsing so flags can carry attached values,
// like '-DDEBUG=1' (allowed by the traditional compiler drivers).
package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/eaburns/pretty"
	"github.com/fsnotify/fsnotify"

	objj "github.com/cappuccino/objj-compiler"
	"github.com/cappuccino/objj-compiler/internal/lexer"
	"github.com/cappuccino/objj-compiler/internal/parser"
	"github.com/cappuccino/objj-compiler/internal/preprocessor"
	"github.com/cappuccino/objj-compiler/internal/token"
)

// version is set by GoReleaser at build time via -ldflags.
// For development builds, it will be "dev".
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

const (
	shortUsage = "usage: objjc [options] [file.j ...]"
	longUsage  = `Output options:
  -o file              write generated code to file ('-' for stdout)
  -b, --beautify       reformat the Objective-J source instead of lowering it
  --format file        read formatting rules from a JSON format description
  -m, --map            emit a source map next to the generated code
  --map-only           emit only the source map

Preprocessor options:
  -D name[=def]        predefine a macro (multiple allowed)
  -p, --prefix file    read macro definitions from file first (multiple allowed)
  --no-preprocessor    disable the macro preprocessor

Language options:
  --ecma3              restrict plain JavaScript to ECMAScript 3
  --strict-semicolons  require every statement to end in a real ';'
  --no-superset        accept plain JavaScript only

Debugging options:
  --ast                print the parse tree to stdout and exit
  -w, --watch          recompile the input files whenever they change

Other:
  -h, --help           show this help message
  -version             show objjc version and exit
`
)

//nolint:gocyclo,funlen // CLI argument parsing is inherently complex
func main() {
	// Parse command line arguments manually rather than using the
	// "flag" package, so we can support flags with no space between
	// flag and argument, like '-DDEBUG=1'.
	var macroSpecs []string
	var prefixFiles []string
	outPath := ""
	formatPath := ""
	sourceMap := false
	mapOnly := false
	beautify := false
	ecma3 := false
	strictSemis := false
	noSuperset := false
	noPreprocessor := false
	dumpTree := false
	watch := false

	var i int
	for i = 1; i < len(os.Args); i++ {
		// Stop on explicit end of args or first arg not prefixed with "-"
		arg := os.Args[i]
		if arg == "--" {
			i++
			break
		}
		if arg == "-" || !strings.HasPrefix(arg, "-") {
			break
		}

		switch arg {
		case "-o":
			if i+1 >= len(os.Args) {
				errorExitf("flag needs an argument: -o")
			}
			i++
			outPath = os.Args[i]
		case "-D":
			if i+1 >= len(os.Args) {
				errorExitf("flag needs an argument: -D")
			}
			i++
			macroSpecs = append(macroSpecs, os.Args[i])
		case "-p", "--prefix":
			if i+1 >= len(os.Args) {
				errorExitf("flag needs an argument: %s", arg)
			}
			i++
			prefixFiles = append(prefixFiles, os.Args[i])
		case "--format":
			if i+1 >= len(os.Args) {
				errorExitf("flag needs an argument: --format")
			}
			i++
			formatPath = os.Args[i]
		case "-m", "--map":
			sourceMap = true
		case "--map-only":
			mapOnly = true
		case "-b", "--beautify":
			beautify = true
		case "--ecma3":
			ecma3 = true
		case "--strict-semicolons":
			strictSemis = true
		case "--no-superset":
			noSuperset = true
		case "--no-preprocessor":
			noPreprocessor = true
		case "--ast":
			dumpTree = true
		case "-w", "--watch":
			watch = true
		case "-h", "--help":
			fmt.Printf("objjc %s - Objective-J compiler\n\n%s\n\n%s", version, shortUsage, longUsage)
			os.Exit(0)
		case "-version", "--version":
			fmt.Printf("objjc version %s\n", version)
			fmt.Printf("  commit: %s\n", commit)
			fmt.Printf("  built:  %s\n", date)
			fmt.Printf("  api:    %s\n", objj.Version)
			os.Exit(0)
		default:
			// Handle flags with no space: -DDEBUG=1, -oout.js, -pPrefix.j
			switch {
			case strings.HasPrefix(arg, "-D"):
				macroSpecs = append(macroSpecs, arg[2:])
			case strings.HasPrefix(arg, "-o"):
				outPath = arg[2:]
			case strings.HasPrefix(arg, "-p"):
				prefixFiles = append(prefixFiles, arg[2:])
			default:
				errorExitf("flag provided but not defined: %s", arg)
			}
		}
	}

	// Remaining args are the source files
	files := os.Args[i:]

	if outPath != "" && len(files) > 1 {
		errorExitf("-o cannot be combined with multiple input files")
	}
	if watch && len(files) == 0 {
		errorExitf("--watch requires at least one input file")
	}

	config := &objj.Config{
		Macros:              macroSpecs,
		StrictSemicolons:    strictSemis,
		GenerateSourceMap:   sourceMap || mapOnly,
		SourceMapOnly:       mapOnly,
		EmitSupersetDialect: beautify,
	}
	if ecma3 {
		config.DialectLevel = objj.ECMA3
	}
	if noSuperset {
		f := false
		config.EnableSuperset = &f
	}
	if noPreprocessor {
		f := false
		config.EnablePreprocessor = &f
	}
	if beautify {
		// Formatted output preserves the unit's comments.
		config.TrackComments = true
		config.TrackCommentLineBreaks = true
	}

	if formatPath != "" {
		data, err := os.ReadFile(formatPath)
		if err != nil {
			errorExitf("cannot read format description %s: %v", formatPath, err)
		}
		format, err := objj.ParseFormat(data)
		if err != nil {
			errorExitf("%s: %v", formatPath, err)
		}
		config.Format = format
	}

	if dumpTree {
		dumpTrees(files, ecma3, strictSemis, noSuperset, noPreprocessor, macroSpecs, prefixFiles)
		return
	}

	// Prefix files are processed once, in order, and the accumulated
	// macro table seeds every unit.
	for _, f := range prefixFiles {
		content, err := os.ReadFile(f)
		if err != nil {
			errorExitf("cannot read prefix file %s: %v", f, err)
		}
		pcfg := *config
		pcfg.SourceName = f
		macros, err := objj.ExtractMacros(string(content), &pcfg)
		if err != nil {
			errorExitf("%s: %v", f, err)
		}
		config.PrefixMacros = macros
	}

	if len(files) == 0 {
		source, err := io.ReadAll(os.Stdin)
		if err != nil {
			errorExitf("cannot read stdin: %v", err)
		}
		res, err := objj.Compile(string(source), config)
		if err != nil {
			errorExit(err)
		}
		printWarnings("stdin", res.Warnings)
		if outPath == "" || outPath == "-" {
			if mapOnly {
				fmt.Print(res.SourceMap)
			} else {
				fmt.Print(res.Code)
			}
			return
		}
		if err := writeOutput(outPath, res, mapOnly); err != nil {
			errorExit(err)
		}
		return
	}

	ok := true
	for _, f := range files {
		if !compileFile(f, config, outPath) {
			ok = false
		}
	}
	if watch {
		watchLoop(files, config, outPath)
	}
	if !ok {
		os.Exit(1)
	}
}

// compileFile compiles one unit and places its output. A failure is
// reported rather than fatal, so the remaining units still compile.
func compileFile(path string, config *objj.Config, outPath string) bool {
	res, err := objj.CompileFile(path, config)
	if err != nil {
		reportError(path, err)
		return false
	}
	printWarnings(path, res.Warnings)

	out := outPath
	if out == "" {
		out = outputName(path)
	}
	if out == "-" {
		if config.SourceMapOnly {
			fmt.Print(res.SourceMap)
		} else {
			fmt.Print(res.Code)
		}
		return true
	}
	if err := writeOutput(out, res, config.SourceMapOnly); err != nil {
		reportError(path, err)
		return false
	}
	return true
}

// outputName maps Foo.j to Foo.js; any other extension keeps its name
// with .js appended.
func outputName(path string) string {
	if strings.HasSuffix(path, ".j") {
		return strings.TrimSuffix(path, ".j") + ".js"
	}
	return path + ".js"
}

// writeOutput writes the generated code to out and the source map, if
// one was produced, to out.map. Code written alongside a map gets the
// sourceMappingURL trailer browsers look for.
func writeOutput(out string, res *objj.Result, mapOnly bool) error {
	if res.SourceMap != "" {
		if err := os.WriteFile(out+".map", []byte(res.SourceMap), 0o644); err != nil {
			return err
		}
	}
	if mapOnly {
		return nil
	}
	code := res.Code
	if res.SourceMap != "" {
		code += "//# sourceMappingURL=" + filepath.Base(out) + ".map\n"
	}
	return os.WriteFile(out, []byte(code), 0o644)
}

// watchLoop recompiles a tracked file whenever it changes. Editors
// commonly replace files on save instead of writing them in place, so
// the parent directories are watched and events are matched back to
// the tracked set.
func watchLoop(files []string, config *objj.Config, outPath string) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		errorExit(err)
	}
	defer w.Close()

	tracked := make(map[string]string, len(files)) // absolute path -> argument spelling
	dirs := make(map[string]bool)
	for _, f := range files {
		abs, err := filepath.Abs(f)
		if err != nil {
			errorExit(err)
		}
		tracked[abs] = f
		dirs[filepath.Dir(abs)] = true
	}
	for dir := range dirs {
		if err := w.Add(dir); err != nil {
			errorExit(err)
		}
	}

	fmt.Fprintf(os.Stderr, "objjc: watching %d file(s)\n", len(tracked))

	// An editor save fires several events back to back; collapse them.
	last := make(map[string]time.Time)
	for {
		select {
		case ev, ok := <-w.Events:
			if !ok {
				return
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			abs, err := filepath.Abs(ev.Name)
			if err != nil {
				continue
			}
			name, found := tracked[abs]
			if !found {
				continue
			}
			now := time.Now()
			if now.Sub(last[abs]) < 100*time.Millisecond {
				continue
			}
			last[abs] = now
			if compileFile(name, config, outPath) {
				fmt.Fprintf(os.Stderr, "objjc: recompiled %s\n", name)
			}
		case err, ok := <-w.Errors:
			if !ok {
				return
			}
			fmt.Fprintf(os.Stderr, "objjc: watch: %v\n", err)
		}
	}
}

// dumpTrees prints the parse tree of every unit and exits. The dump
// runs the same preprocessing and parsing as a compile, but stops
// before analysis, so a unit with semantic problems still prints.
func dumpTrees(files []string, ecma3, strictSemis, noSuperset, noPreprocessor bool, macroSpecs, prefixFiles []string) {
	pretty.Indent = "    "

	table := preprocessor.NewTable()
	for _, spec := range macroSpecs {
		m, perr := preprocessor.ParseSpec(spec)
		if perr != nil {
			errorExitf("invalid macro definition %q: %v", spec, perr)
		}
		if perr := table.Define(m); perr != nil {
			errorExitf("invalid macro definition %q: %v", spec, perr)
		}
	}
	for _, f := range prefixFiles {
		content, err := os.ReadFile(f)
		if err != nil {
			errorExitf("cannot read prefix file %s: %v", f, err)
		}
		ex := preprocessor.New(lexer.New(content, f), table)
		for ex.Scan().Type != token.EOF {
		}
		if perr := ex.Err(); perr != nil {
			errorExitf("%s: %v", f, perr)
		}
	}

	dialect := parser.Ecma5
	if ecma3 {
		dialect = parser.Ecma3
	}
	pcfg := parser.Config{
		Dialect:          dialect,
		StrictSemicolons: strictSemis,
		Superset:         !noSuperset,
	}

	ok := true
	if len(files) == 0 {
		source, err := io.ReadAll(os.Stdin)
		if err != nil {
			errorExitf("cannot read stdin: %v", err)
		}
		ok = dumpAST("stdin", source, table, pcfg, noPreprocessor)
	}
	for _, f := range files {
		content, err := os.ReadFile(f)
		if err != nil {
			reportError(f, err)
			ok = false
			continue
		}
		// Each unit gets its own table so its #defines stay local.
		if !dumpAST(f, content, table.Clone(), pcfg, noPreprocessor) {
			ok = false
		}
	}
	if !ok {
		os.Exit(1)
	}
	os.Exit(0)
}

// dumpAST parses one unit and prints its tree to stdout.
func dumpAST(name string, source []byte, table *preprocessor.Table, pcfg parser.Config, noPreprocessor bool) bool {
	lex := lexer.New(source, name)
	var scanner parser.Scanner = lex
	var ex *preprocessor.Expander
	if !noPreprocessor {
		ex = preprocessor.New(lex, table)
		scanner = ex
	}
	pcfg.Filename = name
	prog, err := parser.New(scanner, pcfg).ParseProgram()
	if ex != nil && ex.Err() != nil {
		reportError(name, ex.Err())
		return false
	}
	if err != nil {
		reportError(name, err)
		return false
	}
	fmt.Println(name)
	pretty.Print(prog)
	fmt.Println("")
	return true
}

// printWarnings reports a unit's warnings on stderr.
func printWarnings(name string, warnings []objj.Warning) {
	for _, w := range warnings {
		fmt.Fprintf(os.Stderr, "objjc: %s: %s\n", name, w)
	}
}

// reportError prints a per-unit failure. Compiler errors carry line
// and column but not the file name, so the name is prefixed here.
func reportError(name string, err error) {
	fmt.Fprintf(os.Stderr, "objjc: %s: %v\n", name, err)
}

// errorExitf prints formatted error message and exits with code 1
func errorExitf(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "objjc: "+format+"\n", args...)
	os.Exit(1)
}

// errorExit prints error and exits with code 1
func errorExit(err error) {
	fmt.Fprintf(os.Stderr, "objjc: %v\n", err)
	os.Exit(1)
}
