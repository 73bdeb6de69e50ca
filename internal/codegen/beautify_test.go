package codegen

import (
	"strings"
	"testing"

	"github.com/coregx/coregex"

	"github.com/cappuccino/objj-compiler/internal/ast"
	"github.com/cappuccino/objj-compiler/internal/lexer"
	"github.com/cappuccino/objj-compiler/internal/parser"
	"github.com/cappuccino/objj-compiler/internal/semantic"
)

// parseTracked parses src with comment tracking enabled.
func parseTracked(t *testing.T, src string) *beautifyInput {
	t.Helper()
	p := parser.New(lexer.NewFromString(src), parser.Config{
		Dialect:       parser.Ecma5,
		Superset:      true,
		TrackComments: true,
	})
	prog, err := p.ParseProgram()
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	info, err := semantic.Annotate(prog, semantic.Options{Superset: true})
	if err != nil {
		t.Fatalf("semantic error: %v", err)
	}
	return &beautifyInput{prog: prog, info: info}
}

type beautifyInput struct {
	prog *ast.Program
	info *semantic.Info
}

func (in *beautifyInput) generate(t *testing.T, opts Options) string {
	t.Helper()
	opts.Beautify = true
	code, err := Generate(in.prog, in.info, opts)
	if err != nil {
		t.Fatalf("generate error: %v", err)
	}
	return code
}

func TestBeautifyClass(t *testing.T) {
	src := `@protocol Coding
@end
@implementation Person : CPObject <Coding>
{
    CPString _name @accessors(property=name);
    @outlet CPButton _btn;
}
- (CPString)name
{
    return _name;
}
@end
`
	if got := beautify(t, src); got != src {
		t.Errorf("output:\n%s\nwant:\n%s", got, src)
	}
}

func TestBeautifyIdempotent(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{
			name: "class with accessors",
			src: `@implementation A : CPObject
{
    IBOutlet CPString x @accessors(readonly, property=p);
    int y @accessors(getter=val, setter=setVal:);
}
@end`,
		},
		{
			name: "category with variadic method",
			src: `@implementation A (Logging)
- (void)log:(id)first, ...
{
}
@end`,
		},
		{
			name: "protocol with optional section",
			src: `@protocol Q
@end
@protocol P <Q>
- (void)a;
@optional
+ (id)b;
@end`,
		},
		{
			name: "directives",
			src: `@import "a.j"
@import <Foundation/Foundation.j>
@class A, B;
@global G
@typedef T;
@protocol Fwd;
var x = 1;`,
		},
		{
			name: "sends and literals",
			src: `x = [[a b] c:1 d:2, 3];
y = @[1, 2];
z = @{"k": v};
s = @selector(run:with:);
var q = @"str";`,
		},
		{
			name: "action return types",
			src: `@implementation A : CPObject
- (@action)press:(id)sender
{
}
- (IBAction)tap:(id)sender
{
}
@end`,
		},
		{
			name: "references",
			src: `var v;
x = @ref(v);
y = @deref(x) + 1;
@deref(x) = 2;`,
		},
		{
			name: "plain control flow",
			src: `function f(a, b) {
    if (a)
        return b;
    for (var i = 0; i < 3; i++)
        b += i;
    return b;
}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			once := beautify(t, tt.src)
			twice := beautify(t, once)
			if twice != once {
				t.Errorf("second pass changed the output:\n%s\nfirst pass:\n%s", twice, once)
			}
		})
	}
}

// normalizeSpace collapses all whitespace runs, so layout differences
// drop out of the comparison while token text must survive.
func normalizeSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func TestBeautifyPlainRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{
			name: "declarations and branches",
			src:  "var a = 1, b = [2, 3];\nif (a > 1) { b.push(a); } else b.pop();",
		},
		{
			name: "loops",
			src:  "while (a < 10) a++;\ndo { a--; } while (a > 0);\nfor (var k in o) o[k] = 0;",
		},
		{
			name: "try and switch",
			src:  "try { f(); } catch(e) { g(e); } finally { h(); }\nswitch (x) { case 1: a(); break; default: b(); }",
		},
		{
			name: "functions",
			src:  "function g(n) { return n * n; }\nvar h = function() { return 1; };",
		},
		{
			name: "expressions",
			src:  "x = a ? (b + c) * 2 : d[e].f;\nx = typeof a;\ndelete o.k;\nvoid 0;",
		},
		{
			name: "object accessors",
			src:  "var o = {a: 1, get b() { return 2; }, set b(v) { w = v; }};",
		},
		{
			name: "constructors and regex",
			src:  "var r = /a+b/g, d = new Date, s = new RegExp(\"x\");",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := normalizeSpace(beautify(t, tt.src))
			want := normalizeSpace(tt.src)
			if got != want {
				t.Errorf("tokens changed:\n%s\nwant:\n%s", got, want)
			}
		})
	}
}

func TestBeautifySendLayout(t *testing.T) {
	tests := []string{
		"x = [a b];\n",
		"x = [a setX:1 y:2];\n",
		"x = [a run:f, 1, 2];\n",
		"x = [[a b] c];\n",
		"x = [a go:[b c]];\n",
	}

	for _, src := range tests {
		t.Run(strings.TrimSuffix(src, "\n"), func(t *testing.T) {
			if got := beautify(t, src); got != src {
				t.Errorf("output = %q, want %q", got, src)
			}
		})
	}

	t.Run("super send", func(t *testing.T) {
		src := `@implementation A : CPObject
- (id)init
{
    return [super init];
}
@end
`
		if got := beautify(t, src); got != src {
			t.Errorf("output:\n%s\nwant:\n%s", got, src)
		}
	})
}

func TestBeautifyComments(t *testing.T) {
	t.Run("trailing comment stays on its line", func(t *testing.T) {
		in := parseTracked(t, "var a = 1; // note\nvar b = 2;")
		got := in.generate(t, Options{CommentLineBreaks: true})
		want := "var a = 1; // note\nvar b = 2;\n"
		if got != want {
			t.Errorf("output = %q, want %q", got, want)
		}
	})

	t.Run("trailing comment moves without line breaks", func(t *testing.T) {
		in := parseTracked(t, "var a = 1; // note\nvar b = 2;")
		got := in.generate(t, Options{})
		want := "var a = 1;\n// note\nvar b = 2;\n"
		if got != want {
			t.Errorf("output = %q, want %q", got, want)
		}
	})

	t.Run("banner comment leads the file", func(t *testing.T) {
		in := parseTracked(t, "// Banner\nvar a = 1;")
		got := in.generate(t, Options{CommentLineBreaks: true})
		want := "// Banner\nvar a = 1;\n"
		if got != want {
			t.Errorf("output = %q, want %q", got, want)
		}
	})

	t.Run("block comment inside a function", func(t *testing.T) {
		src := `function f() {
    /* setup */
    var a = 1;
    return a;
}
`
		in := parseTracked(t, src)
		if got := in.generate(t, Options{CommentLineBreaks: true}); got != src {
			t.Errorf("output:\n%s\nwant:\n%s", got, src)
		}
	})

	t.Run("comment after the last statement", func(t *testing.T) {
		in := parseTracked(t, "var a = 1;\n// done")
		got := in.generate(t, Options{CommentLineBreaks: true})
		want := "var a = 1;\n// done\n"
		if got != want {
			t.Errorf("output = %q, want %q", got, want)
		}
	})
}

func TestBeautifyFormatRules(t *testing.T) {
	cfg := &FormatConfig{
		IndentString: " ",
		IndentWidth:  2,
		Rules: map[string]FormatRule{
			"if": {Before: "\n", After: "\n"},
		},
	}
	src := "var a;\nif (x)\n  y();\nvar b;"
	got := generate(t, src, Options{Beautify: true, Format: cfg})
	want := "var a;\n\nif (x)\n  y();\nvar b;\n"
	if got != want {
		t.Errorf("output = %q, want %q", got, want)
	}
}

func TestBeautifyProtocolLayout(t *testing.T) {
	src := `@protocol Base
@end
@protocol Coding <Base>
- (void)encodeWith:(id)coder;
@optional
+ (id)decoder;
@end
`
	if got := beautify(t, src); got != src {
		t.Errorf("output:\n%s\nwant:\n%s", got, src)
	}
}

func TestLoweredMethodNames(t *testing.T) {
	re, err := coregex.Compile(`\$Person__[A-Za-z0-9_]+`)
	if err != nil {
		t.Fatalf("compile pattern: %v", err)
	}
	src := `@implementation Person : CPObject
- (void)setName:(id)n age:(int)a
{
}
@end`

	if got := lower(t, src); !re.MatchString(got) {
		t.Errorf("no mangled implementation function in:\n%s", got)
	}
	if got := beautify(t, src); re.MatchString(got) {
		t.Errorf("mangled name leaked into beautified output:\n%s", got)
	}
}
