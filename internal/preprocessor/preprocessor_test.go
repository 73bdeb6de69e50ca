package preprocessor

import (
	"strings"
	"testing"

	"github.com/cappuccino/objj-compiler/internal/lexer"
	"github.com/cappuccino/objj-compiler/internal/token"
)

// expand runs src through the Expander and returns the resulting token
// spellings separated by single spaces.
func expand(t *testing.T, src string, specs ...string) (string, *Error) {
	t.Helper()
	table := NewTable()
	for _, s := range specs {
		m, err := ParseSpec(s)
		if err != nil {
			t.Fatalf("ParseSpec(%q): %v", s, err)
		}
		if err := table.Define(m); err != nil {
			t.Fatalf("Define(%q): %v", s, err)
		}
	}
	e := New(lexer.NewFromString(src), table)
	var parts []string
	for {
		tok := e.Scan()
		if tok.Type == token.EOF {
			break
		}
		parts = append(parts, tok.Value)
	}
	return strings.Join(parts, " "), e.Err()
}

func TestExpandObjectLike(t *testing.T) {
	tests := []struct {
		name  string
		src   string
		specs []string
		want  string
	}{
		{"simple", "#define PI 3.14159\nvar x = PI;", nil, "var x = 3.14159 ;"},
		{"used twice", "#define N 10\nvar a = N + N;", nil, "var a = 10 + 10 ;"},
		{"empty body", "#define DEBUG\nDEBUG\nvar x = 1;", nil, "var x = 1 ;"},
		{"bare name spec", "var x = N;", []string{"N"}, "var x = 1 ;"},
		{"chained", "#define A B\n#define B 42\nA;", nil, "42 ;"},
		{"not in string", "#define X 1\nvar s = \"X\";", nil, "var s = \"X\" ;"},
		{"define after use", "X;\n#define X 1\nX;", nil, "X ; 1 ;"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := expand(t, tt.src, tt.specs...)
			if err != nil {
				t.Fatalf("expand(%q) error: %v", tt.src, err)
			}
			if got != tt.want {
				t.Errorf("expand(%q) = %q, want %q", tt.src, got, tt.want)
			}
		})
	}
}

func TestExpandFunctionLike(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{
			"single param",
			"#define SQUARE(x) ((x) * (x))\nSQUARE(5);",
			"( ( 5 ) * ( 5 ) ) ;",
		},
		{
			"two params",
			"#define MAX(a, b) (a > b ? a : b)\nvar m = MAX(1, 2);",
			"var m = ( 1 > 2 ? 1 : 2 ) ;",
		},
		{
			"argument with commas in brackets",
			"#define FIRST(a) a\nFIRST(f(1, 2));",
			"f ( 1 , 2 ) ;",
		},
		{
			"name without parens stays plain",
			"#define INC(x) (x + 1)\nvar f = INC;",
			"var f = INC ;",
		},
		{
			"nested invocation",
			"#define MAX(a, b) (a > b ? a : b)\nMAX(MAX(1, 2), 3);",
			"( ( 1 > 2 ? 1 : 2 ) > 3 ? ( 1 > 2 ? 1 : 2 ) : 3 ) ;",
		},
		{
			"array literal argument",
			"#define ID(x) x\nID(@[1, 2]);",
			"@[ 1 , 2 ] ;",
		},
		{
			"macro name as argument",
			"#define f(x) x\nf(f)(1);",
			"1 ;",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := expand(t, tt.src)
			if err != nil {
				t.Fatalf("expand(%q) error: %v", tt.src, err)
			}
			if got != tt.want {
				t.Errorf("expand(%q) = %q, want %q", tt.src, got, tt.want)
			}
		})
	}
}

func TestExpandVariadic(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{
			"all in va_args",
			"#define LOG(...) console.log(__VA_ARGS__)\nLOG(1, 2, 3);",
			"console . log ( 1 , 2 , 3 ) ;",
		},
		{
			"fixed plus rest",
			"#define TAG(fmt, ...) print(fmt, __VA_ARGS__)\nTAG(\"x\", 1, 2);",
			"print ( \"x\" , 1 , 2 ) ;",
		},
		{
			"empty rest",
			"#define LOG(...) f(__VA_ARGS__)\nLOG();",
			"f ( ) ;",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := expand(t, tt.src)
			if err != nil {
				t.Fatalf("expand(%q) error: %v", tt.src, err)
			}
			if got != tt.want {
				t.Errorf("expand(%q) = %q, want %q", tt.src, got, tt.want)
			}
		})
	}
}

func TestStringifyAndPaste(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{
			"stringify",
			"#define STR(x) #x\nSTR(hello);",
			"\"hello\" ;",
		},
		{
			"stringify expression",
			"#define STR(x) #x\nSTR(a + b);",
			"\"a + b\" ;",
		},
		{
			"paste names",
			"#define GLUE(a, b) a ## b\nGLUE(foo, bar);",
			"foobar ;",
		},
		{
			"paste builds number",
			"#define N(a, b) a ## b\nN(1, 2);",
			"12 ;",
		},
		{
			"paste with empty lhs",
			"#define GLUE(a, b) a ## b\nGLUE(, bar);",
			"bar ;",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := expand(t, tt.src)
			if err != nil {
				t.Fatalf("expand(%q) error: %v", tt.src, err)
			}
			if got != tt.want {
				t.Errorf("expand(%q) = %q, want %q", tt.src, got, tt.want)
			}
		})
	}
}

func TestExpandErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{
			"self recursion",
			"#define LOOP LOOP\nLOOP;",
			"macro \"LOOP\" expands recursively",
		},
		{
			"mutual recursion",
			"#define A B\n#define B A\nA;",
			"macro \"A\" expands recursively",
		},
		{
			"function-like self recursion",
			"#define F(x) F(x)\nF(1);",
			"macro \"F\" expands recursively",
		},
		{
			"too few arguments",
			"#define MAX(a, b) (a > b ? a : b)\nMAX(1);",
			"macro \"MAX\" expects 2 arguments, got 1",
		},
		{
			"too many arguments",
			"#define ID(x) x\nID(1, 2);",
			"macro \"ID\" expects 1 arguments, got 2",
		},
		{
			"unterminated invocation",
			"#define ID(x) x\nID(1",
			"unterminated invocation of macro \"ID\"",
		},
		{
			"conflicting redefinition",
			"#define X 1\n#define X 2\n",
			"macro \"X\" redefined with a different body",
		},
		{
			"unknown directive",
			"#undef X\n",
			"unknown preprocessor directive #undef",
		},
		{
			"stray hash",
			"var x = 1; # 2;",
			"stray \"#\" in program",
		},
		{
			"stray paste",
			"a ## b;",
			"stray \"##\" in program",
		},
		{
			"reserved macro name",
			"#define if 1\n",
			"macro name \"if\" is a reserved word",
		},
		{
			"missing macro name",
			"#define\nvar x;",
			"expected macro name after #define",
		},
		{
			"paste at end",
			"#define BAD(a) a ##\nBAD(1);",
			"'##' cannot appear at either end of macro \"BAD\"",
		},
		{
			"hash without parameter",
			"#define BAD(a) #b\nBAD(1);",
			"'#' is not followed by a parameter of macro \"BAD\"",
		},
		{
			"duplicate parameter",
			"#define BAD(a, a) a\n",
			"duplicate parameter \"a\" in macro \"BAD\"",
		},
		{
			"parameter after ellipsis",
			"#define BAD(..., a) a\n",
			"parameter after '...' in macro \"BAD\"",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := expand(t, tt.src)
			if err == nil {
				t.Fatalf("expand(%q) succeeded, want error %q", tt.src, tt.want)
			}
			if !strings.Contains(err.Message, tt.want) {
				t.Errorf("expand(%q) error = %q, want it to contain %q", tt.src, err.Message, tt.want)
			}
		})
	}
}

func TestExpandStopsAtFirstError(t *testing.T) {
	src := "#define LOOP LOOP\nLOOP; LOOP;"
	e := New(lexer.NewFromString(src), NewTable())
	n := 0
	for e.Scan().Type != token.EOF {
		n++
		if n > 100 {
			t.Fatal("expansion did not terminate")
		}
	}
	if e.Err() == nil {
		t.Fatal("expected recursion error, got none")
	}
	// Scan keeps returning EOF after the error.
	if got := e.Scan().Type; got != token.EOF {
		t.Errorf("Scan after error = %v, want EOF", got)
	}
}

func TestIdenticalRedefinition(t *testing.T) {
	src := "#define X 1 + 2\n#define X 1 + 2\nX;"
	got, err := expand(t, src)
	if err != nil {
		t.Fatalf("expand(%q) error: %v", src, err)
	}
	if want := "1 + 2 ;"; got != want {
		t.Errorf("expand(%q) = %q, want %q", src, got, want)
	}
}

func TestLineContinuation(t *testing.T) {
	src := "#define SUM(a, b) \\\n  (a + b)\nSUM(1, 2);"
	got, err := expand(t, src)
	if err != nil {
		t.Fatalf("expand(%q) error: %v", src, err)
	}
	if want := "( 1 + 2 ) ;"; got != want {
		t.Errorf("expand(%q) = %q, want %q", src, got, want)
	}
}

func TestExpansionPositions(t *testing.T) {
	src := "#define ONE 1\nvar x = ONE;"
	e := New(lexer.NewFromString(src), NewTable())
	var lit lexer.Token
	for {
		tok := e.Scan()
		if tok.Type == token.EOF {
			break
		}
		if tok.Type == token.NUMBER {
			lit = tok
		}
	}
	if e.Err() != nil {
		t.Fatalf("unexpected error: %v", e.Err())
	}
	// The expanded literal reports the invocation site, line 2.
	if lit.Pos.Line != 2 || lit.Pos.Column != 9 {
		t.Errorf("expanded token at %d:%d, want 2:9", lit.Pos.Line, lit.Pos.Column)
	}
}

func TestDirectiveOnlyAtLineStart(t *testing.T) {
	// '#' not at the start of a line is stray, not a directive.
	_, err := expand(t, "var a = 1; #define X 2\n")
	if err == nil {
		t.Fatal("expected stray '#' error")
	}
	if !strings.Contains(err.Message, "stray") {
		t.Errorf("error = %q, want stray token error", err.Message)
	}
}

func TestTableFromDirectives(t *testing.T) {
	src := "#define A 1\n#define B(x) x\nA;"
	e := New(lexer.NewFromString(src), NewTable())
	for e.Scan().Type != token.EOF {
	}
	if e.Err() != nil {
		t.Fatalf("unexpected error: %v", e.Err())
	}
	got := e.Table().Names()
	want := []string{"A", "B"}
	if len(got) != len(want) {
		t.Fatalf("Names() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Names()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
	if m := e.Table().Lookup("B"); m == nil || !m.FunctionLike() {
		t.Errorf("Lookup(B) = %+v, want function-like macro", m)
	}
}

func TestParseSpec(t *testing.T) {
	tests := []struct {
		spec     string
		name     string
		params   int
		variadic bool
	}{
		{"DEBUG", "DEBUG", -1, false},
		{"VERSION=2", "VERSION", -1, false},
		{"GREETING=\"hi\"", "GREETING", -1, false},
		{"SQUARE(x)=((x) * (x))", "SQUARE", 1, false},
		{"MAX(a,b)=(a > b ? a : b)", "MAX", 2, false},
		{"LOG(...)=console.log(__VA_ARGS__)", "LOG", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.spec, func(t *testing.T) {
			m, err := ParseSpec(tt.spec)
			if err != nil {
				t.Fatalf("ParseSpec(%q): %v", tt.spec, err)
			}
			if m.Name != tt.name {
				t.Errorf("Name = %q, want %q", m.Name, tt.name)
			}
			if tt.params < 0 {
				if m.FunctionLike() {
					t.Errorf("macro %q is function-like, want object-like", m.Name)
				}
			} else if len(m.Params) != tt.params {
				t.Errorf("Params = %v, want %d parameters", m.Params, tt.params)
			}
			if m.Variadic != tt.variadic {
				t.Errorf("Variadic = %v, want %v", m.Variadic, tt.variadic)
			}
		})
	}
}

func TestParseSpecErrors(t *testing.T) {
	tests := []string{
		"",
		"1BAD=2",
		"has space=1",
		"F(=x",
	}
	for _, spec := range tests {
		if _, err := ParseSpec(spec); err == nil {
			t.Errorf("ParseSpec(%q) succeeded, want error", spec)
		}
	}
}

func TestTableClone(t *testing.T) {
	base := NewTable()
	m, err := ParseSpec("A=1")
	if err != nil {
		t.Fatal(err)
	}
	if err := base.Define(m); err != nil {
		t.Fatal(err)
	}

	clone := base.Clone()
	m2, err := ParseSpec("B=2")
	if err != nil {
		t.Fatal(err)
	}
	if err := clone.Define(m2); err != nil {
		t.Fatal(err)
	}

	if base.Lookup("B") != nil {
		t.Error("defining in clone leaked into the base table")
	}
	if clone.Lookup("A") == nil {
		t.Error("clone lost definitions from the base table")
	}
}
