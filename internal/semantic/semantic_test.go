package semantic

import (
	"strings"
	"testing"

	"github.com/cappuccino/objj-compiler/internal/ast"
	"github.com/cappuccino/objj-compiler/internal/parser"
)

// parseCode parses src, failing the test on syntax errors.
func parseCode(t *testing.T, src string) *ast.Program {
	t.Helper()
	prog, err := parser.Parse(src)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	return prog
}

// annotateCode parses src and runs the annotator with superset
// analysis enabled.
func annotateCode(t *testing.T, src string) (*Info, *ast.Program, error) {
	t.Helper()
	prog := parseCode(t, src)
	info, err := Annotate(prog, Options{Superset: true})
	return info, prog, err
}

// expectNoError annotates src and fails the test on any semantic
// error.
func expectNoError(t *testing.T, src string) (*Info, *ast.Program) {
	t.Helper()
	info, prog, err := annotateCode(t, src)
	if err != nil {
		t.Fatalf("unexpected semantic error: %v", err)
	}
	return info, prog
}

// expectError annotates src and fails the test unless an error
// containing want is reported.
func expectError(t *testing.T, src, want string) {
	t.Helper()
	_, _, err := annotateCode(t, src)
	if err == nil {
		t.Fatalf("expected error containing %q, got none", want)
	}
	if !strings.Contains(err.Error(), want) {
		t.Fatalf("error = %q, want substring %q", err, want)
	}
}

// expectWarning annotates src and fails the test unless a warning
// containing want is present.
func expectWarning(t *testing.T, src, want string) *Info {
	t.Helper()
	info, _, err := annotateCode(t, src)
	if err != nil {
		t.Fatalf("unexpected semantic error: %v", err)
	}
	for _, w := range info.Warnings {
		if strings.Contains(w.Message, want) {
			return info
		}
	}
	t.Fatalf("no warning containing %q; warnings = %v", want, warningStrings(info))
	return nil
}

func warningStrings(info *Info) []string {
	out := make([]string, len(info.Warnings))
	for i, w := range info.Warnings {
		out[i] = w.String()
	}
	return out
}

// findSends collects the message sends of a program in traversal
// order (outer sends before their nested receivers).
func findSends(prog *ast.Program) []*ast.MsgSendExpr {
	var sends []*ast.MsgSendExpr
	ast.Walk(prog, func(n ast.Node) bool {
		if send, ok := n.(*ast.MsgSendExpr); ok {
			sends = append(sends, send)
		}
		return true
	})
	return sends
}

func TestClassTable(t *testing.T) {
	src := `@implementation Animal : CPObject
{
    CPString _name;
}
- (CPString)name { return _name; }
@end

@implementation Dog : Animal
- (void)bark {}
+ (id)dogWithName:(CPString)aName { return nil; }
@end`

	info, _ := expectNoError(t, src)

	if got := info.Classes.Len(); got != 2 {
		t.Fatalf("Classes.Len() = %d, want 2", got)
	}
	names := info.Classes.Names()
	if names[0] != "Animal" || names[1] != "Dog" {
		t.Errorf("Names() = %v, want [Animal Dog]", names)
	}

	animal, ok := info.Classes.Lookup("Animal")
	if !ok {
		t.Fatal("Animal not in class table")
	}
	if animal.SuperName != "CPObject" {
		t.Errorf("Animal.SuperName = %q, want CPObject", animal.SuperName)
	}
	if animal.Super != nil {
		t.Error("Animal.Super should be nil for a root superclass")
	}
	if len(animal.Ivars) != 1 || animal.Ivars[0].Name != "_name" {
		t.Errorf("Animal.Ivars = %v", animal.Ivars)
	}
	if _, ok := animal.LookupMethod("name", false); !ok {
		t.Error("Animal instance method name not recorded")
	}

	dog, _ := info.Classes.Lookup("Dog")
	if dog.SuperName != "Animal" {
		t.Errorf("Dog.SuperName = %q, want Animal", dog.SuperName)
	}
	if dog.Super != animal {
		t.Error("Dog.Super should link to the Animal record")
	}
	if _, ok := dog.LookupMethod("bark", false); !ok {
		t.Error("Dog instance method bark not recorded")
	}
	m, ok := dog.LookupMethod("dogWithName:", true)
	if !ok {
		t.Fatal("Dog class method dogWithName: not recorded")
	}
	if !m.ClassMethod {
		t.Error("dogWithName: should be a class method")
	}
	if len(m.Types) != 2 || m.Types[0] != "id" || m.Types[1] != "CPString" {
		t.Errorf("dogWithName: Types = %v, want [id CPString]", m.Types)
	}
}

func TestCategories(t *testing.T) {
	src := `@implementation Person : CPObject
{
    CPString _name;
}
@end

@implementation Person (Formatting)
- (CPString)display { return _name; }
@end`

	info, _ := expectNoError(t, src)

	if got := info.Classes.Len(); got != 1 {
		t.Fatalf("Classes.Len() = %d, want 1", got)
	}
	if len(info.Categories) != 1 {
		t.Fatalf("Categories = %d, want 1", len(info.Categories))
	}
	cat := info.Categories[0]
	if cat.Name != "Person" || cat.Category != "Formatting" {
		t.Errorf("category = %s (%s)", cat.Name, cat.Category)
	}
	if !cat.IsCategory() {
		t.Error("IsCategory() = false")
	}
	if _, ok := cat.LookupMethod("display", false); !ok {
		t.Error("category method display not recorded")
	}

	// Category methods see the ivars of the class declared in the
	// same unit.
	base, _ := info.Classes.Lookup("Person")
	if cat.Super != base {
		t.Error("category should link to its class record")
	}
	found := false
	for id, owner := range info.IvarRefs {
		if id.Name == "_name" {
			found = true
			if owner != base {
				t.Errorf("ivar ref owner = %v, want Person", owner.Name)
			}
		}
	}
	if !found {
		t.Error("_name in category method not annotated as ivar reference")
	}
}

func TestCategoryOnUnknownClass(t *testing.T) {
	// Extending a class from another unit is resolved at run time,
	// not a compile error.
	info, _ := expectNoError(t, "@implementation CPString (Extra)\n- (int)half { return 0; }\n@end")
	if len(info.Categories) != 1 {
		t.Fatalf("Categories = %d, want 1", len(info.Categories))
	}
	if info.Categories[0].Super != nil {
		t.Error("unknown base class should leave Super nil")
	}
}

func TestSuperclassResolution(t *testing.T) {
	tests := []struct {
		name    string
		src     string
		wantErr string
	}{
		{
			name: "root superclass",
			src:  "@implementation A : CPObject\n@end",
		},
		{
			name: "declared earlier",
			src:  "@implementation A : CPObject\n@end\n@implementation B : A\n@end",
		},
		{
			name:    "declared later",
			src:     "@implementation B : A\n@end\n@implementation A : CPObject\n@end",
			wantErr: `cannot find implementation of class "A" referenced as superclass of "B"`,
		},
		{
			name:    "never declared",
			src:     "@implementation B : Missing\n@end",
			wantErr: `cannot find implementation of class "Missing"`,
		},
		{
			name:    "forward declaration does not satisfy",
			src:     "@class A;\n@implementation B : A\n@end",
			wantErr: "cannot find implementation of class",
		},
		{
			name: "no superclass",
			src:  "@implementation Root\n@end",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.wantErr == "" {
				expectNoError(t, tt.src)
			} else {
				expectError(t, tt.src, tt.wantErr)
			}
		})
	}
}

func TestRootClassOptions(t *testing.T) {
	src := "@implementation A : WKObject\n@end"
	prog := parseCode(t, src)

	if _, err := Annotate(prog, Options{Superset: true}); err == nil {
		t.Error("WKObject should not resolve with default roots")
	}

	opts := Options{Superset: true, RootClasses: []string{"WKObject"}}
	if _, err := Annotate(prog, opts); err != nil {
		t.Errorf("custom root class: unexpected error %v", err)
	}

	// A custom list replaces the default roots entirely.
	prog2 := parseCode(t, "@implementation A : CPObject\n@end")
	if _, err := Annotate(prog2, opts); err == nil {
		t.Error("CPObject should not resolve when the root list omits it")
	}
}

func TestDuplicateDeclarations(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{
			name: "duplicate class",
			src:  "@implementation A : CPObject\n@end\n@implementation A : CPObject\n@end",
			want: `duplicate definition of class "A"`,
		},
		{
			name: "duplicate instance method",
			src:  "@implementation A : CPObject\n- (void)run {}\n- (void)run {}\n@end",
			want: `duplicate definition of method "run" in class "A"`,
		},
		{
			name: "duplicate keyword selector",
			src:  "@implementation A : CPObject\n- (void)set:(id)a {}\n- (id)set:(id)b {}\n@end",
			want: `duplicate definition of method "set:"`,
		},
		{
			name: "duplicate ivar",
			src:  "@implementation A : CPObject\n{\n    int x;\n    CPString x;\n}\n@end",
			want: `instance variable "x" is declared twice in class "A"`,
		},
		{
			name: "duplicate method parameter",
			src:  "@implementation A : CPObject\n- (void)a:(id)x b:(id)x {}\n@end",
			want: `duplicate parameter "x" in method "a:b:"`,
		},
		{
			name: "duplicate protocol",
			src:  "@protocol P\n@end\n@protocol P\n@end",
			want: `duplicate definition of protocol "P"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			expectError(t, tt.src, tt.want)
		})
	}
}

func TestSelectorNamespaces(t *testing.T) {
	// The same selector may exist as both an instance and a class
	// method, and in different classes.
	src := `@implementation A : CPObject
- (void)run {}
+ (void)run {}
@end

@implementation B : CPObject
- (void)run {}
@end`
	info, _ := expectNoError(t, src)

	a, _ := info.Classes.Lookup("A")
	if _, ok := a.LookupMethod("run", false); !ok {
		t.Error("instance run missing")
	}
	if _, ok := a.LookupMethod("run", true); !ok {
		t.Error("class run missing")
	}
}

func TestAccessorSynthesis(t *testing.T) {
	src := `@implementation Person : CPObject
{
    CPString _name @accessors(property=name);
    int _age @accessors(getter=age, setter=setTheAge:, copy);
    id _data @accessors(readonly);
    float plain @accessors;
}
@end`

	info, _ := expectNoError(t, src)
	person, _ := info.Classes.Lookup("Person")

	tests := []struct {
		selector string
		ivar     string
		setter   bool
		copies   bool
	}{
		{selector: "name", ivar: "_name"},
		{selector: "setName:", ivar: "_name", setter: true},
		{selector: "age", ivar: "_age"},
		{selector: "setTheAge:", ivar: "_age", setter: true, copies: true},
		{selector: "_data", ivar: "_data"},
		{selector: "plain", ivar: "plain"},
		{selector: "setPlain:", ivar: "plain", setter: true},
	}

	for _, tt := range tests {
		m, ok := person.LookupMethod(tt.selector, false)
		if !ok {
			t.Errorf("synthesized method %q missing", tt.selector)
			continue
		}
		if !m.Synthesized {
			t.Errorf("%q should be marked synthesized", tt.selector)
		}
		if m.Ivar != tt.ivar {
			t.Errorf("%q Ivar = %q, want %q", tt.selector, m.Ivar, tt.ivar)
		}
		if m.Setter != tt.setter {
			t.Errorf("%q Setter = %v, want %v", tt.selector, m.Setter, tt.setter)
		}
		if m.Copy != tt.copies {
			t.Errorf("%q Copy = %v, want %v", tt.selector, m.Copy, tt.copies)
		}
	}

	if len(person.Synthesized) != len(tests) {
		t.Errorf("Synthesized = %d methods, want %d", len(person.Synthesized), len(tests))
	}
	// readonly must not synthesize a setter.
	if _, ok := person.LookupMethod("set_data:", false); ok {
		t.Error("readonly ivar got a setter")
	}
	// Setter types carry void and the ivar type.
	setter, _ := person.LookupMethod("setName:", false)
	if len(setter.Types) != 2 || setter.Types[0] != "void" || setter.Types[1] != "CPString" {
		t.Errorf("setName: Types = %v, want [void CPString]", setter.Types)
	}
}

func TestAccessorExplicitWins(t *testing.T) {
	src := `@implementation Person : CPObject
{
    CPString _name @accessors(property=name);
}
- (CPString)name { return "fixed"; }
@end`

	info, _ := expectNoError(t, src)
	person, _ := info.Classes.Lookup("Person")

	getter, _ := person.LookupMethod("name", false)
	if getter.Synthesized {
		t.Error("declared getter should win over synthesis")
	}
	setter, ok := person.LookupMethod("setName:", false)
	if !ok || !setter.Synthesized {
		t.Error("setter should still be synthesized")
	}
	if len(person.Synthesized) != 1 {
		t.Errorf("Synthesized = %d methods, want 1", len(person.Synthesized))
	}
}

func TestAccessorNames(t *testing.T) {
	tests := []struct {
		name       string
		ivar       *IvarInfo
		wantGetter string
		wantSetter string
	}{
		{
			name:       "bare accessors",
			ivar:       &IvarInfo{Name: "count", Accessors: &ast.AccessorSpec{}},
			wantGetter: "count",
			wantSetter: "setCount:",
		},
		{
			name:       "property override",
			ivar:       &IvarInfo{Name: "_title", Accessors: &ast.AccessorSpec{Property: "title"}},
			wantGetter: "title",
			wantSetter: "setTitle:",
		},
		{
			name:       "getter override",
			ivar:       &IvarInfo{Name: "_flag", Accessors: &ast.AccessorSpec{Getter: "isFlag"}},
			wantGetter: "isFlag",
			wantSetter: "set_flag:",
		},
		{
			name:       "setter override keeps colon",
			ivar:       &IvarInfo{Name: "x", Accessors: &ast.AccessorSpec{Setter: "assignX"}},
			wantGetter: "x",
			wantSetter: "assignX:",
		},
		{
			name:       "readonly",
			ivar:       &IvarInfo{Name: "id", Accessors: &ast.AccessorSpec{ReadOnly: true}},
			wantGetter: "id",
			wantSetter: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, getter, setter := AccessorNames(tt.ivar)
			if getter != tt.wantGetter {
				t.Errorf("getter = %q, want %q", getter, tt.wantGetter)
			}
			if setter != tt.wantSetter {
				t.Errorf("setter = %q, want %q", setter, tt.wantSetter)
			}
		})
	}
}

func TestIvarReferences(t *testing.T) {
	src := `@implementation Person : CPObject
{
    CPString _name;
}
- (CPString)name { return _name; }
- (void)setName:(CPString)aName { _name = aName; }
- (CPString)shadowed { var _name = "local"; return _name; }
+ (id)make { return _name; }
@end`

	info, _ := expectNoError(t, src)

	count := 0
	for id := range info.IvarRefs {
		if id.Name == "_name" {
			count++
		}
	}
	// Only the getter read and the setter write resolve to the ivar.
	// The shadowed method declares a local, and class methods never
	// see instance variables.
	if count != 2 {
		t.Errorf("ivar references = %d, want 2", count)
	}

	found := false
	for _, w := range info.Warnings {
		if strings.Contains(w.Message, "hides instance variable") {
			found = true
		}
	}
	if !found {
		t.Errorf("missing shadow warning; warnings = %v", warningStrings(info))
	}
}

func TestInheritedIvarReference(t *testing.T) {
	src := `@implementation Animal : CPObject
{
    CPString _name;
}
@end

@implementation Dog : Animal
- (CPString)name { return _name; }
@end`

	info, _ := expectNoError(t, src)
	animal, _ := info.Classes.Lookup("Animal")

	for id, owner := range info.IvarRefs {
		if id.Name != "_name" {
			continue
		}
		if owner != animal {
			t.Errorf("ivar owner = %q, want Animal", owner.Name)
		}
		return
	}
	t.Error("inherited ivar reference not annotated")
}

func TestReceiverTemps(t *testing.T) {
	t.Run("repeatable receiver", func(t *testing.T) {
		info, _ := expectNoError(t, "[x foo];")
		sends := collectSendInfos(t, info, 1)
		if sends[0].Temp != "" {
			t.Errorf("identifier receiver got temp %q", sends[0].Temp)
		}
		if sends[0].ClassReceiver {
			t.Error("unknown identifier marked as class receiver")
		}
	})

	t.Run("call receiver", func(t *testing.T) {
		info, prog := expectNoError(t, "[f() foo];")
		sends := collectSendInfos(t, info, 1)
		if sends[0].Temp != "___r1" {
			t.Errorf("Temp = %q, want ___r1", sends[0].Temp)
		}
		temps := info.Temps(prog)
		if len(temps) != 1 || temps[0] != "___r1" {
			t.Errorf("program temps = %v, want [___r1]", temps)
		}
	})

	t.Run("nested send receiver", func(t *testing.T) {
		info, _ := expectNoError(t, "[[obj a] b];")
		withTemp := 0
		for _, si := range info.Sends {
			if si.Temp != "" {
				withTemp++
			}
		}
		if withTemp != 1 {
			t.Errorf("sends with temps = %d, want 1", withTemp)
		}
	})

	t.Run("numbering restarts per function", func(t *testing.T) {
		src := `function one() { [f() a]; }
function two() { [g() b]; [h() c]; }`
		info, prog := expectNoError(t, src)

		var fns []*ast.FuncDecl
		for _, s := range prog.Body {
			if fn, ok := s.(*ast.FuncDecl); ok {
				fns = append(fns, fn)
			}
		}
		if len(fns) != 2 {
			t.Fatalf("functions = %d, want 2", len(fns))
		}
		if temps := info.Temps(fns[0]); len(temps) != 1 || temps[0] != "___r1" {
			t.Errorf("one() temps = %v, want [___r1]", temps)
		}
		want := []string{"___r1", "___r2"}
		got := info.Temps(fns[1])
		if len(got) != 2 || got[0] != want[0] || got[1] != want[1] {
			t.Errorf("two() temps = %v, want %v", got, want)
		}
		if temps := info.Temps(prog); temps != nil {
			t.Errorf("program temps = %v, want none", temps)
		}
	})
}

// collectSendInfos returns the recorded send annotations, failing
// unless exactly want sends were annotated.
func collectSendInfos(t *testing.T, info *Info, want int) []*SendInfo {
	t.Helper()
	if len(info.Sends) != want {
		t.Fatalf("annotated sends = %d, want %d", len(info.Sends), want)
	}
	out := make([]*SendInfo, 0, want)
	for _, si := range info.Sends {
		out = append(out, si)
	}
	return out
}

func TestClassReceivers(t *testing.T) {
	tests := []struct {
		name      string
		src       string
		wantClass bool
	}{
		{
			name:      "class declared in unit",
			src:       "@implementation A : CPObject\n@end\n[A new];",
			wantClass: true,
		},
		{
			name:      "root class",
			src:       "[CPObject alloc];",
			wantClass: true,
		},
		{
			name:      "forward declared class",
			src:       "@class CPView;\n[CPView new];",
			wantClass: true,
		},
		{
			name:      "variable shadows class",
			src:       "@implementation A : CPObject\n@end\nvar A = 2;\n[A new];",
			wantClass: false,
		},
		{
			name:      "plain identifier",
			src:       "var obj;\n[obj run];",
			wantClass: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info, _ := expectNoError(t, tt.src)
			sends := collectSendInfos(t, info, 1)
			if sends[0].ClassReceiver != tt.wantClass {
				t.Errorf("ClassReceiver = %v, want %v", sends[0].ClassReceiver, tt.wantClass)
			}
			if sends[0].ClassReceiver && sends[0].Temp != "" {
				t.Error("class receiver should not get a temp")
			}
		})
	}
}

func TestSelfSuperOutsideMethod(t *testing.T) {
	expectError(t, "x = self;", "self used outside of a method")
	expectError(t, "[super init];", "super used outside of a method")

	// Inside a method both are valid.
	expectNoError(t, `@implementation A : CPObject
- (id)init
{
    self = [super init];
    return self;
}
@end`)

	// Without superset analysis self is an ordinary identifier.
	prog := parseCode(t, "x = self;")
	if _, err := Annotate(prog, Options{}); err != nil {
		t.Errorf("plain mode: unexpected error %v", err)
	}
}

func TestImplicitGlobalWarning(t *testing.T) {
	info := expectWarning(t, "function f() { leaked = 1; }\nfunction g() { leaked = 2; }",
		"creates an implicit global")

	count := 0
	for _, w := range info.Warnings {
		if strings.Contains(w.Message, "implicit global") {
			count++
		}
	}
	// The first assignment creates the global; later ones resolve.
	if count != 1 {
		t.Errorf("implicit global warnings = %d, want 1", count)
	}

	// Top-level assignment defines the global deliberately.
	info, _ = expectNoError(t, "top = 1;\nfunction f() { return top; }")
	if len(info.Warnings) != 0 {
		t.Errorf("unexpected warnings: %v", warningStrings(info))
	}
}

func TestUnusedLocalWarning(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want int
	}{
		{
			name: "unused var",
			src:  "function f() { var dead = 1; }",
			want: 1,
		},
		{
			name: "used var",
			src:  "function f() { var ok = 1; return ok; }",
			want: 0,
		},
		{
			name: "parameters never warn",
			src:  "function f(a, b) {}",
			want: 0,
		},
		{
			name: "top level never warns",
			src:  "var exported;",
			want: 0,
		},
		{
			name: "method local",
			src:  "@implementation A : CPObject\n- (void)run { var dead; }\n@end",
			want: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info, _, err := annotateCode(t, tt.src)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			count := 0
			for _, w := range info.Warnings {
				if strings.Contains(w.Message, "never used") {
					count++
				}
			}
			if count != tt.want {
				t.Errorf("unused warnings = %d, want %d: %v", count, tt.want, warningStrings(info))
			}
		})
	}
}

func TestMiscWarnings(t *testing.T) {
	t.Run("with statement", func(t *testing.T) {
		expectWarning(t, "with (obj) { x; }", "with statement")
	})

	t.Run("leading zero literal", func(t *testing.T) {
		expectWarning(t, "x = 0123;", `"0123"`)
	})

	t.Run("no warning for hex or fraction", func(t *testing.T) {
		info, _ := expectNoError(t, "x = 0x10;\ny = 0.5;\nz = 0;")
		for _, w := range info.Warnings {
			if strings.Contains(w.Message, "leading zero") {
				t.Errorf("unexpected warning: %s", w)
			}
		}
	})

	t.Run("unknown class receiver", func(t *testing.T) {
		expectWarning(t, "[UnknownThing new];", `unknown class "UnknownThing"`)
	})

	t.Run("lowercase receiver stays quiet", func(t *testing.T) {
		info, _ := expectNoError(t, "[unknown new];")
		if len(info.Warnings) != 0 {
			t.Errorf("unexpected warnings: %v", warningStrings(info))
		}
	})

	t.Run("global declaration silences receiver", func(t *testing.T) {
		info, _ := expectNoError(t, "@global Registry\n[Registry shared];")
		if len(info.Warnings) != 0 {
			t.Errorf("unexpected warnings: %v", warningStrings(info))
		}
	})

	t.Run("predeclared names stay quiet", func(t *testing.T) {
		info, _ := expectNoError(t, "x = Math.floor(1.5);\n[Date new];")
		if len(info.Warnings) != 0 {
			t.Errorf("unexpected warnings: %v", warningStrings(info))
		}
	})

	t.Run("duplicate protocol conformance", func(t *testing.T) {
		expectWarning(t, "@protocol P\n@end\n@implementation A : CPObject <P, P>\n@end",
			`protocol "P" is listed more than once`)
	})
}

func TestProtocols(t *testing.T) {
	src := `@protocol Coding
- (void)encode:(id)coder;
@optional
- (id)lazyCopy;
@end`

	info, _ := expectNoError(t, src)
	p, ok := info.Protocols["Coding"]
	if !ok {
		t.Fatal("Coding not recorded")
	}
	if p.Forward {
		t.Error("full declaration marked forward")
	}
	if len(p.Required) != 1 || p.Required[0].Selector != "encode:" {
		t.Errorf("Required = %v", p.Required)
	}
	if len(p.Optional) != 1 || p.Optional[0].Selector != "lazyCopy" {
		t.Errorf("Optional = %v", p.Optional)
	}
}

func TestProtocolForward(t *testing.T) {
	// A forward declaration introduces the name and is later
	// replaced by the full declaration.
	src := `@protocol Delegate;

@implementation A : CPObject <Delegate>
@end

@protocol Delegate
- (void)ready;
@end`

	info, _ := expectNoError(t, src)
	p := info.Protocols["Delegate"]
	if p == nil || p.Forward {
		t.Fatalf("Delegate = %+v, want full declaration", p)
	}
	if len(p.Required) != 1 {
		t.Errorf("Required = %d methods, want 1", len(p.Required))
	}
}

func TestProtocolErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{
			name: "unknown conformance",
			src:  "@implementation A : CPObject <Missing>\n@end",
			want: `cannot find protocol declaration for "Missing"`,
		},
		{
			name: "unknown in protocol literal",
			src:  "x = @protocol(Missing);",
			want: `cannot find protocol declaration for "Missing"`,
		},
		{
			name: "unknown incorporated protocol",
			src:  "@protocol Q <Missing>\n@end",
			want: `cannot find protocol declaration for "Missing"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			expectError(t, tt.src, tt.want)
		})
	}

	// Known references resolve without error.
	expectNoError(t, "@protocol P\n@end\nx = @protocol(P);")
}

func TestDirectiveRecording(t *testing.T) {
	src := `@import "Cell.j"
@import <Foundation/CPObject.j>
@typedef CPInteger;
@global CPApp`

	info, _ := expectNoError(t, src)

	wantDeps := []string{"Cell.j", "Foundation/CPObject.j"}
	if len(info.Dependencies) != 2 ||
		info.Dependencies[0] != wantDeps[0] || info.Dependencies[1] != wantDeps[1] {
		t.Errorf("Dependencies = %v, want %v", info.Dependencies, wantDeps)
	}
	if len(info.Typedefs) != 1 || info.Typedefs[0] != "CPInteger" {
		t.Errorf("Typedefs = %v, want [CPInteger]", info.Typedefs)
	}
}

func TestParamShadowsIvar(t *testing.T) {
	src := `@implementation A : CPObject
{
    CPString _name;
}
- (void)setName:(CPString)_name {}
@end`

	expectWarning(t, src, `local declaration of "_name" hides instance variable`)
}

func TestNestedFunctionSeesIvars(t *testing.T) {
	// Closures inside instance methods capture self, so ivar
	// references inside them still resolve.
	src := `@implementation A : CPObject
{
    int _count;
}
- (id)counter
{
    return function() { return _count; };
}
@end`

	info, _ := expectNoError(t, src)
	found := false
	for id := range info.IvarRefs {
		if id.Name == "_count" {
			found = true
		}
	}
	if !found {
		t.Error("ivar reference inside closure not annotated")
	}
}

func TestSendArgumentsAnalyzed(t *testing.T) {
	// Arguments and variadic extras run through scope analysis.
	src := `@class CPString;
function f()
{
    var fmt = "x";
    [CPString stringWithFormat:fmt, 1, 2];
}`
	info, _ := expectNoError(t, src)
	for _, w := range info.Warnings {
		if strings.Contains(w.Message, "never used") {
			t.Errorf("fmt should count as used: %s", w)
		}
	}
	sends := collectSendInfos(t, info, 1)
	if !sends[0].ClassReceiver {
		t.Error("CPString send should be a class receiver")
	}
}
