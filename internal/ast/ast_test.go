package ast_test

import (
	"testing"

	"github.com/cappuccino/objj-compiler/internal/ast"
	"github.com/cappuccino/objj-compiler/internal/token"
)

// TestNodeInterface verifies all node types implement Node interface correctly.
func TestNodeInterface(t *testing.T) {
	pos := token.Position{Line: 1, Column: 1, Offset: 0}
	endPos := token.Position{Line: 1, Column: 10, Offset: 9}

	tests := []struct {
		name string
		node ast.Node
	}{
		// Literals
		{"NumLit", &ast.NumLit{}},
		{"StrLit", &ast.StrLit{}},
		{"RegexLit", &ast.RegexLit{}},
		{"BoolLit", &ast.BoolLit{}},
		{"NullLit", &ast.NullLit{}},

		// References
		{"Ident", &ast.Ident{Name: "x"}},
		{"ThisExpr", &ast.ThisExpr{}},
		{"MemberExpr", &ast.MemberExpr{}},

		// Operations
		{"UnaryExpr", &ast.UnaryExpr{}},
		{"BinaryExpr", &ast.BinaryExpr{}},
		{"TernaryExpr", &ast.TernaryExpr{}},
		{"AssignExpr", &ast.AssignExpr{}},
		{"SeqExpr", &ast.SeqExpr{}},
		{"GroupExpr", &ast.GroupExpr{}},

		// Calls and functions
		{"CallExpr", &ast.CallExpr{}},
		{"NewExpr", &ast.NewExpr{}},
		{"FuncExpr", &ast.FuncExpr{}},

		// Composite literals
		{"ArrayLit", &ast.ArrayLit{}},
		{"ObjectLit", &ast.ObjectLit{}},

		// Superset expressions
		{"MsgSendExpr", &ast.MsgSendExpr{}},
		{"SelectorLit", &ast.SelectorLit{}},
		{"RefExpr", &ast.RefExpr{}},
		{"DerefExpr", &ast.DerefExpr{}},
		{"AtArrayLit", &ast.AtArrayLit{}},
		{"AtDictLit", &ast.AtDictLit{}},

		// Statements
		{"ExprStmt", &ast.ExprStmt{}},
		{"VarStmt", &ast.VarStmt{}},
		{"EmptyStmt", &ast.EmptyStmt{}},
		{"BlockStmt", &ast.BlockStmt{}},
		{"IfStmt", &ast.IfStmt{}},
		{"SwitchStmt", &ast.SwitchStmt{}},
		{"WhileStmt", &ast.WhileStmt{}},
		{"DoWhileStmt", &ast.DoWhileStmt{}},
		{"ForStmt", &ast.ForStmt{}},
		{"ForInStmt", &ast.ForInStmt{}},
		{"BreakStmt", &ast.BreakStmt{}},
		{"ContinueStmt", &ast.ContinueStmt{}},
		{"ReturnStmt", &ast.ReturnStmt{}},
		{"ThrowStmt", &ast.ThrowStmt{}},
		{"TryStmt", &ast.TryStmt{}},
		{"LabeledStmt", &ast.LabeledStmt{}},
		{"WithStmt", &ast.WithStmt{}},
		{"DebuggerStmt", &ast.DebuggerStmt{}},
		{"FuncDecl", &ast.FuncDecl{}},

		// Declarations
		{"ClassDecl", &ast.ClassDecl{}},
		{"ProtocolDecl", &ast.ProtocolDecl{}},
		{"ImportDecl", &ast.ImportDecl{}},
		{"ClassForwardDecl", &ast.ClassForwardDecl{}},
		{"GlobalDecl", &ast.GlobalDecl{}},
		{"TypeDefDecl", &ast.TypeDefDecl{}},

		// Program-level
		{"Program", &ast.Program{StartPos: pos, EndPos: endPos}},
		{"IvarDecl", &ast.IvarDecl{StartPos: pos, EndPos: endPos}},
		{"MethodDecl", &ast.MethodDecl{StartPos: pos, EndPos: endPos}},
		{"Comment", &ast.Comment{StartPos: pos, EndPos: endPos}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Just verify the node implements Node interface
			_ = tt.node.Pos()
			_ = tt.node.End()
		})
	}
}

// TestIsLValue verifies lvalue detection works correctly.
func TestIsLValue(t *testing.T) {
	tests := []struct {
		name   string
		expr   ast.Expr
		expect bool
	}{
		{"Ident", &ast.Ident{Name: "x"}, true},
		{"MemberExpr", &ast.MemberExpr{}, true},
		{"DerefExpr", &ast.DerefExpr{}, true},
		{"NumLit", &ast.NumLit{Value: 42}, false},
		{"StrLit", &ast.StrLit{Value: "hello"}, false},
		{"BinaryExpr", &ast.BinaryExpr{}, false},
		{"CallExpr", &ast.CallExpr{}, false},
		{"MsgSendExpr", &ast.MsgSendExpr{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ast.IsLValue(tt.expr)
			if got != tt.expect {
				t.Errorf("IsLValue(%s) = %v, want %v", tt.name, got, tt.expect)
			}
		})
	}
}

// TestWalk verifies AST walking works correctly.
func TestWalk(t *testing.T) {
	// Build: [receiver add:x to:y];
	prog := &ast.Program{
		Body: []ast.Stmt{
			&ast.ExprStmt{
				Expr: &ast.MsgSendExpr{
					Receiver: &ast.Ident{Name: "receiver"},
					Parts: []ast.SelPart{
						{Label: "add", Arg: &ast.Ident{Name: "x"}},
						{Label: "to", Arg: &ast.Ident{Name: "y"}},
					},
				},
			},
		},
	}

	// Count nodes by type
	var identCount, sendCount, totalCount int

	ast.Walk(prog, func(n ast.Node) bool {
		totalCount++
		switch n.(type) {
		case *ast.Ident:
			identCount++
		case *ast.MsgSendExpr:
			sendCount++
		}
		return true
	})

	if identCount != 3 {
		t.Errorf("identCount = %d, want 3", identCount)
	}
	if sendCount != 1 {
		t.Errorf("sendCount = %d, want 1", sendCount)
	}
	if totalCount < 6 {
		t.Errorf("totalCount = %d, expected at least 6", totalCount)
	}
}

// TestWalkPrune verifies that returning false skips children.
func TestWalkPrune(t *testing.T) {
	prog := &ast.Program{
		Body: []ast.Stmt{
			&ast.ExprStmt{
				Expr: &ast.DerefExpr{Ref: &ast.Ident{Name: "r"}},
			},
		},
	}

	var sawIdent bool
	ast.Walk(prog, func(n ast.Node) bool {
		switch n.(type) {
		case *ast.DerefExpr:
			return false
		case *ast.Ident:
			sawIdent = true
		}
		return true
	})

	if sawIdent {
		t.Error("Walk visited children of a pruned node")
	}
}

// TestInspectWithParent verifies parent tracking in Inspect.
func TestInspectWithParent(t *testing.T) {
	// Build: @deref(r)
	deref := &ast.DerefExpr{
		Ref: &ast.Ident{Name: "r"},
	}
	prog := &ast.Program{
		Body: []ast.Stmt{
			&ast.ExprStmt{Expr: deref},
		},
	}

	var identParent ast.Node

	ast.Inspect(prog, func(n, parent ast.Node) bool {
		if _, ok := n.(*ast.Ident); ok {
			identParent = parent
		}
		return true
	})

	if identParent != deref {
		t.Errorf("Ident parent = %T, want *DerefExpr", identParent)
	}
}

// TestMsgSendSelector verifies canonical selector construction.
func TestMsgSendSelector(t *testing.T) {
	tests := []struct {
		name string
		send *ast.MsgSendExpr
		want string
	}{
		{
			"unary",
			&ast.MsgSendExpr{Parts: []ast.SelPart{{Label: "count"}}},
			"count",
		},
		{
			"single keyword",
			&ast.MsgSendExpr{Parts: []ast.SelPart{
				{Label: "initWithFrame", Arg: &ast.Ident{Name: "f"}},
			}},
			"initWithFrame:",
		},
		{
			"two keywords",
			&ast.MsgSendExpr{Parts: []ast.SelPart{
				{Label: "setObject", Arg: &ast.Ident{Name: "v"}},
				{Label: "forKey", Arg: &ast.Ident{Name: "k"}},
			}},
			"setObject:forKey:",
		},
		{
			"empty label part",
			&ast.MsgSendExpr{Parts: []ast.SelPart{
				{Label: "foo", Arg: &ast.Ident{Name: "a"}},
				{Label: "", Arg: &ast.Ident{Name: "b"}},
			}},
			"foo::",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.send.Selector(); got != tt.want {
				t.Errorf("Selector() = %q, want %q", got, tt.want)
			}
		})
	}
}

// TestMethodSelectorAndTypes verifies method signature helpers.
func TestMethodSelectorAndTypes(t *testing.T) {
	unary := &ast.MethodDecl{
		ReturnType: "CPString",
		Params:     []*ast.MethodParam{{Label: "description"}},
	}
	if got := unary.Selector(); got != "description" {
		t.Errorf("unary Selector() = %q, want %q", got, "description")
	}
	if got := unary.Types(); len(got) != 1 || got[0] != "CPString" {
		t.Errorf("unary Types() = %v, want [CPString]", got)
	}

	keyword := &ast.MethodDecl{
		ReturnType: "void",
		Params: []*ast.MethodParam{
			{Label: "setObject", Type: "id", Name: "obj"},
			{Label: "forKey", Type: "CPString", Name: "key"},
		},
	}
	if got := keyword.Selector(); got != "setObject:forKey:" {
		t.Errorf("keyword Selector() = %q, want %q", got, "setObject:forKey:")
	}
	want := []string{"void", "id", "CPString"}
	got := keyword.Types()
	if len(got) != len(want) {
		t.Fatalf("keyword Types() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Types()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

// TestProgramClasses verifies class collection keeps source order.
func TestProgramClasses(t *testing.T) {
	prog := &ast.Program{
		Body: []ast.Stmt{
			&ast.ClassDecl{Name: "A"},
			&ast.ExprStmt{Expr: &ast.NumLit{Value: 1, Raw: "1"}},
			&ast.ClassDecl{Name: "B", Category: "Extras"},
		},
	}
	classes := prog.Classes()
	if len(classes) != 2 {
		t.Fatalf("Classes() returned %d classes, want 2", len(classes))
	}
	if classes[0].Name != "A" || classes[1].Name != "B" {
		t.Errorf("Classes() = [%s, %s], want [A, B]", classes[0].Name, classes[1].Name)
	}
	if classes[0].IsCategory() {
		t.Error("class A reported as category")
	}
	if !classes[1].IsCategory() {
		t.Error("category B not reported as category")
	}
}
