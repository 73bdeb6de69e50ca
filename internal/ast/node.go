// Package ast defines the abstract syntax tree for Objective-J programs.
//
// Objective-J is a strict superset of JavaScript, so the tree covers the
// full JavaScript expression and statement grammar plus the Objective-J
// additions (class and protocol declarations, message sends, selector
// and collection literals, references).
//
// The AST is designed for:
//   - Source location tracking for error reporting and source maps
//   - Faithful re-emission (literals keep their raw spelling)
//   - Lightweight traversal via Walk and Inspect
//
// Node hierarchy:
//
//	Node (interface)
//	├── Expr (interface) - expressions that produce values
//	│   ├── NumLit, StrLit, RegexLit, BoolLit, NullLit - literals
//	│   ├── Ident, ThisExpr, MemberExpr - references
//	│   ├── UnaryExpr, BinaryExpr, TernaryExpr, AssignExpr, SeqExpr - operations
//	│   ├── CallExpr, NewExpr, FuncExpr - calls and functions
//	│   ├── ArrayLit, ObjectLit - JavaScript literals
//	│   └── MsgSendExpr, SelectorLit, ProtocolLit, AtArrayLit, AtDictLit, RefExpr, DerefExpr - superset
//	├── Stmt (interface) - statements that perform actions
//	│   ├── ExprStmt, VarStmt, BlockStmt, EmptyStmt - basic
//	│   ├── IfStmt, SwitchStmt, WhileStmt, DoWhileStmt, ForStmt, ForInStmt - control
//	│   ├── BreakStmt, ContinueStmt, ReturnStmt, ThrowStmt, TryStmt - jumps
//	│   └── LabeledStmt, WithStmt, DebuggerStmt, FuncDecl - other
//	├── Decl (interface) - Objective-J top-level declarations (also Stmts)
//	│   ├── ClassDecl, ProtocolDecl - definitions
//	│   └── ImportDecl, ClassForwardDecl, GlobalDecl, TypeDefDecl - directives
//	└── Program, MethodDecl, IvarDecl - top-level structures
package ast

import "github.com/cappuccino/objj-compiler/internal/token"

// Node is the interface implemented by all AST nodes.
// It provides source position information for error reporting
// and the basis for traversal.
type Node interface {
	// Pos returns the position of the first character belonging to this node.
	Pos() token.Position

	// End returns the position of the first character immediately after this node.
	End() token.Position
}

// Expr is the interface for all expression nodes.
// Expressions are AST nodes that evaluate to a value.
type Expr interface {
	Node
	exprNode() // marker method to prevent external implementations
}

// Stmt is the interface for all statement nodes.
// Statements are AST nodes that perform actions.
type Stmt interface {
	Node
	stmtNode() // marker method to prevent external implementations
}

// Decl is the interface for Objective-J top-level declarations.
// Every Decl is also a Stmt so declarations mix freely with ordinary
// statements in a program body.
type Decl interface {
	Stmt
	declNode() // marker method to prevent external implementations
}

// BaseExpr provides common fields for all expression nodes.
// Embedded in concrete expression types for position tracking.
type BaseExpr struct {
	StartPos token.Position // Position of first token
	EndPos   token.Position // Position after last token
}

func (b *BaseExpr) Pos() token.Position { return b.StartPos }
func (b *BaseExpr) End() token.Position { return b.EndPos }
func (b *BaseExpr) exprNode()           {}

// BaseStmt provides common fields for all statement nodes.
// Embedded in concrete statement types for position tracking.
type BaseStmt struct {
	StartPos token.Position // Position of first token
	EndPos   token.Position // Position after last token
}

func (b *BaseStmt) Pos() token.Position { return b.StartPos }
func (b *BaseStmt) End() token.Position { return b.EndPos }
func (b *BaseStmt) stmtNode()           {}

// IsLValue returns true if the expression can be assigned to
// (left-hand side of assignment, target of ++/--).
// A dereference is writable: assigning through it becomes a call on
// the underlying reference function.
func IsLValue(e Expr) bool {
	switch e.(type) {
	case *Ident, *MemberExpr, *DerefExpr:
		return true
	default:
		return false
	}
}

// -----------------------------------------------------------------------------
// Constructor helpers
// -----------------------------------------------------------------------------

// MakeBaseExpr creates a BaseExpr with the given positions.
func MakeBaseExpr(start, end token.Position) BaseExpr {
	return BaseExpr{StartPos: start, EndPos: end}
}

// MakeBaseStmt creates a BaseStmt with the given positions.
func MakeBaseStmt(start, end token.Position) BaseStmt {
	return BaseStmt{StartPos: start, EndPos: end}
}
