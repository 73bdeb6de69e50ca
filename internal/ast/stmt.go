package ast

import "github.com/cappuccino/objj-compiler/internal/token"

// -----------------------------------------------------------------------------
// Basic statements
// -----------------------------------------------------------------------------

// ExprStmt represents an expression used as a statement.
// Example: f();
type ExprStmt struct {
	BaseStmt
	Expr Expr
}

// VarDecl is a single declarator of a var statement.
// Example: x = 1 in var x = 1, y;
type VarDecl struct {
	Name     *Ident // Declared name
	Init     Expr   // Initializer (nil if absent)
	StartPos token.Position
	EndPos   token.Position
}

// Pos returns the position of the declared name.
func (d *VarDecl) Pos() token.Position { return d.StartPos }

// End returns the position after the declarator.
func (d *VarDecl) End() token.Position { return d.EndPos }

// VarStmt represents a var statement.
// Example: var x = 1, y;
type VarStmt struct {
	BaseStmt
	Decls []*VarDecl // Declarators (at least 1)
}

// EmptyStmt represents a lone semicolon.
type EmptyStmt struct {
	BaseStmt
}

// BlockStmt represents a braced statement list.
type BlockStmt struct {
	BaseStmt
	Stmts []Stmt
}

// -----------------------------------------------------------------------------
// Control flow
// -----------------------------------------------------------------------------

// IfStmt represents an if statement.
type IfStmt struct {
	BaseStmt
	Cond Expr // Condition expression
	Then Stmt // Statement if condition is true
	Else Stmt // Optional else branch (nil if absent)
}

// CaseClause is one case or default arm of a switch statement.
type CaseClause struct {
	Test     Expr   // Case expression (nil for default)
	Body     []Stmt // Statements of the arm
	StartPos token.Position
	EndPos   token.Position
}

// Pos returns the position of the case or default keyword.
func (c *CaseClause) Pos() token.Position { return c.StartPos }

// End returns the position after the last statement of the arm.
func (c *CaseClause) End() token.Position { return c.EndPos }

// SwitchStmt represents a switch statement.
type SwitchStmt struct {
	BaseStmt
	Disc  Expr // Discriminant expression
	Cases []*CaseClause
}

// WhileStmt represents a while loop.
type WhileStmt struct {
	BaseStmt
	Cond Expr
	Body Stmt
}

// DoWhileStmt represents a do-while loop.
type DoWhileStmt struct {
	BaseStmt
	Body Stmt
	Cond Expr
}

// ForStmt represents a C-style for loop.
// Init is either a *VarStmt or an expression statement-like Expr, and
// any of the three headers may be nil.
type ForStmt struct {
	BaseStmt
	Init Node // *VarStmt, Expr, or nil
	Cond Expr // nil if absent
	Post Expr // nil if absent
	Body Stmt
}

// ForInStmt represents a for-in loop.
// Left is either a *VarStmt with a single declarator or an lvalue Expr.
type ForInStmt struct {
	BaseStmt
	Left   Node // *VarStmt or lvalue Expr
	Object Expr // Object being enumerated
	Body   Stmt
}

// -----------------------------------------------------------------------------
// Jumps
// -----------------------------------------------------------------------------

// BreakStmt represents a break statement with optional label.
type BreakStmt struct {
	BaseStmt
	Label *Ident // nil for unlabeled break
}

// ContinueStmt represents a continue statement with optional label.
type ContinueStmt struct {
	BaseStmt
	Label *Ident // nil for unlabeled continue
}

// ReturnStmt represents a return statement.
type ReturnStmt struct {
	BaseStmt
	Value Expr // Return value (nil for bare return)
}

// ThrowStmt represents a throw statement.
type ThrowStmt struct {
	BaseStmt
	Value Expr
}

// TryStmt represents a try statement.
// At least one of Catch and Finally is present.
type TryStmt struct {
	BaseStmt
	Block   *BlockStmt
	Param   *Ident     // Catch parameter (nil if no catch clause)
	Catch   *BlockStmt // nil if no catch clause
	Finally *BlockStmt // nil if no finally clause
}

// -----------------------------------------------------------------------------
// Other statements
// -----------------------------------------------------------------------------

// LabeledStmt represents a labeled statement.
// Example: outer: for (;;) { ... }
type LabeledStmt struct {
	BaseStmt
	Label *Ident
	Stmt  Stmt
}

// WithStmt represents a with statement.
// Compiles verbatim but draws a warning, as its scoping defeats
// variable resolution.
type WithStmt struct {
	BaseStmt
	Object Expr
	Body   Stmt
}

// DebuggerStmt represents a debugger statement.
type DebuggerStmt struct {
	BaseStmt
}

// FuncDecl represents a function declaration statement.
// Example: function add(a, b) { return a + b; }
type FuncDecl struct {
	BaseStmt
	Name   *Ident   // Function name
	Params []*Ident // Parameter names
	Body   *BlockStmt
}

// -----------------------------------------------------------------------------
// Compile-time checks
// -----------------------------------------------------------------------------

// Ensure all statement types implement Stmt interface.
var (
	_ Stmt = (*ExprStmt)(nil)
	_ Stmt = (*VarStmt)(nil)
	_ Stmt = (*EmptyStmt)(nil)
	_ Stmt = (*BlockStmt)(nil)
	_ Stmt = (*IfStmt)(nil)
	_ Stmt = (*SwitchStmt)(nil)
	_ Stmt = (*WhileStmt)(nil)
	_ Stmt = (*DoWhileStmt)(nil)
	_ Stmt = (*ForStmt)(nil)
	_ Stmt = (*ForInStmt)(nil)
	_ Stmt = (*BreakStmt)(nil)
	_ Stmt = (*ContinueStmt)(nil)
	_ Stmt = (*ReturnStmt)(nil)
	_ Stmt = (*ThrowStmt)(nil)
	_ Stmt = (*TryStmt)(nil)
	_ Stmt = (*LabeledStmt)(nil)
	_ Stmt = (*WithStmt)(nil)
	_ Stmt = (*DebuggerStmt)(nil)
	_ Stmt = (*FuncDecl)(nil)
)
