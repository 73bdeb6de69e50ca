package ast

import "github.com/cappuccino/objj-compiler/internal/token"

// -----------------------------------------------------------------------------
// Literals
// -----------------------------------------------------------------------------

// NumLit represents a numeric literal.
// Examples: 42, 3.14, 1e10, 0x1F
type NumLit struct {
	BaseExpr
	Value float64 // Parsed numeric value
	Raw   string  // Original source text (for exact re-emission)
}

// StrLit represents a string literal, including the Objective-J
// @"..." form, which is plain JavaScript string syntax with an @ in
// front.
// Examples: "hello", 'world', @"boxed"
type StrLit struct {
	BaseExpr
	Value string // Unescaped string value
	Raw   string // Original source text including quotes
}

// RegexLit represents a regular expression literal.
// Examples: /pattern/, /[a-z]+/gi
type RegexLit struct {
	BaseExpr
	Pattern string // Regex pattern without delimiters
	Flags   string // Trailing flags (e.g., "gi")
}

// BoolLit represents true or false.
type BoolLit struct {
	BaseExpr
	Value bool
}

// NullLit represents the null literal.
type NullLit struct {
	BaseExpr
}

// -----------------------------------------------------------------------------
// References
// -----------------------------------------------------------------------------

// Ident represents an identifier.
// Examples: x, document, CPObject
type Ident struct {
	BaseExpr
	Name string // Identifier name
}

// ThisExpr represents the this keyword.
type ThisExpr struct {
	BaseExpr
}

// MemberExpr represents property access.
// Examples: a.b (Computed false, Property is *Ident), a[b] (Computed true)
type MemberExpr struct {
	BaseExpr
	Object   Expr // Object expression
	Property Expr // Property name or index expression
	Computed bool // true for a[b], false for a.b
}

// -----------------------------------------------------------------------------
// Operations
// -----------------------------------------------------------------------------

// UnaryExpr represents a unary operation.
// Examples: -x, !flag, typeof v, delete a.b, ++i, i++
type UnaryExpr struct {
	BaseExpr
	Op   token.Token // Operator token (SUB, NOT, TYPEOF, INCR, ...)
	Expr Expr        // Operand
	Post bool        // true for postfix (i++), false for prefix (++i)
}

// BinaryExpr represents a binary operation, including logical &&/||
// and the keyword operators in and instanceof.
// Examples: a + b, x === y, k in obj
type BinaryExpr struct {
	BaseExpr
	Left  Expr        // Left operand
	Op    token.Token // Operator token
	Right Expr        // Right operand
}

// TernaryExpr represents a conditional expression.
// Example: cond ? a : b
type TernaryExpr struct {
	BaseExpr
	Cond Expr // Condition expression
	Then Expr // Value if condition is true
	Else Expr // Value if condition is false
}

// AssignExpr represents an assignment expression.
// Examples: x = 1, a.b += 2, @deref(r) = v
type AssignExpr struct {
	BaseExpr
	Left  Expr        // Target (must satisfy IsLValue)
	Op    token.Token // Assignment operator (ASSIGN, ADD_ASSIGN, ...)
	Right Expr        // Value expression
}

// SeqExpr represents the comma operator.
// Example: a = 1, b = 2
type SeqExpr struct {
	BaseExpr
	Exprs []Expr // Expressions evaluated left to right (at least 2)
}

// GroupExpr represents a parenthesized expression.
// Kept in the tree so re-emission preserves explicit grouping.
// Example: (a + b)
type GroupExpr struct {
	BaseExpr
	Expr Expr // Inner expression
}

// -----------------------------------------------------------------------------
// Calls and functions
// -----------------------------------------------------------------------------

// CallExpr represents a function call.
// Example: f(a, b)
type CallExpr struct {
	BaseExpr
	Callee Expr   // Called expression
	Args   []Expr // Arguments (may be empty)
}

// NewExpr represents a constructor call.
// Examples: new Date(), new Image
type NewExpr struct {
	BaseExpr
	Callee Expr   // Constructor expression
	Args   []Expr // Arguments (nil when written without parentheses)
	Parens bool   // true if an argument list was present, even empty
}

// FuncExpr represents a function expression.
// Example: function max(a, b) { return a > b ? a : b; }
type FuncExpr struct {
	BaseExpr
	Name   string   // Optional function name ("" for anonymous)
	Params []*Ident // Parameter names
	Body   *BlockStmt
}

// -----------------------------------------------------------------------------
// Composite literals
// -----------------------------------------------------------------------------

// ArrayLit represents a JavaScript array literal.
// A nil element records an elision.
// Examples: [1, 2, 3], [, x]
type ArrayLit struct {
	BaseExpr
	Elems []Expr // Element expressions (nil entries are holes)
}

// PropKind distinguishes plain properties from accessor definitions in
// object literals.
type PropKind uint8

const (
	PropInit PropKind = iota // key: value
	PropGet                  // get key() { ... }
	PropSet                  // set key(v) { ... }
)

// String returns the source keyword for the property kind.
func (k PropKind) String() string {
	switch k {
	case PropGet:
		return "get"
	case PropSet:
		return "set"
	default:
		return "init"
	}
}

// Property is a single entry of an object literal.
// For PropGet and PropSet the Value is a *FuncExpr.
type Property struct {
	Key      Expr // *Ident, *StrLit or *NumLit
	Kind     PropKind
	Value    Expr
	StartPos token.Position
	EndPos   token.Position
}

// Pos returns the position of the property key.
func (p *Property) Pos() token.Position { return p.StartPos }

// End returns the position after the property value.
func (p *Property) End() token.Position { return p.EndPos }

// ObjectLit represents a JavaScript object literal.
// Example: {a: 1, "b": 2, get c() { return 3; }}
type ObjectLit struct {
	BaseExpr
	Props []*Property
}

// -----------------------------------------------------------------------------
// Compile-time checks
// -----------------------------------------------------------------------------

// Ensure all expression types implement Expr interface.
var (
	_ Expr = (*NumLit)(nil)
	_ Expr = (*StrLit)(nil)
	_ Expr = (*RegexLit)(nil)
	_ Expr = (*BoolLit)(nil)
	_ Expr = (*NullLit)(nil)
	_ Expr = (*Ident)(nil)
	_ Expr = (*ThisExpr)(nil)
	_ Expr = (*MemberExpr)(nil)
	_ Expr = (*UnaryExpr)(nil)
	_ Expr = (*BinaryExpr)(nil)
	_ Expr = (*TernaryExpr)(nil)
	_ Expr = (*AssignExpr)(nil)
	_ Expr = (*SeqExpr)(nil)
	_ Expr = (*GroupExpr)(nil)
	_ Expr = (*CallExpr)(nil)
	_ Expr = (*NewExpr)(nil)
	_ Expr = (*FuncExpr)(nil)
	_ Expr = (*ArrayLit)(nil)
	_ Expr = (*ObjectLit)(nil)
)
