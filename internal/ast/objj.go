package ast

import (
	"strings"

	"github.com/cappuccino/objj-compiler/internal/token"
)

// -----------------------------------------------------------------------------
// Superset expressions
// -----------------------------------------------------------------------------

// SelPart is one labeled part of a message send.
// In [view setFrame:f display:YES] the parts are "setFrame" with
// argument f and "display" with argument YES. A unary send like
// [obj count] has a single part with a nil Arg. An empty Label with a
// non-nil Arg encodes the bare-colon form [obj foo:a :b].
type SelPart struct {
	Label  string
	LabPos token.Position
	Arg    Expr // nil only for a unary send
}

// MsgSendExpr represents a message send.
// Examples: [obj count], [dict setObject:v forKey:k], [super init]
type MsgSendExpr struct {
	BaseExpr
	Receiver Expr      // nil when Super is true
	Super    bool      // [super ...] send
	Parts    []SelPart // Selector parts with arguments (at least 1)
	VarArgs  []Expr    // Comma-separated extras after the last part
}

// Selector returns the canonical selector name of the send:
// "count" for a unary send, "setObject:forKey:" for a keyword send.
func (m *MsgSendExpr) Selector() string {
	if len(m.Parts) == 1 && m.Parts[0].Arg == nil {
		return m.Parts[0].Label
	}
	var sb strings.Builder
	for _, p := range m.Parts {
		sb.WriteString(p.Label)
		sb.WriteByte(':')
	}
	return sb.String()
}

// SelectorLit represents a @selector(...) literal.
// Example: @selector(setObject:forKey:)
type SelectorLit struct {
	BaseExpr
	Sel string // Canonical selector name
}

// ProtocolLit represents a @protocol(Name) expression, which looks up
// the named protocol object at run time.
type ProtocolLit struct {
	BaseExpr
	Name string
}

// RefExpr represents a @ref(variable) reference literal.
// The compiled form is a function closing over the variable.
type RefExpr struct {
	BaseExpr
	Target *Ident // Referenced variable
}

// DerefExpr represents @deref(ref).
// Reads and writes through it become calls of the reference function.
type DerefExpr struct {
	BaseExpr
	Ref Expr // Reference expression
}

// AtArrayLit represents an @[...] array literal, built at run time by
// sending arrayWithObjects:count: to CPArray.
// Example: @[1, "two", x]
type AtArrayLit struct {
	BaseExpr
	Elems []Expr
}

// AtDictLit represents an @{...} dictionary literal, built at run time
// by sending dictionaryWithObjectsAndKeys: to CPDictionary.
// Keys and Values are parallel slices.
// Example: @{"name": n, "size": 3}
type AtDictLit struct {
	BaseExpr
	Keys   []Expr
	Values []Expr
}

// -----------------------------------------------------------------------------
// Class and protocol declarations
// -----------------------------------------------------------------------------

// AccessorSpec captures an @accessors attribute of an instance
// variable declaration. The zero value means @accessors with no
// arguments.
type AccessorSpec struct {
	Property string // property= override ("" uses the ivar name)
	Getter   string // getter= override
	Setter   string // setter= override (trailing colon optional in source)
	ReadOnly bool   // readonly: no setter is synthesized
	Copy     bool   // copy: setter stores a copy of the value
	StartPos token.Position
	EndPos   token.Position
}

// Pos returns the position of the @accessors keyword.
func (a *AccessorSpec) Pos() token.Position { return a.StartPos }

// End returns the position after the attribute.
func (a *AccessorSpec) End() token.Position { return a.EndPos }

// IvarDecl represents one instance variable declaration.
// Example: CPString _name @accessors(property=name);
type IvarDecl struct {
	Type      string        // Declared type name as written
	Name      string        // Variable name
	Outlet    bool          // Declared with @outlet
	Accessors *AccessorSpec // nil when no @accessors attribute
	StartPos  token.Position
	EndPos    token.Position
}

// Pos returns the position of the type name.
func (d *IvarDecl) Pos() token.Position { return d.StartPos }

// End returns the position after the declaration.
func (d *IvarDecl) End() token.Position { return d.EndPos }

// MethodParam is one labeled parameter of a method declaration.
// In setObject:(id)obj forKey:(CPString)key the parts are
// "setObject" typed id named obj and "forKey" typed CPString named key.
// A unary method has a single part with an empty Name.
type MethodParam struct {
	Label  string // Selector fragment
	Type   string // Declared parameter type ("" if omitted)
	Name   string // Parameter variable name ("" for a unary method)
	LabPos token.Position
}

// MethodDecl represents a method declaration inside a class or
// protocol body. Protocol methods carry a nil Body.
type MethodDecl struct {
	ClassMethod bool   // true for +, false for -
	ReturnType  string // Declared return type ("" if omitted)
	Action      bool   // Return type declared as @action
	Params      []*MethodParam
	VarArgs     bool // Trailing ", ..." in the declaration
	Body        *BlockStmt
	StartPos    token.Position
	EndPos      token.Position
}

// Pos returns the position of the leading + or -.
func (m *MethodDecl) Pos() token.Position { return m.StartPos }

// End returns the position after the method body or declaration.
func (m *MethodDecl) End() token.Position { return m.EndPos }

// Selector returns the canonical selector name of the method.
func (m *MethodDecl) Selector() string {
	if len(m.Params) == 1 && m.Params[0].Name == "" {
		return m.Params[0].Label
	}
	var sb strings.Builder
	for _, p := range m.Params {
		sb.WriteString(p.Label)
		sb.WriteByte(':')
	}
	return sb.String()
}

// Types returns the declared type signature: the return type followed
// by each parameter type.
func (m *MethodDecl) Types() []string {
	types := make([]string, 0, len(m.Params)+1)
	types = append(types, m.ReturnType)
	if len(m.Params) == 1 && m.Params[0].Name == "" {
		return types
	}
	for _, p := range m.Params {
		types = append(types, p.Type)
	}
	return types
}

// ClassDecl represents an @implementation block, either a class
// definition or a category.
//
// Examples:
//
//	@implementation Person : CPObject <Encoding> { ... } ... @end
//	@implementation Person (Formatting) ... @end
type ClassDecl struct {
	BaseStmt
	Name      string   // Class name
	Super     *Ident   // Superclass (nil for a root class or category)
	Category  string   // Category name ("" for a class definition)
	Protocols []*Ident // Adopted protocols
	Ivars     []*IvarDecl
	Methods   []*MethodDecl
}

func (*ClassDecl) declNode() {}

// IsCategory reports whether the declaration extends an existing class.
func (d *ClassDecl) IsCategory() bool { return d.Category != "" }

// ProtocolDecl represents an @protocol block, or the forward form
// "@protocol Name;" which only introduces the name.
// Methods after @optional land in Optional, all others in Required.
type ProtocolDecl struct {
	BaseStmt
	Name      string
	Forward   bool     // "@protocol Name;" with no body
	Protocols []*Ident // Incorporated protocols
	Required  []*MethodDecl
	Optional  []*MethodDecl
}

func (*ProtocolDecl) declNode() {}

// -----------------------------------------------------------------------------
// Directives
// -----------------------------------------------------------------------------

// ImportDecl represents an @import directive.
// Examples: @import "Cell.j" (local), @import <Foundation/CPObject.j>
type ImportDecl struct {
	BaseStmt
	Path   string // Import path without delimiters
	System bool   // true for <...>, false for "..."
}

func (*ImportDecl) declNode() {}

// ClassForwardDecl represents an @class forward declaration.
// Example: @class CPView, CPWindow;
type ClassForwardDecl struct {
	BaseStmt
	Names []*Ident
}

func (*ClassForwardDecl) declNode() {}

// GlobalDecl represents an @global declaration, naming an identifier
// defined outside the compilation unit.
// Example: @global CPApp
type GlobalDecl struct {
	BaseStmt
	Name *Ident
}

func (*GlobalDecl) declNode() {}

// TypeDefDecl represents an @typedef declaration introducing a type
// name for use in method signatures.
// Example: @typedef CPInteger
type TypeDefDecl struct {
	BaseStmt
	Name *Ident
}

func (*TypeDefDecl) declNode() {}

// -----------------------------------------------------------------------------
// Compile-time checks
// -----------------------------------------------------------------------------

// Ensure superset expressions implement Expr and declarations
// implement Decl.
var (
	_ Expr = (*MsgSendExpr)(nil)
	_ Expr = (*SelectorLit)(nil)
	_ Expr = (*ProtocolLit)(nil)
	_ Expr = (*RefExpr)(nil)
	_ Expr = (*DerefExpr)(nil)
	_ Expr = (*AtArrayLit)(nil)
	_ Expr = (*AtDictLit)(nil)

	_ Decl = (*ClassDecl)(nil)
	_ Decl = (*ProtocolDecl)(nil)
	_ Decl = (*ImportDecl)(nil)
	_ Decl = (*ClassForwardDecl)(nil)
	_ Decl = (*GlobalDecl)(nil)
	_ Decl = (*TypeDefDecl)(nil)
)
