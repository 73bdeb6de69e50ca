package semantic

import (
	"fmt"

	"github.com/cappuccino/objj-compiler/internal/ast"
	"github.com/cappuccino/objj-compiler/internal/token"
)

// LocalKind defines how a name entered its scope.
type LocalKind int

const (
	LocalVar      LocalKind = iota // var declaration
	LocalParam                     // Function or method parameter
	LocalFunc                      // Function declaration or named function expression
	LocalCatch                     // Catch clause parameter
	LocalImplicit                  // Created by assignment without var
)

// String returns a human-readable name for the local kind.
func (k LocalKind) String() string {
	switch k {
	case LocalVar:
		return "var"
	case LocalParam:
		return "param"
	case LocalFunc:
		return "function"
	case LocalCatch:
		return "catch"
	case LocalImplicit:
		return "implicit"
	default:
		return "unknown"
	}
}

// Local holds information about a name declared in a scope.
type Local struct {
	Name string
	Kind LocalKind
	Pos  token.Position // Declaration position
	Used bool           // Whether the name is referenced (for warnings)
}

// Scope tracks the names of one variable scope. JavaScript scoping
// is function-level, so scopes exist for the program, for function
// expressions and declarations, and for method bodies. Each scope
// also owns the receiver temporaries hoisted out of its message
// sends.
type Scope struct {
	parent *Scope
	owner  ast.Node // *ast.Program, *ast.FuncExpr, *ast.FuncDecl or *ast.MethodDecl
	name   string   // Scope name for diagnostics
	locals map[string]*Local
	order  []string // Declaration order

	temps   []string // Receiver temporaries in allocation order
	tempSeq int
}

// NewScope creates a new scope with the given parent.
// Pass nil for the program scope.
func NewScope(parent *Scope, owner ast.Node, name string) *Scope {
	return &Scope{
		parent: parent,
		owner:  owner,
		name:   name,
		locals: make(map[string]*Local),
	}
}

// Name returns the scope name.
func (s *Scope) Name() string {
	return s.name
}

// Parent returns the parent scope, or nil for the program scope.
func (s *Scope) Parent() *Scope {
	return s.parent
}

// Owner returns the AST node the scope belongs to.
func (s *Scope) Owner() ast.Node {
	return s.owner
}

// Root returns the program scope at the top of the chain.
func (s *Scope) Root() *Scope {
	for s.parent != nil {
		s = s.parent
	}
	return s
}

// Define adds a new name to the current scope.
// Returns the created local, or nil if the name already exists.
func (s *Scope) Define(name string, kind LocalKind, pos token.Position) *Local {
	if _, exists := s.locals[name]; exists {
		return nil
	}
	local := &Local{
		Name: name,
		Kind: kind,
		Pos:  pos,
	}
	s.locals[name] = local
	s.order = append(s.order, name)
	return local
}

// Lookup searches for a name in this scope and all parent scopes,
// marking it used. Returns the local and true if found.
func (s *Scope) Lookup(name string) (*Local, bool) {
	for scope := s; scope != nil; scope = scope.parent {
		if local, ok := scope.locals[name]; ok {
			local.Used = true
			return local, true
		}
	}
	return nil, false
}

// LookupLocal searches for a name only in the current scope without
// marking it used.
func (s *Scope) LookupLocal(name string) (*Local, bool) {
	local, ok := s.locals[name]
	return local, ok
}

// ForEach iterates over the locals of this scope in declaration
// order.
func (s *Scope) ForEach(fn func(local *Local)) {
	for _, name := range s.order {
		fn(s.locals[name])
	}
}

// Count returns the number of names in the current scope.
func (s *Scope) Count() int {
	return len(s.locals)
}

// AllocTemp reserves the next receiver temporary of this scope.
func (s *Scope) AllocTemp() string {
	s.tempSeq++
	name := fmt.Sprintf("___r%d", s.tempSeq)
	s.temps = append(s.temps, name)
	return name
}

// Temps returns the receiver temporaries in allocation order.
func (s *Scope) Temps() []string {
	return s.temps
}
