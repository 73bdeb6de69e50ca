package semantic

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/cappuccino/objj-compiler/internal/ast"
	"github.com/cappuccino/objj-compiler/internal/token"
)

// MethodInfo holds resolved information about one method of a class
// or protocol.
type MethodInfo struct {
	Selector    string   // Canonical selector name
	ClassMethod bool     // true for +, false for -
	Types       []string // Return type followed by parameter types
	Pos         token.Position
	Decl        *ast.MethodDecl // nil for synthesized accessors

	// Synthesized accessor fields.
	Synthesized bool   // Generated from an @accessors attribute
	Ivar        string // Backing instance variable
	Setter      bool   // true for the setter, false for the getter
	Copy        bool   // Setter stores a copy of the value
}

// IvarInfo holds resolved information about one instance variable.
type IvarInfo struct {
	Name      string
	Type      string // Declared type name as written
	Outlet    bool
	Accessors *ast.AccessorSpec // nil when no @accessors attribute
	Pos       token.Position
}

// ClassInfo holds resolved information about a class definition or a
// category.
type ClassInfo struct {
	Name      string
	SuperName string // "" for a root class or category

	// Super is the superclass declared in the same unit, or the
	// extended class for a category. nil when the superclass is a
	// root class or unknown.
	Super *ClassInfo

	Category  string   // "" for a class definition
	Protocols []string // Adopted protocols in declaration order
	Ivars     []*IvarInfo
	Pos       token.Position
	Decl      *ast.ClassDecl

	// Methods keyed by selector. Instance and class methods are
	// separate namespaces.
	InstanceMethods map[string]*MethodInfo
	ClassMethods    map[string]*MethodInfo

	// Synthesized accessor methods in instance variable order.
	Synthesized []*MethodInfo

	ivarsByName map[string]*IvarInfo
}

// newClassInfo creates a class record for a declaration.
func newClassInfo(decl *ast.ClassDecl) *ClassInfo {
	return &ClassInfo{
		Name:            decl.Name,
		Category:        decl.Category,
		Pos:             decl.Pos(),
		Decl:            decl,
		InstanceMethods: make(map[string]*MethodInfo),
		ClassMethods:    make(map[string]*MethodInfo),
		ivarsByName:     make(map[string]*IvarInfo),
	}
}

// IsCategory reports whether the record describes a category.
func (c *ClassInfo) IsCategory() bool { return c.Category != "" }

// DefineIvar adds an instance variable to the class.
// Returns false if a variable with that name already exists.
func (c *ClassInfo) DefineIvar(ivar *IvarInfo) bool {
	if _, exists := c.ivarsByName[ivar.Name]; exists {
		return false
	}
	c.ivarsByName[ivar.Name] = ivar
	c.Ivars = append(c.Ivars, ivar)
	return true
}

// LookupIvar searches for an instance variable in this class only.
func (c *ClassInfo) LookupIvar(name string) (*IvarInfo, bool) {
	ivar, ok := c.ivarsByName[name]
	return ivar, ok
}

// FindIvar searches for an instance variable in this class and its
// superclass chain. Returns the variable and the class declaring it.
func (c *ClassInfo) FindIvar(name string) (*IvarInfo, *ClassInfo, bool) {
	for class := c; class != nil; class = class.Super {
		if ivar, ok := class.ivarsByName[name]; ok {
			return ivar, class, true
		}
	}
	return nil, nil, false
}

// DefineMethod adds a method to the class.
// Returns false if the selector is already taken in its namespace.
func (c *ClassInfo) DefineMethod(m *MethodInfo) bool {
	methods := c.InstanceMethods
	if m.ClassMethod {
		methods = c.ClassMethods
	}
	if _, exists := methods[m.Selector]; exists {
		return false
	}
	methods[m.Selector] = m
	if m.Synthesized {
		c.Synthesized = append(c.Synthesized, m)
	}
	return true
}

// LookupMethod searches for a method by selector in the given
// namespace of this class only.
func (c *ClassInfo) LookupMethod(selector string, classMethod bool) (*MethodInfo, bool) {
	methods := c.InstanceMethods
	if classMethod {
		methods = c.ClassMethods
	}
	m, ok := methods[selector]
	return m, ok
}

// ClassTable records the class definitions of a compilation unit in
// declaration order.
type ClassTable struct {
	classes map[string]*ClassInfo
	names   []string
}

// NewClassTable creates an empty class table.
func NewClassTable() *ClassTable {
	return &ClassTable{classes: make(map[string]*ClassInfo)}
}

// Define adds a class to the table.
// Returns false if a class with that name already exists.
func (t *ClassTable) Define(info *ClassInfo) bool {
	if _, exists := t.classes[info.Name]; exists {
		return false
	}
	t.classes[info.Name] = info
	t.names = append(t.names, info.Name)
	return true
}

// Lookup searches for a class by name.
func (t *ClassTable) Lookup(name string) (*ClassInfo, bool) {
	info, ok := t.classes[name]
	return info, ok
}

// Names returns the class names in declaration order.
func (t *ClassTable) Names() []string {
	return t.names
}

// Len returns the number of classes in the table.
func (t *ClassTable) Len() int {
	return len(t.names)
}

// ForEach iterates over the classes in declaration order.
func (t *ClassTable) ForEach(fn func(info *ClassInfo)) {
	for _, name := range t.names {
		fn(t.classes[name])
	}
}

// ProtocolInfo holds resolved information about a protocol.
type ProtocolInfo struct {
	Name      string
	Forward   bool     // Declared only as "@protocol Name;"
	Protocols []string // Incorporated protocols in declaration order
	Required  []*MethodInfo
	Optional  []*MethodInfo
	Pos       token.Position
}

// DefaultRootClasses are the class names assumed to exist outside
// the compilation unit when no explicit list is configured.
var DefaultRootClasses = []string{"CPObject", "NSObject", "Object"}

// predeclared lists identifiers that exist in every JavaScript
// environment. They resolve without declaration and are never
// reported as unknown classes.
var predeclared = map[string]bool{
	"Object":         true,
	"Array":          true,
	"String":         true,
	"Number":         true,
	"Boolean":        true,
	"Date":           true,
	"RegExp":         true,
	"Function":       true,
	"Math":           true,
	"JSON":           true,
	"Error":          true,
	"EvalError":      true,
	"RangeError":     true,
	"ReferenceError": true,
	"SyntaxError":    true,
	"TypeError":      true,
	"URIError":       true,
	"undefined":      true,
	"NaN":            true,
	"Infinity":       true,
	"arguments":      true,
}

// AccessorNames derives the property name, getter selector and
// setter selector for an instance variable with an @accessors
// attribute. The setter selector is "" when the attribute is
// readonly.
func AccessorNames(ivar *IvarInfo) (property, getter, setter string) {
	spec := ivar.Accessors
	property = spec.Property
	if property == "" {
		property = ivar.Name
	}
	getter = spec.Getter
	if getter == "" {
		getter = property
	}
	if spec.ReadOnly {
		return property, getter, ""
	}
	setter = spec.Setter
	if setter == "" {
		setter = "set" + capitalize(property)
	}
	if !strings.HasSuffix(setter, ":") {
		setter += ":"
	}
	return property, getter, setter
}

// capitalize upper-cases the first rune of s.
func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}
