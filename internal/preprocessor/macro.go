package preprocessor

import (
	"sort"
	"strings"

	"github.com/coregx/coregex"

	"github.com/cappuccino/objj-compiler/internal/lexer"
	"github.com/cappuccino/objj-compiler/internal/token"
)

// Macro is a single preprocessor definition.
// A Macro is immutable once defined; redefinition with an identical
// body is a no-op and any other redefinition is a fatal error.
type Macro struct {
	Name     string
	Params   []string       // Parameter names; nil for object-like macros
	Variadic bool           // Final ... parameter present
	Body     []lexer.Token  // Replacement tokens (EOF excluded)
	Pos      token.Position // Definition site
}

// FunctionLike returns true if the macro takes an argument list.
// A function-like macro is only expanded when its name is directly
// followed by '('.
func (m *Macro) FunctionLike() bool {
	return m.Params != nil || m.Variadic
}

// paramIndex returns the position of name in the parameter list, or -1.
// __VA_ARGS__ maps to the collected variadic arguments.
func (m *Macro) paramIndex(name string) int {
	for i, p := range m.Params {
		if p == name {
			return i
		}
	}
	if m.Variadic && name == "__VA_ARGS__" {
		return len(m.Params)
	}
	return -1
}

// equal reports whether two macros have the same parameters and the
// same replacement tokens with the same spelling and spacing.
func (m *Macro) equal(other *Macro) bool {
	if m.Variadic != other.Variadic || len(m.Params) != len(other.Params) {
		return false
	}
	if (m.Params == nil) != (other.Params == nil) {
		return false
	}
	for i := range m.Params {
		if m.Params[i] != other.Params[i] {
			return false
		}
	}
	if len(m.Body) != len(other.Body) {
		return false
	}
	for i := range m.Body {
		a, b := m.Body[i], other.Body[i]
		if a.Type != b.Type || a.Value != b.Value {
			return false
		}
		if i > 0 && a.SpaceBefore != b.SpaceBefore {
			return false
		}
	}
	return true
}

// Table holds the macro definitions visible to a compilation unit.
// Definitions persist for the remainder of the unit; there is no way
// to remove one.
type Table struct {
	macros map[string]*Macro
}

// NewTable creates an empty macro table.
func NewTable() *Table {
	return &Table{macros: make(map[string]*Macro)}
}

// Lookup returns the macro with the given name, or nil.
func (t *Table) Lookup(name string) *Macro {
	return t.macros[name]
}

// Define adds a macro to the table.
// Defining the same name with an identical body is a no-op.
// Defining it with a different body is a fatal error.
func (t *Table) Define(m *Macro) *Error {
	if prev, ok := t.macros[m.Name]; ok {
		if prev.equal(m) {
			return nil
		}
		return errorf(m.Pos, "macro %q redefined with a different body", m.Name)
	}
	t.macros[m.Name] = m
	return nil
}

// Len returns the number of definitions in the table.
func (t *Table) Len() int {
	return len(t.macros)
}

// Names returns the defined macro names in sorted order.
func (t *Table) Names() []string {
	names := make([]string, 0, len(t.macros))
	for name := range t.macros {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Clone returns an independent copy of the table.
// Compiling a unit never mutates the table it was handed, so one
// prefix table can seed any number of units.
func (t *Table) Clone() *Table {
	c := NewTable()
	for name, m := range t.macros {
		c.macros[name] = m
	}
	return c
}

// macroNameRe validates macro names in definition specs.
var macroNameRe = mustCompile(`^[A-Za-z_$][A-Za-z0-9_$]*$`)

func mustCompile(pattern string) *coregex.Regexp {
	re, err := coregex.Compile(pattern)
	if err != nil {
		panic(err)
	}
	return re
}

// ParseSpec parses a command-line style macro definition:
//
//	NAME            defines NAME as 1
//	NAME=body       object-like macro
//	NAME(a,b)=body  function-like macro
//	NAME(a,...)=body  variadic macro
//
// The body is tokenized with the ordinary lexer.
func ParseSpec(spec string) (*Macro, *Error) {
	name := spec
	params := ""
	body := ""
	hasParams := false
	hasBody := false

	if i := strings.IndexByte(spec, '('); i >= 0 && (strings.IndexByte(spec, '=') < 0 || i < strings.IndexByte(spec, '=')) {
		j := strings.IndexByte(spec, ')')
		if j < i {
			return nil, errorf(token.NoPos, "malformed macro definition %q", spec)
		}
		name = spec[:i]
		params = spec[i+1 : j]
		hasParams = true
		rest := spec[j+1:]
		if rest != "" {
			if rest[0] != '=' {
				return nil, errorf(token.NoPos, "malformed macro definition %q", spec)
			}
			body = rest[1:]
			hasBody = true
		}
	} else if i := strings.IndexByte(spec, '='); i >= 0 {
		name = spec[:i]
		body = spec[i+1:]
		hasBody = true
	}

	if !macroNameRe.MatchString(name) {
		return nil, errorf(token.NoPos, "invalid macro name %q", name)
	}

	m := &Macro{Name: name}

	if hasParams {
		m.Params = []string{}
		if strings.TrimSpace(params) != "" {
			for _, p := range strings.Split(params, ",") {
				p = strings.TrimSpace(p)
				if p == "..." {
					m.Variadic = true
					continue
				}
				if m.Variadic || !macroNameRe.MatchString(p) {
					return nil, errorf(token.NoPos, "invalid macro parameter %q in %q", p, spec)
				}
				m.Params = append(m.Params, p)
			}
		}
	}

	if !hasBody && !hasParams {
		body = "1" // bare NAME defines it as 1
	}

	lex := lexer.NewFromString(body)
	for {
		t := lex.Scan()
		if t.Type == token.EOF {
			break
		}
		if t.Type == token.ILLEGAL {
			return nil, errorf(token.NoPos, "invalid token in body of macro %q: %s", name, t.Value)
		}
		m.Body = append(m.Body, t)
	}
	return m, nil
}
