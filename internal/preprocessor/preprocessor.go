// Package preprocessor implements the C-style macro layer that runs
// ahead of parsing.
//
// The Expander wraps a Lexer and yields the same token stream with
// #define directives consumed and macro invocations replaced by their
// expansions. Expansion is recursive: replacement tokens are rescanned
// for further macro names. Every replacement token carries a hide set
// naming the expansions that produced it; re-encountering a macro name
// inside its own hide set is the signature of infinite recursion and is
// reported as a fatal error rather than expanded further.
//
// Tokens produced by expansion report the position of the invocation
// site, so diagnostics and source maps always point at real source text.
package preprocessor

import (
	"strings"

	"github.com/cappuccino/objj-compiler/internal/lexer"
	"github.com/cappuccino/objj-compiler/internal/token"
)

// hideSet is a persistent set of macro names, shared structurally
// between tokens of one expansion.
type hideSet struct {
	name string
	next *hideSet
}

func (h *hideSet) contains(name string) bool {
	for ; h != nil; h = h.next {
		if h.name == name {
			return true
		}
	}
	return false
}

func (h *hideSet) with(name string) *hideSet {
	return &hideSet{name: name, next: h}
}

// ppToken is a lexer token plus expansion bookkeeping.
type ppToken struct {
	lexer.Token
	hide          *hideSet
	fromExpansion bool
}

// Expander produces the preprocessed token stream of one unit.
type Expander struct {
	lex     *lexer.Lexer
	table   *Table
	pending []ppToken // Expansion output, consumed before the lexer
	err     *Error    // First fatal error; the stream ends at EOF once set
	lastPos token.Position
}

// New creates an Expander reading from lex.
// The table seeds the unit's macro definitions and is extended in
// place as directives are processed; pass a Clone to keep the
// original intact.
func New(lex *lexer.Lexer, table *Table) *Expander {
	if table == nil {
		table = NewTable()
	}
	return &Expander{lex: lex, table: table}
}

// Err returns the first fatal preprocessing error, or nil.
func (e *Expander) Err() *Error {
	return e.err
}

// Table returns the unit's macro table, including definitions picked
// up from directives.
func (e *Expander) Table() *Table {
	return e.table
}

// Scan returns the next preprocessed token.
// After a fatal error (or the end of input) it returns EOF forever.
func (e *Expander) Scan() lexer.Token {
	for {
		if e.err != nil {
			return lexer.Token{Type: token.EOF, Pos: e.lastPos}
		}

		t := e.read()

		switch {
		case t.Type == token.EOF || t.Type == token.COMMENT:
			return t.Token

		case t.Type == token.HASH && !t.fromExpansion && t.NewlineBefore:
			e.directive(t)

		case t.Type == token.HASH || t.Type == token.PASTE:
			e.fail(t.Pos, "stray %q in program", t.Value)

		case t.Type == token.NAME:
			m := e.table.Lookup(t.Value)
			if m == nil {
				return t.Token
			}
			if t.hide.contains(t.Value) {
				e.fail(t.Pos, "macro %q expands recursively", t.Value)
				continue
			}
			if m.FunctionLike() {
				if !e.invokes() {
					// Name without an argument list is a plain identifier.
					return t.Token
				}
				args, ok := e.collectArgs(t, m)
				if !ok {
					continue
				}
				e.push(e.substitute(m, args, t))
			} else {
				e.push(e.substitute(m, nil, t))
			}

		default:
			return t.Token
		}
	}
}

// read returns the next token, preferring pending expansion output.
func (e *Expander) read() ppToken {
	if len(e.pending) > 0 {
		t := e.pending[0]
		e.pending = e.pending[1:]
		return t
	}
	lt := e.lex.Scan()
	e.lastPos = lt.Pos
	return ppToken{Token: lt}
}

// unread pushes a token back to be read next.
func (e *Expander) unread(t ppToken) {
	e.pending = append([]ppToken{t}, e.pending...)
}

// push prepends expansion output for rescanning.
func (e *Expander) push(ts []ppToken) {
	if len(ts) == 0 {
		return
	}
	e.pending = append(ts, e.pending...)
}

func (e *Expander) fail(pos token.Position, format string, args ...any) {
	if e.err == nil {
		e.err = errorf(pos, format, args...)
	}
}

// invokes reports whether the next significant token opens an argument
// list, consuming it if so. Comments between the name and '(' are
// dropped, as the preprocessor runs before comment handling matters.
func (e *Expander) invokes() bool {
	var comments []ppToken
	for {
		t := e.read()
		if t.Type == token.COMMENT {
			comments = append(comments, t)
			continue
		}
		if t.Type == token.LPAREN {
			return true
		}
		e.unread(t)
		for i := len(comments) - 1; i >= 0; i-- {
			e.unread(comments[i])
		}
		return false
	}
}

// collectArgs gathers the invocation arguments after the consumed '('.
// Arguments are raw token sequences split on top-level commas; nested
// brackets of any kind protect their commas. The collected tokens keep
// their own hide sets so sibling invocations of the same macro expand
// independently.
func (e *Expander) collectArgs(inv ppToken, m *Macro) ([][]ppToken, bool) {
	var args [][]ppToken
	var cur []ppToken
	started := false
	depth := 0

	for {
		t := e.read()
		switch t.Type {
		case token.EOF:
			e.fail(inv.Pos, "unterminated invocation of macro %q", m.Name)
			return nil, false

		case token.COMMENT:
			continue

		case token.LPAREN, token.LBRACKET, token.LBRACE, token.AT_LBRACKET, token.AT_LBRACE:
			depth++

		case token.RPAREN:
			if depth == 0 {
				if started {
					args = append(args, cur)
				}
				return e.checkArity(inv, m, args)
			}
			depth--

		case token.RBRACKET, token.RBRACE:
			if depth > 0 {
				depth--
			}

		case token.COMMA:
			if depth == 0 {
				args = append(args, cur)
				cur = nil
				started = true
				continue
			}
		}
		cur = append(cur, t)
		started = true
	}
}

func (e *Expander) checkArity(inv ppToken, m *Macro, args [][]ppToken) ([][]ppToken, bool) {
	fixed := len(m.Params)
	if m.Variadic {
		if len(args) < fixed {
			e.fail(inv.Pos, "macro %q expects at least %d arguments, got %d", m.Name, fixed, len(args))
			return nil, false
		}
		return args, true
	}
	if len(args) != fixed {
		e.fail(inv.Pos, "macro %q expects %d arguments, got %d", m.Name, fixed, len(args))
		return nil, false
	}
	return args, true
}

// substitute builds the replacement tokens for one invocation.
//
// Plain body tokens take the invocation position and a hide set
// extended with the macro's own name. Parameter references are
// replaced by the collected argument tokens, which keep their original
// positions and hide sets. The first replacement token inherits the
// invocation's whitespace flags so the surrounding line keeps its
// shape.
func (e *Expander) substitute(m *Macro, args [][]ppToken, inv ppToken) []ppToken {
	hide := inv.hide.with(m.Name)
	var out []ppToken

	argFor := func(name string) ([]ppToken, bool) {
		idx := m.paramIndex(name)
		if idx < 0 {
			return nil, false
		}
		if idx == len(m.Params) {
			return joinVariadic(args[len(m.Params):]), true
		}
		return args[idx], true
	}

	// piece produces the replacement tokens for a single body token.
	piece := func(bt lexer.Token) []ppToken {
		if bt.Type == token.NAME && m.FunctionLike() {
			if arg, ok := argFor(bt.Value); ok {
				ts := make([]ppToken, len(arg))
				copy(ts, arg)
				if len(ts) > 0 {
					ts[0].SpaceBefore = bt.SpaceBefore
					ts[0].NewlineBefore = false
				}
				for i := range ts {
					ts[i].fromExpansion = true
				}
				return ts
			}
		}
		nt := bt
		nt.Pos = inv.Pos
		nt.NewlineBefore = false
		return []ppToken{{Token: nt, hide: hide, fromExpansion: true}}
	}

	for i := 0; i < len(m.Body); i++ {
		bt := m.Body[i]

		// '#param' stringifies the argument tokens.
		if bt.Type == token.HASH && m.FunctionLike() && i+1 < len(m.Body) {
			if arg, ok := argFor(m.Body[i+1].Value); ok && m.Body[i+1].Type == token.NAME {
				st := lexer.Token{
					Type:        token.STRING,
					Pos:         inv.Pos,
					Value:       lexer.Quote(spell(arg)),
					SpaceBefore: bt.SpaceBefore,
				}
				out = append(out, ppToken{Token: st, hide: hide, fromExpansion: true})
				i++
				continue
			}
		}

		// 'a ## b' pastes adjacent tokens into one. Parameters that
		// received empty arguments paste to nothing.
		if bt.Type == token.PASTE {
			rhs := piece(m.Body[i+1])
			i++
			if len(rhs) == 0 {
				continue
			}
			if len(out) == 0 {
				out = append(out, rhs...)
				continue
			}
			lhs := out[len(out)-1]
			merged, ok := e.paste(lhs, rhs[0], inv.Pos)
			if !ok {
				return nil
			}
			merged.hide = hide
			merged.fromExpansion = true
			out[len(out)-1] = merged
			out = append(out, rhs[1:]...)
			continue
		}

		out = append(out, piece(bt)...)
	}

	if len(out) > 0 {
		out[0].SpaceBefore = inv.SpaceBefore
		out[0].NewlineBefore = inv.NewlineBefore
	}
	return out
}

// paste re-lexes the concatenated spelling of two tokens.
// The result must be exactly one token.
func (e *Expander) paste(lhs, rhs ppToken, pos token.Position) (ppToken, bool) {
	text := lhs.Value + rhs.Value
	lx := lexer.NewFromString(text)
	first := lx.Scan()
	rest := lx.Scan()
	if first.Type == token.ILLEGAL || rest.Type != token.EOF {
		e.fail(pos, "pasting %q and %q does not form a single token", lhs.Value, rhs.Value)
		return ppToken{}, false
	}
	merged := lhs
	merged.Type = first.Type
	merged.Value = first.Value
	merged.Pos = pos
	return merged, true
}

// joinVariadic flattens the trailing arguments back into a
// comma-separated token sequence for __VA_ARGS__.
func joinVariadic(rest [][]ppToken) []ppToken {
	var out []ppToken
	for i, arg := range rest {
		if i > 0 {
			out = append(out, ppToken{Token: lexer.Token{Type: token.COMMA, Value: ","}})
		}
		out = append(out, arg...)
	}
	return out
}

// spell reconstructs the source spelling of a token sequence, keeping
// single spaces where the original had separation.
func spell(ts []ppToken) string {
	var sb strings.Builder
	for i, t := range ts {
		if i > 0 && t.SpaceBefore {
			sb.WriteByte(' ')
		}
		sb.WriteString(t.Value)
	}
	return sb.String()
}

// directive processes a '#' occurring at the start of a line.
func (e *Expander) directive(hash ppToken) {
	t := e.read()
	if t.NewlineBefore || t.Type == token.EOF {
		// A lone '#' is a null directive.
		e.unread(t)
		return
	}
	if t.Type != token.NAME {
		e.fail(t.Pos, "expected directive name after '#'")
		return
	}
	if t.Value != "define" {
		e.fail(t.Pos, "unknown preprocessor directive #%s", t.Value)
		return
	}
	e.define(hash.Pos)
}

// define parses '#define NAME[(params)] body...' up to the end of the
// logical line.
func (e *Expander) define(pos token.Position) {
	nameTok := e.read()
	if nameTok.NewlineBefore || nameTok.Type != token.NAME {
		if nameTok.Type.IsKeyword() && !nameTok.NewlineBefore {
			e.fail(nameTok.Pos, "macro name %q is a reserved word", nameTok.Value)
		} else {
			e.fail(nameTok.Pos, "expected macro name after #define")
		}
		return
	}

	m := &Macro{Name: nameTok.Value, Pos: nameTok.Pos}

	next := e.read()
	if next.Type == token.LPAREN && !next.SpaceBefore && !next.NewlineBefore {
		if !e.defineParams(m) {
			return
		}
	} else {
		e.unread(next)
	}

	// Body: everything up to the next line break.
	for {
		t := e.read()
		if t.Type == token.EOF || t.NewlineBefore {
			e.unread(t)
			break
		}
		if t.Type == token.COMMENT {
			continue
		}
		if t.Type == token.ILLEGAL {
			e.fail(t.Pos, "in macro %q: %s", m.Name, t.Value)
			return
		}
		m.Body = append(m.Body, t.Token)
	}

	if !e.validateBody(m) {
		return
	}
	if err := e.table.Define(m); err != nil {
		e.err = err
	}
}

// defineParams parses the parameter list after the consumed '('.
func (e *Expander) defineParams(m *Macro) bool {
	m.Params = []string{}
	for {
		t := e.read()
		switch {
		case t.NewlineBefore || t.Type == token.EOF:
			e.fail(m.Pos, "unterminated parameter list of macro %q", m.Name)
			return false

		case t.Type == token.RPAREN:
			return true

		case t.Type == token.ELLIPSIS:
			if m.Variadic {
				e.fail(t.Pos, "macro %q has more than one '...'", m.Name)
				return false
			}
			m.Variadic = true

		case t.Type == token.NAME:
			if m.Variadic {
				e.fail(t.Pos, "parameter after '...' in macro %q", m.Name)
				return false
			}
			for _, p := range m.Params {
				if p == t.Value {
					e.fail(t.Pos, "duplicate parameter %q in macro %q", t.Value, m.Name)
					return false
				}
			}
			m.Params = append(m.Params, t.Value)

		case t.Type == token.COMMA:
			// Separator

		default:
			e.fail(t.Pos, "unexpected %q in parameter list of macro %q", t.Value, m.Name)
			return false
		}
	}
}

// validateBody rejects the operator placements that can never expand.
func (e *Expander) validateBody(m *Macro) bool {
	for i, t := range m.Body {
		if t.Type == token.PASTE && (i == 0 || i == len(m.Body)-1) {
			e.fail(t.Pos, "'##' cannot appear at either end of macro %q", m.Name)
			return false
		}
		if t.Type == token.HASH && m.FunctionLike() {
			if i+1 >= len(m.Body) || m.Body[i+1].Type != token.NAME || m.paramIndex(m.Body[i+1].Value) < 0 {
				e.fail(t.Pos, "'#' is not followed by a parameter of macro %q", m.Name)
				return false
			}
		}
	}
	return true
}
