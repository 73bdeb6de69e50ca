package codegen

import (
	"strings"

	"github.com/cappuccino/objj-compiler/internal/ast"
	"github.com/cappuccino/objj-compiler/internal/token"
)

// opText maps operator tokens to their source text.
var opText = map[token.Token]string{
	token.ADD: "+", token.SUB: "-", token.MUL: "*", token.DIV: "/", token.MOD: "%",

	token.ADD_ASSIGN: "+=", token.SUB_ASSIGN: "-=", token.MUL_ASSIGN: "*=",
	token.DIV_ASSIGN: "/=", token.MOD_ASSIGN: "%=", token.AND_ASSIGN: "&=",
	token.OR_ASSIGN: "|=", token.XOR_ASSIGN: "^=", token.SHL_ASSIGN: "<<=",
	token.SHR_ASSIGN: ">>=", token.USHR_ASSIGN: ">>>=",

	token.ASSIGN: "=", token.EQUALS: "==", token.STRICT_EQUALS: "===",
	token.NOT_EQUALS: "!=", token.STRICT_NOT_EQUALS: "!==",
	token.LESS: "<", token.LTE: "<=", token.GREATER: ">", token.GTE: ">=",

	token.AND: "&&", token.OR: "||", token.NOT: "!",
	token.BIT_AND: "&", token.BIT_OR: "|", token.BIT_XOR: "^", token.BIT_NOT: "~",
	token.SHL: "<<", token.SHR: ">>", token.USHR: ">>>",

	token.INCR: "++", token.DECR: "--",

	token.IN: "in", token.INSTANCEOF: "instanceof",
	token.TYPEOF: "typeof", token.DELETE: "delete", token.VOID: "void",
}

func operatorText(op token.Token) string {
	s, ok := opText[op]
	if !ok {
		failf("no source text for operator token %d", op)
	}
	return s
}

// wordOperator reports operators written as keywords, which need a
// space before their operand.
func wordOperator(op token.Token) bool {
	switch op {
	case token.TYPEOF, token.DELETE, token.VOID, token.IN, token.INSTANCEOF:
		return true
	}
	return false
}

func (g *Generator) emitExpr(expr ast.Expr) {
	if expr == nil {
		failf("cannot generate a nil expression")
	}
	p := g.p
	p.mark(expr.Pos())
	switch e := expr.(type) {
	case *ast.NumLit:
		p.write(e.Raw)

	case *ast.StrLit:
		p.write(e.Raw)

	case *ast.RegexLit:
		p.write("/" + e.Pattern + "/" + e.Flags)

	case *ast.BoolLit:
		if e.Value {
			p.write("true")
		} else {
			p.write("false")
		}

	case *ast.NullLit:
		p.write("null")

	case *ast.Ident:
		g.emitIdent(e)

	case *ast.ThisExpr:
		p.write("this")

	case *ast.MemberExpr:
		g.emitExpr(e.Object)
		if e.Computed {
			p.write("[")
			g.emitExpr(e.Property)
			p.write("]")
		} else {
			p.write(".")
			g.emitExpr(e.Property)
		}

	case *ast.UnaryExpr:
		g.emitUnary(e)

	case *ast.BinaryExpr:
		g.emitExpr(e.Left)
		p.write(" " + operatorText(e.Op) + " ")
		g.emitExpr(e.Right)

	case *ast.TernaryExpr:
		g.emitExpr(e.Cond)
		p.write(" ? ")
		g.emitExpr(e.Then)
		p.write(" : ")
		g.emitExpr(e.Else)

	case *ast.AssignExpr:
		g.emitAssign(e)

	case *ast.SeqExpr:
		for i, sub := range e.Exprs {
			if i > 0 {
				p.write(", ")
			}
			g.emitExpr(sub)
		}

	case *ast.GroupExpr:
		p.write("(")
		g.emitExpr(e.Expr)
		p.write(")")

	case *ast.CallExpr:
		g.emitExpr(e.Callee)
		g.emitArgs(e.Args)

	case *ast.NewExpr:
		p.write("new ")
		g.emitExpr(e.Callee)
		if e.Parens {
			g.emitArgs(e.Args)
		}

	case *ast.FuncExpr:
		p.write("function")
		if e.Name != "" {
			p.write(" " + e.Name)
		}
		g.emitParams(e.Params)
		p.write(" ")
		g.emitFuncBody(e, e.Body)

	case *ast.ArrayLit:
		p.write("[")
		for i, el := range e.Elems {
			if i > 0 {
				p.write(", ")
			}
			if el != nil {
				g.emitExpr(el)
			}
		}
		p.write("]")

	case *ast.ObjectLit:
		g.emitObject(e)

	case *ast.MsgSendExpr:
		if g.opts.Beautify {
			g.beautifySend(e)
		} else {
			g.lowerSend(e)
		}

	case *ast.SelectorLit:
		if g.opts.Beautify {
			p.write("@selector(" + e.Sel + ")")
		} else {
			p.write(`sel_getUid("` + e.Sel + `")`)
		}

	case *ast.ProtocolLit:
		if g.opts.Beautify {
			p.write("@protocol(" + e.Name + ")")
		} else {
			p.write(`objj_getProtocol("` + e.Name + `")`)
		}

	case *ast.RefExpr:
		if g.opts.Beautify {
			p.write("@ref(" + e.Target.Name + ")")
		} else {
			g.lowerRef(e)
		}

	case *ast.DerefExpr:
		if g.opts.Beautify {
			p.write("@deref(")
			g.emitExpr(e.Ref)
			p.write(")")
		} else {
			g.emitCallee(e.Ref)
			p.write("()")
		}

	case *ast.AtArrayLit:
		g.emitAtArray(e)

	case *ast.AtDictLit:
		g.emitAtDict(e)

	default:
		failf("cannot generate code for %T", expr)
	}
}

// emitIdent writes an identifier, rewriting instance variable
// references as properties of self in plain mode.
func (g *Generator) emitIdent(id *ast.Ident) {
	if !g.opts.Beautify && g.info.IvarClass(id) != nil {
		g.p.write("self." + id.Name)
		return
	}
	g.p.write(id.Name)
}

func (g *Generator) emitUnary(e *ast.UnaryExpr) {
	p := g.p
	if deref, ok := e.Expr.(*ast.DerefExpr); ok && !g.opts.Beautify &&
		(e.Op == token.INCR || e.Op == token.DECR) {
		g.lowerDerefIncDec(deref, e.Op, e.Post)
		return
	}
	if e.Post {
		g.emitExpr(e.Expr)
		p.write(operatorText(e.Op))
		return
	}
	p.write(operatorText(e.Op))
	if unarySpace(e.Op, e.Expr) {
		p.write(" ")
	}
	g.emitExpr(e.Expr)
}

// unarySpace reports whether a space must separate a prefix operator
// from its operand, either because the operator is a word or because
// the juxtaposition would change the token (- -x, + +x).
func unarySpace(op token.Token, operand ast.Expr) bool {
	if wordOperator(op) {
		return true
	}
	inner, ok := operand.(*ast.UnaryExpr)
	if !ok || inner.Post {
		return false
	}
	switch op {
	case token.SUB:
		return inner.Op == token.SUB || inner.Op == token.DECR
	case token.ADD:
		return inner.Op == token.ADD || inner.Op == token.INCR
	}
	return false
}

func (g *Generator) emitAssign(e *ast.AssignExpr) {
	if deref, ok := e.Left.(*ast.DerefExpr); ok && !g.opts.Beautify {
		g.lowerDerefAssign(deref, e)
		return
	}
	g.emitExpr(e.Left)
	g.p.write(" " + operatorText(e.Op) + " ")
	g.emitExpr(e.Right)
}

func (g *Generator) emitArgs(args []ast.Expr) {
	g.p.write("(")
	for i, arg := range args {
		if i > 0 {
			g.p.write(", ")
		}
		g.emitExpr(arg)
	}
	g.p.write(")")
}

func (g *Generator) emitObject(e *ast.ObjectLit) {
	p := g.p
	if len(e.Props) == 0 {
		p.write("{}")
		return
	}
	p.write("{")
	for i, prop := range e.Props {
		if i > 0 {
			p.write(", ")
		}
		switch prop.Kind {
		case ast.PropGet, ast.PropSet:
			fn, ok := prop.Value.(*ast.FuncExpr)
			if !ok {
				failf("accessor property value is %T, not a function", prop.Value)
			}
			p.write(prop.Kind.String() + " ")
			g.emitPropertyKey(prop.Key)
			g.emitParams(fn.Params)
			p.write(" ")
			g.emitFuncBody(fn, fn.Body)
		default:
			g.emitPropertyKey(prop.Key)
			p.write(": ")
			g.emitExpr(prop.Value)
		}
	}
	p.write("}")
}

// emitPropertyKey writes an object literal key without identifier
// rewriting; keys are names, not references.
func (g *Generator) emitPropertyKey(key ast.Expr) {
	switch k := key.(type) {
	case *ast.Ident:
		g.p.write(k.Name)
	case *ast.StrLit:
		g.p.write(k.Raw)
	case *ast.NumLit:
		g.p.write(k.Raw)
	default:
		failf("cannot generate object key %T", key)
	}
}

// emitCallee emits an expression in call position, parenthesizing
// forms that would not bind as the callee.
func (g *Generator) emitCallee(e ast.Expr) {
	switch e := e.(type) {
	case *ast.Ident, *ast.MemberExpr, *ast.CallExpr, *ast.GroupExpr,
		*ast.ThisExpr, *ast.DerefExpr, *ast.MsgSendExpr:
		g.emitExpr(e)
	case *ast.NewExpr:
		if e.Parens {
			g.emitExpr(e)
			return
		}
		g.p.write("(")
		g.emitExpr(e)
		g.p.write(")")
	default:
		g.p.write("(")
		g.emitExpr(e)
		g.p.write(")")
	}
}

// -----------------------------------------------------------------------------
// Superset expression lowering
// -----------------------------------------------------------------------------

// lowerSend emits the dispatch for one message send. Class receivers
// dispatch directly; other receivers are guarded against null, with
// the receiver temporary chosen during annotation substituted when
// the expression cannot be evaluated twice.
func (g *Generator) lowerSend(send *ast.MsgSendExpr) {
	p := g.p
	if send.Super {
		g.lowerSuperSend(send)
		return
	}
	si := g.info.Send(send)
	switch {
	case si.ClassReceiver:
		p.write("objj_msgSend(")
		g.emitExpr(send.Receiver)
		g.emitSendTail(send)

	case si.Temp != "":
		p.write("(" + si.Temp + " = ")
		g.emitExpr(send.Receiver)
		p.write(", " + si.Temp + " == null ? null : objj_msgSend(" + si.Temp)
		g.emitSendTail(send)
		p.write(")")

	default:
		p.write("(")
		g.emitExpr(send.Receiver)
		p.write(" == null ? null : objj_msgSend(")
		g.emitExpr(send.Receiver)
		g.emitSendTail(send)
		p.write(")")
	}
}

// lowerSuperSend dispatches through the superclass of the class being
// generated. Instance methods resolve the class by name, class
// methods through the metaclass.
func (g *Generator) lowerSuperSend(send *ast.MsgSendExpr) {
	if g.class == nil {
		failf("super send outside of a method")
	}
	lookup := "objj_getClass"
	if g.classMethod {
		lookup = "objj_getMetaClass"
	}
	g.p.write(`objj_msgSendSuper({receiver: self, super_class: ` +
		lookup + `("` + g.class.Name + `").super_class}`)
	g.emitSendTail(send)
}

// emitSendTail writes the selector string, the argument list and the
// closing parenthesis of a dispatch call.
func (g *Generator) emitSendTail(send *ast.MsgSendExpr) {
	p := g.p
	p.write(`, "` + send.Selector() + `"`)
	for _, part := range send.Parts {
		if part.Arg != nil {
			p.write(", ")
			g.emitExpr(part.Arg)
		}
	}
	for _, extra := range send.VarArgs {
		p.write(", ")
		g.emitExpr(extra)
	}
	p.write(")")
}

// lowerRef produces the reference closure; reads and writes through
// the reference become calls of it.
func (g *Generator) lowerRef(ref *ast.RefExpr) {
	p := g.p
	p.write("function(__input) { if (arguments.length) return ")
	g.emitIdent(ref.Target)
	p.write(" = __input; return ")
	g.emitIdent(ref.Target)
	p.write("; }")
}

// lowerDerefAssign writes through a reference: @deref(x) = v becomes
// x(v), and a compound form re-reads through the reference first.
func (g *Generator) lowerDerefAssign(deref *ast.DerefExpr, e *ast.AssignExpr) {
	p := g.p
	g.emitCallee(deref.Ref)
	p.write("(")
	if e.Op != token.ASSIGN {
		g.emitCallee(deref.Ref)
		p.write("() " + operatorText(e.Op.AssignBase()) + " ")
	}
	g.emitExpr(e.Right)
	p.write(")")
}

// lowerDerefIncDec rewrites ++/-- applied through a reference. The
// write always stores the stepped value; the postfix form then
// reconstructs the value before the step, so the expression still
// yields the original.
func (g *Generator) lowerDerefIncDec(deref *ast.DerefExpr, op token.Token, post bool) {
	p := g.p
	step, undo := " + 1", " - 1"
	if op == token.DECR {
		step, undo = " - 1", " + 1"
	}
	if post {
		p.write("(")
	}
	g.emitCallee(deref.Ref)
	p.write("(")
	g.emitCallee(deref.Ref)
	p.write("()" + step + ")")
	if post {
		p.write(undo + ")")
	}
}

func (g *Generator) emitAtArray(e *ast.AtArrayLit) {
	p := g.p
	if g.opts.Beautify {
		p.write("@[")
		for i, el := range e.Elems {
			if i > 0 {
				p.write(", ")
			}
			g.emitExpr(el)
		}
		p.write("]")
		return
	}
	p.write(`objj_msgSend(CPArray, "arrayWithObjects:count:", [`)
	for i, el := range e.Elems {
		if i > 0 {
			p.write(", ")
		}
		g.emitExpr(el)
	}
	p.writef("], %d)", len(e.Elems))
}

func (g *Generator) emitAtDict(e *ast.AtDictLit) {
	p := g.p
	if g.opts.Beautify {
		if len(e.Keys) == 0 {
			p.write("@{}")
			return
		}
		p.write("@{")
		for i := range e.Keys {
			if i > 0 {
				p.write(", ")
			}
			g.emitExpr(e.Keys[i])
			p.write(": ")
			g.emitExpr(e.Values[i])
		}
		p.write("}")
		return
	}
	p.write(`objj_msgSend(CPDictionary, "dictionaryWithObjectsAndKeys:"`)
	for i := range e.Keys {
		p.write(", ")
		g.emitExpr(e.Values[i])
		p.write(", ")
		g.emitExpr(e.Keys[i])
	}
	p.write(")")
}

// identList joins identifier names with commas.
func identList(idents []*ast.Ident) string {
	names := make([]string, len(idents))
	for i, id := range idents {
		names[i] = id.Name
	}
	return strings.Join(names, ", ")
}
