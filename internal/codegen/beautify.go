package codegen

import (
	"strings"

	"github.com/cappuccino/objj-compiler/internal/ast"
)

// This file re-emits superset declarations in canonical form. The
// output must parse back to the same tree, so every piece of the
// declaration is written from the node, never normalized away.

func (g *Generator) beautifyClass(decl *ast.ClassDecl) {
	p := g.p
	p.write("@implementation " + decl.Name)
	if decl.IsCategory() {
		p.write(" (" + decl.Category + ")")
	} else if decl.Super != nil {
		p.write(" : " + decl.Super.Name)
	}
	if len(decl.Protocols) > 0 {
		p.write(" <" + identList(decl.Protocols) + ">")
	}

	if len(decl.Ivars) > 0 {
		p.nl()
		p.write("{")
		p.indent++
		for _, iv := range decl.Ivars {
			g.flushComments(iv.Pos())
			p.nl()
			g.beautifyIvar(iv)
		}
		p.indent--
		p.nl()
		p.write("}")
	}

	for _, m := range decl.Methods {
		g.flushComments(m.Pos())
		p.nl()
		g.beautifyMethod(m, true)
	}

	g.flushComments(decl.End())
	p.nl()
	p.write("@end")
}

func (g *Generator) beautifyIvar(iv *ast.IvarDecl) {
	p := g.p
	p.mark(iv.Pos())
	if iv.Outlet {
		p.write("@outlet ")
	}
	p.write(iv.Type + " " + iv.Name)
	if iv.Accessors != nil {
		p.write(" @accessors")
		if attrs := accessorAttrs(iv.Accessors); attrs != "" {
			p.write("(" + attrs + ")")
		}
	}
	p.write(";")
}

// accessorAttrs renders @accessors arguments in canonical order.
func accessorAttrs(spec *ast.AccessorSpec) string {
	var attrs []string
	if spec.Property != "" {
		attrs = append(attrs, "property="+spec.Property)
	}
	if spec.Getter != "" {
		attrs = append(attrs, "getter="+spec.Getter)
	}
	if spec.Setter != "" {
		attrs = append(attrs, "setter="+spec.Setter)
	}
	if spec.ReadOnly {
		attrs = append(attrs, "readonly")
	}
	if spec.Copy {
		attrs = append(attrs, "copy")
	}
	return strings.Join(attrs, ", ")
}

// beautifyMethod writes a method header and, inside a class body, its
// implementation. The declared types are reproduced verbatim.
func (g *Generator) beautifyMethod(m *ast.MethodDecl, withBody bool) {
	p := g.p
	p.mark(m.Pos())
	if m.ClassMethod {
		p.write("+ ")
	} else {
		p.write("- ")
	}
	if m.ReturnType != "" {
		p.write("(" + m.ReturnType + ")")
	}

	if len(m.Params) == 1 && m.Params[0].Name == "" {
		p.write(m.Params[0].Label)
	} else {
		for i, param := range m.Params {
			if i > 0 {
				p.write(" ")
			}
			p.write(param.Label + ":")
			if param.Type != "" {
				p.write("(" + param.Type + ")")
			}
			p.write(param.Name)
		}
		if m.VarArgs {
			p.write(", ...")
		}
	}

	if !withBody {
		p.write(";")
		return
	}
	if m.Body == nil {
		failf("method %q has no body", m.Selector())
	}
	p.nl()
	g.emitFuncBody(m, m.Body)
}

func (g *Generator) beautifyProtocol(decl *ast.ProtocolDecl) {
	p := g.p
	if decl.Forward {
		p.write("@protocol " + decl.Name + ";")
		return
	}
	p.write("@protocol " + decl.Name)
	if len(decl.Protocols) > 0 {
		p.write(" <" + identList(decl.Protocols) + ">")
	}
	for _, m := range decl.Required {
		g.flushComments(m.Pos())
		p.nl()
		g.beautifyMethod(m, false)
	}
	if len(decl.Optional) > 0 {
		p.nl()
		p.write("@optional")
		for _, m := range decl.Optional {
			g.flushComments(m.Pos())
			p.nl()
			g.beautifyMethod(m, false)
		}
	}
	g.flushComments(decl.End())
	p.nl()
	p.write("@end")
}

func (g *Generator) beautifyDirective(stmt ast.Stmt) {
	p := g.p
	switch s := stmt.(type) {
	case *ast.ImportDecl:
		p.writeRule(g.cfg.Before("@import"))
		if s.System {
			p.write("@import <" + s.Path + ">;")
		} else {
			p.write(`@import "` + s.Path + `";`)
		}
		p.writeRule(g.cfg.After("@import"))

	case *ast.ClassForwardDecl:
		p.write("@class " + identList(s.Names) + ";")

	case *ast.GlobalDecl:
		p.write("@global " + s.Name.Name + ";")

	case *ast.TypeDefDecl:
		p.write("@typedef " + s.Name.Name + ";")

	default:
		failf("cannot generate code for directive %T", stmt)
	}
}

// beautifySend re-emits a message send in bracket form.
func (g *Generator) beautifySend(send *ast.MsgSendExpr) {
	p := g.p
	p.write("[")
	if send.Super {
		p.write("super")
	} else {
		g.emitExpr(send.Receiver)
	}
	if len(send.Parts) == 1 && send.Parts[0].Arg == nil {
		p.write(" " + send.Parts[0].Label)
	} else {
		for _, part := range send.Parts {
			p.write(" " + part.Label + ":")
			g.emitExpr(part.Arg)
		}
		for _, extra := range send.VarArgs {
			p.write(", ")
			g.emitExpr(extra)
		}
	}
	p.write("]")
}
