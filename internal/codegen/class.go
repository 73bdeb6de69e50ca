package codegen

import (
	"strings"

	"github.com/cappuccino/objj-compiler/internal/ast"
	"github.com/cappuccino/objj-compiler/internal/semantic"
)

// classInfo returns the annotation record of a class declaration.
func (g *Generator) classInfo(decl *ast.ClassDecl) *semantic.ClassInfo {
	if decl.IsCategory() {
		for _, c := range g.info.Categories {
			if c.Decl == decl {
				return c
			}
		}
		failf("category %s (%s) was not annotated", decl.Name, decl.Category)
	}
	if c, ok := g.info.Classes.Lookup(decl.Name); ok && c.Decl == decl {
		return c
	}
	failf("class %s was not annotated", decl.Name)
	return nil
}

// lowerClass emits the allocate/register block of a class definition,
// or the runtime-lookup block of a category. The block's statements
// run at load time; registration closes the block so the class is
// complete before it becomes visible.
func (g *Generator) lowerClass(decl *ast.ClassDecl) {
	info := g.classInfo(decl)
	savedClass := g.class
	g.class = info

	p := g.p
	if decl.IsCategory() {
		p.write(`{var $the_class = objj_getClass("` + decl.Name + `");`)
		p.nl()
		p.write(`if (!$the_class) throw new SyntaxError("*** Could not find definition for class \"` + decl.Name + `\"");`)
		if len(methodsOf(decl, true)) > 0 {
			p.nl()
			p.write("var $meta_class = $the_class.isa;")
		}
	} else {
		superName := "Nil"
		if decl.Super != nil {
			superName = decl.Super.Name
		}
		p.write(`{var $the_class = objj_allocateClassPair(` + superName + `, "` + decl.Name + `"),`)
		p.nl()
		p.write("$meta_class = $the_class.isa;")
		if len(info.Ivars) > 0 {
			p.nl()
			p.write("class_addIvars($the_class, [")
			for i, ivar := range info.Ivars {
				if i > 0 {
					p.write(", ")
				}
				p.write(`new objj_ivar("` + ivar.Name + `", "` + ivar.Type + `")`)
			}
			p.write("]);")
		}
	}

	g.lowerMethodList("$the_class", false, methodsOf(decl, false), info.Synthesized)
	g.lowerMethodList("$meta_class", true, methodsOf(decl, true), nil)

	for _, proto := range decl.Protocols {
		p.nl()
		p.write(`class_addProtocol($the_class, objj_getProtocol("` + proto.Name + `"));`)
	}

	if !decl.IsCategory() {
		p.nl()
		p.write("objj_registerClassPair($the_class);")
	}
	p.nl()
	p.write("}")

	g.class = savedClass
}

// methodsOf returns the declared methods of one namespace in
// declaration order.
func methodsOf(decl *ast.ClassDecl, classMethods bool) []*ast.MethodDecl {
	var methods []*ast.MethodDecl
	for _, m := range decl.Methods {
		if m.ClassMethod == classMethods {
			methods = append(methods, m)
		}
	}
	return methods
}

// lowerMethodList emits one class_addMethods call covering the
// declared methods of a namespace, with synthesized accessors
// following the declared ones.
func (g *Generator) lowerMethodList(target string, classMethod bool, decls []*ast.MethodDecl, synthesized []*semantic.MethodInfo) {
	if len(decls) == 0 && len(synthesized) == 0 {
		return
	}
	p := g.p
	savedMethod := g.classMethod
	g.classMethod = classMethod

	p.nl()
	p.write("class_addMethods(" + target + ", [")
	first := true
	for _, m := range decls {
		if !first {
			p.write(", ")
		}
		first = false
		g.lowerMethod(m)
	}
	for _, m := range synthesized {
		if !first {
			p.write(", ")
		}
		first = false
		g.lowerAccessor(m)
	}
	p.write("]);")

	g.classMethod = savedMethod
}

// lowerMethod emits one objj_method entry with its implementation
// function.
func (g *Generator) lowerMethod(m *ast.MethodDecl) {
	p := g.p
	p.mark(m.Pos())
	sel := m.Selector()
	if m.Body == nil {
		failf("method %q of class %s has no body", sel, g.class.Name)
	}
	p.write(`new objj_method(sel_getUid("` + sel + `"), function ` + g.methodFuncName(sel) + `(self, _cmd`)
	for _, param := range m.Params {
		if param.Name != "" {
			p.write(", " + param.Name)
		}
	}
	p.write(")")
	p.nl()
	g.emitFuncBody(m, m.Body)
	p.write(", " + typesArray(m.Types()) + ")")
}

// lowerAccessor emits the implementation of one synthesized accessor.
// The setter of a copying accessor stores a copy of the new value.
func (g *Generator) lowerAccessor(m *semantic.MethodInfo) {
	p := g.p
	p.write(`new objj_method(sel_getUid("` + m.Selector + `"), function ` + g.methodFuncName(m.Selector) + `(self, _cmd`)
	if m.Setter {
		p.write(", newValue")
	}
	p.write(")")
	p.nl()
	p.write("{")
	p.indent++
	p.nl()
	switch {
	case m.Setter && m.Copy:
		p.write("self." + m.Ivar + ` = (newValue == null ? null : objj_msgSend(newValue, "copy"));`)
	case m.Setter:
		p.write("self." + m.Ivar + " = newValue;")
	default:
		p.write("return self." + m.Ivar + ";")
	}
	p.indent--
	p.nl()
	p.write("}, " + typesArray(m.Types) + ")")
}

// methodFuncName mangles a selector into the name of its
// implementation function: $Person__setObject_forKey_.
func (g *Generator) methodFuncName(sel string) string {
	return "$" + g.class.Name + "__" + strings.ReplaceAll(sel, ":", "_")
}

// typesArray renders a declared type signature as a string array.
func typesArray(types []string) string {
	var sb strings.Builder
	sb.WriteByte('[')
	for i, t := range types {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteByte('"')
		sb.WriteString(t)
		sb.WriteByte('"')
	}
	sb.WriteByte(']')
	return sb.String()
}

// lowerProtocol emits the allocate/register block of a protocol.
func (g *Generator) lowerProtocol(decl *ast.ProtocolDecl) {
	p := g.p
	p.write(`{var $the_protocol = objj_allocateProtocol("` + decl.Name + `");`)
	p.nl()
	p.write("objj_registerProtocol($the_protocol);")
	for _, ref := range decl.Protocols {
		p.nl()
		p.write(`protocol_addProtocol($the_protocol, objj_getProtocol("` + ref.Name + `"));`)
	}
	g.lowerProtocolMethods(decl.Required, true)
	g.lowerProtocolMethods(decl.Optional, false)
	p.nl()
	p.write("}")
}

func (g *Generator) lowerProtocolMethods(methods []*ast.MethodDecl, required bool) {
	for _, m := range methods {
		g.p.nl()
		g.p.writef("protocol_addMethodDescription($the_protocol, sel_getUid(%q), %s, %t, %t);",
			m.Selector(), typesArray(m.Types()), required, !m.ClassMethod)
	}
}
