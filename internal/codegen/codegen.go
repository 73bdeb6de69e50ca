// Package codegen turns an annotated syntax tree into JavaScript.
//
// The generator has two modes. Plain mode lowers the Objective-J
// constructs to calls into the Objective-J runtime: class and
// protocol declarations become allocate/register blocks, message
// sends become nil-guarded objj_msgSend dispatches using the
// receiver temporaries chosen during annotation, and instance
// variable references are rewritten as properties of self. Beautify
// mode re-emits the superset syntax itself in canonical form, driven
// by a FormatConfig, and re-inserts tracked comments.
//
// Emission is deterministic: identical input and configuration
// produce identical output. A node kind without an emission rule is
// an internal failure, reported through Generate's error, never
// skipped.
package codegen

import (
	"fmt"
	"strings"

	"github.com/cappuccino/objj-compiler/internal/ast"
	"github.com/cappuccino/objj-compiler/internal/semantic"
	"github.com/cappuccino/objj-compiler/internal/sourcemap"
	"github.com/cappuccino/objj-compiler/internal/token"
)

// Error represents a code generation failure.
type Error struct {
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// failf panics with a generation error. Generate converts the panic
// into a returned error.
func failf(format string, args ...any) {
	panic(&Error{Message: fmt.Sprintf(format, args...)})
}

// Options configures a generation run.
type Options struct {
	// Beautify re-emits superset source in canonical form instead of
	// lowering it to plain JavaScript.
	Beautify bool

	// CommentLineBreaks keeps a re-inserted comment attached to the
	// line it trailed in the source. Without it every comment starts
	// its own line. Comments are only re-inserted in beautify mode.
	CommentLineBreaks bool

	// Format controls indentation and per-construct spacing.
	// nil means DefaultFormat.
	Format *FormatConfig

	// SourceMap, when non-nil, receives one mapping per emitted
	// statement and expression.
	SourceMap *sourcemap.Builder
}

// Generate emits code for an annotated program.
func Generate(prog *ast.Program, info *semantic.Info, opts Options) (code string, err error) {
	defer func() {
		if r := recover(); r != nil {
			if ge, ok := r.(*Error); ok {
				err = ge
			} else {
				panic(r)
			}
		}
	}()

	g := newGenerator(prog, info, opts)
	g.emitProgram()
	return g.p.String(), nil
}

// Generator walks the annotated tree and prints one output form.
type Generator struct {
	prog *ast.Program
	info *semantic.Info
	opts Options
	cfg  *FormatConfig
	p    *printer

	// Current class context for ivar access and super dispatch.
	class       *semantic.ClassInfo
	classMethod bool

	// Comment re-insertion state.
	comments    []*ast.Comment
	nextComment int
}

func newGenerator(prog *ast.Program, info *semantic.Info, opts Options) *Generator {
	cfg := opts.Format
	if cfg == nil {
		cfg = DefaultFormat()
	}
	g := &Generator{
		prog: prog,
		info: info,
		opts: opts,
		cfg:  cfg,
		p:    newPrinter(cfg, opts.SourceMap),
	}
	if opts.Beautify {
		g.comments = prog.Comments
	}
	return g
}

func (g *Generator) emitProgram() {
	p := g.p
	if !g.opts.Beautify {
		if temps := g.info.Temps(g.prog); len(temps) > 0 {
			p.write("var " + strings.Join(temps, ", ") + ";")
		}
	}
	for _, s := range g.prog.Body {
		if !g.opts.Beautify && plainSilent(s) {
			continue
		}
		g.flushComments(s.Pos())
		if p.col > 0 {
			p.nl()
		}
		g.emitStmt(s)
	}
	g.flushRemainingComments()
	if p.col > 0 {
		p.nl()
	}
}

// plainSilent reports statements that produce no plain-mode output.
// Directives surface on the compilation result instead, and a forward
// protocol declaration only introduces a name.
func plainSilent(stmt ast.Stmt) bool {
	switch s := stmt.(type) {
	case *ast.ImportDecl, *ast.ClassForwardDecl, *ast.GlobalDecl, *ast.TypeDefDecl:
		return true
	case *ast.ProtocolDecl:
		return s.Forward
	}
	return false
}

// -----------------------------------------------------------------------------
// Statements
// -----------------------------------------------------------------------------

func (g *Generator) emitStmt(stmt ast.Stmt) {
	if stmt == nil {
		return
	}
	p := g.p
	p.mark(stmt.Pos())
	switch s := stmt.(type) {
	case *ast.ExprStmt:
		g.emitExpr(s.Expr)
		p.write(";")

	case *ast.VarStmt:
		p.writeRule(g.cfg.Before("var"))
		p.write("var ")
		g.emitVarDecls(s.Decls)
		p.write(";")
		p.writeRule(g.cfg.After("var"))

	case *ast.EmptyStmt:
		p.write(";")

	case *ast.BlockStmt:
		g.emitBlock(s)

	case *ast.IfStmt:
		g.emitIf(s)

	case *ast.SwitchStmt:
		g.emitSwitch(s)

	case *ast.WhileStmt:
		p.writeRule(g.cfg.Before("while"))
		p.write("while (")
		g.emitExpr(s.Cond)
		p.write(")")
		g.emitBody(s.Body)
		p.writeRule(g.cfg.After("while"))

	case *ast.DoWhileStmt:
		p.writeRule(g.cfg.Before("do-while"))
		p.write("do")
		g.emitBody(s.Body)
		if _, ok := s.Body.(*ast.BlockStmt); !ok {
			p.nl()
		} else {
			p.write(" ")
		}
		p.write("while (")
		g.emitExpr(s.Cond)
		p.write(");")
		p.writeRule(g.cfg.After("do-while"))

	case *ast.ForStmt:
		g.emitFor(s)

	case *ast.ForInStmt:
		g.emitForIn(s)

	case *ast.BreakStmt:
		if s.Label != nil {
			p.write("break " + s.Label.Name + ";")
		} else {
			p.write("break;")
		}

	case *ast.ContinueStmt:
		if s.Label != nil {
			p.write("continue " + s.Label.Name + ";")
		} else {
			p.write("continue;")
		}

	case *ast.ReturnStmt:
		p.writeRule(g.cfg.Before("return"))
		if s.Value != nil {
			p.write("return ")
			g.emitExpr(s.Value)
			p.write(";")
		} else {
			p.write("return;")
		}
		p.writeRule(g.cfg.After("return"))

	case *ast.ThrowStmt:
		p.write("throw ")
		g.emitExpr(s.Value)
		p.write(";")

	case *ast.TryStmt:
		p.writeRule(g.cfg.Before("try"))
		p.write("try ")
		g.emitBlock(s.Block)
		if s.Catch != nil {
			p.nl()
			p.write("catch(" + s.Param.Name + ") ")
			g.emitBlock(s.Catch)
		}
		if s.Finally != nil {
			p.nl()
			p.write("finally ")
			g.emitBlock(s.Finally)
		}
		p.writeRule(g.cfg.After("try"))

	case *ast.LabeledStmt:
		p.write(s.Label.Name + ": ")
		g.emitStmt(s.Stmt)

	case *ast.WithStmt:
		p.write("with (")
		g.emitExpr(s.Object)
		p.write(")")
		g.emitBody(s.Body)

	case *ast.DebuggerStmt:
		p.write("debugger;")

	case *ast.FuncDecl:
		p.writeRule(g.cfg.Before("function"))
		p.write("function " + s.Name.Name)
		g.emitParams(s.Params)
		p.write(" ")
		g.emitFuncBody(s, s.Body)
		p.writeRule(g.cfg.After("function"))

	case *ast.ClassDecl:
		p.writeRule(g.cfg.Before("@implementation"))
		if g.opts.Beautify {
			g.beautifyClass(s)
		} else {
			g.lowerClass(s)
		}
		p.writeRule(g.cfg.After("@implementation"))

	case *ast.ProtocolDecl:
		p.writeRule(g.cfg.Before("@protocol"))
		if g.opts.Beautify {
			g.beautifyProtocol(s)
		} else {
			g.lowerProtocol(s)
		}
		p.writeRule(g.cfg.After("@protocol"))

	case *ast.ImportDecl, *ast.ClassForwardDecl, *ast.GlobalDecl, *ast.TypeDefDecl:
		// Reached only in beautify mode; plain mode filters these out.
		g.beautifyDirective(stmt)

	default:
		failf("cannot generate code for %T", stmt)
	}
}

func (g *Generator) emitVarDecls(decls []*ast.VarDecl) {
	for i, d := range decls {
		if i > 0 {
			g.p.write(", ")
		}
		g.p.mark(d.Pos())
		g.p.write(d.Name.Name)
		if d.Init != nil {
			g.p.write(" = ")
			g.emitExpr(d.Init)
		}
	}
}

// emitBody lays out the body of a control statement: a block stays on
// the same line, a single statement indents on the next.
func (g *Generator) emitBody(stmt ast.Stmt) {
	if block, ok := stmt.(*ast.BlockStmt); ok {
		g.p.write(" ")
		g.emitBlock(block)
		return
	}
	g.p.indent++
	g.p.nl()
	g.emitStmt(stmt)
	g.p.indent--
}

func (g *Generator) emitBlock(block *ast.BlockStmt) {
	p := g.p
	p.write("{")
	p.indent++
	for _, s := range block.Stmts {
		g.flushComments(s.Pos())
		p.nl()
		g.emitStmt(s)
	}
	g.flushComments(block.End())
	p.indent--
	p.nl()
	p.write("}")
}

// emitFuncBody emits a function block. In plain mode the receiver
// temporaries of the function's scope are declared first.
func (g *Generator) emitFuncBody(owner ast.Node, block *ast.BlockStmt) {
	p := g.p
	p.write("{")
	p.indent++
	if !g.opts.Beautify {
		if temps := g.info.Temps(owner); len(temps) > 0 {
			p.nl()
			p.write("var " + strings.Join(temps, ", ") + ";")
		}
	}
	for _, s := range block.Stmts {
		g.flushComments(s.Pos())
		p.nl()
		g.emitStmt(s)
	}
	g.flushComments(block.End())
	p.indent--
	p.nl()
	p.write("}")
}

func (g *Generator) emitIf(s *ast.IfStmt) {
	p := g.p
	p.writeRule(g.cfg.Before("if"))
	p.write("if (")
	g.emitExpr(s.Cond)
	p.write(")")
	g.emitBody(s.Then)
	if s.Else != nil {
		p.nl()
		p.write("else")
		if elseIf, ok := s.Else.(*ast.IfStmt); ok {
			p.write(" ")
			g.emitStmt(elseIf)
		} else {
			g.emitBody(s.Else)
		}
	}
	p.writeRule(g.cfg.After("if"))
}

func (g *Generator) emitSwitch(s *ast.SwitchStmt) {
	p := g.p
	p.writeRule(g.cfg.Before("switch"))
	p.write("switch (")
	g.emitExpr(s.Disc)
	p.write(") {")
	p.indent++
	for _, c := range s.Cases {
		p.nl()
		p.mark(c.Pos())
		if c.Test != nil {
			p.write("case ")
			g.emitExpr(c.Test)
			p.write(":")
		} else {
			p.write("default:")
		}
		p.indent++
		for _, st := range c.Body {
			g.flushComments(st.Pos())
			p.nl()
			g.emitStmt(st)
		}
		p.indent--
	}
	p.indent--
	p.nl()
	p.write("}")
	p.writeRule(g.cfg.After("switch"))
}

func (g *Generator) emitFor(s *ast.ForStmt) {
	p := g.p
	p.writeRule(g.cfg.Before("for"))
	p.write("for (")
	switch init := s.Init.(type) {
	case nil:
	case *ast.VarStmt:
		p.write("var ")
		g.emitVarDecls(init.Decls)
	case ast.Expr:
		g.emitExpr(init)
	default:
		failf("cannot generate for-loop initializer %T", s.Init)
	}
	p.write(";")
	if s.Cond != nil {
		p.write(" ")
		g.emitExpr(s.Cond)
	}
	p.write(";")
	if s.Post != nil {
		p.write(" ")
		g.emitExpr(s.Post)
	}
	p.write(")")
	g.emitBody(s.Body)
	p.writeRule(g.cfg.After("for"))
}

func (g *Generator) emitForIn(s *ast.ForInStmt) {
	p := g.p
	p.writeRule(g.cfg.Before("for-in"))
	p.write("for (")
	switch left := s.Left.(type) {
	case *ast.VarStmt:
		p.write("var ")
		g.emitVarDecls(left.Decls)
	case ast.Expr:
		g.emitExpr(left)
	default:
		failf("cannot generate for-in target %T", s.Left)
	}
	p.write(" in ")
	g.emitExpr(s.Object)
	p.write(")")
	g.emitBody(s.Body)
	p.writeRule(g.cfg.After("for-in"))
}

func (g *Generator) emitParams(params []*ast.Ident) {
	g.p.write("(")
	for i, param := range params {
		if i > 0 {
			g.p.write(", ")
		}
		g.p.write(param.Name)
	}
	g.p.write(")")
}

// -----------------------------------------------------------------------------
// Comment re-insertion
// -----------------------------------------------------------------------------

// flushComments re-inserts tracked comments that begin before pos.
func (g *Generator) flushComments(pos token.Position) {
	for g.nextComment < len(g.comments) {
		c := g.comments[g.nextComment]
		if !c.Pos().Before(pos) {
			return
		}
		g.emitComment(c)
		g.nextComment++
	}
}

func (g *Generator) flushRemainingComments() {
	for g.nextComment < len(g.comments) {
		g.emitComment(g.comments[g.nextComment])
		g.nextComment++
	}
}

// emitComment places one comment: a trailing comment appends to the
// line it followed when line-break preservation is on, every other
// comment starts a fresh line.
func (g *Generator) emitComment(c *ast.Comment) {
	p := g.p
	ownLine := c.OwnLine || !g.opts.CommentLineBreaks
	if !ownLine && p.col > 0 {
		p.write(" " + c.Text)
		return
	}
	if p.col > 0 {
		p.nl()
	}
	p.write(c.Text)
}
