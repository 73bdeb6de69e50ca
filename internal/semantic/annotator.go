package semantic

import (
	"unicode"
	"unicode/utf8"

	"github.com/cappuccino/objj-compiler/internal/ast"
	"github.com/cappuccino/objj-compiler/internal/token"
)

// Info contains the results of semantic analysis.
type Info struct {
	// Class definitions of the unit in declaration order.
	Classes *ClassTable

	// Categories in declaration order.
	Categories []*ClassInfo

	// Protocols by name, including forward declarations.
	Protocols map[string]*ProtocolInfo

	// Dispatch annotations per message send.
	Sends map[*ast.MsgSendExpr]*SendInfo

	// Identifiers that resolve to instance variables, mapped to the
	// class declaring the variable. The generator rewrites them as
	// self property accesses.
	IvarRefs map[*ast.Ident]*ClassInfo

	// Receiver temporaries to declare at the top of each
	// scope-owning node.
	ScopeTemps map[ast.Node][]string

	// Import paths in source order.
	Dependencies []string

	// Names introduced by @typedef in source order.
	Typedefs []string

	// Errors encountered during analysis.
	Errors ErrorList

	// Warnings (non-fatal issues).
	Warnings WarningList
}

// Send returns the dispatch annotation for a message send, or a zero
// annotation when none was recorded.
func (info *Info) Send(send *ast.MsgSendExpr) SendInfo {
	if si, ok := info.Sends[send]; ok {
		return *si
	}
	return SendInfo{}
}

// IvarClass returns the class whose instance variable an identifier
// resolves to, or nil when the identifier is not an ivar reference.
func (info *Info) IvarClass(id *ast.Ident) *ClassInfo {
	return info.IvarRefs[id]
}

// Temps returns the receiver temporaries owned by a scope node.
func (info *Info) Temps(owner ast.Node) []string {
	return info.ScopeTemps[owner]
}

// SendInfo carries the generation strategy for one message send.
type SendInfo struct {
	// Temp names the receiver temporary for a receiver expression
	// that cannot be evaluated twice. Empty when the receiver is
	// repeatable or a class.
	Temp string

	// ClassReceiver marks a send to a class name, which dispatches
	// without a nil guard.
	ClassReceiver bool
}

// Options configures the annotator.
type Options struct {
	// Superset enables Objective-J analysis. When false only plain
	// JavaScript scope analysis runs.
	Superset bool

	// RootClasses are class names assumed to exist outside the
	// compilation unit. nil means DefaultRootClasses.
	RootClasses []string
}

// Annotator performs semantic analysis on an AST.
type Annotator struct {
	info *Info
	opts Options

	// Current scope for name resolution
	scope *Scope

	// Current class and method context
	class       *ClassInfo
	method      *ast.MethodDecl
	classMethod bool

	// Root classes for superclass and receiver resolution
	roots map[string]bool

	// Names introduced by @class and @global directives
	forwardClasses map[string]bool
	globalNames    map[string]bool
}

// Annotate performs semantic analysis on the given program.
// The returned Info is valid even when err is non-nil; Errors then
// holds the failures.
func Annotate(prog *ast.Program, opts Options) (*Info, error) {
	a := &Annotator{
		info: &Info{
			Classes:    NewClassTable(),
			Protocols:  make(map[string]*ProtocolInfo),
			Sends:      make(map[*ast.MsgSendExpr]*SendInfo),
			IvarRefs:   make(map[*ast.Ident]*ClassInfo),
			ScopeTemps: make(map[ast.Node][]string),
		},
		opts:           opts,
		roots:          make(map[string]bool),
		forwardClasses: make(map[string]bool),
		globalNames:    make(map[string]bool),
	}

	rootNames := opts.RootClasses
	if rootNames == nil {
		rootNames = DefaultRootClasses
	}
	for _, name := range rootNames {
		a.roots[name] = true
	}

	a.annotateProgram(prog)

	if err := a.info.Errors.Err(); err != nil {
		return a.info, err
	}
	return a.info, nil
}

// -----------------------------------------------------------------------------
// Scopes and hoisting
// -----------------------------------------------------------------------------

func (a *Annotator) annotateProgram(prog *ast.Program) {
	a.scope = NewScope(nil, prog, "program")
	a.hoistStmts(prog.Body)
	a.annotateStmts(prog.Body)
	a.finishScope()
}

// hoistStmts pre-defines the var and function declarations of the
// current scope. JavaScript hoists declarations to the top of the
// enclosing function, so "x = 1; var x;" declares x rather than
// assigning a global.
func (a *Annotator) hoistStmts(stmts []ast.Stmt) {
	for _, stmt := range stmts {
		a.hoistStmt(stmt)
	}
}

func (a *Annotator) hoistStmt(stmt ast.Stmt) {
	switch s := stmt.(type) {
	case *ast.VarStmt:
		for _, d := range s.Decls {
			a.defineLocal(d.Name.Name, LocalVar, d.Pos())
		}
	case *ast.FuncDecl:
		a.defineLocal(s.Name.Name, LocalFunc, s.Pos())
	case *ast.BlockStmt:
		a.hoistStmts(s.Stmts)
	case *ast.IfStmt:
		a.hoistStmt(s.Then)
		if s.Else != nil {
			a.hoistStmt(s.Else)
		}
	case *ast.SwitchStmt:
		for _, c := range s.Cases {
			a.hoistStmts(c.Body)
		}
	case *ast.WhileStmt:
		a.hoistStmt(s.Body)
	case *ast.DoWhileStmt:
		a.hoistStmt(s.Body)
	case *ast.ForStmt:
		if init, ok := s.Init.(*ast.VarStmt); ok {
			a.hoistStmt(init)
		}
		a.hoistStmt(s.Body)
	case *ast.ForInStmt:
		if left, ok := s.Left.(*ast.VarStmt); ok {
			a.hoistStmt(left)
		}
		a.hoistStmt(s.Body)
	case *ast.TryStmt:
		a.hoistStmt(s.Block)
		if s.Catch != nil {
			a.hoistStmt(s.Catch)
		}
		if s.Finally != nil {
			a.hoistStmt(s.Finally)
		}
	case *ast.LabeledStmt:
		a.hoistStmt(s.Stmt)
	case *ast.WithStmt:
		a.hoistStmt(s.Body)
	}
}

// defineLocal adds a declaration to the current scope, warning when
// it hides an instance variable of the enclosing class. Redeclaring
// an existing name returns the first declaration.
func (a *Annotator) defineLocal(name string, kind LocalKind, pos token.Position) *Local {
	local := a.scope.Define(name, kind, pos)
	if local == nil {
		local, _ = a.scope.LookupLocal(name)
		return local
	}
	if a.inInstanceMethod() {
		if _, _, ok := a.class.FindIvar(name); ok {
			a.info.Warnings.Add(pos, warnShadowsIvar, name)
		}
	}
	return local
}

func (a *Annotator) inInstanceMethod() bool {
	return a.class != nil && a.method != nil && !a.classMethod
}

// finishScope records the receiver temporaries of the current scope
// and reports its unused locals. Program-level declarations are
// never reported.
func (a *Annotator) finishScope() {
	s := a.scope
	if temps := s.Temps(); len(temps) > 0 {
		a.info.ScopeTemps[s.Owner()] = temps
	}
	if s.Parent() == nil {
		return
	}
	s.ForEach(func(local *Local) {
		if local.Kind == LocalVar && !local.Used {
			a.info.Warnings.Add(local.Pos, warnUnusedVar, local.Name)
		}
	})
}

// -----------------------------------------------------------------------------
// Statements
// -----------------------------------------------------------------------------

func (a *Annotator) annotateStmts(stmts []ast.Stmt) {
	for _, stmt := range stmts {
		a.annotateStmt(stmt)
	}
}

func (a *Annotator) annotateStmt(stmt ast.Stmt) {
	switch s := stmt.(type) {
	case *ast.ExprStmt:
		a.annotateExpr(s.Expr)

	case *ast.VarStmt:
		a.annotateVarStmt(s)

	case *ast.EmptyStmt, *ast.DebuggerStmt, *ast.BreakStmt, *ast.ContinueStmt:
		// No names to resolve.

	case *ast.BlockStmt:
		a.annotateStmts(s.Stmts)

	case *ast.IfStmt:
		a.annotateExpr(s.Cond)
		a.annotateStmt(s.Then)
		if s.Else != nil {
			a.annotateStmt(s.Else)
		}

	case *ast.SwitchStmt:
		a.annotateExpr(s.Disc)
		for _, c := range s.Cases {
			if c.Test != nil {
				a.annotateExpr(c.Test)
			}
			a.annotateStmts(c.Body)
		}

	case *ast.WhileStmt:
		a.annotateExpr(s.Cond)
		a.annotateStmt(s.Body)

	case *ast.DoWhileStmt:
		a.annotateStmt(s.Body)
		a.annotateExpr(s.Cond)

	case *ast.ForStmt:
		switch init := s.Init.(type) {
		case *ast.VarStmt:
			a.annotateVarStmt(init)
		case ast.Expr:
			a.annotateExpr(init)
		}
		if s.Cond != nil {
			a.annotateExpr(s.Cond)
		}
		if s.Post != nil {
			a.annotateExpr(s.Post)
		}
		a.annotateStmt(s.Body)

	case *ast.ForInStmt:
		switch left := s.Left.(type) {
		case *ast.VarStmt:
			a.annotateVarStmt(left)
		case ast.Expr:
			a.annotateAssignTarget(left)
		}
		a.annotateExpr(s.Object)
		a.annotateStmt(s.Body)

	case *ast.ReturnStmt:
		if s.Value != nil {
			a.annotateExpr(s.Value)
		}

	case *ast.ThrowStmt:
		a.annotateExpr(s.Value)

	case *ast.TryStmt:
		a.annotateStmt(s.Block)
		if s.Catch != nil {
			a.defineLocal(s.Param.Name, LocalCatch, s.Param.Pos())
			a.annotateStmt(s.Catch)
		}
		if s.Finally != nil {
			a.annotateStmt(s.Finally)
		}

	case *ast.LabeledStmt:
		a.annotateStmt(s.Stmt)

	case *ast.WithStmt:
		a.info.Warnings.Add(s.Pos(), warnWithStmt)
		a.annotateExpr(s.Object)
		a.annotateStmt(s.Body)

	case *ast.FuncDecl:
		a.annotateFunc(s, s.Name.Name, s.Params, s.Body)

	case *ast.ClassDecl:
		a.annotateClass(s)

	case *ast.ProtocolDecl:
		a.annotateProtocol(s)

	case *ast.ImportDecl:
		a.info.Dependencies = append(a.info.Dependencies, s.Path)

	case *ast.ClassForwardDecl:
		for _, name := range s.Names {
			a.forwardClasses[name.Name] = true
		}

	case *ast.GlobalDecl:
		a.globalNames[s.Name.Name] = true

	case *ast.TypeDefDecl:
		a.info.Typedefs = append(a.info.Typedefs, s.Name.Name)
	}
}

func (a *Annotator) annotateVarStmt(s *ast.VarStmt) {
	// Names were defined during hoisting; only initializers remain.
	for _, d := range s.Decls {
		if d.Init != nil {
			a.annotateExpr(d.Init)
		}
	}
}

// annotateFunc analyzes a function body in a fresh scope. The name
// of a function expression is visible inside its own body.
func (a *Annotator) annotateFunc(owner ast.Node, name string, params []*ast.Ident, body *ast.BlockStmt) {
	outer := a.scope
	scopeName := name
	if scopeName == "" {
		scopeName = "function"
	}
	a.scope = NewScope(outer, owner, scopeName)

	if fe, ok := owner.(*ast.FuncExpr); ok && fe.Name != "" {
		if local := a.scope.Define(fe.Name, LocalFunc, fe.Pos()); local != nil {
			local.Used = true
		}
	}
	for _, param := range params {
		a.defineLocal(param.Name, LocalParam, param.Pos())
	}

	a.hoistStmts(body.Stmts)
	a.annotateStmts(body.Stmts)

	a.finishScope()
	a.scope = outer
}

// -----------------------------------------------------------------------------
// Expressions
// -----------------------------------------------------------------------------

func (a *Annotator) annotateExpr(e ast.Expr) {
	switch x := e.(type) {
	case *ast.Ident:
		a.resolveIdent(x)

	case *ast.NumLit:
		if decimalWithLeadingZero(x.Raw) {
			a.info.Warnings.Add(x.Pos(), warnLeadingZero, x.Raw)
		}

	case *ast.StrLit, *ast.RegexLit, *ast.BoolLit, *ast.NullLit,
		*ast.ThisExpr, *ast.SelectorLit:
		// Nothing to resolve.

	case *ast.MemberExpr:
		a.annotateExpr(x.Object)
		if x.Computed {
			a.annotateExpr(x.Property)
		}

	case *ast.UnaryExpr:
		a.annotateExpr(x.Expr)

	case *ast.BinaryExpr:
		a.annotateExpr(x.Left)
		a.annotateExpr(x.Right)

	case *ast.TernaryExpr:
		a.annotateExpr(x.Cond)
		a.annotateExpr(x.Then)
		a.annotateExpr(x.Else)

	case *ast.AssignExpr:
		a.annotateAssignTarget(x.Left)
		a.annotateExpr(x.Right)

	case *ast.SeqExpr:
		for _, sub := range x.Exprs {
			a.annotateExpr(sub)
		}

	case *ast.GroupExpr:
		a.annotateExpr(x.Expr)

	case *ast.CallExpr:
		a.annotateExpr(x.Callee)
		for _, arg := range x.Args {
			a.annotateExpr(arg)
		}

	case *ast.NewExpr:
		a.annotateExpr(x.Callee)
		for _, arg := range x.Args {
			a.annotateExpr(arg)
		}

	case *ast.FuncExpr:
		a.annotateFunc(x, x.Name, x.Params, x.Body)

	case *ast.ArrayLit:
		for _, el := range x.Elems {
			if el != nil {
				a.annotateExpr(el)
			}
		}

	case *ast.ObjectLit:
		// Property keys are names, not references.
		for _, prop := range x.Props {
			a.annotateExpr(prop.Value)
		}

	case *ast.MsgSendExpr:
		a.annotateSend(x)

	case *ast.ProtocolLit:
		if _, ok := a.info.Protocols[x.Name]; !ok {
			a.info.Errors.Add(x.Pos(), errUnknownProtocol, x.Name)
		}

	case *ast.RefExpr:
		a.resolveIdent(x.Target)

	case *ast.DerefExpr:
		a.annotateExpr(x.Ref)

	case *ast.AtArrayLit:
		for _, el := range x.Elems {
			a.annotateExpr(el)
		}

	case *ast.AtDictLit:
		for _, k := range x.Keys {
			a.annotateExpr(k)
		}
		for _, v := range x.Values {
			a.annotateExpr(v)
		}
	}
}

// annotateAssignTarget resolves a write target, creating an implicit
// global when an identifier is not declared in any enclosing scope.
func (a *Annotator) annotateAssignTarget(e ast.Expr) {
	id, ok := e.(*ast.Ident)
	if !ok {
		a.annotateExpr(e)
		return
	}
	if a.resolveIdent(id) != refUnknown {
		return
	}
	root := a.scope.Root()
	if a.scope != root {
		a.info.Warnings.Add(id.Pos(), warnImplicitGlobal, id.Name)
	}
	if local := root.Define(id.Name, LocalImplicit, id.Pos()); local != nil {
		local.Used = true
	}
}

// refKind classifies what an identifier resolved to.
type refKind int

const (
	refUnknown refKind = iota
	refLocal           // Local, parameter or earlier implicit global
	refIvar            // Instance variable of the enclosing class
	refClass           // Class declared in the unit, forward-declared or root
	refGlobal          // @global name or predeclared JavaScript name
)

// resolveIdent binds an identifier to its declaration. An identifier
// inside an instance method that matches no local but an instance
// variable of the class chain is annotated as an ivar reference.
func (a *Annotator) resolveIdent(id *ast.Ident) refKind {
	if _, ok := a.scope.Lookup(id.Name); ok {
		return refLocal
	}

	if a.opts.Superset && a.method == nil && id.Name == "self" {
		a.info.Errors.Add(id.Pos(), errSelfOutsideMethod)
		return refUnknown
	}

	if a.inInstanceMethod() {
		if _, owner, ok := a.class.FindIvar(id.Name); ok {
			a.info.IvarRefs[id] = owner
			return refIvar
		}
	}

	if _, ok := a.info.Classes.Lookup(id.Name); ok {
		return refClass
	}
	if a.roots[id.Name] || a.forwardClasses[id.Name] {
		return refClass
	}
	if a.globalNames[id.Name] || predeclared[id.Name] {
		return refGlobal
	}
	return refUnknown
}

// annotateSend analyzes a message send and records its dispatch
// strategy. A class receiver skips the nil guard entirely; any other
// receiver that cannot be evaluated twice gets a temporary hoisted
// into the enclosing function scope.
func (a *Annotator) annotateSend(send *ast.MsgSendExpr) {
	si := &SendInfo{}
	a.info.Sends[send] = si

	if send.Super {
		if a.method == nil {
			a.info.Errors.Add(send.Pos(), errSuperOutsideMethod)
		}
	} else {
		if id, ok := send.Receiver.(*ast.Ident); ok {
			switch a.resolveIdent(id) {
			case refClass:
				si.ClassReceiver = true
			case refUnknown:
				if a.opts.Superset && pascalCase(id.Name) {
					a.info.Warnings.Add(id.Pos(), warnUnknownClass, id.Name)
				}
			}
		} else {
			a.annotateExpr(send.Receiver)
		}
		if !si.ClassReceiver && !repeatable(send.Receiver) {
			si.Temp = a.scope.AllocTemp()
		}
	}

	for _, part := range send.Parts {
		if part.Arg != nil {
			a.annotateExpr(part.Arg)
		}
	}
	for _, extra := range send.VarArgs {
		a.annotateExpr(extra)
	}
}

// repeatable reports whether an expression can be evaluated twice
// with the same result and no side effects, making it safe to
// duplicate inside a nil guard.
func repeatable(e ast.Expr) bool {
	switch x := e.(type) {
	case *ast.Ident, *ast.ThisExpr, *ast.NumLit, *ast.StrLit,
		*ast.BoolLit, *ast.NullLit, *ast.SelectorLit:
		return true
	case *ast.GroupExpr:
		return repeatable(x.Expr)
	default:
		return false
	}
}

// pascalCase reports whether a name starts with an upper-case
// letter, the convention for class names.
func pascalCase(name string) bool {
	r, _ := utf8.DecodeRuneInString(name)
	return unicode.IsUpper(r)
}

// decimalWithLeadingZero reports whether a numeric literal begins
// with a superfluous zero. Such literals scan as decimal here while
// other tools may read them as octal.
func decimalWithLeadingZero(raw string) bool {
	if len(raw) < 2 || raw[0] != '0' {
		return false
	}
	return raw[1] >= '0' && raw[1] <= '9'
}

// -----------------------------------------------------------------------------
// Classes and protocols
// -----------------------------------------------------------------------------

func (a *Annotator) annotateClass(decl *ast.ClassDecl) {
	info := newClassInfo(decl)

	if decl.IsCategory() {
		// The extended class links the category to its ivar chain
		// when it is declared in the same unit. An unknown class is
		// left for the runtime to report.
		if base, ok := a.info.Classes.Lookup(decl.Name); ok {
			info.Super = base
		}
		a.info.Categories = append(a.info.Categories, info)
	} else {
		if _, ok := a.info.Classes.Lookup(decl.Name); ok {
			a.info.Errors.Add(decl.Pos(), errDuplicateClass, decl.Name)
			return
		}
		if decl.Super != nil {
			info.SuperName = decl.Super.Name
			if super, ok := a.info.Classes.Lookup(decl.Super.Name); ok {
				info.Super = super
			} else if !a.roots[decl.Super.Name] {
				a.info.Errors.Add(decl.Super.Pos(), errSuperclassMissing, decl.Super.Name, decl.Name)
			}
		}
	}

	seen := make(map[string]bool)
	for _, ref := range decl.Protocols {
		if _, ok := a.info.Protocols[ref.Name]; !ok {
			a.info.Errors.Add(ref.Pos(), errUnknownProtocol, ref.Name)
		}
		if seen[ref.Name] {
			a.info.Warnings.Add(ref.Pos(), warnDuplicateProtocol, ref.Name)
			continue
		}
		seen[ref.Name] = true
		info.Protocols = append(info.Protocols, ref.Name)
	}

	for _, iv := range decl.Ivars {
		ivar := &IvarInfo{
			Name:      iv.Name,
			Type:      iv.Type,
			Outlet:    iv.Outlet,
			Accessors: iv.Accessors,
			Pos:       iv.Pos(),
		}
		if !info.DefineIvar(ivar) {
			a.info.Errors.Add(iv.Pos(), errDuplicateIvar, iv.Name, info.Name)
		}
	}

	// The class is visible to its own method bodies.
	if !decl.IsCategory() {
		a.info.Classes.Define(info)
	}

	prevClass := a.class
	a.class = info
	for _, m := range decl.Methods {
		a.annotateMethod(info, m)
	}
	a.synthesizeAccessors(info)
	a.class = prevClass
}

// annotateMethod registers a method and analyzes its body. self and
// _cmd are implicit parameters of every method.
func (a *Annotator) annotateMethod(class *ClassInfo, m *ast.MethodDecl) {
	mi := &MethodInfo{
		Selector:    m.Selector(),
		ClassMethod: m.ClassMethod,
		Types:       m.Types(),
		Pos:         m.Pos(),
		Decl:        m,
	}
	if !class.DefineMethod(mi) {
		a.info.Errors.Add(m.Pos(), errDuplicateMethod, mi.Selector, class.Name)
	}
	if m.Body == nil {
		return
	}

	outer := a.scope
	prevMethod, prevClassMethod := a.method, a.classMethod
	a.method, a.classMethod = m, m.ClassMethod
	a.scope = NewScope(outer, m, mi.Selector)

	for _, name := range [...]string{"self", "_cmd"} {
		if local := a.scope.Define(name, LocalParam, m.Pos()); local != nil {
			local.Used = true
		}
	}
	for _, p := range m.Params {
		if p.Name == "" {
			continue
		}
		if _, ok := a.scope.LookupLocal(p.Name); ok {
			a.info.Errors.Add(p.LabPos, errDuplicateParam, p.Name, mi.Selector)
			continue
		}
		a.defineLocal(p.Name, LocalParam, p.LabPos)
	}

	a.hoistStmts(m.Body.Stmts)
	a.annotateStmts(m.Body.Stmts)

	a.finishScope()
	a.scope = outer
	a.method, a.classMethod = prevMethod, prevClassMethod
}

// synthesizeAccessors derives accessor methods from @accessors
// attributes. An explicitly declared method takes precedence over a
// synthesized one; two attributes synthesizing the same selector are
// an error.
func (a *Annotator) synthesizeAccessors(class *ClassInfo) {
	for _, ivar := range class.Ivars {
		if ivar.Accessors == nil {
			continue
		}
		_, getter, setter := AccessorNames(ivar)

		if existing, ok := class.InstanceMethods[getter]; !ok {
			class.DefineMethod(&MethodInfo{
				Selector:    getter,
				Types:       []string{ivar.Type},
				Pos:         ivar.Pos,
				Synthesized: true,
				Ivar:        ivar.Name,
			})
		} else if existing.Synthesized {
			a.info.Errors.Add(ivar.Pos, errDuplicateMethod, getter, class.Name)
		}

		if setter == "" {
			continue
		}
		if existing, ok := class.InstanceMethods[setter]; !ok {
			class.DefineMethod(&MethodInfo{
				Selector:    setter,
				Types:       []string{"void", ivar.Type},
				Pos:         ivar.Pos,
				Synthesized: true,
				Ivar:        ivar.Name,
				Setter:      true,
				Copy:        ivar.Accessors.Copy,
			})
		} else if existing.Synthesized {
			a.info.Errors.Add(ivar.Pos, errDuplicateMethod, setter, class.Name)
		}
	}
}

func (a *Annotator) annotateProtocol(decl *ast.ProtocolDecl) {
	if decl.Forward {
		if _, ok := a.info.Protocols[decl.Name]; !ok {
			a.info.Protocols[decl.Name] = &ProtocolInfo{
				Name:    decl.Name,
				Forward: true,
				Pos:     decl.Pos(),
			}
		}
		return
	}

	if existing, ok := a.info.Protocols[decl.Name]; ok && !existing.Forward {
		a.info.Errors.Add(decl.Pos(), errDuplicateProtocol, decl.Name)
		return
	}

	info := &ProtocolInfo{Name: decl.Name, Pos: decl.Pos()}
	seen := make(map[string]bool)
	for _, ref := range decl.Protocols {
		if _, ok := a.info.Protocols[ref.Name]; !ok {
			a.info.Errors.Add(ref.Pos(), errUnknownProtocol, ref.Name)
		}
		if seen[ref.Name] {
			a.info.Warnings.Add(ref.Pos(), warnDuplicateProtocol, ref.Name)
			continue
		}
		seen[ref.Name] = true
		info.Protocols = append(info.Protocols, ref.Name)
	}
	for _, m := range decl.Required {
		info.Required = append(info.Required, protocolMethod(m))
	}
	for _, m := range decl.Optional {
		info.Optional = append(info.Optional, protocolMethod(m))
	}
	a.info.Protocols[decl.Name] = info
}

func protocolMethod(m *ast.MethodDecl) *MethodInfo {
	return &MethodInfo{
		Selector:    m.Selector(),
		ClassMethod: m.ClassMethod,
		Types:       m.Types(),
		Pos:         m.Pos(),
		Decl:        m,
	}
}
