package ast

// Walk traverses an AST in depth-first order.
// For each node, it calls fn(node). If fn returns false,
// the children of that node are not visited.
//
// Example: count all message sends
//
//	count := 0
//	ast.Walk(program, func(n ast.Node) bool {
//		if _, ok := n.(*ast.MsgSendExpr); ok {
//			count++
//		}
//		return true
//	})
func Walk(node Node, fn func(Node) bool) {
	if node == nil || !fn(node) {
		return
	}

	switch n := node.(type) {
	// Program-level
	case *Program:
		for _, s := range n.Body {
			Walk(s, fn)
		}

	// Expressions - Literals (no children)
	case *NumLit, *StrLit, *RegexLit, *BoolLit, *NullLit:
		// no children

	// Expressions - References
	case *Ident, *ThisExpr:
		// no children

	case *MemberExpr:
		Walk(n.Object, fn)
		Walk(n.Property, fn)

	// Expressions - Operations
	case *UnaryExpr:
		Walk(n.Expr, fn)

	case *BinaryExpr:
		Walk(n.Left, fn)
		Walk(n.Right, fn)

	case *TernaryExpr:
		Walk(n.Cond, fn)
		Walk(n.Then, fn)
		Walk(n.Else, fn)

	case *AssignExpr:
		Walk(n.Left, fn)
		Walk(n.Right, fn)

	case *SeqExpr:
		for _, e := range n.Exprs {
			Walk(e, fn)
		}

	case *GroupExpr:
		Walk(n.Expr, fn)

	// Expressions - Calls and functions
	case *CallExpr:
		Walk(n.Callee, fn)
		for _, arg := range n.Args {
			Walk(arg, fn)
		}

	case *NewExpr:
		Walk(n.Callee, fn)
		for _, arg := range n.Args {
			Walk(arg, fn)
		}

	case *FuncExpr:
		for _, p := range n.Params {
			Walk(p, fn)
		}
		Walk(n.Body, fn)

	// Expressions - Composite literals
	case *ArrayLit:
		for _, e := range n.Elems {
			if e != nil {
				Walk(e, fn)
			}
		}

	case *ObjectLit:
		for _, p := range n.Props {
			Walk(p.Key, fn)
			Walk(p.Value, fn)
		}

	// Expressions - Superset
	case *MsgSendExpr:
		Walk(n.Receiver, fn)
		for _, p := range n.Parts {
			Walk(p.Arg, fn)
		}
		for _, e := range n.VarArgs {
			Walk(e, fn)
		}

	case *SelectorLit, *ProtocolLit:
		// no children

	case *RefExpr:
		Walk(n.Target, fn)

	case *DerefExpr:
		Walk(n.Ref, fn)

	case *AtArrayLit:
		for _, e := range n.Elems {
			Walk(e, fn)
		}

	case *AtDictLit:
		for i := range n.Keys {
			Walk(n.Keys[i], fn)
			Walk(n.Values[i], fn)
		}

	// Statements - Basic
	case *ExprStmt:
		Walk(n.Expr, fn)

	case *VarStmt:
		for _, d := range n.Decls {
			Walk(d.Name, fn)
			Walk(d.Init, fn)
		}

	case *EmptyStmt:
		// no children

	case *BlockStmt:
		for _, s := range n.Stmts {
			Walk(s, fn)
		}

	// Statements - Control flow
	case *IfStmt:
		Walk(n.Cond, fn)
		Walk(n.Then, fn)
		Walk(n.Else, fn)

	case *SwitchStmt:
		Walk(n.Disc, fn)
		for _, c := range n.Cases {
			Walk(c.Test, fn)
			for _, s := range c.Body {
				Walk(s, fn)
			}
		}

	case *WhileStmt:
		Walk(n.Cond, fn)
		Walk(n.Body, fn)

	case *DoWhileStmt:
		Walk(n.Body, fn)
		Walk(n.Cond, fn)

	case *ForStmt:
		Walk(n.Init, fn)
		Walk(n.Cond, fn)
		Walk(n.Post, fn)
		Walk(n.Body, fn)

	case *ForInStmt:
		Walk(n.Left, fn)
		Walk(n.Object, fn)
		Walk(n.Body, fn)

	// Statements - Jumps
	case *BreakStmt:
		if n.Label != nil {
			Walk(n.Label, fn)
		}

	case *ContinueStmt:
		if n.Label != nil {
			Walk(n.Label, fn)
		}

	case *ReturnStmt:
		Walk(n.Value, fn)

	case *ThrowStmt:
		Walk(n.Value, fn)

	case *TryStmt:
		Walk(n.Block, fn)
		if n.Param != nil {
			Walk(n.Param, fn)
		}
		if n.Catch != nil {
			Walk(n.Catch, fn)
		}
		if n.Finally != nil {
			Walk(n.Finally, fn)
		}

	// Statements - Other
	case *LabeledStmt:
		Walk(n.Label, fn)
		Walk(n.Stmt, fn)

	case *WithStmt:
		Walk(n.Object, fn)
		Walk(n.Body, fn)

	case *DebuggerStmt:
		// no children

	case *FuncDecl:
		Walk(n.Name, fn)
		for _, p := range n.Params {
			Walk(p, fn)
		}
		Walk(n.Body, fn)

	// Declarations
	case *ClassDecl:
		if n.Super != nil {
			Walk(n.Super, fn)
		}
		for _, p := range n.Protocols {
			Walk(p, fn)
		}
		for _, iv := range n.Ivars {
			Walk(iv, fn)
		}
		for _, m := range n.Methods {
			Walk(m, fn)
		}

	case *ProtocolDecl:
		for _, p := range n.Protocols {
			Walk(p, fn)
		}
		for _, m := range n.Required {
			Walk(m, fn)
		}
		for _, m := range n.Optional {
			Walk(m, fn)
		}

	case *IvarDecl:
		// no children

	case *MethodDecl:
		if n.Body != nil {
			Walk(n.Body, fn)
		}

	case *ImportDecl:
		// no children

	case *ClassForwardDecl:
		for _, name := range n.Names {
			Walk(name, fn)
		}

	case *GlobalDecl:
		Walk(n.Name, fn)

	case *TypeDefDecl:
		Walk(n.Name, fn)
	}
}

// Inspect traverses the AST like Walk but also reports each node's
// parent. The root's parent is nil. Returning false skips the node's
// children.
func Inspect(node Node, fn func(node, parent Node) bool) {
	inspect(node, nil, fn)
}

func inspect(node, parent Node, fn func(node, parent Node) bool) {
	if node == nil || !fn(node, parent) {
		return
	}
	Walk(node, func(n Node) bool {
		if n == node {
			return true
		}
		inspect(n, node, fn)
		return false
	})
}

// WalkFunc is the callback type for Walk.
type WalkFunc func(Node) bool

// InspectFunc is the callback type for Inspect.
type InspectFunc func(node, parent Node) bool
