package parser

import (
	"strings"

	"github.com/cappuccino/objj-compiler/internal/ast"
	"github.com/cappuccino/objj-compiler/internal/lexer"
	"github.com/cappuccino/objj-compiler/internal/token"
)

// This file parses the Objective-J additions: class and protocol
// declarations, message sends and the @-literals. Everything here is
// reached only with Config.Superset enabled.

// -----------------------------------------------------------------------------
// Message sends
// -----------------------------------------------------------------------------

// parseMsgSendTail parses the selector and arguments of a message send
// after the opening bracket and receiver have been consumed.
func (p *Parser) parseMsgSendTail(pos token.Position, receiver ast.Expr, super bool) ast.Expr {
	send := &ast.MsgSendExpr{Receiver: receiver, Super: super}

	label, labPos, ok := p.parseSelFragment(true)
	if !ok {
		p.skipToBracketClose()
		send.BaseExpr = ast.MakeBaseExpr(pos, p.tok.Pos)
		return send
	}

	if p.tok.Type != token.COLON {
		// Unary send: a single fragment and the closing bracket.
		send.Parts = []ast.SelPart{{Label: label, LabPos: labPos}}
		p.expect(token.RBRACKET)
		send.BaseExpr = ast.MakeBaseExpr(pos, p.tok.Pos)
		return send
	}

	for {
		p.expect(token.COLON)
		arg := p.parseAssign(false)
		send.Parts = append(send.Parts, ast.SelPart{Label: label, LabPos: labPos, Arg: arg})

		var more bool
		label, labPos, more = p.parseSelFragment(false)
		if !more {
			break
		}
		if p.tok.Type != token.COLON {
			p.error(expectedError(p.tok.Pos, ":", p.tokenDesc()))
			break
		}
	}

	for p.tok.Type == token.COMMA {
		p.next()
		send.VarArgs = append(send.VarArgs, p.parseAssign(false))
	}

	p.expect(token.RBRACKET)
	send.BaseExpr = ast.MakeBaseExpr(pos, p.tok.Pos)
	return send
}

// parseSelFragment reads one selector fragment. Keywords are valid
// fragments ([obj new] sends "new"), and a bare colon is a fragment
// with an empty label. required distinguishes the mandatory first
// fragment from the optional continuation ones.
func (p *Parser) parseSelFragment(required bool) (string, token.Position, bool) {
	switch {
	case p.tok.Type == token.NAME || p.tok.Type.IsKeyword():
		label, pos := p.tok.Value, p.tok.Pos
		p.next()
		return label, pos, true
	case p.tok.Type == token.COLON:
		return "", p.tok.Pos, true
	default:
		if required {
			p.error(expectedError(p.tok.Pos, "selector", p.tokenDesc()))
		}
		return "", p.tok.Pos, false
	}
}

// skipToBracketClose advances past the closing bracket of a botched
// message send so parsing can continue behind it.
func (p *Parser) skipToBracketClose() {
	depth := 0
	for p.tok.Type != token.EOF {
		switch p.tok.Type {
		case token.LBRACKET, token.AT_LBRACKET:
			depth++
		case token.RBRACKET:
			if depth == 0 {
				p.next()
				return
			}
			depth--
		}
		p.next()
	}
}

// -----------------------------------------------------------------------------
// Literals
// -----------------------------------------------------------------------------

// parseAtArrayLit parses @[...].
func (p *Parser) parseAtArrayLit() ast.Expr {
	pos := p.tok.Pos
	p.expect(token.AT_LBRACKET)

	lit := &ast.AtArrayLit{}
	for !p.match(token.RBRACKET, token.EOF) {
		if len(lit.Elems) > 0 {
			if !p.expect(token.COMMA) {
				break
			}
			if p.tok.Type == token.RBRACKET {
				break // trailing comma
			}
		}
		lit.Elems = append(lit.Elems, p.parseAssign(false))
	}
	p.expect(token.RBRACKET)
	lit.BaseExpr = ast.MakeBaseExpr(pos, p.tok.Pos)
	return lit
}

// parseAtDictLit parses @{key: value, ...}.
func (p *Parser) parseAtDictLit() ast.Expr {
	pos := p.tok.Pos
	p.expect(token.AT_LBRACE)

	lit := &ast.AtDictLit{}
	for !p.match(token.RBRACE, token.EOF) {
		if len(lit.Keys) > 0 {
			if !p.expect(token.COMMA) {
				break
			}
			if p.tok.Type == token.RBRACE {
				break // trailing comma
			}
		}
		lit.Keys = append(lit.Keys, p.parseAssign(false))
		p.expect(token.COLON)
		lit.Values = append(lit.Values, p.parseAssign(false))
	}
	p.expect(token.RBRACE)
	lit.BaseExpr = ast.MakeBaseExpr(pos, p.tok.Pos)
	return lit
}

// parseSelectorLit parses @selector(...). The selector inside is a
// sequence of fragments and colons; a keyword selector must end with a
// colon.
func (p *Parser) parseSelectorLit() ast.Expr {
	pos := p.tok.Pos
	p.expect(token.AT_SELECTOR)
	p.expect(token.LPAREN)

	var sb strings.Builder
	lastWasFragment := false
	for !p.match(token.RPAREN, token.EOF) {
		switch {
		case (p.tok.Type == token.NAME || p.tok.Type.IsKeyword()) && !lastWasFragment:
			sb.WriteString(p.tok.Value)
			lastWasFragment = true
			p.next()
		case p.tok.Type == token.COLON:
			sb.WriteByte(':')
			lastWasFragment = false
			p.next()
		default:
			p.errorf("malformed selector")
			p.skipToParenClose()
			return &ast.SelectorLit{BaseExpr: ast.MakeBaseExpr(pos, p.tok.Pos)}
		}
	}

	sel := sb.String()
	if sel == "" {
		p.errorf("empty selector")
	} else if strings.Contains(sel, ":") && !strings.HasSuffix(sel, ":") {
		p.errorf("malformed selector %q", sel)
	}
	p.expect(token.RPAREN)
	return &ast.SelectorLit{
		BaseExpr: ast.MakeBaseExpr(pos, p.tok.Pos),
		Sel:      sel,
	}
}

// parseProtocolLit parses the @protocol(Name) expression form.
func (p *Parser) parseProtocolLit() ast.Expr {
	pos := p.tok.Pos
	p.expect(token.AT_PROTOCOL)
	return p.parseProtocolLitTail(pos)
}

// parseProtocolLitTail parses "(Name)" after @protocol.
func (p *Parser) parseProtocolLitTail(pos token.Position) ast.Expr {
	p.expect(token.LPAREN)
	name, _ := p.expectName()
	p.expect(token.RPAREN)
	return &ast.ProtocolLit{
		BaseExpr: ast.MakeBaseExpr(pos, p.tok.Pos),
		Name:     name,
	}
}

// parseRefExpr parses @ref(variable).
func (p *Parser) parseRefExpr() ast.Expr {
	pos := p.tok.Pos
	p.expect(token.AT_REF)
	p.expect(token.LPAREN)

	var target *ast.Ident
	if p.tok.Type == token.NAME {
		target = p.parseIdent()
	} else {
		p.error(expectedError(p.tok.Pos, "variable name", p.tokenDesc()))
		p.skipToParenClose()
		return &ast.RefExpr{BaseExpr: ast.MakeBaseExpr(pos, p.tok.Pos)}
	}
	p.expect(token.RPAREN)
	return &ast.RefExpr{
		BaseExpr: ast.MakeBaseExpr(pos, p.tok.Pos),
		Target:   target,
	}
}

// parseDerefExpr parses @deref(expr).
func (p *Parser) parseDerefExpr() ast.Expr {
	pos := p.tok.Pos
	p.expect(token.AT_DEREF)
	p.expect(token.LPAREN)
	ref := p.parseAssign(false)
	p.expect(token.RPAREN)
	return &ast.DerefExpr{
		BaseExpr: ast.MakeBaseExpr(pos, p.tok.Pos),
		Ref:      ref,
	}
}

// skipToParenClose advances past the next unmatched closing paren.
func (p *Parser) skipToParenClose() {
	depth := 0
	for p.tok.Type != token.EOF {
		switch p.tok.Type {
		case token.LPAREN:
			depth++
		case token.RPAREN:
			if depth == 0 {
				p.next()
				return
			}
			depth--
		}
		p.next()
	}
}

// -----------------------------------------------------------------------------
// Class declarations
// -----------------------------------------------------------------------------

// parseClassDecl parses an @implementation block.
func (p *Parser) parseClassDecl() ast.Stmt {
	pos := p.tok.Pos
	p.next()

	name, _ := p.expectName()
	decl := &ast.ClassDecl{Name: name}

	if p.tok.Type == token.LPAREN {
		p.next()
		decl.Category, _ = p.expectName()
		p.expect(token.RPAREN)
	} else if p.tok.Type == token.COLON {
		p.next()
		decl.Super = p.parseIdent()
	}

	if p.tok.Type == token.LESS {
		decl.Protocols = p.parseProtocolRefs()
	}

	if p.tok.Type == token.LBRACE {
		if decl.IsCategory() {
			p.errorf("categories cannot declare instance variables")
		}
		p.parseIvars(decl)
	}

	for !p.match(token.AT_END, token.EOF) {
		if p.match(token.ADD, token.SUB) {
			if m := p.parseMethodDecl(true); m != nil {
				decl.Methods = append(decl.Methods, m)
			}
			continue
		}
		p.error(expectedError(p.tok.Pos, "method declaration or @end", p.tokenDesc()))
		p.next()
	}
	p.expect(token.AT_END)

	decl.BaseStmt = ast.MakeBaseStmt(pos, p.tok.Pos)
	return decl
}

// parseProtocolRefs parses the <P1, P2> conformance list.
func (p *Parser) parseProtocolRefs() []*ast.Ident {
	p.expect(token.LESS)
	var refs []*ast.Ident
	for !p.match(token.GREATER, token.EOF) {
		if len(refs) > 0 && !p.expect(token.COMMA) {
			break
		}
		refs = append(refs, p.parseIdent())
	}
	p.expect(token.GREATER)
	return refs
}

// parseIvars parses the braced instance variable block of a class.
func (p *Parser) parseIvars(decl *ast.ClassDecl) {
	p.expect(token.LBRACE)

	for !p.match(token.RBRACE, token.EOF) {
		iv := &ast.IvarDecl{StartPos: p.tok.Pos}

		if p.tok.Type == token.AT_OUTLET ||
			(p.tok.Type == token.NAME && p.tok.Value == "IBOutlet") {
			iv.Outlet = true
			p.next()
		}

		if p.tok.Type == token.NAME || p.tok.Type.IsKeyword() {
			iv.Type = p.tok.Value
			p.next()
		} else {
			p.error(expectedError(p.tok.Pos, "type name", p.tokenDesc()))
			p.next()
			continue
		}

		iv.Name, _ = p.expectName()
		if p.tok.Type == token.AT_ACCESSORS {
			iv.Accessors = p.parseAccessors()
		}
		iv.EndPos = p.tok.Pos
		if p.tok.Type == token.SEMICOLON {
			p.next()
		}
		decl.Ivars = append(decl.Ivars, iv)
	}
	p.expect(token.RBRACE)
}

// parseAccessors parses an @accessors attribute with its optional
// argument list.
func (p *Parser) parseAccessors() *ast.AccessorSpec {
	spec := &ast.AccessorSpec{StartPos: p.tok.Pos}
	p.next()

	if p.tok.Type != token.LPAREN {
		spec.EndPos = p.tok.Pos
		return spec
	}
	p.next()

	first := true
	for !p.match(token.RPAREN, token.EOF) {
		if !first && !p.expect(token.COMMA) {
			break
		}
		first = false

		attr, attrPos := p.expectName()
		switch attr {
		case "readonly":
			spec.ReadOnly = true
		case "copy":
			spec.Copy = true
		case "property", "getter", "setter":
			p.expect(token.ASSIGN)
			value, _ := p.expectName()
			if attr == "setter" && p.tok.Type == token.COLON {
				p.next()
			}
			switch attr {
			case "property":
				spec.Property = value
			case "getter":
				spec.Getter = value
			case "setter":
				spec.Setter = value
			}
		default:
			if attr != "" {
				p.error(errorf(attrPos, "unknown @accessors attribute %q", attr))
			}
		}
	}
	p.expect(token.RPAREN)
	spec.EndPos = p.tok.Pos
	return spec
}

// parseMethodDecl parses one method declaration. withBody is true
// inside @implementation and false inside @protocol, where methods
// are headers terminated by a semicolon.
func (p *Parser) parseMethodDecl(withBody bool) *ast.MethodDecl {
	m := &ast.MethodDecl{
		StartPos:    p.tok.Pos,
		ClassMethod: p.tok.Type == token.ADD,
	}
	p.next()

	if p.tok.Type == token.LPAREN {
		p.next()
		m.ReturnType, m.Action = p.parseMethodType()
		p.expect(token.RPAREN)
	}

	label, labPos, ok := p.parseSelFragment(true)
	if !ok {
		return nil
	}

	if p.tok.Type != token.COLON {
		// Unary method.
		m.Params = []*ast.MethodParam{{Label: label, LabPos: labPos}}
	} else {
		for {
			p.expect(token.COLON)
			param := &ast.MethodParam{Label: label, LabPos: labPos}
			if p.tok.Type == token.LPAREN {
				p.next()
				param.Type, _ = p.parseMethodType()
				p.expect(token.RPAREN)
			}
			param.Name, _ = p.expectName()
			m.Params = append(m.Params, param)

			var more bool
			label, labPos, more = p.parseSelFragment(false)
			if !more {
				break
			}
			if p.tok.Type != token.COLON {
				p.error(expectedError(p.tok.Pos, ":", p.tokenDesc()))
				break
			}
		}

		if p.tok.Type == token.COMMA {
			p.next()
			p.expect(token.ELLIPSIS)
			m.VarArgs = true
		}
	}

	if withBody {
		savedLoops, savedSwitches := p.loopDepth, p.switchDepth
		savedLabels := p.labels
		p.loopDepth, p.switchDepth, p.labels = 0, 0, nil
		p.funcDepth++

		m.Body = p.parseBlock()

		p.funcDepth--
		p.loopDepth, p.switchDepth, p.labels = savedLoops, savedSwitches, savedLabels
	} else if p.tok.Type == token.SEMICOLON {
		p.next()
	}
	m.EndPos = p.tok.Pos
	return m
}

// parseMethodType parses the type between parentheses in a method
// signature. @action and its Interface Builder alias mark action
// methods.
func (p *Parser) parseMethodType() (string, bool) {
	switch {
	case p.tok.Type == token.AT_ACTION:
		p.next()
		return "@action", true
	case p.tok.Type == token.NAME || p.tok.Type.IsKeyword():
		name := p.tok.Value
		p.next()
		return name, name == "IBAction"
	case p.tok.Type == token.RPAREN:
		return "", false
	default:
		p.error(expectedError(p.tok.Pos, "type name", p.tokenDesc()))
		p.next()
		return "", false
	}
}

// -----------------------------------------------------------------------------
// Protocol declarations
// -----------------------------------------------------------------------------

// parseProtocolDecl parses an @protocol block. When a parenthesis
// follows instead of a name, this is the @protocol(Name) expression
// form used in statement position.
func (p *Parser) parseProtocolDecl() ast.Stmt {
	pos := p.tok.Pos
	p.next()

	if p.tok.Type == token.LPAREN {
		lit := p.parseProtocolLitTail(pos)
		expr := p.parseSubscripts(lit, true)
		p.expectSemi()
		return &ast.ExprStmt{
			BaseStmt: ast.MakeBaseStmt(pos, p.tok.Pos),
			Expr:     expr,
		}
	}

	name, _ := p.expectName()
	decl := &ast.ProtocolDecl{Name: name}

	if p.tok.Type == token.SEMICOLON {
		p.next()
		decl.Forward = true
		decl.BaseStmt = ast.MakeBaseStmt(pos, p.tok.Pos)
		return decl
	}

	if p.tok.Type == token.LESS {
		decl.Protocols = p.parseProtocolRefs()
	}

	required := true
	for !p.match(token.AT_END, token.EOF) {
		switch p.tok.Type {
		case token.AT_REQUIRED:
			required = true
			p.next()
		case token.AT_OPTIONAL:
			required = false
			p.next()
		case token.ADD, token.SUB:
			m := p.parseMethodDecl(false)
			if m == nil {
				continue
			}
			if required {
				decl.Required = append(decl.Required, m)
			} else {
				decl.Optional = append(decl.Optional, m)
			}
		default:
			p.error(expectedError(p.tok.Pos, "method declaration or @end", p.tokenDesc()))
			p.next()
		}
	}
	p.expect(token.AT_END)

	decl.BaseStmt = ast.MakeBaseStmt(pos, p.tok.Pos)
	return decl
}

// -----------------------------------------------------------------------------
// Directives
// -----------------------------------------------------------------------------

// parseImportDecl parses @import "file.j" and @import <Framework/file.j>.
func (p *Parser) parseImportDecl() ast.Stmt {
	pos := p.tok.Pos
	p.next()

	decl := &ast.ImportDecl{}
	switch p.tok.Type {
	case token.STRING:
		decl.Path = lexer.Unquote(p.tok.Value)
		p.next()

	case token.LESS:
		p.next()
		var sb strings.Builder
		for !p.match(token.GREATER, token.EOF) && !p.tok.NewlineBefore {
			sb.WriteString(p.tok.Value)
			p.next()
		}
		if p.tok.Type != token.GREATER {
			p.errorf("unterminated import path")
		} else {
			p.next()
		}
		decl.Path = sb.String()
		decl.System = true

	default:
		p.error(expectedError(p.tok.Pos, "import path", p.tokenDesc()))
	}

	p.expectSemi()
	decl.BaseStmt = ast.MakeBaseStmt(pos, p.tok.Pos)
	return decl
}

// parseClassForwardDecl parses @class Name, Name... .
func (p *Parser) parseClassForwardDecl() ast.Stmt {
	pos := p.tok.Pos
	p.next()

	decl := &ast.ClassForwardDecl{}
	for {
		decl.Names = append(decl.Names, p.parseIdent())
		if p.tok.Type != token.COMMA {
			break
		}
		p.next()
	}
	p.expectSemi()
	decl.BaseStmt = ast.MakeBaseStmt(pos, p.tok.Pos)
	return decl
}

// parseGlobalDecl parses @global Name.
func (p *Parser) parseGlobalDecl() ast.Stmt {
	pos := p.tok.Pos
	p.next()
	name := p.parseIdent()
	p.expectSemi()
	return &ast.GlobalDecl{
		BaseStmt: ast.MakeBaseStmt(pos, p.tok.Pos),
		Name:     name,
	}
}

// parseTypeDefDecl parses @typedef Name.
func (p *Parser) parseTypeDefDecl() ast.Stmt {
	pos := p.tok.Pos
	p.next()
	name := p.parseIdent()
	p.expectSemi()
	return &ast.TypeDefDecl{
		BaseStmt: ast.MakeBaseStmt(pos, p.tok.Pos),
		Name:     name,
	}
}
