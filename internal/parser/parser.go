package parser

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/cappuccino/objj-compiler/internal/ast"
	"github.com/cappuccino/objj-compiler/internal/lexer"
	"github.com/cappuccino/objj-compiler/internal/token"
)

// tokenName returns a human-readable name for a token type.
func tokenName(t token.Token) string {
	switch t {
	case token.ILLEGAL:
		return "illegal"
	case token.EOF:
		return "end of file"
	case token.COMMENT:
		return "comment"
	case token.ADD:
		return "+"
	case token.SUB:
		return "-"
	case token.MUL:
		return "*"
	case token.DIV:
		return "/"
	case token.MOD:
		return "%"
	case token.ADD_ASSIGN:
		return "+="
	case token.SUB_ASSIGN:
		return "-="
	case token.MUL_ASSIGN:
		return "*="
	case token.DIV_ASSIGN:
		return "/="
	case token.MOD_ASSIGN:
		return "%="
	case token.AND_ASSIGN:
		return "&="
	case token.OR_ASSIGN:
		return "|="
	case token.XOR_ASSIGN:
		return "^="
	case token.SHL_ASSIGN:
		return "<<="
	case token.SHR_ASSIGN:
		return ">>="
	case token.USHR_ASSIGN:
		return ">>>="
	case token.ASSIGN:
		return "="
	case token.EQUALS:
		return "=="
	case token.STRICT_EQUALS:
		return "==="
	case token.NOT_EQUALS:
		return "!="
	case token.STRICT_NOT_EQUALS:
		return "!=="
	case token.LESS:
		return "<"
	case token.LTE:
		return "<="
	case token.GREATER:
		return ">"
	case token.GTE:
		return ">="
	case token.AND:
		return "&&"
	case token.OR:
		return "||"
	case token.NOT:
		return "!"
	case token.BIT_AND:
		return "&"
	case token.BIT_OR:
		return "|"
	case token.BIT_XOR:
		return "^"
	case token.BIT_NOT:
		return "~"
	case token.SHL:
		return "<<"
	case token.SHR:
		return ">>"
	case token.USHR:
		return ">>>"
	case token.INCR:
		return "++"
	case token.DECR:
		return "--"
	case token.LPAREN:
		return "("
	case token.RPAREN:
		return ")"
	case token.LBRACE:
		return "{"
	case token.RBRACE:
		return "}"
	case token.LBRACKET:
		return "["
	case token.RBRACKET:
		return "]"
	case token.COMMA:
		return ","
	case token.SEMICOLON:
		return ";"
	case token.COLON:
		return ":"
	case token.QUESTION:
		return "?"
	case token.DOT:
		return "."
	case token.ELLIPSIS:
		return "..."
	case token.HASH:
		return "#"
	case token.PASTE:
		return "##"
	case token.AT:
		return "@"
	case token.AT_LBRACKET:
		return "@["
	case token.AT_LBRACE:
		return "@{"
	case token.BREAK:
		return "break"
	case token.CASE:
		return "case"
	case token.CATCH:
		return "catch"
	case token.CONTINUE:
		return "continue"
	case token.DEBUGGER:
		return "debugger"
	case token.DEFAULT:
		return "default"
	case token.DELETE:
		return "delete"
	case token.DO:
		return "do"
	case token.ELSE:
		return "else"
	case token.FINALLY:
		return "finally"
	case token.FOR:
		return "for"
	case token.FUNCTION:
		return "function"
	case token.IF:
		return "if"
	case token.IN:
		return "in"
	case token.INSTANCEOF:
		return "instanceof"
	case token.NEW:
		return "new"
	case token.RETURN:
		return "return"
	case token.SUPER:
		return "super"
	case token.SWITCH:
		return "switch"
	case token.THIS:
		return "this"
	case token.THROW:
		return "throw"
	case token.TRY:
		return "try"
	case token.TYPEOF:
		return "typeof"
	case token.VAR:
		return "var"
	case token.VOID:
		return "void"
	case token.WHILE:
		return "while"
	case token.WITH:
		return "with"
	case token.TRUE:
		return "true"
	case token.FALSE:
		return "false"
	case token.NULL:
		return "null"
	case token.AT_IMPLEMENTATION:
		return "@implementation"
	case token.AT_END:
		return "@end"
	case token.AT_PROTOCOL:
		return "@protocol"
	case token.AT_SELECTOR:
		return "@selector"
	case token.AT_ACCESSORS:
		return "@accessors"
	case token.AT_IMPORT:
		return "@import"
	case token.AT_CLASS:
		return "@class"
	case token.AT_GLOBAL:
		return "@global"
	case token.AT_TYPEDEF:
		return "@typedef"
	case token.AT_OUTLET:
		return "@outlet"
	case token.AT_ACTION:
		return "@action"
	case token.AT_OPTIONAL:
		return "@optional"
	case token.AT_REQUIRED:
		return "@required"
	case token.AT_REF:
		return "@ref"
	case token.AT_DEREF:
		return "@deref"
	case token.NAME:
		return "name"
	case token.NUMBER:
		return "number"
	case token.STRING:
		return "string"
	case token.REGEX:
		return "regex"
	default:
		return fmt.Sprintf("token(%d)", t)
	}
}

// Dialect selects the ECMAScript rules the parser enforces.
type Dialect uint8

const (
	// Ecma3 forbids reserved words as property names, trailing commas
	// in object literals, and getter/setter properties.
	Ecma3 Dialect = iota

	// Ecma5 relaxes all of the above.
	Ecma5
)

// String returns the dialect name as used in configuration.
func (d Dialect) String() string {
	if d == Ecma5 {
		return "ecma5"
	}
	return "ecma3"
}

// Scanner is the token source a Parser reads from. It is satisfied by
// *lexer.Lexer and by *preprocessor.Expander, so parsing works the
// same with or without the macro layer.
type Scanner interface {
	Scan() lexer.Token
}

// Config controls parser behavior.
type Config struct {
	Filename         string  // Source name for positions already carried by tokens
	Dialect          Dialect // ECMAScript dialect rules
	StrictSemicolons bool    // Reject statements not ended with a real semicolon
	Superset         bool    // Accept Objective-J syntax
	TrackComments    bool    // Collect COMMENT tokens into Program.Comments
}

// Parser is a recursive descent parser for Objective-J programs.
type Parser struct {
	scanner  Scanner     // Token source
	cfg      Config      // Behavior switches
	tok      lexer.Token // Current token
	prevTok  lexer.Token // Previous token (for end positions)
	errors   ErrorList   // Accumulated errors
	comments []*ast.Comment

	// Parsing state
	funcDepth   int      // nesting depth of function bodies
	loopDepth   int      // nesting depth of loops (for break/continue validation)
	switchDepth int      // nesting depth of switch statements
	labels      []string // active statement labels
}

// New creates a Parser reading tokens from sc.
func New(sc Scanner, cfg Config) *Parser {
	p := &Parser{scanner: sc, cfg: cfg}
	p.next()
	return p
}

// Parse parses an Objective-J program from source code with default
// settings: superset syntax enabled, ECMAScript 5 rules, no
// preprocessor.
func Parse(src string) (*ast.Program, error) {
	p := New(lexer.NewFromString(src), Config{Dialect: Ecma5, Superset: true})
	return p.ParseProgram()
}

// ParseExpr parses a single expression (useful for testing).
func ParseExpr(src string) (ast.Expr, error) {
	p := New(lexer.NewFromString(src), Config{Dialect: Ecma5, Superset: true})
	expr := p.parseExpression(false)
	if p.tok.Type != token.EOF {
		p.errorf("unexpected %s after expression", p.tokenDesc())
	}
	if err := p.errors.Err(); err != nil {
		return nil, err
	}
	return expr, nil
}

// ParseProgram parses a complete program.
// Returns the AST and any parse errors encountered.
func (p *Parser) ParseProgram() (*ast.Program, error) {
	prog := p.parseProgram()
	if err := p.errors.Err(); err != nil {
		return nil, err
	}
	return prog, nil
}

// Errors returns the accumulated parse errors.
func (p *Parser) Errors() ErrorList {
	return p.errors
}

// -----------------------------------------------------------------------------
// Token handling
// -----------------------------------------------------------------------------

// next advances to the next token, collecting comments along the way.
// A newline in front of a skipped comment still counts as a newline in
// front of the following token, which matters for semicolon insertion.
func (p *Parser) next() {
	p.prevTok = p.tok
	sawNewline := false
	for {
		p.tok = p.scanner.Scan()
		if p.tok.Type != token.COMMENT {
			break
		}
		if p.tok.NewlineBefore {
			sawNewline = true
		}
		if p.cfg.TrackComments {
			c := &ast.Comment{
				Text:     p.tok.Value,
				Block:    strings.HasPrefix(p.tok.Value, "/*"),
				OwnLine:  p.tok.NewlineBefore,
				StartPos: p.tok.Pos,
			}
			c.EndPos = p.tok.Pos
			c.EndPos.Column += len(p.tok.Value)
			c.EndPos.Offset += len(p.tok.Value)
			p.comments = append(p.comments, c)
		}
	}
	if sawNewline {
		p.tok.NewlineBefore = true
	}
}

// expect checks that the current token is tok and advances.
// If not, it records an error.
func (p *Parser) expect(tok token.Token) bool {
	if p.tok.Type != tok {
		p.error(expectedError(p.tok.Pos, tokenName(tok), p.tokenDesc()))
		return false
	}
	p.next()
	return true
}

// expectName expects a NAME token and returns its value and position.
func (p *Parser) expectName() (string, token.Position) {
	name := p.tok.Value
	pos := p.tok.Pos
	if !p.expect(token.NAME) {
		return "", pos
	}
	return name, pos
}

// match returns true if current token matches any of the given types.
func (p *Parser) match(types ...token.Token) bool {
	for _, t := range types {
		if p.tok.Type == t {
			return true
		}
	}
	return false
}

// tokenDesc returns a description of the current token for error messages.
func (p *Parser) tokenDesc() string {
	switch p.tok.Type {
	case token.NAME, token.NUMBER, token.STRING:
		return p.tok.Value
	case token.ILLEGAL:
		// ILLEGAL token's Value contains the actual error message
		return p.tok.Value
	case token.EOF:
		return "end of file"
	default:
		return tokenName(p.tok.Type)
	}
}

// error records a parse error.
func (p *Parser) error(err *ParseError) {
	p.errors = append(p.errors, err)
}

// errorf records a formatted parse error at current position.
func (p *Parser) errorf(format string, args ...any) {
	p.error(errorf(p.tok.Pos, format, args...))
}

// -----------------------------------------------------------------------------
// Semicolon handling
// -----------------------------------------------------------------------------

// expectSemi terminates a statement. Without StrictSemicolons a
// newline, a closing brace or the end of input may stand in for the
// semicolon, following the automatic insertion rules.
func (p *Parser) expectSemi() {
	if p.tok.Type == token.SEMICOLON {
		p.next()
		return
	}
	if !p.cfg.StrictSemicolons {
		if p.tok.Type == token.RBRACE || p.tok.Type == token.EOF || p.tok.NewlineBefore {
			return
		}
	}
	p.error(expectedError(p.tok.Pos, ";", p.tokenDesc()))
}

// atStmtEnd reports whether the current token already terminates a
// statement, used by the restricted productions (return and friends).
func (p *Parser) atStmtEnd() bool {
	return p.match(token.SEMICOLON, token.RBRACE, token.EOF) || p.tok.NewlineBefore
}

// -----------------------------------------------------------------------------
// Program parsing
// -----------------------------------------------------------------------------

// parseProgram parses a complete program.
func (p *Parser) parseProgram() *ast.Program {
	prog := &ast.Program{
		Filename: p.cfg.Filename,
		StartPos: p.tok.Pos,
	}

	for p.tok.Type != token.EOF {
		beforePos := p.tok.Pos
		beforeType := p.tok.Type

		if s := p.parseStatement(); s != nil {
			prog.Body = append(prog.Body, s)
		}

		// Force progress after an unrecoverable error.
		if p.tok.Pos == beforePos && p.tok.Type == beforeType && p.tok.Type != token.EOF {
			p.next()
		}
	}

	prog.Comments = p.comments
	prog.EndPos = p.tok.Pos
	return prog
}

// -----------------------------------------------------------------------------
// Statements
// -----------------------------------------------------------------------------

// parseStatement parses a single statement or declaration.
func (p *Parser) parseStatement() ast.Stmt {
	switch p.tok.Type {
	case token.LBRACE:
		return p.parseBlock()

	case token.VAR:
		stmt := p.parseVarCore(false)
		p.expectSemi()
		stmt.EndPos = p.tok.Pos
		return stmt

	case token.SEMICOLON:
		pos := p.tok.Pos
		p.next()
		return &ast.EmptyStmt{BaseStmt: ast.MakeBaseStmt(pos, p.tok.Pos)}

	case token.IF:
		return p.parseIf()

	case token.SWITCH:
		return p.parseSwitch()

	case token.WHILE:
		return p.parseWhile()

	case token.DO:
		return p.parseDoWhile()

	case token.FOR:
		return p.parseFor()

	case token.BREAK, token.CONTINUE:
		return p.parseBreakContinue()

	case token.RETURN:
		return p.parseReturn()

	case token.THROW:
		return p.parseThrow()

	case token.TRY:
		return p.parseTry()

	case token.WITH:
		return p.parseWith()

	case token.DEBUGGER:
		pos := p.tok.Pos
		p.next()
		p.expectSemi()
		return &ast.DebuggerStmt{BaseStmt: ast.MakeBaseStmt(pos, p.tok.Pos)}

	case token.FUNCTION:
		return p.parseFuncDecl()

	case token.AT_IMPLEMENTATION:
		if !p.requireSuperset() {
			return nil
		}
		return p.parseClassDecl()

	case token.AT_PROTOCOL:
		if !p.requireSuperset() {
			return nil
		}
		return p.parseProtocolDecl()

	case token.AT_IMPORT:
		if !p.requireSuperset() {
			return nil
		}
		return p.parseImportDecl()

	case token.AT_CLASS:
		if !p.requireSuperset() {
			return nil
		}
		return p.parseClassForwardDecl()

	case token.AT_GLOBAL:
		if !p.requireSuperset() {
			return nil
		}
		return p.parseGlobalDecl()

	case token.AT_TYPEDEF:
		if !p.requireSuperset() {
			return nil
		}
		return p.parseTypeDefDecl()

	case token.AT_END:
		p.errorf("stray @end")
		p.next()
		return nil

	case token.EOF:
		return nil

	default:
		return p.parseExprOrLabeledStmt()
	}
}

// requireSuperset records an error when Objective-J syntax is met with
// the superset disabled.
func (p *Parser) requireSuperset() bool {
	if p.cfg.Superset {
		return true
	}
	p.errorf("%s requires Objective-J syntax, which is disabled", p.tokenDesc())
	p.next()
	return false
}

// parseExprOrLabeledStmt parses an expression statement, converting it
// to a labeled statement when an identifier is followed by a colon.
func (p *Parser) parseExprOrLabeledStmt() ast.Stmt {
	pos := p.tok.Pos
	expr := p.parseExpression(false)
	if expr == nil {
		return nil
	}

	if ident, ok := expr.(*ast.Ident); ok && p.tok.Type == token.COLON {
		p.next()
		for _, l := range p.labels {
			if l == ident.Name {
				p.error(errorf(ident.Pos(), "label %q is already declared", ident.Name))
			}
		}
		p.labels = append(p.labels, ident.Name)
		body := p.parseStatement()
		p.labels = p.labels[:len(p.labels)-1]
		return &ast.LabeledStmt{
			BaseStmt: ast.MakeBaseStmt(pos, p.tok.Pos),
			Label:    ident,
			Stmt:     body,
		}
	}

	p.expectSemi()
	return &ast.ExprStmt{
		BaseStmt: ast.MakeBaseStmt(pos, p.tok.Pos),
		Expr:     expr,
	}
}

// parseBlock parses a braced statement list.
func (p *Parser) parseBlock() *ast.BlockStmt {
	pos := p.tok.Pos
	if !p.expect(token.LBRACE) {
		return nil
	}

	block := &ast.BlockStmt{}
	for !p.match(token.RBRACE, token.EOF) {
		beforePos := p.tok.Pos
		beforeType := p.tok.Type

		if s := p.parseStatement(); s != nil {
			block.Stmts = append(block.Stmts, s)
		}
		if p.tok.Pos == beforePos && p.tok.Type == beforeType && !p.match(token.RBRACE, token.EOF) {
			p.next()
		}
	}
	p.expect(token.RBRACE)
	block.BaseStmt = ast.MakeBaseStmt(pos, p.tok.Pos)
	return block
}

// parseVarCore parses "var decl, decl..." without the terminator, so
// it serves both statements and for-loop headers.
func (p *Parser) parseVarCore(noIn bool) *ast.VarStmt {
	pos := p.tok.Pos
	p.expect(token.VAR)

	stmt := &ast.VarStmt{BaseStmt: ast.MakeBaseStmt(pos, pos)}
	for {
		d := &ast.VarDecl{StartPos: p.tok.Pos}
		d.Name = p.parseIdent()
		if p.tok.Type == token.ASSIGN {
			p.next()
			d.Init = p.parseAssign(noIn)
		}
		d.EndPos = p.tok.Pos
		stmt.Decls = append(stmt.Decls, d)

		if p.tok.Type != token.COMMA {
			break
		}
		p.next()
	}
	stmt.EndPos = p.tok.Pos
	return stmt
}

// parseIf parses an if statement with optional else branch.
func (p *Parser) parseIf() ast.Stmt {
	pos := p.tok.Pos
	p.next()
	p.expect(token.LPAREN)
	cond := p.parseExpression(false)
	p.expect(token.RPAREN)
	then := p.parseStatement()

	var els ast.Stmt
	if p.tok.Type == token.ELSE {
		p.next()
		els = p.parseStatement()
	}
	return &ast.IfStmt{
		BaseStmt: ast.MakeBaseStmt(pos, p.tok.Pos),
		Cond:     cond,
		Then:     then,
		Else:     els,
	}
}

// parseSwitch parses a switch statement.
func (p *Parser) parseSwitch() ast.Stmt {
	pos := p.tok.Pos
	p.next()
	p.expect(token.LPAREN)
	disc := p.parseExpression(false)
	p.expect(token.RPAREN)
	p.expect(token.LBRACE)

	stmt := &ast.SwitchStmt{Disc: disc}
	p.switchDepth++
	sawDefault := false

	for !p.match(token.RBRACE, token.EOF) {
		clause := &ast.CaseClause{StartPos: p.tok.Pos}
		switch p.tok.Type {
		case token.CASE:
			p.next()
			clause.Test = p.parseExpression(false)
		case token.DEFAULT:
			if sawDefault {
				p.errorf("multiple default clauses in switch")
			}
			sawDefault = true
			p.next()
		default:
			p.error(expectedError(p.tok.Pos, "case or default", p.tokenDesc()))
			p.next()
			continue
		}
		p.expect(token.COLON)

		for !p.match(token.CASE, token.DEFAULT, token.RBRACE, token.EOF) {
			beforePos := p.tok.Pos
			beforeType := p.tok.Type
			if s := p.parseStatement(); s != nil {
				clause.Body = append(clause.Body, s)
			}
			if p.tok.Pos == beforePos && p.tok.Type == beforeType &&
				!p.match(token.CASE, token.DEFAULT, token.RBRACE, token.EOF) {
				p.next()
			}
		}
		clause.EndPos = p.tok.Pos
		stmt.Cases = append(stmt.Cases, clause)
	}

	p.switchDepth--
	p.expect(token.RBRACE)
	stmt.BaseStmt = ast.MakeBaseStmt(pos, p.tok.Pos)
	return stmt
}

// parseWhile parses a while loop.
func (p *Parser) parseWhile() ast.Stmt {
	pos := p.tok.Pos
	p.next()
	p.expect(token.LPAREN)
	cond := p.parseExpression(false)
	p.expect(token.RPAREN)

	p.loopDepth++
	body := p.parseStatement()
	p.loopDepth--

	return &ast.WhileStmt{
		BaseStmt: ast.MakeBaseStmt(pos, p.tok.Pos),
		Cond:     cond,
		Body:     body,
	}
}

// parseDoWhile parses a do-while loop.
func (p *Parser) parseDoWhile() ast.Stmt {
	pos := p.tok.Pos
	p.next()

	p.loopDepth++
	body := p.parseStatement()
	p.loopDepth--

	p.expect(token.WHILE)
	p.expect(token.LPAREN)
	cond := p.parseExpression(false)
	p.expect(token.RPAREN)
	p.expectSemi()

	return &ast.DoWhileStmt{
		BaseStmt: ast.MakeBaseStmt(pos, p.tok.Pos),
		Body:     body,
		Cond:     cond,
	}
}

// parseFor parses both classic three-header loops and for-in loops.
func (p *Parser) parseFor() ast.Stmt {
	pos := p.tok.Pos
	p.next()
	p.expect(token.LPAREN)

	var init ast.Node
	switch p.tok.Type {
	case token.SEMICOLON:
		// no init

	case token.VAR:
		varStmt := p.parseVarCore(true)
		if p.tok.Type == token.IN {
			if len(varStmt.Decls) != 1 {
				p.errorf("for-in needs a single variable declaration")
			}
			return p.parseForIn(pos, varStmt)
		}
		init = varStmt

	default:
		expr := p.parseExpression(true)
		if p.tok.Type == token.IN {
			if !ast.IsLValue(expr) {
				p.error(errorf(expr.Pos(), "invalid for-in loop target"))
			}
			return p.parseForIn(pos, expr)
		}
		init = expr
	}

	p.expect(token.SEMICOLON)

	var cond ast.Expr
	if p.tok.Type != token.SEMICOLON {
		cond = p.parseExpression(false)
	}
	p.expect(token.SEMICOLON)

	var post ast.Expr
	if p.tok.Type != token.RPAREN {
		post = p.parseExpression(false)
	}
	p.expect(token.RPAREN)

	p.loopDepth++
	body := p.parseStatement()
	p.loopDepth--

	return &ast.ForStmt{
		BaseStmt: ast.MakeBaseStmt(pos, p.tok.Pos),
		Init:     init,
		Cond:     cond,
		Post:     post,
		Body:     body,
	}
}

// parseForIn parses the remainder of a for-in loop after the in
// keyword is sighted.
func (p *Parser) parseForIn(pos token.Position, left ast.Node) ast.Stmt {
	p.expect(token.IN)
	object := p.parseExpression(false)
	p.expect(token.RPAREN)

	p.loopDepth++
	body := p.parseStatement()
	p.loopDepth--

	return &ast.ForInStmt{
		BaseStmt: ast.MakeBaseStmt(pos, p.tok.Pos),
		Left:     left,
		Object:   object,
		Body:     body,
	}
}

// parseBreakContinue parses break and continue with their optional
// labels. The label must be on the same line.
func (p *Parser) parseBreakContinue() ast.Stmt {
	pos := p.tok.Pos
	isBreak := p.tok.Type == token.BREAK
	p.next()

	var label *ast.Ident
	if p.tok.Type == token.NAME && !p.tok.NewlineBefore {
		label = p.parseIdent()
		found := false
		for _, l := range p.labels {
			if l == label.Name {
				found = true
				break
			}
		}
		if !found {
			p.error(errorf(label.Pos(), "undefined label %q", label.Name))
		}
	}
	p.expectSemi()

	if isBreak {
		if label == nil && p.loopDepth == 0 && p.switchDepth == 0 {
			p.error(errorf(pos, "break outside of loop or switch"))
		}
		return &ast.BreakStmt{BaseStmt: ast.MakeBaseStmt(pos, p.tok.Pos), Label: label}
	}
	if label == nil && p.loopDepth == 0 {
		p.error(errorf(pos, "continue outside of loop"))
	}
	return &ast.ContinueStmt{BaseStmt: ast.MakeBaseStmt(pos, p.tok.Pos), Label: label}
}

// parseReturn parses a return statement. The value must start on the
// same line.
func (p *Parser) parseReturn() ast.Stmt {
	pos := p.tok.Pos
	if p.funcDepth == 0 {
		p.errorf("return outside of function")
	}
	p.next()

	var value ast.Expr
	if !p.atStmtEnd() {
		value = p.parseExpression(false)
	}
	p.expectSemi()
	return &ast.ReturnStmt{BaseStmt: ast.MakeBaseStmt(pos, p.tok.Pos), Value: value}
}

// parseThrow parses a throw statement, whose value is mandatory and
// must start on the same line.
func (p *Parser) parseThrow() ast.Stmt {
	pos := p.tok.Pos
	p.next()
	if p.tok.NewlineBefore {
		p.errorf("illegal newline after throw")
	}
	value := p.parseExpression(false)
	p.expectSemi()
	return &ast.ThrowStmt{BaseStmt: ast.MakeBaseStmt(pos, p.tok.Pos), Value: value}
}

// parseTry parses a try statement with catch and/or finally.
func (p *Parser) parseTry() ast.Stmt {
	pos := p.tok.Pos
	p.next()

	stmt := &ast.TryStmt{Block: p.parseBlock()}
	if p.tok.Type == token.CATCH {
		p.next()
		p.expect(token.LPAREN)
		stmt.Param = p.parseIdent()
		p.expect(token.RPAREN)
		stmt.Catch = p.parseBlock()
	}
	if p.tok.Type == token.FINALLY {
		p.next()
		stmt.Finally = p.parseBlock()
	}
	if stmt.Catch == nil && stmt.Finally == nil {
		p.error(errorf(pos, "missing catch or finally after try"))
	}
	stmt.BaseStmt = ast.MakeBaseStmt(pos, p.tok.Pos)
	return stmt
}

// parseWith parses a with statement.
func (p *Parser) parseWith() ast.Stmt {
	pos := p.tok.Pos
	p.next()
	p.expect(token.LPAREN)
	object := p.parseExpression(false)
	p.expect(token.RPAREN)
	body := p.parseStatement()
	return &ast.WithStmt{
		BaseStmt: ast.MakeBaseStmt(pos, p.tok.Pos),
		Object:   object,
		Body:     body,
	}
}

// parseFuncDecl parses a function declaration statement.
func (p *Parser) parseFuncDecl() ast.Stmt {
	pos := p.tok.Pos
	p.next()

	name := p.parseIdent()
	params, body := p.parseFuncRest()
	return &ast.FuncDecl{
		BaseStmt: ast.MakeBaseStmt(pos, p.tok.Pos),
		Name:     name,
		Params:   params,
		Body:     body,
	}
}

// parseFuncRest parses the parameter list and body shared by function
// declarations, function expressions and accessor properties.
// Loop and label state does not cross the function boundary.
func (p *Parser) parseFuncRest() ([]*ast.Ident, *ast.BlockStmt) {
	p.expect(token.LPAREN)

	var params []*ast.Ident
	for !p.match(token.RPAREN, token.EOF) {
		if len(params) > 0 && !p.expect(token.COMMA) {
			break
		}
		params = append(params, p.parseIdent())
	}
	p.expect(token.RPAREN)

	savedLoops, savedSwitches := p.loopDepth, p.switchDepth
	savedLabels := p.labels
	p.loopDepth, p.switchDepth, p.labels = 0, 0, nil
	p.funcDepth++

	body := p.parseBlock()

	p.funcDepth--
	p.loopDepth, p.switchDepth, p.labels = savedLoops, savedSwitches, savedLabels
	return params, body
}

// -----------------------------------------------------------------------------
// Expressions
// -----------------------------------------------------------------------------

// binaryPrec maps binary operators to their precedence level.
// Higher binds tighter; assignment and ternary live outside the table.
var binaryPrec = map[token.Token]int{
	token.OR:                1,
	token.AND:               2,
	token.BIT_OR:            3,
	token.BIT_XOR:           4,
	token.BIT_AND:           5,
	token.EQUALS:            6,
	token.NOT_EQUALS:        6,
	token.STRICT_EQUALS:     6,
	token.STRICT_NOT_EQUALS: 6,
	token.LESS:              7,
	token.LTE:               7,
	token.GREATER:           7,
	token.GTE:               7,
	token.IN:                7,
	token.INSTANCEOF:        7,
	token.SHL:               8,
	token.SHR:               8,
	token.USHR:              8,
	token.ADD:               9,
	token.SUB:               9,
	token.MUL:               10,
	token.DIV:               10,
	token.MOD:               10,
}

// parseExpression parses a full expression including the comma
// operator. noIn suppresses the in operator, as needed inside for-loop
// headers.
func (p *Parser) parseExpression(noIn bool) ast.Expr {
	first := p.parseAssign(noIn)
	if p.tok.Type != token.COMMA || first == nil {
		return first
	}

	seq := &ast.SeqExpr{Exprs: []ast.Expr{first}}
	for p.tok.Type == token.COMMA {
		p.next()
		seq.Exprs = append(seq.Exprs, p.parseAssign(noIn))
	}
	seq.BaseExpr = ast.MakeBaseExpr(first.Pos(), p.tok.Pos)
	return seq
}

// parseAssign parses an assignment expression (right associative).
func (p *Parser) parseAssign(noIn bool) ast.Expr {
	left := p.parseTernary(noIn)
	if left == nil || !p.tok.Type.IsAssign() {
		return left
	}

	if !ast.IsLValue(left) {
		p.error(errorf(left.Pos(), "invalid assignment target"))
	}
	op := p.tok.Type
	p.next()
	right := p.parseAssign(noIn)
	return &ast.AssignExpr{
		BaseExpr: ast.MakeBaseExpr(left.Pos(), p.tok.Pos),
		Left:     left,
		Op:       op,
		Right:    right,
	}
}

// parseTernary parses a conditional expression.
func (p *Parser) parseTernary(noIn bool) ast.Expr {
	cond := p.parseBinary(1, noIn)
	if cond == nil || p.tok.Type != token.QUESTION {
		return cond
	}

	p.next()
	then := p.parseAssign(false)
	p.expect(token.COLON)
	els := p.parseAssign(noIn)
	return &ast.TernaryExpr{
		BaseExpr: ast.MakeBaseExpr(cond.Pos(), p.tok.Pos),
		Cond:     cond,
		Then:     then,
		Else:     els,
	}
}

// parseBinary parses binary operators with precedence climbing.
func (p *Parser) parseBinary(minPrec int, noIn bool) ast.Expr {
	left := p.parseUnary()
	for left != nil {
		prec, ok := binaryPrec[p.tok.Type]
		if !ok || prec < minPrec {
			break
		}
		if p.tok.Type == token.IN && noIn {
			break
		}
		op := p.tok.Type
		p.next()
		right := p.parseBinary(prec+1, noIn)
		left = &ast.BinaryExpr{
			BaseExpr: ast.MakeBaseExpr(left.Pos(), p.tok.Pos),
			Left:     left,
			Op:       op,
			Right:    right,
		}
	}
	return left
}

// parseUnary parses prefix operators.
func (p *Parser) parseUnary() ast.Expr {
	switch p.tok.Type {
	case token.NOT, token.BIT_NOT, token.ADD, token.SUB,
		token.TYPEOF, token.VOID, token.DELETE:
		pos := p.tok.Pos
		op := p.tok.Type
		p.next()
		operand := p.parseUnary()
		return &ast.UnaryExpr{
			BaseExpr: ast.MakeBaseExpr(pos, p.tok.Pos),
			Op:       op,
			Expr:     operand,
		}

	case token.INCR, token.DECR:
		pos := p.tok.Pos
		op := p.tok.Type
		p.next()
		operand := p.parseUnary()
		if operand != nil && !ast.IsLValue(operand) {
			p.error(errorf(operand.Pos(), "invalid %s target", tokenName(op)))
		}
		return &ast.UnaryExpr{
			BaseExpr: ast.MakeBaseExpr(pos, p.tok.Pos),
			Op:       op,
			Expr:     operand,
		}

	default:
		return p.parsePostfix()
	}
}

// parsePostfix parses postfix increment and decrement, which must
// stay on the operand's line.
func (p *Parser) parsePostfix() ast.Expr {
	expr := p.parseExprSubscripts()
	for expr != nil && p.match(token.INCR, token.DECR) && !p.tok.NewlineBefore {
		if !ast.IsLValue(expr) {
			p.error(errorf(expr.Pos(), "invalid %s target", tokenName(p.tok.Type)))
		}
		op := p.tok.Type
		p.next()
		expr = &ast.UnaryExpr{
			BaseExpr: ast.MakeBaseExpr(expr.Pos(), p.tok.Pos),
			Op:       op,
			Expr:     expr,
			Post:     true,
		}
	}
	return expr
}

// parseExprSubscripts parses a primary expression and its member
// access, indexing and call suffixes.
func (p *Parser) parseExprSubscripts() ast.Expr {
	base := p.parseExprAtom()
	return p.parseSubscripts(base, true)
}

// parseSubscripts extends base with .name, [index] and (args)
// suffixes. allowCall is false while parsing a new-expression callee,
// where the argument list belongs to new.
func (p *Parser) parseSubscripts(base ast.Expr, allowCall bool) ast.Expr {
	for base != nil {
		switch p.tok.Type {
		case token.DOT:
			p.next()
			prop := p.parsePropertyName()
			if prop == nil {
				return base
			}
			base = &ast.MemberExpr{
				BaseExpr: ast.MakeBaseExpr(base.Pos(), p.tok.Pos),
				Object:   base,
				Property: prop,
			}

		case token.LBRACKET:
			p.next()
			index := p.parseExpression(false)
			p.expect(token.RBRACKET)
			base = &ast.MemberExpr{
				BaseExpr: ast.MakeBaseExpr(base.Pos(), p.tok.Pos),
				Object:   base,
				Property: index,
				Computed: true,
			}

		case token.LPAREN:
			if !allowCall {
				return base
			}
			args := p.parseArgs()
			base = &ast.CallExpr{
				BaseExpr: ast.MakeBaseExpr(base.Pos(), p.tok.Pos),
				Callee:   base,
				Args:     args,
			}

		default:
			return base
		}
	}
	return base
}

// parsePropertyName parses the name after a dot. ECMAScript 3 forbids
// keywords and reserved words here; ECMAScript 5 allows them.
func (p *Parser) parsePropertyName() ast.Expr {
	pos := p.tok.Pos
	name := p.tok.Value
	switch {
	case p.tok.Type == token.NAME:
		if p.cfg.Dialect < Ecma5 && token.IsReservedWord(name) {
			p.errorf("reserved word %q cannot be a property name before ECMAScript 5", name)
		}
	case p.tok.Type.IsKeyword():
		if p.cfg.Dialect < Ecma5 {
			p.errorf("keyword %q cannot be a property name before ECMAScript 5", name)
		}
	default:
		p.error(expectedError(pos, "property name", p.tokenDesc()))
		return nil
	}
	p.next()
	return &ast.Ident{BaseExpr: ast.MakeBaseExpr(pos, p.tok.Pos), Name: name}
}

// parseArgs parses a parenthesized argument list.
func (p *Parser) parseArgs() []ast.Expr {
	p.expect(token.LPAREN)
	var args []ast.Expr
	for !p.match(token.RPAREN, token.EOF) {
		if len(args) > 0 && !p.expect(token.COMMA) {
			break
		}
		args = append(args, p.parseAssign(false))
	}
	p.expect(token.RPAREN)
	return args
}

// parseIdent parses an identifier, rejecting reserved words.
func (p *Parser) parseIdent() *ast.Ident {
	name := p.tok.Value
	pos := p.tok.Pos
	if p.tok.Type != token.NAME {
		p.error(expectedError(pos, "identifier", p.tokenDesc()))
		if p.tok.Type.IsKeyword() {
			p.next()
		}
		return &ast.Ident{BaseExpr: ast.MakeBaseExpr(pos, pos), Name: name}
	}
	if token.IsReservedWord(name) {
		p.error(errorf(pos, "%q is a reserved word", name))
	}
	p.next()
	return &ast.Ident{BaseExpr: ast.MakeBaseExpr(pos, p.tok.Pos), Name: name}
}

// parseExprAtom parses a primary expression.
func (p *Parser) parseExprAtom() ast.Expr {
	pos := p.tok.Pos

	switch p.tok.Type {
	case token.NUMBER:
		raw := p.tok.Value
		p.next()
		return &ast.NumLit{
			BaseExpr: ast.MakeBaseExpr(pos, p.tok.Pos),
			Value:    parseNumber(raw),
			Raw:      raw,
		}

	case token.STRING:
		raw := p.tok.Value
		p.next()
		return &ast.StrLit{
			BaseExpr: ast.MakeBaseExpr(pos, p.tok.Pos),
			Value:    lexer.Unquote(raw),
			Raw:      raw,
		}

	case token.REGEX:
		raw := p.tok.Value
		p.next()
		pattern, flags := splitRegex(raw)
		return &ast.RegexLit{
			BaseExpr: ast.MakeBaseExpr(pos, p.tok.Pos),
			Pattern:  pattern,
			Flags:    flags,
		}

	case token.TRUE, token.FALSE:
		value := p.tok.Type == token.TRUE
		p.next()
		return &ast.BoolLit{BaseExpr: ast.MakeBaseExpr(pos, p.tok.Pos), Value: value}

	case token.NULL:
		p.next()
		return &ast.NullLit{BaseExpr: ast.MakeBaseExpr(pos, p.tok.Pos)}

	case token.THIS:
		p.next()
		return &ast.ThisExpr{BaseExpr: ast.MakeBaseExpr(pos, p.tok.Pos)}

	case token.NAME:
		return p.parseIdent()

	case token.LPAREN:
		p.next()
		inner := p.parseExpression(false)
		p.expect(token.RPAREN)
		return &ast.GroupExpr{
			BaseExpr: ast.MakeBaseExpr(pos, p.tok.Pos),
			Expr:     inner,
		}

	case token.LBRACKET:
		return p.parseBracket()

	case token.LBRACE:
		return p.parseObjectLit()

	case token.FUNCTION:
		p.next()
		var name string
		if p.tok.Type == token.NAME {
			name = p.tok.Value
			p.next()
		}
		params, body := p.parseFuncRest()
		return &ast.FuncExpr{
			BaseExpr: ast.MakeBaseExpr(pos, p.tok.Pos),
			Name:     name,
			Params:   params,
			Body:     body,
		}

	case token.NEW:
		return p.parseNew()

	case token.AT_LBRACKET:
		return p.parseAtArrayLit()

	case token.AT_LBRACE:
		return p.parseAtDictLit()

	case token.AT_SELECTOR:
		return p.parseSelectorLit()

	case token.AT_PROTOCOL:
		return p.parseProtocolLit()

	case token.AT_REF:
		return p.parseRefExpr()

	case token.AT_DEREF:
		return p.parseDerefExpr()

	case token.SUPER:
		p.errorf("super is only valid as a message receiver")
		p.next()
		return nil

	case token.ILLEGAL:
		p.errorf("%s", p.tok.Value)
		p.next()
		return nil

	default:
		p.error(expectedError(pos, "expression", p.tokenDesc()))
		return nil
	}
}

// parseNew parses a new-expression. The callee is parsed without call
// suffixes so an immediate argument list binds to new.
func (p *Parser) parseNew() ast.Expr {
	pos := p.tok.Pos
	p.next()

	callee := p.parseExprAtom()
	callee = p.parseSubscripts(callee, false)

	n := &ast.NewExpr{Callee: callee}
	if p.tok.Type == token.LPAREN {
		n.Args = p.parseArgs()
		n.Parens = true
	}
	n.BaseExpr = ast.MakeBaseExpr(pos, p.tok.Pos)
	return n
}

// parseBracket disambiguates JavaScript array literals from message
// sends: after the first expression, a comma or closing bracket means
// an array, anything else is read as a selector.
func (p *Parser) parseBracket() ast.Expr {
	pos := p.tok.Pos
	p.next()

	switch p.tok.Type {
	case token.RBRACKET:
		p.next()
		return &ast.ArrayLit{BaseExpr: ast.MakeBaseExpr(pos, p.tok.Pos)}

	case token.COMMA:
		// Leading elision: definitely an array.
		return p.parseArrayRest(pos, []ast.Expr{nil})
	}

	if p.cfg.Superset && p.tok.Type == token.SUPER {
		p.next()
		return p.parseMsgSendTail(pos, nil, true)
	}

	first := p.parseAssign(false)
	switch {
	case p.match(token.COMMA, token.RBRACKET):
		return p.parseArrayRest(pos, []ast.Expr{first})
	case p.cfg.Superset:
		return p.parseMsgSendTail(pos, first, false)
	default:
		p.error(expectedError(p.tok.Pos, ", or ]", p.tokenDesc()))
		return first
	}
}

// parseArrayRest parses the remaining elements of an array literal.
// A comma directly followed by another comma records a hole; a
// trailing comma adds no element.
func (p *Parser) parseArrayRest(pos token.Position, elems []ast.Expr) ast.Expr {
	for p.tok.Type == token.COMMA {
		p.next()
		switch p.tok.Type {
		case token.RBRACKET:
			// trailing comma
		case token.COMMA:
			elems = append(elems, nil)
		default:
			elems = append(elems, p.parseAssign(false))
		}
	}
	p.expect(token.RBRACKET)
	return &ast.ArrayLit{
		BaseExpr: ast.MakeBaseExpr(pos, p.tok.Pos),
		Elems:    elems,
	}
}

// parseObjectLit parses a JavaScript object literal, including ES5
// getter and setter properties.
func (p *Parser) parseObjectLit() ast.Expr {
	pos := p.tok.Pos
	p.expect(token.LBRACE)

	obj := &ast.ObjectLit{}
	for !p.match(token.RBRACE, token.EOF) {
		if len(obj.Props) > 0 {
			if !p.expect(token.COMMA) {
				break
			}
			if p.tok.Type == token.RBRACE {
				if p.cfg.Dialect < Ecma5 {
					p.errorf("trailing comma in object literal requires ECMAScript 5")
				}
				break
			}
		}
		if prop := p.parseProperty(); prop != nil {
			obj.Props = append(obj.Props, prop)
		}
	}
	p.expect(token.RBRACE)
	obj.BaseExpr = ast.MakeBaseExpr(pos, p.tok.Pos)
	return obj
}

// parseProperty parses one object literal entry.
func (p *Parser) parseProperty() *ast.Property {
	prop := &ast.Property{StartPos: p.tok.Pos}

	// get/set only act as accessor keywords when another key follows.
	if p.tok.Type == token.NAME && (p.tok.Value == "get" || p.tok.Value == "set") {
		word := p.tok.Value
		accessorPos := p.tok.Pos
		p.next()
		if !p.match(token.COLON, token.COMMA, token.RBRACE, token.LPAREN) {
			kind := ast.PropGet
			if word == "set" {
				kind = ast.PropSet
			}
			if p.cfg.Dialect < Ecma5 {
				p.error(errorf(accessorPos, "getter and setter properties require ECMAScript 5"))
			}
			prop.Kind = kind
			prop.Key = p.parsePropertyKey()
			fnPos := p.tok.Pos
			params, body := p.parseFuncRest()
			if kind == ast.PropGet && len(params) != 0 {
				p.error(errorf(fnPos, "getter must not declare parameters"))
			}
			if kind == ast.PropSet && len(params) != 1 {
				p.error(errorf(fnPos, "setter must declare exactly one parameter"))
			}
			prop.Value = &ast.FuncExpr{
				BaseExpr: ast.MakeBaseExpr(fnPos, p.tok.Pos),
				Params:   params,
				Body:     body,
			}
			prop.EndPos = p.tok.Pos
			return prop
		}
		// Plain property named get or set.
		prop.Key = &ast.Ident{
			BaseExpr: ast.MakeBaseExpr(accessorPos, p.tok.Pos),
			Name:     word,
		}
	} else {
		prop.Key = p.parsePropertyKey()
	}

	if prop.Key == nil {
		return nil
	}
	p.expect(token.COLON)
	prop.Value = p.parseAssign(false)
	prop.EndPos = p.tok.Pos
	return prop
}

// parsePropertyKey parses an object literal key: an identifier, a
// string or a number.
func (p *Parser) parsePropertyKey() ast.Expr {
	pos := p.tok.Pos
	switch {
	case p.tok.Type == token.NAME || p.tok.Type.IsKeyword():
		name := p.tok.Value
		if p.cfg.Dialect < Ecma5 &&
			(p.tok.Type.IsKeyword() || token.IsReservedWord(name)) {
			p.errorf("%q cannot be a property key before ECMAScript 5", name)
		}
		p.next()
		return &ast.Ident{BaseExpr: ast.MakeBaseExpr(pos, p.tok.Pos), Name: name}

	case p.tok.Type == token.STRING:
		raw := p.tok.Value
		p.next()
		return &ast.StrLit{
			BaseExpr: ast.MakeBaseExpr(pos, p.tok.Pos),
			Value:    lexer.Unquote(raw),
			Raw:      raw,
		}

	case p.tok.Type == token.NUMBER:
		raw := p.tok.Value
		p.next()
		return &ast.NumLit{
			BaseExpr: ast.MakeBaseExpr(pos, p.tok.Pos),
			Value:    parseNumber(raw),
			Raw:      raw,
		}

	default:
		p.error(expectedError(pos, "property key", p.tokenDesc()))
		return nil
	}
}

// -----------------------------------------------------------------------------
// Literal helpers
// -----------------------------------------------------------------------------

// parseNumber converts a numeric literal's raw spelling to its value.
func parseNumber(raw string) float64 {
	if strings.HasPrefix(raw, "0x") || strings.HasPrefix(raw, "0X") {
		if n, err := strconv.ParseUint(raw[2:], 16, 64); err == nil {
			return float64(n)
		}
	}
	f, _ := strconv.ParseFloat(raw, 64)
	return f
}

// splitRegex separates a regex literal's raw spelling into pattern and
// flags.
func splitRegex(raw string) (pattern, flags string) {
	if i := strings.LastIndexByte(raw, '/'); i > 0 {
		return raw[1:i], raw[i+1:]
	}
	return raw, ""
}
