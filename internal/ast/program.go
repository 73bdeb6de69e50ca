package ast

import "github.com/cappuccino/objj-compiler/internal/token"

// Program represents a complete Objective-J compilation unit.
// The body keeps declarations and statements in source order, so
// re-emission reproduces the original layout.
type Program struct {
	// Source file name (for error messages and source maps)
	Filename string

	// Top-level statements and declarations in source order.
	Body []Stmt

	// Comments in source order, populated only when comment tracking
	// is enabled. Statements do not own their comments; consumers
	// interleave them by position.
	Comments []*Comment

	// Position information for the entire program.
	StartPos token.Position
	EndPos   token.Position
}

// Pos returns the position of the first token in the program.
func (p *Program) Pos() token.Position { return p.StartPos }

// End returns the position after the last token in the program.
func (p *Program) End() token.Position { return p.EndPos }

// Classes returns the class declarations of the program body in
// source order, including categories.
func (p *Program) Classes() []*ClassDecl {
	var classes []*ClassDecl
	for _, s := range p.Body {
		if c, ok := s.(*ClassDecl); ok {
			classes = append(classes, c)
		}
	}
	return classes
}

// Comment represents a single comment.
type Comment struct {
	Text     string // Source text including the // or /* */ delimiters
	Block    bool   // true for /* */, false for //
	OwnLine  bool   // true when the comment started its line
	StartPos token.Position
	EndPos   token.Position
}

// Pos returns the position of the first delimiter character.
func (c *Comment) Pos() token.Position { return c.StartPos }

// End returns the position after the comment.
func (c *Comment) End() token.Position { return c.EndPos }
