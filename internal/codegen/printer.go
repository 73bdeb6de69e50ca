package codegen

import (
	"fmt"
	"strings"

	"github.com/cappuccino/objj-compiler/internal/sourcemap"
	"github.com/cappuccino/objj-compiler/internal/token"
)

// printer accumulates generated text and tracks the position of the
// write cursor, so source mappings can be recorded as nodes are
// emitted. Indentation is written lazily by the first write of a
// line, keeping blank lines free of trailing spaces.
type printer struct {
	sb   strings.Builder
	unit string // text of one indentation level
	sm   *sourcemap.Builder

	indent     int
	line       int // current line, zero-based
	col        int // current column, zero-based
	needIndent bool
}

func newPrinter(cfg *FormatConfig, sm *sourcemap.Builder) *printer {
	return &printer{unit: cfg.IndentUnit(), sm: sm}
}

func (p *printer) String() string {
	return p.sb.String()
}

// nl starts a new output line.
func (p *printer) nl() {
	p.sb.WriteByte('\n')
	p.line++
	p.col = 0
	p.needIndent = true
}

func (p *printer) flushIndent() {
	if !p.needIndent {
		return
	}
	p.needIndent = false
	for i := 0; i < p.indent; i++ {
		p.sb.WriteString(p.unit)
		p.col += len(p.unit)
	}
}

// write appends s, keeping the line and column counters current.
func (p *printer) write(s string) {
	if s == "" {
		return
	}
	p.flushIndent()
	p.sb.WriteString(s)
	if i := strings.LastIndexByte(s, '\n'); i >= 0 {
		p.line += strings.Count(s, "\n")
		p.col = len(s) - i - 1
	} else {
		p.col += len(s)
	}
}

// writef appends formatted text.
func (p *printer) writef(format string, args ...any) {
	p.write(fmt.Sprintf(format, args...))
}

// writeRule appends the before/after text of a format rule. Newlines
// in the rule go through nl, so following text is indented normally.
func (p *printer) writeRule(s string) {
	for _, r := range s {
		if r == '\n' {
			p.nl()
		} else {
			p.write(string(r))
		}
	}
}

// mark records a source mapping from the write cursor to pos.
func (p *printer) mark(pos token.Position) {
	if p.sm == nil {
		return
	}
	p.flushIndent()
	p.sm.Add(p.line, p.col, pos)
}
