// Package lexer provides Objective-J source code tokenization.
//
// The scanner produces tokens for the full JavaScript grammar plus the
// Objective-J extensions (@implementation, @selector, @[, message-send
// brackets are plain brackets) and the preprocessor tokens # and ##.
// Each token records whether whitespace and/or a line break preceded it;
// the preprocessor uses the flags to delimit directives and the parser
// uses them for semicolon insertion.
package lexer

import (
	"strings"
	"unicode/utf8"

	"github.com/cappuccino/objj-compiler/internal/token"
)

// Lexer tokenizes Objective-J source code.
type Lexer struct {
	// TrackComments makes the scanner emit COMMENT tokens instead of
	// discarding comment text. Set before the first Scan call.
	TrackComments bool

	src     []byte         // Source code
	ch      byte           // Current character (0 at EOF)
	offset  int            // Current byte offset
	pos     token.Position // Current position
	nextPos token.Position // Position of next character

	hadSpace   bool        // Whitespace since the previous token?
	hadNewline bool        // Line break since the previous token?
	scanned    bool        // Has any token been scanned yet?
	lastTok    token.Token // Previous token (for regex detection)
}

// New creates a new Lexer for the given source code.
// The filename is recorded in token positions and may be empty.
func New(src []byte, filename string) *Lexer {
	l := &Lexer{
		src: src,
		nextPos: token.Position{
			Filename: filename,
			Line:     1,
			Column:   1,
		},
	}
	l.next() // Initialize first character

	// A leading #! line is skipped like a comment.
	if l.ch == '#' && l.offset < len(l.src) && l.src[l.offset] == '!' {
		for l.ch != 0 && l.ch != '\n' {
			l.next()
		}
	}
	return l
}

// NewFromString creates a new Lexer from a string with no filename.
func NewFromString(src string) *Lexer {
	return New([]byte(src), "")
}

// Token represents a scanned token with its position and value.
//
// Value holds the raw source spelling: strings keep their quotes and
// escapes, regexes keep their slashes and flags, numbers keep their
// original digits. Use Unquote to decode a string token's value.
type Token struct {
	Type  token.Token
	Pos   token.Position
	Value string

	// SpaceBefore is true if whitespace or a comment separated this
	// token from the previous one.
	SpaceBefore bool
	// NewlineBefore is true if at least one line break occurred before
	// this token (also true for the first token of the source).
	NewlineBefore bool
}

// Scan scans and returns the next token.
func (l *Lexer) Scan() Token {
	tok := l.scan()
	if tok.Type != token.COMMENT {
		l.lastTok = tok.Type
	}
	return tok
}

func (l *Lexer) scan() Token {
	l.hadSpace = false
	l.hadNewline = !l.scanned // Start of file counts as a line break
	l.scanned = true
	l.skipSpace()

	// Comments are skipped as whitespace unless tracking is on.
	for l.ch == '/' && l.offset < len(l.src) {
		next := l.src[l.offset]
		if next != '/' && next != '*' {
			break
		}
		if l.TrackComments {
			return l.scanComment()
		}
		if next == '/' {
			l.skipLineComment()
		} else {
			l.skipBlockComment()
		}
		l.hadSpace = true
		l.skipSpace()
	}

	// Record position
	pos := l.pos

	// EOF
	if l.ch == 0 {
		return l.make(token.EOF, pos, "")
	}

	switch l.ch {
	case '+':
		l.next()
		if l.ch == '+' {
			l.next()
			return l.make(token.INCR, pos, "++")
		}
		if l.ch == '=' {
			l.next()
			return l.make(token.ADD_ASSIGN, pos, "+=")
		}
		return l.make(token.ADD, pos, "+")

	case '-':
		l.next()
		if l.ch == '-' {
			l.next()
			return l.make(token.DECR, pos, "--")
		}
		if l.ch == '=' {
			l.next()
			return l.make(token.SUB_ASSIGN, pos, "-=")
		}
		return l.make(token.SUB, pos, "-")

	case '*':
		l.next()
		if l.ch == '=' {
			l.next()
			return l.make(token.MUL_ASSIGN, pos, "*=")
		}
		return l.make(token.MUL, pos, "*")

	case '/':
		// Could be division or regex
		if l.canBeRegex() {
			return l.scanRegex(pos)
		}
		l.next()
		if l.ch == '=' {
			l.next()
			return l.make(token.DIV_ASSIGN, pos, "/=")
		}
		return l.make(token.DIV, pos, "/")

	case '%':
		l.next()
		if l.ch == '=' {
			l.next()
			return l.make(token.MOD_ASSIGN, pos, "%=")
		}
		return l.make(token.MOD, pos, "%")

	case '=':
		l.next()
		if l.ch == '=' {
			l.next()
			if l.ch == '=' {
				l.next()
				return l.make(token.STRICT_EQUALS, pos, "===")
			}
			return l.make(token.EQUALS, pos, "==")
		}
		return l.make(token.ASSIGN, pos, "=")

	case '!':
		l.next()
		if l.ch == '=' {
			l.next()
			if l.ch == '=' {
				l.next()
				return l.make(token.STRICT_NOT_EQUALS, pos, "!==")
			}
			return l.make(token.NOT_EQUALS, pos, "!=")
		}
		return l.make(token.NOT, pos, "!")

	case '<':
		l.next()
		if l.ch == '<' {
			l.next()
			if l.ch == '=' {
				l.next()
				return l.make(token.SHL_ASSIGN, pos, "<<=")
			}
			return l.make(token.SHL, pos, "<<")
		}
		if l.ch == '=' {
			l.next()
			return l.make(token.LTE, pos, "<=")
		}
		return l.make(token.LESS, pos, "<")

	case '>':
		l.next()
		if l.ch == '>' {
			l.next()
			if l.ch == '>' {
				l.next()
				if l.ch == '=' {
					l.next()
					return l.make(token.USHR_ASSIGN, pos, ">>>=")
				}
				return l.make(token.USHR, pos, ">>>")
			}
			if l.ch == '=' {
				l.next()
				return l.make(token.SHR_ASSIGN, pos, ">>=")
			}
			return l.make(token.SHR, pos, ">>")
		}
		if l.ch == '=' {
			l.next()
			return l.make(token.GTE, pos, ">=")
		}
		return l.make(token.GREATER, pos, ">")

	case '&':
		l.next()
		if l.ch == '&' {
			l.next()
			return l.make(token.AND, pos, "&&")
		}
		if l.ch == '=' {
			l.next()
			return l.make(token.AND_ASSIGN, pos, "&=")
		}
		return l.make(token.BIT_AND, pos, "&")

	case '|':
		l.next()
		if l.ch == '|' {
			l.next()
			return l.make(token.OR, pos, "||")
		}
		if l.ch == '=' {
			l.next()
			return l.make(token.OR_ASSIGN, pos, "|=")
		}
		return l.make(token.BIT_OR, pos, "|")

	case '^':
		l.next()
		if l.ch == '=' {
			l.next()
			return l.make(token.XOR_ASSIGN, pos, "^=")
		}
		return l.make(token.BIT_XOR, pos, "^")

	case '~':
		l.next()
		return l.make(token.BIT_NOT, pos, "~")

	case '(':
		l.next()
		return l.make(token.LPAREN, pos, "(")
	case ')':
		l.next()
		return l.make(token.RPAREN, pos, ")")
	case '{':
		l.next()
		return l.make(token.LBRACE, pos, "{")
	case '}':
		l.next()
		return l.make(token.RBRACE, pos, "}")
	case '[':
		l.next()
		return l.make(token.LBRACKET, pos, "[")
	case ']':
		l.next()
		return l.make(token.RBRACKET, pos, "]")
	case ',':
		l.next()
		return l.make(token.COMMA, pos, ",")
	case ';':
		l.next()
		return l.make(token.SEMICOLON, pos, ";")
	case ':':
		l.next()
		return l.make(token.COLON, pos, ":")
	case '?':
		l.next()
		return l.make(token.QUESTION, pos, "?")

	case '.':
		if l.offset < len(l.src) && isDigit(l.src[l.offset]) {
			return l.scanNumber(pos)
		}
		l.next()
		if l.ch == '.' && l.offset < len(l.src) && l.src[l.offset] == '.' {
			l.next()
			l.next()
			return l.make(token.ELLIPSIS, pos, "...")
		}
		return l.make(token.DOT, pos, ".")

	case '#':
		l.next()
		if l.ch == '#' {
			l.next()
			return l.make(token.PASTE, pos, "##")
		}
		return l.make(token.HASH, pos, "#")

	case '@':
		return l.scanAt(pos)

	case '"', '\'':
		return l.scanString(pos, pos.Offset)

	default:
		if isDigit(l.ch) {
			return l.scanNumber(pos)
		}
		if isIdentStart(l.ch) {
			return l.scanIdent(pos)
		}
		ch := l.ch
		l.next()
		return l.make(token.ILLEGAL, pos, "unexpected character "+string(rune(ch)))
	}
}

// make builds a token carrying the whitespace flags for the current gap.
func (l *Lexer) make(t token.Token, pos token.Position, value string) Token {
	return Token{
		Type:          t,
		Pos:           pos,
		Value:         value,
		SpaceBefore:   l.hadSpace,
		NewlineBefore: l.hadNewline,
	}
}

// scanAt scans the token following '@': a string literal, a container
// literal opener, or an @-keyword.
func (l *Lexer) scanAt(pos token.Position) Token {
	l.next() // consume '@'

	switch {
	case l.ch == '"' || l.ch == '\'':
		// @"..." has plain string semantics; the '@' is dropped.
		return l.scanString(pos, l.pos.Offset)

	case l.ch == '[':
		l.next()
		return l.make(token.AT_LBRACKET, pos, "@[")

	case l.ch == '{':
		l.next()
		return l.make(token.AT_LBRACE, pos, "@{")

	case isIdentStart(l.ch):
		start := l.pos.Offset
		for isIdentContinue(l.ch) {
			l.next()
		}
		word := string(l.src[start:l.endOffset()])
		t := token.LookupAtKeyword(word)
		if t == token.ILLEGAL {
			return l.make(token.ILLEGAL, pos, "unknown directive @"+word)
		}
		return l.make(t, pos, "@"+word)

	default:
		return l.make(token.AT, pos, "@")
	}
}

// scanString scans a single- or double-quoted string literal.
// Value is the raw text including quotes; rawStart allows @"..." to
// exclude the '@' from the captured text.
func (l *Lexer) scanString(pos token.Position, rawStart int) Token {
	quote := l.ch
	l.next() // consume opening quote

	for l.ch != 0 && l.ch != quote {
		if l.ch == '\n' {
			return l.make(token.ILLEGAL, pos, "unterminated string")
		}
		if l.ch == '\\' {
			l.next()
			if l.ch == '\r' {
				l.next()
			}
			if l.ch == 0 {
				break
			}
		}
		l.next()
	}

	if l.ch != quote {
		return l.make(token.ILLEGAL, pos, "unterminated string")
	}
	l.next() // consume closing quote
	return l.make(token.STRING, pos, string(l.src[rawStart:l.endOffset()]))
}

// scanRegex scans a regex literal including flags.
// Value is the raw text including the delimiting slashes.
func (l *Lexer) scanRegex(pos token.Position) Token {
	start := pos.Offset
	l.next() // consume opening /

	inClass := false
	for l.ch != 0 && l.ch != '\n' {
		if l.ch == '\\' {
			l.next()
			if l.ch != 0 && l.ch != '\n' {
				l.next()
			}
			continue
		}
		if l.ch == '[' {
			inClass = true
		} else if l.ch == ']' {
			inClass = false
		} else if l.ch == '/' && !inClass {
			break
		}
		l.next()
	}

	if l.ch != '/' {
		return l.make(token.ILLEGAL, pos, "unterminated regex")
	}
	l.next() // consume closing /

	// Flags
	for isIdentContinue(l.ch) {
		l.next()
	}
	return l.make(token.REGEX, pos, string(l.src[start:l.endOffset()]))
}

func (l *Lexer) scanNumber(pos token.Position) Token {
	start := pos.Offset

	// Check for hex
	if l.ch == '0' && l.offset < len(l.src) && (l.src[l.offset] == 'x' || l.src[l.offset] == 'X') {
		l.next() // 0
		l.next() // x
		if !isHexDigit(l.ch) {
			return l.make(token.ILLEGAL, pos, "malformed hex number")
		}
		for isHexDigit(l.ch) {
			l.next()
		}
		return l.make(token.NUMBER, pos, string(l.src[start:l.endOffset()]))
	}

	// Decimal number
	for isDigit(l.ch) {
		l.next()
	}
	if l.ch == '.' {
		l.next()
		for isDigit(l.ch) {
			l.next()
		}
	}
	// Only consume e/E if a valid exponent follows, so "1e+a" scans as
	// the number 1 followed by the identifier e.
	if l.ch == 'e' || l.ch == 'E' {
		if l.hasValidExponent() {
			l.next() // consume e/E
			if l.ch == '+' || l.ch == '-' {
				l.next()
			}
			for isDigit(l.ch) {
				l.next()
			}
		}
	}

	return l.make(token.NUMBER, pos, string(l.src[start:l.endOffset()]))
}

func (l *Lexer) scanIdent(pos token.Position) Token {
	start := pos.Offset
	for isIdentContinue(l.ch) {
		l.next()
	}
	name := string(l.src[start:l.endOffset()])
	return l.make(token.LookupIdent(name), pos, name)
}

// scanComment scans a // or /* */ comment as a COMMENT token.
// Value is the raw comment text including delimiters.
func (l *Lexer) scanComment() Token {
	pos := l.pos
	start := pos.Offset
	l.next() // consume '/'

	if l.ch == '/' {
		for l.ch != 0 && l.ch != '\n' {
			l.next()
		}
		return l.make(token.COMMENT, pos, string(l.src[start:l.endOffset()]))
	}

	// Block comment
	l.next() // consume '*'
	for l.ch != 0 {
		if l.ch == '*' && l.offset < len(l.src) && l.src[l.offset] == '/' {
			l.next()
			l.next()
			return l.make(token.COMMENT, pos, string(l.src[start:l.endOffset()]))
		}
		if l.ch == '\n' {
			l.hadNewline = true
		}
		l.next()
	}
	return l.make(token.ILLEGAL, pos, "unterminated comment")
}

func (l *Lexer) skipLineComment() {
	for l.ch != 0 && l.ch != '\n' {
		l.next()
	}
}

func (l *Lexer) skipBlockComment() {
	l.next() // consume '/'
	l.next() // consume '*'
	for l.ch != 0 {
		if l.ch == '*' && l.offset < len(l.src) && l.src[l.offset] == '/' {
			l.next()
			l.next()
			return
		}
		if l.ch == '\n' {
			l.hadNewline = true
		}
		l.next()
	}
}

// endOffset returns the correct end offset for slicing l.src.
// At EOF, l.pos is not updated, so we use len(l.src); otherwise l.pos.Offset.
func (l *Lexer) endOffset() int {
	if l.ch == 0 {
		return len(l.src)
	}
	return l.pos.Offset
}

// hasValidExponent checks if current e/E is followed by a valid exponent.
// Returns true if next char is digit, or +/- followed by digit.
func (l *Lexer) hasValidExponent() bool {
	idx := l.offset // Next char position (after e/E)
	if idx >= len(l.src) {
		return false
	}

	ch := l.src[idx]
	if isDigit(ch) {
		return true
	}
	if ch == '+' || ch == '-' {
		idx++
		if idx < len(l.src) && isDigit(l.src[idx]) {
			return true
		}
	}
	return false
}

func (l *Lexer) skipSpace() {
	for {
		switch l.ch {
		case ' ', '\t', '\r', '\f', '\v':
			l.hadSpace = true
			l.next()
		case '\n':
			l.hadSpace = true
			l.hadNewline = true
			l.next()
		case '\\':
			// Backslash-newline continues the logical line without
			// setting the newline flag, so directives can span lines.
			if l.offset < len(l.src) && (l.src[l.offset] == '\n' || l.src[l.offset] == '\r') {
				l.hadSpace = true
				l.next()
				if l.ch == '\r' {
					l.next()
				}
				if l.ch == '\n' {
					l.next()
				}
				continue
			}
			return
		default:
			return
		}
	}
}

func (l *Lexer) next() {
	if l.offset >= len(l.src) {
		l.ch = 0
		return
	}

	l.pos = l.nextPos

	// Handle UTF-8
	if l.src[l.offset] >= utf8.RuneSelf {
		r, size := utf8.DecodeRune(l.src[l.offset:])
		l.offset += size
		l.nextPos.Column += size
		l.nextPos.Offset = l.offset
		if r == '\n' {
			l.nextPos.Line++
			l.nextPos.Column = 1
		}
		l.ch = byte(r) // Note: multi-byte runes become single byte (simplified)
		return
	}

	l.ch = l.src[l.offset]
	l.offset++
	l.nextPos.Column++
	l.nextPos.Offset = l.offset

	if l.ch == '\n' {
		l.nextPos.Line++
		l.nextPos.Column = 1
	}
}

// canBeRegex returns true if the next / should start a regex.
// A slash divides only after a token that can end a value; everywhere
// else it opens a regex literal.
func (l *Lexer) canBeRegex() bool {
	switch l.lastTok {
	case token.NAME, token.NUMBER, token.STRING, token.REGEX,
		token.RPAREN, token.RBRACKET,
		token.THIS, token.SUPER, token.TRUE, token.FALSE, token.NULL,
		token.INCR, token.DECR:
		return false
	case token.RBRACE:
		// After '}' we assume statement position.
		return true
	default:
		return true
	}
}

// Unquote decodes the escape sequences in a raw string literal
// (including its surrounding quotes) as scanned by the lexer.
// Unknown escapes keep the escaped character, matching JavaScript.
func Unquote(raw string) string {
	if len(raw) < 2 {
		return raw
	}
	s := raw[1 : len(raw)-1]
	if !strings.ContainsRune(s, '\\') {
		return s
	}

	var sb strings.Builder
	sb.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '\\' || i+1 >= len(s) {
			sb.WriteByte(c)
			continue
		}
		i++
		switch s[i] {
		case 'n':
			sb.WriteByte('\n')
		case 't':
			sb.WriteByte('\t')
		case 'r':
			sb.WriteByte('\r')
		case 'b':
			sb.WriteByte('\b')
		case 'f':
			sb.WriteByte('\f')
		case 'v':
			sb.WriteByte('\v')
		case '0':
			sb.WriteByte(0)
		case 'x':
			if i+2 < len(s) && isHexDigit(s[i+1]) && isHexDigit(s[i+2]) {
				sb.WriteByte(byte(hexValue(s[i+1])<<4 | hexValue(s[i+2])))
				i += 2
			} else {
				sb.WriteByte('x')
			}
		case 'u':
			if i+4 < len(s) && isHexDigit(s[i+1]) && isHexDigit(s[i+2]) && isHexDigit(s[i+3]) && isHexDigit(s[i+4]) {
				r := rune(hexValue(s[i+1])<<12 | hexValue(s[i+2])<<8 | hexValue(s[i+3])<<4 | hexValue(s[i+4]))
				sb.WriteRune(r)
				i += 4
			} else {
				sb.WriteByte('u')
			}
		case '\n':
			// Escaped line break contributes nothing.
		case '\r':
			if i+1 < len(s) && s[i+1] == '\n' {
				i++
			}
		default:
			sb.WriteByte(s[i])
		}
	}
	return sb.String()
}

// Quote encodes s as a double-quoted JavaScript string literal.
func Quote(s string) string {
	var sb strings.Builder
	sb.Grow(len(s) + 2)
	sb.WriteByte('"')
	for i := 0; i < len(s); i++ {
		switch c := s[i]; c {
		case '"':
			sb.WriteString(`\"`)
		case '\\':
			sb.WriteString(`\\`)
		case '\n':
			sb.WriteString(`\n`)
		case '\t':
			sb.WriteString(`\t`)
		case '\r':
			sb.WriteString(`\r`)
		default:
			sb.WriteByte(c)
		}
	}
	sb.WriteByte('"')
	return sb.String()
}

// Helper functions

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}

func isHexDigit(ch byte) bool {
	return isDigit(ch) || (ch >= 'a' && ch <= 'f') || (ch >= 'A' && ch <= 'F')
}

func hexValue(ch byte) int {
	if ch >= '0' && ch <= '9' {
		return int(ch - '0')
	}
	if ch >= 'a' && ch <= 'f' {
		return int(ch - 'a' + 10)
	}
	return int(ch - 'A' + 10)
}

func isIdentStart(ch byte) bool {
	return (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z') || ch == '_' || ch == '$'
}

func isIdentContinue(ch byte) bool {
	return isIdentStart(ch) || isDigit(ch)
}
