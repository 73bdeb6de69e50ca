// Package token defines lexical tokens for Objective-J source code,
// a superset of JavaScript.
package token

//go:generate stringer -type=Token -linecomment

// Token represents a lexical token type.
type Token uint8

const (
	// Special tokens
	ILLEGAL Token = iota // <illegal>
	EOF                  // EOF
	COMMENT              // <comment>

	// Operators and delimiters
	operatorStart
	ADD // +
	SUB // -
	MUL // *
	DIV // /
	MOD // %

	ADD_ASSIGN  // +=
	SUB_ASSIGN  // -=
	MUL_ASSIGN  // *=
	DIV_ASSIGN  // /=
	MOD_ASSIGN  // %=
	AND_ASSIGN  // &=
	OR_ASSIGN   // |=
	XOR_ASSIGN  // ^=
	SHL_ASSIGN  // <<=
	SHR_ASSIGN  // >>=
	USHR_ASSIGN // >>>=

	ASSIGN            // =
	EQUALS            // ==
	STRICT_EQUALS     // ===
	NOT_EQUALS        // !=
	STRICT_NOT_EQUALS // !==
	LESS              // <
	LTE               // <=
	GREATER           // >
	GTE               // >=

	AND     // &&
	OR      // ||
	NOT     // !
	BIT_AND // &
	BIT_OR  // |
	BIT_XOR // ^
	BIT_NOT // ~
	SHL     // <<
	SHR     // >>
	USHR    // >>>

	INCR // ++
	DECR // --

	LPAREN   // (
	RPAREN   // )
	LBRACE   // {
	RBRACE   // }
	LBRACKET // [
	RBRACKET // ]

	COMMA     // ,
	SEMICOLON // ;
	COLON     // :
	QUESTION  // ?
	DOT       // .
	ELLIPSIS  // ...

	HASH  // #
	PASTE // ##

	AT          // @
	AT_LBRACKET // @[
	AT_LBRACE   // @{
	operatorEnd

	// Keywords
	keywordStart
	BREAK      // break
	CASE       // case
	CATCH      // catch
	CONTINUE   // continue
	DEBUGGER   // debugger
	DEFAULT    // default
	DELETE     // delete
	DO         // do
	ELSE       // else
	FINALLY    // finally
	FOR        // for
	FUNCTION   // function
	IF         // if
	IN         // in
	INSTANCEOF // instanceof
	NEW        // new
	RETURN     // return
	SUPER      // super
	SWITCH     // switch
	THIS       // this
	THROW      // throw
	TRY        // try
	TYPEOF     // typeof
	VAR        // var
	VOID       // void
	WHILE      // while
	WITH       // with
	TRUE       // true
	FALSE      // false
	NULL       // null
	keywordEnd

	// Objective-J @-keywords
	atKeywordStart
	AT_IMPLEMENTATION // @implementation
	AT_END            // @end
	AT_PROTOCOL       // @protocol
	AT_SELECTOR       // @selector
	AT_ACCESSORS      // @accessors
	AT_IMPORT         // @import
	AT_CLASS          // @class
	AT_GLOBAL         // @global
	AT_TYPEDEF        // @typedef
	AT_OUTLET         // @outlet
	AT_ACTION         // @action
	AT_OPTIONAL       // @optional
	AT_REQUIRED       // @required
	AT_REF            // @ref
	AT_DEREF          // @deref
	atKeywordEnd

	// Literals
	NAME   // name
	NUMBER // number
	STRING // string
	REGEX  // regex
)

// IsOperator returns true if the token is an operator or delimiter.
func (t Token) IsOperator() bool {
	return t > operatorStart && t < operatorEnd
}

// IsKeyword returns true if the token is a JavaScript keyword.
func (t Token) IsKeyword() bool {
	return t > keywordStart && t < keywordEnd
}

// IsAtKeyword returns true if the token is an Objective-J @-keyword.
func (t Token) IsAtKeyword() bool {
	return t > atKeywordStart && t < atKeywordEnd
}

// IsLiteral returns true if the token is a literal (name, number, string, regex).
func (t Token) IsLiteral() bool {
	return t == NAME || t == NUMBER || t == STRING || t == REGEX
}

// IsAssign returns true if the token is an assignment operator.
func (t Token) IsAssign() bool {
	return t == ASSIGN || (t >= ADD_ASSIGN && t <= USHR_ASSIGN)
}

// AssignBase returns the binary operator underlying a compound assignment
// (ADD for ADD_ASSIGN and so on), or ILLEGAL for plain ASSIGN and
// non-assignment tokens.
func (t Token) AssignBase() Token {
	switch t {
	case ADD_ASSIGN:
		return ADD
	case SUB_ASSIGN:
		return SUB
	case MUL_ASSIGN:
		return MUL
	case DIV_ASSIGN:
		return DIV
	case MOD_ASSIGN:
		return MOD
	case AND_ASSIGN:
		return BIT_AND
	case OR_ASSIGN:
		return BIT_OR
	case XOR_ASSIGN:
		return BIT_XOR
	case SHL_ASSIGN:
		return SHL
	case SHR_ASSIGN:
		return SHR
	case USHR_ASSIGN:
		return USHR
	default:
		return ILLEGAL
	}
}

// keywords maps keyword strings to their token types.
var keywords = map[string]Token{
	"break":      BREAK,
	"case":       CASE,
	"catch":      CATCH,
	"continue":   CONTINUE,
	"debugger":   DEBUGGER,
	"default":    DEFAULT,
	"delete":     DELETE,
	"do":         DO,
	"else":       ELSE,
	"finally":    FINALLY,
	"for":        FOR,
	"function":   FUNCTION,
	"if":         IF,
	"in":         IN,
	"instanceof": INSTANCEOF,
	"new":        NEW,
	"return":     RETURN,
	"super":      SUPER,
	"switch":     SWITCH,
	"this":       THIS,
	"throw":      THROW,
	"try":        TRY,
	"typeof":     TYPEOF,
	"var":        VAR,
	"void":       VOID,
	"while":      WHILE,
	"with":       WITH,
	"true":       TRUE,
	"false":      FALSE,
	"null":       NULL,
}

// atKeywords maps the word following '@' to its token type.
var atKeywords = map[string]Token{
	"implementation": AT_IMPLEMENTATION,
	"end":            AT_END,
	"protocol":       AT_PROTOCOL,
	"selector":       AT_SELECTOR,
	"accessors":      AT_ACCESSORS,
	"import":         AT_IMPORT,
	"class":          AT_CLASS,
	"global":         AT_GLOBAL,
	"typedef":        AT_TYPEDEF,
	"outlet":         AT_OUTLET,
	"action":         AT_ACTION,
	"optional":       AT_OPTIONAL,
	"required":       AT_REQUIRED,
	"ref":            AT_REF,
	"deref":          AT_DEREF,
}

// reservedWords lists identifiers reserved for future use by ECMA-262.
// ECMAScript 3 forbids them as property names after '.' and in object
// literals; ECMAScript 5 allows them there but still not as bindings.
var reservedWords = map[string]bool{
	"abstract": true, "boolean": true, "byte": true, "char": true,
	"class": true, "const": true, "double": true, "enum": true,
	"export": true, "extends": true, "final": true, "float": true,
	"goto": true, "implements": true, "import": true, "int": true,
	"interface": true, "let": true, "long": true, "native": true,
	"package": true, "private": true, "protected": true, "public": true,
	"short": true, "static": true, "synchronized": true, "throws": true,
	"transient": true, "volatile": true, "yield": true,
}

// LookupIdent returns the token type for a given identifier.
// Returns a keyword token if found, otherwise NAME.
func LookupIdent(ident string) Token {
	if tok, ok := keywords[ident]; ok {
		return tok
	}
	return NAME
}

// LookupAtKeyword returns the token type for the word following '@',
// or ILLEGAL if the word is not a recognized @-keyword.
func LookupAtKeyword(word string) Token {
	if tok, ok := atKeywords[word]; ok {
		return tok
	}
	return ILLEGAL
}

// IsReservedWord returns true if name is reserved for future use.
func IsReservedWord(name string) bool {
	return reservedWords[name]
}
