// Package token defines lexical tokens for the mini-language.
package token

// Token represents a lexical token type.
type Token uint8

const (
	// Special tokens
	ILLEGAL Token = iota // <illegal>
	EOF                  // EOF
	NEWLINE              // <newline>

	// Operators and delimiters
	operatorStart
	ADD        // +
	SUB        // -
	MUL        // *
	DIV        // /
	MOD        // %
	EQUALS     // ==
	NOT_EQUALS // !=
	LESS       // <
	LTE        // <=
	GREATER    // >
	GTE        // >=

	AT     // @
	COLON  // :
	COMMA  // ,
	DOLLAR // $
	LPAREN // (
	RPAREN // )
	operatorEnd

	// Keywords
	keywordStart
	PROGRAM    // PROGRAM
	ENDPROGRAM // ENDPROGRAM
	WHILE      // WHILE
	REPEAT     // REPEAT
	ENDWHILE   // ENDWHILE
	SIGNAL     // SIGNAL
	ENDSIGNAL  // ENDSIGNAL
	NEW        // NEW
	COMPUTE    // COMPUTE
	COPY       // COPY
	LOAD       // LOAD
	STORE      // STORE
	READ       // READ
	PRINT      // PRINT
	FORK       // FORK
	MUTEX      // MUTEX
	SIGADD     // SIGADD
	SIGDEL     // SIGDEL
	NOTHING    // NOTHING
	keywordEnd

	// Literals
	NAME    // name
	NUMBER  // number
	STRING  // string
	SPECIAL // special
)

var names = [...]string{
	ILLEGAL:    "<illegal>",
	EOF:        "EOF",
	NEWLINE:    "<newline>",
	ADD:        "+",
	SUB:        "-",
	MUL:        "*",
	DIV:        "/",
	MOD:        "%",
	EQUALS:     "==",
	NOT_EQUALS: "!=",
	LESS:       "<",
	LTE:        "<=",
	GREATER:    ">",
	GTE:        ">=",
	AT:         "@",
	COLON:      ":",
	COMMA:      ",",
	DOLLAR:     "$",
	LPAREN:     "(",
	RPAREN:     ")",
	PROGRAM:    "PROGRAM",
	ENDPROGRAM: "ENDPROGRAM",
	WHILE:      "WHILE",
	REPEAT:     "REPEAT",
	ENDWHILE:   "ENDWHILE",
	SIGNAL:     "SIGNAL",
	ENDSIGNAL:  "ENDSIGNAL",
	NEW:        "NEW",
	COMPUTE:    "COMPUTE",
	COPY:       "COPY",
	LOAD:       "LOAD",
	STORE:      "STORE",
	READ:       "READ",
	PRINT:      "PRINT",
	FORK:       "FORK",
	MUTEX:      "MUTEX",
	SIGADD:     "SIGADD",
	SIGDEL:     "SIGDEL",
	NOTHING:    "NOTHING",
	NAME:       "name",
	NUMBER:     "number",
	STRING:     "string",
	SPECIAL:    "special",
}

// String returns the source spelling of operators and keywords,
// or a descriptive name for the other tokens.
func (t Token) String() string {
	if int(t) < len(names) && names[t] != "" {
		return names[t]
	}
	return "<unknown>"
}

// IsOperator returns true if the token is an operator or delimiter.
func (t Token) IsOperator() bool {
	return t > operatorStart && t < operatorEnd
}

// IsKeyword returns true if the token is a keyword.
func (t Token) IsKeyword() bool {
	return t > keywordStart && t < keywordEnd
}

// IsLiteral returns true if the token is a name, number, string or special.
func (t Token) IsLiteral() bool {
	return t == NAME || t == NUMBER || t == STRING || t == SPECIAL
}

// IsBinaryOp returns true for the arithmetic and comparison operators
// allowed between two operands.
func (t Token) IsBinaryOp() bool {
	return t >= ADD && t <= GTE
}

// keywords maps keyword strings to their token types.
// Keywords are upper case; everything else made of letters is a name.
var keywords = map[string]Token{
	"PROGRAM":    PROGRAM,
	"ENDPROGRAM": ENDPROGRAM,
	"WHILE":      WHILE,
	"REPEAT":     REPEAT,
	"ENDWHILE":   ENDWHILE,
	"SIGNAL":     SIGNAL,
	"ENDSIGNAL":  ENDSIGNAL,
	"NEW":        NEW,
	"COMPUTE":    COMPUTE,
	"COPY":       COPY,
	"LOAD":       LOAD,
	"STORE":      STORE,
	"READ":       READ,
	"PRINT":      PRINT,
	"FORK":       FORK,
	"MUTEX":      MUTEX,
	"SIGADD":     SIGADD,
	"SIGDEL":     SIGDEL,
	"NOTHING":    NOTHING,
}

// LookupIdent returns the token type for a given identifier.
// Returns a keyword token if found, otherwise NAME.
func LookupIdent(ident string) Token {
	if tok, ok := keywords[ident]; ok {
		return tok
	}
	return NAME
}

// LookupKeyword returns the token type for a keyword, or ILLEGAL if not found.
func LookupKeyword(name string) Token {
	if tok, ok := keywords[name]; ok {
		return tok
	}
	return ILLEGAL
}
