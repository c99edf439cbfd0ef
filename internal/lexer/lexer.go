// Package lexer provides tokenization of mini-language program sources.
//
// The language is line oriented: every instruction sits on its own line,
// so the lexer reports line ends as NEWLINE tokens and the parser uses
// them as statement terminators.
package lexer

import (
	"github.com/kolkov/minidbg/internal/token"
)

// Lexer tokenizes mini-language source code.
type Lexer struct {
	src     []byte         // Source code
	ch      byte           // Current character (0 at EOF)
	offset  int            // Current byte offset
	pos     token.Position // Current position
	nextPos token.Position // Position of next character
}

// New creates a new Lexer for the given source code.
func New(src []byte) *Lexer {
	return NewFile("", src)
}

// NewFile creates a new Lexer whose positions carry filename.
func NewFile(filename string, src []byte) *Lexer {
	l := &Lexer{
		src: src,
		nextPos: token.Position{
			Filename: filename,
			Line:     1,
			Column:   1,
		},
	}
	l.next() // Initialize first character
	return l
}

// NewFromString creates a new Lexer from a string.
func NewFromString(src string) *Lexer {
	return New([]byte(src))
}

// Token represents a scanned token with its position and value.
// For ILLEGAL tokens Value holds the reason.
type Token struct {
	Type  token.Token
	Pos   token.Position
	Value string
}

// Scan scans and returns the next token.
func (l *Lexer) Scan() Token {
	l.skipWhitespace()

	pos := l.pos

	if l.ch == 0 {
		if l.offset >= len(l.src) {
			return Token{Type: token.EOF, Pos: l.nextPos}
		}
		l.next()
		return Token{Type: token.ILLEGAL, Pos: pos, Value: "NUL byte in source"}
	}

	switch l.ch {
	case '\n':
		l.next()
		return Token{Type: token.NEWLINE, Pos: pos}
	case '+':
		l.next()
		return Token{Type: token.ADD, Pos: pos, Value: "+"}
	case '-':
		l.next()
		return Token{Type: token.SUB, Pos: pos, Value: "-"}
	case '*':
		l.next()
		return Token{Type: token.MUL, Pos: pos, Value: "*"}
	case '/':
		l.next()
		return Token{Type: token.DIV, Pos: pos, Value: "/"}
	case '%':
		l.next()
		return Token{Type: token.MOD, Pos: pos, Value: "%"}
	case '<':
		l.next()
		if l.ch == '=' {
			l.next()
			return Token{Type: token.LTE, Pos: pos, Value: "<="}
		}
		return Token{Type: token.LESS, Pos: pos, Value: "<"}
	case '>':
		l.next()
		if l.ch == '=' {
			l.next()
			return Token{Type: token.GTE, Pos: pos, Value: ">="}
		}
		return Token{Type: token.GREATER, Pos: pos, Value: ">"}
	case '=':
		l.next()
		if l.ch == '=' {
			l.next()
			return Token{Type: token.EQUALS, Pos: pos, Value: "=="}
		}
		return Token{Type: token.ILLEGAL, Pos: pos, Value: "incorrect operator '=', missing '=' after it"}
	case '!':
		l.next()
		if l.ch == '=' {
			l.next()
			return Token{Type: token.NOT_EQUALS, Pos: pos, Value: "!="}
		}
		return Token{Type: token.ILLEGAL, Pos: pos, Value: "incorrect operator '!', missing '=' after it"}
	case '@':
		l.next()
		return Token{Type: token.AT, Pos: pos, Value: "@"}
	case ':':
		l.next()
		return Token{Type: token.COLON, Pos: pos, Value: ":"}
	case ',':
		l.next()
		return Token{Type: token.COMMA, Pos: pos, Value: ","}
	case '$':
		l.next()
		return Token{Type: token.DOLLAR, Pos: pos, Value: "$"}
	case '(':
		l.next()
		return Token{Type: token.LPAREN, Pos: pos, Value: "("}
	case ')':
		l.next()
		return Token{Type: token.RPAREN, Pos: pos, Value: ")"}
	case '"':
		return l.scanString(pos)
	case '_':
		return l.scanSpecial(pos)
	}

	if isDigit(l.ch) {
		return l.scanNumber(pos)
	}
	if isLetter(l.ch) {
		return l.scanIdent(pos)
	}

	ch := l.ch
	l.next()
	return Token{Type: token.ILLEGAL, Pos: pos, Value: "unexpected character " + quoteByte(ch)}
}

func (l *Lexer) scanString(pos token.Position) Token {
	l.next() // consume opening quote

	var sb []byte
	for l.ch != 0 && l.ch != '"' && l.ch != '\n' {
		if l.ch != '\\' {
			sb = append(sb, l.ch)
			l.next()
			continue
		}
		l.next()
		switch l.ch {
		case 'n':
			sb = append(sb, '\n')
		case 't':
			sb = append(sb, '\t')
		case 'r':
			sb = append(sb, '\r')
		case '\\':
			sb = append(sb, '\\')
		case '"':
			sb = append(sb, '"')
		case '\'':
			sb = append(sb, '\'')
		case 0, '\n':
			return Token{Type: token.ILLEGAL, Pos: pos, Value: "missing character after '\\'"}
		default:
			bad := l.ch
			l.skipLine()
			return Token{Type: token.ILLEGAL, Pos: pos, Value: "unknown escape sequence \\" + string(bad)}
		}
		l.next()
	}

	if l.ch != '"' {
		return Token{Type: token.ILLEGAL, Pos: pos, Value: "missing end of string"}
	}
	l.next() // consume closing quote

	return Token{Type: token.STRING, Pos: pos, Value: string(sb)}
}

// scanSpecial scans '_' optionally followed by letters: "_" marks shared
// memory or the mutex, "_P" and "_V" are the mutex operations.
func (l *Lexer) scanSpecial(pos token.Position) Token {
	start := pos.Offset
	l.next()
	for isLetter(l.ch) {
		l.next()
	}
	return Token{Type: token.SPECIAL, Pos: pos, Value: string(l.src[start:l.endOffset()])}
}

func (l *Lexer) scanNumber(pos token.Position) Token {
	start := pos.Offset
	for isDigit(l.ch) {
		l.next()
	}
	return Token{Type: token.NUMBER, Pos: pos, Value: string(l.src[start:l.endOffset()])}
}

// scanIdent scans a word. Digits are accepted here so that a malformed
// name like "x1" is reported as a single token by the parser.
func (l *Lexer) scanIdent(pos token.Position) Token {
	start := pos.Offset
	for isLetter(l.ch) || isDigit(l.ch) {
		l.next()
	}
	name := string(l.src[start:l.endOffset()])
	return Token{Type: token.LookupIdent(name), Pos: pos, Value: name}
}

// endOffset returns the correct end offset for slicing l.src.
// At EOF, l.pos is not updated, so we use len(l.src); otherwise l.pos.Offset.
func (l *Lexer) endOffset() int {
	if l.ch == 0 && l.offset >= len(l.src) {
		return len(l.src)
	}
	return l.pos.Offset
}

func (l *Lexer) skipWhitespace() {
	for l.ch == ' ' || l.ch == '\t' || l.ch == '\r' {
		l.next()
	}
}

func (l *Lexer) skipLine() {
	for l.ch != 0 && l.ch != '\n' {
		l.next()
	}
}

func (l *Lexer) next() {
	if l.offset >= len(l.src) {
		l.ch = 0
		return
	}

	l.pos = l.nextPos
	l.ch = l.src[l.offset]
	l.offset++
	l.nextPos.Column++
	l.nextPos.Offset = l.offset

	if l.ch == '\n' {
		l.nextPos.Line++
		l.nextPos.Column = 1
	}
}

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}

func isLetter(ch byte) bool {
	return (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z')
}

func quoteByte(ch byte) string {
	if ch < ' ' || ch >= 0x7f {
		const hex = "0123456789abcdef"
		return "0x" + string(hex[ch>>4]) + string(hex[ch&0xf])
	}
	return "'" + string(ch) + "'"
}
