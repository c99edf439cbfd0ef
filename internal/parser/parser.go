package parser

import (
	"bytes"
	"strconv"

	"github.com/kolkov/minidbg/internal/ast"
	"github.com/kolkov/minidbg/internal/lexer"
	"github.com/kolkov/minidbg/internal/token"
)

// Parser is a line-oriented parser for mini-language programs.
//
// Every instruction is one line introduced by its keyword. WHILE and
// SIGNAL open a body that runs to the matching ENDWHILE or ENDSIGNAL
// line, and the whole file is one PROGRAM ... ENDPROGRAM block.
type Parser struct {
	lexer  *lexer.Lexer // Lexer instance
	tok    lexer.Token  // Current token
	errors ErrorList    // Accumulated errors
	instr  string       // keyword of the instruction on the current line

	// Parsing state
	whileLabels []int // labels of the enclosing WHILE blocks
	inSignal    bool  // true inside SIGNAL ... ENDSIGNAL
	handlers    int   // SIGNAL blocks seen so far
}

// Parse parses a program from source code.
// Returns the AST and any parse errors encountered.
func Parse(src string) (*ast.Program, error) {
	return ParseFile("", []byte(src))
}

// ParseBytes parses a program from a byte slice.
func ParseBytes(src []byte) (*ast.Program, error) {
	return ParseFile("", src)
}

// ParseFile parses the content of a named source file. The name is
// carried in every position and in the returned Program.
func ParseFile(filename string, src []byte) (*ast.Program, error) {
	p := &Parser{
		lexer: lexer.NewFile(filename, src),
	}
	p.next() // Initialize first token

	prog := p.parseProgram()
	prog.File = filename
	prog.Lines = countLines(src)

	if err := p.errors.Err(); err != nil {
		return nil, err
	}
	return prog, nil
}

// countLines returns the number of lines in src, counting a final line
// without a trailing newline.
func countLines(src []byte) int {
	n := bytes.Count(src, []byte{'\n'})
	if len(src) > 0 && src[len(src)-1] != '\n' {
		n++
	}
	return n
}

// -----------------------------------------------------------------------------
// Token handling
// -----------------------------------------------------------------------------

// next advances to the next token.
func (p *Parser) next() {
	p.tok = p.lexer.Scan()
}

// expect checks that the current token is tok and advances.
// If not, it records an error.
func (p *Parser) expect(tok token.Token) bool {
	if p.tok.Type != tok {
		p.error(missingError(p.tok.Pos, "'"+tok.String()+"'", p.tokenDesc()))
		return false
	}
	p.next()
	return true
}

// expectName expects a NAME token and returns it as an identifier.
func (p *Parser) expectName() *ast.Ident {
	if p.tok.Type != token.NAME {
		p.error(missingError(p.tok.Pos, "variable name", p.tokenDesc()))
		return nil
	}
	id := p.ident()
	p.next()
	return id
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
	case token.NAME, token.NUMBER, token.SPECIAL:
		return p.tok.Value
	case token.STRING:
		return strconv.Quote(p.tok.Value)
	case token.ILLEGAL:
		// ILLEGAL token's Value contains the actual error message
		return p.tok.Value
	case token.NEWLINE:
		return "end of line"
	case token.EOF:
		return "end of file"
	default:
		return "'" + p.tok.Type.String() + "'"
	}
}

// error records a parse error, tagged with the instruction being parsed
// when it is on the same line.
func (p *Parser) error(err *ParseError) {
	if err.Instr == "" {
		err.Instr = p.instr
	}
	p.errors = append(p.errors, err)
}

// newLine is called after each consumed line end.
func (p *Parser) newLine() {
	p.instr = ""
}

// errorf records a formatted parse error at current position.
func (p *Parser) errorf(format string, args ...any) {
	p.error(errorf(p.tok.Pos, format, args...))
}

// endLine expects the end of the current line. On error the rest of the
// line is skipped so that parsing resumes on the next one.
func (p *Parser) endLine() {
	if p.match(token.NEWLINE, token.EOF) {
		if p.tok.Type == token.NEWLINE {
			p.next()
			p.newLine()
		}
		return
	}
	p.error(missingError(p.tok.Pos, "end of line", p.tokenDesc()))
	p.skipLine()
}

// skipLine discards tokens up to and including the next newline.
func (p *Parser) skipLine() {
	for !p.match(token.NEWLINE, token.EOF) {
		p.next()
	}
	if p.tok.Type == token.NEWLINE {
		p.next()
		p.newLine()
	}
}

// skipBlankLines skips empty lines.
func (p *Parser) skipBlankLines() {
	for p.tok.Type == token.NEWLINE {
		p.next()
	}
}

// -----------------------------------------------------------------------------
// Program and bodies
// -----------------------------------------------------------------------------

// parseProgram parses PROGRAM ... ENDPROGRAM.
func (p *Parser) parseProgram() *ast.Program {
	p.skipBlankLines()
	prog := &ast.Program{}
	prog.StartPos = p.tok.Pos

	if p.tok.Type == token.EOF {
		p.errorf("empty program file")
		return prog
	}
	if !p.expect(token.PROGRAM) {
		p.skipLine()
		return prog
	}
	p.endLine()

	prog.Body = p.parseBody(token.ENDPROGRAM)
	prog.EndPos = p.tok.Pos
	if !p.expect(token.ENDPROGRAM) {
		return prog
	}
	p.endLine()

	p.skipBlankLines()
	if p.tok.Type != token.EOF {
		p.errorf("unexpected %s after 'ENDPROGRAM'", p.tokenDesc())
	}
	return prog
}

// parseBody parses statements until the closing keyword end.
// The closing keyword itself is left for the caller.
func (p *Parser) parseBody(end token.Token) []ast.Stmt {
	var stmts []ast.Stmt
	for {
		p.skipBlankLines()
		switch p.tok.Type {
		case end:
			return stmts
		case token.EOF:
			p.errorf("missing '%s'", end)
			return stmts
		case token.ENDPROGRAM, token.ENDWHILE, token.ENDSIGNAL:
			if p.closesEnclosing(p.tok.Type) {
				p.errorf("missing '%s'", end)
				return stmts
			}
			p.errorf("'%s' without matching opening line", p.tok.Type)
			p.skipLine()
			continue
		}
		if s := p.parseStmt(); s != nil {
			stmts = append(stmts, s)
		}
	}
}

// closesEnclosing reports whether the closing keyword tok belongs to a
// block that encloses the one being parsed.
func (p *Parser) closesEnclosing(tok token.Token) bool {
	switch tok {
	case token.ENDPROGRAM:
		return true
	case token.ENDWHILE:
		return len(p.whileLabels) > 0
	case token.ENDSIGNAL:
		return p.inSignal
	}
	return false
}

// -----------------------------------------------------------------------------
// Statements
// -----------------------------------------------------------------------------

// parseStmt parses one instruction line. It returns nil after reporting
// an error; the offending line has been skipped.
func (p *Parser) parseStmt() ast.Stmt {
	start := p.tok.Pos
	kw := p.tok.Type
	if kw.IsKeyword() {
		p.instr = kw.String()
	}

	switch kw {
	case token.WHILE:
		return p.parseWhileStmt()
	case token.SIGNAL:
		return p.parseSignalStmt()
	case token.NOTHING:
		p.next()
		s := &ast.NothingStmt{BaseStmt: ast.MakeBaseStmt(start, p.tok.Pos)}
		p.endLine()
		return s
	case token.PROGRAM:
		p.errorf("nested 'PROGRAM'")
		p.skipLine()
		return nil
	}

	if !kw.IsKeyword() {
		p.errorf("unknown instruction keyword %s", p.tokenDesc())
		p.skipLine()
		return nil
	}
	p.next()
	if !p.expect(token.AT) {
		p.skipLine()
		return nil
	}

	nerr := len(p.errors)
	var s ast.Stmt
	switch kw {
	case token.NEW:
		s = p.parseNewStmt()
	case token.COMPUTE:
		s = p.parseComputeStmt()
	case token.COPY:
		s = p.parseCopyStmt()
	case token.LOAD:
		s = p.parseLoadStmt()
	case token.STORE:
		s = p.parseStoreStmt()
	case token.READ:
		s = &ast.ReadStmt{Target: p.expectName()}
	case token.PRINT:
		s = p.parsePrintStmt()
	case token.FORK:
		s = &ast.ForkStmt{Target: p.expectName()}
	case token.MUTEX:
		s = p.parseMutexStmt()
	case token.SIGADD, token.SIGDEL:
		s = p.parseSigMaskStmt(kw == token.SIGADD)
	default:
		p.errorf("'%s' is not an instruction", kw)
	}

	if len(p.errors) > nerr {
		p.skipLine()
		return nil
	}
	setBase(s, start, p.tok.Pos)
	p.endLine()
	return s
}

// setBase fills in the position fields of a freshly built statement.
func setBase(s ast.Stmt, start, end token.Position) {
	base := ast.MakeBaseStmt(start, end)
	switch n := s.(type) {
	case *ast.NewStmt:
		n.BaseStmt = base
	case *ast.ComputeStmt:
		n.BaseStmt = base
	case *ast.CopyStmt:
		n.BaseStmt = base
	case *ast.ReadStmt:
		n.BaseStmt = base
	case *ast.LoadStmt:
		n.BaseStmt = base
	case *ast.StoreStmt:
		n.BaseStmt = base
	case *ast.PrintStmt:
		n.BaseStmt = base
	case *ast.ForkStmt:
		n.BaseStmt = base
	case *ast.MutexStmt:
		n.BaseStmt = base
	case *ast.SigMaskStmt:
		n.BaseStmt = base
	}
}

// parseWhileStmt parses
//
//	WHILE @ <label> (<value> [<op> <value>]) REPEAT
//	    ...
//	ENDWHILE @ <label>
func (p *Parser) parseWhileStmt() ast.Stmt {
	s := &ast.WhileStmt{}
	s.StartPos = p.tok.Pos
	p.next()

	nerr := len(p.errors)
	if p.expect(token.AT) {
		s.Label = p.number()
		if p.expect(token.LPAREN) {
			s.Cond = p.parseCond()
			if len(p.errors) == nerr && p.expect(token.RPAREN) {
				p.expect(token.REPEAT)
			}
		}
	}
	if len(p.errors) > nerr {
		// The body is still parsed so that its ENDWHILE is consumed
		// and does not confuse the enclosing block.
		p.skipLine()
	} else {
		p.endLine()
	}

	p.whileLabels = append(p.whileLabels, s.Label)
	s.Body = p.parseBody(token.ENDWHILE)
	p.whileLabels = p.whileLabels[:len(p.whileLabels)-1]

	if p.tok.Type != token.ENDWHILE {
		return nil
	}
	endPos := p.tok.Pos
	p.next()
	if p.expect(token.AT) {
		label := p.number()
		if label != s.Label {
			p.error(errorf(endPos, "'ENDWHILE @ %d' does not match 'WHILE @ %d'", label, s.Label))
		}
	}
	s.EndPos = p.tok.Pos
	p.endLine()

	if len(p.errors) > nerr {
		return nil
	}
	return s
}

// parseSignalStmt parses SIGNAL ... ENDSIGNAL. Only one handler block is
// allowed, at program level.
func (p *Parser) parseSignalStmt() ast.Stmt {
	s := &ast.SignalStmt{}
	s.StartPos = p.tok.Pos
	nerr := len(p.errors)

	switch {
	case p.handlers > 0:
		p.errorf("handler already specified")
	case p.inSignal || len(p.whileLabels) > 0:
		p.errorf("'SIGNAL' block must be at program level")
	}
	p.handlers++
	p.next()
	p.endLine()

	p.inSignal = true
	s.Body = p.parseBody(token.ENDSIGNAL)
	p.inSignal = false

	if p.tok.Type != token.ENDSIGNAL {
		return nil
	}
	p.next()
	s.EndPos = p.tok.Pos
	p.endLine()

	if len(p.errors) > nerr {
		return nil
	}
	return s
}

// NEW @ x : value
func (p *Parser) parseNewStmt() ast.Stmt {
	s := &ast.NewStmt{Name: p.expectName()}
	if s.Name == nil || !p.expect(token.COLON) {
		return s
	}
	s.Value = p.parseValue()
	return s
}

// COMPUTE @ x : a op b
func (p *Parser) parseComputeStmt() ast.Stmt {
	s := &ast.ComputeStmt{Target: p.expectName()}
	if s.Target == nil || !p.expect(token.COLON) {
		return s
	}
	left := p.parseValue()
	if left == nil {
		return s
	}
	s.Value = p.parseBinary(left)
	return s
}

// COPY @ x : value
func (p *Parser) parseCopyStmt() ast.Stmt {
	s := &ast.CopyStmt{Target: p.expectName()}
	if s.Target == nil || !p.expect(token.COLON) {
		return s
	}
	s.Value = p.parseValue()
	return s
}

// LOAD @ x : base$index
func (p *Parser) parseLoadStmt() ast.Stmt {
	s := &ast.LoadStmt{Target: p.expectName()}
	if s.Target == nil || !p.expect(token.COLON) {
		return s
	}
	s.Base = p.parseBase()
	if s.Base == nil {
		return s
	}
	if p.tok.Type != token.DOLLAR {
		p.errorf("only '$' allowed in 'LOAD' expression, got %s", p.tokenDesc())
		return s
	}
	p.next()
	s.Index = p.parseValue()
	return s
}

// STORE @ base$index : value
func (p *Parser) parseStoreStmt() ast.Stmt {
	s := &ast.StoreStmt{}
	s.Base = p.parseBase()
	if s.Base == nil || !p.expect(token.DOLLAR) {
		return s
	}
	s.Index = p.parseValue()
	if s.Index == nil {
		return s
	}
	if p.tok.Type != token.COLON {
		p.errorf("only ':' allowed in 'STORE' after $<index>, got %s", p.tokenDesc())
		return s
	}
	p.next()
	s.Value = p.parseValue()
	return s
}

// PRINT @ arg,arg,...
func (p *Parser) parsePrintStmt() ast.Stmt {
	s := &ast.PrintStmt{}
	for {
		var arg ast.Expr
		if p.tok.Type == token.STRING {
			arg = &ast.StrLit{
				BaseExpr: ast.MakeBaseExpr(p.tok.Pos, p.tok.Pos),
				Value:    p.tok.Value,
			}
			p.next()
		} else {
			arg = p.parseValue()
		}
		if arg == nil {
			return s
		}
		s.Args = append(s.Args, arg)
		if p.tok.Type != token.COMMA {
			break
		}
		p.next()
	}
	if !p.match(token.NEWLINE, token.EOF) {
		p.errorf("missing ',' in 'PRINT' before %s", p.tokenDesc())
	}
	return s
}

// MUTEX @ _ : _P  or  MUTEX @ _ : _V
func (p *Parser) parseMutexStmt() ast.Stmt {
	s := &ast.MutexStmt{}
	if p.tok.Type != token.SPECIAL || p.tok.Value != "_" {
		p.error(missingError(p.tok.Pos, "'_'", p.tokenDesc()))
		return s
	}
	p.next()
	if !p.expect(token.COLON) {
		return s
	}
	switch {
	case p.tok.Type == token.SPECIAL && p.tok.Value == "_P":
		s.Acquire = true
	case p.tok.Type == token.SPECIAL && p.tok.Value == "_V":
		s.Acquire = false
	default:
		p.error(missingError(p.tok.Pos, "'_P' or '_V'", p.tokenDesc()))
		return s
	}
	p.next()
	return s
}

// SIGADD @ n  or  SIGDEL @ n
func (p *Parser) parseSigMaskStmt(add bool) ast.Stmt {
	s := &ast.SigMaskStmt{Add: add}
	s.Signal = p.number()
	return s
}

// -----------------------------------------------------------------------------
// Operands
// -----------------------------------------------------------------------------

// parseCond parses a WHILE condition. A single operand means
// "operand != 0".
func (p *Parser) parseCond() *ast.BinaryExpr {
	left := p.parseValue()
	if left == nil {
		return nil
	}
	if p.tok.Type == token.RPAREN {
		zero := &ast.NumLit{BaseExpr: ast.MakeBaseExpr(left.Pos(), left.End()), Raw: "0"}
		return &ast.BinaryExpr{
			BaseExpr: ast.MakeBaseExpr(left.Pos(), left.End()),
			Left:     left,
			Op:       token.NOT_EQUALS,
			Right:    zero,
			Implicit: true,
		}
	}
	return p.parseBinary(left)
}

// parseBinary parses "<op> <value>" after an already parsed left operand.
func (p *Parser) parseBinary(left ast.Expr) *ast.BinaryExpr {
	if !p.tok.Type.IsBinaryOp() {
		p.error(missingError(p.tok.Pos, "operator", p.tokenDesc()))
		return nil
	}
	op := p.tok.Type
	p.next()
	right := p.parseValue()
	if right == nil {
		return nil
	}
	return &ast.BinaryExpr{
		BaseExpr: ast.MakeBaseExpr(left.Pos(), right.End()),
		Left:     left,
		Op:       op,
		Right:    right,
	}
}

// parseValue parses a variable name or a number.
func (p *Parser) parseValue() ast.Expr {
	switch p.tok.Type {
	case token.NAME:
		id := p.ident()
		p.next()
		return id
	case token.NUMBER:
		pos := p.tok.Pos
		n := p.number()
		return &ast.NumLit{BaseExpr: ast.MakeBaseExpr(pos, p.tok.Pos), Value: n, Raw: strconv.Itoa(n)}
	case token.STRING:
		p.errorf("string %s not allowed here", p.tokenDesc())
		return nil
	default:
		p.error(missingError(p.tok.Pos, "variable or number", p.tokenDesc()))
		return nil
	}
}

// parseBase parses a memory base: a value, or '_' for shared memory.
func (p *Parser) parseBase() ast.Expr {
	if p.tok.Type == token.SPECIAL {
		if p.tok.Value != "_" {
			p.errorf("only '_' (for shared memory) allowed as memory base, got %s", p.tok.Value)
			return nil
		}
		ref := &ast.SharedRef{BaseExpr: ast.MakeBaseExpr(p.tok.Pos, p.tok.Pos)}
		p.next()
		return ref
	}
	return p.parseValue()
}

// ident converts the current NAME token to an identifier.
func (p *Parser) ident() *ast.Ident {
	end := p.tok.Pos
	end.Column += len(p.tok.Value)
	end.Offset += len(p.tok.Value)
	return &ast.Ident{BaseExpr: ast.MakeBaseExpr(p.tok.Pos, end), Name: p.tok.Value}
}

// number consumes a NUMBER token and returns its value.
func (p *Parser) number() int {
	if p.tok.Type != token.NUMBER {
		p.error(missingError(p.tok.Pos, "number", p.tokenDesc()))
		return 0
	}
	n, err := strconv.Atoi(p.tok.Value)
	if err != nil {
		p.errorf("number %s out of range", p.tok.Value)
	}
	p.next()
	return n
}
