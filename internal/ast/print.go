package ast

import (
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Printer writes a tree back in canonical source form, one statement per
// line, with nested bodies indented.
type Printer struct {
	w      io.Writer
	indent int
	err    error
}

// NewPrinter creates a new Printer that writes to w.
func NewPrinter(w io.Writer) *Printer {
	return &Printer{w: w}
}

// Print writes node in source form.
func (p *Printer) Print(node Node) error {
	p.printNode(node)
	return p.err
}

// String returns the source form of node.
func String(node Node) string {
	var sb strings.Builder
	_ = NewPrinter(&sb).Print(node)
	return sb.String()
}

func (p *Printer) printf(format string, args ...any) {
	if p.err != nil {
		return
	}
	_, p.err = fmt.Fprintf(p.w, format, args...)
}

func (p *Printer) writeIndent() {
	if p.err != nil {
		return
	}
	for i := 0; i < p.indent; i++ {
		_, p.err = io.WriteString(p.w, "    ")
	}
}

func (p *Printer) printNode(node Node) {
	switch n := node.(type) {
	case nil:
		p.printf("<nil>")
	case *Program:
		p.printf("PROGRAM\n")
		p.printBody(n.Body)
		p.printf("ENDPROGRAM\n")
	case Stmt:
		p.printStmt(n)
	case Expr:
		p.printExpr(n)
	default:
		p.printf("<%T>", node)
	}
}

func (p *Printer) printBody(stmts []Stmt) {
	p.indent++
	for _, s := range stmts {
		p.printStmt(s)
	}
	p.indent--
}

func (p *Printer) printStmt(s Stmt) {
	p.writeIndent()
	switch n := s.(type) {
	case *NewStmt:
		p.printf("NEW @ %s : %s\n", exprString(n.Name), exprString(n.Value))
	case *ComputeStmt:
		p.printf("COMPUTE @ %s : %s\n", exprString(n.Target), exprString(n.Value))
	case *CopyStmt:
		p.printf("COPY @ %s : %s\n", exprString(n.Target), exprString(n.Value))
	case *ReadStmt:
		p.printf("READ @ %s\n", exprString(n.Target))
	case *LoadStmt:
		p.printf("LOAD @ %s : %s$%s\n", exprString(n.Target), exprString(n.Base), exprString(n.Index))
	case *StoreStmt:
		p.printf("STORE @ %s$%s : %s\n", exprString(n.Base), exprString(n.Index), exprString(n.Value))
	case *PrintStmt:
		args := make([]string, len(n.Args))
		for i, a := range n.Args {
			args[i] = exprString(a)
		}
		p.printf("PRINT @ %s\n", strings.Join(args, ","))
	case *ForkStmt:
		p.printf("FORK @ %s\n", exprString(n.Target))
	case *MutexStmt:
		op := "_V"
		if n.Acquire {
			op = "_P"
		}
		p.printf("MUTEX @ _ : %s\n", op)
	case *SigMaskStmt:
		p.printf("%s @ %d\n", Keyword(n), n.Signal)
	case *NothingStmt:
		p.printf("NOTHING\n")
	case *WhileStmt:
		p.printf("WHILE @ %d (%s) REPEAT\n", n.Label, exprString(n.Cond))
		p.printBody(n.Body)
		p.writeIndent()
		p.printf("ENDWHILE @ %d\n", n.Label)
	case *SignalStmt:
		p.printf("SIGNAL\n")
		p.printBody(n.Body)
		p.writeIndent()
		p.printf("ENDSIGNAL\n")
	default:
		p.printf("<%T>\n", s)
	}
}

func (p *Printer) printExpr(e Expr) {
	p.printf("%s", exprString(e))
}

func exprString(e Expr) string {
	switch n := e.(type) {
	case *Ident:
		if n == nil {
			return "<nil>"
		}
		return n.Name
	case *NumLit:
		return strconv.Itoa(n.Value)
	case *StrLit:
		return quote(n.Value)
	case *SharedRef:
		return "_"
	case *BinaryExpr:
		if n == nil {
			return "<nil>"
		}
		if n.Implicit {
			return exprString(n.Left)
		}
		return exprString(n.Left) + " " + n.Op.String() + " " + exprString(n.Right)
	case nil:
		return "<nil>"
	default:
		return fmt.Sprintf("<%T>", e)
	}
}

// quote renders s with the escapes the lexer understands.
func quote(s string) string {
	var sb strings.Builder
	sb.WriteByte('"')
	for i := 0; i < len(s); i++ {
		switch c := s[i]; c {
		case '\n':
			sb.WriteString(`\n`)
		case '\r':
			sb.WriteString(`\r`)
		case '\t':
			sb.WriteString(`\t`)
		case '"':
			sb.WriteString(`\"`)
		case '\\':
			sb.WriteString(`\\`)
		default:
			sb.WriteByte(c)
		}
	}
	sb.WriteByte('"')
	return sb.String()
}

