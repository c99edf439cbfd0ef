package compiler

import (
	"strings"
	"testing"

	"github.com/kolkov/minidbg/internal/parser"
	"github.com/kolkov/minidbg/internal/semantic"
	"github.com/kolkov/minidbg/internal/types"
)

// Helper to compile a program string.
func compileSource(t *testing.T, source string) *Program {
	t.Helper()

	prog, err := parser.ParseFile("test.prog", []byte(source))
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}

	resolved, err := semantic.Analyze(prog)
	if err != nil {
		t.Fatalf("resolve error: %v", err)
	}

	compiled, err := Compile(prog, resolved)
	if err != nil {
		t.Fatalf("compile error: %v", err)
	}

	return compiled
}

const loopSource = `PROGRAM
NEW @ i : 0
NEW @ n : 3
WHILE @ 1 (i < n) REPEAT
    PRINT @ "i=",i,"\n"
    COMPUTE @ i : i + 1
ENDWHILE @ 1
ENDPROGRAM
`

func TestCompileShape(t *testing.T) {
	p := compileSource(t, loopSource)

	root := p.Tree.Node(p.Tree.Root)
	if root.Kind != ProgramNode || root.Line != 1 || root.Parent != -1 {
		t.Fatalf("root = %+v", *root)
	}
	if len(root.Children) != 3 {
		t.Fatalf("root has %d children, want 3", len(root.Children))
	}

	kinds := []Kind{Create, Create, WhileRepeat}
	lines := []int{2, 3, 4}
	for i, c := range root.Children {
		n := p.Tree.Node(c)
		if n.Kind != kinds[i] || n.Line != lines[i] {
			t.Errorf("child %d = %s line %d, want %s line %d", i, n.Kind, n.Line, kinds[i], lines[i])
		}
		if n.Parent != p.Tree.Root {
			t.Errorf("child %d parent = %d", i, n.Parent)
		}
		if n.Cursor != -1 || n.Cond != Unevaluated {
			t.Errorf("child %d not reset: %+v", i, *n)
		}
		if n.File != "test.prog" {
			t.Errorf("child %d file = %q", i, n.File)
		}
	}

	loop := p.Tree.Node(root.Children[2])
	if loop.Op != OpLt || len(loop.Operands) != 2 || len(loop.Children) != 2 {
		t.Fatalf("loop = %+v", *loop)
	}
	if p.Symbols.At(loop.Operands[0]).Name != "i" || p.Symbols.At(loop.Operands[1]).Name != "n" {
		t.Errorf("loop operands = %v", loop.Operands)
	}
	if p.Tree.Node(loop.Children[0]).Parent != root.Children[2] {
		t.Error("loop body parent not linked")
	}
}

func TestCompileSymbols(t *testing.T) {
	p := compileSource(t, loopSource)

	if p.Vars != 2 {
		t.Errorf("Vars = %d, want 2", p.Vars)
	}
	if p.Symbols.At(0).Name != "i" || p.Symbols.At(1).Name != "n" {
		t.Errorf("variables not first: %q %q", p.Symbols.At(0).Name, p.Symbols.At(1).Name)
	}

	// 0, 3, "i=", "\n", 1: the literal 0 and 3 from NEW, three more in the body.
	var strs, ints int
	for i := p.Vars; i < p.Symbols.Len(); i++ {
		s := p.Symbols.At(i)
		if !s.Const {
			t.Errorf("slot %d (%s) should be constant", i, s.Name)
		}
		if s.Kind == types.KindStr {
			strs++
		} else {
			ints++
		}
	}
	if strs != 2 || ints != 3 {
		t.Errorf("literals: %d strings, %d ints, want 2 and 3", strs, ints)
	}
}

func TestCompileLiteralsShared(t *testing.T) {
	p := compileSource(t, `PROGRAM
NEW @ a : 5
NEW @ b : 5
PRINT @ "5",a
ENDPROGRAM
`)
	root := p.Tree.Node(p.Tree.Root)
	a := p.Tree.Node(root.Children[0])
	b := p.Tree.Node(root.Children[1])
	if a.Operands[0] != b.Operands[0] {
		t.Error("repeated literal 5 should share a slot")
	}
	pr := p.Tree.Node(root.Children[2])
	if pr.Operands[0] == a.Operands[0] {
		t.Error(`string "5" must not share the slot of number 5`)
	}
	if got := p.Symbols.At(pr.Operands[0]).String(); got != "5" {
		t.Errorf("string literal payload = %q", got)
	}
}

func TestCompileMemoryAndSystem(t *testing.T) {
	p := compileSource(t, `PROGRAM
NEW @ base : 10
NEW @ v : 0
NEW @ pid : 0
STORE @ _$1 : v
STORE @ base$2 : 7
LOAD @ v : _$1
LOAD @ v : base$2
MUTEX @ _ : _P
MUTEX @ _ : _V
FORK @ pid
SIGADD @ 10
SIGDEL @ 12
READ @ v
NOTHING
ENDPROGRAM
`)
	root := p.Tree.Node(p.Tree.Root)
	at := func(i int) *Node { return p.Tree.Node(root.Children[i]) }

	if n := at(3); n.Kind != Store || n.Target != Shared || len(n.Operands) != 2 {
		t.Errorf("shared STORE = %+v", *n)
	}
	if n := at(4); n.Kind != Store || n.Target != 0 {
		t.Errorf("heap STORE target = %d, want slot of base", n.Target)
	}
	if n := at(5); n.Kind != Load || n.Operands[0] != Shared || n.Target != 1 {
		t.Errorf("shared LOAD = %+v", *n)
	}
	if n := at(6); n.Operands[0] != 0 {
		t.Errorf("heap LOAD base = %d", n.Operands[0])
	}
	if n := at(7); n.Kind != MutexOp || n.Target != Mutex || n.Operands[0] != Acquire {
		t.Errorf("P = %+v", *n)
	}
	if n := at(8); n.Operands[0] != Release {
		t.Errorf("V = %+v", *n)
	}
	if n := at(9); n.Kind != Fork || n.Target != 2 {
		t.Errorf("FORK = %+v", *n)
	}
	if n := at(10); n.Kind != SigAdd || n.Target != 10 {
		t.Errorf("SIGADD = %+v", *n)
	}
	if n := at(11); n.Kind != SigDel || n.Target != 12 {
		t.Errorf("SIGDEL = %+v", *n)
	}
	if n := at(12); n.Kind != Read || n.Target != 1 {
		t.Errorf("READ = %+v", *n)
	}
	if n := at(13); n.Kind != Empty {
		t.Errorf("NOTHING = %+v", *n)
	}
}

func TestCompileHandler(t *testing.T) {
	p := compileSource(t, `PROGRAM
NEW @ hits : 0
SIGNAL
    COMPUTE @ hits : hits + 1
    PRINT @ hits
ENDSIGNAL
SIGADD @ 10
ENDPROGRAM
`)
	if p.Handler == nil {
		t.Fatal("handler not compiled")
	}
	h := p.Handler.Node(p.Handler.Root)
	if h.Kind != SignalBlock || len(h.Children) != 2 || h.Line != 3 {
		t.Fatalf("handler root = %+v", *h)
	}

	root := p.Tree.Node(p.Tree.Root)
	inline := p.Tree.Node(root.Children[1])
	if inline.Kind != SignalBlock || len(inline.Children) != 0 {
		t.Errorf("SIGNAL in main flow should be an empty leaf, got %+v", *inline)
	}

	if p2 := compileSource(t, "PROGRAM\nNOTHING\nENDPROGRAM\n"); p2.Handler != nil {
		t.Error("program without SIGNAL has a handler")
	}
}

func TestTreeClone(t *testing.T) {
	p := compileSource(t, loopSource)
	orig := p.Tree
	root := orig.Node(orig.Root)
	root.Cursor = 2
	loop := orig.Node(root.Children[2])
	loop.Cursor = 1
	loop.Cond = True

	c := orig.Clone()
	if c.Root != orig.Root || len(c.Nodes) != len(orig.Nodes) {
		t.Fatal("clone differs in shape")
	}
	for i := range orig.Nodes {
		a, b := orig.Nodes[i], c.Nodes[i]
		if a.Kind != b.Kind || a.Cursor != b.Cursor || a.Cond != b.Cond || a.Parent != b.Parent {
			t.Errorf("node %d differs: %+v vs %+v", i, a, b)
		}
	}

	// No aliasing.
	c.Node(c.Root).Children[0] = 99
	c.Node(root.Children[2]).Operands[0] = 42
	c.Node(root.Children[2]).Cursor = 0
	if root.Children[0] == 99 || loop.Operands[0] == 42 || loop.Cursor != 1 {
		t.Error("clone aliases original")
	}
}

func TestTreeCurrent(t *testing.T) {
	p := compileSource(t, loopSource)
	tr := p.Tree

	if idx, err := tr.Current(); err != nil || idx != tr.Root {
		t.Errorf("fresh tree current = %d, %v; want root", idx, err)
	}

	root := tr.Node(tr.Root)
	root.Cursor = 2
	loopIdx := root.Children[2]
	if idx, _ := tr.Current(); idx != loopIdx {
		t.Errorf("current = %d, want loop %d", idx, loopIdx)
	}
	if tr.CurrentLine() != 4 {
		t.Errorf("CurrentLine = %d, want 4", tr.CurrentLine())
	}

	tr.Node(loopIdx).Cursor = 1
	if tr.CurrentLine() != 6 {
		t.Errorf("CurrentLine = %d, want 6", tr.CurrentLine())
	}

	tr.Node(loopIdx).Cursor = 5
	if _, err := tr.Current(); err == nil {
		t.Error("out-of-range cursor should fail")
	}
	if err := tr.Check(); err == nil || !strings.Contains(err.Error(), "cursor 5 out of range") {
		t.Errorf("Check = %v", err)
	}

	tr.Reset()
	if err := tr.Check(); err != nil {
		t.Errorf("Check after Reset = %v", err)
	}
	for i, n := range tr.Nodes {
		if n.Cursor != -1 || n.Cond != Unevaluated {
			t.Errorf("node %d not reset", i)
		}
	}
}

func TestDisassemble(t *testing.T) {
	p := compileSource(t, loopSource)
	out := p.Disassemble()
	for _, want := range []string{
		"=== Symbols ===",
		"=== test.prog (8 lines) ===",
		"PROGRAM  line 1",
		"NEW      line 2   i : 0",
		`PRINT    line 5   "i=",i,"\n"`,
		"COMPUTE  line 6   i : i + 1",
		"(i < n) [cursor -1, unevaluated]",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("disassembly missing %q:\n%s", want, out)
		}
	}
}

func TestKindAndOpString(t *testing.T) {
	if WhileRepeat.String() != "WHILE" || Empty.String() != "NOTHING" {
		t.Error("kind names")
	}
	// Kinds are distinct and every one has a keyword.
	seen := map[string]Kind{}
	for k := Create; k <= SignalBlock; k++ {
		name := k.String()
		if name == "" || name == "Kind(?)" {
			t.Errorf("kind %d has no name", k)
		}
		if prev, ok := seen[name]; ok {
			t.Errorf("kinds %d and %d share name %q", prev, k, name)
		}
		seen[name] = k
	}
	if Create != 0 || ProgramNode.String() != "PROGRAM" || len(seen) != 15 {
		t.Errorf("kinds: Create=%d, PROGRAM=%q, %d names", Create, ProgramNode.String(), len(seen))
	}
	if !ProgramNode.IsCompound() || Fork.IsCompound() {
		t.Error("IsCompound")
	}
	if OpGe.String() != ">=" || OpRem.String() != "%" {
		t.Error("op names")
	}
	if False.String() != "false" {
		t.Error("cond names")
	}
}
