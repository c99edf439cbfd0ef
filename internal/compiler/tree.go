package compiler

import (
	"fmt"
	"io"
	"strings"

	"github.com/kolkov/minidbg/internal/types"
)

// Node is one instruction of a tree. Operands and Target are indices
// into the owning process's symbol table unless noted otherwise.
type Node struct {
	Kind     Kind
	Op       Op
	Operands []int
	Target   int   // destination symbol, Shared, Mutex, or the signal of SigAdd/SigDel
	Children []int // arena indices, compound kinds only
	Cursor   int   // child to run next; -1 before the node is entered
	Cond     CondState
	Parent   int // arena index of the enclosing node, -1 for the root
	File     string
	Line     int
}

// CursorError reports a cursor outside [-1, len(Children)-1].
type CursorError struct {
	Node   int
	Cursor int
	Len    int
}

func (e *CursorError) Error() string {
	return fmt.Sprintf("node %d: cursor %d out of range [-1, %d]", e.Node, e.Cursor, e.Len-1)
}

// Tree is an arena of nodes. Children and parents are referenced by
// index, so a copy of the arena is a structurally identical tree.
type Tree struct {
	Nodes []Node
	Root  int
}

// Node returns the node at index i.
func (t *Tree) Node(i int) *Node {
	return &t.Nodes[i]
}

// add appends n and returns its index.
func (t *Tree) add(n Node) int {
	t.Nodes = append(t.Nodes, n)
	return len(t.Nodes) - 1
}

// Clone returns a deep copy. Indices are identical in the copy, so a
// node index valid in t names the corresponding node of the clone.
func (t *Tree) Clone() *Tree {
	c := &Tree{
		Nodes: make([]Node, len(t.Nodes)),
		Root:  t.Root,
	}
	for i, n := range t.Nodes {
		if n.Operands != nil {
			n.Operands = append([]int(nil), n.Operands...)
		}
		if n.Children != nil {
			n.Children = append([]int(nil), n.Children...)
		}
		c.Nodes[i] = n
	}
	return c
}

// Current returns the node the next step acts on: starting at the root,
// descend through compound nodes whose cursor is set. A compound node
// that has not been entered, or a leaf, is current.
func (t *Tree) Current() (int, error) {
	return t.CurrentFrom(t.Root)
}

// CurrentFrom is Current for the subtree rooted at idx.
func (t *Tree) CurrentFrom(idx int) (int, error) {
	for {
		n := &t.Nodes[idx]
		if !n.Kind.IsCompound() || n.Cursor == -1 {
			return idx, nil
		}
		if n.Cursor < -1 || n.Cursor >= len(n.Children) {
			return idx, &CursorError{Node: idx, Cursor: n.Cursor, Len: len(n.Children)}
		}
		idx = n.Children[n.Cursor]
	}
}

// CurrentLine returns the source line of the current node, or 0 when
// the tree is inconsistent.
func (t *Tree) CurrentLine() int {
	idx, err := t.Current()
	if err != nil {
		return 0
	}
	return t.Nodes[idx].Line
}

// Reset rewinds every cursor and condition.
func (t *Tree) Reset() {
	for i := range t.Nodes {
		t.Nodes[i].Cursor = -1
		t.Nodes[i].Cond = Unevaluated
	}
}

// ResetNode rewinds a single node.
func (n *Node) ResetNode() {
	n.Cursor = -1
	n.Cond = Unevaluated
}

// Check verifies the cursor invariant on every node.
func (t *Tree) Check() error {
	for i := range t.Nodes {
		n := &t.Nodes[i]
		if n.Cursor < -1 || n.Cursor >= len(n.Children) {
			return &CursorError{Node: i, Cursor: n.Cursor, Len: len(n.Children)}
		}
	}
	return nil
}

// Dump writes an indented listing of the tree: one node per line with
// its keyword, source line, operands, and for compound nodes the cursor
// and cached condition. syms may be nil.
func (t *Tree) Dump(w io.Writer, syms *types.SymbolTable) error {
	var sb strings.Builder
	t.dumpNode(&sb, syms, t.Root, 0)
	_, err := io.WriteString(w, sb.String())
	return err
}

// Disassemble returns the Dump listing as a string.
func (t *Tree) Disassemble(syms *types.SymbolTable) string {
	var sb strings.Builder
	_ = t.Dump(&sb, syms)
	return sb.String()
}

func (t *Tree) dumpNode(sb *strings.Builder, syms *types.SymbolTable, idx, depth int) {
	n := &t.Nodes[idx]
	fmt.Fprintf(sb, "%04d %s%-8s line %-3d", idx, strings.Repeat("    ", depth), n.Kind, n.Line)
	if desc := Describe(n, syms); desc != "" {
		sb.WriteString(" ")
		sb.WriteString(desc)
	}
	if n.Kind.IsCompound() {
		fmt.Fprintf(sb, " [cursor %d, %s]", n.Cursor, n.Cond)
	}
	sb.WriteByte('\n')
	for _, c := range n.Children {
		t.dumpNode(sb, syms, c, depth+1)
	}
}

// Describe renders the operands of n in source-like form.
func Describe(n *Node, syms *types.SymbolTable) string {
	name := func(i int) string {
		switch i {
		case Shared:
			return "_"
		case Mutex:
			return "_"
		}
		if syms == nil || !syms.Valid(i) {
			return fmt.Sprintf("#%d", i)
		}
		s := syms.At(i)
		if s.Const {
			if s.Kind == types.KindStr {
				return fmt.Sprintf("%q", s.Str)
			}
			return s.String()
		}
		return s.Name
	}
	operand := func(k int) string {
		if k < len(n.Operands) {
			return name(n.Operands[k])
		}
		return "?"
	}

	switch n.Kind {
	case Create, Copy:
		return name(n.Target) + " : " + operand(0)
	case Compute:
		return name(n.Target) + " : " + operand(0) + " " + n.Op.String() + " " + operand(1)
	case WhileRepeat:
		return "(" + operand(0) + " " + n.Op.String() + " " + operand(1) + ")"
	case Load:
		return name(n.Target) + " : " + operand(0) + "$" + operand(1)
	case Store:
		return name(n.Target) + "$" + operand(0) + " : " + operand(1)
	case Read, Fork:
		return name(n.Target)
	case Print:
		parts := make([]string, len(n.Operands))
		for i := range n.Operands {
			parts[i] = operand(i)
		}
		return strings.Join(parts, ",")
	case MutexOp:
		if len(n.Operands) > 0 && n.Operands[0] == Acquire {
			return "_ : _P"
		}
		return "_ : _V"
	case SigAdd, SigDel:
		return fmt.Sprintf("%d", n.Target)
	default:
		return ""
	}
}
