// Package types defines the runtime storage of simulated processes:
// symbols, the per-process symbol table and integer memory segments.
package types

import (
	"strconv"
)

// Kind represents the type of a symbol.
type Kind uint8

const (
	KindInt Kind = iota // Integer variable or number literal
	KindStr             // String literal (PRINT only)
)

// String returns a string representation of the kind.
func (k Kind) String() string {
	switch k {
	case KindInt:
		return "int"
	case KindStr:
		return "str"
	default:
		return "unknown"
	}
}

// Symbol is one entry of a symbol table.
type Symbol struct {
	Name  string // Identifier, or a synthesized name for literals
	Value int    // Integer value
	Str   string // Payload of string literals
	Kind  Kind
	Const bool // Literals are constants
}

// String renders the symbol the way PRINT shows it: the string payload
// for string literals, the integer value otherwise.
func (s *Symbol) String() string {
	if s.Kind == KindStr {
		return s.Str
	}
	return strconv.Itoa(s.Value)
}

// SymbolTable is an append-only table of symbols with a name index.
// Indices handed out by Define and Literal stay valid for the lifetime
// of the table and of every clone of it.
type SymbolTable struct {
	symbols []Symbol
	names   map[string]int
	anon    int // literals created so far
}

// NewSymbolTable creates an empty table.
func NewSymbolTable() *SymbolTable {
	return &SymbolTable{names: make(map[string]int)}
}

// Define appends a named integer variable and returns its index.
// The caller is responsible for rejecting redefinitions.
func (t *SymbolTable) Define(name string, value int) int {
	t.symbols = append(t.symbols, Symbol{Name: name, Value: value, Kind: KindInt})
	idx := len(t.symbols) - 1
	t.names[name] = idx
	return idx
}

// Literal appends an anonymous constant and indexes it under key, the
// literal as written in the source, so that repeated literals share one
// slot. For string literals str is the decoded payload.
func (t *SymbolTable) Literal(key string, kind Kind, value int, str string) int {
	if idx, ok := t.names[key]; ok && t.symbols[idx].Const {
		return idx
	}
	t.anon++
	t.symbols = append(t.symbols, Symbol{
		Name:  "anon" + strconv.Itoa(t.anon),
		Value: value,
		Str:   str,
		Kind:  kind,
		Const: true,
	})
	idx := len(t.symbols) - 1
	t.names[key] = idx
	return idx
}

// Lookup returns the index of name.
func (t *SymbolTable) Lookup(name string) (int, bool) {
	idx, ok := t.names[name]
	return idx, ok
}

// At returns the symbol at index i. It panics if i is out of range.
func (t *SymbolTable) At(i int) *Symbol {
	return &t.symbols[i]
}

// Valid reports whether i is an index of the table.
func (t *SymbolTable) Valid(i int) bool {
	return i >= 0 && i < len(t.symbols)
}

// Len returns the number of symbols.
func (t *SymbolTable) Len() int {
	return len(t.symbols)
}

// Clone returns a deep copy of the table.
func (t *SymbolTable) Clone() *SymbolTable {
	c := &SymbolTable{
		symbols: make([]Symbol, len(t.symbols)),
		names:   make(map[string]int, len(t.names)),
		anon:    t.anon,
	}
	copy(c.symbols, t.symbols)
	for k, v := range t.names {
		c.names[k] = v
	}
	return c
}

// Values returns a copy of every symbol's integer value, in index order.
func (t *SymbolTable) Snapshot() []int {
	vals := make([]int, len(t.symbols))
	for i := range t.symbols {
		vals[i] = t.symbols[i].Value
	}
	return vals
}

// Restore sets every symbol's value from a slice returned by Snapshot.
func (t *SymbolTable) Restore(vals []int) {
	for i := range vals {
		if i < len(t.symbols) {
			t.symbols[i].Value = vals[i]
		}
	}
}
