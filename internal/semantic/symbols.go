package semantic

import (
	"sort"

	"github.com/kolkov/minidbg/internal/token"
)

// Symbol holds what the analyzer knows about a variable.
type Symbol struct {
	Name     string         // Variable name
	Index    int            // Definition order, 0-based
	Pos      token.Position // Position of the defining NEW
	Used     bool           // Read anywhere after definition
	Assigned bool           // Written by anything other than its NEW
}

// SymbolTable records the variables of one program in definition order.
// A name is visible from its NEW line onward; there are no nested scopes.
type SymbolTable struct {
	symbols map[string]*Symbol
	order   []*Symbol
}

// NewSymbolTable creates an empty table.
func NewSymbolTable() *SymbolTable {
	return &SymbolTable{symbols: make(map[string]*Symbol)}
}

// Define adds a symbol. Returns nil if the name is already defined.
func (st *SymbolTable) Define(name string, pos token.Position) *Symbol {
	if _, exists := st.symbols[name]; exists {
		return nil
	}
	sym := &Symbol{Name: name, Index: len(st.order), Pos: pos}
	st.symbols[name] = sym
	st.order = append(st.order, sym)
	return sym
}

// Lookup finds a symbol by name.
func (st *SymbolTable) Lookup(name string) *Symbol {
	return st.symbols[name]
}

// Symbols returns the symbols in definition order.
func (st *SymbolTable) Symbols() []*Symbol {
	return st.order
}

// Names returns the defined names, sorted.
func (st *SymbolTable) Names() []string {
	names := make([]string, 0, len(st.order))
	for _, s := range st.order {
		names = append(names, s.Name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of symbols.
func (st *SymbolTable) Len() int {
	return len(st.order)
}
