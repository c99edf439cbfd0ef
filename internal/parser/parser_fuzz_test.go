package parser

import (
	"testing"

	"github.com/kolkov/minidbg/internal/ast"
)

// FuzzParser tests that the parser handles arbitrary input without
// panicking, and that anything it accepts prints back to source it
// accepts again.
func FuzzParser(f *testing.F) {
	seeds := []string{
		"PROGRAM\nENDPROGRAM\n",
		"PROGRAM\nNEW @ x : 1\nPRINT @ x\nENDPROGRAM\n",
		"PROGRAM\nWHILE @ 1 (x < 2) REPEAT\nNOTHING\nENDWHILE @ 1\nENDPROGRAM\n",
		"PROGRAM\nSIGNAL\nPRINT @ \"s\"\nENDSIGNAL\nENDPROGRAM\n",
		"PROGRAM\nMUTEX @ _ : _P\nSTORE @ _$1 : 2\nMUTEX @ _ : _V\nENDPROGRAM\n",
		"PROGRAM\nWHILE @ 1 (x) REPEAT\nENDPROGRAM\n",
		"ENDWHILE @ 3\nENDSIGNAL\n",
		"",
	}

	for _, seed := range seeds {
		f.Add([]byte(seed))
	}

	f.Fuzz(func(t *testing.T, data []byte) {
		prog, err := ParseBytes(data)
		if err != nil {
			return
		}
		if _, err := Parse(ast.String(prog)); err != nil {
			t.Errorf("printed program does not parse: %v", err)
		}
	})
}
