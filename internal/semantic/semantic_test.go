package semantic

import (
	"strings"
	"testing"

	"github.com/kolkov/minidbg/internal/parser"
	"github.com/kolkov/minidbg/internal/token"
)

// Helper to parse and resolve
func resolveCode(t *testing.T, code string) (*ResolveResult, error) {
	t.Helper()
	prog, err := parser.Parse(code)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	return Resolve(prog)
}

// Helper to check for expected error
func expectError(t *testing.T, code string, errSubstr string) {
	t.Helper()
	prog, err := parser.Parse(code)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	_, err = Analyze(prog)
	if err == nil {
		t.Errorf("expected error containing %q, got no error", errSubstr)
		return
	}
	if !strings.Contains(err.Error(), errSubstr) {
		t.Errorf("expected error containing %q, got: %v", errSubstr, err)
	}
}

// Helper to check no errors
func expectNoError(t *testing.T, code string) *ResolveResult {
	t.Helper()
	prog, err := parser.Parse(code)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	result, err := Analyze(prog)
	if err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	return result
}

func hasWarning(result *ResolveResult, substr string) bool {
	for _, w := range result.Warnings {
		if strings.Contains(w.String(), substr) {
			return true
		}
	}
	return false
}

func TestResolveDefinitionOrder(t *testing.T) {
	result := expectNoError(t, `PROGRAM
NEW @ a : 1
NEW @ b : a
COMPUTE @ a : a + b
PRINT @ "sum ",a
ENDPROGRAM
`)
	got := result.Symbols.Symbols()
	if len(got) != 2 || got[0].Name != "a" || got[1].Name != "b" {
		t.Fatalf("symbols = %v", result.Symbols.Names())
	}
	if got[0].Pos.Line != 2 || got[1].Index != 1 {
		t.Errorf("a at line %d, b index %d", got[0].Pos.Line, got[1].Index)
	}
	if !got[0].Assigned || !got[0].Used {
		t.Errorf("a: %+v", *got[0])
	}
}

func TestResolveErrors(t *testing.T) {
	tests := []struct {
		name string
		code string
		err  string
	}{
		{
			"use before NEW",
			"PROGRAM\nPRINT @ x\nNEW @ x : 1\nENDPROGRAM\n",
			`undefined variable "x"`,
		},
		{
			"self reference",
			"PROGRAM\nNEW @ x : x\nENDPROGRAM\n",
			`undefined variable "x"`,
		},
		{
			"redefinition",
			"PROGRAM\nNEW @ x : 1\nNEW @ x : 2\nENDPROGRAM\n",
			`variable "x" already defined at line 2`,
		},
		{
			"digits in name",
			"PROGRAM\nNEW @ x1 : 1\nENDPROGRAM\n",
			`invalid variable name "x1"`,
		},
		{
			"undefined condition",
			"PROGRAM\nWHILE @ 1 (n > 0) REPEAT\nNOTHING\nENDWHILE @ 1\nENDPROGRAM\n",
			`undefined variable "n"`,
		},
		{
			"undefined heap base",
			"PROGRAM\nNEW @ v : 0\nSTORE @ base$0 : v\nENDPROGRAM\n",
			`undefined variable "base"`,
		},
		{
			"handler before definition",
			"PROGRAM\nSIGNAL\nPRINT @ c\nENDSIGNAL\nNEW @ c : 0\nENDPROGRAM\n",
			`undefined variable "c"`,
		},
		{
			"undefined fork target",
			"PROGRAM\nFORK @ pid\nENDPROGRAM\n",
			`undefined variable "pid"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			expectError(t, tt.code, tt.err)
		})
	}
}

func TestResolveReportsAllErrors(t *testing.T) {
	_, err := resolveCode(t, "PROGRAM\nPRINT @ a\nPRINT @ b\nENDPROGRAM\n")
	el, ok := err.(ErrorList)
	if !ok {
		t.Fatalf("err = %T, want ErrorList", err)
	}
	if len(el) != 2 {
		t.Errorf("got %d errors, want 2: %v", len(el), el)
	}
	if el[1].Pos.Line != 3 {
		t.Errorf("second error at line %d, want 3", el[1].Pos.Line)
	}
}

func TestCheckSignals(t *testing.T) {
	tests := []struct {
		name string
		sig  string
		ok   bool
	}{
		{"usr1", "10", true},
		{"int", "2", true},
		{"kill", "9", false},
		{"stop", "19", false},
		{"quit", "3", false},
		{"zero", "0", false},
		{"too large", "40", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code := "PROGRAM\nSIGNAL\nNOTHING\nENDSIGNAL\nSIGADD @ " + tt.sig + "\nSIGDEL @ " + tt.sig + "\nENDPROGRAM\n"
			if tt.ok {
				expectNoError(t, code)
			} else {
				expectError(t, code, "invalid signal "+tt.sig)
			}
		})
	}
}

func TestWarnings(t *testing.T) {
	result := expectNoError(t, `PROGRAM
NEW @ unused : 0
NEW @ i : 1
WHILE @ 1 (i) REPEAT
ENDWHILE @ 1
COMPUTE @ i : i / 0
SIGADD @ 10
ENDPROGRAM
`)
	for _, want := range []string{
		`variable "unused" is defined but never used`,
		"body of 'WHILE @ 1' is empty",
		"division by constant zero",
		"'SIGADD @ 10' has no effect",
	} {
		if !hasWarning(result, want) {
			t.Errorf("missing warning %q in %v", want, result.Warnings)
		}
	}
}

func TestSymbolTable(t *testing.T) {
	st := NewSymbolTable()
	if st.Define("b", token.NoPos) == nil || st.Define("a", token.NoPos) == nil {
		t.Fatal("Define failed")
	}
	if st.Define("a", token.NoPos) != nil {
		t.Error("duplicate Define should return nil")
	}
	if st.Len() != 2 || st.Lookup("b").Index != 0 {
		t.Errorf("Len = %d", st.Len())
	}
	if names := st.Names(); names[0] != "a" || names[1] != "b" {
		t.Errorf("Names = %v", names)
	}
}
