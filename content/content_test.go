package content

import (
	"testing"

	pdf "pdfreader.dev/go/pdfreader"
)

func TestParseSimplePath(t *testing.T) {
	ops, err := Parse([]byte("1 0 0 1 0 0 cm\n10 20 m\n30 40 l\nS\n"))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	wantOps := []Operator{"cm", "m", "l", "S"}
	if len(ops) != len(wantOps) {
		t.Fatalf("got %d ops, want %d: %+v", len(ops), len(wantOps), ops)
	}
	for i, w := range wantOps {
		if ops[i].Op != w {
			t.Errorf("op %d = %q, want %q", i, ops[i].Op, w)
		}
	}
}

func TestParseRectangleLowering(t *testing.T) {
	ops, err := Parse([]byte("10 20 30 40 re\n"))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	wantOps := []Operator{"m", "l", "l", "l", "h"}
	if len(ops) != len(wantOps) {
		t.Fatalf("got %d ops, want %d: %+v", len(ops), len(wantOps), ops)
	}
	for i, w := range wantOps {
		if ops[i].Op != w {
			t.Errorf("op %d = %q, want %q", i, ops[i].Op, w)
		}
	}
	last := ops[2] // second "l" should reach (40, 60)
	x, _ := last.Operands[0].(pdf.Integer)
	y, _ := last.Operands[1].(pdf.Integer)
	if x != 40 || y != 60 {
		t.Errorf("second l = (%d, %d), want (40, 60)", x, y)
	}
}

func TestParseTJDecomposition(t *testing.T) {
	ops, err := Parse([]byte("[(Hi) -250 (there)] TJ\n"))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	wantOps := []Operator{OpShowText, OpPositionText, OpShowText}
	if len(ops) != len(wantOps) {
		t.Fatalf("got %d ops, want %d: %+v", len(ops), len(wantOps), ops)
	}
	for i, w := range wantOps {
		if ops[i].Op != w {
			t.Errorf("op %d = %q, want %q", i, ops[i].Op, w)
		}
	}
}

func TestParseUnknownOperator(t *testing.T) {
	_, err := Parse([]byte("1 2 Zz\n"))
	if err == nil {
		t.Fatal("expected error for unknown operator")
	}
}
