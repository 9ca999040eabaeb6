package graphics

import (
	"testing"

	pdf "pdfreader.dev/go/pdfreader"
)

func scalars(vs ...float64) []pdf.Object {
	out := make([]pdf.Object, len(vs))
	for i, v := range vs {
		out[i] = pdf.Real(v)
	}
	return out
}

func TestGStackPushPopRestoresState(t *testing.T) {
	s := newGStack(newGState())
	s.top().lineWidth = 2
	s.push()
	s.top().lineWidth = 5
	if s.top().lineWidth != 5 {
		t.Fatalf("expected pushed state to inherit then allow mutation")
	}
	layers, err := s.pop()
	if err != nil {
		t.Fatalf("pop: %v", err)
	}
	if layers != 0 {
		t.Errorf("clipDepth = %d, want 0", layers)
	}
	if s.top().lineWidth != 2 {
		t.Errorf("lineWidth after pop = %v, want 2", s.top().lineWidth)
	}
}

func TestGStackPopWithoutPushErrors(t *testing.T) {
	s := newGStack(newGState())
	if _, err := s.pop(); err == nil {
		t.Fatal("expected error popping the base state")
	}
}

func TestColorHelpers(t *testing.T) {
	c, err := grayColor(scalars(0.5))
	if err != nil || c.r != 0.5 || c.g != 0.5 || c.b != 0.5 {
		t.Errorf("grayColor = %+v, err %v", c, err)
	}
	c, err = rgbColor(scalars(1, 0, 0))
	if err != nil || c.r != 1 || c.g != 0 || c.b != 0 {
		t.Errorf("rgbColor = %+v, err %v", c, err)
	}
	c, err = cmykColor(scalars(0, 0, 0, 1))
	if err != nil || c.r != 0 || c.g != 0 || c.b != 0 {
		t.Errorf("cmykColor(K=1) = %+v, want black, err %v", c, err)
	}
}

func TestRuneForGlyphName(t *testing.T) {
	if r, ok := runeForGlyphName("A"); !ok || r != 'A' {
		t.Errorf("A -> %q, %v", r, ok)
	}
	if r, ok := runeForGlyphName("space"); !ok || r != ' ' {
		t.Errorf("space -> %q, %v", r, ok)
	}
	if _, ok := runeForGlyphName(".notdef"); ok {
		t.Errorf(".notdef should not resolve to a rune")
	}
}
