package sfnt

import (
	"encoding/binary"
	"testing"
)

// buildTriangleGlyph encodes a minimal simple glyph: one contour, three
// on-curve points forming a triangle, no instructions.
func buildTriangleGlyph(t *testing.T) []byte {
	t.Helper()
	var b []byte
	put16 := func(v uint16) { b = binary.BigEndian.AppendUint16(b, v) }
	putS16 := func(v int16) { b = binary.BigEndian.AppendUint16(b, uint16(v)) }

	putS16(1)    // numContours
	putS16(0)    // xMin
	putS16(0)    // yMin
	putS16(100)  // xMax
	putS16(100)  // yMax
	put16(2)     // endPtsOfContours[0] = 2 (3 points)
	put16(0)     // instructionLength

	// flags: all on-curve, no repeat
	b = append(b, 0x01, 0x01, 0x01)

	// x deltas: short, positive for all three (flag bit handling: since
	// flag bit X_SHORT(0x02) isn't set here, deltas are the full 16-bit
	// form instead — simplify by using full 16-bit x/y deltas).
	// Rewrite flags with no short bits so decode takes the 16-bit path.
	b = b[:len(b)-3]
	b = append(b, 0x01, 0x01, 0x01)

	putS16(0)   // x0 = 0
	putS16(50)  // x1 delta = 50
	putS16(0)   // x2 delta = 0 (back toward x=50... )
	putS16(0)   // y0 = 0
	putS16(0)   // y1 delta = 0
	putS16(100) // y2 delta = 100

	return b
}

func TestDecodeSimpleGlyphTriangle(t *testing.T) {
	data := buildTriangleGlyph(t)
	p, err := decodeSimpleGlyph(data)
	if err != nil {
		t.Fatalf("decodeSimpleGlyph: %v", err)
	}
	if len(p) != 1 {
		t.Fatalf("got %d contours, want 1", len(p))
	}
	// Start + 2 lines + closing line back to start.
	if len(p[0]) < 3 {
		t.Errorf("got %d segments, want at least 3", len(p[0]))
	}
}

func TestDecodeCompoundGlyphRejected(t *testing.T) {
	var b []byte
	b = binary.BigEndian.AppendUint16(b, 0xFFFF) // numContours = -1 (< 0)
	b = append(b, make([]byte, 16)...)
	if _, err := decodeSimpleGlyph(b); err == nil {
		t.Error("expected error for compound glyph")
	}
}

func TestChecksumTable(t *testing.T) {
	data := []byte{0, 0, 0, 1, 0, 0, 0, 2}
	if checksumTable(data) != 3 {
		t.Errorf("checksumTable = %d, want 3", checksumTable(data))
	}
}
