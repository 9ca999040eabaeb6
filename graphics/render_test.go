package graphics

import (
	"testing"

	pdf "pdfreader.dev/go/pdfreader"
	"pdfreader.dev/go/pdfreader/internal/geom"
)

func TestPageToDeviceMatrixUnrotated(t *testing.T) {
	page := &pdf.Page{MediaBox: &pdf.Rectangle{LLx: 0, LLy: 0, URx: 200, URy: 100}}
	m := pageToDeviceMatrix(page, 1)

	// Bottom-left of user space maps to bottom-left of the device image
	// (row index height-1 in Canvas's bottom-up storage, but in this
	// top-left-origin coordinate convention that is y=100).
	got := m.Apply(geom.Vec2{X: 0, Y: 0})
	if got.X != 0 || got.Y != 100 {
		t.Errorf("origin maps to %+v, want (0,100)", got)
	}
	got = m.Apply(geom.Vec2{X: 200, Y: 100})
	if got.X != 200 || got.Y != 0 {
		t.Errorf("top-right maps to %+v, want (200,0)", got)
	}
}

func TestPageToDeviceMatrixRotated90(t *testing.T) {
	page := &pdf.Page{MediaBox: &pdf.Rectangle{LLx: 0, LLy: 0, URx: 200, URy: 100}, Rotate: 90}
	m := pageToDeviceMatrix(page, 1)
	// A 90-degree rotated 200x100 page displays as 100x200; the
	// original bottom-left corner should land in a corner of that image.
	got := m.Apply(geom.Vec2{X: 0, Y: 0})
	if got.X < 0 || got.X > 100 || got.Y < 0 || got.Y > 200 {
		t.Errorf("rotated origin %+v out of the 100x200 device bounds", got)
	}
}
