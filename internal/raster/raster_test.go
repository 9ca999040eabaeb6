package raster

import (
	"testing"

	"pdfreader.dev/go/pdfreader/internal/geom"
	"pdfreader.dev/go/pdfreader/internal/path"
)

func TestFillCoversInterior(t *testing.T) {
	var b path.Builder
	b.MoveTo(geom.Vec2{X: 0, Y: 0})
	b.LineTo(geom.Vec2{X: 10, Y: 0})
	b.LineTo(geom.Vec2{X: 10, Y: 10})
	b.LineTo(geom.Vec2{X: 0, Y: 10})
	b.ClosePath()

	c := NewCanvas(10, 10, RGBA{}, 1.0)
	c.Fill(b.Path, NonZero, RGBA{R: 255, A: 255})

	px := c.Get(5, 5)
	if px.A == 0 {
		t.Error("expected interior pixel to be covered")
	}
}

func TestClipPathRestrictsFill(t *testing.T) {
	var square path.Builder
	square.MoveTo(geom.Vec2{X: 0, Y: 0})
	square.LineTo(geom.Vec2{X: 10, Y: 0})
	square.LineTo(geom.Vec2{X: 10, Y: 10})
	square.LineTo(geom.Vec2{X: 0, Y: 10})
	square.ClosePath()

	var clip path.Builder
	clip.MoveTo(geom.Vec2{X: 0, Y: 0})
	clip.LineTo(geom.Vec2{X: 3, Y: 0})
	clip.LineTo(geom.Vec2{X: 3, Y: 3})
	clip.LineTo(geom.Vec2{X: 0, Y: 3})
	clip.ClosePath()

	c := NewCanvas(10, 10, RGBA{}, 1.0)
	c.PushClipPath(clip.Path, NonZero)
	c.Fill(square.Path, NonZero, RGBA{R: 255, A: 255})

	if c.Get(1, 1).A == 0 {
		t.Error("expected pixel inside clip to be filled")
	}
	if c.Get(8, 8).A != 0 {
		t.Error("expected pixel outside clip to remain unfilled")
	}
}

func TestBMPHeaderMagic(t *testing.T) {
	c := NewCanvas(4, 4, RGBA{A: 255}, 1.0)
	data := c.Bytes()
	if data[0] != 'B' || data[1] != 'M' {
		t.Error("expected BM magic bytes")
	}
}
