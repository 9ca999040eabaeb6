// Package graphics drives the render loop (component P): it executes a
// parsed content stream (content.Operation list) against an
// internal/raster.Canvas, tracking the graphics state stack (q/Q, CTM,
// color, line style, text state) the way content/extract.go's
// graphics.State/Clone()/CTM-concatenation pattern does, adapted from a
// PDF-writing state tracker to one that paints instead of emits
// operators.
package graphics

import (
	"fmt"

	"pdfreader.dev/go/pdfreader/internal/geom"
	"pdfreader.dev/go/pdfreader/internal/raster"
)

// color is a resolved paint color as RGB components; colors given in
// other spaces are converted to RGB by resolveColor.
type color struct {
	r, g, b float64
}

var black = color{0, 0, 0}

func (c color) toRGBA(alpha float64) raster.RGBA {
	clamp := func(f float64) uint8 {
		if f < 0 {
			f = 0
		}
		if f > 1 {
			f = 1
		}
		return uint8(f*255 + 0.5)
	}
	return raster.RGBA{R: clamp(c.r), G: clamp(c.g), B: clamp(c.b), A: clamp(alpha)}
}

// textState holds the Tc/Tw/Tz/TL/Tf/Tr/Ts parameters plus the text and
// line matrices, per §9.3/§9.4.
type textState struct {
	charSpacing  float64
	wordSpacing  float64
	hScale       float64 // Tz, as a fraction (100 -> 1.0)
	leading      float64
	font         *loadedFont
	fontSize     float64
	renderMode   int
	rise         float64
	tm, tlm      geom.Matrix
}

// gstate is one level of the graphics-state stack: everything q/Q must
// save and restore.
type gstate struct {
	ctm geom.Matrix

	fillColor   color
	strokeColor color
	fillAlpha   float64
	strokeAlpha float64
	fillSpace   *colorSpace // set by cs; nil means sc/scn falls back to operand-count
	strokeSpace *colorSpace // set by CS; nil means SC/SCN falls back to operand-count

	lineWidth  float64
	lineCap    raster.LineCap
	lineJoin   raster.LineJoin
	miterLimit float64

	text textState

	clipDepth int // number of clip layers pushed onto the Canvas under this gstate
}

func newGState() gstate {
	return gstate{
		ctm:         geom.Identity,
		fillColor:   black,
		strokeColor: black,
		fillAlpha:   1,
		strokeAlpha: 1,
		lineWidth:   1,
		miterLimit:  10,
		text:        textState{hScale: 1},
	}
}

// gstack is the q/Q stack; popping below the initial state is a content
// stream error, per §8.4.2.
type gstack struct {
	frames []gstate
}

func newGStack(base gstate) *gstack {
	return &gstack{frames: []gstate{base}}
}

func (s *gstack) top() *gstate { return &s.frames[len(s.frames)-1] }

func (s *gstack) push() {
	cur := *s.top()
	cur.clipDepth = 0
	s.frames = append(s.frames, cur)
}

// pop restores the previous graphics state and reports how many clip
// layers the popped state had pushed onto the Canvas, so the caller can
// unwind Canvas.PopClipPaths by the same amount.
func (s *gstack) pop() (clipLayers int, err error) {
	if len(s.frames) <= 1 {
		return 0, fmt.Errorf("graphics: Q with no matching q")
	}
	popped := s.frames[len(s.frames)-1]
	s.frames = s.frames[:len(s.frames)-1]
	return popped.clipDepth, nil
}
