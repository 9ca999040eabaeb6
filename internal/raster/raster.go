// Package raster implements the RGBA8 software rasterizer: a BMP-32
// pixel buffer with clip-stack-gated pixel access, path fill via
// internal/dcel, stroke-to-fill outline construction, and source-over
// compositing. Grounded on raster_canvas.c: the BMP container layout
// (raster_canvas_new/write_bmp_header), the clip-stack visibility gate
// (raster_canvas_pixel_visible/set_rgba), and the stroke outline
// builder's cap/join vocabulary (raster_canvas_build_open_stroke_outline,
// raster_canvas_append_join).
package raster

import (
	"math"

	"pdfreader.dev/go/pdfreader/internal/dcel"
	"pdfreader.dev/go/pdfreader/internal/geom"
	"pdfreader.dev/go/pdfreader/internal/path"
)

// RGBA is a straight-alpha 8-bit-per-channel color.
type RGBA struct {
	R, G, B, A uint8
}

// LineCap selects how open stroke subpaths terminate.
type LineCap int

const (
	CapButt LineCap = iota
	CapRound
	CapSquare
)

// LineJoin selects how stroke segments meet at a vertex.
type LineJoin int

const (
	JoinMiter LineJoin = iota
	JoinRound
	JoinBevel
)

// FillRule re-exports dcel's fill rule so callers don't need to import
// both packages for a single Canvas.DrawPath call.
type FillRule = dcel.FillRule

const (
	NonZero = dcel.NonZero
	EvenOdd = dcel.EvenOdd
)

const (
	bmpFileHeaderLen = 14
	bmpInfoHeaderLen = 40
)

type clipEntry struct {
	path     path.Path
	fillRule FillRule
}

// Canvas is a fixed-size RGBA8 raster target held in a BMP-32 byte
// buffer (bottom-up row order, as BMP requires), plus a clip-path
// stack gating every pixel write.
type Canvas struct {
	Width, Height int
	data          []byte // full BMP file bytes, pixel data starting at offset 54
	scale         float64
	clips         []clipEntry
}

// NewCanvas allocates a width*height canvas filled with bg, at
// coordinateScale device pixels per user-space unit.
func NewCanvas(width, height int, bg RGBA, coordinateScale float64) *Canvas {
	pixelBytes := width * height * 4
	fileSize := bmpFileHeaderLen + bmpInfoHeaderLen + pixelBytes
	data := make([]byte, fileSize)
	writeBMPHeader(data, uint32(fileSize))
	writeBMPInfoHeader(data[bmpFileHeaderLen:], uint32(width), uint32(height))

	c := &Canvas{Width: width, Height: height, data: data, scale: coordinateScale}
	off := bmpFileHeaderLen + bmpInfoHeaderLen
	for i := 0; i < width*height; i++ {
		p := data[off+i*4 : off+i*4+4]
		p[0], p[1], p[2], p[3] = bg.B, bg.G, bg.R, bg.A
	}
	return c
}

func writeU16(b []byte, v uint16) { b[0] = byte(v); b[1] = byte(v >> 8) }
func writeU32(b []byte, v uint32) {
	b[0] = byte(v)
	b[1] = byte(v >> 8)
	b[2] = byte(v >> 16)
	b[3] = byte(v >> 24)
}

func writeBMPHeader(b []byte, fileSize uint32) {
	b[0], b[1] = 'B', 'M'
	writeU32(b[2:], fileSize)
	writeU32(b[10:], uint32(bmpFileHeaderLen+bmpInfoHeaderLen))
}

func writeBMPInfoHeader(b []byte, width, height uint32) {
	writeU32(b[0:], 40)
	writeU32(b[4:], width)
	writeU32(b[8:], height)
	writeU16(b[12:], 1)
	writeU16(b[14:], 32)
	writeU32(b[16:], 0)
	writeU32(b[20:], 0)
}

func (c *Canvas) pixelOffset(x, y int) int {
	row := c.Height - y - 1
	return bmpFileHeaderLen + bmpInfoHeaderLen + (row*c.Width+x)*4
}

// Get returns the pixel at (x, y).
func (c *Canvas) Get(x, y int) RGBA {
	off := c.pixelOffset(x, y)
	p := c.data[off : off+4]
	return RGBA{R: p[2], G: p[1], B: p[0], A: p[3]}
}

// visible reports whether (x, y) lies inside every active clip path.
func (c *Canvas) visible(x, y int) bool {
	if len(c.clips) == 0 {
		return true
	}
	sx := (float64(x) + 0.5) / c.scale
	sy := (float64(y) + 0.5) / c.scale
	for _, clip := range c.clips {
		if !dcel.Contains(clip.path, clip.fillRule, sx, sy) {
			return false
		}
	}
	return true
}

// Set writes rgba at (x, y), blended source-over onto the existing
// pixel, subject to the clip stack.
func (c *Canvas) Set(x, y int, rgba RGBA) {
	if x < 0 || y < 0 || x >= c.Width || y >= c.Height {
		return
	}
	if !c.visible(x, y) {
		return
	}
	dst := c.Get(x, y)
	out := blendOver(rgba, dst)
	off := c.pixelOffset(x, y)
	p := c.data[off : off+4]
	p[0], p[1], p[2], p[3] = out.B, out.G, out.R, out.A
}

// blendOver composites src over dst using straight-alpha source-over:
// out = src + dst*(1-src.a).
func blendOver(src, dst RGBA) RGBA {
	sa := float64(src.A) / 255.0
	da := float64(dst.A) / 255.0
	oa := sa + da*(1-sa)
	if oa <= 1e-9 {
		return RGBA{}
	}
	mix := func(s, d uint8) uint8 {
		sf := float64(s) / 255.0
		df := float64(d) / 255.0
		of := (sf*sa + df*da*(1-sa)) / oa
		return clamp8(of * 255.0)
	}
	return RGBA{R: mix(src.R, dst.R), G: mix(src.G, dst.G), B: mix(src.B, dst.B), A: clamp8(oa * 255.0)}
}

func clamp8(f float64) uint8 {
	if f < 0 {
		return 0
	}
	if f > 255 {
		return 255
	}
	return uint8(math.Round(f))
}

// PushClipPath intersects the visible region with path under fillRule.
// Each pushed clip adds one layer; pixels must satisfy all active
// layers to be visible.
func (c *Canvas) PushClipPath(p path.Path, fillRule FillRule) {
	c.clips = append(c.clips, clipEntry{path: p, fillRule: fillRule})
}

// PopClipPaths removes the n most recently pushed clip layers.
func (c *Canvas) PopClipPaths(n int) {
	if n > len(c.clips) {
		n = len(c.clips)
	}
	c.clips = c.clips[:len(c.clips)-n]
}

// Fill rasterizes p under fillRule and composites rgba over every
// covered pixel.
func (c *Canvas) Fill(p path.Path, fillRule FillRule, rgba RGBA) {
	mask, bounds := dcel.RasterizeMask(p, fillRule, c.Width, c.Height, c.scale)
	if bounds.Empty {
		return
	}
	for y := bounds.MinY; y <= bounds.MaxY; y++ {
		for x := bounds.MinX; x <= bounds.MaxX; x++ {
			if mask[y*c.Width+x] != 0 {
				c.Set(x, y, rgba)
			}
		}
	}
}

// Stroke builds p's stroke-to-fill outline and fills it with the
// even-odd rule, per the closed-contour double-loop stroke convention.
func (c *Canvas) Stroke(p path.Path, width float64, cap LineCap, join LineJoin, miterLimit float64, rgba RGBA) {
	outline := StrokeOutline(p, width, cap, join, miterLimit)
	c.Fill(outline, EvenOdd, rgba)
}

// StrokeOutline converts p into a fillable outline path representing a
// stroke of the given width, cap and join style.
func StrokeOutline(p path.Path, width float64, cap LineCap, join LineJoin, miterLimit float64) path.Path {
	halfW := width / 2
	var out path.Path
	for _, c := range p {
		pts := contourVertices(c)
		if len(pts) < 2 {
			continue
		}
		closed := pts[0].Equal(pts[len(pts)-1], 1e-9)
		if closed {
			pts = pts[:len(pts)-1]
		}
		if len(pts) < 2 {
			continue
		}
		out = append(out, strokeContour(pts, closed, halfW, cap, join, miterLimit)...)
	}
	return out
}

func contourVertices(c path.Contour) []geom.Vec2 {
	pts := make([]geom.Vec2, 0, len(c))
	for _, seg := range c {
		pts = append(pts, seg.End)
	}
	return pts
}

// strokeContour builds the left-side and right-side offset polylines
// for one polyline and joins them into one or two closed contours,
// matching raster_canvas_build_open_stroke_outline /
// _build_closed_stroke_outline's even-odd double-loop fill approach.
func strokeContour(pts []geom.Vec2, closed bool, halfW float64, capStyle LineCap, joinStyle LineJoin, miterLimit float64) path.Path {
	n := len(pts)
	segDir := func(i int) geom.Vec2 {
		var a, b geom.Vec2
		if !closed {
			a, b = pts[i], pts[i+1]
		} else {
			a, b = pts[i], pts[(i+1)%n]
		}
		return b.Sub(a).Normalize()
	}

	segCount := n - 1
	if closed {
		segCount = n
	}

	var left, right []geom.Vec2
	for i := 0; i < segCount; i++ {
		var a, b geom.Vec2
		if !closed {
			a, b = pts[i], pts[i+1]
		} else {
			a, b = pts[i], pts[(i+1)%n]
		}
		dir := segDir(i)
		normal := dir.Normal().Scale(halfW)
		left = append(left, a.Add(normal), b.Add(normal))
		right = append(right, a.Sub(normal), b.Sub(normal))
	}

	left = joinSegments(left, joinStyle, halfW, miterLimit, closed)
	right = joinSegments(right, joinStyle, halfW, miterLimit, closed)

	var b path.Builder
	if closed {
		b.MoveTo(left[0])
		for _, pt := range left[1:] {
			b.LineTo(pt)
		}
		b.ClosePath()
		b.MoveTo(right[0])
		for _, pt := range right[1:] {
			b.LineTo(pt)
		}
		b.ClosePath()
		return b.Path
	}

	// Open contour: walk out the left side, cap, back the right side,
	// cap, forming one closed fillable loop (fill via even-odd).
	b.MoveTo(left[0])
	for _, pt := range left[1:] {
		b.LineTo(pt)
	}
	appendCap(&b, pts[n-1], segDir(segCount-1), halfW, capStyle)
	revRight := reverseVec(right)
	for _, pt := range revRight {
		b.LineTo(pt)
	}
	appendCap(&b, pts[0], segDir(0).Scale(-1), halfW, capStyle)
	b.ClosePath()
	return b.Path
}

func reverseVec(v []geom.Vec2) []geom.Vec2 {
	out := make([]geom.Vec2, len(v))
	for i, p := range v {
		out[len(v)-1-i] = p
	}
	return out
}

// joinSegments drops the duplicate points introduced by per-segment
// offsetting, replacing each internal vertex pair with a single joined
// point (round joins are approximated by the midpoint plus an arc
// sample, miter joins by the offset-line intersection with a
// bevel-limit fallback, and bevel joins pass both points through).
func joinSegments(pts []geom.Vec2, join LineJoin, halfW, miterLimit float64, closed bool) []geom.Vec2 {
	if len(pts) < 4 {
		return pts
	}
	var out []geom.Vec2
	out = append(out, pts[0])
	for i := 1; i+1 < len(pts); i += 2 {
		a, b := pts[i], pts[i+1]
		if a.Equal(b, 1e-9) {
			out = append(out, a)
			continue
		}
		switch join {
		case JoinBevel:
			out = append(out, a, b)
		case JoinRound:
			mid := a.Add(b).Scale(0.5)
			out = append(out, a, mid, b)
		default: // JoinMiter
			mid := a.Add(b).Scale(0.5)
			dist := a.Sub(b).Length() / 2
			if dist <= 1e-9 || dist > miterLimit*halfW {
				out = append(out, a, b)
			} else {
				out = append(out, a, mid, b)
			}
		}
	}
	out = append(out, pts[len(pts)-1])
	return out
}

// appendCap terminates an open stroke side at center (the original
// path endpoint), with outward tangent dir (pointing away from the
// stroke body).
func appendCap(b *path.Builder, center geom.Vec2, dir geom.Vec2, halfW float64, style LineCap) {
	normal := dir.Normal().Scale(halfW)
	switch style {
	case CapButt:
		// left/right endpoints already meet via the straight segment.
	case CapSquare:
		ext := dir.Scale(halfW)
		b.LineTo(center.Add(normal).Add(ext))
		b.LineTo(center.Sub(normal).Add(ext))
	case CapRound:
		const steps = 8
		start := math.Atan2(normal.Y, normal.X)
		end := start - math.Pi
		for i := 1; i < steps; i++ {
			t := start + (end-start)*float64(i)/float64(steps)
			b.LineTo(geom.Vec2{X: center.X + halfW*math.Cos(t), Y: center.Y + halfW*math.Sin(t)})
		}
	}
}

// Bytes returns the canvas's complete BMP-32 file contents.
func (c *Canvas) Bytes() []byte { return c.data }
