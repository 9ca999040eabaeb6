// Package path implements the mutable vector path builder: contours of
// straight and (quadratic/cubic) curved segments, with De Casteljau
// flattening to polylines under a flatness tolerance. Grounded on the
// path/flattening responsibilities named for the geometry core, adapted
// to internal/geom's Vec2/Matrix types in place of the unfetchable
// seehuhn.de/go/geom dependency.
package path

import "pdfreader.dev/go/pdfreader/internal/geom"

// SegmentKind tags one Segment's shape.
type SegmentKind int

const (
	Start SegmentKind = iota
	Line
	QuadBezier
	CubicBezier
)

// Segment is one element of a Contour. Only the fields relevant to Kind
// are meaningful: Line/Start use End; QuadBezier uses Control1/End;
// CubicBezier uses Control1/Control2/End.
type Segment struct {
	Kind     SegmentKind
	Control1 geom.Vec2
	Control2 geom.Vec2
	End      geom.Vec2
}

// Contour is a sequence of segments; the first is always Start.
type Contour []Segment

// Path is an ordered list of contours.
type Path []Contour

// Builder accumulates a Path with a cursor, mirroring a typical
// move/line/curve drafting API.
type Builder struct {
	Path    Path
	current geom.Vec2
	start   geom.Vec2
	open    bool
}

// MoveTo starts a new contour at p.
func (b *Builder) MoveTo(p geom.Vec2) {
	b.Path = append(b.Path, Contour{{Kind: Start, End: p}})
	b.current = p
	b.start = p
	b.open = true
}

// LineTo appends a straight segment to p.
func (b *Builder) LineTo(p geom.Vec2) {
	b.ensureOpen()
	b.appendTo(Segment{Kind: Line, End: p})
}

// QuadBezierTo appends a quadratic Bezier segment.
func (b *Builder) QuadBezierTo(ctrl, end geom.Vec2) {
	b.ensureOpen()
	b.appendTo(Segment{Kind: QuadBezier, Control1: ctrl, End: end})
}

// CubicBezierTo appends a cubic Bezier segment.
func (b *Builder) CubicBezierTo(c1, c2, end geom.Vec2) {
	b.ensureOpen()
	b.appendTo(Segment{Kind: CubicBezier, Control1: c1, Control2: c2, End: end})
}

func (b *Builder) ensureOpen() {
	if !b.open {
		b.MoveTo(b.current)
	}
}

func (b *Builder) appendTo(seg Segment) {
	last := &b.Path[len(b.Path)-1]
	*last = append(*last, seg)
	b.current = seg.End
}

// closeEpsilon is the "more than a positive epsilon" threshold for
// deciding whether ClosePath needs to append an explicit closing Line.
const closeEpsilon = 1e-9

// ClosePath appends a Line back to the contour's Start point if the
// current position has drifted from it by more than closeEpsilon, then
// opens a fresh contour at that same point so subsequent drawing
// continues from there.
func (b *Builder) ClosePath() {
	if len(b.Path) == 0 {
		return
	}
	if !b.current.Equal(b.start, closeEpsilon) {
		b.appendTo(Segment{Kind: Line, End: b.start})
	}
	b.open = false
	b.current = b.start
}

// ApplyTransform post-multiplies every point of p by m, per the CTM
// convention in geom.Matrix.
func (p Path) ApplyTransform(m geom.Matrix) Path {
	out := make(Path, len(p))
	for i, c := range p {
		nc := make(Contour, len(c))
		for j, seg := range c {
			nc[j] = Segment{
				Kind:     seg.Kind,
				Control1: m.Apply(seg.Control1),
				Control2: m.Apply(seg.Control2),
				End:      m.Apply(seg.End),
			}
		}
		out[i] = nc
	}
	return out
}

// Flatten replaces every curved segment with a polyline approximation
// accurate to within tolerance, per §4.10's flatness rule. maxDepth
// bounds the De Casteljau subdivision recursion; at the cap the
// remaining segment collapses to a single chord.
func (p Path) Flatten(tolerance float64, maxDepth int) Path {
	out := make(Path, len(p))
	for ci, c := range p {
		var flat Contour
		cursor := geom.Vec2{}
		for si, seg := range c {
			switch seg.Kind {
			case Start, Line:
				flat = append(flat, seg)
				cursor = seg.End
			case QuadBezier:
				pts := flattenQuad(cursor, seg.Control1, seg.End, tolerance, maxDepth)
				for _, pt := range pts {
					flat = append(flat, Segment{Kind: Line, End: pt})
				}
				cursor = seg.End
			case CubicBezier:
				pts := flattenCubic(cursor, seg.Control1, seg.Control2, seg.End, tolerance, maxDepth)
				for _, pt := range pts {
					flat = append(flat, Segment{Kind: Line, End: pt})
				}
				cursor = seg.End
			}
			_ = si
		}
		out[ci] = flat
	}
	return out
}

// distToSegment returns the perpendicular distance from p to the
// infinite line through a-b (or to a, if a==b).
func distToSegment(p, a, b geom.Vec2) float64 {
	d := b.Sub(a)
	l := d.Length()
	if l < 1e-12 {
		return p.Sub(a).Length()
	}
	n := geom.Vec2{X: -d.Y / l, Y: d.X / l}
	return p.Sub(a).Dot(n)
}

func abs(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}

// flattenQuad subdivides a quadratic Bezier (start, ctrl, end) by
// midpoint bisection until the control point is within 2*tolerance of
// the chord, returning the polyline points after start (start itself is
// not included).
func flattenQuad(start, ctrl, end geom.Vec2, tolerance float64, maxDepth int) []geom.Vec2 {
	if maxDepth <= 0 || abs(distToSegment(ctrl, start, end)) <= 2*tolerance {
		return []geom.Vec2{end}
	}
	mid01 := start.Add(ctrl).Scale(0.5)
	mid12 := ctrl.Add(end).Scale(0.5)
	midpt := mid01.Add(mid12).Scale(0.5)
	left := flattenQuad(start, mid01, midpt, tolerance, maxDepth-1)
	right := flattenQuad(midpt, mid12, end, tolerance, maxDepth-1)
	return append(left, right...)
}

// flattenCubic subdivides a cubic Bezier the same way, flat when
// max(dist(c1,chord), dist(c2,chord)) <= (4/3)*tolerance.
func flattenCubic(start, c1, c2, end geom.Vec2, tolerance float64, maxDepth int) []geom.Vec2 {
	d1 := abs(distToSegment(c1, start, end))
	d2 := abs(distToSegment(c2, start, end))
	flatness := d1
	if d2 > flatness {
		flatness = d2
	}
	if maxDepth <= 0 || flatness <= (4.0/3.0)*tolerance {
		return []geom.Vec2{end}
	}
	p01 := start.Add(c1).Scale(0.5)
	p12 := c1.Add(c2).Scale(0.5)
	p23 := c2.Add(end).Scale(0.5)
	p012 := p01.Add(p12).Scale(0.5)
	p123 := p12.Add(p23).Scale(0.5)
	mid := p012.Add(p123).Scale(0.5)
	left := flattenCubic(start, p01, p012, mid, tolerance, maxDepth-1)
	right := flattenCubic(mid, p123, p23, end, tolerance, maxDepth-1)
	return append(left, right...)
}
