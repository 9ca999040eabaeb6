// Package dcel implements the half-edge doubly-connected-edge-list
// planar subdivision the rasterizer fills against: vertices, half-edges
// (origin/twin/next/prev) and faces, built from a flattened path by
// BuildFromPath, split at every proper interior crossing by Overlay's
// sweep line, and labelled into faces by AssignFaces and y-monotone
// diagonals by Partition. Grounded on the original renderer's
// dcel_new/dcel_add_vertex/dcel_add_edge/dcel_build_from_path.
package dcel

import (
	"math"
	"sort"

	"pdfreader.dev/go/pdfreader/internal/geom"
	"pdfreader.dev/go/pdfreader/internal/path"
)

// FillRule selects how crossings resolve to "inside".
type FillRule int

const (
	NonZero FillRule = iota
	EvenOdd
)

// Vertex is one DCEL node: a point plus one incident outgoing half-edge.
// Merge and Split are set by assignVertexTypes during Partition, per the
// y-monotone-decomposition vertex classification (start/end/split/merge
// /regular — only split/merge matter for diagonal insertion).
type Vertex struct {
	X, Y     float64
	Incident *HalfEdge
	Merge    bool
	Split    bool
}

// HalfEdge is a directed edge from Origin to Twin.Origin. Next/Prev walk
// the face boundary counterclockwise; Twin is the oppositely-directed
// edge sharing the same endpoints.
type HalfEdge struct {
	Origin     *Vertex
	Twin       *HalfEdge
	Next, Prev *HalfEdge
	Face       *Face
	rendered   bool
}

// Face is a cycle of half-edges bounding one region of the subdivision.
// It carries no data of its own; identity is what matters, the way the
// original's DcelFace is an opaque arena-allocated marker. The unexported
// byte gives Face a non-zero size, so every &Face{} has its own address.
type Face struct{ _ byte }

// Dcel owns every vertex, half-edge and face of one subdivision, plus
// the y-then-x sorted event queue Overlay/AssignFaces/Partition each
// sweep from front to back.
type Dcel struct {
	Vertices  []*Vertex
	HalfEdges []*HalfEdge
	Faces     []*Face
	OuterFace *Face

	events []*Vertex // sorted ascending by (y, x): the sweep event queue
}

// New returns an empty Dcel with its outer face allocated, mirroring
// dcel_new.
func New() *Dcel {
	d := &Dcel{OuterFace: &Face{}}
	d.Faces = append(d.Faces, d.OuterFace)
	return d
}

// eventLess is priority_queue_cmp: primary key y ascending, ties broken
// by x ascending.
func eventLess(a, b *Vertex) bool {
	if a.Y == b.Y {
		return a.X < b.X
	}
	return a.Y < b.Y
}

// AddVertex creates a vertex and inserts it into the sweep event queue
// in sorted order, mirroring dcel_add_vertex.
func (d *Dcel) AddVertex(x, y float64) *Vertex {
	v := &Vertex{X: x, Y: y}
	d.Vertices = append(d.Vertices, v)
	idx := sort.Search(len(d.events), func(i int) bool { return !eventLess(d.events[i], v) })
	d.events = append(d.events, nil)
	copy(d.events[idx+1:], d.events[idx:])
	d.events[idx] = v
	return v
}

// AddEdge creates a twin pair of half-edges a->b and b->a, wiring each
// endpoint's Incident pointer, mirroring dcel_add_edge. Next/Prev are
// left nil for the caller to wire.
func (d *Dcel) AddEdge(a, b *Vertex) *HalfEdge {
	ab := &HalfEdge{Origin: a}
	ba := &HalfEdge{Origin: b}
	ab.Twin = ba
	ba.Twin = ab
	a.Incident = ab
	b.Incident = ba
	d.HalfEdges = append(d.HalfEdges, ab, ba)
	return ab
}

// NextIncidentEdge walks to the next half-edge leaving the same vertex
// as he, in the counterclockwise order Next/Prev already encode.
func NextIncidentEdge(he *HalfEdge) *HalfEdge {
	if he == nil || he.Twin == nil {
		return nil
	}
	return he.Twin.Next
}

// BuildFromPath constructs a closed half-edge cycle (plus mirror-image
// twin cycle) per contour of p, exactly as dcel_build_from_path does:
// contours with fewer than 3 distinct points are skipped. p must
// already be flattened (path.Flatten). Returns false if no contour
// produced any edges.
func BuildFromPath(p path.Path) (*Dcel, bool) {
	d := New()
	hasEdges := false

	for _, c := range p {
		pts := contourPoints(c)
		if len(pts) < 3 {
			continue
		}

		first := d.AddVertex(pts[0].X, pts[0].Y)
		prevVertex := first
		var firstEdge, prevEdge *HalfEdge

		for _, pt := range pts[1:] {
			next := d.AddVertex(pt.X, pt.Y)
			he := d.AddEdge(prevVertex, next)

			if firstEdge != nil {
				prevEdge.Next = he
				he.Prev = prevEdge
				prevEdge.Twin.Prev = he.Twin
				he.Twin.Next = prevEdge.Twin
			} else {
				firstEdge = he
			}

			prevVertex = next
			prevEdge = he
		}

		closing := d.AddEdge(prevVertex, first)
		firstEdge.Prev = closing
		prevEdge.Next = closing
		closing.Next = firstEdge
		closing.Prev = prevEdge

		firstEdge.Twin.Next = closing.Twin
		prevEdge.Twin.Prev = closing.Twin
		closing.Twin.Next = prevEdge.Twin
		closing.Twin.Prev = firstEdge.Twin

		hasEdges = true
	}

	return d, hasEdges
}

// Overlay returns the face subdivision of a flattened path: build,
// sweep-split at proper interior intersections, and assign faces. The
// returned Dcel satisfies the planar-subdivision invariants (every
// half-edge's twin.twin is itself, every half-edge's next.prev is
// itself, no two non-twin half-edges properly cross) once the sweep
// has run.
func subdivide(p path.Path) (*Dcel, bool) {
	d, ok := BuildFromPath(p)
	if !ok {
		return d, false
	}
	Overlay(d)
	AssignFaces(d)
	return d, true
}

// cycleLen counts the half-edges in start's Next cycle, or 0 if the
// cycle is broken (a nil Next before returning to start).
func cycleLen(start *HalfEdge) int {
	n := 0
	he := start
	for {
		n++
		he = he.Next
		if he == nil {
			return 0
		}
		if he == start {
			return n
		}
	}
}

func cycleBounds(start *HalfEdge) (minX, minY, maxX, maxY float64) {
	minX, minY = start.Origin.X, start.Origin.Y
	maxX, maxY = minX, minY
	he := start
	for {
		x, y := he.Origin.X, he.Origin.Y
		if x < minX {
			minX = x
		}
		if y < minY {
			minY = y
		}
		if x > maxX {
			maxX = x
		}
		if y > maxY {
			maxY = y
		}
		he = he.Next
		if he == nil || he == start {
			return
		}
	}
}

func cycleXIntersections(start *HalfEdge, sampleY float64) []float64 {
	var xs []float64
	he := start
	for {
		a, b := he.Origin, he.Twin.Origin
		crosses := (a.Y <= sampleY && b.Y > sampleY) || (a.Y > sampleY && b.Y <= sampleY)
		if crosses {
			dy := b.Y - a.Y
			if math.Abs(dy) > 1e-18 {
				t := (sampleY - a.Y) / dy
				xs = append(xs, a.X+t*(b.X-a.X))
			}
		}
		he = he.Next
		if he == nil || he == start {
			return xs
		}
	}
}

func cycleMarkRendered(start *HalfEdge) {
	he := start
	for {
		he.rendered = true
		he = he.Next
		if he == nil || he == start {
			return
		}
	}
}

const boundaryEps = 1e-5

// sampleOnSegment reports whether (x, y) lies within boundaryEps of the
// closed segment a-b.
func sampleOnSegment(a, b geom.Vec2, x, y float64) bool {
	ab := b.Sub(a)
	ap := geom.Vec2{X: x - a.X, Y: y - a.Y}
	abLenSq := ab.Dot(ab)
	if abLenSq <= 1e-18 {
		return ap.Dot(ap) <= boundaryEps*boundaryEps
	}
	cross := ap.X*ab.Y - ap.Y*ab.X
	if cross*cross > boundaryEps*boundaryEps*abLenSq {
		return false
	}
	dot := ap.Dot(ab)
	return dot >= -boundaryEps && dot <= abLenSq+boundaryEps
}

func updateCrossing(a, b geom.Vec2, x, y float64, winding *int, parity *bool, onBoundary *bool) {
	if *onBoundary {
		return
	}
	if sampleOnSegment(a, b, x, y) {
		*onBoundary = true
		return
	}
	crossesUp := a.Y <= y && b.Y > y
	crossesDown := a.Y > y && b.Y <= y
	if !crossesUp && !crossesDown {
		return
	}
	dy := b.Y - a.Y
	if math.Abs(dy) < 1e-18 {
		return
	}
	t := (y - a.Y) / dy
	xi := a.X + t*(b.X-a.X)
	if xi <= x {
		return
	}
	*parity = !*parity
	if crossesUp {
		*winding++
	} else {
		*winding--
	}
}

// contourPoints extracts a flattened contour's vertex list (Start plus
// every Line endpoint), collapsing a trailing point that coincides with
// the first.
func contourPoints(c path.Contour) []geom.Vec2 {
	if len(c) == 0 {
		return nil
	}
	pts := make([]geom.Vec2, 0, len(c))
	pts = append(pts, c[0].End)
	for _, seg := range c[1:] {
		if seg.Kind != path.Line && seg.Kind != path.Start {
			continue // caller must flatten curves first
		}
		pts = append(pts, seg.End)
	}
	for len(pts) > 1 && pts[len(pts)-1].Equal(pts[0], 1e-9) {
		pts = pts[:len(pts)-1]
	}
	return pts
}

// Contains reports whether (x, y) is inside p under fillRule, using a
// horizontal-ray crossing count with an explicit on-boundary escape
// hatch so that path edges count as "contained" regardless of fill
// rule. p must already be flattened (path.Flatten). This is the
// fill-rule oracle both standalone callers (clip hit-testing) and
// RasterizeMask's per-face sampling use; it is grounded on
// dcel_path_contains_point, which likewise tests directly against the
// original contours rather than the DCEL's split edges.
func Contains(p path.Path, fillRule FillRule, x, y float64) bool {
	winding := 0
	parity := false
	onBoundary := false

	for _, c := range p {
		pts := contourPoints(c)
		if len(pts) < 2 {
			continue
		}
		for i := 0; i < len(pts)-1; i++ {
			updateCrossing(pts[i], pts[i+1], x, y, &winding, &parity, &onBoundary)
			if onBoundary {
				break
			}
		}
		if !onBoundary && !pts[len(pts)-1].Equal(pts[0], 1e-9) {
			updateCrossing(pts[len(pts)-1], pts[0], x, y, &winding, &parity, &onBoundary)
		}
		if onBoundary {
			break
		}
	}

	if onBoundary {
		return true
	}
	if fillRule == EvenOdd {
		return parity
	}
	return winding != 0
}

// Bounds is a pixel-space inclusive bounding box.
type Bounds struct {
	MinX, MinY, MaxX, MaxY int
	Empty                  bool
}

type maskAccum struct {
	mask   []byte
	width  int
	bounds Bounds
}

func (m *maskAccum) mark(px, py int) {
	idx := py*m.width + px
	if m.mask[idx] != 0 {
		return
	}
	m.mask[idx] = 1
	if m.bounds.Empty {
		m.bounds = Bounds{MinX: px, MinY: py, MaxX: px, MaxY: py}
		return
	}
	if px < m.bounds.MinX {
		m.bounds.MinX = px
	}
	if py < m.bounds.MinY {
		m.bounds.MinY = py
	}
	if px > m.bounds.MaxX {
		m.bounds.MaxX = px
	}
	if py > m.bounds.MaxY {
		m.bounds.MaxY = py
	}
}

// RasterizeMask fills p under fillRule into a width*height coverage
// mask (1 = covered), at coordinateScale device pixels per user-space
// unit, sampling pixel centers. Mirrors dcel_rasterize_path_mask: build
// the half-edge subdivision, sweep-overlay it so self-overlapping
// contours are split into non-crossing faces, then scanline-fill each
// face cycle's bounding box, testing each candidate pixel against the
// original path's fill rule via Contains (a DCEL face cycle may be a
// sub-face of a larger path, so membership is still decided against
// the whole path, the same way dcel_rasterize_cycle calls
// dcel_path_contains_point rather than trusting a per-face sign). A
// final whole-path-bounds pass catches boundary pixels span rounding
// or cycle-local bounds missed.
func RasterizeMask(p path.Path, fillRule FillRule, width, height int, coordinateScale float64) ([]byte, Bounds) {
	accum := &maskAccum{mask: make([]byte, width*height), width: width, bounds: Bounds{Empty: true}}
	if width <= 0 || height <= 0 || len(p) == 0 {
		return accum.mask, accum.bounds
	}

	minX, minY, maxX, maxY, has := pathBoundsUser(p)
	if !has {
		return accum.mask, accum.bounds
	}
	_ = minX
	_ = maxX

	d, ok := subdivide(p)
	if ok {
		for _, he := range d.HalfEdges {
			he.rendered = false
		}
		for _, he := range d.HalfEdges {
			if he.rendered || he.Face == d.OuterFace {
				continue
			}
			if cycleLen(he) < 3 {
				continue
			}
			rasterizeCycle(he, p, fillRule, width, height, coordinateScale, accum)
			cycleMarkRendered(he)
		}
	}

	// Fallback pass over the whole path's bounds: covers pixels no
	// face cycle claimed (degenerate/zero-area contours BuildFromPath
	// skipped) plus any boundary samples span rounding missed.
	const eps = 1e-9
	startY := int(math.Floor(minY*coordinateScale)) - 1
	endY := int(math.Ceil(maxY*coordinateScale))
	if startY < 0 {
		startY = 0
	}
	if endY >= height {
		endY = height - 1
	}
	for py := startY; py <= endY; py++ {
		sampleY := (float64(py) + 0.5) / coordinateScale
		xs := crossingsAt(p, sampleY)
		if len(xs) < 2 {
			continue
		}
		sort.Float64s(xs)
		for i := 0; i+1 < len(xs); i += 2 {
			x0, x1 := xs[i], xs[i+1]
			startX := int(math.Ceil((x0-eps)*coordinateScale - 0.5))
			endX := int(math.Floor((x1+eps)*coordinateScale - 0.5))
			if startX < 0 {
				startX = 0
			}
			if endX >= width {
				endX = width - 1
			}
			for px := startX; px <= endX; px++ {
				idx := py*width + px
				if accum.mask[idx] != 0 {
					continue
				}
				sampleX := (float64(px) + 0.5) / coordinateScale
				if Contains(p, fillRule, sampleX, sampleY) {
					accum.mark(px, py)
				}
			}
		}
	}

	// Boundary band: catch pixel centers that lie on an edge but were
	// skipped by span rounding on nearly-horizontal segments.
	for _, c := range p {
		pts := contourPoints(c)
		if len(pts) < 2 {
			continue
		}
		for i := range pts {
			a := pts[i]
			b := pts[(i+1)%len(pts)]
			loX := math.Min(a.X, b.X)*coordinateScale - 1
			hiX := math.Max(a.X, b.X)*coordinateScale + 1
			loY := math.Min(a.Y, b.Y)*coordinateScale - 1
			hiY := math.Max(a.Y, b.Y)*coordinateScale + 1
			sx, ex := clampRange(loX, hiX, width)
			sy, ey := clampRange(loY, hiY, height)
			for py := sy; py <= ey; py++ {
				sampleY := (float64(py) + 0.5) / coordinateScale
				for px := sx; px <= ex; px++ {
					idx := py*width + px
					if accum.mask[idx] != 0 {
						continue
					}
					sampleX := (float64(px) + 0.5) / coordinateScale
					if !sampleOnSegment(a, b, sampleX, sampleY) {
						continue
					}
					if Contains(p, fillRule, sampleX, sampleY) {
						accum.mark(px, py)
					}
				}
			}
		}
	}

	return accum.mask, accum.bounds
}

// rasterizeCycle scanline-fills one face cycle's local bounding box,
// mirroring dcel_rasterize_cycle: span-fill plus a per-edge boundary
// band, both gated on Contains against the original path.
func rasterizeCycle(start *HalfEdge, p path.Path, fillRule FillRule, width, height int, coordinateScale float64, accum *maskAccum) {
	minX, minY, maxX, maxY := cycleBounds(start)
	_ = minX
	_ = maxX

	startY := int(math.Floor(minY*coordinateScale)) - 1
	endY := int(math.Ceil(maxY*coordinateScale))
	if startY < 0 {
		startY = 0
	}
	if endY >= height {
		endY = height - 1
	}

	const eps = 1e-9
	for py := startY; py <= endY; py++ {
		sampleY := (float64(py) + 0.5) / coordinateScale
		xs := cycleXIntersections(start, sampleY)
		if len(xs) < 2 {
			continue
		}
		sort.Float64s(xs)
		for i := 0; i+1 < len(xs); i += 2 {
			x0, x1 := xs[i], xs[i+1]
			startX := int(math.Ceil((x0-eps)*coordinateScale - 0.5))
			endX := int(math.Floor((x1+eps)*coordinateScale - 0.5))
			if startX < 0 {
				startX = 0
			}
			if endX >= width {
				endX = width - 1
			}
			for px := startX; px <= endX; px++ {
				idx := py*width + px
				if accum.mask[idx] != 0 {
					continue
				}
				sampleX := (float64(px) + 0.5) / coordinateScale
				if !Contains(p, fillRule, sampleX, sampleY) {
					continue
				}
				accum.mark(px, py)
			}
		}
	}

	he := start
	for {
		a := geom.Vec2{X: he.Origin.X, Y: he.Origin.Y}
		b := geom.Vec2{X: he.Twin.Origin.X, Y: he.Twin.Origin.Y}

		loX := math.Min(a.X, b.X)*coordinateScale - 1
		hiX := math.Max(a.X, b.X)*coordinateScale + 1
		loY := math.Min(a.Y, b.Y)*coordinateScale - 1
		hiY := math.Max(a.Y, b.Y)*coordinateScale + 1
		sx, ex := clampRange(loX, hiX, width)
		sy, ey := clampRange(loY, hiY, height)

		for py := sy; py <= ey; py++ {
			sampleY := (float64(py) + 0.5) / coordinateScale
			for px := sx; px <= ex; px++ {
				idx := py*width + px
				if accum.mask[idx] != 0 {
					continue
				}
				sampleX := (float64(px) + 0.5) / coordinateScale
				if !sampleOnSegment(a, b, sampleX, sampleY) {
					continue
				}
				if !Contains(p, fillRule, sampleX, sampleY) {
					continue
				}
				accum.mark(px, py)
			}
		}

		he = he.Next
		if he == nil || he == start {
			break
		}
	}
}

func clampRange(lo, hi float64, limit int) (int, int) {
	s := int(math.Floor(lo))
	e := int(math.Ceil(hi))
	if s < 0 {
		s = 0
	}
	if e >= limit {
		e = limit - 1
	}
	return s, e
}

func pathBoundsUser(p path.Path) (minX, minY, maxX, maxY float64, has bool) {
	for _, c := range p {
		for _, seg := range c {
			if !has {
				minX, minY, maxX, maxY = seg.End.X, seg.End.Y, seg.End.X, seg.End.Y
				has = true
				continue
			}
			if seg.End.X < minX {
				minX = seg.End.X
			}
			if seg.End.Y < minY {
				minY = seg.End.Y
			}
			if seg.End.X > maxX {
				maxX = seg.End.X
			}
			if seg.End.Y > maxY {
				maxY = seg.End.Y
			}
		}
	}
	return
}

// crossingsAt returns the x-coordinates where p's edges cross the
// horizontal line y=sampleY.
func crossingsAt(p path.Path, sampleY float64) []float64 {
	var xs []float64
	for _, c := range p {
		pts := contourPoints(c)
		if len(pts) < 2 {
			continue
		}
		for i := 0; i < len(pts); i++ {
			a := pts[i]
			b := pts[(i+1)%len(pts)]
			crosses := (a.Y <= sampleY && b.Y > sampleY) || (a.Y > sampleY && b.Y <= sampleY)
			if !crosses {
				continue
			}
			dy := b.Y - a.Y
			if math.Abs(dy) < 1e-18 {
				continue
			}
			t := (sampleY - a.Y) / dy
			xs = append(xs, a.X+t*(b.X-a.X))
		}
	}
	return xs
}
