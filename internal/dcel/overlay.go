package dcel

import (
	"math"
	"sort"
)

// activeEdge is one entry of the sweep-line status structure: the
// half-edge currently crossing the sweep line, plus (for Partition) the
// vertex currently acting as its "helper" in the y-monotone
// decomposition.
type activeEdge struct {
	edge   *HalfEdge
	helper *Vertex
}

// edgeIntersectX is the x-coordinate where edge crosses the horizontal
// line y=sweepY, linearly interpolating between its endpoints.
// Near-horizontal edges (within 1e-12 of flat) return their leftmost x,
// matching edge_intersect_x.
func edgeIntersectX(edge *HalfEdge, sweepY float64) float64 {
	x1, y1 := edge.Origin.X, edge.Origin.Y
	x2, y2 := edge.Twin.Origin.X, edge.Twin.Origin.Y
	dy := y2 - y1
	if math.Abs(dy) < 1e-12 {
		return math.Min(x1, x2)
	}
	t := (sweepY - y1) / dy
	return x1 + t*(x2-x1)
}

// activeEdgesLess orders two active edges left-to-right at sweepY,
// disambiguating near-equal intersections by comparing again a hair
// below the sweep line, exactly as active_edges_cmp does.
func activeEdgesLess(lhs, rhs *HalfEdge, sweepY float64) bool {
	ax := edgeIntersectX(lhs, sweepY)
	bx := edgeIntersectX(rhs, sweepY)
	if math.Abs(ax-bx) > 1e-5 {
		return ax < bx
	}
	ax = edgeIntersectX(lhs, sweepY+1e-5)
	bx = edgeIntersectX(rhs, sweepY+1e-5)
	return ax < bx
}

// insertActiveEdgeSorted inserts ae into active (already sorted for
// sweepY) and returns the new slice and the index it landed at.
func insertActiveEdgeSorted(active []activeEdge, ae activeEdge, sweepY float64) ([]activeEdge, int) {
	idx := sort.Search(len(active), func(i int) bool {
		return !activeEdgesLess(active[i].edge, ae.edge, sweepY)
	})
	active = append(active, activeEdge{})
	copy(active[idx+1:], active[idx:])
	active[idx] = ae
	return active, idx
}

func removeActiveEdgeAt(active []activeEdge, idx int) []activeEdge {
	return append(active[:idx], active[idx+1:]...)
}

// findActiveEdge locates the active entry whose edge is twin (the
// closing entry for an edge being removed from the sweep), returning
// its index and -1 if absent.
func findActiveEdge(active []activeEdge, twin *HalfEdge) int {
	for i, ae := range active {
		if ae.edge == twin {
			return i
		}
	}
	return -1
}

// splitEdgeAtPoint inserts vertex into the middle of half_edge,
// producing a new half-edge vertex->half_edge.Twin.Origin and rewiring
// next/prev on both sides, mirroring split_edge_at_point.
func splitEdgeAtPoint(d *Dcel, he *HalfEdge, vertex *Vertex) *HalfEdge {
	newHe := d.AddEdge(vertex, he.Twin.Origin)
	he.Twin.Origin = vertex

	newHe.Next = he.Next
	he.Next.Prev = newHe
	he.Twin.Prev.Next = newHe.Twin
	newHe.Twin.Prev = he.Twin.Prev

	he.Next = newHe
	newHe.Prev = he
	newHe.Twin.Next = he.Twin
	he.Twin.Prev = newHe.Twin

	return newHe
}

// incidentAngle pairs a half-edge leaving a shared vertex with the
// angle (atan2) of its direction, for sorting the cyclic order of
// edges around that vertex.
type incidentAngle struct {
	halfEdge *HalfEdge
	angle    float64
}

func addIncidentAngle(angles []incidentAngle, he *HalfEdge, vertex *Vertex) []incidentAngle {
	dx := he.Twin.Origin.X - vertex.X
	dy := he.Twin.Origin.Y - vertex.Y
	return append(angles, incidentAngle{halfEdge: he, angle: math.Atan2(dy, dx)})
}

// rewireIncidentAngles links each edge's twin.Next to the next edge
// (by angle, wrapping around) leaving vertex, so the cyclic order
// around vertex matches angular order, mirroring
// rewire_incident_angles.
func rewireIncidentAngles(angles []incidentAngle, vertex *Vertex) {
	sort.SliceStable(angles, func(i, j int) bool { return angles[i].angle < angles[j].angle })
	n := len(angles)
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		a, b := angles[i], angles[j]
		a.halfEdge.Twin.Next = b.halfEdge
		b.halfEdge.Prev = a.halfEdge.Twin
	}
}

// IntersectEdges splits a and b at their computed intersection point
// and rewires the four surrounding half-edges into angular order around
// the new vertex, mirroring dcel_intersect_edges.
func IntersectEdges(d *Dcel, a, b *HalfEdge, ix, iy float64) *Vertex {
	vertex := d.AddVertex(ix, iy)
	aPrime := splitEdgeAtPoint(d, a, vertex)
	bPrime := splitEdgeAtPoint(d, b, vertex)
	vertex.Incident = aPrime

	var angles []incidentAngle
	for _, he := range []*HalfEdge{aPrime, bPrime, a.Twin, b.Twin} {
		angles = addIncidentAngle(angles, he, vertex)
	}
	rewireIncidentAngles(angles, vertex)

	return vertex
}

// ConnectVertices adds a diagonal edge a-b (used by Partition to
// split a polygon at a merge/split vertex), rewiring the cyclic order
// at both endpoints and splitting the face the diagonal crosses into
// two, mirroring dcel_connect_vertices.
func ConnectVertices(d *Dcel, a, b *Vertex) {
	aIncident := a.Incident
	bIncident := b.Incident

	edge := d.AddEdge(a, b)

	var angles []incidentAngle
	angles = addIncidentAngle(angles, edge, a)
	for incident := aIncident; incident != nil; {
		angles = addIncidentAngle(angles, incident, a)
		next := NextIncidentEdge(incident)
		if next == nil || next == aIncident {
			break
		}
		incident = next
	}
	rewireIncidentAngles(angles, a)

	angles = angles[:0]
	angles = addIncidentAngle(angles, edge.Twin, b)
	for incident := bIncident; incident != nil; {
		angles = addIncidentAngle(angles, incident, b)
		next := NextIncidentEdge(incident)
		if next == nil || next == bIncident {
			break
		}
		incident = next
	}
	rewireIncidentAngles(angles, b)

	edge.Face = edge.Next.Face

	newFace := &Face{}
	d.Faces = append(d.Faces, newFace)
	he := edge.Twin
	for {
		he.Face = newFace
		he = he.Next
		if he == nil || he == edge.Twin {
			break
		}
	}
}

// halfEdgesShareVertex reports whether a and b touch at either
// endpoint, used to skip spurious intersection tests between edges
// that already meet at a shared vertex.
func halfEdgesShareVertex(a, b *HalfEdge) bool {
	const eps = 1e-9
	eq := func(x1, y1, x2, y2 float64) bool {
		return math.Abs(x1-x2) <= eps && math.Abs(y1-y2) <= eps
	}
	aFromX, aFromY := a.Origin.X, a.Origin.Y
	aToX, aToY := a.Twin.Origin.X, a.Twin.Origin.Y
	bFromX, bFromY := b.Origin.X, b.Origin.Y
	bToX, bToY := b.Twin.Origin.X, b.Twin.Origin.Y
	return eq(aFromX, aFromY, bFromX, bFromY) ||
		eq(aFromX, aFromY, bToX, bToY) ||
		eq(aToX, aToY, bFromX, bFromY) ||
		eq(aToX, aToY, bToX, bToY)
}

// computeIntersectionPoint finds the proper interior intersection of a
// and b (both treated as closed segments origin->twin.origin),
// rejecting parallel segments and intersections at or past either
// segment's endpoints, mirroring compute_intersection_point's
// eps-bounded parametric test.
func computeIntersectionPoint(a, b *HalfEdge) (x, y float64, ok bool) {
	a1x, a1y := a.Origin.X, a.Origin.Y
	a2x, a2y := a.Twin.Origin.X, a.Twin.Origin.Y
	b1x, b1y := b.Origin.X, b.Origin.Y
	b2x, b2y := b.Twin.Origin.X, b.Twin.Origin.Y

	denom := (b2y-b1y)*(a2x-a1x) - (b2x-b1x)*(a2y-a1y)
	if math.Abs(denom) < 1e-9 {
		return 0, 0, false
	}

	num1 := (b2x-b1x)*(a1y-b1y) - (b2y-b1y)*(a1x-b1x)
	ua := num1 / denom
	num2 := (a2x-a1x)*(a1y-b1y) - (a2y-a1y)*(a1x-b1x)
	ub := num2 / denom

	const eps = 1e-9
	if ua <= eps || ua >= 1.0-eps || ub <= eps || ub >= 1.0-eps {
		return 0, 0, false
	}

	x = a1x + ua*(a2x-a1x)
	y = a1y + ua*(a2y-a1y)
	return x, y, true
}

// Overlay sweeps the event queue top-to-bottom, maintaining the
// left-to-right active-edge status structure and splitting any two
// consecutive active edges that properly cross, mirroring dcel_overlay.
// After Overlay, no two non-twin half-edges cross: every crossing has
// become a vertex with the four surrounding edges rewired in angular
// order.
func Overlay(d *Dcel) {
	var active []activeEdge

	// Index-based: IntersectEdges calls d.AddVertex, which inserts new
	// events into d.events in sorted position at-or-after the current
	// sweep line, so re-reading len(d.events) each iteration picks them
	// up exactly as dcel_overlay's event->next traversal does.
	for i := 0; i < len(d.events); i++ {
		event := d.events[i]
		incidentEdge := event.Incident
		start := incidentEdge
		for incidentEdge != nil {
			removed := false
			if idx := findActiveEdge(active, incidentEdge.Twin); idx >= 0 {
				var prevEdge, nextEdge *activeEdge
				if idx > 0 {
					prevEdge = &active[idx-1]
				}
				if idx < len(active)-1 {
					nextEdge = &active[idx+1]
				}

				if prevEdge != nil && nextEdge != nil && !halfEdgesShareVertex(prevEdge.edge, nextEdge.edge) {
					if ix, iy, ok := computeIntersectionPoint(prevEdge.edge, nextEdge.edge); ok {
						IntersectEdges(d, prevEdge.edge, nextEdge.edge, ix, iy)
					}
				}

				active = removeActiveEdgeAt(active, idx)
				removed = true
			}

			if !removed {
				var idx int
				active, idx = insertActiveEdgeSorted(active, activeEdge{edge: incidentEdge}, event.Y)
				edge := active[idx].edge

				var prevEdge, nextEdge *activeEdge
				if idx > 0 {
					prevEdge = &active[idx-1]
				}
				if idx < len(active)-1 {
					nextEdge = &active[idx+1]
				}

				if prevEdge != nil && !halfEdgesShareVertex(edge, prevEdge.edge) {
					if ix, iy, ok := computeIntersectionPoint(prevEdge.edge, edge); ok {
						IntersectEdges(d, edge, prevEdge.edge, ix, iy)
					}
				}
				if nextEdge != nil && !halfEdgesShareVertex(edge, nextEdge.edge) {
					if ix, iy, ok := computeIntersectionPoint(nextEdge.edge, edge); ok {
						IntersectEdges(d, edge, nextEdge.edge, ix, iy)
					}
				}
			}

			next := NextIncidentEdge(incidentEdge)
			if next == nil || next == start {
				break
			}
			incidentEdge = next
		}
	}
}
