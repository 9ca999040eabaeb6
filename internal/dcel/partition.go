package dcel

import "math"

// assignVertexTypes classifies each vertex as split, merge, or neither
// by testing whether all incident edges lead above or below it and,
// when they don't, whether the largest angular gap between consecutive
// incident edges opens into the outer face — a vertex whose largest gap
// faces the outer face is a polygon corner, not a true split/merge
// point, mirroring assign_vertex_types.
func assignVertexTypes(d *Dcel) {
	for _, vertex := range d.Vertices {
		vertex.Merge = true
		vertex.Split = true

		var maxGapEdge *HalfEdge
		maxGap := 0.0
		prevAngle := 0.0
		firstAngle := 0.0

		incidentEdge := vertex.Incident
		start := incidentEdge
		first := true
		for incidentEdge != nil {
			angle := math.Atan2(incidentEdge.Twin.Origin.Y-vertex.Y, incidentEdge.Twin.Origin.X-vertex.X)

			if !first {
				gap := angle - prevAngle
				if gap < 0 {
					gap += 2 * math.Pi
				}
				if gap > maxGap {
					maxGapEdge = incidentEdge
					maxGap = gap
				}
			} else {
				firstAngle = angle
				first = false
			}
			prevAngle = angle

			if incidentEdge.Twin.Origin.Y < vertex.Y {
				vertex.Split = false
			} else {
				vertex.Merge = false
			}

			next := NextIncidentEdge(incidentEdge)
			if next == nil || next == start {
				break
			}
			incidentEdge = next
		}

		gap := firstAngle - prevAngle
		if gap < 0 {
			gap += 2 * math.Pi
		}
		if gap > maxGap {
			maxGapEdge = vertex.Incident
		}

		if maxGapEdge != nil && maxGapEdge.Face == d.OuterFace {
			vertex.Split = false
			vertex.Merge = false
		}
	}
}

// Partition adds diagonals that split every face into y-monotone
// pieces, mirroring dcel_partition: a second sweep over the event
// queue tracks, for each active edge, the vertex most recently swept
// past directly above it (its "helper"); merge vertices connect back to
// a merge-typed helper when an edge closes, and any vertex connects to
// the helper of the edge immediately to its left when that edge's
// helper is a merge vertex or the vertex itself is a split vertex.
// Requires Overlay and AssignFaces to have already run (Partition reads
// Face to recognize the outer face in assignVertexTypes).
func Partition(d *Dcel) {
	assignVertexTypes(d)

	var active []activeEdge

	for i := 0; i < len(d.events); i++ {
		event := d.events[i]
		var mergeHelper *Vertex

		incidentEdge := event.Incident
		start := incidentEdge
		for incidentEdge != nil {
			removed := false
			if idx := findActiveEdge(active, incidentEdge.Twin); idx >= 0 {
				if active[idx].helper != nil && active[idx].helper.Merge {
					mergeHelper = active[idx].helper
				}
				active = removeActiveEdgeAt(active, idx)
				removed = true
			}
			if !removed {
				active, _ = insertActiveEdgeSorted(active, activeEdge{edge: incidentEdge, helper: event}, event.Y)
			}

			next := NextIncidentEdge(incidentEdge)
			if next == nil || next == start {
				break
			}
			incidentEdge = next
		}

		if mergeHelper != nil {
			ConnectVertices(d, event, mergeHelper)
		}

		projectX := -1.0
		var projectEdge *activeEdge
		for idx := range active {
			ae := &active[idx]
			intersectX := edgeIntersectX(ae.edge, event.Y)
			if ae.edge.Origin != event && intersectX > projectX && intersectX < event.X {
				projectX = intersectX
				projectEdge = ae
			}
		}

		if projectEdge != nil {
			if projectEdge.helper.Merge || event.Split {
				ConnectVertices(d, event, projectEdge.helper)
			}
			projectEdge.helper = event
		}
	}
}
