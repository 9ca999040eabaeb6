package dcel

// signedCycleArea computes the shoelace signed area of the polygon
// traced by startHalfEdge's Next cycle; sign indicates winding
// direction (positive for counterclockwise under a y-down coordinate
// system, matching the original's convention).
func signedCycleArea(startHalfEdge *HalfEdge) float64 {
	he := startHalfEdge
	prevPoint := startHalfEdge.Prev.Origin

	area := 0.0
	for {
		area += prevPoint.X*he.Origin.Y - prevPoint.Y*he.Origin.X
		prevPoint = he.Origin
		he = he.Next
		if he == nil || he == startHalfEdge {
			break
		}
	}
	return area / 2.0
}

// AssignFaces sweeps the event queue again (post-Overlay, when no two
// non-twin edges cross) labelling every half-edge with the face to its
// left: the leftmost active edge at any sweep position borders the
// outer face, and each interior active edge borders the face of its
// left neighbor; the mirror half-edge on the other side of each active
// edge gets a freshly allocated face. Mirrors dcel_assign_faces.
func AssignFaces(d *Dcel) {
	var active []activeEdge

	for i := 0; i < len(d.events); i++ {
		event := d.events[i]
		incidentEdge := event.Incident
		start := incidentEdge
		for incidentEdge != nil {
			removed := false
			if idx := findActiveEdge(active, incidentEdge.Twin); idx >= 0 {
				active = removeActiveEdgeAt(active, idx)
				removed = true
			}
			if !removed {
				active, _ = insertActiveEdgeSorted(active, activeEdge{edge: incidentEdge}, event.Y)
			}

			next := NextIncidentEdge(incidentEdge)
			if next == nil || next == start {
				break
			}
			incidentEdge = next
		}

		for idx, ae := range active {
			left := ae.edge
			right := ae.edge.Twin

			if left.Face == nil {
				if idx == 0 {
					left.Face = d.OuterFace
				} else {
					left.Face = active[idx-1].edge.Face
				}
				for he := left; ; {
					he.Face = left.Face
					he = he.Next
					if he == nil || he == left {
						break
					}
				}
			}

			if right.Face == nil {
				face := &Face{}
				d.Faces = append(d.Faces, face)
				right.Face = face
				for he := right; ; {
					he.Face = face
					he = he.Next
					if he == nil || he == right {
						break
					}
				}
			}
		}
	}
}
