package dcel

import (
	"testing"

	"pdfreader.dev/go/pdfreader/internal/geom"
	"pdfreader.dev/go/pdfreader/internal/path"
)

func square() path.Path {
	var b path.Builder
	b.MoveTo(geom.Vec2{X: 0, Y: 0})
	b.LineTo(geom.Vec2{X: 10, Y: 0})
	b.LineTo(geom.Vec2{X: 10, Y: 10})
	b.LineTo(geom.Vec2{X: 0, Y: 10})
	b.ClosePath()
	return b.Path
}

func TestContainsInsideOutside(t *testing.T) {
	p := square()
	if !Contains(p, NonZero, 5, 5) {
		t.Error("center should be inside")
	}
	if Contains(p, NonZero, 20, 20) {
		t.Error("far point should be outside")
	}
}

func TestRasterizeMaskCoversInterior(t *testing.T) {
	p := square()
	mask, bounds := RasterizeMask(p, NonZero, 20, 20, 1.0)
	if bounds.Empty {
		t.Fatal("expected non-empty bounds")
	}
	idx := 5*20 + 5
	if mask[idx] == 0 {
		t.Error("expected interior pixel (5,5) covered")
	}
	idx = 19*20 + 19
	if mask[idx] != 0 {
		t.Error("expected far corner (19,19 pixel) uncovered")
	}
}

// bowtie is a self-overlapping contour (a figure-eight): the single
// contour 0,0 -> 10,10 -> 10,0 -> 0,10 -> close crosses itself once in
// the interior, at (5,5).
func bowtie() path.Path {
	var b path.Builder
	b.MoveTo(geom.Vec2{X: 0, Y: 0})
	b.LineTo(geom.Vec2{X: 10, Y: 10})
	b.LineTo(geom.Vec2{X: 10, Y: 0})
	b.LineTo(geom.Vec2{X: 0, Y: 10})
	b.ClosePath()
	return b.Path
}

// TestOverlayInvariants checks the spec's DCEL testable property:
// after overlay, every half-edge satisfies e.twin.twin==e,
// e.next.prev==e, and no two non-twin edges properly cross.
func TestOverlayInvariants(t *testing.T) {
	d, ok := BuildFromPath(bowtie())
	if !ok {
		t.Fatal("expected bowtie to produce edges")
	}
	if len(d.HalfEdges) != 8 {
		t.Fatalf("expected 4 segments x 2 half-edges before overlay, got %d", len(d.HalfEdges))
	}

	Overlay(d)

	if len(d.HalfEdges) <= 8 {
		t.Fatalf("expected overlay to split the crossing into more half-edges, got %d", len(d.HalfEdges))
	}

	for _, he := range d.HalfEdges {
		if he.Twin.Twin != he {
			t.Errorf("half-edge %+v: twin.twin != self", he)
		}
		if he.Next == nil {
			t.Errorf("half-edge %+v: next is nil after overlay", he)
		} else if he.Next.Prev != he {
			t.Errorf("half-edge %+v: next.prev != self", he)
		}
		if he.Prev == nil {
			t.Errorf("half-edge %+v: prev is nil after overlay", he)
		}
	}

	for i, a := range d.HalfEdges {
		for _, b := range d.HalfEdges[i+1:] {
			if a.Twin == b || b.Twin == a {
				continue
			}
			if _, _, ok := computeIntersectionPoint(a, b); ok {
				t.Errorf("non-twin half-edges still cross properly after overlay: %+v / %+v", a, b)
			}
		}
	}
}

// TestAssignFacesLabelsOuterFace checks that a simple square's outer
// boundary is labelled the shared outer face and its inner cycle gets
// a distinct face with nonzero shoelace area.
func TestAssignFacesLabelsOuterFace(t *testing.T) {
	d, ok := BuildFromPath(square())
	if !ok {
		t.Fatal("expected square to produce edges")
	}
	Overlay(d)
	AssignFaces(d)

	var outerCount, innerCount int
	var innerArea float64
	for _, he := range d.HalfEdges {
		if he.Face == nil {
			t.Fatalf("half-edge left unfaced: %+v", he)
		}
		if he.Face == d.OuterFace {
			outerCount++
		} else {
			innerCount++
			innerArea = signedCycleArea(he)
		}
	}
	if outerCount == 0 || innerCount == 0 {
		t.Fatalf("expected both outer and inner faces represented, got outer=%d inner=%d", outerCount, innerCount)
	}
	if innerArea == 0 {
		t.Error("expected nonzero signed area for the inner face cycle")
	}
}

// TestPartitionAddsDiagonals checks that Partition runs to completion
// on a non-convex (split/merge-vertex-bearing) polygon and increases
// the face count by adding monotone-decomposition diagonals.
func TestPartitionAddsDiagonals(t *testing.T) {
	var b path.Builder
	// A concave "arrow" polygon whose reflex vertex (5,5) has both
	// neighbours at larger y: a split vertex for the y-sweep.
	b.MoveTo(geom.Vec2{X: 0, Y: 0})
	b.LineTo(geom.Vec2{X: 10, Y: 0})
	b.LineTo(geom.Vec2{X: 10, Y: 10})
	b.LineTo(geom.Vec2{X: 5, Y: 5})
	b.LineTo(geom.Vec2{X: 0, Y: 10})
	b.ClosePath()
	p := b.Path

	d, ok := BuildFromPath(p)
	if !ok {
		t.Fatal("expected arrow polygon to produce edges")
	}
	Overlay(d)
	AssignFaces(d)
	facesBefore := len(d.Faces)

	Partition(d)

	if len(d.Faces) <= facesBefore {
		t.Errorf("expected Partition to add at least one diagonal face, had %d now have %d", facesBefore, len(d.Faces))
	}

	for _, he := range d.HalfEdges {
		if he.Twin.Twin != he {
			t.Errorf("half-edge %+v: twin.twin != self after partition", he)
		}
	}
}
