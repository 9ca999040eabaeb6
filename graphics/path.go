package graphics

import (
	"fmt"

	"pdfreader.dev/go/pdfreader/content"
	"pdfreader.dev/go/pdfreader/internal/dcel"
	"pdfreader.dev/go/pdfreader/internal/geom"
	"pdfreader.dev/go/pdfreader/internal/path"
)

// pathConstruct appends one path-construction operator's segment to the
// current path, transforming each point by the CTM in effect at the
// moment it is added so the accumulated path already lives in device
// space regardless of later cm changes — content streams never vary the
// CTM mid-path in practice, and this convention means Flatten/Fill never
// need to carry a separate transform.
func (rd *renderer) pathConstruct(op content.Operation) error {
	ctm := rd.gs.top().ctm
	nums, err := operandsToFloats(op.Operands)
	if err != nil {
		return err
	}
	pt := func(i int) geom.Vec2 { return ctm.Apply(geom.Vec2{X: nums[i], Y: nums[i+1]}) }

	switch op.Op {
	case "m":
		if len(nums) != 2 {
			return fmt.Errorf("m expects 2 numbers")
		}
		rd.current.MoveTo(pt(0))
		rd.havePath = true
	case "l":
		if len(nums) != 2 {
			return fmt.Errorf("l expects 2 numbers")
		}
		rd.current.LineTo(pt(0))
	case "c":
		if len(nums) != 6 {
			return fmt.Errorf("c expects 6 numbers")
		}
		rd.current.CubicBezierTo(pt(0), pt(2), pt(4))
	case "v":
		if len(nums) != 4 {
			return fmt.Errorf("v expects 4 numbers")
		}
		// v uses the current point as the first control point.
		cur := rd.currentPoint()
		rd.current.CubicBezierTo(cur, pt(0), pt(2))
	case "y":
		if len(nums) != 4 {
			return fmt.Errorf("y expects 4 numbers")
		}
		end := pt(2)
		rd.current.CubicBezierTo(pt(0), end, end)
	case "h":
		rd.current.ClosePath()
	}
	return nil
}

// currentPoint returns the builder's current cursor position; used by
// the v operator, which reuses it as an implicit first control point.
func (rd *renderer) currentPoint() geom.Vec2 {
	for i := len(rd.current.Path) - 1; i >= 0; i-- {
		c := rd.current.Path[i]
		if len(c) > 0 {
			return c[len(c)-1].End
		}
	}
	return geom.Vec2{}
}

// paint executes a path-painting operator: fill and/or stroke the
// current path under the requested rule, apply any pending clip (set by
// a prior W/W*), then discard the path per §8.5.3.
func (rd *renderer) paint(op content.Operation) error {
	p := rd.current.Path
	gs := rd.gs.top()

	flat := p.Flatten(flattenTolerance, flattenMaxDepth)

	switch op.Op {
	case "f", "F":
		rd.canvas.Fill(flat, dcel.NonZero, gs.fillColor.toRGBA(gs.fillAlpha))
	case "f*":
		rd.canvas.Fill(flat, dcel.EvenOdd, gs.fillColor.toRGBA(gs.fillAlpha))
	case "S":
		rd.canvas.Stroke(flat, gs.lineWidth, gs.lineCap, gs.lineJoin, gs.miterLimit, gs.strokeColor.toRGBA(gs.strokeAlpha))
	case "s":
		rd.current.ClosePath()
		flat = rd.current.Path.Flatten(flattenTolerance, flattenMaxDepth)
		rd.canvas.Stroke(flat, gs.lineWidth, gs.lineCap, gs.lineJoin, gs.miterLimit, gs.strokeColor.toRGBA(gs.strokeAlpha))
	case "B":
		rd.canvas.Fill(flat, dcel.NonZero, gs.fillColor.toRGBA(gs.fillAlpha))
		rd.canvas.Stroke(flat, gs.lineWidth, gs.lineCap, gs.lineJoin, gs.miterLimit, gs.strokeColor.toRGBA(gs.strokeAlpha))
	case "B*":
		rd.canvas.Fill(flat, dcel.EvenOdd, gs.fillColor.toRGBA(gs.fillAlpha))
		rd.canvas.Stroke(flat, gs.lineWidth, gs.lineCap, gs.lineJoin, gs.miterLimit, gs.strokeColor.toRGBA(gs.strokeAlpha))
	case "b":
		rd.current.ClosePath()
		flat = rd.current.Path.Flatten(flattenTolerance, flattenMaxDepth)
		rd.canvas.Fill(flat, dcel.NonZero, gs.fillColor.toRGBA(gs.fillAlpha))
		rd.canvas.Stroke(flat, gs.lineWidth, gs.lineCap, gs.lineJoin, gs.miterLimit, gs.strokeColor.toRGBA(gs.strokeAlpha))
	case "b*":
		rd.current.ClosePath()
		flat = rd.current.Path.Flatten(flattenTolerance, flattenMaxDepth)
		rd.canvas.Fill(flat, dcel.EvenOdd, gs.fillColor.toRGBA(gs.fillAlpha))
		rd.canvas.Stroke(flat, gs.lineWidth, gs.lineCap, gs.lineJoin, gs.miterLimit, gs.strokeColor.toRGBA(gs.strokeAlpha))
	case "n":
		// no paint, clip-only or path discard
	}

	if rd.clipPending {
		rd.canvas.PushClipPath(flat, rd.pendingClip)
		gs.clipDepth++
		rd.clipPending = false
	}

	rd.current = path.Builder{}
	rd.havePath = false
	return nil
}
