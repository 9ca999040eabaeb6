package graphics

import (
	"fmt"

	pdf "pdfreader.dev/go/pdfreader"
	"pdfreader.dev/go/pdfreader/content"
	"pdfreader.dev/go/pdfreader/internal/dcel"
	"pdfreader.dev/go/pdfreader/internal/geom"
	"pdfreader.dev/go/pdfreader/internal/path"
)

const nonZeroFillRule = dcel.NonZero

// formBBoxPath builds a closed rectangle path in device space for rect,
// transformed by m, used to clip a Form XObject to its /BBox.
func formBBoxPath(rect *pdf.Rectangle, m geom.Matrix) path.Path {
	var b path.Builder
	b.MoveTo(m.Apply(geom.Vec2{X: rect.LLx, Y: rect.LLy}))
	b.LineTo(m.Apply(geom.Vec2{X: rect.URx, Y: rect.LLy}))
	b.LineTo(m.Apply(geom.Vec2{X: rect.URx, Y: rect.URy}))
	b.LineTo(m.Apply(geom.Vec2{X: rect.LLx, Y: rect.URy}))
	b.ClosePath()
	return b.Path
}

// doXObject implements Do for Form XObjects: it executes the form's
// content stream with its own Resources (falling back to the caller's)
// and /Matrix composed onto the current CTM, clipped to /BBox, per
// §8.10.2. Image XObjects are not rendered — decoding every PDF image
// color space/filter combination (DCTDecode/JPXDecode, Indexed,
// SMask alpha) is a separate, large subsystem this budget does not
// cover; Do silently skips them rather than failing the whole page.
func (rd *renderer) doXObject(op content.Operation) error {
	if len(op.Operands) != 1 {
		return fmt.Errorf("Do expects 1 operand")
	}
	name, ok := op.Operands[0].(pdf.Name)
	if !ok {
		return fmt.Errorf("Do operand must be a name")
	}
	if rd.resources == nil {
		return fmt.Errorf("no /Resources for XObject %q", name)
	}
	xobjsObj, ok := rd.resources.Get("XObject")
	if !ok {
		return fmt.Errorf("no /XObject subdictionary")
	}
	xobjs, err := pdf.GetDict(rd.r, xobjsObj)
	if err != nil {
		return err
	}
	entryObj, ok := xobjs.Get(pdf.Name(name))
	if !ok {
		return fmt.Errorf("XObject %q not found", name)
	}
	stm, err := pdf.GetStream(rd.r, entryObj)
	if err != nil {
		return err
	}
	if stm == nil {
		return nil
	}
	subtype, _ := stm.Dict.Get("Subtype")
	subtypeName, _ := pdf.GetName(rd.r, subtype)
	if subtypeName != "Form" {
		return nil // Image XObject: skipped, see doc comment
	}
	return rd.runForm(stm)
}

// runForm executes a Form XObject's content stream in a fresh q/Q
// scope: CTM is /Matrix (default identity) composed onto the caller's
// CTM, /BBox becomes a clip rectangle, and /Resources (falling back to
// the caller's) scopes the nested resource lookups.
func (rd *renderer) runForm(stm *pdf.Stream) error {
	data, err := readStream(rd.r, stm)
	if err != nil {
		return err
	}
	ops, err := content.Parse(data)
	if err != nil {
		return err
	}

	m := geom.Identity
	if mObj, ok := stm.Dict.Get("Matrix"); ok {
		nums, err := pdf.GetFloatArray(rd.r, mObj)
		if err == nil && len(nums) == 6 {
			m = geom.Matrix{A: nums[0], B: nums[1], C: nums[2], D: nums[3], E: nums[4], F: nums[5]}
		}
	}

	savedResources := rd.resources
	if resObj, ok := stm.Dict.Get("Resources"); ok {
		if resDict, err := pdf.GetDict(rd.r, resObj); err == nil && resDict != nil {
			rd.resources = resDict
			rd.fonts = newFontCache(rd.r)
		}
	}

	rd.gs.push()
	gs := rd.gs.top()
	gs.ctm = m.Mul(gs.ctm)

	if bboxObj, ok := stm.Dict.Get("BBox"); ok {
		if rect, err := pdf.GetRectangle(rd.r, bboxObj); err == nil && rect != nil {
			clip := formBBoxPath(rect, gs.ctm)
			rd.canvas.PushClipPath(clip, nonZeroFillRule)
			gs.clipDepth++
		}
	}

	err = rd.run(ops)

	popped, popErr := rd.gs.pop()
	rd.canvas.PopClipPaths(popped)
	rd.resources = savedResources

	if err != nil {
		return err
	}
	return popErr
}
