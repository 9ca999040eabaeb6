package graphics

import (
	"fmt"
	"io"

	pdf "pdfreader.dev/go/pdfreader"
	"pdfreader.dev/go/pdfreader/content"
	"pdfreader.dev/go/pdfreader/internal/dcel"
	"pdfreader.dev/go/pdfreader/internal/geom"
	"pdfreader.dev/go/pdfreader/internal/path"
	"pdfreader.dev/go/pdfreader/internal/raster"
)

// Options controls how a Page is rasterized.
type Options struct {
	// Scale is the number of device pixels per PDF user-space unit (72
	// units = 1 inch), e.g. 72.0/72 for 1:1, or 150.0/72 for 150 dpi.
	Scale float64
	// Background fills the canvas before any painting operator runs.
	Background raster.RGBA
}

// flattenTolerance and flattenMaxDepth are the Bezier flattening
// parameters every fill/stroke uses, in device pixels (so curves stay
// smooth regardless of Options.Scale).
const (
	flattenTolerance = 0.3
	flattenMaxDepth  = 16
)

// renderer holds everything one page's content-stream execution shares:
// the canvas, the resolved resources, the graphics-state stack, the
// current path under construction (already in device space), and the
// deferred clip-intent flag set by W/W*.
type renderer struct {
	r         pdf.Getter
	canvas    *raster.Canvas
	resources *pdf.Dict
	fonts     *fontCache
	gs        *gstack

	current    path.Builder
	havePath   bool
	pendingClip dcel.FillRule
	clipPending bool
}

// RenderPage executes page's content stream(s) and returns the
// resulting raster image.
func RenderPage(r pdf.Getter, page *pdf.Page, opts Options) (*raster.Canvas, error) {
	if page.MediaBox == nil {
		return nil, fmt.Errorf("graphics: page has no MediaBox")
	}
	scale := opts.Scale
	if scale <= 0 {
		scale = 1
	}
	widthUser := page.MediaBox.URx - page.MediaBox.LLx
	heightUser := page.MediaBox.URy - page.MediaBox.LLy
	swapDims := page.Rotate == 90 || page.Rotate == 270

	devW := int(widthUser*scale + 0.5)
	devH := int(heightUser*scale + 0.5)
	if swapDims {
		devW, devH = devH, devW
	}
	if devW < 1 {
		devW = 1
	}
	if devH < 1 {
		devH = 1
	}

	canvas := raster.NewCanvas(devW, devH, opts.Background, scale)

	base := newGState()
	base.ctm = pageToDeviceMatrix(page, scale)

	data, err := pageContentBytes(r, page)
	if err != nil {
		return nil, err
	}
	ops, err := content.Parse(data)
	if err != nil {
		return nil, err
	}

	rd := &renderer{
		r:         r,
		canvas:    canvas,
		resources: page.Resources,
		fonts:     newFontCache(r),
		gs:        newGStack(base),
	}
	if err := rd.run(ops); err != nil {
		return nil, err
	}
	return canvas, nil
}

// pageToDeviceMatrix maps PDF user space (origin bottom-left, y up) to
// device pixel space (origin top-left, y down, scaled by scale pixels
// per unit), honoring the page's /Rotate as a clockwise rotation of the
// displayed image per §14.11.2.
func pageToDeviceMatrix(page *pdf.Page, scale float64) geom.Matrix {
	box := page.MediaBox
	toOrigin := geom.Translate(-box.LLx, -box.LLy)
	var rot geom.Matrix
	w := box.URx - box.LLx
	h := box.URy - box.LLy
	switch page.Rotate {
	case 90:
		rot = geom.Matrix{A: 0, B: -1, C: 1, D: 0, E: 0, F: w}
	case 180:
		rot = geom.Matrix{A: -1, B: 0, C: 0, D: -1, E: w, F: h}
	case 270:
		rot = geom.Matrix{A: 0, B: 1, C: -1, D: 0, E: h, F: 0}
	default:
		rot = geom.Identity
	}
	flipAndScale := geom.Matrix{A: scale, B: 0, C: 0, D: -scale, E: 0, F: 0}
	// Height of the rotated page, used to flip y into device space.
	rotatedH := h
	if page.Rotate == 90 || page.Rotate == 270 {
		rotatedH = w
	}
	flipAndScale.F = rotatedH * scale
	return toOrigin.Mul(rot).Mul(flipAndScale)
}

// pageContentBytes reads and concatenates page's /Contents stream(s),
// per §7.8.2's "the effect shall be as if all of the streams in the
// array were concatenated" rule (with an inserted space so tokens
// spanning a stream boundary never fuse).
func pageContentBytes(r pdf.Getter, page *pdf.Page) ([]byte, error) {
	obj, ok := page.Dict.Get("Contents")
	if !ok {
		return nil, nil
	}
	resolved, err := pdf.Resolve(r, obj)
	if err != nil {
		return nil, err
	}
	switch v := resolved.(type) {
	case *pdf.Stream:
		return readStream(r, v)
	case pdf.Array:
		var out []byte
		for i, el := range v {
			stm, err := pdf.GetStream(r, el)
			if err != nil {
				return nil, err
			}
			if stm == nil {
				continue
			}
			b, err := readStream(r, stm)
			if err != nil {
				return nil, err
			}
			out = append(out, b...)
			if i != len(v)-1 {
				out = append(out, ' ')
			}
		}
		return out, nil
	default:
		return nil, fmt.Errorf("graphics: /Contents has unexpected type %T", resolved)
	}
}

func readStream(r pdf.Getter, stm *pdf.Stream) ([]byte, error) {
	rc, err := pdf.DecodeStream(r, stm, 0)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

// run dispatches every operator in ops in order, mutating rd's state.
func (rd *renderer) run(ops []content.Operation) error {
	for _, op := range ops {
		if err := rd.exec(op); err != nil {
			return fmt.Errorf("graphics: operator %q: %w", op.Op, err)
		}
	}
	return nil
}

func operandsToFloats(ops []pdf.Object) ([]float64, error) {
	out := make([]float64, len(ops))
	for i, o := range ops {
		switch v := o.(type) {
		case pdf.Integer:
			out[i] = float64(v)
		case pdf.Real:
			out[i] = float64(v)
		default:
			return nil, fmt.Errorf("expected a number, got %T", o)
		}
	}
	return out, nil
}
