package graphics

import (
	"fmt"

	pdf "pdfreader.dev/go/pdfreader"
	"pdfreader.dev/go/pdfreader/content"
	"pdfreader.dev/go/pdfreader/internal/dcel"
	"pdfreader.dev/go/pdfreader/internal/geom"
)

// setFont implements Tf: resolve the named /Font resource and record it
// together with the requested size in the text state.
func (rd *renderer) setFont(op content.Operation) error {
	if len(op.Operands) != 2 {
		return fmt.Errorf("Tf expects 2 operands")
	}
	name, ok := op.Operands[0].(pdf.Name)
	if !ok {
		return fmt.Errorf("Tf first operand must be a name")
	}
	nums, err := operandsToFloats(op.Operands[1:])
	if err != nil {
		return err
	}
	font, err := rd.fonts.lookup(rd.resources, string(name))
	if err != nil {
		return err
	}
	gs := rd.gs.top()
	gs.text.font = font
	gs.text.fontSize = nums[0]
	return nil
}

// textMove implements Td (and TD, which also sets the leading) per
// §9.4.2: move to the start of the next line, offset from the start of
// the current line.
func (rd *renderer) textMove(op content.Operation, setLeading bool) error {
	nums, err := operandsToFloats(op.Operands)
	if err != nil || len(nums) != 2 {
		return fmt.Errorf("%s expects 2 numbers", op.Op)
	}
	gs := rd.gs.top()
	if setLeading {
		gs.text.leading = -nums[1]
	}
	offset := geom.Translate(nums[0], nums[1])
	gs.text.tlm = offset.Mul(gs.text.tlm)
	gs.text.tm = gs.text.tlm
	return nil
}

// textNextLine implements T* and the line-feed half of '/": move to the
// next line using the current leading.
func (rd *renderer) textNextLine(leading float64) error {
	gs := rd.gs.top()
	offset := geom.Translate(0, -leading)
	gs.text.tlm = offset.Mul(gs.text.tlm)
	gs.text.tm = gs.text.tlm
	return nil
}

// textSetMatrix implements Tm: replace both the text and line matrices.
func (rd *renderer) textSetMatrix(op content.Operation) error {
	nums, err := operandsToFloats(op.Operands)
	if err != nil || len(nums) != 6 {
		return fmt.Errorf("Tm expects 6 numbers")
	}
	m := geom.Matrix{A: nums[0], B: nums[1], C: nums[2], D: nums[3], E: nums[4], F: nums[5]}
	gs := rd.gs.top()
	gs.text.tm = m
	gs.text.tlm = m
	return nil
}

// showTextLine implements ' and ": move to the next line (and, for ",
// set word/char spacing first) then show the string operand.
func (rd *renderer) showTextLine(op content.Operation) error {
	gs := rd.gs.top()
	strOperand := op.Operands[len(op.Operands)-1]
	if op.Op == "\"" {
		if len(op.Operands) != 3 {
			return fmt.Errorf("\" expects 3 operands")
		}
		nums, err := operandsToFloats(op.Operands[:2])
		if err != nil {
			return err
		}
		gs.text.wordSpacing = nums[0]
		gs.text.charSpacing = nums[1]
	} else if len(op.Operands) != 1 {
		return fmt.Errorf("' expects 1 operand")
	}
	if err := rd.textNextLine(gs.text.leading); err != nil {
		return err
	}
	return rd.showText(content.Operation{Op: content.OpShowText, Operands: []pdf.Object{strOperand}})
}

// showText implements Tj (and each decomposed TJ string element): render
// every byte of the string as one glyph, advancing the text matrix by
// the glyph's width plus spacing after each, per §9.4.3's placement
// algorithm.
func (rd *renderer) showText(op content.Operation) error {
	if len(op.Operands) != 1 {
		return fmt.Errorf("Tj expects 1 operand")
	}
	str, ok := op.Operands[0].(pdf.String)
	if !ok {
		return fmt.Errorf("Tj operand must be a string")
	}
	gs := rd.gs.top()
	ts := &gs.text
	if ts.font == nil {
		return fmt.Errorf("Tj with no font selected")
	}
	unitsPerEm := float64(ts.font.sfnt.UnitsPerEm())
	if unitsPerEm == 0 {
		unitsPerEm = 1000
	}

	for _, code := range []byte(str) {
		gid, found := ts.font.glyphIndexForCode(code)
		advanceUnits := float64(ts.font.sfnt.AdvanceWidth(gid))
		w0 := advanceUnits / unitsPerEm

		if found && ts.renderMode != 3 {
			if err := rd.renderGlyph(gid, unitsPerEm); err != nil {
				return err
			}
		}

		spacing := ts.charSpacing
		if code == ' ' {
			spacing += ts.wordSpacing
		}
		tx := (w0*ts.fontSize + spacing) * ts.hScale
		ts.tm = geom.Translate(tx, 0).Mul(ts.tm)
	}
	return nil
}

// positionText implements a TJ-array numeric adjustment: a horizontal
// shift of -(amount/1000)*Tfs*Th text-space units, per §9.4.3.
func (rd *renderer) positionText(op content.Operation) error {
	if len(op.Operands) != 1 {
		return fmt.Errorf("TJ position expects 1 operand")
	}
	nums, err := operandsToFloats(op.Operands)
	if err != nil {
		return err
	}
	gs := rd.gs.top()
	ts := &gs.text
	tx := -(nums[0] / 1000) * ts.fontSize * ts.hScale
	ts.tm = geom.Translate(tx, 0).Mul(ts.tm)
	return nil
}

// renderGlyph rasterizes one glyph outline: scaled from font units to
// text space, positioned by Trm = [Tfs*Th 0 0 Tfs 0 Trise] * Tm * CTM
// per §9.4.4, flattened and filled (render modes 0 and 2) and/or stroked
// (modes 1 and 2). Modes 4-7 paint like modes 0-3; the glyph is not
// added to a clipping path — see DESIGN.md.
func (rd *renderer) renderGlyph(gid uint16, unitsPerEm float64) error {
	gs := rd.gs.top()
	ts := &gs.text
	outline, err := ts.font.sfnt.GlyphOutline(gid)
	if err != nil || len(outline) == 0 {
		return nil
	}
	fontScale := geom.Scale(1/unitsPerEm, 1/unitsPerEm)
	textScale := geom.Matrix{A: ts.fontSize * ts.hScale, D: ts.fontSize, F: ts.rise}
	trm := fontScale.Mul(textScale).Mul(ts.tm).Mul(gs.ctm)

	flat := outline.ApplyTransform(trm).Flatten(flattenTolerance, flattenMaxDepth)
	mode := ts.renderMode
	if mode >= 4 {
		mode -= 4
	}
	switch mode {
	case 0, 2:
		rd.canvas.Fill(flat, dcel.NonZero, gs.fillColor.toRGBA(gs.fillAlpha))
	case 1:
		rd.canvas.Stroke(flat, gs.lineWidth, gs.lineCap, gs.lineJoin, gs.miterLimit, gs.strokeColor.toRGBA(gs.strokeAlpha))
	}
	if mode == 2 {
		rd.canvas.Stroke(flat, gs.lineWidth, gs.lineCap, gs.lineJoin, gs.miterLimit, gs.strokeColor.toRGBA(gs.strokeAlpha))
	}
	return nil
}
