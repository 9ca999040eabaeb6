package graphics

import (
	"fmt"

	pdf "pdfreader.dev/go/pdfreader"
	"pdfreader.dev/go/pdfreader/content"
	"pdfreader.dev/go/pdfreader/internal/dcel"
	"pdfreader.dev/go/pdfreader/internal/geom"
	"pdfreader.dev/go/pdfreader/internal/raster"
)

// exec dispatches one operator against the renderer's state, per the
// operator table in §8.2/§9.2.
func (rd *renderer) exec(op content.Operation) error {
	switch op.Op {
	case "q":
		rd.gs.push()
		return nil
	case "Q":
		popped, err := rd.gs.pop()
		if err != nil {
			return err
		}
		rd.canvas.PopClipPaths(popped)
		return nil
	case "cm":
		nums, err := operandsToFloats(op.Operands)
		if err != nil || len(nums) != 6 {
			return fmt.Errorf("cm expects 6 numbers")
		}
		m := geom.Matrix{A: nums[0], B: nums[1], C: nums[2], D: nums[3], E: nums[4], F: nums[5]}
		gs := rd.gs.top()
		gs.ctm = m.Mul(gs.ctm)
		return nil
	case "w":
		return rd.setFloatField(op, func(gs *gstate, v float64) { gs.lineWidth = v })
	case "J":
		return rd.setIntField(op, func(gs *gstate, v int) { gs.lineCap = capFromInt(v) })
	case "j":
		return rd.setIntField(op, func(gs *gstate, v int) { gs.lineJoin = joinFromInt(v) })
	case "M":
		return rd.setFloatField(op, func(gs *gstate, v float64) { gs.miterLimit = v })
	case "gs":
		return rd.applyExtGState(op)
	case "ri", "i":
		return nil // rendering intent / flatness tolerance: no effect on this renderer

	case "m", "l", "c", "v", "y", "h":
		return rd.pathConstruct(op)

	case "S", "s", "f", "F", "f*", "B", "B*", "b", "b*", "n":
		return rd.paint(op)

	case "W":
		rd.clipPending, rd.pendingClip = true, dcel.NonZero
		return nil
	case "W*":
		rd.clipPending, rd.pendingClip = true, dcel.EvenOdd
		return nil

	case "g", "G", "rg", "RG", "k", "K", "cs", "CS", "sc", "SC", "scn", "SCN":
		return rd.setColor(op)

	case "BT":
		gs := rd.gs.top()
		gs.text.tm = geom.Identity
		gs.text.tlm = geom.Identity
		return nil
	case "ET":
		return nil
	case "Tc":
		return rd.setFloatField(op, func(gs *gstate, v float64) { gs.text.charSpacing = v })
	case "Tw":
		return rd.setFloatField(op, func(gs *gstate, v float64) { gs.text.wordSpacing = v })
	case "Tz":
		return rd.setFloatField(op, func(gs *gstate, v float64) { gs.text.hScale = v / 100 })
	case "TL":
		return rd.setFloatField(op, func(gs *gstate, v float64) { gs.text.leading = v })
	case "Ts":
		return rd.setFloatField(op, func(gs *gstate, v float64) { gs.text.rise = v })
	case "Tr":
		return rd.setIntField(op, func(gs *gstate, v int) { gs.text.renderMode = v })
	case "Tf":
		return rd.setFont(op)
	case "Td":
		return rd.textMove(op, false)
	case "TD":
		return rd.textMove(op, true)
	case "Tm":
		return rd.textSetMatrix(op)
	case "T*":
		gs := rd.gs.top()
		return rd.textNextLine(gs.text.leading)
	case content.OpShowText:
		return rd.showText(op)
	case content.OpPositionText:
		return rd.positionText(op)
	case "'", "\"":
		return rd.showTextLine(op)

	case "Do":
		return rd.doXObject(op)

	case "sh", "BI", "ID", "EI", "MP", "DP", "BMC", "BDC", "EMC", "BX", "EX", "d", "d0", "d1":
		return nil // shading patterns, inline images, marked content, dash pattern, glyph metrics: out of scope, safely skipped

	default:
		return nil
	}
}

func (rd *renderer) setFloatField(op content.Operation, set func(*gstate, float64)) error {
	nums, err := operandsToFloats(op.Operands)
	if err != nil || len(nums) != 1 {
		return fmt.Errorf("%s expects 1 number", op.Op)
	}
	set(rd.gs.top(), nums[0])
	return nil
}

func (rd *renderer) setIntField(op content.Operation, set func(*gstate, int)) error {
	nums, err := operandsToFloats(op.Operands)
	if err != nil || len(nums) != 1 {
		return fmt.Errorf("%s expects 1 number", op.Op)
	}
	set(rd.gs.top(), int(nums[0]))
	return nil
}

func capFromInt(v int) raster.LineCap {
	switch v {
	case 1:
		return raster.CapRound
	case 2:
		return raster.CapSquare
	default:
		return raster.CapButt
	}
}

func joinFromInt(v int) raster.LineJoin {
	switch v {
	case 1:
		return raster.JoinRound
	case 2:
		return raster.JoinBevel
	default:
		return raster.JoinMiter
	}
}

// applyExtGState looks up the named /ExtGState resource and applies the
// subset of parameters this renderer understands: /ca, /CA (alpha) and
// /LW (line width). Unknown keys are ignored rather than rejected, per
// §8.4.5's "a conforming reader shall ignore ... keys that it does not
// recognize" guidance for forward compatibility.
func (rd *renderer) applyExtGState(op content.Operation) error {
	if len(op.Operands) != 1 {
		return fmt.Errorf("gs expects 1 operand")
	}
	name, ok := op.Operands[0].(pdf.Name)
	if !ok {
		return fmt.Errorf("gs operand must be a name")
	}
	if rd.resources == nil {
		return fmt.Errorf("no /Resources for ExtGState %q", name)
	}
	egsObj, ok := rd.resources.Get("ExtGState")
	if !ok {
		return fmt.Errorf("no /ExtGState subdictionary")
	}
	egsDict, err := pdf.GetDict(rd.r, egsObj)
	if err != nil {
		return err
	}
	entryObj, ok := egsDict.Get(pdf.Name(name))
	if !ok {
		return fmt.Errorf("ExtGState %q not found", name)
	}
	entry, err := pdf.GetDict(rd.r, entryObj)
	if err != nil {
		return err
	}
	gs := rd.gs.top()
	if v, ok := entry.Get("ca"); ok {
		f, err := pdf.GetNumber(rd.r, v)
		if err == nil {
			gs.fillAlpha = f
		}
	}
	if v, ok := entry.Get("CA"); ok {
		f, err := pdf.GetNumber(rd.r, v)
		if err == nil {
			gs.strokeAlpha = f
		}
	}
	if v, ok := entry.Get("LW"); ok {
		f, err := pdf.GetNumber(rd.r, v)
		if err == nil {
			gs.lineWidth = f
		}
	}
	return nil
}
