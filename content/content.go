// seehuhn.de/go/pdf - a library for reading and writing PDF files
// Copyright (C) 2023  Jochen Voss <voss@seehuhn.de>
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

// Package content tokenizes a decoded page content stream into a flat
// list of operations: operand objects followed by a one- or two-byte
// operator keyword, repeated until the stream is exhausted. It is
// grounded on the teacher's content/scanner.go token-assembly loop
// (bracket/dict stack building Array and Dict operands), adapted from a
// streaming io.Reader scanner to pdf.Ctx since a content stream is
// always fully decoded into memory before parsing.
package content

import (
	"fmt"

	pdf "pdfreader.dev/go/pdfreader"
)

// Operator is a one- or two-byte content-stream operator keyword, or one
// of the synthetic kinds produced by lowering (see Parse).
type Operator string

// Synthetic operators produced by lowering re and TJ, per §4.8: "re x y w
// h" becomes m/l/l/l/h, and "TJ [...]" becomes alternating show/position
// operations.
const (
	OpShowText     Operator = "Tj" // also used for each decomposed TJ string element
	OpPositionText Operator = "TJ_pos"
)

// Operation is one tagged content-stream instruction with its typed
// operands, in source order.
type Operation struct {
	Op       Operator
	Operands []pdf.Object
}

// twoByteOps lists operators whose second byte must match exactly (a
// '*' variant of a one-byte op), per the operator trie in §4.8.
var twoByteOps = map[string]bool{
	"f*": true, "B*": true, "b*": true, "W*": true, "T*": true,
}

// knownOps is the ~70-entry operator set from §4.8. Anything outside
// this set is a syntax error: an unrecognized regular-byte run where an
// operator was expected.
var knownOps = map[string]bool{
	"w": true, "J": true, "j": true, "M": true, "d": true, "ri": true, "i": true, "gs": true,
	"q": true, "Q": true, "cm": true,
	"m": true, "l": true, "c": true, "v": true, "y": true, "h": true, "re": true,
	"S": true, "s": true, "f": true, "F": true, "f*": true, "B": true, "B*": true, "b": true, "b*": true, "n": true,
	"W": true, "W*": true,
	"BT": true, "ET": true, "Tc": true, "Tw": true, "Tz": true, "TL": true, "Tf": true, "Tr": true,
	"Ts": true, "Td": true, "TD": true, "Tm": true, "T*": true, "Tj": true, "TJ": true, "'": true, "\"": true,
	"d0": true, "d1": true,
	"CS": true, "cs": true, "SC": true, "SCN": true, "sc": true, "scn": true,
	"G": true, "g": true, "RG": true, "rg": true, "K": true, "k": true,
	"sh": true, "Do": true,
	"BI": true, "ID": true, "EI": true,
	"MP": true, "DP": true, "BMC": true, "BDC": true, "EMC": true,
	"BX": true, "EX": true,
}

// Parse tokenizes a full content stream into a list of Operations,
// lowering `re` to m/l/l/l/h and `TJ` to alternating show/position
// operations as it goes.
func Parse(data []byte) ([]Operation, error) {
	c := pdf.NewCtx(data)
	var ops []Operation
	var operands []pdf.Object

	for {
		c.ConsumeWhiteSpace()
		if c.AtEOF() {
			break
		}

		if obj, ok := tryParseOperand(c); ok {
			operands = append(operands, obj)
			continue
		}

		if tryInlineImage(c) {
			ops = append(ops, Operation{Op: "BI"})
			operands = nil
			continue
		}

		tok := string(c.ConsumeRegular())
		if tok == "" {
			return nil, fmt.Errorf("content: unexpected byte at offset %d", c.Pos())
		}
		if !knownOps[tok] {
			return nil, fmt.Errorf("content: unknown operator %q", tok)
		}

		lowered, err := lower(Operator(tok), operands)
		if err != nil {
			return nil, err
		}
		ops = append(ops, lowered...)
		operands = nil
	}
	return ops, nil
}

// tryParseOperand attempts to parse one operand object at the cursor.
// Content-stream operands exclude indirect references and indirect
// objects; ParseObject's atomic rewind-on-failure means a failed attempt
// leaves the cursor untouched.
func tryParseOperand(c *pdf.Ctx) (pdf.Object, bool) {
	obj, err := pdf.ParseObject(c, false)
	if err != nil {
		return nil, false
	}
	return obj, true
}

// tryInlineImage recognizes the start of a BI...ID...EI inline image and
// consumes it wholesale (dict-like parameter pairs, then the raw image
// bytes up to a whitespace-delimited EI), since neither the parameter
// dict nor the pixel data should be tokenized as ordinary operands.
func tryInlineImage(c *pdf.Ctx) bool {
	save := c.Pos()
	if !c.TryExpect("BI") {
		return false
	}
	if b, err := c.PeekAt(0); err == nil && pdf.IsRegular(b) {
		// "BI" was actually a prefix of a longer regular-byte token.
		c.Seek(save)
		return false
	}
	for {
		c.ConsumeWhiteSpace()
		if c.TryExpect("ID") {
			break
		}
		if _, err := pdf.ParseObject(c, false); err != nil {
			c.Seek(save)
			return false
		}
	}
	// One whitespace byte separates ID from the raw data. EI is
	// whitespace-delimited on both sides, found by a forward scan since
	// Ctx.Backscan only searches backward.
	c.Shift(1)
	pos := c.Pos()
	for pos+2 <= c.Len() {
		if string(c.Slice(pos, pos+2)) == "EI" {
			before := pos > 0 && pdf.IsWhiteSpace(c.Slice(pos-1, pos)[0])
			afterOK := pos+2 >= c.Len() || !pdf.IsRegular(c.Slice(pos+2, pos+3)[0])
			if before && afterOK {
				c.Seek(pos + 2)
				return true
			}
		}
		pos++
	}
	c.Seek(save)
	return false
}

// lower expands `re` and `TJ` into their primitive equivalents and
// passes every other operator through unchanged, per §4.8.
func lower(op Operator, operands []pdf.Object) ([]Operation, error) {
	switch op {
	case "re":
		if len(operands) != 4 {
			return nil, fmt.Errorf("content: re expects 4 operands, got %d", len(operands))
		}
		x, y, w, h := operands[0], operands[1], operands[2], operands[3]
		xw, err := addNumbers(x, w)
		if err != nil {
			return nil, err
		}
		yh, err := addNumbers(y, h)
		if err != nil {
			return nil, err
		}
		return []Operation{
			{Op: "m", Operands: []pdf.Object{x, y}},
			{Op: "l", Operands: []pdf.Object{xw, y}},
			{Op: "l", Operands: []pdf.Object{xw, yh}},
			{Op: "l", Operands: []pdf.Object{x, yh}},
			{Op: "h"},
		}, nil
	case "TJ":
		if len(operands) != 1 {
			return nil, fmt.Errorf("content: TJ expects 1 operand, got %d", len(operands))
		}
		arr, ok := operands[0].(pdf.Array)
		if !ok {
			return nil, fmt.Errorf("content: TJ operand must be an array")
		}
		var out []Operation
		for _, el := range arr {
			switch v := el.(type) {
			case pdf.String:
				out = append(out, Operation{Op: OpShowText, Operands: []pdf.Object{v}})
			case pdf.Integer, pdf.Real:
				out = append(out, Operation{Op: OpPositionText, Operands: []pdf.Object{v}})
			default:
				return nil, fmt.Errorf("content: invalid TJ array element %T", el)
			}
		}
		return out, nil
	default:
		return []Operation{{Op: op, Operands: operands}}, nil
	}
}

// addNumbers adds two numeric operands, preserving Integer type when
// both inputs are integers (matching pdf_number_as_real's unification
// only when a real result is actually needed).
func addNumbers(a, b pdf.Object) (pdf.Object, error) {
	ai, aIsInt := a.(pdf.Integer)
	bi, bIsInt := b.(pdf.Integer)
	if aIsInt && bIsInt {
		return ai + bi, nil
	}
	af, err := numberAsReal(a)
	if err != nil {
		return nil, err
	}
	bf, err := numberAsReal(b)
	if err != nil {
		return nil, err
	}
	return pdf.Real(af + bf), nil
}

// numberAsReal unifies Integer/Real operands to float64, the content
// package's equivalent of pdf_number_as_real.
func numberAsReal(obj pdf.Object) (float64, error) {
	switch v := obj.(type) {
	case pdf.Integer:
		return float64(v), nil
	case pdf.Real:
		return float64(v), nil
	default:
		return 0, fmt.Errorf("content: expected a number, got %T", obj)
	}
}
