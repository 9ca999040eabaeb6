// seehuhn.de/go/pdf - a library for reading and writing PDF files
// Copyright (C) 2021  Jochen Voss <voss@seehuhn.de>
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

package pdf

import (
	"fmt"
	"strconv"
)

// ParseObject parses one PDF object starting at the Ctx's current cursor,
// dispatching on the first non-whitespace byte. It is atomic: on any
// failure the cursor is restored to where it started, matching invariant
// #2. inIndirectObj enables the dict→stream upgrade and the
// digit-run-followed-by-generation-and-R/obj disambiguation; both only
// apply while scanning the body of "id gen obj ... endobj".
func ParseObject(c *Ctx, inIndirectObj bool) (Object, error) {
	start := c.Pos()
	obj, err := parseObject(c, inIndirectObj)
	if err != nil {
		c.Seek(start)
		return nil, err
	}
	return obj, nil
}

func parseObject(c *Ctx, inIndirectObj bool) (Object, error) {
	c.ConsumeWhiteSpace()
	b, err := c.Peek()
	if err != nil {
		return nil, err
	}

	switch {
	case b == 't' || b == 'f':
		return parseBoolOrKeyword(c)
	case b == 'n':
		return parseNullKeyword(c)
	case b == '/':
		return parseName(c)
	case b == '(':
		return parseLiteralString(c)
	case b == '<':
		c2, _ := c.PeekAt(1)
		if c2 == '<' {
			return parseDictOrStream(c, inIndirectObj)
		}
		return parseHexString(c)
	case b == '[':
		return parseArray(c)
	case b == '-' || b == '+' || b == '.' || (b >= '0' && b <= '9'):
		return parseNumberOrReference(c, inIndirectObj)
	default:
		return nil, NewError(ErrSyntax, c.Pos(), fmt.Errorf("unexpected byte %q", b))
	}
}

func expectTerminator(c *Ctx) error {
	if c.AtEOF() {
		return nil
	}
	b, _ := c.Peek()
	if IsWhiteSpace(b) || IsDelimiter(b) {
		return nil
	}
	return NewError(ErrSyntax, c.Pos(), fmt.Errorf("expected terminator, got %q", b))
}

func parseBoolOrKeyword(c *Ctx) (Object, error) {
	if c.TryExpect("true") {
		if err := expectTerminator(c); err != nil {
			return nil, err
		}
		return Boolean(true), nil
	}
	if c.TryExpect("false") {
		if err := expectTerminator(c); err != nil {
			return nil, err
		}
		return Boolean(false), nil
	}
	return nil, NewError(ErrSyntax, c.Pos(), fmt.Errorf("expected true/false"))
}

func parseNullKeyword(c *Ctx) (Object, error) {
	if c.TryExpect("null") {
		if err := expectTerminator(c); err != nil {
			return nil, err
		}
		return NullObject, nil
	}
	return nil, NewError(ErrSyntax, c.Pos(), fmt.Errorf("expected null"))
}

// parseName decodes a leading '/' name with #hh hex-escapes, per the
// round-trip law that printable-ASCII names survive encode/decode.
func parseName(c *Ctx) (Object, error) {
	if err := c.Expect("/"); err != nil {
		return nil, err
	}
	var out []byte
	for {
		b, err := c.Peek()
		if err != nil {
			break
		}
		if IsWhiteSpace(b) || IsDelimiter(b) {
			break
		}
		c.Shift(1)
		if b == '#' {
			h1, e1 := c.Peek()
			if e1 == nil && isHexDigit(h1) {
				h2, e2 := c.PeekAt(1)
				if e2 == nil && isHexDigit(h2) {
					c.Shift(2)
					out = append(out, hexByte(h1, h2))
					continue
				}
			}
			out = append(out, b)
			continue
		}
		out = append(out, b)
	}
	return Name(out), nil
}

func isHexDigit(b byte) bool {
	return (b >= '0' && b <= '9') || (b >= 'a' && b <= 'f') || (b >= 'A' && b <= 'F')
}

func hexVal(b byte) byte {
	switch {
	case b >= '0' && b <= '9':
		return b - '0'
	case b >= 'a' && b <= 'f':
		return b - 'a' + 10
	case b >= 'A' && b <= 'F':
		return b - 'A' + 10
	}
	return 0
}

func hexByte(hi, lo byte) byte { return hexVal(hi)<<4 | hexVal(lo) }

// parseLiteralString parses balanced-parens literal strings with the
// standard escapes.
func parseLiteralString(c *Ctx) (Object, error) {
	if err := c.Expect("("); err != nil {
		return nil, err
	}
	var out []byte
	depth := 1
	for {
		b, err := c.PeekAndAdvance()
		if err != nil {
			return nil, NewError(ErrSyntax, c.Pos(), errEOF)
		}
		switch b {
		case '(':
			depth++
			out = append(out, b)
		case ')':
			depth--
			if depth == 0 {
				return String(out), nil
			}
			out = append(out, b)
		case '\\':
			e, err := c.PeekAndAdvance()
			if err != nil {
				return nil, NewError(ErrSyntax, c.Pos(), errEOF)
			}
			switch e {
			case 'n':
				out = append(out, '\n')
			case 'r':
				out = append(out, '\r')
			case 't':
				out = append(out, '\t')
			case 'b':
				out = append(out, '\b')
			case 'f':
				out = append(out, '\f')
			case '(', ')', '\\':
				out = append(out, e)
			case '\r':
				if b2, err2 := c.Peek(); err2 == nil && b2 == '\n' {
					c.Shift(1)
				}
			case '\n':
				// line continuation, elided
			default:
				if e >= '0' && e <= '7' {
					val := int(e - '0')
					for i := 0; i < 2; i++ {
						d, err := c.Peek()
						if err != nil || d < '0' || d > '7' {
							break
						}
						val = val*8 + int(d-'0')
						c.Shift(1)
					}
					out = append(out, byte(val&0xFF))
				} else {
					out = append(out, e)
				}
			}
		default:
			out = append(out, b)
		}
	}
}

// parseHexString parses a whitespace-tolerant <hh hh ...> string, padding
// an odd trailing digit with a trailing 0.
func parseHexString(c *Ctx) (Object, error) {
	if err := c.Expect("<"); err != nil {
		return nil, err
	}
	var digits []byte
	for {
		b, err := c.PeekAndAdvance()
		if err != nil {
			return nil, NewError(ErrSyntax, c.Pos(), errEOF)
		}
		if b == '>' {
			break
		}
		if IsWhiteSpace(b) {
			continue
		}
		if !isHexDigit(b) {
			return nil, NewError(ErrSyntax, c.Pos(), fmt.Errorf("invalid hex digit %q", b))
		}
		digits = append(digits, b)
	}
	if len(digits)%2 == 1 {
		digits = append(digits, '0')
	}
	out := make([]byte, len(digits)/2)
	for i := 0; i < len(out); i++ {
		out[i] = hexByte(digits[2*i], digits[2*i+1])
	}
	return String(out), nil
}

func parseArray(c *Ctx) (Object, error) {
	if err := c.Expect("["); err != nil {
		return nil, err
	}
	var arr Array
	for {
		c.ConsumeWhiteSpace()
		if b, err := c.Peek(); err == nil && b == ']' {
			c.Shift(1)
			return arr, nil
		}
		obj, err := parseObject(c, false)
		if err != nil {
			return nil, err
		}
		arr = append(arr, obj)
	}
}

func parseDict(c *Ctx) (*Dict, error) {
	if err := c.Expect("<<"); err != nil {
		return nil, err
	}
	d := NewDict()
	for {
		c.ConsumeWhiteSpace()
		if c.TryExpect(">>") {
			return d, nil
		}
		keyObj, err := parseObject(c, false)
		if err != nil {
			return nil, err
		}
		key, ok := keyObj.(Name)
		if !ok {
			return nil, NewError(ErrSyntax, c.Pos(), fmt.Errorf("dict key must be a name"))
		}
		val, err := parseObject(c, false)
		if err != nil {
			return nil, err
		}
		// A repeated key is rejected: Set returns an ErrDuplicateKey error.
		if err := d.Set(key, val); err != nil {
			return nil, err
		}
	}
}

// parseDictOrStream parses a dict and, when inIndirectObj is set and the
// keyword "stream" follows, upgrades it to a Stream using the dict's
// Length entry for the raw payload size.
func parseDictOrStream(c *Ctx, inIndirectObj bool) (Object, error) {
	d, err := parseDict(c)
	if err != nil {
		return nil, err
	}
	if !inIndirectObj {
		return d, nil
	}
	save := c.Pos()
	c.ConsumeWhiteSpace()
	if !c.TryExpect("stream") {
		c.Seek(save)
		return d, nil
	}
	// Per §6: stream keyword is followed by CRLF or LF (not bare CR),
	// then exactly Length raw bytes.
	if b, _ := c.Peek(); b == '\r' {
		c.Shift(1)
		if b2, _ := c.Peek(); b2 != '\n' {
			return nil, NewError(ErrSyntax, c.Pos(), fmt.Errorf("expected LF after CR following stream keyword"))
		}
		c.Shift(1)
	} else if b == '\n' {
		c.Shift(1)
	} else {
		return nil, NewError(ErrSyntax, c.Pos(), fmt.Errorf("expected EOL after stream keyword"))
	}

	lengthObj, ok := d.Get("Length")
	if !ok {
		return nil, NewError(ErrMissingKey, c.Pos(), fmt.Errorf("stream dict missing /Length"))
	}
	length, ok := lengthObj.(Integer)
	if !ok {
		if _, isRef := lengthObj.(Reference); isRef {
			// /Length is an indirect reference: the raw scanner cannot
			// resolve it without the xref table, so the stream body is
			// located the slow way, by searching forward for the next
			// "endstream" keyword. The resolved /Length is never checked
			// against the body found this way; GetStreamReader in
			// container.go decodes the body as found.
			return parseStreamBySearch(c, d)
		}
		return nil, NewError(ErrType, c.Pos(), fmt.Errorf("/Length must be an integer or reference"))
	}
	if length < 0 {
		return nil, NewError(ErrSyntax, c.Pos(), fmt.Errorf("negative /Length"))
	}
	start := c.Pos()
	end := start + int64(length)
	if end > c.Len() {
		return nil, NewError(ErrSyntax, c.Pos(), fmt.Errorf("stream length exceeds buffer"))
	}
	raw := c.Slice(start, end)
	c.Seek(end)
	c.ConsumeWhiteSpace()
	if !c.TryExpect("endstream") {
		return nil, NewError(ErrSyntax, c.Pos(), fmt.Errorf("expected endstream"))
	}
	return &Stream{Dict: d, Raw: raw, DecodedLen: -1}, nil
}

// parseStreamBySearch locates a stream body by scanning forward for the
// next "endstream" keyword, used when /Length is an indirect reference
// the raw scanner cannot resolve yet.
func parseStreamBySearch(c *Ctx, d *Dict) (Object, error) {
	start := c.Pos()
	pos := start
	for pos <= c.Len()-len("endstream") {
		if string(c.Slice(pos, pos+9)) == "endstream" {
			end := pos
			// Trim a single trailing EOL that precedes "endstream".
			if end > start && c.Slice(end-1, end)[0] == '\n' {
				end--
				if end > start && c.Slice(end-1, end)[0] == '\r' {
					end--
				}
			} else if end > start && c.Slice(end-1, end)[0] == '\r' {
				end--
			}
			raw := c.Slice(start, end)
			c.Seek(pos + 9)
			return &Stream{Dict: d, Raw: raw, DecodedLen: -1}, nil
		}
		pos++
	}
	return nil, NewError(ErrSyntax, c.Pos(), fmt.Errorf("expected endstream"))
}

// parseNumberOrReference is the central disambiguation point named in
// §4.4/§7: on a leading digit, try an indirect reference lookahead
// (digit-run, whitespace, digit-run, "R"); on any lookahead failure,
// rewind to just past the first integer and return it as a plain number.
// This mirrors file.go's expectNumericOrReference almost exactly.
func parseNumberOrReference(c *Ctx, inIndirectObj bool) (Object, error) {
	numObj, isInt, err := parseNumber(c)
	if err != nil {
		return nil, err
	}
	if !isInt {
		return numObj, nil
	}
	firstEnd := c.Pos()
	save := firstEnd
	c.ConsumeWhiteSpace()
	genObj, genIsInt, err := parseNumber(c)
	if err != nil || !genIsInt {
		c.Seek(save)
		return numObj, nil
	}
	gen := int64(genObj.(Integer))
	if gen < 0 || gen > 65535 {
		c.Seek(save)
		return numObj, nil
	}
	c.ConsumeWhiteSpace()
	if c.TryExpect("R") {
		if err := expectTerminator(c); err != nil {
			c.Seek(save)
			return numObj, nil
		}
		id := int64(numObj.(Integer))
		if id < 0 {
			c.Seek(save)
			return numObj, nil
		}
		return Reference{ID: uint32(id), Gen: uint16(gen)}, nil
	}
	if inIndirectObj && c.TryExpect("obj") {
		inner, err := parseObject(c, true)
		if err != nil {
			return nil, err
		}
		c.ConsumeWhiteSpace()
		if !c.TryExpect("endobj") {
			return nil, NewError(ErrSyntax, c.Pos(), fmt.Errorf("expected endobj"))
		}
		id := int64(numObj.(Integer))
		return IndirectObject{Reference: Reference{ID: uint32(id), Gen: uint16(gen)}, Inner: inner}, nil
	}
	c.Seek(save)
	return numObj, nil
}

// parseNumber implements invariant #1: `[+-]?(\d+|\d+\.\d*|\.\d+)`, integer
// iff there is no decimal point, with magnitude checks per variant.
func parseNumber(c *Ctx) (Object, bool, error) {
	start := c.Pos()
	neg := false
	if b, err := c.Peek(); err == nil && (b == '+' || b == '-') {
		neg = b == '-'
		c.Shift(1)
	}
	intDigits := 0
	for {
		b, err := c.Peek()
		if err != nil || b < '0' || b > '9' {
			break
		}
		intDigits++
		c.Shift(1)
	}
	hasDot := false
	fracDigits := 0
	if b, err := c.Peek(); err == nil && b == '.' {
		hasDot = true
		c.Shift(1)
		for {
			b, err := c.Peek()
			if err != nil || b < '0' || b > '9' {
				break
			}
			fracDigits++
			c.Shift(1)
		}
	}
	if intDigits == 0 && fracDigits == 0 {
		c.Seek(start)
		return nil, false, NewError(ErrSyntax, start, fmt.Errorf("not a number"))
	}
	text := string(c.Slice(start, c.Pos()))
	if err := expectTerminator(c); err != nil {
		c.Seek(start)
		return nil, false, err
	}
	if !hasDot {
		v, err := strconv.ParseInt(text, 10, 64)
		if err != nil {
			c.Seek(start)
			return nil, false, NewError(ErrSyntax, start, err)
		}
		if err := checkIntMagnitude(v); err != nil {
			c.Seek(start)
			return nil, false, err
		}
		return Integer(v), true, nil
	}
	v, err := strconv.ParseFloat(text, 64)
	if err != nil {
		c.Seek(start)
		return nil, false, NewError(ErrSyntax, start, err)
	}
	if err := checkRealMagnitude(v); err != nil {
		c.Seek(start)
		return nil, false, err
	}
	_ = neg
	return Real(v), false, nil
}
