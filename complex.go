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
	"time"
	"unicode/utf16"

	"golang.org/x/text/encoding/charmap"

	"pdfreader.dev/go/pdfreader/internal/geom"
)

// TextString is a String value already decoded to UTF-8, per the "text
// string" convention of PDF 32000-1:2008 §7.9.2: UTF-16BE with a
// leading BOM (0xFE 0xFF), UTF-8 with a leading BOM (0xEF 0xBB 0xBF),
// or PDFDocEncoding otherwise.
type TextString string

// GetTextString resolves obj to a String and decodes it as a text string.
// PDFDocEncoding is close enough to Latin-1/CP1252 for the printable
// range that this reader leans on golang.org/x/text/encoding/charmap's
// Windows1252 table rather than hand-rolling the handful of divergent
// code points (see DESIGN.md); real-world producers rarely exercise the
// PDFDocEncoding-only glyphs where the two tables disagree.
func GetTextString(r Getter, obj Object) (TextString, error) {
	s, err := GetString(r, obj)
	if err != nil {
		return "", err
	}
	return decodeTextString(s), nil
}

func decodeTextString(s String) TextString {
	if len(s) >= 2 && s[0] == 0xFE && s[1] == 0xFF {
		return TextString(decodeUTF16BE(s[2:]))
	}
	if len(s) >= 3 && s[0] == 0xEF && s[1] == 0xBB && s[2] == 0xBF {
		return TextString(s[3:])
	}
	out, err := charmap.Windows1252.NewDecoder().Bytes(s)
	if err != nil {
		return TextString(s)
	}
	return TextString(out)
}

func decodeUTF16BE(b []byte) string {
	if len(b)%2 == 1 {
		b = b[:len(b)-1]
	}
	units := make([]uint16, len(b)/2)
	for i := range units {
		units[i] = uint16(b[2*i])<<8 | uint16(b[2*i+1])
	}
	return string(utf16.Decode(units))
}

// Date is a parsed PDF date string (§7.9.4: "D:YYYYMMDDHHmmSSOHH'mm'").
type Date time.Time

// GetDate resolves obj to a String and parses it as a PDF date. Absent or
// malformed dates return the zero Date without error — callers treat a
// zero time.Time as "no date", matching the teacher's permissive
// GetDate.
func GetDate(r Getter, obj Object) (Date, error) {
	s, err := GetString(r, obj)
	if err != nil || s == nil {
		return Date{}, err
	}
	d, ok := parseDate(string(s))
	if !ok {
		return Date{}, nil
	}
	return d, nil
}

func parseDate(s string) (Date, bool) {
	if len(s) >= 2 && s[:2] == "D:" {
		s = s[2:]
	}
	if len(s) < 4 {
		return Date{}, false
	}
	field := func(start, length int, def int) (int, bool) {
		if start+length > len(s) {
			return def, true
		}
		v, err := strconv.Atoi(s[start : start+length])
		if err != nil {
			return 0, false
		}
		return v, true
	}
	year, ok := field(0, 4, 0)
	if !ok {
		return Date{}, false
	}
	month, ok := field(4, 2, 1)
	if !ok {
		return Date{}, false
	}
	day, ok := field(6, 2, 1)
	if !ok {
		return Date{}, false
	}
	hour, ok := field(8, 2, 0)
	if !ok {
		return Date{}, false
	}
	minute, ok := field(10, 2, 0)
	if !ok {
		return Date{}, false
	}
	second, ok := field(12, 2, 0)
	if !ok {
		return Date{}, false
	}

	loc := time.UTC
	if len(s) > 14 {
		sign := s[14]
		offHour, okH := field(15, 2, 0)
		offMin := 0
		if len(s) >= 18 && (s[17] == '\'' || s[17] == ':') {
			offMin, _ = field(18, 2, 0)
		}
		if okH && (sign == '+' || sign == '-') {
			secs := (offHour*60 + offMin) * 60
			if sign == '-' {
				secs = -secs
			}
			loc = time.FixedZone("", secs)
		}
	}
	return Date(time.Date(year, time.Month(month), day, hour, minute, second, 0, loc)), true
}

// String formats d per the PDF date grammar, "D:YYYYMMDDHHmmSS+HH'mm'".
func (d Date) String() string {
	t := time.Time(d)
	_, offset := t.Zone()
	sign := "+"
	if offset < 0 {
		sign = "-"
		offset = -offset
	}
	return fmt.Sprintf("D:%04d%02d%02d%02d%02d%02d%s%02d'%02d'",
		t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(),
		sign, offset/3600, (offset%3600)/60)
}

// Rectangle is an axis-aligned rectangle from a PDF array of four numbers,
// normalized so LLx<=URx and LLy<=URy.
type Rectangle struct {
	LLx, LLy, URx, URy float64
}

// GetRectangle resolves obj to a four-element numeric array and builds a
// normalized Rectangle.
func GetRectangle(r Getter, obj Object) (*Rectangle, error) {
	a, err := GetFloatArray(r, obj)
	if err != nil {
		return nil, err
	}
	if a == nil {
		return nil, nil
	}
	if len(a) != 4 {
		return nil, &MalformedFileError{Err: errNoRectangle}
	}
	rect := &Rectangle{LLx: a[0], LLy: a[1], URx: a[2], URy: a[3]}
	if rect.LLx > rect.URx {
		rect.LLx, rect.URx = rect.URx, rect.LLx
	}
	if rect.LLy > rect.URy {
		rect.LLy, rect.URy = rect.URy, rect.LLy
	}
	return rect, nil
}

// Width returns the rectangle's width.
func (r *Rectangle) Width() float64 { return r.URx - r.LLx }

// Height returns the rectangle's height.
func (r *Rectangle) Height() float64 { return r.URy - r.LLy }

// IsZero reports whether r is the degenerate rectangle with no area.
func (r *Rectangle) IsZero() bool {
	return r == nil || (r.LLx == r.URx && r.LLy == r.URy)
}

// GetMatrix resolves obj to a six-element numeric array and builds the
// corresponding geom.Matrix, per §4.8's matrix convention [a b c d e f].
func GetMatrix(r Getter, obj Object) (geom.Matrix, error) {
	a, err := GetFloatArray(r, obj)
	if err != nil {
		return geom.Identity, err
	}
	if a == nil {
		return geom.Identity, nil
	}
	if len(a) != 6 {
		return geom.Identity, &MalformedFileError{Err: fmt.Errorf("matrix array must have 6 entries, got %d", len(a))}
	}
	return geom.Matrix{A: a[0], B: a[1], C: a[2], D: a[3], E: a[4], F: a[5]}, nil
}
