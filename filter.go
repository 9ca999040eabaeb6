// seehuhn.de/go/pdf - a library for reading and writing PDF files
// Copyright 2020 Jochen Voss <voss@seehuhn.de>
//
// Some code here, e.g. the pngUpReader, is taken from
// https://pkg.go.dev/rsc.io/pdf . Use of this source code is governed by a
// BSD-style license, which is reproduced here:
//
//     Copyright (c) 2009 The Go Authors. All rights reserved.
//
//     Redistribution and use in source and binary forms, with or without
//     modification, are permitted provided that the following conditions are
//     met:
//
//        * Redistributions of source code must retain the above copyright
//     notice, this list of conditions and the following disclaimer.
//        * Redistributions in binary form must reproduce the above
//     copyright notice, this list of conditions and the following disclaimer
//     in the documentation and/or other materials provided with the
//     distribution.
//        * Neither the name of Google Inc. nor the names of its
//     contributors may be used to endorse or promote products derived from
//     this software without specific prior written permission.
//
//     THIS SOFTWARE IS PROVIDED BY THE COPYRIGHT HOLDERS AND CONTRIBUTORS
//     "AS IS" AND ANY EXPRESS OR IMPLIED WARRANTIES, INCLUDING, BUT NOT
//     LIMITED TO, THE IMPLIED WARRANTIES OF MERCHANTABILITY AND FITNESS FOR
//     A PARTICULAR PURPOSE ARE DISCLAIMED. IN NO EVENT SHALL THE COPYRIGHT
//     OWNER OR CONTRIBUTORS BE LIABLE FOR ANY DIRECT, INDIRECT, INCIDENTAL,
//     SPECIAL, EXEMPLARY, OR CONSEQUENTIAL DAMAGES (INCLUDING, BUT NOT
//     LIMITED TO, PROCUREMENT OF SUBSTITUTE GOODS OR SERVICES; LOSS OF USE,
//     DATA, OR PROFITS; OR BUSINESS INTERRUPTION) HOWEVER CAUSED AND ON ANY
//     THEORY OF LIABILITY, WHETHER IN CONTRACT, STRICT LIABILITY, OR TORT
//     (INCLUDING NEGLIGENCE OR OTHERWISE) ARISING IN ANY WAY OUT OF THE USE
//     OF THIS SOFTWARE, EVEN IF ADVISED OF THE POSSIBILITY OF SUCH DAMAGE.

package pdf

import (
	"bytes"
	"fmt"
	"io"

	"pdfreader.dev/go/pdfreader/ascii85"
	"pdfreader.dev/go/pdfreader/internal/flate"
)

// Filter decodes one stage of a stream's filter chain. FlateDecode,
// ASCIIHexDecode and ASCII85Decode are supported per §4.7; any other
// filter name is fatal, matching the spec's "unsupported names are
// fatal" rule.
type Filter interface {
	Decode(r io.Reader) (io.Reader, error)
}

func makeFilter(name Name, parms *Dict) (Filter, error) {
	switch name {
	case "FlateDecode":
		return ffFromDict(parms), nil
	case "ASCIIHexDecode":
		return asciiHexFilter{}, nil
	case "ASCII85Decode":
		return ascii85Filter{}, nil
	default:
		return nil, NewError(ErrUnimplemented, 0, fmt.Errorf("unsupported filter %q", name))
	}
}

// ascii85Filter decodes ASCII85Decode streams via the ascii85 package's
// reader, terminating at the "~>" end marker per §7.4.3.
type ascii85Filter struct{}

func (ascii85Filter) Decode(r io.Reader) (io.Reader, error) {
	dr, err := ascii85.Decode(r)
	if err != nil {
		return nil, err
	}
	raw, err := io.ReadAll(dr)
	if err != nil && err != io.EOF {
		return nil, NewError(ErrCodec, 0, err)
	}
	return bytes.NewReader(raw), nil
}

// flateFilter is FlateDecode, backed by the from-scratch zlib/DEFLATE
// decoder in internal/flate rather than compress/zlib (see DESIGN.md).
// The PNG "Up" predictor (Predictor 12) is adapted from the teacher's
// pngUpReader, since Predictor support is a distinct, legitimate
// stream-filter concern.
type flateFilter struct {
	Predictor        int
	Colors           int
	BitsPerComponent int
	Columns          int
	EarlyChange      bool
}

func ffFromDict(parms *Dict) *flateFilter {
	res := &flateFilter{Predictor: 1, Colors: 1, BitsPerComponent: 8, Columns: 1, EarlyChange: true}
	if parms == nil {
		return res
	}
	if v, ok := getInt(parms, "Predictor"); ok && v >= 1 && v <= 15 {
		res.Predictor = v
	}
	if v, ok := getInt(parms, "Colors"); ok && v >= 1 {
		res.Colors = v
	}
	if v, ok := getInt(parms, "BitsPerComponent"); ok && (v == 1 || v == 2 || v == 4 || v == 8 || v == 16) {
		res.BitsPerComponent = v
	}
	if v, ok := getInt(parms, "Columns"); ok && v >= 0 && res.Predictor > 1 {
		res.Columns = v
	}
	if v, ok := getInt(parms, "EarlyChange"); ok {
		res.EarlyChange = v != 0
	}
	return res
}

func getInt(d *Dict, key Name) (int, bool) {
	v, ok := d.Get(key)
	if !ok {
		return 0, false
	}
	i, ok := v.(Integer)
	if !ok {
		return 0, false
	}
	return int(i), true
}

func (ff *flateFilter) Decode(r io.Reader) (io.Reader, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	decoded, err := flate.DecodeZlib(raw)
	if err != nil {
		return nil, NewError(ErrCodec, 0, err)
	}
	switch ff.Predictor {
	case 1:
		return bytes.NewReader(decoded), nil
	case 12:
		return applyPNGUpPredictor(decoded, ff.Columns)
	default:
		return nil, NewError(ErrUnimplemented, 0, fmt.Errorf("unsupported predictor %d", ff.Predictor))
	}
}

// applyPNGUpPredictor reverses the PNG "Up" filter over fixed-width rows,
// adapted from the teacher's pngUpReader to operate on an in-memory
// buffer instead of a streaming io.Reader.
func applyPNGUpPredictor(data []byte, columns int) (io.Reader, error) {
	if columns <= 0 {
		columns = 1
	}
	rowLen := columns + 1
	if len(data)%rowLen != 0 {
		return nil, NewError(ErrCodec, 0, fmt.Errorf("malformed PNG-Up encoding"))
	}
	prev := make([]byte, columns)
	var out []byte
	for off := 0; off < len(data); off += rowLen {
		row := data[off : off+rowLen]
		if row[0] != 2 {
			return nil, NewError(ErrCodec, 0, fmt.Errorf("only PNG-Up predictor rows are supported"))
		}
		cur := make([]byte, columns)
		for i := 0; i < columns; i++ {
			cur[i] = row[1+i] + prev[i]
		}
		out = append(out, cur...)
		prev = cur
	}
	return bytes.NewReader(out), nil
}

// asciiHexFilter decodes ASCIIHexDecode streams: whitespace-tolerant hex
// digit pairs terminated by '>', odd trailing digit padded with 0 — the
// same grammar as a hex string object (§4.4).
type asciiHexFilter struct{}

func (asciiHexFilter) Decode(r io.Reader) (io.Reader, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	var digits []byte
	for _, b := range raw {
		if b == '>' {
			break
		}
		if IsWhiteSpace(b) {
			continue
		}
		if !isHexDigit(b) {
			return nil, NewError(ErrCodec, 0, fmt.Errorf("invalid hex digit %q in ASCIIHexDecode stream", b))
		}
		digits = append(digits, b)
	}
	if len(digits)%2 == 1 {
		digits = append(digits, '0')
	}
	out := make([]byte, len(digits)/2)
	for i := range out {
		out[i] = hexByte(digits[2*i], digits[2*i+1])
	}
	return bytes.NewReader(out), nil
}
