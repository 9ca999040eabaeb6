// seehuhn.de/go/pdf - a library for reading and writing PDF files
// Copyright (C) 2025  Jochen Voss <voss@seehuhn.de>
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

package function

import (
	"fmt"
	"io"

	pdf "pdfreader.dev/go/pdfreader"
)

// Function is a resolved PDF function dictionary/stream (§4.9):
// /FunctionType 4 only, paired with its Domain (required) and Range
// (optional) bounds.
type Function struct {
	Domain []float64
	Range  []float64
	interp *Interpreter
}

// Extract reads obj as a PDF function object: a stream whose dict has
// /FunctionType 4, /Domain, and optionally /Range, and whose body is a
// Type-4 PostScript calculator program.
func Extract(r pdf.Getter, obj Object) (*Function, error) {
	stm, err := pdf.GetStream(r, obj)
	if err != nil {
		return nil, err
	}
	if stm == nil {
		return nil, fmt.Errorf("function: missing function stream")
	}

	ftObj, _ := stm.Dict.Get("FunctionType")
	ft, err := pdf.GetInteger(r, ftObj)
	if err != nil {
		return nil, err
	}
	if ft != 4 {
		return nil, fmt.Errorf("function: unsupported FunctionType %d (only Type 4 is implemented)", ft)
	}

	domainObj, ok := stm.Dict.Get("Domain")
	if !ok {
		return nil, fmt.Errorf("function: missing required /Domain")
	}
	domain, err := pdf.GetFloatArray(r, domainObj)
	if err != nil {
		return nil, err
	}

	var rng []float64
	if rngObj, ok := stm.Dict.Get("Range"); ok {
		rng, err = pdf.GetFloatArray(r, rngObj)
		if err != nil {
			return nil, err
		}
	}

	body, err := pdf.GetStreamReader(r, obj)
	if err != nil {
		return nil, err
	}
	src, err := io.ReadAll(body)
	if err != nil {
		return nil, err
	}

	interp, err := Compile(string(src))
	if err != nil {
		return nil, err
	}

	return &Function{Domain: domain, Range: rng, interp: interp}, nil
}

// Object is a type alias so this package doesn't need to import the root
// package's Object type under two different names.
type Object = pdf.Object

// Eval runs the function on args, clipping inputs to Domain and outputs
// to Range, per pdf_run_function.
func (f *Function) Eval(args []float64) ([]float64, error) {
	if len(args)*2 != len(f.Domain) {
		return nil, fmt.Errorf("function: expected %d input(s), got %d", len(f.Domain)/2, len(args))
	}
	return f.interp.Run(args, f.Domain, f.Range)
}
