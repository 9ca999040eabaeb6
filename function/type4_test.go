// seehuhn.de/go/pdf - a library for reading and writing PDF files
// Copyright (C) 2025  Jochen Voss <voss@seehuhn.de>
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

package function

import (
	"math"
	"testing"
)

// TestRunSineCombination ports the embedded function-table test: a
// two-input, one-output calculator evaluating
// `sin(360x)/2 + sin(360y)/2` at (0.25, 0.5), which works out to 0.5
// exactly since sin(90deg)=1 and sin(180deg)=0.
func TestRunSineCombination(t *testing.T) {
	it, err := Compile("{ 360 mul sin 2 div exch 360 mul sin 2 div add }")
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	out, err := it.Run([]float64{0.25, 0.5}, []float64{-1, 1, -1, 1}, []float64{-1, 1})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(out) != 1 {
		t.Fatalf("got %d outputs, want 1", len(out))
	}
	if math.Abs(out[0]-0.5) > 1e-9 {
		t.Errorf("Run() = %v, want 0.5", out[0])
	}
}

func TestRunStackOps(t *testing.T) {
	cases := []struct {
		name    string
		program string
		args    []float64
		domain  []float64
		want    []float64
	}{
		{"dup", "{ dup }", []float64{3}, []float64{0, 10}, []float64{3, 3}},
		{"exch", "{ exch }", []float64{1, 2}, []float64{0, 10, 0, 10}, []float64{2, 1}},
		{"add", "{ add }", []float64{2, 3}, []float64{0, 10, 0, 10}, []float64{5}},
		{"sub", "{ sub }", []float64{5, 3}, []float64{0, 10, 0, 10}, []float64{2}},
		{"ifelse-true", "{ 1 gt { 100 } { 200 } ifelse }", []float64{5}, []float64{0, 10}, []float64{100}},
		{"ifelse-false", "{ 1 gt { 100 } { 200 } ifelse }", []float64{0}, []float64{0, 10}, []float64{200}},
		{"roll", "{ 3 1 roll }", []float64{1, 2, 3}, []float64{0, 10, 0, 10, 0, 10}, []float64{3, 1, 2}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			it, err := Compile(c.program)
			if err != nil {
				t.Fatalf("Compile: %v", err)
			}
			out, err := it.Run(c.args, c.domain, nil)
			if err != nil {
				t.Fatalf("Run: %v", err)
			}
			if len(out) != len(c.want) {
				t.Fatalf("got %v, want %v", out, c.want)
			}
			for i := range out {
				if math.Abs(out[i]-c.want[i]) > 1e-9 {
					t.Errorf("out[%d] = %v, want %v", i, out[i], c.want[i])
				}
			}
		})
	}
}

func TestDomainClipping(t *testing.T) {
	it, err := Compile("{ }")
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	out, err := it.Run([]float64{5}, []float64{0, 2}, nil)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if out[0] != 2 {
		t.Errorf("clipped input = %v, want 2", out[0])
	}
}
