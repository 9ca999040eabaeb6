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
	"math"
)

// Object is the sum type every PDF value belongs to: Boolean, Integer,
// Real, String, Name, Array, Dict, Stream, Reference, or Null. It is a
// closed interface rather than an open one — the unexported method keeps
// external packages from manufacturing new variants, mirroring the
// exhaustive-match discipline the design notes ask for tagged unions.
type Object interface {
	isObject()
}

// Boolean is a PDF true/false literal.
type Boolean bool

func (Boolean) isObject() {}

// maxInt32 / minInt32 bound the Integer variant per the data model's
// overflow rule.
const (
	maxInt32 = 1<<31 - 1
	minInt32 = -1 << 31
)

// maxReal bounds the Real variant's magnitude.
const maxReal = 3.403e38

// Integer is a PDF numeric literal without a decimal point, constrained to
// the signed 32-bit range.
type Integer int32

func (Integer) isObject() {}

// Real is a PDF numeric literal with a decimal point or exponent.
type Real float64

func (Real) isObject() {}

// String is an opaque PDF byte string (from either literal-paren or
// hex-bracket syntax; the two forms are indistinguishable once decoded).
type String []byte

func (String) isObject() {}

// Name is a PDF name after `#hh` hex-escape decoding.
type Name string

func (Name) isObject() {}

// Array is an ordered sequence of objects.
type Array []Object

func (Array) isObject() {}

// Dict is an insertion-ordered, case-sensitive name-to-object mapping.
// Insertion order is preserved via keys, so that re-serialization and
// deterministic iteration (needed by the deserializer's duplicate-key
// check) see the file's own field order.
type Dict struct {
	keys   []Name
	values map[Name]Object
}

func (*Dict) isObject() {}

// NewDict returns an empty dict ready for Set.
func NewDict() *Dict {
	return &Dict{values: make(map[Name]Object)}
}

// Set inserts key=val, returning an ErrDuplicateKey error if key is already
// present — the data model requires duplicate raw-dict keys to be
// rejected unless the caller tolerates it explicitly (AllowUnknown does
// not imply allow-duplicate).
func (d *Dict) Set(key Name, val Object) error {
	if d.values == nil {
		d.values = make(map[Name]Object)
	}
	if _, ok := d.values[key]; ok {
		return NewError(ErrDuplicateKey, 0, fmt.Errorf("duplicate key %q", key))
	}
	d.keys = append(d.keys, key)
	d.values[key] = val
	return nil
}

// Get returns the raw (unresolved) value for key and whether it was
// present.
func (d *Dict) Get(key Name) (Object, bool) {
	if d == nil || d.values == nil {
		return nil, false
	}
	v, ok := d.values[key]
	return v, ok
}

// Keys returns the dict's keys in insertion order.
func (d *Dict) Keys() []Name {
	if d == nil {
		return nil
	}
	return d.keys
}

// Len reports the number of entries.
func (d *Dict) Len() int {
	if d == nil {
		return 0
	}
	return len(d.keys)
}

// Stream is a dict paired with its (possibly still-encoded) payload bytes
// and the decoded length, once known.
type Stream struct {
	Dict        *Dict
	Raw         []byte
	DecodedLen  int64
	decoded     []byte
	decodedOK   bool
}

func (*Stream) isObject() {}

// Reference is an indirect reference `id gen R`.
type Reference struct {
	ID  uint32
	Gen uint16
}

func (Reference) isObject() {}

// String renders a reference as "id gen R", matching the teacher's
// origRef.String() use in its too-many-levels-of-indirection error.
func (r Reference) String() string {
	return fmt.Sprintf("%d %d R", r.ID, r.Gen)
}

// NewReference constructs a Reference from a (possibly wider) id/gen pair.
func NewReference(id uint32, gen uint16) Reference {
	return Reference{ID: id, Gen: gen}
}

// IndirectObject pairs a Reference with its freshly parsed inner value, as
// produced by "id gen obj ... endobj".
type IndirectObject struct {
	Reference Reference
	Inner     Object
}

func (IndirectObject) isObject() {}

// nullT is the type of the PDF null object; NullObject is its only value.
type nullT struct{}

func (nullT) isObject() {}

// NullObject is the singleton PDF null value.
var NullObject Object = nullT{}

// IsNull reports whether obj is the PDF null object.
func IsNull(obj Object) bool {
	_, ok := obj.(nullT)
	return ok
}

// checkIntMagnitude validates the overflow rule for Integer literals
// (invariant #1 in the testable-properties list): magnitude must fit in a
// signed 32-bit value.
func checkIntMagnitude(v int64) error {
	if v > maxInt32 || v < minInt32 {
		return NewError(ErrLimit, 0, fmt.Errorf("integer %d out of range", v))
	}
	return nil
}

// checkRealMagnitude validates the overflow rule for Real literals.
func checkRealMagnitude(v float64) error {
	if math.Abs(v) > maxReal {
		return NewError(ErrLimit, 0, fmt.Errorf("real %g out of range", v))
	}
	return nil
}
