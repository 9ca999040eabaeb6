// seehuhn.de/go/pdf - a library for reading and writing PDF files
// Copyright (C) 2021  Jochen Voss <voss@seehuhn.de>
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

package pdf

import "fmt"

// FieldDescriptor binds one dict key to the action that installs its
// value into a domain record. Unlike the teacher's reflection- and
// struct-tag-driven DecodeDict, this is an explicit closure-per-field
// design: Apply is called once per DeserializeDict invocation, either
// with the raw (unresolved) value when the key is present, or with
// present=false when it is missing. This follows the original C
// implementation's deser.h tagged-union of variant constructors
// (Unimplemented/Ignored/Object/Optional/Resolvable/Array/AsArray/Custom)
// more directly than a tag-driven struct walk would, at the cost of
// slightly more boilerplate per record type (see the component H entry
// in DESIGN.md).
type FieldDescriptor struct {
	Key   Name
	Apply func(r Getter, val Object, present bool) error
}

// DeserializeDict resolves obj, requires it to be a Dict, rejects
// unknown keys unless allowUnknown, and applies each field descriptor in
// order — present fields get their raw value, absent fields get
// present=false so Optional-style Apply funcs can record "not set"
// without erroring, while required fields are expected to return an
// error themselves when present is false.
func DeserializeDict(r Getter, obj Object, fields []FieldDescriptor, allowUnknown bool) error {
	dict, err := GetDict(r, obj)
	if err != nil {
		return err
	}
	if dict == nil {
		return NewError(ErrMissingKey, 0, fmt.Errorf("expected a dict, got null"))
	}

	if !allowUnknown {
		known := make(map[Name]bool, len(fields))
		for _, f := range fields {
			known[f.Key] = true
		}
		for _, k := range dict.Keys() {
			if !known[k] {
				return NewError(ErrUnknownKey, 0, fmt.Errorf("unknown key %q", k))
			}
		}
	}

	for _, f := range fields {
		val, present := dict.Get(f.Key)
		if err := f.Apply(r, val, present); err != nil {
			return WithContext(err, "DeserializeDict", fmt.Sprintf("field %q", f.Key))
		}
	}
	return nil
}

// DeserializeOperands requires exactly len(fields) operands and applies
// them positionally, per §4.6's deser_operands for content-stream
// operators.
func DeserializeOperands(r Getter, ops []Object, fields []FieldDescriptor) error {
	if len(ops) != len(fields) {
		return NewError(ErrSyntax, 0, fmt.Errorf("expected %d operands, got %d", len(fields), len(ops)))
	}
	for i, f := range fields {
		if err := f.Apply(r, ops[i], true); err != nil {
			return WithContext(err, "DeserializeOperands", fmt.Sprintf("operand %d (%s)", i, f.Key))
		}
	}
	return nil
}

// Unimplemented returns an ErrUnimplemented error if the field is ever
// present, matching the "Unimplemented" DeserInfo variant.
func Unimplemented(key Name) FieldDescriptor {
	return FieldDescriptor{Key: key, Apply: func(r Getter, val Object, present bool) error {
		if present {
			return NewError(ErrUnimplemented, 0, fmt.Errorf("field %q is not supported", key))
		}
		return nil
	}}
}

// Ignored silently skips the field whether present or absent.
func Ignored(key Name) FieldDescriptor {
	return FieldDescriptor{Key: key, Apply: func(r Getter, val Object, present bool) error { return nil }}
}

// ObjectField requires the field and type-checks/copies it via get,
// erroring if absent.
func ObjectField[T Object](key Name, dst *T, get func(Getter, Object) (T, error)) FieldDescriptor {
	return FieldDescriptor{Key: key, Apply: func(r Getter, val Object, present bool) error {
		if !present {
			return NewError(ErrMissingKey, 0, fmt.Errorf("missing required key %q", key))
		}
		v, err := get(r, val)
		if err != nil {
			return err
		}
		*dst = v
		return nil
	}}
}

// OptionalField sets *ok to whether the field was present, and on
// presence delegates to get.
func OptionalField[T Object](key Name, dst *T, ok *bool, get func(Getter, Object) (T, error)) FieldDescriptor {
	return FieldDescriptor{Key: key, Apply: func(r Getter, val Object, present bool) error {
		*ok = present
		if !present {
			return nil
		}
		v, err := get(r, val)
		if err != nil {
			return err
		}
		*dst = v
		return nil
	}}
}

// ResolvableField requires the raw value to be a Reference (no eager
// dereference) and records it for on-demand resolution later, per the
// "Resolvable" variant.
func ResolvableField(key Name, dst *Reference, required bool) FieldDescriptor {
	return FieldDescriptor{Key: key, Apply: func(r Getter, val Object, present bool) error {
		if !present {
			if required {
				return NewError(ErrMissingKey, 0, fmt.Errorf("missing required key %q", key))
			}
			return nil
		}
		ref, ok := val.(Reference)
		if !ok {
			return NewError(ErrType, 0, fmt.Errorf("field %q must be an indirect reference", key))
		}
		*dst = ref
		return nil
	}}
}

// ArrayField requires the field to be an Array and deserializes each
// element with elem.
func ArrayField[T Object](key Name, dst *[]T, required bool, elem func(Getter, Object) (T, error)) FieldDescriptor {
	return FieldDescriptor{Key: key, Apply: func(r Getter, val Object, present bool) error {
		if !present {
			if required {
				return NewError(ErrMissingKey, 0, fmt.Errorf("missing required key %q", key))
			}
			return nil
		}
		arr, err := GetArray(r, val)
		if err != nil {
			return err
		}
		out := make([]T, len(arr))
		for i, item := range arr {
			v, err := elem(r, item)
			if err != nil {
				return fmt.Errorf("element %d: %w", i, err)
			}
			out[i] = v
		}
		*dst = out
		return nil
	}}
}

// AsArrayField accepts either a single element or an Array of elements —
// the "singleton-or-array" convenience several PDF fields use (e.g. a
// Contents entry that may be one stream or an array of streams).
func AsArrayField[T Object](key Name, dst *[]T, get func(Getter, Object) (T, error)) FieldDescriptor {
	return FieldDescriptor{Key: key, Apply: func(r Getter, val Object, present bool) error {
		if !present {
			return nil
		}
		resolved, err := Resolve(r, val)
		if err != nil {
			return err
		}
		if arr, ok := resolved.(Array); ok {
			out := make([]T, len(arr))
			for i, item := range arr {
				v, err := get(r, item)
				if err != nil {
					return fmt.Errorf("element %d: %w", i, err)
				}
				out[i] = v
			}
			*dst = out
			return nil
		}
		v, err := get(r, val)
		if err != nil {
			return err
		}
		*dst = []T{v}
		return nil
	}}
}

// CustomField delegates entirely to fn, for fields whose shape doesn't
// fit the other variants.
func CustomField(key Name, fn func(r Getter, val Object, present bool) error) FieldDescriptor {
	return FieldDescriptor{Key: key, Apply: fn}
}
