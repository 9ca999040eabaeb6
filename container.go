// seehuhn.de/go/pdf - a library for reading and writing PDF files
// Copyright (C) 2023  Jochen Voss <voss@seehuhn.de>
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

package pdf

import (
	"fmt"
	"io"
	"math"
	"os"
)

// Getter is the resolver façade every reading operation depends on: the
// single entry point able to turn a Reference into the Object it names.
//
// The canObjStm argument says whether the object may live inside an
// object stream (PDF 1.5 compressed objects); most callers pass true.
type Getter interface {
	GetMeta() *MetaInfo
	Get(ref Reference, canObjStm bool) (Object, error)
}

// MetaInfo carries the document-wide facts every Getter exposes: the
// declared PDF version and the resolved Catalog.
type MetaInfo struct {
	Version Version
	Catalog *Dict
}

// Resolve recursively dereferences obj until it is no longer a Reference,
// per §4.5's resolve_object with unwrap_indirect_objs=true. A reference
// cycle fails with a *MalformedFileError after maxRefDepth hops, naming the original
// reference the way the teacher's container.go does.
func Resolve(r Getter, obj Object) (Object, error) {
	return resolve(r, obj, true)
}

const maxRefDepth = 16

func resolve(r Getter, obj Object, canObjStm bool) (Object, error) {
	if obj == nil {
		return nil, nil
	}
	ref, isReference := obj.(Reference)
	if !isReference {
		if io, isIndirect := obj.(IndirectObject); isIndirect {
			return io.Inner, nil
		}
		return obj, nil
	}

	origRef := ref
	count := 0
	for {
		count++
		if count > maxRefDepth {
			return nil, &MalformedFileError{
				Err: fmt.Errorf("too many levels of indirection (object %s)", origRef.String()),
			}
		}
		next, err := r.Get(ref, canObjStm)
		if err != nil {
			return nil, err
		}
		if io, isIndirect := next.(IndirectObject); isIndirect {
			next = io.Inner
		}
		ref, isReference = next.(Reference)
		if !isReference {
			return next, nil
		}
	}
}

func resolveAndCast[T Object](r Getter, obj Object) (x T, err error) {
	resolved, err := Resolve(r, obj)
	if err != nil {
		return x, err
	}
	if resolved == nil || IsNull(resolved) {
		return x, nil
	}
	x, isCorrectType := resolved.(T)
	if isCorrectType {
		return x, nil
	}
	return x, &MalformedFileError{Err: fmt.Errorf("expected %T but got %T", x, resolved)}
}

// Helper functions for getting objects of a specific type. Each resolves
// obj first; a `null` object returns the zero value without error; a
// wrong-type object is an error.
var (
	GetArray   = resolveAndCast[Array]
	GetBoolean = resolveAndCast[Boolean]
	GetDict    = resolveAndCast[*Dict]
	GetName    = resolveAndCast[Name]
	GetReal    = resolveAndCast[Real]
	GetStream  = resolveAndCast[*Stream]
	GetString  = resolveAndCast[String]
)

// GetInteger resolves obj and returns it as an Integer; Real values are
// rounded to the nearest integer, matching real-world files that encode
// integral quantities as "1.0".
func GetInteger(r Getter, obj Object) (Integer, error) {
	resolved, err := Resolve(r, obj)
	if err != nil || resolved == nil {
		return 0, err
	}
	switch x := resolved.(type) {
	case Integer:
		return x, nil
	case Real:
		return Integer(math.Round(float64(x))), nil
	default:
		return 0, &MalformedFileError{Err: fmt.Errorf("expected Integer but got %T", resolved)}
	}
}

// GetNumber resolves obj and returns it as a float64, accepting either an
// Integer or a Real operand (the "pdf_number_as_real" unification named in
// §4.8).
func GetNumber(r Getter, obj Object) (float64, error) {
	resolved, err := Resolve(r, obj)
	if err != nil || resolved == nil {
		return 0, err
	}
	switch x := resolved.(type) {
	case Integer:
		return float64(x), nil
	case Real:
		return float64(x), nil
	default:
		return 0, &MalformedFileError{Err: fmt.Errorf("expected number but got %T", resolved)}
	}
}

func getIntegerNoObjStm(r Getter, obj Object) (Integer, error) {
	resolved, err := resolve(r, obj, false)
	if err != nil {
		return 0, err
	}
	if x, ok := resolved.(Integer); ok {
		return x, nil
	}
	return 0, &MalformedFileError{Err: fmt.Errorf("expected Integer but got %T", resolved)}
}

// GetFloatArray resolves obj as an Array and converts every element with
// GetNumber.
func GetFloatArray(r Getter, obj Object) ([]float64, error) {
	array, err := GetArray(r, obj)
	if err != nil || array == nil {
		return nil, err
	}
	result := make([]float64, len(array))
	for i, item := range array {
		num, err := GetNumber(r, item)
		if err != nil {
			return nil, fmt.Errorf("array element %d: %w", i, err)
		}
		result[i] = num
	}
	return result, nil
}

// GetDictTyped resolves obj as a dict and checks its /Type entry, if
// present, equals wantType.
func GetDictTyped(r Getter, obj Object, wantType Name) (*Dict, error) {
	dict, err := GetDict(r, obj)
	if dict == nil || err != nil {
		return nil, err
	}
	if err := CheckDictType(r, dict, wantType); err != nil {
		return nil, err
	}
	return dict, nil
}

// CheckDictType checks that dict's /Type entry, if present, equals
// wantType; an absent /Type is not an error.
func CheckDictType(r Getter, dict *Dict, wantType Name) error {
	v, _ := dict.Get("Type")
	haveType, err := GetName(r, v)
	if err != nil {
		return err
	}
	if haveType != wantType && haveType != "" {
		return &MalformedFileError{Err: fmt.Errorf("expected dict type %q, got %q", wantType, haveType)}
	}
	return nil
}

// GetStreamReader is GetStream followed by DecodeStream.
func GetStreamReader(r Getter, obj Object) (io.ReadCloser, error) {
	stm, err := GetStream(r, obj)
	if err != nil {
		return nil, err
	}
	if stm == nil {
		return nil, fmt.Errorf("no stream found: %w", os.ErrNotExist)
	}
	return DecodeStream(r, stm, 0)
}

// DecodeStream returns a reader for the decoded payload of a stream. If
// numFilters is positive, only that many filters (from the front of the
// chain) are applied.
func DecodeStream(r Getter, stm *Stream, numFilters int) (io.ReadCloser, error) {
	filters, err := GetFilters(r, stm.Dict)
	if err != nil {
		return nil, err
	}
	var rdr io.Reader = byteSliceReader(stm.Raw)
	for i, fi := range filters {
		if numFilters > 0 && i >= numFilters {
			break
		}
		rdr, err = fi.Decode(rdr)
		if err != nil {
			return nil, err
		}
	}
	return io.NopCloser(rdr), nil
}

func byteSliceReader(b []byte) io.Reader { return &sliceReader{b: b} }

type sliceReader struct {
	b []byte
	i int
}

func (s *sliceReader) Read(p []byte) (int, error) {
	if s.i >= len(s.b) {
		return 0, io.EOF
	}
	n := copy(p, s.b[s.i:])
	s.i += n
	return n, nil
}

// GetFilters extracts the /Filter and /DecodeParms entries of a stream
// dict into a concrete filter chain.
func GetFilters(r Getter, dict *Dict) ([]Filter, error) {
	filterVal, _ := dict.Get("Filter")
	filter, err := resolve(r, filterVal, false)
	if err != nil {
		return nil, err
	}
	parmsVal, _ := dict.Get("DecodeParms")
	decodeParms, err := resolve(r, parmsVal, false)
	if err != nil {
		return nil, err
	}

	var res []Filter
	switch f := filter.(type) {
	case nil:
	case Name:
		var pd *Dict
		if decodeParms != nil {
			var ok bool
			pd, ok = decodeParms.(*Dict)
			if !ok {
				return nil, fmt.Errorf("wrong type, expected Dict but got %T", decodeParms)
			}
		}
		fl, err := makeFilter(f, pd)
		if err != nil {
			return nil, err
		}
		res = append(res, fl)
	case Array:
		var pa Array
		if decodeParms != nil {
			var ok bool
			pa, ok = decodeParms.(Array)
			if !ok {
				return nil, fmt.Errorf("invalid /DecodeParms field")
			}
		}
		for i, fi := range f {
			fi, err := resolve(r, fi, false)
			if err != nil {
				return nil, err
			}
			name, ok := fi.(Name)
			if !ok {
				return nil, fmt.Errorf("wrong type, expected Name but got %T", fi)
			}
			var pd *Dict
			if len(pa) > i {
				pai, err := resolve(r, pa[i], false)
				if err != nil {
					return nil, err
				}
				if pai != nil {
					pd, ok = pai.(*Dict)
					if !ok {
						return nil, fmt.Errorf("wrong type, expected Dict but got %T", pai)
					}
				}
			}
			fl, err := makeFilter(name, pd)
			if err != nil {
				return nil, err
			}
			res = append(res, fl)
		}
	default:
		return nil, fmt.Errorf("invalid /Filter field")
	}
	return res, nil
}

// IsTagged reports whether the document's catalog declares itself tagged
// (catalog.MarkInfo.Marked == true).
func IsTagged(r Getter) bool {
	catalog := r.GetMeta().Catalog
	if catalog == nil {
		return false
	}
	miObj, _ := catalog.Get("MarkInfo")
	mi, _ := resolve(r, miObj, true)
	markInfo, _ := mi.(*Dict)
	if markInfo == nil {
		return false
	}
	markedObj, _ := markInfo.Get("Marked")
	marked, _ := markedObj.(Boolean)
	return bool(marked)
}

// GetVersion returns the PDF version declared in the file header.
func GetVersion(r Getter) Version {
	return r.GetMeta().Version
}
