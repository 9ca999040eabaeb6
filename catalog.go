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

	"golang.org/x/text/language"
)

// Catalog is the document's root dictionary (PDF 32000-1:2008 §7.7.2),
// trimmed to the fields this reader's page walk and render loop consume;
// everything else survives as an opaque Object so a deeper reader can
// still find it, the way the teacher's catalog.go keeps unmodeled fields
// as Object passthroughs rather than failing to parse them.
type Catalog struct {
	Pages       Reference
	Lang        language.Tag
	MarkInfo    Object
	Names       Object
	Dests       Object
	ViewerPrefs Object
	OpenAction  Object
	AcroForm    Object
	Outlines    Object
}

// ExtractCatalog builds a Catalog from a resolved dict, hand-written
// (rather than reflection-driven) the way the teacher's ExtractCatalog is,
// permissively defaulting Pages to the zero Reference if the raw value
// is not literally a Reference instead of failing outright — real-world
// writers occasionally get this wrong and a reader that aborts on it is
// needlessly brittle.
func ExtractCatalog(r Getter, obj Object) (*Catalog, error) {
	dict, err := GetDictTyped(r, obj, "Catalog")
	if err != nil {
		return nil, err
	}
	if dict == nil {
		return nil, NewError(ErrMissingKey, 0, fmt.Errorf("missing Catalog dictionary"))
	}

	cat := &Catalog{}
	if pagesObj, ok := dict.Get("Pages"); ok {
		if ref, ok := pagesObj.(Reference); ok {
			cat.Pages = ref
		}
	}
	if langObj, ok := dict.Get("Lang"); ok {
		if s, ok := langObj.(String); ok {
			if tag, err := language.Parse(string(s)); err == nil {
				cat.Lang = tag
			}
		}
	}
	cat.MarkInfo, _ = dict.Get("MarkInfo")
	cat.Names, _ = dict.Get("Names")
	cat.Dests, _ = dict.Get("Dests")
	cat.ViewerPrefs, _ = dict.Get("ViewerPreferences")
	cat.OpenAction, _ = dict.Get("OpenAction")
	cat.AcroForm, _ = dict.Get("AcroForm")
	cat.Outlines, _ = dict.Get("Outlines")
	return cat, nil
}

// Info is the (optional) Document Information Dictionary.
type Info struct {
	Title    string
	Author   string
	Subject  string
	Keywords string
	Creator  string
	Producer string
	Custom   map[string]string
}

// ExtractInfo builds an Info record from a resolved dict. All fields are
// optional; a missing Info dictionary is not an error at this layer
// (callers treat a nil *Info as "no metadata").
func ExtractInfo(r Getter, obj Object) (*Info, error) {
	dict, err := GetDict(r, obj)
	if err != nil || dict == nil {
		return nil, err
	}
	info := &Info{Custom: map[string]string{}}
	assign := func(key Name, dst *string) error {
		v, ok := dict.Get(key)
		if !ok {
			return nil
		}
		s, err := GetTextString(r, v)
		if err != nil {
			return err
		}
		*dst = string(s)
		return nil
	}
	for _, f := range []struct {
		key Name
		dst *string
	}{
		{"Title", &info.Title}, {"Author", &info.Author}, {"Subject", &info.Subject},
		{"Keywords", &info.Keywords}, {"Creator", &info.Creator}, {"Producer", &info.Producer},
	} {
		if err := assign(f.key, f.dst); err != nil {
			return nil, err
		}
	}
	known := map[Name]bool{"Title": true, "Author": true, "Subject": true, "Keywords": true,
		"Creator": true, "Producer": true, "CreationDate": true, "ModDate": true, "Trapped": true}
	for _, k := range dict.Keys() {
		if known[k] {
			continue
		}
		v, _ := dict.Get(k)
		if s, ok := v.(String); ok {
			info.Custom[string(k)] = string(s)
		}
	}
	return info, nil
}
