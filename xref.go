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
)

// xrefSubsection records a classic-xref subsection header: `first count`
// followed by count 20-byte entry rows starting at entriesOffset.
type xrefSubsection struct {
	first         uint32
	count         uint32
	entriesOffset int64
}

// xrefStreamEntry is a decoded row of a PDF 1.5 cross-reference stream
// (type 0 free, 1 classic offset, 2 compressed-in-object-stream). Open
// parses classic tables only and never decodes stream rows into it.
type xrefStreamEntry struct {
	kind   int
	field2 int64
	field3 int64
}

// XRefTable is the parsed cross-reference table: classic subsections
// plus the parsed trailer (streamEntries is allocated but stays empty). Objects are
// cached here once parsed, keyed by (id, gen) implicitly through id since
// a reader never holds two live generations of the same id.
type XRefTable struct {
	subsections   []xrefSubsection
	streamEntries map[uint32]xrefStreamEntry
	trailer       *Trailer
	cache         *objectCache
}

// Trailer is the document trailer record.
type Trailer struct {
	Size    int
	Root    Reference
	Info    *Reference
	ID      Object
	Prev    *int64
	Encrypt Object
}

// findStartXRef backscans for the literal "startxref" keyword, mirroring
// file.go's findStartXRef doubling-window search, simplified here to a
// single backward scan now that Ctx.Backscan exists.
func findStartXRef(c *Ctx) (int64, error) {
	save := c.Pos()
	c.Seek(c.Len())
	if err := c.Backscan("startxref", c.Len()); err != nil {
		c.Seek(save)
		return 0, NewError(ErrXRef, c.Pos(), fmt.Errorf("startxref not found"))
	}
	pos := c.Pos()
	c.Seek(save)
	return pos, nil
}

// findXRef returns the byte offset recorded after "startxref": the
// location of the xref table or xref stream. Grounded on
// xref_test.go's TestFindXref.
func findXRef(c *Ctx) (int64, error) {
	pos, err := findStartXRef(c)
	if err != nil {
		return 0, err
	}
	c.Seek(pos)
	if err := c.Expect("startxref"); err != nil {
		return 0, err
	}
	c.ConsumeWhiteSpace()
	numObj, isInt, err := parseNumber(c)
	if err != nil || !isInt {
		return 0, NewError(ErrXRef, c.Pos(), fmt.Errorf("expected startxref offset"))
	}
	off := int64(numObj.(Integer))
	if off < 0 || off > c.Len() {
		return 0, NewError(ErrXRef, c.Pos(), fmt.Errorf("startxref offset out of range"))
	}
	return off, nil
}

// parseXRefSection parses `xref` followed by subsection headers until one
// fails to parse as `first count`, then falls through to `trailer`.
// Grounded on file.go's expectXRef loop.
func parseXRefSection(c *Ctx) ([]xrefSubsection, error) {
	if err := c.Expect("xref"); err != nil {
		return nil, err
	}
	var subs []xrefSubsection
	for {
		save := c.Pos()
		c.ConsumeWhiteSpace()
		firstObj, firstIsInt, err := parseNumber(c)
		if err != nil || !firstIsInt {
			c.Seek(save)
			return subs, nil
		}
		c.ConsumeWhiteSpace()
		countObj, countIsInt, err := parseNumber(c)
		if err != nil || !countIsInt {
			c.Seek(save)
			return subs, nil
		}
		c.ConsumeWhiteSpace()
		entriesOffset := c.Pos()
		first := int64(firstObj.(Integer))
		count := int64(countObj.(Integer))
		if first < 0 || count < 0 {
			return nil, NewError(ErrXRef, c.Pos(), fmt.Errorf("negative xref subsection header"))
		}
		subs = append(subs, xrefSubsection{
			first:         uint32(first),
			count:         uint32(count),
			entriesOffset: entriesOffset,
		})
		c.Shift(20 * count)
	}
}

// xrefEntryAt reads the 20-byte fixed-width row for the i-th entry of a
// subsection: 10-digit offset, space, 5-digit generation, space, 'n' or
// 'f', two trailing bytes.
func xrefEntryAt(c *Ctx, sub xrefSubsection, idx uint32) (offset int64, gen uint16, inUse bool, err error) {
	if idx >= sub.count {
		return 0, 0, false, NewError(ErrXRef, 0, fmt.Errorf("xref entry index out of range"))
	}
	pos := sub.entriesOffset + 20*int64(idx)
	row := c.Slice(pos, pos+20)
	if len(row) < 18 {
		return 0, 0, false, NewError(ErrXRef, pos, fmt.Errorf("truncated xref entry"))
	}
	var offs, g int64
	if _, e := fmt.Sscanf(string(row[0:10]), "%d", &offs); e != nil {
		return 0, 0, false, NewError(ErrXRef, pos, e)
	}
	if _, e := fmt.Sscanf(string(row[11:16]), "%d", &g); e != nil {
		return 0, 0, false, NewError(ErrXRef, pos, e)
	}
	kind := row[17]
	if kind != 'n' && kind != 'f' {
		return 0, 0, false, NewError(ErrXRef, pos, fmt.Errorf("invalid xref entry type %q", kind))
	}
	return offs, uint16(g), kind == 'n', nil
}

// parseTrailer finds the trailer keyword by backward search from the
// cursor and deserializes the dict that follows it into a Trailer.
// Grounded on file.go's expectTrailer plus the Trailer shape from §4.5.
func parseTrailer(c *Ctx, r *Resolver) (*Trailer, *Dict, error) {
	save := c.Pos()
	if err := c.Backscan("trailer", c.Len()); err != nil {
		c.Seek(save)
		return nil, nil, NewError(ErrXRef, c.Pos(), fmt.Errorf("trailer keyword not found"))
	}
	if err := c.Expect("trailer"); err != nil {
		return nil, nil, err
	}
	c.ConsumeWhiteSpace()
	dictObj, err := parseObject(c, false)
	if err != nil {
		return nil, nil, err
	}
	d, ok := dictObj.(*Dict)
	if !ok {
		return nil, nil, NewError(ErrType, c.Pos(), fmt.Errorf("trailer is not a dict"))
	}
	t, err := trailerFromDict(d)
	return t, d, err
}

func trailerFromDict(d *Dict) (*Trailer, error) {
	t := &Trailer{}
	sizeObj, ok := d.Get("Size")
	if !ok {
		return nil, NewError(ErrMissingKey, 0, fmt.Errorf("trailer missing /Size"))
	}
	size, ok := sizeObj.(Integer)
	if !ok {
		return nil, NewError(ErrType, 0, fmt.Errorf("/Size must be an integer"))
	}
	t.Size = int(size)

	rootObj, ok := d.Get("Root")
	if !ok {
		return nil, NewError(ErrMissingKey, 0, fmt.Errorf("trailer missing /Root"))
	}
	root, ok := rootObj.(Reference)
	if !ok {
		return nil, NewError(ErrType, 0, fmt.Errorf("/Root must be an indirect reference"))
	}
	t.Root = root

	if infoObj, ok := d.Get("Info"); ok {
		if ref, ok := infoObj.(Reference); ok {
			t.Info = &ref
		}
	}
	if idObj, ok := d.Get("ID"); ok {
		t.ID = idObj
	}
	if prevObj, ok := d.Get("Prev"); ok {
		if prev, ok := prevObj.(Integer); ok {
			v := int64(prev)
			t.Prev = &v
		}
	}
	if encObj, ok := d.Get("Encrypt"); ok {
		t.Encrypt = encObj
		return nil, NewError(ErrUnimplemented, 0, fmt.Errorf("encrypted documents are not supported"))
	}
	return t, nil
}
