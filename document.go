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

// objectCacheSize bounds the number of decoded indirect objects an open
// Resolver keeps around, trading memory for fewer re-parses of frequently
// visited objects (page dicts, the font cache, the resource dictionaries
// each content stream references).
const objectCacheSize = 512

// Resolver is the concrete Getter backing an opened PDF document: a
// parsing Ctx over the whole file, the cross-reference table located by
// chasing /Prev links from the final trailer, and an LRU cache of
// already-parsed indirect objects.
type Resolver struct {
	ctx     *Ctx
	version Version
	xref    *XRefTable
	meta    *MetaInfo
}

// Open parses data as a complete PDF file: the header version comment,
// the cross-reference chain (classic tables only; xref streams are a
// documented gap, see DESIGN.md), and the trailer's /Root catalog.
func Open(data []byte) (*Resolver, error) {
	c := NewCtx(data)

	ver, err := readHeaderVersion(c)
	if err != nil {
		return nil, err
	}

	startXRef, err := findXRef(c)
	if err != nil {
		return nil, err
	}

	xr := &XRefTable{
		streamEntries: make(map[uint32]xrefStreamEntry),
		cache:         newObjectCache(objectCacheSize),
	}

	var mergedTrailer *Trailer
	seen := make(map[int64]bool)
	next := startXRef
	for {
		if seen[next] {
			return nil, &MalformedFileError{Err: fmt.Errorf("cyclic /Prev chain in cross-reference table")}
		}
		seen[next] = true

		c.Seek(next)
		subs, err := parseXRefSection(c)
		if err != nil {
			return nil, err
		}
		xr.subsections = append(xr.subsections, subs...)

		trailer, _, err := parseTrailer(c, nil)
		if err != nil {
			return nil, err
		}
		if mergedTrailer == nil {
			mergedTrailer = trailer
		}
		if trailer.Prev == nil {
			break
		}
		next = *trailer.Prev
	}
	xr.trailer = mergedTrailer

	r := &Resolver{ctx: c, version: ver, xref: xr}

	rootDict, err := GetDict(r, mergedTrailer.Root)
	if err != nil {
		return nil, err
	}
	r.meta = &MetaInfo{Version: ver, Catalog: rootDict}
	return r, nil
}

// readHeaderVersion parses the "%PDF-1.N" comment at the start of the
// file, per §6's header grammar.
func readHeaderVersion(c *Ctx) (Version, error) {
	c.Seek(0)
	if err := c.Expect("%PDF-1."); err != nil {
		return 0, &MalformedFileError{Err: fmt.Errorf("missing %%PDF- header")}
	}
	b, err := c.Peek()
	if err != nil || b < '0' || b > '9' {
		return 0, &MalformedFileError{Err: errVersion}
	}
	c.Shift(1)
	return ParseVersion(int(b - '0'))
}

// GetMeta implements Getter.
func (r *Resolver) GetMeta() *MetaInfo { return r.meta }

// Get implements Getter: it locates the object's byte offset in the
// cross-reference table, parses it, and caches the result. canObjStm is
// currently advisory only; object-stream storage (PDF 1.5 compressed
// objects) is not yet wired into the offset lookup (see DESIGN.md).
func (r *Resolver) Get(ref Reference, canObjStm bool) (Object, error) {
	if obj, ok := r.xref.cache.Get(ref); ok {
		return obj, nil
	}

	offset, gen, inUse, found := r.lookup(ref.ID)
	if !found || !inUse {
		return NullObject, nil
	}
	if gen != ref.Gen {
		return nil, NewError(ErrGeneration, 0, fmt.Errorf("object %s: generation mismatch (table has %d)", ref.String(), gen))
	}

	r.ctx.Seek(offset)
	obj, err := ParseObject(r.ctx, true)
	if err != nil {
		return nil, WithContext(err, "Resolver.Get", fmt.Sprintf("parsing object %s", ref.String()))
	}
	io, ok := obj.(IndirectObject)
	if !ok || io.Reference != ref {
		return nil, &MalformedFileError{Err: fmt.Errorf("object at offset %d is not %s", offset, ref.String())}
	}
	r.xref.cache.Put(ref, io)
	return io, nil
}

// lookup finds the most recent subsection entry for id, later subsections
// (earlier in file-append order, i.e. parsed first via the /Prev chain we
// walk forward from the newest trailer) taking precedence — the first
// subsection covering id that this resolver parsed wins, since Open
// appends subsections newest-first.
func (r *Resolver) lookup(id uint32) (offset int64, gen uint16, inUse bool, found bool) {
	for _, sub := range r.xref.subsections {
		if id < sub.first || id >= sub.first+sub.count {
			continue
		}
		idx := id - sub.first
		off, g, use, err := xrefEntryAt(r.ctx, sub, idx)
		if err != nil {
			continue
		}
		return off, g, use, true
	}
	return 0, 0, false, false
}
