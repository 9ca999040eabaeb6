// seehuhn.de/go/pdf - a library for reading and writing PDF files
// Copyright (C) 2021  Jochen Voss <voss@seehuhn.de>
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

package pdf

import "fmt"

// maxPageTreeDepth bounds the page-tree walk's explicit stack, guarding
// against a cyclic /Kids graph a malformed (or adversarial) file might
// contain.
const maxPageTreeDepth = 1024

// Page is one leaf of the page tree, with every inheritable attribute
// already propagated down from its Pages ancestors.
type Page struct {
	Dict      *Dict
	Resources *Dict
	MediaBox  *Rectangle
	CropBox   *Rectangle
	Rotate    int
}

// inherited carries the subset of Pages-node attributes that propagate
// to descendants per §4.14, one instance per stack frame.
type inherited struct {
	resources *Dict
	mediaBox  *Rectangle
	cropBox   *Rectangle
	rotate    int
	hasRotate bool
}

// pageTreeFrame is one level of the explicit walk stack: the Pages node
// together with the next /Kids index to visit and the inherited
// attributes already collected for its children.
type pageTreeFrame struct {
	kids    Array
	idx     int
	inherit inherited
}

// PageIterator performs the depth-first walk of the page tree described
// in §4.14, a stack of {node, next_child_idx} frames rather than
// recursion, so that maxPageTreeDepth can be enforced without relying on
// the Go call stack.
type PageIterator struct {
	r     Getter
	stack []pageTreeFrame
	done  bool
}

// NewPageIterator starts a walk at the document's root Pages node.
func NewPageIterator(r Getter) (*PageIterator, error) {
	catalog := r.GetMeta().Catalog
	if catalog == nil {
		return nil, NewError(ErrMissingKey, 0, fmt.Errorf("document has no catalog"))
	}
	pagesObj, ok := catalog.Get("Pages")
	if !ok {
		return nil, NewError(ErrMissingKey, 0, fmt.Errorf("catalog missing /Pages"))
	}
	pages, err := GetDictTyped(r, pagesObj, "Pages")
	if err != nil {
		return nil, err
	}
	if pages == nil {
		return nil, NewError(ErrMissingKey, 0, fmt.Errorf("root /Pages not found"))
	}
	kids, err := kidsOf(r, pages)
	if err != nil {
		return nil, err
	}
	root := inherited{}
	if err := collectInherited(r, pages, &root); err != nil {
		return nil, err
	}
	return &PageIterator{
		r:     r,
		stack: []pageTreeFrame{{kids: kids, inherit: root}},
	}, nil
}

func kidsOf(r Getter, node *Dict) (Array, error) {
	kidsObj, ok := node.Get("Kids")
	if !ok {
		return nil, nil
	}
	return GetArray(r, kidsObj)
}

// collectInherited merges node's own Resources/MediaBox/CropBox/Rotate
// into acc, only where acc does not already carry a value — the
// "child's corresponding Optional is None" rule from §4.14, applied here
// top-down as the walk descends.
func collectInherited(r Getter, node *Dict, acc *inherited) error {
	if acc.resources == nil {
		if v, ok := node.Get("Resources"); ok {
			res, err := GetDict(r, v)
			if err != nil {
				return err
			}
			acc.resources = res
		}
	}
	if acc.mediaBox == nil {
		if v, ok := node.Get("MediaBox"); ok {
			box, err := GetRectangle(r, v)
			if err != nil {
				return err
			}
			acc.mediaBox = box
		}
	}
	if acc.cropBox == nil {
		if v, ok := node.Get("CropBox"); ok {
			box, err := GetRectangle(r, v)
			if err != nil {
				return err
			}
			acc.cropBox = box
		}
	}
	if !acc.hasRotate {
		if v, ok := node.Get("Rotate"); ok {
			rot, err := GetInteger(r, v)
			if err != nil {
				return err
			}
			acc.rotate = int(rot)
			acc.hasRotate = true
		}
	}
	return nil
}

// Next returns the next Page in document order, or (nil, nil) once the
// tree is exhausted.
func (it *PageIterator) Next() (*Page, error) {
	if it.done {
		return nil, nil
	}
	for len(it.stack) > 0 {
		if len(it.stack) > maxPageTreeDepth {
			return nil, NewError(ErrLimit, 0, fmt.Errorf("page tree nesting exceeds depth %d", maxPageTreeDepth))
		}
		top := &it.stack[len(it.stack)-1]
		if top.idx >= len(top.kids) {
			it.stack = it.stack[:len(it.stack)-1]
			continue
		}
		kidObj := top.kids[top.idx]
		top.idx++

		kidDict, err := GetDict(it.r, kidObj)
		if err != nil {
			return nil, err
		}
		if kidDict == nil {
			continue
		}
		typeObj, _ := kidDict.Get("Type")
		typeName, _ := GetName(it.r, typeObj)

		acc := top.inherit
		if err := collectInherited(it.r, kidDict, &acc); err != nil {
			return nil, err
		}

		if typeName == "Pages" {
			kids, err := kidsOf(it.r, kidDict)
			if err != nil {
				return nil, err
			}
			it.stack = append(it.stack, pageTreeFrame{kids: kids, inherit: acc})
			continue
		}

		rotate := ((acc.rotate % 360) + 360) % 360
		return &Page{
			Dict:      kidDict,
			Resources: acc.resources,
			MediaBox:  acc.mediaBox,
			CropBox:   acc.cropBox,
			Rotate:    rotate,
		}, nil
	}
	it.done = true
	return nil, nil
}

// Pages drains the iterator into a slice, for callers that don't need
// streaming traversal (e.g. the CLI's --page N lookup).
func Pages(r Getter) ([]*Page, error) {
	it, err := NewPageIterator(r)
	if err != nil {
		return nil, err
	}
	var pages []*Page
	for {
		p, err := it.Next()
		if err != nil {
			return nil, err
		}
		if p == nil {
			break
		}
		pages = append(pages, p)
	}
	return pages, nil
}
