// Package pdf implements a from-scratch PDF reader: lexer, cross-reference
// resolver, declarative deserializer, and the page tree walk that feeds a
// page's content stream to the renderer in the sibling content, function
// and graphics packages.
//
// Open parses an existing PDF byte stream into a Resolver for reading:
//
//	r, err := pdf.Open(data)
//	if err != nil {
//		log.Fatal(err)
//	}
//	catalog, err := pdf.ExtractCatalog(r, r.GetMeta().Catalog)
//
// The following types implement the [Object] interface and together form
// the PDF object model: Array, Boolean, *Dict, Integer, Name, Real,
// Reference, IndirectObject, *Stream, String, and the NullObject singleton.
package pdf
