package graphics

import (
	"fmt"
	"io"

	pdf "pdfreader.dev/go/pdfreader"
	"pdfreader.dev/go/pdfreader/font/pdfenc"
	"pdfreader.dev/go/pdfreader/internal/sfnt"
)

// loadedFont pairs a parsed embedded TrueType program with the
// single-byte code-to-glyph-name table §9.6.6 describes for simple
// fonts, resolving each content-stream character code to a glyph via
// Adobe glyph name -> Unicode rune -> cmap lookup.
type loadedFont struct {
	sfnt     *sfnt.Font
	encoding [256]string
}

// fontCache loads and memoizes the fonts named by a page's /Font
// resource subdictionary, keyed by the resource name used in Tf, so a
// font selected by several Tf operators is parsed once. RenderPage makes
// a new cache for each page, and runForm for each form with /Resources.
type fontCache struct {
	r      pdf.Getter
	loaded map[string]*loadedFont
}

func newFontCache(r pdf.Getter) *fontCache {
	return &fontCache{r: r, loaded: make(map[string]*loadedFont)}
}

// lookup resolves resName against resources's /Font subdictionary,
// loading and caching the font on first use.
func (fc *fontCache) lookup(resources *pdf.Dict, resName string) (*loadedFont, error) {
	if f, ok := fc.loaded[resName]; ok {
		return f, nil
	}
	if resources == nil {
		return nil, fmt.Errorf("graphics: no /Resources for font %q", resName)
	}
	fontsObj, ok := resources.Get("Font")
	if !ok {
		return nil, fmt.Errorf("graphics: /Resources has no /Font subdictionary")
	}
	fontsDict, err := pdf.GetDict(fc.r, fontsObj)
	if err != nil {
		return nil, err
	}
	entryObj, ok := fontsDict.Get(pdf.Name(resName))
	if !ok {
		return nil, fmt.Errorf("graphics: font resource %q not found", resName)
	}
	fontDict, err := pdf.GetDict(fc.r, entryObj)
	if err != nil {
		return nil, err
	}
	f, err := fc.load(fontDict)
	if err != nil {
		return nil, err
	}
	fc.loaded[resName] = f
	return f, nil
}

// load extracts the embedded TrueType program from fontDict's
// /FontDescriptor /FontFile2 stream and builds the code-to-glyph-name
// table from /Encoding (a base-encoding name or a dictionary with
// /BaseEncoding and /Differences), defaulting to StandardEncoding when
// /Encoding is absent, per §9.6.6.2.
func (fc *fontCache) load(fontDict *pdf.Dict) (*loadedFont, error) {
	descObj, ok := fontDict.Get("FontDescriptor")
	if !ok {
		return nil, fmt.Errorf("graphics: font has no /FontDescriptor (only embedded TrueType simple fonts are supported)")
	}
	descDict, err := pdf.GetDict(fc.r, descObj)
	if err != nil {
		return nil, err
	}
	ffObj, ok := descDict.Get("FontFile2")
	if !ok {
		return nil, fmt.Errorf("graphics: font descriptor has no /FontFile2 (embedded TrueType program required; Type1/CFF/OpenType-CFF fonts are out of scope)")
	}
	stm, err := pdf.GetStream(fc.r, ffObj)
	if err != nil {
		return nil, err
	}
	rc, err := pdf.DecodeStream(fc.r, stm, 0)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, err
	}
	font, err := sfnt.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("graphics: parsing embedded font: %w", err)
	}

	lf := &loadedFont{sfnt: font}
	lf.encoding = baseEncodingTable(pdfenc.Standard)
	if encObj, ok := fontDict.Get("Encoding"); ok {
		if err := applyEncoding(fc.r, encObj, &lf.encoding); err != nil {
			return nil, err
		}
	}
	return lf, nil
}

func baseEncodingTable(enc pdfenc.Encoding) [256]string {
	return enc.Encoding
}

// applyEncoding fills table according to a content-stream /Encoding
// entry: either a base encoding name (/WinAnsiEncoding etc.) or a
// dictionary carrying /BaseEncoding and a /Differences array of the
// form [code name code name ...], per §9.6.6.2.
func applyEncoding(r pdf.Getter, obj pdf.Object, table *[256]string) error {
	resolved, err := pdf.Resolve(r, obj)
	if err != nil {
		return err
	}
	switch v := resolved.(type) {
	case pdf.Name:
		*table = baseEncodingByName(string(v))
		return nil
	case *pdf.Dict:
		if baseObj, ok := v.Get("BaseEncoding"); ok {
			base, err := pdf.GetName(r, baseObj)
			if err != nil {
				return err
			}
			*table = baseEncodingByName(string(base))
		}
		diffObj, ok := v.Get("Differences")
		if !ok {
			return nil
		}
		diffs, err := pdf.GetArray(r, diffObj)
		if err != nil {
			return err
		}
		code := 0
		for _, el := range diffs {
			switch d := el.(type) {
			case pdf.Integer:
				code = int(d)
			case pdf.Name:
				if code >= 0 && code < 256 {
					table[code] = string(d)
					code++
				}
			}
		}
		return nil
	default:
		return nil
	}
}

func baseEncodingByName(name string) [256]string {
	switch name {
	case "WinAnsiEncoding":
		return pdfenc.WinAnsi.Encoding
	case "MacRomanEncoding":
		return pdfenc.MacRoman.Encoding
	case "MacExpertEncoding":
		return pdfenc.MacExpert.Encoding
	default:
		return pdfenc.Standard.Encoding
	}
}

// glyphIndexForCode resolves a single-byte character code to a glyph
// index in the font's embedded program via the code's glyph name (from
// /Encoding) and that name's Unicode rune.
func (f *loadedFont) glyphIndexForCode(code byte) (uint16, bool) {
	name := f.encoding[code]
	if name == "" || name == ".notdef" {
		return 0, false
	}
	r, ok := runeForGlyphName(name)
	if !ok {
		return 0, false
	}
	return f.sfnt.GlyphIndex(r)
}
