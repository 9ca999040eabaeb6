// Package sfnt implements a minimal SFNT/TrueType font reader: the
// table directory, the head/cmap/hhea/hmtx/loca/glyf tables needed to
// look up a glyph id for a character code and turn its outline into a
// path, and per-table checksum validation. Compound glyphs are out of
// scope. Grounded on the embedded-font reader's public surface
// (SfntFontDirectory, SfntHead, SfntGlyph, sfnt_font_new,
// sfnt_get_glyph_for_cid/gid) in sfnt.h/glyph.h; the directory-parse and
// glyph-outline-decode bodies are written fresh against the SFNT/OpenType
// table format those headers describe, since no .c implementation was
// available to port from directly.
package sfnt

import (
	"encoding/binary"
	"fmt"

	"pdfreader.dev/go/pdfreader/internal/geom"
	"pdfreader.dev/go/pdfreader/internal/path"
)

const (
	tagTrueType = 0x00010000
	tagOTTO     = 0x4F54544F // "OTTO"
)

type tableEntry struct {
	tag      uint32
	checksum uint32
	offset   uint32
	length   uint32
}

// Font is a parsed SFNT font: the table directory plus the decoded
// head/hhea/maxp/cmap/loca tables needed for glyph lookup, and the raw
// glyf table bytes for on-demand outline decoding.
type Font struct {
	data    []byte
	tables  map[string]tableEntry
	Head    Head
	unitsPerEm uint16
	numGlyphs  int
	longLoca   bool
	loca       []uint32
	cmap       map[rune]uint16
	hmtx       []longHorMetric
	numHMetrics int
}

// Head mirrors the 'head' table fields callers need (units_per_em and
// bounding box, mainly).
type Head struct {
	UnitsPerEm       uint16
	XMin, YMin       int16
	XMax, YMax       int16
	IndexToLocFormat int16
}

type longHorMetric struct {
	AdvanceWidth uint16
	LSB          int16
}

// Parse reads a complete SFNT font image.
func Parse(data []byte) (*Font, error) {
	if len(data) < 12 {
		return nil, fmt.Errorf("sfnt: file too short")
	}
	scalarType := binary.BigEndian.Uint32(data[0:4])
	if scalarType != tagTrueType && scalarType != tagOTTO {
		return nil, fmt.Errorf("sfnt: unrecognized scalar type %#x", scalarType)
	}
	numTables := int(binary.BigEndian.Uint16(data[4:6]))

	f := &Font{data: data, tables: make(map[string]tableEntry, numTables)}

	pos := 12
	for i := 0; i < numTables; i++ {
		if pos+16 > len(data) {
			return nil, fmt.Errorf("sfnt: truncated table directory")
		}
		tag := data[pos : pos+4]
		entry := tableEntry{
			tag:      binary.BigEndian.Uint32(tag),
			checksum: binary.BigEndian.Uint32(data[pos+4 : pos+8]),
			offset:   binary.BigEndian.Uint32(data[pos+8 : pos+12]),
			length:   binary.BigEndian.Uint32(data[pos+12 : pos+16]),
		}
		f.tables[string(tag)] = entry
		pos += 16
	}

	for _, required := range []string{"head", "cmap", "hhea", "hmtx", "loca", "glyf"} {
		if _, ok := f.tables[required]; !ok {
			return nil, fmt.Errorf("sfnt: missing required table %q", required)
		}
	}

	if err := f.verifyChecksums(); err != nil {
		return nil, err
	}
	if err := f.parseHead(); err != nil {
		return nil, err
	}
	if err := f.parseMaxp(); err != nil {
		return nil, err
	}
	if err := f.parseHhea(); err != nil {
		return nil, err
	}
	if err := f.parseHmtx(); err != nil {
		return nil, err
	}
	if err := f.parseLoca(); err != nil {
		return nil, err
	}
	if err := f.parseCmap(); err != nil {
		return nil, err
	}
	return f, nil
}

func checksumTable(b []byte) uint32 {
	var sum uint32
	for i := 0; i+4 <= len(b); i += 4 {
		sum += binary.BigEndian.Uint32(b[i : i+4])
	}
	if rem := len(b) % 4; rem != 0 {
		var last [4]byte
		copy(last[:], b[len(b)-rem:])
		sum += binary.BigEndian.Uint32(last[:])
	}
	return sum
}

// verifyChecksums validates every table's stored checksum against the
// bytes actually present, zeroing 'head's checkSumAdjustment field
// first since that field is excluded from its own table's checksum by
// definition.
func (f *Font) verifyChecksums() error {
	for name, e := range f.tables {
		if int(e.offset+e.length) > len(f.data) {
			return fmt.Errorf("sfnt: table %q out of bounds", name)
		}
		raw := f.data[e.offset : e.offset+e.length]
		if name == "head" {
			tmp := make([]byte, len(raw))
			copy(tmp, raw)
			if len(tmp) >= 12 {
				binary.BigEndian.PutUint32(tmp[8:12], 0)
			}
			raw = tmp
		}
		if checksumTable(raw) != e.checksum {
			return fmt.Errorf("sfnt: checksum mismatch in table %q", name)
		}
	}
	return nil
}

func (f *Font) table(name string) ([]byte, error) {
	e, ok := f.tables[name]
	if !ok {
		return nil, fmt.Errorf("sfnt: no %q table", name)
	}
	if int(e.offset+e.length) > len(f.data) {
		return nil, fmt.Errorf("sfnt: table %q out of bounds", name)
	}
	return f.data[e.offset : e.offset+e.length], nil
}

func (f *Font) parseHead() error {
	b, err := f.table("head")
	if err != nil {
		return err
	}
	if len(b) < 54 {
		return fmt.Errorf("sfnt: head table too short")
	}
	f.Head = Head{
		UnitsPerEm:       binary.BigEndian.Uint16(b[18:20]),
		XMin:             int16(binary.BigEndian.Uint16(b[36:38])),
		YMin:             int16(binary.BigEndian.Uint16(b[38:40])),
		XMax:             int16(binary.BigEndian.Uint16(b[40:42])),
		YMax:             int16(binary.BigEndian.Uint16(b[42:44])),
		IndexToLocFormat: int16(binary.BigEndian.Uint16(b[50:52])),
	}
	f.unitsPerEm = f.Head.UnitsPerEm
	f.longLoca = f.Head.IndexToLocFormat != 0
	return nil
}

func (f *Font) parseMaxp() error {
	b, err := f.table("maxp")
	if err != nil {
		return nil // maxp isn't in the strictly-required list; default below
	}
	if len(b) < 6 {
		return fmt.Errorf("sfnt: maxp table too short")
	}
	f.numGlyphs = int(binary.BigEndian.Uint16(b[4:6]))
	return nil
}

func (f *Font) parseHhea() error {
	b, err := f.table("hhea")
	if err != nil {
		return err
	}
	if len(b) < 36 {
		return fmt.Errorf("sfnt: hhea table too short")
	}
	f.numHMetrics = int(binary.BigEndian.Uint16(b[34:36]))
	return nil
}

func (f *Font) parseHmtx() error {
	b, err := f.table("hmtx")
	if err != nil {
		return err
	}
	n := f.numHMetrics
	if n*4 > len(b) {
		return fmt.Errorf("sfnt: hmtx table too short")
	}
	f.hmtx = make([]longHorMetric, n)
	for i := 0; i < n; i++ {
		f.hmtx[i] = longHorMetric{
			AdvanceWidth: binary.BigEndian.Uint16(b[i*4 : i*4+2]),
			LSB:          int16(binary.BigEndian.Uint16(b[i*4+2 : i*4+4])),
		}
	}
	return nil
}

func (f *Font) parseLoca() error {
	b, err := f.table("loca")
	if err != nil {
		return err
	}
	if f.longLoca {
		n := len(b) / 4
		f.loca = make([]uint32, n)
		for i := 0; i < n; i++ {
			f.loca[i] = binary.BigEndian.Uint32(b[i*4 : i*4+4])
		}
	} else {
		n := len(b) / 2
		f.loca = make([]uint32, n)
		for i := 0; i < n; i++ {
			f.loca[i] = uint32(binary.BigEndian.Uint16(b[i*2:i*2+2])) * 2
		}
	}
	return nil
}

// parseCmap reads the 'cmap' table's format-4 subtable, preferring
// platform/encoding (3,1) Windows-Unicode, then (0,3), then any (3,x).
func (f *Font) parseCmap() error {
	b, err := f.table("cmap")
	if err != nil {
		return err
	}
	if len(b) < 4 {
		return fmt.Errorf("sfnt: cmap table too short")
	}
	numSubtables := int(binary.BigEndian.Uint16(b[2:4]))

	type candidate struct {
		platform, encoding uint16
		offset             uint32
	}
	var candidates []candidate
	for i := 0; i < numSubtables; i++ {
		pos := 4 + i*8
		if pos+8 > len(b) {
			return fmt.Errorf("sfnt: truncated cmap subtable record")
		}
		candidates = append(candidates, candidate{
			platform: binary.BigEndian.Uint16(b[pos : pos+2]),
			encoding: binary.BigEndian.Uint16(b[pos+2 : pos+4]),
			offset:   binary.BigEndian.Uint32(b[pos+4 : pos+8]),
		})
	}

	pick := func(plat, enc uint16) (uint32, bool) {
		for _, c := range candidates {
			if c.platform == plat && c.encoding == enc {
				return c.offset, true
			}
		}
		return 0, false
	}

	offset, ok := pick(3, 1)
	if !ok {
		offset, ok = pick(0, 3)
	}
	if !ok {
		for _, c := range candidates {
			if c.platform == 3 {
				offset, ok = c.offset, true
				break
			}
		}
	}
	if !ok {
		return fmt.Errorf("sfnt: no usable cmap subtable found")
	}

	if int(offset)+2 > len(b) {
		return fmt.Errorf("sfnt: cmap subtable offset out of bounds")
	}
	format := binary.BigEndian.Uint16(b[offset : offset+2])
	if format != 4 {
		return fmt.Errorf("sfnt: only cmap format 4 is supported, got format %d", format)
	}
	return f.parseCmapFormat4(b[offset:])
}

func (f *Font) parseCmapFormat4(b []byte) error {
	if len(b) < 14 {
		return fmt.Errorf("sfnt: format-4 cmap subtable too short")
	}
	segCountX2 := int(binary.BigEndian.Uint16(b[6:8]))
	segCount := segCountX2 / 2

	endCodeOff := 14
	startCodeOff := endCodeOff + segCountX2 + 2
	idDeltaOff := startCodeOff + segCountX2
	idRangeOff := idDeltaOff + segCountX2
	glyphIDOff := idRangeOff + segCountX2

	f.cmap = make(map[rune]uint16)
	for seg := 0; seg < segCount; seg++ {
		end := binary.BigEndian.Uint16(b[endCodeOff+seg*2:])
		start := binary.BigEndian.Uint16(b[startCodeOff+seg*2:])
		delta := int16(binary.BigEndian.Uint16(b[idDeltaOff+seg*2:]))
		idRange := binary.BigEndian.Uint16(b[idRangeOff+seg*2:])

		if start == 0xFFFF && end == 0xFFFF {
			continue
		}
		for code := uint32(start); code <= uint32(end) && code != 0x10000; code++ {
			var gid uint16
			if idRange == 0 {
				gid = uint16(int32(code) + int32(delta))
			} else {
				glyphIndexAddr := idRangeOff + seg*2 + int(idRange) + int(code-uint32(start))*2
				if glyphIndexAddr+2 > len(b) {
					continue
				}
				g := binary.BigEndian.Uint16(b[glyphIndexAddr:])
				if g != 0 {
					gid = uint16(int32(g) + int32(delta))
				}
			}
			if gid != 0 {
				f.cmap[rune(code)] = gid
			}
			if code == 0xFFFF {
				break
			}
		}
	}
	_ = glyphIDOff
	return nil
}

// GlyphIndex looks up the glyph id for a Unicode code point via the
// parsed cmap.
func (f *Font) GlyphIndex(r rune) (uint16, bool) {
	gid, ok := f.cmap[r]
	return gid, ok
}

// AdvanceWidth returns gid's advance width in font units, per the hmtx
// table's "last entry applies to all subsequent glyphs" convention.
func (f *Font) AdvanceWidth(gid uint16) uint16 {
	if len(f.hmtx) == 0 {
		return 0
	}
	if int(gid) < len(f.hmtx) {
		return f.hmtx[gid].AdvanceWidth
	}
	return f.hmtx[len(f.hmtx)-1].AdvanceWidth
}

// UnitsPerEm returns the font's design grid resolution.
func (f *Font) UnitsPerEm() uint16 { return f.unitsPerEm }

// GlyphOutline decodes gid's simple-glyph outline into a Path in font
// design units. Compound glyphs return an error; see DESIGN.md.
func (f *Font) GlyphOutline(gid uint16) (path.Path, error) {
	if int(gid)+1 >= len(f.loca) {
		return nil, fmt.Errorf("sfnt: glyph index %d out of range", gid)
	}
	start, end := f.loca[gid], f.loca[gid+1]
	if start == end {
		return path.Path{}, nil // empty glyph (e.g. space)
	}
	glyf, err := f.table("glyf")
	if err != nil {
		return nil, err
	}
	if int(end) > len(glyf) {
		return nil, fmt.Errorf("sfnt: glyf data out of bounds")
	}
	data := glyf[start:end]
	return decodeSimpleGlyph(data)
}

func decodeSimpleGlyph(b []byte) (path.Path, error) {
	if len(b) < 10 {
		return nil, fmt.Errorf("sfnt: glyph header too short")
	}
	numContours := int16(binary.BigEndian.Uint16(b[0:2]))
	if numContours < 0 {
		return nil, fmt.Errorf("sfnt: compound glyphs are not supported")
	}

	pos := 10
	endPts := make([]uint16, numContours)
	for i := range endPts {
		endPts[i] = binary.BigEndian.Uint16(b[pos:])
		pos += 2
	}
	numPoints := 0
	if numContours > 0 {
		numPoints = int(endPts[numContours-1]) + 1
	}

	instrLen := int(binary.BigEndian.Uint16(b[pos:]))
	pos += 2 + instrLen

	flags := make([]byte, numPoints)
	for i := 0; i < numPoints; {
		flag := b[pos]
		pos++
		flags[i] = flag
		i++
		if flag&0x08 != 0 { // REPEAT_FLAG
			repeat := int(b[pos])
			pos++
			for r := 0; r < repeat && i < numPoints; r++ {
				flags[i] = flag
				i++
			}
		}
	}

	xs := make([]int, numPoints)
	x := 0
	for i := 0; i < numPoints; i++ {
		flag := flags[i]
		switch {
		case flag&0x02 != 0: // X_SHORT
			dx := int(b[pos])
			pos++
			if flag&0x10 == 0 { // sign bit clear -> negative
				dx = -dx
			}
			x += dx
		case flag&0x10 == 0: // neither short nor "same" -> 16-bit delta
			dx := int(int16(binary.BigEndian.Uint16(b[pos:])))
			pos += 2
			x += dx
		}
		xs[i] = x
	}

	ys := make([]int, numPoints)
	y := 0
	for i := 0; i < numPoints; i++ {
		flag := flags[i]
		switch {
		case flag&0x04 != 0: // Y_SHORT
			dy := int(b[pos])
			pos++
			if flag&0x20 == 0 {
				dy = -dy
			}
			y += dy
		case flag&0x20 == 0:
			dy := int(int16(binary.BigEndian.Uint16(b[pos:])))
			pos += 2
			y += dy
		}
		ys[i] = y
	}

	var b2 path.Builder
	start := 0
	for c := 0; c < int(numContours); c++ {
		end := int(endPts[c])
		contourOnCurve := make([]bool, 0, end-start+1)
		contourPts := make([]geom.Vec2, 0, end-start+1)
		for i := start; i <= end; i++ {
			contourOnCurve = append(contourOnCurve, flags[i]&0x01 != 0)
			contourPts = append(contourPts, geom.Vec2{X: float64(xs[i]), Y: float64(ys[i])})
		}
		emitContour(&b2, contourPts, contourOnCurve)
		start = end + 1
	}
	return b2.Path, nil
}

// emitContour turns a cyclic sequence of (possibly off-curve) points
// into move/line/quad-bezier segments, inserting the implied on-curve
// midpoint between any two consecutive off-curve points.
func emitContour(b *path.Builder, pts []geom.Vec2, onCurve []bool) {
	n := len(pts)
	if n == 0 {
		return
	}

	// Rotate to start on an on-curve point if one exists; otherwise
	// synthesize one as the midpoint of the first and last points.
	startIdx := -1
	for i, oc := range onCurve {
		if oc {
			startIdx = i
			break
		}
	}
	var startPt geom.Vec2
	if startIdx < 0 {
		startPt = pts[0].Add(pts[n-1]).Scale(0.5)
		startIdx = 0
	} else {
		startPt = pts[startIdx]
	}

	b.MoveTo(startPt)
	var pendingCtrl *geom.Vec2

	for k := 1; k <= n; k++ {
		i := (startIdx + k) % n
		pt := pts[i]
		oc := onCurve[i]
		if oc {
			if pendingCtrl != nil {
				b.QuadBezierTo(*pendingCtrl, pt)
				pendingCtrl = nil
			} else {
				b.LineTo(pt)
			}
		} else {
			if pendingCtrl != nil {
				mid := pendingCtrl.Add(pt).Scale(0.5)
				b.QuadBezierTo(*pendingCtrl, mid)
			}
			ctrl := pt
			pendingCtrl = &ctrl
		}
	}
	if pendingCtrl != nil {
		b.QuadBezierTo(*pendingCtrl, startPt)
	}
	b.ClosePath()
}
