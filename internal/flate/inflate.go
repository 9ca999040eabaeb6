package flate

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidBlockType  = errors.New("flate: invalid block type")
	ErrStoredLenMismatch = errors.New("flate: stored block LEN/NLEN mismatch")
	ErrBackrefRange      = errors.New("flate: back-reference out of range")
)

// lengthBase / lengthExtraBits implement RFC 1951 §3.2.5's fixed table for
// length codes 257..285 (code 285 has no extra bits and a fixed length of
// 258).
var lengthBase = [...]int{
	3, 4, 5, 6, 7, 8, 9, 10, 11, 13, 15, 17, 19, 23, 27, 31, 35, 43, 51, 59,
	67, 83, 99, 115, 131, 163, 195, 227, 258,
}
var lengthExtraBits = [...]uint{
	0, 0, 0, 0, 0, 0, 0, 0, 1, 1, 1, 1, 2, 2, 2, 2, 3, 3, 3, 3, 4, 4, 4, 4, 5, 5, 5, 5, 0,
}

var distBase = [...]int{
	1, 2, 3, 4, 5, 7, 9, 13, 17, 25, 33, 49, 65, 97, 129, 193, 257, 385, 513,
	769, 1025, 1537, 2049, 3073, 4097, 6145, 8193, 12289, 16385, 24577,
}
var distExtraBits = [...]uint{
	0, 0, 0, 0, 1, 1, 2, 2, 3, 3, 4, 4, 5, 5, 6, 6, 7, 7, 8, 8, 9, 9, 10, 10, 11, 11, 12, 12, 13, 13,
}

// codeLengthOrder is the permutation RFC 1951 §3.2.7 applies to the 19
// code-length alphabet before transmission.
var codeLengthOrder = [...]int{16, 17, 18, 0, 8, 7, 9, 6, 10, 5, 11, 4, 12, 3, 13, 2, 14, 1, 15}

var fixedLitHuffman, fixedDistHuffman *huffman

func init() {
	litLens := make([]int, 288)
	for i := 0; i < 144; i++ {
		litLens[i] = 8
	}
	for i := 144; i < 256; i++ {
		litLens[i] = 9
	}
	for i := 256; i < 280; i++ {
		litLens[i] = 7
	}
	for i := 280; i < 288; i++ {
		litLens[i] = 8
	}
	fixedLitHuffman, _ = newHuffman(litLens)

	distLens := make([]int, 30)
	for i := range distLens {
		distLens[i] = 5
	}
	fixedDistHuffman, _ = newHuffman(distLens)
}

// Inflate decodes a raw DEFLATE (RFC 1951) bit stream, without the zlib
// container, into its uncompressed bytes.
func Inflate(data []byte) ([]byte, error) {
	r := newBitReader(data)
	var out []byte
	for {
		final, err := r.readBit()
		if err != nil {
			return nil, err
		}
		btype, err := r.readBits(2)
		if err != nil {
			return nil, err
		}
		switch btype {
		case 0:
			out, err = inflateStored(r, out)
		case 1:
			out, err = inflateBlock(r, out, fixedLitHuffman, fixedDistHuffman)
		case 2:
			var lit, dist *huffman
			lit, dist, err = readDynamicTables(r)
			if err == nil {
				out, err = inflateBlock(r, out, lit, dist)
			}
		default:
			err = ErrInvalidBlockType
		}
		if err != nil {
			return nil, err
		}
		if final == 1 {
			break
		}
	}
	return out, nil
}

func inflateStored(r *bitReader, out []byte) ([]byte, error) {
	r.alignByte()
	lenLo, err := r.readByte()
	if err != nil {
		return nil, err
	}
	lenHi, err := r.readByte()
	if err != nil {
		return nil, err
	}
	nlenLo, err := r.readByte()
	if err != nil {
		return nil, err
	}
	nlenHi, err := r.readByte()
	if err != nil {
		return nil, err
	}
	length := int(lenLo) | int(lenHi)<<8
	nlength := int(nlenLo) | int(nlenHi)<<8
	if length != nlength^0xFFFF {
		return nil, ErrStoredLenMismatch
	}
	for i := 0; i < length; i++ {
		b, err := r.readByte()
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, nil
}

func inflateBlock(r *bitReader, out []byte, lit, dist *huffman) ([]byte, error) {
	for {
		sym, err := lit.decode(r)
		if err != nil {
			return nil, err
		}
		if sym < 256 {
			out = append(out, byte(sym))
			continue
		}
		if sym == 256 {
			return out, nil
		}
		li := sym - 257
		if li >= len(lengthBase) {
			return nil, ErrInvalidSymbol
		}
		extra, err := r.readBits(lengthExtraBits[li])
		if err != nil {
			return nil, err
		}
		length := lengthBase[li] + int(extra)

		dsym, err := dist.decode(r)
		if err != nil {
			return nil, err
		}
		if dsym >= len(distBase) {
			return nil, ErrInvalidSymbol
		}
		dextra, err := r.readBits(distExtraBits[dsym])
		if err != nil {
			return nil, err
		}
		distance := distBase[dsym] + int(dextra)

		if distance > len(out) {
			return nil, ErrBackrefRange
		}
		start := len(out) - distance
		for i := 0; i < length; i++ {
			out = append(out, out[start+i])
		}
	}
}

func readDynamicTables(r *bitReader) (lit, dist *huffman, err error) {
	hlit, err := r.readBits(5)
	if err != nil {
		return nil, nil, err
	}
	hdist, err := r.readBits(5)
	if err != nil {
		return nil, nil, err
	}
	hclen, err := r.readBits(4)
	if err != nil {
		return nil, nil, err
	}
	nlit := int(hlit) + 257
	ndist := int(hdist) + 1
	nclen := int(hclen) + 4

	clLengths := make([]int, 19)
	for i := 0; i < nclen; i++ {
		v, err := r.readBits(3)
		if err != nil {
			return nil, nil, err
		}
		clLengths[codeLengthOrder[i]] = int(v)
	}
	clHuff, err := newHuffman(clLengths)
	if err != nil {
		return nil, nil, err
	}

	allLengths := make([]int, nlit+ndist)
	i := 0
	for i < len(allLengths) {
		sym, err := clHuff.decode(r)
		if err != nil {
			return nil, nil, err
		}
		switch {
		case sym < 16:
			allLengths[i] = sym
			i++
		case sym == 16:
			if i == 0 {
				return nil, nil, fmt.Errorf("flate: repeat code with no previous length")
			}
			rep, err := r.readBits(2)
			if err != nil {
				return nil, nil, err
			}
			prev := allLengths[i-1]
			for n := 0; n < int(rep)+3; n++ {
				if i >= len(allLengths) {
					return nil, nil, ErrInvalidSymbol
				}
				allLengths[i] = prev
				i++
			}
		case sym == 17:
			rep, err := r.readBits(3)
			if err != nil {
				return nil, nil, err
			}
			for n := 0; n < int(rep)+3; n++ {
				if i >= len(allLengths) {
					return nil, nil, ErrInvalidSymbol
				}
				allLengths[i] = 0
				i++
			}
		case sym == 18:
			rep, err := r.readBits(7)
			if err != nil {
				return nil, nil, err
			}
			for n := 0; n < int(rep)+11; n++ {
				if i >= len(allLengths) {
					return nil, nil, ErrInvalidSymbol
				}
				allLengths[i] = 0
				i++
			}
		default:
			return nil, nil, ErrInvalidSymbol
		}
	}

	lit, err = newHuffman(allLengths[:nlit])
	if err != nil {
		return nil, nil, err
	}
	dist, err = newHuffman(allLengths[nlit:])
	if err != nil {
		return nil, nil, err
	}
	return lit, dist, nil
}
