// Package flate implements the zlib (RFC 1950) container over a DEFLATE
// (RFC 1951) bit stream from scratch: Huffman table construction, LZ77
// back-reference copying and Adler-32 validation, without depending on
// compress/zlib or compress/flate. This is the one component the teacher
// delegates to the standard library that the specification for this
// reader requires built by hand, so every algorithmic piece here is
// original rather than grounded on teacher source.
package flate

const adlerMod = 65521

// adler32 computes the Adler-32 checksum of data per RFC 1950 §8.
func adler32(data []byte) uint32 {
	var a, b uint32 = 1, 0
	const nmax = 5552 // largest n such that 255*n*(n+1)/2 + (n+1)*(mod-1) <= 2^32-1
	i := 0
	for i < len(data) {
		end := i + nmax
		if end > len(data) {
			end = len(data)
		}
		for _, c := range data[i:end] {
			a += uint32(c)
			b += a
		}
		a %= adlerMod
		b %= adlerMod
		i = end
	}
	return b<<16 | a
}
