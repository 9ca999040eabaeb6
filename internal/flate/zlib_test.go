package flate

import (
	"bytes"
	"testing"
)

func TestZlibRoundTrip(t *testing.T) {
	cases := [][]byte{
		nil,
		[]byte("Hello, world!"),
		bytes.Repeat([]byte("A"), 70000),
		[]byte(""),
	}
	for _, want := range cases {
		enc := EncodeZlibStored(want)
		got, err := DecodeZlib(enc)
		if err != nil {
			t.Fatalf("DecodeZlib: %v", err)
		}
		if !bytes.Equal(got, want) {
			t.Errorf("round trip mismatch: got %q want %q", got, want)
		}
	}
}

func TestZlibBadChecksum(t *testing.T) {
	enc := EncodeZlibStored([]byte("Hello, world!"))
	corrupt := append([]byte{}, enc...)
	corrupt[len(corrupt)-1] ^= 0xFF
	_, err := DecodeZlib(corrupt)
	if err != ErrChecksumMismatch {
		t.Fatalf("expected checksum mismatch, got %v", err)
	}
}

func TestZlibBadHeader(t *testing.T) {
	_, err := DecodeZlib([]byte{0x78, 0x00, 0, 0, 0, 0})
	if err != ErrBadHeader {
		t.Fatalf("expected header error, got %v", err)
	}
}

func TestAdler32KnownValue(t *testing.T) {
	// "Wikipedia" -> 0x11E60398 is the textbook Adler-32 reference value.
	got := adler32([]byte("Wikipedia"))
	if got != 0x11E60398 {
		t.Fatalf("adler32(%q) = %#x, want 0x11e60398", "Wikipedia", got)
	}
}
