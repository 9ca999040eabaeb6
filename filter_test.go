package pdf

import (
	"io"
	"testing"

	"pdfreader.dev/go/pdfreader/internal/flate"
)

func TestAsciiHexFilterDecode(t *testing.T) {
	f := asciiHexFilter{}
	r, err := f.Decode(stringsReader("48656C6C6F>"))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	got, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if string(got) != "Hello" {
		t.Errorf("got %q, want %q", got, "Hello")
	}
}

func TestAsciiHexFilterOddDigitsPadded(t *testing.T) {
	f := asciiHexFilter{}
	r, err := f.Decode(stringsReader("48656C6C6>"))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	got, _ := io.ReadAll(r)
	if string(got) != "Hell`" {
		t.Errorf("got %q", got)
	}
}

func TestFlateFilterDecode(t *testing.T) {
	want := []byte("the quick brown fox")
	enc := flate.EncodeZlibStored(want)
	ff := ffFromDict(nil)
	r, err := ff.Decode(byteSliceReaderForTest(enc))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	got, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if string(got) != string(want) {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestFfFromDictReadsPredictorParams(t *testing.T) {
	d := NewDict()
	d.Set("Predictor", Integer(12))
	d.Set("Columns", Integer(4))
	ff := ffFromDict(d)
	if ff.Predictor != 12 || ff.Columns != 4 {
		t.Errorf("got %+v, want Predictor=12 Columns=4", ff)
	}
}

func stringsReader(s string) io.Reader { return byteSliceReaderForTest([]byte(s)) }

func byteSliceReaderForTest(b []byte) io.Reader { return byteSliceReader(b) }
