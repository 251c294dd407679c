package zreader

import (
	"bytes"
	"io"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/ulikunitz/xz"
)

var payload = []byte("transparently decompressed artifact payload")

type zTestcase struct {
	Name     string
	Compress func(t *testing.T, b []byte) []byte
	Kind     Compression
}

func (tc zTestcase) Run(t *testing.T) {
	in := tc.Compress(t, payload)
	if got, want := Detect(in), tc.Kind; got != want {
		t.Errorf("Detect: got: %v, want: %v", got, want)
	}
	r, err := Reader(io.NopCloser(bytes.NewReader(in)))
	if err != nil {
		t.Fatal(err)
	}
	defer func() {
		if err := r.Close(); err != nil {
			t.Error(err)
		}
	}()
	got, err := io.ReadAll(r)
	if err != nil {
		t.Fatal(err)
	}
	if !cmp.Equal(got, payload) {
		t.Error(cmp.Diff(got, payload))
	}
}

func TestReader(t *testing.T) {
	tt := []zTestcase{
		{
			Name: "None",
			Compress: func(_ *testing.T, b []byte) []byte {
				return b
			},
			Kind: KindNone,
		},
		{
			Name: "Gzip",
			Compress: func(t *testing.T, b []byte) []byte {
				var buf bytes.Buffer
				w := gzip.NewWriter(&buf)
				if _, err := w.Write(b); err != nil {
					t.Fatal(err)
				}
				if err := w.Close(); err != nil {
					t.Fatal(err)
				}
				return buf.Bytes()
			},
			Kind: KindGzip,
		},
		{
			Name: "Zstd",
			Compress: func(t *testing.T, b []byte) []byte {
				var buf bytes.Buffer
				w, err := zstd.NewWriter(&buf)
				if err != nil {
					t.Fatal(err)
				}
				if _, err := w.Write(b); err != nil {
					t.Fatal(err)
				}
				if err := w.Close(); err != nil {
					t.Fatal(err)
				}
				return buf.Bytes()
			},
			Kind: KindZstd,
		},
		{
			Name: "Xz",
			Compress: func(t *testing.T, b []byte) []byte {
				var buf bytes.Buffer
				w, err := xz.NewWriter(&buf)
				if err != nil {
					t.Fatal(err)
				}
				if _, err := w.Write(b); err != nil {
					t.Fatal(err)
				}
				if err := w.Close(); err != nil {
					t.Fatal(err)
				}
				return buf.Bytes()
			},
			Kind: KindXz,
		},
	}

	for _, tc := range tt {
		t.Run(tc.Name, tc.Run)
	}
}

func TestReaderShortStream(t *testing.T) {
	// Streams shorter than any magic number pass through untouched.
	r, err := Reader(io.NopCloser(bytes.NewReader([]byte("ab"))))
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()
	got, err := io.ReadAll(r)
	if err != nil {
		t.Fatal(err)
	}
	if want := []byte("ab"); !cmp.Equal(got, want) {
		t.Error(cmp.Diff(got, want))
	}
}
