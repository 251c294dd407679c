// Package zreader implements transparent decompression of byte streams.
//
// Feeds aren't always consistent about announcing how an artifact payload is
// compressed, so the compression scheme is sniffed from the stream's leading
// magic bytes instead of trusted from metadata.
package zreader

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/ulikunitz/xz"
)

// Compression is an enumeration of the compression schemes Reader understands.
type Compression int

const (
	KindNone Compression = iota
	KindGzip
	KindZstd
	KindXz
)

var cmpHeaders = []struct {
	magic []byte
	kind  Compression
}{
	{[]byte{0x1F, 0x8B, 0x08}, KindGzip},
	{[]byte{0x28, 0xB5, 0x2F, 0xFD}, KindZstd},
	{[]byte{0xFD, 0x37, 0x7A, 0x58, 0x5A, 0x00}, KindXz},
}

// Detect reports the compression scheme indicated by the leading bytes of b.
func Detect(b []byte) Compression {
	for _, h := range cmpHeaders {
		if len(b) < len(h.magic) {
			continue
		}
		if bytes.Equal(h.magic, b[:len(h.magic)]) {
			return h.kind
		}
	}
	return KindNone
}

// Reader wraps rc in a decompressor if its leading bytes announce a known
// compression scheme, and passes it through untouched otherwise.
//
// Reader takes ownership of rc: closing the returned stream closes rc, and on
// an error return rc has already been closed.
func Reader(rc io.ReadCloser) (io.ReadCloser, error) {
	br := bufio.NewReader(rc)
	b, err := br.Peek(6)
	if err != nil && !errors.Is(err, io.EOF) {
		rc.Close()
		return nil, fmt.Errorf("zreader: unable to sniff stream: %w", err)
	}
	switch k := Detect(b); k {
	case KindGzip:
		z, err := gzip.NewReader(br)
		if err != nil {
			rc.Close()
			return nil, fmt.Errorf("zreader: %w", err)
		}
		return &reader{z: z, under: rc}, nil
	case KindZstd:
		z, err := zstd.NewReader(br)
		if err != nil {
			rc.Close()
			return nil, fmt.Errorf("zreader: %w", err)
		}
		return &reader{z: z.IOReadCloser(), under: rc}, nil
	case KindXz:
		z, err := xz.NewReader(br)
		if err != nil {
			rc.Close()
			return nil, fmt.Errorf("zreader: %w", err)
		}
		return &reader{z: io.NopCloser(z), under: rc}, nil
	case KindNone:
		return &reader{z: io.NopCloser(br), under: rc}, nil
	default:
		panic(fmt.Sprintf("programmer error: unknown compression: %v", k))
	}
}

// Reader closes both the decompressor and the transport stream it wraps.
type reader struct {
	z     io.ReadCloser
	under io.Closer
}

func (r *reader) Read(p []byte) (int, error) { return r.z.Read(p) }

func (r *reader) Close() error {
	err := r.z.Close()
	if e := r.under.Close(); e != nil {
		if err == nil {
			err = e
		} else {
			err = fmt.Errorf("%v; %v", err, e)
		}
	}
	return err
}
