package httpsource

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"hash"
	"io"

	"github.com/fetchcore/fetchcore"
)

// VerifyReader tees the transport stream into the digest's hash and checks
// the sum once the stream is exhausted.
//
// Verification is best-effort: a consumer that stops reading before EOF never
// triggers the check.
type verifyReader struct {
	r    io.Reader
	c    io.Closer
	h    hash.Hash
	want []byte
	done bool
}

func newVerifyReader(rc io.ReadCloser, d fetchcore.Digest) (*verifyReader, error) {
	h, err := d.Hash()
	if err != nil {
		return nil, err
	}
	return &verifyReader{
		r:    io.TeeReader(rc, h),
		c:    rc,
		h:    h,
		want: d.Checksum(),
	}, nil
}

func (v *verifyReader) Read(p []byte) (int, error) {
	n, err := v.r.Read(p)
	if err == io.EOF && !v.done {
		v.done = true
		if got := v.h.Sum(nil); !bytes.Equal(got, v.want) {
			return n, &fetchcore.Error{
				Kind: fetchcore.ErrTransport,
				Op:   "httpsource/Source.Fetch",
				Message: fmt.Sprintf("content digest mismatch: got %q, expected %q",
					hex.EncodeToString(got),
					hex.EncodeToString(v.want)),
			}
		}
	}
	return n, err
}

func (v *verifyReader) Close() error { return v.c.Close() }
