package fetchcore

import (
	"bytes"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/hex"
	"fmt"
	"hash"
)

// Digest is a content digest in the common "algorithm:hex" format.
//
// A zero Digest is valid and means "no digest reported".
type Digest struct {
	algo     string
	checksum []byte
}

// Checksum returns the raw digest bytes.
func (d Digest) Checksum() []byte { return d.checksum }

// Algorithm returns the digest algorithm name.
func (d Digest) Algorithm() string { return d.algo }

// IsZero reports whether the Digest is unset.
func (d Digest) IsZero() bool { return d.algo == "" }

// Hash returns a new hash.Hash for the digest's algorithm.
func (d Digest) Hash() (hash.Hash, error) {
	switch d.algo {
	case "sha256":
		return sha256.New(), nil
	case "sha512":
		return sha512.New(), nil
	}
	return nil, fmt.Errorf("unsupported digest algorithm %q", d.algo)
}

func (d Digest) String() string {
	b, _ := d.MarshalText()
	return string(b)
}

// MarshalText implements encoding.TextMarshaler.
func (d Digest) MarshalText() ([]byte, error) {
	el := hex.EncodedLen(len(d.checksum))
	hl := len(d.algo) + 1
	b := make([]byte, hl+el)
	copy(b, d.algo)
	b[len(d.algo)] = ':'
	hex.Encode(b[hl:], d.checksum)
	return b, nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Digest) UnmarshalText(t []byte) error {
	i := bytes.IndexByte(t, ':')
	if i == -1 {
		return fmt.Errorf("invalid digest format")
	}
	d.algo = string(t[:i])
	t = t[i+1:]
	d.checksum = make([]byte, hex.DecodedLen(len(t)))
	if _, err := hex.Decode(d.checksum, t); err != nil {
		return fmt.Errorf("invalid digest format")
	}
	return nil
}

// NewDigest constructs a Digest from an algorithm name and a raw sum.
func NewDigest(algo string, sum []byte) Digest {
	return Digest{
		algo:     algo,
		checksum: sum,
	}
}

// ParseDigest constructs a Digest from its "algorithm:hex" form.
//
// The algorithm must be one the package knows how to compute, so that a
// parsed Digest can always be verified via [Digest.Hash].
func ParseDigest(digest string) (Digest, error) {
	d := Digest{}
	if err := d.UnmarshalText([]byte(digest)); err != nil {
		return Digest{}, err
	}
	if _, err := d.Hash(); err != nil {
		return Digest{}, err
	}
	return d, nil
}
