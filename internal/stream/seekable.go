// Package stream provides byte-stream normalization helpers.
package stream

import (
	"bytes"
	"context"
	"fmt"
	"io"
)

// EnsureSeekable returns a stream with the same contents as rc that supports
// seeking, positioned at the start.
//
// If rc already seeks, it is rewound and returned unchanged, with no copy
// made. Otherwise the entire contents are copied into memory and a reader
// over the copy is returned.
//
// EnsureSeekable takes ownership of rc: on any error return, and whenever a
// copy was made, rc has been closed. Cancelling ctx mid-copy abandons the
// copy and returns the context's cause.
func EnsureSeekable(ctx context.Context, rc io.ReadCloser) (io.ReadSeekCloser, error) {
	if s, ok := rc.(io.ReadSeekCloser); ok {
		if _, err := s.Seek(0, io.SeekStart); err != nil {
			rc.Close()
			return nil, fmt.Errorf("stream: unable to rewind: %w", err)
		}
		return s, nil
	}
	// The close must happen whether the copy succeeds or not.
	defer rc.Close()
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, contextReader{ctx: ctx, r: rc}); err != nil {
		return nil, fmt.Errorf("stream: unable to buffer contents: %w", err)
	}
	return nopCloser{bytes.NewReader(buf.Bytes())}, nil
}

// ContextReader cancels reads once its context is done.
type contextReader struct {
	ctx context.Context
	r   io.Reader
}

func (c contextReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, context.Cause(c.ctx)
	}
	return c.r.Read(p)
}

// NopCloser adds a no-op Close to a bytes.Reader.
type nopCloser struct {
	*bytes.Reader
}

func (nopCloser) Close() error { return nil }
