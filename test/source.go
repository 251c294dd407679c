// Package test contains shared fakes for exercising fetchcore retrieval.
package test

import (
	"bytes"
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fetchcore/fetchcore"
)

var (
	_ fetchcore.Source  = PlainSource("")
	_ fetchcore.Fetcher = (*PayloadSource)(nil)
	_ fetchcore.Fetcher = (*StallSource)(nil)
	_ fetchcore.Fetcher = (*ErrSource)(nil)
	_ fetchcore.Fetcher = (*EmptySource)(nil)
)

// PlainSource is a Source with no retrieval capability.
type PlainSource string

// Name implements fetchcore.Source.
func (s PlainSource) Name() string { return string(s) }

// PayloadSource is a Fetcher that serves a fixed byte payload, optionally
// after a delay.
//
// Every payload stream handed out is tracked, so tests can assert that
// discarded results were actually released.
type PayloadSource struct {
	N     string
	Delay time.Duration
	Data  []byte
	// Seekable makes the source hand out streams that already support
	// seeking, so retrieval won't buffer (and close) them.
	Seekable bool

	mu      sync.Mutex
	streams []*Stream
	fetches int
}

// Name implements fetchcore.Source.
func (s *PayloadSource) Name() string { return s.N }

// Fetch implements fetchcore.Fetcher.
func (s *PayloadSource) Fetch(ctx context.Context, _ fetchcore.Identity) (*fetchcore.Result, error) {
	s.mu.Lock()
	s.fetches++
	s.mu.Unlock()
	if s.Delay > 0 {
		select {
		case <-time.After(s.Delay):
		case <-ctx.Done():
			return nil, context.Cause(ctx)
		}
	}
	st := NewStream(s.Data)
	s.mu.Lock()
	s.streams = append(s.streams, st)
	s.mu.Unlock()
	res := &fetchcore.Result{
		Data:   st,
		Source: s.N,
	}
	if s.Seekable {
		res.Data = &SeekStream{Stream: st}
	}
	return res, nil
}

// Fetches reports how many Fetch calls the source has seen.
func (s *PayloadSource) Fetches() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fetches
}

// Unclosed reports how many handed-out payload streams have not been closed.
func (s *PayloadSource) Unclosed() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, st := range s.streams {
		if !st.Closed() {
			n++
		}
	}
	return n
}

// StallSource is a Fetcher that never produces; Fetch blocks until the
// context is cancelled.
type StallSource struct {
	N string

	cancelled atomic.Bool
}

// Name implements fetchcore.Source.
func (s *StallSource) Name() string { return s.N }

// Fetch implements fetchcore.Fetcher.
func (s *StallSource) Fetch(ctx context.Context, _ fetchcore.Identity) (*fetchcore.Result, error) {
	<-ctx.Done()
	s.cancelled.Store(true)
	return nil, context.Cause(ctx)
}

// Cancelled reports whether an in-flight Fetch observed cancellation.
func (s *StallSource) Cancelled() bool { return s.cancelled.Load() }

// ErrSource is a Fetcher whose Fetch always fails with Err.
type ErrSource struct {
	N   string
	Err error
}

// Name implements fetchcore.Source.
func (s *ErrSource) Name() string { return s.N }

// Fetch implements fetchcore.Fetcher.
func (s *ErrSource) Fetch(_ context.Context, _ fetchcore.Identity) (*fetchcore.Result, error) {
	return nil, s.Err
}

// EmptySource is a Fetcher that runs without fault but never has the
// artifact.
type EmptySource struct {
	N string
}

// Name implements fetchcore.Source.
func (s *EmptySource) Name() string { return s.N }

// Fetch implements fetchcore.Fetcher.
func (s *EmptySource) Fetch(_ context.Context, _ fetchcore.Identity) (*fetchcore.Result, error) {
	return nil, nil
}

// Stream is a non-seekable ReadCloser over a byte slice that records whether
// it was closed.
type Stream struct {
	r *bytes.Reader

	mu     sync.Mutex
	closed bool
}

// NewStream returns a Stream reading b.
func NewStream(b []byte) *Stream {
	return &Stream{r: bytes.NewReader(b)}
}

// Read implements io.Reader.
func (s *Stream) Read(p []byte) (int, error) { return s.r.Read(p) }

// Close implements io.Closer.
func (s *Stream) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

// Closed reports whether Close has been called.
func (s *Stream) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// SeekStream is a Stream that also supports seeking.
type SeekStream struct {
	*Stream
}

// Seek implements io.Seeker.
func (s *SeekStream) Seek(offset int64, whence int) (int64, error) {
	return s.Stream.r.Seek(offset, whence)
}
