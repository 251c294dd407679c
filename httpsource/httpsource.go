// Package httpsource provides a fetchcore.Source backed by an HTTP package
// feed.
//
// A feed is rooted at a base URL and lays artifacts out as
//
//	{root}/{name}/{version}/{name}-{version}.pkg
//
// with an optional metadata sidecar at the same path with a ".manifest"
// suffix. A feed describes itself with an index document at
// {root}/index.json.
//
// Payloads are decompressed transparently, whatever the feed's content-type
// headers claim. If the feed reports a content digest in the "Digest"
// response header, the transport bytes are verified against it as the stream
// is drained.
package httpsource

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"

	"github.com/quay/zlog"
	"golang.org/x/sync/singleflight"

	"github.com/fetchcore/fetchcore"
	"github.com/fetchcore/fetchcore/internal/httputil"
	"github.com/fetchcore/fetchcore/internal/zreader"
)

var _ fetchcore.Fetcher = (*Source)(nil)

// Source is one HTTP package feed.
type Source struct {
	c    *http.Client
	root *url.URL
	name string

	sf singleflight.Group
	mu sync.Mutex
	// Idx is the cached feed index, nil until first resolved.
	idx *Index
}

// Index is a feed's self-description document.
type Index struct {
	// Name is the name the feed advertises for itself.
	Name string `json:"name"`
	// Protocol is the feed protocol version.
	Protocol string `json:"protocol"`
}

// New constructs a Source for the feed rooted at root.
//
// If c is nil, http.DefaultClient is used.
func New(name, root string, c *http.Client) (*Source, error) {
	if c == nil {
		c = http.DefaultClient
	}
	u, err := url.Parse(root)
	if err != nil {
		return nil, fmt.Errorf("httpsource: bad feed root %q: %w", root, err)
	}
	return &Source{
		c:    c,
		root: u,
		name: name,
	}, nil
}

// Name implements fetchcore.Source.
func (s *Source) Name() string { return s.name }

// Index returns the feed's index document, fetching it on first use.
//
// Concurrent callers share a single request.
func (s *Source) Index(ctx context.Context) (*Index, error) {
	s.mu.Lock()
	idx := s.idx
	s.mu.Unlock()
	if idx != nil {
		return idx, nil
	}
	select {
	case res := <-s.sf.DoChan("index", func() (interface{}, error) {
		return s.loadIndex(ctx)
	}):
		if res.Err != nil {
			return nil, res.Err
		}
		idx := res.Val.(*Index)
		s.mu.Lock()
		s.idx = idx
		s.mu.Unlock()
		return idx, nil
	case <-ctx.Done():
		return nil, context.Cause(ctx)
	}
}

func (s *Source) loadIndex(ctx context.Context) (*Index, error) {
	ctx = zlog.ContextWithValues(ctx,
		"component", "httpsource/Source.loadIndex",
		"source", s.name)
	u := s.root.JoinPath("index.json")
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("httpsource: %w", err)
	}
	resp, err := s.c.Do(req)
	if err != nil {
		return nil, fmt.Errorf("httpsource: index request failed: %w", err)
	}
	defer resp.Body.Close()
	if err := httputil.CheckResponse(resp, http.StatusOK); err != nil {
		return nil, fmt.Errorf("httpsource: %w", err)
	}
	var idx Index
	if err := json.NewDecoder(resp.Body).Decode(&idx); err != nil {
		return nil, fmt.Errorf("httpsource: bad index document: %w", err)
	}
	zlog.Debug(ctx).
		Str("feed", idx.Name).
		Msg("feed index loaded")
	return &idx, nil
}

// Fetch implements fetchcore.Fetcher.
//
// A 404 from the feed means the artifact isn't there; that's reported as an
// absent outcome, not an error.
func (s *Source) Fetch(ctx context.Context, id fetchcore.Identity) (*fetchcore.Result, error) {
	ctx = zlog.ContextWithValues(ctx,
		"component", "httpsource/Source.Fetch",
		"source", s.name,
		"artifact", id.String())
	u := s.packageURL(id)
	zlog.Debug(ctx).
		Str("url", u.String()).
		Msg("artifact fetch start")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("httpsource: %w", err)
	}
	resp, err := s.c.Do(req)
	if err != nil {
		return nil, fmt.Errorf("httpsource: request failed: %w", err)
	}
	if resp.StatusCode == http.StatusNotFound {
		resp.Body.Close()
		zlog.Debug(ctx).Msg("feed has no such artifact")
		return nil, nil
	}
	if err := httputil.CheckResponse(resp, http.StatusOK); err != nil {
		resp.Body.Close()
		return nil, fmt.Errorf("httpsource: %w", err)
	}

	var body io.ReadCloser = resp.Body
	var d fetchcore.Digest
	if h := resp.Header.Get("digest"); h != "" {
		d, err = fetchcore.ParseDigest(h)
		if err != nil {
			body.Close()
			return nil, fmt.Errorf("httpsource: bad digest header %q: %w", h, err)
		}
		body, err = newVerifyReader(body, d)
		if err != nil {
			resp.Body.Close()
			return nil, fmt.Errorf("httpsource: %w", err)
		}
	}
	z, err := zreader.Reader(body)
	if err != nil {
		// Reader closed body already.
		return nil, fmt.Errorf("httpsource: %w", err)
	}

	m := s.fetchManifest(ctx, id)
	zlog.Debug(ctx).Msg("artifact fetch ok")
	return &fetchcore.Result{
		Data:     z,
		Manifest: m,
		Source:   s.name,
		Digest:   d,
	}, nil
}

// FetchManifest retrieves the artifact's metadata sidecar.
//
// Manifests are optional, so every failure here just means "no manifest".
func (s *Source) fetchManifest(ctx context.Context, id fetchcore.Identity) io.ReadCloser {
	u := s.packageURL(id)
	u.Path += ".manifest"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil
	}
	resp, err := s.c.Do(req)
	if err != nil {
		zlog.Debug(ctx).Err(err).Msg("manifest sidecar request failed")
		return nil
	}
	if err := httputil.CheckResponse(resp, http.StatusOK); err != nil {
		resp.Body.Close()
		if resp.StatusCode != http.StatusNotFound {
			zlog.Debug(ctx).Err(err).Msg("manifest sidecar unavailable")
		}
		return nil
	}
	return resp.Body
}

func (s *Source) packageURL(id fetchcore.Identity) *url.URL {
	return s.root.JoinPath(id.Name, id.Version, fmt.Sprintf("%s-%s.pkg", id.Name, id.Version))
}
