package httpsource_test

import (
	"bytes"
	"context"
	"crypto/sha256"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/klauspost/compress/gzip"
	"github.com/quay/zlog"

	"github.com/fetchcore/fetchcore"
	"github.com/fetchcore/fetchcore/httpsource"
	"github.com/fetchcore/fetchcore/libfetch"
)

var (
	payload  = []byte("the artifact payload")
	manifest = []byte(`{"name":"frob","version":"1.2.3"}`)
)

func gzipped(t *testing.T, b []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := gzip.NewWriter(&buf)
	if _, err := w.Write(b); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

// ServeFeed returns a test feed serving "frob@1.2.3" (gzipped, with a
// manifest sidecar), "plain@2.0.0" (with a digest header), and "bad@1.0.0"
// (with a lying digest header). Index document loads are counted.
func serveFeed(t *testing.T) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var indexLoads atomic.Int32
	gz := gzipped(t, payload)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/index.json":
			indexLoads.Add(1)
			w.Write([]byte(`{"name":"testfeed","protocol":"1"}`))
		case "/frob/1.2.3/frob-1.2.3.pkg":
			w.Write(gz)
		case "/frob/1.2.3/frob-1.2.3.pkg.manifest":
			w.Write(manifest)
		case "/plain/2.0.0/plain-2.0.0.pkg":
			sum := sha256.Sum256(payload)
			d := fetchcore.NewDigest("sha256", sum[:])
			w.Header().Set("digest", d.String())
			w.Write(payload)
		case "/bad/1.0.0/bad-1.0.0.pkg":
			sum := sha256.Sum256([]byte("different bytes"))
			d := fetchcore.NewDigest("sha256", sum[:])
			w.Header().Set("digest", d.String())
			w.Write(payload)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(srv.Close)
	return srv, &indexLoads
}

func testSource(t *testing.T, srv *httptest.Server) *httpsource.Source {
	t.Helper()
	s, err := httpsource.New("testfeed", srv.URL, srv.Client())
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func TestIndex(t *testing.T) {
	ctx := zlog.Test(context.Background(), t)
	srv, loads := serveFeed(t)
	s := testSource(t, srv)

	var wg sync.WaitGroup
	for range 4 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			idx, err := s.Index(ctx)
			if err != nil {
				t.Error(err)
				return
			}
			if got, want := idx.Name, "testfeed"; got != want {
				t.Errorf("got: %q, want: %q", got, want)
			}
		}()
	}
	wg.Wait()
	if got := loads.Load(); got != 1 {
		t.Errorf("got: %d index loads, want: 1", got)
	}
}

func TestFetch(t *testing.T) {
	ctx := zlog.Test(context.Background(), t)
	srv, _ := serveFeed(t)
	s := testSource(t, srv)

	t.Run("Gzipped", func(t *testing.T) {
		id, err := fetchcore.NewIdentity("frob", "1.2.3")
		if err != nil {
			t.Fatal(err)
		}
		res, err := s.Fetch(ctx, id)
		if err != nil {
			t.Fatal(err)
		}
		defer res.Close()
		got, err := io.ReadAll(res.Data)
		if err != nil {
			t.Fatal(err)
		}
		if !cmp.Equal(got, payload) {
			t.Error(cmp.Diff(got, payload))
		}
		if res.Manifest == nil {
			t.Fatal("expected a manifest sidecar")
		}
		m, err := io.ReadAll(res.Manifest)
		if err != nil {
			t.Fatal(err)
		}
		if !cmp.Equal(m, manifest) {
			t.Error(cmp.Diff(m, manifest))
		}
	})
	t.Run("Digest", func(t *testing.T) {
		id, err := fetchcore.NewIdentity("plain", "2.0.0")
		if err != nil {
			t.Fatal(err)
		}
		res, err := s.Fetch(ctx, id)
		if err != nil {
			t.Fatal(err)
		}
		defer res.Close()
		if got, want := res.Digest.Algorithm(), "sha256"; got != want {
			t.Errorf("got: %q, want: %q", got, want)
		}
		got, err := io.ReadAll(res.Data)
		if err != nil {
			t.Fatal(err)
		}
		if !cmp.Equal(got, payload) {
			t.Error(cmp.Diff(got, payload))
		}
	})
	t.Run("DigestMismatch", func(t *testing.T) {
		id, err := fetchcore.NewIdentity("bad", "1.0.0")
		if err != nil {
			t.Fatal(err)
		}
		res, err := s.Fetch(ctx, id)
		if err != nil {
			t.Fatal(err)
		}
		defer res.Close()
		_, err = io.ReadAll(res.Data)
		t.Log(err)
		if !errors.Is(err, fetchcore.ErrTransport) {
			t.Errorf("got: %v, want: %v", err, fetchcore.ErrTransport)
		}
	})
	t.Run("Missing", func(t *testing.T) {
		id, err := fetchcore.NewIdentity("absent", "9.9.9")
		if err != nil {
			t.Fatal(err)
		}
		res, err := s.Fetch(ctx, id)
		if err != nil {
			t.Fatal(err)
		}
		if res != nil {
			t.Error("expected an absent outcome")
		}
	})
}

// TestRacedFeeds exercises the whole stack: two feeds raced through libfetch,
// where only one has the artifact.
func TestRacedFeeds(t *testing.T) {
	ctx := zlog.Test(context.Background(), t)
	have, _ := serveFeed(t)
	empty := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	t.Cleanup(empty.Close)

	a := testSource(t, have)
	b, err := httpsource.New("emptyfeed", empty.URL, empty.Client())
	if err != nil {
		t.Fatal(err)
	}
	l, err := libfetch.New(ctx, &libfetch.Options{
		Sources: []fetchcore.Source{a, b},
	})
	if err != nil {
		t.Fatal(err)
	}

	id, err := fetchcore.NewIdentity("frob", "1.2.3")
	if err != nil {
		t.Fatal(err)
	}
	res, err := l.Fetch(ctx, id, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer res.Close()
	if got, want := res.Source, "testfeed"; got != want {
		t.Errorf("got: %q, want: %q", got, want)
	}
	got, err := io.ReadAll(res.Data)
	if err != nil {
		t.Fatal(err)
	}
	if !cmp.Equal(got, payload) {
		t.Error(cmp.Diff(got, payload))
	}
	if _, ok := res.Data.(io.Seeker); !ok {
		t.Error("result data should support seeking")
	}
}
