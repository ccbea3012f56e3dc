package httpcache

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ATE168Forever/divtrack/storage"
)

// testServer serves one JSON document with ETag revalidation and records
// what it saw.
type testServer struct {
	etag        string
	body        string
	status      int // forced status when non-zero
	gotValidator bool
	gotBust      bool
	hits         int
}

func (s *testServer) handler(w http.ResponseWriter, r *http.Request) {
	s.hits++
	s.gotValidator = r.Header.Get("If-None-Match") != "" || r.Header.Get("If-Modified-Since") != ""
	s.gotBust = r.URL.Query().Get("_") != ""
	if s.status != 0 {
		w.WriteHeader(s.status)
		return
	}
	if r.Header.Get("If-None-Match") == s.etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}
	w.Header().Set("ETag", s.etag)
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(s.body))
}

func newFetcher(t *testing.T, srv *testServer) (*Fetcher, *httptest.Server, *time.Time) {
	t.Helper()
	ts := httptest.NewServer(http.HandlerFunc(srv.handler))
	t.Cleanup(ts.Close)
	now := time.Unix(1700000000, 0)
	clock := &now
	f := New(storage.NewMemory(), WithNow(func() time.Time { return *clock }))
	return f, ts, clock
}

const maxAge = time.Hour

func TestFetch_FirstFetchIsFresh(t *testing.T) {
	srv := &testServer{etag: `"v1"`, body: `{"data":[1,2]}`}
	f, ts, _ := newFetcher(t, srv)

	res, err := f.Fetch(context.Background(), ts.URL, maxAge)
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if res.Status != StatusFresh {
		t.Errorf("Status = %q, want %q", res.Status, StatusFresh)
	}
	if string(res.Data) != srv.body {
		t.Errorf("Data = %s, want %s", res.Data, srv.body)
	}
}

func TestFetch_FreshWindow304IsCached(t *testing.T) {
	srv := &testServer{etag: `"v1"`, body: `{"data":[1]}`}
	f, ts, clock := newFetcher(t, srv)
	ctx := context.Background()

	if _, err := f.Fetch(ctx, ts.URL, maxAge); err != nil {
		t.Fatal(err)
	}
	// 1ms before the fresh window closes: must not be stale
	*clock = clock.Add(maxAge - time.Millisecond)
	res, err := f.Fetch(ctx, ts.URL, maxAge)
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if !srv.gotValidator {
		t.Error("second request did not carry a validator")
	}
	if res.Status != StatusCached {
		t.Errorf("Status = %q, want %q", res.Status, StatusCached)
	}
}

func TestFetch_AgingWindow304IsStale(t *testing.T) {
	srv := &testServer{etag: `"v1"`, body: `{"data":[1]}`}
	f, ts, clock := newFetcher(t, srv)
	ctx := context.Background()

	if _, err := f.Fetch(ctx, ts.URL, maxAge); err != nil {
		t.Fatal(err)
	}
	*clock = clock.Add(maxAge + time.Minute)
	res, err := f.Fetch(ctx, ts.URL, maxAge)
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if res.Status != StatusStale {
		t.Errorf("Status = %q, want %q", res.Status, StatusStale)
	}
	if srv.gotBust {
		t.Error("aging-window 304 must not trigger the cache-busting path")
	}
}

func TestFetch_Suspicious304Busts(t *testing.T) {
	srv := &testServer{etag: `"v1"`, body: `{"data":[1]}`}
	f, ts, clock := newFetcher(t, srv)
	ctx := context.Background()

	if _, err := f.Fetch(ctx, ts.URL, maxAge); err != nil {
		t.Fatal(err)
	}
	// past twice the max age: a 304 contradicts the local judgment
	*clock = clock.Add(2*maxAge + time.Millisecond)
	res, err := f.Fetch(ctx, ts.URL, maxAge)
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if !srv.gotBust {
		t.Error("expected a cache-busting re-fetch")
	}
	// the unconditional request carries no validator, so the server answered 200
	if res.Status != StatusFresh {
		t.Errorf("Status = %q, want %q", res.Status, StatusFresh)
	}
}

func TestFetch_NetworkFailureFallsBackToCache(t *testing.T) {
	srv := &testServer{etag: `"v1"`, body: `{"data":[1]}`}
	f, ts, clock := newFetcher(t, srv)
	ctx := context.Background()

	if _, err := f.Fetch(ctx, ts.URL, maxAge); err != nil {
		t.Fatal(err)
	}
	ts.Close()

	res, err := f.Fetch(ctx, ts.URL, maxAge)
	if err != nil {
		t.Fatalf("Fetch() with cache error = %v, want fallback", err)
	}
	if res.Status != StatusCached {
		t.Errorf("Status = %q, want %q within fresh window", res.Status, StatusCached)
	}

	*clock = clock.Add(2 * maxAge)
	res, err = f.Fetch(ctx, ts.URL, maxAge)
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if res.Status != StatusStale {
		t.Errorf("Status = %q, want %q past fresh window", res.Status, StatusStale)
	}
}

func TestFetch_NetworkFailureNoCachePropagates(t *testing.T) {
	srv := &testServer{etag: `"v1"`, body: `{}`}
	f, ts, _ := newFetcher(t, srv)
	ts.Close()

	_, err := f.Fetch(context.Background(), ts.URL, maxAge)
	if !errors.Is(err, ErrNoCache) {
		t.Errorf("Fetch() error = %v, want ErrNoCache", err)
	}
}

func TestFetch_NonJSONContentTypeErrors(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte("<html>misconfigured proxy</html>"))
	}))
	defer ts.Close()

	f := New(storage.NewMemory())
	if _, err := f.Fetch(context.Background(), ts.URL, maxAge); err == nil {
		t.Error("Fetch() accepted a non-JSON content type")
	}
}

func TestFetch_ServerErrorFallsBackToCache(t *testing.T) {
	srv := &testServer{etag: `"v1"`, body: `{"data":[1]}`}
	f, ts, _ := newFetcher(t, srv)
	ctx := context.Background()

	if _, err := f.Fetch(ctx, ts.URL, maxAge); err != nil {
		t.Fatal(err)
	}
	srv.status = http.StatusInternalServerError
	res, err := f.Fetch(ctx, ts.URL, maxAge)
	if err != nil {
		t.Fatalf("Fetch() error = %v, want cached fallback", err)
	}
	if res.Status != StatusCached {
		t.Errorf("Status = %q, want %q", res.Status, StatusCached)
	}
}

func TestFetch_WriteFailureDoesNotFailFetch(t *testing.T) {
	srv := &testServer{etag: `"v1"`, body: `{"data":[1]}`}
	ts := httptest.NewServer(http.HandlerFunc(srv.handler))
	defer ts.Close()

	f := New(failingStorage{})
	res, err := f.Fetch(context.Background(), ts.URL, maxAge)
	if err != nil {
		t.Fatalf("Fetch() error = %v, want success despite write failure", err)
	}
	if res.Status != StatusFresh {
		t.Errorf("Status = %q, want %q", res.Status, StatusFresh)
	}
}

func TestClear(t *testing.T) {
	srv := &testServer{etag: `"v1"`, body: `{"data":[1]}`}
	f, ts, _ := newFetcher(t, srv)
	ctx := context.Background()

	if _, err := f.Fetch(ctx, ts.URL, maxAge); err != nil {
		t.Fatal(err)
	}
	f.Clear(ts.URL)
	ts.Close()
	if _, err := f.Fetch(ctx, ts.URL, maxAge); !errors.Is(err, ErrNoCache) {
		t.Errorf("Fetch() after Clear error = %v, want ErrNoCache", err)
	}
	// clearing again is harmless
	f.Clear(ts.URL)
}

// failingStorage refuses every write, like a full or disabled localStorage.
type failingStorage struct{}

func (failingStorage) Get(string) (string, bool, error) { return "", false, nil }
func (failingStorage) Set(string, string) error         { return errors.New("quota exceeded") }
func (failingStorage) Delete(string) error              { return errors.New("storage disabled") }
