// Package httpcache wraps network retrieval of JSON resources with
// ETag/Last-Modified revalidation and a durable local cache.
//
// The data source (market and dividend data) changes at most a few times a
// day, so nearly every request can be answered with a 304 and the cached
// payload, while the UI can always render something even with the network
// down: a failed fetch degrades to stale data instead of blocking.
package httpcache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/ATE168Forever/divtrack/storage"
	"go.uber.org/zap"
)

// Status labels how a Fetch result relates to the cache.
type Status string

const (
	// StatusFresh means the payload came from a 200 response.
	StatusFresh Status = "fresh"
	// StatusCached means the cached payload is still within its fresh window.
	StatusCached Status = "cached"
	// StatusStale means the cached payload is past its fresh window but is
	// the best available answer.
	StatusStale Status = "stale"
)

// ErrNoCache is returned when a request fails and no cached payload exists
// to fall back to.
var ErrNoCache = errors.New("no cached payload")

// Result is a fetched JSON payload with its cache provenance.
type Result struct {
	Data      json.RawMessage
	Status    Status
	Timestamp time.Time // when the payload was last confirmed by the server
}

// meta is the persisted validator/freshness record for one URL.
type meta struct {
	ETag         string `json:"etag,omitempty"`
	LastModified string `json:"lastModified,omitempty"`
	Timestamp    int64  `json:"timestamp"` // unix milliseconds
}

const (
	dataKeyPrefix = "cache_data:"
	metaKeyPrefix = "cache_meta:"
)

// Fetcher fetches JSON resources through a durable conditional cache.
type Fetcher struct {
	client *http.Client
	store  storage.Storage
	log    *zap.Logger
	now    func() time.Time
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithClient substitutes the HTTP client.
func WithClient(c *http.Client) Option { return func(f *Fetcher) { f.client = c } }

// WithLogger substitutes the logger (zap.NewNop by default).
func WithLogger(l *zap.Logger) Option { return func(f *Fetcher) { f.log = l } }

// WithNow substitutes the clock, for tests.
func WithNow(now func() time.Time) Option { return func(f *Fetcher) { f.now = now } }

// New returns a Fetcher persisting through the given storage.
func New(store storage.Storage, opts ...Option) *Fetcher {
	f := &Fetcher{
		client: http.DefaultClient,
		store:  store,
		log:    zap.NewNop(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Fetch retrieves the JSON resource at addr.
//
// A cached payload younger than maxAge is still revalidated with a
// conditional request, so a server-side change is observed; a 304 then
// answers from the cache. Between maxAge and twice maxAge an unchanged
// payload is labeled stale rather than cached. Past twice maxAge a 304
// contradicts the local staleness judgment, so the fetcher re-issues one
// unconditional, cache-busting request before settling for stale data.
//
// When the network fails entirely the cached payload, if any, is returned
// labeled per its freshness; with no cache the error propagates wrapped
// with ErrNoCache.
func (f *Fetcher) Fetch(ctx context.Context, addr string, maxAge time.Duration) (Result, error) {
	cached, m, hasCache := f.load(addr)
	now := f.now()
	var age time.Duration
	if hasCache {
		age = now.Sub(time.UnixMilli(m.Timestamp))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, addr, nil)
	if err != nil {
		return Result{}, fmt.Errorf("cannot build request for %q: %w", addr, err)
	}
	if hasCache {
		// If-None-Match is preferred; If-Modified-Since is the fallback.
		if m.ETag != "" {
			req.Header.Set("If-None-Match", m.ETag)
		} else if m.LastModified != "" {
			req.Header.Set("If-Modified-Since", m.LastModified)
		}
	}

	resp, err := f.client.Do(req)
	if err != nil {
		if hasCache {
			f.log.Debug("fetch failed, serving cache", zap.String("url", addr), zap.Error(err))
			return f.fallback(cached, m, age, maxAge), nil
		}
		return Result{}, fmt.Errorf("cannot fetch %q: %w (%w)", addr, err, ErrNoCache)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
		return f.accept(addr, resp, now)

	case resp.StatusCode == http.StatusNotModified && hasCache:
		if age < maxAge {
			// Refresh the stored validators and timestamp: the server just
			// confirmed the payload.
			f.save(addr, cached, meta{
				ETag:         pick(resp.Header.Get("ETag"), m.ETag),
				LastModified: pick(resp.Header.Get("Last-Modified"), m.LastModified),
				Timestamp:    now.UnixMilli(),
			})
			return Result{Data: cached, Status: StatusCached, Timestamp: now}, nil
		}
		if age < 2*maxAge {
			return Result{Data: cached, Status: StatusStale, Timestamp: time.UnixMilli(m.Timestamp)}, nil
		}
		// The local judgment says long-stale, the server says not modified.
		// They only disagree when the server's validator is outdated: force
		// one unconditional, cache-busting fetch.
		return f.bust(ctx, addr, cached, m)

	default:
		if hasCache {
			f.log.Warn("unexpected status, serving cache",
				zap.String("url", addr), zap.Int("status", resp.StatusCode))
			return f.fallback(cached, m, age, maxAge), nil
		}
		return Result{}, fmt.Errorf("cannot fetch %q: %s (%w)", addr, resp.Status, ErrNoCache)
	}
}

// Clear removes the cached payload and validators for a URL,
// ignoring absence.
func (f *Fetcher) Clear(addr string) {
	if err := f.store.Delete(dataKeyPrefix + addr); err != nil {
		f.log.Debug("cache clear failed (ignored)", zap.String("url", addr), zap.Error(err))
	}
	if err := f.store.Delete(metaKeyPrefix + addr); err != nil {
		f.log.Debug("cache clear failed (ignored)", zap.String("url", addr), zap.Error(err))
	}
}

// accept consumes a 200 response: the body must be JSON, anything else is a
// misconfiguration of the data source, not something to cache.
func (f *Fetcher) accept(addr string, resp *http.Response, now time.Time) (Result, error) {
	ct := resp.Header.Get("Content-Type")
	mediaType, _, err := mime.ParseMediaType(ct)
	if err != nil || !isJSON(mediaType) {
		return Result{}, fmt.Errorf("unexpected content type %q from %q: want JSON", ct, addr)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Result{}, fmt.Errorf("cannot read response from %q: %w", addr, err)
	}
	if !json.Valid(body) {
		return Result{}, fmt.Errorf("malformed JSON from %q", addr)
	}
	f.save(addr, body, meta{
		ETag:         resp.Header.Get("ETag"),
		LastModified: resp.Header.Get("Last-Modified"),
		Timestamp:    now.UnixMilli(),
	})
	return Result{Data: body, Status: StatusFresh, Timestamp: now}, nil
}

// bust re-issues an unconditional request with a cache-busting query
// parameter. A 200 wins; anything else settles for the stale cache.
func (f *Fetcher) bust(ctx context.Context, addr string, cached json.RawMessage, m meta) (Result, error) {
	busted := addBustParam(addr, f.now().UnixMilli())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, busted, nil)
	if err != nil {
		return Result{Data: cached, Status: StatusStale, Timestamp: time.UnixMilli(m.Timestamp)}, nil
	}
	req.Header.Set("Cache-Control", "no-cache")

	resp, err := f.client.Do(req)
	if err != nil {
		f.log.Debug("cache-busting fetch failed, serving stale", zap.String("url", addr), zap.Error(err))
		return Result{Data: cached, Status: StatusStale, Timestamp: time.UnixMilli(m.Timestamp)}, nil
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusOK {
		// Persist under the original URL: the bust parameter is transport
		// detail, not identity.
		return f.accept(addr, resp, f.now())
	}
	return Result{Data: cached, Status: StatusStale, Timestamp: time.UnixMilli(m.Timestamp)}, nil
}

func (f *Fetcher) fallback(cached json.RawMessage, m meta, age, maxAge time.Duration) Result {
	status := StatusStale
	if age < maxAge {
		status = StatusCached
	}
	return Result{Data: cached, Status: status, Timestamp: time.UnixMilli(m.Timestamp)}
}

func (f *Fetcher) load(addr string) (json.RawMessage, meta, bool) {
	data, ok, err := f.store.Get(dataKeyPrefix + addr)
	if err != nil || !ok {
		return nil, meta{}, false
	}
	raw, ok, err := f.store.Get(metaKeyPrefix + addr)
	if err != nil || !ok {
		return nil, meta{}, false
	}
	var m meta
	if err := json.Unmarshal([]byte(raw), &m); err != nil {
		return nil, meta{}, false
	}
	return json.RawMessage(data), m, true
}

// save is best-effort: a full or disabled store must never fail the fetch.
func (f *Fetcher) save(addr string, data json.RawMessage, m meta) {
	raw, err := json.Marshal(m)
	if err != nil {
		return
	}
	if err := f.store.Set(dataKeyPrefix+addr, string(data)); err != nil {
		f.log.Debug("cache write failed (ignored)", zap.String("url", addr), zap.Error(err))
		return
	}
	if err := f.store.Set(metaKeyPrefix+addr, string(raw)); err != nil {
		f.log.Debug("cache write failed (ignored)", zap.String("url", addr), zap.Error(err))
	}
}

func isJSON(mediaType string) bool {
	return mediaType == "application/json" || strings.HasSuffix(mediaType, "+json") || mediaType == "text/json"
}

func pick(a, b string) string {
	if a != "" {
		return a
	}
	return b
}

func addBustParam(addr string, stamp int64) string {
	u, err := url.Parse(addr)
	if err != nil {
		return addr
	}
	q := u.Query()
	q.Set("_", strconv.FormatInt(stamp, 10))
	u.RawQuery = q.Encode()
	return u.String()
}
