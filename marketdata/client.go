// Package marketdata is a typed client for the dividend/stock-list HTTP
// API. Every call goes through the conditional cache so repeated requests
// within the endpoint's max-age cost a 304 at most.
package marketdata

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"time"

	"github.com/PaesslerAG/jsonpath"
	"go.uber.org/zap"

	"github.com/ATE168Forever/divtrack"
	"github.com/ATE168Forever/divtrack/httpcache"
)

// Per-endpoint cache windows. Stock lists change about once a day,
// dividend announcements a few times a day.
const (
	StockListMaxAge = 24 * time.Hour
	DividendsMaxAge = 6 * time.Hour
)

// Stock is one entry of the exchange's stock list.
type Stock struct {
	ID       string `json:"stock_id"`
	Name     string `json:"stock_name"`
	Industry string `json:"industry_category,omitempty"`
}

// Client queries one market-data host.
type Client struct {
	host    string
	fetcher *httpcache.Fetcher
	log     *zap.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithLogger substitutes the logger.
func WithLogger(l *zap.Logger) Option { return func(c *Client) { c.log = l } }

// New returns a Client for the given host, e.g. "https://api.example.com".
func New(host string, fetcher *httpcache.Fetcher, opts ...Option) *Client {
	c := &Client{host: host, fetcher: fetcher, log: zap.NewNop()}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// StockList returns the stock list for a country code ("tw", "us").
func (c *Client) StockList(ctx context.Context, country string) ([]Stock, httpcache.Status, error) {
	addr := c.endpoint("/stock_list", url.Values{"country": {country}})
	var stocks []Stock
	status, err := c.fetchList(ctx, addr, StockListMaxAge, &stocks)
	if err != nil {
		return nil, status, fmt.Errorf("cannot get stock list for %q: %w", country, err)
	}
	return stocks, status, nil
}

// Dividends returns the dividend events for a country and year.
func (c *Client) Dividends(ctx context.Context, country string, year int) ([]divtrack.DividendEvent, httpcache.Status, error) {
	addr := c.endpoint("/dividends", url.Values{
		"country": {country},
		"year":    {fmt.Sprint(year)},
	})
	var events []divtrack.DividendEvent
	status, err := c.fetchList(ctx, addr, DividendsMaxAge, &events)
	if err != nil {
		return nil, status, fmt.Errorf("cannot get dividends for %q %d: %w", country, year, err)
	}
	return events, status, nil
}

// ClearStockList drops the cached stock list of a country, forcing the
// next StockList call to hit the network.
func (c *Client) ClearStockList(country string) {
	c.fetcher.Clear(c.endpoint("/stock_list", url.Values{"country": {country}}))
}

// StockDividends returns the dividend events of a single stock.
func (c *Client) StockDividends(ctx context.Context, country, stockID string, year int) ([]divtrack.DividendEvent, httpcache.Status, error) {
	events, status, err := c.Dividends(ctx, country, year)
	if err != nil {
		return nil, status, err
	}
	kept := events[:0]
	for _, ev := range events {
		if ev.StockID == stockID {
			kept = append(kept, ev)
		}
	}
	return kept, status, nil
}

func (c *Client) endpoint(path string, query url.Values) string {
	return c.host + path + "?" + query.Encode()
}

// fetchList fetches addr through the cache and decodes the normalized
// list payload into out.
func (c *Client) fetchList(ctx context.Context, addr string, maxAge time.Duration, out any) (httpcache.Status, error) {
	res, err := c.fetcher.Fetch(ctx, addr, maxAge)
	if err != nil {
		return "", err
	}
	c.log.Debug("market data fetched",
		zap.String("url", addr), zap.String("cache", string(res.Status)))
	if err := decodeList(res.Data, out); err != nil {
		return res.Status, err
	}
	return res.Status, nil
}

// decodeList accepts the two shapes the API has served over time, a bare
// array and an envelope {"data": [...]}, and decodes the list into out.
func decodeList(raw json.RawMessage, out any) error {
	list, err := normalizeListResponse(raw)
	if err != nil {
		return err
	}
	buf, err := json.Marshal(list)
	if err != nil {
		return fmt.Errorf("cannot re-encode list payload: %w", err)
	}
	if err := json.Unmarshal(buf, out); err != nil {
		return fmt.Errorf("cannot decode list payload: %w", err)
	}
	return nil
}

func normalizeListResponse(raw json.RawMessage) ([]any, error) {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, fmt.Errorf("cannot parse payload: %w", err)
	}
	if inner, err := jsonpath.Get("$.data", v); err == nil {
		if list, ok := inner.([]any); ok {
			return list, nil
		}
	}
	if list, ok := v.([]any); ok {
		return list, nil
	}
	return nil, fmt.Errorf("cannot read list payload: neither an array nor a data envelope")
}

// BackfillNames fills missing StockName fields from a stock list, in
// place. Transaction records created before the list was available carry
// only the ticker.
func BackfillNames(txs []divtrack.Transaction, stocks []Stock) {
	names := make(map[string]string, len(stocks))
	for _, s := range stocks {
		names[s.ID] = s.Name
	}
	for i := range txs {
		if txs[i].StockName == "" {
			txs[i].StockName = names[txs[i].StockID]
		}
	}
}
