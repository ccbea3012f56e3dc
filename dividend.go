package divtrack

import (
	"reflect"
	"sync"
	"time"

	"github.com/ATE168Forever/divtrack/date"
	"github.com/shopspring/decimal"
)

// DividendEvent is a read-only record supplied by the market-data API.
type DividendEvent struct {
	StockID        string          `json:"stock_id"`
	StockName      string          `json:"stock_name,omitempty"`
	Dividend       decimal.Decimal `json:"dividend"` // per-share amount
	DividendDate   date.Date       `json:"dividend_date"` // ex-date
	PaymentDate    date.Date       `json:"payment_date"`
	DividendYield  float64         `json:"dividend_yield"`
	LastClosePrice decimal.Decimal `json:"last_close_price"`
	Currency       string          `json:"currency"`
}

// AttributedDividend is a dividend event with the income it produced given
// the holdings on its ex-date.
type AttributedDividend struct {
	Event    DividendEvent
	Quantity int64
	Amount   decimal.Decimal
}

// DividendSummary aggregates realized dividend income from a transaction
// history and a dividend-event feed.
type DividendSummary struct {
	AccumulatedTotal decimal.Decimal
	AnnualTotal      map[int]decimal.Decimal
	// MonthlyTotals holds the per-month income of the as-of year.
	MonthlyTotals  map[time.Month]decimal.Decimal
	MonthlyAverage decimal.Decimal
	Events         []AttributedDividend
}

// CurrentYearTotal returns the annual total for the given year, zero when absent.
func (s DividendSummary) CurrentYearTotal(year int) decimal.Decimal {
	return s.AnnualTotal[year]
}

// CalculateDividendSummary attributes each dividend event to the quantity
// held on its ex-date, replaying the transaction history point-in-time: a
// stock fully sold after receiving a dividend still counts it, a stock
// bought after an ex-date does not.
//
// MonthlyAverage for the as-of year divides by (last dividend month index
// + 1), i.e. the elapsed months with dividend activity, not a fixed 12.
//
// When the transaction history is entirely empty it falls back to the
// current static positions, ignoring point-in-time correctness. This
// mirrors the historical behavior of the app and can misattribute
// dividends relative to historical holdings; it only triggers when there
// is no history at all.
func CalculateDividendSummary(txs []Transaction, events []DividendEvent, positions []Position, asOf date.Date) DividendSummary {
	s := DividendSummary{
		AnnualTotal:   make(map[int]decimal.Decimal),
		MonthlyTotals: make(map[time.Month]decimal.Decimal),
	}

	if len(txs) == 0 {
		static := make(map[string]int64, len(positions))
		for _, p := range positions {
			static[p.StockID] = p.TotalQuantity
		}
		s.Events = attribute(events, asOf, &s, func(ev DividendEvent) int64 { return static[ev.StockID] })
		finishMonthly(&s, asOf)
		return s
	}

	timelines := QuantityTimeline(txs)
	s.Events = attribute(events, asOf, &s, func(ev DividendEvent) int64 {
		return HoldingAsOf(timelines, ev.StockID, ev.DividendDate)
	})
	finishMonthly(&s, asOf)
	return s
}

// attribute folds the events into the summary totals using quantityFor and
// returns the non-zero attributions.
func attribute(events []DividendEvent, asOf date.Date, s *DividendSummary, quantityFor func(DividendEvent) int64) []AttributedDividend {
	var out []AttributedDividend
	for _, ev := range events {
		if !ev.Dividend.IsPositive() || ev.DividendDate.IsZero() {
			continue
		}
		qty := quantityFor(ev)
		if qty == 0 {
			continue
		}
		amount := ev.Dividend.Mul(decimal.NewFromInt(qty))
		s.AccumulatedTotal = s.AccumulatedTotal.Add(amount)
		year := ev.DividendDate.Year()
		s.AnnualTotal[year] = s.AnnualTotal[year].Add(amount)
		if year == asOf.Year() {
			m := ev.DividendDate.Month()
			s.MonthlyTotals[m] = s.MonthlyTotals[m].Add(amount)
		}
		out = append(out, AttributedDividend{Event: ev, Quantity: qty, Amount: amount})
	}
	return out
}

func finishMonthly(s *DividendSummary, asOf date.Date) {
	var last time.Month
	for m := range s.MonthlyTotals {
		if m > last {
			last = m
		}
	}
	if last == 0 {
		return
	}
	// month index of last activity + 1: a March dividend divides by 3.
	s.MonthlyAverage = s.AnnualTotal[asOf.Year()].Div(decimal.NewFromInt(int64(last)))
}

// SummaryCache memoizes CalculateDividendSummary by input identity plus the
// as-of calendar day. The same inputs recur across many reads within one
// day, and the cache is unbounded for the session: input cardinality is
// small.
type SummaryCache struct {
	mu      sync.Mutex
	entries map[summaryKey]DividendSummary
}

type summaryKey struct {
	txs, events, positions uintptr
	nTxs, nEvents, nPos    int
	day                    date.Date
}

func slicePtr[T any](s []T) uintptr {
	return reflect.ValueOf(s).Pointer()
}

// NewSummaryCache returns an empty cache ready to use.
func NewSummaryCache() *SummaryCache {
	return &SummaryCache{entries: make(map[summaryKey]DividendSummary)}
}

// Summary returns the memoized summary for these exact inputs, computing it
// on first use. Mutating a slice in place without replacing it defeats the
// identity key; callers own that contract.
func (c *SummaryCache) Summary(txs []Transaction, events []DividendEvent, positions []Position, asOf date.Date) DividendSummary {
	key := summaryKey{
		txs: slicePtr(txs), events: slicePtr(events), positions: slicePtr(positions),
		nTxs: len(txs), nEvents: len(events), nPos: len(positions),
		day: asOf,
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if s, ok := c.entries[key]; ok {
		return s
	}
	s := CalculateDividendSummary(txs, events, positions, asOf)
	c.entries[key] = s
	return s
}
