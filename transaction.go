package divtrack

import (
	"fmt"
	"math/rand"
	"sort"
	"time"

	"github.com/ATE168Forever/divtrack/date"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TradeType identifies the direction of a transaction.
type TradeType string

const (
	Buy  TradeType = "buy"
	Sell TradeType = "sell"
)

// Transaction is a single buy or sell event in a user's history.
//
// A sell transaction never carries a price: the cost basis is tracked on
// buys only. Price uses decimal.NullDecimal so an absent price survives
// round trips as "absent", never as 0.
type Transaction struct {
	ID        string              `json:"id"`
	StockID   string              `json:"stock_id"`
	StockName string              `json:"stock_name,omitempty"`
	Date      date.Date           `json:"date"`
	Quantity  int64               `json:"quantity"`
	Price     decimal.NullDecimal `json:"price"`
	Type      TradeType           `json:"type"`
}

// Price helpers.

// NewPrice wraps a decimal into a present price.
func NewPrice(d decimal.Decimal) decimal.NullDecimal {
	return decimal.NullDecimal{Decimal: d, Valid: true}
}

// NoPrice is the absent-price value used for sell transactions.
func NoPrice() decimal.NullDecimal { return decimal.NullDecimal{} }

// NewID returns a new globally-unique transaction identifier. When the
// random source fails it degrades to a timestamp+random string, which is
// unique enough for a single user's history.
func NewID() string {
	id, err := uuid.NewRandom()
	if err != nil {
		return fmt.Sprintf("tx-%d-%06d", time.Now().UnixMilli(), rand.Intn(1_000_000))
	}
	return id.String()
}

// Normalize returns a copy of the list where every record has a stable
// unique id, a valid trade type, and no price on sell rows.
//
// It is idempotent: ids already assigned are never changed, and calling it
// twice yields the same list. Duplicated ids (a corrupted import) are
// re-assigned on the later occurrence.
func Normalize(txs []Transaction) []Transaction {
	out := make([]Transaction, len(txs))
	seen := make(map[string]struct{}, len(txs))
	for i, tx := range txs {
		if tx.ID == "" {
			tx.ID = NewID()
		}
		if _, dup := seen[tx.ID]; dup {
			tx.ID = NewID()
		}
		seen[tx.ID] = struct{}{}

		if tx.Type != Buy && tx.Type != Sell {
			tx.Type = Buy
		}
		if tx.Type == Sell {
			tx.Price = NoPrice()
		}
		out[i] = tx
	}
	return out
}

// Equal reports whether two transactions carry the same user-visible data.
// Prices compare numerically, with "no price" a distinct state from zero.
func (t Transaction) Equal(o Transaction) bool {
	if t.ID != o.ID || t.StockID != o.StockID || t.StockName != o.StockName ||
		t.Date != o.Date || t.Type != o.Type || t.Quantity != o.Quantity {
		return false
	}
	if t.Price.Valid != o.Price.Valid {
		return false
	}
	return !t.Price.Valid || t.Price.Decimal.Equal(o.Price.Decimal)
}

// TransactionsEqual reports whether two lists are pairwise equal in order.
// It is used to avoid redundant writes when a remote snapshot matches the
// local state.
func TransactionsEqual(a, b []Transaction) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !a[i].Equal(b[i]) {
			return false
		}
	}
	return true
}

// Chronological returns a copy of the list sorted by date, ties broken by
// the original list order. Replay-based computations all work on this
// ordering.
func Chronological(txs []Transaction) []Transaction {
	out := make([]Transaction, len(txs))
	copy(out, txs)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Date.Before(out[j].Date)
	})
	return out
}

// QuantityTimeline replays the history and builds, per stock, the running
// held quantity keyed by date. A negative running quantity clamps to zero:
// an over-sell clamps instead of going negative.
//
// The timelines answer "how many shares were held on day X" with a binary
// search, which is what dividend attribution needs (holdings at the
// ex-dividend date, not present-day holdings).
func QuantityTimeline(txs []Transaction) map[string]*date.History[int64] {
	timelines := make(map[string]*date.History[int64])
	running := make(map[string]int64)
	for _, tx := range Chronological(txs) {
		if tx.StockID == "" {
			continue
		}
		q := running[tx.StockID]
		switch tx.Type {
		case Sell:
			q -= tx.Quantity
		default:
			q += tx.Quantity
		}
		if q < 0 {
			q = 0
		}
		running[tx.StockID] = q

		h, ok := timelines[tx.StockID]
		if !ok {
			h = &date.History[int64]{}
			timelines[tx.StockID] = h
		}
		h.Append(tx.Date, q)
	}
	return timelines
}

// HoldingAsOf returns the quantity of a stock held on a given day.
func HoldingAsOf(timelines map[string]*date.History[int64], stockID string, on date.Date) int64 {
	h, ok := timelines[stockID]
	if !ok {
		return 0
	}
	q, _ := h.ValueAsOf(on)
	return q
}
