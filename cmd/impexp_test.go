package cmd

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/ATE168Forever/divtrack"
	"github.com/ATE168Forever/divtrack/date"
)

func row(stock, day string, qty int64, p float64) divtrack.Transaction {
	tx := divtrack.Transaction{
		StockID:  stock,
		Date:     date.MustParse(day),
		Quantity: qty,
		Type:     divtrack.Buy,
	}
	if p > 0 {
		tx.Price = divtrack.NewPrice(decimal.NewFromFloat(p))
	}
	return tx
}

func TestMergeImportedIsIdempotent(t *testing.T) {
	imported := []divtrack.Transaction{
		row("0050", "2024-01-15", 1000, 120.5),
		row("2884", "2024-02-01", 500, 27.1),
	}

	history := mergeImported(nil, imported)
	if got, want := len(history), 2; got != want {
		t.Fatalf("after first import got %d transactions, want %d", got, want)
	}

	// ids were assigned when the rows entered the history, the file
	// still has none. The second import must not add anything.
	history = divtrack.Normalize(history)
	history = mergeImported(history, imported)
	if got, want := len(history), 2; got != want {
		t.Errorf("after second import got %d transactions, want %d", got, want)
	}
}

func TestMergeImportedKeepsRepeatedTrades(t *testing.T) {
	// a file can legitimately repeat a trade, two identical buys on
	// the same day. Each occurrence beyond the stored count imports.
	imported := []divtrack.Transaction{
		row("0050", "2024-01-15", 1000, 120.5),
		row("0050", "2024-01-15", 1000, 120.5),
	}
	history := []divtrack.Transaction{
		row("0050", "2024-01-15", 1000, 120.5),
	}

	merged := mergeImported(history, imported)
	if got, want := len(merged), 2; got != want {
		t.Errorf("got %d transactions, want %d", got, want)
	}
}

func TestMergeImportedDistinguishesFields(t *testing.T) {
	history := []divtrack.Transaction{
		row("0050", "2024-01-15", 1000, 120.5),
	}
	cases := []struct {
		name string
		tx   divtrack.Transaction
	}{
		{"different date", row("0050", "2024-01-16", 1000, 120.5)},
		{"different quantity", row("0050", "2024-01-15", 2000, 120.5)},
		{"different price", row("0050", "2024-01-15", 1000, 121)},
		{"missing price", row("0050", "2024-01-15", 1000, 0)},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			merged := mergeImported(history, []divtrack.Transaction{c.tx})
			if got, want := len(merged), 2; got != want {
				t.Errorf("got %d transactions, want %d", got, want)
			}
		})
	}
}
