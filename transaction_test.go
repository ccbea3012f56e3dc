package divtrack

import (
	"testing"
)

func TestNormalize_AssignsMissingIDs(t *testing.T) {
	txs := []Transaction{
		buy("", "0050", "2024-01-01", 1000, 10),
		buy("keep-me", "0056", "2024-01-02", 500, 20),
	}
	got := Normalize(txs)
	if got[0].ID == "" {
		t.Error("Normalize() left an empty id")
	}
	if got[1].ID != "keep-me" {
		t.Errorf("Normalize() changed an assigned id to %q", got[1].ID)
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	txs := Normalize([]Transaction{
		buy("", "0050", "2024-01-01", 1000, 10),
		sell("", "0050", "2024-02-01", 200),
	})
	again := Normalize(txs)
	if !TransactionsEqual(txs, again) {
		t.Errorf("Normalize() is not idempotent:\n got %+v\nwant %+v", again, txs)
	}
}

func TestNormalize_NoDuplicateIDs(t *testing.T) {
	txs := Normalize([]Transaction{
		buy("dup", "0050", "2024-01-01", 1000, 10),
		buy("dup", "0056", "2024-01-02", 500, 20),
		buy("", "00878", "2024-01-03", 100, 15),
	})
	seen := make(map[string]bool)
	for _, tx := range txs {
		if seen[tx.ID] {
			t.Fatalf("duplicate id %q after Normalize()", tx.ID)
		}
		seen[tx.ID] = true
	}
	if txs[0].ID != "dup" {
		t.Errorf("first occurrence lost its id, got %q", txs[0].ID)
	}
}

func TestNormalize_StripsSellPrice(t *testing.T) {
	tx := sell("s", "0050", "2024-02-01", 200)
	tx.Price = price(12) // corrupted input
	got := Normalize([]Transaction{tx})
	if got[0].Price.Valid {
		t.Error("Normalize() kept a price on a sell transaction")
	}
}

func TestNormalize_CoercesUnknownType(t *testing.T) {
	got := Normalize([]Transaction{{ID: "x", StockID: "0050", Date: d("2024-01-01"), Quantity: 1, Type: "hold"}})
	if got[0].Type != Buy {
		t.Errorf("Type = %q, want %q", got[0].Type, Buy)
	}
}

func TestTransactionsEqual_PriceStates(t *testing.T) {
	a := buy("a", "0050", "2024-01-01", 100, 0)
	b := a
	b.Price = NoPrice()
	if TransactionsEqual([]Transaction{a}, []Transaction{b}) {
		t.Error("zero price and no price must be distinct states")
	}
}

func TestQuantityTimeline_ClampsAtZero(t *testing.T) {
	txs := []Transaction{
		buy("a", "0050", "2024-01-01", 100, 10),
		sell("b", "0050", "2024-01-02", 500), // over-sell
		buy("c", "0050", "2024-01-03", 50, 10),
	}
	tl := QuantityTimeline(txs)
	if got := HoldingAsOf(tl, "0050", d("2024-01-02")); got != 0 {
		t.Errorf("holding after over-sell = %d, want 0", got)
	}
	if got := HoldingAsOf(tl, "0050", d("2024-01-03")); got != 50 {
		t.Errorf("holding after re-buy = %d, want 50", got)
	}
}

func TestHoldingAsOf_PointInTime(t *testing.T) {
	txs := []Transaction{
		buy("a", "0050", "2024-01-01", 1000, 10),
		sell("b", "0050", "2024-03-01", 1000),
	}
	tl := QuantityTimeline(txs)
	tests := []struct {
		day  string
		want int64
	}{
		{day: "2023-12-31", want: 0},
		{day: "2024-01-01", want: 1000},
		{day: "2024-02-15", want: 1000},
		{day: "2024-03-01", want: 0},
		{day: "2024-06-01", want: 0},
	}
	for _, tt := range tests {
		if got := HoldingAsOf(tl, "0050", d(tt.day)); got != tt.want {
			t.Errorf("HoldingAsOf(%s) = %d, want %d", tt.day, got, tt.want)
		}
	}
}

func TestValidateTrade(t *testing.T) {
	history := []Transaction{buy("a", "0050", "2024-01-01", 1000, 10)}
	tests := []struct {
		name    string
		tx      Transaction
		wantErr bool
	}{
		{name: "valid buy", tx: buy("", "0056", "2024-01-02", 100, 20)},
		{name: "valid sell", tx: sell("", "0050", "2024-02-01", 1000)},
		{name: "missing stock", tx: buy("", "", "2024-01-02", 100, 20), wantErr: true},
		{name: "zero quantity", tx: buy("", "0050", "2024-01-02", 0, 20), wantErr: true},
		{name: "buy without price", tx: Transaction{StockID: "0050", Date: d("2024-01-02"), Quantity: 1, Type: Buy}, wantErr: true},
		{name: "sell exceeding holdings", tx: sell("", "0050", "2024-02-01", 1500), wantErr: true},
		{name: "sell before first buy", tx: sell("", "0050", "2023-12-01", 1), wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateTrade(history, tt.tx)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateTrade() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
