package divtrack

import (
	"sort"

	"github.com/shopspring/decimal"
)

// Position is the per-stock aggregate derived from the transaction history.
// It is recomputed on every read and never persisted.
type Position struct {
	StockID       string
	StockName     string
	AvgPrice      decimal.Decimal // cost-basis weighted average across buys
	TotalQuantity int64           // net of sells
}

// InventorySummary is the derived view of current holdings.
type InventorySummary struct {
	Positions       []Position
	TotalInvestment decimal.Decimal // sum of quantity*avg cost over open positions
	TotalValue      decimal.Decimal // using the latest known close per stock when available
}

// SummarizeInventory replays the history in chronological order and
// produces the current holdings.
//
// Buys accumulate quantity and a running weighted-average cost; sells
// reduce quantity without touching the average (average cost is only
// recomputed on buys). Positions that reach zero quantity are dropped.
// quotes maps stock id to the latest known close price; stocks without a
// quote contribute their cost to TotalValue.
func SummarizeInventory(txs []Transaction, quotes map[string]decimal.Decimal) InventorySummary {
	type acc struct {
		name string
		avg  decimal.Decimal
		qty  int64
	}
	accs := make(map[string]*acc)
	order := make([]string, 0)

	for _, tx := range Chronological(txs) {
		// zero-quantity rows can arrive from a hand-edited backup; they
		// carry no position change and must not reach the average division
		if tx.StockID == "" || tx.Quantity <= 0 {
			continue
		}
		a, ok := accs[tx.StockID]
		if !ok {
			a = &acc{}
			accs[tx.StockID] = a
			order = append(order, tx.StockID)
		}
		if tx.StockName != "" {
			a.name = tx.StockName
		}
		switch tx.Type {
		case Sell:
			a.qty -= tx.Quantity
			if a.qty < 0 {
				a.qty = 0
			}
		default:
			if !tx.Price.Valid {
				// a buy without a price cannot move the cost basis
				a.qty += tx.Quantity
				continue
			}
			oldCost := a.avg.Mul(decimal.NewFromInt(a.qty))
			newCost := tx.Price.Decimal.Mul(decimal.NewFromInt(tx.Quantity))
			a.qty += tx.Quantity
			a.avg = oldCost.Add(newCost).Div(decimal.NewFromInt(a.qty))
		}
	}

	var s InventorySummary
	for _, id := range order {
		a := accs[id]
		if a.qty == 0 {
			continue
		}
		s.Positions = append(s.Positions, Position{
			StockID:       id,
			StockName:     a.name,
			AvgPrice:      a.avg,
			TotalQuantity: a.qty,
		})
		cost := a.avg.Mul(decimal.NewFromInt(a.qty))
		s.TotalInvestment = s.TotalInvestment.Add(cost)
		if quote, ok := quotes[id]; ok {
			s.TotalValue = s.TotalValue.Add(quote.Mul(decimal.NewFromInt(a.qty)))
		} else {
			s.TotalValue = s.TotalValue.Add(cost)
		}
	}
	sort.Slice(s.Positions, func(i, j int) bool {
		return s.Positions[i].StockID < s.Positions[j].StockID
	})
	return s
}
