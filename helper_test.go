package divtrack

import (
	"github.com/ATE168Forever/divtrack/date"
	"github.com/shopspring/decimal"
)

// test helpers shared by the package tests.

func d(s string) date.Date { return date.MustParse(s) }

func price(v float64) decimal.NullDecimal { return NewPrice(decimal.NewFromFloat(v)) }

func dec(v float64) decimal.Decimal { return decimal.NewFromFloat(v) }

func buy(id, stock, day string, qty int64, p float64) Transaction {
	return Transaction{ID: id, StockID: stock, Date: d(day), Quantity: qty, Price: price(p), Type: Buy}
}

func sell(id, stock, day string, qty int64) Transaction {
	return Transaction{ID: id, StockID: stock, Date: d(day), Quantity: qty, Type: Sell}
}
