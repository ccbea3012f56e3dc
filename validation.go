package divtrack

import (
	"errors"
	"fmt"
)

// ValidateTrade checks a candidate transaction against the existing history
// before it is applied. Validation failures block the single action
// attempted and never partially apply.
func ValidateTrade(history []Transaction, tx Transaction) error {
	if tx.StockID == "" {
		return errors.New("stock id is missing")
	}
	if tx.Date.IsZero() {
		return errors.New("trade date is missing")
	}
	if tx.Quantity <= 0 {
		return fmt.Errorf("quantity must be positive, got %d", tx.Quantity)
	}
	switch tx.Type {
	case Buy:
		if !tx.Price.Valid || tx.Price.Decimal.IsNegative() {
			return errors.New("buy transaction requires a non-negative price")
		}
	case Sell:
		if tx.Price.Valid {
			return errors.New("sell transaction must not carry a price")
		}
		held := HoldingAsOf(QuantityTimeline(history), tx.StockID, tx.Date)
		if tx.Quantity > held {
			return fmt.Errorf("cannot sell %d shares of %s: only %d held on %s", tx.Quantity, tx.StockID, held, tx.Date)
		}
	default:
		return fmt.Errorf("unknown trade type %q", tx.Type)
	}
	return nil
}
