package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/google/subcommands"
	"github.com/shopspring/decimal"

	"github.com/ATE168Forever/divtrack"
	"github.com/ATE168Forever/divtrack/date"
)

// --- Buy Command ---

type buyCmd struct {
	date     string
	stock    string
	name     string
	quantity int64
	price    float64
}

func (*buyCmd) Name() string     { return "buy" }
func (*buyCmd) Synopsis() string { return "record a share purchase" }
func (*buyCmd) Usage() string {
	return `buy -s <stock_id> -q <quantity> -p <price> [-d <date>] [-n <name>]

  Records a buy transaction and updates the backup when auto-save is on.
`
}

func (c *buyCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.date, "d", date.Today().String(), "Transaction date (YYYY-MM-DD)")
	f.StringVar(&c.stock, "s", "", "Stock ticker, e.g. 0050")
	f.StringVar(&c.name, "n", "", "Stock display name")
	f.Int64Var(&c.quantity, "q", 0, "Number of shares")
	f.Float64Var(&c.price, "p", 0, "Price per share")
}

func (c *buyCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	day, err := date.Parse(c.date)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing date: %v\n", err)
		return subcommands.ExitUsageError
	}
	tx := divtrack.Transaction{
		StockID:   c.stock,
		StockName: c.name,
		Date:      day,
		Quantity:  c.quantity,
		Price:     divtrack.NewPrice(decimal.NewFromFloat(c.price)),
		Type:      divtrack.Buy,
	}
	return recordTransaction(ctx, tx)
}

// --- Sell Command ---

type sellCmd struct {
	date     string
	stock    string
	quantity int64
}

func (*sellCmd) Name() string     { return "sell" }
func (*sellCmd) Synopsis() string { return "record a share sale" }
func (*sellCmd) Usage() string {
	return `sell -s <stock_id> -q <quantity> [-d <date>]

  Records a sell transaction. The quantity may not exceed the shares
  held on the given date.
`
}

func (c *sellCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.date, "d", date.Today().String(), "Transaction date (YYYY-MM-DD)")
	f.StringVar(&c.stock, "s", "", "Stock ticker")
	f.Int64Var(&c.quantity, "q", 0, "Number of shares")
}

func (c *sellCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	day, err := date.Parse(c.date)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing date: %v\n", err)
		return subcommands.ExitUsageError
	}
	tx := divtrack.Transaction{
		StockID:  c.stock,
		Date:     day,
		Quantity: c.quantity,
		Type:     divtrack.Sell,
	}
	return recordTransaction(ctx, tx)
}

// recordTransaction validates a candidate against the current history and
// appends it through the sync orchestrator.
func recordTransaction(ctx context.Context, tx divtrack.Transaction) subcommands.ExitStatus {
	a, err := newApp()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	history := a.store.Read()
	if err := divtrack.ValidateTrade(history, tx); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid transaction: %v\n", err)
		return subcommands.ExitUsageError
	}
	if err := a.newSyncer().Add(ctx, tx); err != nil {
		fmt.Fprintf(os.Stderr, "Error saving transaction: %v\n", err)
		return subcommands.ExitFailure
	}
	fmt.Printf("Recorded %s %d %s on %s\n", tx.Type, tx.Quantity, tx.StockID, tx.Date)
	return subcommands.ExitSuccess
}

// --- List Command ---

type txCmd struct {
	stock string
	year  int
}

func (*txCmd) Name() string     { return "tx" }
func (*txCmd) Synopsis() string { return "list recorded transactions" }
func (*txCmd) Usage() string {
	return `tx [-s <stock_id>] [-year <year>]

  Lists transactions in chronological order, optionally filtered.
`
}

func (c *txCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.stock, "s", "", "Only this ticker")
	f.IntVar(&c.year, "year", 0, "Only this year")
}

func (c *txCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	a, err := newApp()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	txs := divtrack.Chronological(a.store.Read())

	var b strings.Builder
	fmt.Fprint(&b, "# Transactions\n\n")
	fmt.Fprintln(&b, "| Id | Date | Ticker | Name | Type | Quantity | Price |")
	fmt.Fprintln(&b, "|:---|:---|:---|:---|:---|---:|---:|")
	n := 0
	for _, tx := range txs {
		if c.stock != "" && tx.StockID != c.stock {
			continue
		}
		if c.year != 0 && tx.Date.Year() != c.year {
			continue
		}
		price := ""
		if tx.Price.Valid {
			price = tx.Price.Decimal.String()
		}
		fmt.Fprintf(&b, "| %s | %s | %s | %s | %s | %d | %s |\n",
			tx.ID, tx.Date, tx.StockID, tx.StockName, tx.Type, tx.Quantity, price)
		n++
	}
	if n == 0 {
		fmt.Println("No transactions.")
		return subcommands.ExitSuccess
	}
	printMarkdown(b.String())
	return subcommands.ExitSuccess
}

// --- Delete Command ---

type deleteCmd struct {
	id string
}

func (*deleteCmd) Name() string     { return "delete" }
func (*deleteCmd) Synopsis() string { return "delete a transaction by id" }
func (*deleteCmd) Usage() string {
	return `delete -id <transaction_id>

  Removes one transaction. Ids are shown by the tx command.
`
}

func (c *deleteCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.id, "id", "", "Transaction id to delete")
}

func (c *deleteCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.id == "" {
		f.Usage()
		return subcommands.ExitUsageError
	}
	a, err := newApp()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	found := false
	for _, tx := range a.store.Read() {
		if tx.ID == c.id {
			found = true
			break
		}
	}
	if !found {
		fmt.Fprintf(os.Stderr, "No transaction with id %q\n", c.id)
		return subcommands.ExitFailure
	}
	if err := a.newSyncer().Delete(ctx, c.id); err != nil {
		fmt.Fprintf(os.Stderr, "Error deleting transaction: %v\n", err)
		return subcommands.ExitFailure
	}
	fmt.Printf("Deleted transaction %s\n", c.id)
	return subcommands.ExitSuccess
}
