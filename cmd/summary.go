package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"
	"github.com/shopspring/decimal"

	"github.com/ATE168Forever/divtrack"
	"github.com/ATE168Forever/divtrack/date"
	"github.com/ATE168Forever/divtrack/marketdata"
	"github.com/ATE168Forever/divtrack/renderer"
)

// summaryCmd holds the flags for the 'summary' subcommand.
type summaryCmd struct {
	offline bool
}

func (*summaryCmd) Name() string     { return "summary" }
func (*summaryCmd) Synopsis() string { return "display current holdings" }
func (*summaryCmd) Usage() string {
	return `summary [-offline]

  Displays the current positions with weighted-average cost. Latest
  close prices come from the market-data API unless -offline is set.
`
}

func (c *summaryCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.offline, "offline", false, "Skip the market-data lookup")
}

func (c *summaryCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	a, err := newApp()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	txs := a.store.Read()

	quotes := make(map[string]decimal.Decimal)
	if !c.offline {
		events, _, err := a.market.Dividends(ctx, a.cfg.Country, date.Today().Year())
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: no market data, using cost basis: %v\n", err)
		}
		for _, ev := range events {
			if !ev.LastClosePrice.IsZero() {
				quotes[ev.StockID] = ev.LastClosePrice
			}
		}
		if stocks, _, err := a.market.StockList(ctx, a.cfg.Country); err == nil {
			marketdata.BackfillNames(txs, stocks)
		}
	}

	inv := divtrack.SummarizeInventory(txs, quotes)
	printMarkdown(renderer.InventoryMarkdown(&inv, a.cfg.Currency))
	return subcommands.ExitSuccess
}
