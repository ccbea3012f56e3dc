package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"github.com/ATE168Forever/divtrack"
	"github.com/ATE168Forever/divtrack/date"
	"github.com/ATE168Forever/divtrack/renderer"
)

type dividendsCmd struct {
	year  int
	stock string
}

func (*dividendsCmd) Name() string     { return "dividends" }
func (*dividendsCmd) Synopsis() string { return "display realized dividend income" }
func (*dividendsCmd) Usage() string {
	return `dividends [-year <year>] [-s <stock_id>]

  Attributes each dividend event to the shares held on its ex-date and
  reports accumulated, annual and monthly income.
`
}

func (c *dividendsCmd) SetFlags(f *flag.FlagSet) {
	f.IntVar(&c.year, "year", date.Today().Year(), "Report year")
	f.StringVar(&c.stock, "s", "", "Only this ticker")
}

func (c *dividendsCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	a, err := newApp()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	events, err := fetchDividends(ctx, a, c.year, c.stock)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	asOf := date.Today()
	if c.year != asOf.Year() {
		asOf = date.New(c.year, 12, 31)
	}
	summary := divtrack.CalculateDividendSummary(a.store.Read(), events, nil, asOf)
	printMarkdown(renderer.DividendMarkdown(&summary, c.year, a.cfg.Currency))
	return subcommands.ExitSuccess
}

// fetchDividends pulls the year's events, and the preceding years' so the
// accumulated total is complete. History older than the first transaction
// contributes nothing and is not fetched.
func fetchDividends(ctx context.Context, a *app, year int, stock string) ([]divtrack.DividendEvent, error) {
	first := year
	for _, tx := range a.store.Read() {
		if y := tx.Date.Year(); y < first {
			first = y
		}
	}

	var events []divtrack.DividendEvent
	for y := first; y <= year; y++ {
		var (
			batch []divtrack.DividendEvent
			err   error
		)
		if stock != "" {
			batch, _, err = a.market.StockDividends(ctx, a.cfg.Country, stock, y)
		} else {
			batch, _, err = a.market.Dividends(ctx, a.cfg.Country, y)
		}
		if err != nil {
			return nil, fmt.Errorf("cannot fetch dividends for %d: %w", y, err)
		}
		events = append(events, batch...)
	}
	return events, nil
}
