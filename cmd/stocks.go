package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/google/subcommands"

	"github.com/ATE168Forever/divtrack/httpcache"
)

type stocksCmd struct {
	search  string
	refresh bool
}

func (*stocksCmd) Name() string     { return "stocks" }
func (*stocksCmd) Synopsis() string { return "search the exchange's stock list" }
func (*stocksCmd) Usage() string {
	return `stocks [-q <text>] [-refresh]

  Lists stocks matching the search text by ticker or name. The list is
  cached locally; -refresh drops the cache first.
`
}

func (c *stocksCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.search, "q", "", "Search text")
	f.BoolVar(&c.refresh, "refresh", false, "Drop the cached list before fetching")
}

func (c *stocksCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	a, err := newApp()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	if c.refresh {
		a.market.ClearStockList(a.cfg.Country)
	}
	stocks, status, err := a.market.StockList(ctx, a.cfg.Country)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	if status == httpcache.StatusStale {
		fmt.Fprintln(os.Stderr, "Warning: stock list is served from a stale cache")
	}

	var b strings.Builder
	fmt.Fprint(&b, "# Stocks\n\n")
	fmt.Fprintln(&b, "| Ticker | Name | Industry |")
	fmt.Fprintln(&b, "|:---|:---|:---|")
	needle := strings.ToLower(c.search)
	n := 0
	for _, s := range stocks {
		if needle != "" &&
			!strings.Contains(strings.ToLower(s.ID), needle) &&
			!strings.Contains(strings.ToLower(s.Name), needle) {
			continue
		}
		fmt.Fprintf(&b, "| %s | %s | %s |\n", s.ID, s.Name, s.Industry)
		n++
	}
	if n == 0 {
		fmt.Println("No matching stocks.")
		return subcommands.ExitSuccess
	}
	printMarkdown(b.String())
	return subcommands.ExitSuccess
}
