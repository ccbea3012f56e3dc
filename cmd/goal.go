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

type goalCmd struct{}

func (*goalCmd) Name() string     { return "goal" }
func (*goalCmd) Synopsis() string { return "display progress towards the configured goals" }
func (*goalCmd) Usage() string {
	return `goal

  Compares this year's dividend income and current holdings against the
  goals in the config file.
`
}

func (c *goalCmd) SetFlags(f *flag.FlagSet) {}

func (c *goalCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	a, err := newApp()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	if len(a.cfg.Goals.Cash) == 0 && len(a.cfg.Goals.Shares) == 0 {
		fmt.Println("No goals configured. Add a goals section to the config file.")
		return subcommands.ExitSuccess
	}

	asOf := date.Today()
	events, err := fetchDividends(ctx, a, asOf.Year(), "")
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	txs := a.store.Read()
	summary := divtrack.CalculateDividendSummary(txs, events, nil, asOf)
	inventory := divtrack.SummarizeInventory(txs, nil)

	msgs := divtrack.GoalMessages{
		Done:    "Goal reached!",
		Halfway: "Halfway there",
	}
	vm := divtrack.BuildDividendGoalViewModel(summary, inventory, a.cfg.Goals, msgs, asOf)
	printMarkdown(renderer.GoalMarkdown(&vm))
	return subcommands.ExitSuccess
}
