package main

import (
	"context"
	"flag"
	"os"
	"path"

	"github.com/google/subcommands"
	"github.com/posener/complete/v2"
	"github.com/posener/complete/v2/predict"

	"github.com/ATE168Forever/divtrack/cmd"
)

func main() {
	// no-op unless invoked by the shell completion hook
	completion().Complete("dvt")

	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))
	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.FlagsCommand(), "")
	commander.Register(commander.CommandsCommand(), "")
	cmd.Register(commander)

	flag.Parse()
	os.Exit(int(commander.Execute(context.Background())))
}

func completion() *complete.Command {
	dateFlag := map[string]complete.Predictor{"d": predict.Nothing}
	return &complete.Command{
		Flags: map[string]complete.Predictor{
			"config": predict.Files("*.yaml"),
			"v":      predict.Nothing,
		},
		Sub: map[string]*complete.Command{
			"buy":  {Flags: dateFlag},
			"sell": {Flags: dateFlag},
			"tx":   {},
			"delete": {
				Flags: map[string]complete.Predictor{"id": predict.Nothing},
			},
			"import": {
				Flags: map[string]complete.Predictor{"i": predict.Files("*.csv")},
			},
			"export": {
				Flags: map[string]complete.Predictor{"o": predict.Files("*.csv")},
			},
			"sync": {
				Flags: map[string]complete.Predictor{
					"enable-autosave": predict.Nothing,
					"now":             predict.Nothing,
					"status":          predict.Nothing,
				},
			},
			"summary":   {},
			"dividends": {},
			"goal":      {},
			"stocks":    {},
			"topic": {
				Args: predict.Set{"readme", "csv-format", "goals", "sync", "*"},
			},
		},
	}
}
