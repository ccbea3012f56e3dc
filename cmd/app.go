// Package cmd implements the CLI application to track ETF transactions
// and dividend income.
package cmd

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/subcommands"
	"go.uber.org/zap"

	"github.com/ATE168Forever/divtrack/httpcache"
	"github.com/ATE168Forever/divtrack/marketdata"
	"github.com/ATE168Forever/divtrack/storage"
	"github.com/ATE168Forever/divtrack/store"
	"github.com/ATE168Forever/divtrack/syncer"
)

// Register the subcommands. A main package calls Register, then Execute
// on the user-selected one.
func Register(c *subcommands.Commander) {
	c.Register(&buyCmd{}, "transactions")
	c.Register(&sellCmd{}, "transactions")
	c.Register(&txCmd{}, "transactions")
	c.Register(&deleteCmd{}, "transactions")

	c.Register(&importCmd{}, "backup")
	c.Register(&exportCmd{}, "backup")
	c.Register(&syncCmd{}, "backup")

	c.Register(&summaryCmd{}, "reports")
	c.Register(&dividendsCmd{}, "reports")
	c.Register(&goalCmd{}, "reports")
	c.Register(&stocksCmd{}, "reports")

	c.Register(&topicCmd{}, "documentation")
}

// As a CLI application the lifecycle is short lived, so globals are fine.

var configFile = flag.String("config", "", "Path to the config file. Defaults to ~/.divtrack/config.yaml")
var verbose = flag.Bool("v", false, "Enable verbose logging")

// app bundles what most commands need: config, logger, the transaction
// store and the market-data client.
type app struct {
	cfg    Config
	log    *zap.Logger
	db     storage.Storage
	store  *store.TransactionStore
	market *marketdata.Client
}

func newApp() (*app, error) {
	cfg, err := LoadConfig(*configFile)
	if err != nil {
		return nil, err
	}

	log := zap.NewNop()
	if *verbose {
		log, err = zap.NewDevelopment()
		if err != nil {
			return nil, fmt.Errorf("cannot build logger: %w", err)
		}
	}

	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return nil, fmt.Errorf("cannot create data directory %q: %w", cfg.DataDir, err)
	}
	db, err := storage.NewFile(filepath.Join(cfg.DataDir, "divtrack.json"))
	if err != nil {
		return nil, fmt.Errorf("cannot open data file: %w", err)
	}

	fetcher := httpcache.New(db, httpcache.WithLogger(log))
	return &app{
		cfg:    cfg,
		log:    log,
		db:     db,
		store:  store.New(db, store.WithLogger(log)),
		market: marketdata.New(cfg.APIHost, fetcher, marketdata.WithLogger(log)),
	}, nil
}

// newSyncer builds the sync orchestrator over the app's store and the
// configured backup file.
func (a *app) newSyncer() *syncer.Orchestrator {
	return syncer.New(a.store,
		syncer.WithBackend(&syncer.FileBackend{Path: a.cfg.BackupFile}),
		syncer.WithLogger(a.log),
	)
}
