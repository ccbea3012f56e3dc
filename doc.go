// Package divtrack implements the core of an ETF dividend tracker: the
// canonical buy/sell transaction model, CSV import/export, inventory
// summarization with weighted-average cost, and holding-aware dividend
// income aggregation with goal progress.
//
// The surrounding packages provide the plumbing: durable key-value storage
// (storage), a conditional HTTP cache (httpcache), the on-device
// transaction store (store), multi-backend synchronization (syncer) and
// the market-data API client (marketdata).
package divtrack
