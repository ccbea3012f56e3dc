package cmd

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/google/subcommands"

	"github.com/ATE168Forever/divtrack"
)

// --- Export Command ---

type exportCmd struct {
	output string
}

func (*exportCmd) Name() string     { return "export" }
func (*exportCmd) Synopsis() string { return "export transactions to a CSV file" }
func (*exportCmd) Usage() string {
	return `export [-o <file>]

  Writes the transaction history as spreadsheet-safe CSV. Defaults to
  ` + divtrack.BackupFilename + ` in the current directory.
`
}

func (c *exportCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.output, "o", divtrack.BackupFilename, "Output file")
}

func (c *exportCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	a, err := newApp()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	txs := a.store.Read()

	var buf bytes.Buffer
	if err := divtrack.EncodeCSV(&buf, txs); err != nil {
		fmt.Fprintf(os.Stderr, "Error encoding CSV: %v\n", err)
		return subcommands.ExitFailure
	}
	if err := os.WriteFile(c.output, buf.Bytes(), 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing %q: %v\n", c.output, err)
		return subcommands.ExitFailure
	}
	fmt.Printf("Exported %d transactions to %s\n", len(txs), c.output)
	return subcommands.ExitSuccess
}

// --- Import Command ---

type importCmd struct {
	input   string
	replace bool
}

func (*importCmd) Name() string     { return "import" }
func (*importCmd) Synopsis() string { return "import transactions from a CSV file" }
func (*importCmd) Usage() string {
	return `import -i <file> [-replace]

  Reads transactions from a CSV export and appends them to the history.
  With -replace the file content replaces the whole history instead.
  Importing the same file twice does not duplicate records: rows whose
  stock, date, quantity, price and type are already present are skipped.
`
}

func (c *importCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.input, "i", "", "Input file")
	f.BoolVar(&c.replace, "replace", false, "Replace the history instead of appending")
}

func (c *importCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.input == "" {
		f.Usage()
		return subcommands.ExitUsageError
	}
	data, err := os.ReadFile(c.input)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading %q: %v\n", c.input, err)
		return subcommands.ExitFailure
	}
	imported, err := divtrack.DecodeCSV(bytes.NewReader(data))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error decoding %q: %v\n", c.input, err)
		return subcommands.ExitFailure
	}

	a, err := newApp()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	next := imported
	if !c.replace {
		next = mergeImported(a.store.Read(), imported)
	}

	if err := a.newSyncer().ReplaceAll(ctx, next); err != nil {
		fmt.Fprintf(os.Stderr, "Error saving imported transactions: %v\n", err)
		return subcommands.ExitFailure
	}
	fmt.Printf("Imported %d transactions from %s\n", len(imported), c.input)
	return subcommands.ExitSuccess
}

// importKey identifies a row by its visible fields. The CSV format
// carries no ids, so import idempotence has to come from the content.
func importKey(tx divtrack.Transaction) string {
	price := ""
	if tx.Price.Valid {
		price = tx.Price.Decimal.String()
	}
	return strings.Join([]string{
		tx.StockID,
		tx.Date.String(),
		strconv.FormatInt(tx.Quantity, 10),
		price,
		string(tx.Type),
	}, "|")
}

// mergeImported appends the imported rows not already in the history.
// Duplicates are counted, not just flagged, so a file that legitimately
// repeats a trade still imports the extra occurrence.
func mergeImported(current, imported []divtrack.Transaction) []divtrack.Transaction {
	seen := make(map[string]int, len(current))
	for _, tx := range current {
		seen[importKey(tx)]++
	}
	next := current
	for _, tx := range imported {
		key := importKey(tx)
		if seen[key] > 0 {
			seen[key]--
			continue
		}
		next = append(next, tx)
	}
	return next
}
