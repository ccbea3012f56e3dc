package divtrack

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/ATE168Forever/divtrack/date"
	"github.com/shopspring/decimal"
)

// This file handles the CSV backup format. It must stay readable by common
// spreadsheet tools, hence the BOM and the formula-wrapped stock ids.

// BackupFilename is the conventional name of a CSV backup file.
const BackupFilename = "inventory_backup.csv"

const utf8BOM = "\uFEFF"

// csvHeader is the current, versioned column set. Older exports lack the
// stock_name column; the decoder detects that from the header.
var csvHeader = []string{"stock_id", "stock_name", "date", "quantity", "price", "type"}

// wrapCode wraps a stock id as ="<code>" so spreadsheet programs keep the
// leading zeros of numeric-looking tickers like "0050".
func wrapCode(code string) string { return `="` + code + `"` }

// unwrapCode undoes wrapCode, accepting plain ids from hand-made files.
func unwrapCode(s string) string {
	if strings.HasPrefix(s, `="`) && strings.HasSuffix(s, `"`) && len(s) >= 3 {
		return s[2 : len(s)-1]
	}
	return s
}

// EncodeCSV writes the transaction list as a UTF-8 CSV with BOM.
func EncodeCSV(w io.Writer, txs []Transaction) error {
	if _, err := io.WriteString(w, utf8BOM); err != nil {
		return fmt.Errorf("cannot write CSV preamble: %w", err)
	}
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("cannot write CSV header: %w", err)
	}
	for _, tx := range txs {
		price := ""
		if tx.Price.Valid {
			price = tx.Price.Decimal.String()
		}
		rec := []string{
			wrapCode(tx.StockID),
			tx.StockName,
			tx.Date.String(),
			strconv.FormatInt(tx.Quantity, 10),
			price,
			string(tx.Type),
		}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("cannot write CSV record: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// DecodeCSV parses a CSV backup back into a transaction list. Input with a
// header only (or nothing at all) decodes to an empty list, never an
// error. The returned list is not yet normalized; callers pass it through
// Normalize before persisting.
func DecodeCSV(r io.Reader) ([]Transaction, error) {
	content, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("cannot read CSV backup: %w", err)
	}
	text := strings.TrimPrefix(string(content), utf8BOM)

	cr := csv.NewReader(strings.NewReader(text))
	cr.FieldsPerRecord = -1
	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("cannot parse CSV backup: %w", err)
	}
	if len(records) < 2 {
		return []Transaction{}, nil
	}

	// Detect the optional stock_name column from the header.
	header := records[0]
	hasName := len(header) > 1 && strings.TrimSpace(header[1]) == "stock_name"

	txs := make([]Transaction, 0, len(records)-1)
	for _, rec := range records[1:] {
		want := 5
		if hasName {
			want = 6
		}
		if len(rec) < want {
			continue // tolerate short/blank lines
		}

		tx := Transaction{StockID: unwrapCode(rec[0])}
		i := 1
		if hasName {
			tx.StockName = rec[1]
			i = 2
		}
		if tx.Date, err = date.Parse(rec[i]); err != nil {
			return nil, fmt.Errorf("cannot parse CSV date %q: %w", rec[i], err)
		}
		if tx.Quantity, err = strconv.ParseInt(rec[i+1], 10, 64); err != nil {
			return nil, fmt.Errorf("cannot parse CSV quantity %q: %w", rec[i+1], err)
		}
		if p := strings.TrimSpace(rec[i+2]); p != "" {
			d, err := decimal.NewFromString(p)
			if err != nil {
				return nil, fmt.Errorf("cannot parse CSV price %q: %w", p, err)
			}
			tx.Price = NewPrice(d)
		}
		tx.Type = TradeType(rec[i+3])
		txs = append(txs, tx)
	}
	return txs, nil
}
