// Package renderer turns the aggregation view models into markdown
// reports for terminal display.
package renderer

import (
	"bytes"
	"fmt"

	md "github.com/nao1215/markdown"
	"github.com/shopspring/decimal"

	"github.com/ATE168Forever/divtrack"
)

// InventoryMarkdown renders the current holdings as a markdown report.
func InventoryMarkdown(inv *divtrack.InventorySummary, currency string) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)

	doc.H1("Inventory")

	if len(inv.Positions) == 0 {
		doc.PlainText("No open positions.")
		return doc.String()
	}

	table := md.TableSet{
		Alignment: []md.TableAlignment{
			md.AlignLeft,
			md.AlignLeft,
			md.AlignRight,
			md.AlignRight,
			md.AlignRight,
		},
		Header: []string{"Ticker", "Name", "Quantity", "Avg Cost", "Cost Basis"},
	}
	for _, p := range inv.Positions {
		cost := p.AvgPrice.Mul(decimal.NewFromInt(p.TotalQuantity))
		table.Rows = append(table.Rows, []string{
			p.StockID,
			p.StockName,
			fmt.Sprint(p.TotalQuantity),
			divtrack.M(p.AvgPrice, currency).String(),
			divtrack.M(cost, currency).String(),
		})
	}
	doc.Table(table)

	doc.Table(md.TableSet{
		Alignment: []md.TableAlignment{md.AlignLeft, md.AlignRight},
		Header: []string{
			md.Bold("Total Investment"),
			md.Bold(divtrack.M(inv.TotalInvestment, currency).String()),
		},
		Rows: [][]string{
			{"Total Value", divtrack.M(inv.TotalValue, currency).String()},
		},
	})

	return doc.String()
}
