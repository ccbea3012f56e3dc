package renderer

import (
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ATE168Forever/divtrack"
	"github.com/ATE168Forever/divtrack/date"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestInventoryMarkdown(t *testing.T) {
	inv := &divtrack.InventorySummary{
		Positions: []divtrack.Position{
			{StockID: "0050", StockName: "ETF A", AvgPrice: dec("15"), TotalQuantity: 2000},
		},
		TotalInvestment: dec("30000"),
		TotalValue:      dec("31000"),
	}
	got := InventoryMarkdown(inv, "TWD")

	for _, want := range []string{"# Inventory", "0050", "ETF A", "2000", "Total Investment"} {
		if !strings.Contains(got, want) {
			t.Errorf("report missing %q:\n%s", want, got)
		}
	}
	if want := divtrack.M(dec("30000"), "TWD").String(); !strings.Contains(got, want) {
		t.Errorf("report missing total %q:\n%s", want, got)
	}
}

func TestInventoryMarkdownEmpty(t *testing.T) {
	got := InventoryMarkdown(&divtrack.InventorySummary{}, "TWD")
	if !strings.Contains(got, "No open positions.") {
		t.Errorf("empty report = %q", got)
	}
}

func TestDividendMarkdown(t *testing.T) {
	s := &divtrack.DividendSummary{
		AccumulatedTotal: dec("1500"),
		AnnualTotal:      map[int]decimal.Decimal{2023: dec("500"), 2024: dec("1000")},
		MonthlyTotals:    map[time.Month]decimal.Decimal{time.March: dec("1000")},
		MonthlyAverage:   dec("333.33"),
		Events: []divtrack.AttributedDividend{{
			Event: divtrack.DividendEvent{
				StockID:      "0050",
				Dividend:     dec("1"),
				DividendDate: date.MustParse("2024-03-15"),
			},
			Quantity: 1000,
			Amount:   dec("1000"),
		}},
	}
	got := DividendMarkdown(s, 2024, "TWD")

	for _, want := range []string{
		"# Dividend Report 2024", "## Monthly Income", "March",
		"## Annual Income", "| 2023 |", "## Events", "2024-03-15", "| 1000 |",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("report missing %q:\n%s", want, got)
		}
	}
}

func TestGoalMarkdown(t *testing.T) {
	vm := &divtrack.GoalViewModel{
		Rows: []divtrack.GoalProgress{
			{
				Label:        "Annual cash flow",
				Percent:      dec("0.5"),
				PercentLabel: "50%",
				Message:      "Halfway there",
				Actual:       divtrack.MFloat(500, "TWD"),
				Target:       divtrack.MFloat(1000, "TWD"),
			},
			{
				Label:        "0050",
				Percent:      dec("1"),
				PercentLabel: "100%",
				Actual:       divtrack.MFloat(2, ""),
				Target:       divtrack.MFloat(2, ""),
			},
		},
	}
	got := GoalMarkdown(vm)

	for _, want := range []string{
		"# Goal Progress", "Annual cash flow",
		"[#####-----] Halfway there", "50%",
		"[##########]", "100%",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("report missing %q:\n%s", want, got)
		}
	}
}

func TestGoalMarkdownEmpty(t *testing.T) {
	got := GoalMarkdown(&divtrack.GoalViewModel{})
	if !strings.Contains(got, "No goals configured.") {
		t.Errorf("empty report = %q", got)
	}
}
