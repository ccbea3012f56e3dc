package renderer

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/ATE168Forever/divtrack"
)

var ten = decimal.NewFromInt(10)

// GoalMarkdown renders goal progress rows with text progress bars.
func GoalMarkdown(vm *divtrack.GoalViewModel) string {
	var b strings.Builder

	fmt.Fprint(&b, "# Goal Progress\n\n")
	if len(vm.Rows) == 0 {
		fmt.Fprintln(&b, "No goals configured.")
		return b.String()
	}

	fmt.Fprintln(&b, "| Goal | Actual | Target | Progress | |")
	fmt.Fprintln(&b, "|:---|---:|---:|:---|:---|")
	for _, row := range vm.Rows {
		cell := progressBar(row)
		if row.Message != "" {
			cell += " " + row.Message
		}
		fmt.Fprintf(&b, "| %s | %s | %s | %s | %s |\n",
			row.Label, row.Actual, row.Target, cell, row.PercentLabel)
	}
	return b.String()
}

// progressBar renders a ten-step bar like `[####------]`.
func progressBar(row divtrack.GoalProgress) string {
	filled := int(row.Percent.Mul(ten).IntPart())
	if filled > 10 {
		filled = 10
	}
	return "[" + strings.Repeat("#", filled) + strings.Repeat("-", 10-filled) + "]"
}
