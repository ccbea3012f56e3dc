package renderer

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/ATE168Forever/divtrack"
)

// DividendMarkdown renders a dividend summary for a given as-of year.
func DividendMarkdown(s *divtrack.DividendSummary, year int, currency string) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Dividend Report %d\n\n", year)

	fmt.Fprintln(&b, "| | |")
	fmt.Fprintln(&b, "|:---|---:|")
	fmt.Fprintf(&b, "| Accumulated | %s |\n", divtrack.M(s.AccumulatedTotal, currency))
	fmt.Fprintf(&b, "| This Year | %s |\n", divtrack.M(s.CurrentYearTotal(year), currency))
	fmt.Fprintf(&b, "| Monthly Average | %s |\n", divtrack.M(s.MonthlyAverage, currency))
	fmt.Fprintln(&b)

	if len(s.MonthlyTotals) > 0 {
		fmt.Fprint(&b, "## Monthly Income\n\n")
		fmt.Fprintln(&b, "| Month | Income |")
		fmt.Fprintln(&b, "|:---|---:|")
		for m := time.January; m <= time.December; m++ {
			total, ok := s.MonthlyTotals[m]
			if !ok {
				continue
			}
			fmt.Fprintf(&b, "| %s | %s |\n", m, divtrack.M(total, currency))
		}
		fmt.Fprintln(&b)
	}

	years := make([]int, 0, len(s.AnnualTotal))
	for y := range s.AnnualTotal {
		years = append(years, y)
	}
	sort.Ints(years)
	if len(years) > 1 {
		fmt.Fprint(&b, "## Annual Income\n\n")
		fmt.Fprintln(&b, "| Year | Income |")
		fmt.Fprintln(&b, "|:---|---:|")
		for _, y := range years {
			fmt.Fprintf(&b, "| %d | %s |\n", y, divtrack.M(s.AnnualTotal[y], currency))
		}
		fmt.Fprintln(&b)
	}

	if len(s.Events) > 0 {
		fmt.Fprint(&b, "## Events\n\n")
		fmt.Fprintln(&b, "| Ex-Date | Ticker | Per Share | Held | Income |")
		fmt.Fprintln(&b, "|:---|:---|---:|---:|---:|")
		for _, ev := range s.Events {
			fmt.Fprintf(&b, "| %s | %s | %s | %d | %s |\n",
				ev.Event.DividendDate,
				ev.Event.StockID,
				ev.Event.Dividend,
				ev.Quantity,
				divtrack.M(ev.Amount, currency),
			)
		}
	}

	return b.String()
}
