package divtrack

import (
	"fmt"

	"github.com/ATE168Forever/divtrack/date"
	"github.com/shopspring/decimal"
)

// GoalType selects which dividend metric a cash-flow goal targets.
type GoalType string

const (
	GoalAnnual  GoalType = "annual"  // total income for the current year
	GoalMonthly GoalType = "monthly" // average monthly pace
	GoalMinimum GoalType = "minimum" // worst month with dividend activity
)

// SharesPerLot is the Taiwan-market display convention for one lot.
const SharesPerLot = 1000

// CashGoal is a user-defined cash-flow target.
type CashGoal struct {
	Type     GoalType        `json:"goalType" yaml:"goalType"`
	Currency string          `json:"currency" yaml:"currency"` // TWD or USD
	Target   decimal.Decimal `json:"target" yaml:"target"`
}

// ShareGoal is a forward-looking share-accumulation target, expressed in lots.
type ShareGoal struct {
	StockID    string `json:"stockId" yaml:"stockId"`
	TargetLots int64  `json:"targetQuantity" yaml:"targetQuantity"`
}

// Goals is the small document persisted alongside the transaction list.
type Goals struct {
	Cash   []CashGoal  `json:"cashGoals,omitempty" yaml:"cash"`
	Shares []ShareGoal `json:"shareGoals,omitempty" yaml:"shares"`
}

// GoalMessages are the encouragement templates supplied by the caller, kept
// out of the core so it stays free of translation content.
type GoalMessages struct {
	Done    string
	Halfway string
}

// GoalProgress is one row of the goal view.
type GoalProgress struct {
	Label        string
	Percent      decimal.Decimal // 0..1, capped at 1
	PercentLabel string          // whole percent, capped at "100%"
	Message      string
	Actual       Money
	Target       Money
}

// GoalViewModel is the pure view mapping of goals against a dividend summary.
type GoalViewModel struct {
	Rows []GoalProgress
	// PrimaryType and Achievement report the metric of the first-listed
	// cash goal when several goals exist.
	PrimaryType GoalType
	Achievement decimal.Decimal
}

// BuildDividendGoalViewModel maps a dividend summary, the current
// inventory, and the goal definitions to progress rows. Cash-flow goals
// measure realized income; share goals measure current (not point-in-time)
// holdings against targetLots*1000, since they are accumulation targets,
// not historical attribution.
func BuildDividendGoalViewModel(summary DividendSummary, inventory InventorySummary, goals Goals, msgs GoalMessages, asOf date.Date) GoalViewModel {
	var vm GoalViewModel

	for i, g := range goals.Cash {
		actual := cashGoalActual(summary, g.Type, asOf)
		percent := progress(actual, g.Target)
		if i == 0 {
			vm.PrimaryType = g.Type
			vm.Achievement = percent
		}
		vm.Rows = append(vm.Rows, GoalProgress{
			Label:        fmt.Sprintf("%s %s", g.Type, g.Currency),
			Percent:      percent,
			PercentLabel: percentLabel(percent),
			Message:      tieredMessage(percent, msgs),
			Actual:       M(actual, g.Currency),
			Target:       M(g.Target, g.Currency),
		})
	}

	held := make(map[string]int64, len(inventory.Positions))
	names := make(map[string]string, len(inventory.Positions))
	for _, p := range inventory.Positions {
		held[p.StockID] = p.TotalQuantity
		names[p.StockID] = p.StockName
	}
	for _, g := range goals.Shares {
		actual := decimal.NewFromInt(held[g.StockID])
		target := decimal.NewFromInt(g.TargetLots * SharesPerLot)
		percent := progress(actual, target)
		label := g.StockID
		if name := names[g.StockID]; name != "" {
			label = fmt.Sprintf("%s %s", g.StockID, name)
		}
		vm.Rows = append(vm.Rows, GoalProgress{
			Label:        label,
			Percent:      percent,
			PercentLabel: percentLabel(percent),
			Message:      tieredMessage(percent, msgs),
			Actual:       M(actual, ""),
			Target:       M(target, ""),
		})
	}
	return vm
}

func cashGoalActual(summary DividendSummary, t GoalType, asOf date.Date) decimal.Decimal {
	switch t {
	case GoalMonthly:
		return summary.MonthlyAverage
	case GoalMinimum:
		var min decimal.Decimal
		first := true
		for _, v := range summary.MonthlyTotals {
			if first || v.LessThan(min) {
				min = v
				first = false
			}
		}
		if first {
			return decimal.Zero
		}
		return min
	default: // annual
		return summary.CurrentYearTotal(asOf.Year())
	}
}

// progress returns actual/target capped at 1, or zero for a non-positive target.
func progress(actual, target decimal.Decimal) decimal.Decimal {
	if !target.IsPositive() {
		return decimal.Zero
	}
	p := actual.Div(target)
	if p.GreaterThan(decimal.NewFromInt(1)) {
		return decimal.NewFromInt(1)
	}
	return p
}

func percentLabel(percent decimal.Decimal) string {
	whole := percent.Mul(decimal.NewFromInt(100)).Round(0).IntPart()
	if whole > 100 {
		whole = 100
	}
	return fmt.Sprintf("%d%%", whole)
}

func tieredMessage(percent decimal.Decimal, msgs GoalMessages) string {
	switch {
	case percent.GreaterThanOrEqual(decimal.NewFromInt(1)):
		return msgs.Done
	case percent.GreaterThanOrEqual(decimal.NewFromFloat(0.5)):
		return msgs.Halfway
	default:
		return ""
	}
}
