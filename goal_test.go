package divtrack

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

var msgs = GoalMessages{Done: "done!", Halfway: "halfway there"}

func summaryWith(annual float64, monthly map[time.Month]float64, asOfYear int) DividendSummary {
	s := DividendSummary{
		AnnualTotal:   map[int]decimal.Decimal{asOfYear: dec(annual)},
		MonthlyTotals: make(map[time.Month]decimal.Decimal),
	}
	var last time.Month
	for m, v := range monthly {
		s.MonthlyTotals[m] = dec(v)
		if m > last {
			last = m
		}
	}
	if last > 0 {
		s.MonthlyAverage = s.AnnualTotal[asOfYear].Div(decimal.NewFromInt(int64(last)))
	}
	return s
}

func TestBuildDividendGoalViewModel_CashGoals(t *testing.T) {
	asOf := d("2024-06-30")
	summary := summaryWith(6000, map[time.Month]float64{time.March: 2000, time.June: 4000}, 2024)

	tests := []struct {
		name        string
		goal        CashGoal
		wantPercent float64
		wantLabel   string
		wantMessage string
	}{
		{
			name:        "annual goal done",
			goal:        CashGoal{Type: GoalAnnual, Currency: "TWD", Target: dec(5000)},
			wantPercent: 1, wantLabel: "100%", wantMessage: "done!",
		},
		{
			name:        "annual goal halfway",
			goal:        CashGoal{Type: GoalAnnual, Currency: "TWD", Target: dec(10000)},
			wantPercent: 0.6, wantLabel: "60%", wantMessage: "halfway there",
		},
		{
			name:        "annual goal far away",
			goal:        CashGoal{Type: GoalAnnual, Currency: "TWD", Target: dec(100000)},
			wantPercent: 0.06, wantLabel: "6%", wantMessage: "",
		},
		{
			name:        "monthly goal uses average",
			goal:        CashGoal{Type: GoalMonthly, Currency: "TWD", Target: dec(1000)},
			wantPercent: 1, wantLabel: "100%", wantMessage: "done!",
		},
		{
			name:        "minimum goal uses worst month",
			goal:        CashGoal{Type: GoalMinimum, Currency: "TWD", Target: dec(4000)},
			wantPercent: 0.5, wantLabel: "50%", wantMessage: "halfway there",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			vm := BuildDividendGoalViewModel(summary, InventorySummary{}, Goals{Cash: []CashGoal{tt.goal}}, msgs, asOf)
			if len(vm.Rows) != 1 {
				t.Fatalf("len(Rows) = %d, want 1", len(vm.Rows))
			}
			row := vm.Rows[0]
			if !row.Percent.Equal(dec(tt.wantPercent)) {
				t.Errorf("Percent = %s, want %v", row.Percent, tt.wantPercent)
			}
			if row.PercentLabel != tt.wantLabel {
				t.Errorf("PercentLabel = %q, want %q", row.PercentLabel, tt.wantLabel)
			}
			if row.Message != tt.wantMessage {
				t.Errorf("Message = %q, want %q", row.Message, tt.wantMessage)
			}
		})
	}
}

func TestBuildDividendGoalViewModel_PrimaryAchievement(t *testing.T) {
	asOf := d("2024-06-30")
	summary := summaryWith(6000, map[time.Month]float64{time.June: 6000}, 2024)
	goals := Goals{Cash: []CashGoal{
		{Type: GoalMonthly, Currency: "TWD", Target: dec(2000)},
		{Type: GoalAnnual, Currency: "TWD", Target: dec(5000)},
	}}
	vm := BuildDividendGoalViewModel(summary, InventorySummary{}, goals, msgs, asOf)
	if vm.PrimaryType != GoalMonthly {
		t.Errorf("PrimaryType = %q, want %q", vm.PrimaryType, GoalMonthly)
	}
	// monthly average 6000/6 = 1000, target 2000 -> 0.5
	if !vm.Achievement.Equal(dec(0.5)) {
		t.Errorf("Achievement = %s, want 0.5", vm.Achievement)
	}
}

func TestBuildDividendGoalViewModel_ShareGoal(t *testing.T) {
	inventory := InventorySummary{Positions: []Position{
		{StockID: "0050", StockName: "ETF A", TotalQuantity: 1500},
	}}
	goals := Goals{Shares: []ShareGoal{{StockID: "0050", TargetLots: 3}}}
	vm := BuildDividendGoalViewModel(DividendSummary{}, inventory, goals, msgs, d("2024-06-30"))
	if len(vm.Rows) != 1 {
		t.Fatalf("len(Rows) = %d, want 1", len(vm.Rows))
	}
	row := vm.Rows[0]
	// 1500 shares against 3 lots = 3000 shares
	if !row.Percent.Equal(dec(0.5)) {
		t.Errorf("Percent = %s, want 0.5", row.Percent)
	}
	if row.Label != "0050 ETF A" {
		t.Errorf("Label = %q, want %q", row.Label, "0050 ETF A")
	}
}

func TestBuildDividendGoalViewModel_ZeroTarget(t *testing.T) {
	goals := Goals{Cash: []CashGoal{{Type: GoalAnnual, Currency: "TWD", Target: decimal.Zero}}}
	vm := BuildDividendGoalViewModel(summaryWith(1000, nil, 2024), InventorySummary{}, goals, msgs, d("2024-06-30"))
	if !vm.Rows[0].Percent.IsZero() {
		t.Errorf("Percent = %s, want 0 for non-positive target", vm.Rows[0].Percent)
	}
}
