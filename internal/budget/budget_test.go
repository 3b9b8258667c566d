package budget

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"expensetracker/internal/core"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func expense(amount, category string, date core.Date) core.Transaction {
	return core.Transaction{ID: amount + category, Amount: d(amount), Category: category, Description: "x", Date: date, Kind: core.KindExpense}
}

func foodBudget(amount string) []core.Budget {
	return []core.Budget{{ID: "b1", Category: "Food", Amount: d(amount), Period: core.Monthly}}
}

func TestEvaluateHalfSpentIsCaution(t *testing.T) {
	txs := []core.Transaction{expense("50", "Food", core.NewDate(2024, 3, 10))}

	e := Evaluate("Food", foodBudget("100"), txs, 3, 2024)

	assert.True(t, e.Spent.Equal(d("50")))
	require.NotNil(t, e.Limit)
	assert.True(t, e.Limit.Equal(d("100")))
	assert.InDelta(t, 50.0, e.Percentage, 1e-9)
	assert.Equal(t, StatusCaution, e.Status)
	assert.False(t, e.Over())
}

func TestEvaluateOverBudgetIsCritical(t *testing.T) {
	txs := []core.Transaction{
		expense("60", "Food", core.NewDate(2024, 3, 1)),
		expense("50", "Food", core.NewDate(2024, 3, 31)),
	}

	e := Evaluate("Food", foodBudget("100"), txs, 3, 2024)

	assert.InDelta(t, 110.0, e.Percentage, 1e-9)
	assert.Equal(t, StatusCritical, e.Status)
	assert.Equal(t, 100.0, e.BarWidth())
	assert.True(t, e.Over())
	assert.True(t, e.Remaining().Equal(d("-10")))
}

func TestEvaluateWithoutBudget(t *testing.T) {
	txs := []core.Transaction{expense("20", "Transport", core.NewDate(2024, 3, 1))}

	e := Evaluate("Transport", foodBudget("100"), txs, 3, 2024)

	assert.Nil(t, e.Limit)
	assert.Equal(t, 0.0, e.Percentage)
	assert.Equal(t, StatusNone, e.Status)
	assert.True(t, e.Spent.Equal(d("20")))
	assert.True(t, e.Remaining().IsZero())
}

func TestEvaluateIgnoresIncomeOtherMonthsAndCategories(t *testing.T) {
	txs := []core.Transaction{
		expense("10", "Food", core.NewDate(2024, 3, 1)),
		expense("99", "Food", core.NewDate(2024, 2, 29)),
		expense("99", "Housing", core.NewDate(2024, 3, 1)),
		{ID: "refund", Amount: d("99"), Category: "Food", Date: core.NewDate(2024, 3, 2), Kind: core.KindIncome},
	}

	e := Evaluate("Food", foodBudget("40"), txs, 3, 2024)

	assert.True(t, e.Spent.Equal(d("10")))
	assert.InDelta(t, 25.0, e.Percentage, 1e-9)
	assert.Equal(t, StatusOK, e.Status)
}

func TestEvaluateUsesFirstMatchingBudget(t *testing.T) {
	budgets := append(foodBudget("200"), core.Budget{ID: "b2", Category: "Food", Amount: d("10"), Period: core.Monthly})
	e := Evaluate("Food", budgets, []core.Transaction{expense("50", "Food", core.NewDate(2024, 3, 1))}, 3, 2024)
	assert.InDelta(t, 25.0, e.Percentage, 1e-9)
}

func TestZeroLimitGivesZeroPercentage(t *testing.T) {
	e := Evaluate("Food", foodBudget("0"), []core.Transaction{expense("5", "Food", core.NewDate(2024, 3, 1))}, 3, 2024)
	require.NotNil(t, e.Limit)
	assert.Equal(t, 0.0, e.Percentage)
	assert.Equal(t, StatusOK, e.Status)
}

func TestStatusBands(t *testing.T) {
	tests := []struct {
		pct  float64
		want Status
	}{
		{0, StatusOK},
		{49.99, StatusOK},
		{50, StatusCaution},
		{75, StatusCaution},
		{75.01, StatusWarning},
		{90, StatusWarning},
		{90.01, StatusCritical},
		{250, StatusCritical},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, StatusFor(tc.pct, true), "pct %v", tc.pct)
	}
	assert.Equal(t, StatusNone, StatusFor(95, false))
}

func TestEvaluateAllSkipsIncomeCategory(t *testing.T) {
	l := core.DefaultLedger()
	l.Budgets = foodBudget("100")
	l.Transactions = []core.Transaction{expense("80", "Food", core.NewDate(2024, 3, 3))}

	all := EvaluateAll(l, 3, 2024)

	require.Len(t, all, 7)
	for _, e := range all {
		assert.NotEqual(t, "Salary", e.Category)
	}
	assert.Equal(t, "Food", all[0].Category)
	assert.Equal(t, StatusWarning, all[0].Status)
	assert.Equal(t, StatusNone, all[1].Status)
}

func TestWindows(t *testing.T) {
	// Wednesday
	now := time.Date(2024, 3, 13, 15, 30, 0, 0, time.UTC)

	tests := []struct {
		period     core.Period
		start, end time.Time
	}{
		{core.Daily, time.Date(2024, 3, 13, 0, 0, 0, 0, time.UTC), time.Date(2024, 3, 14, 0, 0, 0, 0, time.UTC)},
		{core.Weekly, time.Date(2024, 3, 11, 0, 0, 0, 0, time.UTC), time.Date(2024, 3, 18, 0, 0, 0, 0, time.UTC)},
		{core.Monthly, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)},
	}
	for _, tc := range tests {
		t.Run(string(tc.period), func(t *testing.T) {
			start, end, err := WindowFor(tc.period, now)
			require.NoError(t, err)
			assert.True(t, start.Equal(tc.start), "start %v", start)
			assert.True(t, end.Equal(tc.end), "end %v", end)
		})
	}

	// Sunday belongs to the week that started the Monday before
	start, _, err := WindowFor(core.Weekly, time.Date(2024, 3, 17, 23, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, 11, start.Day())

	_, _, err = WindowFor("fortnightly", now)
	assert.Error(t, err)
}

func TestEvaluateAllAtUsesBudgetPeriods(t *testing.T) {
	// Friday; the week runs from Monday the 11th
	now := time.Date(2024, 3, 15, 9, 30, 0, 0, time.UTC)

	l := core.DefaultLedger()
	l.Budgets = []core.Budget{
		{ID: "w", Category: "Food", Amount: d("100"), Period: core.Weekly},
		{ID: "m", Category: "Transport", Amount: d("100"), Period: core.Monthly},
	}
	l.Transactions = []core.Transaction{
		expense("60", "Food", core.NewDate(2024, 3, 1)),
		expense("50", "Food", core.NewDate(2024, 3, 13)),
		expense("60", "Transport", core.NewDate(2024, 3, 1)),
		expense("20", "Shopping", core.NewDate(2024, 3, 2)),
	}

	byCategory := func(evals []Evaluation) map[string]Evaluation {
		m := make(map[string]Evaluation, len(evals))
		for _, e := range evals {
			m[e.Category] = e
		}
		return m
	}

	monthly := byCategory(EvaluateAll(l, 3, 2024))
	assert.Equal(t, StatusCritical, monthly["Food"].Status)

	all, err := EvaluateAllAt(l, now)
	require.NoError(t, err)
	require.Len(t, all, 7)
	got := byCategory(all)

	assert.True(t, got["Food"].Spent.Equal(d("50")))
	assert.Equal(t, StatusCaution, got["Food"].Status)
	assert.True(t, got["Transport"].Spent.Equal(d("60")))
	assert.Equal(t, StatusCaution, got["Transport"].Status)
	assert.True(t, got["Shopping"].Spent.Equal(d("20")))
	assert.Equal(t, StatusNone, got["Shopping"].Status)

	l.Budgets[0].Period = "fortnightly"
	_, err = EvaluateAllAt(l, now)
	assert.Error(t, err)
}

func TestEvaluateBudgetWeekly(t *testing.T) {
	b := core.Budget{ID: "w", Category: "Food", Amount: d("40"), Period: core.Weekly}
	txs := []core.Transaction{
		expense("10", "Food", core.NewDate(2024, 3, 10)), // previous Sunday
		expense("20", "Food", core.NewDate(2024, 3, 11)),
		expense("20", "Food", core.NewDate(2024, 3, 17)),
		expense("5", "Transport", core.NewDate(2024, 3, 12)),
	}

	e, err := EvaluateBudget(b, txs, time.Date(2024, 3, 13, 9, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.True(t, e.Spent.Equal(d("40")))
	assert.InDelta(t, 100.0, e.Percentage, 1e-9)
	assert.Equal(t, StatusCritical, e.Status)

	_, err = EvaluateBudget(core.Budget{Period: "never"}, txs, time.Now())
	assert.Error(t, err)
}
