package core

import (
	"sort"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// TotalExpenses sums the amounts of expense transactions.
func TotalExpenses(txs []Transaction) decimal.Decimal {
	return sumKind(txs, KindExpense)
}

// TotalIncome sums the amounts of income transactions.
func TotalIncome(txs []Transaction) decimal.Decimal {
	return sumKind(txs, KindIncome)
}

// Balance is income minus expenses; the only place a sign shows up.
func Balance(txs []Transaction) decimal.Decimal {
	return TotalIncome(txs).Sub(TotalExpenses(txs))
}

func sumKind(txs []Transaction, kind Kind) decimal.Decimal {
	total := decimal.Zero
	for _, t := range txs {
		if t.Kind == kind {
			total = total.Add(t.Amount)
		}
	}
	return total
}

// GroupByCategory sums expense amounts per category name. Income is ignored and
// categories without expenses are absent from the result.
func GroupByCategory(txs []Transaction) map[string]decimal.Decimal {
	out := make(map[string]decimal.Decimal)
	for _, t := range txs {
		if t.Kind != KindExpense {
			continue
		}
		out[t.Category] = out[t.Category].Add(t.Amount)
	}
	return out
}

// FilterByMonth keeps the transactions dated within month (1-12) of year, in order.
func FilterByMonth(txs []Transaction, month, year int) []Transaction {
	out := make([]Transaction, 0, len(txs))
	for _, t := range txs {
		if t.Date.InMonth(month, year) {
			out = append(out, t)
		}
	}
	return out
}

// PreviousMonth returns the calendar month before month/year.
func PreviousMonth(month, year int) (int, int) {
	if month <= 1 {
		return 12, year - 1
	}
	return month - 1, year
}

// PercentChange is (current-previous)/previous*100, defined as 0 when previous
// is zero so that a first month with data never reports infinity.
func PercentChange(current, previous decimal.Decimal) float64 {
	if previous.IsZero() {
		return 0
	}
	return current.Sub(previous).Div(previous).Mul(hundred).InexactFloat64()
}

// MonthOverMonthChange compares the expense total of month/year with the one of
// the month before.
func MonthOverMonthChange(txs []Transaction, month, year int) float64 {
	pm, py := PreviousMonth(month, year)
	current := TotalExpenses(FilterByMonth(txs, month, year))
	previous := TotalExpenses(FilterByMonth(txs, pm, py))
	return PercentChange(current, previous)
}

// CategoryAmount represents an amount aggregated by category name.
type CategoryAmount struct {
	Name   string          `json:"name"`
	Amount decimal.Decimal `json:"amount"`
	Share  float64         `json:"share"` // percent of the expense total
}

// CategoryShares returns per-category expense totals with their share of all
// expenses, largest first. Ties keep name order.
func CategoryShares(txs []Transaction) []CategoryAmount {
	grouped := GroupByCategory(txs)
	total := decimal.Zero
	for _, v := range grouped {
		total = total.Add(v)
	}
	out := make([]CategoryAmount, 0, len(grouped))
	for name, amount := range grouped {
		share := 0.0
		if total.IsPositive() {
			share = amount.Div(total).Mul(hundred).InexactFloat64()
		}
		out = append(out, CategoryAmount{Name: name, Amount: amount, Share: share})
	}
	sort.Slice(out, func(i, j int) bool {
		if c := out[i].Amount.Cmp(out[j].Amount); c != 0 {
			return c > 0
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// MonthOverview is a compact summary for a specific year+month.
type MonthOverview struct {
	Year              int              `json:"year"`
	Month             int              `json:"month"` // 1-12
	TotalExpenses     decimal.Decimal  `json:"total_expenses"`
	TotalIncome       decimal.Decimal  `json:"total_income"`
	Balance           decimal.Decimal  `json:"balance"`
	PreviousExpenses  decimal.Decimal  `json:"previous_expenses"`
	ExpenseChangePct  float64          `json:"expense_change_pct"`
	ByCategory        []CategoryAmount `json:"by_category"`
	TransactionsCount int              `json:"transactions_count"`
}

// Summarize builds the dashboard numbers of month/year from the full list.
func Summarize(txs []Transaction, month, year int) MonthOverview {
	current := FilterByMonth(txs, month, year)
	pm, py := PreviousMonth(month, year)
	previous := TotalExpenses(FilterByMonth(txs, pm, py))
	expenses := TotalExpenses(current)

	return MonthOverview{
		Year:              year,
		Month:             month,
		TotalExpenses:     expenses,
		TotalIncome:       TotalIncome(current),
		Balance:           Balance(current),
		PreviousExpenses:  previous,
		ExpenseChangePct:  PercentChange(expenses, previous),
		ByCategory:        CategoryShares(current),
		TransactionsCount: len(current),
	}
}
