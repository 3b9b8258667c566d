// Package budget measures spending against category budgets.
package budget

import (
	"math"

	"github.com/shopspring/decimal"

	"expensetracker/internal/core"
)

// Status is the utilisation band of a budget.
type Status string

const (
	StatusNone     Status = "none"
	StatusOK       Status = "ok"
	StatusCaution  Status = "caution"
	StatusWarning  Status = "warning"
	StatusCritical Status = "critical"
)

// Band thresholds. Warning and critical start strictly above their value.
// Caution is inclusive: a budget exactly half spent reads as caution, where a
// strict > 50 comparison would still call it ok.
const (
	cautionAt  = 50.0
	warningAt  = 75.0
	criticalAt = 90.0
)

var hundred = decimal.NewFromInt(100)

// Evaluation is the utilisation of one category's budget. Limit is nil when
// the category has no budget.
type Evaluation struct {
	Category   string           `json:"category"`
	Spent      decimal.Decimal  `json:"spent"`
	Limit      *decimal.Decimal `json:"limit"`
	Percentage float64          `json:"percentage"`
	Status     Status           `json:"status"`
}

// StatusFor maps a percentage to its band. Without a limit the status is none.
func StatusFor(percentage float64, hasLimit bool) Status {
	switch {
	case !hasLimit:
		return StatusNone
	case percentage > criticalAt:
		return StatusCritical
	case percentage > warningAt:
		return StatusWarning
	case percentage >= cautionAt:
		return StatusCaution
	default:
		return StatusOK
	}
}

// Evaluate sums the expenses of category in month/year and compares them with
// the first budget for that category. The percentage is not clamped.
func Evaluate(category string, budgets []core.Budget, txs []core.Transaction, month, year int) Evaluation {
	var inMonth []core.Transaction
	for _, t := range txs {
		if t.Category == category && t.Date.InMonth(month, year) {
			inMonth = append(inMonth, t)
		}
	}
	return evaluate(category, budgets, core.TotalExpenses(inMonth))
}

func evaluate(category string, budgets []core.Budget, spent decimal.Decimal) Evaluation {
	e := Evaluation{Category: category, Spent: spent}
	if b, ok := (core.Ledger{Budgets: budgets}).BudgetForCategory(category); ok {
		limit := b.Amount
		e.Limit = &limit
	}
	if e.Limit != nil && e.Limit.IsPositive() {
		e.Percentage = spent.Div(*e.Limit).Mul(hundred).InexactFloat64()
	}
	e.Status = StatusFor(e.Percentage, e.Limit != nil)
	return e
}

// BarWidth is the percentage clamped to [0, 100] for progress bars.
func (e Evaluation) BarWidth() float64 {
	return math.Max(0, math.Min(100, e.Percentage))
}

// Over reports whether spending exceeded the limit.
func (e Evaluation) Over() bool {
	return e.Percentage > 100
}

// Remaining is limit minus spent, negative when over budget, and zero
// without a limit.
func (e Evaluation) Remaining() decimal.Decimal {
	if e.Limit == nil {
		return decimal.Zero
	}
	return e.Limit.Sub(e.Spent)
}

// EvaluateAll evaluates every category except the income one, in ledger order.
func EvaluateAll(l core.Ledger, month, year int) []Evaluation {
	out := make([]Evaluation, 0, len(l.Categories))
	for _, c := range l.Categories {
		if core.IsIncomeCategory(c.Name) {
			continue
		}
		out = append(out, Evaluate(c.Name, l.Budgets, l.Transactions, month, year))
	}
	return out
}
