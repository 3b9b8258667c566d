package http

import (
	"net/http"

	"expensetracker/internal/core"
)

// recentCount is the number of transactions shown on the dashboard.
const recentCount = 5

type formattedOverview struct {
	TotalExpenses    string `json:"total_expenses"`
	TotalIncome      string `json:"total_income"`
	Balance          string `json:"balance"`
	PreviousExpenses string `json:"previous_expenses"`
	ExpenseChange    string `json:"expense_change"`
}

type summaryResponse struct {
	core.MonthOverview
	Formatted formattedOverview  `json:"formatted"`
	Recent    []core.Transaction `json:"recent"`
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	p := ParseMonthParams(r.URL.Query(), s.now())
	txs := s.store.Snapshot().Transactions
	ov := core.Summarize(txs, p.Month, p.Year)

	NewJSONResponse().Data(summaryResponse{
		MonthOverview: ov,
		Formatted: formattedOverview{
			TotalExpenses:    s.formatter.FormatCurrency(ov.TotalExpenses),
			TotalIncome:      s.formatter.FormatCurrency(ov.TotalIncome),
			Balance:          s.formatter.FormatCurrency(ov.Balance),
			PreviousExpenses: s.formatter.FormatCurrency(ov.PreviousExpenses),
			ExpenseChange:    signedPercent(s.formatter, ov.ExpenseChangePct),
		},
		Recent: core.Recent(txs, recentCount),
	}).Write(w)
}

func signedPercent(f *core.Formatter, pct float64) string {
	if pct > 0 {
		return "+" + f.FormatPercent(pct)
	}
	return f.FormatPercent(pct)
}
