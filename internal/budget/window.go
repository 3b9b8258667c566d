package budget

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"expensetracker/internal/core"
)

// Window computes the half-open interval [start, end) a budget period
// covers around now.
type Window interface {
	Bounds(now time.Time) (start, end time.Time)
}

// DailyWindow is the calendar day containing now.
type DailyWindow struct{}

func (DailyWindow) Bounds(now time.Time) (time.Time, time.Time) {
	start := startOfDay(now)
	return start, start.AddDate(0, 0, 1)
}

// WeeklyWindow is the Monday-to-Sunday week containing now.
type WeeklyWindow struct{}

func (WeeklyWindow) Bounds(now time.Time) (time.Time, time.Time) {
	offset := (int(now.Weekday()) + 6) % 7
	start := startOfDay(now).AddDate(0, 0, -offset)
	return start, start.AddDate(0, 0, 7)
}

// MonthlyWindow is the calendar month containing now.
type MonthlyWindow struct{}

func (MonthlyWindow) Bounds(now time.Time) (time.Time, time.Time) {
	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(0, 1, 0)
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

var windows = map[core.Period]Window{
	core.Daily:   DailyWindow{},
	core.Weekly:  WeeklyWindow{},
	core.Monthly: MonthlyWindow{},
}

// GetWindow returns the window strategy for period.
func GetWindow(period core.Period) (Window, error) {
	w, ok := windows[period]
	if !ok {
		return nil, fmt.Errorf("unknown budget period: %s", period)
	}
	return w, nil
}

// WindowFor returns the bounds of period around now.
func WindowFor(period core.Period, now time.Time) (time.Time, time.Time, error) {
	w, err := GetWindow(period)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	start, end := w.Bounds(now)
	return start, end, nil
}

// EvaluateBudget measures b against the expenses in its own period window.
func EvaluateBudget(b core.Budget, txs []core.Transaction, now time.Time) (Evaluation, error) {
	start, end, err := WindowFor(b.Period, now)
	if err != nil {
		return Evaluation{}, err
	}
	spent := decimal.Zero
	for _, t := range txs {
		if !t.IsExpense() || t.Category != b.Category || t.Date.IsZero() {
			continue
		}
		if !t.Date.Before(start) && t.Date.Before(end) {
			spent = spent.Add(t.Amount)
		}
	}
	return evaluate(b.Category, []core.Budget{b}, spent), nil
}

// EvaluateAllAt is EvaluateAll as of now, with every budget measured over its
// own period window. Categories without a budget are measured over the
// calendar month containing now.
func EvaluateAllAt(l core.Ledger, now time.Time) ([]Evaluation, error) {
	out := make([]Evaluation, 0, len(l.Categories))
	for _, c := range l.Categories {
		if core.IsIncomeCategory(c.Name) {
			continue
		}
		b, ok := l.BudgetForCategory(c.Name)
		if !ok {
			out = append(out, Evaluate(c.Name, nil, l.Transactions, int(now.Month()), now.Year()))
			continue
		}
		e, err := EvaluateBudget(b, l.Transactions, now)
		if err != nil {
			return nil, fmt.Errorf("evaluate budget %s: %w", b.ID, err)
		}
		out = append(out, e)
	}
	return out, nil
}

