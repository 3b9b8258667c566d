// Package ledger owns the authoritative ledger snapshot and the action
// protocol used to change it.
package ledger

import (
	"expensetracker/internal/core"
	"expensetracker/internal/ids"
)

// Action is one of the mutations below. The set is closed.
type Action interface {
	Op() string
	action()
}

type (
	AddTransaction struct {
		Input core.TransactionInput
	}
	DeleteTransaction struct {
		ID string
	}
	// UpdateTransaction replaces the transaction with the same ID.
	UpdateTransaction struct {
		Transaction core.Transaction
	}
	AddCategory struct {
		Input core.CategoryInput
	}
	DeleteCategory struct {
		ID string
	}
	AddBudget struct {
		Input core.BudgetInput
	}
	UpdateBudget struct {
		Budget core.Budget
	}
	DeleteBudget struct {
		ID string
	}
	// ReplaceLedger swaps the whole snapshot, as an import does.
	ReplaceLedger struct {
		Ledger core.Ledger
	}
	// ResetLedger goes back to the default categories with no records.
	ResetLedger struct{}
)

func (AddTransaction) Op() string    { return "add_transaction" }
func (DeleteTransaction) Op() string { return "delete_transaction" }
func (UpdateTransaction) Op() string { return "update_transaction" }
func (AddCategory) Op() string       { return "add_category" }
func (DeleteCategory) Op() string    { return "delete_category" }
func (AddBudget) Op() string         { return "add_budget" }
func (UpdateBudget) Op() string      { return "update_budget" }
func (DeleteBudget) Op() string      { return "delete_budget" }
func (ReplaceLedger) Op() string     { return "replace_ledger" }
func (ResetLedger) Op() string       { return "reset_ledger" }

func (AddTransaction) action()    {}
func (DeleteTransaction) action() {}
func (UpdateTransaction) action() {}
func (AddCategory) action()       {}
func (DeleteCategory) action()    {}
func (AddBudget) action()         {}
func (UpdateBudget) action()      {}
func (DeleteBudget) action()      {}
func (ReplaceLedger) action()     {}
func (ResetLedger) action()       {}

// Reduce applies a to l and returns the next snapshot. It never modifies l and
// performs no validation: deleting or updating an unknown id returns a ledger
// equal to l.
func Reduce(l core.Ledger, a Action, gen ids.Generator) core.Ledger {
	next, _, _ := apply(l, a, gen)
	return next
}

// apply is Reduce plus whether anything changed and, for adds, the assigned id.
func apply(l core.Ledger, a Action, gen ids.Generator) (core.Ledger, bool, string) {
	next := l.Clone()

	switch a := a.(type) {
	case AddTransaction:
		id := freshID(gen, func(id string) bool { _, ok := l.TransactionByID(id); return ok })
		next.Transactions = append(next.Transactions, a.Input.WithID(id))
		return next, true, id

	case DeleteTransaction:
		var removed bool
		next.Transactions, removed = removeWhere(next.Transactions, func(t core.Transaction) bool { return t.ID == a.ID })
		return next, removed, ""

	case UpdateTransaction:
		for i := range next.Transactions {
			if next.Transactions[i].ID == a.Transaction.ID {
				next.Transactions[i] = a.Transaction
				return next, true, ""
			}
		}
		return next, false, ""

	case AddCategory:
		id := freshID(gen, func(id string) bool { _, ok := l.CategoryByID(id); return ok })
		next.Categories = append(next.Categories, a.Input.WithID(id))
		return next, true, id

	case DeleteCategory:
		var removed bool
		next.Categories, removed = removeWhere(next.Categories, func(c core.Category) bool { return c.ID == a.ID })
		return next, removed, ""

	case AddBudget:
		id := freshID(gen, func(id string) bool { _, ok := l.BudgetByID(id); return ok })
		next.Budgets = append(next.Budgets, a.Input.WithID(id))
		return next, true, id

	case UpdateBudget:
		for i := range next.Budgets {
			if next.Budgets[i].ID == a.Budget.ID {
				next.Budgets[i] = a.Budget
				return next, true, ""
			}
		}
		return next, false, ""

	case DeleteBudget:
		var removed bool
		next.Budgets, removed = removeWhere(next.Budgets, func(b core.Budget) bool { return b.ID == a.ID })
		return next, removed, ""

	case ReplaceLedger:
		return a.Ledger.Clone(), true, ""

	case ResetLedger:
		return core.DefaultLedger(), true, ""
	}

	return next, false, ""
}

// freshID asks gen for an id not yet used in the collection. A generator
// that keeps colliding (a fixed Func, a Sequence over imported data) falls
// back to a random UUID.
func freshID(gen ids.Generator, taken func(string) bool) string {
	for i := 0; i < 16; i++ {
		if id := gen.NewID(); id != "" && !taken(id) {
			return id
		}
	}
	return ids.UUID{}.NewID()
}

func removeWhere[T any](items []T, match func(T) bool) ([]T, bool) {
	out := items[:0]
	removed := false
	for _, it := range items {
		if match(it) {
			removed = true
			continue
		}
		out = append(out, it)
	}
	return out, removed
}

// removeCategoryReferences drops every transaction and budget naming category.
func removeCategoryReferences(l core.Ledger, category string) core.Ledger {
	l.Transactions, _ = removeWhere(l.Transactions, func(t core.Transaction) bool { return t.Category == category })
	l.Budgets, _ = removeWhere(l.Budgets, func(b core.Budget) bool { return b.Category == category })
	return l
}
