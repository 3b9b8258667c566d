package ledger

import (
	"fmt"
	"strings"

	"expensetracker/internal/core"
)

// CategoryDeletePolicy decides what happens to records that still name a
// category being deleted.
type CategoryDeletePolicy string

const (
	// OrphanReferences leaves transactions and budgets pointing at the old name.
	OrphanReferences CategoryDeletePolicy = "orphan"
	// BlockReferenced refuses to delete a category that is still referenced.
	BlockReferenced CategoryDeletePolicy = "block"
	// CascadeReferences deletes the referencing transactions and budgets too.
	CascadeReferences CategoryDeletePolicy = "cascade"
)

func ParseCategoryDeletePolicy(s string) (CategoryDeletePolicy, error) {
	switch p := CategoryDeletePolicy(strings.ToLower(strings.TrimSpace(s))); p {
	case "":
		return OrphanReferences, nil
	case OrphanReferences, BlockReferenced, CascadeReferences:
		return p, nil
	default:
		return "", fmt.Errorf("unknown category delete policy %q", s)
	}
}

// Policy holds the preconditions the store checks before reducing.
type Policy struct {
	// RequireKnownCategory rejects transactions and budgets naming a
	// category that does not exist.
	RequireKnownCategory bool
	CategoryDelete       CategoryDeletePolicy
}

func DefaultPolicy() Policy {
	return Policy{RequireKnownCategory: true, CategoryDelete: OrphanReferences}
}

// Check returns a *RejectedError when a must not be applied to l. Actions
// targeting ids that do not exist pass, since reducing them is a no-op.
func (p Policy) Check(l core.Ledger, a Action) error {
	op := a.Op()
	switch a := a.(type) {
	case AddTransaction:
		return p.checkTransaction(l, op, a.Input)

	case UpdateTransaction:
		if _, ok := l.TransactionByID(a.Transaction.ID); !ok {
			return nil
		}
		return p.checkTransaction(l, op, a.Transaction.Input())

	case AddCategory:
		if err := a.Input.Validate(); err != nil {
			return reject(op, err)
		}
		if _, exists := l.CategoryByName(a.Input.Name); exists {
			return reject(op, ErrDuplicateCategory)
		}

	case DeleteCategory:
		c, ok := l.CategoryByID(a.ID)
		if !ok {
			return nil
		}
		if core.IsProtectedCategory(c.Name) {
			return reject(op, ErrProtectedCategory)
		}
		if p.CategoryDelete == BlockReferenced && l.CategoryReferences(c.Name).Any() {
			return reject(op, ErrCategoryInUse)
		}

	case AddBudget:
		return p.checkBudget(l, op, "", a.Input)

	case UpdateBudget:
		if _, ok := l.BudgetByID(a.Budget.ID); !ok {
			return nil
		}
		return p.checkBudget(l, op, a.Budget.ID, a.Budget.Input())

	case ReplaceLedger:
		if err := checkLedger(a.Ledger); err != nil {
			return reject(op, err)
		}
	}
	return nil
}

// checkLedger validates a whole snapshot the way the single-record actions
// would have built it: valid records, unique ids per collection, unique
// category names and one budget per category. References to unknown
// categories are allowed, as the orphan delete policy can leave them behind.
func checkLedger(l core.Ledger) error {
	invalid := func(kind, id string, err error) error {
		return fmt.Errorf("%w: %s %q: %w", ErrInvalidLedger, kind, id, err)
	}

	seen := make(map[string]bool, len(l.Transactions))
	for _, t := range l.Transactions {
		if err := checkID(seen, t.ID); err != nil {
			return invalid("transaction", t.ID, err)
		}
		if err := t.Input().Validate(); err != nil {
			return invalid("transaction", t.ID, err)
		}
	}

	seen = make(map[string]bool, len(l.Categories))
	names := make(map[string]bool, len(l.Categories))
	for _, c := range l.Categories {
		if err := checkID(seen, c.ID); err != nil {
			return invalid("category", c.ID, err)
		}
		if err := (core.CategoryInput{Name: c.Name}).Validate(); err != nil {
			return invalid("category", c.ID, err)
		}
		key := strings.ToLower(strings.TrimSpace(c.Name))
		if names[key] {
			return invalid("category", c.ID, ErrDuplicateCategory)
		}
		names[key] = true
	}

	seen = make(map[string]bool, len(l.Budgets))
	budgeted := make(map[string]bool, len(l.Budgets))
	for _, b := range l.Budgets {
		if err := checkID(seen, b.ID); err != nil {
			return invalid("budget", b.ID, err)
		}
		if err := b.Input().Validate(); err != nil {
			return invalid("budget", b.ID, err)
		}
		if budgeted[b.Category] {
			return invalid("budget", b.ID, ErrDuplicateBudget)
		}
		budgeted[b.Category] = true
	}
	return nil
}

func checkID(seen map[string]bool, id string) error {
	if strings.TrimSpace(id) == "" {
		return ErrMissingID
	}
	if seen[id] {
		return ErrDuplicateID
	}
	seen[id] = true
	return nil
}

func (p Policy) checkTransaction(l core.Ledger, op string, in core.TransactionInput) error {
	if err := in.Validate(); err != nil {
		return reject(op, err)
	}
	if p.RequireKnownCategory {
		if _, ok := l.CategoryByName(in.Category); !ok {
			return reject(op, ErrUnknownCategory)
		}
	}
	return nil
}

func (p Policy) checkBudget(l core.Ledger, op, selfID string, in core.BudgetInput) error {
	if err := in.Validate(); err != nil {
		return reject(op, err)
	}
	if p.RequireKnownCategory {
		if _, ok := l.CategoryByName(in.Category); !ok {
			return reject(op, ErrUnknownCategory)
		}
	}
	for _, b := range l.Budgets {
		if b.ID != selfID && b.Category == in.Category {
			return reject(op, ErrDuplicateBudget)
		}
	}
	return nil
}
