package core

import "strings"

// Ledger is the full set of transactions, categories and budgets at a point in time.
type Ledger struct {
	Transactions []Transaction `json:"transactions"`
	Categories   []Category    `json:"categories"`
	Budgets      []Budget      `json:"budgets"`
}

// Clone returns a copy whose slices can be modified without touching l.
func (l Ledger) Clone() Ledger {
	return Ledger{
		Transactions: append([]Transaction{}, l.Transactions...),
		Categories:   append([]Category{}, l.Categories...),
		Budgets:      append([]Budget{}, l.Budgets...),
	}
}

// Normalized replaces nil collections with empty ones so the ledger always
// serialises as arrays.
func (l Ledger) Normalized() Ledger {
	if l.Transactions == nil {
		l.Transactions = []Transaction{}
	}
	if l.Categories == nil {
		l.Categories = []Category{}
	}
	if l.Budgets == nil {
		l.Budgets = []Budget{}
	}
	return l
}

func (l Ledger) TransactionByID(id string) (Transaction, bool) {
	for _, t := range l.Transactions {
		if t.ID == id {
			return t, true
		}
	}
	return Transaction{}, false
}

func (l Ledger) CategoryByID(id string) (Category, bool) {
	for _, c := range l.Categories {
		if c.ID == id {
			return c, true
		}
	}
	return Category{}, false
}

// CategoryByName matches case-insensitively, the rule used for name uniqueness.
func (l Ledger) CategoryByName(name string) (Category, bool) {
	name = strings.TrimSpace(name)
	for _, c := range l.Categories {
		if strings.EqualFold(c.Name, name) {
			return c, true
		}
	}
	return Category{}, false
}

func (l Ledger) BudgetByID(id string) (Budget, bool) {
	for _, b := range l.Budgets {
		if b.ID == id {
			return b, true
		}
	}
	return Budget{}, false
}

// BudgetForCategory returns the first budget constraining the named category.
func (l Ledger) BudgetForCategory(name string) (Budget, bool) {
	for _, b := range l.Budgets {
		if b.Category == name {
			return b, true
		}
	}
	return Budget{}, false
}

// References counts the records still pointing at a category name.
type References struct {
	Transactions int
	Budgets      int
}

func (r References) Any() bool {
	return r.Transactions > 0 || r.Budgets > 0
}

func (l Ledger) CategoryReferences(name string) References {
	var refs References
	for _, t := range l.Transactions {
		if t.Category == name {
			refs.Transactions++
		}
	}
	for _, b := range l.Budgets {
		if b.Category == name {
			refs.Budgets++
		}
	}
	return refs
}
