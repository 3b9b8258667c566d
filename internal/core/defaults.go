package core

const (
	DefaultCategoryColor = "#3B82F6"
	DefaultCategoryIcon  = "tag"

	// IncomeCategory is the only default category meant for income.
	IncomeCategory = "Salary"
)

var defaultCategories = []Category{
	{ID: "1", Name: "Food", Color: "#10B981", Icon: "utensils"},
	{ID: "2", Name: "Transport", Color: "#3B82F6", Icon: "car"},
	{ID: "3", Name: "Entertainment", Color: "#F59E0B", Icon: "film"},
	{ID: "4", Name: "Housing", Color: "#6366F1", Icon: "home"},
	{ID: "5", Name: "Shopping", Color: "#EC4899", Icon: "shopping-bag"},
	{ID: "6", Name: "Utilities", Color: "#8B5CF6", Icon: "plug"},
	{ID: "7", Name: "Healthcare", Color: "#EF4444", Icon: "activity"},
	{ID: "8", Name: IncomeCategory, Color: "#34D399", Icon: "dollar-sign"},
}

// DefaultCategories returns a fresh copy of the built-in categories.
func DefaultCategories() []Category {
	return append([]Category(nil), defaultCategories...)
}

// DefaultLedger is the state of a first run: built-in categories, nothing else.
func DefaultLedger() Ledger {
	return Ledger{
		Transactions: []Transaction{},
		Categories:   DefaultCategories(),
		Budgets:      []Budget{},
	}
}

// IsProtectedCategory reports whether name is one of the built-in categories,
// which may never be deleted.
func IsProtectedCategory(name string) bool {
	for _, c := range defaultCategories {
		if c.Name == name {
			return true
		}
	}
	return false
}

func IsIncomeCategory(name string) bool {
	return name == IncomeCategory
}
