package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func ids(txs []Transaction) []string {
	out := make([]string, 0, len(txs))
	for _, t := range txs {
		out = append(out, t.ID)
	}
	return out
}

func TestFilterMatch(t *testing.T) {
	txs := []Transaction{
		{ID: "1", Description: "Lunch at Mario's", Category: "Food", Kind: KindExpense},
		{ID: "2", Description: "Monthly salary", Category: "Salary", Kind: KindIncome},
		{ID: "3", Description: "Team LUNCH", Category: "Food", Kind: KindExpense},
		{ID: "4", Description: "Train", Category: "Transport", Kind: KindExpense},
	}

	tests := []struct {
		name   string
		filter Filter
		want   []string
	}{
		{"zero filter matches all", Filter{}, []string{"1", "2", "3", "4"}},
		{"by kind", Filter{Kind: KindIncome}, []string{"2"}},
		{"by category", Filter{Category: "Food"}, []string{"1", "3"}},
		{"search is case-insensitive", Filter{Search: "lunch"}, []string{"1", "3"}},
		{"combined", Filter{Kind: KindExpense, Category: "Transport", Search: "rai"}, []string{"4"}},
		{"no match", Filter{Category: "Housing"}, []string{}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ids(tc.filter.Apply(txs)))
		})
	}
}

func TestSortTransactions(t *testing.T) {
	txs := []Transaction{
		{ID: "a", Description: "Coffee", Amount: dec("3.5"), Date: NewDate(2024, 3, 2)},
		{ID: "b", Description: "Books", Amount: dec("20"), Date: NewDate(2024, 3, 1)},
		{ID: "c", Description: "Apples", Amount: dec("3.5"), Date: NewDate(2024, 3, 5)},
	}

	tests := []struct {
		field SortField
		order SortOrder
		want  []string
	}{
		{SortByDate, Descending, []string{"c", "a", "b"}},
		{SortByDate, Ascending, []string{"b", "a", "c"}},
		{SortByAmount, Descending, []string{"b", "a", "c"}}, // ties keep input order
		{SortByAmount, Ascending, []string{"a", "c", "b"}},
		{SortByDescription, Ascending, []string{"c", "b", "a"}},
		{"", "", []string{"a", "b", "c"}},
	}
	for _, tc := range tests {
		t.Run(string(tc.field)+"/"+string(tc.order), func(t *testing.T) {
			assert.Equal(t, tc.want, ids(SortTransactions(txs, tc.field, tc.order)))
		})
	}

	// input untouched
	assert.Equal(t, []string{"a", "b", "c"}, ids(txs))
}

func TestRecentAndUniqueCategories(t *testing.T) {
	txs := sampleTransactions()

	assert.Equal(t, []string{"dinner", "pay", "bus"}, ids(Recent(txs, 3)))
	assert.Len(t, Recent(txs, 100), len(txs))
	assert.Empty(t, Recent(txs, 0))

	assert.Equal(t, []string{"Food", "Transport", "Salary", "Housing", "Shopping"}, UniqueCategories(txs))
}
