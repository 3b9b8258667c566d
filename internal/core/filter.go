package core

import (
	"sort"
	"strings"
)

type (
	SortField string
	SortOrder string
)

const (
	SortByDate        SortField = "date"
	SortByAmount      SortField = "amount"
	SortByDescription SortField = "description"

	Ascending  SortOrder = "asc"
	Descending SortOrder = "desc"
)

// Filter selects transactions for the transaction list. Zero values match all.
type Filter struct {
	Kind     Kind
	Category string
	Search   string // case-insensitive substring of the description
}

func (f Filter) Match(t Transaction) bool {
	if f.Kind != "" && t.Kind != f.Kind {
		return false
	}
	if f.Category != "" && t.Category != f.Category {
		return false
	}
	if f.Search != "" && !strings.Contains(strings.ToLower(t.Description), strings.ToLower(f.Search)) {
		return false
	}
	return true
}

func (f Filter) Apply(txs []Transaction) []Transaction {
	out := make([]Transaction, 0, len(txs))
	for _, t := range txs {
		if f.Match(t) {
			out = append(out, t)
		}
	}
	return out
}

// SortTransactions returns a sorted copy; equal keys keep their relative order.
// Unknown fields fall back to description, unknown orders to descending.
func SortTransactions(txs []Transaction, field SortField, order SortOrder) []Transaction {
	out := make([]Transaction, len(txs))
	copy(out, txs)
	compare := func(a, b Transaction) int {
		switch field {
		case SortByDate:
			return a.Date.Compare(b.Date.Time)
		case SortByAmount:
			return a.Amount.Cmp(b.Amount)
		default:
			return strings.Compare(a.Description, b.Description)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		c := compare(out[i], out[j])
		if order == Ascending {
			return c < 0
		}
		return c > 0
	})
	return out
}

// Recent returns up to n transactions, newest first.
func Recent(txs []Transaction, n int) []Transaction {
	sorted := SortTransactions(txs, SortByDate, Descending)
	if n >= 0 && len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}

// UniqueCategories lists the category names used by txs in first-seen order.
func UniqueCategories(txs []Transaction) []string {
	seen := map[string]struct{}{}
	var out []string
	for _, t := range txs {
		if _, ok := seen[t.Category]; ok {
			continue
		}
		seen[t.Category] = struct{}{}
		out = append(out, t.Category)
	}
	return out
}
