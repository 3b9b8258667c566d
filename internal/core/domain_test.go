package core

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestDateValidate(t *testing.T) {
	cases := []struct {
		d  Date
		ok bool
	}{
		{NewDate(2025, 1, 1), true},
		{NewDate(2025, 12, 31), true},
		{Date{Time: time.Time{}}, false}, // zero time
	}
	for i, tc := range cases {
		err := tc.d.Validate()
		if tc.ok && err != nil {
			t.Fatalf("case %d expected ok, got %v", i, err)
		}
		if !tc.ok && err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}

func TestParseDate(t *testing.T) {
	cases := []struct {
		in   string
		want Date
		ok   bool
	}{
		{"2024-03-01", NewDate(2024, 3, 1), true},
		{" 2024-12-31 ", NewDate(2024, 12, 31), true},
		{"2024-03-01T15:04:05Z", NewDate(2024, 3, 1), true},
		{"01/03/2024", Date{}, false},
		{"", Date{}, false},
	}
	for _, tc := range cases {
		got, err := ParseDate(tc.in)
		if tc.ok {
			if err != nil || !got.Equal(tc.want.Time) {
				t.Fatalf("%q expected %v, got %v (err=%v)", tc.in, tc.want, got, err)
			}
		} else if err == nil {
			t.Fatalf("%q expected error", tc.in)
		}
	}
}

func TestDateJSON(t *testing.T) {
	b, err := json.Marshal(NewDate(2024, 3, 1))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(b) != `"2024-03-01"` {
		t.Fatalf("unexpected json %s", b)
	}
	var d Date
	if err := json.Unmarshal([]byte(`"2024-02-29"`), &d); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if d.Year() != 2024 || d.Month() != 2 || d.Day() != 29 {
		t.Fatalf("unexpected date %v", d)
	}
	if err := json.Unmarshal([]byte(`"garbage"`), &d); err == nil {
		t.Fatalf("expected error for garbage date")
	}
}

func TestTransactionInputValidate(t *testing.T) {
	good := TransactionInput{
		Amount:      decimal.NewFromInt(50),
		Category:    "Food",
		Description: "Lunch",
		Date:        NewDate(2024, 3, 1),
		Kind:        KindExpense,
	}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	bads := map[string]func(in *TransactionInput){
		"zero amount":     func(in *TransactionInput) { in.Amount = decimal.Zero },
		"negative amount": func(in *TransactionInput) { in.Amount = decimal.NewFromInt(-5) },
		"empty category":  func(in *TransactionInput) { in.Category = "  " },
		"empty desc":      func(in *TransactionInput) { in.Description = "" },
		"long desc":       func(in *TransactionInput) { in.Description = strings.Repeat("x", 201) },
		"zero date":       func(in *TransactionInput) { in.Date = Date{} },
		"unknown kind":    func(in *TransactionInput) { in.Kind = "transfer" },
		"missing kind":    func(in *TransactionInput) { in.Kind = "" },
	}
	for name, mutate := range bads {
		t.Run(name, func(t *testing.T) {
			in := good
			mutate(&in)
			if err := in.Validate(); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}

func TestCategoryAndBudgetInputValidate(t *testing.T) {
	if err := (CategoryInput{Name: "Pets"}).Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if err := (CategoryInput{Name: " "}).Validate(); err != ErrEmptyName {
		t.Fatalf("expected ErrEmptyName, got %v", err)
	}

	b := BudgetInput{Category: "Food", Amount: decimal.NewFromInt(100), Period: Monthly}
	if err := b.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	b.Period = "yearly"
	if err := b.Validate(); err != ErrInvalidPeriod {
		t.Fatalf("expected ErrInvalidPeriod, got %v", err)
	}
	b.Period = Weekly
	b.Amount = decimal.Zero
	if err := b.Validate(); err != ErrInvalidAmount {
		t.Fatalf("expected ErrInvalidAmount, got %v", err)
	}
}

func TestTransactionJSONUsesTypeField(t *testing.T) {
	tx := TransactionInput{
		Amount:      decimal.RequireFromString("12.5"),
		Category:    "Food",
		Description: "Pizza",
		Date:        NewDate(2024, 3, 2),
		Kind:        KindExpense,
	}.WithID("abc")

	b, err := json.Marshal(tx)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !strings.Contains(string(b), `"type":"expense"`) {
		t.Fatalf("expected type field in %s", b)
	}

	// numeric amounts, as written by older exports, must still decode
	var back Transaction
	raw := `{"id":"abc","amount":12.5,"category":"Food","description":"Pizza","date":"2024-03-02","type":"expense"}`
	if err := json.Unmarshal([]byte(raw), &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !back.Amount.Equal(tx.Amount) || back.Kind != KindExpense || back.ID != "abc" {
		t.Fatalf("unexpected transaction %+v", back)
	}
}

func TestDefaults(t *testing.T) {
	l := DefaultLedger()
	if len(l.Categories) != 8 || len(l.Transactions) != 0 || len(l.Budgets) != 0 {
		t.Fatalf("unexpected default ledger %+v", l)
	}
	for _, c := range l.Categories {
		if !IsProtectedCategory(c.Name) {
			t.Fatalf("%s should be protected", c.Name)
		}
	}
	if IsProtectedCategory("Pets") {
		t.Fatalf("Pets should not be protected")
	}
	if !IsIncomeCategory("Salary") || IsIncomeCategory("Food") {
		t.Fatalf("unexpected income category classification")
	}

	// the returned slice is a copy
	l.Categories[0].Name = "Changed"
	if DefaultCategories()[0].Name != "Food" {
		t.Fatalf("defaults were mutated through a returned slice")
	}
}

func TestLedgerLookups(t *testing.T) {
	l := DefaultLedger()
	l.Transactions = append(l.Transactions,
		Transaction{ID: "t1", Category: "Food", Amount: decimal.NewFromInt(1), Kind: KindExpense},
		Transaction{ID: "t2", Category: "Food", Amount: decimal.NewFromInt(2), Kind: KindExpense},
	)
	l.Budgets = append(l.Budgets, Budget{ID: "b1", Category: "Food", Amount: decimal.NewFromInt(10), Period: Monthly})

	if c, ok := l.CategoryByName("fOOd"); !ok || c.ID != "1" {
		t.Fatalf("case-insensitive lookup failed: %+v %v", c, ok)
	}
	if _, ok := l.TransactionByID("t2"); !ok {
		t.Fatalf("expected t2")
	}
	if _, ok := l.BudgetForCategory("Transport"); ok {
		t.Fatalf("no budget expected for Transport")
	}
	refs := l.CategoryReferences("Food")
	if refs.Transactions != 2 || refs.Budgets != 1 || !refs.Any() {
		t.Fatalf("unexpected refs %+v", refs)
	}

	clone := l.Clone()
	clone.Transactions[0].Description = "mutated"
	if l.Transactions[0].Description == "mutated" {
		t.Fatalf("clone shares backing array")
	}
}
