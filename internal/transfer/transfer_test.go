package transfer

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"expensetracker/internal/core"
)

func sampleLedger() core.Ledger {
	l := core.DefaultLedger()
	l.Transactions = []core.Transaction{
		{ID: "t1", Amount: decimal.RequireFromString("12.5"), Category: "Food", Description: `Pizza "Margherita", large`, Date: core.NewDate(2024, 3, 2), Kind: core.KindExpense},
		{ID: "t2", Amount: decimal.NewFromInt(3000), Category: "Salary", Description: "March pay", Date: core.NewDate(2024, 3, 28), Kind: core.KindIncome},
	}
	l.Budgets = []core.Budget{{ID: "b1", Category: "Food", Amount: decimal.NewFromInt(100), Period: core.Monthly}}
	return l
}

// requireSameLedger compares amounts by value: decimal equality is not
// structural after a JSON round trip.
func requireSameLedger(t *testing.T, want, got core.Ledger) {
	t.Helper()
	require.Equal(t, want.Categories, got.Categories)
	require.Len(t, got.Transactions, len(want.Transactions))
	for i := range want.Transactions {
		w, g := want.Transactions[i], got.Transactions[i]
		require.True(t, w.Amount.Equal(g.Amount), "amount %s != %s", w.Amount, g.Amount)
		w.Amount, g.Amount = decimal.Zero, decimal.Zero
		require.True(t, w.Date.Equal(g.Date.Time))
		w.Date, g.Date = core.Date{}, core.Date{}
		require.Equal(t, w, g)
	}
	require.Len(t, got.Budgets, len(want.Budgets))
	for i := range want.Budgets {
		require.True(t, want.Budgets[i].Amount.Equal(got.Budgets[i].Amount))
		require.Equal(t, want.Budgets[i].Category, got.Budgets[i].Category)
		require.Equal(t, want.Budgets[i].Period, got.Budgets[i].Period)
	}
}

func TestJSONRoundTrip(t *testing.T) {
	l := sampleLedger()
	data, err := ExportJSON(l)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("{\n  \"transactions\": [")), string(data[:40]))

	back, err := ParseImport(data)
	require.NoError(t, err)
	requireSameLedger(t, l, back)
}

func TestExportCSV(t *testing.T) {
	got := string(ExportCSV(sampleLedger().Transactions))
	want := "id,date,type,category,amount,description\n" +
		`t1,2024-03-02,expense,Food,12.5,"Pizza ""Margherita"", large"` + "\n" +
		`t2,2024-03-28,income,Salary,3000,"March pay"`
	assert.Equal(t, want, got)

	assert.Equal(t, "id,date,type,category,amount,description", string(ExportCSV(nil)))
}

func TestExportXLSX(t *testing.T) {
	data, err := ExportXLSX(sampleLedger())
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"Transactions", "Categories", "Budgets"}, f.GetSheetList())

	rows, err := f.GetRows("Transactions")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, CSVHeader, rows[0])
	assert.Equal(t, "t1", rows[1][0])
	assert.Equal(t, "12.5", rows[1][4])
	assert.Equal(t, `Pizza "Margherita", large`, rows[1][5])

	cats, err := f.GetRows("Categories")
	require.NoError(t, err)
	assert.Len(t, cats, 9)

	budgets, err := f.GetRows("Budgets")
	require.NoError(t, err)
	require.Len(t, budgets, 2)
	assert.Equal(t, []string{"b1", "Food", "100", "monthly"}, budgets[1])
}

func TestExportDispatch(t *testing.T) {
	for _, f := range []Format{FormatJSON, FormatCSV, FormatXLSX} {
		data, err := Export(sampleLedger(), f)
		require.NoError(t, err, f)
		assert.NotEmpty(t, data, f)
	}
	_, err := Export(sampleLedger(), "pdf")
	assert.Error(t, err)
}

func TestParseImport(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		wantErr bool
		check   func(t *testing.T, l core.Ledger)
	}{
		{
			name: "legacy expenses field",
			in:   `{"expenses":[{"id":"e1","amount":5,"category":"Food","description":"Tea","date":"2024-01-02","type":"expense"}],"categories":[]}`,
			check: func(t *testing.T, l core.Ledger) {
				require.Len(t, l.Transactions, 1)
				assert.Equal(t, "e1", l.Transactions[0].ID)
				assert.NotNil(t, l.Budgets)
				assert.Empty(t, l.Categories)
			},
		},
		{
			name: "empty lists are valid",
			in:   `{"transactions":[],"categories":[],"budgets":[]}`,
		},
		{name: "missing categories", in: `{"transactions":[]}`, wantErr: true},
		{name: "missing transactions", in: `{"categories":[]}`, wantErr: true},
		{name: "null categories", in: `{"transactions":[],"categories":null}`, wantErr: true},
		{name: "not json", in: `hello`, wantErr: true},
		{name: "array", in: `[]`, wantErr: true},
		{name: "bad transaction", in: `{"transactions":[{"amount":"abc"}],"categories":[]}`, wantErr: true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			l, err := ParseImport([]byte(tc.in))
			if tc.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, ErrInvalidImport))
				return
			}
			require.NoError(t, err)
			if tc.check != nil {
				tc.check(t, l)
			}
		})
	}
}

func TestFormats(t *testing.T) {
	now := time.Date(2024, 3, 9, 23, 30, 0, 0, time.UTC)
	assert.Equal(t, "expense-tracker-export-2024-03-09.json", ExportFilename(FormatJSON, now))
	assert.Equal(t, "expense-tracker-export-2024-03-09.csv", ExportFilename(FormatCSV, now))

	f, err := ParseFormat("XLSX")
	require.NoError(t, err)
	assert.Equal(t, FormatXLSX, f)
	f, err = ParseFormat("")
	require.NoError(t, err)
	assert.Equal(t, FormatJSON, f)
	_, err = ParseFormat("pdf")
	assert.Error(t, err)

	assert.Equal(t, "text/csv; charset=utf-8", FormatCSV.ContentType())
}
