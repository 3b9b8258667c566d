package google

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"expensetracker/internal/core"
)

func TestNew_MissingSpreadsheetID(t *testing.T) {
	_, err := New(context.Background(), Config{})
	require.Error(t, err)
	assert.Equal(t, "missing GOOGLE_SPREADSHEET_ID", err.Error())
}

func TestNew_MissingCredentials(t *testing.T) {
	t.Setenv("GOOGLE_APPLICATION_CREDENTIALS", "")
	_, err := New(context.Background(), Config{SpreadsheetID: "sid"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing service account credentials")
}

func TestNew_UnreadableCredentialsFile(t *testing.T) {
	_, err := New(context.Background(), Config{SpreadsheetID: "sid", CredentialsFile: "/does/not/exist.json"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read service account file")
}

func TestTransactionRows(t *testing.T) {
	rows := TransactionRows([]core.Transaction{{
		ID: "t1", Amount: decimal.RequireFromString("9.99"), Category: "Food",
		Description: "Tea", Date: core.NewDate(2024, 1, 2), Kind: core.KindExpense,
	}})
	require.Len(t, rows, 2)
	assert.Equal(t, []any{"id", "date", "type", "category", "amount", "description"}, rows[0])
	assert.Equal(t, []any{"t1", "2024-01-02", "expense", "Food", 9.99, "Tea"}, rows[1])
}

// fakeSheets records the calls the client makes against the Sheets REST API.
type fakeSheets struct {
	mu       sync.Mutex
	calls    []string
	titles   []string
	written  gsheet.ValueRange
	addedTab string
}

func (f *fakeSheets) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	path := r.URL.Path
	f.calls = append(f.calls, r.Method+" "+path)
	w.Header().Set("Content-Type", "application/json")

	switch {
	case r.Method == http.MethodGet && strings.HasSuffix(path, "/spreadsheets/sid"):
		var sheets []map[string]any
		for _, title := range f.titles {
			sheets = append(sheets, map[string]any{"properties": map[string]any{"title": title}})
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"sheets": sheets})
	case r.Method == http.MethodPost && strings.HasSuffix(path, ":batchUpdate"):
		var req gsheet.BatchUpdateSpreadsheetRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		if len(req.Requests) == 1 && req.Requests[0].AddSheet != nil {
			f.addedTab = req.Requests[0].AddSheet.Properties.Title
		}
		_, _ = io.WriteString(w, `{"spreadsheetId":"sid"}`)
	case r.Method == http.MethodPost && strings.HasSuffix(path, ":clear"):
		_, _ = io.WriteString(w, `{"spreadsheetId":"sid"}`)
	case r.Method == http.MethodPut:
		_ = json.NewDecoder(r.Body).Decode(&f.written)
		_, _ = io.WriteString(w, `{"spreadsheetId":"sid"}`)
	default:
		http.Error(w, `{"error":{"code":404,"message":"not found"}}`, http.StatusNotFound)
	}
}

func newTestClient(t *testing.T, fake *fakeSheets) *Client {
	t.Helper()
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	svc, err := gsheet.NewService(context.Background(),
		goption.WithoutAuthentication(),
		goption.WithEndpoint(srv.URL+"/"),
		goption.WithHTTPClient(srv.Client()))
	require.NoError(t, err)
	return NewWithService(svc, "sid", "")
}

func TestExportTransactions(t *testing.T) {
	fake := &fakeSheets{titles: []string{"Transactions"}}
	c := newTestClient(t, fake)

	txs := []core.Transaction{
		{ID: "t1", Amount: decimal.NewFromInt(50), Category: "Food", Description: "Lunch", Date: core.NewDate(2024, 3, 1), Kind: core.KindExpense},
		{ID: "t2", Amount: decimal.NewFromInt(3000), Category: "Salary", Description: "Pay", Date: core.NewDate(2024, 3, 28), Kind: core.KindIncome},
	}
	ref, err := c.ExportTransactions(context.Background(), txs)
	require.NoError(t, err)
	assert.Equal(t, "Transactions!A1:F3", ref)

	require.Len(t, fake.calls, 3)
	assert.Empty(t, fake.addedTab)
	require.Len(t, fake.written.Values, 3)
	assert.Equal(t, "t2", fake.written.Values[2][0])
}

func TestExportTransactionsCreatesMissingTab(t *testing.T) {
	fake := &fakeSheets{titles: []string{"Sheet1"}}
	c := newTestClient(t, fake)

	_, err := c.ExportTransactions(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, "Transactions", fake.addedTab)
	assert.Len(t, fake.calls, 4)
	assert.Len(t, fake.written.Values, 1)
}

func TestExportTransactionsWithoutService(t *testing.T) {
	c := &Client{spreadsheetID: "sid", sheetName: "Transactions"}
	_, err := c.ExportTransactions(context.Background(), nil)
	assert.EqualError(t, err, "sheets service not initialized")
}
