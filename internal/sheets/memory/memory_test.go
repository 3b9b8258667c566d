package memory

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"expensetracker/internal/core"
)

func TestExporterKeepsLastExport(t *testing.T) {
	e := New()
	txs := []core.Transaction{{ID: "t1", Amount: decimal.NewFromInt(5), Category: "Food", Description: "Tea", Date: core.NewDate(2024, 1, 2), Kind: core.KindExpense}}

	ref, err := e.ExportTransactions(context.Background(), txs)
	require.NoError(t, err)
	assert.Equal(t, "mem!A1:F2", ref)

	rows := e.Rows()
	require.Len(t, rows, 2)
	assert.Equal(t, "id", rows[0][0])
	assert.Equal(t, "t1", rows[1][0])

	_, err = e.ExportTransactions(context.Background(), nil)
	require.NoError(t, err)
	assert.Len(t, e.Rows(), 1)
	assert.Equal(t, 2, e.Exports())
}
