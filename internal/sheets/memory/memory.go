package memory

import (
	"context"
	"fmt"
	"sync"

	"expensetracker/internal/core"
	ports "expensetracker/internal/sheets"
	"expensetracker/internal/transfer"
)

// Exporter keeps the last exported rows in memory. It stands in for Google
// Sheets in development and tests.
type Exporter struct {
	mu      sync.Mutex
	rows    [][]any
	exports int
}

var _ ports.TransactionExporter = (*Exporter)(nil)

func New() *Exporter { return &Exporter{} }

func (e *Exporter) ExportTransactions(_ context.Context, txs []core.Transaction) (string, error) {
	rows := make([][]any, 0, len(txs)+1)
	header := make([]any, len(transfer.CSVHeader))
	for i, h := range transfer.CSVHeader {
		header[i] = h
	}
	rows = append(rows, header)
	for _, t := range txs {
		rows = append(rows, transfer.TransactionRow(t))
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.rows = rows
	e.exports++
	return fmt.Sprintf("mem!A1:F%d", len(rows)), nil
}

// Rows returns a copy of the last export, header included.
func (e *Exporter) Rows() [][]any {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([][]any(nil), e.rows...)
}

// Exports counts calls to ExportTransactions.
func (e *Exporter) Exports() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.exports
}
