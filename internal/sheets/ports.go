package sheets

import (
	"context"

	"expensetracker/internal/core"
)

// Ports for outbound adapters.
type (
	// TransactionExporter mirrors the transaction list into a spreadsheet tab.
	TransactionExporter interface {
		// ExportTransactions replaces the tab contents and returns the
		// written range.
		ExportTransactions(ctx context.Context, txs []core.Transaction) (rangeRef string, err error)
	}
)
