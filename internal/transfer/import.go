package transfer

import (
	"encoding/json"
	"errors"
	"fmt"

	"expensetracker/internal/core"
)

// ErrInvalidImport is returned for payloads that are not a ledger export.
var ErrInvalidImport = errors.New("invalid data format")

// ParseImport decodes a JSON export. The payload must carry a transactions
// (or legacy expenses) list and a categories list; budgets are optional.
func ParseImport(data []byte) (core.Ledger, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return core.Ledger{}, fmt.Errorf("%w: %v", ErrInvalidImport, err)
	}

	txRaw, ok := present(fields, "transactions")
	if !ok {
		txRaw, ok = present(fields, "expenses")
	}
	if !ok {
		return core.Ledger{}, fmt.Errorf("%w: missing transactions", ErrInvalidImport)
	}
	catRaw, ok := present(fields, "categories")
	if !ok {
		return core.Ledger{}, fmt.Errorf("%w: missing categories", ErrInvalidImport)
	}

	var l core.Ledger
	if err := json.Unmarshal(txRaw, &l.Transactions); err != nil {
		return core.Ledger{}, fmt.Errorf("%w: transactions: %v", ErrInvalidImport, err)
	}
	if err := json.Unmarshal(catRaw, &l.Categories); err != nil {
		return core.Ledger{}, fmt.Errorf("%w: categories: %v", ErrInvalidImport, err)
	}
	if budgetsRaw, ok := present(fields, "budgets"); ok {
		if err := json.Unmarshal(budgetsRaw, &l.Budgets); err != nil {
			return core.Ledger{}, fmt.Errorf("%w: budgets: %v", ErrInvalidImport, err)
		}
	}
	return l.Normalized(), nil
}

func present(fields map[string]json.RawMessage, key string) (json.RawMessage, bool) {
	raw, ok := fields[key]
	if !ok || string(raw) == "null" {
		return nil, false
	}
	return raw, true
}
