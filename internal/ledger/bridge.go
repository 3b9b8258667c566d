package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"expensetracker/internal/core"
	"expensetracker/internal/log"
	"expensetracker/internal/storage"
)

// DefaultStorageKey is the key the ledger blob is stored under.
const DefaultStorageKey = "expenseTrackerState"

// Bridge moves whole-ledger snapshots in and out of a key/value store.
type Bridge struct {
	kv     storage.KV
	key    string
	logger *log.Logger
}

func NewBridge(kv storage.KV, key string, logger *log.Logger) *Bridge {
	if key == "" {
		key = DefaultStorageKey
	}
	if logger == nil {
		logger = defaultLogger()
	}
	return &Bridge{kv: kv, key: key, logger: logger.WithComponent(log.ComponentBridge)}
}

func (b *Bridge) Key() string { return b.key }

// persisted is the stored layout. Older blobs call transactions "expenses".
type persisted struct {
	Transactions []core.Transaction `json:"transactions"`
	Expenses     []core.Transaction `json:"expenses,omitempty"`
	Categories   []core.Category    `json:"categories"`
	Budgets      []core.Budget      `json:"budgets"`
}

// Decode parses a stored blob. Missing collections come back empty except
// categories, which fall back to the defaults.
func Decode(data []byte) (core.Ledger, error) {
	var p persisted
	if err := json.Unmarshal(data, &p); err != nil {
		return core.Ledger{}, fmt.Errorf("decode ledger: %w", err)
	}
	l := core.Ledger{
		Transactions: p.Transactions,
		Categories:   p.Categories,
		Budgets:      p.Budgets,
	}
	if l.Transactions == nil {
		l.Transactions = p.Expenses
	}
	if l.Categories == nil {
		l.Categories = core.DefaultCategories()
	}
	return l.Normalized(), nil
}

// Load returns the stored ledger, or the default ledger when nothing usable
// is stored. It never fails.
func (b *Bridge) Load(ctx context.Context) core.Ledger {
	data, err := b.kv.Get(ctx, b.key)
	if errors.Is(err, storage.ErrNotFound) {
		b.logger.InfoContext(ctx, "No stored ledger, starting from defaults", log.FieldStorageKey, b.key)
		return core.DefaultLedger()
	}
	if err != nil {
		b.logger.ErrorContext(ctx, "Failed to read stored ledger, starting from defaults",
			log.FieldStorageKey, b.key, log.FieldError, err)
		return core.DefaultLedger()
	}

	l, err := Decode(data)
	if err != nil {
		b.logger.ErrorContext(ctx, "Stored ledger is corrupt, starting from defaults",
			log.FieldStorageKey, b.key, log.FieldError, err)
		return core.DefaultLedger()
	}

	b.logger.InfoContext(ctx, "Ledger loaded",
		log.FieldStorageKey, b.key,
		"transactions", len(l.Transactions),
		"categories", len(l.Categories),
		"budgets", len(l.Budgets))
	return l
}

func (b *Bridge) Save(ctx context.Context, l core.Ledger) error {
	data, err := json.Marshal(l.Normalized())
	if err != nil {
		return fmt.Errorf("encode ledger: %w", err)
	}
	if err := b.kv.Set(ctx, b.key, data); err != nil {
		return fmt.Errorf("save ledger: %w", err)
	}
	return nil
}

// Clear removes the stored blob so the next Load starts from defaults.
func (b *Bridge) Clear(ctx context.Context) error {
	if err := b.kv.Delete(ctx, b.key); err != nil {
		return fmt.Errorf("clear ledger: %w", err)
	}
	return nil
}
