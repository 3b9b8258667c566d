package ledger

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"expensetracker/internal/core"
	"expensetracker/internal/ids"
	"expensetracker/internal/log"
)

// Change describes a committed mutation for notifiers.
type Change struct {
	Op           string    `json:"op"`
	Transactions int       `json:"transactions"`
	Categories   int       `json:"categories"`
	Budgets      int       `json:"budgets"`
	At           time.Time `json:"timestamp"`
}

// Notifier is told about every mutation that changed the ledger.
type Notifier interface {
	LedgerChanged(ctx context.Context, c Change) error
}

// Store is the single owner of the current ledger. Mutations are applied one
// at a time and are persisted before the call returns; readers get copies.
type Store struct {
	mu          sync.RWMutex
	current     core.Ledger
	lastSaveErr error
	closed      bool

	gen      ids.Generator
	bridge   *Bridge
	policy   Policy
	logger   *log.Logger
	notifier Notifier
	now      func() time.Time
}

type Option func(*Store)

func WithIDGenerator(g ids.Generator) Option { return func(s *Store) { s.gen = g } }

func WithBridge(b *Bridge) Option { return func(s *Store) { s.bridge = b } }

func WithPolicy(p Policy) Option { return func(s *Store) { s.policy = p } }

func WithLogger(l *log.Logger) Option { return func(s *Store) { s.logger = l } }

func WithNotifier(n Notifier) Option { return func(s *Store) { s.notifier = n } }

func WithClock(now func() time.Time) Option { return func(s *Store) { s.now = now } }

func defaultLogger() *log.Logger {
	return log.New(log.Config{Handler: slog.Default().Handler()})
}

// New creates a store holding initial. Without WithBridge nothing is persisted.
func New(initial core.Ledger, opts ...Option) *Store {
	s := &Store{
		current: initial.Clone(),
		gen:     ids.New(),
		policy:  DefaultPolicy(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = defaultLogger()
	}
	s.logger = s.logger.WithComponent(log.ComponentLedger)
	return s
}

// Open loads the ledger through bridge and returns a store saving back to it.
func Open(ctx context.Context, bridge *Bridge, opts ...Option) *Store {
	initial := bridge.Load(ctx)
	return New(initial, append(opts, WithBridge(bridge))...)
}

// Close stops the store from accepting further mutations.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

// Snapshot returns a copy of the current ledger.
func (s *Store) Snapshot() core.Ledger {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current.Clone()
}

// LastSaveError is the error of the most recent save, nil once a save succeeds.
func (s *Store) LastSaveError() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastSaveErr
}

// Dispatch applies any action. Rejections are *RejectedError values.
func (s *Store) Dispatch(ctx context.Context, a Action) error {
	_, err := s.mutate(ctx, a)
	return err
}

func (s *Store) AddTransaction(ctx context.Context, in core.TransactionInput) (core.Transaction, error) {
	in.Category = strings.TrimSpace(in.Category)
	in.Description = strings.TrimSpace(in.Description)
	id, err := s.mutate(ctx, AddTransaction{Input: in})
	if err != nil {
		return core.Transaction{}, err
	}
	return in.WithID(id), nil
}

func (s *Store) DeleteTransaction(ctx context.Context, id string) error {
	return s.Dispatch(ctx, DeleteTransaction{ID: id})
}

func (s *Store) UpdateTransaction(ctx context.Context, t core.Transaction) error {
	t.Category = strings.TrimSpace(t.Category)
	t.Description = strings.TrimSpace(t.Description)
	return s.Dispatch(ctx, UpdateTransaction{Transaction: t})
}

func (s *Store) AddCategory(ctx context.Context, in core.CategoryInput) (core.Category, error) {
	in.Name = strings.TrimSpace(in.Name)
	if in.Color == "" {
		in.Color = core.DefaultCategoryColor
	}
	if in.Icon == "" {
		in.Icon = core.DefaultCategoryIcon
	}
	id, err := s.mutate(ctx, AddCategory{Input: in})
	if err != nil {
		return core.Category{}, err
	}
	return in.WithID(id), nil
}

func (s *Store) DeleteCategory(ctx context.Context, id string) error {
	return s.Dispatch(ctx, DeleteCategory{ID: id})
}

func (s *Store) AddBudget(ctx context.Context, in core.BudgetInput) (core.Budget, error) {
	in.Category = strings.TrimSpace(in.Category)
	if in.Period == "" {
		in.Period = core.Monthly
	}
	id, err := s.mutate(ctx, AddBudget{Input: in})
	if err != nil {
		return core.Budget{}, err
	}
	return in.WithID(id), nil
}

func (s *Store) UpdateBudget(ctx context.Context, b core.Budget) error {
	b.Category = strings.TrimSpace(b.Category)
	return s.Dispatch(ctx, UpdateBudget{Budget: b})
}

func (s *Store) DeleteBudget(ctx context.Context, id string) error {
	return s.Dispatch(ctx, DeleteBudget{ID: id})
}

// Replace swaps in l wholesale.
func (s *Store) Replace(ctx context.Context, l core.Ledger) error {
	return s.Dispatch(ctx, ReplaceLedger{Ledger: l})
}

// Reset returns to the default ledger and clears the stored copy.
func (s *Store) Reset(ctx context.Context) error {
	return s.Dispatch(ctx, ResetLedger{})
}

func (s *Store) mutate(ctx context.Context, a Action) (string, error) {
	s.mu.Lock()
	id, change, err := s.applyLocked(ctx, a)
	s.mu.Unlock()

	if err != nil || change == nil {
		return id, err
	}
	if s.notifier != nil {
		if nerr := s.notifier.LedgerChanged(ctx, *change); nerr != nil {
			s.logger.WarnContext(ctx, "Failed to publish ledger change",
				log.FieldOperation, change.Op, log.FieldError, nerr)
		}
	}
	return id, nil
}

func (s *Store) applyLocked(ctx context.Context, a Action) (string, *Change, error) {
	if s.closed {
		return "", nil, ErrClosed
	}
	if err := s.policy.Check(s.current, a); err != nil {
		s.logger.WarnContext(ctx, "Ledger action rejected", log.FieldOperation, a.Op(), log.FieldError, err)
		return "", nil, err
	}

	next, changed, id := apply(s.current, a, s.gen)
	if !changed {
		s.logger.DebugContext(ctx, "Ledger action was a no-op", log.FieldOperation, a.Op())
		return id, nil, nil
	}
	if del, ok := a.(DeleteCategory); ok && s.policy.CategoryDelete == CascadeReferences {
		if c, found := s.current.CategoryByID(del.ID); found {
			next = removeCategoryReferences(next, c.Name)
		}
	}
	s.current = next
	s.persistLocked(ctx, a)

	s.logger.InfoContext(ctx, "Ledger updated",
		log.FieldOperation, a.Op(),
		"id", id,
		"transactions", len(next.Transactions),
		"categories", len(next.Categories),
		"budgets", len(next.Budgets))

	return id, &Change{
		Op:           a.Op(),
		Transactions: len(next.Transactions),
		Categories:   len(next.Categories),
		Budgets:      len(next.Budgets),
		At:           s.now().UTC(),
	}, nil
}

// persistLocked saves the current snapshot. Failures are logged and kept
// for LastSaveError; the in-memory change stands.
func (s *Store) persistLocked(ctx context.Context, a Action) {
	if s.bridge == nil {
		return
	}
	var err error
	if _, reset := a.(ResetLedger); reset {
		err = s.bridge.Clear(ctx)
	} else {
		err = s.bridge.Save(ctx, s.current)
	}
	s.lastSaveErr = err
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to persist ledger",
			log.FieldOperation, a.Op(), log.FieldStorageKey, s.bridge.Key(), log.FieldError, err)
	}
}
