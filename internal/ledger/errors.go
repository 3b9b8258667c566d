package ledger

import (
	"errors"
	"fmt"
)

var (
	ErrDuplicateCategory = errors.New("category already exists")
	ErrProtectedCategory = errors.New("default categories cannot be deleted")
	ErrCategoryInUse     = errors.New("category is referenced by transactions or budgets")
	ErrUnknownCategory   = errors.New("unknown category")
	ErrDuplicateBudget   = errors.New("a budget already exists for this category")
	ErrClosed            = errors.New("ledger store is closed")

	// ErrInvalidLedger wraps every problem found in a replacement snapshot.
	ErrInvalidLedger = errors.New("invalid ledger")
	ErrMissingID     = errors.New("missing id")
	ErrDuplicateID   = errors.New("duplicate id")
)

// RejectedError reports an action refused before it touched the ledger.
// Err is either one of the sentinels above or a core validation error.
type RejectedError struct {
	Op     string
	Reason string
	Err    error
}

func (e *RejectedError) Error() string {
	return fmt.Sprintf("%s rejected: %s", e.Op, e.Reason)
}

func (e *RejectedError) Unwrap() error { return e.Err }

func reject(op string, err error) *RejectedError {
	return &RejectedError{Op: op, Reason: err.Error(), Err: err}
}

// IsRejected reports whether err is a policy or validation rejection.
func IsRejected(err error) bool {
	var re *RejectedError
	return errors.As(err, &re)
}
