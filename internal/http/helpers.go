package http

import (
	"errors"
	"net/http"

	"expensetracker/internal/ledger"
	"expensetracker/internal/log"
)

// writeStoreError maps a store error to its HTTP response.
func writeStoreError(w http.ResponseWriter, r *http.Request, op string, err error) {
	resp := errorResponseFor(err)
	ctx := r.Context()
	logger := log.FromContext(ctx)
	if resp.statusCode >= 500 {
		log.NewStructuredLogger(logger).LogError(ctx, "Ledger operation failed", err, log.ComponentLedger, op, nil)
	} else {
		logger.InfoContext(ctx, "Ledger operation rejected", log.FieldOperation, op, log.FieldError, err)
	}
	resp.Write(w)
}

// errorResponseFor answers 409 for conflicts with existing state, 422 for
// invalid input (including a whole invalid import) and 503 once the store
// is closed.
func errorResponseFor(err error) *JSONResponseBuilder {
	switch {
	case errors.Is(err, ledger.ErrClosed):
		return ServiceUnavailableError(err.Error())
	case errors.Is(err, ledger.ErrInvalidLedger):
		return UnprocessableEntityError(rejectionReason(err))
	case errors.Is(err, ledger.ErrDuplicateCategory),
		errors.Is(err, ledger.ErrProtectedCategory),
		errors.Is(err, ledger.ErrCategoryInUse),
		errors.Is(err, ledger.ErrDuplicateBudget):
		return ConflictError(rejectionReason(err))
	case ledger.IsRejected(err):
		return UnprocessableEntityError(rejectionReason(err))
	default:
		return InternalServerError("internal error")
	}
}

func rejectionReason(err error) string {
	var rejected *ledger.RejectedError
	if errors.As(err, &rejected) {
		return rejected.Reason
	}
	return err.Error()
}

// mutationResponse starts a response carrying the store's save warning.
func (s *Server) mutationResponse(status int) *JSONResponseBuilder {
	return NewJSONResponse().Status(status).SaveWarning(s.store.LastSaveError())
}
