package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"expensetracker/internal/core"
	"expensetracker/internal/log"
)

type transactionList struct {
	Transactions []core.Transaction `json:"transactions"`
	Categories   []string           `json:"categories"`
	Count        int                `json:"count"`
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	q, err := ParseTransactionQuery(r.URL.Query())
	if err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}

	all := s.store.Snapshot().Transactions
	txs := q.Apply(all)
	cats := core.UniqueCategories(all)
	if cats == nil {
		cats = []string{}
	}
	NewJSONResponse().Data(transactionList{
		Transactions: txs,
		Categories:   cats,
		Count:        len(txs),
	}).Write(w)
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	var in core.TransactionInput
	if err := decodeJSON(w, r, &in); err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}
	if err := normalizeAmount(&in); err != nil {
		UnprocessableEntityError(err.Error()).Write(w)
		return
	}
	in.Description = sanitizeInput(in.Description)

	t, err := s.store.AddTransaction(r.Context(), in)
	if err != nil {
		writeStoreError(w, r, log.OpCreate, err)
		return
	}

	log.FromContext(r.Context()).InfoContext(r.Context(), "Transaction created",
		log.NewFields().WithTransaction(t.ID, t.Category, string(t.Kind), t.Amount).WithOperation(log.OpCreate).ToSlice()...)

	s.mutationResponse(http.StatusCreated).
		Header("Location", "/api/transactions/"+t.ID).
		Data(t).
		Write(w)
}

// handleUpdateTransaction replaces the transaction named in the path. An
// unknown id is a no-op answered with 204, whatever the amount; only a body
// that is not JSON is rejected first.
func (s *Server) handleUpdateTransaction(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var in core.TransactionInput
	if err := decodeJSON(w, r, &in); err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}
	if err := normalizeAmount(&in); err != nil {
		if _, ok := s.store.Snapshot().TransactionByID(id); !ok {
			NoContent().Write(w)
			return
		}
		UnprocessableEntityError(err.Error()).Write(w)
		return
	}
	in.Description = sanitizeInput(in.Description)

	if err := s.store.UpdateTransaction(r.Context(), in.WithID(id)); err != nil {
		writeStoreError(w, r, log.OpUpdate, err)
		return
	}

	t, ok := s.store.Snapshot().TransactionByID(id)
	if !ok {
		NoContent().Write(w)
		return
	}
	log.FromContext(r.Context()).InfoContext(r.Context(), "Transaction updated",
		log.NewFields().WithTransaction(t.ID, t.Category, string(t.Kind), t.Amount).WithOperation(log.OpUpdate).ToSlice()...)
	s.mutationResponse(http.StatusOK).Data(t).Write(w)
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.store.DeleteTransaction(r.Context(), id); err != nil {
		writeStoreError(w, r, log.OpDelete, err)
		return
	}
	log.FromContext(r.Context()).InfoContext(r.Context(), "Transaction deleted", log.FieldTransactionID, id)
	s.mutationResponse(http.StatusNoContent).Write(w)
}
