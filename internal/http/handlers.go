package http

import (
	"net/http"

	"expensetracker/internal/log"
)

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// handleReady reports 503 while the last save failed, so orchestrators can
// notice a broken storage backend.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if err := s.store.LastSaveError(); err != nil {
		ServiceUnavailableError("storage unavailable: " + err.Error()).Write(w)
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

func (s *Server) handleGetLedger(w http.ResponseWriter, r *http.Request) {
	NewJSONResponse().Data(s.store.Snapshot()).Write(w)
}

// handleResetLedger clears all data and restores the default categories.
func (s *Server) handleResetLedger(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Reset(r.Context()); err != nil {
		writeStoreError(w, r, log.OpReset, err)
		return
	}
	log.FromContext(r.Context()).InfoContext(r.Context(), "Ledger reset", log.FieldOperation, log.OpReset)
	s.mutationResponse(http.StatusOK).Data(s.store.Snapshot()).Write(w)
}
