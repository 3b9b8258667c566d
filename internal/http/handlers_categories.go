package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"expensetracker/internal/core"
	"expensetracker/internal/log"
)

func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	NewJSONResponse().Data(s.store.Snapshot().Categories).Write(w)
}

func (s *Server) handleCreateCategory(w http.ResponseWriter, r *http.Request) {
	var in core.CategoryInput
	if err := decodeJSON(w, r, &in); err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}
	in.Name = sanitizeInput(in.Name)

	c, err := s.store.AddCategory(r.Context(), in)
	if err != nil {
		writeStoreError(w, r, log.OpCreate, err)
		return
	}
	log.FromContext(r.Context()).InfoContext(r.Context(), "Category created", log.FieldCategory, c.Name, "id", c.ID)
	s.mutationResponse(http.StatusCreated).
		Header("Location", "/api/categories/"+c.ID).
		Data(c).
		Write(w)
}

// handleDeleteCategory answers 409 for default categories and, under the
// block policy, for categories still in use.
func (s *Server) handleDeleteCategory(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.store.DeleteCategory(r.Context(), id); err != nil {
		writeStoreError(w, r, log.OpDelete, err)
		return
	}
	s.mutationResponse(http.StatusNoContent).Write(w)
}
