package http

import (
	"errors"
	"fmt"
	"net/http"

	"expensetracker/internal/log"
	"expensetracker/internal/transfer"
)

// handleExport streams the ledger as a dated attachment.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	format, err := transfer.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}

	data, err := transfer.Export(s.store.Snapshot(), format)
	if err != nil {
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Export failed",
			log.FieldFormat, format, log.FieldOperation, log.OpExport, log.FieldError, err)
		InternalServerError("export failed").Write(w)
		return
	}

	filename := transfer.ExportFilename(format, s.now())
	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)

	log.FromContext(r.Context()).InfoContext(r.Context(), "Ledger exported",
		log.FieldFormat, format, "bytes", len(data), "filename", filename)
}

type importResult struct {
	Transactions int `json:"transactions"`
	Categories   int `json:"categories"`
	Budgets      int `json:"budgets"`
}

// handleImport replaces the whole ledger with a JSON export. Anything that is
// not a ledger export is rejected with 400 and the ledger stays untouched.
func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	data, err := readBody(w, r)
	if err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}

	l, err := transfer.ParseImport(data)
	if err != nil {
		if errors.Is(err, transfer.ErrInvalidImport) {
			log.FromContext(r.Context()).WarnContext(r.Context(), "Import rejected", log.FieldOperation, log.OpImport, log.FieldError, err)
			BadRequestError(err.Error()).Write(w)
			return
		}
		InternalServerError("import failed").Write(w)
		return
	}

	if err := s.store.Replace(r.Context(), l); err != nil {
		writeStoreError(w, r, log.OpImport, err)
		return
	}

	log.FromContext(r.Context()).InfoContext(r.Context(), "Ledger imported",
		log.FieldOperation, log.OpImport,
		"transactions", len(l.Transactions),
		"categories", len(l.Categories),
		"budgets", len(l.Budgets))

	s.mutationResponse(http.StatusOK).Data(importResult{
		Transactions: len(l.Transactions),
		Categories:   len(l.Categories),
		Budgets:      len(l.Budgets),
	}).Write(w)
}

type sheetsExportResult struct {
	Range        string `json:"range"`
	Transactions int    `json:"transactions"`
}

// handleExportSheets mirrors all transactions to the configured spreadsheet.
func (s *Server) handleExportSheets(w http.ResponseWriter, r *http.Request) {
	if s.exporter == nil {
		ErrorResponse(http.StatusNotImplemented, "spreadsheet export is not configured").Write(w)
		return
	}

	txs := s.store.Snapshot().Transactions
	ref, err := s.exporter.ExportTransactions(r.Context(), txs)
	if err != nil {
		log.FromContext(r.Context()).WithComponent(log.ComponentSheets).ErrorContext(r.Context(), "Spreadsheet export failed",
			log.FieldOperation, log.OpExport, log.FieldError, err)
		ErrorResponse(http.StatusBadGateway, "spreadsheet export failed").Write(w)
		return
	}

	NewJSONResponse().Data(sheetsExportResult{Range: ref, Transactions: len(txs)}).Write(w)
}
