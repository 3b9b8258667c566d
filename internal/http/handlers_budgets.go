package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"expensetracker/internal/budget"
	"expensetracker/internal/core"
	"expensetracker/internal/log"
)

func (s *Server) handleListBudgets(w http.ResponseWriter, r *http.Request) {
	NewJSONResponse().Data(s.store.Snapshot().Budgets).Write(w)
}

func (s *Server) handleCreateBudget(w http.ResponseWriter, r *http.Request) {
	var in core.BudgetInput
	if err := decodeJSON(w, r, &in); err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}

	b, err := s.store.AddBudget(r.Context(), in)
	if err != nil {
		writeStoreError(w, r, log.OpCreate, err)
		return
	}
	log.FromContext(r.Context()).InfoContext(r.Context(), "Budget created",
		log.FieldBudgetID, b.ID, log.FieldCategory, b.Category, log.FieldAmount, b.Amount.StringFixed(2))
	s.mutationResponse(http.StatusCreated).
		Header("Location", "/api/budgets/"+b.ID).
		Data(b).
		Write(w)
}

func (s *Server) handleUpdateBudget(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var in core.BudgetInput
	if err := decodeJSON(w, r, &in); err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}
	if err := s.store.UpdateBudget(r.Context(), in.WithID(id)); err != nil {
		writeStoreError(w, r, log.OpUpdate, err)
		return
	}

	b, ok := s.store.Snapshot().BudgetByID(id)
	if !ok {
		NoContent().Write(w)
		return
	}
	s.mutationResponse(http.StatusOK).Data(b).Write(w)
}

func (s *Server) handleDeleteBudget(w http.ResponseWriter, r *http.Request) {
	if err := s.store.DeleteBudget(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeStoreError(w, r, log.OpDelete, err)
		return
	}
	s.mutationResponse(http.StatusNoContent).Write(w)
}

type budgetStatus struct {
	budget.Evaluation
	Period           core.Period     `json:"period,omitempty"`
	Remaining        decimal.Decimal `json:"remaining"`
	BarWidth         float64         `json:"bar_width"`
	Over             bool            `json:"over"`
	FormattedSpent   string          `json:"formatted_spent"`
	FormattedLimit   string          `json:"formatted_limit,omitempty"`
	FormattedPercent string          `json:"formatted_percent"`
}

type budgetStatusResponse struct {
	Year    int            `json:"year"`
	Month   int            `json:"month"`
	Window  string         `json:"window"`
	Budgets []budgetStatus `json:"budgets"`
}

const (
	windowMonth  = "month"
	windowPeriod = "period"
)

// handleBudgetStatus evaluates every spending category. By default spending
// is summed over the requested calendar month; window=period measures each
// budget over its own daily, weekly or monthly window around now.
func (s *Server) handleBudgetStatus(w http.ResponseWriter, r *http.Request) {
	l := s.store.Snapshot()
	resp := budgetStatusResponse{Window: r.URL.Query().Get("window")}

	var evals []budget.Evaluation
	switch resp.Window {
	case "", windowMonth:
		p := ParseMonthParams(r.URL.Query(), s.now())
		resp.Window, resp.Year, resp.Month = windowMonth, p.Year, p.Month
		evals = budget.EvaluateAll(l, p.Month, p.Year)
	case windowPeriod:
		now := s.now()
		resp.Year, resp.Month = now.Year(), int(now.Month())
		var err error
		if evals, err = budget.EvaluateAllAt(l, now); err != nil {
			log.FromContext(r.Context()).ErrorContext(r.Context(), "Budget evaluation failed", log.FieldError, err)
			InternalServerError("budget evaluation failed").Write(w)
			return
		}
	default:
		BadRequestError("window must be month or period").Write(w)
		return
	}

	resp.Budgets = make([]budgetStatus, 0, len(evals))
	for _, e := range evals {
		st := budgetStatus{
			Evaluation:       e,
			Remaining:        e.Remaining(),
			BarWidth:         e.BarWidth(),
			Over:             e.Over(),
			FormattedSpent:   s.formatter.FormatCurrency(e.Spent),
			FormattedPercent: s.formatter.FormatPercent(e.Percentage),
		}
		if e.Limit != nil {
			st.FormattedLimit = s.formatter.FormatCurrency(*e.Limit)
		}
		if b, ok := l.BudgetForCategory(e.Category); ok {
			st.Period = b.Period
		}
		resp.Budgets = append(resp.Budgets, st)
	}
	NewJSONResponse().Data(resp).Write(w)
}
