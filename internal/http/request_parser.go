// This file implements parsing and validation of request bodies and query
// strings shared by the handlers.
package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"expensetracker/internal/core"
)

// maxBodyBytes bounds JSON bodies; imports of a large ledger fit comfortably.
const maxBodyBytes = 8 << 20

// MonthParams holds parsed year/month values from request parameters.
type MonthParams struct {
	Year  int
	Month int
}

// ParseMonthParams extracts year and month from query parameters, using
// now as the default. Out-of-range months fall back to now's month.
func ParseMonthParams(query url.Values, now time.Time) MonthParams {
	params := MonthParams{
		Year:  now.Year(),
		Month: int(now.Month()),
	}

	if v := strings.TrimSpace(query.Get("year")); v != "" {
		if y, err := strconv.Atoi(v); err == nil && y > 0 {
			params.Year = y
		}
	}
	if v := strings.TrimSpace(query.Get("month")); v != "" {
		if m, err := strconv.Atoi(v); err == nil && m >= 1 && m <= 12 {
			params.Month = m
		}
	}

	return params
}

// TransactionQuery is the parsed query string of GET /api/transactions.
type TransactionQuery struct {
	Filter core.Filter
	Sort   core.SortField
	Order  core.SortOrder
	// Month is nil unless both year and month were given.
	Month *MonthParams
}

// ParseTransactionQuery reads type, category, q, sort, order, year and month.
func ParseTransactionQuery(query url.Values) (TransactionQuery, error) {
	q := TransactionQuery{
		Filter: core.Filter{
			Kind:     core.Kind(strings.ToLower(strings.TrimSpace(query.Get("type")))),
			Category: sanitizeInput(query.Get("category")),
			Search:   sanitizeInput(query.Get("q")),
		},
		Sort:  core.SortByDate,
		Order: core.Descending,
	}
	if q.Filter.Kind != "" && !q.Filter.Kind.Valid() {
		return q, fmt.Errorf("invalid type %q: must be expense or income", q.Filter.Kind)
	}

	switch s := core.SortField(strings.ToLower(query.Get("sort"))); s {
	case "":
	case core.SortByDate, core.SortByAmount, core.SortByDescription:
		q.Sort = s
	default:
		return q, fmt.Errorf("invalid sort %q: must be date, amount or description", s)
	}

	switch o := core.SortOrder(strings.ToLower(query.Get("order"))); o {
	case "":
	case core.Ascending, core.Descending:
		q.Order = o
	default:
		return q, fmt.Errorf("invalid order %q: must be asc or desc", o)
	}

	if query.Get("year") != "" || query.Get("month") != "" {
		y, yerr := strconv.Atoi(query.Get("year"))
		m, merr := strconv.Atoi(query.Get("month"))
		if yerr != nil || merr != nil || m < 1 || m > 12 {
			return q, errors.New("year and month must be given together, month between 1 and 12")
		}
		q.Month = &MonthParams{Year: y, Month: m}
	}
	return q, nil
}

// Apply filters, narrows to the month and sorts txs.
func (q TransactionQuery) Apply(txs []core.Transaction) []core.Transaction {
	if q.Month != nil {
		txs = core.FilterByMonth(txs, q.Month.Month, q.Month.Year)
	}
	return core.SortTransactions(q.Filter.Apply(txs), q.Sort, q.Order)
}

// decodeJSON reads a single JSON value from the request body into v.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(body)
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("request body is empty")
		}
		return fmt.Errorf("invalid JSON body: %w", err)
	}
	if dec.More() {
		return errors.New("request body must contain a single JSON value")
	}
	return nil
}

// readBody reads the raw request body, bounded like decodeJSON.
func readBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("read request body: %w", err)
	}
	return data, nil
}

// normalizeAmount applies the amount rules of the entry forms: positive, at
// most two decimals after half-up rounding.
func normalizeAmount(in *core.TransactionInput) error {
	amount, err := core.ParseAmount(in.Amount.String())
	if err != nil {
		return err
	}
	in.Amount = amount
	return nil
}

// sanitizeInput removes control characters and trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}
