package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"

	"expensetracker/internal/core"
	"expensetracker/internal/ledger"
	"expensetracker/internal/log"
	"expensetracker/internal/middleware/ratelimit"
	"expensetracker/internal/middleware/security"
	"expensetracker/internal/middleware/trace"
	"expensetracker/internal/sheets"
)

// Server is the JSON API over a ledger store.
type Server struct {
	http.Server
	store     *ledger.Store
	formatter *core.Formatter
	exporter  sheets.TransactionExporter
	logger    *log.Logger
	now       func() time.Time

	limiter  *ratelimit.Limiter
	detector *security.Detector
	tracer   *trace.Middleware

	rateLimitPerMinute int
	blockSuspicious    bool
	shutdownOnce       sync.Once
}

type Option func(*Server)

// WithFormatter sets the locale used for the formatted summary strings.
func WithFormatter(f *core.Formatter) Option { return func(s *Server) { s.formatter = f } }

// WithSheetsExporter enables POST /api/export/sheets.
func WithSheetsExporter(e sheets.TransactionExporter) Option {
	return func(s *Server) { s.exporter = e }
}

func WithLogger(l *log.Logger) Option { return func(s *Server) { s.logger = l } }

func WithClock(now func() time.Time) Option { return func(s *Server) { s.now = now } }

// WithRateLimit caps mutating requests per client and minute.
func WithRateLimit(perMinute int) Option {
	return func(s *Server) { s.rateLimitPerMinute = perMinute }
}

// WithBlockSuspicious rejects requests the detector flags instead of only
// logging them.
func WithBlockSuspicious(block bool) Option {
	return func(s *Server) { s.blockSuspicious = block }
}

// NewServer configures routes and middleware, returning a ready-to-run server.
func NewServer(addr string, store *ledger.Store, opts ...Option) *Server {
	s := &Server{
		store:              store,
		now:                time.Now,
		rateLimitPerMinute: ratelimit.DefaultConfig().RequestsPerMinute,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = log.New(log.DefaultConfig())
	}
	s.logger = s.logger.WithComponent(log.ComponentHTTP)
	if s.formatter == nil {
		s.formatter = core.DefaultFormatter()
	}

	s.detector = security.NewDetector()
	s.tracer = trace.NewMiddleware(s.logger, s.detector.ExtractClientIP)
	s.limiter = ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: s.rateLimitPerMinute})

	s.Server = http.Server{
		Addr:              addr,
		Handler:           s.routes(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	return s
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(s.tracer.Middleware)
	r.Use(security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware)
	r.Use(s.detector.Middleware(s.blockSuspicious))
	r.Use(s.limiter.Middleware(s.detector.ExtractClientIP, func(w http.ResponseWriter, r *http.Request) {
		ErrorResponse(http.StatusTooManyRequests, "rate limit exceeded, please try again later").Write(w)
	}))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		ErrorResponse(http.StatusNotFound, "not found").Write(w)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		ErrorResponse(http.StatusMethodNotAllowed, "method not allowed").Write(w)
	})

	r.Get("/healthz", handleHealth)
	r.Get("/readyz", s.handleReady)

	r.Route("/api", func(r chi.Router) {
		r.Get("/ledger", s.handleGetLedger)
		r.Delete("/ledger", s.handleResetLedger)

		r.Route("/transactions", func(r chi.Router) {
			r.Get("/", s.handleListTransactions)
			r.Post("/", s.handleCreateTransaction)
			r.Put("/{id}", s.handleUpdateTransaction)
			r.Delete("/{id}", s.handleDeleteTransaction)
		})

		r.Route("/categories", func(r chi.Router) {
			r.Get("/", s.handleListCategories)
			r.Post("/", s.handleCreateCategory)
			r.Delete("/{id}", s.handleDeleteCategory)
		})

		r.Route("/budgets", func(r chi.Router) {
			r.Get("/", s.handleListBudgets)
			r.Post("/", s.handleCreateBudget)
			r.Get("/status", s.handleBudgetStatus)
			r.Put("/{id}", s.handleUpdateBudget)
			r.Delete("/{id}", s.handleDeleteBudget)
		})

		r.Get("/summary", s.handleSummary)

		r.Get("/export", s.handleExport)
		r.Post("/export/sheets", s.handleExportSheets)
		r.Post("/import", s.handleImport)
	})

	return r
}

// Shutdown gracefully shuts down the server and its background goroutines.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.limiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

// Metrics is a snapshot of the middleware counters.
type Metrics struct {
	Trace     trace.Metrics
	RateLimit ratelimit.Metrics
	Security  security.DetectionMetrics
}

func (s *Server) Metrics() Metrics {
	return Metrics{
		Trace:     s.tracer.GetMetrics(),
		RateLimit: s.limiter.GetMetrics(),
		Security:  s.detector.GetMetrics(),
	}
}
