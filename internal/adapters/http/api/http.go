// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/okian/appraise/internal/adapters/repository"
	service "github.com/okian/appraise/internal/app"
	"github.com/okian/appraise/internal/domain/model"
	"github.com/okian/appraise/pkg/logger"
	"github.com/okian/appraise/pkg/metrics"
)

const (
	defaultMaxBodyBytes = 1 << 20
	requestTimeout      = 30 * time.Second
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	// Submit queues a submission for scoring. Returns service.ErrBackpressure
	// when the queue is full.
	Submit(ctx context.Context, sub model.Submission) (service.Receipt, error)

	// Score builds and stores a report synchronously.
	Score(ctx context.Context, sub model.Submission) (model.Report, error)

	// Read operations expose stored reports.
	Report(ctx context.Context, respondentID string) (model.Report, error)
	ReportText(ctx context.Context, respondentID string) (string, error)

	Questions(ctx context.Context) []service.QuestionView
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler      *HealthHandler
	statsHandler       *StatsHandler
	submissionsHandler *SubmissionsHandler
	reportsHandler     *ReportsHandler
	questionsHandler   *QuestionsHandler

	corsOrigins  []string
	maxBodyBytes int64
	logger       logger.Logger
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider, opts ...Option) *Server {
	s := &Server{
		corsOrigins:  []string{"*"},
		maxBodyBytes: defaultMaxBodyBytes,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("http")
	}
	s.healthHandler = NewHealthHandler()
	s.statsHandler = NewStatsHandler(statsProvider)
	s.submissionsHandler = NewSubmissionsHandler(deps, s.maxBodyBytes)
	s.reportsHandler = NewReportsHandler(deps)
	s.questionsHandler = NewQuestionsHandler(deps)
	return s
}

// Register attaches all HTTP routes to r.
func (s *Server) Register(_ context.Context, r chi.Router) {
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(LoggingMiddleware(s.logger))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(requestTimeout))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.corsOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         300,
	}))

	r.Get("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	r.Get("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	r.Get("/questions", MetricsMiddleware(s.questionsHandler.HandleListQuestions, "questions"))
	r.Post("/submissions", MetricsMiddleware(s.submissionsHandler.HandleSubmit, "submissions"))
	r.Post("/score", MetricsMiddleware(s.submissionsHandler.HandleScore, "score"))
	r.Route("/reports/{respondentID}", func(r chi.Router) {
		r.Get("/", MetricsMiddleware(s.reportsHandler.HandleGetReport, "report"))
		r.Get("/text", MetricsMiddleware(s.reportsHandler.HandleGetReportText, "report_text"))
	})
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(metrics.GetRegistry(), promhttp.HandlerOpts{}))
}

// Handler returns a router with every route registered.
func (s *Server) Handler(ctx context.Context) http.Handler {
	r := chi.NewRouter()
	s.Register(ctx, r)
	return r
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// writeServiceError translates service and domain errors to HTTP statuses.
func writeServiceError(w http.ResponseWriter, err error) {
	var pe *model.PreconditionError
	switch {
	case errors.As(err, &pe):
		writeError(w, http.StatusBadRequest, "precondition_failed", err)
	case errors.Is(err, repository.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found", err)
	case errors.Is(err, service.ErrBackpressure):
		writeError(w, http.StatusTooManyRequests, "backpressure", err)
	case errors.Is(err, service.ErrNotStarted):
		writeError(w, http.StatusServiceUnavailable, "unavailable", err)
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", err)
	}
}
