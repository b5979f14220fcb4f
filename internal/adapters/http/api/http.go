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

	"github.com/okian/hackwreck/internal/adapters/http/swagger"
	"github.com/okian/hackwreck/internal/adapters/llm"
	service "github.com/okian/hackwreck/internal/app"
	"github.com/okian/hackwreck/internal/domain/model"
	"github.com/okian/hackwreck/pkg/logger"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to the service implementation.
type Dependencies interface {
	Ready(ctx context.Context) error

	Stats(ctx context.Context) (model.Stats, error)
	Search(ctx context.Context, req model.SearchRequest) (model.SearchResponse, error)
	List(ctx context.Context) ([]model.Project, error)
	Winners(ctx context.Context) ([]model.Project, error)
	Delete(ctx context.Context, id int64) (model.DeleteResponse, error)

	Ingest(ctx context.Context, req model.InsertRequest) (model.InsertResponse, error)
	SubmitBatch(ctx context.Context, req model.BatchRequest) (model.BatchJob, error)
	BatchStatus(ctx context.Context, id string) (model.BatchJob, error)

	Trends(ctx context.Context, req model.TrendRequest) (model.TrendResponse, error)
	WreckMe(ctx context.Context) (model.TrendResponse, error)
	Analyze(ctx context.Context, req model.AnalyzeRequest) (model.AnalysisResult, error)
	Speak(ctx context.Context, req model.SpeechRequest) ([]byte, error)
}

// Server wires HTTP routes for the business API.
type Server struct {
	deps           Dependencies
	router         *chi.Mux
	allowedOrigins []string
	requestTimeout time.Duration
	maxBodyBytes   int64
	logger         logger.Logger
}

// NewServer creates a new API server with all handlers registered.
func NewServer(ctx context.Context, deps Dependencies, opts ...Option) *Server {
	s := &Server{
		deps:           deps,
		allowedOrigins: []string{"http://localhost:3000", "http://localhost:5173"},
		requestTimeout: 2 * time.Minute,
		maxBodyBytes:   1 << 20,
		logger:         logger.GetOrNop().Named("api"),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.setupRouter(ctx)
	return s
}

// Router returns the configured router.
func (s *Server) Router() http.Handler {
	return s.router
}

func (s *Server) setupRouter(ctx context.Context) {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.loggingMiddleware)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(s.requestTimeout))
	r.Use(cors.Handler(corsOptions(s.allowedOrigins)))

	r.Get("/", MetricsMiddleware(s.handleRoot, "root"))
	r.Get("/healthz", MetricsMiddleware(s.handleHealth, "healthz"))
	r.Handle("/metrics", metricsHandler())
	swagger.Register(ctx, r)

	r.Route("/api", func(r chi.Router) {
		r.Get("/stats", MetricsMiddleware(s.handleStats, "stats"))
		r.Post("/search", MetricsMiddleware(s.handleSearch, "search"))

		r.Post("/insert", MetricsMiddleware(s.handleInsert, "insert"))
		r.Post("/insert/batch", MetricsMiddleware(s.handleSubmitBatch, "insert_batch"))
		r.Get("/insert/batch/{id}", MetricsMiddleware(s.handleBatchStatus, "insert_batch_status"))

		r.Post("/trends", MetricsMiddleware(s.handleTrends, "trends"))
		r.Post("/wreck-me", MetricsMiddleware(s.handleWreckMe, "wreck_me"))
		r.Post("/analyze-project", MetricsMiddleware(s.handleAnalyze, "analyze_project"))
		r.Post("/text-to-speech", MetricsMiddleware(s.handleSpeak, "text_to_speech"))

		r.Get("/projects", MetricsMiddleware(s.handleList, "projects"))
		r.Get("/projects/winners", MetricsMiddleware(s.handleWinners, "projects_winners"))
		r.Delete("/projects/{id}", MetricsMiddleware(s.handleDelete, "projects_delete"))
	})

	s.router = r
}

// corsOptions allows credentials only for an explicit allow-list; browsers
// reject credentialed requests against a wildcard origin.
func corsOptions(origins []string) cors.Options {
	wildcard := len(origins) == 1 && origins[0] == "*"
	return cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: !wildcard,
		MaxAge:           300,
	}
}

// decode reads a JSON body into v, bounded by maxBodyBytes.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) error {
	body := http.MaxBytesReader(w, r.Body, s.maxBodyBytes)
	if err := json.NewDecoder(body).Decode(v); err != nil {
		return WrapKind("decode", ErrBadRequest, err)
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	if detail == "" {
		detail = http.StatusText(status)
	}
	writeJSON(w, status, model.ErrorResponse{Detail: detail})
}

// writeError maps service errors onto HTTP statuses.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	detail := err.Error()
	switch {
	case errors.Is(err, ErrBadRequest):
		detail = "Invalid request body"
	case errors.Is(err, llm.ErrNoAPIKey):
		detail = "Gemini API key is not configured"
	}
	if status >= http.StatusInternalServerError {
		s.logger.Error(r.Context(), "request failed",
			logger.String("request_id", middleware.GetReqID(r.Context())),
			logger.Error(Wrap(r.Method+" "+r.URL.Path, err)),
		)
	}
	writeDetail(w, status, detail)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, ErrBadRequest), errors.Is(err, service.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrQueueFull), errors.Is(err, service.ErrNotStarted), errors.Is(err, llm.ErrNoAPIKey):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
