package httpapi

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	"sp500dash/internal/dashboard"
	"sp500dash/internal/export"
	"sp500dash/internal/metrics"
	"sp500dash/internal/report"
)

// Service is what the HTTP surface needs from the dashboard.
type Service interface {
	Title() string
	DefaultCriteria() (dashboard.Criteria, error)
	Update(ctx context.Context, surface string, c dashboard.Criteria) (dashboard.Bundle, error)
	Options(ctx context.Context) (dashboard.FilterOptions, error)
}

// Options tunes the server.
type Options struct {
	RateLimitRPS   float64
	RateLimitBurst int
	RequestTimeout time.Duration // per request; 0 means 30s
}

// DashboardServer serves the dashboard HTTP API.
type DashboardServer struct {
	svc     Service
	opts    Options
	metrics *metrics.Metrics
	log     *slog.Logger
}

// NewDashboardServer creates a new dashboard HTTP server. m may be nil, in
// which case /metrics is not mounted.
func NewDashboardServer(svc Service, opts Options, m *metrics.Metrics, log *slog.Logger) *DashboardServer {
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = 30 * time.Second
	}
	return &DashboardServer{
		svc:     svc,
		opts:    opts,
		metrics: m,
		log:     log.With("component", "http"),
	}
}

// RegisterRoutes registers all API routes on r.
func (s *DashboardServer) RegisterRoutes(r chi.Router) {
	r.Get("/healthz", s.handleHealth)
	if s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.metrics.Handler())
	}
	r.Route("/api", func(r chi.Router) {
		r.Use(RateLimit(s.opts.RateLimitRPS, s.opts.RateLimitBurst))
		r.Use(middleware.Timeout(s.opts.RequestTimeout))
		r.Get("/dashboard", s.handleDashboardQuery)
		r.Post("/dashboard", s.handleDashboardBody)
		r.Get("/options", s.handleOptions)
		r.Get("/export.xlsx", s.handleExport)
		r.Get("/report.html", s.handleReport)
	})
}

// Handler returns the router with request-id, logging, recovery and CORS
// middleware.
func (s *DashboardServer) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(RequestID)
	r.Use(Logger(s.log, s.metrics))
	r.Use(middleware.Recoverer)
	r.Use(corsMiddleware)
	r.NotFound(func(w http.ResponseWriter, r *http.Request) { writeError(w, r, errNotFound) })
	s.RegisterRoutes(r)
	return r
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, "+RequestIDHeader)
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// ---------------------------------------------------------------------------
// Handlers
// ---------------------------------------------------------------------------

func (s *DashboardServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	if _, err := s.svc.DefaultCriteria(); err != nil {
		render.Status(r, http.StatusServiceUnavailable)
		render.JSON(w, r, HealthResponse{Status: "loading"})
		return
	}
	render.JSON(w, r, HealthResponse{Status: "ok"})
}

// queryCriteria builds criteria from the defaults and the query string.
func (s *DashboardServer) queryCriteria(w http.ResponseWriter, r *http.Request) (dashboard.Criteria, bool) {
	base, err := s.svc.DefaultCriteria()
	if err != nil {
		writeError(w, r, fromError(err))
		return dashboard.Criteria{}, false
	}
	c, err := criteriaFromQuery(r.URL.Query(), base)
	if err != nil {
		writeError(w, r, invalidRequest(err))
		return dashboard.Criteria{}, false
	}
	return c, true
}

func (s *DashboardServer) update(w http.ResponseWriter, r *http.Request, c dashboard.Criteria) (dashboard.Bundle, bool) {
	b, err := s.svc.Update(r.Context(), "http", c)
	if err != nil {
		apiErr := fromError(err)
		if apiErr.StatusCode >= http.StatusInternalServerError && apiErr.StatusCode != http.StatusServiceUnavailable {
			s.log.ErrorContext(r.Context(), "update failed", "request_id", RequestIDFrom(r.Context()), "error", err)
		}
		writeError(w, r, apiErr)
		return dashboard.Bundle{}, false
	}
	return b, true
}

func (s *DashboardServer) respondBundle(w http.ResponseWriter, r *http.Request, c dashboard.Criteria) {
	b, ok := s.update(w, r, c)
	if !ok {
		return
	}
	render.JSON(w, r, DashboardResponse{Criteria: c, Cards: b.Summary.Cards(), Bundle: b})
}

func (s *DashboardServer) handleDashboardQuery(w http.ResponseWriter, r *http.Request) {
	c, ok := s.queryCriteria(w, r)
	if !ok {
		return
	}
	s.respondBundle(w, r, c)
}

// handleDashboardBody decodes a JSON criteria over the defaults, so omitted
// fields keep their default values.
func (s *DashboardServer) handleDashboardBody(w http.ResponseWriter, r *http.Request) {
	c, err := s.svc.DefaultCriteria()
	if err != nil {
		writeError(w, r, fromError(err))
		return
	}
	if err := render.DecodeJSON(r.Body, &c); err != nil {
		writeError(w, r, invalidRequest(err))
		return
	}
	s.respondBundle(w, r, c)
}

func (s *DashboardServer) handleOptions(w http.ResponseWriter, r *http.Request) {
	o, err := s.svc.Options(r.Context())
	if err != nil {
		writeError(w, r, fromError(err))
		return
	}
	render.JSON(w, r, o)
}

func (s *DashboardServer) handleExport(w http.ResponseWriter, r *http.Request) {
	c, ok := s.queryCriteria(w, r)
	if !ok {
		return
	}
	b, ok := s.update(w, r, c)
	if !ok {
		return
	}
	var buf bytes.Buffer
	if err := export.WriteWorkbook(&buf, b); err != nil {
		s.log.ErrorContext(r.Context(), "export failed", "error", err)
		writeError(w, r, fromError(err))
		return
	}
	w.Header().Set("Content-Type", export.ContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="sp500-dashboard.xlsx"`)
	_, _ = w.Write(buf.Bytes())
}

func (s *DashboardServer) handleReport(w http.ResponseWriter, r *http.Request) {
	c, ok := s.queryCriteria(w, r)
	if !ok {
		return
	}
	b, ok := s.update(w, r, c)
	if !ok {
		return
	}
	page, err := report.HTML(s.svc.Title(), b)
	if err != nil {
		s.log.ErrorContext(r.Context(), "report failed", "error", err)
		writeError(w, r, fromError(err))
		return
	}
	render.HTML(w, r, string(page))
}
