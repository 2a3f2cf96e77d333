// Package api exposes the HTTP interface for the candidate summary service.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/outstaffer/candidate-summary-api/internal/bulk"
	"github.com/outstaffer/candidate-summary-api/internal/config"
	"github.com/outstaffer/candidate-summary-api/internal/gmail"
	"github.com/outstaffer/candidate-summary-api/internal/metrics"
	"github.com/outstaffer/candidate-summary-api/internal/pipeline"
	"github.com/outstaffer/candidate-summary-api/internal/prompts"
	"github.com/outstaffer/candidate-summary-api/internal/quil"
	"github.com/outstaffer/candidate-summary-api/internal/summary"
	"github.com/outstaffer/candidate-summary-api/internal/worker"
)

// Options carries the dependencies for the HTTP server.
type Options struct {
	Config config.Config
	Logger *zap.Logger

	Pipeline *pipeline.Pipeline
	Bulk     *bulk.Service
	Worker   *worker.Worker
	Registry *prompts.Registry

	ATS         summary.ATS
	Interviews  summary.InterviewSource
	Transcripts summary.TranscriptSource
	Selector    *quil.Selector
	Gmail       *gmail.Service
	Queue       summary.TaskQueue

	Prompts     summary.PromptStore
	Feedback    summary.FeedbackStore
	Runs        summary.RunStore
	ConfigStore summary.ConfigStore
}

// Server wires HTTP handlers to the pipeline, stores, and task queue.
type Server struct {
	router chi.Router
	logger *zap.Logger
	cfg    config.Config

	pipe     *pipeline.Pipeline
	bulk     *bulk.Service
	worker   *worker.Worker
	registry *prompts.Registry

	ats         summary.ATS
	interviews  summary.InterviewSource
	transcripts summary.TranscriptSource
	selector    *quil.Selector
	gmail       *gmail.Service
	queue       summary.TaskQueue

	prompts     summary.PromptStore
	feedback    summary.FeedbackStore
	runs        summary.RunStore
	configStore summary.ConfigStore
}

// NewServer constructs a Server with middleware and routes.
func NewServer(opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		logger:      logger,
		cfg:         opts.Config,
		pipe:        opts.Pipeline,
		bulk:        opts.Bulk,
		worker:      opts.Worker,
		registry:    opts.Registry,
		ats:         opts.ATS,
		interviews:  opts.Interviews,
		transcripts: opts.Transcripts,
		selector:    opts.Selector,
		gmail:       opts.Gmail,
		queue:       opts.Queue,
		prompts:     opts.Prompts,
		feedback:    opts.Feedback,
		runs:        opts.Runs,
		configStore: opts.ConfigStore,
	}

	r := chi.NewRouter()
	r.Use(requestIDMiddleware)
	r.Use(s.loggingMiddleware)
	r.Use(s.recoverMiddleware)
	r.Use(corsMiddleware(opts.Config.CORS.AllowedOrigins))
	r.Use(timeoutMiddleware(opts.Config.RequestTimeout()))

	r.Get("/health", s.health)
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	// Task deliveries authenticate via OIDC at the infrastructure layer, and
	// webhooks carry no secret, so neither sits behind the API key.
	r.Post("/webhooks/recruitcrm", s.recruitcrmWebhook)
	r.Post("/tasks/summary", s.summaryTask)

	r.Route("/api", func(r chi.Router) {
		if opts.Config.Auth.Enabled {
			r.Use(apiKeyMiddleware(opts.Config.Auth.APIKey))
		}

		r.Get("/prompts", s.listPrompts)
		r.Post("/test-candidate", s.testCandidate)
		r.Post("/test-job", s.testJob)
		r.Post("/test-interview", s.testInterview)
		r.Post("/test-fireflies", s.testFireflies)
		r.Post("/test-resume", s.testResume)
		r.Post("/test-quil", s.testQuil)
		r.Post("/generate-summary", s.generateSummary)
		r.Post("/push-to-recruitcrm", s.pushToRecruitCRM)
		r.Post("/create-note", s.createNote)
		r.Post("/move-stage", s.moveStage)
		r.Post("/log-feedback", s.logFeedback)
		r.Post("/create-gmail-draft", s.createGmailDraft)

		r.Post("/generate-multiple-candidates", s.generateMultipleCandidates)
		r.Post("/process-curated-candidates", s.processCuratedCandidates)

		r.Get("/job-stages-with-counts/{job_slug}", s.jobStagesWithCounts)
		r.Get("/candidates-in-stage/{job_slug}/{stage_id}", s.candidatesInStage)
		r.Post("/bulk-process-job", s.bulkProcessJob)
		r.Get("/bulk-job-status/{job_id}", s.bulkJobStatus)
		r.Post("/generate-bulk-email", s.generateBulkEmail)

		r.Get("/webhook-config", s.getWebhookConfig)
		r.Put("/webhook-config", s.updateWebhookConfig)
		r.Get("/summary-runs", s.listSummaryRuns)

		r.Route("/admin/prompts", func(r chi.Router) {
			r.Get("/", s.adminListPrompts)
			r.Post("/", s.adminCreatePrompt)
			r.Route("/{prompt_id}", func(r chi.Router) {
				r.Get("/", s.adminGetPrompt)
				r.Put("/", s.adminUpdatePrompt)
				r.Delete("/", s.adminDeletePrompt)
				r.Post("/set-default", s.adminSetDefaultPrompt)
			})
		})
	})

	s.router = r
	return s
}

// Handler returns the router for use with http.Server.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// decodeJSON decodes the request body into dst, rejecting malformed JSON.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return false
	}
	return true
}

// errStatus maps pipeline and store errors to HTTP statuses.
func errStatus(err error) int {
	switch {
	case errors.Is(err, summary.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusRequestTimeout
	default:
		return http.StatusInternalServerError
	}
}

func requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := uuid.NewString()
		ctx := context.WithValue(r.Context(), requestIDKey{}, reqID)
		w.Header().Set("X-Request-ID", reqID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

type requestIDKey struct{}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := &responseWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(ww, r)
		duration := time.Since(start)
		// Label by the matched chi pattern, not the raw path, so URL slugs
		// don't explode metric cardinality.
		route := chi.RouteContext(r.Context()).RoutePattern()
		if route == "" {
			route = "unmatched"
		}
		metrics.ObserveHTTPRequest(r.Method, route, ww.status, duration)
		s.logger.Info("request completed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.status),
			zap.Int64("duration_ms", duration.Milliseconds()),
		)
	})
}

func (s *Server) recoverMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				s.logger.Error("panic recovered", zap.Any("panic", rec))
				writeError(w, http.StatusInternalServerError, "internal server error")
			}
		}()
		next.ServeHTTP(w, r)
	})
}

func corsMiddleware(allowedOrigins []string) func(http.Handler) http.Handler {
	allowed := make(map[string]bool, len(allowedOrigins))
	wildcard := false
	for _, o := range allowedOrigins {
		if o == "*" {
			wildcard = true
		}
		allowed[o] = true
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			if origin != "" && (wildcard || allowed[origin]) {
				w.Header().Set("Access-Control-Allow-Origin", origin)
				w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
				w.Header().Set("Access-Control-Allow-Headers", "Content-Type, X-API-Key")
				w.Header().Set("Vary", "Origin")
			}
			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func timeoutMiddleware(d time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.TimeoutHandler(next, d, "request timed out")
	}
}

func apiKeyMiddleware(expected string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := r.Header.Get("X-API-Key")
			if key == "" {
				key = r.URL.Query().Get("api_key")
			}
			if key != expected {
				writeError(w, http.StatusForbidden, "unauthorized")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

type responseWriter struct {
	http.ResponseWriter
	status int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.status = code
	rw.ResponseWriter.WriteHeader(code)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
