package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/nkagan-1326/onboarding-plan-generator/internal/catalog"
	"github.com/nkagan-1326/onboarding-plan-generator/internal/config"
	"github.com/nkagan-1326/onboarding-plan-generator/internal/export"
	"github.com/nkagan-1326/onboarding-plan-generator/internal/llm"
	"github.com/nkagan-1326/onboarding-plan-generator/internal/metrics"
	"github.com/nkagan-1326/onboarding-plan-generator/internal/pipeline"
	"github.com/nkagan-1326/onboarding-plan-generator/internal/schemas"
	"github.com/nkagan-1326/onboarding-plan-generator/internal/server/middleware"
	"github.com/nkagan-1326/onboarding-plan-generator/internal/server/ratelimit"
	"github.com/nkagan-1326/onboarding-plan-generator/internal/types"
	"github.com/nkagan-1326/onboarding-plan-generator/internal/validation"
)

// maxBodyBytes caps request bodies; submissions and plan texts are far smaller.
const maxBodyBytes = 1 << 20

// Server represents the HTTP server
type Server struct {
	httpServer  *http.Server
	handler     http.Handler
	pipeline    *pipeline.Pipeline
	catalog     *catalog.Catalog
	metrics     *metrics.Recorder
	rateLimiter *ratelimit.Limiter
	jwtService  *JWTService
}

// Config holds server configuration
type Config struct {
	Port int
	// RateLimit defaults to ratelimit.LoadConfig when nil.
	RateLimit *ratelimit.Config
	// JWT enables bearer auth on POST routes when set.
	JWT     *config.JWTConfig
	Metrics *metrics.Recorder
}

// New creates a new server instance around a submission pipeline
func New(cfg Config, p *pipeline.Pipeline) (*Server, error) {
	if p == nil {
		return nil, fmt.Errorf("server requires a pipeline")
	}

	rlConfig := cfg.RateLimit
	if rlConfig == nil {
		rlConfig = ratelimit.LoadConfig()
	}

	s := &Server{
		pipeline:    p,
		catalog:     p.Collector().Catalog(),
		metrics:     cfg.Metrics,
		rateLimiter: ratelimit.NewLimiter(rlConfig),
	}

	// POST routes call the oracle or render files; guard them when a secret is configured
	protect := func(h http.HandlerFunc) http.Handler { return h }
	if cfg.JWT != nil {
		s.jwtService = NewJWTService(cfg.JWT)
		auth := middleware.AuthMiddleware(s.jwtService.AsTokenValidator())
		protect = func(h http.HandlerFunc) http.Handler { return auth(h) }
	}

	mux := http.NewServeMux()
	mux.Handle("POST /plans", protect(s.handleCreatePlan))
	mux.Handle("POST /exports", protect(s.handleExport))
	mux.HandleFunc("GET /presets", s.handleListPresets)
	mux.HandleFunc("GET /presets/{name}", s.handleGetPreset)
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.Handle("GET /metrics", s.metrics.Handler())

	s.handler = s.withRateLimit(mux, s.withLogging(s.withCORS(mux)))
	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.handler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 300 * time.Second, // Long timeout for oracle calls
		IdleTimeout:  60 * time.Second,
	}

	return s, nil
}

// Handler returns the fully wrapped request handler.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Start begins listening for requests and blocks until SIGINT or SIGTERM
func (s *Server) Start() error {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	errCh := make(chan error, 1)
	go func() {
		log.Printf("Server starting on %s", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		s.rateLimiter.Stop()
		return fmt.Errorf("server error: %w", err)
	case <-stop:
	}
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	// Stop rate limiter cleanup goroutine
	s.rateLimiter.Stop()

	log.Println("Server stopped")
	return nil
}

// Close releases background resources without serving.
func (s *Server) Close() {
	s.rateLimiter.Stop()
}

// planResponse is the body returned for every plan submission
type planResponse struct {
	ID          string               `json:"id"`
	State       pipeline.State       `json:"state"`
	Context     *types.RoleContext   `json:"context,omitempty"`
	Plan        *types.GeneratedPlan `json:"plan,omitempty"`
	Warnings    []string             `json:"warnings,omitempty"`
	FieldErrors []types.FieldError   `json:"field_errors,omitempty"`
	Error       string               `json:"error,omitempty"`
	ErrorKind   string               `json:"error_kind,omitempty"`
	Verdict     types.Verdict        `json:"verdict,omitempty"`
}

func newPlanResponse(outcome *pipeline.Outcome) planResponse {
	resp := planResponse{
		ID:          outcome.ID.String(),
		State:       outcome.State,
		Context:     outcome.Context,
		Plan:        outcome.Plan,
		Warnings:    outcome.Warnings,
		FieldErrors: outcome.FieldErrors,
		Error:       outcome.Message(),
	}
	if outcome.Plan != nil {
		resp.Verdict = outcome.Plan.Validation.Verdict
	}

	var oracleErr *llm.Error
	var rejected *validation.RejectedError
	switch {
	case errors.As(outcome.Err, &oracleErr):
		resp.ErrorKind = string(oracleErr.Kind)
	case errors.As(outcome.Err, &rejected):
		resp.Verdict = rejected.Result.Verdict
	}
	return resp
}

// handleCreatePlan runs one submission through the pipeline
func (s *Server) handleCreatePlan(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(w, r)
	if err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}
	if err := schemas.ValidateSubmission(body); err != nil {
		s.schemaErrorResponse(w, err)
		return
	}

	var sub types.Submission
	if err := json.Unmarshal(body, &sub); err != nil {
		s.errorResponse(w, http.StatusBadRequest, fmt.Sprintf("invalid submission: %v", err))
		return
	}

	outcome := s.pipeline.Run(r.Context(), sub)
	status := http.StatusOK
	if outcome.Err != nil {
		status = HTTPStatus(outcome.Err)
		log.Printf("[plans] Submission %s ended in %s: %v", outcome.ID, outcome.State, outcome.Err)
	}
	s.jsonResponse(w, status, newPlanResponse(outcome))
}

// exportRequest is the body of POST /exports
type exportRequest struct {
	Text string `json:"text"`
}

// handleExport renders plan text as a downloadable file
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	formatParam := r.URL.Query().Get("format")
	if formatParam == "" {
		formatParam = string(export.FormatMarkdown)
	}
	format, err := export.ParseFormat(formatParam)
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	body, err := readBody(w, r)
	if err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}
	if err := schemas.ValidateExportRequest(body); err != nil {
		s.schemaErrorResponse(w, err)
		return
	}

	var req exportRequest
	if err := json.Unmarshal(body, &req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, fmt.Sprintf("invalid export request: %v", err))
		return
	}

	data, err := export.Render(format, req.Text)
	if err != nil {
		log.Printf("[exports] Rendering %s failed: %v", format, err)
		s.errorResponse(w, http.StatusInternalServerError, "failed to render export")
		return
	}

	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", format.Filename()))
	w.Header().Set("Content-Length", fmt.Sprintf("%d", len(data)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		log.Printf("Error writing export: %v", err)
	}
}

// handleListPresets lists the preset catalog
func (s *Server) handleListPresets(w http.ResponseWriter, _ *http.Request) {
	presets := s.catalog.Presets()
	s.jsonResponse(w, http.StatusOK, map[string]any{
		"presets": presets,
		"count":   len(presets),
	})
}

// handleGetPreset returns one preset by name
func (s *Server) handleGetPreset(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	preset, ok := s.catalog.Preset(name)
	if !ok {
		err := &ErrNotFound{Resource: "preset", Name: name}
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}
	s.jsonResponse(w, http.StatusOK, preset)
}

// handleHealth returns server health status
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}

// readBody reads a bounded request body.
func readBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, &ErrBadRequest{Message: fmt.Sprintf("request body exceeds %d bytes", maxBodyBytes)}
		}
		return nil, &ErrBadRequest{Message: fmt.Sprintf("failed to read body: %v", err)}
	}
	if len(body) == 0 {
		return nil, &ErrBadRequest{Message: "request body is empty"}
	}
	return body, nil
}

// withCORS adds CORS headers
func (s *Server) withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// withRateLimit adds rate limiting middleware. Buckets are keyed by the route pattern
// mux resolves, so path parameters share one bucket.
func (s *Server) withRateLimit(mux *http.ServeMux, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		clientID := s.extractClientID(r)

		allowed, info := s.rateLimiter.Allow(clientID, routePath(mux, r), r.Method)
		s.setRateLimitHeaders(w, info)
		if !allowed {
			s.rateLimitResponse(w, info)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// routePath returns the path part of the mux pattern serving r, or "*" when none does.
func routePath(mux *http.ServeMux, r *http.Request) string {
	_, pattern := mux.Handler(r)
	if i := strings.IndexByte(pattern, ' '); i >= 0 {
		pattern = pattern[i+1:]
	}
	if pattern == "" {
		return "*"
	}
	return pattern
}

// statusRecorder captures the response status for logging
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// withLogging adds request logging
func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		log.Printf("[%s] %s %s", r.Method, r.URL.Path, r.RemoteAddr)
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		log.Printf("[%s] %s %d completed in %v", r.Method, r.URL.Path, rec.status, time.Since(start))
	})
}

// jsonResponse writes a JSON response
func (s *Server) jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("Error encoding JSON response: %v", err)
	}
}

// errorResponse writes an error JSON response
func (s *Server) errorResponse(w http.ResponseWriter, status int, message string) {
	s.jsonResponse(w, status, map[string]string{"error": message})
}

// schemaErrorResponse reports a request body that does not match its schema.
func (s *Server) schemaErrorResponse(w http.ResponseWriter, err error) {
	var ve *schemas.ValidationError
	if !errors.As(err, &ve) {
		log.Printf("[schemas] Validation unavailable: %v", err)
		s.errorResponse(w, http.StatusInternalServerError, "request validation unavailable")
		return
	}
	s.jsonResponse(w, http.StatusUnprocessableEntity, map[string]any{
		"error":        "request body does not match the expected schema",
		"field_errors": ve.FieldErrors(),
	})
}

// extractClientID extracts the client identifier from the request.
// This uses the IP address from RemoteAddr.
func (s *Server) extractClientID(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

// setRateLimitHeaders sets standard rate limit headers on the response.
func (s *Server) setRateLimitHeaders(w http.ResponseWriter, info ratelimit.Info) {
	if info.Limit > 0 {
		w.Header().Set("X-RateLimit-Limit", fmt.Sprintf("%d", info.Limit))
		w.Header().Set("X-RateLimit-Remaining", fmt.Sprintf("%d", info.Remaining))
		w.Header().Set("X-RateLimit-Reset", fmt.Sprintf("%d", info.ResetTime.Unix()))
	}
}

// rateLimitResponse writes a 429 Too Many Requests response with rate limit information.
func (s *Server) rateLimitResponse(w http.ResponseWriter, info ratelimit.Info) {
	response := map[string]interface{}{
		"error":     "rate_limit_exceeded",
		"message":   "Rate limit exceeded. Please try again later.",
		"limit":     info.Limit,
		"remaining": info.Remaining,
		"reset_at":  info.ResetTime.Format(time.RFC3339),
	}

	if info.RetryAfter > 0 {
		seconds := int(info.RetryAfter.Seconds()) + 1
		response["retry_after"] = seconds
		w.Header().Set("Retry-After", fmt.Sprintf("%d", seconds))
	}

	log.Printf("[rate-limit] Rate limit exceeded: Limit=%d Remaining=%d Reset=%s",
		info.Limit, info.Remaining, info.ResetTime.Format(time.RFC3339))

	s.jsonResponse(w, http.StatusTooManyRequests, response)
}
