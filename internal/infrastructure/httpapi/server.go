// Package httpapi serves task routing over HTTP.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"github.com/xeipuuv/gojsonschema"

	"github.com/felixgeelhaar/hybridai/internal/infrastructure/metrics"
	"github.com/felixgeelhaar/hybridai/pkg/application"
	"github.com/felixgeelhaar/hybridai/pkg/domain/ai"
	"github.com/felixgeelhaar/hybridai/pkg/domain/workflow"
)

const maxBodyBytes = 1 << 20

const processSchemaJSON = `{
  "type": "object",
  "required": ["task"],
  "additionalProperties": false,
  "properties": {
    "task": {"type": "string", "minLength": 1},
    "options": {
      "type": "object",
      "additionalProperties": false,
      "properties": {
        "complexity": {"type": "string", "enum": ["auto", "low", "medium", "high", "simple", "moderate", "complex"]},
        "local": {"type": "boolean"},
        "remote": {"type": "boolean"},
        "model": {"type": "string"},
        "dry_run": {"type": "boolean"},
        "explain": {"type": "boolean"}
      }
    }
  }
}`

var processSchemaLoader = gojsonschema.NewStringLoader(processSchemaJSON)

// Router is the part of the router service the API needs.
type Router interface {
	Plan(ctx context.Context, req application.RouteRequest) (*application.RoutingPlan, error)
	Run(ctx context.Context, req application.RouteRequest) (*application.RoutingPlan, *workflow.Result, error)
}

// ProcessRequest is the body of POST /api/process.
type ProcessRequest struct {
	Task    string         `json:"task"`
	Options ProcessOptions `json:"options"`
}

type ProcessOptions struct {
	Complexity string `json:"complexity"`
	Local      bool   `json:"local"`
	Remote     bool   `json:"remote"`
	Model      string `json:"model"`
	DryRun     bool   `json:"dry_run"`
	// Explain returns the routing plan without calling a backend.
	Explain bool `json:"explain"`
}

// ProcessResponse is returned for every /api/process call.
type ProcessResponse struct {
	Success     bool                     `json:"success"`
	Result      string                   `json:"result,omitempty"`
	Error       string                   `json:"error,omitempty"`
	ErrorKind   string                   `json:"error_kind,omitempty"`
	Details     []string                 `json:"details,omitempty"`
	Decision    *application.RoutingPlan `json:"decision,omitempty"`
	RunID       string                   `json:"run_id,omitempty"`
	Phases      []workflow.PhaseOutput   `json:"phases,omitempty"`
	FailedPhase string                   `json:"failed_phase,omitempty"`
}

// Server is the HTTP API server.
type Server struct {
	addr    string
	router  Router
	metrics *metrics.Metrics
	events  http.Handler
	logger  zerolog.Logger
	server  *http.Server
}

// Option configures a Server.
type Option func(*Server)

// WithEvents serves an event stream at GET /api/events.
func WithEvents(h http.Handler) Option {
	return func(s *Server) { s.events = h }
}

func NewServer(addr string, router Router, m *metrics.Metrics, logger zerolog.Logger, opts ...Option) *Server {
	s := &Server{addr: addr, router: router, metrics: m, logger: logger}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler returns the routed and instrumented handler.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("POST /api/process", s.instrument("/api/process", http.HandlerFunc(s.handleProcess)))
	mux.Handle("GET /healthz", s.instrument("/healthz", http.HandlerFunc(s.handleHealth)))
	if s.metrics != nil {
		mux.Handle("GET /metrics", s.metrics.Handler())
	}
	if s.events != nil {
		mux.Handle("GET /api/events", s.events)
	}
	return mux
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	s.server = &http.Server{
		Addr:              s.addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 15 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info().Str("addr", s.addr).Msg("http server starting")
		errCh <- s.server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		return s.Shutdown(context.Background())
	}
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	return s.server.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleProcess(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		writeJSON(w, http.StatusRequestEntityTooLarge, ProcessResponse{Error: "request body too large"})
		return
	}

	if details, err := validate(body); err != nil {
		writeJSON(w, http.StatusBadRequest, ProcessResponse{Error: err.Error(), Details: details})
		return
	}

	var req ProcessRequest
	if err := json.Unmarshal(body, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, ProcessResponse{Error: fmt.Sprintf("invalid JSON: %v", err)})
		return
	}

	routeReq := application.RouteRequest{
		Task:        req.Task,
		Complexity:  req.Options.Complexity,
		ForceLocal:  req.Options.Local,
		ForceRemote: req.Options.Remote,
		Model:       req.Options.Model,
		DryRun:      req.Options.DryRun,
	}
	if routeReq.Complexity == "auto" {
		routeReq.Complexity = ""
	}

	if req.Options.Explain {
		plan, err := s.router.Plan(r.Context(), routeReq)
		if err != nil {
			writeJSON(w, statusFor(err), ProcessResponse{Error: err.Error()})
			return
		}
		writeJSON(w, http.StatusOK, ProcessResponse{Success: true, Decision: plan})
		return
	}

	plan, res, err := s.router.Run(r.Context(), routeReq)
	resp := ProcessResponse{Success: err == nil, Decision: plan}
	if res != nil {
		resp.Result = res.Report()
		resp.RunID = res.RunID
		resp.Phases = res.Phases
		if res.FailedPhase != nil {
			resp.FailedPhase = res.FailedPhase.String()
		}
	}
	if err != nil {
		s.logger.Warn().Err(err).Msg("process request failed")
		resp.Error = err.Error()
		if kind, ok := ai.KindOf(err); ok {
			resp.ErrorKind = kind.String()
		}
		writeJSON(w, statusFor(err), resp)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// validate checks body against the request schema and returns one detail
// line per violation.
func validate(body []byte) ([]string, error) {
	result, err := gojsonschema.Validate(processSchemaLoader, gojsonschema.NewBytesLoader(body))
	if err != nil {
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}
	if result.Valid() {
		return nil, nil
	}
	details := make([]string, 0, len(result.Errors()))
	for _, desc := range result.Errors() {
		details = append(details, desc.String())
	}
	return details, errors.New("request does not match schema")
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, application.ErrEmptyTask):
		return http.StatusBadRequest
	case errors.Is(err, ai.ErrTimeout):
		return http.StatusGatewayTimeout
	case errors.Is(err, ai.ErrBackendUnavailable),
		errors.Is(err, ai.ErrAuth),
		errors.Is(err, ai.ErrRateLimited),
		errors.Is(err, ai.ErrProtocol):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (s *Server) instrument(route string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		if s.metrics != nil {
			s.metrics.ObserveRequest(r.Method, route, rec.status, time.Since(start))
		}
		s.logger.Debug().
			Str("method", r.Method).
			Str("route", route).
			Int("status", rec.status).
			Dur("duration", time.Since(start)).
			Msg("http request")
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
