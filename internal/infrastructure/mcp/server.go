package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/felixgeelhaar/mcp-go"
	"github.com/rs/zerolog"

	"github.com/felixgeelhaar/hybridai/pkg/application"
	"github.com/felixgeelhaar/hybridai/pkg/domain/ai"
	"github.com/felixgeelhaar/hybridai/pkg/domain/workflow"
)

var (
	Version     = "dev"
	BuildCommit = "unknown"
	BuildDate   = "unknown"
)

// Router is the part of the router service exposed as tools.
type Router interface {
	Plan(ctx context.Context, req application.RouteRequest) (*application.RoutingPlan, error)
	Run(ctx context.Context, req application.RouteRequest) (*application.RoutingPlan, *workflow.Result, error)
}

type Server struct {
	mcpServer *mcp.Server
	router    Router
	logger    zerolog.Logger
}

// mcpErr returns a user-friendly error for MCP clients.
func mcpErr(friendly string) error {
	return fmt.Errorf("%s", friendly)
}

func NewServer(router Router, logger zerolog.Logger) *Server {
	info := mcp.ServerInfo{
		Name:    "hybrid-ai",
		Version: Version,
	}

	s := &Server{
		mcpServer: mcp.NewServer(info,
			mcp.WithTitle("Hybrid AI Router"),
			mcp.WithDescription("Routes tasks to a local model server, a cloud aggregator or direct cloud APIs, and runs the collaborative pipeline for complex work."),
			mcp.WithBuildInfo(BuildCommit, BuildDate),
			mcp.WithInstructions("Use route_task to preview where a task would go and run_task to execute it."),
		),
		router: router,
		logger: logger,
	}

	s.registerTools()
	s.registerPipelineResource()
	return s
}

// FlexBool accepts both boolean and string ("true"/"false") JSON values.
// MCP clients sometimes send string values for boolean fields.
type FlexBool bool

func (fb *FlexBool) UnmarshalJSON(data []byte) error {
	var b bool
	if err := json.Unmarshal(data, &b); err == nil {
		*fb = FlexBool(b)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*fb = FlexBool(s == "true" || s == "1" || s == "yes")
		return nil
	}
	return fmt.Errorf("expected boolean or string, got %s", string(data))
}

// TaskArgs are shared by the route and run tools.
type TaskArgs struct {
	Task       string   `json:"task" jsonschema:"description=The task to route"`
	Complexity string   `json:"complexity,omitempty" jsonschema:"description=Override classification: low, medium or high"`
	Local      FlexBool `json:"local,omitempty" jsonschema:"description=Force the local model server"`
	Remote     FlexBool `json:"remote,omitempty" jsonschema:"description=Force direct cloud APIs"`
	Model      string   `json:"model,omitempty" jsonschema:"description=Model for single-call approaches"`
	DryRun     FlexBool `json:"dry_run,omitempty" jsonschema:"description=Simulate every backend without network calls"`
}

func (a TaskArgs) request() application.RouteRequest {
	return application.RouteRequest{
		Task:        a.Task,
		Complexity:  a.Complexity,
		ForceLocal:  bool(a.Local),
		ForceRemote: bool(a.Remote),
		Model:       a.Model,
		DryRun:      bool(a.DryRun),
	}
}

// RunResponse is returned by run_task. Failed runs keep the phases that
// completed.
type RunResponse struct {
	Success     bool                     `json:"success"`
	Report      string                   `json:"report"`
	RunID       string                   `json:"run_id,omitempty"`
	Plan        *application.RoutingPlan `json:"plan"`
	Phases      []workflow.PhaseOutput   `json:"phases,omitempty"`
	FailedPhase string                   `json:"failed_phase,omitempty"`
	Error       string                   `json:"error,omitempty"`
	ErrorKind   string                   `json:"error_kind,omitempty"`
}

func (s *Server) registerTools() {
	s.mcpServer.Tool("route_task").
		Description("Classify a task and explain which backend or pipeline would handle it, without calling any model").
		Handler(s.handleRoute)

	s.mcpServer.Tool("run_task").
		Description("Route a task and execute it, returning the model output or the collaborative pipeline report").
		Handler(s.handleRun)
}

func (s *Server) handleRoute(ctx context.Context, args TaskArgs) (any, error) {
	plan, err := s.router.Plan(ctx, args.request())
	if err != nil {
		if errors.Is(err, application.ErrEmptyTask) {
			return nil, mcpErr("task must not be empty")
		}
		return nil, mcpErr(fmt.Sprintf("failed to route task: %v", err))
	}
	return plan, nil
}

func (s *Server) handleRun(ctx context.Context, args TaskArgs) (any, error) {
	plan, res, err := s.router.Run(ctx, args.request())
	if plan == nil {
		if errors.Is(err, application.ErrEmptyTask) {
			return nil, mcpErr("task must not be empty")
		}
		return nil, mcpErr(fmt.Sprintf("failed to route task: %v", err))
	}

	resp := RunResponse{Success: err == nil, Plan: plan}
	if res != nil {
		resp.Report = res.Report()
		resp.RunID = res.RunID
		resp.Phases = res.Phases
		if res.FailedPhase != nil {
			resp.FailedPhase = res.FailedPhase.String()
		}
	}
	if err != nil {
		s.logger.Warn().Err(err).Str("approach", string(plan.Decision.Approach)).Msg("mcp run failed")
		resp.Error = err.Error()
		if kind, ok := ai.KindOf(err); ok {
			resp.ErrorKind = kind.String()
		}
	}
	return resp, nil
}

func (s *Server) ServeStdio(ctx context.Context) error {
	return mcp.ServeStdio(ctx, s.mcpServer)
}

func (s *Server) ServeHTTP(ctx context.Context, addr string) error {
	return mcp.ServeHTTP(ctx, s.mcpServer, addr, mcp.WithDefaultCORS())
}
