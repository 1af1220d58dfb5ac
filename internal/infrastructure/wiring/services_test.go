package wiring

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/felixgeelhaar/hybridai/internal/infrastructure/config"
	"github.com/felixgeelhaar/hybridai/pkg/application"
	"github.com/felixgeelhaar/hybridai/pkg/credentials"
	"github.com/felixgeelhaar/hybridai/pkg/domain/routing"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.Default()
	dir := t.TempDir()
	cfg.Credentials.LocalFile = filepath.Join(dir, ".env")
	cfg.Credentials.GlobalFile = filepath.Join(dir, ".hybrid-ai-config")
	return cfg
}

func TestResilienceFromConfig(t *testing.T) {
	cfg := testConfig(t)
	cfg.Timeouts.Call = 5 * time.Second
	cfg.Resilience.MaxRetries = 2
	cfg.Resilience.RetryDelay = 50 * time.Millisecond

	rc := ResilienceFromConfig(cfg)
	if rc.Timeout != 5*time.Second || rc.MaxRetries != 2 || rc.RetryDelay != 50*time.Millisecond {
		t.Errorf("unexpected resilience %+v", rc)
	}
}

func TestRouterConfigFromConfig(t *testing.T) {
	cfg := testConfig(t)
	cfg.Complexity.LowMax = 10
	cfg.Remote.DefaultModel = "qwen-max"

	rc := RouterConfigFromConfig(cfg)
	if rc.Thresholds.LowMax != 10 || rc.Thresholds.MediumMax != 200 {
		t.Errorf("thresholds = %+v", rc.Thresholds)
	}
	if rc.Models.Remote != "qwen-max" || rc.LocalEndpoint != "http://localhost:11434" {
		t.Errorf("models = %+v endpoint = %s", rc.Models, rc.LocalEndpoint)
	}
}

func TestNewBackendFactory_LocalServer(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/generate" {
			http.NotFound(w, r)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"response": "local answer", "done": true})
	}))
	defer server.Close()

	cfg := testConfig(t)
	cfg.Local.BaseURL = server.URL

	backends := NewBackendFactory(cfg, server.Client(), nil)(credentials.Credentials{}, false)
	client, ok := backends.For(routing.BackendLocal)
	if !ok {
		t.Fatal("local backend missing")
	}
	out, err := client.ExecuteTask(context.Background(), "hi", "smollm2:1.7b")
	if err != nil {
		t.Fatalf("ExecuteTask: %v", err)
	}
	if out != "local answer" {
		t.Errorf("output = %q", out)
	}
}

func TestNewBackendFactory_DryRun(t *testing.T) {
	backends := NewBackendFactory(testConfig(t), nil, nil)(credentials.Credentials{}, true)
	client, _ := backends.For(routing.BackendRemote)
	out, err := client.ExecuteTask(context.Background(), "plan a service", "gemini-pro")
	if err != nil {
		t.Fatalf("dry run should not need keys: %v", err)
	}
	if !strings.Contains(out, "dry run") {
		t.Errorf("unexpected dry run output %q", out)
	}
}

func TestBuildAppServices(t *testing.T) {
	cfg := testConfig(t)
	env := map[string]string{"OPENROUTER_API_KEY": "sk-or-v1-abcdef1234567890"}

	services := BuildAppServices(cfg, zerolog.Nop(), Options{Env: env})
	if services.Router == nil || services.Metrics == nil || services.Resolver == nil {
		t.Fatalf("incomplete services %+v", services)
	}

	plan, err := services.Router.Plan(context.Background(), application.RouteRequest{Task: "what is a goroutine?"})
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}
	if plan.Decision.Approach != routing.ApproachAggregator {
		t.Errorf("approach = %s", plan.Decision.Approach)
	}

	_, res, err := services.Router.Run(context.Background(), application.RouteRequest{Task: "hello", DryRun: true})
	if err != nil {
		t.Fatalf("dry run: %v", err)
	}
	if !strings.Contains(res.Report(), "dry run") {
		t.Errorf("unexpected report %q", res.Report())
	}
}
