package sse_test

import (
	"bufio"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/felixgeelhaar/hybridai/internal/infrastructure/sse"
	"github.com/felixgeelhaar/hybridai/pkg/application"
	"github.com/felixgeelhaar/hybridai/pkg/domain/routing"
	"github.com/felixgeelhaar/hybridai/pkg/domain/workflow"
)

var _ application.Observer = (*sse.Broadcaster)(nil)

func waitForClients(t *testing.T, b *sse.Broadcaster, n int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for b.Clients() < n {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %d client(s)", n)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestBroadcaster_StreamsEvents(t *testing.T) {
	b := sse.NewBroadcaster()
	server := httptest.NewServer(b)
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, server.URL+"?types=phase,run", nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	defer resp.Body.Close()

	if resp.Header.Get("Content-Type") != "text/event-stream" {
		t.Errorf("expected text/event-stream, got %s", resp.Header.Get("Content-Type"))
	}

	waitForClients(t, b, 1)
	b.DecisionMade(routing.Summary{Approach: routing.ApproachCollaborative})
	b.PhaseFinished(workflow.PhaseReview, workflow.StatusFailed, 1500*time.Millisecond)
	b.RunFinished(routing.ApproachCollaborative, workflow.StatusFailed, 3*time.Second)

	var lines []string
	scanner := bufio.NewScanner(resp.Body)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.HasPrefix(line, "event: ") || strings.HasPrefix(line, "data: ") {
			lines = append(lines, line)
		}
		if line == "event: run" {
			scanner.Scan()
			lines = append(lines, scanner.Text())
			break
		}
	}

	got := strings.Join(lines, "\n")
	if strings.Contains(got, "event: decision") {
		t.Error("decision event should be filtered out")
	}
	for _, want := range []string{`event: phase`, `"phase":"review"`, `"status":"failed"`, `"duration_ms":1500`, `event: run`} {
		if !strings.Contains(got, want) {
			t.Errorf("stream missing %s:\n%s", want, got)
		}
	}
}

func TestBroadcaster_NoClients(t *testing.T) {
	b := sse.NewBroadcaster()
	b.DecisionMade(routing.Summary{Approach: routing.ApproachLocal})
	if b.Clients() != 0 {
		t.Error("expected no clients")
	}
}
