// Package sse streams routing and pipeline events via Server-Sent Events.
package sse

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/felixgeelhaar/hybridai/pkg/domain/routing"
	"github.com/felixgeelhaar/hybridai/pkg/domain/workflow"
)

// Event types.
const (
	EventDecision = "decision"
	EventPhase    = "phase"
	EventRun      = "run"
)

// Event is one streamed notification.
type Event struct {
	ID         uint64           `json:"id"`
	Type       string           `json:"type"`
	Timestamp  time.Time        `json:"timestamp"`
	Decision   *routing.Summary `json:"decision,omitempty"`
	Approach   routing.Approach `json:"approach,omitempty"`
	Phase      string           `json:"phase,omitempty"`
	Status     workflow.Status  `json:"status,omitempty"`
	DurationMS int64            `json:"duration_ms,omitempty"`
}

// Broadcaster fans orchestrator events out to connected SSE clients. It
// implements the orchestrator observer.
type Broadcaster struct {
	seq     atomic.Uint64
	mu      sync.RWMutex
	clients map[chan Event]struct{}
}

func NewBroadcaster() *Broadcaster {
	return &Broadcaster{clients: make(map[chan Event]struct{})}
}

func (b *Broadcaster) DecisionMade(s routing.Summary) {
	b.publish(Event{Type: EventDecision, Decision: &s, Approach: s.Approach})
}

func (b *Broadcaster) PhaseFinished(p workflow.Phase, st workflow.Status, elapsed time.Duration) {
	b.publish(Event{Type: EventPhase, Phase: p.String(), Status: st, DurationMS: elapsed.Milliseconds()})
}

func (b *Broadcaster) RunFinished(a routing.Approach, st workflow.Status, elapsed time.Duration) {
	b.publish(Event{Type: EventRun, Approach: a, Status: st, DurationMS: elapsed.Milliseconds()})
}

// Clients returns the number of connected clients.
func (b *Broadcaster) Clients() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.clients)
}

func (b *Broadcaster) publish(e Event) {
	e.ID = b.seq.Add(1)
	e.Timestamp = time.Now().UTC()

	b.mu.RLock()
	defer b.mu.RUnlock()
	for ch := range b.clients {
		select {
		case ch <- e:
		default:
			// Drop if client is slow
		}
	}
}

// ServeHTTP streams events until the client disconnects. The optional
// "types" query parameter filters by comma-separated event type.
func (b *Broadcaster) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming unsupported", http.StatusInternalServerError)
		return
	}

	typeFilter := make(map[string]bool)
	if types := r.URL.Query().Get("types"); types != "" {
		for _, t := range strings.Split(types, ",") {
			typeFilter[strings.TrimSpace(t)] = true
		}
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	ch := make(chan Event, 64)
	b.mu.Lock()
	b.clients[ch] = struct{}{}
	b.mu.Unlock()

	defer func() {
		b.mu.Lock()
		delete(b.clients, ch)
		b.mu.Unlock()
	}()

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case event := <-ch:
			if len(typeFilter) > 0 && !typeFilter[event.Type] {
				continue
			}
			data, err := json.Marshal(event)
			if err != nil {
				continue
			}
			_, _ = fmt.Fprintf(w, "id: %d\nevent: %s\ndata: %s\n\n", event.ID, event.Type, data)
			flusher.Flush()
		}
	}
}
