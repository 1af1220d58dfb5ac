// Package progress prints periodic status text while long backend calls run.
package progress

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("42"))
	messageStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("229"))
	authorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	frameStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#7D56F4"))
)

// Announcer starts status tasks. It is safe for concurrent use; each Start
// returns an independent Handle.
type Announcer struct {
	out      io.Writer
	interval time.Duration
	frames   []string
	enabled  bool

	mu sync.Mutex
}

// Option configures an Announcer.
type Option func(*Announcer)

// WithInterval sets how often a new message is printed.
func WithInterval(d time.Duration) Option {
	return func(a *Announcer) {
		if d > 0 {
			a.interval = d
		}
	}
}

// WithEnabled turns output on or off. A disabled announcer returns handles
// that do nothing.
func WithEnabled(enabled bool) Option {
	return func(a *Announcer) { a.enabled = enabled }
}

// New creates an announcer writing to out.
func New(out io.Writer, opts ...Option) *Announcer {
	a := &Announcer{
		out:      out,
		interval: 10 * time.Second,
		frames:   spinner.Dot.Frames,
		enabled:  out != nil,
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.out == nil {
		a.enabled = false
	}
	return a
}

// Disabled returns an announcer that never writes.
func Disabled() *Announcer {
	return New(nil)
}

// Handle controls one running status task.
type Handle struct {
	stop chan struct{}
	done chan struct{}
	once sync.Once
}

// Stop ends the task and waits for its goroutine to exit. It is safe to call
// more than once and from several goroutines.
func (h *Handle) Stop() {
	h.once.Do(func() { close(h.stop) })
	<-h.done
}

// Start prints title and a first message, then one message per interval
// until the handle is stopped.
func (a *Announcer) Start(mood, title string) *Handle {
	h := &Handle{stop: make(chan struct{}), done: make(chan struct{})}
	if !a.enabled {
		close(h.done)
		return h
	}

	messages := MessagesFor(mood)
	a.write(titleStyle.Render(title))
	a.announce(0, messages)

	go func() {
		defer close(h.done)
		ticker := time.NewTicker(a.interval)
		defer ticker.Stop()
		for i := 1; ; i++ {
			select {
			case <-h.stop:
				return
			case <-ticker.C:
				a.announce(i, messages)
			}
		}
	}()
	return h
}

func (a *Announcer) announce(i int, messages []Message) {
	if len(messages) == 0 {
		return
	}
	m := messages[i%len(messages)]
	frame := a.frames[i%len(a.frames)]
	a.write(fmt.Sprintf("%s %s %s",
		frameStyle.Render(frame),
		messageStyle.Render(`"`+m.Text+`"`),
		authorStyle.Render("- "+m.Author)))
}

func (a *Announcer) write(line string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	fmt.Fprintln(a.out, line) //nolint:errcheck // progress output is best-effort
}
