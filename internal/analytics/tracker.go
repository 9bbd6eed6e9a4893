package analytics

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// DefaultTimeout bounds a single Send.
const DefaultTimeout = 2 * time.Second

// Event is what gets shipped to the analytics sink.
type Event struct {
	Name       string
	UserID     string
	TargetID   string
	Properties map[string]any
	At         time.Time
}

// Sink delivers events to an external analytics provider.
type Sink interface {
	Send(ctx context.Context, e Event) error
}

// Tracker dispatches events in the background. Failures and panics in the
// sink are logged and never reach the caller.
type Tracker struct {
	sink    Sink
	log     *slog.Logger
	timeout time.Duration
	wg      sync.WaitGroup
}

func NewTracker(sink Sink, log *slog.Logger) *Tracker {
	return &Tracker{sink: sink, log: log, timeout: DefaultTimeout}
}

// Track returns immediately.
func (t *Tracker) Track(e Event) {
	if t == nil || t.sink == nil {
		return
	}
	t.wg.Add(1)
	go func() {
		defer t.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				t.log.Error("analytics sink panicked", "event", e.Name, "panic", fmt.Sprint(r))
			}
		}()

		ctx, cancel := context.WithTimeout(context.Background(), t.timeout)
		defer cancel()
		if err := t.sink.Send(ctx, e); err != nil {
			t.log.Warn("analytics track failed", "event", e.Name, "user", e.UserID, "err", err)
		}
	}()
}

// Wait blocks until in-flight events are delivered. Used on shutdown and in tests.
func (t *Tracker) Wait() {
	if t != nil {
		t.wg.Wait()
	}
}

// LogSink writes events to the structured log. It is the default sink when no
// provider is configured.
type LogSink struct {
	Logger *slog.Logger
}

func (s LogSink) Send(_ context.Context, e Event) error {
	s.Logger.Debug("analytics event", "event", e.Name, "user", e.UserID, "target", e.TargetID, "props", e.Properties)
	return nil
}
