package analytics

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/oggyb/muzz-discovery/internal/logger"
)

type recordingSink struct {
	mu     sync.Mutex
	events []Event
	err    error
	panic  bool
}

func (s *recordingSink) Send(_ context.Context, e Event) error {
	if s.panic {
		panic("sink exploded")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, e)
	return s.err
}

func TestTracker_Delivers(t *testing.T) {
	sink := &recordingSink{}
	tr := NewTracker(sink, logger.Discard())

	tr.Track(Event{Name: "like", UserID: "a"})
	tr.Track(Event{Name: "match_confirmed", UserID: "a"})
	tr.Wait()

	assert.Len(t, sink.events, 2)
}

func TestTracker_SwallowsFailures(t *testing.T) {
	tr := NewTracker(&recordingSink{err: errors.New("provider down")}, logger.Discard())
	tr.Track(Event{Name: "like"})
	tr.Wait()

	tr = NewTracker(&recordingSink{panic: true}, logger.Discard())
	assert.NotPanics(t, func() {
		tr.Track(Event{Name: "like"})
		tr.Wait()
	})
}

func TestTracker_NilIsNoop(t *testing.T) {
	var tr *Tracker
	assert.NotPanics(t, func() {
		tr.Track(Event{Name: "view"})
		tr.Wait()
	})
}
