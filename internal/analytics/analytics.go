// Package analytics records anonymous usage events: searches (debounced per
// client) and import clicks.
package analytics

import (
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"awesomearcade/internal/debounce"
	"awesomearcade/internal/metrics"
)

// Event names.
const (
	EventSearch       = "search"
	EventAwesomeClick = "awesome_click"
)

// DefaultSearchDelay is the quiet period before a search is reported.
const DefaultSearchDelay = time.Second

// Event is one analytics event.
type Event struct {
	ID     uuid.UUID
	Name   string
	Params map[string]string
	At     time.Time
}

// Sink receives events.
type Sink func(Event)

// LogSink writes events to the structured log and updates metrics.
func LogSink(e Event) {
	switch e.Name {
	case EventSearch:
		metrics.RecordSearch()
	case EventAwesomeClick:
		metrics.RecordClick()
	}
	slog.Info("analytics event", "id", e.ID, "event", e.Name, "params", e.Params)
}

// Tracker turns user actions into events.
type Tracker struct {
	sink     Sink
	delay    time.Duration
	debounce *debounce.Debouncer
	now      func() time.Time
}

// NewTracker creates a tracker. A nil sink uses LogSink and a non-positive
// delay uses DefaultSearchDelay.
func NewTracker(sink Sink, delay time.Duration) *Tracker {
	if sink == nil {
		sink = LogSink
	}
	if delay <= 0 {
		delay = DefaultSearchDelay
	}
	return &Tracker{
		sink:     sink,
		delay:    delay,
		debounce: debounce.New(),
		now:      time.Now,
	}
}

// Search reports a search once client has stopped typing for the delay.
// Only the last query of a burst is reported. Blank queries are skipped.
func (t *Tracker) Search(client, query string) {
	t.debounce.Do("searchChange:"+client, t.delay, func() {
		q := strings.TrimSpace(query)
		if q == "" {
			return
		}
		t.emit(EventSearch, map[string]string{"search_term": q})
	})
}

// Click reports an import click on repo.
func (t *Tracker) Click(repo string) {
	t.emit(EventAwesomeClick, map[string]string{"repo": repo})
}

// Close drops pending debounced events.
func (t *Tracker) Close() {
	t.debounce.Stop()
}

func (t *Tracker) emit(name string, params map[string]string) {
	t.sink(Event{
		ID:     uuid.New(),
		Name:   name,
		Params: params,
		At:     t.now(),
	})
}
