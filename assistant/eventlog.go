// Bounded event log.
//
// A ring of recent events (state changes, tool runs, errors) for the
// status display and for tests to assert against. Old entries fall off
// the front.

package assistant

import (
	"sync"
	"time"

	"github.com/voxahq/voxa/model"
)

// EventLogCap is the number of events retained.
const EventLogCap = 50

// EventLog is a fixed-capacity, thread-safe log of recent events.
type EventLog struct {
	mu      sync.Mutex
	entries []model.EventEntry
	cap     int
}

// NewEventLog creates an event log with the default capacity.
func NewEventLog() *EventLog {
	return &EventLog{cap: EventLogCap}
}

// Add appends an event, dropping the oldest entry when full.
func (l *EventLog) Add(level, summary string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.entries = append(l.entries, model.EventEntry{
		Time:    time.Now(),
		Level:   level,
		Summary: summary,
	})
	if len(l.entries) > l.cap {
		l.entries = l.entries[len(l.entries)-l.cap:]
	}
}

// Entries returns a copy of the retained events, oldest first.
func (l *EventLog) Entries() []model.EventEntry {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]model.EventEntry, len(l.entries))
	copy(out, l.entries)
	return out
}
