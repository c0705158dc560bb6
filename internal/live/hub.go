// Package live pushes gradebook change notifications to connected clients.
package live

import (
	"log/slog"
	"sync"
)

// Event tells subscribers that a course changed and roughly what moved, so
// a client can decide between refreshing the whole sheet or just a cell.
type Event struct {
	CourseID string `json:"courseId"`
	Change   string `json:"change"` // "sheet", "roster", "grades", "scheme", "deleted"
}

const (
	ChangeSheet   = "sheet"
	ChangeRoster  = "roster"
	ChangeGrades  = "grades"
	ChangeScheme  = "scheme"
	ChangeDeleted = "deleted"
)

type subscriber struct {
	courseID string
	ch       chan Event
}

// Hub fans course events out to subscribers. Slow clients lose events
// rather than block the publisher; a dropped event at worst costs a client
// one refresh, since every event is a refresh hint and not state.
type Hub struct {
	mu   sync.RWMutex
	subs map[*subscriber]struct{}
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{subs: make(map[*subscriber]struct{})}
}

// Subscribe registers interest in one course. The returned cancel func must
// be called when the client goes away; after cancel the channel is closed.
func (h *Hub) Subscribe(courseID string) (<-chan Event, func()) {
	sub := &subscriber{courseID: courseID, ch: make(chan Event, 16)}

	h.mu.Lock()
	h.subs[sub] = struct{}{}
	h.mu.Unlock()

	cancel := func() {
		h.mu.Lock()
		if _, ok := h.subs[sub]; ok {
			delete(h.subs, sub)
			close(sub.ch)
		}
		h.mu.Unlock()
	}
	return sub.ch, cancel
}

// Broadcast delivers an event to every subscriber of its course.
func (h *Hub) Broadcast(ev Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for sub := range h.subs {
		if sub.courseID != ev.CourseID {
			continue
		}
		select {
		case sub.ch <- ev:
		default:
			slog.Debug("dropping event for slow subscriber", "course", ev.CourseID, "change", ev.Change)
		}
	}
}

// SubscriberCount returns how many clients follow the given course.
func (h *Hub) SubscriberCount(courseID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	n := 0
	for sub := range h.subs {
		if sub.courseID == courseID {
			n++
		}
	}
	return n
}
