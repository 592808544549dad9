// Package events publishes entity lifecycle notifications after a write has
// been committed. Delivery is best effort: a failed publish never fails the
// request that caused it.
package events

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

type Verb string

const (
	Created Verb = "created"
	Updated Verb = "updated"
	Deleted Verb = "deleted"
)

// Event is one committed change. Type is "<resource>.<verb>", e.g. "task.updated",
// and doubles as the routing key.
type Event struct {
	Type       string     `json:"type"`
	Resource   string     `json:"resource"`
	ResourceID uuid.UUID  `json:"resource_id"`
	ActorID    *uuid.UUID `json:"actor_id,omitempty"`
	OccurredAt time.Time  `json:"occurred_at"`
}

// New builds an event stamped with the current time. A nil actor id means
// the change was made anonymously, as with self-registration.
func New(resource string, verb Verb, id uuid.UUID, actorID uuid.UUID) Event {
	e := Event{
		Type:       resource + "." + string(verb),
		Resource:   resource,
		ResourceID: id,
		OccurredAt: time.Now().UTC(),
	}
	if actorID != uuid.Nil {
		e.ActorID = &actorID
	}
	return e
}

// Publisher delivers events to subscribers.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// Emit publishes event and logs instead of returning a failure.
func Emit(ctx context.Context, p Publisher, event Event) {
	if p == nil {
		return
	}
	if err := p.Publish(ctx, event); err != nil {
		slog.WarnContext(ctx, "failed to publish event", "type", event.Type, "id", event.ResourceID, "error", err)
	}
}

// Noop discards every event.
type Noop struct{}

func (Noop) Publish(context.Context, Event) error { return nil }

// Recorder keeps published events in memory.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *Recorder) Publish(_ context.Context, event Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	return nil
}

// Types returns the type of every recorded event in publish order.
func (r *Recorder) Types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	types := make([]string, len(r.events))
	for i, e := range r.events {
		types[i] = e.Type
	}
	return types
}

// Events returns a copy of the recorded events.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}
