// Package events carries domain events out of the services. Publishing is
// fire-and-forget from the caller's point of view: failures are logged and
// never fail the write that produced the event.
package events

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Type names a domain event.
type Type string

const (
	NodeCreated       Type = "node.created"
	NodeUpdated       Type = "node.updated"
	NodeDeleted       Type = "node.deleted"
	EdgeCreated       Type = "edge.created"
	EdgeDeleted       Type = "edge.deleted"
	FlashcardCreated  Type = "flashcard.created"
	FlashcardReviewed Type = "flashcard.reviewed"
	SnippetExecuted   Type = "snippet.executed"
	WorkspaceImported Type = "workspace.imported"
)

// Source identifies this service as the event producer.
const Source = "conceptforge.api"

// Event is the envelope sent to every publisher.
type Event struct {
	ID          string                 `json:"id"`
	Type        Type                   `json:"type"`
	OwnerID     string                 `json:"ownerId"`
	AggregateID string                 `json:"aggregateId"`
	Timestamp   time.Time              `json:"timestamp"`
	Data        map[string]interface{} `json:"data,omitempty"`
}

// New builds an event stamped with a fresh id.
func New(t Type, ownerID, aggregateID string, at time.Time, data map[string]interface{}) Event {
	return Event{
		ID:          uuid.NewString(),
		Type:        t,
		OwnerID:     ownerID,
		AggregateID: aggregateID,
		Timestamp:   at,
		Data:        data,
	}
}

// Publisher delivers events to a sink.
type Publisher interface {
	Publish(ctx context.Context, events ...Event) error
	Close() error
}

// Emit publishes evts and logs, rather than returns, any failure.
func Emit(ctx context.Context, pub Publisher, logger *zap.Logger, evts ...Event) {
	if pub == nil || len(evts) == 0 {
		return
	}
	if err := pub.Publish(ctx, evts...); err != nil {
		types := make([]string, 0, len(evts))
		for _, e := range evts {
			types = append(types, string(e.Type))
		}
		logger.Warn("failed to publish events", zap.Strings("types", types), zap.Error(err))
	}
}

// LogPublisher writes events to the logger. It is the default sink in
// development.
type LogPublisher struct {
	logger *zap.Logger
}

func NewLogPublisher(logger *zap.Logger) *LogPublisher {
	return &LogPublisher{logger: logger}
}

func (p *LogPublisher) Publish(ctx context.Context, events ...Event) error {
	for _, e := range events {
		p.logger.Info("domain event",
			zap.String("event_id", e.ID),
			zap.String("type", string(e.Type)),
			zap.String("owner_id", e.OwnerID),
			zap.String("aggregate_id", e.AggregateID),
			zap.Time("timestamp", e.Timestamp),
		)
	}
	return nil
}

func (p *LogPublisher) Close() error { return nil }

// Recorder keeps published events in memory.
type Recorder struct {
	mu     sync.Mutex
	events []Event
	err    error
}

func NewRecorder() *Recorder {
	return &Recorder{}
}

// FailWith makes every following Publish return err.
func (r *Recorder) FailWith(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.err = err
}

func (r *Recorder) Publish(ctx context.Context, events ...Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.events = append(r.events, events...)
	return nil
}

func (r *Recorder) Close() error { return nil }

// Events returns a copy of everything published so far.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}

// Types returns the type of every published event in order.
func (r *Recorder) Types() []Type {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Type, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.Type)
	}
	return out
}
