package event

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
)

// Routing keys of the events the service emits.
const (
	BookingCreated     = "booking.created"
	BookingRescheduled = "booking.rescheduled"
	BookingDeleted     = "booking.deleted"
	PropertyDeleted    = "property.deleted"
)

// Event is a domain fact published after the write that produced it has committed.
type Event struct {
	Type       string    `json:"type"`
	OccurredAt time.Time `json:"occurred_at"`
	Payload    any       `json:"payload"`
}

func New(eventType string, payload any) Event {
	return Event{Type: eventType, OccurredAt: time.Now().UTC(), Payload: payload}
}

// Publisher delivers events to downstream consumers.
type Publisher interface {
	Publish(ctx context.Context, e Event) error
}

// LogPublisher only logs events. It is used when no broker is configured.
type LogPublisher struct {
	log logrus.FieldLogger
}

func NewLogPublisher(log logrus.FieldLogger) *LogPublisher {
	return &LogPublisher{log: log}
}

func (p *LogPublisher) Publish(_ context.Context, e Event) error {
	p.log.WithFields(logrus.Fields{"event": e.Type, "payload": e.Payload}).Info("event published")
	return nil
}

// Emit publishes e and logs a failure instead of returning it.
// Callers have already committed the change the event describes.
func Emit(ctx context.Context, p Publisher, log logrus.FieldLogger, e Event) {
	if p == nil {
		return
	}
	if err := p.Publish(ctx, e); err != nil {
		log.WithError(err).WithField("event", e.Type).Error("failed to publish event")
	}
}
