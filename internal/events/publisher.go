// Package events publishes record lifecycle notifications. Delivery is
// best effort: callers log a failed publish and carry on.
package events

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Mehdichaaki/dashbord/internal/config"

	"github.com/google/uuid"
)

type Type string

const (
	UserRegistered     Type = "user.registered"
	UserUpdated        Type = "user.updated"
	UserDeleted        Type = "user.deleted"
	GradeEntryRecorded Type = "gradeentry.recorded"
)

type Event struct {
	Type       Type       `json:"type"`
	UserID     uuid.UUID  `json:"userId"`
	EntryID    *uuid.UUID `json:"entryId,omitempty"`
	OccurredAt time.Time  `json:"occurredAt"`
}

func NewUserEvent(t Type, userID uuid.UUID) Event {
	return Event{Type: t, UserID: userID, OccurredAt: time.Now().UTC()}
}

func NewEntryEvent(userID, entryID uuid.UUID) Event {
	return Event{Type: GradeEntryRecorded, UserID: userID, EntryID: &entryID, OccurredAt: time.Now().UTC()}
}

type Publisher interface {
	Publish(ctx context.Context, event Event) error
	Close() error
}

// Nop drops every event. Used when events.driver is "none".
type Nop struct{}

func (Nop) Publish(context.Context, Event) error { return nil }
func (Nop) Close() error                         { return nil }

// New builds the publisher selected by cfg.Driver.
func New(cfg config.EventsConfig, logger *slog.Logger) (Publisher, error) {
	switch cfg.Driver {
	case "", "none":
		logger.Info("record events disabled")
		return Nop{}, nil
	case "nats":
		return NewNATSPublisher(cfg.NATS.URL, cfg.NATS.Subject, logger)
	case "kafka":
		return NewKafkaPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic, logger)
	default:
		return nil, fmt.Errorf("unknown events driver %q", cfg.Driver)
	}
}
