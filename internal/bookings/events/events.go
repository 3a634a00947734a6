// Package events publishes booking lifecycle events after the store commits.
package events

import (
	"context"
	"time"

	"condobook/pkg/model"

	"github.com/google/uuid"
)

type Type string

const (
	TypeBookingCreated   Type = "booking.created"
	TypeBookingApproved  Type = "booking.approved"
	TypeBookingCancelled Type = "booking.cancelled"
	TypeBookingUpdated   Type = "booking.updated"
	TypeBookingCompleted Type = "booking.completed"
)

const (
	SchemaVersion = "1"
	Source        = "condobook.bookings"
)

type Event struct {
	ID         string         `json:"id"`
	Type       Type           `json:"type"`
	OccurredAt time.Time      `json:"occurred_at"`
	ActorID    string         `json:"actor_id,omitempty"`
	Booking    *model.Booking `json:"booking"`
}

func New(t Type, booking *model.Booking, actorID string, at time.Time) Event {
	return Event{
		ID:         uuid.NewString(),
		Type:       t,
		OccurredAt: at.UTC(),
		ActorID:    actorID,
		Booking:    booking,
	}
}

// Key is the partition key; events of one booking stay ordered.
func (e Event) Key() string {
	if e.Booking == nil {
		return e.ID
	}
	return e.Booking.ID
}

type Publisher interface {
	Publish(ctx context.Context, event Event) error
	Close() error
}
