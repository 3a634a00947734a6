package events

import (
	"context"

	"condobook/pkg/logger"
)

// LogPublisher records events in the service log when no broker is configured.
type LogPublisher struct {
	log *logger.Logger
}

func NewLogPublisher(log *logger.Logger) *LogPublisher {
	return &LogPublisher{log: log}
}

func (p *LogPublisher) Publish(_ context.Context, event Event) error {
	fields := []any{"event_id", event.ID, "event_type", string(event.Type), "actor_id", event.ActorID}
	if event.Booking != nil {
		fields = append(fields, "booking_id", event.Booking.ID, "booking_number", event.Booking.BookingNumber, "status", string(event.Booking.Status))
	}
	p.log.Info("Booking event", fields...)
	return nil
}

func (p *LogPublisher) Close() error {
	return nil
}
