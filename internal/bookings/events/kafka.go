package events

import (
	"context"
	"fmt"

	"condobook/pkg/kafka"
	"condobook/pkg/middleware"
)

const HeaderActorID = "actor-id"

type kafkaProducer interface {
	Publish(ctx context.Context, msg kafka.Message) error
	Close() error
}

type KafkaPublisher struct {
	producer kafkaProducer
}

func NewKafkaPublisher(producer kafkaProducer) *KafkaPublisher {
	return &KafkaPublisher{producer: producer}
}

func (p *KafkaPublisher) Publish(ctx context.Context, event Event) error {
	builder := kafka.NewMessage().
		WithKey(event.Key()).
		WithValue(event).
		WithEventID(event.ID).
		WithEventType(string(event.Type)).
		WithSchemaVersion(SchemaVersion).
		WithSource(Source).
		WithTimestamp(event.OccurredAt)
	if requestID := middleware.RequestIDFromContext(ctx); requestID != "" {
		builder = builder.WithCorrelationID(requestID)
	}
	if event.ActorID != "" {
		builder = builder.WithHeader(HeaderActorID, event.ActorID)
	}

	msg, err := builder.Build()
	if err != nil {
		return fmt.Errorf("build %s message: %w", event.Type, err)
	}
	return p.producer.Publish(ctx, msg)
}

func (p *KafkaPublisher) Close() error {
	return p.producer.Close()
}
