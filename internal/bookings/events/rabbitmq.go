package events

import "context"

type amqpPublisher interface {
	PublishJSON(ctx context.Context, routingKey, messageID string, v any) error
	Close() error
}

// RabbitPublisher routes each event on its type, e.g. "booking.created".
type RabbitPublisher struct {
	publisher amqpPublisher
}

func NewRabbitPublisher(publisher amqpPublisher) *RabbitPublisher {
	return &RabbitPublisher{publisher: publisher}
}

func (p *RabbitPublisher) Publish(ctx context.Context, event Event) error {
	return p.publisher.PublishJSON(ctx, string(event.Type), event.ID, event)
}

func (p *RabbitPublisher) Close() error {
	return p.publisher.Close()
}
