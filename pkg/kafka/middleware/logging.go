package kafkamiddleware

import (
	"context"
	"time"

	"condobook/pkg/kafka"
	"condobook/pkg/logger"
)

// Logging logs every publish with its outcome and duration.
func Logging(log *logger.Logger) kafka.ProducerMiddleware {
	return func(ctx context.Context, msg kafka.Message, next func(ctx context.Context, msg kafka.Message) error) error {
		start := time.Now()

		err := next(ctx, msg)

		fields := []any{
			"topic", msg.Topic,
			"key", msg.Key,
			"event_id", msg.GetEventID(),
			"event_type", msg.GetEventType(),
			"duration_ms", time.Since(start).Milliseconds(),
		}
		if err != nil {
			log.Warn("Failed to publish kafka message", append(fields, "error", err)...)
			return err
		}
		log.Debug("Published kafka message", fields...)
		return nil
	}
}
