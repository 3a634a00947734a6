package events

import (
	"fmt"

	"condobook/pkg/config"
	"condobook/pkg/kafka"
	kafkaconfig "condobook/pkg/kafka/config"
	kafkamiddleware "condobook/pkg/kafka/middleware"
	"condobook/pkg/rabbitmq"
)

// NewPublisher connects the broker selected by cfg.EventsBroker.
func NewPublisher(cfg *config.Config) (Publisher, error) {
	switch cfg.EventsBroker {
	case config.BrokerKafka:
		kcfg, err := kafkaconfig.Load()
		if err != nil {
			return nil, fmt.Errorf("kafka config: %w", err)
		}
		producer, err := kafka.NewProducer(kcfg, cfg.KafkaTopic, cfg.KafkaDLQTopic, cfg.Log)
		if err != nil {
			return nil, fmt.Errorf("kafka producer: %w", err)
		}
		producer.Use(kafkamiddleware.Logging(cfg.Log))
		cfg.Log.Info("Publishing booking events to Kafka", "topic", cfg.KafkaTopic)
		return NewKafkaPublisher(producer), nil

	case config.BrokerRabbitMQ:
		publisher, err := rabbitmq.NewPublisher(cfg.RabbitMQURL, cfg.RabbitMQExchange)
		if err != nil {
			return nil, fmt.Errorf("rabbitmq publisher: %w", err)
		}
		cfg.Log.Info("Publishing booking events to RabbitMQ", "exchange", cfg.RabbitMQExchange)
		return NewRabbitPublisher(publisher), nil

	case config.BrokerNone, "":
		return NewLogPublisher(cfg.Log), nil
	}

	return nil, fmt.Errorf("unknown events broker %q", cfg.EventsBroker)
}
