package config

const (
	EnvStoreDriver = "STORE_DRIVER"

	EnvMongoURI          = "MONGO_URI"
	EnvMongoDatabaseName = "MONGO_DATABASE_NAME"
	EnvMongoConnTimeout  = "MONGO_CONN_TIMEOUT"

	EnvPostgresDSN             = "POSTGRES_DSN"
	EnvPostgresMaxOpenConns    = "POSTGRES_MAX_OPEN_CONNS"
	EnvPostgresMaxIdleConns    = "POSTGRES_MAX_IDLE_CONNS"
	EnvPostgresConnMaxLifetime = "POSTGRES_CONN_MAX_LIFETIME"

	EnvPort      = "PORT"
	EnvLogLevel  = "LOG_LEVEL"
	EnvLogFormat = "LOG_FORMAT"

	EnvJWTSecret = "JWT_SECRET"
	EnvJWTTTL    = "JWT_TTL"

	EnvFacilityTimezone   = "FACILITY_TIMEZONE"
	EnvCancellationCutoff = "CANCELLATION_CUTOFF"

	EnvEventsBroker     = "EVENTS_BROKER"
	EnvKafkaTopic       = "KAFKA_BOOKINGS_TOPIC"
	EnvKafkaDLQTopic    = "KAFKA_BOOKINGS_DLQ_TOPIC"
	EnvRabbitMQURL      = "RABBITMQ_URL"
	EnvRabbitMQExchange = "RABBITMQ_EXCHANGE"

	EnvRateLimitRequests = "RATE_LIMIT_REQUESTS"
	EnvRateLimitWindow   = "RATE_LIMIT_WINDOW"

	EnvRequestTimeout = "REQUEST_TIMEOUT"
	EnvIdempotencyTTL = "IDEMPOTENCY_TTL"
	EnvMaxRequestSize = "MAX_REQUEST_SIZE"

	EnvReadTimeout     = "READ_TIMEOUT"
	EnvWriteTimeout    = "WRITE_TIMEOUT"
	EnvIdleTimeout     = "IDLE_TIMEOUT"
	EnvShutdownTimeout = "SHUTDOWN_TIMEOUT"
)
