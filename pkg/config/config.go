package config

import (
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"condobook/pkg/client"
	"condobook/pkg/db/postgres"
	"condobook/pkg/logger"

	"github.com/joho/godotenv"
)

type Config struct {
	StoreDriver string

	MongoURI          string
	MongoDatabaseName string
	MongoConnTimeout  time.Duration

	PostgresDSN             string
	PostgresMaxOpenConns    int
	PostgresMaxIdleConns    int
	PostgresConnMaxLifetime time.Duration

	Port string

	JWTSecret string
	JWTTTL    time.Duration

	FacilityTimezone   string
	Location           *time.Location
	CancellationCutoff time.Duration

	EventsBroker     string
	KafkaTopic       string
	KafkaDLQTopic    string
	RabbitMQURL      string
	RabbitMQExchange string

	RateLimitRequests int
	RateLimitWindow   time.Duration

	RequestTimeout time.Duration
	IdempotencyTTL time.Duration
	MaxRequestSize int

	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration

	Log    *logger.Logger
	Client *client.Client
}

func Load(serviceName string) *Config {
	// a missing .env file is the normal case outside local development
	_ = godotenv.Load()

	cfg := &Config{
		StoreDriver: strings.ToLower(getEnvStr(EnvStoreDriver, DefaultStoreDriver)),

		MongoURI:          getEnvStr(EnvMongoURI, DefaultMongoURI),
		MongoDatabaseName: getEnvStr(EnvMongoDatabaseName, DefaultMongoDatabaseName),
		MongoConnTimeout:  getEnvDuration(EnvMongoConnTimeout, DefaultMongoConnTimeout),

		PostgresDSN:             getEnvStr(EnvPostgresDSN, DefaultPostgresDSN),
		PostgresMaxOpenConns:    getEnvNum(EnvPostgresMaxOpenConns, DefaultPostgresMaxOpenConns),
		PostgresMaxIdleConns:    getEnvNum(EnvPostgresMaxIdleConns, DefaultPostgresMaxIdleConns),
		PostgresConnMaxLifetime: getEnvDuration(EnvPostgresConnMaxLifetime, DefaultPostgresConnMaxLifetime),

		Port: getEnvStr(EnvPort, DefaultPort),

		JWTSecret: getEnvStr(EnvJWTSecret, ""),
		JWTTTL:    getEnvDuration(EnvJWTTTL, DefaultJWTTTL),

		FacilityTimezone:   getEnvStr(EnvFacilityTimezone, DefaultFacilityTimezone),
		CancellationCutoff: getEnvDuration(EnvCancellationCutoff, DefaultCancellationCutoff),

		EventsBroker:     strings.ToLower(getEnvStr(EnvEventsBroker, DefaultEventsBroker)),
		KafkaTopic:       getEnvStr(EnvKafkaTopic, DefaultKafkaTopic),
		KafkaDLQTopic:    getEnvStr(EnvKafkaDLQTopic, DefaultKafkaDLQTopic),
		RabbitMQURL:      getEnvStr(EnvRabbitMQURL, DefaultRabbitMQURL),
		RabbitMQExchange: getEnvStr(EnvRabbitMQExchange, DefaultRabbitMQExchange),

		RateLimitRequests: getEnvNum(EnvRateLimitRequests, DefaultRateLimitRequests),
		RateLimitWindow:   getEnvDuration(EnvRateLimitWindow, DefaultRateLimitWindow),

		RequestTimeout: getEnvDuration(EnvRequestTimeout, DefaultRequestTimeout),
		IdempotencyTTL: getEnvDuration(EnvIdempotencyTTL, DefaultIdempotencyTTL),
		MaxRequestSize: getEnvNum(EnvMaxRequestSize, DefaultMaxRequestSize),

		ReadTimeout:     getEnvDuration(EnvReadTimeout, DefaultReadTimeout),
		WriteTimeout:    getEnvDuration(EnvWriteTimeout, DefaultWriteTimeout),
		IdleTimeout:     getEnvDuration(EnvIdleTimeout, DefaultIdleTimeout),
		ShutdownTimeout: getEnvDuration(EnvShutdownTimeout, DefaultShutdownTimeout),

		Log: logger.New(logger.Config{
			Level:     getEnvStr(EnvLogLevel, DefaultLogLevel),
			Format:    getEnvStr(EnvLogFormat, DefaultLogFormat),
			AddSource: true,
			Service:   serviceName,
		}),
		Client: client.NewClient(),
	}

	if err := cfg.Validate(); err != nil {
		cfg.Log.Fatal(err.Error())
	}
	cfg.LogConfiguration()
	return cfg
}

// SetStore connects the client for the configured store driver.
func (cfg *Config) SetStore() {
	switch cfg.StoreDriver {
	case StoreMongo:
		cfg.SetMongo()
	default:
		cfg.SetPostgres()
	}
}

func (cfg *Config) SetMongo() {
	cfg.Client.SetMongo(cfg.Log, cfg.MongoURI, cfg.MongoConnTimeout)
}

func (cfg *Config) SetPostgres() {
	cfg.Client.SetPostgres(cfg.Log, cfg.PostgresDSN, postgres.PoolConfig{
		MaxOpenConns:    cfg.PostgresMaxOpenConns,
		MaxIdleConns:    cfg.PostgresMaxIdleConns,
		ConnMaxLifetime: cfg.PostgresConnMaxLifetime,
	})
}

func (cfg *Config) Validate() error {
	var errors []string

	if port, err := strconv.Atoi(cfg.Port); err != nil || port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("Port must be between 1 and 65535, got: %s", cfg.Port))
	}

	switch cfg.StoreDriver {
	case StoreMongo:
		if cfg.MongoURI == "" {
			errors = append(errors, "MongoURI cannot be empty")
		} else if len(cfg.MongoURI) < 10 || !regexp.MustCompile(`^mongodb(\+srv)?://`).MatchString(cfg.MongoURI) {
			errors = append(errors, fmt.Sprintf("MongoURI must start with 'mongodb://' or 'mongodb+srv://', got: %s", redactMongoURI(cfg.MongoURI)))
		}
		if cfg.MongoDatabaseName == "" {
			errors = append(errors, "MongoDatabaseName cannot be empty")
		}
		if cfg.MongoConnTimeout <= 0 {
			errors = append(errors, fmt.Sprintf("MongoConnTimeout must be positive, got: %s", cfg.MongoConnTimeout))
		}
	case StorePostgres:
		if cfg.PostgresDSN == "" {
			errors = append(errors, "PostgresDSN cannot be empty")
		}
		if cfg.PostgresMaxOpenConns <= 0 {
			errors = append(errors, fmt.Sprintf("PostgresMaxOpenConns must be positive, got: %d", cfg.PostgresMaxOpenConns))
		}
		if cfg.PostgresMaxIdleConns < 0 || cfg.PostgresMaxIdleConns > cfg.PostgresMaxOpenConns {
			errors = append(errors, fmt.Sprintf("PostgresMaxIdleConns must be between 0 and PostgresMaxOpenConns (%d), got: %d", cfg.PostgresMaxOpenConns, cfg.PostgresMaxIdleConns))
		}
	default:
		errors = append(errors, fmt.Sprintf("StoreDriver must be one of [%s, %s], got: %s", StoreMongo, StorePostgres, cfg.StoreDriver))
	}

	if len(cfg.JWTSecret) < MinJWTSecretLength {
		errors = append(errors, fmt.Sprintf("JWTSecret must be at least %d characters", MinJWTSecretLength))
	}
	if cfg.JWTTTL <= 0 {
		errors = append(errors, fmt.Sprintf("JWTTTL must be positive, got: %s", cfg.JWTTTL))
	}

	loc, err := time.LoadLocation(cfg.FacilityTimezone)
	if err != nil {
		errors = append(errors, fmt.Sprintf("FacilityTimezone must be an IANA time zone, got: %s", cfg.FacilityTimezone))
	} else {
		cfg.Location = loc
	}
	if cfg.CancellationCutoff < 0 {
		errors = append(errors, fmt.Sprintf("CancellationCutoff cannot be negative, got: %s", cfg.CancellationCutoff))
	}

	switch cfg.EventsBroker {
	case BrokerNone:
	case BrokerKafka:
		if cfg.KafkaTopic == "" {
			errors = append(errors, "KafkaTopic cannot be empty when EventsBroker is kafka")
		}
	case BrokerRabbitMQ:
		if !strings.HasPrefix(cfg.RabbitMQURL, "amqp://") && !strings.HasPrefix(cfg.RabbitMQURL, "amqps://") {
			errors = append(errors, "RabbitMQURL must start with 'amqp://' or 'amqps://'")
		}
		if cfg.RabbitMQExchange == "" {
			errors = append(errors, "RabbitMQExchange cannot be empty when EventsBroker is rabbitmq")
		}
	default:
		errors = append(errors, fmt.Sprintf("EventsBroker must be one of [%s, %s, %s], got: %s", BrokerNone, BrokerKafka, BrokerRabbitMQ, cfg.EventsBroker))
	}

	if cfg.RateLimitWindow <= 0 {
		errors = append(errors, fmt.Sprintf("RateLimitWindow must be positive, got: %s", cfg.RateLimitWindow))
	}
	if cfg.RateLimitRequests <= 0 {
		errors = append(errors, fmt.Sprintf("RateLimitRequests must be positive, got: %d", cfg.RateLimitRequests))
	}
	if cfg.RequestTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("RequestTimeout must be positive, got: %s", cfg.RequestTimeout))
	}
	if cfg.IdempotencyTTL <= 0 {
		errors = append(errors, fmt.Sprintf("IdempotencyTTL must be positive, got: %s", cfg.IdempotencyTTL))
	}
	if cfg.MaxRequestSize <= 0 {
		errors = append(errors, fmt.Sprintf("MaxRequestSize must be positive, got: %d", cfg.MaxRequestSize))
	}
	if cfg.ReadTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("ReadTimeout must be positive, got: %s", cfg.ReadTimeout))
	}
	if cfg.WriteTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("WriteTimeout must be positive, got: %s", cfg.WriteTimeout))
	}
	if cfg.IdleTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("IdleTimeout must be positive, got: %s", cfg.IdleTimeout))
	}
	if cfg.ShutdownTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("ShutdownTimeout must be positive, got: %s", cfg.ShutdownTimeout))
	}

	if len(errors) > 0 {
		errMsg := "Configuration validation failed:\n"
		for i, err := range errors {
			errMsg += fmt.Sprintf("  %d. %s\n", i+1, err)
		}
		return fmt.Errorf("%s", errMsg)
	}

	return nil
}

func (cfg *Config) LogConfiguration() {
	cfg.Log.Info("Configuration loaded successfully",
		"store_driver", cfg.StoreDriver,
		"mongo_uri", redactMongoURI(cfg.MongoURI),
		"mongo_database", cfg.MongoDatabaseName,
		"mongo_conn_timeout", cfg.MongoConnTimeout,
		"postgres_dsn", redactPostgresDSN(cfg.PostgresDSN),
		"postgres_max_open_conns", cfg.PostgresMaxOpenConns,
		"postgres_max_idle_conns", cfg.PostgresMaxIdleConns,
		"postgres_conn_max_lifetime", cfg.PostgresConnMaxLifetime,
		"port", cfg.Port,
		"jwt_secret_set", cfg.JWTSecret != "",
		"jwt_ttl", cfg.JWTTTL,
		"facility_timezone", cfg.FacilityTimezone,
		"cancellation_cutoff", cfg.CancellationCutoff,
		"events_broker", cfg.EventsBroker,
		"kafka_topic", cfg.KafkaTopic,
		"rabbitmq_url", redactAMQPURL(cfg.RabbitMQURL),
		"rabbitmq_exchange", cfg.RabbitMQExchange,
		"rate_limit_requests", cfg.RateLimitRequests,
		"rate_limit_window", cfg.RateLimitWindow,
		"request_timeout", cfg.RequestTimeout,
		"idempotency_ttl", cfg.IdempotencyTTL,
		"max_request_size", cfg.MaxRequestSize,
		"read_timeout", cfg.ReadTimeout,
		"write_timeout", cfg.WriteTimeout,
		"idle_timeout", cfg.IdleTimeout,
		"shutdown_timeout", cfg.ShutdownTimeout,
	)
}

func redactMongoURI(uri string) string {
	credentialRegex := regexp.MustCompile(`(mongodb(\+srv)?://)[^:]+:[^@]+@`)
	return credentialRegex.ReplaceAllString(uri, "${1}***:***@")
}

func redactPostgresDSN(dsn string) string {
	passwordRegex := regexp.MustCompile(`password=\S+`)
	dsn = passwordRegex.ReplaceAllString(dsn, "password=***")
	urlRegex := regexp.MustCompile(`(postgres(ql)?://)[^:]+:[^@]+@`)
	return urlRegex.ReplaceAllString(dsn, "${1}***:***@")
}

func redactAMQPURL(uri string) string {
	credentialRegex := regexp.MustCompile(`(amqps?://)[^:]+:[^@]+@`)
	return credentialRegex.ReplaceAllString(uri, "${1}***:***@")
}

func getEnvStr(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvNum(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}

func (cfg *Config) GracefulShutdown() {
	cfg.Client.GracefulShutdown(cfg.Log)
}

func NormalizePaginationLimit(limit int) int {
	if limit <= 0 {
		limit = FallbackPageSize
	} else if limit > DefaultPaginationLimit {
		limit = DefaultPaginationLimit
	}
	return limit
}

func NormalizeOffset(offset int64) int64 {
	return max(0, offset)
}
