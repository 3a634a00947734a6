package client

import (
	"context"
	"time"

	"condobook/pkg/db/postgres"
	"condobook/pkg/logger"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"gorm.io/gorm"
)

const disconnectTimeout = 10 * time.Second

// Client holds the store connections of a process. Only the configured store is set.
type Client struct {
	Mongo *mongo.Client
	Gorm  *gorm.DB
}

func NewClient() *Client {
	return &Client{}
}

func (c *Client) SetMongo(log *logger.Logger, mongoURI string, mongoConnTimeout time.Duration) {
	ctx, cancel := context.WithTimeout(context.Background(), mongoConnTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(mongoURI))
	if err != nil {
		log.Fatal("Failed to connect to MongoDB", "error", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		log.Fatal("Failed to ping MongoDB", "error", err)
	}

	log.Info("Successfully connected to MongoDB")
	c.Mongo = client
}

func (c *Client) SetPostgres(log *logger.Logger, dsn string, pool postgres.PoolConfig) {
	gdb, err := postgres.OpenPostgres(dsn, pool)
	if err != nil {
		log.Fatal("Failed to connect to PostgreSQL", "error", err)
	}

	sqlDB, err := gdb.DB()
	if err != nil {
		log.Fatal("Failed to access PostgreSQL pool", "error", err)
	}
	if err := sqlDB.Ping(); err != nil {
		log.Fatal("Failed to ping PostgreSQL", "error", err)
	}

	log.Info("Successfully connected to PostgreSQL")
	c.Gorm = gdb
}

// Ping checks whichever store is connected.
func (c *Client) Ping(ctx context.Context) error {
	if c.Mongo != nil {
		return c.Mongo.Ping(ctx, nil)
	}
	if c.Gorm != nil {
		sqlDB, err := c.Gorm.DB()
		if err != nil {
			return err
		}
		return sqlDB.PingContext(ctx)
	}
	return nil
}

func (c *Client) GracefulShutdown(log *logger.Logger) {
	if c.Mongo != nil {
		ctx, cancel := context.WithTimeout(context.Background(), disconnectTimeout)
		defer cancel()
		if err := c.Mongo.Disconnect(ctx); err != nil {
			log.Error("Failed to disconnect from MongoDB", "error", err)
		}
	}
	if c.Gorm != nil {
		if sqlDB, err := c.Gorm.DB(); err == nil {
			if err := sqlDB.Close(); err != nil {
				log.Error("Failed to close PostgreSQL pool", "error", err)
			}
		}
	}
}
