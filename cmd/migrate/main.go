package main

import (
	"context"
	"os"
	"time"

	mongoMigration "condobook/internal/migrations/mongo"
	postgresMigration "condobook/internal/migrations/postgres"
	"condobook/pkg/config"
)

const JobName = "migrate"

func main() {
	cfg := config.Load(JobName)
	cfg.SetStore()

	cfg.Log.Info("Starting migration job", "store_driver", cfg.StoreDriver)
	err := migrate(cfg)
	cfg.GracefulShutdown()

	if err != nil {
		cfg.Log.Error("Migration failed", "error", err)
		os.Exit(1)
	}
	cfg.Log.Info("Migration completed successfully")
}

func migrate(cfg *config.Config) error {
	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Second)
	defer cancel()

	if cfg.StoreDriver == config.StoreMongo {
		return mongoMigration.RunMigration(ctx, cfg.Client.Mongo, cfg.MongoDatabaseName, cfg.Log)
	}
	return postgresMigration.RunMigration(ctx, cfg.Client.Gorm, cfg.Log)
}
