package repository

import (
	"context"
	"fmt"

	"stock-ledger/internal/config"
	"stock-ledger/internal/database"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Open builds the DocumentStore selected by cfg.Storage.Driver
func Open(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*DocumentStore, error) {
	backend, err := openBackend(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	logger.Info("Document storage ready", zap.String("driver", cfg.Storage.Driver))
	return NewDocumentStore(backend, logger), nil
}

func openBackend(ctx context.Context, cfg *config.Config, logger *zap.Logger) (Backend, error) {
	switch cfg.Storage.Driver {
	case config.StorageJSON, "":
		return NewFileBackend(cfg.Storage.DataDir)

	case config.StorageBolt:
		return NewBoltBackend(cfg.Storage.BoltPath)

	case config.StoragePostgres:
		db, err := database.Open(ctx, database.DSN(cfg.Database))
		if err != nil {
			return nil, err
		}
		logger.Info("Database health check", zap.Any("health", database.Health(ctx, db)))
		if err := database.RunMigrations(db, logger); err != nil {
			db.Close()
			return nil, err
		}
		return NewPostgresBackend(db), nil

	case config.StorageRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     fmt.Sprintf("%s:%s", cfg.Redis.Host, cfg.Redis.Port),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			client.Close()
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		return NewRedisBackend(client, cfg.Redis.KeyPrefix), nil

	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}
}
