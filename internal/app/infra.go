package app

import (
	"context"
	"database/sql"

	_ "github.com/lib/pq"

	"github.com/DELEBINITZ/user-auth-service/internal/config"
	"github.com/DELEBINITZ/user-auth-service/internal/db"
	"github.com/DELEBINITZ/user-auth-service/internal/logger"
	"github.com/DELEBINITZ/user-auth-service/internal/redis"
)

type Infra struct {
	DB    *db.DB
	Redis *redis.Client
}

func setupInfra(ctx context.Context, cfg config.Config) (*Infra, error) {
	sqlDB, err := sql.Open("postgres", cfg.DatabaseDSN)
	if err != nil {
		return nil, err
	}

	if err := sqlDB.PingContext(ctx); err != nil {
		return nil, err
	}

	if err := db.RunBootstrapMigration(ctx, sqlDB); err != nil {
		return nil, err
	}

	logger.Info("database ready", nil)

	infra := &Infra{DB: &db.DB{DB: sqlDB}}

	// Redis is optional: when unset, the refresh-token slot lives on the
	// users table instead.
	if cfg.RedisAddr != "" {
		redisClient, err := redis.New(cfg.RedisAddr, cfg.RedisPassword)
		if err != nil {
			return nil, err
		}
		infra.Redis = redisClient
		logger.Info("redis ready", nil)
	}

	return infra, nil
}
