package health

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/hellofresh/health-go/v5"
	"github.com/redis/go-redis/v9"
)

const (
	componentName    = "ecommerce-backend"
	componentVersion = "1.0.0"

	checkTimeout = 2 * time.Second
)

// NewHealthHandler pings the pools the server already holds rather than
// dialing fresh connections. Redis backs the login limiter and the catalog
// cache, so neither check may be skipped.
func NewHealthHandler(db *sql.DB, rdb *redis.Client) (*health.Health, error) {
	h, err := health.New(
		health.WithComponent(health.Component{Name: componentName, Version: componentVersion}),
		health.WithSystemInfo(),
		health.WithChecks(
			health.Config{Name: "database", Timeout: checkTimeout, Check: pingDatabase(db)},
			health.Config{Name: "redis", Timeout: checkTimeout, Check: pingRedis(rdb)},
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create health instance: %w", err)
	}

	return h, nil
}

func pingDatabase(db *sql.DB) health.CheckFunc {
	return func(ctx context.Context) error {
		if err := db.PingContext(ctx); err != nil {
			return fmt.Errorf("postgres ping: %w", err)
		}

		return nil
	}
}

func pingRedis(rdb *redis.Client) health.CheckFunc {
	return func(ctx context.Context) error {
		if err := rdb.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("redis ping: %w", err)
		}

		return nil
	}
}
