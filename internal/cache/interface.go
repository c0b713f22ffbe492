package cache

import (
	"context"
	"time"
)

type Cache interface {
	// Get decodes the cached value into value and reports whether the key
	// was present.
	Get(ctx context.Context, key string, value any) (bool, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	// DeleteByPrefix drops every key under prefix.
	DeleteByPrefix(ctx context.Context, prefix string) error
	Close() error
}

func Key(prefix string, id string) string {
	return prefix + ":" + id
}

const (
	ProductKeyPrefix  = "product"
	CategoryKeyPrefix = "category"
)
