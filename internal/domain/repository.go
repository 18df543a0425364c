package domain

import (
	"context"
	"time"
)

// CacheRepository defines the interface for caching operations.
// Values are opaque encoded payloads; Get returns ErrCacheMiss for absent or expired keys.
type CacheRepository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
}

// CatalogClient defines the interface for interacting with the Open Food Facts API
type CatalogClient interface {
	SearchByTerm(ctx context.Context, term string, page int) (*ProductPage, error)
	GetByBarcode(ctx context.Context, code string) (*Product, error)
	SearchByCategory(ctx context.Context, categoryID string, page int) (*ProductPage, error)
	ListCategories(ctx context.Context) ([]Category, error)
}
