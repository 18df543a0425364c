// Package app wires configuration into the catalog stack shared by the server and the CLI.
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/foodlens/catalog/config"
	"github.com/foodlens/catalog/internal/domain"
	"github.com/foodlens/catalog/internal/infrastructure/cache"
	"github.com/foodlens/catalog/internal/infrastructure/openfoodfacts"
	"github.com/foodlens/catalog/internal/usecase"
	"go.uber.org/zap"
)

const (
	cacheKeyPrefix       = "foodcatalog:"
	cacheCleanupInterval = 10 * time.Minute
	searchCacheTTL       = 10 * time.Minute
)

// Catalog is the cached Open Food Facts client together with its cache backend
type Catalog struct {
	*usecase.CachedCatalog
	closer func() error
}

// Close releases the cache backend
func (c *Catalog) Close() error {
	return c.closer()
}

// NewCatalog builds the upstream client and wraps it in the configured cache
func NewCatalog(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Catalog, error) {
	client := openfoodfacts.NewClient(openfoodfacts.Config{
		BaseURL:           cfg.OpenFoodFacts.BaseURL,
		UserAgent:         cfg.OpenFoodFacts.UserAgent,
		Timeout:           cfg.OpenFoodFacts.Timeout,
		PageSize:          cfg.OpenFoodFacts.PageSize,
		RequestsPerMinute: cfg.OpenFoodFacts.RequestsPerMinute,
	}, logger)

	var (
		repo   domain.CacheRepository
		closer func() error
	)
	switch cfg.Cache.Type {
	case "redis":
		rc, err := cache.NewRedisCache(ctx, cfg.Cache.RedisURL, cacheKeyPrefix)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		repo, closer = rc, rc.Close
	default:
		mc := cache.NewMemoryCache(cacheCleanupInterval)
		repo, closer = mc, mc.Close
	}
	logger.Info("catalog configured",
		zap.String("base_url", cfg.OpenFoodFacts.BaseURL),
		zap.Int("page_size", client.PageSize()),
		zap.String("cache", cfg.Cache.Type),
		zap.Duration("cache_ttl", cfg.Cache.TTL),
	)

	searchTTL := searchCacheTTL
	if cfg.Cache.TTL > 0 && cfg.Cache.TTL < searchTTL {
		searchTTL = cfg.Cache.TTL
	}

	cached := usecase.NewCachedCatalog(repo, client, usecase.CachedCatalogConfig{
		ProductTTL:    cfg.Cache.TTL,
		SearchTTL:     searchTTL,
		CategoriesTTL: cfg.Cache.TTL,
	}, logger)

	return &Catalog{CachedCatalog: cached, closer: closer}, nil
}
