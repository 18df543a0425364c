package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/foodlens/catalog/internal/domain"
	"go.uber.org/zap"
)

// Package-level compiled regex patterns for cache key normalization
var (
	nonAlphanumericRegex = regexp.MustCompile(`[^\p{L}\p{N}\s:-]`)
	multipleSpacesRegex  = regexp.MustCompile(`\s+`)
)

// CachedCatalogConfig holds the TTLs of the cached catalog
type CachedCatalogConfig struct {
	ProductTTL    time.Duration
	SearchTTL     time.Duration
	CategoriesTTL time.Duration
}

// CachedCatalog decorates a CatalogClient with a read-through cache.
// Flow: check cache -> call upstream -> cache -> return.
// Cache failures are logged and never fail a request; misses are not cached.
type CachedCatalog struct {
	cache  domain.CacheRepository
	client domain.CatalogClient
	config CachedCatalogConfig
	logger *zap.Logger
}

var _ domain.CatalogClient = (*CachedCatalog)(nil)

// NewCachedCatalog creates a caching catalog client
func NewCachedCatalog(cache domain.CacheRepository, client domain.CatalogClient, config CachedCatalogConfig, logger *zap.Logger) *CachedCatalog {
	if config.ProductTTL <= 0 {
		config.ProductTTL = 24 * time.Hour
	}
	if config.SearchTTL <= 0 {
		config.SearchTTL = 10 * time.Minute
	}
	if config.CategoriesTTL <= 0 {
		config.CategoriesTTL = 24 * time.Hour
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &CachedCatalog{
		cache:  cache,
		client: client,
		config: config,
		logger: logger.Named("cache"),
	}
}

// SearchByTerm returns a cached page or fetches it upstream. Empty pages are not cached.
func (c *CachedCatalog) SearchByTerm(ctx context.Context, term string, page int) (*domain.ProductPage, error) {
	key := fmt.Sprintf("search:%s:%d", normalizeForCacheKey(term), page)

	var cached domain.ProductPage
	if c.load(ctx, key, &cached) {
		return &cached, nil
	}

	result, err := c.client.SearchByTerm(ctx, term, page)
	if err != nil {
		return nil, err
	}

	if len(result.Products) > 0 {
		c.store(ctx, key, result, c.config.SearchTTL)
	}
	return result, nil
}

// GetByBarcode returns a cached product or fetches it upstream
func (c *CachedCatalog) GetByBarcode(ctx context.Context, code string) (*domain.Product, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, domain.ErrEmptyInput
	}
	key := "product:" + normalizeForCacheKey(code)

	var cached domain.Product
	if c.load(ctx, key, &cached) {
		return &cached, nil
	}

	product, err := c.client.GetByBarcode(ctx, code)
	if err != nil {
		return nil, err
	}

	c.store(ctx, key, product, c.config.ProductTTL)
	return product, nil
}

// SearchByCategory returns a cached category page or fetches it upstream. Empty pages are not cached.
func (c *CachedCatalog) SearchByCategory(ctx context.Context, categoryID string, page int) (*domain.ProductPage, error) {
	category := NormalizeCategory(categoryID)
	if category == "" {
		return nil, domain.ErrEmptyInput
	}
	key := fmt.Sprintf("category:%s:%d", normalizeForCacheKey(category), page)

	var cached domain.ProductPage
	if c.load(ctx, key, &cached) {
		return &cached, nil
	}

	result, err := c.client.SearchByCategory(ctx, categoryID, page)
	if err != nil {
		return nil, err
	}

	if len(result.Products) > 0 {
		c.store(ctx, key, result, c.config.SearchTTL)
	}
	return result, nil
}

// ListCategories returns the cached taxonomy or fetches it upstream
func (c *CachedCatalog) ListCategories(ctx context.Context) ([]domain.Category, error) {
	const key = "categories"

	var cached []domain.Category
	if c.load(ctx, key, &cached) {
		return cached, nil
	}

	categories, err := c.client.ListCategories(ctx)
	if err != nil {
		return nil, err
	}

	if len(categories) > 0 {
		c.store(ctx, key, categories, c.config.CategoriesTTL)
	}
	return categories, nil
}

// load decodes the cached payload under key into out. It reports false on any miss.
func (c *CachedCatalog) load(ctx context.Context, key string, out interface{}) bool {
	payload, err := c.cache.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, domain.ErrCacheMiss) {
			c.logger.Warn("cache read failed", zap.String("key", key), zap.Error(err))
		}
		return false
	}

	if err := json.Unmarshal(payload, out); err != nil {
		c.logger.Warn("dropping undecodable cache entry", zap.String("key", key), zap.Error(err))
		_ = c.cache.Delete(ctx, key)
		return false
	}

	c.logger.Debug("cache hit", zap.String("key", key))
	return true
}

// store encodes value under key. Failures are logged but never returned.
func (c *CachedCatalog) store(ctx context.Context, key string, value interface{}, ttl time.Duration) {
	payload, err := json.Marshal(value)
	if err != nil {
		c.logger.Warn("cache encode failed", zap.String("key", key), zap.Error(err))
		return
	}
	if err := c.cache.Set(ctx, key, payload, ttl); err != nil {
		c.logger.Warn("cache write failed", zap.String("key", key), zap.Error(err))
	}
}

// normalizeForCacheKey normalizes a string for use as cache key component.
// Converts to lowercase, removes special characters, and trims whitespace.
func normalizeForCacheKey(s string) string {
	if s == "" {
		return ""
	}
	result := strings.ToLower(s)
	result = nonAlphanumericRegex.ReplaceAllString(result, "")
	result = multipleSpacesRegex.ReplaceAllString(result, " ")
	return strings.TrimSpace(result)
}
