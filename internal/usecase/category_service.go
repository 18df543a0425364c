package usecase

import (
	"context"
	"strings"

	"github.com/foodlens/catalog/internal/domain"
	"github.com/lithammer/fuzzysearch/fuzzy"
	"go.uber.org/zap"
)

// DefaultCategoryLimit is the number of categories offered for selection
const DefaultCategoryLimit = 20

// CategoryService lists the upstream category taxonomy
type CategoryService struct {
	catalog domain.CatalogClient
	limit   int
	logger  *zap.Logger
}

// NewCategoryService creates a category service returning at most limit entries by default
func NewCategoryService(catalog domain.CatalogClient, limit int, logger *zap.Logger) *CategoryService {
	if limit <= 0 {
		limit = DefaultCategoryLimit
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CategoryService{
		catalog: catalog,
		limit:   limit,
		logger:  logger.Named("categories"),
	}
}

// ListCategories returns the first limit categories; a non-positive limit uses the default
func (s *CategoryService) ListCategories(ctx context.Context, limit int) ([]domain.Category, error) {
	if limit <= 0 {
		limit = s.limit
	}

	categories, err := s.catalog.ListCategories(ctx)
	if err != nil {
		s.logger.Warn("listing categories failed", zap.Error(err))
		return nil, err
	}

	if len(categories) > limit {
		categories = categories[:limit]
	}
	for i := range categories {
		categories[i].Name = CategoryDisplayName(categories[i])
	}
	return categories, nil
}

// Products returns one page of the upstream listing of a category
func (s *CategoryService) Products(ctx context.Context, categoryID string, page int) (*domain.ProductPage, error) {
	if NormalizeCategory(categoryID) == "" {
		return nil, domain.ErrEmptyInput
	}
	if page < 1 {
		page = 1
	}

	result, err := s.catalog.SearchByCategory(ctx, categoryID, page)
	if err != nil {
		s.logger.Warn("category listing failed", zap.String("category", categoryID), zap.Int("page", page), zap.Error(err))
		return nil, err
	}
	return result, nil
}

// Resolve matches query against the full upstream taxonomy
func (s *CategoryService) Resolve(ctx context.Context, query string) (domain.Category, bool, error) {
	categories, err := s.catalog.ListCategories(ctx)
	if err != nil {
		return domain.Category{}, false, err
	}

	c, ok := ResolveCategory(query, categories)
	if ok {
		c.Name = CategoryDisplayName(c)
	}
	return c, ok, nil
}

// ResolveCategory finds the category a user most likely meant by query. Exact id
// or name matches win; otherwise the closest fuzzy match on the display name is
// returned. ok is false when nothing matches.
func ResolveCategory(query string, categories []domain.Category) (domain.Category, bool) {
	q := NormalizeCategory(query)
	if q == "" {
		return domain.Category{}, false
	}

	names := make([]string, len(categories))
	for i, c := range categories {
		names[i] = CategoryDisplayName(c)
		if NormalizeCategory(c.ID) == q || strings.EqualFold(names[i], q) {
			return c, true
		}
	}

	ranks := fuzzy.RankFindNormalizedFold(q, names)
	if len(ranks) == 0 {
		return domain.Category{}, false
	}

	best := ranks[0]
	for _, r := range ranks[1:] {
		if r.Distance < best.Distance || (r.Distance == best.Distance && r.OriginalIndex < best.OriginalIndex) {
			best = r
		}
	}
	return categories[best.OriginalIndex], true
}
