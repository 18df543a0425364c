package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/foodlens/catalog/internal/domain"
	"go.uber.org/zap"
)

// ProductService serves single-product lookups and raw search pages
type ProductService struct {
	catalog domain.CatalogClient
	logger  *zap.Logger
}

// NewProductService creates a new product service
func NewProductService(catalog domain.CatalogClient, logger *zap.Logger) *ProductService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProductService{
		catalog: catalog,
		logger:  logger.Named("products"),
	}
}

// GetProduct looks up a product by barcode and derives its nutrition breakdown
func (s *ProductService) GetProduct(ctx context.Context, code string) (*domain.ProductDetail, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, domain.ErrEmptyInput
	}

	product, err := s.catalog.GetByBarcode(ctx, code)
	if err != nil {
		s.logger.Debug("product lookup failed", zap.String("code", code), zap.Error(err))
		return nil, err
	}

	return &domain.ProductDetail{
		Product:      *product,
		Facts:        BuildNutritionFacts(product.Nutriments),
		Distribution: MacroDistribution(product.Nutriments),
		Labels:       SplitLabels(product.Labels),
	}, nil
}

// Search fetches a single page of results for term without accumulating
func (s *ProductService) Search(ctx context.Context, term string, page int) (*domain.ProductPage, error) {
	if page < 1 {
		return nil, fmt.Errorf("%w: page must be positive", domain.ErrInvalidRequest)
	}
	return s.catalog.SearchByTerm(ctx, strings.TrimSpace(term), page)
}
