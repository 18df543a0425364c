package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/foodlens/catalog/internal/domain"
)

// MockCatalogClient is a mock implementation of domain.CatalogClient
type MockCatalogClient struct {
	mu sync.Mutex

	searchFunc   func(ctx context.Context, term string, page int) (*domain.ProductPage, error)
	categoryFunc func(ctx context.Context, categoryID string, page int) (*domain.ProductPage, error)
	product      *domain.Product
	productErr   error
	categories   []domain.Category
	categoryErr  error

	searchCalls   []string
	barcodeCalls  int
	categoryCalls int
	listingCalls  []string
}

func NewMockCatalogClient() *MockCatalogClient {
	return &MockCatalogClient{}
}

func (m *MockCatalogClient) SearchByTerm(ctx context.Context, term string, page int) (*domain.ProductPage, error) {
	m.mu.Lock()
	m.searchCalls = append(m.searchCalls, fmt.Sprintf("%s#%d", term, page))
	fn := m.searchFunc
	m.mu.Unlock()

	if fn == nil {
		return &domain.ProductPage{Page: page}, nil
	}
	return fn(ctx, term, page)
}

func (m *MockCatalogClient) GetByBarcode(ctx context.Context, code string) (*domain.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.barcodeCalls++
	if m.productErr != nil {
		return nil, m.productErr
	}
	if m.product == nil {
		return nil, domain.ErrProductNotFound
	}
	p := *m.product
	return &p, nil
}

func (m *MockCatalogClient) SearchByCategory(ctx context.Context, categoryID string, page int) (*domain.ProductPage, error) {
	m.mu.Lock()
	m.listingCalls = append(m.listingCalls, fmt.Sprintf("%s#%d", categoryID, page))
	fn := m.categoryFunc
	m.mu.Unlock()

	if fn == nil {
		return &domain.ProductPage{Page: page}, nil
	}
	return fn(ctx, categoryID, page)
}

func (m *MockCatalogClient) ListingCalls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.listingCalls...)
}

func (m *MockCatalogClient) ListCategories(ctx context.Context) ([]domain.Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.categoryCalls++
	if m.categoryErr != nil {
		return nil, m.categoryErr
	}
	return append([]domain.Category(nil), m.categories...), nil
}

func (m *MockCatalogClient) SearchCalls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.searchCalls...)
}

// pagedSearch serves pages of size items for term; pages beyond last are empty
func pagedSearch(size, last int) func(ctx context.Context, term string, page int) (*domain.ProductPage, error) {
	return func(ctx context.Context, term string, page int) (*domain.ProductPage, error) {
		if page > last {
			return &domain.ProductPage{Page: page}, nil
		}
		return &domain.ProductPage{Page: page, PageSize: size, Products: makeProducts(term, page, size)}, nil
	}
}

func makeProducts(prefix string, page, n int) []domain.Product {
	products := make([]domain.Product, n)
	for i := range products {
		products[i] = domain.Product{
			Code: fmt.Sprintf("%s-%d-%d", prefix, page, i),
			Name: fmt.Sprintf("%s %d-%d", prefix, page, i),
		}
	}
	return products
}

// MockCacheRepository is a mock implementation of domain.CacheRepository
type MockCacheRepository struct {
	mu       sync.Mutex
	data     map[string][]byte
	getError error
	setError error
	sets     int
}

func NewMockCacheRepository() *MockCacheRepository {
	return &MockCacheRepository{data: make(map[string][]byte)}
}

func (m *MockCacheRepository) Get(ctx context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getError != nil {
		return nil, m.getError
	}
	if v, ok := m.data[key]; ok {
		return v, nil
	}
	return nil, domain.ErrCacheMiss
}

func (m *MockCacheRepository) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sets++
	if m.setError != nil {
		return m.setError
	}
	m.data[key] = value
	return nil
}

func (m *MockCacheRepository) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

func (m *MockCacheRepository) Exists(ctx context.Context, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.data[key]
	return ok, nil
}
