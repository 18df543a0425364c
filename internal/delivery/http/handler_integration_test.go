package http

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/foodlens/catalog/config"
	"github.com/foodlens/catalog/internal/domain"
	"github.com/foodlens/catalog/internal/usecase"
	"github.com/gin-gonic/gin"
)

// TestMain sets up test environment before running tests
func TestMain(m *testing.M) {
	// Set Gin to test mode once for all tests
	gin.SetMode(gin.TestMode)

	os.Exit(m.Run())
}

// stubCatalog serves pageSize products per page for every term, up to lastPage
type stubCatalog struct {
	mu         sync.Mutex
	pageSize   int
	lastPage   int
	searchErr  error
	products   map[string]domain.Product
	productErr error
	categories []domain.Category
	searches   int
}

func newStubCatalog() *stubCatalog {
	return &stubCatalog{
		pageSize: 3,
		lastPage: 2,
		products: map[string]domain.Product{
			"3017620422003": {
				Code:   "3017620422003",
				Name:   "Nutella",
				Labels: "Vegetarian",
				Nutriments: &domain.Nutriments{
					Proteins:      ptr(6.3),
					Carbohydrates: ptr(57.5),
					Fat:           ptr(30.9),
				},
			},
		},
		categories: []domain.Category{
			{ID: "en:beverages", Name: "Beverages", Products: 100},
			{ID: "en:snacks", Name: "Snacks", Products: 90},
			{ID: "en:dairies", Name: "Dairies", Products: 80},
		},
	}
}

func ptr(v float64) *float64 { return &v }

func (s *stubCatalog) SearchByTerm(ctx context.Context, term string, page int) (*domain.ProductPage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.searches++
	if s.searchErr != nil {
		return nil, s.searchErr
	}

	result := &domain.ProductPage{Page: page, PageSize: s.pageSize}
	if page > s.lastPage {
		return result, nil
	}
	grades := []string{"c", "a", "e"}
	for i := 0; i < s.pageSize; i++ {
		tag := "en:snacks"
		if i%2 == 0 {
			tag = "en:beverages"
		}
		result.Products = append(result.Products, domain.Product{
			Code:           fmt.Sprintf("%s-%d-%d", term, page, i),
			Name:           fmt.Sprintf("%s %c", term, 'z'-rune(page*s.pageSize+i)),
			CategoryTags:   []string{tag},
			NutritionGrade: grades[i%len(grades)],
		})
	}
	result.Count = s.lastPage * s.pageSize
	return result, nil
}

func (s *stubCatalog) SearchByCategory(ctx context.Context, categoryID string, page int) (*domain.ProductPage, error) {
	result, err := s.SearchByTerm(ctx, categoryID, page)
	if err != nil {
		return nil, err
	}
	for i := range result.Products {
		result.Products[i].CategoryTags = []string{categoryID}
	}
	return result, nil
}

func (s *stubCatalog) GetByBarcode(ctx context.Context, code string) (*domain.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.productErr != nil {
		return nil, s.productErr
	}
	p, ok := s.products[code]
	if !ok {
		return nil, domain.ErrProductNotFound
	}
	return &p, nil
}

func (s *stubCatalog) ListCategories(ctx context.Context) ([]domain.Category, error) {
	return append([]domain.Category(nil), s.categories...), nil
}

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{
			Port:           "8080",
			Environment:    "test",
			AllowedOrigins: []string{"https://foodlens-*", "http://localhost:3000"},
		},
		Cache:  config.CacheConfig{Type: "memory"},
		Search: config.SearchConfig{Debounce: time.Minute, CategoryLimit: 2, SessionTTL: time.Hour},
	}
}

// setupTestRouter creates a test router backed by catalog
func setupTestRouter(t *testing.T, catalog domain.CatalogClient) *gin.Engine {
	t.Helper()
	cfg := testConfig()

	store := usecase.NewSessionStore(catalog, usecase.SessionConfig{DebounceWindow: cfg.Search.Debounce}, cfg.Search.SessionTTL, nil)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		store.Run(ctx, time.Hour)
		close(done)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})

	handler := NewHandler(
		usecase.NewProductService(catalog, nil),
		usecase.NewCategoryService(catalog, cfg.Search.CategoryLimit, nil),
		store,
		nil,
	)
	return SetupRouter(cfg, handler, nil)
}

func doRequest(router *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, out interface{}) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), out); err != nil {
		t.Fatalf("Failed to unmarshal response %q: %v", w.Body.String(), err)
	}
}

// TestHealthCheckEndpoint tests the health check endpoint
func TestHealthCheckEndpoint(t *testing.T) {
	t.Run("returns healthy status", func(t *testing.T) {
		router := setupTestRouter(t, newStubCatalog())

		w := doRequest(router, "GET", "/health", "")

		if w.Code != http.StatusOK {
			t.Errorf("Status = %d, want %d", w.Code, http.StatusOK)
		}

		var response map[string]interface{}
		decode(t, w, &response)
		if response["status"] != "healthy" {
			t.Errorf("status = %v, want healthy", response["status"])
		}
		if response["service"] != "foodlens-catalog" {
			t.Errorf("service = %v, want foodlens-catalog", response["service"])
		}
	})

	t.Run("only accepts GET", func(t *testing.T) {
		router := setupTestRouter(t, newStubCatalog())

		for _, method := range []string{"POST", "PUT", "DELETE"} {
			w := doRequest(router, method, "/health", "")
			if w.Code != http.StatusNotFound {
				t.Errorf("Method %s: Status = %d, want %d", method, w.Code, http.StatusNotFound)
			}
		}
	})
}

// TestSearchProductsEndpoint tests the raw search endpoint
func TestSearchProductsEndpoint(t *testing.T) {
	router := setupTestRouter(t, newStubCatalog())

	t.Run("returns one page", func(t *testing.T) {
		w := doRequest(router, "GET", "/api/v1/products/search?q=milk&page=2", "")
		if w.Code != http.StatusOK {
			t.Fatalf("Status = %d, want %d", w.Code, http.StatusOK)
		}

		var page domain.ProductPage
		decode(t, w, &page)
		if page.Page != 2 || len(page.Products) != 3 {
			t.Errorf("page = %d with %d products, want page 2 with 3", page.Page, len(page.Products))
		}
	})

	t.Run("rejects a malformed page", func(t *testing.T) {
		for _, path := range []string{"/api/v1/products/search?q=milk&page=two", "/api/v1/products/search?q=milk&page=0"} {
			w := doRequest(router, "GET", path, "")
			if w.Code != http.StatusBadRequest {
				t.Errorf("%s: Status = %d, want %d", path, w.Code, http.StatusBadRequest)
			}
		}
	})
}

// TestGetProductEndpoint tests the product detail endpoint and its error mapping
func TestGetProductEndpoint(t *testing.T) {
	t.Run("returns product detail", func(t *testing.T) {
		router := setupTestRouter(t, newStubCatalog())

		w := doRequest(router, "GET", "/api/v1/products/3017620422003", "")
		if w.Code != http.StatusOK {
			t.Fatalf("Status = %d, want %d", w.Code, http.StatusOK)
		}

		var detail domain.ProductDetail
		decode(t, w, &detail)
		if detail.Product.Name != "Nutella" {
			t.Errorf("Product.Name = %q, want Nutella", detail.Product.Name)
		}
		if len(detail.Distribution) != 3 {
			t.Errorf("len(Distribution) = %d, want 3", len(detail.Distribution))
		}
	})

	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"unknown barcode", nil, http.StatusNotFound},
		{"timeout", domain.ErrTimeout, http.StatusGatewayTimeout},
		{"network failure", fmt.Errorf("%w: connection refused", domain.ErrNetworkFailure), http.StatusBadGateway},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			catalog := newStubCatalog()
			catalog.productErr = tt.err
			router := setupTestRouter(t, catalog)

			w := doRequest(router, "GET", "/api/v1/products/0000000000", "")
			if w.Code != tt.wantStatus {
				t.Errorf("Status = %d, want %d", w.Code, tt.wantStatus)
			}

			var response map[string]string
			decode(t, w, &response)
			if response["error"] == "" {
				t.Errorf("error field missing in %s", w.Body.String())
			}
		})
	}
}

// TestCategoriesEndpoint tests listing and resolving categories
func TestCategoriesEndpoint(t *testing.T) {
	router := setupTestRouter(t, newStubCatalog())

	var response struct {
		Categories []domain.Category `json:"categories"`
	}

	w := doRequest(router, "GET", "/api/v1/categories", "")
	decode(t, w, &response)
	if len(response.Categories) != 2 {
		t.Errorf("len(categories) = %d, want the configured limit 2", len(response.Categories))
	}

	w = doRequest(router, "GET", "/api/v1/categories?limit=3", "")
	decode(t, w, &response)
	if len(response.Categories) != 3 {
		t.Errorf("len(categories) = %d, want 3", len(response.Categories))
	}

	w = doRequest(router, "GET", "/api/v1/categories?q=dair", "")
	decode(t, w, &response)
	if len(response.Categories) != 1 || response.Categories[0].ID != "en:dairies" {
		t.Errorf("resolved %+v, want en:dairies", response.Categories)
	}

	w = doRequest(router, "GET", "/api/v1/categories?q=qqq", "")
	if w.Code != http.StatusNotFound {
		t.Errorf("Status = %d, want %d", w.Code, http.StatusNotFound)
	}
}

func TestCategoryProductsEndpoint(t *testing.T) {
	catalog := newStubCatalog()
	router := setupTestRouter(t, catalog)

	w := doRequest(router, "GET", "/api/v1/categories/en:snacks/products?page=2", "")
	if w.Code != http.StatusOK {
		t.Fatalf("Status = %d, want %d", w.Code, http.StatusOK)
	}
	var page domain.ProductPage
	decode(t, w, &page)
	if page.Page != 2 || len(page.Products) != 3 {
		t.Fatalf("page = %d with %d products, want page 2 with 3", page.Page, len(page.Products))
	}
	if page.Products[0].CategoryTags[0] != "en:snacks" {
		t.Errorf("tags = %v, want en:snacks", page.Products[0].CategoryTags)
	}

	w = doRequest(router, "GET", "/api/v1/categories/en:snacks/products?page=x", "")
	if w.Code != http.StatusBadRequest {
		t.Errorf("Status = %d, want %d", w.Code, http.StatusBadRequest)
	}

	catalog.searchErr = domain.ErrTimeout
	w = doRequest(router, "GET", "/api/v1/categories/en:snacks/products", "")
	if w.Code != http.StatusGatewayTimeout {
		t.Errorf("Status = %d, want %d", w.Code, http.StatusGatewayTimeout)
	}
}

type sessionResponse struct {
	ID   string        `json:"id"`
	View usecase.View `json:"view"`
}

// TestSessionLifecycle drives a session through search, load more, filter and sort
func TestSessionLifecycle(t *testing.T) {
	router := setupTestRouter(t, newStubCatalog())

	w := doRequest(router, "POST", "/api/v1/sessions", "")
	if w.Code != http.StatusCreated {
		t.Fatalf("Status = %d, want %d", w.Code, http.StatusCreated)
	}
	var created sessionResponse
	decode(t, w, &created)
	base := "/api/v1/sessions/" + created.ID

	w = doRequest(router, "PUT", base+"/text", `{"text":"cola"}`)
	if w.Code != http.StatusAccepted {
		t.Fatalf("Status = %d, want %d", w.Code, http.StatusAccepted)
	}

	var view usecase.View
	w = doRequest(router, "POST", base+"/commit?wait=true", "")
	decode(t, w, &view)
	if view.Term != "cola" || len(view.Products) != 3 || !view.HasMore {
		t.Fatalf("after commit view = %+v, want 3 products for cola", view)
	}

	w = doRequest(router, "POST", base+"/more", "")
	decode(t, w, &view)
	if len(view.Products) != 6 || view.Page != 3 {
		t.Errorf("after load more: %d products page %d, want 6 page 3", len(view.Products), view.Page)
	}

	w = doRequest(router, "POST", base+"/more", "")
	decode(t, w, &view)
	if view.HasMore {
		t.Errorf("HasMore = true after empty page")
	}

	w = doRequest(router, "PUT", base+"/category", `{"category":"en:beverages"}`)
	decode(t, w, &view)
	if len(view.Products) != 4 || view.Total != 6 {
		t.Errorf("filtered %d of %d, want 4 of 6", len(view.Products), view.Total)
	}

	w = doRequest(router, "PUT", base+"/sort", `{"sort":"nutrition-asc"}`)
	decode(t, w, &view)
	if view.Sort != domain.SortGradeAsc {
		t.Errorf("Sort = %s, want %s", view.Sort, domain.SortGradeAsc)
	}
	for i := 1; i < len(view.Products); i++ {
		if view.Products[i-1].NutritionGrade > view.Products[i].NutritionGrade {
			t.Errorf("products not sorted by grade: %q before %q", view.Products[i-1].NutritionGrade, view.Products[i].NutritionGrade)
		}
	}

	w = doRequest(router, "PUT", base+"/sort", `{"sort":"price"}`)
	if w.Code != http.StatusBadRequest {
		t.Errorf("unknown sort: Status = %d, want %d", w.Code, http.StatusBadRequest)
	}

	w = doRequest(router, "DELETE", base, "")
	if w.Code != http.StatusNoContent {
		t.Errorf("delete: Status = %d, want %d", w.Code, http.StatusNoContent)
	}
	w = doRequest(router, "GET", base, "")
	if w.Code != http.StatusNotFound {
		t.Errorf("after delete: Status = %d, want %d", w.Code, http.StatusNotFound)
	}
}

// TestSessionBrowseAndErrors covers browse mode and upstream failures
func TestSessionBrowseAndErrors(t *testing.T) {
	t.Run("browse lists without a term", func(t *testing.T) {
		router := setupTestRouter(t, newStubCatalog())

		var created sessionResponse
		decode(t, doRequest(router, "POST", "/api/v1/sessions", ""), &created)

		var view usecase.View
		decode(t, doRequest(router, "POST", "/api/v1/sessions/"+created.ID+"/browse?wait=true", ""), &view)
		if !view.Browsing || len(view.Products) != 3 {
			t.Errorf("browse view = %+v, want 3 products in browse mode", view)
		}
		if len(view.Categories) != 2 {
			t.Errorf("len(Categories) = %d, want 2", len(view.Categories))
		}
	})

	t.Run("first page timeout surfaces in the view", func(t *testing.T) {
		catalog := newStubCatalog()
		catalog.searchErr = domain.ErrTimeout
		router := setupTestRouter(t, catalog)

		var created sessionResponse
		decode(t, doRequest(router, "POST", "/api/v1/sessions", ""), &created)
		base := "/api/v1/sessions/" + created.ID

		doRequest(router, "PUT", base+"/text", `{"text":"tea"}`)
		var view usecase.View
		decode(t, doRequest(router, "POST", base+"/commit?wait=true", ""), &view)

		if view.Error == nil || view.Error.Kind != domain.ErrorTimeout {
			t.Fatalf("Error = %+v, want timeout", view.Error)
		}
		if view.Error.Message != usecase.MessageTimeout {
			t.Errorf("Message = %q, want %q", view.Error.Message, usecase.MessageTimeout)
		}
		if view.HasMore {
			t.Errorf("HasMore = true after first page failure")
		}
	})

	t.Run("unknown session", func(t *testing.T) {
		router := setupTestRouter(t, newStubCatalog())

		for _, req := range []struct{ method, path string }{
			{"GET", "/api/v1/sessions/nope"},
			{"POST", "/api/v1/sessions/nope/more"},
			{"DELETE", "/api/v1/sessions/nope"},
		} {
			w := doRequest(router, req.method, req.path, "")
			if w.Code != http.StatusNotFound {
				t.Errorf("%s %s: Status = %d, want %d", req.method, req.path, w.Code, http.StatusNotFound)
			}
		}
	})

	t.Run("malformed body", func(t *testing.T) {
		router := setupTestRouter(t, newStubCatalog())

		var created sessionResponse
		decode(t, doRequest(router, "POST", "/api/v1/sessions", ""), &created)

		w := doRequest(router, "PUT", "/api/v1/sessions/"+created.ID+"/text", `{"text":`)
		if w.Code != http.StatusBadRequest {
			t.Errorf("Status = %d, want %d", w.Code, http.StatusBadRequest)
		}
	})
}

// TestCORSIntegration tests CORS headers work end-to-end with full router
func TestCORSIntegration(t *testing.T) {
	router := setupTestRouter(t, newStubCatalog())

	req := httptest.NewRequest("GET", "/health", nil)
	req.Header.Set("Origin", "https://foodlens-web.example.com")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "https://foodlens-web.example.com" {
		t.Errorf("Access-Control-Allow-Origin = %q, want %q", got, "https://foodlens-web.example.com")
	}
	if got := w.Header().Get("Access-Control-Allow-Credentials"); got != "true" {
		t.Errorf("Access-Control-Allow-Credentials = %q, want %q", got, "true")
	}
}

// TestJSONResponses tests that all responses are valid JSON
func TestJSONResponses(t *testing.T) {
	router := setupTestRouter(t, newStubCatalog())

	for _, path := range []string{"/health", "/api/v1/categories", "/api/v1/products/unknown"} {
		t.Run(path, func(t *testing.T) {
			w := doRequest(router, "GET", path, "")

			gotContentType := w.Header().Get("Content-Type")
			if gotContentType != "application/json; charset=utf-8" {
				t.Errorf("Content-Type = %q, want application/json", gotContentType)
			}

			var response map[string]interface{}
			if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
				t.Errorf("Response should be valid JSON, got error: %v", err)
			}
		})
	}
}
