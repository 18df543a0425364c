package openfoodfacts

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/foodlens/catalog/internal/domain"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// DefaultBaseURL is the public world-wide Open Food Facts instance
const DefaultBaseURL = "https://world.openfoodfacts.org"

// errHTTPNotFound marks an upstream 404; only barcode lookups treat it as a missing product
var errHTTPNotFound = errors.New("upstream returned 404")

// Config holds the client settings
type Config struct {
	BaseURL           string
	UserAgent         string
	Timeout           time.Duration
	PageSize          int
	RequestsPerMinute int
}

// Client handles communication with the Open Food Facts API.
// Every call is a single request; failures are returned, never retried.
type Client struct {
	httpClient  *http.Client
	baseURL     string
	userAgent   string
	pageSize    int
	rateLimiter *rate.Limiter
	logger      *zap.Logger
}

// NewClient creates a new Open Food Facts API client
func NewClient(cfg Config, logger *zap.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.PageSize <= 0 {
		cfg.PageSize = 20
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = "FoodLens/1.0"
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	// The public API asks clients to stay under 10 search requests per minute
	limit := rate.Inf
	if cfg.RequestsPerMinute > 0 {
		limit = rate.Limit(float64(cfg.RequestsPerMinute) / 60.0)
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		userAgent:   cfg.UserAgent,
		pageSize:    cfg.PageSize,
		rateLimiter: rate.NewLimiter(limit, 10),
		logger:      logger.Named("openfoodfacts"),
	}
}

// PageSize returns the number of products requested per page
func (c *Client) PageSize() int {
	return c.pageSize
}

// SearchByTerm fetches one page of products matching term. An empty term lists all products.
func (c *Client) SearchByTerm(ctx context.Context, term string, page int) (*domain.ProductPage, error) {
	if page < 1 {
		page = 1
	}

	params := url.Values{}
	params.Set("search_terms", strings.TrimSpace(term))
	params.Set("page", strconv.Itoa(page))
	params.Set("page_size", strconv.Itoa(c.pageSize))
	params.Set("json", "true")
	reqURL := fmt.Sprintf("%s/cgi/search.pl?%s", c.baseURL, params.Encode())

	c.logger.Debug("search", zap.String("term", term), zap.Int("page", page))

	var body searchResponse
	if err := c.getJSON(ctx, reqURL, &body); err != nil {
		c.logger.Warn("search failed", zap.String("term", term), zap.Int("page", page), zap.Error(err))
		return nil, err
	}

	result := &domain.ProductPage{
		Page:     page,
		PageSize: c.pageSize,
		Count:    int(body.Count),
		Products: mapProducts(body.Products),
	}

	c.logger.Debug("search done",
		zap.String("term", term),
		zap.Int("page", page),
		zap.Int("products", len(result.Products)),
		zap.Int("count", result.Count))

	return result, nil
}

// GetByBarcode retrieves a single product by its barcode
func (c *Client) GetByBarcode(ctx context.Context, code string) (*domain.Product, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, domain.ErrEmptyInput
	}

	reqURL := fmt.Sprintf("%s/api/v0/product/%s.json", c.baseURL, url.PathEscape(code))

	var body productResponse
	if err := c.getJSON(ctx, reqURL, &body); err != nil {
		if errors.Is(err, errHTTPNotFound) {
			c.logger.Debug("product not found", zap.String("code", code), zap.Int("status", http.StatusNotFound))
			return nil, domain.ErrProductNotFound
		}
		c.logger.Warn("product lookup failed", zap.String("code", code), zap.Error(err))
		return nil, err
	}

	if body.Status != 1 || body.Product == nil {
		c.logger.Debug("product not found", zap.String("code", code), zap.String("status", body.StatusVerbose))
		return nil, domain.ErrProductNotFound
	}

	product := mapProduct(body.Product)
	if product.Code == "" {
		product.Code = code
	}

	return &product, nil
}

// SearchByCategory fetches one page of the upstream listing of a single category.
// categoryID may carry a locale prefix ("en:beverages").
func (c *Client) SearchByCategory(ctx context.Context, categoryID string, page int) (*domain.ProductPage, error) {
	slug := categorySlug(categoryID)
	if slug == "" {
		return nil, domain.ErrEmptyInput
	}
	if page < 1 {
		page = 1
	}

	params := url.Values{}
	params.Set("page", strconv.Itoa(page))
	params.Set("page_size", strconv.Itoa(c.pageSize))
	reqURL := fmt.Sprintf("%s/category/%s.json?%s", c.baseURL, url.PathEscape(slug), params.Encode())

	c.logger.Debug("category listing", zap.String("category", slug), zap.Int("page", page))

	var body searchResponse
	if err := c.getJSON(ctx, reqURL, &body); err != nil {
		c.logger.Warn("category listing failed", zap.String("category", slug), zap.Int("page", page), zap.Error(err))
		return nil, err
	}

	return &domain.ProductPage{
		Page:     page,
		PageSize: c.pageSize,
		Count:    int(body.Count),
		Products: mapProducts(body.Products),
	}, nil
}

// categorySlug turns a category id into the path segment of its listing page
func categorySlug(id string) string {
	s := strings.ToLower(strings.TrimSpace(id))
	if prefix, rest, ok := strings.Cut(s, ":"); ok && len(prefix) >= 2 && len(prefix) <= 3 {
		s = strings.TrimSpace(rest)
	}
	return strings.Join(strings.Fields(s), "-")
}

// ListCategories retrieves the category taxonomy
func (c *Client) ListCategories(ctx context.Context) ([]domain.Category, error) {
	reqURL := fmt.Sprintf("%s/categories.json", c.baseURL)

	var body categoriesResponse
	if err := c.getJSON(ctx, reqURL, &body); err != nil {
		c.logger.Warn("category listing failed", zap.Error(err))
		return nil, err
	}

	return mapCategories(body.Tags), nil
}

// getJSON executes a GET request and decodes a JSON body into out
func (c *Client) getJSON(ctx context.Context, reqURL string, out interface{}) error {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		// Wait fails early when the next token would arrive after the deadline
		if _, ok := ctx.Deadline(); ok && !errors.Is(err, context.Canceled) {
			return fmt.Errorf("%w: rate limit: %v", domain.ErrTimeout, err)
		}
		return classifyError(err)
	}

	resp, err := c.doRequest(ctx, reqURL)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("%w: %w", domain.ErrNetworkFailure, errHTTPNotFound)
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%w: status %d, body: %s", domain.ErrNetworkFailure, resp.StatusCode, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		if isTimeout(err) {
			return fmt.Errorf("%w: %v", domain.ErrTimeout, err)
		}
		return fmt.Errorf("%w: failed to decode response: %v", domain.ErrNetworkFailure, err)
	}

	return nil
}

// doRequest executes an HTTP GET request with proper headers and error handling
func (c *Client) doRequest(ctx context.Context, reqURL string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create request: %v", domain.ErrNetworkFailure, err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, classifyError(err)
	}

	return resp, nil
}

// classifyError tags a transport error as a timeout or a generic network failure
func classifyError(err error) error {
	if isTimeout(err) {
		return fmt.Errorf("%w: %v", domain.ErrTimeout, err)
	}
	return fmt.Errorf("%w: %v", domain.ErrNetworkFailure, err)
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
