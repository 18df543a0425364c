package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/foodlens/catalog/internal/domain"
	"github.com/foodlens/catalog/internal/usecase"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Handler holds dependencies for HTTP handlers
type Handler struct {
	products   *usecase.ProductService
	categories *usecase.CategoryService
	sessions   *usecase.SessionStore
	logger     *zap.Logger
}

// NewHandler creates a new HTTP handler
func NewHandler(products *usecase.ProductService, categories *usecase.CategoryService, sessions *usecase.SessionStore, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		products:   products,
		categories: categories,
		sessions:   sessions,
		logger:     logger.Named("http"),
	}
}

// HealthCheck returns the health status of the API
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":   "healthy",
		"service":  "foodlens-catalog",
		"version":  "1.0.0",
		"sessions": h.sessions.Len(),
	})
}

// SearchProducts returns one raw page of search results
func (h *Handler) SearchProducts(c *gin.Context) {
	page, err := intQuery(c, "page", 1)
	if err != nil {
		h.writeError(c, err)
		return
	}

	result, err := h.products.Search(c.Request.Context(), c.Query("q"), page)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetProduct returns a product and its nutrition breakdown
func (h *Handler) GetProduct(c *gin.Context) {
	detail, err := h.products.GetProduct(c.Request.Context(), c.Param("code"))
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, detail)
}

// ListCategories returns the category taxonomy, or the best match for q
func (h *Handler) ListCategories(c *gin.Context) {
	if q := c.Query("q"); q != "" {
		category, ok, err := h.categories.Resolve(c.Request.Context(), q)
		if err != nil {
			h.writeError(c, err)
			return
		}
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{"error": "no category matches " + strconv.Quote(q)})
			return
		}
		c.JSON(http.StatusOK, gin.H{"categories": []domain.Category{category}})
		return
	}

	limit, err := intQuery(c, "limit", 0)
	if err != nil {
		h.writeError(c, err)
		return
	}

	categories, err := h.categories.ListCategories(c.Request.Context(), limit)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"categories": categories})
}

// CategoryProducts returns one page of the upstream listing of a category
func (h *Handler) CategoryProducts(c *gin.Context) {
	page, err := intQuery(c, "page", 1)
	if err != nil {
		h.writeError(c, err)
		return
	}

	result, err := h.categories.Products(c.Request.Context(), c.Param("id"), page)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// CreateSession starts a new explorer session
func (h *Handler) CreateSession(c *gin.Context) {
	id, session := h.sessions.Create()
	h.logger.Debug("session created", zap.String("session", id))

	c.JSON(http.StatusCreated, gin.H{"id": id, "view": session.View()})
}

// GetSession renders the session view
func (h *Handler) GetSession(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, session.View())
}

type textRequest struct {
	Text string `json:"text"`
}

// SetSearchText feeds raw search text into the session's debouncer
func (h *Handler) SetSearchText(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}

	var req textRequest
	if !h.bind(c, &req) {
		return
	}

	session.SetSearchText(req.Text)
	c.JSON(http.StatusAccepted, session.View())
}

// CommitSearch commits the pending text immediately.
// With wait=true the response is sent once the first page has arrived.
func (h *Handler) CommitSearch(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}

	session.CommitSearch()
	h.respondView(c, session)
}

// Browse lists the whole catalog without a search term
func (h *Handler) Browse(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}

	session.Browse()
	h.respondView(c, session)
}

// LoadMore fetches the next page of the session's query
func (h *Handler) LoadMore(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}

	err := session.LoadMore(c.Request.Context())
	if errors.Is(err, usecase.ErrFetchInFlight) {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}
	// Upstream failures are reported through the view
	c.JSON(http.StatusOK, session.View())
}

type categoryRequest struct {
	Category string `json:"category"`
}

// SetCategory selects the session's category filter
func (h *Handler) SetCategory(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}

	var req categoryRequest
	if !h.bind(c, &req) {
		return
	}

	session.SetCategory(req.Category)
	c.JSON(http.StatusOK, session.View())
}

type sortRequest struct {
	Sort string `json:"sort"`
}

// SetSort selects the session's sort order
func (h *Handler) SetSort(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}

	var req sortRequest
	if !h.bind(c, &req) {
		return
	}

	option, err := domain.ParseSortOption(req.Sort)
	if err != nil {
		h.writeError(c, err)
		return
	}

	session.SetSort(option)
	c.JSON(http.StatusOK, session.View())
}

// DeleteSession closes a session
func (h *Handler) DeleteSession(c *gin.Context) {
	if !h.sessions.Delete(c.Param("id")) {
		c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) session(c *gin.Context) (*usecase.Session, bool) {
	session, ok := h.sessions.Get(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
	}
	return session, ok
}

func (h *Handler) bind(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return false
	}
	return true
}

func (h *Handler) respondView(c *gin.Context, session *usecase.Session) {
	if c.Query("wait") == "true" {
		session.Wait()
	}
	c.JSON(http.StatusOK, session.View())
}

// writeError maps domain errors onto HTTP status codes
func (h *Handler) writeError(c *gin.Context, err error) {
	status := http.StatusBadGateway
	switch {
	case errors.Is(err, domain.ErrEmptyInput), errors.Is(err, domain.ErrInvalidRequest):
		status = http.StatusBadRequest
	case errors.Is(err, domain.ErrProductNotFound):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrTimeout):
		status = http.StatusGatewayTimeout
	}

	if status >= http.StatusInternalServerError {
		h.logger.Warn("upstream request failed", zap.String("path", c.FullPath()), zap.Error(err))
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

func intQuery(c *gin.Context, key string, fallback int) (int, error) {
	raw := c.Query(key)
	if raw == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, errors.Join(domain.ErrInvalidRequest, errors.New(key+" must be an integer"))
	}
	return n, nil
}
