package usecase

import (
	"context"
	"errors"
	"slices"
	"sync"

	"github.com/foodlens/catalog/internal/domain"
	"go.uber.org/zap"
)

var (
	// ErrFetchInFlight is returned by LoadMore while another page is being fetched
	ErrFetchInFlight = errors.New("a page fetch is already in flight")

	// ErrExhausted is returned by LoadMore once no further pages are available
	ErrExhausted = errors.New("no more pages")

	// ErrStaleResponse is returned when a response arrives for a superseded query
	ErrStaleResponse = errors.New("response belongs to a superseded query")
)

// User-facing messages for accumulator errors
const (
	MessageNoProducts     = "No products found"
	MessageTimeout        = "Request timeout. Please try again."
	MessageNetworkFailure = "Failed to load products. Check your connection."
)

// PageFetcher fetches one page (1-based) of products for the current query
type PageFetcher func(ctx context.Context, page int) ([]domain.Product, error)

// AccumulatorState is an immutable snapshot of an Accumulator
type AccumulatorState struct {
	Page     int
	Products []domain.Product
	HasMore  bool
	Loading  bool
	Err      *domain.PipelineError
}

// UpdateFunc receives the full accumulated list with its version. Versions grow
// with every reset and appended page; a notification that arrives after one with
// a higher version is stale.
type UpdateFunc func(version uint64, products []domain.Product)

// Accumulator fetches successive pages of one query and appends them to a single
// ordered list. Only one fetch may be in flight; once a page comes back empty no
// further fetch is issued until Reset.
type Accumulator struct {
	mu         sync.Mutex
	fetch      PageFetcher
	page       int
	items      []domain.Product
	seen       map[string]struct{}
	hasMore    bool
	inFlight   bool
	lastErr    *domain.PipelineError
	generation uint64
	version    uint64
	listener   UpdateFunc
	logger     *zap.Logger
}

// NewAccumulator creates an accumulator for fetch. A nil fetch starts exhausted.
func NewAccumulator(fetch PageFetcher, logger *zap.Logger) *Accumulator {
	if logger == nil {
		logger = zap.NewNop()
	}
	a := &Accumulator{logger: logger}
	a.resetLocked(fetch)
	return a
}

// OnUpdate registers a listener that receives the full accumulated list after
// every appended page and every reset. It is called without the accumulator lock
// held, so notifications may arrive out of order.
func (a *Accumulator) OnUpdate(listener UpdateFunc) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.listener = listener
}

// Reset discards all accumulated state and starts a new query. Responses to
// fetches issued before the reset are dropped.
func (a *Accumulator) Reset(fetch PageFetcher) {
	a.mu.Lock()
	a.resetLocked(fetch)
	listener, version := a.listener, a.version
	a.mu.Unlock()

	if listener != nil {
		listener(version, nil)
	}
}

func (a *Accumulator) resetLocked(fetch PageFetcher) {
	a.generation++
	a.version++
	a.fetch = fetch
	a.page = 1
	a.items = nil
	a.seen = make(map[string]struct{})
	a.hasMore = fetch != nil
	a.inFlight = false
	a.lastErr = nil
}

// LoadMore fetches the next page. It returns ErrFetchInFlight or ErrExhausted
// without issuing a request when a fetch is running or the query is exhausted.
func (a *Accumulator) LoadMore(ctx context.Context) error {
	a.mu.Lock()
	if !a.hasMore {
		a.mu.Unlock()
		return ErrExhausted
	}
	if a.inFlight {
		a.mu.Unlock()
		return ErrFetchInFlight
	}
	a.inFlight = true
	a.lastErr = nil
	gen, page, fetch := a.generation, a.page, a.fetch
	a.mu.Unlock()

	products, err := fetch(ctx, page)

	a.mu.Lock()
	if gen != a.generation {
		a.mu.Unlock()
		a.logger.Debug("discarding stale page", zap.Int("page", page))
		return ErrStaleResponse
	}
	a.inFlight = false

	if err != nil {
		a.lastErr = pageError(err)
		if page == 1 {
			a.hasMore = false
		}
		a.mu.Unlock()
		a.logger.Warn("page fetch failed", zap.Int("page", page), zap.Error(err))
		return err
	}

	if len(products) == 0 {
		a.hasMore = false
		if page == 1 {
			a.lastErr = &domain.PipelineError{Kind: domain.ErrorNotFound, Message: MessageNoProducts}
		}
		a.mu.Unlock()
		a.logger.Debug("query exhausted", zap.Int("page", page))
		return nil
	}

	a.appendLocked(products)
	a.page++
	a.version++
	snapshot, version := slices.Clone(a.items), a.version
	listener := a.listener
	a.mu.Unlock()

	a.logger.Debug("page appended", zap.Int("page", page), zap.Int("total", len(snapshot)))

	if listener != nil {
		listener(version, snapshot)
	}
	return nil
}

// appendLocked appends products, skipping codes already accumulated
func (a *Accumulator) appendLocked(products []domain.Product) {
	for _, p := range products {
		if p.Code != "" {
			if _, dup := a.seen[p.Code]; dup {
				continue
			}
			a.seen[p.Code] = struct{}{}
		}
		a.items = append(a.items, p)
	}
}

// State returns a snapshot of the accumulator
func (a *Accumulator) State() AccumulatorState {
	a.mu.Lock()
	defer a.mu.Unlock()

	state := AccumulatorState{
		Page:     a.page,
		Products: slices.Clone(a.items),
		HasMore:  a.hasMore,
		Loading:  a.inFlight,
	}
	if a.lastErr != nil {
		e := *a.lastErr
		state.Err = &e
	}
	return state
}

func pageError(err error) *domain.PipelineError {
	kind := domain.KindOf(err)
	switch kind {
	case domain.ErrorTimeout:
		return &domain.PipelineError{Kind: kind, Message: MessageTimeout}
	case domain.ErrorNotFound:
		return &domain.PipelineError{Kind: kind, Message: MessageNoProducts}
	default:
		return &domain.PipelineError{Kind: domain.ErrorNetworkFailure, Message: MessageNetworkFailure}
	}
}
