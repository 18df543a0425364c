package usecase

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/foodlens/catalog/internal/domain"
	"go.uber.org/zap"
)

// SessionConfig holds the tunables of an explorer session
type SessionConfig struct {
	DebounceWindow time.Duration
}

// View is what a presentation layer renders: the accumulated products after the
// category filter and sort, together with the query flags.
type View struct {
	RawText    string                `json:"rawText"`
	Term       string                `json:"term"`
	Browsing   bool                  `json:"browsing"`
	Category   string                `json:"category,omitempty"`
	Sort       domain.SortOption     `json:"sort"`
	Products   []domain.Product      `json:"products"`
	Total      int                   `json:"total"`
	Page       int                   `json:"page"`
	HasMore    bool                  `json:"hasMore"`
	Loading    bool                  `json:"loading"`
	Pending    bool                  `json:"pending"`
	Error      *domain.PipelineError `json:"error,omitempty"`
	Categories []domain.Category     `json:"categories,omitempty"`
}

// Session owns one explorer pipeline: debounced search text feeds an accumulator
// whose products are filtered and sorted on demand. Category and sort changes
// never trigger a fetch. All methods are safe for concurrent use.
type Session struct {
	catalog   domain.CatalogClient
	debouncer *Debouncer
	acc       *Accumulator
	logger    *zap.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	// startMu serializes query starts with each other and with Close
	startMu sync.Mutex
	applied uint64
	closed  bool

	mu                sync.Mutex
	term              string
	browsing          bool
	category          string
	sortOption        domain.SortOption
	categories        []domain.Category
	categoriesVersion uint64
	lastAccess        time.Time
}

// NewSession creates an idle session. Background page fetches run under ctx.
func NewSession(ctx context.Context, catalog domain.CatalogClient, config SessionConfig, logger *zap.Logger) *Session {
	if logger == nil {
		logger = zap.NewNop()
	}
	ctx, cancel := context.WithCancel(ctx)

	s := &Session{
		catalog:    catalog,
		logger:     logger.Named("session"),
		ctx:        ctx,
		cancel:     cancel,
		sortOption: domain.SortDefault,
		lastAccess: time.Now(),
	}
	s.acc = NewAccumulator(nil, s.logger)
	s.acc.OnUpdate(s.productsLoaded)
	s.debouncer = NewDebouncer(config.DebounceWindow, s.commit)

	return s
}

// SetSearchText feeds a keystroke into the debouncer. Empty text clears the
// results immediately.
func (s *Session) SetSearchText(text string) {
	s.touch()
	s.debouncer.Input(text)
}

// CommitSearch commits the current text without waiting for the debounce window
func (s *Session) CommitSearch() string {
	s.touch()
	return s.debouncer.CommitNow()
}

// Browse starts an unfiltered listing of the whole catalog
func (s *Session) Browse() {
	s.touch()
	s.start("", true, s.debouncer.Stop())
}

// LoadMore fetches the next page of the current query. It returns ErrFetchInFlight
// or ErrExhausted when no request was issued.
func (s *Session) LoadMore(ctx context.Context) error {
	s.touch()
	err := s.acc.LoadMore(ctx)
	if errors.Is(err, ErrStaleResponse) {
		return nil
	}
	return err
}

// SetCategory selects the category filter. An empty id clears it.
func (s *Session) SetCategory(categoryID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastAccess = time.Now()
	s.category = strings.TrimSpace(categoryID)
}

// SetSort selects the sort order
func (s *Session) SetSort(option domain.SortOption) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastAccess = time.Now()
	s.sortOption = option
}

// View renders the current state
func (s *Session) View() View {
	state := s.acc.State()

	s.mu.Lock()
	term, browsing, category, sortOption := s.term, s.browsing, s.category, s.sortOption
	categories := append([]domain.Category(nil), s.categories...)
	s.mu.Unlock()

	return View{
		RawText:    s.debouncer.Raw(),
		Term:       term,
		Browsing:   browsing,
		Category:   category,
		Sort:       sortOption,
		Products:   SortProducts(FilterByCategory(state.Products, category), sortOption),
		Total:      len(state.Products),
		Page:       state.Page,
		HasMore:    state.HasMore,
		Loading:    state.Loading,
		Pending:    s.debouncer.State() == DebouncePending,
		Error:      state.Err,
		Categories: categories,
	}
}

// Wait blocks until every background fetch started so far has finished
func (s *Session) Wait() {
	s.wg.Wait()
}

// LastAccess returns the time of the last interaction
func (s *Session) LastAccess() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastAccess
}

// Close cancels pending commits and in-flight fetches. No query starts afterwards.
func (s *Session) Close() {
	s.startMu.Lock()
	s.closed = true
	s.startMu.Unlock()

	s.debouncer.Stop()
	s.cancel()
	s.wg.Wait()
}

// commit is the debouncer callback
func (s *Session) commit(text string, gen uint64) {
	s.start(strings.TrimSpace(text), false, gen)
}

// start resets the accumulator for a new query and fetches its first page in
// the background. An empty term outside browse mode just clears the results.
// A commit whose generation is not newer than the last applied one is dropped.
func (s *Session) start(term string, browsing bool, gen uint64) {
	s.startMu.Lock()
	defer s.startMu.Unlock()

	if s.closed {
		return
	}
	if gen <= s.applied {
		s.logger.Debug("dropping superseded commit", zap.String("term", term), zap.Uint64("generation", gen))
		return
	}
	s.applied = gen

	s.mu.Lock()
	s.term = term
	s.browsing = browsing
	s.mu.Unlock()

	if term == "" && !browsing {
		s.acc.Reset(nil)
		s.logger.Debug("search cleared")
		return
	}

	s.acc.Reset(s.fetcher(term))
	s.logger.Debug("query committed", zap.String("term", term), zap.Bool("browsing", browsing))

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if err := s.acc.LoadMore(s.ctx); err != nil && !errors.Is(err, ErrStaleResponse) {
			s.logger.Debug("first page not loaded", zap.String("term", term), zap.Error(err))
		}
	}()
}

func (s *Session) fetcher(term string) PageFetcher {
	return func(ctx context.Context, page int) ([]domain.Product, error) {
		result, err := s.catalog.SearchByTerm(ctx, term, page)
		if err != nil {
			return nil, err
		}
		return result.Products, nil
	}
}

// productsLoaded refreshes the category enumeration of the unfiltered list.
// Notifications older than the last applied one are ignored.
func (s *Session) productsLoaded(version uint64, products []domain.Product) {
	categories := CategoriesFromProducts(products)

	s.mu.Lock()
	defer s.mu.Unlock()
	if version < s.categoriesVersion {
		return
	}
	s.categoriesVersion = version
	s.categories = categories
}

func (s *Session) touch() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastAccess = time.Now()
}
