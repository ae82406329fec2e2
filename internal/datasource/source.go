package datasource

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/mmcdole/shelf/internal/request"
	"github.com/oklog/ulid/v2"
)

const defaultPageSize = 20

// Config holds the per-source settings
type Config struct {
	Name     string // used in logs
	PageSize int
	Logger   *slog.Logger
}

// Source drives one paged list: each request type runs at most one
// fetch, transform and persist cycle at a time.
type Source[R, T any] struct {
	name      string
	pageSize  int
	helper    *request.Helper
	fetcher   Fetcher[R]
	transform Transformer[R, T]
	persister Persister[T]
	logger    *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	// Cycles commit (persist, move the window, record) under the read lock;
	// ClearDataSource takes the write lock so no commit straddles a clear.
	commitMu sync.RWMutex

	mu        sync.Mutex
	closed    bool
	gen       uint64 // bumped by every clear; cycles from an older generation are discarded
	firstPage int    // 0 until a page was loaded
	lastPage  int
	exhausted bool // a page came back empty, nothing follows lastPage
}

// New creates a source whose fetches live as long as ctx
func New[R, T any](
	ctx context.Context,
	cfg Config,
	fetcher Fetcher[R],
	transform Transformer[R, T],
	persister Persister[T],
) *Source[R, T] {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	pageSize := cfg.PageSize
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	ctx, cancel := context.WithCancel(ctx)
	return &Source[R, T]{
		name:      cfg.Name,
		pageSize:  pageSize,
		helper:    request.NewHelper(logger),
		fetcher:   fetcher,
		transform: transform,
		persister: persister,
		logger:    logger.With("source", cfg.Name),
		ctx:       ctx,
		cancel:    cancel,
	}
}

// Helper exposes the status tracker for subscriptions
func (s *Source[R, T]) Helper() *request.Helper {
	return s.helper
}

// NetworkState subscribes to the coarse UI state of this source
func (s *Source[R, T]) NetworkState(ctx context.Context) *request.Subscription {
	return request.Subscribe(ctx, s.helper)
}

// Invoke loads the first page. Returns false if an initial load is in flight.
func (s *Source[R, T]) Invoke() bool {
	return s.run(request.Initial, Page{Number: 1, Limit: s.pageSize})
}

// LoadAfter loads the page following the last loaded one
func (s *Source[R, T]) LoadAfter() bool {
	s.mu.Lock()
	if s.lastPage == 0 || s.exhausted {
		s.mu.Unlock()
		return false
	}
	page := Page{Number: s.lastPage + 1, Limit: s.pageSize}
	s.mu.Unlock()
	return s.run(request.After, page)
}

// LoadBefore loads the page preceding the first loaded one
func (s *Source[R, T]) LoadBefore() bool {
	s.mu.Lock()
	if s.firstPage <= 1 {
		s.mu.Unlock()
		return false
	}
	page := Page{Number: s.firstPage - 1, Limit: s.pageSize}
	s.mu.Unlock()
	return s.run(request.Before, page)
}

// RetryRequest re-runs only the request types that failed
func (s *Source[R, T]) RetryRequest() bool {
	return s.helper.RetryAllFailed()
}

// ClearDataSource deletes every row this source persisted and resets the
// page window. Statuses of every request type are reset as well: results of
// cycles started before the clear are discarded, and failed pages are no
// longer retried.
func (s *Source[R, T]) ClearDataSource() error {
	s.commitMu.Lock()
	defer s.commitMu.Unlock()

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	s.gen++
	s.firstPage, s.lastPage, s.exhausted = 0, 0, false
	s.mu.Unlock()

	s.helper.Reset(request.Types()...)

	if err := s.persister.Clear(s.ctx); err != nil {
		s.logger.Error("failed to clear data source", "error", err)
		return err
	}
	s.logger.Info("cleared data source")
	return nil
}

// InvalidateAndRefresh clears persisted rows and reloads from the first page
func (s *Source[R, T]) InvalidateAndRefresh() bool {
	if err := s.ClearDataSource(); errors.Is(err, ErrClosed) {
		return false
	}
	return s.Invoke()
}

// Wait blocks until every dispatched fetch cycle returned
func (s *Source[R, T]) Wait() {
	s.wg.Wait()
}

// Close cancels outstanding fetches and waits for them. Cancelled
// fetches record no result.
func (s *Source[R, T]) Close() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	s.cancel()
	s.wg.Wait()
}

func (s *Source[R, T]) run(t request.Type, page Page) bool {
	return s.helper.RunIfNotRunning(t, func(cb request.Callback) {
		s.mu.Lock()
		if s.closed {
			s.mu.Unlock()
			return
		}
		gen := s.gen
		s.wg.Add(1)
		s.mu.Unlock()

		go func() {
			defer s.wg.Done()
			s.execute(t, page, gen, cb)
		}()
	})
}

func (s *Source[R, T]) execute(t request.Type, page Page, gen uint64, cb request.Callback) {
	logger := s.logger.With("type", t, "page", page.Number, "attempt", ulid.Make().String())
	logger.Debug("fetching page")

	resp, err := s.fetcher.Fetch(s.ctx, page)
	if s.ctx.Err() != nil {
		logger.Debug("fetch cancelled")
		return
	}

	var items []T
	if err != nil {
		logger.Error("fetch failed", "error", err)
	} else if items, err = s.transform.Transform(resp); err != nil {
		logger.Error("failed to transform response", "error", err)
	}

	s.commitMu.RLock()
	defer s.commitMu.RUnlock()
	if s.stale(gen) {
		logger.Debug("data source was cleared, discarding page")
		return
	}

	if err != nil {
		cb.RecordFailure(ErrorFrom(t, err))
		return
	}

	if len(items) == 0 {
		logger.Info("transformed result is empty, nothing to persist")
		s.advance(t, page, 0)
		cb.RecordSuccess()
		return
	}

	if err := s.persister.Persist(s.ctx, items); err != nil {
		if s.ctx.Err() != nil {
			logger.Debug("persist cancelled")
			return
		}
		logger.Error("failed to persist rows", "error", err)
		cb.RecordFailure(ErrorFrom(t, err))
		return
	}

	s.advance(t, page, len(items))
	logger.Debug("persisted page", "count", len(items))
	cb.RecordSuccess()
}

func (s *Source[R, T]) stale(gen uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gen != gen
}

// advance moves the loaded page window after a successful cycle
func (s *Source[R, T]) advance(t request.Type, page Page, count int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch t {
	case request.Initial:
		s.firstPage, s.lastPage = page.Number, page.Number
		s.exhausted = count == 0
	case request.After:
		if count == 0 {
			s.exhausted = true
			return
		}
		if page.Number > s.lastPage {
			s.lastPage = page.Number
		}
	case request.Before:
		if count > 0 && page.Number < s.firstPage {
			s.firstPage = page.Number
		}
	}
}
