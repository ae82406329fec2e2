// Package shows wires the remote show lists to local storage and exposes them
// as observable paged lists.
package shows

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/mmcdole/shelf/internal/datasource"
	"github.com/mmcdole/shelf/internal/domain"
	"github.com/mmcdole/shelf/internal/trakt"
)

// Remote is the subset of the API client the repository needs
type Remote interface {
	PopularShows(ctx context.Context, page, limit int) ([]trakt.Show, error)
	TrendingShows(ctx context.Context, page, limit int) ([]trakt.TrendingShow, error)
	AnticipatedShows(ctx context.Context, page, limit int) ([]trakt.AnticipatedShow, error)
	Countries(ctx context.Context, category domain.MediaCategory) ([]trakt.Country, error)
}

// pager moves a listing's page window
type pager interface {
	LoadAfter() bool
	LoadBefore() bool
	Wait()
}

// Listing is the screen-facing handle for one category
type Listing struct {
	*datasource.DataState[*domain.Show]
	Category domain.ShowCategory
	pager    pager
	cancel   context.CancelFunc
	release  func(*Listing)
	once     sync.Once
}

// Close stops the listing; safe to call more than once
func (l *Listing) Close() {
	l.once.Do(func() {
		l.DataState.Close()
		l.cancel()
		if l.release != nil {
			l.release(l)
		}
	})
}

// LoadMore requests the page after the last loaded one
func (l *Listing) LoadMore() bool {
	return l.pager.LoadAfter()
}

// LoadPrevious requests the page before the first loaded one
func (l *Listing) LoadPrevious() bool {
	return l.pager.LoadBefore()
}

// Wait blocks until in-flight fetches finish
func (l *Listing) Wait() {
	l.pager.Wait()
}

// Repository creates listings and owns their lifetime.
// OnCleared cancels every listing it handed out.
type Repository struct {
	remote   Remote
	store    domain.ShowStore
	pageSize int
	logger   *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc

	mu       sync.Mutex
	listings []*Listing
	cleared  bool
}

// NewRepository creates a repository
func NewRepository(remote Remote, store domain.ShowStore, pageSize int, logger *slog.Logger) *Repository {
	if logger == nil {
		logger = slog.Default()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Repository{
		remote:   remote,
		store:    store,
		pageSize: pageSize,
		logger:   logger,
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Invoke opens a listing for category and starts loading its first page.
// The listing lives until ctx is done, Close is called or OnCleared runs;
// it is released from the repository in every case.
func (r *Repository) Invoke(ctx context.Context, category domain.ShowCategory) (*Listing, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cleared {
		return nil, datasource.ErrClosed
	}

	// Tie the listing to both the caller and the repository
	lctx, cancel := context.WithCancel(ctx)
	stop := context.AfterFunc(r.ctx, cancel)

	cfg := datasource.Config{
		Name:     string(category),
		PageSize: r.pageSize,
		Logger:   r.logger,
	}
	persister := r.persisterFor(category)

	var (
		ctrl  datasource.Controller
		pages pager
	)
	switch category {
	case domain.CategoryPopular:
		src := datasource.New[[]trakt.Show, *domain.Show](lctx, cfg,
			datasource.FetchFunc[[]trakt.Show](func(ctx context.Context, p datasource.Page) ([]trakt.Show, error) {
				return r.remote.PopularShows(ctx, p.Number, p.Limit)
			}),
			datasource.TransformFunc[[]trakt.Show, *domain.Show](func(resp []trakt.Show) ([]*domain.Show, error) {
				return trakt.MapShows(resp), nil
			}),
			persister,
		)
		ctrl, pages = src, src
	case domain.CategoryTrending:
		src := datasource.New[[]trakt.TrendingShow, *domain.Show](lctx, cfg,
			datasource.FetchFunc[[]trakt.TrendingShow](func(ctx context.Context, p datasource.Page) ([]trakt.TrendingShow, error) {
				return r.remote.TrendingShows(ctx, p.Number, p.Limit)
			}),
			datasource.TransformFunc[[]trakt.TrendingShow, *domain.Show](func(resp []trakt.TrendingShow) ([]*domain.Show, error) {
				return trakt.MapTrendingShows(resp), nil
			}),
			persister,
		)
		ctrl, pages = src, src
	case domain.CategoryAnticipated:
		src := datasource.New[[]trakt.AnticipatedShow, *domain.Show](lctx, cfg,
			datasource.FetchFunc[[]trakt.AnticipatedShow](func(ctx context.Context, p datasource.Page) ([]trakt.AnticipatedShow, error) {
				return r.remote.AnticipatedShows(ctx, p.Number, p.Limit)
			}),
			datasource.TransformFunc[[]trakt.AnticipatedShow, *domain.Show](func(resp []trakt.AnticipatedShow) ([]*domain.Show, error) {
				return trakt.MapAnticipatedShows(resp), nil
			}),
			persister,
		)
		ctrl, pages = src, src
	default:
		stop()
		cancel()
		return nil, fmt.Errorf("unknown show category %q", category)
	}

	load := func() ([]*domain.Show, bool) {
		return r.store.GetShows(category)
	}
	listing := &Listing{
		DataState: datasource.NewDataState[*domain.Show](lctx, ctrl, load, r.logger),
		Category:  category,
		pager:     pages,
		cancel:    cancel,
		release:   r.release,
	}
	r.listings = append(r.listings, listing)
	context.AfterFunc(lctx, func() {
		stop()
		listing.Close()
	})

	ctrl.Invoke()
	r.logger.Debug("listing opened", "category", category)
	return listing, nil
}

// release forgets a closed listing
func (r *Repository) release(l *Listing) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if i := slices.Index(r.listings, l); i >= 0 {
		r.listings = slices.Delete(r.listings, i, i+1)
	}
}

// OpenListings returns how many listings are still open
func (r *Repository) OpenListings() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.listings)
}

// persisterFor writes popular rows insert-only so server order survives
// page overlap; other lists replace rows by identity.
func (r *Repository) persisterFor(category domain.ShowCategory) datasource.Persister[*domain.Show] {
	write := func(items []*domain.Show) error {
		return r.store.UpsertShows(category, items)
	}
	if category == domain.CategoryPopular {
		write = func(items []*domain.Show) error {
			return r.store.InsertShows(category, items)
		}
	}
	return datasource.NewPersister(write, func() error {
		return r.store.DeleteShows(category)
	})
}

// Countries fetches the country list for a media category and caches it
func (r *Repository) Countries(ctx context.Context, category domain.MediaCategory) ([]*domain.Country, error) {
	dtos, err := r.remote.Countries(ctx, category)
	if err != nil {
		r.logger.Error("failed to fetch countries", "error", err, "category", category)
		return nil, err
	}
	countries := trakt.MapCountries(category, dtos)
	if err := r.store.UpsertCountries(category, countries); err != nil {
		r.logger.Error("failed to save countries", "error", err, "category", category)
		return nil, fmt.Errorf("failed to save countries: %w", err)
	}
	r.logger.Debug("fetched countries", "count", len(countries), "category", category)
	return countries, nil
}

// OnCleared cancels every listing and refuses new ones
func (r *Repository) OnCleared() {
	r.mu.Lock()
	if r.cleared {
		r.mu.Unlock()
		return
	}
	r.cleared = true
	listings := r.listings
	r.listings = nil
	r.mu.Unlock()

	r.cancel()
	for _, l := range listings {
		l.Close()
	}
	r.logger.Debug("repository cleared", "listings", len(listings))
}
