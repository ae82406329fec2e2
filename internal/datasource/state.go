package datasource

import (
	"context"
	"log/slog"
	"sync"

	"github.com/mmcdole/shelf/internal/domain"
	"github.com/mmcdole/shelf/internal/request"
	"github.com/mmcdole/shelf/internal/stream"
)

// modelBuffer bounds how many content snapshots queue up for a slow screen
const modelBuffer = 8

// Controller is the part of a Source a screen drives
type Controller interface {
	Helper() *request.Helper
	Invoke() bool
	RetryRequest() bool
	InvalidateAndRefresh() bool
	Close()
}

// Loader reads the persisted content of a source (cache-only, never blocks on network)
type Loader[T any] func() ([]T, bool)

type refreshPhase int

const (
	refreshIdle refreshPhase = iota
	refreshRequested
	refreshRunning
)

// DataState is what a screen observes for one paged list.
//
// Model carries content snapshots re-read from storage whenever a request
// finishes; a reload is never skipped, though several may collapse into one. NetworkState follows every request; RefreshState only reports
// user-triggered refreshes and starts Idle.
type DataState[T any] struct {
	src    Controller
	load   Loader[T]
	logger *slog.Logger
	cancel context.CancelFunc
	wg     sync.WaitGroup

	model        chan []T
	reload       chan struct{} // pending content reload, coalesced
	network      *request.Subscription
	refreshState *stream.Latest[domain.NetworkState]
	reg          *request.Registration

	mu    sync.Mutex
	phase refreshPhase
	last  request.Report
}

// NewDataState wires src to a screen living as long as ctx. It does not
// start a fetch; call Invoke on the source or Refresh.
func NewDataState[T any](ctx context.Context, src Controller, load Loader[T], logger *slog.Logger) *DataState[T] {
	if logger == nil {
		logger = slog.Default()
	}
	ctx, cancel := context.WithCancel(ctx)
	d := &DataState[T]{
		src:          src,
		load:         load,
		logger:       logger,
		cancel:       cancel,
		model:        make(chan []T, modelBuffer),
		reload:       make(chan struct{}, 1),
		refreshState: stream.NewLatest[domain.NetworkState](),
	}

	d.refreshState.Offer(domain.Idle())
	d.network = request.Subscribe(ctx, src.Helper())
	d.reg = src.Helper().AddListener(request.ListenerFunc(d.onStatusChange))

	d.wg.Add(1)
	go d.pumpModel(ctx)

	return d
}

// Model returns the content channel; it is closed by Close
func (d *DataState[T]) Model() <-chan []T {
	return d.model
}

// NetworkState returns the state of every request of the source
func (d *DataState[T]) NetworkState() <-chan domain.NetworkState {
	return d.network.C()
}

// RefreshState returns the state of user-triggered refreshes
func (d *DataState[T]) RefreshState() <-chan domain.NetworkState {
	return d.refreshState.C()
}

// Retry re-issues only the failed requests
func (d *DataState[T]) Retry() {
	if !d.src.RetryRequest() {
		d.logger.Debug("nothing to retry")
	}
}

// Refresh invalidates stored content and fetches from scratch
func (d *DataState[T]) Refresh() {
	d.mu.Lock()
	d.phase = refreshRequested
	d.mu.Unlock()
	d.refreshState.Offer(domain.Loading())

	d.src.InvalidateAndRefresh()

	// The running transition may already have been delivered, or the
	// initial request may have finished before we got here.
	report := d.src.Helper().Report()
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.phase != refreshRequested {
		return
	}
	if report.Status(request.Initial) == request.StatusRunning {
		d.phase = refreshRunning
		return
	}
	d.settleLocked(report)
}

// Close tears the screen down: subscriptions end, pending fetches are
// cancelled without recording failures, and Model is closed.
func (d *DataState[T]) Close() {
	d.cancel()
	d.network.Cancel()
	d.reg.Remove()
	d.refreshState.Close()
	d.src.Close()
	d.wg.Wait()
}

func (d *DataState[T]) onStatusChange(r request.Report) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !startedOnly(d.last, r) {
		// A request finished or was reset, storage may have changed
		select {
		case d.reload <- struct{}{}:
		default:
		}
	}
	d.last = r

	running := r.Status(request.Initial) == request.StatusRunning
	switch d.phase {
	case refreshRequested:
		if running {
			d.phase = refreshRunning
		}
	case refreshRunning:
		if !running {
			d.settleLocked(r)
		}
	}
}

func (d *DataState[T]) settleLocked(r request.Report) {
	d.phase = refreshIdle
	if err := r.ErrorFor(request.Initial); err != nil {
		d.refreshState.Offer(domain.Failure(err.Topic, err.Description))
		return
	}
	d.refreshState.Offer(domain.Success())
}

func (d *DataState[T]) pumpModel(ctx context.Context) {
	defer d.wg.Done()
	defer close(d.model)

	if !d.emit(ctx) {
		return
	}
	for {
		select {
		case <-ctx.Done():
			return
		case <-d.reload:
			if !d.emit(ctx) {
				return
			}
		}
	}
}

// startedOnly reports whether the only change from prev to r is requests starting
func startedOnly(prev, r request.Report) bool {
	started := false
	for _, t := range request.Types() {
		was := prev.Status(t) == request.StatusRunning
		is := r.Status(t) == request.StatusRunning
		switch {
		case was && !is:
			return false
		case !was && is:
			started = true
		}
	}
	return started
}

// emit pushes the stored content in order; returns false once ctx is done
func (d *DataState[T]) emit(ctx context.Context) bool {
	items, ok := d.load()
	if !ok {
		return ctx.Err() == nil
	}
	select {
	case d.model <- items:
		return true
	case <-ctx.Done():
		return false
	}
}
