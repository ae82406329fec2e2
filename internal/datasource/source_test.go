package datasource

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/mmcdole/shelf/internal/domain"
	"github.com/mmcdole/shelf/internal/request"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakeFetcher struct {
	mu    sync.Mutex
	pages map[int][]string
	errs  map[int]error
	calls []Page
	block chan struct{}
	gates map[int]chan struct{} // per-page block, released by closing
}

func newFakeFetcher() *fakeFetcher {
	return &fakeFetcher{pages: map[int][]string{}, errs: map[int]error{}}
}

func (f *fakeFetcher) Fetch(ctx context.Context, page Page) ([]string, error) {
	f.mu.Lock()
	f.calls = append(f.calls, page)
	items, err, block := f.pages[page.Number], f.errs[page.Number], f.block
	if gate, ok := f.gates[page.Number]; ok {
		block = gate
	}
	f.mu.Unlock()

	if block != nil {
		select {
		case <-block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return items, err
}

func (f *fakeFetcher) set(page int, items []string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pages[page] = items
	f.errs[page] = err
}

// hold makes fetches of page block until the returned channel is closed
func (f *fakeFetcher) hold(page int) chan struct{} {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.gates == nil {
		f.gates = map[int]chan struct{}{}
	}
	gate := make(chan struct{})
	f.gates[page] = gate
	return gate
}

func (f *fakeFetcher) pagesFetched() []int {
	f.mu.Lock()
	defer f.mu.Unlock()
	var pages []int
	for _, c := range f.calls {
		pages = append(pages, c.Number)
	}
	return pages
}

type memoryRows struct {
	mu     sync.Mutex
	rows   []string
	writes int
	clears int
}

func (m *memoryRows) write(items []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.writes++
	m.rows = append(m.rows, items...)
	return nil
}

func (m *memoryRows) clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.clears++
	m.rows = nil
	return nil
}

func (m *memoryRows) load() ([]string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.rows == nil {
		return nil, false
	}
	return append([]string(nil), m.rows...), true
}

func (m *memoryRows) writeCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.writes
}

var identity = TransformFunc[[]string, string](func(r []string) ([]string, error) { return r, nil })

func newTestSource(t *testing.T, f *fakeFetcher, rows *memoryRows) *Source[[]string, string] {
	t.Helper()
	src := New[[]string, string](
		context.Background(),
		Config{Name: "test", PageSize: 2, Logger: testLogger()},
		f,
		identity,
		NewPersister(rows.write, rows.clear),
	)
	t.Cleanup(src.Close)
	return src
}

func collect(sub *request.Subscription, n int) []domain.NetworkState {
	var states []domain.NetworkState
	timeout := time.After(time.Second)
	for len(states) < n {
		select {
		case st, ok := <-sub.C():
			if !ok {
				return states
			}
			states = append(states, st)
		case <-timeout:
			return states
		}
	}
	return states
}

func TestInvokePersistsTransformedRows(t *testing.T) {
	f := newFakeFetcher()
	f.set(1, []string{"a", "b"}, nil)
	rows := &memoryRows{}
	src := newTestSource(t, f, rows)

	require.True(t, src.Invoke())
	src.Wait()

	got, ok := rows.load()
	require.True(t, ok)
	assert.Equal(t, []string{"a", "b"}, got)
	assert.Equal(t, request.StatusSuccess, src.Helper().Report().Status(request.Initial))
}

func TestEmptyResultSkipsWriteButSucceeds(t *testing.T) {
	f := newFakeFetcher()
	f.set(1, []string{}, nil)
	rows := &memoryRows{}
	src := newTestSource(t, f, rows)

	sub := src.NetworkState(context.Background())
	defer sub.Cancel()

	src.Invoke()
	src.Wait()

	assert.Zero(t, rows.writeCount())
	r := src.Helper().Report()
	assert.Equal(t, request.StatusSuccess, r.Status(request.Initial))
	assert.False(t, r.HasError())

	states := collect(sub, 1)
	require.NotEmpty(t, states)
	assert.Equal(t, domain.Success(), states[len(states)-1])
}

func TestFetchFailureBecomesRequestError(t *testing.T) {
	f := newFakeFetcher()
	f.set(1, nil, fmt.Errorf("dial: %w", domain.ErrServerOffline))
	rows := &memoryRows{}
	src := newTestSource(t, f, rows)

	src.Invoke()
	src.Wait()

	r := src.Helper().Report()
	require.Equal(t, request.StatusFailed, r.Status(request.Initial))
	err := r.ErrorFor(request.Initial)
	require.NotNil(t, err)
	assert.Equal(t, "Connection problem", err.Topic)
	assert.Contains(t, err.Description, "server is unreachable")
	assert.Zero(t, rows.writeCount())
}

func TestTransformFailureBecomesRequestError(t *testing.T) {
	f := newFakeFetcher()
	f.set(1, []string{"x"}, nil)
	rows := &memoryRows{}
	src := New[[]string, string](
		context.Background(),
		Config{Name: "broken", Logger: testLogger()},
		f,
		TransformFunc[[]string, string](func([]string) ([]string, error) {
			return nil, errors.New("unexpected payload")
		}),
		NewPersister(rows.write, rows.clear),
	)
	defer src.Close()

	src.Invoke()
	src.Wait()

	assert.Equal(t, request.StatusFailed, src.Helper().Report().Status(request.Initial))
	assert.Zero(t, rows.writeCount())
}

func TestPersistFailureBecomesRequestError(t *testing.T) {
	f := newFakeFetcher()
	f.set(1, []string{"x"}, nil)
	src := New[[]string, string](
		context.Background(),
		Config{Name: "readonly", Logger: testLogger()},
		f,
		identity,
		NewPersister(
			func([]string) error { return errors.New("disk full") },
			func() error { return nil },
		),
	)
	defer src.Close()

	src.Invoke()
	src.Wait()

	err := src.Helper().Report().ErrorFor(request.Initial)
	require.NotNil(t, err)
	assert.Equal(t, "disk full", err.Description)
}

func TestLoadAfterWalksPages(t *testing.T) {
	f := newFakeFetcher()
	f.set(1, []string{"a", "b"}, nil)
	f.set(2, []string{"c", "d"}, nil)
	f.set(3, []string{}, nil)
	rows := &memoryRows{}
	src := newTestSource(t, f, rows)

	assert.False(t, src.LoadAfter(), "nothing loaded yet")
	assert.False(t, src.LoadBefore())

	src.Invoke()
	src.Wait()
	require.True(t, src.LoadAfter())
	src.Wait()
	require.True(t, src.LoadAfter())
	src.Wait()

	assert.False(t, src.LoadAfter(), "empty page ends the list")
	assert.Equal(t, []int{1, 2, 3}, f.pagesFetched())

	got, _ := rows.load()
	assert.Equal(t, []string{"a", "b", "c", "d"}, got)
}

func TestRetryOnlyRefetchesFailedType(t *testing.T) {
	f := newFakeFetcher()
	f.set(1, []string{"a", "b"}, nil)
	f.set(2, nil, errors.New("boom"))
	rows := &memoryRows{}
	src := newTestSource(t, f, rows)

	src.Invoke()
	src.Wait()
	src.LoadAfter()
	src.Wait()

	r := src.Helper().Report()
	require.Equal(t, request.StatusSuccess, r.Status(request.Initial))
	require.Equal(t, request.StatusFailed, r.Status(request.After))

	f.set(2, []string{"c"}, nil)
	require.True(t, src.RetryRequest())
	src.Wait()

	assert.Equal(t, []int{1, 2, 2}, f.pagesFetched())
	r = src.Helper().Report()
	assert.Equal(t, request.StatusSuccess, r.Status(request.After))
	assert.Equal(t, request.StatusSuccess, r.Status(request.Initial))

	assert.False(t, src.RetryRequest(), "nothing failed anymore")
}

func TestInvalidateAndRefreshClearsThenReloads(t *testing.T) {
	f := newFakeFetcher()
	f.set(1, []string{"a"}, nil)
	rows := &memoryRows{}
	src := newTestSource(t, f, rows)

	src.Invoke()
	src.Wait()
	f.set(1, []string{"z"}, nil)

	require.True(t, src.InvalidateAndRefresh())
	src.Wait()

	got, _ := rows.load()
	assert.Equal(t, []string{"z"}, got)
	assert.Equal(t, 1, rows.clears)
	assert.Equal(t, []int{1, 1}, f.pagesFetched())
}

func TestRefreshDropsPagingFailures(t *testing.T) {
	f := newFakeFetcher()
	f.set(1, []string{"a"}, nil)
	f.set(2, []string{"b"}, nil)
	f.set(3, nil, errors.New("boom"))
	rows := &memoryRows{}
	src := newTestSource(t, f, rows)

	src.Invoke()
	src.Wait()
	src.LoadAfter()
	src.Wait()
	src.LoadAfter()
	src.Wait()
	require.Equal(t, request.StatusFailed, src.Helper().Report().Status(request.After))

	var states []domain.NetworkState
	var mu sync.Mutex
	src.Helper().AddListener(request.ListenerFunc(func(r request.Report) {
		mu.Lock()
		defer mu.Unlock()
		states = append(states, request.NetworkStateOf(r))
	}))

	f.set(3, []string{"c"}, nil)
	require.True(t, src.InvalidateAndRefresh())
	src.Wait()

	r := src.Helper().Report()
	assert.False(t, r.HasError())
	assert.Equal(t, domain.Success(), request.NetworkStateOf(r))
	mu.Lock()
	for _, st := range states {
		assert.False(t, st.IsError(), "refresh emitted %v", st)
	}
	mu.Unlock()

	assert.False(t, src.RetryRequest(), "failed page from before the refresh is forgotten")
	got, _ := rows.load()
	assert.Equal(t, []string{"a"}, got)

	require.True(t, src.LoadAfter())
	src.Wait()
	assert.Equal(t, []int{1, 2, 3, 1, 2}, f.pagesFetched(), "paging restarts after the first page")
	got, _ = rows.load()
	assert.Equal(t, []string{"a", "b"}, got)
}

func TestRefreshDiscardsPageInFlight(t *testing.T) {
	f := newFakeFetcher()
	f.set(1, []string{"a"}, nil)
	f.set(2, []string{"b"}, nil)
	rows := &memoryRows{}
	src := newTestSource(t, f, rows)

	src.Invoke()
	src.Wait()

	gate := f.hold(2)
	require.True(t, src.LoadAfter())
	require.Eventually(t, func() bool {
		return len(f.pagesFetched()) == 2
	}, time.Second, 5*time.Millisecond)

	f.set(1, []string{"z"}, nil)
	require.True(t, src.InvalidateAndRefresh())
	require.Eventually(t, func() bool {
		got, _ := rows.load()
		return len(got) == 1 && got[0] == "z"
	}, time.Second, 5*time.Millisecond)

	close(gate)
	src.Wait()

	got, _ := rows.load()
	assert.Equal(t, []string{"z"}, got, "page fetched before the refresh is not persisted")
	r := src.Helper().Report()
	assert.False(t, r.HasRunning())
	assert.False(t, r.HasError())

	// The window was not moved by the discarded page
	require.True(t, src.LoadAfter())
	src.Wait()
	assert.Equal(t, []int{1, 2, 1, 2}, f.pagesFetched())
	got, _ = rows.load()
	assert.Equal(t, []string{"z", "b"}, got)
}

func TestClearDataSourceWithoutRows(t *testing.T) {
	rows := &memoryRows{}
	src := newTestSource(t, newFakeFetcher(), rows)

	assert.NoError(t, src.ClearDataSource())
	assert.NoError(t, src.ClearDataSource())
	_, ok := rows.load()
	assert.False(t, ok)
}

func TestInvokeWhileRunningIsNoop(t *testing.T) {
	f := newFakeFetcher()
	f.block = make(chan struct{})
	f.set(1, []string{"a"}, nil)
	rows := &memoryRows{}
	src := newTestSource(t, f, rows)

	assert.True(t, src.Invoke())
	assert.False(t, src.Invoke())
	close(f.block)
	src.Wait()

	assert.Equal(t, []int{1}, f.pagesFetched())
}

func TestCloseCancelsWithoutRecordingFailure(t *testing.T) {
	f := newFakeFetcher()
	f.block = make(chan struct{})
	rows := &memoryRows{}
	src := New[[]string, string](
		context.Background(),
		Config{Name: "cancel", Logger: testLogger()},
		f,
		identity,
		NewPersister(rows.write, rows.clear),
	)

	var failures int
	src.Helper().AddListener(request.ListenerFunc(func(r request.Report) {
		if r.HasError() {
			failures++
		}
	}))

	src.Invoke()
	src.Close()

	assert.Zero(t, failures)
	assert.False(t, src.Helper().Report().HasError())
	assert.ErrorIs(t, src.ClearDataSource(), ErrClosed)
	assert.False(t, src.InvalidateAndRefresh())
}

func TestErrorFrom(t *testing.T) {
	tests := []struct {
		err   error
		topic string
	}{
		{domain.ErrServerOffline, "Connection problem"},
		{domain.ErrAuthFailed, "Authentication failed"},
		{domain.ErrRateLimited, "Too many requests"},
		{fmt.Errorf("wrap: %w", domain.ErrNotFound), "Not found"},
		{context.DeadlineExceeded, "Request timed out"},
		{errors.New("odd"), "Request failed"},
		{topicErr{"Server error"}, "Server error"},
	}
	for _, tt := range tests {
		got := ErrorFrom(request.After, tt.err)
		assert.Equal(t, tt.topic, got.Topic, "err %v", tt.err)
		assert.Equal(t, request.After, got.Type)
		assert.Equal(t, tt.err.Error(), got.Description)
	}

	original := &request.Error{Topic: "kept", Description: "as is", Type: request.Initial}
	got := ErrorFrom(request.Before, original)
	assert.Equal(t, "kept", got.Topic)
	assert.Equal(t, request.Before, got.Type)
	assert.Equal(t, request.Initial, original.Type, "input is not mutated")
}

type topicErr struct{ topic string }

func (e topicErr) Error() string { return "status 500" }
func (e topicErr) Topic() string { return e.topic }
