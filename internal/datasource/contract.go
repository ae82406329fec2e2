// Package datasource runs fetch, transform and persist cycles for paged lists
// and reports their outcome through a request.Helper.
package datasource

import "context"

// Page addresses one chunk of a remote list (1-based)
type Page struct {
	Number int
	Limit  int
}

// Fetcher performs the network call for a page
type Fetcher[R any] interface {
	Fetch(ctx context.Context, page Page) (R, error)
}

// FetchFunc adapts a function to Fetcher
type FetchFunc[R any] func(ctx context.Context, page Page) (R, error)

func (f FetchFunc[R]) Fetch(ctx context.Context, page Page) (R, error) { return f(ctx, page) }

// Transformer converts a transport response into rows to persist.
// Implementations must be pure.
type Transformer[R, T any] interface {
	Transform(resp R) ([]T, error)
}

// TransformFunc adapts a function to Transformer
type TransformFunc[R, T any] func(resp R) ([]T, error)

func (f TransformFunc[R, T]) Transform(resp R) ([]T, error) { return f(resp) }

// Persister writes rows to durable storage and clears the rows it owns
type Persister[T any] interface {
	Persist(ctx context.Context, items []T) error
	Clear(ctx context.Context) error
}

type persistFuncs[T any] struct {
	write func(items []T) error
	clear func() error
}

func (p persistFuncs[T]) Persist(_ context.Context, items []T) error { return p.write(items) }
func (p persistFuncs[T]) Clear(context.Context) error                { return p.clear() }

// NewPersister builds a Persister from a write and a clear function
func NewPersister[T any](write func(items []T) error, clear func() error) Persister[T] {
	return persistFuncs[T]{write: write, clear: clear}
}
