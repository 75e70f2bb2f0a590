package ingest

import (
	"context"
	"sync"
)

// Factory builds a client. It is called at most once per successful Registry initialization.
type Factory func(ctx context.Context) (Client, error)

// Registry lazily builds and caches a single client. Construction is deferred to the
// first call so configuration is read only once it is needed.
type Registry struct {
	mu      sync.Mutex
	factory Factory
	client  Client
}

// NewRegistry returns an uninitialized registry using factory.
func NewRegistry(factory Factory) *Registry {
	return &Registry{factory: factory}
}

// Client returns the cached client, building it on first use. Concurrent callers block
// until the first construction finishes and then share its result. A failed construction
// is returned to the caller and the next call tries again.
func (r *Registry) Client(ctx context.Context) (Client, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.client != nil {
		return r.client, nil
	}
	client, err := r.factory(ctx)
	if err != nil {
		return nil, err
	}
	r.client = client
	return client, nil
}
