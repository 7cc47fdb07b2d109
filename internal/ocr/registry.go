package ocr

import (
	"log/slog"
	"sync"
)

// Registry holds the process-wide backend list. Backends are shared across
// documents: engine processes may download models on first use, so each
// backend is probed lazily and reused. The availability/disable filter runs
// once, at construction of the available list.
type Registry struct {
	backends []Backend

	mu        sync.Mutex
	available []Backend
	filtered  bool
}

// NewRegistry builds the registry with the standard backends.
func NewRegistry(runner Runner) *Registry {
	if runner == nil {
		runner = ExecRunner{}
	}
	return &Registry{backends: newBackends(runner)}
}

// NewRegistryWithBackends is for tests.
func NewRegistryWithBackends(backends ...Backend) *Registry {
	return &Registry{backends: backends}
}

// All returns every backend in priority order, available or not.
func (r *Registry) All() []Backend {
	return r.backends
}

// Available returns installed, non-disabled backends in priority order.
// The filter is computed once per process.
func (r *Registry) Available() []Backend {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.filtered {
		for _, b := range r.backends {
			if b.Available() {
				r.available = append(r.available, b)
			} else {
				slog.Debug("ocr backend unavailable", "backend", b.Name())
			}
		}
		r.filtered = true
	}
	return r.available
}

// Close releases backend state at batch end.
func (r *Registry) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.available = nil
	r.filtered = false
}
