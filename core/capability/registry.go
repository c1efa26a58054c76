package capability

import (
	"fmt"
	"sync"
)

// =============================================================================
// Registry
// =============================================================================

// Registry maps capability kinds to their handlers. The task executor resolves
// every dispatch through a Registry; it never knows handler internals.
type Registry struct {
	mu       sync.RWMutex
	handlers map[Kind]Handler
}

// NewRegistry creates an empty capability registry.
func NewRegistry() *Registry {
	return &Registry{
		handlers: make(map[Kind]Handler),
	}
}

// Register binds a handler to a kind. Registering the same kind twice is an
// error; use Replace to swap an existing handler.
func (r *Registry) Register(kind Kind, handler Handler) error {
	if !kind.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidKind, kind)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.handlers[kind]; exists {
		return fmt.Errorf("%w: %q", ErrDuplicateCapability, kind)
	}

	r.handlers[kind] = handler
	return nil
}

// Replace binds a handler to a kind, overwriting any existing binding.
func (r *Registry) Replace(kind Kind, handler Handler) error {
	if !kind.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidKind, kind)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.handlers[kind] = handler
	return nil
}

// Resolve returns the handler for a kind.
func (r *Registry) Resolve(kind Kind) (Handler, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	handler, ok := r.handlers[kind]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCapability, kind)
	}
	return handler, nil
}

// Registered returns the kinds that currently have handlers.
func (r *Registry) Registered() []Kind {
	r.mu.RLock()
	defer r.mu.RUnlock()

	kinds := make([]Kind, 0, len(r.handlers))
	for _, k := range Kinds() {
		if _, ok := r.handlers[k]; ok {
			kinds = append(kinds, k)
		}
	}
	return kinds
}
