package swarm

import (
	"sort"

	"github.com/lexcodex/dashbot/framework"
)

// Registry is a fixed, name-keyed pool of handlers. The set is established
// when the orchestrator is constructed; there is no dynamic registration or
// removal afterwards.
type Registry struct {
	handlers map[string]framework.Handler
}

// NewRegistry indexes the given handlers by name.
func NewRegistry(handlers ...framework.Handler) *Registry {
	byName := make(map[string]framework.Handler, len(handlers))
	for _, h := range handlers {
		byName[h.Name()] = h
	}
	return &Registry{handlers: byName}
}

// Get retrieves a handler by name.
func (r *Registry) Get(name string) (framework.Handler, bool) {
	h, ok := r.handlers[name]
	return h, ok
}

// Names returns the registered handler names, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.handlers))
	for name := range r.handlers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len reports the pool size.
func (r *Registry) Len() int {
	return len(r.handlers)
}

// ResetAll clears the accumulated history of every handler.
func (r *Registry) ResetAll() {
	for _, h := range r.handlers {
		h.ResetHistory()
	}
}
