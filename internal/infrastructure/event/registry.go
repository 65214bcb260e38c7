package event

import (
	"slices"
	"sync"

	"github.com/shopkeeper/backend/internal/domain/shared"
)

// anyEvent is the route key for handlers that receive every event
const anyEvent = ""

// HandlerRegistry routes event types to handlers. Handlers for a specific
// type run before handlers subscribed to every event.
type HandlerRegistry struct {
	mu     sync.RWMutex
	routes map[string][]shared.EventHandler
}

// NewHandlerRegistry creates an empty registry
func NewHandlerRegistry() *HandlerRegistry {
	return &HandlerRegistry{routes: make(map[string][]shared.EventHandler)}
}

// Register routes eventTypes to handler, or every event when none are given.
// A handler is routed at most once per type.
func (r *HandlerRegistry) Register(handler shared.EventHandler, eventTypes ...string) {
	if len(eventTypes) == 0 {
		eventTypes = []string{anyEvent}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range eventTypes {
		if !slices.Contains(r.routes[t], handler) {
			r.routes[t] = append(r.routes[t], handler)
		}
	}
}

// Unregister drops handler from every route
func (r *HandlerRegistry) Unregister(handler shared.EventHandler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for t, handlers := range r.routes {
		handlers = slices.DeleteFunc(slices.Clone(handlers), func(h shared.EventHandler) bool { return h == handler })
		if len(handlers) == 0 {
			delete(r.routes, t)
			continue
		}
		r.routes[t] = handlers
	}
}

// GetHandlers returns a copy of the handlers an event of eventType reaches
func (r *HandlerRegistry) GetHandlers(eventType string) []shared.EventHandler {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if eventType == anyEvent {
		return slices.Clone(r.routes[anyEvent])
	}
	return slices.Concat(r.routes[eventType], r.routes[anyEvent])
}
