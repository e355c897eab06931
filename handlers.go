// Package jsonpickle converts Go values to and from JSON-compatible trees.
// Most values flatten through generic traversal; types that cannot be
// represented faithfully field by field (instants, durations, ordered maps,
// anything rebuilt through a factory) are delegated to type-specific handlers
// looked up in a process-wide registry.
package jsonpickle

import (
	"reflect"
)

// Context is the handler's view of the pickling session that created it.
// Flatten and Restore are re-entrant: a handler may call back into the
// context for nested values, which may in turn dispatch to another handler.
//
// reset clears any per-document state the engine keeps between top-level
// calls. Handlers always pass false so that nested values stay inside the
// current session.
type Context interface {
	Flatten(v interface{}, reset bool) (interface{}, error)
	Restore(v interface{}, reset bool) (interface{}, error)
	Unpicklable() bool
}

// Handler converts values of a registered type to and from their
// JSON-compatible form.
//
// Flatten writes the representation of obj into data and returns the node to
// splice into the document. When the context is not unpicklable, handlers
// return a plain readable string instead of touching data.
//
// Restore is the left inverse of Flatten: restoring a flattened value yields
// a value equal to the original in observable state, though not necessarily
// the same instance.
type Handler interface {
	Flatten(obj interface{}, data map[string]interface{}) (interface{}, error)
	Restore(obj interface{}) (interface{}, error)
}

// HandlerFactory builds a Handler bound to one session. Instances are cheap
// and short-lived; the engine creates one per flatten/restore call site.
type HandlerFactory func(ctx Context) Handler

// UnimplementedHandler can be embedded to satisfy the Handler interface while
// a concrete handler is still under construction. Calling either method is a
// programming error, not a runtime condition, and panics.
type UnimplementedHandler struct{}

func (UnimplementedHandler) Flatten(obj interface{}, data map[string]interface{}) (interface{}, error) {
	panic("jsonpickle: Flatten called on a handler that does not implement it")
}

func (UnimplementedHandler) Restore(obj interface{}) (interface{}, error) {
	panic("jsonpickle: Restore called on a handler that does not implement it")
}

// Registry maps exact runtime types to handler factories.
//
// It is not synchronized. The intended discipline is a single writer at
// process start (init functions and application setup) followed by many
// readers; registering while a session is in flight is a caller bug, and the
// registry does not guard against it.
type Registry struct {
	handlers map[reflect.Type]HandlerFactory
}

func NewRegistry() *Registry {
	return &Registry{handlers: make(map[reflect.Type]HandlerFactory)}
}

// Register binds factory to t, replacing any earlier binding for t.
func (r *Registry) Register(t reflect.Type, factory HandlerFactory) {
	r.handlers[t] = factory
}

// Lookup returns the factory bound to exactly t. There is no fallback: a
// handler registered for one type does not cover types derived from it, and
// a miss only means the caller should fall back to generic traversal.
func (r *Registry) Lookup(t reflect.Type) (HandlerFactory, bool) {
	factory, ok := r.handlers[t]
	return factory, ok
}

var registry = NewRegistry()

// Register binds factory to t in the process-wide registry.
func Register(t reflect.Type, factory HandlerFactory) {
	registry.Register(t, factory)
}

// Lookup retrieves the handler factory registered for t, if any.
func Lookup(t reflect.Type) (HandlerFactory, bool) {
	return registry.Lookup(t)
}
