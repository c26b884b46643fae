package lang

import (
	"errors"
	"log/slog"
	"maps"
	"slices"
	"sync"
)

// Handler implements one directive.
//
// Handlers receive the unresolved argument text through [Args] and resolve
// it on demand. A handler that fails returns a safe value together with the
// error; the dispatcher reports the error and uses the value.
type Handler interface {
	Call(c *Context, a *Args) (string, error)
}

// HandlerFunc adapts an ordinary function to the [Handler] interface.
type HandlerFunc func(c *Context, a *Args) (string, error)

// Call implements [Handler].
func (f HandlerFunc) Call(c *Context, a *Args) (string, error) { return f(c, a) }

// BuiltinOrigin is the [Origin.Plugin] name of built-in directives.
const BuiltinOrigin = "builtin"

// Origin describes where a registered handler came from.
type Origin struct {
	Plugin   string // plugin name, or [BuiltinOrigin]
	Version  string
	Priority int
}

// Builtin reports whether the handler is a built-in directive.
func (o Origin) Builtin() bool { return o.Plugin == BuiltinOrigin }

type entry struct {
	handler Handler
	origin  Origin
	seq     int
}

// outranks reports whether e should replace old under the override rules:
// plugins outrank built-ins, higher priority outranks lower, and the later
// registration wins a tie.
func (e entry) outranks(old entry) bool {
	switch {
	case e.origin.Builtin() != old.origin.Builtin():
		return old.origin.Builtin()
	case e.origin.Priority != old.origin.Priority:
		return e.origin.Priority > old.origin.Priority
	default:
		return e.seq > old.seq
	}
}

// Registry maps directive names to handlers.
//
// A Registry is safe for concurrent use, but each [Interpreter] works on its
// own clone so that registering plugins never affects another instance.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]entry
	seq     int
}

// NewRegistry returns a registry holding the built-in directives.
func NewRegistry() *Registry {
	r := &Registry{entries: make(map[string]entry)}

	registerBuiltins(r)

	return r
}

// EmptyRegistry returns a registry with no directives.
func EmptyRegistry() *Registry {
	return &Registry{entries: make(map[string]entry)}
}

// Register binds name to h with the lowest plugin rank, so it overrides a
// built-in of the same name but never a loaded plugin of higher priority.
func (r *Registry) Register(name string, h Handler) error {
	if !IsValidName(name) || h == nil {
		return ErrInvalidPlugin.With(slog.String("directive", name))
	}

	r.put(name, h, Origin{})

	return nil
}

// RegisterFunc is [Registry.Register] for a plain function.
func (r *Registry) RegisterFunc(
	name string,
	fn func(*Context, *Args) (string, error),
) error {
	return r.Register(name, HandlerFunc(fn))
}

func (r *Registry) builtin(name string, fn HandlerFunc) {
	r.put(name, fn, Origin{Plugin: BuiltinOrigin})
}

func (r *Registry) put(name string, h Handler, o Origin) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.seq++
	e := entry{handler: h, origin: o, seq: r.seq}

	if old, ok := r.entries[name]; ok && !e.outranks(old) {
		return false
	}

	r.entries[name] = e

	return true
}

// Load validates and merges plugins. An invalid plugin is rejected as a
// whole; the returned error joins every rejection, while valid plugins are
// still merged.
func (r *Registry) Load(plugins ...Plugin) error {
	var errs []error

	for _, p := range plugins {
		if err := p.Validate(); err != nil {
			errs = append(errs, err)

			continue
		}

		origin := Origin{Plugin: p.Name, Version: p.Version, Priority: p.Priority}

		for _, name := range slices.Sorted(maps.Keys(p.Handlers)) {
			r.put(name, p.Handlers[name], origin)
		}
	}

	return errors.Join(errs...)
}

// Lookup returns the handler bound to name.
func (r *Registry) Lookup(name string) (Handler, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.entries[name]

	return e.handler, ok
}

// Origin returns where the handler bound to name came from.
func (r *Registry) Origin(name string) (Origin, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.entries[name]

	return e.origin, ok
}

// Names returns all registered directive names in lexical order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return slices.Sorted(maps.Keys(r.entries))
}

// Clone returns an independent copy of the registry.
func (r *Registry) Clone() *Registry {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return &Registry{entries: maps.Clone(r.entries), seq: r.seq}
}
