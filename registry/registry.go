package registry

import (
	"maps"
	"slices"
	"sync"

	"go.uber.org/zap"
)

// Owner is the write side of a service container, as seen by test setup.
type Owner interface {
	Register(name string, v any)
	Unregister(name string)
}

type Resolver interface {
	Lookup(name string) (any, bool)
}

// Factory stands in for a registered class: the container instantiates it on
// first lookup and hands out the same instance until the name is registered
// again or unregistered.
type Factory func() any

type Container struct {
	mu        sync.RWMutex
	entries   map[string]any
	instances map[string]any
	logger    *zap.Logger
}

type Opt func(*Container)

func WithLogger(logger *zap.Logger) Opt {
	return func(c *Container) {
		c.logger = logger
	}
}

func New(opts ...Opt) *Container {
	c := &Container{
		entries:   map[string]any{},
		instances: map[string]any{},
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.Named("registry")
	return c
}

// Register binds v to name, replacing any previous registration.
func (c *Container) Register(name string, v any) {
	if name == "" {
		panic("registry: register with empty name")
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	_, replaced := c.entries[name]
	c.entries[name] = v
	delete(c.instances, name)
	c.logger.Debug("register", zap.String("name", name), zap.Bool("replaced", replaced))
}

func (c *Container) Unregister(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, name)
	delete(c.instances, name)
	c.logger.Debug("unregister", zap.String("name", name))
}

func (c *Container) Lookup(name string) (any, bool) {
	c.mu.RLock()
	v, ok := c.entries[name]
	inst, built := c.instances[name]
	c.mu.RUnlock()
	if !ok {
		return nil, false
	}
	factory, isFactory := v.(Factory)
	if !isFactory {
		return v, true
	}
	if built {
		return inst, true
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	// registration may have changed while unlocked
	v, ok = c.entries[name]
	if !ok {
		return nil, false
	}
	if factory, isFactory = v.(Factory); !isFactory {
		return v, true
	}
	if inst, ok := c.instances[name]; ok {
		return inst, true
	}
	inst = factory()
	c.instances[name] = inst
	c.logger.Debug("instantiate", zap.String("name", name))
	return inst, true
}

func (c *Container) Has(name string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.entries[name]
	return ok
}

// Registration returns what was registered under name, without instantiating
// factories.
func (c *Container) Registration(name string) (any, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.entries[name]
	return v, ok
}

func (c *Container) Names() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Sorted(maps.Keys(c.entries))
}

// LookupAs is Lookup with a type assertion; a value of the wrong type reports
// false.
func LookupAs[T any](r Resolver, name string) (T, bool) {
	var zero T
	v, ok := r.Lookup(name)
	if !ok {
		return zero, false
	}
	res, ok := v.(T)
	if !ok {
		return zero, false
	}
	return res, true
}
