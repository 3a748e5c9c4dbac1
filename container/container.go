// Package container resolves named components and their dependencies.
package container

import (
	"sort"
	"strings"
	"sync"

	"lawsuit_tracker_go/apperrors"
)

// Factory builds a component from its resolved dependencies, in declaration order.
// Resolve holds the container lock while factories run, so a factory must use
// its positional deps and never call Resolve or ResolveAs itself.
type Factory func(deps ...any) (any, error)

type registration struct {
	factory   Factory
	singleton bool
	deps      []string
}

// Option tunes a registration
type Option func(*registration)

// Singleton caches the first instance built
func Singleton() Option {
	return func(r *registration) { r.singleton = true }
}

// DependsOn names the components passed to the factory
func DependsOn(names ...string) Option {
	return func(r *registration) { r.deps = append(r.deps, names...) }
}

// Container is a registry of named factories. It is safe for concurrent use.
type Container struct {
	mu            sync.Mutex
	registrations map[string]registration
	instances     map[string]any
}

// New returns an empty container
func New() *Container {
	return &Container{
		registrations: make(map[string]registration),
		instances:     make(map[string]any),
	}
}

// Register adds or replaces the factory for name
func (c *Container) Register(name string, factory Factory, opts ...Option) {
	reg := registration{factory: factory}
	for _, opt := range opts {
		opt(&reg)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.registrations[name] = reg
	delete(c.instances, name)
}

// RegisterSingleton registers a cached factory depending on deps
func (c *Container) RegisterSingleton(name string, factory Factory, deps ...string) {
	c.Register(name, factory, Singleton(), DependsOn(deps...))
}

// Resolve builds name and its dependencies depth-first. Factories run under
// the container lock and must not resolve through the container.
func (c *Container) Resolve(name string) (any, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.resolve(name, nil)
}

func (c *Container) resolve(name string, path []string) (any, error) {
	for _, seen := range path {
		if seen == name {
			cycle := append(append([]string{}, path...), name)
			return nil, apperrors.NewConfigurationError(name, "circular dependency: %s", strings.Join(cycle, " -> "))
		}
	}

	reg, ok := c.registrations[name]
	if !ok {
		if len(path) > 0 {
			return nil, apperrors.NewConfigurationError(name, "service %q not registered (required by %s)", name, path[len(path)-1])
		}
		return nil, apperrors.NewConfigurationError(name, "service %q not registered", name)
	}
	if instance, ok := c.instances[name]; ok && reg.singleton {
		return instance, nil
	}

	path = append(path, name)
	deps := make([]any, 0, len(reg.deps))
	for _, dep := range reg.deps {
		instance, err := c.resolve(dep, path)
		if err != nil {
			return nil, err
		}
		deps = append(deps, instance)
	}

	instance, err := reg.factory(deps...)
	if err != nil {
		return nil, apperrors.NewConfigurationError(name, "failed to build %q: %v", name, err)
	}
	if reg.singleton {
		c.instances[name] = instance
	}
	return instance, nil
}

// Has reports whether name is registered
func (c *Container) Has(name string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.registrations[name]
	return ok
}

// Names lists the registered names in sorted order
func (c *Container) Names() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	names := make([]string, 0, len(c.registrations))
	for name := range c.registrations {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Clear drops every registration and cached instance
func (c *Container) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.registrations = make(map[string]registration)
	c.instances = make(map[string]any)
}

// ResolveAs resolves name and asserts its type
func ResolveAs[T any](c *Container, name string) (T, error) {
	var zero T
	instance, err := c.Resolve(name)
	if err != nil {
		return zero, err
	}
	typed, ok := instance.(T)
	if !ok {
		return zero, apperrors.NewConfigurationError(name, "service %q has type %T, not %T", name, instance, zero)
	}
	return typed, nil
}
