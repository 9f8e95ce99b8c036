package bridge

import (
	"sort"
	"sync"

	"github.com/dop251/goja"

	"github.com/wippyai/hostbridge/errors"
)

// Wrapper is a managed object proxying one native object.
// Implementations embed Object, which holds the back-reference.
type Wrapper interface {
	Native() *goja.Object
	attach(self Wrapper, native *goja.Object, b *Bridge) *Object
}

// Factory creates an empty wrapper; the bridge stamps its back-reference.
type Factory func() Wrapper

// Registry is the class-name to wrapper-factory table populated by
// generated code at load time.
type Registry struct {
	factories map[string]Factory
	aliases   map[string]string
	mu        sync.RWMutex
}

func NewRegistry() *Registry {
	return &Registry{
		factories: make(map[string]Factory),
		aliases:   make(map[string]string),
	}
}

// Register binds a native class name to a factory.
func (r *Registry) Register(name string, f Factory) error {
	if name == "" {
		return errors.InvalidInput(errors.PhaseRegistration, "class name cannot be empty")
	}
	if f == nil {
		return errors.Registration(name, "factory cannot be nil")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.factories[name]; exists {
		return errors.Registration(name, "factory already registered")
	}
	if _, exists := r.aliases[name]; exists {
		return errors.Registration(name, "name is already an alias")
	}
	r.factories[name] = f
	return nil
}

// MustRegister is like Register but panics on error.
func (r *Registry) MustRegister(name string, f Factory) {
	if err := r.Register(name, f); err != nil {
		panic(err)
	}
}

// RegisterType registers a factory allocating a zero W for name.
func RegisterType[W any, P interface {
	*W
	Wrapper
}](r *Registry, name string) error {
	return r.Register(name, func() Wrapper { return P(new(W)) })
}

// Alias maps another native class name onto a registered one. Hosts that
// report engine-specific names (HTMLDivElement for Element) use this.
func (r *Registry) Alias(name, target string) error {
	if name == "" || target == "" {
		return errors.InvalidInput(errors.PhaseRegistration, "alias and target cannot be empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.factories[name]; exists {
		return errors.Registration(name, "alias shadows a registered factory")
	}
	if _, ok := r.factories[target]; !ok {
		return errors.NotFound(errors.PhaseRegistration, "alias target", target)
	}
	r.aliases[name] = target
	return nil
}

// Lookup returns the factory for a native class name, following one alias.
func (r *Registry) Lookup(name string) (Factory, bool) {
	if name == "" {
		return nil, false
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	if f, ok := r.factories[name]; ok {
		return f, true
	}
	if target, ok := r.aliases[name]; ok {
		f, ok := r.factories[target]
		return f, ok
	}
	return nil, false
}

// Names returns registered class names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
