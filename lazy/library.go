package lazy

import (
	"sort"

	"go.uber.org/zap"

	"github.com/wippyai/hostbridge/errors"
)

// Descriptor describes one library binding. A binding with Get is lazy: Get
// runs on first read only. A binding without Get holds Value from the start.
// Set, when present, receives every write; otherwise writes require
// Writable.
type Descriptor struct {
	Get      func() (any, error)
	Set      func(v any) error
	Value    any
	Writable bool
}

type binding struct {
	cell *Cell[any]
	set  func(any) error
}

func (b *binding) writable() bool {
	return b.set != nil || b.cell.Writable()
}

// Library is a named set of top-level bindings, each computed at most once.
// Not safe for concurrent use.
type Library struct {
	bindings map[string]*binding
	logger   *zap.Logger
	name     string
}

// NewLibrary creates an empty library.
func NewLibrary(name string) *Library {
	return &Library{
		bindings: make(map[string]*binding),
		logger:   Logger(),
		name:     name,
	}
}

func (l *Library) Name() string {
	return l.name
}

// Define adds a binding. Names are unique within a library.
func (l *Library) Define(name string, d Descriptor) error {
	if name == "" {
		return errors.InvalidInput(errors.PhaseLazy, "binding name is empty")
	}
	if _, exists := l.bindings[name]; exists {
		return errors.New(errors.PhaseLazy, errors.KindRegistration).
			Path(l.name, name).
			Detail("binding already defined").
			Build()
	}

	b := &binding{set: d.Set}
	if d.Get == nil {
		b.cell = ValueCell(name, d.Value, d.Writable)
	} else {
		get := d.Get
		compute := func() (any, error) {
			v, err := get()
			if err == nil {
				if ce := l.logger.Check(zap.DebugLevel, "lazy binding initialized"); ce != nil {
					ce.Write(zap.String("library", l.name), zap.String("binding", name))
				}
			}
			return v, err
		}
		if d.Writable {
			b.cell = NewWritableCell(name, compute)
		} else {
			b.cell = NewCell(name, compute)
		}
	}

	l.bindings[name] = b
	return nil
}

// DefineAll adds every descriptor in defs, in name order. It stops at the
// first failure; bindings defined before it remain.
func (l *Library) DefineAll(defs map[string]Descriptor) error {
	names := make([]string, 0, len(defs))
	for name := range defs {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		if err := l.Define(name, defs[name]); err != nil {
			return err
		}
	}
	return nil
}

// Get reads a binding, computing it on first use.
func (l *Library) Get(name string) (any, error) {
	b, ok := l.bindings[name]
	if !ok {
		return nil, errors.NotFound(errors.PhaseLazy, "binding", name)
	}
	return b.cell.Get()
}

// Set writes a binding. The descriptor's setter, if any, sees the value
// first; later reads return it without running the computation.
func (l *Library) Set(name string, v any) error {
	b, ok := l.bindings[name]
	if !ok {
		return errors.NotFound(errors.PhaseLazy, "binding", name)
	}
	if b.set != nil {
		if err := b.set(v); err != nil {
			return err
		}
		b.cell.store(v)
		return nil
	}
	return b.cell.Set(v)
}

// State returns the state of a binding.
func (l *Library) State(name string) (State, bool) {
	b, ok := l.bindings[name]
	if !ok {
		return Uninitialized, false
	}
	return b.cell.State(), true
}

// Writable reports whether a binding accepts writes.
func (l *Library) Writable(name string) bool {
	b, ok := l.bindings[name]
	return ok && b.writable()
}

// Names returns the binding names, sorted.
func (l *Library) Names() []string {
	names := make([]string, 0, len(l.bindings))
	for name := range l.bindings {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
