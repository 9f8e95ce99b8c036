package mixin

import (
	"sort"

	"github.com/wippyai/hostbridge/errors"
)

// Method is an instance method. self is the receiving instance.
type Method func(self *Instance, args ...any) (any, error)

// Initializer runs when an instance is constructed.
type Initializer func(self *Instance, args ...any) error

// Class is a single-inheritance class with a method table. A class used as
// a mixin contributes its own Methods and its Init, never its Super chain.
type Class struct {
	Methods map[string]Method
	Statics map[string]any
	Super   *Class
	Init    Initializer
	Name    string
	// InitParams is the number of arguments Init expects. Mixins must
	// declare zero.
	InitParams int

	// set on composed classes only
	mixins     []*Class
	provenance map[string]*Class
}

// Lookup finds a method on the class or its super chain.
func (c *Class) Lookup(name string) (Method, bool) {
	for cur := c; cur != nil; cur = cur.Super {
		if m, ok := cur.Methods[name]; ok {
			return m, true
		}
	}
	return nil, false
}

// Static finds a static member on the class or its super chain.
func (c *Class) Static(name string) (any, bool) {
	for cur := c; cur != nil; cur = cur.Super {
		if v, ok := cur.Statics[name]; ok {
			return v, true
		}
	}
	return nil, false
}

// Provenance returns the class that supplies method name: a mixin for
// methods copied by Compose, otherwise the defining class in the chain.
func (c *Class) Provenance(name string) (*Class, bool) {
	for cur := c; cur != nil; cur = cur.Super {
		if p, ok := cur.provenance[name]; ok {
			return p, true
		}
		if _, ok := cur.Methods[name]; ok {
			return cur, true
		}
	}
	return nil, false
}

// Mixins returns the mixins applied to a composed class, in listed order.
func (c *Class) Mixins() []*Class {
	return append([]*Class(nil), c.mixins...)
}

// MethodNames returns every method name visible on the class, sorted.
func (c *Class) MethodNames() []string {
	seen := make(map[string]struct{})
	for cur := c; cur != nil; cur = cur.Super {
		for name := range cur.Methods {
			seen[name] = struct{}{}
		}
	}
	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Extends reports whether c is other or inherits from it.
func (c *Class) Extends(other *Class) bool {
	for cur := c; cur != nil; cur = cur.Super {
		if cur == other {
			return true
		}
	}
	return false
}

// Initialize runs the class initializer on self. A class without its own
// Init forwards the arguments to its super class.
func (c *Class) Initialize(self *Instance, args ...any) error {
	for cur := c; cur != nil; cur = cur.Super {
		if cur.Init != nil {
			return cur.Init(self, args...)
		}
	}
	return nil
}

func (c *Class) String() string {
	return c.Name
}

// Instance is an object of a Class.
type Instance struct {
	class  *Class
	fields map[string]any
}

// New constructs an instance of class and runs its initializer chain.
func New(class *Class, args ...any) (*Instance, error) {
	if class == nil {
		return nil, errors.NilPointer(errors.PhaseMixin, "class")
	}
	inst := &Instance{
		class:  class,
		fields: make(map[string]any),
	}
	if err := class.Initialize(inst, args...); err != nil {
		return nil, err
	}
	return inst, nil
}

// Class returns the instance's class.
func (i *Instance) Class() *Class {
	return i.class
}

// Call invokes a method found on the instance's class chain.
func (i *Instance) Call(name string, args ...any) (any, error) {
	m, ok := i.class.Lookup(name)
	if !ok {
		return nil, errors.NotFound(errors.PhaseMixin, "method", i.class.Name+"."+name)
	}
	return m(i, args...)
}

// Get returns a field, or nil if unset.
func (i *Instance) Get(name string) any {
	return i.fields[name]
}

func (i *Instance) Set(name string, v any) {
	i.fields[name] = v
}

// IsA reports whether the instance's class is class, inherits from it, or
// had it applied as a mixin anywhere in the chain.
func (i *Instance) IsA(class *Class) bool {
	for cur := i.class; cur != nil; cur = cur.Super {
		if cur == class {
			return true
		}
		for _, m := range cur.mixins {
			if m == class {
				return true
			}
		}
	}
	return false
}
