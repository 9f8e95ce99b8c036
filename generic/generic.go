package generic

import (
	"fmt"
	"reflect"
	"sync"

	"go.uber.org/zap"

	"github.com/wippyai/hostbridge/errors"
)

// Instantiation is the canonical result of applying a generic constructor
// to one ordered list of type arguments. Args and Generic are provenance
// for reflection.
type Instantiation[T any] struct {
	Value   T
	Generic *Generic[T]
	Args    []any
}

// String renders the instantiation as Name<arg, ...>.
func (i *Instantiation[T]) String() string {
	return formatApplied(i.Generic.name, i.Args)
}

// node is one level of the memoization chain, keyed by argument identity.
type node[T any] struct {
	children map[any]*node[T]
	inst     *Instantiation[T]
}

func (n *node[T]) child(key any) *node[T] {
	if n.children == nil {
		n.children = make(map[any]*node[T])
	}
	c, ok := n.children[key]
	if !ok {
		c = &node[T]{}
		n.children[key] = c
	}
	return c
}

// Generic memoizes a type constructor of fixed arity. Make with the same
// ordered arguments always returns the identical *Instantiation.
type Generic[T any] struct {
	ctor   func(args ...any) T
	root   *node[T]
	all    []*Instantiation[T]
	logger *zap.Logger
	name   string
	arity  int
	mu     sync.Mutex
}

// New creates a memoized generic constructor taking exactly arity type
// arguments.
func New[T any](name string, arity int, ctor func(args ...any) T) *Generic[T] {
	if arity < 0 {
		arity = 0
	}
	return &Generic[T]{
		ctor:   ctor,
		root:   &node[T]{},
		logger: Logger(),
		name:   name,
		arity:  arity,
	}
}

// Name returns the constructor name.
func (g *Generic[T]) Name() string {
	return g.name
}

// Arity returns the number of type parameters.
func (g *Generic[T]) Arity() int {
	return g.arity
}

// Make returns the canonical instantiation for args, invoking the
// constructor on first use of this exact argument sequence.
//
// Arguments are keyed by identity: pointers by address, other comparable
// values by equality. nil is rejected; pass Dynamic for an unconstrained
// argument.
func (g *Generic[T]) Make(args ...any) (*Instantiation[T], error) {
	if err := g.check(args); err != nil {
		return nil, err
	}

	g.mu.Lock()
	leaf := g.root
	for _, a := range args {
		leaf = leaf.child(a)
	}
	if inst := leaf.inst; inst != nil {
		g.mu.Unlock()
		return inst, nil
	}
	g.mu.Unlock()

	// ctor runs unlocked so it may instantiate other generics, including
	// this one with different arguments
	owned := append([]any(nil), args...)
	value := g.ctor(owned...)

	g.mu.Lock()
	defer g.mu.Unlock()
	if inst := leaf.inst; inst != nil {
		return inst, nil
	}
	inst := &Instantiation[T]{
		Value:   value,
		Generic: g,
		Args:    owned,
	}
	leaf.inst = inst
	g.all = append(g.all, inst)

	if ce := g.logger.Check(zap.DebugLevel, "generic instantiated"); ce != nil {
		ce.Write(zap.Stringer("type", inst))
	}
	return inst, nil
}

// MustMake is Make panicking on error.
func (g *Generic[T]) MustMake(args ...any) *Instantiation[T] {
	inst, err := g.Make(args...)
	if err != nil {
		panic(err)
	}
	return inst
}

// Lookup returns an existing instantiation without creating one.
func (g *Generic[T]) Lookup(args ...any) (*Instantiation[T], bool) {
	if g.check(args) != nil {
		return nil, false
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	n := g.root
	for _, a := range args {
		next, ok := n.children[a]
		if !ok {
			return nil, false
		}
		n = next
	}
	return n.inst, n.inst != nil
}

// Len returns the number of distinct instantiations.
func (g *Generic[T]) Len() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.all)
}

// Instantiations returns every instantiation in creation order.
func (g *Generic[T]) Instantiations() []*Instantiation[T] {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]*Instantiation[T], len(g.all))
	copy(out, g.all)
	return out
}

func (g *Generic[T]) check(args []any) error {
	if len(args) != g.arity {
		return errors.ArityMismatch(errors.PhaseGeneric, g.name, g.arity, len(args))
	}
	for i, a := range args {
		if isNil(a) {
			return errors.UndefinedTypeArgument(g.name, i)
		}
		if !reflect.ValueOf(a).Comparable() {
			return errors.NotComparable(errors.PhaseGeneric, []string{g.name, fmt.Sprint(i)}, reflect.TypeOf(a).String())
		}
	}
	return nil
}

func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan, reflect.Interface:
		return rv.IsNil()
	}
	return false
}
