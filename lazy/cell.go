package lazy

import (
	"github.com/wippyai/hostbridge/errors"
)

// State is the initialization state of a Cell.
type State int

const (
	Uninitialized State = iota
	Initializing
	Initialized
)

func (s State) String() string {
	switch s {
	case Uninitialized:
		return "uninitialized"
	case Initializing:
		return "initializing"
	case Initialized:
		return "initialized"
	default:
		return "unknown"
	}
}

// Cell computes a value on first read and caches it. Reading the cell from
// inside its own computation fails with CircularInitialization.
// Not safe for concurrent use.
type Cell[T any] struct {
	compute  func() (T, error)
	value    T
	name     string
	state    State
	writable bool
}

// NewCell creates a read-only cell named name.
func NewCell[T any](name string, compute func() (T, error)) *Cell[T] {
	return &Cell[T]{compute: compute, name: name}
}

// NewWritableCell creates a cell that also accepts Set.
func NewWritableCell[T any](name string, compute func() (T, error)) *Cell[T] {
	return &Cell[T]{compute: compute, name: name, writable: true}
}

// ValueCell creates an initialized cell holding v.
func ValueCell[T any](name string, v T, writable bool) *Cell[T] {
	return &Cell[T]{value: v, name: name, state: Initialized, writable: writable}
}

func (c *Cell[T]) Name() string {
	return c.name
}

func (c *Cell[T]) State() State {
	return c.state
}

func (c *Cell[T]) Writable() bool {
	return c.writable
}

// Get returns the cached value, computing it on the first call. A failed
// computation leaves the cell uninitialized so the next Get retries.
func (c *Cell[T]) Get() (T, error) {
	switch c.state {
	case Initialized:
		return c.value, nil
	case Initializing:
		var zero T
		return zero, errors.CircularInitialization(c.name)
	}

	compute := c.compute
	if compute == nil {
		var zero T
		return zero, errors.NilPointer(errors.PhaseLazy, "computation of "+c.name)
	}
	c.compute = nil
	c.state = Initializing

	v, err := compute()
	if c.state == Initialized {
		// Set ran during the computation
		return c.value, nil
	}
	if err != nil {
		c.compute = compute
		c.state = Uninitialized
		var zero T
		return zero, err
	}

	c.value = v
	c.state = Initialized
	return v, nil
}

// Set stores v as the cell's value, discarding any pending computation.
func (c *Cell[T]) Set(v T) error {
	if !c.writable {
		return errors.New(errors.PhaseLazy, errors.KindUnsupported).
			Path(c.name).
			Detail("cell is read-only").
			Build()
	}
	c.store(v)
	return nil
}

func (c *Cell[T]) store(v T) {
	c.value = v
	c.compute = nil
	c.state = Initialized
}
