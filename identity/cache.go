package identity

import (
	"fmt"
	"math/bits"
	"runtime"
	"sync"
	"weak"

	"go.uber.org/zap"

	"github.com/wippyai/hostbridge/errors"
	"github.com/wippyai/hostbridge/isolate"
)

// Purpose separates independent tables attached to the same object.
type Purpose string

const (
	PurposeWrapper       Purpose = "wrapper"
	PurposeAdapter       Purpose = "adapter"
	PurposeNoArgCallback Purpose = "noarg-callback"
)

// Entry is one (token, value) pair of a table.
type Entry struct {
	Token *isolate.Token
	Value any
	Slot  int
}

// Stats summarizes cache occupancy.
type Stats struct {
	Objects    int
	Tables     int
	Entries    int
	Collisions uint64
	Collected  uint64
	Grown      uint64
	Replaced   uint64
}

// Options configures table sizing.
type Options struct {
	Logger          *zap.Logger
	InitialCapacity int
	LoadFactor      float64
}

// DefaultOptions returns default cache configuration.
func DefaultOptions() Options {
	return Options{
		InitialCapacity: 4,
		LoadFactor:      0.75,
	}
}

type sideTable struct {
	tables map[Purpose]*table
}

// Cache associates per-purpose, per-isolate values with native objects.
//
// The association is keyed by a weak pointer to the object, so it never keeps
// the object alive by itself. A cleanup registered on first use drops the
// association once the object is collected. Values are held strongly unless
// they are Weak; a value that references its own key must be stored as Weak,
// or it keeps that key alive until Release.
type Cache[T any] struct {
	objects    map[weak.Pointer[T]]*sideTable
	logger     *zap.Logger
	opts       Options
	collisions uint64
	collected  uint64
	grown      uint64
	replaced   uint64
	mu         sync.Mutex
}

// New creates a cache with the given options.
func New[T any](opts Options) *Cache[T] {
	if opts.InitialCapacity <= 0 {
		opts.InitialCapacity = DefaultOptions().InitialCapacity
	}
	if opts.LoadFactor <= 0 || opts.LoadFactor >= 1 {
		opts.LoadFactor = DefaultOptions().LoadFactor
	}
	// capacity is kept a power of two for mask-based probing
	opts.InitialCapacity = 1 << bits.Len(uint(opts.InitialCapacity-1))

	logger := opts.Logger
	if logger == nil {
		logger = Logger()
	}

	return &Cache[T]{
		objects: make(map[weak.Pointer[T]]*sideTable),
		logger:  logger,
		opts:    opts,
	}
}

// NewWithDefaults creates a cache with default options.
func NewWithDefaults[T any]() *Cache[T] {
	return New[T](DefaultOptions())
}

// Get returns the entry stamped with tok. It never allocates a table.
func (c *Cache[T]) Get(purpose Purpose, obj *T, tok *isolate.Token) (any, bool) {
	if obj == nil || tok == nil {
		return nil, false
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	st, ok := c.objects[weak.Make(obj)]
	if !ok {
		return nil, false
	}
	t, ok := st.tables[purpose]
	if !ok {
		return nil, false
	}
	return t.get(tok)
}

// Set inserts value for (obj, tok). An existing entry is a protocol
// violation and is never overwritten.
func (c *Cache[T]) Set(purpose Purpose, obj *T, tok *isolate.Token, value any) error {
	if obj == nil {
		return errors.NilPointer(errors.PhaseCache, "object")
	}
	if tok == nil {
		return errors.NilPointer(errors.PhaseCache, "isolate token")
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	return c.insertLocked(purpose, obj, tok, value)
}

// GetOrCreate returns the entry for (obj, tok), calling create when absent.
// create runs without the lock held so it may use the cache itself; if an
// entry appears meanwhile, that entry wins and the created value is dropped.
func (c *Cache[T]) GetOrCreate(purpose Purpose, obj *T, tok *isolate.Token, create func() (any, error)) (any, bool, error) {
	if v, ok := c.Get(purpose, obj, tok); ok {
		return v, false, nil
	}

	value, err := create()
	if err != nil {
		return nil, false, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if st, ok := c.objects[weak.Make(obj)]; ok {
		if t, ok := st.tables[purpose]; ok {
			if existing, ok := t.get(tok); ok {
				return existing, false, nil
			}
		}
	}
	if err := c.insertLocked(purpose, obj, tok, value); err != nil {
		return nil, false, err
	}
	return value, true, nil
}

func (c *Cache[T]) insertLocked(purpose Purpose, obj *T, tok *isolate.Token, value any) error {
	key := weak.Make(obj)
	st, ok := c.objects[key]
	if !ok {
		st = &sideTable{tables: make(map[Purpose]*table)}
		c.objects[key] = st
		runtime.AddCleanup(obj, c.forget, key)
	}

	t, ok := st.tables[purpose]
	if !ok {
		t = newTable(c.opts.InitialCapacity)
		st.tables[purpose] = t
	}

	idx, found, steps := t.find(tok)
	if found && !live(t.slots[idx].value) {
		t.replace(idx, value)
		c.replaced++
		if ce := c.logger.Check(zap.DebugLevel, "expired identity entry replaced"); ce != nil {
			ce.Write(zap.String("purpose", string(purpose)), zap.Stringer("isolate", tok), zap.Int("slot", idx))
		}
		return nil
	}
	if found {
		return errors.New(errors.PhaseCache, errors.KindProtocolViolation).
			Path(string(purpose)).
			Value(value).
			Detail("entry for isolate %s already exists", tok).
			Build()
	}
	c.collisions += uint64(steps)

	if t.needsGrowth(c.opts.LoadFactor) {
		t.grow()
		c.grown++
		idx, _, _ = t.find(tok)
	}
	t.put(idx, tok, value)

	if ce := c.logger.Check(zap.DebugLevel, "identity entry stored"); ce != nil {
		ce.Write(
			zap.String("purpose", string(purpose)),
			zap.Stringer("isolate", tok),
			zap.Int("slot", idx),
			zap.Int("steps", steps),
		)
	}
	return nil
}

func (c *Cache[T]) forget(key weak.Pointer[T]) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.objects[key]; ok {
		delete(c.objects, key)
		c.collected++
	}
}

// Release drops every entry associated with obj.
func (c *Cache[T]) Release(obj *T) {
	if obj == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.objects, weak.Make(obj))
}

// Entries lists the entries of one purpose table in slot order.
func (c *Cache[T]) Entries(purpose Purpose, obj *T) []Entry {
	if obj == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	st, ok := c.objects[weak.Make(obj)]
	if !ok {
		return nil
	}
	t, ok := st.tables[purpose]
	if !ok {
		return nil
	}
	return t.entries()
}

// Capacity returns the slot count of a purpose table, or 0 if absent.
func (c *Cache[T]) Capacity(purpose Purpose, obj *T) int {
	if obj == nil {
		return 0
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	st, ok := c.objects[weak.Make(obj)]
	if !ok {
		return 0
	}
	if t, ok := st.tables[purpose]; ok {
		return len(t.slots)
	}
	return 0
}

// Len returns the number of objects with at least one table.
func (c *Cache[T]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.objects)
}

// Stats returns a snapshot of cache occupancy.
func (c *Cache[T]) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := Stats{
		Objects:    len(c.objects),
		Collisions: c.collisions,
		Collected:  c.collected,
		Grown:      c.grown,
		Replaced:   c.replaced,
	}
	for _, st := range c.objects {
		s.Tables += len(st.tables)
		for _, t := range st.tables {
			s.Entries += t.count
		}
	}
	return s
}

func (s Stats) String() string {
	return fmt.Sprintf("objects=%d tables=%d entries=%d collisions=%d collected=%d grown=%d replaced=%d",
		s.Objects, s.Tables, s.Entries, s.Collisions, s.Collected, s.Grown, s.Replaced)
}
