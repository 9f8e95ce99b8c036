package identity

import "weak"

// Expirer is implemented by cached values that can die before their key.
// An expired entry reads as absent and is replaced in place by the next
// Set or GetOrCreate for the same isolate.
type Expirer interface {
	Expired() bool
}

// Weak is a cache value holding its target weakly. Values that refer back
// to their key (wrappers, adapters closing over their callback) are stored
// this way so the entry does not keep the key alive.
type Weak[V any] struct {
	p weak.Pointer[V]
}

// MakeWeak creates a weak cache value for v.
func MakeWeak[V any](v *V) Weak[V] {
	return Weak[V]{p: weak.Make(v)}
}

// Value returns the target, or nil once it has been collected.
func (w Weak[V]) Value() *V {
	return w.p.Value()
}

func (w Weak[V]) Expired() bool {
	return w.p.Value() == nil
}

func live(v any) bool {
	e, ok := v.(Expirer)
	return !ok || !e.Expired()
}
