// Package bridge wraps host heap objects into managed wrappers and adapts
// callables crossing the boundary.
//
// # Wrappers
//
// Generated code declares one wrapper type per modeled native class and
// registers a factory under the class name:
//
//	type Element struct{ bridge.Object }
//
//	reg := bridge.NewRegistry()
//	bridge.RegisterType[Element](reg, "Element")
//
// The bridge classifies a native object by its most-derived class name,
// builds the wrapper on first use and caches it per isolate:
//
//	b, _ := bridge.New(vm, scope, reg, bridge.DefaultOptions())
//	w := b.Wrap(obj)          // *Element, same pointer on every call
//	obj2 := b.Unwrap(w)       // obj
//
// Objects whose class has no factory pass through unwrapped.
//
// # Callables
//
// Managed callables carry explicit arity metadata. Unwrap turns a *Callback
// into a cached native function; AdaptNoArgCallback does the same for timer
// callbacks, dropping whatever arguments the host passes:
//
//	tick := bridge.NoArgs("tick", func() error { ... })
//	handle, err := b.TimerCall(nil, tick, 100, "setTimeout")
//
// # Exceptions
//
// Every native call made through the bridge catches thrown values and
// returns them as errors.NativeException whose Value is the wrapped
// exception. Managed code never sees a raw engine exception.
package bridge
