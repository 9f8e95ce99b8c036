package bridge

import (
	"github.com/dop251/goja"
	"go.uber.org/zap"

	"github.com/wippyai/hostbridge/errors"
	"github.com/wippyai/hostbridge/identity"
)

// Unbounded marks a callback accepting any number of trailing arguments.
const Unbounded = -1

// Callback is a managed callable with the arity metadata the compiler
// attaches to it. Adapters are cached per *Callback, so the pointer is the
// identity of the callable.
type Callback struct {
	Fn      func(args ...any) (any, error)
	Name    string
	MinArgs int
	MaxArgs int
}

// Func creates a callback accepting between minArgs and maxArgs arguments.
func Func(name string, minArgs, maxArgs int, fn func(args ...any) (any, error)) *Callback {
	return &Callback{
		Fn:      fn,
		Name:    name,
		MinArgs: minArgs,
		MaxArgs: maxArgs,
	}
}

// NoArgs creates a callback that takes no arguments.
func NoArgs(name string, fn func() error) *Callback {
	return &Callback{
		Fn:   func(...any) (any, error) { return nil, fn() },
		Name: name,
	}
}

// adapter returns the cached native function forwarding into cb.
func (b *Bridge) adapter(cb *Callback) goja.Value {
	return b.cachedFunction(identity.PurposeAdapter, cb, func(call goja.FunctionCall) goja.Value {
		args := call.Arguments
		if len(args) < cb.MinArgs {
			err := errors.ArityRange(errors.PhaseFunction, cb.Name, cb.MinArgs, cb.MaxArgs, len(args))
			panic(b.vm.NewTypeError(err.Error()))
		}
		if cb.MaxArgs >= 0 && len(args) > cb.MaxArgs {
			args = args[:cb.MaxArgs]
		}

		managed := make([]any, len(args))
		for i, a := range args {
			managed[i] = b.Wrap(a)
		}

		res, err := cb.Fn(managed...)
		if err != nil {
			panic(b.throwable(err))
		}
		return b.toValue(b.Unwrap(res))
	})
}

// AdaptNoArgCallback returns the cached native function that discards
// whatever arguments the host passes and invokes cb with none. Timer APIs
// append platform-specific arguments that managed callbacks do not take.
func (b *Bridge) AdaptNoArgCallback(cb *Callback) goja.Value {
	if cb == nil {
		return goja.Undefined()
	}
	return b.cachedFunction(identity.PurposeNoArgCallback, cb, func(goja.FunctionCall) goja.Value {
		if _, err := cb.Fn(); err != nil {
			panic(b.throwable(err))
		}
		return goja.Undefined()
	})
}

// cachedFunction returns the adapter of cb for the current isolate. The
// entry holds the adapter weakly since the adapter closes over cb: an adapter
// referenced by neither the heap nor managed code is dropped and rebuilt on
// the next request, which no caller can tell apart.
func (b *Bridge) cachedFunction(purpose identity.Purpose, cb *Callback, fn func(goja.FunctionCall) goja.Value) goja.Value {
	tok := b.current()
	for {
		var fresh *goja.Object
		v, created, err := b.callbacks.GetOrCreate(purpose, cb, tok, func() (any, error) {
			fresh = b.vm.ToValue(fn).(*goja.Object)
			return identity.MakeWeak(fresh), nil
		})
		if err != nil {
			// GetOrCreate only fails on nil keys, excluded above
			panic(err)
		}
		if created {
			if ce := b.logger.Check(zap.DebugLevel, "callback adapter synthesized"); ce != nil {
				ce.Write(zap.String("callback", cb.Name), zap.String("purpose", string(purpose)), zap.Stringer("isolate", tok))
			}
			return fresh
		}
		if f := v.(identity.Weak[goja.Object]).Value(); f != nil {
			return f
		}
	}
}

// TimerCall schedules cb through the native timer API named by operation
// ("setTimeout", "setInterval") on self, or on the global object when self
// is nil. delay goes through the general Unwrap. The native handle is
// returned wrapped; thrown native exceptions come back as NativeException.
func (b *Bridge) TimerCall(self *goja.Object, cb *Callback, delay any, operation string) (any, error) {
	if cb == nil {
		return nil, errors.NilPointer(errors.PhaseFunction, "callback")
	}
	if self == nil {
		self = b.vm.GlobalObject()
	}

	fn, ok := goja.AssertFunction(self.Get(operation))
	if !ok {
		return nil, errors.NotFound(errors.PhaseFunction, "timer operation", operation)
	}

	handle, err := fn(self, b.AdaptNoArgCallback(cb), b.toValue(b.Unwrap(delay)))
	if err != nil {
		return nil, b.translate(errors.PhaseFunction, operation, err)
	}
	return b.Wrap(handle), nil
}

// ClearTimer passes a native timer handle unmodified to operation
// ("clearTimeout", "clearInterval").
func (b *Bridge) ClearTimer(self *goja.Object, handle any, operation string) error {
	if self == nil {
		self = b.vm.GlobalObject()
	}

	fn, ok := goja.AssertFunction(self.Get(operation))
	if !ok {
		return errors.NotFound(errors.PhaseFunction, "timer operation", operation)
	}

	if _, err := fn(self, b.toValue(b.Unwrap(handle))); err != nil {
		return b.translate(errors.PhaseFunction, operation, err)
	}
	return nil
}
