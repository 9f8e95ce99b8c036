package bridge

import (
	stderrors "errors"
	"fmt"
	"reflect"

	"github.com/dop251/goja"
	"go.uber.org/zap"

	"github.com/wippyai/hostbridge/errors"
	"github.com/wippyai/hostbridge/identity"
	"github.com/wippyai/hostbridge/isolate"
)

// Options configures a Bridge.
type Options struct {
	Classifier Classifier
	Logger     *zap.Logger
	Cache      identity.Options
}

// DefaultOptions returns default bridge configuration.
func DefaultOptions() Options {
	return Options{
		Cache: identity.DefaultOptions(),
	}
}

// Bridge wraps native objects of one goja heap into managed wrappers and
// unwraps them back, keeping one wrapper per (object, isolate).
// Not safe for concurrent use, matching the heap it serves.
type Bridge struct {
	vm         *goja.Runtime
	isolates   isolate.Source
	root       *isolate.Token
	registry   *Registry
	classifier Classifier
	objects    *identity.Cache[goja.Object]
	callbacks  *identity.Cache[Callback]
	logger     *zap.Logger
}

// New creates a bridge over vm. Wrapper factories come from registry; the
// current isolate is read from isolates on every lookup.
func New(vm *goja.Runtime, isolates isolate.Source, registry *Registry, opts Options) (*Bridge, error) {
	if vm == nil {
		return nil, errors.NilPointer(errors.PhaseBridge, "runtime")
	}
	if isolates == nil {
		return nil, errors.NilPointer(errors.PhaseBridge, "isolate source")
	}
	if registry == nil {
		registry = NewRegistry()
	}

	logger := opts.Logger
	if logger == nil {
		logger = Logger()
	}
	classifier := opts.Classifier
	if classifier == nil {
		classifier = ConstructorName{}
	}

	cacheOpts := opts.Cache
	if cacheOpts.Logger == nil {
		cacheOpts.Logger = logger
	}

	return &Bridge{
		vm:         vm,
		isolates:   isolates,
		root:       isolate.NewToken("root", 0),
		registry:   registry,
		classifier: classifier,
		objects:    identity.New[goja.Object](cacheOpts),
		callbacks:  identity.New[Callback](cacheOpts),
		logger:     logger,
	}, nil
}

// Runtime returns the heap the bridge serves.
func (b *Bridge) Runtime() *goja.Runtime {
	return b.vm
}

func (b *Bridge) Registry() *Registry {
	return b.registry
}

// Objects returns the wrapper identity cache.
func (b *Bridge) Objects() *identity.Cache[goja.Object] {
	return b.objects
}

func (b *Bridge) current() *isolate.Token {
	if tok := b.isolates.Current(); tok != nil {
		return tok
	}
	return b.root
}

// Wrap converts a native value to its managed view.
//
// undefined and null become nil. Non-object values are returned unchanged.
// Objects yield the cached wrapper of the current isolate, a freshly built
// one, or the object itself when no factory matches its class.
func (b *Bridge) Wrap(v any) any {
	w, err := b.TryWrap(v)
	if err != nil {
		// only reachable with a factory returning nil
		panic(err)
	}
	return w
}

// TryWrap is Wrap reporting factory failures instead of panicking.
func (b *Bridge) TryWrap(v any) (any, error) {
	var obj *goja.Object
	switch x := v.(type) {
	case nil:
		return nil, nil
	case *goja.Object:
		if x == nil {
			return nil, nil
		}
		obj = x
	case goja.Value:
		if goja.IsUndefined(x) || goja.IsNull(x) {
			return nil, nil
		}
		return x, nil
	default:
		return v, nil
	}

	tok := b.current()
	if w := b.cachedWrapper(obj, tok); w != nil {
		return w, nil
	}

	name := b.classifier.Classify(obj)
	factory, ok := b.registry.Lookup(name)
	if !ok {
		return obj, nil
	}

	for {
		var fresh Wrapper
		v, created, err := b.objects.GetOrCreate(identity.PurposeWrapper, obj, tok, func() (any, error) {
			w := factory()
			if w == nil {
				return nil, errors.New(errors.PhaseBridge, errors.KindNilPointer).
					NativeType(name).
					Detail("factory returned nil").
					Build()
			}
			fresh = w
			return identity.MakeWeak(w.attach(w, obj, b)), nil
		})
		if err != nil {
			return nil, err
		}

		if created {
			if ce := b.logger.Check(zap.DebugLevel, "wrapper created"); ce != nil {
				ce.Write(zap.String("class", name), zap.Stringer("isolate", tok))
			}
			return fresh, nil
		}
		if o := v.(identity.Weak[Object]).Value(); o != nil {
			return o.self, nil
		}
		// collected between lookup and use; the next round replaces it
	}
}

// cachedWrapper returns the live wrapper of obj for tok, or nil. Entries
// hold their wrapper weakly: a wrapper nobody references is collected, and
// the native object with it once the heap drops it too.
func (b *Bridge) cachedWrapper(obj *goja.Object, tok *isolate.Token) Wrapper {
	v, ok := b.objects.Get(identity.PurposeWrapper, obj, tok)
	if !ok {
		return nil
	}
	ref, _ := v.(identity.Weak[Object])
	if o := ref.Value(); o != nil {
		return o.self
	}
	return nil
}

// WrapException is Wrap applied to a thrown native value. It is kept as a
// separate entry point for exception-specific translation.
func (b *Bridge) WrapException(v any) any {
	return b.Wrap(v)
}

// Unwrap converts a managed value to its native form.
//
// nil stays nil. Wrappers return their back-reference. A *Callback returns
// its cached native adapter. Anything else is returned unchanged, including
// bare Go funcs: goja builds a fresh native function for those on every
// conversion, so the heap never sees the same function twice. Call and
// Construct reject them; pass Func or NoArgs instead.
func (b *Bridge) Unwrap(v any) any {
	switch x := v.(type) {
	case nil:
		return nil
	case Wrapper:
		if n := x.Native(); n != nil {
			return n
		}
		return nil
	case *Callback:
		if x == nil {
			return nil
		}
		return b.adapter(x)
	case *goja.Object:
		if x == nil {
			return nil
		}
		return x
	case goja.Value:
		if goja.IsUndefined(x) || goja.IsNull(x) {
			return nil
		}
		return x
	default:
		return v
	}
}

// toValue converts an unwrapped value to a goja value.
func (b *Bridge) toValue(v any) goja.Value {
	switch x := v.(type) {
	case nil:
		return goja.Undefined()
	case goja.Value:
		return x
	default:
		return b.vm.ToValue(x)
	}
}

func (b *Bridge) nativeArgs(args []any) ([]goja.Value, error) {
	out := make([]goja.Value, len(args))
	for i, a := range args {
		if a != nil && reflect.TypeOf(a).Kind() == reflect.Func {
			return nil, errors.InvalidInput(errors.PhaseBridge,
				fmt.Sprintf("argument %d is a bare %T; use bridge.Func or bridge.NoArgs for a stable adapter", i, a))
		}
		out[i] = b.toValue(b.Unwrap(a))
	}
	return out, nil
}

// NativeError translates an exception thrown by the heap into a
// NativeException whose Value is the wrapped thrown value. Other errors are
// returned unchanged.
func (b *Bridge) NativeError(op string, err error) error {
	return b.translate(errors.PhaseBridge, op, err)
}

func (b *Bridge) translate(phase errors.Phase, op string, err error) error {
	if err == nil {
		return nil
	}

	var exc *goja.Exception
	if stderrors.As(err, &exc) {
		return errors.NativeException(phase, op, b.WrapException(exc.Value()), exc)
	}
	var intr *goja.InterruptedError
	if stderrors.As(err, &intr) {
		return errors.NativeException(phase, op, nil, intr)
	}
	return err
}

// throwable converts a managed error into a value the heap can throw.
// Translated native exceptions rethrow their original value.
func (b *Bridge) throwable(err error) goja.Value {
	var exc *goja.Exception
	if stderrors.As(err, &exc) {
		return exc.Value()
	}
	return b.vm.NewGoError(err)
}

// Get reads a property of self and wraps it.
func (b *Bridge) Get(self *goja.Object, name string) any {
	if self == nil {
		self = b.vm.GlobalObject()
	}
	return b.Wrap(self.Get(name))
}

// Set unwraps v and stores it on self.
func (b *Bridge) Set(self *goja.Object, name string, v any) error {
	if self == nil {
		self = b.vm.GlobalObject()
	}
	if err := self.Set(name, b.toValue(b.Unwrap(v))); err != nil {
		return b.translate(errors.PhaseBridge, name, err)
	}
	return nil
}

// Call invokes a native method of self (the global object when nil).
// Arguments are unwrapped, the result is wrapped, and thrown exceptions
// come back as NativeException.
func (b *Bridge) Call(self *goja.Object, method string, args ...any) (any, error) {
	if self == nil {
		self = b.vm.GlobalObject()
	}

	fn, ok := goja.AssertFunction(self.Get(method))
	if !ok {
		return nil, errors.NotFound(errors.PhaseBridge, "method", method)
	}

	argv, err := b.nativeArgs(args)
	if err != nil {
		return nil, err
	}
	res, err := fn(self, argv...)
	if err != nil {
		return nil, b.translate(errors.PhaseBridge, method, err)
	}
	return b.Wrap(res), nil
}

// Construct runs `new className(args...)` against a global constructor.
func (b *Bridge) Construct(className string, args ...any) (any, error) {
	ctor, ok := b.vm.Get(className).(*goja.Object)
	if !ok {
		return nil, errors.NotFound(errors.PhaseBridge, "constructor", className)
	}

	argv, err := b.nativeArgs(args)
	if err != nil {
		return nil, err
	}
	obj, err := b.vm.New(ctor, argv...)
	if err != nil {
		return nil, b.translate(errors.PhaseBridge, "new "+className, err)
	}
	return b.Wrap(obj), nil
}

// As wraps v and asserts the wrapper type.
func As[W Wrapper](b *Bridge, v any) (W, bool) {
	w, ok := b.Wrap(v).(W)
	return w, ok
}
