package host

import (
	"time"

	"github.com/dop251/goja"
	"go.uber.org/zap"

	"github.com/wippyai/hostbridge/errors"
)

// Options configures the host heap.
type Options struct {
	Logger *zap.Logger
	// OnError receives exceptions thrown by timer callbacks.
	OnError func(error)
	// SkipPrelude leaves the heap without the host classes.
	SkipPrelude bool
}

// Host owns one goja heap plus a cooperative virtual clock for its timers.
// Not safe for concurrent use.
type Host struct {
	vm      *goja.Runtime
	logger  *zap.Logger
	onError func(error)
	timers  map[int64]*timer
	queue   timerQueue
	now     time.Duration
	nextID  int64
	seq     uint64
}

// New creates a host heap with timers and, unless skipped, the prelude.
func New(opts Options) (*Host, error) {
	logger := opts.Logger
	if logger == nil {
		logger = Logger()
	}

	h := &Host{
		vm:      goja.New(),
		logger:  logger,
		onError: opts.OnError,
		timers:  make(map[int64]*timer),
	}

	if err := h.installTimers(); err != nil {
		return nil, errors.Wrap(errors.PhaseHost, errors.KindInvalidInput, err, "install timers")
	}

	if !opts.SkipPrelude {
		if _, err := h.vm.RunString(prelude); err != nil {
			return nil, errors.Wrap(errors.PhaseHost, errors.KindInvalidInput, err, "run prelude")
		}
	}

	return h, nil
}

// Runtime returns the underlying goja runtime.
func (h *Host) Runtime() *goja.Runtime {
	return h.vm
}

// GlobalObject returns the heap's global object.
func (h *Host) GlobalObject() *goja.Object {
	return h.vm.GlobalObject()
}

// RunString evaluates src in the global scope.
func (h *Host) RunString(src string) (goja.Value, error) {
	return h.vm.RunString(src)
}

// Object evaluates src and requires an object result.
func (h *Host) Object(src string) (*goja.Object, error) {
	v, err := h.vm.RunString(src)
	if err != nil {
		return nil, err
	}
	obj, ok := v.(*goja.Object)
	if !ok {
		return nil, errors.New(errors.PhaseHost, errors.KindInvalidInput).
			Detail("%q did not evaluate to an object", src).
			Build()
	}
	return obj, nil
}

// OnError replaces the handler receiving timer callback failures.
func (h *Host) OnError(fn func(error)) {
	h.onError = fn
}

// Global returns a global binding, or nil if it is not defined.
func (h *Host) Global(name string) goja.Value {
	return h.vm.Get(name)
}
