package runtime

import (
	"sort"
	"time"

	"github.com/dop251/goja"
	"go.uber.org/zap"

	"github.com/wippyai/hostbridge/bridge"
	"github.com/wippyai/hostbridge/config"
	"github.com/wippyai/hostbridge/dom"
	"github.com/wippyai/hostbridge/errors"
	"github.com/wippyai/hostbridge/host"
	"github.com/wippyai/hostbridge/identity"
	"github.com/wippyai/hostbridge/isolate"
)

// Options configures a Runtime.
type Options struct {
	// Config defaults to config.Default().
	Config *config.Config
	Logger *zap.Logger
	// Types registers wrapper factories before configured aliases are
	// applied. When nil, the prelude classes are registered unless the
	// prelude is skipped.
	Types func(*bridge.Registry) error
	// OnError receives failures of timer callbacks, translated like Eval
	// errors: exceptions arrive as NativeException with the wrapped thrown
	// value.
	OnError func(error)
}

// Runtime wires a host heap, its isolates and the bridge from one
// configuration. Not safe for concurrent use.
type Runtime struct {
	cfg      *config.Config
	logger   *zap.Logger
	host     *host.Host
	scope    *isolate.Scope
	registry *bridge.Registry
	bridge   *bridge.Bridge
	hosts    *HostRegistry
	isolates map[string]*isolate.Token
	order    []*isolate.Token
	alloc    isolate.Allocator
	closed   bool
}

func New(opts Options) (*Runtime, error) {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger := opts.Logger
	if logger == nil {
		logger = Logger()
	}

	h, err := host.New(host.Options{
		Logger:      logger,
		SkipPrelude: cfg.SkipPrelude,
	})
	if err != nil {
		return nil, err
	}

	registry := bridge.NewRegistry()
	types := opts.Types
	if types == nil && !cfg.SkipPrelude {
		types = dom.Register
	}
	if types != nil {
		if err := types(registry); err != nil {
			return nil, err
		}
	}
	if err := applyAliases(registry, cfg.Aliases); err != nil {
		return nil, err
	}

	r := &Runtime{
		cfg:      cfg,
		logger:   logger,
		host:     h,
		registry: registry,
		hosts:    NewHostRegistry(),
		isolates: make(map[string]*isolate.Token),
	}

	for _, ic := range cfg.Isolates {
		r.addToken(isolate.NewToken(ic.Name, ic.Hash))
	}
	if len(r.order) == 0 {
		r.addToken(r.alloc.Next("main"))
	}
	r.scope = isolate.NewScope(r.order[0])

	b, err := bridge.New(h.Runtime(), r.scope, registry, bridge.Options{
		Classifier: classifierFor(cfg.Classifier, h.Runtime()),
		Logger:     logger,
		Cache: identity.Options{
			Logger:          logger,
			InitialCapacity: cfg.Cache.InitialCapacity,
			LoadFactor:      cfg.Cache.LoadFactor,
		},
	})
	if err != nil {
		return nil, err
	}
	r.bridge = b

	// timer callbacks throw across the same boundary as Eval
	if onError := opts.OnError; onError != nil {
		h.OnError(func(err error) {
			onError(b.NativeError("timer", err))
		})
	}

	logger.Debug("runtime ready",
		zap.String("classifier", cfg.Classifier),
		zap.Int("isolates", len(r.order)),
		zap.Strings("types", registry.Names()))
	return r, nil
}

// NewWithDefaults creates a runtime with the default configuration.
func NewWithDefaults() (*Runtime, error) {
	return New(Options{})
}

func applyAliases(reg *bridge.Registry, aliases map[string]string) error {
	names := make([]string, 0, len(aliases))
	for name := range aliases {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		if err := reg.Alias(name, aliases[name]); err != nil {
			return errors.InvalidConfig("alias "+name, err)
		}
	}
	return nil
}

func classifierFor(name string, vm *goja.Runtime) bridge.Classifier {
	switch name {
	case config.ClassifierToStringTag:
		return bridge.NewToStringTag(vm)
	case config.ClassifierChain:
		return bridge.Chain{bridge.ConstructorName{}, bridge.NewToStringTag(vm)}
	default:
		return bridge.ConstructorName{}
	}
}

func (r *Runtime) addToken(t *isolate.Token) {
	r.isolates[t.Name()] = t
	r.order = append(r.order, t)
}

func (r *Runtime) Config() *config.Config {
	return r.cfg
}

func (r *Runtime) Bridge() *bridge.Bridge {
	return r.bridge
}

func (r *Runtime) Host() *host.Host {
	return r.host
}

func (r *Runtime) Scope() *isolate.Scope {
	return r.scope
}

func (r *Runtime) Registry() *bridge.Registry {
	return r.registry
}

func (r *Runtime) Hosts() *HostRegistry {
	return r.hosts
}

// Isolate returns the token named name.
func (r *Runtime) Isolate(name string) (*isolate.Token, bool) {
	t, ok := r.isolates[name]
	return t, ok
}

// Isolates returns every token in declaration order. The first one is the
// root isolate.
func (r *Runtime) Isolates() []*isolate.Token {
	return append([]*isolate.Token(nil), r.order...)
}

// AddIsolate allocates a new isolate token.
func (r *Runtime) AddIsolate(name string) (*isolate.Token, error) {
	if name == "" {
		return nil, errors.InvalidInput(errors.PhaseHost, "isolate name cannot be empty")
	}
	if _, exists := r.isolates[name]; exists {
		return nil, errors.Registration(name, "isolate already exists")
	}
	t := r.alloc.Next(name)
	r.addToken(t)
	return t, nil
}

// In runs fn with the named isolate current.
func (r *Runtime) In(name string, fn func()) error {
	t, ok := r.isolates[name]
	if !ok {
		return errors.NotFound(errors.PhaseHost, "isolate", name)
	}
	r.scope.Run(t, fn)
	return nil
}

// RegisterHost exposes the methods of h as a global namespace object.
func (r *Runtime) RegisterHost(h Host) error {
	if err := r.hosts.RegisterHost(h); err != nil {
		return err
	}
	return r.hosts.Bind(r.bridge, h.Namespace())
}

// RegisterFunc exposes fn as namespace.name.
func (r *Runtime) RegisterFunc(namespace, name string, fn any) error {
	if err := r.hosts.RegisterFunc(namespace, name, fn); err != nil {
		return err
	}
	return r.hosts.Bind(r.bridge, namespace)
}

// Eval runs src in the current isolate and returns its wrapped result.
func (r *Runtime) Eval(src string) (any, error) {
	if r.closed {
		return nil, errors.Unsupported(errors.PhaseHost, "runtime is closed")
	}
	v, err := r.host.RunString(src)
	if err != nil {
		return nil, r.bridge.NativeError("eval", err)
	}
	return r.bridge.TryWrap(v)
}

// Advance moves the host clock forward, firing due timers.
func (r *Runtime) Advance(d time.Duration) int {
	if r.closed {
		return 0
	}
	return r.host.Advance(d)
}

// Close interrupts the heap. Further evaluation fails.
func (r *Runtime) Close() error {
	if r.closed {
		return nil
	}
	r.closed = true
	r.host.Runtime().Interrupt("runtime closed")
	r.logger.Debug("runtime closed", zap.Stringer("cache", r.bridge.Objects().Stats()))
	return nil
}
