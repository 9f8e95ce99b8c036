package runtime

import (
	"reflect"
	"sort"
	"sync"
	"unicode"

	"github.com/dop251/goja"

	"github.com/wippyai/hostbridge/bridge"
	"github.com/wippyai/hostbridge/errors"
	"github.com/wippyai/hostbridge/lazy"
)

// Host is the interface for struct-based host modules.
// All exported methods (except Namespace) are exposed to scripts as
// functions of a global object named by Namespace.
type Host interface {
	// Namespace returns the global name, e.g. "console".
	Namespace() string
}

// ExplicitRegistrar lets hosts provide exact script names when the
// automatic PascalCase to camelCase conversion does not fit.
type ExplicitRegistrar interface {
	Register() map[string]any
}

// HostRegistry collects host functions per namespace.
type HostRegistry struct {
	funcs map[string]map[string]*bridge.Callback
	mu    sync.RWMutex
}

func NewHostRegistry() *HostRegistry {
	return &HostRegistry{
		funcs: make(map[string]map[string]*bridge.Callback),
	}
}

func (r *HostRegistry) RegisterHost(h Host) error {
	ns := h.Namespace()
	if !isIdentifier(ns) {
		return errors.InvalidInput(errors.PhaseHost, "namespace must be an identifier: "+ns)
	}

	funcs := make(map[string]any)
	if er, ok := h.(ExplicitRegistrar); ok {
		for name, fn := range er.Register() {
			funcs[name] = fn
		}
	} else {
		rv := reflect.ValueOf(h)
		rt := rv.Type()
		for i := 0; i < rt.NumMethod(); i++ {
			method := rt.Method(i)
			if !method.IsExported() || method.Name == "Namespace" {
				continue
			}
			funcs[toCamelCase(method.Name)] = rv.Method(i).Interface()
		}
	}

	for name, fn := range funcs {
		if err := r.RegisterFunc(ns, name, fn); err != nil {
			return err
		}
	}
	return nil
}

// RegisterFunc exposes fn as ns.name. fn must be a Go function; its
// parameters define the callback arity and argument conversion.
func (r *HostRegistry) RegisterFunc(namespace, name string, fn any) error {
	if !isIdentifier(namespace) {
		return errors.InvalidInput(errors.PhaseHost, "namespace must be an identifier: "+namespace)
	}
	if name == "" {
		return errors.InvalidInput(errors.PhaseHost, "function name cannot be empty")
	}

	cb, err := callbackOf(namespace+"."+name, fn)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.funcs[namespace] == nil {
		r.funcs[namespace] = make(map[string]*bridge.Callback)
	}
	r.funcs[namespace][name] = cb
	return nil
}

// Namespaces returns the registered namespaces, sorted.
func (r *HostRegistry) Namespaces() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]string, 0, len(r.funcs))
	for ns := range r.funcs {
		out = append(out, ns)
	}
	sort.Strings(out)
	return out
}

// Callback returns the callback registered as ns.name.
func (r *HostRegistry) Callback(ns, name string) (*bridge.Callback, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	cb, ok := r.funcs[ns][name]
	return cb, ok
}

// Bind installs namespaces on the global object of b's heap, every
// registered one when none are named. Each function is a lazy binding: its
// native adapter is synthesized on first access. Namespaces not named keep
// their installed properties.
func (r *HostRegistry) Bind(b *bridge.Bridge, namespaces ...string) error {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if len(namespaces) == 0 {
		for ns := range r.funcs {
			namespaces = append(namespaces, ns)
		}
		sort.Strings(namespaces)
	}
	for _, ns := range namespaces {
		funcs, ok := r.funcs[ns]
		if !ok {
			return errors.NotFound(errors.PhaseHost, "namespace", ns)
		}
		if err := bindNamespace(b, ns, funcs); err != nil {
			return err
		}
	}
	return nil
}

func bindNamespace(b *bridge.Bridge, ns string, funcs map[string]*bridge.Callback) error {
	vm := b.Runtime()
	target, ok := vm.Get(ns).(*goja.Object)
	if !ok {
		target = vm.NewObject()
		if err := vm.Set(ns, target); err != nil {
			return errors.Wrap(errors.PhaseHost, errors.KindRegistration, err, "define namespace "+ns)
		}
	}

	lib := lazy.NewLibrary(ns)
	for name, cb := range funcs {
		err := lib.Define(name, lazy.Descriptor{Get: func() (any, error) {
			return b.Unwrap(cb), nil
		}})
		if err != nil {
			return err
		}
	}
	return lazy.Install(vm, target, lib)
}

var errorType = reflect.TypeOf((*error)(nil)).Elem()

// callbackOf derives a callback with exact arity from a Go function.
func callbackOf(name string, fn any) (*bridge.Callback, error) {
	rv := reflect.ValueOf(fn)
	if rv.Kind() != reflect.Func {
		goType := "nil"
		if fn != nil {
			goType = reflect.TypeOf(fn).String()
		}
		return nil, errors.New(errors.PhaseHost, errors.KindInvalidInput).
			Path(name).
			GoType(goType).
			Detail("handler must be a function").
			Build()
	}

	ft := rv.Type()
	if ft.NumOut() > 2 || (ft.NumOut() == 2 && ft.Out(1) != errorType) {
		return nil, errors.New(errors.PhaseHost, errors.KindUnsupported).
			Path(name).
			GoType(ft.String()).
			Detail("handler must return (T), (T, error), (error) or nothing").
			Build()
	}

	minArgs, maxArgs := ft.NumIn(), ft.NumIn()
	if ft.IsVariadic() {
		minArgs--
		maxArgs = bridge.Unbounded
	}

	return bridge.Func(name, minArgs, maxArgs, func(args ...any) (any, error) {
		in := make([]reflect.Value, len(args))
		for i, a := range args {
			var pt reflect.Type
			if ft.IsVariadic() && i >= ft.NumIn()-1 {
				pt = ft.In(ft.NumIn() - 1).Elem()
			} else {
				pt = ft.In(i)
			}
			v, err := convertArg(a, pt)
			if err != nil {
				return nil, errors.New(errors.PhaseHost, errors.KindInvalidInput).
					Path(name).
					GoType(pt.String()).
					Detail("argument %d: %v", i, err).
					Build()
			}
			in[i] = v
		}
		return results(rv.Call(in))
	}), nil
}

func results(out []reflect.Value) (any, error) {
	switch len(out) {
	case 0:
		return nil, nil
	case 1:
		if out[0].Type() == errorType {
			err, _ := out[0].Interface().(error)
			return nil, err
		}
		return out[0].Interface(), nil
	default:
		err, _ := out[1].Interface().(error)
		return out[0].Interface(), err
	}
}

var valueType = reflect.TypeOf((*goja.Value)(nil)).Elem()

func convertArg(a any, t reflect.Type) (reflect.Value, error) {
	if a == nil {
		return reflect.Zero(t), nil
	}
	// primitives arrive as engine values; objects stay as they are
	if v, ok := a.(goja.Value); ok && t != valueType {
		if _, isObject := a.(*goja.Object); !isObject {
			a = v.Export()
			if a == nil {
				return reflect.Zero(t), nil
			}
		}
	}

	rv := reflect.ValueOf(a)
	if rv.Type().AssignableTo(t) {
		return rv, nil
	}
	if c := scalarClass(rv.Kind()); c != 0 && c == scalarClass(t.Kind()) {
		return rv.Convert(t), nil
	}
	return reflect.Value{}, errors.InvalidInput(errors.PhaseHost, "cannot use "+rv.Type().String()+" as "+t.String())
}

// scalarClass groups kinds that convert into each other without changing
// meaning: numbers, strings, booleans. Zero means not a scalar.
func scalarClass(k reflect.Kind) byte {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return 'n'
	case reflect.String:
		return 's'
	case reflect.Bool:
		return 'b'
	}
	return 0
}

// toCamelCase converts PascalCase to camelCase.
// Handles leading acronyms: HTTPGet -> httpGet, ID -> id
func toCamelCase(s string) string {
	runes := []rune(s)
	n := 0
	for n < len(runes) && unicode.IsUpper(runes[n]) {
		n++
	}
	switch {
	case n == 0:
		return s
	case n == 1 || n == len(runes):
		// single leading capital, or all caps
	default:
		// last capital starts the next word
		if unicode.IsLower(runes[n]) {
			n--
		}
	}
	for i := 0; i < n; i++ {
		runes[i] = unicode.ToLower(runes[i])
	}
	return string(runes)
}

func isIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		if r == '_' || r == '$' || unicode.IsLetter(r) || (i > 0 && unicode.IsDigit(r)) {
			continue
		}
		return false
	}
	return true
}
