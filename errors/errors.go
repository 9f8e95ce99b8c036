package errors

import (
	"fmt"
	"strings"
)

// Phase indicates which part of the runtime raised the error
type Phase string

const (
	PhaseCache        Phase = "cache"        // identity cache
	PhaseBridge       Phase = "bridge"       // object wrap/unwrap
	PhaseFunction     Phase = "function"     // callable adaptation and timers
	PhaseGeneric      Phase = "generic"      // type constructor memoization
	PhaseMixin        Phase = "mixin"        // class composition
	PhaseLazy         Phase = "lazy"         // deferred bindings
	PhaseHost         Phase = "host"         // host heap setup
	PhaseConfig       Phase = "config"       // configuration loading
	PhaseRegistration Phase = "registration" // wrapper factory table
)

// Kind categorizes the error
type Kind string

const (
	KindProtocolViolation      Kind = "protocol_violation"
	KindArityMismatch          Kind = "arity_mismatch"
	KindUndefinedTypeArgument  Kind = "undefined_type_argument"
	KindCircularInitialization Kind = "circular_initialization"
	KindNativeException        Kind = "native_exception"
	KindNotFound               Kind = "not_found"
	KindInvalidInput           Kind = "invalid_input"
	KindUnsupported            Kind = "unsupported"
	KindRegistration           Kind = "registration"
	KindInvalidConfig          Kind = "invalid_config"
	KindNotComparable          Kind = "not_comparable"
	KindNilPointer             Kind = "nil_pointer"
)

// Sentinels for errors.Is checks that do not care about the phase.
var (
	ErrProtocolViolation      = &Error{Kind: KindProtocolViolation}
	ErrArityMismatch          = &Error{Kind: KindArityMismatch}
	ErrUndefinedTypeArgument  = &Error{Kind: KindUndefinedTypeArgument}
	ErrCircularInitialization = &Error{Kind: KindCircularInitialization}
	ErrNativeException        = &Error{Kind: KindNativeException}
	ErrNotFound               = &Error{Kind: KindNotFound}
	ErrInvalidInput           = &Error{Kind: KindInvalidInput}
)

// Error is the structured error type used throughout the runtime
type Error struct {
	Value      any
	Cause      error
	Phase      Phase
	Kind       Kind
	GoType     string
	NativeType string
	Detail     string
	Path       []string
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if len(e.Path) > 0 {
		b.WriteString(" at ")
		b.WriteString(strings.Join(e.Path, "."))
	}

	if e.GoType != "" || e.NativeType != "" {
		b.WriteString(": ")
		if e.GoType != "" && e.NativeType != "" {
			b.WriteString("Go type ")
			b.WriteString(e.GoType)
			b.WriteString(", native type ")
			b.WriteString(e.NativeType)
		} else if e.GoType != "" {
			b.WriteString("Go type ")
			b.WriteString(e.GoType)
		} else {
			b.WriteString("native type ")
			b.WriteString(e.NativeType)
		}
	}

	if e.Detail != "" {
		if e.GoType != "" || e.NativeType != "" {
			b.WriteString(" - ")
		} else {
			b.WriteString(": ")
		}
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error.
// A target without a phase matches on kind alone.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Phase == "" {
		return e.Kind == t.Kind
	}
	return e.Phase == t.Phase && e.Kind == t.Kind
}

// Builder provides structured error construction
type Builder struct {
	err Error
}

// New creates a new error builder
func New(phase Phase, kind Kind) *Builder {
	return &Builder{
		err: Error{
			Phase: phase,
			Kind:  kind,
		},
	}
}

// Path sets the binding path
func (b *Builder) Path(path ...string) *Builder {
	b.err.Path = path
	return b
}

// GoType sets the Go type name
func (b *Builder) GoType(t string) *Builder {
	b.err.GoType = t
	return b
}

// NativeType sets the host class name
func (b *Builder) NativeType(t string) *Builder {
	b.err.NativeType = t
	return b
}

// Value sets the offending value
func (b *Builder) Value(v any) *Builder {
	b.err.Value = v
	return b
}

// Cause sets the underlying error
func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

// Detail sets the human-readable detail message
func (b *Builder) Detail(msg string, args ...any) *Builder {
	if len(args) > 0 {
		b.err.Detail = fmt.Sprintf(msg, args...)
	} else {
		b.err.Detail = msg
	}
	return b
}

// Build returns the constructed error
func (b *Builder) Build() *Error {
	return &b.err
}

// Convenience constructors for the runtime's failure taxonomy

// ProtocolViolation reports a broken at-most-one-entry invariant
func ProtocolViolation(phase Phase, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindProtocolViolation,
		Detail: detail,
	}
}

// ArityMismatch reports a wrong count of arguments
func ArityMismatch(phase Phase, name string, want, got int) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindArityMismatch,
		Path:   []string{name},
		Detail: fmt.Sprintf("expected %d argument(s), got %d", want, got),
		Value:  got,
	}
}

// ArityRange reports an argument count outside [minArgs, maxArgs]
func ArityRange(phase Phase, name string, minArgs, maxArgs, got int) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindArityMismatch,
		Path:   []string{name},
		Detail: fmt.Sprintf("expected %d..%d argument(s), got %d", minArgs, maxArgs, got),
		Value:  got,
	}
}

// UndefinedTypeArgument reports an unresolved placeholder passed at index
func UndefinedTypeArgument(name string, index int) *Error {
	return &Error{
		Phase:  PhaseGeneric,
		Kind:   KindUndefinedTypeArgument,
		Path:   []string{name},
		Detail: fmt.Sprintf("type argument %d is undefined; pass an explicit sentinel for unconstrained arguments", index),
		Value:  index,
	}
}

// CircularInitialization reports a reentrant lazy evaluation of property
func CircularInitialization(property string) *Error {
	return &Error{
		Phase:  PhaseLazy,
		Kind:   KindCircularInitialization,
		Path:   []string{property},
		Detail: fmt.Sprintf("circular initialization of %q", property),
	}
}

// NativeException carries a translated host exception.
// wrapped is the managed view of the thrown value.
func NativeException(phase Phase, op string, wrapped any, cause error) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindNativeException,
		Detail: fmt.Sprintf("native call %s threw", op),
		Value:  wrapped,
		Cause:  cause,
	}
}

// Unsupported creates an unsupported operation error
func Unsupported(phase Phase, what string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindUnsupported,
		Detail: what,
	}
}

// NotFound creates a not-found error
func NotFound(phase Phase, what, name string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindNotFound,
		Detail: fmt.Sprintf("%s %q not found", what, name),
	}
}

// InvalidInput creates an invalid input error
func InvalidInput(phase Phase, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidInput,
		Detail: detail,
	}
}

// NilPointer creates a nil pointer error
func NilPointer(phase Phase, what string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindNilPointer,
		Detail: fmt.Sprintf("%s is nil", what),
	}
}

// NotComparable reports a value that cannot be keyed by identity
func NotComparable(phase Phase, path []string, goType string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindNotComparable,
		Path:   path,
		GoType: goType,
		Detail: "value is not comparable",
	}
}

// Registration creates a registration error
func Registration(name string, detail string) *Error {
	return &Error{
		Phase:  PhaseRegistration,
		Kind:   KindRegistration,
		Path:   []string{name},
		Detail: detail,
	}
}

// InvalidConfig wraps a configuration failure
func InvalidConfig(detail string, cause error) *Error {
	return &Error{
		Phase:  PhaseConfig,
		Kind:   KindInvalidConfig,
		Detail: detail,
		Cause:  cause,
	}
}

// Wrap wraps an existing error with additional context
func Wrap(phase Phase, kind Kind, cause error, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   kind,
		Detail: detail,
		Cause:  cause,
	}
}
