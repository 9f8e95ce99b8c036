// Package errors provides structured error types for the hostbridge runtime.
//
// Errors are categorized by Phase (which component raised it) and Kind (error
// category). Every failure in the runtime is synchronous and fatal to the
// immediate caller; nothing is retried at this layer.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseBridge, errors.KindNotFound).
//		NativeType("HTMLCanvasElement").
//		Detail("no wrapper factory registered").
//		Build()
//
// Or use convenience constructors for the common taxonomy:
//
//	err := errors.ArityMismatch(errors.PhaseGeneric, "Map", 2, 1)
//	err := errors.CircularInitialization("core.version")
//
// Kind-only sentinels match regardless of phase:
//
//	if errors.Is(err, errors.ErrNativeException) { ... }
package errors
