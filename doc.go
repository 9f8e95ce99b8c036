// Package hostbridge binds a JavaScript heap to Go objects with stable
// identity per isolate.
//
// Every native object gets at most one Go wrapper per isolate, and the
// wrapper always refers back to the same native object. Callbacks crossing
// into the heap get one adapter per isolate as well, so that listener
// registration and removal see the same function twice.
//
// # Architecture Overview
//
// The library is organized into several packages with distinct responsibilities:
//
//	hostbridge/          Root package, documentation only
//	├── runtime/         High-level API: heap, isolates, host functions, config
//	├── bridge/          Wrap/Unwrap, wrapper registry, callback adapters, timers
//	├── identity/        Weak per-object side tables keyed by isolate token
//	├── isolate/         Isolate tokens and the current-isolate scope
//	├── host/            goja heap with the DOM-like prelude and a virtual clock
//	├── dom/             Typed wrappers for the prelude classes
//	├── generic/         Memoized instantiation of type constructors
//	├── mixin/           Class composition with memoized mixin applications
//	├── lazy/            Lazily computed bindings and property installation
//	├── config/          YAML configuration, validation and JSON schema
//	├── errors/          Structured error types for debugging
//	└── cmd/hostbridge/  CLI and interactive inspector
//
// # Quick Start
//
// Evaluate a script and get its wrapped result:
//
//	rt, err := runtime.NewWithDefaults()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer rt.Close()
//
//	v, err := rt.Eval(`document.createElement("div")`)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(v.(*dom.Element).TagName()) // "DIV"
//
// # Host Functions
//
// Register Go methods as a global namespace object:
//
//	rt.RegisterFunc("util", "double", func(n float64) float64 {
//	    return n * 2
//	})
//	rt.Eval(`util.double(21)`) // 42
//
// # Thread Safety
//
// identity.Cache, generic.Generic and mixin.Composer are safe for
// concurrent use. Runtime, Bridge and Host wrap a single goja heap and
// must be used by one goroutine at a time.
//
// # Memory Model
//
// Side tables are keyed weakly by their native object and dropped once the
// object is collected. Wrappers and adapters refer back to their key, so the
// bridge stores them as identity.Weak values: an unreferenced wrapper does
// not pin its object. A wrapper collected while its object is still live is
// rebuilt on the next Wrap, in the same table slot. Nothing can observe the
// old one, so there is still at most one live wrapper per isolate.
package hostbridge
