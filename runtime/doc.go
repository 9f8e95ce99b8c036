// Package runtime provides the high-level API: one host heap, its isolates
// and the bridge, wired from a configuration.
//
// # Quick Start
//
//	rt, err := runtime.NewWithDefaults()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer rt.Close()
//
//	v, err := rt.Eval(`document.createElement("div")`)
//	el := v.(*dom.Element)
//	fmt.Println(el.TagName()) // "DIV"
//
// # Isolates
//
// The first configured isolate is current by default. In switches the
// current isolate for the duration of a call; each isolate sees its own
// wrapper for the same native object:
//
//	rt.In("worker", func() {
//	    w, _ := rt.Eval(`document`)
//	})
//
// # Host Functions
//
// RegisterHost exposes the exported methods of a struct to scripts under a
// global namespace object. Method names are converted from PascalCase to
// camelCase (GetValue -> getValue). Arity comes from the Go signature:
//
//	type Console struct{}
//	func (Console) Namespace() string   { return "console" }
//	func (Console) Log(args ...any)     { ... }
//
//	rt.RegisterHost(Console{})
//	rt.Eval(`console.log("hi", 1)`)
//
// Functions are installed as lazy bindings, so their native adapters are
// created on first use.
package runtime
