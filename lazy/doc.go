// Package lazy provides compute-once values.
//
// Cell is the core: Uninitialized until the first Get, Initializing while
// its computation runs, Initialized afterwards. A Get that arrives while the
// cell is Initializing means the computation depends on itself, and fails
// with CircularInitialization instead of recursing.
//
// Library groups named cells the way a compiled library groups its
// top-level bindings, and Install exposes a library on a heap object:
//
//	lib := lazy.NewLibrary("core")
//	lib.Define("config", lazy.Descriptor{Get: loadConfig})
//	lazy.Install(vm, vm.GlobalObject(), lib)
//
// After the first read of config the property is an ordinary data
// property; the accessor is gone.
package lazy
