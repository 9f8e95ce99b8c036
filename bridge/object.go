package bridge

import "github.com/dop251/goja"

// Object is embedded by every wrapper type. It holds the back-reference to
// the native object and the bridge that created the wrapper.
// The identity cache refers to a wrapper only weakly, through its Object,
// so self recovers the full wrapper from that reference.
type Object struct {
	native *goja.Object
	bridge *Bridge
	self   Wrapper
}

// Native returns the wrapped native object.
func (o *Object) Native() *goja.Object {
	return o.native
}

func (o *Object) attach(self Wrapper, native *goja.Object, b *Bridge) *Object {
	o.native = native
	o.bridge = b
	o.self = self
	return o
}

// Bridge returns the bridge that created the wrapper.
func (o *Object) Bridge() *Bridge {
	return o.bridge
}

// Get reads a native property and wraps the result.
func (o *Object) Get(name string) any {
	return o.bridge.Get(o.native, name)
}

// Set unwraps v and stores it as a native property.
func (o *Object) Set(name string, v any) error {
	return o.bridge.Set(o.native, name, v)
}

// Call invokes a native method with unwrapped arguments.
func (o *Object) Call(method string, args ...any) (any, error) {
	return o.bridge.Call(o.native, method, args...)
}
