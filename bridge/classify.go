package bridge

import (
	"strings"
	"sync"

	"github.com/dop251/goja"
)

// Classifier resolves the most-derived native class name of an object.
// An empty result means the object is not classifiable.
type Classifier interface {
	Classify(obj *goja.Object) string
}

// ClassifierFunc adapts a function to Classifier.
type ClassifierFunc func(obj *goja.Object) string

func (f ClassifierFunc) Classify(obj *goja.Object) string {
	return f(obj)
}

// ConstructorName reads obj.constructor.name.
type ConstructorName struct{}

func (ConstructorName) Classify(obj *goja.Object) string {
	ctor, ok := obj.Get("constructor").(*goja.Object)
	if !ok {
		return ""
	}
	name := ctor.Get("name")
	if name == nil || goja.IsUndefined(name) || goja.IsNull(name) {
		return ""
	}
	return name.String()
}

// ToStringTag classifies by the Object.prototype.toString tag, caching the
// answer per prototype object.
type ToStringTag struct {
	toString goja.Callable
	cache    map[*goja.Object]string
	mu       sync.Mutex
}

// NewToStringTag resolves Object.prototype.toString of vm.
func NewToStringTag(vm *goja.Runtime) *ToStringTag {
	c := &ToStringTag{cache: make(map[*goja.Object]string)}
	if objCtor, ok := vm.Get("Object").(*goja.Object); ok {
		if proto, ok := objCtor.Get("prototype").(*goja.Object); ok {
			c.toString, _ = goja.AssertFunction(proto.Get("toString"))
		}
	}
	return c
}

func (c *ToStringTag) Classify(obj *goja.Object) string {
	if c.toString == nil {
		return ""
	}

	proto := obj.Prototype()
	if proto != nil {
		c.mu.Lock()
		name, ok := c.cache[proto]
		c.mu.Unlock()
		if ok {
			return name
		}
	}

	v, err := c.toString(obj)
	if err != nil {
		return ""
	}
	name := parseTag(v.String())

	if proto != nil {
		c.mu.Lock()
		c.cache[proto] = name
		c.mu.Unlock()
	}
	return name
}

// parseTag extracts X from "[object X]".
func parseTag(s string) string {
	s, ok := strings.CutPrefix(s, "[object ")
	if !ok {
		return ""
	}
	s, ok = strings.CutSuffix(s, "]")
	if !ok {
		return ""
	}
	return s
}

// Chain returns the first non-empty answer of its classifiers.
type Chain []Classifier

func (c Chain) Classify(obj *goja.Object) string {
	for _, cl := range c {
		if name := cl.Classify(obj); name != "" {
			return name
		}
	}
	return ""
}
