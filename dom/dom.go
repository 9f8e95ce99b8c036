package dom

import (
	"github.com/dop251/goja"

	"github.com/wippyai/hostbridge/bridge"
	"github.com/wippyai/hostbridge/errors"
)

// Register adds wrapper factories for the host prelude classes.
func Register(reg *bridge.Registry) error {
	for _, r := range []func(*bridge.Registry) error{
		func(reg *bridge.Registry) error { return bridge.RegisterType[EventTarget](reg, "EventTarget") },
		func(reg *bridge.Registry) error { return bridge.RegisterType[Node](reg, "Node") },
		func(reg *bridge.Registry) error { return bridge.RegisterType[Element](reg, "Element") },
		func(reg *bridge.Registry) error { return bridge.RegisterType[Text](reg, "Text") },
		func(reg *bridge.Registry) error { return bridge.RegisterType[Event](reg, "Event") },
		func(reg *bridge.Registry) error { return bridge.RegisterType[CustomEvent](reg, "CustomEvent") },
		func(reg *bridge.Registry) error { return bridge.RegisterType[DOMException](reg, "DOMException") },
	} {
		if err := r(reg); err != nil {
			return err
		}
	}
	return nil
}

type EventTarget struct{ bridge.Object }

// AddEventListener registers cb for events of type typ. The same *Callback
// maps to the same native listener, so it can be removed later.
func (t *EventTarget) AddEventListener(typ string, cb *bridge.Callback) error {
	_, err := t.Call("addEventListener", typ, cb)
	return err
}

func (t *EventTarget) RemoveEventListener(typ string, cb *bridge.Callback) error {
	_, err := t.Call("removeEventListener", typ, cb)
	return err
}

// DispatchEvent delivers evt and reports whether no listener cancelled it.
func (t *EventTarget) DispatchEvent(evt bridge.Wrapper) (bool, error) {
	res, err := t.Call("dispatchEvent", evt)
	if err != nil {
		return false, err
	}
	return toBool(res), nil
}

type Node struct{ EventTarget }

func (n *Node) NodeName() string {
	return toString(n.Get("nodeName"))
}

func (n *Node) ParentNode() any {
	return n.Get("parentNode")
}

func (n *Node) FirstChild() any {
	return n.Get("firstChild")
}

// ChildCount returns the number of child nodes.
func (n *Node) ChildCount() int {
	nodes, ok := n.Get("childNodes").(*goja.Object)
	if !ok {
		return 0
	}
	return int(nodes.Get("length").ToInteger())
}

// AppendChild appends child and returns its wrapper. Appending a node to
// itself fails with a NativeException carrying a *DOMException.
func (n *Node) AppendChild(child bridge.Wrapper) (any, error) {
	return n.Call("appendChild", child)
}

func (n *Node) RemoveChild(child bridge.Wrapper) (any, error) {
	return n.Call("removeChild", child)
}

type Element struct{ Node }

func (e *Element) TagName() string {
	return toString(e.Get("tagName"))
}

func (e *Element) SetAttribute(name, value string) error {
	_, err := e.Call("setAttribute", name, value)
	return err
}

// GetAttribute returns the attribute value and whether it is present.
func (e *Element) GetAttribute(name string) (string, bool, error) {
	res, err := e.Call("getAttribute", name)
	if err != nil || res == nil {
		return "", false, err
	}
	return toString(res), true, nil
}

type Text struct{ Node }

func (t *Text) Data() string {
	return toString(t.Get("data"))
}

type Event struct{ bridge.Object }

func (e *Event) Type() string {
	return toString(e.Get("type"))
}

func (e *Event) Target() any {
	return e.Get("target")
}

func (e *Event) DefaultPrevented() bool {
	return toBool(e.Get("defaultPrevented"))
}

func (e *Event) PreventDefault() error {
	_, err := e.Call("preventDefault")
	return err
}

type CustomEvent struct{ Event }

func (e *CustomEvent) Detail() any {
	return e.Get("detail")
}

// DOMException is the wrapper of host exceptions. It implements error, so a
// NativeException's Value can be returned as is.
type DOMException struct{ bridge.Object }

func (e *DOMException) Name() string {
	return toString(e.Get("name"))
}

func (e *DOMException) Message() string {
	return toString(e.Get("message"))
}

func (e *DOMException) Error() string {
	return e.Name() + ": " + e.Message()
}

// Document returns the wrapper of the global document.
func Document(b *bridge.Bridge) (*Node, error) {
	doc, ok := bridge.As[*Node](b, b.Get(nil, "document"))
	if !ok {
		return nil, errors.NotFound(errors.PhaseBridge, "global", "document")
	}
	return doc, nil
}

// CreateElement calls document.createElement.
func CreateElement(b *bridge.Bridge, tag string) (*Element, error) {
	doc, err := Document(b)
	if err != nil {
		return nil, err
	}
	res, err := doc.Call("createElement", tag)
	if err != nil {
		return nil, err
	}
	el, ok := res.(*Element)
	if !ok {
		return nil, errors.New(errors.PhaseBridge, errors.KindInvalidInput).
			NativeType("Element").
			Detail("createElement returned %T", res).
			Build()
	}
	return el, nil
}

// NewEvent constructs a host Event of type typ.
func NewEvent(b *bridge.Bridge, typ string) (*Event, error) {
	res, err := b.Construct("Event", typ)
	if err != nil {
		return nil, err
	}
	evt, ok := res.(*Event)
	if !ok {
		return nil, errors.New(errors.PhaseBridge, errors.KindInvalidInput).
			NativeType("Event").
			Detail("constructor returned %T", res).
			Build()
	}
	return evt, nil
}

func toString(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case goja.Value:
		return x.String()
	case string:
		return x
	default:
		return ""
	}
}

func toBool(v any) bool {
	if x, ok := v.(goja.Value); ok {
		return x.ToBoolean()
	}
	b, _ := v.(bool)
	return b
}
