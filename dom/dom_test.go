package dom

import (
	stderrors "errors"
	"testing"

	"github.com/wippyai/hostbridge/bridge"
	"github.com/wippyai/hostbridge/errors"
	"github.com/wippyai/hostbridge/host"
	"github.com/wippyai/hostbridge/isolate"
)

func newBridge(t *testing.T) *bridge.Bridge {
	t.Helper()
	h, err := host.New(host.Options{})
	if err != nil {
		t.Fatal(err)
	}
	reg := bridge.NewRegistry()
	if err := Register(reg); err != nil {
		t.Fatal(err)
	}
	b, err := bridge.New(h.Runtime(), isolate.NewScope(isolate.NewToken("main", 0)), reg, bridge.DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}
	return b
}

func TestRegister_Twice(t *testing.T) {
	reg := bridge.NewRegistry()
	if err := Register(reg); err != nil {
		t.Fatal(err)
	}
	if err := Register(reg); err == nil {
		t.Fatal("second Register must fail")
	}
}

func TestDocumentTree(t *testing.T) {
	b := newBridge(t)

	doc, err := Document(b)
	if err != nil {
		t.Fatal(err)
	}
	if doc.NodeName() != "#document" {
		t.Fatalf("nodeName = %q", doc.NodeName())
	}

	ul, err := CreateElement(b, "ul")
	if err != nil {
		t.Fatal(err)
	}
	li, err := CreateElement(b, "li")
	if err != nil {
		t.Fatal(err)
	}

	if _, err := ul.AppendChild(li); err != nil {
		t.Fatal(err)
	}
	if ul.FirstChild() != li {
		t.Fatal("firstChild is not the cached wrapper")
	}
	if li.ParentNode() != ul {
		t.Fatal("parentNode is not the cached wrapper")
	}
	if ul.ChildCount() != 1 {
		t.Fatalf("children = %d", ul.ChildCount())
	}

	if _, err := ul.RemoveChild(li); err != nil {
		t.Fatal(err)
	}
	if ul.FirstChild() != nil || li.ParentNode() != nil {
		t.Fatal("removeChild did not detach")
	}
}

func TestAppendChild_DOMException(t *testing.T) {
	b := newBridge(t)
	div, err := CreateElement(b, "div")
	if err != nil {
		t.Fatal(err)
	}

	_, err = div.AppendChild(div)
	if !stderrors.Is(err, errors.ErrNativeException) {
		t.Fatalf("expected NativeException, got %v", err)
	}

	var e *errors.Error
	stderrors.As(err, &e)
	exc, ok := e.Value.(*DOMException)
	if !ok {
		t.Fatalf("value = %T", e.Value)
	}
	if exc.Name() != "HierarchyRequestError" {
		t.Fatalf("name = %q", exc.Name())
	}
	if exc.Error() != "HierarchyRequestError: cannot append a node to itself" {
		t.Fatalf("Error() = %q", exc.Error())
	}
}

func TestAttributes(t *testing.T) {
	b := newBridge(t)
	a, _ := CreateElement(b, "a")

	if _, ok, err := a.GetAttribute("href"); ok || err != nil {
		t.Fatal("unexpected attribute")
	}
	if err := a.SetAttribute("href", "/x"); err != nil {
		t.Fatal(err)
	}
	v, ok, err := a.GetAttribute("href")
	if err != nil || !ok || v != "/x" {
		t.Fatalf("href = %q, %v, %v", v, ok, err)
	}
	if a.TagName() != "A" {
		t.Fatalf("tagName = %q", a.TagName())
	}
}

func TestEvents(t *testing.T) {
	b := newBridge(t)
	btn, _ := CreateElement(b, "button")

	var got []*Event
	listener := bridge.Func("onClick", 1, 1, func(args ...any) (any, error) {
		evt := args[0].(*Event)
		got = append(got, evt)
		return nil, evt.PreventDefault()
	})
	if err := btn.AddEventListener("click", listener); err != nil {
		t.Fatal(err)
	}

	evt, err := NewEvent(b, "click")
	if err != nil {
		t.Fatal(err)
	}
	ok, err := btn.DispatchEvent(evt)
	if err != nil {
		t.Fatal(err)
	}
	if ok {
		t.Fatal("dispatch should report cancellation")
	}
	if len(got) != 1 || got[0] != evt {
		t.Fatal("listener did not receive the cached event wrapper")
	}
	if !evt.DefaultPrevented() || evt.Type() != "click" || evt.Target() != btn {
		t.Fatal("event state not visible through wrapper")
	}

	// the same callback resolves to the same native listener
	if err := btn.RemoveEventListener("click", listener); err != nil {
		t.Fatal(err)
	}
	evt2, _ := NewEvent(b, "click")
	if _, err := btn.DispatchEvent(evt2); err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 {
		t.Fatal("listener still attached")
	}
}

func TestCustomEventAndText(t *testing.T) {
	b := newBridge(t)

	res, err := b.Construct("CustomEvent", "ping", b.Runtime().ToValue(map[string]any{"detail": "payload"}))
	if err != nil {
		t.Fatal(err)
	}
	ce, ok := res.(*CustomEvent)
	if !ok {
		t.Fatalf("wrapper = %T", res)
	}
	if ce.Type() != "ping" || toString(ce.Detail()) != "payload" {
		t.Fatalf("event = %s / %v", ce.Type(), ce.Detail())
	}

	txt, err := b.Construct("Text", "hello")
	if err != nil {
		t.Fatal(err)
	}
	if txt.(*Text).Data() != "hello" {
		t.Fatal("text data mismatch")
	}
}
