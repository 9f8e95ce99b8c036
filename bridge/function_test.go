package bridge

import (
	stderrors "errors"
	"fmt"
	"testing"
	"time"

	"github.com/dop251/goja"

	"github.com/wippyai/hostbridge/errors"
	"github.com/wippyai/hostbridge/isolate"
)

func TestUnwrap_CallbackAdapterIsCached(t *testing.T) {
	env := newTestEnv(t, nil)
	cb := Func("handler", 0, Unbounded, func(args ...any) (any, error) { return nil, nil })

	a1 := env.bridge.Unwrap(cb).(goja.Value)
	a2 := env.bridge.Unwrap(cb).(goja.Value)
	if !a1.SameAs(a2) {
		t.Fatal("adapter not cached")
	}
	if _, ok := goja.AssertFunction(a1); !ok {
		t.Fatal("adapter is not callable")
	}

	var other goja.Value
	env.scope.Run(isolate.NewToken("worker", 1), func() {
		other = env.bridge.Unwrap(cb).(goja.Value)
	})
	if other.SameAs(a1) {
		t.Fatal("adapters should be per isolate")
	}
}

func TestCallbackAdapter_WrapsArgumentsAndClampsArity(t *testing.T) {
	env := newTestEnv(t, nil)

	var got []any
	cb := Func("onItem", 1, 2, func(args ...any) (any, error) {
		got = args
		return "done", nil
	})
	if err := env.bridge.Set(nil, "onItem", cb); err != nil {
		t.Fatal(err)
	}

	res, err := env.host.RunString(`onItem(document.createElement("li"), 2, 3, 4)`)
	if err != nil {
		t.Fatalf("call adapter: %v", err)
	}
	if res.String() != "done" {
		t.Fatalf("result = %v", res)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 args after clamping, got %d", len(got))
	}
	if _, ok := got[0].(*element); !ok {
		t.Fatalf("first argument not wrapped: %T", got[0])
	}

	_, err = env.host.RunString(`onItem()`)
	if err == nil {
		t.Fatal("expected arity error below MinArgs")
	}
}

func TestCallbackAdapter_ErrorsBecomeExceptions(t *testing.T) {
	env := newTestEnv(t, nil)

	cb := Func("fail", 0, 0, func(...any) (any, error) {
		return nil, fmt.Errorf("boom")
	})
	if err := env.bridge.Set(nil, "fail", cb); err != nil {
		t.Fatal(err)
	}

	res, err := env.host.RunString(`(function(){ try { fail(); return "no"; } catch (e) { return String(e.message); } })()`)
	if err != nil {
		t.Fatal(err)
	}
	if res.String() != "boom" {
		t.Fatalf("caught %q", res.String())
	}
}

func TestCallbackAdapter_RethrowsOriginalNativeException(t *testing.T) {
	env := newTestEnv(t, nil)

	cb := Func("nest", 1, 1, func(args ...any) (any, error) {
		el := args[0].(*element)
		_, err := el.Call("appendChild", el)
		return nil, err
	})
	if err := env.bridge.Set(nil, "nest", cb); err != nil {
		t.Fatal(err)
	}

	res, err := env.host.RunString(`(function(){
		try { nest(document.createElement("div")); return "no"; }
		catch (e) { return (e instanceof DOMException) + ":" + e.name; }
	})()`)
	if err != nil {
		t.Fatal(err)
	}
	if res.String() != "true:HierarchyRequestError" {
		t.Fatalf("caught %q", res.String())
	}
}

func TestAdaptNoArgCallback_DiscardsArguments(t *testing.T) {
	env := newTestEnv(t, nil)

	argc := -1
	cb := Func("tick", 0, Unbounded, func(args ...any) (any, error) {
		argc = len(args)
		return nil, nil
	})

	adapter := env.bridge.AdaptNoArgCallback(cb)
	if !adapter.SameAs(env.bridge.AdaptNoArgCallback(cb)) {
		t.Fatal("no-arg adapter not cached")
	}

	fn, _ := goja.AssertFunction(adapter)
	if _, err := fn(goja.Undefined(), env.host.Runtime().ToValue(1), env.host.Runtime().ToValue(2)); err != nil {
		t.Fatal(err)
	}
	if argc != 0 {
		t.Fatalf("callback received %d args", argc)
	}

	if !goja.IsUndefined(env.bridge.AdaptNoArgCallback(nil)) {
		t.Fatal("nil callback should adapt to undefined")
	}
}

func TestTimerCall_SetTimeout(t *testing.T) {
	env := newTestEnv(t, nil)

	calls := 0
	tick := NoArgs("tick", func() error {
		calls++
		return nil
	})

	handle, err := env.bridge.TimerCall(nil, tick, 10, "setTimeout")
	if err != nil {
		t.Fatalf("setTimeout: %v", err)
	}
	if handle == nil {
		t.Fatal("expected a timer handle")
	}

	env.host.Advance(5 * time.Millisecond)
	if calls != 0 {
		t.Fatal("fired early")
	}
	env.host.Advance(5 * time.Millisecond)
	if calls != 1 {
		t.Fatalf("calls = %d", calls)
	}
	env.host.Advance(time.Second)
	if calls != 1 {
		t.Fatal("timeout fired twice")
	}
}

func TestTimerCall_IntervalAndClear(t *testing.T) {
	env := newTestEnv(t, nil)

	calls := 0
	tick := NoArgs("tick", func() error {
		calls++
		return nil
	})

	handle, err := env.bridge.TimerCall(nil, tick, 10, "setInterval")
	if err != nil {
		t.Fatal(err)
	}

	env.host.Advance(35 * time.Millisecond)
	if calls != 3 {
		t.Fatalf("calls = %d, want 3", calls)
	}

	if err := env.bridge.ClearTimer(nil, handle, "clearInterval"); err != nil {
		t.Fatal(err)
	}
	env.host.Advance(100 * time.Millisecond)
	if calls != 3 {
		t.Fatal("interval fired after clear")
	}
	if env.host.Pending() != 0 {
		t.Fatalf("pending = %d", env.host.Pending())
	}
}

func TestTimerCall_SameCallbackSameAdapter(t *testing.T) {
	env := newTestEnv(t, nil)

	calls := 0
	tick := NoArgs("tick", func() error {
		calls++
		return nil
	})

	for i := 0; i < 3; i++ {
		if _, err := env.bridge.TimerCall(nil, tick, 0, "setTimeout"); err != nil {
			t.Fatal(err)
		}
	}
	// armed timers keep the adapter reachable
	if n := len(env.bridge.callbacks.Entries("noarg-callback", tick)); n != 1 {
		t.Fatalf("adapters = %d", n)
	}
	env.host.Advance(time.Millisecond)
	if calls != 3 {
		t.Fatalf("calls = %d", calls)
	}
}

func TestTimerCall_NativeExceptionIsWrapped(t *testing.T) {
	env := newTestEnv(t, nil)
	self := env.object(t, `({ setTimeout: function () { throw new DOMException("not now", "InvalidStateError"); } })`)

	_, err := env.bridge.TimerCall(self, NoArgs("x", func() error { return nil }), 1, "setTimeout")
	if !stderrors.Is(err, errors.ErrNativeException) {
		t.Fatalf("expected NativeException, got %v", err)
	}

	var e *errors.Error
	stderrors.As(err, &e)
	if e.Phase != errors.PhaseFunction {
		t.Fatalf("phase = %s", e.Phase)
	}
	exc, ok := e.Value.(*domException)
	if !ok || exc.Name() != "InvalidStateError" {
		t.Fatalf("exception not wrapped: %T", e.Value)
	}
}

func TestTimerCall_BadInput(t *testing.T) {
	env := newTestEnv(t, nil)

	if _, err := env.bridge.TimerCall(nil, nil, 1, "setTimeout"); err == nil {
		t.Fatal("expected error for nil callback")
	}
	_, err := env.bridge.TimerCall(nil, NoArgs("x", func() error { return nil }), 1, "setLater")
	if !stderrors.Is(err, errors.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if err := env.bridge.ClearTimer(nil, 1, "clearLater"); !stderrors.Is(err, errors.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestTimerCall_CallbackErrorReachesHost(t *testing.T) {
	env := newTestEnv(t, nil)

	var reported []error
	env.host.OnError(func(err error) { reported = append(reported, err) })

	failing := NoArgs("failing", func() error { return fmt.Errorf("tick failed") })
	if _, err := env.bridge.TimerCall(nil, failing, 0, "setTimeout"); err != nil {
		t.Fatal(err)
	}
	env.host.Advance(time.Millisecond)

	if len(reported) != 1 {
		t.Fatalf("reported = %d", len(reported))
	}
}
