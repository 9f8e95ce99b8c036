package lazy

import (
	stderrors "errors"
	"fmt"
	"strings"
	"testing"

	"github.com/dop251/goja"

	"github.com/wippyai/hostbridge/errors"
)

func TestCell_ComputesOnce(t *testing.T) {
	calls := 0
	c := NewCell("answer", func() (int, error) {
		calls++
		return 42, nil
	})

	if c.State() != Uninitialized {
		t.Fatalf("state = %s", c.State())
	}
	for i := 0; i < 100; i++ {
		v, err := c.Get()
		if err != nil || v != 42 {
			t.Fatalf("Get = %d, %v", v, err)
		}
	}
	if calls != 1 {
		t.Fatalf("computed %d times", calls)
	}
	if c.State() != Initialized {
		t.Fatalf("state = %s", c.State())
	}
}

func TestCell_Circular(t *testing.T) {
	var a, b *Cell[int]
	a = NewCell("a", func() (int, error) {
		v, err := b.Get()
		return v + 1, err
	})
	b = NewCell("b", func() (int, error) {
		v, err := a.Get()
		return v + 1, err
	})

	_, err := a.Get()
	if !stderrors.Is(err, errors.ErrCircularInitialization) {
		t.Fatalf("expected circular initialization, got %v", err)
	}
	if !strings.Contains(err.Error(), `"a"`) {
		t.Fatalf("error does not name the property: %v", err)
	}
	if a.State() != Uninitialized || b.State() != Uninitialized {
		t.Fatal("failed computation must reset state")
	}
}

func TestCell_RetriesAfterError(t *testing.T) {
	fail := true
	c := NewCell("flaky", func() (string, error) {
		if fail {
			return "", fmt.Errorf("not yet")
		}
		return "ok", nil
	})

	if _, err := c.Get(); err == nil {
		t.Fatal("expected error")
	}
	fail = false
	if v, err := c.Get(); err != nil || v != "ok" {
		t.Fatalf("Get = %q, %v", v, err)
	}
}

func TestCell_Set(t *testing.T) {
	ro := NewCell("ro", func() (int, error) { return 1, nil })
	if err := ro.Set(2); err == nil {
		t.Fatal("read-only cell accepted Set")
	}

	calls := 0
	rw := NewWritableCell("rw", func() (int, error) {
		calls++
		return 1, nil
	})
	if err := rw.Set(5); err != nil {
		t.Fatal(err)
	}
	if v, _ := rw.Get(); v != 5 || calls != 0 {
		t.Fatalf("Get = %d after Set, computed %d times", v, calls)
	}
}

func TestLibrary_DefineAndGet(t *testing.T) {
	calls := 0
	lib := NewLibrary("core")
	err := lib.DefineAll(map[string]Descriptor{
		"pi":      {Value: 3.14},
		"counter": {Value: 0, Writable: true},
		"config": {Get: func() (any, error) {
			calls++
			return "loaded", nil
		}},
	})
	if err != nil {
		t.Fatal(err)
	}

	if got := fmt.Sprint(lib.Names()); got != "[config counter pi]" {
		t.Fatalf("Names = %s", got)
	}
	if st, _ := lib.State("config"); st != Uninitialized {
		t.Fatalf("config state = %s", st)
	}
	for i := 0; i < 3; i++ {
		if v, err := lib.Get("config"); err != nil || v != "loaded" {
			t.Fatalf("Get = %v, %v", v, err)
		}
	}
	if calls != 1 {
		t.Fatalf("computed %d times", calls)
	}

	if err := lib.Set("counter", 3); err != nil {
		t.Fatal(err)
	}
	if v, _ := lib.Get("counter"); v != 3 {
		t.Fatalf("counter = %v", v)
	}
	if err := lib.Set("pi", 3); err == nil {
		t.Fatal("read-only binding accepted Set")
	}
	if _, err := lib.Get("missing"); !stderrors.Is(err, errors.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if err := lib.Set("missing", 1); !stderrors.Is(err, errors.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestLibrary_DefineErrors(t *testing.T) {
	lib := NewLibrary("core")
	if err := lib.Define("", Descriptor{}); err == nil {
		t.Fatal("accepted empty name")
	}
	if err := lib.Define("x", Descriptor{Value: 1}); err != nil {
		t.Fatal(err)
	}
	if err := lib.Define("x", Descriptor{Value: 2}); err == nil {
		t.Fatal("accepted duplicate binding")
	}
}

func TestLibrary_SetterPairing(t *testing.T) {
	var seen []any
	computed := false
	lib := NewLibrary("core")
	err := lib.Define("level", Descriptor{
		Get: func() (any, error) {
			computed = true
			return "info", nil
		},
		Set: func(v any) error {
			if v == "bogus" {
				return fmt.Errorf("invalid level")
			}
			seen = append(seen, v)
			return nil
		},
	})
	if err != nil {
		t.Fatal(err)
	}

	if !lib.Writable("level") {
		t.Fatal("binding with setter must be writable")
	}
	if err := lib.Set("level", "debug"); err != nil {
		t.Fatal(err)
	}
	if err := lib.Set("level", "bogus"); err == nil {
		t.Fatal("setter error not returned")
	}
	v, _ := lib.Get("level")
	if v != "debug" || computed {
		t.Fatalf("level = %v, computed = %v", v, computed)
	}
	if len(seen) != 1 {
		t.Fatalf("setter saw %v", seen)
	}
}

func newVM(t *testing.T, lib *Library) *goja.Runtime {
	t.Helper()
	vm := goja.New()
	if err := Install(vm, vm.GlobalObject(), lib); err != nil {
		t.Fatalf("Install: %v", err)
	}
	return vm
}

func TestInstall_RedefinesAsDataProperty(t *testing.T) {
	calls := 0
	lib := NewLibrary("core")
	lib.Define("big", Descriptor{Get: func() (any, error) {
		calls++
		return 7, nil
	}})
	vm := newVM(t, lib)

	before, err := vm.RunString(`typeof Object.getOwnPropertyDescriptor(globalThis, "big").get`)
	if err != nil {
		t.Fatal(err)
	}
	if before.String() != "function" {
		t.Fatalf("expected accessor before read, got %s", before)
	}

	v, err := vm.RunString(`big + big + big`)
	if err != nil {
		t.Fatal(err)
	}
	if v.ToInteger() != 21 || calls != 1 {
		t.Fatalf("value = %v, computed %d times", v, calls)
	}

	after, err := vm.RunString(`(function(){
		var d = Object.getOwnPropertyDescriptor(globalThis, "big");
		return ("value" in d) + ":" + d.writable;
	})()`)
	if err != nil {
		t.Fatal(err)
	}
	if after.String() != "true:false" {
		t.Fatalf("descriptor after read = %s", after)
	}
}

func TestInstall_WritableBinding(t *testing.T) {
	lib := NewLibrary("core")
	lib.Define("count", Descriptor{Value: 1, Writable: true})
	vm := newVM(t, lib)

	if _, err := vm.RunString(`count = 5`); err != nil {
		t.Fatal(err)
	}
	if v, _ := lib.Get("count"); v.(goja.Value).ToInteger() != 5 {
		t.Fatalf("library value = %v", v)
	}

	v, err := vm.RunString(`count++; count`)
	if err != nil {
		t.Fatal(err)
	}
	if v.ToInteger() != 6 {
		t.Fatalf("count = %v", v)
	}
}

func TestInstall_CircularThrows(t *testing.T) {
	lib := NewLibrary("core")
	var vm *goja.Runtime
	lib.Define("self", Descriptor{Get: func() (any, error) {
		return vm.RunString(`self + 1`)
	}})
	vm = newVM(t, lib)

	_, err := vm.RunString(`self`)
	if err == nil {
		t.Fatal("expected circular initialization to throw")
	}
	if !strings.Contains(err.Error(), "circular initialization") {
		t.Fatalf("unexpected error: %v", err)
	}

	st, _ := lib.State("self")
	if st != Uninitialized {
		t.Fatalf("state = %s", st)
	}
}

func TestInstall_NilArguments(t *testing.T) {
	vm := goja.New()
	if err := Install(vm, nil, NewLibrary("x")); err == nil {
		t.Fatal("expected error for nil target")
	}
}
