package main

import (
	"fmt"
	"io"

	"github.com/dop251/goja"

	"github.com/wippyai/hostbridge/bridge"
	"github.com/wippyai/hostbridge/identity"
	"github.com/wippyai/hostbridge/runtime"
)

// console is the script-facing logging host.
type console struct {
	out io.Writer
}

func (c *console) Namespace() string {
	return "console"
}

func (c *console) Log(args ...any) {
	fmt.Fprintln(c.out, args...)
}

func (c *console) Error(args ...any) {
	fmt.Fprintln(c.out, append([]any{"error:"}, args...)...)
}

// isolateView is what one isolate receives for a value.
type isolateView struct {
	isolate string
	wrapper string
	cached  bool
}

func (v isolateView) String() string {
	state := "created"
	if v.cached {
		state = "cached"
	}
	return fmt.Sprintf("%-12s %-8s %s", v.isolate, state, v.wrapper)
}

// inspect evaluates expr once and wraps the result under every isolate.
func inspect(rt *runtime.Runtime, expr string) ([]isolateView, error) {
	res, err := rt.Eval(expr)
	if err != nil {
		return nil, err
	}

	b := rt.Bridge()
	native, ok := b.Unwrap(res).(*goja.Object)
	if !ok {
		return []isolateView{{isolate: "*", wrapper: describe(res), cached: false}}, nil
	}

	var views []isolateView
	for _, tok := range rt.Isolates() {
		_, hit := b.Objects().Get(identity.PurposeWrapper, native, tok)
		var w any
		rt.Scope().Run(tok, func() { w = b.Wrap(native) })
		views = append(views, isolateView{
			isolate: tok.Name(),
			wrapper: describe(w),
			cached:  hit,
		})
	}
	return views, nil
}

// describe renders a managed value: wrappers by type and address,
// everything else by its string form.
func describe(v any) string {
	switch x := v.(type) {
	case nil:
		return "undefined"
	case bridge.Wrapper:
		return fmt.Sprintf("%T@%p -> %s", x, x, className(x.Native()))
	case *goja.Object:
		return fmt.Sprintf("native %s (no wrapper)", className(x))
	case goja.Value:
		return x.String()
	default:
		return fmt.Sprint(x)
	}
}

func className(obj *goja.Object) string {
	if name := (bridge.ConstructorName{}).Classify(obj); name != "" {
		return name
	}
	return "Object"
}
