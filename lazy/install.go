package lazy

import (
	"github.com/dop251/goja"

	"github.com/wippyai/hostbridge/errors"
)

// Install defines every binding of lib on target as an accessor property.
// The first read computes the binding and redefines the property as a plain
// data property holding the result, writable when the binding is. Errors,
// including circular initialization, are thrown into the heap.
func Install(vm *goja.Runtime, target *goja.Object, lib *Library) error {
	if vm == nil || target == nil || lib == nil {
		return errors.NilPointer(errors.PhaseLazy, "install argument")
	}
	for _, name := range lib.Names() {
		if err := installOne(vm, target, lib, name); err != nil {
			return errors.Wrap(errors.PhaseLazy, errors.KindInvalidInput, err, "install "+name)
		}
	}
	return nil
}

func installOne(vm *goja.Runtime, target *goja.Object, lib *Library, name string) error {
	writable := lib.Writable(name)

	getter := vm.ToValue(func(goja.FunctionCall) goja.Value {
		v, err := lib.Get(name)
		if err != nil {
			panic(vm.NewGoError(err))
		}
		val := toValue(vm, v)

		flag := goja.FLAG_FALSE
		if writable {
			flag = goja.FLAG_TRUE
		}
		if err := target.DefineDataProperty(name, val, flag, goja.FLAG_TRUE, goja.FLAG_TRUE); err != nil {
			panic(vm.NewGoError(err))
		}
		return val
	})

	var setter goja.Value
	if writable {
		setter = vm.ToValue(func(call goja.FunctionCall) goja.Value {
			if err := lib.Set(name, call.Argument(0)); err != nil {
				panic(vm.NewGoError(err))
			}
			return goja.Undefined()
		})
	}

	return target.DefineAccessorProperty(name, getter, setter, goja.FLAG_TRUE, goja.FLAG_TRUE)
}

func toValue(vm *goja.Runtime, v any) goja.Value {
	switch x := v.(type) {
	case nil:
		return goja.Undefined()
	case goja.Value:
		return x
	default:
		return vm.ToValue(x)
	}
}
