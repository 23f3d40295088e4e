
package js_device

import (
	"github.com/dop251/goja"

	"github.com/kmcsr/go-jsbridge/device"
	"github.com/kmcsr/go-jsbridge/native"
)

type Function = func(call goja.FunctionCall, runtime *goja.Runtime)(goja.Value)

func present(v goja.Value)(bool){
	return v != nil && !goja.IsUndefined(v) && !goja.IsNull(v)
}

func getString(o *goja.Object, name string, def string)(string){
	if v := o.Get(name); present(v) {
		return v.String()
	}
	return def
}

func getBool(o *goja.Object, name string, def bool)(bool){
	if v := o.Get(name); present(v) {
		return v.ToBoolean()
	}
	return def
}

func toChannel(v goja.Value, def uint8)(uint8){
	if !present(v) {
		return def
	}
	n := v.ToInteger()
	if n < 0 {
		return 0
	}
	if n > 255 {
		return 255
	}
	return (uint8)(n)
}

// toColor reads {red, green, blue, alpha} with 0-255 channels; alpha
// defaults to opaque.
func toColor(vm *goja.Runtime, v goja.Value)(c device.Color){
	o := v.ToObject(vm)
	return device.Color{
		Red: toChannel(o.Get("red"), 0),
		Green: toChannel(o.Get("green"), 0),
		Blue: toChannel(o.Get("blue"), 0),
		Alpha: toChannel(o.Get("alpha"), 255),
	}
}

func colorValue(vm *goja.Runtime, c device.Color)(goja.Value){
	o := vm.NewObject()
	o.Set("red", c.Red)
	o.Set("green", c.Green)
	o.Set("blue", c.Blue)
	o.Set("alpha", c.Alpha)
	return o
}

func accelerationValue(vm *goja.Runtime, v any)(goja.Value){
	a, ok := v.(native.Acceleration)
	if !ok {
		return vm.ToValue(v)
	}
	o := vm.NewObject()
	o.Set("x", a.X)
	o.Set("y", a.Y)
	o.Set("z", a.Z)
	return o
}

func changeValue(vm *goja.Runtime, v any)(goja.Value){
	ev, ok := v.(device.ChangeEvent)
	if !ok {
		return vm.ToValue(v)
	}
	o := vm.NewObject()
	o.Set("code", ev.Code)
	o.Set("message", ev.Message)
	return o
}

func constants(vm *goja.Runtime, kv ...string)(*goja.Object){
	o := vm.NewObject()
	for i := 0; i + 1 < len(kv); i += 2 {
		o.Set(kv[i], kv[i + 1])
	}
	return o
}

// accessor defines a configurable, enumerable property backed by get and set.
func accessor(vm *goja.Runtime, o *goja.Object, name string, get func()(any), set func(goja.Value)){
	getter := vm.ToValue(func(goja.FunctionCall)(goja.Value){
		return vm.ToValue(get())
	})
	setter := vm.ToValue(func(call goja.FunctionCall)(goja.Value){
		set(call.Argument(0))
		return goja.Undefined()
	})
	if err := o.DefineAccessorProperty(name, getter, setter, goja.FLAG_TRUE, goja.FLAG_TRUE); err != nil {
		panic(vm.NewGoError(err))
	}
}

func method(o *goja.Object, name string, fn func()){
	o.Set(name, func(goja.FunctionCall)(goja.Value){
		fn()
		return goja.Undefined()
	})
}
