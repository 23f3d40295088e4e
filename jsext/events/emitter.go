
package js_events

import (
	"github.com/dop251/goja"
	"github.com/kmcsr/go-logger"

	"github.com/kmcsr/go-jsbridge/emitter"
)

type Function = func(call goja.FunctionCall, runtime *goja.Runtime)(goja.Value)

// ValueFunc converts an emitted Go value into the value listeners receive.
type ValueFunc func(vm *goja.Runtime, v any)(goja.Value)

func defaultValue(vm *goja.Runtime, v any)(goja.Value){
	return vm.ToValue(v)
}

// Binder exposes one registry as the EventEmitter surface of a JS object.
// Listeners are called with the object as `this`; the registry must only be
// emitted on the goroutine that runs vm.
type Binder struct{
	vm    *goja.Runtime
	this  *goja.Object
	reg   *emitter.Registry
	loger logger.Logger
	conv  ValueFunc
}

type Option func(b *Binder)

func WithValueFunc(fn ValueFunc)(Option){
	return func(b *Binder){
		b.conv = fn
	}
}

func Bind(vm *goja.Runtime, obj *goja.Object, reg *emitter.Registry, loger logger.Logger, opts ...Option)(b *Binder){
	b = &Binder{
		vm: vm,
		this: obj,
		reg: reg,
		loger: loger,
		conv: defaultValue,
	}
	for _, opt := range opts {
		opt(b)
	}

	on := b.subscribe(reg.OnKey)
	obj.Set("on", on)
	obj.Set("addListener", on)
	obj.Set("once", b.subscribe(reg.OnceKey))
	obj.Set("prependListener", b.subscribe(reg.PrependKey))
	off := b.off
	obj.Set("off", off)
	obj.Set("removeListener", off)
	obj.Set("removeAllListeners", b.removeAll)
	obj.Set("emit", b.emit)
	obj.Set("listenerCount", b.listenerCount)
	obj.Set("eventNames", b.eventNames)
	return
}

func (b *Binder)Registry()(*emitter.Registry){
	return b.reg
}

func (b *Binder)Object()(*goja.Object){
	return b.this
}

func (b *Binder)throw(err error){
	panic(b.vm.NewGoError(err))
}

// callable returns the listener object, which is also its Off key.
func (b *Binder)callable(v goja.Value)(*goja.Object, goja.Callable){
	fn, ok := goja.AssertFunction(v)
	if !ok {
		panic(b.vm.NewTypeError("The \"listener\" argument must be of type function. Received %s", v.String()))
	}
	return v.ToObject(b.vm), fn
}

func (b *Binder)handler(fn goja.Callable)(emitter.Handler){
	return func(args ...any){
		vals := make([]goja.Value, len(args))
		for i, a := range args {
			if v, ok := a.(goja.Value); ok {
				vals[i] = v
			}else{
				vals[i] = b.conv(b.vm, a)
			}
		}
		if _, err := fn(b.this, vals...); err != nil {
			b.loger.Errorf("%s: listener failed: %v", b.reg.Name(), err)
		}
	}
}

type subscribeFunc = func(event string, key any, fn emitter.Handler)(emitter.CancelFunc, error)

func (b *Binder)subscribe(add subscribeFunc)(Function){
	return func(call goja.FunctionCall, vm *goja.Runtime)(goja.Value){
		event := call.Argument(0).String()
		key, fn := b.callable(call.Argument(1))
		cancel, err := add(event, key, b.handler(fn))
		if err != nil {
			b.throw(err)
		}
		return vm.ToValue(func(goja.FunctionCall)(goja.Value){
			cancel()
			return goja.Undefined()
		})
	}
}

func (b *Binder)off(call goja.FunctionCall, vm *goja.Runtime)(goja.Value){
	event := call.Argument(0).String()
	var err error
	if fn := call.Argument(1); goja.IsUndefined(fn) || goja.IsNull(fn) {
		err = b.reg.OffAll(event)
	}else{
		err = b.reg.OffKey(event, fn.ToObject(vm))
	}
	if err != nil {
		b.throw(err)
	}
	return b.this
}

func (b *Binder)removeAll(call goja.FunctionCall, vm *goja.Runtime)(goja.Value){
	if ev := call.Argument(0); goja.IsUndefined(ev) {
		b.reg.Clear()
	}else if err := b.reg.OffAll(ev.String()); err != nil {
		b.throw(err)
	}
	return b.this
}

func (b *Binder)emit(call goja.FunctionCall, vm *goja.Runtime)(goja.Value){
	event := call.Argument(0).String()
	var args []any
	if len(call.Arguments) > 1 {
		args = make([]any, len(call.Arguments) - 1)
		for i, v := range call.Arguments[1:] {
			args[i] = v
		}
	}
	return vm.ToValue(b.reg.Emit(event, args...))
}

func (b *Binder)listenerCount(call goja.FunctionCall, vm *goja.Runtime)(goja.Value){
	return vm.ToValue(b.reg.ListenerCount(call.Argument(0).String()))
}

func (b *Binder)eventNames(call goja.FunctionCall, vm *goja.Runtime)(goja.Value){
	names := b.reg.EventNames()
	items := make([]any, len(names))
	for i, n := range names {
		items[i] = n
	}
	return vm.NewArray(items...)
}

// DefineSlot installs prop as the single-handler accessor of event.
// Assigning a function replaces every subscriber of the event; assigning
// null or undefined removes them all. Reading returns the function assigned
// through the property while it is still subscribed.
func (b *Binder)DefineSlot(prop string, event string){
	slot := b.reg.Slot(event)
	getter := b.vm.ToValue(func(goja.FunctionCall)(goja.Value){
		if obj, ok := slot.Key().(*goja.Object); ok {
			return obj
		}
		return goja.Null()
	})
	setter := b.vm.ToValue(func(call goja.FunctionCall)(goja.Value){
		var err error
		if v := call.Argument(0); goja.IsUndefined(v) || goja.IsNull(v) {
			err = slot.Set(nil)
		}else{
			key, fn := b.callable(v)
			err = slot.SetKey(key, b.handler(fn))
		}
		if err != nil {
			b.throw(err)
		}
		return goja.Undefined()
	})
	if err := b.this.DefineAccessorProperty(prop, getter, setter, goja.FLAG_TRUE, goja.FLAG_TRUE); err != nil {
		b.throw(err)
	}
}
