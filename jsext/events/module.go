
package js_events

import (
	"github.com/dop251/goja"
	"github.com/dop251/goja_nodejs/require"
	"github.com/kmcsr/go-logger"

	"github.com/kmcsr/go-jsbridge/emitter"
)

const ModuleName = "node:events"

type Constructor = func(call goja.ConstructorCall, runtime *goja.Runtime)(*goja.Object)

// newEventEmitter builds the script-side EventEmitter class: an open
// registry, so any event name can be used.
func newEventEmitter(loger logger.Logger)(Constructor){
	return func(call goja.ConstructorCall, runtime *goja.Runtime)(*goja.Object){
		reg := emitter.New(nil,
			emitter.OpenEvents(),
			emitter.WithName("EventEmitter"),
			emitter.WithLogger(loger))
		Bind(runtime, call.This, reg, loger)
		return nil
	}
}

func Require(loger logger.Logger)(require.ModuleLoader){
	return func(runtime *goja.Runtime, module *goja.Object){
		o := module.Get("exports").(*goja.Object)
		ctor := runtime.ToValue(newEventEmitter(loger))
		o.Set("EventEmitter", ctor)
		o.Set("default", ctor)
	}
}

func Register(r *require.Registry, loger logger.Logger){
	r.RegisterNativeModule(ModuleName, Require(loger))
}
