
package js_console

import (
	"time"

	"github.com/dop251/goja"
	"github.com/dop251/goja_nodejs/require"
	"github.com/dop251/goja_nodejs/util"
	"github.com/kmcsr/go-logger"
)

const ModuleName = "node:console"

type Function = func(call goja.FunctionCall, runtime *goja.Runtime)(goja.Value)

type Console struct{
	util   *goja.Object
	logger logger.Logger
	timers map[string]time.Time
}

func (c *Console)format(runtime *goja.Runtime, args []goja.Value)(string){
	formatter, ok := goja.AssertFunction(c.util.Get("format"))
	if !ok {
		panic(runtime.NewTypeError("util.format is not a function"))
	}
	res, err := formatter(c.util, args...)
	if err != nil {
		panic(err)
	}
	return res.String()
}

func (c *Console)wrap(out func(string))(Function){
	return func(call goja.FunctionCall, runtime *goja.Runtime)(goja.Value){
		out(c.format(runtime, call.Arguments))
		return nil
	}
}

func (c *Console)assert(call goja.FunctionCall, runtime *goja.Runtime)(goja.Value){
	if call.Argument(0).ToBoolean() {
		return nil
	}
	msg := "Assertion failed"
	if len(call.Arguments) > 1 {
		msg += ": " + c.format(runtime, call.Arguments[1:])
	}
	c.logger.Error(msg)
	return nil
}

func label(call goja.FunctionCall)(string){
	if v := call.Argument(0); !goja.IsUndefined(v) {
		return v.String()
	}
	return "default"
}

func (c *Console)time(call goja.FunctionCall, runtime *goja.Runtime)(goja.Value){
	c.timers[label(call)] = time.Now()
	return nil
}

func (c *Console)timeEnd(call goja.FunctionCall, runtime *goja.Runtime)(goja.Value){
	name := label(call)
	start, ok := c.timers[name]
	if !ok {
		c.logger.Warnf("No such label '%s' for console.timeEnd()", name)
		return nil
	}
	delete(c.timers, name)
	c.logger.Infof("%s: %v", name, time.Since(start))
	return nil
}

func RequireWithLogger(loger logger.Logger)(require.ModuleLoader){
	return func(runtime *goja.Runtime, module *goja.Object){
		c := &Console{
			logger: loger,
			timers: make(map[string]time.Time),
		}

		c.util = require.Require(runtime, util.ModuleName).(*goja.Object)

		o := module.Get("exports").(*goja.Object)
		o.Set("trace", c.wrap(func(v string){ c.logger.Trace(v) }))
		o.Set("debug", c.wrap(func(v string){ c.logger.Debug(v) }))
		o.Set("info",  c.wrap(func(v string){ c.logger.Info(v) }))
		o.Set("warn",  c.wrap(func(v string){ c.logger.Warn(v) }))
		o.Set("error", c.wrap(func(v string){ c.logger.Error(v) }))
		o.Set("log", o.Get("info"))
		o.Set("assert", c.assert)
		o.Set("time", c.time)
		o.Set("timeEnd", c.timeEnd)
	}
}

// Enable exposes the module as the global console object.
func Enable(runtime *goja.Runtime){
	runtime.Set("console", require.Require(runtime, ModuleName))
}

func RegisterWithLogger(r *require.Registry, loger logger.Logger){
	r.RegisterNativeModule(ModuleName, RequireWithLogger(loger))
}
