
package js_events_test

import (
	"testing"

	"github.com/dop251/goja"
	noderequire "github.com/dop251/goja_nodejs/require"
	logrusl "github.com/kmcsr/go-logger/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kmcsr/go-jsbridge/emitter"
	. "github.com/kmcsr/go-jsbridge/jsext/events"
)

func newTarget(t *testing.T, opts ...emitter.Option)(*goja.Runtime, *emitter.Registry, *Binder){
	vm := goja.New()
	reg := emitter.New(emitter.Events{
		"tick": {},
		"done": {},
	}, opts...)
	obj := vm.NewObject()
	b := Bind(vm, obj, reg, logrusl.Logger)
	require.NoError(t, vm.Set("target", obj))
	return vm, reg, b
}

func run(t *testing.T, vm *goja.Runtime, src string)(goja.Value){
	v, err := vm.RunString(src)
	require.NoError(t, err)
	return v
}

func TestBindOnEmitOff(t *testing.T){
	vm, reg, _ := newTarget(t)
	run(t, vm, `
		var got = [];
		function a(v){ got.push("a" + v) }
		function b(v){ got.push("b" + v) }
		target.on("tick", a);
		var cancelB = target.on("tick", b);
	`)
	assert.Equal(t, 2, reg.ListenerCount("tick"))

	assert.True(t, reg.Emit("tick", 1))
	run(t, vm, `target.emit("tick", 2); cancelB(); cancelB(); target.emit("tick", 3)`)
	run(t, vm, `target.off("tick", a); target.emit("tick", 4)`)
	assert.Equal(t, "a1,b1,a2,b2,a3", run(t, vm, `got.join(",")`).String())
	assert.Equal(t, 0, reg.ListenerCount("tick"))
	assert.Equal(t, false, run(t, vm, `target.emit("tick", 5)`).Export())
}

func TestBindThisAndOnce(t *testing.T){
	vm, _, _ := newTarget(t)
	v := run(t, vm, `
		var n = 0, self = null;
		target.once("done", function(){ n++; self = this });
		target.emit("done"); target.emit("done");
		[n, self === target, target.listenerCount("done")].join(",")
	`)
	assert.Equal(t, "1,true,0", v.String())
}

func TestBindPrependAndNames(t *testing.T){
	vm, _, _ := newTarget(t)
	v := run(t, vm, `
		var order = [];
		target.on("tick", function(){ order.push(1) });
		target.prependListener("tick", function(){ order.push(0) });
		target.emit("tick");
		order.join(",") + "|" + target.eventNames().join(",")
	`)
	assert.Equal(t, "0,1|done,tick", v.String())
}

func TestBindRemoveAll(t *testing.T){
	vm, reg, _ := newTarget(t)
	run(t, vm, `
		target.on("tick", function(){});
		target.on("done", function(){});
		target.removeAllListeners("tick");
	`)
	assert.Equal(t, 0, reg.ListenerCount("tick"))
	assert.Equal(t, 1, reg.ListenerCount("done"))
	run(t, vm, `target.off("done")`)
	assert.Equal(t, 0, reg.ListenerCount("done"))

	run(t, vm, `target.on("tick", function(){}); target.on("done", function(){}); target.removeAllListeners()`)
	assert.Equal(t, 0, reg.ListenerCount("tick") + reg.ListenerCount("done"))
}

func TestBindStrictThrows(t *testing.T){
	vm, _, _ := newTarget(t, emitter.WithPolicy(emitter.Strict))
	_, err := vm.RunString(`target.on("shake", function(){})`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "shake")

	v := run(t, vm, `
		var caught = false;
		try { target.off("shake") } catch (e) { caught = true }
		caught
	`)
	assert.Equal(t, true, v.Export())
}

func TestBindPermissiveIgnores(t *testing.T){
	vm, reg, _ := newTarget(t)
	v := run(t, vm, `
		var cancel = target.on("shake", function(){});
		cancel();
		target.listenerCount("shake")
	`)
	assert.Equal(t, int64(0), v.Export())
	assert.False(t, reg.Has("shake"))
}

func TestBindRejectsNonFunction(t *testing.T){
	vm, _, _ := newTarget(t)
	v := run(t, vm, `
		var name = "";
		try { target.on("tick", 42) } catch (e) { name = e.name }
		name
	`)
	assert.Equal(t, "TypeError", v.String())
}

func TestBindListenerErrorDoesNotStopDelivery(t *testing.T){
	vm, reg, _ := newTarget(t)
	run(t, vm, `
		var n = 0;
		target.on("tick", function(){ throw new Error("boom") });
		target.on("tick", function(){ n++ });
	`)
	assert.True(t, reg.Emit("tick"))
	assert.Equal(t, int64(1), run(t, vm, `n`).Export())
}

func TestBindConvertsValues(t *testing.T){
	vm := goja.New()
	reg := emitter.New(emitter.Events{"point": {}})
	obj := vm.NewObject()
	Bind(vm, obj, reg, logrusl.Logger, WithValueFunc(func(vm *goja.Runtime, v any)(goja.Value){
		p := v.([2]int)
		o := vm.NewObject()
		o.Set("x", p[0])
		o.Set("y", p[1])
		return o
	}))
	require.NoError(t, vm.Set("target", obj))
	run(t, vm, `var sum = 0; target.on("point", function(p){ sum = p.x + p.y })`)
	reg.Emit("point", [2]int{3, 4})
	assert.Equal(t, int64(7), run(t, vm, `sum`).Export())
}

func TestDefineSlot(t *testing.T){
	vm, reg, b := newTarget(t)
	b.DefineSlot("onTick", "tick")
	v := run(t, vm, `
		var calls = [];
		function f(){ calls.push("f") }
		function g(){ calls.push("g") }
		target.on("tick", function(){ calls.push("on") });
		target.onTick = f;
		target.emit("tick");
		target.onTick = g;
		target.emit("tick");
		calls.join(",") + "|" + (target.onTick === g)
	`)
	assert.Equal(t, "f,g|true", v.String())
	assert.Equal(t, 1, reg.ListenerCount("tick"))

	run(t, vm, `target.onTick = null`)
	assert.Equal(t, 0, reg.ListenerCount("tick"))
	assert.Equal(t, true, run(t, vm, `target.onTick === null`).Export())
}

func TestNodeEventsModule(t *testing.T){
	vm := goja.New()
	registry := new(noderequire.Registry)
	Register(registry, logrusl.Logger)
	registry.Enable(vm)
	v := run(t, vm, `
		var EventEmitter = require("node:events").EventEmitter;
		var e = new EventEmitter();
		var got = [];
		e.on("anything", function(a, b){ got.push(a + b) });
		e.once("later", function(){ got.push("later") });
		e.emit("anything", 1, 2);
		e.emit("later"); e.emit("later");
		got.join(",") + "|" + e.eventNames().join(",")
	`)
	assert.Equal(t, "3,later|anything,later", v.String())
}
