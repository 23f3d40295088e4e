
package js_device_test

import (
	"testing"

	"github.com/dop251/goja"
	noderequire "github.com/dop251/goja_nodejs/require"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kmcsr/go-jsbridge/device"
	. "github.com/kmcsr/go-jsbridge/jsext/device"
	"github.com/kmcsr/go-jsbridge/native"
	"github.com/kmcsr/go-jsbridge/native/sim"
)

type fixture struct{
	vm  *goja.Runtime
	p   *sim.Platform
	svc *device.MotionService
	mod *Module
}

func newFixture(t *testing.T)(f *fixture){
	f = &fixture{
		vm: goja.New(),
		p: sim.New(),
	}
	f.svc = device.NewMotionService(f.p.MotionManager(), nil)
	require.NoError(t, f.svc.Init())
	t.Cleanup(f.svc.Teardown)
	acc := device.NewAccelerometer(f.svc, device.Options{})
	f.mod = NewModule(f.p, acc, device.Options{})
	registry := new(noderequire.Registry)
	f.mod.Register(registry)
	registry.Enable(f.vm)
	return
}

func (f *fixture)run(t *testing.T, src string)(goja.Value){
	v, err := f.vm.RunString(src)
	require.NoError(t, err)
	return v
}

func TestAccelerometerModule(t *testing.T){
	f := newFixture(t)
	f.run(t, `
		var acc = require("jsbridge:accelerometer");
		var samples = [];
		acc.on(acc.Events.ACCELERATE, function(a){ samples.push(a.x + "/" + a.y + "/" + a.z) });
		acc.updateInterval = 40;
		acc.start();
	`)
	assert.True(t, f.p.Motion().AccelerometerActive())
	assert.InDelta(t, 0.04, f.p.Motion().AccelerometerUpdateInterval(), 1e-9)
	assert.Equal(t, int64(40), f.run(t, `acc.updateInterval`).Export())

	f.p.Motion().Push(native.Acceleration{X: 1, Y: 2, Z: 3})
	f.run(t, `acc.stop()`)
	f.p.Motion().Push(native.Acceleration{X: 4})
	assert.Equal(t, "1/2/3", f.run(t, `samples.join(",")`).String())
	assert.Equal(t, false, f.run(t, `acc.isRunning()`).Export())
}

func TestAccelerometerSlotProperty(t *testing.T){
	f := newFixture(t)
	f.run(t, `
		var acc = require("jsbridge:accelerometer");
		var a = 0, b = 0;
		acc.start();
		acc.onAccelerate = function(){ a++ };
		acc.onAccelerate = function(){ b++ };
	`)
	f.p.Motion().Push(native.Acceleration{})
	assert.Equal(t, "0,1,1", f.run(t, `[a, b, acc.listenerCount("accelerate")].join(",")`).String())
}

func TestMenuItemModule(t *testing.T){
	f := newFixture(t)
	f.run(t, `
		var MenuItem = require("jsbridge:menuitem").MenuItem;
		var item = new MenuItem({title: "Share", titleColor: {red: 255, green: 0, blue: 51}});
		var selected = 0;
		item.on(MenuItem.Events.SELECTED, function(){ selected++ });
	`)
	items := f.p.MenuItems()
	require.Len(t, items, 1)
	sm := items[0]
	assert.Equal(t, "Share", sm.Title())
	titleColor := sm.TitleColor()
	assert.InDeltaSlice(t, []float64{1, 0, 0.2, 1}, titleColor[:], 1e-9)

	assert.True(t, sm.Select())
	assert.Equal(t, int64(1), f.run(t, `selected`).Export())

	f.run(t, `item.title = "Send"; item.enabled = false`)
	assert.Equal(t, "Send", sm.Title())
	assert.False(t, sm.Enabled())
	assert.Equal(t, "Send,255,false", f.run(t, `[item.title, item.titleColor.red, item.enabled].join(",")`).String())

	assert.Equal(t, 1, f.mod.Owned())
	f.run(t, `item.release()`)
	assert.True(t, sm.Released())
	assert.Equal(t, 0, f.mod.Owned())
}

func TestPlayerModule(t *testing.T){
	f := newFixture(t)
	f.run(t, `
		var mod = require("jsbridge:player");
		var player = new mod.LiveMediaPlayer({inputUrl: "rtmp://example.com/live", scaleType: mod.ScaleType.ASPECT_FILL});
		var codes = [];
		player.onChange = function(ev){ codes.push(ev.code) };
		player.start();
	`)
	players := f.p.Players()
	require.Len(t, players, 1)
	sp := players[0]
	assert.Equal(t, native.ScaleAspectFill, sp.ScaleMode())
	assert.Equal(t, true, f.run(t, `player.isPlaying()`).Export())

	f.run(t, `player.pause()`)
	assert.Equal(t, "1000,1001,1102,1103", f.run(t, `codes.join(",")`).String())

	v := f.run(t, `
		var name = "";
		try { player.scaleType = "zoom" } catch (e) { name = e.name }
		name + "|" + player.scaleType
	`)
	assert.Equal(t, "TypeError|aspectFill", v.String())

	_, err := f.vm.RunString(`new mod.LiveMediaPlayer({scaleType: "zoom"})`)
	assert.Error(t, err)
	assert.Len(t, f.p.Players(), 1)
}

func TestReleaseAll(t *testing.T){
	f := newFixture(t)
	f.run(t, `
		var MenuItem = require("jsbridge:menuitem").MenuItem;
		var Player = require("jsbridge:player").LiveMediaPlayer;
		new MenuItem(); new MenuItem(); new Player();
	`)
	assert.Equal(t, 3, f.mod.Owned())
	f.mod.ReleaseAll()
	assert.Equal(t, 0, f.mod.Owned())
	assert.Empty(t, f.p.MenuItems())
	assert.Empty(t, f.p.Players())
}
