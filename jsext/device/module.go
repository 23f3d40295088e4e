
// Package js_device exposes the bridged device components to scripts as
// require-able modules.
package js_device

import (
	"sync"

	"github.com/dop251/goja"
	"github.com/dop251/goja_nodejs/require"
	"github.com/kmcsr/go-logger"
	logrusl "github.com/kmcsr/go-logger/logrus"

	"github.com/kmcsr/go-jsbridge/device"
	js_events "github.com/kmcsr/go-jsbridge/jsext/events"
	"github.com/kmcsr/go-jsbridge/native"
)

const (
	AccelerometerModuleName = "jsbridge:accelerometer"
	MenuItemModuleName      = "jsbridge:menuitem"
	PlayerModuleName        = "jsbridge:player"
)

type releaser interface{
	Release()
}

// Module builds the device modules of one runtime and keeps track of the
// native objects scripts create, so they can be released together.
type Module struct{
	platform native.Platform
	accel    *device.Accelerometer
	opts     device.Options

	mu    sync.Mutex
	owned map[releaser]struct{}
}

func NewModule(platform native.Platform, accel *device.Accelerometer, opts device.Options)(*Module){
	return &Module{
		platform: platform,
		accel: accel,
		opts: opts,
		owned: make(map[releaser]struct{}),
	}
}

func (m *Module)logger()(logger.Logger){
	if m.opts.Logger == nil {
		return logrusl.Logger
	}
	return m.opts.Logger
}

func (m *Module)own(r releaser){
	m.mu.Lock()
	defer m.mu.Unlock()
	m.owned[r] = struct{}{}
}

func (m *Module)release(r releaser){
	m.mu.Lock()
	delete(m.owned, r)
	m.mu.Unlock()
	r.Release()
}

// Owned returns how many script-created objects are still alive.
func (m *Module)Owned()(int){
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.owned)
}

// ReleaseAll releases every object scripts created and did not release.
func (m *Module)ReleaseAll(){
	m.mu.Lock()
	owned := m.owned
	m.owned = make(map[releaser]struct{})
	m.mu.Unlock()
	for r := range owned {
		r.Release()
	}
}

func (m *Module)Register(r *require.Registry){
	r.RegisterNativeModule(AccelerometerModuleName, m.requireAccelerometer)
	r.RegisterNativeModule(MenuItemModuleName, m.requireMenuItem)
	r.RegisterNativeModule(PlayerModuleName, m.requirePlayer)
}

func (m *Module)requireAccelerometer(runtime *goja.Runtime, module *goja.Object){
	if m.accel == nil {
		panic(runtime.NewGoError(native.UnavailableErr))
	}
	acc := m.accel
	o := module.Get("exports").(*goja.Object)
	b := js_events.Bind(runtime, o, acc.Registry, m.logger(), js_events.WithValueFunc(accelerationValue))
	b.DefineSlot("onAccelerate", device.EventAccelerate)
	o.Set("Events", constants(runtime, "ACCELERATE", device.EventAccelerate))
	method(o, "start", acc.Start)
	method(o, "stop", acc.Stop)
	o.Set("isRunning", func(goja.FunctionCall)(goja.Value){
		return runtime.ToValue(acc.Running())
	})
	accessor(runtime, o, "updateInterval",
		func()(any){ return device.Millis(acc.UpdateInterval()) },
		func(v goja.Value){ acc.SetUpdateInterval(device.FromMillis(v.ToInteger())) })
}

func (m *Module)requireMenuItem(runtime *goja.Runtime, module *goja.Object){
	ctor := runtime.ToValue(m.newMenuItem).ToObject(runtime)
	events := constants(runtime, "SELECTED", device.EventSelected)
	ctor.Set("Events", events)
	o := module.Get("exports").(*goja.Object)
	o.Set("MenuItem", ctor)
	o.Set("Events", events)
}

func (m *Module)newMenuItem(call goja.ConstructorCall, runtime *goja.Runtime)(*goja.Object){
	cfg := device.DefaultMenuItemConfig()
	if arg := call.Argument(0); present(arg) {
		opts := arg.ToObject(runtime)
		cfg.Title = getString(opts, "title", cfg.Title)
		if v := opts.Get("titleColor"); present(v) {
			cfg.TitleColor = toColor(runtime, v)
		}
		cfg.Enabled = getBool(opts, "enabled", cfg.Enabled)
	}
	h, err := m.platform.NewMenuItem()
	if err != nil {
		panic(runtime.NewGoError(err))
	}
	item := device.NewMenuItem(h, cfg, m.opts)
	m.own(item)

	this := call.This
	b := js_events.Bind(runtime, this, item.Registry, m.logger())
	b.DefineSlot("onSelected", device.EventSelected)
	accessor(runtime, this, "title",
		func()(any){ return item.Title() },
		func(v goja.Value){ item.SetTitle(v.String()) })
	accessor(runtime, this, "titleColor",
		func()(any){ return colorValue(runtime, item.TitleColor()) },
		func(v goja.Value){ item.SetTitleColor(toColor(runtime, v)) })
	accessor(runtime, this, "enabled",
		func()(any){ return item.Enabled() },
		func(v goja.Value){ item.SetEnabled(v.ToBoolean()) })
	method(this, "release", func(){ m.release(item) })
	return nil
}

func (m *Module)requirePlayer(runtime *goja.Runtime, module *goja.Object){
	ctor := runtime.ToValue(m.newPlayer).ToObject(runtime)
	events := constants(runtime, "CHANGE", device.EventChange)
	scale := constants(runtime,
		"STRETCH", device.ScaleStretch,
		"ASPECT_FIT", device.ScaleAspectFit,
		"ASPECT_FILL", device.ScaleAspectFill)
	ctor.Set("Events", events)
	ctor.Set("ScaleType", scale)
	o := module.Get("exports").(*goja.Object)
	o.Set("LiveMediaPlayer", ctor)
	o.Set("Events", events)
	o.Set("ScaleType", scale)
}

func (m *Module)newPlayer(call goja.ConstructorCall, runtime *goja.Runtime)(*goja.Object){
	cfg := device.DefaultPlayerConfig()
	if arg := call.Argument(0); present(arg) {
		opts := arg.ToObject(runtime)
		cfg.InputURL = getString(opts, "inputUrl", cfg.InputURL)
		cfg.AudioEnabled = getBool(opts, "audioEnabled", cfg.AudioEnabled)
		cfg.VideoEnabled = getBool(opts, "videoEnabled", cfg.VideoEnabled)
		cfg.ScaleType = getString(opts, "scaleType", cfg.ScaleType)
	}
	if _, err := device.ParseScaleType(cfg.ScaleType); err != nil {
		panic(runtime.NewTypeError("%s", err.Error()))
	}
	h, err := m.platform.NewPlayer()
	if err != nil {
		panic(runtime.NewGoError(err))
	}
	player, err := device.NewLiveMediaPlayer(h, cfg, m.opts)
	if err != nil {
		h.Release()
		panic(runtime.NewGoError(err))
	}
	m.own(player)

	this := call.This
	b := js_events.Bind(runtime, this, player.Registry, m.logger(), js_events.WithValueFunc(changeValue))
	b.DefineSlot("onChange", device.EventChange)
	accessor(runtime, this, "inputUrl",
		func()(any){ return player.Config().InputURL },
		func(v goja.Value){ player.SetInputURL(v.String()) })
	accessor(runtime, this, "audioEnabled",
		func()(any){ return player.Config().AudioEnabled },
		func(v goja.Value){ player.SetAudioEnabled(v.ToBoolean()) })
	accessor(runtime, this, "videoEnabled",
		func()(any){ return player.Config().VideoEnabled },
		func(v goja.Value){ player.SetVideoEnabled(v.ToBoolean()) })
	accessor(runtime, this, "scaleType",
		func()(any){ return player.Config().ScaleType },
		func(v goja.Value){
			if err := player.SetScaleType(v.String()); err != nil {
				panic(runtime.NewTypeError("%s", err.Error()))
			}
		})
	this.Set("start", func(goja.FunctionCall)(goja.Value){
		if err := player.Start(); err != nil {
			panic(runtime.NewGoError(err))
		}
		return goja.Undefined()
	})
	method(this, "pause", player.Pause)
	method(this, "stop", player.Stop)
	this.Set("isPlaying", func(goja.FunctionCall)(goja.Value){
		return runtime.ToValue(player.IsPlaying())
	})
	method(this, "release", func(){ m.release(player) })
	return nil
}
