
// Package jsbridge runs JavaScript apps against native device components.
// A Bridge owns one goja event loop; every event a component emits is posted
// onto that loop, so scripts only ever run on the loop goroutine.
package jsbridge

import (
	"context"
	"errors"
	"sync"

	"github.com/dop251/goja"
	"github.com/dop251/goja_nodejs/eventloop"
	"github.com/dop251/goja_nodejs/require"
	"github.com/google/uuid"
	"github.com/kmcsr/go-logger"

	"github.com/kmcsr/go-jsbridge/device"
	"github.com/kmcsr/go-jsbridge/emitter"
	"github.com/kmcsr/go-jsbridge/jsext"
	js_console "github.com/kmcsr/go-jsbridge/jsext/console"
	js_device "github.com/kmcsr/go-jsbridge/jsext/device"
	"github.com/kmcsr/go-jsbridge/native"
)

var (
	BridgeNotStartedErr = errors.New("Bridge is not started")
	BridgeStoppedErr    = errors.New("Bridge has been stopped")
)

type Bridge struct{
	id       uuid.UUID
	cfg      Config
	loger    logger.Logger
	observer emitter.Observer
	platform native.Platform

	registry *require.Registry
	loop     *eventloop.EventLoop
	motion   *device.MotionService
	accel    *device.Accelerometer
	devices  *js_device.Module

	mu      sync.Mutex
	started bool
	stopped bool
}

type BridgeOption func(b *Bridge)

func WithObserver(o emitter.Observer)(BridgeOption){
	return func(b *Bridge){
		b.observer = o
	}
}

func WithLogger(l logger.Logger)(BridgeOption){
	return func(b *Bridge){
		b.loger = l
	}
}

func NewBridge(platform native.Platform, cfg Config, opts ...BridgeOption)(b *Bridge, err error){
	if err = cfg.Validate(); err != nil {
		return
	}
	b = &Bridge{
		id: uuid.New(),
		cfg: cfg,
		loger: loger,
		platform: platform,
	}
	for _, opt := range opts {
		opt(b)
	}

	b.registry = new(require.Registry)
	b.loop = eventloop.NewEventLoop(eventloop.WithRegistry(b.registry))

	b.motion = device.NewMotionService(platform.MotionManager(), b.loger)
	b.motion.SetUpdateInterval(cfg.UpdateInterval())
	dopts := b.Options()
	b.accel = device.NewAccelerometer(b.motion, dopts)
	b.devices = js_device.NewModule(platform, b.accel, dopts)

	jsext.Register(b.registry, b.loger, b.devices)
	return
}

func (b *Bridge)Id()(uuid.UUID){
	return b.id
}

func (b *Bridge)Config()(Config){
	return b.cfg
}

func (b *Bridge)Platform()(native.Platform){
	return b.platform
}

func (b *Bridge)Motion()(*device.MotionService){
	return b.motion
}

func (b *Bridge)Accelerometer()(*device.Accelerometer){
	return b.accel
}

func (b *Bridge)Devices()(*js_device.Module){
	return b.devices
}

// Scheduler posts work onto the bridge's event loop.
func (b *Bridge)Scheduler()(device.Scheduler){
	return device.SchedulerFunc(func(fn func()){
		b.loop.RunOnLoop(func(*goja.Runtime){ fn() })
	})
}

// Options are the component options every device of this bridge shares.
func (b *Bridge)Options()(device.Options){
	return device.Options{
		Policy: b.cfg.Policy(),
		DisarmOnIdle: b.cfg.DisarmOnIdle,
		Observer: b.observer,
		Logger: b.loger,
		Scheduler: b.Scheduler(),
	}
}

func (b *Bridge)Start()(err error){
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.stopped {
		return BridgeStoppedErr
	}
	if b.started {
		return
	}
	if err = b.motion.Init(); err != nil && !errors.Is(err, native.UnavailableErr) {
		return
	}
	if err != nil {
		b.loger.Warnf("bridge: motion unavailable: %v", err)
	}
	b.loop.Start()
	b.loop.RunOnLoop(func(vm *goja.Runtime){
		vm.SetFieldNameMapper(goja.UncapFieldNameMapper())
		js_console.Enable(vm)
	})
	b.started = true
	b.loger.Debugf("bridge %s: started", b.id)
	return nil
}

// Stop releases every script-created object, stops the loop and tears down
// the motion service. A stopped bridge cannot be restarted.
func (b *Bridge)Stop(){
	b.mu.Lock()
	if !b.started || b.stopped {
		b.stopped = true
		b.mu.Unlock()
		return
	}
	b.stopped = true
	b.mu.Unlock()

	done := make(chan struct{})
	b.loop.RunOnLoop(func(*goja.Runtime){
		defer close(done)
		b.devices.ReleaseAll()
		b.accel.Dispose()
	})
	<-done
	b.loop.Stop()
	b.motion.Teardown()
	b.loger.Debugf("bridge %s: stopped", b.id)
}

func (b *Bridge)checkRunning()(error){
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.stopped {
		return BridgeStoppedErr
	}
	if !b.started {
		return BridgeNotStartedErr
	}
	return nil
}

// Do runs fn on the loop and waits for it, or for ctx.
func (b *Bridge)Do(ctx context.Context, fn func(vm *goja.Runtime)(error))(err error){
	if err = b.checkRunning(); err != nil {
		return
	}
	done := make(chan error, 1)
	b.loop.RunOnLoop(func(vm *goja.Runtime){
		done <- fn(vm)
	})
	select {
	case <-ctx.Done():
		return ctx.Err()
	case err = <-done:
		return
	}
}

// RunString evaluates src on the loop and exports its completion value.
func (b *Bridge)RunString(ctx context.Context, src string)(res any, err error){
	var out any
	if err = b.Do(ctx, func(vm *goja.Runtime)(err error){
		var v goja.Value
		if v, err = vm.RunString(src); err != nil {
			return
		}
		out = v.Export()
		return
	}); err != nil {
		return
	}
	return out, nil
}
