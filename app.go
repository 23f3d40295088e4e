
package jsbridge

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/dop251/goja"
	"github.com/google/uuid"
)

type Map = map[string]any

// App is a loaded script. The script's completion value must be an object
// with an `onload` method and may have an `onunload` method.
type App struct{
	id     uuid.UUID
	name   string
	bridge *Bridge

	this     goja.Value
	onload   goja.Callable
	onunload goja.Callable

	mu      sync.Mutex
	running bool
}

func (a *App)Id()(uuid.UUID){
	return a.id
}

func (a *App)Name()(string){
	return a.name
}

func (a *App)Running()(bool){
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.running
}

func (a *App)info()(Map){
	return Map{
		"id": a.id.String(),
		"name": a.name,
		"bridge": a.bridge.Id().String(),
	}
}

// Load calls onload once; loading a running app does nothing.
func (a *App)Load(ctx context.Context)(err error){
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.running {
		return
	}
	if err = a.bridge.Do(ctx, func(vm *goja.Runtime)(err error){
		_, err = a.onload(a.this, vm.ToValue(a.info()))
		return
	}); err != nil {
		return fmt.Errorf("App %s onload: %w", a.name, err)
	}
	a.running = true
	a.bridge.loger.Infof("app %s (%s) loaded", a.name, a.id)
	return
}

// Unload calls onunload, if the script has one, and releases every device
// object the scripts created. Accelerometer subscriptions are dropped and
// delivery is stopped, the accelerometer itself stays usable by the next app.
func (a *App)Unload(ctx context.Context)(err error){
	a.mu.Lock()
	defer a.mu.Unlock()
	if !a.running {
		return
	}
	a.running = false
	if err = a.bridge.Do(ctx, func(vm *goja.Runtime)(err error){
		if a.onunload != nil {
			_, err = a.onunload(a.this)
		}
		// the accelerometer outlives the app, only its subscriptions go
		a.bridge.accel.Stop()
		a.bridge.accel.Clear()
		a.bridge.devices.ReleaseAll()
		return
	}); err != nil {
		return fmt.Errorf("App %s onunload: %w", a.name, err)
	}
	a.bridge.loger.Infof("app %s (%s) unloaded", a.name, a.id)
	return
}

// LoadApp evaluates src on the bridge's loop and returns the app it
// describes, not yet loaded.
func (b *Bridge)LoadApp(ctx context.Context, name string, src string)(app *App, err error){
	var program *goja.Program
	if program, err = goja.Compile(name, src, true); err != nil {
		return
	}
	app = &App{
		id: uuid.New(),
		name: name,
		bridge: b,
	}
	if err = b.Do(ctx, func(vm *goja.Runtime)(err error){
		if app.this, err = vm.RunProgram(program); err != nil {
			return
		}
		obj, ok := app.this.(*goja.Object)
		if !ok {
			return fmt.Errorf("App %s must evaluate to an object, got %s", name, app.this.String())
		}
		if app.onload, err = getMethod(obj, "onload", true); err != nil {
			return
		}
		if app.onunload, err = getMethod(obj, "onunload", false); err != nil {
			return
		}
		return
	}); err != nil {
		return nil, err
	}
	return
}

func (b *Bridge)LoadAppFile(ctx context.Context, path string)(app *App, err error){
	var data []byte
	if data, err = os.ReadFile(path); err != nil {
		return
	}
	return b.LoadApp(ctx, filepath.Base(path), (string)(data))
}

func getMethod(obj *goja.Object, name string, required bool)(callable goja.Callable, err error){
	v := obj.Get(name)
	if v == nil || goja.IsUndefined(v) || goja.IsNull(v) {
		if required {
			return nil, fmt.Errorf("App missing method '%s'", name)
		}
		return nil, nil
	}
	callable, ok := goja.AssertFunction(v)
	if !ok {
		return nil, fmt.Errorf("App property '%s' isn't a callable", name)
	}
	return
}
