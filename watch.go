
package jsbridge

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

const reloadDebounce = 100 * time.Millisecond

// WatchApp loads the app at path and reloads it whenever the file changes,
// unloading the previous instance first. onReload, if not nil, is called
// after every attempt. WatchApp blocks until ctx is done, then unloads the
// current app.
func WatchApp(ctx context.Context, b *Bridge, path string, onReload func(*App, error))(err error){
	if path, err = filepath.Abs(path); err != nil {
		return
	}
	var watcher *fsnotify.Watcher
	if watcher, err = fsnotify.NewWatcher(); err != nil {
		return
	}
	defer watcher.Close()
	// editors often replace files instead of writing them, so watch the directory
	if err = watcher.Add(filepath.Dir(path)); err != nil {
		return
	}

	var (
		mu      sync.Mutex
		current *App
	)
	reload := func(){
		mu.Lock()
		defer mu.Unlock()
		if ctx.Err() != nil {
			return
		}
		if current != nil {
			if err := current.Unload(ctx); err != nil {
				b.loger.Errorf("watch: %v", err)
			}
			current = nil
		}
		app, err := b.LoadAppFile(ctx, path)
		if err == nil {
			if err = app.Load(ctx); err == nil {
				current = app
			}
		}
		if err != nil {
			b.loger.Errorf("watch: cannot load %s: %v", path, err)
		}
		if onReload != nil {
			onReload(app, err)
		}
	}
	reload()

	var timer *time.Timer
	defer func(){
		if timer != nil {
			timer.Stop()
		}
		mu.Lock()
		defer mu.Unlock()
		if current != nil {
			uctx, cancel := context.WithTimeout(context.Background(), 3 * time.Second)
			defer cancel()
			if err := current.Unload(uctx); err != nil {
				b.loger.Errorf("watch: %v", err)
			}
		}
	}()
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Name != path || event.Op & (fsnotify.Write | fsnotify.Create | fsnotify.Rename) == 0 {
				continue
			}
			b.loger.Debugf("watch: %s %s", event.Op, event.Name)
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(reloadDebounce, reload)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			b.loger.Warnf("watch: %v", err)
		}
	}
}
