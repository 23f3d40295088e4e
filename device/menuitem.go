
package device

import (
	"sync"

	"github.com/kmcsr/go-jsbridge/emitter"
	"github.com/kmcsr/go-jsbridge/native"
)

const EventSelected = "selected"

type MenuItemConfig struct{
	Title      string `json:"title" yaml:"title" toml:"title"`
	TitleColor Color  `json:"titleColor" yaml:"title_color" toml:"title_color"`
	Enabled    bool   `json:"enabled" yaml:"enabled" toml:"enabled"`
}

func DefaultMenuItemConfig()(MenuItemConfig){
	return MenuItemConfig{
		TitleColor: Black,
		Enabled: true,
	}
}

type MenuItem struct{
	*emitter.Registry

	handle native.MenuItemHandle
	sched  Scheduler

	mu       sync.Mutex
	cfg      MenuItemConfig
	released bool
}

func NewMenuItem(handle native.MenuItemHandle, cfg MenuItemConfig, opts Options)(m *MenuItem){
	m = &MenuItem{
		handle: handle,
		sched: opts.scheduler(),
	}
	m.Registry = opts.registry("menuitem", emitter.Events{
		EventSelected: {
			Activate: m.bindSelected,
			Deactivate: func(){ m.handle.SetOnSelected(nil) },
		},
	})
	m.Apply(cfg)
	return
}

func (m *MenuItem)bindSelected()(error){
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.released {
		return native.ReleasedErr
	}
	m.handle.SetOnSelected(func(){
		m.sched.Do(func(){
			m.Emit(EventSelected)
		})
	})
	return nil
}

// Apply pushes the whole configuration to the native item.
func (m *MenuItem)Apply(cfg MenuItemConfig){
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cfg = cfg
	m.handle.SetTitle(cfg.Title)
	m.handle.SetTitleColor(cfg.TitleColor.Components())
	m.handle.SetEnabled(cfg.Enabled)
}

func (m *MenuItem)Config()(MenuItemConfig){
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cfg
}

func (m *MenuItem)Title()(string){
	return m.Config().Title
}

func (m *MenuItem)SetTitle(title string){
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cfg.Title = title
	m.handle.SetTitle(title)
}

func (m *MenuItem)TitleColor()(Color){
	return m.Config().TitleColor
}

func (m *MenuItem)SetTitleColor(c Color){
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cfg.TitleColor = c
	m.handle.SetTitleColor(c.Components())
}

func (m *MenuItem)Enabled()(bool){
	return m.Config().Enabled
}

func (m *MenuItem)SetEnabled(enabled bool){
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cfg.Enabled = enabled
	m.handle.SetEnabled(enabled)
}

// OnSelected is the single-handler view of EventSelected.
//
// Deprecated: subscribe with On(EventSelected, ...).
func (m *MenuItem)OnSelected()(*emitter.Slot){
	return m.Slot(EventSelected)
}

func (m *MenuItem)Release(){
	m.mu.Lock()
	if m.released {
		m.mu.Unlock()
		return
	}
	m.released = true
	m.mu.Unlock()

	m.Close(native.ReleasedErr)
	m.handle.SetOnSelected(nil)
	m.handle.Release()
}
