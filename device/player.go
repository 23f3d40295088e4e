
package device

import (
	"fmt"
	"sync"

	"github.com/kmcsr/go-jsbridge/emitter"
	"github.com/kmcsr/go-jsbridge/native"
)

const EventChange = "change"

// ScaleType names, as scripts spell them.
const (
	ScaleStretch    = "stretch"
	ScaleAspectFit  = "aspectFit"
	ScaleAspectFill = "aspectFill"
)

func ParseScaleType(name string)(mode int, err error){
	switch name {
	case ScaleStretch:
		return native.ScaleStretch, nil
	case ScaleAspectFit, "":
		return native.ScaleAspectFit, nil
	case ScaleAspectFill:
		return native.ScaleAspectFill, nil
	}
	return 0, fmt.Errorf("Unknown scale type '%s'", name)
}

func ScaleTypeName(mode int)(string){
	switch mode {
	case native.ScaleStretch:
		return ScaleStretch
	case native.ScaleAspectFill:
		return ScaleAspectFill
	}
	return ScaleAspectFit
}

// ChangeEvent is the payload of EventChange.
type ChangeEvent struct{
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type PlayerConfig struct{
	InputURL     string `json:"inputUrl" yaml:"input_url" toml:"input_url"`
	AudioEnabled bool   `json:"audioEnabled" yaml:"audio_enabled" toml:"audio_enabled"`
	VideoEnabled bool   `json:"videoEnabled" yaml:"video_enabled" toml:"video_enabled"`
	ScaleType    string `json:"scaleType" yaml:"scale_type" toml:"scale_type"`
}

func DefaultPlayerConfig()(PlayerConfig){
	return PlayerConfig{
		AudioEnabled: true,
		VideoEnabled: true,
		ScaleType: ScaleAspectFit,
	}
}

type LiveMediaPlayer struct{
	*emitter.Registry

	handle native.PlayerHandle
	sched  Scheduler

	mu       sync.Mutex
	cfg      PlayerConfig
	released bool
}

func NewLiveMediaPlayer(handle native.PlayerHandle, cfg PlayerConfig, opts Options)(p *LiveMediaPlayer, err error){
	p = &LiveMediaPlayer{
		handle: handle,
		sched: opts.scheduler(),
	}
	p.Registry = opts.registry("livemediaplayer", emitter.Events{
		EventChange: {
			Activate: p.bindChange,
			Deactivate: func(){ p.handle.SetEventListener(nil) },
		},
	})
	if err = p.Apply(cfg); err != nil {
		return nil, err
	}
	return
}

func (p *LiveMediaPlayer)bindChange()(error){
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.released {
		return native.ReleasedErr
	}
	p.handle.SetEventListener(func(code int, message string){
		ev := ChangeEvent{Code: code, Message: message}
		p.sched.Do(func(){
			p.Emit(EventChange, ev)
		})
	})
	return nil
}

func (p *LiveMediaPlayer)Apply(cfg PlayerConfig)(err error){
	var mode int
	if mode, err = ParseScaleType(cfg.ScaleType); err != nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.cfg = cfg
	p.cfg.ScaleType = ScaleTypeName(mode)
	p.handle.SetInputURL(cfg.InputURL)
	p.handle.SetAudioEnabled(cfg.AudioEnabled)
	p.handle.SetVideoEnabled(cfg.VideoEnabled)
	p.handle.SetScaleMode(mode)
	return
}

func (p *LiveMediaPlayer)Config()(PlayerConfig){
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.cfg
}

func (p *LiveMediaPlayer)SetInputURL(url string){
	p.mu.Lock()
	defer p.mu.Unlock()
	p.cfg.InputURL = url
	p.handle.SetInputURL(url)
}

func (p *LiveMediaPlayer)SetAudioEnabled(enabled bool){
	p.mu.Lock()
	defer p.mu.Unlock()
	p.cfg.AudioEnabled = enabled
	p.handle.SetAudioEnabled(enabled)
}

func (p *LiveMediaPlayer)SetVideoEnabled(enabled bool){
	p.mu.Lock()
	defer p.mu.Unlock()
	p.cfg.VideoEnabled = enabled
	p.handle.SetVideoEnabled(enabled)
}

func (p *LiveMediaPlayer)SetScaleType(name string)(err error){
	var mode int
	if mode, err = ParseScaleType(name); err != nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.cfg.ScaleType = ScaleTypeName(mode)
	p.handle.SetScaleMode(mode)
	return
}

func (p *LiveMediaPlayer)checkAlive()(error){
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.released {
		return native.ReleasedErr
	}
	return nil
}

func (p *LiveMediaPlayer)Start()(err error){
	if err = p.checkAlive(); err != nil {
		return
	}
	return p.handle.Start()
}

func (p *LiveMediaPlayer)Pause(){
	if p.checkAlive() == nil {
		p.handle.Pause()
	}
}

func (p *LiveMediaPlayer)Stop(){
	if p.checkAlive() == nil {
		p.handle.Stop()
	}
}

func (p *LiveMediaPlayer)IsPlaying()(bool){
	if p.checkAlive() != nil {
		return false
	}
	return p.handle.IsPlaying()
}

// OnChange is the single-handler view of EventChange.
//
// Deprecated: subscribe with On(EventChange, ...).
func (p *LiveMediaPlayer)OnChange()(*emitter.Slot){
	return p.Slot(EventChange)
}

func (p *LiveMediaPlayer)Release(){
	p.mu.Lock()
	if p.released {
		p.mu.Unlock()
		return
	}
	p.released = true
	p.mu.Unlock()

	p.Close(native.ReleasedErr)
	p.handle.SetEventListener(nil)
	p.handle.Stop()
	p.handle.Release()
}
