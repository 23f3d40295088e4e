
// Package sim is an in-process native.Platform. Signals are delivered from
// their own goroutines, the way a real platform calls back from its UI or
// sensor threads.
package sim

import (
	"math"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/kmcsr/go-jsbridge/native"
)

// Player event codes, following the NodeMedia client.
const (
	CodeConnecting   = 1000
	CodeConnected    = 1001
	CodeReconnecting = 1002
	CodeStopped      = 1004
	CodeBuffering    = 1101
	CodeBufferFull   = 1102
	CodePaused       = 1103
	CodeNoURL        = 1005
)

const defaultUpdateInterval = 0.1

type Platform struct{
	motion *Motion

	mu      sync.Mutex
	items   map[uuid.UUID]*MenuItem
	players map[uuid.UUID]*Player
}

var _ native.Platform = (*Platform)(nil)

func New()(p *Platform){
	return &Platform{
		motion: NewMotion(),
		items: make(map[uuid.UUID]*MenuItem),
		players: make(map[uuid.UUID]*Player),
	}
}

func (p *Platform)MotionManager()(native.MotionManager){
	return p.motion
}

// Motion returns the concrete simulated motion manager.
func (p *Platform)Motion()(*Motion){
	return p.motion
}

func (p *Platform)NewMenuItem()(native.MenuItemHandle, error){
	m := &MenuItem{
		id: uuid.New(),
		p: p,
		enabled: true,
	}
	p.mu.Lock()
	p.items[m.id] = m
	p.mu.Unlock()
	return m, nil
}

func (p *Platform)NewPlayer()(native.PlayerHandle, error){
	pl := &Player{
		id: uuid.New(),
		p: p,
		audio: true,
		video: true,
	}
	p.mu.Lock()
	p.players[pl.id] = pl
	p.mu.Unlock()
	return pl, nil
}

func (p *Platform)MenuItems()(items []*MenuItem){
	p.mu.Lock()
	defer p.mu.Unlock()
	items = make([]*MenuItem, 0, len(p.items))
	for _, m := range p.items {
		items = append(items, m)
	}
	return
}

func (p *Platform)MenuItem(id uuid.UUID)(*MenuItem){
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.items[id]
}

func (p *Platform)Players()(players []*Player){
	p.mu.Lock()
	defer p.mu.Unlock()
	players = make([]*Player, 0, len(p.players))
	for _, pl := range p.players {
		players = append(players, pl)
	}
	return
}

func (p *Platform)Player(id uuid.UUID)(*Player){
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.players[id]
}

type Motion struct{
	mu       sync.Mutex
	interval float64
	handler  func(native.Acceleration)
	autoTick bool
	stop     chan struct{}
	starts   int
}

var _ native.MotionManager = (*Motion)(nil)

func NewMotion()(*Motion){
	return &Motion{
		interval: defaultUpdateInterval,
	}
}

// SetAutoTick makes started updates produce a synthetic wave at the update
// interval. It applies to the next start.
func (m *Motion)SetAutoTick(enable bool){
	m.mu.Lock()
	defer m.mu.Unlock()
	m.autoTick = enable
}

func (m *Motion)AccelerometerUpdateInterval()(float64){
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.interval
}

func (m *Motion)SetAccelerometerUpdateInterval(seconds float64){
	m.mu.Lock()
	defer m.mu.Unlock()
	if seconds <= 0 {
		seconds = defaultUpdateInterval
	}
	m.interval = seconds
}

func (m *Motion)StartAccelerometerUpdates(handler func(native.Acceleration))(error){
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handler = handler
	m.starts++
	if m.autoTick && m.stop == nil {
		m.stop = make(chan struct{})
		go m.tick(m.stop, time.Duration(m.interval * (float64)(time.Second)))
	}
	return nil
}

func (m *Motion)StopAccelerometerUpdates(){
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handler = nil
	if m.stop != nil {
		close(m.stop)
		m.stop = nil
	}
}

func (m *Motion)AccelerometerActive()(bool){
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.handler != nil
}

// Starts returns how many times updates were started.
func (m *Motion)Starts()(int){
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.starts
}

// Push delivers a sample on a new goroutine and waits for the handler to
// return. It reports false when updates are stopped.
func (m *Motion)Push(a native.Acceleration)(bool){
	m.mu.Lock()
	h := m.handler
	m.mu.Unlock()
	if h == nil {
		return false
	}
	done := make(chan struct{})
	go func(){
		defer close(done)
		h(a)
	}()
	<-done
	return true
}

func (m *Motion)tick(stop <-chan struct{}, interval time.Duration){
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	var n float64
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			n++
			m.mu.Lock()
			h := m.handler
			m.mu.Unlock()
			if h != nil {
				h(native.Acceleration{
					X: math.Sin(n / 10),
					Y: math.Cos(n / 10),
					Z: -1,
				})
			}
		}
	}
}

type MenuItem struct{
	id uuid.UUID
	p  *Platform

	mu       sync.Mutex
	title    string
	color    [4]float64
	enabled  bool
	onSelect func()
	released bool
}

var _ native.MenuItemHandle = (*MenuItem)(nil)

func (m *MenuItem)Id()(uuid.UUID){
	return m.id
}

func (m *MenuItem)Title()(string){
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.title
}

func (m *MenuItem)TitleColor()([4]float64){
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.color
}

func (m *MenuItem)Enabled()(bool){
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.enabled
}

func (m *MenuItem)Released()(bool){
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.released
}

func (m *MenuItem)SetTitle(title string){
	m.mu.Lock()
	defer m.mu.Unlock()
	m.title = title
}

func (m *MenuItem)SetTitleColor(red, green, blue, alpha float64){
	m.mu.Lock()
	defer m.mu.Unlock()
	m.color = [4]float64{red, green, blue, alpha}
}

func (m *MenuItem)SetEnabled(enabled bool){
	m.mu.Lock()
	defer m.mu.Unlock()
	m.enabled = enabled
}

func (m *MenuItem)SetOnSelected(fn func()){
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onSelect = fn
}

func (m *MenuItem)Release(){
	m.mu.Lock()
	m.released = true
	m.onSelect = nil
	m.mu.Unlock()

	m.p.mu.Lock()
	delete(m.p.items, m.id)
	m.p.mu.Unlock()
}

// Select simulates a user tap. Disabled or released items ignore it.
func (m *MenuItem)Select()(bool){
	m.mu.Lock()
	fn := m.onSelect
	ok := m.enabled && !m.released
	m.mu.Unlock()
	if !ok || fn == nil {
		return false
	}
	done := make(chan struct{})
	go func(){
		defer close(done)
		fn()
	}()
	<-done
	return true
}

type Player struct{
	id uuid.UUID
	p  *Platform

	mu       sync.Mutex
	url      string
	audio    bool
	video    bool
	scale    int
	playing  bool
	listener func(int, string)
	released bool
}

var _ native.PlayerHandle = (*Player)(nil)

func (p *Player)Id()(uuid.UUID){
	return p.id
}

func (p *Player)InputURL()(string){
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.url
}

func (p *Player)AudioEnabled()(bool){
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.audio
}

func (p *Player)VideoEnabled()(bool){
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.video
}

func (p *Player)ScaleMode()(int){
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.scale
}

func (p *Player)SetInputURL(url string){
	p.mu.Lock()
	defer p.mu.Unlock()
	p.url = url
}

func (p *Player)SetAudioEnabled(enabled bool){
	p.mu.Lock()
	defer p.mu.Unlock()
	p.audio = enabled
}

func (p *Player)SetVideoEnabled(enabled bool){
	p.mu.Lock()
	defer p.mu.Unlock()
	p.video = enabled
}

func (p *Player)SetScaleMode(mode int){
	p.mu.Lock()
	defer p.mu.Unlock()
	p.scale = mode
}

func (p *Player)SetEventListener(fn func(code int, message string)){
	p.mu.Lock()
	defer p.mu.Unlock()
	p.listener = fn
}

// Fire delivers a player event on a new goroutine and waits for it.
func (p *Player)Fire(code int, message string){
	p.mu.Lock()
	fn := p.listener
	p.mu.Unlock()
	if fn == nil {
		return
	}
	done := make(chan struct{})
	go func(){
		defer close(done)
		fn(code, message)
	}()
	<-done
}

func (p *Player)Start()(error){
	p.mu.Lock()
	if p.released {
		p.mu.Unlock()
		return native.ReleasedErr
	}
	url := p.url
	p.playing = url != ""
	p.mu.Unlock()

	if url == "" {
		p.Fire(CodeNoURL, "Input url is empty")
		return nil
	}
	p.Fire(CodeConnecting, "Connecting")
	p.Fire(CodeConnected, "Connected")
	p.Fire(CodeBufferFull, "Buffer full, start playing")
	return nil
}

func (p *Player)Pause(){
	p.mu.Lock()
	was := p.playing
	p.playing = false
	p.mu.Unlock()
	if was {
		p.Fire(CodePaused, "Paused")
	}
}

func (p *Player)Stop(){
	p.mu.Lock()
	p.playing = false
	p.mu.Unlock()
	p.Fire(CodeStopped, "Stopped")
}

func (p *Player)IsPlaying()(bool){
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.playing
}

func (p *Player)Released()(bool){
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.released
}

func (p *Player)Release(){
	p.mu.Lock()
	p.released = true
	p.playing = false
	p.listener = nil
	p.mu.Unlock()

	p.p.mu.Lock()
	delete(p.p.players, p.id)
	p.p.mu.Unlock()
}
