
package hostlink

import (
	"context"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/kmcsr/go-logger"
	logrusl "github.com/kmcsr/go-logger/logrus"
	"github.com/kmcsr/go-pio"

	"github.com/kmcsr/go-jsbridge/native"
)

// Remote is a native.Platform whose objects live in a Host process.
// Signals from the host are delivered on the connection's reader goroutine,
// so callbacks must not block on further calls into the Remote.
type Remote struct{
	raw   net.Conn
	conn  *pio.Conn
	loger logger.Logger

	motion *remoteMotion

	mu      sync.Mutex
	items   map[uuid.UUID]*remoteMenuItem
	players map[uuid.UUID]*remotePlayer
}

var _ native.Platform = (*Remote)(nil)

type DialConfig struct{
	// Token answers the host's challenge; leave it empty for open hosts.
	Token  []byte
	Logger logger.Logger
}

func Dial(ctx context.Context, addr string, loger logger.Logger)(r *Remote, err error){
	return DialWith(ctx, addr, &DialConfig{Logger: loger})
}

func DialWith(ctx context.Context, addr string, cfg *DialConfig)(r *Remote, err error){
	var c net.Conn
	var dialer net.Dialer
	if c, err = dialer.DialContext(ctx, "tcp", addr); err != nil {
		return
	}
	deadline, _ := ctx.Deadline()
	if r, err = Connect(c, deadline, cfg); err != nil {
		c.Close()
		return
	}
	return
}

// Connect handshakes on c, starts serving it and returns the engine side
// platform. A zero deadline only applies the default handshake timeout.
func Connect(c net.Conn, deadline time.Time, cfg *DialConfig)(r *Remote, err error){
	if cfg == nil {
		cfg = new(DialConfig)
	}
	if err = withDeadline(c, deadline, func()(error){
		return handshake{token: cfg.Token}.engine(c)
	}); err != nil {
		return
	}
	loger := cfg.Logger
	if loger == nil {
		loger = logrusl.Logger
	}
	r = &Remote{
		raw: c,
		conn: pio.NewConn(c, c),
		loger: loger,
		items: make(map[uuid.UUID]*remoteMenuItem),
		players: make(map[uuid.UUID]*remotePlayer),
	}
	r.motion = &remoteMotion{r: r, interval: defaultInterval}
	r.initConn()
	go func(){
		if err := r.conn.Serve(); err != nil {
			r.loger.Debugf("hostlink: connection closed: %v", err)
		}
		r.raw.Close()
	}()
	return r, nil
}

// defaultInterval mirrors what a fresh motion manager reports.
const defaultInterval = 0.1

func (r *Remote)initConn(){
	r.conn.AddPacket(func()(pio.PacketBase){ return &ResultPkt      {} })
	r.conn.AddPacket(func()(pio.PacketBase){ return &AccelPkt       {r: r} })
	r.conn.AddPacket(func()(pio.PacketBase){ return &MenuSelectedPkt{r: r} })
	r.conn.AddPacket(func()(pio.PacketBase){ return &PlayerEventPkt {r: r} })
}

func (r *Remote)Ping()(time.Duration, error){
	return r.conn.Ping()
}

func (r *Remote)Context()(context.Context){
	return r.conn.Context()
}

func (r *Remote)Close()(err error){
	err = r.conn.Close()
	r.raw.Close()
	return
}

func (r *Remote)send(p pio.Packet){
	if err := r.conn.Send(p); err != nil {
		r.loger.Warnf("hostlink: cannot send packet 0x%x: %v", p.PktId(), err)
	}
}

func (r *Remote)ask(p pio.PacketAsk)(res *ResultPkt, err error){
	var rp pio.PacketBase
	if rp, err = r.conn.Ask(p); err != nil {
		return
	}
	var ok bool
	if res, ok = rp.(*ResultPkt); !ok {
		return nil, fmt.Errorf("Unexpected reply 0x%x to packet 0x%x", rp.PktId(), p.PktId())
	}
	return res, res.Err()
}

func (r *Remote)MotionManager()(native.MotionManager){
	return r.motion
}

func (r *Remote)NewMenuItem()(native.MenuItemHandle, error){
	item := &remoteMenuItem{
		id: uuid.New(),
		r: r,
		enabled: true,
		color: [4]float64{0, 0, 0, 1},
	}
	if _, err := r.ask(&MenuItemNewPkt{Handle: item.id}); err != nil {
		return nil, err
	}
	r.mu.Lock()
	r.items[item.id] = item
	r.mu.Unlock()
	return item, nil
}

func (r *Remote)menuItem(id uuid.UUID)(*remoteMenuItem){
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.items[id]
}

func (r *Remote)NewPlayer()(native.PlayerHandle, error){
	player := &remotePlayer{
		id: uuid.New(),
		r: r,
		audio: true,
		video: true,
		scale: native.ScaleAspectFit,
	}
	if _, err := r.ask(&PlayerNewPkt{Handle: player.id}); err != nil {
		return nil, err
	}
	r.mu.Lock()
	r.players[player.id] = player
	r.mu.Unlock()
	return player, nil
}

func (r *Remote)player(id uuid.UUID)(*remotePlayer){
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.players[id]
}

type remoteMotion struct{
	r *Remote

	mu       sync.Mutex
	interval float64
	handler  func(native.Acceleration)
}

func (m *remoteMotion)AccelerometerUpdateInterval()(float64){
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.interval
}

func (m *remoteMotion)SetAccelerometerUpdateInterval(seconds float64){
	m.mu.Lock()
	m.interval = seconds
	m.mu.Unlock()
	m.r.send(&MotionIntervalPkt{Seconds: seconds})
}

func (m *remoteMotion)StartAccelerometerUpdates(handler func(native.Acceleration))(err error){
	m.mu.Lock()
	m.handler = handler
	m.mu.Unlock()
	if _, err = m.r.ask(&MotionStartPkt{}); err != nil {
		m.mu.Lock()
		m.handler = nil
		m.mu.Unlock()
	}
	return
}

func (m *remoteMotion)StopAccelerometerUpdates(){
	m.mu.Lock()
	m.handler = nil
	m.mu.Unlock()
	m.r.send(&MotionStopPkt{})
}

func (m *remoteMotion)AccelerometerActive()(bool){
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.handler != nil
}

func (m *remoteMotion)deliver(a native.Acceleration){
	m.mu.Lock()
	h := m.handler
	m.mu.Unlock()
	if h != nil {
		h(a)
	}
}

type remoteMenuItem struct{
	id uuid.UUID
	r  *Remote

	mu       sync.Mutex
	title    string
	color    [4]float64
	enabled  bool
	onSelect func()
	released bool
}

// push sends the whole item state; must be called with m.mu held.
func (m *remoteMenuItem)push(){
	if m.released {
		return
	}
	m.r.send(&MenuItemSetPkt{
		Handle: m.id,
		Title: m.title,
		Color: m.color,
		Enabled: m.enabled,
	})
}

func (m *remoteMenuItem)SetTitle(title string){
	m.mu.Lock()
	defer m.mu.Unlock()
	m.title = title
	m.push()
}

func (m *remoteMenuItem)SetTitleColor(red, green, blue, alpha float64){
	m.mu.Lock()
	defer m.mu.Unlock()
	m.color = [4]float64{red, green, blue, alpha}
	m.push()
}

func (m *remoteMenuItem)SetEnabled(enabled bool){
	m.mu.Lock()
	defer m.mu.Unlock()
	m.enabled = enabled
	m.push()
}

func (m *remoteMenuItem)SetOnSelected(fn func()){
	m.mu.Lock()
	defer m.mu.Unlock()
	was := m.onSelect != nil
	m.onSelect = fn
	if !m.released && was != (fn != nil) {
		m.r.send(&ListenPkt{Handle: m.id, Listen: fn != nil})
	}
}

func (m *remoteMenuItem)selected(){
	m.mu.Lock()
	fn := m.onSelect
	m.mu.Unlock()
	if fn != nil {
		fn()
	}
}

func (m *remoteMenuItem)Release(){
	m.mu.Lock()
	if m.released {
		m.mu.Unlock()
		return
	}
	m.released = true
	m.onSelect = nil
	m.mu.Unlock()

	m.r.mu.Lock()
	delete(m.r.items, m.id)
	m.r.mu.Unlock()
	m.r.send(&ReleasePkt{Handle: m.id})
}

type remotePlayer struct{
	id uuid.UUID
	r  *Remote

	mu       sync.Mutex
	url      string
	audio    bool
	video    bool
	scale    int
	listener func(int, string)
	released bool
}

// push sends the whole player configuration; must be called with p.mu held.
func (p *remotePlayer)push(){
	if p.released {
		return
	}
	p.r.send(&PlayerSetPkt{
		Handle: p.id,
		URL: p.url,
		Audio: p.audio,
		Video: p.video,
		Scale: (uint32)(p.scale),
	})
}

func (p *remotePlayer)SetInputURL(url string){
	p.mu.Lock()
	defer p.mu.Unlock()
	p.url = url
	p.push()
}

func (p *remotePlayer)SetAudioEnabled(enabled bool){
	p.mu.Lock()
	defer p.mu.Unlock()
	p.audio = enabled
	p.push()
}

func (p *remotePlayer)SetVideoEnabled(enabled bool){
	p.mu.Lock()
	defer p.mu.Unlock()
	p.video = enabled
	p.push()
}

func (p *remotePlayer)SetScaleMode(mode int){
	p.mu.Lock()
	defer p.mu.Unlock()
	p.scale = mode
	p.push()
}

func (p *remotePlayer)SetEventListener(fn func(code int, message string)){
	p.mu.Lock()
	defer p.mu.Unlock()
	was := p.listener != nil
	p.listener = fn
	if !p.released && was != (fn != nil) {
		p.r.send(&ListenPkt{Handle: p.id, Listen: fn != nil})
	}
}

func (p *remotePlayer)event(code int, message string){
	p.mu.Lock()
	fn := p.listener
	p.mu.Unlock()
	if fn != nil {
		fn(code, message)
	}
}

func (p *remotePlayer)cmd(op uint32)(res *ResultPkt, err error){
	p.mu.Lock()
	released := p.released
	p.mu.Unlock()
	if released {
		return nil, native.ReleasedErr
	}
	return p.r.ask(&PlayerCmdPkt{Handle: p.id, Op: op})
}

func (p *remotePlayer)Start()(err error){
	_, err = p.cmd(OpStart)
	return
}

func (p *remotePlayer)Pause(){
	if _, err := p.cmd(OpPause); err != nil {
		p.r.loger.Debugf("hostlink: pause player %s: %v", p.id, err)
	}
}

func (p *remotePlayer)Stop(){
	if _, err := p.cmd(OpStop); err != nil {
		p.r.loger.Debugf("hostlink: stop player %s: %v", p.id, err)
	}
}

func (p *remotePlayer)IsPlaying()(bool){
	res, err := p.cmd(OpIsPlaying)
	return err == nil && res.Flag
}

func (p *remotePlayer)Release(){
	p.mu.Lock()
	if p.released {
		p.mu.Unlock()
		return
	}
	p.released = true
	p.listener = nil
	p.mu.Unlock()

	p.r.mu.Lock()
	delete(p.r.players, p.id)
	p.r.mu.Unlock()
	p.r.send(&ReleasePkt{Handle: p.id})
}
