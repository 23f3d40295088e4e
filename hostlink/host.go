
// Package hostlink carries the native platform across a go-pio packet
// connection. Host runs next to the real platform and serves it; Remote is the
// engine side and implements native.Platform by forwarding every call.
package hostlink

import (
	"context"
	"errors"
	"net"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/kmcsr/go-logger"
	logrusl "github.com/kmcsr/go-logger/logrus"
	"github.com/kmcsr/go-pio"

	"github.com/kmcsr/go-jsbridge/native"
)

var HostClosedErr = errors.New("Host closed")

type Host struct{
	Addr string
	// Token, when not empty, must be proven by every engine during the handshake.
	Token []byte

	platform native.Platform
	loger    logger.Logger

	mu       sync.Mutex
	listener net.Listener
	conns    map[*hostConn]struct{}
	closed   bool

	// motionMu guards the motion manager together with its current owner
	motionMu    sync.Mutex
	motionOwner *hostConn
}

func NewHost(addr string, platform native.Platform, loger logger.Logger)(*Host){
	if loger == nil {
		loger = logrusl.Logger
	}
	return &Host{
		Addr: addr,
		platform: platform,
		loger: loger,
		conns: make(map[*hostConn]struct{}),
	}
}

func (h *Host)Platform()(native.Platform){
	return h.platform
}

// Listen opens the listener without accepting; ListenAddr is valid after it.
func (h *Host)Listen()(err error){
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return HostClosedErr
	}
	if h.listener != nil {
		return
	}
	if h.listener, err = net.Listen("tcp", h.Addr); err != nil {
		return
	}
	return
}

func (h *Host)ListenAddr()(net.Addr){
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.listener == nil {
		return nil
	}
	return h.listener.Addr()
}

func (h *Host)ListenAndServe()(err error){
	if err = h.Listen(); err != nil {
		return
	}
	return h.Serve()
}

// Serve accepts engines until Shutdown. Only the most recent engine owns the
// motion manager's handler.
func (h *Host)Serve()(err error){
	h.mu.Lock()
	listener := h.listener
	h.mu.Unlock()
	if listener == nil {
		return net.ErrClosed
	}
	for {
		var c net.Conn
		if c, err = listener.Accept(); err != nil {
			if errors.Is(err, net.ErrClosed) {
				h.mu.Lock()
				if h.closed {
					err = nil
				}
				h.mu.Unlock()
			}
			return
		}
		h.loger.Debugf("hostlink: engine connected from %v", c.RemoteAddr())
		go h.ServeConn(c)
	}
}

// ServeConn handshakes with one engine and serves it until it closes.
func (h *Host)ServeConn(c net.Conn)(err error){
	if err = withDeadline(c, time.Time{}, func()(error){
		return handshake{token: h.Token}.host(c)
	}); err != nil {
		h.loger.Warnf("hostlink: handshake with %v failed: %v", c.RemoteAddr(), err)
		c.Close()
		return
	}
	hc := &hostConn{
		host: h,
		raw: c,
		conn: pio.NewConn(c, c),
		items: make(map[uuid.UUID]native.MenuItemHandle),
		players: make(map[uuid.UUID]native.PlayerHandle),
	}
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		c.Close()
		return HostClosedErr
	}
	h.conns[hc] = struct{}{}
	h.mu.Unlock()

	defer func(){
		h.mu.Lock()
		delete(h.conns, hc)
		h.mu.Unlock()
	}()
	go hc.keepalive()
	return hc.serve()
}

func (h *Host)Shutdown()(err error){
	h.mu.Lock()
	h.closed = true
	listener := h.listener
	conns := make([]*hostConn, 0, len(h.conns))
	for hc := range h.conns {
		conns = append(conns, hc)
	}
	h.mu.Unlock()

	if listener != nil {
		err = listener.Close()
	}
	for _, hc := range conns {
		hc.conn.Close()
		hc.raw.Close()
	}
	return
}

type hostConn struct{
	host *Host
	raw  net.Conn
	conn *pio.Conn

	mu      sync.Mutex
	items   map[uuid.UUID]native.MenuItemHandle
	players map[uuid.UUID]native.PlayerHandle
}

func (s *hostConn)initConn(){
	s.conn.AddPacket(func()(pio.PacketBase){ return &MotionStartPkt   {h: s} })
	s.conn.AddPacket(func()(pio.PacketBase){ return &MotionStopPkt    {h: s} })
	s.conn.AddPacket(func()(pio.PacketBase){ return &MotionIntervalPkt{h: s} })
	s.conn.AddPacket(func()(pio.PacketBase){ return &MenuItemNewPkt   {h: s} })
	s.conn.AddPacket(func()(pio.PacketBase){ return &MenuItemSetPkt   {h: s} })
	s.conn.AddPacket(func()(pio.PacketBase){ return &PlayerNewPkt     {h: s} })
	s.conn.AddPacket(func()(pio.PacketBase){ return &PlayerSetPkt     {h: s} })
	s.conn.AddPacket(func()(pio.PacketBase){ return &PlayerCmdPkt     {h: s} })
	s.conn.AddPacket(func()(pio.PacketBase){ return &ListenPkt        {h: s} })
	s.conn.AddPacket(func()(pio.PacketBase){ return &ReleasePkt       {h: s} })
}

func (s *hostConn)serve()(err error){
	s.initConn()
	defer s.free()
	return s.conn.Serve()
}

func (s *hostConn)keepalive(){
	for {
		select {
		case <-s.conn.Context().Done():
			return
		case <-time.After(10 * time.Second):
			ctx, cancel := context.WithTimeout(s.conn.Context(), 15 * time.Second)
			_, err := s.conn.PingWith(ctx)
			cancel()
			if err != nil {
				if !errors.Is(err, context.Canceled) {
					s.host.loger.Warnf("hostlink: ping failed, dropping engine: %v", err)
				}
				s.conn.Close()
				s.raw.Close()
				return
			}
		}
	}
}

// free releases everything the engine left behind.
func (s *hostConn)free(){
	s.stopMotion()
	s.mu.Lock()
	items, players := s.items, s.players
	s.items = make(map[uuid.UUID]native.MenuItemHandle)
	s.players = make(map[uuid.UUID]native.PlayerHandle)
	s.mu.Unlock()
	for _, item := range items {
		item.SetOnSelected(nil)
		item.Release()
	}
	for _, player := range players {
		player.SetEventListener(nil)
		player.Stop()
		player.Release()
	}
	s.raw.Close()
	s.host.loger.Debugf("hostlink: engine %v disconnected", s.raw.RemoteAddr())
}

func (s *hostConn)send(p pio.Packet){
	if err := s.conn.Send(p); err != nil {
		s.host.loger.Debugf("hostlink: cannot send packet 0x%x: %v", p.PktId(), err)
	}
}

func (s *hostConn)startMotion()(err error){
	h := s.host
	mgr := h.platform.MotionManager()
	if mgr == nil {
		return native.UnavailableErr
	}
	h.motionMu.Lock()
	defer h.motionMu.Unlock()
	if err = mgr.StartAccelerometerUpdates(func(a native.Acceleration){
		s.send(&AccelPkt{X: a.X, Y: a.Y, Z: a.Z})
	}); err != nil {
		return
	}
	h.motionOwner = s
	return
}

// stopMotion stops the motion manager only while s owns its handler. An engine
// that was displaced by a later one leaves the manager running.
func (s *hostConn)stopMotion(){
	h := s.host
	h.motionMu.Lock()
	defer h.motionMu.Unlock()
	if h.motionOwner != s {
		return
	}
	h.motionOwner = nil
	if mgr := h.platform.MotionManager(); mgr != nil {
		mgr.StopAccelerometerUpdates()
	}
}

func (s *hostConn)newMenuItem(id uuid.UUID)(err error){
	var item native.MenuItemHandle
	if item, err = s.host.platform.NewMenuItem(); err != nil {
		return
	}
	s.mu.Lock()
	s.items[id] = item
	s.mu.Unlock()
	return
}

func (s *hostConn)menuItem(id uuid.UUID)(native.MenuItemHandle){
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.items[id]
}

func (s *hostConn)newPlayer(id uuid.UUID)(err error){
	var player native.PlayerHandle
	if player, err = s.host.platform.NewPlayer(); err != nil {
		return
	}
	s.mu.Lock()
	s.players[id] = player
	s.mu.Unlock()
	return
}

func (s *hostConn)player(id uuid.UUID)(native.PlayerHandle){
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.players[id]
}

func (s *hostConn)listen(id uuid.UUID, on bool){
	if item := s.menuItem(id); item != nil {
		if !on {
			item.SetOnSelected(nil)
			return
		}
		item.SetOnSelected(func(){
			s.send(&MenuSelectedPkt{Handle: id})
		})
		return
	}
	if player := s.player(id); player != nil {
		if !on {
			player.SetEventListener(nil)
			return
		}
		player.SetEventListener(func(code int, message string){
			s.send(&PlayerEventPkt{Handle: id, Code: (int32)(code), Message: message})
		})
	}
}

func (s *hostConn)release(id uuid.UUID){
	s.mu.Lock()
	item, iok := s.items[id]
	delete(s.items, id)
	player, pok := s.players[id]
	delete(s.players, id)
	s.mu.Unlock()
	if iok {
		item.SetOnSelected(nil)
		item.Release()
	}
	if pok {
		player.SetEventListener(nil)
		player.Release()
	}
}
