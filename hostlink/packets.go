
package hostlink

import (
	"errors"
	"fmt"
	"math"

	"github.com/google/uuid"
	"github.com/kmcsr/go-pio"
	"github.com/kmcsr/go-pio/encoding"

	"github.com/kmcsr/go-jsbridge/native"
)

// Result codes carried by ResultPkt.
const (
	ResultOk          = 0
	ResultUnavailable = 1
	ResultReleased    = 2
	ResultFailed      = 3
)

// Player operations carried by PlayerCmdPkt.
const (
	OpStart     = 1
	OpPause     = 2
	OpStop      = 3
	OpIsPlaying = 4
)

// engine -> host
type (
	MotionStartPkt struct{
		h *hostConn
	}
	MotionStopPkt struct{
		h *hostConn
	}
	MotionIntervalPkt struct{
		Seconds float64

		h *hostConn
	}
	MenuItemNewPkt struct{
		Handle uuid.UUID

		h *hostConn
	}
	MenuItemSetPkt struct{
		Handle  uuid.UUID
		Title   string
		Color   [4]float64
		Enabled bool

		h *hostConn
	}
	PlayerNewPkt struct{
		Handle uuid.UUID

		h *hostConn
	}
	PlayerSetPkt struct{
		Handle uuid.UUID
		URL    string
		Audio  bool
		Video  bool
		Scale  uint32

		h *hostConn
	}
	PlayerCmdPkt struct{
		Handle uuid.UUID
		Op     uint32

		h *hostConn
	}
	// ListenPkt turns the signal of a menu item or player on or off.
	ListenPkt struct{
		Handle uuid.UUID
		Listen bool

		h *hostConn
	}
	ReleasePkt struct{
		Handle uuid.UUID

		h *hostConn
	}
)

// host -> engine
type (
	ResultPkt struct{
		Code  uint32
		Error string
		Flag  bool
	}
	AccelPkt struct{
		X, Y, Z float64

		r *Remote
	}
	MenuSelectedPkt struct{
		Handle uuid.UUID

		r *Remote
	}
	PlayerEventPkt struct{
		Handle  uuid.UUID
		Code    int32
		Message string

		r *Remote
	}
)

var (
	_ pio.PacketAsk = (*MotionStartPkt)(nil)
	_ pio.Packet    = (*MotionStopPkt)(nil)
	_ pio.Packet    = (*MotionIntervalPkt)(nil)
	_ pio.PacketAsk = (*MenuItemNewPkt)(nil)
	_ pio.Packet    = (*MenuItemSetPkt)(nil)
	_ pio.PacketAsk = (*PlayerNewPkt)(nil)
	_ pio.Packet    = (*PlayerSetPkt)(nil)
	_ pio.PacketAsk = (*PlayerCmdPkt)(nil)
	_ pio.Packet    = (*ListenPkt)(nil)
	_ pio.Packet    = (*ReleasePkt)(nil)

	_ pio.Packet    = (*ResultPkt)(nil)
	_ pio.Packet    = (*AccelPkt)(nil)
	_ pio.Packet    = (*MenuSelectedPkt)(nil)
	_ pio.Packet    = (*PlayerEventPkt)(nil)
)

func (p *MotionStartPkt)   PktId()(uint32){ return 0xa1 }
func (p *MotionStopPkt)    PktId()(uint32){ return 0xa2 }
func (p *MotionIntervalPkt)PktId()(uint32){ return 0xa3 }
func (p *MenuItemNewPkt)   PktId()(uint32){ return 0xa4 }
func (p *MenuItemSetPkt)   PktId()(uint32){ return 0xa5 }
func (p *PlayerNewPkt)     PktId()(uint32){ return 0xa6 }
func (p *PlayerSetPkt)     PktId()(uint32){ return 0xa7 }
func (p *PlayerCmdPkt)     PktId()(uint32){ return 0xa8 }
func (p *ListenPkt)        PktId()(uint32){ return 0xa9 }
func (p *ReleasePkt)       PktId()(uint32){ return 0xaa }

func (p *ResultPkt)      PktId()(uint32){ return 0xb0 }
func (p *AccelPkt)       PktId()(uint32){ return 0xb1 }
func (p *MenuSelectedPkt)PktId()(uint32){ return 0xb2 }
func (p *PlayerEventPkt) PktId()(uint32){ return 0xb3 }

func writeHandle(w encoding.Writer, id uuid.UUID)(error){
	return w.WriteBytes(id[:])
}

func readHandle(r encoding.Reader)(id uuid.UUID, err error){
	var buf []byte
	if buf, err = r.ReadBytes(); err != nil {
		return
	}
	return uuid.FromBytes(buf)
}

func writeFloat(w encoding.Writer, v float64)(error){
	return w.WriteUint64(math.Float64bits(v))
}

func readFloat(r encoding.Reader)(v float64, err error){
	var bits uint64
	if bits, err = r.ReadUint64(); err != nil {
		return
	}
	return math.Float64frombits(bits), nil
}

// resultOf encodes a native call result.
func resultOf(err error)(res *ResultPkt){
	res = new(ResultPkt)
	switch {
	case err == nil:
		res.Code = ResultOk
	case errors.Is(err, native.UnavailableErr):
		res.Code = ResultUnavailable
	case errors.Is(err, native.ReleasedErr):
		res.Code = ResultReleased
	default:
		res.Code = ResultFailed
		res.Error = err.Error()
	}
	return
}

// Err decodes the result back into the native error it stands for.
func (p *ResultPkt)Err()(error){
	switch p.Code {
	case ResultOk:
		return nil
	case ResultUnavailable:
		return native.UnavailableErr
	case ResultReleased:
		return native.ReleasedErr
	}
	return fmt.Errorf("Host error: %s", p.Error)
}

func (p *MotionStartPkt)WriteTo(w encoding.Writer)(err error){
	return
}

func (p *MotionStartPkt)ParseFrom(r encoding.Reader)(err error){
	return
}

func (p *MotionStartPkt)Ask()(res pio.PacketBase, err error){
	return resultOf(p.h.startMotion()), nil
}

func (p *MotionStopPkt)WriteTo(w encoding.Writer)(err error){
	return
}

func (p *MotionStopPkt)ParseFrom(r encoding.Reader)(err error){
	return
}

func (p *MotionStopPkt)Trigger()(err error){
	p.h.stopMotion()
	return
}

func (p *MotionIntervalPkt)WriteTo(w encoding.Writer)(err error){
	return writeFloat(w, p.Seconds)
}

func (p *MotionIntervalPkt)ParseFrom(r encoding.Reader)(err error){
	p.Seconds, err = readFloat(r)
	return
}

func (p *MotionIntervalPkt)Trigger()(err error){
	if mgr := p.h.host.platform.MotionManager(); mgr != nil {
		mgr.SetAccelerometerUpdateInterval(p.Seconds)
	}
	return
}

func (p *MenuItemNewPkt)WriteTo(w encoding.Writer)(err error){
	return writeHandle(w, p.Handle)
}

func (p *MenuItemNewPkt)ParseFrom(r encoding.Reader)(err error){
	p.Handle, err = readHandle(r)
	return
}

func (p *MenuItemNewPkt)Ask()(res pio.PacketBase, err error){
	return resultOf(p.h.newMenuItem(p.Handle)), nil
}

func (p *MenuItemSetPkt)WriteTo(w encoding.Writer)(err error){
	if err = writeHandle(w, p.Handle); err != nil {
		return
	}
	if err = w.WriteString(p.Title); err != nil {
		return
	}
	for _, c := range p.Color {
		if err = writeFloat(w, c); err != nil {
			return
		}
	}
	if err = w.WriteBool(p.Enabled); err != nil {
		return
	}
	return
}

func (p *MenuItemSetPkt)ParseFrom(r encoding.Reader)(err error){
	if p.Handle, err = readHandle(r); err != nil {
		return
	}
	if p.Title, err = r.ReadString(); err != nil {
		return
	}
	for i := range p.Color {
		if p.Color[i], err = readFloat(r); err != nil {
			return
		}
	}
	if p.Enabled, err = r.ReadBool(); err != nil {
		return
	}
	return
}

func (p *MenuItemSetPkt)Trigger()(err error){
	item := p.h.menuItem(p.Handle)
	if item == nil {
		return
	}
	item.SetTitle(p.Title)
	item.SetTitleColor(p.Color[0], p.Color[1], p.Color[2], p.Color[3])
	item.SetEnabled(p.Enabled)
	return
}

func (p *PlayerNewPkt)WriteTo(w encoding.Writer)(err error){
	return writeHandle(w, p.Handle)
}

func (p *PlayerNewPkt)ParseFrom(r encoding.Reader)(err error){
	p.Handle, err = readHandle(r)
	return
}

func (p *PlayerNewPkt)Ask()(res pio.PacketBase, err error){
	return resultOf(p.h.newPlayer(p.Handle)), nil
}

func (p *PlayerSetPkt)WriteTo(w encoding.Writer)(err error){
	if err = writeHandle(w, p.Handle); err != nil {
		return
	}
	if err = w.WriteString(p.URL); err != nil {
		return
	}
	if err = w.WriteBool(p.Audio); err != nil {
		return
	}
	if err = w.WriteBool(p.Video); err != nil {
		return
	}
	if err = w.WriteUint32(p.Scale); err != nil {
		return
	}
	return
}

func (p *PlayerSetPkt)ParseFrom(r encoding.Reader)(err error){
	if p.Handle, err = readHandle(r); err != nil {
		return
	}
	if p.URL, err = r.ReadString(); err != nil {
		return
	}
	if p.Audio, err = r.ReadBool(); err != nil {
		return
	}
	if p.Video, err = r.ReadBool(); err != nil {
		return
	}
	if p.Scale, err = r.ReadUint32(); err != nil {
		return
	}
	return
}

func (p *PlayerSetPkt)Trigger()(err error){
	player := p.h.player(p.Handle)
	if player == nil {
		return
	}
	player.SetInputURL(p.URL)
	player.SetAudioEnabled(p.Audio)
	player.SetVideoEnabled(p.Video)
	player.SetScaleMode((int)(p.Scale))
	return
}

func (p *PlayerCmdPkt)WriteTo(w encoding.Writer)(err error){
	if err = writeHandle(w, p.Handle); err != nil {
		return
	}
	if err = w.WriteUint32(p.Op); err != nil {
		return
	}
	return
}

func (p *PlayerCmdPkt)ParseFrom(r encoding.Reader)(err error){
	if p.Handle, err = readHandle(r); err != nil {
		return
	}
	if p.Op, err = r.ReadUint32(); err != nil {
		return
	}
	return
}

func (p *PlayerCmdPkt)Ask()(res pio.PacketBase, err error){
	player := p.h.player(p.Handle)
	if player == nil {
		return resultOf(native.ReleasedErr), nil
	}
	switch p.Op {
	case OpStart:
		return resultOf(player.Start()), nil
	case OpPause:
		player.Pause()
	case OpStop:
		player.Stop()
	case OpIsPlaying:
		rs := resultOf(nil)
		rs.Flag = player.IsPlaying()
		return rs, nil
	default:
		return resultOf(fmt.Errorf("Unknown player operation %d", p.Op)), nil
	}
	return resultOf(nil), nil
}

func (p *ListenPkt)WriteTo(w encoding.Writer)(err error){
	if err = writeHandle(w, p.Handle); err != nil {
		return
	}
	if err = w.WriteBool(p.Listen); err != nil {
		return
	}
	return
}

func (p *ListenPkt)ParseFrom(r encoding.Reader)(err error){
	if p.Handle, err = readHandle(r); err != nil {
		return
	}
	if p.Listen, err = r.ReadBool(); err != nil {
		return
	}
	return
}

func (p *ListenPkt)Trigger()(err error){
	p.h.listen(p.Handle, p.Listen)
	return
}

func (p *ReleasePkt)WriteTo(w encoding.Writer)(err error){
	return writeHandle(w, p.Handle)
}

func (p *ReleasePkt)ParseFrom(r encoding.Reader)(err error){
	p.Handle, err = readHandle(r)
	return
}

func (p *ReleasePkt)Trigger()(err error){
	p.h.release(p.Handle)
	return
}

func (p *ResultPkt)WriteTo(w encoding.Writer)(err error){
	if err = w.WriteUint32(p.Code); err != nil {
		return
	}
	if err = w.WriteString(p.Error); err != nil {
		return
	}
	if err = w.WriteBool(p.Flag); err != nil {
		return
	}
	return
}

func (p *ResultPkt)ParseFrom(r encoding.Reader)(err error){
	if p.Code, err = r.ReadUint32(); err != nil {
		return
	}
	if p.Error, err = r.ReadString(); err != nil {
		return
	}
	if p.Flag, err = r.ReadBool(); err != nil {
		return
	}
	return
}

func (p *ResultPkt)Trigger()(err error){
	return
}

func (p *AccelPkt)WriteTo(w encoding.Writer)(err error){
	for _, v := range [...]float64{p.X, p.Y, p.Z} {
		if err = writeFloat(w, v); err != nil {
			return
		}
	}
	return
}

func (p *AccelPkt)ParseFrom(r encoding.Reader)(err error){
	if p.X, err = readFloat(r); err != nil {
		return
	}
	if p.Y, err = readFloat(r); err != nil {
		return
	}
	if p.Z, err = readFloat(r); err != nil {
		return
	}
	return
}

func (p *AccelPkt)Trigger()(err error){
	p.r.motion.deliver(native.Acceleration{X: p.X, Y: p.Y, Z: p.Z})
	return
}

func (p *MenuSelectedPkt)WriteTo(w encoding.Writer)(err error){
	return writeHandle(w, p.Handle)
}

func (p *MenuSelectedPkt)ParseFrom(r encoding.Reader)(err error){
	p.Handle, err = readHandle(r)
	return
}

func (p *MenuSelectedPkt)Trigger()(err error){
	if item := p.r.menuItem(p.Handle); item != nil {
		item.selected()
	}
	return
}

func (p *PlayerEventPkt)WriteTo(w encoding.Writer)(err error){
	if err = writeHandle(w, p.Handle); err != nil {
		return
	}
	if err = w.WriteUint32((uint32)(p.Code)); err != nil {
		return
	}
	if err = w.WriteString(p.Message); err != nil {
		return
	}
	return
}

func (p *PlayerEventPkt)ParseFrom(r encoding.Reader)(err error){
	if p.Handle, err = readHandle(r); err != nil {
		return
	}
	var code uint32
	if code, err = r.ReadUint32(); err != nil {
		return
	}
	p.Code = (int32)(code)
	if p.Message, err = r.ReadString(); err != nil {
		return
	}
	return
}

func (p *PlayerEventPkt)Trigger()(err error){
	if player := p.r.player(p.Handle); player != nil {
		player.event((int)(p.Code), p.Message)
	}
	return
}
