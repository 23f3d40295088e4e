
package hostlink

import (
	"crypto/hmac"
	crand "crypto/rand"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"net"
	"time"

	"github.com/kmcsr/go-pio/encoding"
)

var (
	BadMagicErr        = errors.New("Peer does not speak hostlink")
	VersionMismatchErr = errors.New("Hostlink protocol version mismatch")
	AuthFailedErr      = errors.New("Hostlink authentication failed")
)

const (
	linkMagic   uint32 = 0x4a53424c // "JSBL"
	linkVersion uint32 = 1

	nonceSize        = 16
	handshakeTimeout = 5 * time.Second
)

// handshake runs on the raw connection before any packet. Both sides send the
// magic and their protocol version, then the host sends a nonce. When the host
// has a token, the engine must answer with HMAC-SHA256(token, nonce).
type handshake struct{
	token []byte
}

func signNonce(token []byte, nonce []byte)([]byte){
	mac := hmac.New(sha256.New, token)
	mac.Write(nonce)
	return mac.Sum(nil)
}

func writeHello(w encoding.Writer)(err error){
	if err = w.WriteUint32(linkMagic); err != nil {
		return
	}
	return w.WriteUint32(linkVersion)
}

func readHello(r encoding.Reader)(err error){
	var magic, version uint32
	if magic, err = r.ReadUint32(); err != nil {
		return
	}
	if magic != linkMagic {
		return BadMagicErr
	}
	if version, err = r.ReadUint32(); err != nil {
		return
	}
	if version != linkVersion {
		return fmt.Errorf("%w: peer %d, local %d", VersionMismatchErr, version, linkVersion)
	}
	return
}

func (h handshake)engine(c io.ReadWriter)(err error){
	r := encoding.WrapReader(c)
	w := encoding.WrapWriter(c)
	if err = writeHello(w); err != nil {
		return
	}
	if err = readHello(r); err != nil {
		return
	}
	var (
		auth  bool
		nonce []byte
		ok    bool
	)
	if auth, err = r.ReadBool(); err != nil {
		return
	}
	if nonce, err = r.ReadBytes(); err != nil {
		return
	}
	if auth {
		var proof []byte
		if len(h.token) > 0 {
			proof = signNonce(h.token, nonce)
		}
		if err = w.WriteBytes(proof); err != nil {
			return
		}
	}
	if ok, err = r.ReadBool(); err != nil {
		return
	}
	if !ok {
		return AuthFailedErr
	}
	return
}

func (h handshake)host(c io.ReadWriter)(err error){
	r := encoding.WrapReader(c)
	w := encoding.WrapWriter(c)
	if err = writeHello(w); err != nil {
		return
	}
	if err = readHello(r); err != nil {
		return
	}
	nonce := make([]byte, nonceSize)
	if _, err = io.ReadFull(crand.Reader, nonce); err != nil {
		return
	}
	auth := len(h.token) > 0
	if err = w.WriteBool(auth); err != nil {
		return
	}
	if err = w.WriteBytes(nonce); err != nil {
		return
	}
	ok := true
	if auth {
		var proof []byte
		if proof, err = r.ReadBytes(); err != nil {
			return
		}
		ok = hmac.Equal(proof, signNonce(h.token, nonce))
	}
	if err = w.WriteBool(ok); err != nil {
		return
	}
	if !ok {
		return AuthFailedErr
	}
	return
}

// withDeadline bounds fn by the handshake timeout, or by deadline when it is
// earlier, and clears the deadline afterwards.
func withDeadline(c net.Conn, deadline time.Time, fn func()(error))(err error){
	limit := time.Now().Add(handshakeTimeout)
	if deadline.IsZero() || deadline.After(limit) {
		deadline = limit
	}
	if err = c.SetDeadline(deadline); err != nil {
		return
	}
	if err = fn(); err != nil {
		return
	}
	return c.SetDeadline(time.Time{})
}
