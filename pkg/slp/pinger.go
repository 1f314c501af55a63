// Package slp implements the Java Edition Server List Ping protocol: the
// handshake, status request and ping exchanges spoken over a framed TCP
// channel.
package slp

import (
	"context"
	"encoding/json"
	"math/rand"
	"time"

	"github.com/woozymasta/mcping/pkg/address"
	"github.com/woozymasta/mcping/pkg/protocol"
	"github.com/woozymasta/mcping/pkg/status"
)

// DefaultProtocolVersion is the protocol number sent in the handshake when
// the caller does not pick one. Servers answer the status request
// regardless of the advertised version.
const DefaultProtocolVersion = 47

// Packet ids and the post-handshake state selector of the SLP protocol.
const (
	packetIDHandshake uint32 = 0x00
	packetIDStatus    uint32 = 0x00
	packetIDPing      uint32 = 0x01
	nextStateStatus   uint32 = 1
)

// Pinger drives one Server List Ping session over a channel. A session is
// single-use: Handshake once, then ReadStatus and TestPing each at most
// once. A new Pinger (and channel) is required per round trip.
type Pinger struct {
	ch   protocol.Channel
	addr address.Address

	// Version is the protocol version advertised in the handshake.
	Version uint32

	token      int64
	handshaken bool
	statusRead bool
	pinged     bool
}

// NewPinger creates a session over ch for the given server address. The
// ping token is freshly randomized per session.
func NewPinger(ch protocol.Channel, addr address.Address) *Pinger {
	return &Pinger{
		ch:      ch,
		addr:    addr,
		Version: DefaultProtocolVersion,
		token:   rand.Int63(),
	}
}

// Handshake sends the handshake packet announcing the status intention.
// It must be called exactly once, before ReadStatus or TestPing.
func (p *Pinger) Handshake(ctx context.Context) error {
	if p.handshaken {
		return protocol.ProtocolError("handshake", "handshake already sent")
	}

	var b protocol.Buffer
	b.WriteVarint(packetIDHandshake)
	b.WriteVarint(p.Version)
	b.WriteUTF(p.addr.Host)
	b.WriteUint16(p.addr.Port)
	b.WriteVarint(nextStateStatus)

	if err := p.ch.WriteBuffer(ctx, &b); err != nil {
		return err
	}
	p.handshaken = true
	return nil
}

// ReadStatus requests the server status and decodes the JSON payload into a
// validated response. The response latency is zero; callers pair this with
// TestPing to measure it.
func (p *Pinger) ReadStatus(ctx context.Context) (*status.JavaStatus, error) {
	if !p.handshaken {
		return nil, protocol.ProtocolError("read status", "status requested before handshake")
	}
	if p.statusRead {
		return nil, protocol.ProtocolError("read status", "status already read in this session")
	}
	p.statusRead = true

	var request protocol.Buffer
	request.WriteVarint(packetIDStatus)
	if err := p.ch.WriteBuffer(ctx, &request); err != nil {
		return nil, err
	}

	response, err := p.ch.ReadBuffer(ctx)
	if err != nil {
		return nil, err
	}
	id, err := response.ReadVarint()
	if err != nil {
		return nil, err
	}
	if id != packetIDStatus {
		return nil, protocol.ProtocolError("read status", "unexpected packet id 0x%02X, want 0x%02X", id, packetIDStatus)
	}

	payload, err := response.ReadUTF()
	if err != nil {
		return nil, err
	}

	var raw map[string]any
	if err := json.Unmarshal([]byte(payload), &raw); err != nil {
		return nil, protocol.ProtocolError("read status", "status payload is not valid JSON: %v", err)
	}

	return status.BuildJava(raw)
}

// TestPing measures the round-trip latency with a ping packet carrying the
// session token. The echoed token must match exactly; a mangled echo is a
// protocol failure, not a measurement. The elapsed time spans the full send
// and receive, including any time spent blocked on the socket.
func (p *Pinger) TestPing(ctx context.Context) (time.Duration, error) {
	if !p.handshaken {
		return 0, protocol.ProtocolError("ping", "ping requested before handshake")
	}
	if p.pinged {
		return 0, protocol.ProtocolError("ping", "ping already performed in this session")
	}
	p.pinged = true

	var request protocol.Buffer
	request.WriteVarint(packetIDPing)
	request.WriteInt64(p.token)

	sent := time.Now()
	if err := p.ch.WriteBuffer(ctx, &request); err != nil {
		return 0, err
	}
	response, err := p.ch.ReadBuffer(ctx)
	if err != nil {
		return 0, err
	}
	latency := time.Since(sent)

	id, err := response.ReadVarint()
	if err != nil {
		return 0, err
	}
	if id != packetIDPing {
		return 0, protocol.ProtocolError("ping", "unexpected packet id 0x%02X, want 0x%02X", id, packetIDPing)
	}
	echoed, err := response.ReadInt64()
	if err != nil {
		return 0, err
	}
	if echoed != p.token {
		return 0, protocol.ProtocolError("ping", "mangled ping response (sent token %d, received %d)", p.token, echoed)
	}

	return latency, nil
}
