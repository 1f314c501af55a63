// Package bedrock implements the Bedrock Edition status exchange: one
// RakNet unconnected ping datagram and the unconnected pong that answers
// it.
package bedrock

import (
	"bytes"
	"context"
	"encoding/binary"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/woozymasta/mcping/pkg/protocol"
	"github.com/woozymasta/mcping/pkg/status"
)

// RakNet packet ids of the discovery exchange.
const (
	packetIDUnconnectedPing byte = 0x01
	packetIDUnconnectedPong byte = 0x1C
)

// unconnectedMagic is the fixed RakNet offline-message marker. The pong
// must echo it byte for byte.
var unconnectedMagic = []byte{
	0x00, 0xFF, 0xFF, 0x00, 0xFE, 0xFE, 0xFE, 0xFE,
	0xFD, 0xFD, 0xFD, 0xFD, 0x12, 0x34, 0x56, 0x78,
}

// Pinger performs the single-round-trip Bedrock status exchange. There is
// no session state beyond the client GUID identifying this process.
type Pinger struct {
	ch   protocol.Channel
	guid uint64
}

// NewPinger creates a pinger over ch with a freshly generated client GUID.
func NewPinger(ch protocol.Channel) *Pinger {
	id := uuid.New()
	return &Pinger{
		ch:   ch,
		guid: binary.BigEndian.Uint64(id[:8]),
	}
}

// ReadStatus sends an unconnected ping and decodes the pong into a
// validated response. Latency spans the full datagram round trip.
func (p *Pinger) ReadStatus(ctx context.Context) (*status.BedrockStatus, error) {
	var request protocol.Buffer
	request.WriteUint8(packetIDUnconnectedPing)
	request.WriteUint64(uint64(time.Now().UnixMilli()))
	request.WriteBytes(unconnectedMagic)
	request.WriteUint64(p.guid)

	sent := time.Now()
	if err := p.ch.WriteBuffer(ctx, &request); err != nil {
		return nil, err
	}
	response, err := p.ch.ReadBuffer(ctx)
	if err != nil {
		return nil, err
	}
	latency := time.Since(sent)

	fields, err := decodePong(response)
	if err != nil {
		return nil, err
	}
	return status.BuildBedrock(fields, latency)
}

// decodePong validates the pong framing and splits the payload string into
// its positional fields.
func decodePong(b *protocol.Buffer) ([]string, error) {
	id, err := b.ReadUint8()
	if err != nil {
		return nil, err
	}
	if id != packetIDUnconnectedPong {
		return nil, protocol.ProtocolError("pong", "unexpected packet id 0x%02X, want 0x%02X", id, packetIDUnconnectedPong)
	}

	// Echoed timestamp and the server GUID.
	if _, err := b.ReadUint64(); err != nil {
		return nil, err
	}
	if _, err := b.ReadUint64(); err != nil {
		return nil, err
	}

	echoedMagic, err := b.ReadBytes(len(unconnectedMagic))
	if err != nil {
		return nil, err
	}
	if !bytes.Equal(echoedMagic, unconnectedMagic) {
		return nil, protocol.ProtocolError("pong", "offline-message magic mismatch")
	}

	length, err := b.ReadUint16()
	if err != nil {
		return nil, err
	}
	payload, err := b.ReadBytes(int(length))
	if err != nil {
		return nil, err
	}

	return strings.Split(string(payload), ";"), nil
}
