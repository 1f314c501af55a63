// Package query implements the UDP GameSpy4-derived query protocol: the
// challenge-token handshake and the full-stat request that returns the
// complete server rundown including the online player list.
package query

import (
	"context"
	"strconv"

	"github.com/cespare/xxhash/v2"
	"github.com/woozymasta/mcping/pkg/protocol"
	"github.com/woozymasta/mcping/pkg/status"
)

// Every query datagram opens with this two-byte magic.
var magic = []byte{0xFE, 0xFD}

// Packet types of the query protocol.
const (
	packetTypeStat      byte = 0x00
	packetTypeChallenge byte = 0x09
)

// sessionIDMask clears the high bit of each session id byte, which some
// server implementations reject.
const sessionIDMask uint32 = 0x0F0F0F0F

// statPadding selects full stat over basic stat in the request.
var statPadding = []byte{0x00, 0x00, 0x00, 0x00}

// fullStatHeaderLen is the length of the constant section a full-stat reply
// carries before the key/value data ("splitnum" plus two framing bytes and
// its terminator).
const fullStatHeaderLen = 11

// playerSectionHeader separates the key/value section from the player list.
// The leading null pairs with the empty key that terminates the key/value
// section.
var playerSectionHeader = []byte("\x00\x01player_\x00\x00")

// Querier drives one challenge-plus-stat exchange over a datagram channel.
// The challenge token obtained by Handshake authorizes exactly the next
// ReadQuery on the same session; a fresh attempt needs a fresh Querier.
type Querier struct {
	ch         protocol.Channel
	sessionID  uint32
	challenge  int32
	challenged bool
}

// NewQuerier creates a session over ch. The session id is derived from the
// host string, so it is arbitrary but stable for a given server.
func NewQuerier(ch protocol.Channel, host string) *Querier {
	return &Querier{
		ch:        ch,
		sessionID: uint32(xxhash.Sum64String(host)) & sessionIDMask,
	}
}

// Handshake requests a challenge token. The reply carries the token as a
// null-terminated decimal ASCII string; anything that does not parse as a
// signed 32-bit integer is a protocol failure.
func (q *Querier) Handshake(ctx context.Context) error {
	var request protocol.Buffer
	request.WriteBytes(magic)
	request.WriteUint8(packetTypeChallenge)
	request.WriteUint32(q.sessionID)

	if err := q.ch.WriteBuffer(ctx, &request); err != nil {
		return err
	}
	response, err := q.ch.ReadBuffer(ctx)
	if err != nil {
		return err
	}

	// Type and session id echo.
	if _, err := response.ReadBytes(5); err != nil {
		return err
	}
	tokenStr, err := response.ReadASCII()
	if err != nil {
		return err
	}
	token, err := strconv.ParseInt(tokenStr, 10, 32)
	if err != nil {
		return protocol.ProtocolError("handshake", "challenge token %q is not a number", tokenStr)
	}

	q.challenge = int32(token)
	q.challenged = true
	return nil
}

// ReadQuery requests full stat with the challenge token and parses the
// reply: the key/value section up to its empty-key terminator, then the
// player-name list up to the double-null terminator. Bytes past the
// terminator are ignored.
func (q *Querier) ReadQuery(ctx context.Context) (*status.QueryStatus, error) {
	if !q.challenged {
		return nil, protocol.ProtocolError("read query", "stat requested before challenge handshake")
	}

	var request protocol.Buffer
	request.WriteBytes(magic)
	request.WriteUint8(packetTypeStat)
	request.WriteUint32(q.sessionID)
	request.WriteInt32(q.challenge)
	request.WriteBytes(statPadding)

	if err := q.ch.WriteBuffer(ctx, &request); err != nil {
		return nil, err
	}
	response, err := q.ch.ReadBuffer(ctx)
	if err != nil {
		return nil, err
	}

	// Type and session id echo, then the full-stat framing constant.
	if _, err := response.ReadBytes(5 + fullStatHeaderLen); err != nil {
		return nil, err
	}

	raw := make(map[string]string)
	for {
		key, err := response.ReadASCII()
		if err != nil {
			return nil, err
		}
		if key == "" {
			break
		}
		value, err := response.ReadASCII()
		if err != nil {
			return nil, err
		}
		raw[key] = value
	}

	// The empty key consumed the first byte of the section header.
	if _, err := response.ReadBytes(len(playerSectionHeader) - 1); err != nil {
		return nil, err
	}

	var players []string
	for {
		name, err := response.ReadASCII()
		if err != nil {
			return nil, err
		}
		if name == "" {
			break
		}
		players = append(players, name)
	}

	return status.BuildQuery(raw, players)
}
