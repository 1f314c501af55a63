package protocol

import (
	"bufio"
	"context"
	"io"
	"net"
	"time"
)

// maxDatagramSize is the receive buffer for UDP channels. Full-stat query
// replies from busy servers can span several fragments, so the whole
// 16-bit datagram range is accepted.
const maxDatagramSize = 65535

// Channel is a packet-oriented binary transport. WriteBuffer sends the
// pending output of b as one packet, ReadBuffer receives one packet into a
// fresh Buffer. The socket send/receive inside these two calls is the only
// point where a caller may block; all encoding and decoding happens in
// Buffer primitives outside the channel.
//
// Channels are single-use and not safe for concurrent calls; every logical
// round trip constructs its own.
type Channel interface {
	WriteBuffer(ctx context.Context, b *Buffer) error
	ReadBuffer(ctx context.Context) (*Buffer, error)
	Close() error
}

// FramePacket wraps an SLP packet payload (id + fields) with the varint
// prefix carrying the payload length. The prefix does not count itself.
func FramePacket(payload []byte) []byte {
	var b Buffer
	b.WriteVarint(uint32(len(payload)))
	b.WriteBytes(payload)
	return b.Flush()
}

// TCPConn is the stream channel used by the Java Server List Ping protocol.
// Packets are exchanged in SLP framing: a varint total length followed by
// the payload. The timeout given at dial time applies to every individual
// I/O call, not to the whole round trip.
type TCPConn struct {
	conn    net.Conn
	r       *bufio.Reader
	timeout time.Duration
}

// DialTCP connects to addr with the given per-call timeout.
func DialTCP(addr string, timeout time.Duration) (*TCPConn, error) {
	return DialTCPContext(context.Background(), addr, timeout)
}

// DialTCPContext connects to addr, honoring ctx during the connect itself.
func DialTCPContext(ctx context.Context, addr string, timeout time.Duration) (*TCPConn, error) {
	d := net.Dialer{Timeout: timeout}
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, TransportError("connect", err)
	}
	return &TCPConn{conn: conn, r: bufio.NewReader(conn), timeout: timeout}, nil
}

// WriteBuffer sends the pending output of b as one framed packet.
func (c *TCPConn) WriteBuffer(ctx context.Context, b *Buffer) error {
	if err := ctx.Err(); err != nil {
		return TransportError("write", err)
	}
	if err := c.conn.SetWriteDeadline(ioDeadline(ctx, c.timeout)); err != nil {
		return TransportError("write", err)
	}
	if _, err := c.conn.Write(FramePacket(b.Flush())); err != nil {
		return TransportError("write", err)
	}
	return nil
}

// ReadBuffer receives one framed packet: the varint length, then exactly
// that many payload bytes into a fresh Buffer.
func (c *TCPConn) ReadBuffer(ctx context.Context) (*Buffer, error) {
	if err := ctx.Err(); err != nil {
		return nil, TransportError("read", err)
	}
	if err := c.conn.SetReadDeadline(ioDeadline(ctx, c.timeout)); err != nil {
		return nil, TransportError("read", err)
	}

	length, err := c.readVarint()
	if err != nil {
		return nil, err
	}

	payload := make([]byte, length)
	if _, err := io.ReadFull(c.r, payload); err != nil {
		return nil, TransportError("read", err)
	}
	return NewBuffer(payload), nil
}

// readVarint decodes a varint directly off the stream, one byte at a time.
func (c *TCPConn) readVarint() (uint32, error) {
	var v uint32
	for i := 0; i < maxVarintBytes; i++ {
		b, err := c.r.ReadByte()
		if err != nil {
			return 0, TransportError("read", err)
		}
		v |= uint32(b&0x7F) << (7 * i)
		if b&0x80 == 0 {
			return v, nil
		}
	}
	return 0, ProtocolError("read", "packet length varint exceeds %d bytes", maxVarintBytes)
}

// Close releases the underlying socket.
func (c *TCPConn) Close() error {
	return c.conn.Close()
}

// UDPConn is the datagram channel used by the Query and Bedrock protocols.
// Each WriteBuffer sends one datagram and each ReadBuffer receives one, with
// no framing beyond the datagram boundary.
type UDPConn struct {
	conn    net.Conn
	timeout time.Duration
}

// DialUDP binds a connected UDP socket towards addr.
func DialUDP(addr string, timeout time.Duration) (*UDPConn, error) {
	return DialUDPContext(context.Background(), addr, timeout)
}

// DialUDPContext binds a connected UDP socket towards addr, honoring ctx.
func DialUDPContext(ctx context.Context, addr string, timeout time.Duration) (*UDPConn, error) {
	d := net.Dialer{Timeout: timeout}
	conn, err := d.DialContext(ctx, "udp", addr)
	if err != nil {
		return nil, TransportError("connect", err)
	}
	return &UDPConn{conn: conn, timeout: timeout}, nil
}

// WriteBuffer sends the pending output of b as one datagram.
func (c *UDPConn) WriteBuffer(ctx context.Context, b *Buffer) error {
	if err := ctx.Err(); err != nil {
		return TransportError("write", err)
	}
	if err := c.conn.SetWriteDeadline(ioDeadline(ctx, c.timeout)); err != nil {
		return TransportError("write", err)
	}
	if _, err := c.conn.Write(b.Flush()); err != nil {
		return TransportError("write", err)
	}
	return nil
}

// ReadBuffer receives one datagram into a fresh Buffer.
func (c *UDPConn) ReadBuffer(ctx context.Context) (*Buffer, error) {
	if err := ctx.Err(); err != nil {
		return nil, TransportError("read", err)
	}
	if err := c.conn.SetReadDeadline(ioDeadline(ctx, c.timeout)); err != nil {
		return nil, TransportError("read", err)
	}

	p := make([]byte, maxDatagramSize)
	n, err := c.conn.Read(p)
	if err != nil {
		return nil, TransportError("read", err)
	}
	return NewBuffer(p[:n]), nil
}

// Close releases the underlying socket.
func (c *UDPConn) Close() error {
	return c.conn.Close()
}

// Loopback is the in-memory Channel used for deterministic protocol tests.
// Written packets are recorded in Sent, reads pop prepared Replies in order.
type Loopback struct {
	Sent    []*Buffer
	Replies []*Buffer
}

// WriteBuffer records the pending output of b.
func (l *Loopback) WriteBuffer(_ context.Context, b *Buffer) error {
	l.Sent = append(l.Sent, NewBuffer(b.Flush()))
	return nil
}

// ReadBuffer pops the next prepared reply, or fails with an underflow once
// the queue is exhausted.
func (l *Loopback) ReadBuffer(context.Context) (*Buffer, error) {
	if len(l.Replies) == 0 {
		return nil, TransportError("read", ErrUnderflow)
	}
	b := l.Replies[0]
	l.Replies = l.Replies[1:]
	return b, nil
}

// Close implements Channel.
func (l *Loopback) Close() error {
	return nil
}

// ioDeadline computes the absolute deadline for one socket operation: the
// per-call timeout, clipped by the context deadline when that is sooner.
func ioDeadline(ctx context.Context, timeout time.Duration) time.Time {
	d := time.Now().Add(timeout)
	if cd, ok := ctx.Deadline(); ok && cd.Before(d) {
		return cd
	}
	return d
}
