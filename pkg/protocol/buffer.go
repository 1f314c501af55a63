package protocol

import (
	"encoding/binary"
)

// maxVarintBytes bounds a varint-encoded 32-bit value.
const maxVarintBytes = 5

// Buffer is the in-memory binary channel. It keeps two independent byte
// sequences: unread input that read primitives consume from the front, and
// pending output that write primitives append to. A Buffer lives for one
// logical round trip and is discarded afterwards.
//
// Every read fails with ErrUnderflow (wrapped as a transport error) when
// fewer bytes are available than requested; reads never panic.
type Buffer struct {
	in  []byte
	out []byte
}

// NewBuffer creates a Buffer with the given unread input.
func NewBuffer(in []byte) *Buffer {
	return &Buffer{in: in}
}

// Feed appends p to the unread input.
func (b *Buffer) Feed(p []byte) {
	b.in = append(b.in, p...)
}

// Remaining returns the number of unread input bytes.
func (b *Buffer) Remaining() int {
	return len(b.in)
}

// Flush returns the pending output and resets it.
func (b *Buffer) Flush() []byte {
	out := b.out
	b.out = nil
	return out
}

// ReadBytes consumes exactly n bytes from the input.
func (b *Buffer) ReadBytes(n int) ([]byte, error) {
	if n < 0 || len(b.in) < n {
		return nil, TransportError("read bytes", ErrUnderflow)
	}
	p := b.in[:n:n]
	b.in = b.in[n:]
	return p, nil
}

// WriteBytes appends p to the output.
func (b *Buffer) WriteBytes(p []byte) {
	b.out = append(b.out, p...)
}

// ReadUint8 consumes a single byte.
func (b *Buffer) ReadUint8() (byte, error) {
	p, err := b.ReadBytes(1)
	if err != nil {
		return 0, err
	}
	return p[0], nil
}

// WriteUint8 appends a single byte to the output.
func (b *Buffer) WriteUint8(v byte) {
	b.out = append(b.out, v)
}

// ReadVarint decodes a variable-length 32-bit integer: 7-bit groups, least
// significant first, high bit marking continuation. Encodings longer than
// five bytes are rejected as a protocol error.
func (b *Buffer) ReadVarint() (uint32, error) {
	var v uint32
	for i := 0; i < maxVarintBytes; i++ {
		c, err := b.ReadUint8()
		if err != nil {
			return 0, err
		}
		v |= uint32(c&0x7F) << (7 * i)
		if c&0x80 == 0 {
			return v, nil
		}
	}
	return 0, ProtocolError("read varint", "varint exceeds %d bytes", maxVarintBytes)
}

// WriteVarint appends v in variable-length encoding, using the minimal
// number of 7-bit groups.
func (b *Buffer) WriteVarint(v uint32) {
	for {
		c := byte(v & 0x7F)
		v >>= 7
		if v != 0 {
			c |= 0x80
		}
		b.out = append(b.out, c)
		if v == 0 {
			return
		}
	}
}

// ReadUTF reads a varint length prefix followed by that many UTF-8 bytes.
func (b *Buffer) ReadUTF() (string, error) {
	n, err := b.ReadVarint()
	if err != nil {
		return "", err
	}
	p, err := b.ReadBytes(int(n))
	if err != nil {
		return "", err
	}
	return string(p), nil
}

// WriteUTF appends a varint length prefix followed by the UTF-8 bytes of s.
func (b *Buffer) WriteUTF(s string) {
	b.WriteVarint(uint32(len(s)))
	b.out = append(b.out, s...)
}

// ReadASCII reads bytes up to and excluding a null terminator. The
// terminator is consumed. A missing terminator is an underflow.
func (b *Buffer) ReadASCII() (string, error) {
	for i, c := range b.in {
		if c == 0 {
			s := string(b.in[:i])
			b.in = b.in[i+1:]
			return s, nil
		}
	}
	return "", TransportError("read c-string", ErrUnderflow)
}

// WriteASCII appends s followed by a null terminator.
func (b *Buffer) WriteASCII(s string) {
	b.out = append(b.out, s...)
	b.out = append(b.out, 0)
}

// ReadUint16 reads a big-endian unsigned 16-bit integer.
func (b *Buffer) ReadUint16() (uint16, error) {
	p, err := b.ReadBytes(2)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint16(p), nil
}

// WriteUint16 appends v big-endian.
func (b *Buffer) WriteUint16(v uint16) {
	b.out = binary.BigEndian.AppendUint16(b.out, v)
}

// ReadUint32 reads a big-endian unsigned 32-bit integer.
func (b *Buffer) ReadUint32() (uint32, error) {
	p, err := b.ReadBytes(4)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(p), nil
}

// WriteUint32 appends v big-endian.
func (b *Buffer) WriteUint32(v uint32) {
	b.out = binary.BigEndian.AppendUint32(b.out, v)
}

// ReadInt32 reads a big-endian signed 32-bit integer.
func (b *Buffer) ReadInt32() (int32, error) {
	p, err := b.ReadBytes(4)
	if err != nil {
		return 0, err
	}
	return int32(binary.BigEndian.Uint32(p)), nil
}

// WriteInt32 appends v big-endian.
func (b *Buffer) WriteInt32(v int32) {
	b.out = binary.BigEndian.AppendUint32(b.out, uint32(v))
}

// ReadUint64 reads a big-endian unsigned 64-bit integer.
func (b *Buffer) ReadUint64() (uint64, error) {
	p, err := b.ReadBytes(8)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint64(p), nil
}

// WriteUint64 appends v big-endian.
func (b *Buffer) WriteUint64(v uint64) {
	b.out = binary.BigEndian.AppendUint64(b.out, v)
}

// ReadInt64 reads a big-endian signed 64-bit integer.
func (b *Buffer) ReadInt64() (int64, error) {
	v, err := b.ReadUint64()
	return int64(v), err
}

// WriteInt64 appends v big-endian.
func (b *Buffer) WriteInt64(v int64) {
	b.WriteUint64(uint64(v))
}
