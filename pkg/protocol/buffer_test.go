package protocol

import (
	"errors"
	"testing"
)

func TestVarintRoundTrip(t *testing.T) {
	values := []uint32{0, 1, 127, 128, 255, 25565, 2097151, 2147483647, 4294967295}
	for _, v := range values {
		var b Buffer
		b.WriteVarint(v)
		got, err := b.ReadVarint()
		if err != nil {
			t.Fatalf("ReadVarint(%d): %v", v, err)
		}
		if got != v {
			t.Errorf("round trip %d: got %d", v, got)
		}
		if b.Remaining() != 0 {
			t.Errorf("round trip %d: %d bytes left unread", v, b.Remaining())
		}
	}
}

func TestVarintMinimalEncoding(t *testing.T) {
	cases := []struct {
		value uint32
		size  int
	}{
		{0, 1},
		{127, 1},
		{128, 2},
		{16383, 2},
		{16384, 3},
		{2097151, 3},
		{2097152, 4},
		{268435455, 4},
		{268435456, 5},
		{4294967295, 5},
	}
	for _, tc := range cases {
		var b Buffer
		b.WriteVarint(tc.value)
		if got := len(b.Flush()); got != tc.size {
			t.Errorf("WriteVarint(%d): %d bytes, want %d", tc.value, got, tc.size)
		}
	}
}

func TestVarintOverlong(t *testing.T) {
	b := NewBuffer([]byte{0x80, 0x80, 0x80, 0x80, 0x80, 0x01})
	if _, err := b.ReadVarint(); KindOf(err) != KindProtocol {
		t.Fatalf("overlong varint: got %v, want a protocol error", err)
	}
}

func TestReadUnderflow(t *testing.T) {
	cases := []struct {
		name string
		read func(*Buffer) error
	}{
		{"bytes", func(b *Buffer) error { _, err := b.ReadBytes(4); return err }},
		{"uint8", func(b *Buffer) error { _, err := b.ReadUint8(); return err }},
		{"varint", func(b *Buffer) error { _, err := b.ReadVarint(); return err }},
		{"utf", func(b *Buffer) error { _, err := b.ReadUTF(); return err }},
		{"ascii", func(b *Buffer) error { _, err := b.ReadASCII(); return err }},
		{"uint16", func(b *Buffer) error { _, err := b.ReadUint16(); return err }},
		{"uint32", func(b *Buffer) error { _, err := b.ReadUint32(); return err }},
		{"int32", func(b *Buffer) error { _, err := b.ReadInt32(); return err }},
		{"uint64", func(b *Buffer) error { _, err := b.ReadUint64(); return err }},
		{"int64", func(b *Buffer) error { _, err := b.ReadInt64(); return err }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			// A single non-continuation byte satisfies uint8 and varint,
			// so those read from an empty buffer instead.
			in := NewBuffer([]byte{0x01})
			if tc.name == "uint8" || tc.name == "varint" {
				in = NewBuffer(nil)
			}
			err := tc.read(in)
			if !errors.Is(err, ErrUnderflow) {
				t.Fatalf("got %v, want ErrUnderflow", err)
			}
			if KindOf(err) != KindTransport {
				t.Errorf("underflow classified as %v, want transport", KindOf(err))
			}
		})
	}
}

func TestUTFRoundTrip(t *testing.T) {
	for _, s := range []string{"", "localhost", "mc.example.com", "привет", "a§cb"} {
		var b Buffer
		b.WriteUTF(s)
		got, err := b.ReadUTF()
		if err != nil {
			t.Fatalf("ReadUTF(%q): %v", s, err)
		}
		if got != s {
			t.Errorf("round trip %q: got %q", s, got)
		}
	}
}

func TestASCII(t *testing.T) {
	var b Buffer
	b.WriteASCII("first")
	b.WriteASCII("")
	b.WriteASCII("second")
	in := NewBuffer(b.Flush())

	for _, want := range []string{"first", "", "second"} {
		got, err := in.ReadASCII()
		if err != nil {
			t.Fatalf("ReadASCII: %v", err)
		}
		if got != want {
			t.Errorf("got %q, want %q", got, want)
		}
	}

	// A missing terminator is a short read.
	unterminated := NewBuffer([]byte("no null here"))
	if _, err := unterminated.ReadASCII(); !errors.Is(err, ErrUnderflow) {
		t.Fatalf("unterminated string: got %v, want ErrUnderflow", err)
	}
}

func TestFixedWidthRoundTrip(t *testing.T) {
	var b Buffer
	b.WriteUint16(25565)
	b.WriteUint32(0x0F0F0F0F)
	b.WriteInt32(-9513307)
	b.WriteUint64(0xDEADBEEFCAFEBABE)
	b.WriteInt64(-1)
	in := NewBuffer(b.Flush())

	if v, err := in.ReadUint16(); err != nil || v != 25565 {
		t.Errorf("ReadUint16: %d, %v", v, err)
	}
	if v, err := in.ReadUint32(); err != nil || v != 0x0F0F0F0F {
		t.Errorf("ReadUint32: %d, %v", v, err)
	}
	if v, err := in.ReadInt32(); err != nil || v != -9513307 {
		t.Errorf("ReadInt32: %d, %v", v, err)
	}
	if v, err := in.ReadUint64(); err != nil || v != 0xDEADBEEFCAFEBABE {
		t.Errorf("ReadUint64: %d, %v", v, err)
	}
	if v, err := in.ReadInt64(); err != nil || v != -1 {
		t.Errorf("ReadInt64: %d, %v", v, err)
	}
	if in.Remaining() != 0 {
		t.Errorf("%d bytes left unread", in.Remaining())
	}
}

func TestFramePacket(t *testing.T) {
	framed := FramePacket([]byte{0x00, 0x01, 0x02})
	b := NewBuffer(framed)
	length, err := b.ReadVarint()
	if err != nil {
		t.Fatal(err)
	}
	if length != 3 || b.Remaining() != 3 {
		t.Fatalf("frame length %d over %d payload bytes, want 3 over 3", length, b.Remaining())
	}
}
