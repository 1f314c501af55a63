package mcping

import (
	"bufio"
	"context"
	"io"
	"net"
	"testing"
	"time"

	"github.com/woozymasta/mcping/pkg/protocol"
)

const testStatusJSON = `{"description":"A Minecraft Server","players":{"max":20,"online":0},"version":{"name":"1.8-pre1","protocol":47}}`

// rakNetMagic is the offline-message marker a Bedrock server echoes.
var rakNetMagic = []byte{
	0x00, 0xFF, 0xFF, 0x00, 0xFE, 0xFE, 0xFE, 0xFE,
	0xFD, 0xFD, 0xFD, 0xFD, 0x12, 0x34, 0x56, 0x78,
}

func readVarint(r io.ByteReader) (uint32, error) {
	var v uint32
	for i := 0; i < 5; i++ {
		b, err := r.ReadByte()
		if err != nil {
			return 0, err
		}
		v |= uint32(b&0x7F) << (7 * i)
		if b&0x80 == 0 {
			return v, nil
		}
	}
	return 0, io.ErrUnexpectedEOF
}

func readFrame(r *bufio.Reader) (*protocol.Buffer, error) {
	length, err := readVarint(r)
	if err != nil {
		return nil, err
	}
	payload := make([]byte, length)
	if _, err := io.ReadFull(r, payload); err != nil {
		return nil, err
	}
	return protocol.NewBuffer(payload), nil
}

// serveSLP answers status and ping exchanges on ln, closing the first
// dropConns connections before the handshake to exercise the retry path.
func serveSLP(t *testing.T, ln net.Listener, dropConns int) {
	t.Helper()
	go func() {
		dropped := 0
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			if dropped < dropConns {
				dropped++
				_ = conn.Close()
				continue
			}
			go func(conn net.Conn) {
				defer func() { _ = conn.Close() }()
				r := bufio.NewReader(conn)

				// Handshake.
				if _, err := readFrame(r); err != nil {
					return
				}
				for {
					frame, err := readFrame(r)
					if err != nil {
						return
					}
					id, err := frame.ReadVarint()
					if err != nil {
						return
					}
					var reply protocol.Buffer
					switch id {
					case 0x00:
						reply.WriteVarint(0x00)
						reply.WriteUTF(testStatusJSON)
					case 0x01:
						token, err := frame.ReadInt64()
						if err != nil {
							return
						}
						reply.WriteVarint(0x01)
						reply.WriteInt64(token)
					default:
						return
					}
					if _, err := conn.Write(protocol.FramePacket(reply.Flush())); err != nil {
						return
					}
				}
			}(conn)
		}
	}()
}

func newSLPServer(t *testing.T, dropConns int) *JavaServer {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	t.Cleanup(func() { _ = ln.Close() })
	serveSLP(t, ln, dropConns)

	addr := ln.Addr().(*net.TCPAddr)
	s := NewJavaServer("127.0.0.1", uint16(addr.Port))
	s.Timeout = time.Second
	return s
}

func TestJavaServerStatus(t *testing.T) {
	s := newSLPServer(t, 0)
	result, err := s.StatusContext(context.Background())
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	if result.MOTD != "A Minecraft Server" {
		t.Errorf("MOTD = %q", result.MOTD)
	}
	if result.Players.Max != 20 {
		t.Errorf("max players = %d", result.Players.Max)
	}
	if result.Latency <= 0 {
		t.Errorf("latency = %v, want positive", result.Latency)
	}
}

func TestJavaServerPing(t *testing.T) {
	s := newSLPServer(t, 0)
	latency, err := s.PingContext(context.Background())
	if err != nil {
		t.Fatalf("Ping: %v", err)
	}
	if latency <= 0 {
		t.Errorf("latency = %v, want positive", latency)
	}
}

func TestJavaServerStatusRetriesDroppedConnections(t *testing.T) {
	s := newSLPServer(t, 2)
	if _, err := s.StatusContext(context.Background()); err != nil {
		t.Fatalf("Status after two dropped connections: %v", err)
	}
}

func TestJavaServerStatusExhaustsRetries(t *testing.T) {
	s := newSLPServer(t, 10)
	if _, err := s.StatusContext(context.Background()); err == nil {
		t.Fatal("Status should fail when every connection is dropped")
	}
}

func TestBedrockServerStatus(t *testing.T) {
	pc, err := net.ListenPacket("udp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	t.Cleanup(func() { _ = pc.Close() })

	go func() {
		buf := make([]byte, 1500)
		for {
			n, from, err := pc.ReadFrom(buf)
			if err != nil {
				return
			}
			if n == 0 || buf[0] != 0x01 {
				continue
			}

			payload := "MCPE;Dedicated Server;390;1.14.60;5;10;123;Bedrock level;Survival"
			var reply protocol.Buffer
			reply.WriteUint8(0x1C)
			reply.WriteUint64(uint64(time.Now().UnixMilli()))
			reply.WriteUint64(0x1122334455667788)
			reply.WriteBytes(rakNetMagic)
			reply.WriteUint16(uint16(len(payload)))
			reply.WriteBytes([]byte(payload))
			_, _ = pc.WriteTo(reply.Flush(), from)
		}
	}()

	addr := pc.LocalAddr().(*net.UDPAddr)
	s := NewBedrockServer("127.0.0.1", uint16(addr.Port))
	s.Timeout = time.Second

	result, err := s.StatusContext(context.Background())
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	if result.MOTD != "Dedicated Server" {
		t.Errorf("MOTD = %q", result.MOTD)
	}
	if result.MapName == nil || *result.MapName != "Bedrock level" {
		t.Errorf("MapName = %v", result.MapName)
	}
	if result.Latency <= 0 {
		t.Errorf("latency = %v, want positive", result.Latency)
	}
}

func TestJavaServerQuery(t *testing.T) {
	pc, err := net.ListenPacket("udp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	t.Cleanup(func() { _ = pc.Close() })

	go func() {
		buf := make([]byte, 1500)
		for {
			n, from, err := pc.ReadFrom(buf)
			if err != nil {
				return
			}
			if n < 7 {
				continue
			}
			session := buf[3:7]

			var reply protocol.Buffer
			switch buf[2] {
			case 0x09:
				reply.WriteUint8(0x09)
				reply.WriteBytes(session)
				reply.WriteASCII("9513307")
			case 0x00:
				reply.WriteUint8(0x00)
				reply.WriteBytes(session)
				reply.WriteBytes([]byte("splitnum\x00\x80\x00"))
				for _, kv := range [][2]string{
					{"hostname", "A Minecraft Server"},
					{"map", "world"},
					{"numplayers", "1"},
					{"maxplayers", "20"},
					{"version", "1.8"},
					{"plugins", ""},
				} {
					reply.WriteASCII(kv[0])
					reply.WriteASCII(kv[1])
				}
				reply.WriteBytes([]byte("\x00\x01player_\x00\x00"))
				reply.WriteASCII("Dinnerbone")
				reply.WriteUint8(0)
			default:
				continue
			}
			_, _ = pc.WriteTo(reply.Flush(), from)
		}
	}()

	addr := pc.LocalAddr().(*net.UDPAddr)
	s := NewJavaServer("127.0.0.1", uint16(addr.Port))
	s.Timeout = time.Second

	result, err := s.QueryContext(context.Background())
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if result.MOTD != "A Minecraft Server" {
		t.Errorf("MOTD = %q", result.MOTD)
	}
	if len(result.Players.Names) != 1 || result.Players.Names[0] != "Dinnerbone" {
		t.Errorf("names = %v", result.Players.Names)
	}
}
