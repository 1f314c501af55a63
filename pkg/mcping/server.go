// Package mcping exposes the high-level server handles: lookup a server by
// its address string, then ping, status or query it. Every network
// operation resolves the address, wraps the protocol exchange in a bounded
// retry, and returns a validated response. Blocking and context-aware
// forms are provided for each operation.
package mcping

import (
	"context"
	"time"

	"github.com/woozymasta/mcping/internal/retry"
	"github.com/woozymasta/mcping/pkg/address"
	"github.com/woozymasta/mcping/pkg/bedrock"
	"github.com/woozymasta/mcping/pkg/protocol"
	"github.com/woozymasta/mcping/pkg/query"
	"github.com/woozymasta/mcping/pkg/slp"
	"github.com/woozymasta/mcping/pkg/status"
)

// DefaultTimeout bounds each individual socket operation when the caller
// does not choose one.
const DefaultTimeout = 3 * time.Second

// JavaServer is a handle on one Java Edition server. The zero value is not
// usable; construct with NewJavaServer or LookupJava.
type JavaServer struct {
	lookup *address.Lookup

	// Addr is the resolved server address.
	Addr address.Address

	// Timeout applies to each socket operation (connect, send, receive)
	// and to DNS queries.
	Timeout time.Duration

	// Version overrides the protocol version advertised in the SLP
	// handshake. Zero means the package default.
	Version uint32
}

// NewJavaServer creates a handle from an already resolved host and port.
func NewJavaServer(host string, port uint16) *JavaServer {
	return &JavaServer{
		Addr:    address.Address{Host: host, Port: port},
		Timeout: DefaultTimeout,
		lookup:  address.NewLookup(DefaultTimeout),
	}
}

// LookupJava resolves an address string the way a Java client does (SRV
// record when no explicit port) and returns a handle on the result.
func LookupJava(addr string) (*JavaServer, error) {
	return LookupJavaContext(context.Background(), addr)
}

// LookupJavaContext is the context-aware form of LookupJava.
func LookupJavaContext(ctx context.Context, addr string) (*JavaServer, error) {
	lookup := address.NewLookup(DefaultTimeout)
	resolved, err := lookup.Java(ctx, addr)
	if err != nil {
		return nil, err
	}
	return &JavaServer{Addr: resolved, Timeout: DefaultTimeout, lookup: lookup}, nil
}

// Ping measures the server latency over the SLP ping exchange.
func (s *JavaServer) Ping() (time.Duration, error) {
	return s.PingContext(context.Background())
}

// PingContext is the context-aware form of Ping.
func (s *JavaServer) PingContext(ctx context.Context) (time.Duration, error) {
	return retry.DoContext(ctx, retry.DefaultTries, func(ctx context.Context) (time.Duration, error) {
		pinger, closeCh, err := s.dial(ctx)
		if err != nil {
			return 0, err
		}
		defer closeCh()

		if err := pinger.Handshake(ctx); err != nil {
			return 0, err
		}
		return pinger.TestPing(ctx)
	})
}

// Status fetches the SLP status and measures latency, both over one
// handshaken connection. Both halves must succeed.
func (s *JavaServer) Status() (*status.JavaStatus, error) {
	return s.StatusContext(context.Background())
}

// StatusContext is the context-aware form of Status.
func (s *JavaServer) StatusContext(ctx context.Context) (*status.JavaStatus, error) {
	return retry.DoContext(ctx, retry.DefaultTries, func(ctx context.Context) (*status.JavaStatus, error) {
		pinger, closeCh, err := s.dial(ctx)
		if err != nil {
			return nil, err
		}
		defer closeCh()

		if err := pinger.Handshake(ctx); err != nil {
			return nil, err
		}
		result, err := pinger.ReadStatus(ctx)
		if err != nil {
			return nil, err
		}
		result.Latency, err = pinger.TestPing(ctx)
		if err != nil {
			return nil, err
		}
		return result, nil
	})
}

// Query fetches full server statistics over the query protocol. The
// protocol must be enabled in the server properties.
func (s *JavaServer) Query() (*status.QueryStatus, error) {
	return s.QueryContext(context.Background())
}

// QueryContext is the context-aware form of Query. The host is pinned to
// its A record first because many server implementations bind the
// challenge session to the queried IP.
func (s *JavaServer) QueryContext(ctx context.Context) (*status.QueryStatus, error) {
	host := s.lookup.QueryIP(ctx, s.Addr.Host)
	target := address.Address{Host: host, Port: s.Addr.Port}

	return retry.DoContext(ctx, retry.DefaultTries, func(ctx context.Context) (*status.QueryStatus, error) {
		ch, err := protocol.DialUDPContext(ctx, target.String(), s.Timeout)
		if err != nil {
			return nil, err
		}
		defer func() { _ = ch.Close() }()

		querier := query.NewQuerier(ch, target.Host)
		if err := querier.Handshake(ctx); err != nil {
			return nil, err
		}
		return querier.ReadQuery(ctx)
	})
}

// dial opens the TCP channel and builds an SLP session on it.
func (s *JavaServer) dial(ctx context.Context) (*slp.Pinger, func(), error) {
	ch, err := protocol.DialTCPContext(ctx, s.Addr.String(), s.Timeout)
	if err != nil {
		return nil, nil, err
	}
	pinger := slp.NewPinger(ch, s.Addr)
	if s.Version != 0 {
		pinger.Version = s.Version
	}
	return pinger, func() { _ = ch.Close() }, nil
}

// BedrockServer is a handle on one Bedrock Edition server.
type BedrockServer struct {
	// Addr is the resolved server address.
	Addr address.Address

	// Timeout applies to each socket operation.
	Timeout time.Duration
}

// NewBedrockServer creates a handle from an already resolved host and port.
func NewBedrockServer(host string, port uint16) *BedrockServer {
	return &BedrockServer{
		Addr:    address.Address{Host: host, Port: port},
		Timeout: DefaultTimeout,
	}
}

// LookupBedrock parses an address string, falling back to the default
// Bedrock port. Bedrock servers do not use SRV records.
func LookupBedrock(addr string) (*BedrockServer, error) {
	resolved, err := address.Parse(addr, address.DefaultBedrockPort)
	if err != nil {
		return nil, err
	}
	return &BedrockServer{Addr: resolved, Timeout: DefaultTimeout}, nil
}

// Status performs the unconnected ping exchange.
func (s *BedrockServer) Status() (*status.BedrockStatus, error) {
	return s.StatusContext(context.Background())
}

// StatusContext is the context-aware form of Status.
func (s *BedrockServer) StatusContext(ctx context.Context) (*status.BedrockStatus, error) {
	return retry.DoContext(ctx, retry.DefaultTries, func(ctx context.Context) (*status.BedrockStatus, error) {
		ch, err := protocol.DialUDPContext(ctx, s.Addr.String(), s.Timeout)
		if err != nil {
			return nil, err
		}
		defer func() { _ = ch.Close() }()

		return bedrock.NewPinger(ch).ReadStatus(ctx)
	})
}
