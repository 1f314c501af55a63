package address

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/miekg/dns"
	"github.com/rs/zerolog"
)

// srvService is the SRV name Java Edition clients consult before connecting.
const srvService = "_minecraft._tcp."

// resolvConfPath is where the system resolver configuration is read from.
const resolvConfPath = "/etc/resolv.conf"

// SRV is one service record: the host to connect to and the port it
// advertises.
type SRV struct {
	Target string
	Port   uint16
}

// Resolver is the DNS capability the lookup helpers consume: SRV and A
// record queries bounded by the context. Implementations must be safe for
// concurrent use.
type Resolver interface {
	LookupSRV(ctx context.Context, name string) ([]SRV, error)
	LookupA(ctx context.Context, host string) ([]net.IP, error)
}

// DNSResolver resolves against the system nameservers from resolv.conf.
type DNSResolver struct {
	client  *dns.Client
	servers []string
}

// NewDNSResolver builds a resolver with the given per-query timeout. When
// resolv.conf cannot be read, the local resolver on the default port is
// assumed.
func NewDNSResolver(timeout time.Duration) *DNSResolver {
	servers := []string{"127.0.0.1:53"}
	if cfg, err := dns.ClientConfigFromFile(resolvConfPath); err == nil && len(cfg.Servers) > 0 {
		servers = servers[:0]
		for _, s := range cfg.Servers {
			servers = append(servers, net.JoinHostPort(s, cfg.Port))
		}
	}
	return &DNSResolver{
		client:  &dns.Client{Timeout: timeout},
		servers: servers,
	}
}

// LookupSRV queries the SRV records for name.
func (r *DNSResolver) LookupSRV(ctx context.Context, name string) ([]SRV, error) {
	in, err := r.exchange(ctx, name, dns.TypeSRV)
	if err != nil {
		return nil, err
	}

	var records []SRV
	for _, ans := range in.Answer {
		if rr, ok := ans.(*dns.SRV); ok {
			records = append(records, SRV{
				Target: unfqdn(rr.Target),
				Port:   rr.Port,
			})
		}
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("no SRV records for %s", name)
	}
	return records, nil
}

// LookupA queries the A records for host.
func (r *DNSResolver) LookupA(ctx context.Context, host string) ([]net.IP, error) {
	in, err := r.exchange(ctx, host, dns.TypeA)
	if err != nil {
		return nil, err
	}

	var ips []net.IP
	for _, ans := range in.Answer {
		if rr, ok := ans.(*dns.A); ok {
			ips = append(ips, rr.A)
		}
	}
	if len(ips) == 0 {
		return nil, fmt.Errorf("no A records for %s", host)
	}
	return ips, nil
}

// exchange tries each configured nameserver in order and returns the first
// successful answer.
func (r *DNSResolver) exchange(ctx context.Context, name string, qtype uint16) (*dns.Msg, error) {
	m := new(dns.Msg)
	m.SetQuestion(dns.Fqdn(name), qtype)

	var lastErr error
	for _, server := range r.servers {
		in, _, err := r.client.ExchangeContext(ctx, m, server)
		if err != nil {
			lastErr = err
			continue
		}
		if in.Rcode != dns.RcodeSuccess {
			lastErr = fmt.Errorf("%s query for %s: %s", dns.TypeToString[qtype], name, dns.RcodeToString[in.Rcode])
			continue
		}
		return in, nil
	}
	if lastErr == nil {
		lastErr = fmt.Errorf("no nameservers configured")
	}
	return nil, lastErr
}

// unfqdn strips the trailing dot from a fully qualified domain name.
func unfqdn(name string) string {
	if n := len(name); n > 0 && name[n-1] == '.' {
		return name[:n-1]
	}
	return name
}

// Lookup applies the Minecraft address conventions on top of a Resolver.
// DNS failures are never surfaced: every method falls back to a usable
// literal address and reports the swallowed failure only on the injected
// logger, which defaults to a no-op.
type Lookup struct {
	Resolver Resolver
	Log      zerolog.Logger
}

// NewLookup builds a Lookup over the system resolver with the given DNS
// query timeout.
func NewLookup(timeout time.Duration) *Lookup {
	return &Lookup{
		Resolver: NewDNSResolver(timeout),
		Log:      zerolog.Nop(),
	}
}

// Java resolves a Java Edition server address. An explicit port wins
// unconditionally. Without one, a single "_minecraft._tcp" SRV record
// redirects both host and port; any lookup failure or an ambiguous
// multi-record answer falls back to the literal host on the default port.
func (l *Lookup) Java(ctx context.Context, addr string) (Address, error) {
	host, port, hasPort, err := splitAddr(addr)
	if err != nil {
		return Address{}, err
	}
	if hasPort {
		return Address{Host: host, Port: port}, nil
	}

	records, err := l.Resolver.LookupSRV(ctx, srvService+host)
	if err != nil {
		l.Log.Trace().Err(err).Str("host", host).Msg("SRV lookup failed, using default port")
		return Address{Host: host, Port: DefaultJavaPort}, nil
	}
	if len(records) != 1 {
		l.Log.Trace().Int("records", len(records)).Str("host", host).Msg("Ambiguous SRV answer, using default port")
		return Address{Host: host, Port: DefaultJavaPort}, nil
	}

	return Address{Host: records[0].Target, Port: records[0].Port}, nil
}

// QueryIP pins host to its first A record. Query protocol servers commonly
// bind session state to the IP they answered on, so the stat request should
// target the address, not the name. On any failure the host is returned
// unchanged.
func (l *Lookup) QueryIP(ctx context.Context, host string) string {
	if ip := net.ParseIP(host); ip != nil {
		return host
	}

	ips, err := l.Resolver.LookupA(ctx, host)
	if err != nil || len(ips) == 0 {
		l.Log.Trace().Err(err).Str("host", host).Msg("A lookup failed, using hostname")
		return host
	}
	return ips[0].String()
}

// Bedrock resolves a Bedrock Edition server address: parse only, no DNS.
func (l *Lookup) Bedrock(addr string) (Address, error) {
	return Parse(addr, DefaultBedrockPort)
}
