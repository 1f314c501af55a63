// Package address parses "host[:port]" server addresses and applies the DNS
// conventions of the Minecraft ecosystem: SRV discovery for Java Edition
// servers and A-record pinning for the query protocol.
package address

import (
	"fmt"
	"net"
	"strconv"
	"strings"
)

// Default ports of the two server families.
const (
	DefaultJavaPort    uint16 = 25565
	DefaultBedrockPort uint16 = 19132
)

// Address is a resolved host and port pair. Values are immutable once
// constructed.
type Address struct {
	Host string
	Port uint16
}

// String formats the address as "host:port", bracketing IPv6 hosts.
func (a Address) String() string {
	return net.JoinHostPort(a.Host, strconv.Itoa(int(a.Port)))
}

// Parse splits an address like "mc.example.com:25565" into host and port.
// When no port is present, defaultPort is used. IPv6 literals must be
// bracketed ("[::1]:25565").
func Parse(addr string, defaultPort uint16) (Address, error) {
	host, port, hasPort, err := splitAddr(addr)
	if err != nil {
		return Address{}, err
	}
	if !hasPort {
		port = defaultPort
	}
	return Address{Host: host, Port: port}, nil
}

// splitAddr separates host and port, reporting whether a port was present
// at all.
func splitAddr(addr string) (host string, port uint16, hasPort bool, err error) {
	if addr == "" {
		return "", 0, false, fmt.Errorf("empty address")
	}

	host, portStr, splitErr := net.SplitHostPort(addr)
	if splitErr != nil {
		// No port part: the whole string is the host.
		host = strings.Trim(addr, "[]")
		if host == "" {
			return "", 0, false, fmt.Errorf("invalid address %q: empty host", addr)
		}
		if strings.Contains(host, ":") && !strings.HasPrefix(addr, "[") {
			return "", 0, false, fmt.Errorf("invalid address %q: IPv6 literals must be bracketed", addr)
		}
		return host, 0, false, nil
	}

	if host == "" {
		return "", 0, false, fmt.Errorf("invalid address %q: empty host", addr)
	}

	p, err := strconv.ParseUint(portStr, 10, 16)
	if err != nil {
		return "", 0, false, fmt.Errorf("invalid port in address %q: %w", addr, err)
	}

	return host, uint16(p), true, nil
}
