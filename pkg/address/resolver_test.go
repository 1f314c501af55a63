package address

import (
	"context"
	"errors"
	"net"
	"testing"

	"github.com/rs/zerolog"
)

// fakeResolver serves canned answers and records what was asked.
type fakeResolver struct {
	srv      []SRV
	srvErr   error
	srvCalls []string

	ips    []net.IP
	aErr   error
	aCalls []string
}

func (r *fakeResolver) LookupSRV(_ context.Context, name string) ([]SRV, error) {
	r.srvCalls = append(r.srvCalls, name)
	return r.srv, r.srvErr
}

func (r *fakeResolver) LookupA(_ context.Context, host string) ([]net.IP, error) {
	r.aCalls = append(r.aCalls, host)
	return r.ips, r.aErr
}

func newTestLookup(r Resolver) *Lookup {
	return &Lookup{Resolver: r, Log: zerolog.Nop()}
}

func TestJavaExplicitPortSkipsSRV(t *testing.T) {
	r := &fakeResolver{srv: []SRV{{Target: "redirect.example.com", Port: 25570}}}
	addr, err := newTestLookup(r).Java(context.Background(), "mc.example.com:1234")
	if err != nil {
		t.Fatalf("Java: %v", err)
	}
	if addr != (Address{"mc.example.com", 1234}) {
		t.Errorf("addr = %v", addr)
	}
	if len(r.srvCalls) != 0 {
		t.Errorf("SRV lookup performed for an explicit port: %v", r.srvCalls)
	}
}

func TestJavaSRVRedirect(t *testing.T) {
	r := &fakeResolver{srv: []SRV{{Target: "redirect.example.com", Port: 25570}}}
	addr, err := newTestLookup(r).Java(context.Background(), "mc.example.com")
	if err != nil {
		t.Fatalf("Java: %v", err)
	}
	if addr != (Address{"redirect.example.com", 25570}) {
		t.Errorf("addr = %v", addr)
	}
	if len(r.srvCalls) != 1 || r.srvCalls[0] != "_minecraft._tcp.mc.example.com" {
		t.Errorf("SRV queried %v", r.srvCalls)
	}
}

func TestJavaSRVFailureFallsBack(t *testing.T) {
	r := &fakeResolver{srvErr: errors.New("NXDOMAIN")}
	addr, err := newTestLookup(r).Java(context.Background(), "mc.example.com")
	if err != nil {
		t.Fatalf("Java: %v", err)
	}
	if addr != (Address{"mc.example.com", DefaultJavaPort}) {
		t.Errorf("addr = %v", addr)
	}
}

func TestJavaAmbiguousSRVFallsBack(t *testing.T) {
	r := &fakeResolver{srv: []SRV{
		{Target: "a.example.com", Port: 1},
		{Target: "b.example.com", Port: 2},
	}}
	addr, err := newTestLookup(r).Java(context.Background(), "mc.example.com")
	if err != nil {
		t.Fatalf("Java: %v", err)
	}
	if addr != (Address{"mc.example.com", DefaultJavaPort}) {
		t.Errorf("addr = %v", addr)
	}
}

func TestJavaInvalidAddress(t *testing.T) {
	if _, err := newTestLookup(&fakeResolver{}).Java(context.Background(), ""); err == nil {
		t.Fatal("empty address should fail")
	}
}

func TestQueryIPPinsFirstARecord(t *testing.T) {
	r := &fakeResolver{ips: []net.IP{net.ParseIP("10.0.0.7"), net.ParseIP("10.0.0.8")}}
	if got := newTestLookup(r).QueryIP(context.Background(), "mc.example.com"); got != "10.0.0.7" {
		t.Errorf("QueryIP = %q", got)
	}
}

func TestQueryIPSkipsLiterals(t *testing.T) {
	r := &fakeResolver{}
	for _, host := range []string{"192.168.0.1", "2001:db8::1"} {
		if got := newTestLookup(r).QueryIP(context.Background(), host); got != host {
			t.Errorf("QueryIP(%q) = %q", host, got)
		}
	}
	if len(r.aCalls) != 0 {
		t.Errorf("A lookup performed for IP literals: %v", r.aCalls)
	}
}

func TestQueryIPFailureFallsBack(t *testing.T) {
	r := &fakeResolver{aErr: errors.New("SERVFAIL")}
	if got := newTestLookup(r).QueryIP(context.Background(), "mc.example.com"); got != "mc.example.com" {
		t.Errorf("QueryIP = %q", got)
	}
}

func TestBedrockParseOnly(t *testing.T) {
	r := &fakeResolver{srv: []SRV{{Target: "redirect.example.com", Port: 1}}}
	addr, err := newTestLookup(r).Bedrock("play.example.com")
	if err != nil {
		t.Fatalf("Bedrock: %v", err)
	}
	if addr != (Address{"play.example.com", DefaultBedrockPort}) {
		t.Errorf("addr = %v", addr)
	}
	if len(r.srvCalls) != 0 {
		t.Error("Bedrock resolution must not consult DNS")
	}
}

func TestUnfqdn(t *testing.T) {
	if got := unfqdn("mc.example.com."); got != "mc.example.com" {
		t.Errorf("unfqdn = %q", got)
	}
	if got := unfqdn("mc.example.com"); got != "mc.example.com" {
		t.Errorf("unfqdn = %q", got)
	}
}
