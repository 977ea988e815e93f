package validate

import (
	"context"
	"fmt"
	"net"
	"net/netip"
	"net/url"
	"strings"
)

// forbiddenRanges are private and reserved networks an analysis target must
// never resolve into. Not exhaustive, but covers the common SSRF targets.
var forbiddenRanges = []netip.Prefix{
	netip.MustParsePrefix("0.0.0.0/8"),
	netip.MustParsePrefix("10.0.0.0/8"),
	netip.MustParsePrefix("127.0.0.0/8"),
	netip.MustParsePrefix("169.254.0.0/16"),
	netip.MustParsePrefix("172.16.0.0/12"),
	netip.MustParsePrefix("192.168.0.0/16"),
	netip.MustParsePrefix("::1/128"),
	netip.MustParsePrefix("fc00::/7"),
	netip.MustParsePrefix("fe80::/10"),
}

// LookupFunc resolves a hostname to addresses (injectable for tests)
type LookupFunc func(ctx context.Context, host string) ([]netip.Addr, error)

// Validator checks that a raw URL is safe to hand to the analysis core:
// http/https scheme, hostname present, and no resolved address inside a
// forbidden range. Every error it returns is an input error by contract.
type Validator struct {
	lookup LookupFunc
}

// New creates a validator using the default resolver
func New() *Validator {
	return &Validator{
		lookup: func(ctx context.Context, host string) ([]netip.Addr, error) {
			return net.DefaultResolver.LookupNetIP(ctx, "ip", host)
		},
	}
}

// NewWithLookup creates a validator with a custom resolver
func NewWithLookup(lookup LookupFunc) *Validator {
	return &Validator{lookup: lookup}
}

// Validate parses and resolves rawURL and returns the canonicalized URL
// string, or an error describing why the input was rejected.
func (v *Validator) Validate(ctx context.Context, rawURL string) (string, error) {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return "", fmt.Errorf("url is empty")
	}

	parsed, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("parse url: %w", err)
	}

	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return "", fmt.Errorf("invalid scheme %q: only http and https are allowed", parsed.Scheme)
	}

	host := parsed.Hostname()
	if host == "" {
		return "", fmt.Errorf("url is missing a hostname")
	}

	// Literal IP hosts skip DNS
	if addr, err := netip.ParseAddr(host); err == nil {
		if forbidden(addr) {
			return "", fmt.Errorf("url host %s is in a forbidden address range", addr)
		}
		return parsed.String(), nil
	}

	addrs, err := v.lookup(ctx, host)
	if err != nil {
		return "", fmt.Errorf("could not resolve hostname %q: %w", host, err)
	}
	if len(addrs) == 0 {
		return "", fmt.Errorf("hostname %q resolved to no addresses", host)
	}

	// Every resolved address must be public; a single private A record is
	// enough to reject.
	for _, addr := range addrs {
		if forbidden(addr.Unmap()) {
			return "", fmt.Errorf("url hostname %q resolves to a forbidden address: %s", host, addr)
		}
	}

	return parsed.String(), nil
}

func forbidden(addr netip.Addr) bool {
	for _, prefix := range forbiddenRanges {
		if prefix.Contains(addr) {
			return true
		}
	}
	return false
}
