package auth

import (
	"fmt"
	"net"
	"net/http"
	"net/netip"
	"strings"
)

// TrustedProxies resolves the originating address of a request. Forwarding
// headers are honoured only when the socket peer is a listed proxy; any
// other caller is keyed on its own address.
type TrustedProxies struct {
	prefixes []netip.Prefix
}

// NewTrustedProxies parses entries given as single IPs or CIDR ranges.
func NewTrustedProxies(entries []string) (*TrustedProxies, error) {
	t := &TrustedProxies{}
	for _, entry := range entries {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}

		if strings.Contains(entry, "/") {
			prefix, err := netip.ParsePrefix(entry)
			if err != nil {
				return nil, fmt.Errorf("invalid trusted proxy %q: %w", entry, err)
			}
			t.prefixes = append(t.prefixes, prefix.Masked())
			continue
		}

		addr, err := netip.ParseAddr(entry)
		if err != nil {
			return nil, fmt.Errorf("invalid trusted proxy %q: %w", entry, err)
		}
		addr = addr.Unmap()
		t.prefixes = append(t.prefixes, netip.PrefixFrom(addr, addr.BitLen()))
	}
	return t, nil
}

// ClientAddr returns the address the login limiter keys on. Behind a
// trusted proxy it is the rightmost X-Forwarded-For hop that is not itself
// a trusted proxy, falling back to X-Real-IP.
func (t *TrustedProxies) ClientAddr(r *http.Request) string {
	peer := RemoteHost(r.RemoteAddr)
	if !t.trusts(peer) {
		return peer
	}

	if values := r.Header.Values("X-Forwarded-For"); len(values) > 0 {
		hops := strings.Split(strings.Join(values, ","), ",")
		for i := len(hops) - 1; i >= 0; i-- {
			addr, err := netip.ParseAddr(strings.TrimSpace(hops[i]))
			if err != nil {
				return peer
			}
			addr = addr.Unmap()
			if i == 0 || !t.contains(addr) {
				return addr.String()
			}
		}
	}

	if realIP, err := netip.ParseAddr(strings.TrimSpace(r.Header.Get("X-Real-IP"))); err == nil {
		return realIP.Unmap().String()
	}
	return peer
}

func (t *TrustedProxies) trusts(host string) bool {
	addr, err := netip.ParseAddr(host)
	if err != nil {
		return false
	}
	return t.contains(addr.Unmap())
}

func (t *TrustedProxies) contains(addr netip.Addr) bool {
	if t == nil {
		return false
	}
	for _, prefix := range t.prefixes {
		if prefix.Contains(addr) {
			return true
		}
	}
	return false
}

// RemoteHost is the host part of a RemoteAddr.
func RemoteHost(remoteAddr string) string {
	host, _, err := net.SplitHostPort(remoteAddr)
	if err != nil {
		return remoteAddr
	}
	return host
}
