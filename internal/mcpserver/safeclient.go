package mcpserver

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"
)

// maxRedirects bounds redirect chains during spec URL fetches.
const maxRedirects = 10

// httpClient returns the client used for spec URL fetches. Unless private
// address ranges are explicitly allowed, the client refuses to connect to
// them, which keeps AI-agent-supplied URLs from reaching internal services.
func httpClient() *http.Client {
	if cfg.AllowPrivateIPs {
		return &http.Client{Timeout: cfg.FetchTimeout}
	}
	return newSafeHTTPClient()
}

// isBlockedIP reports whether the IP is private, loopback, link-local, or
// unspecified.
func isBlockedIP(ip net.IP) bool {
	return ip.IsPrivate() || ip.IsLoopback() ||
		ip.IsLinkLocalUnicast() || ip.IsLinkLocalMulticast() ||
		ip.IsUnspecified()
}

// resolvePublic resolves host and verifies every address is publicly
// routable. The check runs on every resolution, including redirect targets,
// so a DNS answer cannot steer a fetch into a private range.
func resolvePublic(ctx context.Context, host string) ([]net.IPAddr, error) {
	ips, err := net.DefaultResolver.LookupIPAddr(ctx, host)
	if err != nil {
		return nil, err
	}
	if len(ips) == 0 {
		return nil, fmt.Errorf("no IP addresses found for host: %s", host)
	}
	for _, ipAddr := range ips {
		if isBlockedIP(ipAddr.IP) {
			return nil, fmt.Errorf("blocked request to private/loopback IP: %s (%s)", host, ipAddr.IP)
		}
	}
	return ips, nil
}

// newSafeHTTPClient creates an HTTP client that refuses connections to
// private, loopback, and link-local addresses. Both the initial dial and
// every redirect target are re-resolved and checked.
func newSafeHTTPClient() *http.Client {
	dialer := &net.Dialer{Timeout: 10 * time.Second}

	return &http.Client{
		Timeout: cfg.FetchTimeout,
		Transport: &http.Transport{
			DialContext: func(ctx context.Context, network, addr string) (net.Conn, error) {
				host, port, err := net.SplitHostPort(addr)
				if err != nil {
					return nil, err
				}
				ips, err := resolvePublic(ctx, host)
				if err != nil {
					return nil, err
				}
				// Dial the first vetted address rather than re-resolving,
				// so the checked answer is the one connected to.
				return dialer.DialContext(ctx, network, net.JoinHostPort(ips[0].IP.String(), port))
			},
		},
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= maxRedirects {
				return fmt.Errorf("stopped after %d redirects", maxRedirects)
			}
			_, err := resolvePublic(req.Context(), req.URL.Hostname())
			return err
		},
	}
}
