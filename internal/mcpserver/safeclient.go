package mcpserver

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/netip"
	"syscall"
	"time"

	"github.com/erraggy/reqgate"
)

const (
	fetchTimeout = 30 * time.Second
	maxRedirects = 10
)

// isBlockedIP reports whether ip is private, loopback, link-local or unspecified.
func isBlockedIP(ip net.IP) bool {
	return ip.IsPrivate() || ip.IsLoopback() || ip.IsLinkLocalUnicast() || ip.IsUnspecified()
}

// newHTTPClient returns the client used to fetch model files by URL.
func newHTTPClient(allowPrivate bool) *http.Client {
	if allowPrivate {
		return &http.Client{Timeout: fetchTimeout, CheckRedirect: limitRedirects}
	}
	return newSafeHTTPClient()
}

// newSafeHTTPClient returns a client that refuses to connect to private,
// loopback or link-local addresses, so a tool caller cannot point the server
// at its own network. The check runs on the address actually dialed, which
// covers redirects and hosts whose DNS answer changes between lookups.
func newSafeHTTPClient() *http.Client {
	dialer := &net.Dialer{Timeout: 10 * time.Second, Control: refusePrivate}
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.DialContext = dialer.DialContext
	transport.Proxy = nil
	return &http.Client{
		Timeout:       fetchTimeout,
		Transport:     transport,
		CheckRedirect: limitRedirects,
	}
}

func refusePrivate(network, address string, _ syscall.RawConn) error {
	addrPort, err := netip.ParseAddrPort(address)
	if err != nil {
		return fmt.Errorf("%s: %w", network, err)
	}
	ip := net.IP(addrPort.Addr().Unmap().AsSlice())
	if isBlockedIP(ip) {
		return fmt.Errorf("blocked request to private/loopback IP: %s", ip)
	}
	return nil
}

func limitRedirects(_ *http.Request, via []*http.Request) error {
	if len(via) >= maxRedirects {
		return errors.New("stopped after 10 redirects")
	}
	return nil
}

// fetchDocument downloads url and returns its body, refusing anything
// larger than limit bytes or answered with a non-200 status.
func fetchDocument(ctx context.Context, client *http.Client, url string, limit int64) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("invalid model URL: %w", err)
	}
	req.Header.Set("User-Agent", reqgate.UserAgent())
	req.Header.Set("Accept", "application/yaml, application/json;q=0.9, */*;q=0.5")

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching models: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetching models: unexpected status %s", resp.Status)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, limit+1))
	if err != nil {
		return nil, fmt.Errorf("reading models: %w", err)
	}
	if int64(len(data)) > limit {
		return nil, fmt.Errorf("model document exceeds maximum %d bytes", limit)
	}
	return data, nil
}
