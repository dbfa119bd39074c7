// Package proxy relays images from a fixed set of remote hosts so the frontend
// never hotlinks them directly.
package proxy

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	// CacheControl is sent with every relayed image.
	CacheControl = "public, max-age=86400"

	DefaultContentType = "image/jpeg"
	DefaultUserAgent   = "BoardgameCatalog-ImageProxy/1.0"
	DefaultMaxBytes    = 10 << 20
)

var (
	ErrInvalidURL     = errors.New("invalid url")
	ErrHostNotAllowed = errors.New("host not allowed")
)

// UpstreamError carries the status to relay when the remote fetch fails.
// Transport failures use 502.
type UpstreamError struct {
	StatusCode int
	Err        error
}

func (e *UpstreamError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("upstream error (%d): %v", e.StatusCode, e.Err)
	}
	return fmt.Sprintf("upstream error (%d)", e.StatusCode)
}

func (e *UpstreamError) Unwrap() error { return e.Err }

// Image is a fetched remote resource ready to relay.
type Image struct {
	Body        []byte
	ContentType string
}

// Gateway fetches images from allow-listed hosts only.
type Gateway struct {
	allowed   map[string]struct{}
	client    *http.Client
	userAgent string
	maxBytes  int64
}

// Option configures a Gateway.
type Option func(*Gateway)

func WithUserAgent(ua string) Option {
	return func(g *Gateway) {
		if ua != "" {
			g.userAgent = ua
		}
	}
}

func WithMaxBytes(n int64) Option {
	return func(g *Gateway) {
		if n > 0 {
			g.maxBytes = n
		}
	}
}

func WithTimeout(d time.Duration) Option {
	return func(g *Gateway) { g.client.Timeout = d }
}

// New returns a Gateway for the given hosts. Matching is exact and
// case-insensitive; subdomains must be listed explicitly. A bare hostname
// admits only the scheme's default port; "host:port" admits that port only.
func New(allowedHosts []string, opts ...Option) *Gateway {
	g := &Gateway{
		allowed:   make(map[string]struct{}, len(allowedHosts)),
		client:    &http.Client{Timeout: 15 * time.Second},
		userAgent: DefaultUserAgent,
		maxBytes:  DefaultMaxBytes,
	}
	for _, h := range allowedHosts {
		g.allowed[strings.ToLower(strings.TrimSpace(h))] = struct{}{}
	}
	// A redirect must not lead the proxy off the allow-list.
	g.client.CheckRedirect = func(req *http.Request, via []*http.Request) error {
		if len(via) >= 5 {
			return errors.New("too many redirects")
		}
		if !g.allows(req.URL) {
			return fmt.Errorf("redirect to %q: %w", req.URL.Hostname(), ErrHostNotAllowed)
		}
		return nil
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Allowed reports whether host is on the allow-list.
func (g *Gateway) Allowed(host string) bool {
	_, ok := g.allowed[strings.ToLower(host)]
	return ok
}

var defaultPorts = map[string]string{"http": "80", "https": "443"}

// allows applies the allow-list to u's host and port.
func (g *Gateway) allows(u *url.URL) bool {
	host := strings.ToLower(u.Hostname())
	port := u.Port()
	if port == "" || port == defaultPorts[u.Scheme] {
		if g.Allowed(host) {
			return true
		}
		port = defaultPorts[u.Scheme]
	}
	return g.Allowed(net.JoinHostPort(host, port))
}

// Check parses raw and applies the allow-list without touching the network.
func (g *Gateway) Check(raw string) (*url.URL, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, fmt.Errorf("%w: empty", ErrInvalidURL)
	}
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Hostname() == "" {
		return nil, fmt.Errorf("%w: %q", ErrInvalidURL, raw)
	}
	if !g.allows(u) {
		return nil, fmt.Errorf("%w: %s", ErrHostNotAllowed, u.Host)
	}
	return u, nil
}

// Fetch validates raw and downloads it. Errors are ErrInvalidURL,
// ErrHostNotAllowed or *UpstreamError.
func (g *Gateway) Fetch(ctx context.Context, raw string) (*Image, error) {
	u, err := g.Check(raw)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}
	req.Header.Set("User-Agent", g.userAgent)
	req.Header.Set("Accept", "image/*")

	resp, err := g.client.Do(req)
	if err != nil {
		if errors.Is(err, ErrHostNotAllowed) {
			return nil, err
		}
		return nil, &UpstreamError{StatusCode: http.StatusBadGateway, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &UpstreamError{StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, g.maxBytes+1))
	if err != nil {
		return nil, &UpstreamError{StatusCode: http.StatusBadGateway, Err: err}
	}
	if int64(len(body)) > g.maxBytes {
		return nil, &UpstreamError{StatusCode: http.StatusBadGateway, Err: errors.New("image exceeds size limit")}
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = DefaultContentType
	}
	return &Image{Body: body, ContentType: contentType}, nil
}
