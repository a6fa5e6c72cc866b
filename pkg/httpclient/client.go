package httpclient

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// ClientType represents the type of HTTP client configuration
type ClientType string

const (
	// BrowserClient uses browser-like headers to avoid 406 (Not Acceptable) errors
	// Used for podcast directories and pages that reject non-browser agents
	BrowserClient ClientType = "browser"

	// CloudflareClient uses simple headers (like curl) to avoid 403 (Forbidden) errors
	// Used for Cloudflare-protected hosts that block browser-like User-Agents
	CloudflareClient ClientType = "cloudflare"

	// DefaultClient sends Go's default User-Agent
	DefaultClient ClientType = "default"
)

const browserUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"

// ParseClientType maps a configuration value to a ClientType.
func ParseClientType(value string) (ClientType, error) {
	switch ClientType(strings.ToLower(strings.TrimSpace(value))) {
	case BrowserClient, "":
		return BrowserClient, nil
	case CloudflareClient:
		return CloudflareClient, nil
	case DefaultClient:
		return DefaultClient, nil
	default:
		return "", fmt.Errorf("unknown http client profile %q", value)
	}
}

// StatusError reports a response outside the 2xx range.
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status code %d for %s", e.StatusCode, e.URL)
}

// HTTPClient wraps an http.Client with configuration
type HTTPClient struct {
	client     *http.Client
	clientType ClientType
	userAgent  string
	progress   ProgressFunc
}

// Option customizes an HTTPClient.
type Option func(*HTTPClient)

// WithTransport swaps the round tripper while keeping the redirect policy.
func WithTransport(rt http.RoundTripper) Option {
	return func(c *HTTPClient) {
		c.client.Transport = rt
	}
}

// WithUserAgent overrides the User-Agent of the selected profile.
func WithUserAgent(ua string) Option {
	return func(c *HTTPClient) {
		c.userAgent = strings.TrimSpace(ua)
	}
}

// WithProgress installs a download progress factory.
func WithProgress(fn ProgressFunc) Option {
	return func(c *HTTPClient) {
		c.progress = fn
	}
}

// NewClient creates a new HTTP client with the specified type
func NewClient(clientType ClientType, opts ...Option) *HTTPClient {
	client := &http.Client{
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			// Follow up to 10 redirects
			if len(via) >= 10 {
				return http.ErrUseLastResponse
			}
			return nil
		},
	}

	c := &HTTPClient{
		client:     client,
		clientType: clientType,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Type returns the header profile of the client.
func (c *HTTPClient) Type() ClientType {
	return c.clientType
}

// Do executes an HTTP request with the appropriate headers for the client type
func (c *HTTPClient) Do(req *http.Request) (*http.Response, error) {
	c.setHeaders(req)
	return c.client.Do(req)
}

// Get is a convenience method for GET requests
func (c *HTTPClient) Get(ctx context.Context, rawURL string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	return c.Do(req)
}

// Head issues a HEAD request and closes the (empty) body.
func (c *HTTPClient) Head(ctx context.Context, rawURL string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, rawURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.Do(req)
	if err != nil {
		return nil, err
	}
	drainAndClose(resp.Body)
	return resp, nil
}

// Fetch GETs rawURL and returns at most limit bytes of the body together with
// the response Content-Type. A limit <= 0 reads the whole body. Non-2xx
// responses return a *StatusError alongside whatever body and Content-Type
// the server sent.
func (c *HTTPClient) Fetch(ctx context.Context, rawURL string, limit int64) ([]byte, string, error) {
	resp, err := c.Get(ctx, rawURL)
	if err != nil {
		return nil, "", err
	}
	defer drainAndClose(resp.Body)

	var r io.Reader = resp.Body
	if limit > 0 {
		r = io.LimitReader(resp.Body, limit)
	}
	body, err := io.ReadAll(r)
	if err != nil {
		return nil, "", fmt.Errorf("read body: %w", err)
	}

	contentType := resp.Header.Get("Content-Type")
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return body, contentType, &StatusError{URL: rawURL, StatusCode: resp.StatusCode}
	}
	return body, contentType, nil
}

// FetchWithTimeout is Fetch bounded by timeout.
func (c *HTTPClient) FetchWithTimeout(ctx context.Context, rawURL string, limit int64, timeout time.Duration) ([]byte, string, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	return c.Fetch(ctx, rawURL, limit)
}

// setHeaders sets the appropriate headers based on client type
func (c *HTTPClient) setHeaders(req *http.Request) {
	switch c.clientType {
	case BrowserClient:
		// Browser-like headers to avoid 406 (Not Acceptable) errors
		req.Header.Set("User-Agent", browserUserAgent)
		req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
		req.Header.Set("Accept-Language", "en-US,en;q=0.9")
		req.Header.Set("Connection", "keep-alive")
		req.Header.Set("Upgrade-Insecure-Requests", "1")

	case CloudflareClient:
		// Cloudflare allows simple tools like curl but blocks browser-like User-Agents
		req.Header.Set("User-Agent", "curl/8.7.1")

	default:
		// Default: use Go's default User-Agent
	}

	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
}

// ResolveReference resolves ref against base, returning ref unchanged when
// either fails to parse.
func ResolveReference(base, ref string) string {
	ref = strings.TrimSpace(ref)
	b, err := url.Parse(base)
	if err != nil {
		return ref
	}
	u, err := url.Parse(ref)
	if err != nil {
		return ref
	}
	return b.ResolveReference(u).String()
}

// maxDrain bounds how much of an unwanted body is read so the connection can
// be reused. Larger remainders are dropped with the connection.
const maxDrain = 64 * 1024

func drainAndClose(rc io.ReadCloser) {
	if rc == nil {
		return
	}
	_, _ = io.CopyN(io.Discard, rc, maxDrain)
	_ = rc.Close()
}
