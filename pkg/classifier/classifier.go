// Package classifier decides which acquisition strategy applies to a URL.
package classifier

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"net/url"
	"strings"
	"time"

	"audioscribe/pkg/domain"
	"audioscribe/pkg/httpclient"
)

// DefaultSniffTimeout bounds the content probe used by the last rule.
const DefaultSniffTimeout = 5 * time.Second

// sniffLimit is how much of a response body the content probe inspects.
const sniffLimit = 1000

// Prober performs the network lookups used by the content-based rules.
type Prober interface {
	Head(ctx context.Context, rawURL string) (*http.Response, error)
	FetchWithTimeout(ctx context.Context, rawURL string, limit int64, timeout time.Duration) ([]byte, string, error)
}

// Classifier assigns a SourceKind to a URL using an ordered rule list.
type Classifier struct {
	prober       Prober
	sniffTimeout time.Duration
	logger       *slog.Logger
}

// New creates a classifier. A zero sniffTimeout selects DefaultSniffTimeout.
func New(prober Prober, sniffTimeout time.Duration, logger *slog.Logger) *Classifier {
	if sniffTimeout <= 0 {
		sniffTimeout = DefaultSniffTimeout
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Classifier{
		prober:       prober,
		sniffTimeout: sniffTimeout,
		logger:       logger.With("component", "classifier"),
	}
}

// Normalize trims raw and adds an https scheme when none is present. It
// returns the parsed URL, or nil when raw cannot name an http(s) resource.
func Normalize(raw string) *url.URL {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	if !strings.Contains(raw, "://") {
		// mailto:, urn: and similar opaque forms are not fetchable.
		if u, err := url.Parse(raw); err == nil && u.Scheme != "" && u.Opaque != "" && !startsWithDigit(u.Opaque) {
			return nil
		}
		raw = "https://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil {
		return nil
	}
	scheme := strings.ToLower(u.Scheme)
	if scheme != "http" && scheme != "https" {
		return nil
	}
	if u.Hostname() == "" {
		return nil
	}
	return u
}

func startsWithDigit(s string) bool {
	return s != "" && s[0] >= '0' && s[0] <= '9'
}

// Classify evaluates the rules in order and returns the first match. It never
// fails: network errors during probing count as "no match".
func (c *Classifier) Classify(ctx context.Context, raw string) domain.SourceKind {
	u := Normalize(raw)
	if u == nil {
		return domain.Unknown
	}
	if kind, ok := ClassifyStatic(u); ok {
		return kind
	}

	target := u.String()
	if c.prober == nil {
		return domain.EmbeddedPage
	}

	if c.isAudioByHead(ctx, target) {
		return domain.DirectAudio
	}
	if c.isFeedByContent(ctx, target) {
		return domain.PodcastRSS
	}
	return domain.EmbeddedPage
}

// ClassifyStatic applies the rules that need no network access.
func ClassifyStatic(u *url.URL) (domain.SourceKind, bool) {
	host := strings.ToLower(u.Hostname())
	p := strings.ToLower(u.Path)

	switch {
	case strings.Contains(host, "youtube.com"), strings.Contains(host, "youtu.be"):
		return domain.YouTube, true
	case host == "podcasts.apple.com", host == "www.podcasts.apple.com":
		return domain.ApplePodcasts, true
	case strings.HasSuffix(p, ".xml"),
		strings.Contains(p, "rss"), strings.Contains(p, "feed"),
		strings.Contains(host, "rss"), strings.Contains(host, "feed"):
		return domain.PodcastRSS, true
	}
	return domain.Unknown, false
}

func (c *Classifier) isAudioByHead(ctx context.Context, target string) bool {
	resp, err := c.prober.Head(ctx, target)
	if err != nil {
		c.logger.Debug("head probe failed", "url", target, "error", err)
		return false
	}
	return strings.HasPrefix(strings.ToLower(resp.Header.Get("Content-Type")), "audio/")
}

func (c *Classifier) isFeedByContent(ctx context.Context, target string) bool {
	body, contentType, err := c.prober.FetchWithTimeout(ctx, target, sniffLimit, c.sniffTimeout)
	if err != nil {
		// An error status still carries headers and a body worth inspecting.
		var statusErr *httpclient.StatusError
		if !errors.As(err, &statusErr) {
			c.logger.Debug("content probe failed", "url", target, "error", err)
			return false
		}
		c.logger.Debug("content probe got error status", "url", target, "status", statusErr.StatusCode)
	}
	if IsFeedContentType(contentType) {
		return true
	}
	return LooksLikeFeed(body)
}

// IsFeedContentType reports whether a Content-Type header names an XML or RSS
// document. XHTML is excluded.
func IsFeedContentType(contentType string) bool {
	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		mt = strings.TrimSpace(strings.SplitN(contentType, ";", 2)[0])
	}
	mt = strings.ToLower(mt)
	switch {
	case mt == "":
		return false
	case mt == "application/xhtml+xml":
		return false
	case strings.Contains(mt, "rss"):
		return true
	case strings.HasSuffix(mt, "/xml"), strings.HasSuffix(mt, "+xml"):
		return true
	}
	return false
}

// LooksLikeFeed reports whether the start of a document is an XML RSS or Atom feed.
func LooksLikeFeed(body []byte) bool {
	if len(body) > sniffLimit {
		body = body[:sniffLimit]
	}
	head := strings.ToLower(string(body))
	return strings.Contains(head, "<?xml") &&
		(strings.Contains(head, "<rss") || strings.Contains(head, "<feed"))
}
