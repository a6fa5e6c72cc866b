// Package feed resolves podcast feeds into downloadable episodes.
package feed

import (
	"bytes"
	"context"
	"encoding/json"
	"html"
	"io"
	"log/slog"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"audioscribe/pkg/domain"
	"audioscribe/pkg/httpclient"
)

// UnnamedEpisode is the title used for entries without one.
const UnnamedEpisode = "Unnamed Episode"

var feedURLPattern = regexp.MustCompile(`"feedUrl"\s*:\s*"([^"]+)"`)

// Fetcher retrieves a document body.
type Fetcher interface {
	Fetch(ctx context.Context, rawURL string, limit int64) ([]byte, string, error)
}

// Resolver turns feed and Apple Podcasts URLs into episodes.
type Resolver struct {
	feeds  Fetcher
	pages  Fetcher
	logger *slog.Logger
}

// NewResolver creates a resolver. feeds fetches RSS documents and pages
// fetches Apple Podcasts HTML; the latter should send browser headers.
func NewResolver(feeds, pages Fetcher, logger *slog.Logger) *Resolver {
	if pages == nil {
		pages = feeds
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Resolver{feeds: feeds, pages: pages, logger: logger.With("component", "feed")}
}

// LatestEpisode fetches feedURL and returns its first entry, which feeds list
// newest-first by convention. The order is not verified against dates.
func (r *Resolver) LatestEpisode(ctx context.Context, feedURL string) (domain.Episode, error) {
	body, _, err := r.feeds.Fetch(ctx, feedURL, 0)
	if err != nil {
		return domain.Episode{}, domain.Fail(domain.KindFeedNotFound, feedURL, err)
	}

	entries, err := ParseEntries(bytes.NewReader(body))
	if err != nil {
		return domain.Episode{}, domain.Fail(domain.KindFeedNotFound, feedURL, err)
	}
	if len(entries) == 0 {
		return domain.Episode{}, domain.Fail(domain.KindNoEpisodesFound, feedURL, nil)
	}

	latest := entries[0]
	audioURL := latest.AudioURL()
	if audioURL == "" {
		return domain.Episode{}, domain.Fail(domain.KindNoAudioURLInEpisode, latest.Title, nil)
	}

	title := latest.Title
	if title == "" {
		title = UnnamedEpisode
	}

	r.logger.Info("selected latest episode", "feed", feedURL, "title", title, "entries", len(entries))
	return domain.Episode{
		Title:       title,
		AudioURL:    httpclient.ResolveReference(feedURL, audioURL),
		PublishedAt: latest.PublishedAt,
	}, nil
}

// AppleFeedURL extracts the RSS feed URL embedded in an Apple Podcasts page.
func (r *Resolver) AppleFeedURL(ctx context.Context, pageURL string) (string, error) {
	body, _, err := r.pages.Fetch(ctx, pageURL, 0)
	if err != nil {
		return "", domain.Fail(domain.KindFeedNotFound, pageURL, err)
	}

	if feedURL := ExtractAppleFeedURL(pageURL, body); feedURL != "" {
		r.logger.Info("found apple podcasts feed", "page", pageURL, "feed", feedURL)
		return feedURL, nil
	}
	return "", domain.Fail(domain.KindFeedNotFound, "no feedUrl or rss link in "+pageURL, nil)
}

// ExtractAppleFeedURL searches an Apple Podcasts page for a "feedUrl" JSON
// field, then for an RSS <link> tag. It returns "" when neither is present.
func ExtractAppleFeedURL(pageURL string, body []byte) string {
	for _, doc := range []string{string(body), html.UnescapeString(string(body))} {
		if m := feedURLPattern.FindStringSubmatch(doc); m != nil {
			if u := unescapeJSONString(m[1]); u != "" {
				return u
			}
		}
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return ""
	}
	var found string
	doc.Find("link[href]").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		typ, _ := sel.Attr("type")
		if !strings.EqualFold(strings.TrimSpace(typ), "application/rss+xml") {
			return true
		}
		href, _ := sel.Attr("href")
		if href = strings.TrimSpace(href); href != "" {
			found = httpclient.ResolveReference(pageURL, href)
			return false
		}
		return true
	})
	return found
}

func unescapeJSONString(s string) string {
	var out string
	if err := json.Unmarshal([]byte(`"`+s+`"`), &out); err != nil {
		return strings.TrimSpace(s)
	}
	return strings.TrimSpace(out)
}
