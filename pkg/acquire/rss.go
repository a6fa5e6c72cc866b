package acquire

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"audioscribe/pkg/domain"
	"audioscribe/pkg/sanitize"
)

// RSSStrategy downloads the latest episode of a podcast feed.
type RSSStrategy struct {
	Episodes   EpisodeResolver
	Downloader Downloader
	Logger     *slog.Logger
}

func (s *RSSStrategy) Acquire(ctx context.Context, req Request) (domain.AcquiredAudio, error) {
	return s.acquireFeed(ctx, req.URL, req.OutputDir, domain.PodcastRSS)
}

func (s *RSSStrategy) acquireFeed(ctx context.Context, feedURL, dir string, kind domain.SourceKind) (domain.AcquiredAudio, error) {
	ep, err := s.Episodes.LatestEpisode(ctx, feedURL)
	if err != nil {
		return domain.AcquiredAudio{}, domain.AsFailure(err, domain.KindFeedNotFound)
	}

	file, err := s.Downloader.Download(ctx, ep.AudioURL, dir, func(resp *http.Response) string {
		return EpisodeFilename(ep.Title, resp.Header.Get("Content-Type"))
	})
	if err != nil {
		return domain.AcquiredAudio{}, downloadFailure(ep.AudioURL, err)
	}

	if s.Logger != nil {
		s.Logger.Info("downloaded episode", "feed", feedURL, "title", ep.Title, "path", file.Path, "bytes", file.Size)
	}
	return domain.AcquiredAudio{LocalPath: file.Path, SourceKind: kind, SizeHint: file.Size}, nil
}

// EpisodeFilename names an episode download after its title with an
// extension inferred from contentType.
func EpisodeFilename(title, contentType string) string {
	return sanitize.Filename(strings.TrimSpace(title)+ExtensionFor(contentType), 0)
}

// AppleStrategy resolves an Apple Podcasts page to its RSS feed and then
// behaves exactly like RSSStrategy.
type AppleStrategy struct {
	Feeds  FeedLocator
	RSS    *RSSStrategy
	Logger *slog.Logger
}

func (s *AppleStrategy) Acquire(ctx context.Context, req Request) (domain.AcquiredAudio, error) {
	feedURL, err := s.Feeds.AppleFeedURL(ctx, req.URL)
	if err != nil {
		return domain.AcquiredAudio{}, domain.AsFailure(err, domain.KindFeedNotFound)
	}
	if s.Logger != nil {
		s.Logger.Info("resolved apple podcasts feed", "page", req.URL, "feed", feedURL)
	}
	return s.RSS.acquireFeed(ctx, feedURL, req.OutputDir, domain.ApplePodcasts)
}
