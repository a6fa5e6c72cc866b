// Package acquire fetches one audio file for a classified source URL.
package acquire

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"mime"
	"strings"

	"audioscribe/pkg/domain"
	"audioscribe/pkg/httpclient"
	"audioscribe/pkg/youtube"
)

// Request names the source to acquire and where the audio file goes.
type Request struct {
	URL       string
	OutputDir string
}

// Strategy acquires audio for one SourceKind. Errors are *domain.Failure.
type Strategy interface {
	Acquire(ctx context.Context, req Request) (domain.AcquiredAudio, error)
}

// AudioExtractor downloads and transcodes the best audio of a video page.
type AudioExtractor interface {
	ExtractBestAudio(ctx context.Context, videoURL, outputTemplate string) (youtube.Extraction, error)
}

// Downloader streams a URL into a directory.
type Downloader interface {
	Download(ctx context.Context, rawURL, dir string, name httpclient.NameFunc) (httpclient.File, error)
}

// PageFetcher retrieves an HTML page.
type PageFetcher interface {
	Fetch(ctx context.Context, rawURL string, limit int64) ([]byte, string, error)
}

// EpisodeResolver selects the latest episode of a feed.
type EpisodeResolver interface {
	LatestEpisode(ctx context.Context, feedURL string) (domain.Episode, error)
}

// FeedLocator finds the RSS feed behind an Apple Podcasts page.
type FeedLocator interface {
	AppleFeedURL(ctx context.Context, pageURL string) (string, error)
}

// Table maps each fetchable SourceKind to its strategy.
type Table map[domain.SourceKind]Strategy

// Dependencies are the collaborators the default strategies need.
type Dependencies struct {
	Extractor       AudioExtractor
	ExtractorFormat string
	Downloader      Downloader
	Pages           PageFetcher
	Episodes        EpisodeResolver
	Feeds           FeedLocator
	Logger          *slog.Logger
}

// NewTable wires the five strategies.
func NewTable(deps Dependencies) Table {
	logger := deps.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	logger = logger.With("component", "acquire")

	direct := &DirectStrategy{Downloader: deps.Downloader, Logger: logger}
	rss := &RSSStrategy{Episodes: deps.Episodes, Downloader: deps.Downloader, Logger: logger}

	return Table{
		domain.YouTube: &YouTubeStrategy{
			Extractor: deps.Extractor,
			Format:    deps.ExtractorFormat,
			Logger:    logger,
		},
		domain.PodcastRSS:    rss,
		domain.ApplePodcasts: &AppleStrategy{Feeds: deps.Feeds, RSS: rss, Logger: logger},
		domain.DirectAudio:   direct,
		domain.EmbeddedPage:  &EmbeddedStrategy{Pages: deps.Pages, Direct: direct, Logger: logger},
	}
}

// Lookup returns the strategy for kind.
func (t Table) Lookup(kind domain.SourceKind) (Strategy, bool) {
	s, ok := t[kind]
	return s, ok && s != nil
}

// ExtensionFor infers a file extension from an audio Content-Type.
func ExtensionFor(contentType string) string {
	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		mt = strings.TrimSpace(strings.SplitN(contentType, ";", 2)[0])
	}
	switch strings.ToLower(mt) {
	case "audio/mpeg", "audio/mp3", "audio/mpeg3":
		return ".mp3"
	case "audio/wav", "audio/x-wav", "audio/wave", "audio/vnd.wave":
		return ".wav"
	case "audio/ogg", "audio/vorbis":
		return ".ogg"
	case "audio/aac", "audio/x-aac":
		return ".aac"
	case "audio/mp4", "audio/x-m4a", "audio/m4a":
		return ".m4a"
	case "audio/flac", "audio/x-flac":
		return ".flac"
	default:
		return ".mp3"
	}
}

// downloadFailure converts a download error into DownloadFailed.
func downloadFailure(rawURL string, err error) *domain.Failure {
	var statusErr *httpclient.StatusError
	if errors.As(err, &statusErr) {
		return domain.FailStatus(statusErr.StatusCode, rawURL)
	}
	return domain.Fail(domain.KindDownloadFailed, rawURL, err)
}
