package acquire

import (
	"context"
	"errors"
	"log/slog"

	"audioscribe/pkg/content"
	"audioscribe/pkg/domain"
	"audioscribe/pkg/httpclient"
)

// EmbeddedStrategy scrapes the first <audio> source from a web page and
// downloads it like a direct URL.
type EmbeddedStrategy struct {
	Pages  PageFetcher
	Direct *DirectStrategy
	Logger *slog.Logger
}

func (s *EmbeddedStrategy) Acquire(ctx context.Context, req Request) (domain.AcquiredAudio, error) {
	body, _, err := s.Pages.Fetch(ctx, req.URL, 0)
	if err != nil {
		var statusErr *httpclient.StatusError
		if errors.As(err, &statusErr) {
			return domain.AcquiredAudio{}, &domain.Failure{
				Kind:   domain.KindNoAudioFound,
				Status: statusErr.StatusCode,
				Detail: req.URL,
			}
		}
		return domain.AcquiredAudio{}, domain.Fail(domain.KindDownloadFailed, req.URL, err)
	}

	src, err := content.FindAudioURL(string(body))
	if err != nil {
		return domain.AcquiredAudio{}, domain.Fail(domain.KindNoAudioFound, req.URL, err)
	}

	audioURL := httpclient.ResolveReference(req.URL, src)
	if s.Logger != nil {
		s.Logger.Info("found embedded audio", "page", req.URL, "audio", audioURL)
	}

	var title string
	if lastPathSegment(audioURL) == "" {
		title = content.EpisodeTitle(string(body))
	}
	return s.Direct.download(ctx, audioURL, req.OutputDir, domain.EmbeddedPage, title)
}
