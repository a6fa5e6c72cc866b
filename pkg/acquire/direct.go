package acquire

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"path"
	"strings"

	"audioscribe/pkg/domain"
	"audioscribe/pkg/sanitize"
)

// DirectStrategy downloads a URL that serves audio bytes itself.
type DirectStrategy struct {
	Downloader Downloader
	Logger     *slog.Logger
}

func (s *DirectStrategy) Acquire(ctx context.Context, req Request) (domain.AcquiredAudio, error) {
	return s.download(ctx, req.URL, req.OutputDir, domain.DirectAudio, "")
}

// download names the file after the URL's last path segment, or after
// fallback when the URL has none.
func (s *DirectStrategy) download(ctx context.Context, rawURL, dir string, kind domain.SourceKind, fallback string) (domain.AcquiredAudio, error) {
	segment := lastPathSegment(rawURL)
	if segment == "" {
		segment = fallback
	}

	file, err := s.Downloader.Download(ctx, rawURL, dir, func(resp *http.Response) string {
		return DirectFilename(segment, resp.Header.Get("Content-Type"))
	})
	if err != nil {
		return domain.AcquiredAudio{}, downloadFailure(rawURL, err)
	}

	if s.Logger != nil {
		s.Logger.Info("downloaded audio", "url", rawURL, "path", file.Path, "bytes", file.Size)
	}
	return domain.AcquiredAudio{LocalPath: file.Path, SourceKind: kind, SizeHint: file.Size}, nil
}

// DirectFilename names a directly downloaded file after the URL's last path
// segment, appending an extension from contentType when the segment lacks one.
func DirectFilename(segment, contentType string) string {
	segment = strings.TrimSpace(segment)
	if segment == "" {
		return sanitize.Filename("audio"+ExtensionFor(contentType), 0)
	}
	if sanitize.Extension(segment) == "" {
		segment += ExtensionFor(contentType)
	}
	return sanitize.Filename(segment, 0)
}

// lastPathSegment returns the unescaped final path element of rawURL, or "".
func lastPathSegment(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	p := strings.TrimRight(u.Path, "/")
	if p == "" {
		return ""
	}
	base := path.Base(p)
	if base == "." || base == "/" {
		return ""
	}
	return base
}
