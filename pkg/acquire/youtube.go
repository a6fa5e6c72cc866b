package acquire

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"audioscribe/pkg/domain"
	"audioscribe/pkg/sanitize"
)

// prefixMatchLen is how many bytes of the expected stem a stray extractor
// output must share to be adopted.
const prefixMatchLen = 10

// YouTubeStrategy extracts audio through an AudioExtractor and renames the
// result to the sanitized video title.
type YouTubeStrategy struct {
	Extractor AudioExtractor

	// Format is the extractor's output container, used as the file extension.
	Format string

	Logger *slog.Logger
}

func (s *YouTubeStrategy) Acquire(ctx context.Context, req Request) (domain.AcquiredAudio, error) {
	ext := "." + strings.TrimPrefix(strings.TrimSpace(s.Format), ".")
	if ext == "." {
		ext = ".mp3"
	}

	template := filepath.Join(req.OutputDir, "%(title)s.%(ext)s")
	res, err := s.Extractor.ExtractBestAudio(ctx, req.URL, template)
	if err != nil {
		return domain.AcquiredAudio{}, domain.Fail(domain.KindExtractionFailed, req.URL, err)
	}

	title := strings.TrimSpace(res.Title)
	if title == "" && res.LocalPath != "" {
		title = sanitize.Stem(filepath.Base(res.LocalPath))
	}
	if title == "" {
		title = "untitled"
	}
	final := filepath.Join(req.OutputDir, sanitize.Filename(title+ext, 0))

	source := res.LocalPath
	if !isRegularFile(source) {
		source, err = findByPrefix(req.OutputDir, filepath.Base(final))
		if err != nil {
			return domain.AcquiredAudio{}, domain.Fail(domain.KindExtractionFailed, req.URL, err)
		}
		if s.Logger != nil {
			s.Logger.Warn("extractor output not at reported path, using prefix match",
				"reported", res.LocalPath, "matched", source)
		}
	}

	if filepath.Clean(source) != filepath.Clean(final) {
		if err := os.Rename(source, final); err != nil {
			return domain.AcquiredAudio{}, domain.Fail(domain.KindExtractionFailed, "rename "+source, err)
		}
	}

	info, err := os.Stat(final)
	if err != nil {
		return domain.AcquiredAudio{}, domain.Fail(domain.KindExtractionFailed, final, err)
	}

	if s.Logger != nil {
		s.Logger.Info("extracted video audio", "url", req.URL, "title", title, "path", final)
	}
	return domain.AcquiredAudio{LocalPath: final, SourceKind: domain.YouTube, SizeHint: info.Size()}, nil
}

// findByPrefix returns the most recently modified file in dir whose
// normalized stem starts with the first bytes of want's normalized stem and
// whose extension matches. Concurrent runs in the same directory can pick up
// each other's files.
func findByPrefix(dir, want string) (string, error) {
	ext := sanitize.Extension(want)
	prefix := sanitize.CutRunes(normalizeStem(want), prefixMatchLen)
	if prefix == "" {
		return "", errors.New("no name to match extractor output against")
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", fmt.Errorf("scan output directory: %w", err)
	}

	var (
		best     string
		bestTime time.Time
	)
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || strings.HasPrefix(name, ".") {
			continue
		}
		if !strings.EqualFold(sanitize.Extension(name), ext) {
			continue
		}
		if !strings.HasPrefix(normalizeStem(name), prefix) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if best == "" || info.ModTime().After(bestTime) {
			best = filepath.Join(dir, name)
			bestTime = info.ModTime()
		}
	}

	if best == "" {
		return "", fmt.Errorf("no file in %s matches %q", dir, want)
	}
	return best, nil
}

func normalizeStem(name string) string {
	return strings.ToLower(sanitize.Filename(sanitize.Stem(name), 0))
}

func isRegularFile(path string) bool {
	if strings.TrimSpace(path) == "" {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
