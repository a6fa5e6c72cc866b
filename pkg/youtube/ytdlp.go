// Package youtube extracts audio from video pages with yt-dlp.
package youtube

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

const (
	defaultYtdlpPath    = "yt-dlp"
	defaultAudioFormat  = "mp3"
	defaultAudioQuality = "0"
	defaultTimeout      = 30 * time.Minute
)

var (
	ErrNotInstalled     = errors.New("yt-dlp is not installed or not in PATH")
	ErrVideoUnavailable = errors.New("video unavailable")
	ErrUnsupportedURL   = errors.New("url not supported by yt-dlp")
	ErrNoOutput         = errors.New("yt-dlp reported no output file")
	ErrTimeout          = errors.New("yt-dlp timed out")
)

// ExtractError wraps a failed extraction with the URL it was for.
type ExtractError struct {
	URL string
	Err error
}

func (e *ExtractError) Error() string {
	return fmt.Sprintf("yt-dlp %s: %v", e.URL, e.Err)
}

func (e *ExtractError) Unwrap() error {
	return e.Err
}

// Extraction is the result of a successful audio extraction.
type Extraction struct {
	Title string

	// LocalPath is the final file path reported by yt-dlp after post-processing.
	LocalPath string
}

// CommandRunner executes name with args and returns its stdout.
type CommandRunner func(ctx context.Context, name string, args ...string) ([]byte, error)

// Downloader extracts the best available audio track using yt-dlp.
type Downloader struct {
	// Path is the yt-dlp executable. Defaults to "yt-dlp".
	Path string

	// AudioFormat is the container yt-dlp transcodes to. Defaults to "mp3".
	AudioFormat string

	// AudioQuality is passed to --audio-quality. Defaults to "0" (best VBR).
	AudioQuality string

	// Timeout bounds a single extraction. Defaults to 30 minutes.
	Timeout time.Duration

	runner CommandRunner
}

// NewDownloader creates a Downloader with default settings.
func NewDownloader() *Downloader {
	return &Downloader{
		Path:         defaultYtdlpPath,
		AudioFormat:  defaultAudioFormat,
		AudioQuality: defaultAudioQuality,
		Timeout:      defaultTimeout,
	}
}

// WithCommandRunner sets a custom command runner (for testing).
func (d *Downloader) WithCommandRunner(runner CommandRunner) {
	d.runner = runner
}

// Format returns the configured audio container, which is also the file
// extension of extracted files.
func (d *Downloader) Format() string {
	if f := strings.TrimSpace(d.AudioFormat); f != "" {
		return f
	}
	return defaultAudioFormat
}

// ExtractBestAudio downloads videoURL's best audio stream, transcodes it and
// writes it using the yt-dlp output template.
func (d *Downloader) ExtractBestAudio(ctx context.Context, videoURL, outputTemplate string) (Extraction, error) {
	timeout := d.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	cmdCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	stdout, err := d.run(cmdCtx, d.path(), d.buildArgs(videoURL, outputTemplate)...)
	if err != nil {
		if errors.Is(cmdCtx.Err(), context.DeadlineExceeded) {
			return Extraction{}, &ExtractError{URL: videoURL, Err: ErrTimeout}
		}
		if errors.Is(ctx.Err(), context.Canceled) {
			return Extraction{}, &ExtractError{URL: videoURL, Err: context.Canceled}
		}
		return Extraction{}, &ExtractError{URL: videoURL, Err: classify(err)}
	}

	ext, ok := parseOutput(stdout)
	if !ok {
		return Extraction{}, &ExtractError{URL: videoURL, Err: ErrNoOutput}
	}
	return ext, nil
}

func (d *Downloader) buildArgs(videoURL, outputTemplate string) []string {
	quality := strings.TrimSpace(d.AudioQuality)
	if quality == "" {
		quality = defaultAudioQuality
	}
	return []string{
		"-f", "bestaudio/best",
		"-x",
		"--audio-format", d.Format(),
		"--audio-quality", quality,
		"-o", outputTemplate,
		"--no-playlist",
		"--no-warnings",
		"--no-simulate",
		"--print", "after_move:title",
		"--print", "after_move:filepath",
		videoURL,
	}
}

func (d *Downloader) path() string {
	if p := strings.TrimSpace(d.Path); p != "" {
		return p
	}
	return defaultYtdlpPath
}

func (d *Downloader) run(ctx context.Context, name string, args ...string) ([]byte, error) {
	if d.runner != nil {
		return d.runner(ctx, name, args...)
	}
	cmd := exec.CommandContext(ctx, name, args...) //nolint:gosec

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if errors.Is(err, exec.ErrNotFound) {
			return nil, ErrNotInstalled
		}
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return nil, fmt.Errorf("%w: %s", err, msg)
		}
		return nil, err
	}
	return stdout.Bytes(), nil
}

// classify maps common yt-dlp stderr messages to sentinel errors.
func classify(err error) error {
	if errors.Is(err, ErrNotInstalled) {
		return err
	}
	msg := err.Error()
	lower := strings.ToLower(msg)
	switch {
	case strings.Contains(lower, "video unavailable"),
		strings.Contains(lower, "private video"),
		strings.Contains(lower, "has been removed"):
		return fmt.Errorf("%w: %s", ErrVideoUnavailable, msg)
	case strings.Contains(lower, "unsupported url"):
		return fmt.Errorf("%w: %s", ErrUnsupportedURL, msg)
	}
	return fmt.Errorf("yt-dlp failed: %w", err)
}

// parseOutput reads the two --print lines: the title, then the final path.
func parseOutput(stdout []byte) (Extraction, bool) {
	var lines []string
	for _, line := range strings.Split(string(stdout), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	switch len(lines) {
	case 0:
		return Extraction{}, false
	case 1:
		return Extraction{LocalPath: lines[0]}, true
	default:
		return Extraction{Title: lines[len(lines)-2], LocalPath: lines[len(lines)-1]}, true
	}
}
