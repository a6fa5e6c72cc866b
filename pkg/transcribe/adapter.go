// Package transcribe turns an acquired audio file into a transcript file.
package transcribe

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"audioscribe/pkg/domain"
	"audioscribe/pkg/sanitize"
)

// OutputSuffix is appended to the audio stem to name the transcript file.
const OutputSuffix = "_transcription.txt"

// DefaultModelPath is where the offline model is expected unless configured.
const DefaultModelPath = "models/ggml-medium.en.bin"

// Engine is an offline speech-to-text engine.
type Engine interface {
	Transcribe(ctx context.Context, modelPath, audioPath string) ([]domain.TranscriptSegment, error)
}

// Adapter checks preconditions, runs the engine and persists its output.
type Adapter struct {
	engine    Engine
	modelPath string
	logger    *slog.Logger
}

// NewAdapter creates an adapter that loads the model at modelPath.
func NewAdapter(engine Engine, modelPath string, logger *slog.Logger) *Adapter {
	if strings.TrimSpace(modelPath) == "" {
		modelPath = DefaultModelPath
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Adapter{
		engine:    engine,
		modelPath: modelPath,
		logger:    logger.With("component", "transcribe"),
	}
}

// ModelPath returns the location the model is expected at.
func (a *Adapter) ModelPath() string {
	return a.modelPath
}

// ModelAvailable reports whether the model is a non-empty regular file.
func (a *Adapter) ModelAvailable() bool {
	info, err := os.Stat(a.modelPath)
	return err == nil && info.Mode().IsRegular() && info.Size() > 0
}

// Transcribe runs the engine over localPath and writes the joined segment
// text to outputDir. The audio file is never modified or removed.
func (a *Adapter) Transcribe(ctx context.Context, localPath, outputDir string) (domain.Transcript, error) {
	if _, err := os.Stat(localPath); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return domain.Transcript{}, domain.Fail(domain.KindFileNotFound, localPath, nil)
		}
		return domain.Transcript{}, domain.Fail(domain.KindFileNotFound, localPath, err)
	}

	if !a.ModelAvailable() {
		return domain.Transcript{}, domain.Fail(domain.KindModelUnavailable,
			fmt.Sprintf("model not found or empty at %s; download a whisper.cpp ggml model to that path or set paths.model_path", a.modelPath), nil)
	}

	a.logger.Info("transcribing", "audio", localPath, "model", a.modelPath)
	segments, err := a.runEngine(ctx, localPath)
	if err != nil {
		return domain.Transcript{}, domain.Fail(domain.KindTranscriptionFailed, err.Error(), nil)
	}

	texts := make([]string, 0, len(segments))
	for _, seg := range segments {
		texts = append(texts, seg.Text)
	}
	body := strings.Join(texts, "\n")

	if outputDir == "" {
		outputDir = "."
	}
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return domain.Transcript{}, domain.Fail(domain.KindTranscriptionFailed, "create output directory", err)
	}
	outPath := filepath.Join(outputDir, OutputName(localPath))
	if err := os.WriteFile(outPath, []byte(body), 0o644); err != nil {
		return domain.Transcript{}, domain.Fail(domain.KindTranscriptionFailed, "write transcript", err)
	}

	a.logger.Info("transcript written", "path", outPath, "segments", len(segments))
	return domain.Transcript{SourcePath: localPath, OutputPath: outPath, Body: body}, nil
}

// runEngine converts engine panics into errors.
func (a *Adapter) runEngine(ctx context.Context, audioPath string) (segments []domain.TranscriptSegment, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("engine panic: %v", r)
		}
	}()
	if a.engine == nil {
		return nil, errors.New("no transcription engine configured")
	}
	return a.engine.Transcribe(ctx, a.modelPath, audioPath)
}

// OutputName returns the transcript file name for an audio file.
func OutputName(localPath string) string {
	stem := sanitize.Stem(filepath.Base(localPath))
	return sanitize.Filename(stem, sanitize.DefaultMaxLength-len(OutputSuffix)) + OutputSuffix
}
