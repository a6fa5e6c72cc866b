// Package pipeline runs one URL through classification, acquisition and
// transcription.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"audioscribe/pkg/acquire"
	"audioscribe/pkg/classifier"
	"audioscribe/pkg/domain"
)

// DefaultOutputDir is used when a request names no output directory.
const DefaultOutputDir = "."

// Classifier assigns a source kind to a URL.
type Classifier interface {
	Classify(ctx context.Context, raw string) domain.SourceKind
}

// Transcriber turns a local audio file into a transcript file in outputDir.
type Transcriber interface {
	Transcribe(ctx context.Context, localPath, outputDir string) (domain.Transcript, error)
}

// StageFunc observes every state the pipeline enters.
type StageFunc func(stage domain.Stage, result domain.PipelineResult)

// Request is one transcription job.
type Request struct {
	URL       string
	OutputDir string
}

// Pipeline composes a classifier, a strategy table and a transcriber.
type Pipeline struct {
	classifier  Classifier
	strategies  acquire.Table
	transcriber Transcriber
	logger      *slog.Logger
	onStage     StageFunc
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets the pipeline logger.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithStageFunc registers a callback invoked on every state transition.
func WithStageFunc(fn StageFunc) Option {
	return func(p *Pipeline) {
		p.onStage = fn
	}
}

// New creates a pipeline.
func New(c Classifier, strategies acquire.Table, t Transcriber, opts ...Option) *Pipeline {
	p := &Pipeline{
		classifier:  c,
		strategies:  strategies,
		transcriber: t,
		logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.logger = p.logger.With("component", "pipeline")
	return p
}

// Run processes one request. It always returns a result; errors are carried
// in result.Failure and the stage that produced them in result.Reached.
func (p *Pipeline) Run(ctx context.Context, req Request) domain.PipelineResult {
	result := domain.PipelineResult{
		Stage:   domain.StageStart,
		Reached: domain.StageStart,
		Source:  domain.SourceURL{Raw: strings.TrimSpace(req.URL)},
	}
	p.enter(&result, domain.StageStart)

	outputDir := req.OutputDir
	if strings.TrimSpace(outputDir) == "" {
		outputDir = DefaultOutputDir
	}
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return p.fail(result, domain.Fail(domain.KindDownloadFailed, "create output directory "+outputDir, err))
	}

	kind := p.classifier.Classify(ctx, result.Source.Raw)
	result.Source.Kind = kind
	if kind == domain.Unknown {
		return p.fail(result, domain.Fail(domain.KindUnsupportedURL, result.Source.Raw, nil))
	}
	p.enter(&result, domain.StageClassified)

	strategy, ok := p.strategies.Lookup(kind)
	if !ok {
		return p.fail(result, domain.Fail(domain.KindUnsupportedURL, fmt.Sprintf("no strategy for %s", kind), nil))
	}

	target := result.Source.Raw
	if u := classifier.Normalize(target); u != nil {
		target = u.String()
	}

	audio, err := strategy.Acquire(ctx, acquire.Request{URL: target, OutputDir: outputDir})
	if err != nil {
		return p.fail(result, domain.AsFailure(err, acquisitionKind(kind)))
	}
	result.Audio = &audio

	if err := verifyAudio(audio.LocalPath); err != nil {
		return p.fail(result, err)
	}
	p.enter(&result, domain.StageAcquired)

	transcript, err := p.transcriber.Transcribe(ctx, audio.LocalPath, outputDir)
	if err != nil {
		return p.fail(result, domain.AsFailure(err, domain.KindTranscriptionFailed))
	}
	result.Transcript = &transcript
	p.enter(&result, domain.StageTranscribed)
	return result
}

func (p *Pipeline) enter(result *domain.PipelineResult, stage domain.Stage) {
	result.Stage = stage
	result.Reached = stage
	p.logger.Debug("stage entered", "stage", string(stage), "url", result.Source.Raw, "kind", result.Source.Kind.String())
	if p.onStage != nil {
		p.onStage(stage, *result)
	}
}

func (p *Pipeline) fail(result domain.PipelineResult, failure *domain.Failure) domain.PipelineResult {
	result.Stage = domain.StageFailed
	result.Failure = failure
	p.logger.Warn("pipeline failed",
		"url", result.Source.Raw,
		"stage", string(result.Reached),
		"kind", string(failure.Kind),
		"error", failure.Error(),
	)
	if p.onStage != nil {
		p.onStage(domain.StageFailed, result)
	}
	return result
}

// verifyAudio checks that acquisition left a non-empty file behind.
func verifyAudio(path string) *domain.Failure {
	if strings.TrimSpace(path) == "" {
		return domain.Fail(domain.KindFileNotFound, "acquisition reported no file", nil)
	}
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return domain.Fail(domain.KindFileNotFound, path, nil)
		}
		return domain.Fail(domain.KindFileNotFound, path, err)
	}
	if info.IsDir() || info.Size() == 0 {
		return domain.Fail(domain.KindFileNotFound, path+" is empty", nil)
	}
	return nil
}

// acquisitionKind is the failure kind for raw errors out of a strategy.
func acquisitionKind(kind domain.SourceKind) domain.FailureKind {
	switch kind {
	case domain.YouTube:
		return domain.KindExtractionFailed
	case domain.PodcastRSS, domain.ApplePodcasts:
		return domain.KindFeedNotFound
	case domain.EmbeddedPage:
		return domain.KindNoAudioFound
	default:
		return domain.KindDownloadFailed
	}
}
