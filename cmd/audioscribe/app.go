package main

import (
	"log/slog"

	"audioscribe/pkg/acquire"
	"audioscribe/pkg/classifier"
	"audioscribe/pkg/config"
	"audioscribe/pkg/feed"
	"audioscribe/pkg/httpclient"
	"audioscribe/pkg/pipeline"
	"audioscribe/pkg/transcribe"
	"audioscribe/pkg/youtube"
)

// services holds the collaborators built from configuration.
type services struct {
	classifier  *classifier.Classifier
	transcriber *transcribe.Adapter
	pipeline    *pipeline.Pipeline
}

type serviceOptions struct {
	progress httpclient.ProgressFunc
	onStage  pipeline.StageFunc
}

// buildServices wires the pipeline. Pages (Apple, embedded players and the
// classifier probe) always use browser headers; feeds and downloads use the
// configured profile. http.user_agent overrides both.
func buildServices(cfg *config.Config, logger *slog.Logger, opts serviceOptions) *services {
	var pageOpts, downloadOpts []httpclient.Option
	if ua := cfg.HTTP.UserAgent; ua != "" {
		pageOpts = append(pageOpts, httpclient.WithUserAgent(ua))
		downloadOpts = append(downloadOpts, httpclient.WithUserAgent(ua))
	}
	pages := httpclient.NewClient(httpclient.BrowserClient, pageOpts...)
	if opts.progress != nil {
		downloadOpts = append(downloadOpts, httpclient.WithProgress(opts.progress))
	}
	downloads := httpclient.NewClient(cfg.ClientType(), downloadOpts...)

	resolver := feed.NewResolver(downloads, pages, logger)

	extractor := youtube.NewDownloader()
	extractor.Path = cfg.Tools.YTDLP
	extractor.AudioFormat = cfg.YouTube.AudioFormat
	extractor.AudioQuality = cfg.YouTube.AudioQuality

	table := acquire.NewTable(acquire.Dependencies{
		Extractor:       extractor,
		ExtractorFormat: extractor.Format(),
		Downloader:      downloads,
		Pages:           pages,
		Episodes:        resolver,
		Feeds:           resolver,
		Logger:          logger,
	})

	engine := transcribe.NewWhisperCPP(cfg.Tools.Whisper, cfg.Tools.FFmpeg)
	engine.Language = cfg.Transcription.Language
	engine.Threads = cfg.Transcription.Threads
	engine.ConvertToWAV = cfg.Transcription.ConvertToWAV
	adapter := transcribe.NewAdapter(engine, cfg.Paths.ModelPath, logger)

	c := classifier.New(pages, cfg.SniffTimeout(), logger)

	pipelineOpts := []pipeline.Option{pipeline.WithLogger(logger)}
	if opts.onStage != nil {
		pipelineOpts = append(pipelineOpts, pipeline.WithStageFunc(opts.onStage))
	}

	return &services{
		classifier:  c,
		transcriber: adapter,
		pipeline:    pipeline.New(c, table, adapter, pipelineOpts...),
	}
}
