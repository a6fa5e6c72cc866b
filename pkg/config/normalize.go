package config

import (
	"fmt"
	"os"
	"strings"
)

// Environment variables that override file values when set.
const (
	EnvOutputDir = "AUDIOSCRIBE_OUTPUT_DIR"
	EnvModelPath = "AUDIOSCRIBE_MODEL_PATH"
	EnvYTDLP     = "AUDIOSCRIBE_YTDLP"
	EnvWhisper   = "AUDIOSCRIBE_WHISPER"
	EnvLogLevel  = "AUDIOSCRIBE_LOG_LEVEL"
)

func (c *Config) normalize() error {
	c.applyEnv()
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeTools()
	c.normalizeTranscription()
	c.normalizeHTTP()
	c.normalizeYouTube()
	c.normalizeLogging()
	return nil
}

func (c *Config) applyEnv() {
	overrides := []struct {
		name   string
		target *string
	}{
		{EnvOutputDir, &c.Paths.OutputDir},
		{EnvModelPath, &c.Paths.ModelPath},
		{EnvYTDLP, &c.Tools.YTDLP},
		{EnvWhisper, &c.Tools.Whisper},
		{EnvLogLevel, &c.Logging.Level},
	}
	for _, o := range overrides {
		if value, ok := os.LookupEnv(o.name); ok && strings.TrimSpace(value) != "" {
			*o.target = value
		}
	}
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.OutputDir) == "" {
		c.Paths.OutputDir = defaultOutputDir
	}
	if c.Paths.OutputDir, err = expandPath(strings.TrimSpace(c.Paths.OutputDir)); err != nil {
		return fmt.Errorf("paths.output_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.ModelPath) == "" {
		c.Paths.ModelPath = defaultModelPath
	}
	if c.Paths.ModelPath, err = expandPath(strings.TrimSpace(c.Paths.ModelPath)); err != nil {
		return fmt.Errorf("paths.model_path: %w", err)
	}
	return nil
}

func (c *Config) normalizeTools() {
	c.Tools.YTDLP = defaultString(c.Tools.YTDLP, defaultYTDLP)
	c.Tools.Whisper = defaultString(c.Tools.Whisper, defaultWhisper)
	c.Tools.FFmpeg = defaultString(c.Tools.FFmpeg, defaultFFmpeg)
}

func (c *Config) normalizeTranscription() {
	lang := strings.ToLower(strings.TrimSpace(c.Transcription.Language))
	if lang == "" {
		lang = defaultLanguage
	}
	c.Transcription.Language = lang
}

func (c *Config) normalizeHTTP() {
	c.HTTP.ClientProfile = strings.ToLower(defaultString(c.HTTP.ClientProfile, defaultClientProfile))
	c.HTTP.UserAgent = strings.TrimSpace(c.HTTP.UserAgent)
	if c.HTTP.SniffTimeoutSeconds == 0 {
		c.HTTP.SniffTimeoutSeconds = defaultSniffTimeoutSeconds
	}
}

func (c *Config) normalizeYouTube() {
	c.YouTube.AudioFormat = strings.ToLower(strings.TrimPrefix(defaultString(c.YouTube.AudioFormat, defaultAudioFormat), "."))
	c.YouTube.AudioQuality = defaultString(c.YouTube.AudioQuality, defaultAudioQuality)
}

func (c *Config) normalizeLogging() {
	format := strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if format == "" {
		format = defaultLogFormat
	}
	c.Logging.Format = format

	level := strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if level == "" {
		level = defaultLogLevel
	}
	c.Logging.Level = level
}

func defaultString(value, fallback string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return fallback
	}
	return value
}
