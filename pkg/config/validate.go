package config

import (
	"errors"
	"fmt"

	"audioscribe/pkg/httpclient"
)

var supportedAudioFormats = map[string]bool{
	"mp3":  true,
	"m4a":  true,
	"wav":  true,
	"flac": true,
	"opus": true,
	"aac":  true,
}

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateTranscription(); err != nil {
		return err
	}
	if err := c.validateHTTP(); err != nil {
		return err
	}
	if err := c.validateYouTube(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateTranscription() error {
	if c.Transcription.Threads < 0 {
		return errors.New("transcription.threads must be zero (auto) or positive")
	}
	return nil
}

func (c *Config) validateHTTP() error {
	if _, err := httpclient.ParseClientType(c.HTTP.ClientProfile); err != nil {
		return fmt.Errorf("http.client_profile: %w", err)
	}
	if c.HTTP.SniffTimeoutSeconds < 0 {
		return errors.New("http.sniff_timeout_seconds must be positive")
	}
	return nil
}

func (c *Config) validateYouTube() error {
	if !supportedAudioFormats[c.YouTube.AudioFormat] {
		return fmt.Errorf("youtube.audio_format %q is not supported (use mp3, m4a, wav, flac, opus or aac)", c.YouTube.AudioFormat)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("logging.level must be one of debug, info, warn, error, got %q", c.Logging.Level)
	}
	return nil
}
