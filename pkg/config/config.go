package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"

	"audioscribe/pkg/httpclient"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains output and model locations.
type Paths struct {
	OutputDir string `toml:"output_dir"`
	ModelPath string `toml:"model_path"`
}

// Tools names the external executables.
type Tools struct {
	YTDLP   string `toml:"ytdlp"`
	Whisper string `toml:"whisper"`
	FFmpeg  string `toml:"ffmpeg"`
}

// Transcription contains whisper.cpp settings.
type Transcription struct {
	Language     string `toml:"language"`
	Threads      int    `toml:"threads"`
	ConvertToWAV bool   `toml:"convert_to_wav"`
}

// HTTP contains client settings.
type HTTP struct {
	ClientProfile       string `toml:"client_profile"`
	SniffTimeoutSeconds int    `toml:"sniff_timeout_seconds"`

	// UserAgent replaces the User-Agent of every profile when set.
	UserAgent string `toml:"user_agent"`
}

// YouTube contains yt-dlp extraction settings.
type YouTube struct {
	AudioFormat  string `toml:"audio_format"`
	AudioQuality string `toml:"audio_quality"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for audioscribe.
type Config struct {
	Paths         Paths         `toml:"paths"`
	Tools         Tools         `toml:"tools"`
	Transcription Transcription `toml:"transcription"`
	HTTP          HTTP          `toml:"http"`
	YouTube       YouTube       `toml:"youtube"`
	Logging       Logging       `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/audioscribe/config.toml")
}

// Load locates, parses, and validates a configuration file. A missing file
// yields the defaults. The returned config has all path fields expanded.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("audioscribe.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// SniffTimeout returns the classifier content probe timeout.
func (c *Config) SniffTimeout() time.Duration {
	return time.Duration(c.HTTP.SniffTimeoutSeconds) * time.Second
}

// ClientType returns the configured HTTP header profile.
func (c *Config) ClientType() httpclient.ClientType {
	ct, err := httpclient.ParseClientType(c.HTTP.ClientProfile)
	if err != nil {
		return httpclient.BrowserClient
	}
	return ct
}

// Encode renders the configuration as TOML.
func (c *Config) Encode() ([]byte, error) {
	data, err := toml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("encode config: %w", err)
	}
	return data, nil
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
