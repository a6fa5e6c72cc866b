package config

const (
	defaultOutputDir           = "."
	defaultModelPath           = "~/.local/share/audioscribe/models/ggml-medium.en.bin"
	defaultYTDLP               = "yt-dlp"
	defaultWhisper             = "whisper-cli"
	defaultFFmpeg              = "ffmpeg"
	defaultLanguage            = "en"
	defaultConvertToWAV        = true
	defaultClientProfile       = "browser"
	defaultSniffTimeoutSeconds = 5
	defaultAudioFormat         = "mp3"
	defaultAudioQuality        = "0"
	defaultLogFormat           = "console"
	defaultLogLevel            = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			OutputDir: defaultOutputDir,
			ModelPath: defaultModelPath,
		},
		Tools: Tools{
			YTDLP:   defaultYTDLP,
			Whisper: defaultWhisper,
			FFmpeg:  defaultFFmpeg,
		},
		Transcription: Transcription{
			Language:     defaultLanguage,
			ConvertToWAV: defaultConvertToWAV,
		},
		HTTP: HTTP{
			ClientProfile:       defaultClientProfile,
			SniffTimeoutSeconds: defaultSniffTimeoutSeconds,
		},
		YouTube: YouTube{
			AudioFormat:  defaultAudioFormat,
			AudioQuality: defaultAudioQuality,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
