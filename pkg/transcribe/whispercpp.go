package transcribe

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"audioscribe/pkg/domain"
)

const (
	// WhisperCommand is the whisper.cpp CLI name.
	WhisperCommand = "whisper-cli"
	// FFmpegCommand converts input audio to the format whisper.cpp reads.
	FFmpegCommand = "ffmpeg"
)

// WhisperCPP runs the whisper.cpp command line tool as the speech engine.
type WhisperCPP struct {
	Binary       string
	FFmpeg       string
	Language     string
	Threads      int
	ConvertToWAV bool

	commandRunner func(ctx context.Context, name string, args ...string) error
}

// NewWhisperCPP creates an engine using the given binaries. Empty names fall
// back to WhisperCommand and FFmpegCommand.
func NewWhisperCPP(binary, ffmpeg string) *WhisperCPP {
	if binary == "" {
		binary = WhisperCommand
	}
	if ffmpeg == "" {
		ffmpeg = FFmpegCommand
	}
	return &WhisperCPP{Binary: binary, FFmpeg: ffmpeg, ConvertToWAV: true}
}

// WithCommandRunner sets a custom command runner (for testing).
func (w *WhisperCPP) WithCommandRunner(runner func(ctx context.Context, name string, args ...string) error) {
	w.commandRunner = runner
}

// Transcribe converts audioPath to 16 kHz mono WAV when enabled, runs
// whisper.cpp with JSON output and returns its segments in order.
func (w *WhisperCPP) Transcribe(ctx context.Context, modelPath, audioPath string) ([]domain.TranscriptSegment, error) {
	workDir, err := os.MkdirTemp("", "audioscribe-whisper-*")
	if err != nil {
		return nil, fmt.Errorf("create work dir: %w", err)
	}
	defer os.RemoveAll(workDir)

	input := audioPath
	if w.ConvertToWAV {
		wav := filepath.Join(workDir, "input.wav")
		if err := w.run(ctx, w.FFmpeg, buildFFmpegArgs(audioPath, wav)...); err != nil {
			return nil, fmt.Errorf("convert audio: %w", err)
		}
		input = wav
	}

	base := filepath.Join(workDir, "transcript")
	if err := w.run(ctx, w.Binary, w.buildArgs(modelPath, input, base)...); err != nil {
		return nil, fmt.Errorf("whisper.cpp: %w", err)
	}

	return LoadSegments(base + ".json")
}

func (w *WhisperCPP) buildArgs(modelPath, input, outputBase string) []string {
	args := []string{
		"-m", modelPath,
		"-f", input,
		"-oj",
		"-of", outputBase,
		"-np",
	}
	if lang := strings.TrimSpace(w.Language); lang != "" {
		args = append(args, "-l", lang)
	}
	if w.Threads > 0 {
		args = append(args, "-t", strconv.Itoa(w.Threads))
	}
	return args
}

func buildFFmpegArgs(source, dest string) []string {
	return []string{
		"-y",
		"-hide_banner",
		"-loglevel", "error",
		"-i", source,
		"-vn",
		"-ac", "1",
		"-ar", "16000",
		"-c:a", "pcm_s16le",
		dest,
	}
}

// run executes a command, using the custom runner if set.
func (w *WhisperCPP) run(ctx context.Context, name string, args ...string) error {
	if w.commandRunner != nil {
		return w.commandRunner(ctx, name, args...)
	}
	cmd := exec.CommandContext(ctx, name, args...) //nolint:gosec
	if output, err := cmd.CombinedOutput(); err != nil {
		if errors.Is(err, exec.ErrNotFound) {
			return fmt.Errorf("%s not found in PATH: %w", name, err)
		}
		return fmt.Errorf("%s: %w: %s", name, err, strings.TrimSpace(string(output)))
	}
	return nil
}

type whisperOffsets struct {
	From int64 `json:"from"`
	To   int64 `json:"to"`
}

type whisperSegment struct {
	Offsets *whisperOffsets `json:"offsets"`
	Text    string          `json:"text"`
}

type whisperPayload struct {
	Transcription []whisperSegment `json:"transcription"`
}

// LoadSegments reads a whisper.cpp JSON output file.
func LoadSegments(jsonPath string) ([]domain.TranscriptSegment, error) {
	data, err := os.ReadFile(jsonPath)
	if err != nil {
		return nil, fmt.Errorf("read whisper output: %w", err)
	}
	var payload whisperPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("parse whisper json: %w", err)
	}

	segments := make([]domain.TranscriptSegment, 0, len(payload.Transcription))
	for _, seg := range payload.Transcription {
		out := domain.TranscriptSegment{Text: strings.TrimSpace(seg.Text)}
		if seg.Offsets != nil {
			out.Start = time.Duration(seg.Offsets.From) * time.Millisecond
			out.End = time.Duration(seg.Offsets.To) * time.Millisecond
			out.HasTiming = true
		}
		segments = append(segments, out)
	}
	return segments, nil
}
