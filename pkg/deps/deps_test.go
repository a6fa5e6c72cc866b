package deps

import (
	"os"
	"path/filepath"
	"testing"
)

func writeStub(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte("#!/bin/sh\nexit 0\n"), 0o755); err != nil {
		t.Fatalf("write stub: %v", err)
	}
	return path
}

func TestCheckBinaries(t *testing.T) {
	present := writeStub(t, t.TempDir(), "present")
	reqs := []Requirement{
		{Name: "Present", Command: present},
		{Name: "Missing", Command: "clearly-not-present-binary"},
		{Name: "Blank", Command: "  "},
	}

	results := CheckBinaries(reqs)
	if len(results) != len(reqs) {
		t.Fatalf("expected %d results, got %d", len(reqs), len(results))
	}
	if !results[0].Available || results[0].Detail != "" {
		t.Fatalf("expected first requirement to be available, got %#v", results[0])
	}
	if results[1].Available || results[1].Detail == "" {
		t.Fatalf("expected missing binary to be unavailable with detail, got %#v", results[1])
	}
	if results[1].Command != "clearly-not-present-binary" {
		t.Fatalf("unexpected command recorded: %s", results[1].Command)
	}
	if results[2].Available || results[2].Detail != "command not configured" {
		t.Fatalf("unexpected blank status %#v", results[2])
	}
}

func TestCheckBinariesResolvesFromPath(t *testing.T) {
	binDir := t.TempDir()
	stub := writeStub(t, binDir, "whisper-cli")
	t.Setenv("PATH", binDir)

	results := CheckBinaries([]Requirement{{Name: "whisper.cpp", Command: "whisper-cli"}})
	if !results[0].Available {
		t.Fatalf("expected PATH lookup to succeed, got %#v", results[0])
	}
	if results[0].Detail != stub {
		t.Fatalf("expected resolved path %q, got %q", stub, results[0].Detail)
	}
}

func TestRequirementsOptionalFFmpeg(t *testing.T) {
	reqs := Requirements(Tools{YTDLP: "yt-dlp", Whisper: "whisper-cli", FFmpeg: "ffmpeg"})
	if len(reqs) != 3 {
		t.Fatalf("expected 3 requirements, got %d", len(reqs))
	}
	if !reqs[2].Optional {
		t.Fatal("ffmpeg should be optional without wav conversion")
	}
	if reqs[1].Optional {
		t.Fatal("whisper.cpp should be required")
	}

	reqs = Requirements(Tools{FFmpeg: "ffmpeg", ConvertToWAV: true})
	if reqs[2].Optional {
		t.Fatal("ffmpeg should be required with wav conversion")
	}
}

func TestCheckFile(t *testing.T) {
	dir := t.TempDir()
	model := filepath.Join(dir, "ggml.bin")
	if err := os.WriteFile(model, []byte("ggml"), 0o644); err != nil {
		t.Fatalf("write model: %v", err)
	}
	empty := filepath.Join(dir, "empty.bin")
	if err := os.WriteFile(empty, nil, 0o644); err != nil {
		t.Fatalf("write empty: %v", err)
	}

	tests := []struct {
		name      string
		path      string
		available bool
	}{
		{name: "present", path: model, available: true},
		{name: "missing", path: filepath.Join(dir, "nope.bin")},
		{name: "directory", path: dir},
		{name: "empty", path: empty},
		{name: "unset", path: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status := CheckFile("model", tt.path, "whisper model")
			if status.Available != tt.available {
				t.Fatalf("Available = %v, want %v (%s)", status.Available, tt.available, status.Detail)
			}
			if !tt.available && status.Detail == "" {
				t.Fatal("expected detail for unavailable file")
			}
		})
	}
}

func TestMissingRequired(t *testing.T) {
	statuses := []Status{
		{Name: "a", Available: true},
		{Name: "b", Optional: true},
		{Name: "c"},
	}
	missing := MissingRequired(statuses)
	if len(missing) != 1 || missing[0].Name != "c" {
		t.Fatalf("unexpected missing %+v", missing)
	}
}
