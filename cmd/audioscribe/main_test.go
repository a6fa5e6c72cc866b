package main

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"audioscribe/pkg/config"
	"audioscribe/pkg/domain"
)

const whisperStub = `#!/bin/sh
out=""
while [ $# -gt 0 ]; do
  if [ "$1" = "-of" ]; then
    out="$2"
  fi
  shift
done
printf '{"transcription":[{"offsets":{"from":0,"to":900},"text":" hello"},{"offsets":{"from":900,"to":1800},"text":" world"}]}' > "$out.json"
`

type cliTestEnv struct {
	baseDir    string
	configPath string
	outputDir  string
	modelPath  string
}

func setupCLITestEnv(t *testing.T, withModel bool) *cliTestEnv {
	t.Helper()

	base := t.TempDir()
	t.Setenv("HOME", filepath.Join(base, "home"))
	for _, name := range []string{config.EnvOutputDir, config.EnvModelPath, config.EnvYTDLP, config.EnvWhisper, config.EnvLogLevel} {
		t.Setenv(name, "")
	}

	binDir := filepath.Join(base, "bin")
	if err := os.MkdirAll(binDir, 0o755); err != nil {
		t.Fatalf("mkdir bin: %v", err)
	}
	whisper := filepath.Join(binDir, "whisper-cli")
	if err := os.WriteFile(whisper, []byte(whisperStub), 0o755); err != nil {
		t.Fatalf("write whisper stub: %v", err)
	}
	ytdlp := filepath.Join(binDir, "yt-dlp")
	if err := os.WriteFile(ytdlp, []byte("#!/bin/sh\nexit 1\n"), 0o755); err != nil {
		t.Fatalf("write yt-dlp stub: %v", err)
	}

	env := &cliTestEnv{
		baseDir:    base,
		configPath: filepath.Join(base, "audioscribe.toml"),
		outputDir:  filepath.Join(base, "out"),
		modelPath:  filepath.Join(base, "models", "ggml-test.bin"),
	}
	if withModel {
		if err := os.MkdirAll(filepath.Dir(env.modelPath), 0o755); err != nil {
			t.Fatalf("mkdir models: %v", err)
		}
		if err := os.WriteFile(env.modelPath, []byte("ggml"), 0o644); err != nil {
			t.Fatalf("write model: %v", err)
		}
	}

	content := fmt.Sprintf(`[paths]
output_dir = %q
model_path = %q

[tools]
ytdlp = %q
whisper = %q
ffmpeg = "ffmpeg"

[transcription]
convert_to_wav = false

[logging]
level = "error"
`, env.outputDir, env.modelPath, ytdlp, whisper)
	if err := os.WriteFile(env.configPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return env
}

func runCLI(t *testing.T, args []string, configPath, stdin string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetIn(strings.NewReader(stdin))
	var flags []string
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}

func newAudioServer(t *testing.T) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/ep1.mp3" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "audio/mpeg")
		w.Write([]byte("ID3 fake audio payload"))
	}))
	t.Cleanup(server.Close)
	return server
}

func TestRunTranscribesDirectAudio(t *testing.T) {
	env := setupCLITestEnv(t, true)
	server := newAudioServer(t)

	out, _, err := runCLI(t, []string{"run", server.URL + "/ep1.mp3"}, env.configPath, "")
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	requireContains(t, out, "Transcribed")
	requireContains(t, out, "DirectAudio")

	data, err := os.ReadFile(filepath.Join(env.outputDir, "ep1_transcription.txt"))
	if err != nil {
		t.Fatalf("read transcript: %v", err)
	}
	if string(data) != "hello\nworld" {
		t.Fatalf("transcript = %q", data)
	}
	if _, err := os.Stat(filepath.Join(env.outputDir, "ep1.mp3")); err != nil {
		t.Fatalf("expected audio file: %v", err)
	}
}

func TestRunSendsConfiguredUserAgent(t *testing.T) {
	env := setupCLITestEnv(t, true)
	f, err := os.OpenFile(env.configPath, os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		t.Fatalf("open config: %v", err)
	}
	if _, err := f.WriteString("\n[http]\nuser_agent = \"audioscribe-test/2\"\n"); err != nil {
		t.Fatalf("append config: %v", err)
	}
	f.Close()

	var mu sync.Mutex
	var agents []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		agents = append(agents, r.Method+" "+r.UserAgent())
		mu.Unlock()
		w.Header().Set("Content-Type", "audio/mpeg")
		w.Write([]byte("ID3 fake audio payload"))
	}))
	defer server.Close()

	if _, _, err := runCLI(t, []string{"run", server.URL + "/ep1.mp3"}, env.configPath, ""); err != nil {
		t.Fatalf("run: %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(agents) < 2 {
		t.Fatalf("expected a probe and a download, got %v", agents)
	}
	for _, agent := range agents {
		if !strings.HasSuffix(agent, " audioscribe-test/2") {
			t.Fatalf("request sent without the configured user agent: %v", agents)
		}
	}
}

func TestRunPromptsForURL(t *testing.T) {
	env := setupCLITestEnv(t, true)
	server := newAudioServer(t)

	_, stderr, err := runCLI(t, []string{"run"}, env.configPath, server.URL+"/ep1.mp3\n")
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	requireContains(t, stderr, "Enter the URL")
	if _, err := os.Stat(filepath.Join(env.outputDir, "ep1_transcription.txt")); err != nil {
		t.Fatalf("expected transcript: %v", err)
	}
}

func TestRunOutputDirFlag(t *testing.T) {
	env := setupCLITestEnv(t, true)
	server := newAudioServer(t)
	custom := filepath.Join(env.baseDir, "custom")

	if _, _, err := runCLI(t, []string{"run", "--output-dir", custom, server.URL + "/ep1.mp3"}, env.configPath, ""); err != nil {
		t.Fatalf("run: %v", err)
	}
	if _, err := os.Stat(filepath.Join(custom, "ep1_transcription.txt")); err != nil {
		t.Fatalf("expected transcript in flag dir: %v", err)
	}
}

func TestRunModelUnavailable(t *testing.T) {
	env := setupCLITestEnv(t, false)
	server := newAudioServer(t)

	out, _, err := runCLI(t, []string{"run", server.URL + "/ep1.mp3"}, env.configPath, "")
	if !errors.Is(err, domain.ErrModelUnavailable) {
		t.Fatalf("expected ModelUnavailable, got %v", err)
	}
	requireContains(t, err.Error(), env.modelPath)
	requireContains(t, out, "ModelUnavailable")
	if _, err := os.Stat(filepath.Join(env.outputDir, "ep1.mp3")); err != nil {
		t.Fatalf("audio should stay on disk: %v", err)
	}
}

func TestRunUnsupportedURL(t *testing.T) {
	env := setupCLITestEnv(t, true)

	_, _, err := runCLI(t, []string{"run", "ftp://example.com/a.mp3"}, env.configPath, "")
	if !errors.Is(err, domain.ErrUnsupportedURL) {
		t.Fatalf("expected UnsupportedURL, got %v", err)
	}
}

func TestRunNoURL(t *testing.T) {
	env := setupCLITestEnv(t, true)

	if _, _, err := runCLI(t, []string{"run"}, env.configPath, "\n"); err == nil {
		t.Fatal("expected error for empty prompt input")
	}
}

func TestClassifyCommand(t *testing.T) {
	env := setupCLITestEnv(t, true)

	tests := map[string]string{
		"https://www.youtube.com/watch?v=abc":       "YouTube",
		"https://podcasts.apple.com/us/podcast/id1": "ApplePodcasts",
		"https://example.com/podcast/feed.xml":      "PodcastRSS",
		"not a url at all":                          "Unknown",
	}
	for raw, want := range tests {
		out, _, err := runCLI(t, []string{"classify", raw}, env.configPath, "")
		if err != nil {
			t.Fatalf("classify %q: %v", raw, err)
		}
		if strings.TrimSpace(out) != want {
			t.Errorf("classify %q = %q, want %q", raw, strings.TrimSpace(out), want)
		}
	}
}

func TestDoctorReportsMissingModel(t *testing.T) {
	env := setupCLITestEnv(t, false)

	out, _, err := runCLI(t, []string{"doctor"}, env.configPath, "")
	if err == nil || !strings.Contains(err.Error(), "model") {
		t.Fatalf("expected missing model error, got %v", err)
	}
	requireContains(t, out, "whisper.cpp")
	requireContains(t, out, "not found at")
}

func TestDoctorAllPresent(t *testing.T) {
	env := setupCLITestEnv(t, true)

	out, _, err := runCLI(t, []string{"doctor"}, env.configPath, "")
	if err != nil {
		t.Fatalf("doctor: %v", err)
	}
	requireContains(t, out, "Dependency")
	requireContains(t, out, "yt-dlp")
}

func TestConfigInitAndShow(t *testing.T) {
	env := setupCLITestEnv(t, true)

	target := filepath.Join(t.TempDir(), "config.toml")
	out, _, err := runCLI(t, []string{"config", "init", target}, "", "")
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	requireContains(t, out, "Wrote sample configuration")
	if _, err := os.Stat(target); err != nil {
		t.Fatalf("expected config file at %s: %v", target, err)
	}

	if _, _, err := runCLI(t, []string{"config", "init", "--path", target}, "", ""); err == nil {
		t.Fatal("expected init to refuse overwriting")
	}
	if _, _, err := runCLI(t, []string{"config", "init", "--path", target, "--overwrite"}, "", ""); err != nil {
		t.Fatalf("config init --overwrite: %v", err)
	}

	out, _, err = runCLI(t, []string{"config", "show"}, env.configPath, "")
	if err != nil {
		t.Fatalf("config show: %v", err)
	}
	requireContains(t, out, env.configPath)
	requireContains(t, out, "[transcription]")
	requireContains(t, out, env.modelPath)
}
