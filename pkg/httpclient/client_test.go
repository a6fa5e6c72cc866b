package httpclient

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

func TestHTTPClient_SetsProfileHeaders(t *testing.T) {
	var gotUA string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		w.Write([]byte("ok"))
	}))
	defer server.Close()

	ctx := context.Background()

	if _, _, err := NewClient(BrowserClient).Fetch(ctx, server.URL, 0); err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if !strings.HasPrefix(gotUA, "Mozilla/5.0") {
		t.Errorf("browser profile sent User-Agent %q", gotUA)
	}

	if _, _, err := NewClient(CloudflareClient).Fetch(ctx, server.URL, 0); err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if gotUA != "curl/8.7.1" {
		t.Errorf("cloudflare profile sent User-Agent %q", gotUA)
	}

	if _, _, err := NewClient(BrowserClient, WithUserAgent("audioscribe-test")).Fetch(ctx, server.URL, 0); err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if gotUA != "audioscribe-test" {
		t.Errorf("override sent User-Agent %q", gotUA)
	}
}

func TestHTTPClient_FetchLimitAndStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing" {
			w.Header().Set("Content-Type", "application/rss+xml")
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte("<rss/>"))
			return
		}
		w.Header().Set("Content-Type", "text/plain")
		w.Write(bytes.Repeat([]byte("a"), 5000))
	}))
	defer server.Close()

	client := NewClient(DefaultClient)

	body, contentType, err := client.Fetch(context.Background(), server.URL, 1000)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(body) != 1000 {
		t.Errorf("expected 1000 bytes, got %d", len(body))
	}
	if contentType != "text/plain" {
		t.Errorf("unexpected content type %q", contentType)
	}

	body, contentType, err = client.Fetch(context.Background(), server.URL+"/missing", 0)
	if string(body) != "<rss/>" || contentType != "application/rss+xml" {
		t.Errorf("expected error body and type to be returned, got %q %q", body, contentType)
	}
	var statusErr *StatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("expected StatusError, got %v", err)
	}
	if statusErr.StatusCode != http.StatusNotFound {
		t.Errorf("expected 404, got %d", statusErr.StatusCode)
	}
}

func TestHTTPClient_Head(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodHead {
			t.Errorf("expected HEAD, got %s", r.Method)
		}
		w.Header().Set("Content-Type", "audio/mpeg")
	}))
	defer server.Close()

	resp, err := NewClient(DefaultClient).Head(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("head: %v", err)
	}
	if got := resp.Header.Get("Content-Type"); got != "audio/mpeg" {
		t.Errorf("unexpected content type %q", got)
	}
}

type recordingProgress struct {
	total    int64
	written  int
	finished bool
}

func (p *recordingProgress) Write(b []byte) (int, error) {
	p.written += len(b)
	return len(b), nil
}

func (p *recordingProgress) Finish() error {
	p.finished = true
	return nil
}

func TestHTTPClient_Download(t *testing.T) {
	payload := bytes.Repeat([]byte("0123456789"), ChunkSize/5)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "audio/mpeg")
		w.Write(payload)
	}))
	defer server.Close()

	progress := &recordingProgress{}
	client := NewClient(DefaultClient, WithProgress(func(total int64, _ string) Progress {
		progress.total = total
		return progress
	}))

	dir := t.TempDir()
	file, err := client.Download(context.Background(), server.URL+"/ep1.mp3", dir, func(resp *http.Response) string {
		return "ep1.mp3"
	})
	if err != nil {
		t.Fatalf("download: %v", err)
	}

	if file.Path != filepath.Join(dir, "ep1.mp3") {
		t.Errorf("unexpected path %q", file.Path)
	}
	if file.Size != int64(len(payload)) {
		t.Errorf("expected size %d, got %d", len(payload), file.Size)
	}
	if file.ContentType != "audio/mpeg" {
		t.Errorf("unexpected content type %q", file.ContentType)
	}

	got, err := os.ReadFile(file.Path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !bytes.Equal(got, payload) {
		t.Fatalf("downloaded bytes differ from payload")
	}

	if progress.written != len(payload) || !progress.finished {
		t.Errorf("progress saw %d bytes, finished=%v", progress.written, progress.finished)
	}

	entries, _ := os.ReadDir(dir)
	if len(entries) != 1 {
		t.Errorf("expected only the final file in %s, found %d entries", dir, len(entries))
	}
}

func TestHTTPClient_DownloadStatusLeavesNoFile(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	dir := t.TempDir()
	_, err := NewClient(DefaultClient).Download(context.Background(), server.URL, dir, func(*http.Response) string {
		return "never.mp3"
	})

	var statusErr *StatusError
	if !errors.As(err, &statusErr) || statusErr.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403 StatusError, got %v", err)
	}

	entries, _ := os.ReadDir(dir)
	if len(entries) != 0 {
		t.Fatalf("expected empty directory, found %d entries", len(entries))
	}
}

func TestResolveReference(t *testing.T) {
	tests := []struct {
		base, ref, want string
	}{
		{"https://example.com/shows/ep1", "/media/a.wav", "https://example.com/media/a.wav"},
		{"https://example.com/shows/ep1", "a.wav", "https://example.com/shows/a.wav"},
		{"https://example.com/shows/ep1", "https://cdn.example.com/a.wav", "https://cdn.example.com/a.wav"},
		{"https://example.com/", "  //cdn.example.com/b.mp3 ", "https://cdn.example.com/b.mp3"},
	}
	for _, tt := range tests {
		if got := ResolveReference(tt.base, tt.ref); got != tt.want {
			t.Errorf("ResolveReference(%q, %q) = %q, want %q", tt.base, tt.ref, got, tt.want)
		}
	}
}

func TestParseClientType(t *testing.T) {
	for in, want := range map[string]ClientType{
		"":           BrowserClient,
		"Browser":    BrowserClient,
		"cloudflare": CloudflareClient,
		"default":    DefaultClient,
	} {
		got, err := ParseClientType(in)
		if err != nil || got != want {
			t.Errorf("ParseClientType(%q) = %q, %v; want %q", in, got, err, want)
		}
	}
	if _, err := ParseClientType("netscape"); err == nil {
		t.Errorf("expected error for unknown profile")
	}
}

type failingProgress struct{}

func (failingProgress) Write([]byte) (int, error) { return 0, errors.New("disk full") }
func (failingProgress) Finish() error             { return nil }

func TestHTTPClient_DownloadStopsReadingAfterWriteError(t *testing.T) {
	const chunk = 1 << 20
	const chunks = 256

	var sent atomic.Int64
	done := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer close(done)
		w.Header().Set("Content-Type", "audio/mpeg")
		w.Header().Set("Content-Length", strconv.Itoa(chunk*chunks))
		buf := make([]byte, chunk)
		for i := 0; i < chunks; i++ {
			n, err := w.Write(buf)
			sent.Add(int64(n))
			if err != nil {
				return
			}
			if f, ok := w.(http.Flusher); ok {
				f.Flush()
			}
		}
	}))
	defer server.Close()

	client := NewClient(DefaultClient, WithProgress(func(int64, string) Progress {
		return failingProgress{}
	}))

	dir := t.TempDir()
	_, err := client.Download(context.Background(), server.URL+"/big.mp3", dir, func(*http.Response) string {
		return "big.mp3"
	})
	if err == nil || !strings.Contains(err.Error(), "disk full") {
		t.Fatalf("expected write error, got %v", err)
	}

	select {
	case <-done:
	case <-time.After(10 * time.Second):
		t.Fatal("server kept streaming after the download failed")
	}
	if got := sent.Load(); got >= 64*chunk {
		t.Fatalf("server sent %d bytes after the first failed write", got)
	}

	entries, _ := os.ReadDir(dir)
	if len(entries) != 0 {
		t.Fatalf("expected no files left behind, found %d entries", len(entries))
	}
}
