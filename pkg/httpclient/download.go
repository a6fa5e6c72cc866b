package httpclient

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// ChunkSize is the fixed buffer size used when streaming a download to disk.
const ChunkSize = 32 * 1024

// Progress receives the bytes copied by a download.
type Progress interface {
	io.Writer
	Finish() error
}

// ProgressFunc creates a progress sink for a download of total bytes
// (-1 when the server sent no length).
type ProgressFunc func(total int64, description string) Progress

// NameFunc chooses the destination file name once response headers are known.
type NameFunc func(resp *http.Response) string

// File describes a completed download.
type File struct {
	Path        string
	Size        int64
	ContentType string
}

// Download streams rawURL into dir under the name chosen by name. The body is
// written to a hidden temporary file first and renamed into place only after
// the copy succeeds, so a failed download never leaves a partial file behind.
func (c *HTTPClient) Download(ctx context.Context, rawURL, dir string, name NameFunc) (File, error) {
	resp, err := c.Get(ctx, rawURL)
	if err != nil {
		return File{}, err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		drainAndClose(resp.Body)
		return File{}, &StatusError{URL: rawURL, StatusCode: resp.StatusCode}
	}
	// Closing an unread body drops the connection, which is what aborts a
	// failed transfer.
	defer resp.Body.Close()

	filename := name(resp)
	if filename == "" {
		return File{}, errors.New("download: empty destination name")
	}
	dest := filepath.Join(dir, filename)
	tmp := filepath.Join(dir, "."+uuid.NewString()+".part")

	out, err := os.Create(tmp)
	if err != nil {
		return File{}, fmt.Errorf("create temp file: %w", err)
	}

	var sink io.Writer = out
	var progress Progress
	if c.progress != nil {
		progress = c.progress(resp.ContentLength, filename)
		if progress != nil {
			sink = io.MultiWriter(out, progress)
		}
	}

	written, copyErr := copyChunks(ctx, sink, resp.Body)
	if progress != nil {
		_ = progress.Finish()
	}
	closeErr := out.Close()

	if copyErr == nil && closeErr != nil {
		copyErr = fmt.Errorf("close temp file: %w", closeErr)
	}
	if copyErr != nil {
		_ = os.Remove(tmp)
		return File{}, copyErr
	}

	if err := os.Rename(tmp, dest); err != nil {
		_ = os.Remove(tmp)
		return File{}, fmt.Errorf("move download into place: %w", err)
	}

	return File{
		Path:        dest,
		Size:        written,
		ContentType: resp.Header.Get("Content-Type"),
	}, nil
}

// copyChunks copies src to dst ChunkSize bytes at a time, checking ctx
// between chunks.
func copyChunks(ctx context.Context, dst io.Writer, src io.Reader) (int64, error) {
	buf := make([]byte, ChunkSize)
	var written int64
	for {
		if err := ctx.Err(); err != nil {
			return written, err
		}
		n, readErr := src.Read(buf)
		if n > 0 {
			w, err := dst.Write(buf[:n])
			written += int64(w)
			if err != nil {
				return written, fmt.Errorf("write chunk: %w", err)
			}
			if w != n {
				return written, io.ErrShortWrite
			}
		}
		if readErr == io.EOF {
			return written, nil
		}
		if readErr != nil {
			return written, fmt.Errorf("read body: %w", readErr)
		}
	}
}
