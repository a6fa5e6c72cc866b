package domain

import (
	"errors"
	"fmt"
	"strings"
)

// FailureKind names one category of pipeline failure.
type FailureKind string

const (
	KindUnsupportedURL      FailureKind = "UnsupportedURL"
	KindFeedNotFound        FailureKind = "FeedNotFound"
	KindNoEpisodesFound     FailureKind = "NoEpisodesFound"
	KindNoAudioURLInEpisode FailureKind = "NoAudioURLInEpisode"
	KindNoAudioFound        FailureKind = "NoAudioFound"
	KindDownloadFailed      FailureKind = "DownloadFailed"
	KindExtractionFailed    FailureKind = "ExtractionFailed"
	KindFileNotFound        FailureKind = "FileNotFound"
	KindModelUnavailable    FailureKind = "ModelUnavailable"
	KindTranscriptionFailed FailureKind = "TranscriptionFailed"
)

// Sentinels for errors.Is. A *Failure matches any sentinel of the same kind.
var (
	ErrUnsupportedURL      = &Failure{Kind: KindUnsupportedURL}
	ErrFeedNotFound        = &Failure{Kind: KindFeedNotFound}
	ErrNoEpisodesFound     = &Failure{Kind: KindNoEpisodesFound}
	ErrNoAudioURLInEpisode = &Failure{Kind: KindNoAudioURLInEpisode}
	ErrNoAudioFound        = &Failure{Kind: KindNoAudioFound}
	ErrDownloadFailed      = &Failure{Kind: KindDownloadFailed}
	ErrExtractionFailed    = &Failure{Kind: KindExtractionFailed}
	ErrFileNotFound        = &Failure{Kind: KindFileNotFound}
	ErrModelUnavailable    = &Failure{Kind: KindModelUnavailable}
	ErrTranscriptionFailed = &Failure{Kind: KindTranscriptionFailed}
)

// Failure is the typed error every pipeline stage reports.
type Failure struct {
	Kind FailureKind

	// Status is the HTTP status code for download failures, 0 otherwise.
	Status int

	// Detail is a human readable explanation (URL, path, engine message).
	Detail string

	Err error
}

// Fail builds a Failure of the given kind.
func Fail(kind FailureKind, detail string, err error) *Failure {
	return &Failure{Kind: kind, Detail: detail, Err: err}
}

// FailStatus builds a DownloadFailed carrying the HTTP status.
func FailStatus(status int, detail string) *Failure {
	return &Failure{Kind: KindDownloadFailed, Status: status, Detail: detail}
}

func (f *Failure) Error() string {
	var b strings.Builder
	b.WriteString(string(f.Kind))
	if f.Status != 0 {
		fmt.Fprintf(&b, " (HTTP %d)", f.Status)
	}
	if f.Detail != "" {
		b.WriteString(": ")
		b.WriteString(f.Detail)
	}
	if f.Err != nil {
		b.WriteString(": ")
		b.WriteString(f.Err.Error())
	}
	return b.String()
}

func (f *Failure) Unwrap() error {
	return f.Err
}

// Is reports whether target is a Failure of the same kind.
func (f *Failure) Is(target error) bool {
	t, ok := target.(*Failure)
	if !ok {
		return false
	}
	return t.Kind == f.Kind
}

// AsFailure returns the Failure inside err, or wraps err as a Failure of the
// fallback kind. It returns nil for a nil error.
func AsFailure(err error, fallback FailureKind) *Failure {
	if err == nil {
		return nil
	}
	var f *Failure
	if errors.As(err, &f) {
		return f
	}
	return &Failure{Kind: fallback, Err: err}
}
