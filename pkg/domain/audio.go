package domain

import "time"

// Episode is the latest item of a podcast feed that carries an audio URL.
type Episode struct {
	// Title is the entry title, or "Unnamed Episode" when the feed has none.
	Title string

	// AudioURL is the absolute URL of the episode's audio enclosure.
	AudioURL string

	// PublishedAt is the raw publication date string from the feed, when present.
	PublishedAt string
}

// AcquiredAudio is an audio file fetched into the output directory.
//
// The file belongs to the caller once acquisition returns. Transcription only
// reads it and never removes it, including on failure.
type AcquiredAudio struct {
	LocalPath  string
	SourceKind SourceKind

	// SizeHint is the number of bytes written, or 0 when unknown.
	SizeHint int64
}

// TranscriptSegment is one recognized span of speech.
type TranscriptSegment struct {
	Text      string
	Start     time.Duration
	End       time.Duration
	HasTiming bool
}

// Transcript is the persisted result of transcribing one audio file.
type Transcript struct {
	SourcePath string
	OutputPath string
	Body       string
}
