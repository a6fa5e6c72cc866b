package domain

// SourceKind identifies which acquisition strategy applies to an input URL.
type SourceKind int

const (
	Unknown SourceKind = iota
	YouTube
	PodcastRSS
	ApplePodcasts
	DirectAudio
	EmbeddedPage
)

func (k SourceKind) String() string {
	switch k {
	case YouTube:
		return "YouTube"
	case PodcastRSS:
		return "PodcastRSS"
	case ApplePodcasts:
		return "ApplePodcasts"
	case DirectAudio:
		return "DirectAudio"
	case EmbeddedPage:
		return "EmbeddedPage"
	default:
		return "Unknown"
	}
}

// SourceURL is a user-supplied URL paired with its classification.
// Kind is assigned once by the classifier and never re-derived.
type SourceURL struct {
	Raw  string
	Kind SourceKind
}
