package content

import "testing"

func TestEpisodeTitle(t *testing.T) {
	tests := []struct {
		name string
		html string
		want string
	}{
		{
			name: "og title preferred",
			html: `<html><head><title>Ep 4 | Weekly Show</title><meta property="og:title" content="Episode Four"></head><body></body></html>`,
			want: "Episode Four",
		},
		{
			name: "twitter title",
			html: `<html><head><meta name="twitter:title" content=" Pilot "></head><body></body></html>`,
			want: "Pilot",
		},
		{
			name: "document title without site name",
			html: `<html><head><title>The Long Interview | Weekly Show</title></head><body><p>notes</p></body></html>`,
			want: "The Long Interview",
		},
		{
			name: "heading fallback",
			html: `<html><body><h1> Listen Now </h1></body></html>`,
			want: "Listen Now",
		},
		{
			name: "empty document",
			html: "   ",
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := EpisodeTitle(tt.html); got != tt.want {
				t.Fatalf("EpisodeTitle() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestStripSiteName(t *testing.T) {
	if got := stripSiteName("A | B | Site"); got != "A | B" {
		t.Fatalf("stripSiteName = %q", got)
	}
	if got := stripSiteName("No separator"); got != "No separator" {
		t.Fatalf("stripSiteName = %q", got)
	}
}
