package feed

import (
	"fmt"
	"io"
	"strings"

	"github.com/mmcdole/gofeed"
	"github.com/mmcdole/gofeed/atom"
)

// Link is a feed link with its relation and media type.
type Link struct {
	Rel  string
	Type string
	Href string
}

// Entry is one feed item, reduced to the fields episode selection needs.
type Entry struct {
	Title       string
	PublishedAt string

	// Links holds the item's links. Atom links keep rel and type; RSS links
	// carry only an href.
	Links []Link

	// Enclosures holds RSS <enclosure> elements and Atom rel="enclosure" links.
	Enclosures []Link
}

// typedAtomTranslator keeps the rel/type of Atom entry links, which gofeed
// flattens to plain strings when translating.
type typedAtomTranslator struct {
	gofeed.DefaultAtomTranslator
	links [][]Link
}

func (t *typedAtomTranslator) Translate(feed interface{}) (*gofeed.Feed, error) {
	if af, ok := feed.(*atom.Feed); ok {
		t.links = make([][]Link, len(af.Entries))
		for i, entry := range af.Entries {
			for _, l := range entry.Links {
				if l == nil {
					continue
				}
				t.links[i] = append(t.links[i], Link{Rel: l.Rel, Type: l.Type, Href: l.Href})
			}
		}
	}
	return t.DefaultAtomTranslator.Translate(feed)
}

// ParseEntries parses an RSS or Atom document and returns its items in
// document order.
func ParseEntries(r io.Reader) ([]Entry, error) {
	translator := &typedAtomTranslator{}
	parser := gofeed.NewParser()
	parser.AtomTranslator = translator

	parsed, err := parser.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse feed: %w", err)
	}

	entries := make([]Entry, 0, len(parsed.Items))
	for i, item := range parsed.Items {
		if item == nil {
			continue
		}
		entry := Entry{
			Title:       strings.TrimSpace(item.Title),
			PublishedAt: strings.TrimSpace(item.Published),
		}

		if i < len(translator.links) && translator.links[i] != nil {
			entry.Links = translator.links[i]
		} else {
			for _, href := range item.Links {
				entry.Links = append(entry.Links, Link{Href: href})
			}
		}

		for _, enc := range item.Enclosures {
			if enc == nil {
				continue
			}
			entry.Enclosures = append(entry.Enclosures, Link{Rel: "enclosure", Type: enc.Type, Href: enc.URL})
		}

		entries = append(entries, entry)
	}
	return entries, nil
}

// AudioURL picks the audio URL of an entry: the first rel="enclosure" link
// with an audio type, then the first enclosure with an audio type.
func (e Entry) AudioURL() string {
	for _, l := range e.Links {
		if strings.EqualFold(l.Rel, "enclosure") && isAudioType(l.Type) && strings.TrimSpace(l.Href) != "" {
			return strings.TrimSpace(l.Href)
		}
	}
	for _, enc := range e.Enclosures {
		if isAudioType(enc.Type) && strings.TrimSpace(enc.Href) != "" {
			return strings.TrimSpace(enc.Href)
		}
	}
	return ""
}

func isAudioType(t string) bool {
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(t)), "audio/")
}
