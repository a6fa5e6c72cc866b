package content

import (
	"errors"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var (
	errEmptyHTML         = errors.New("empty HTML content")
	ErrNoAudioTag        = errors.New("no audio tag with a source found in HTML")
	errFailedToParseHTML = errors.New("failed to parse HTML for audio tag")
)

// FindAudioURL returns the source of the first <audio> element on the page
// that names one, either through its own src attribute or through a child
// <source src>. The result may be relative; callers resolve it against the
// page URL.
func FindAudioURL(html string) (string, error) {
	html = strings.TrimSpace(html)
	if html == "" {
		return "", errEmptyHTML
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", errors.Join(errFailedToParseHTML, err)
	}

	var found string
	doc.Find("audio").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		if src := attr(sel, "src"); src != "" {
			found = src
			return false
		}
		sel.Find("source[src]").EachWithBreak(func(_ int, source *goquery.Selection) bool {
			found = attr(source, "src")
			return found == ""
		})
		return found == ""
	})

	if found == "" {
		return "", ErrNoAudioTag
	}
	return found, nil
}

func attr(sel *goquery.Selection, name string) string {
	value, ok := sel.Attr(name)
	if !ok {
		return ""
	}
	return strings.TrimSpace(value)
}
