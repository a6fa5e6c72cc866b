package content

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-shiori/go-readability"
)

// titleSeparators split an episode title from a trailing site name, as in
// "Episode 4 | Weekly Show".
var titleSeparators = []string{" | ", " – ", " :: "}

// EpisodeTitle names the episode a page presents. Social metadata wins over
// the document title because hosting sites put the bare episode name there.
// It returns "" when the page carries no usable title.
func EpisodeTitle(html string) string {
	if strings.TrimSpace(html) == "" {
		return ""
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err == nil {
		for _, sel := range []string{"meta[property='og:title']", "meta[name='twitter:title']"} {
			if title, ok := doc.Find(sel).First().Attr("content"); ok {
				if title = strings.TrimSpace(title); title != "" {
					return title
				}
			}
		}
	}

	if article, err := readability.FromReader(strings.NewReader(html), nil); err == nil {
		if title := stripSiteName(article.Title); title != "" {
			return title
		}
	}

	if doc == nil {
		return ""
	}
	if title := stripSiteName(doc.Find("title").First().Text()); title != "" {
		return title
	}
	return strings.TrimSpace(doc.Find("h1").First().Text())
}

func stripSiteName(title string) string {
	title = strings.TrimSpace(title)
	for _, sep := range titleSeparators {
		if i := strings.LastIndex(title, sep); i > 0 {
			return strings.TrimSpace(title[:i])
		}
	}
	return title
}
