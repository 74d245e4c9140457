package scraper

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// MicrodataExtractor is the second tier-2 strategy: schema.org microdata
// (itemscope/itemtype/itemprop attributes).
type MicrodataExtractor struct{}

// NewMicrodataExtractor creates a microdata extractor
func NewMicrodataExtractor() *MicrodataExtractor {
	return &MicrodataExtractor{}
}

func (e *MicrodataExtractor) Name() string { return "microdata" }

const microdataScopes = `[itemscope][itemtype*="schema.org/Event"], [itemscope][itemtype*="schema.org/Article"], [itemscope][itemtype*="schema.org/NewsArticle"], [itemscope][itemtype*="schema.org/BlogPosting"]`

func (e *MicrodataExtractor) CanExtract(doc *goquery.Document) bool {
	return doc.Find(microdataScopes).Length() > 0
}

func (e *MicrodataExtractor) Extract(doc *goquery.Document, pageURL string) []RawItem {
	var items []RawItem

	doc.Find(microdataScopes).Each(func(_ int, scope *goquery.Selection) {
		item := RawItem{
			Title:       itemprop(scope, "name"),
			Description: itemprop(scope, "description"),
			DateText:    itemprop(scope, "startDate"),
			SourceURL:   pageURL,
		}
		if item.Title == "" {
			item.Title = itemprop(scope, "headline")
		}
		if item.DateText == "" {
			item.DateText = itemprop(scope, "datePublished")
		}

		if img := scope.Find(`[itemprop="image"]`).First(); img.Length() > 0 {
			if src, ok := img.Attr("src"); ok {
				item.ImageURL = src
			} else if content, ok := img.Attr("content"); ok {
				item.ImageURL = content
			}
		}
		if loc := scope.Find(`[itemprop="location"] [itemprop="name"]`).First(); loc.Length() > 0 {
			item.Venue = strings.TrimSpace(loc.Text())
		}
		if link := scope.Find(`[itemprop="url"]`).First(); link.Length() > 0 {
			if href, ok := link.Attr("href"); ok {
				item.TicketURL = href
			}
		}

		if item.Title != "" {
			items = append(items, item)
		}
	})

	return items
}

// itemprop reads an itemprop value from content/datetime attributes or text
func itemprop(scope *goquery.Selection, name string) string {
	sel := scope.Find(`[itemprop="` + name + `"]`).First()
	if sel.Length() == 0 {
		return ""
	}
	if content, ok := sel.Attr("content"); ok && content != "" {
		return strings.TrimSpace(content)
	}
	if dt, ok := sel.Attr("datetime"); ok && dt != "" {
		return strings.TrimSpace(dt)
	}
	return strings.TrimSpace(sel.Text())
}
