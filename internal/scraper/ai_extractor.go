package scraper

import (
	"strings"
	"unicode/utf8"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/PuerkitoBio/goquery"
)

// candidateSelectors locate page sections likely to contain listings when
// no structured data exists, probed in order of specificity
var candidateSelectors = []string{
	"main [class*='event']",
	"main [class*='listing']",
	"main [class*='show']",
	"[class*='event-list']",
	"[id*='events']",
	"main article",
	"main",
	"body",
}

// AIExtractor is the tier-3 fallback: it locates candidate HTML sections
// heuristically and hands cleaned markdown to the downstream AI collaborator.
// This tier produces no structured fields itself.
type AIExtractor struct {
	converter *md.Converter
}

// NewAIExtractor creates the AI fallback extractor
func NewAIExtractor() *AIExtractor {
	converter := md.NewConverter("", true, nil)
	return &AIExtractor{converter: converter}
}

func (e *AIExtractor) Name() string { return "ai_fallback" }

// CanExtract always succeeds: the fallback takes whatever page it is given
func (e *AIExtractor) CanExtract(doc *goquery.Document) bool { return true }

func (e *AIExtractor) Extract(doc *goquery.Document, pageURL string) []RawItem {
	// Strip noise before selecting candidates
	doc.Find("script, style, noscript, nav, footer, header, iframe").Remove()

	var section *goquery.Selection
	for _, selector := range candidateSelectors {
		found := doc.Find(selector).First()
		if found.Length() > 0 && len(strings.TrimSpace(found.Text())) > 100 {
			section = found
			break
		}
	}
	if section == nil {
		return nil
	}

	html, err := goquery.OuterHtml(section)
	if err != nil {
		return nil
	}

	markdown, err := e.converter.ConvertString(html)
	if err != nil {
		return nil
	}
	markdown = strings.TrimSpace(markdown)
	if markdown == "" {
		return nil
	}

	// Bound what we hand to the model, cutting on a rune boundary
	const maxMarkdown = 16000
	if len(markdown) > maxMarkdown {
		cut := maxMarkdown
		for cut > 0 && !utf8.RuneStart(markdown[cut]) {
			cut--
		}
		markdown = markdown[:cut]
	}

	return []RawItem{{
		SourceURL: pageURL,
		NeedsAI:   true,
		Markdown:  markdown,
	}}
}
