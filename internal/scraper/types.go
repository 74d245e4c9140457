package scraper

import (
	"github.com/PuerkitoBio/goquery"
)

// RawItem is one candidate item produced by an extraction tier before
// normalization. Tier 3 items carry cleaned markdown for the downstream AI
// collaborator instead of structured fields.
type RawItem struct {
	Title       string
	Description string
	DateText    string
	Venue       string
	TicketURL   string
	ImageURL    string
	SourceURL   string

	// NeedsAI marks a tier-3 item: Markdown holds the cleaned candidate
	// section and structured fields above are unreliable or empty
	NeedsAI  bool
	Markdown string
}

// Extractor is one extraction strategy probed against a fetched page.
// Platform-specific extractors (tier 1) key off a DOM footprint; generic
// structured-data extractors (tier 2) key off schema.org vocabulary.
type Extractor interface {
	Name() string
	CanExtract(doc *goquery.Document) bool
	Extract(doc *goquery.Document, pageURL string) []RawItem
}

// Item is a normalized, deduplicatable item ready for the fetch step
type Item struct {
	RawItem
	// DedupID is computed from (title, normalized date, venue)
	DedupID        string
	NormalizedDate string
}
