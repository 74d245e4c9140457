package scraper

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Tier-1 extractors key off the DOM footprint of specific event platforms.
// They are probed in registration order; the first CanExtract winner runs.

// EventbriteExtractor recognizes embedded Eventbrite listing widgets
type EventbriteExtractor struct{}

func NewEventbriteExtractor() *EventbriteExtractor { return &EventbriteExtractor{} }

func (e *EventbriteExtractor) Name() string { return "eventbrite" }

func (e *EventbriteExtractor) CanExtract(doc *goquery.Document) bool {
	return doc.Find(`[data-testid="event-card"], .eds-event-card-content, article.eds-l-pad-all-4`).Length() > 0
}

func (e *EventbriteExtractor) Extract(doc *goquery.Document, pageURL string) []RawItem {
	var items []RawItem

	doc.Find(`[data-testid="event-card"], .eds-event-card-content`).Each(func(_ int, card *goquery.Selection) {
		item := RawItem{SourceURL: pageURL}

		if title := card.Find("h2, h3, .eds-event-card-content__title").First(); title.Length() > 0 {
			item.Title = strings.TrimSpace(title.Text())
		}
		if date := card.Find("time, .eds-event-card-content__sub-title").First(); date.Length() > 0 {
			if dt, ok := date.Attr("datetime"); ok && dt != "" {
				item.DateText = dt
			} else {
				item.DateText = strings.TrimSpace(date.Text())
			}
		}
		if venue := card.Find(`[data-subcontent-key="location"], .card-text--truncated__one`).First(); venue.Length() > 0 {
			item.Venue = strings.TrimSpace(venue.Text())
		}
		if link := card.Find("a[href]").First(); link.Length() > 0 {
			item.TicketURL, _ = link.Attr("href")
		}
		if img := card.Find("img[src]").First(); img.Length() > 0 {
			item.ImageURL, _ = img.Attr("src")
		}

		if item.Title != "" {
			items = append(items, item)
		}
	})

	return items
}

// DiceExtractor recognizes dice.fm embedded event listings
type DiceExtractor struct{}

func NewDiceExtractor() *DiceExtractor { return &DiceExtractor{} }

func (e *DiceExtractor) Name() string { return "dice" }

func (e *DiceExtractor) CanExtract(doc *goquery.Document) bool {
	if doc.Find(`[class*="dice_event"], .dice-widget, [data-dice-event-id]`).Length() > 0 {
		return true
	}
	found := false
	doc.Find("script[src]").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if src, ok := s.Attr("src"); ok && strings.Contains(src, "dice.fm") {
			found = true
			return false
		}
		return true
	})
	return found
}

func (e *DiceExtractor) Extract(doc *goquery.Document, pageURL string) []RawItem {
	var items []RawItem

	doc.Find(`[class*="dice_event"], [data-dice-event-id]`).Each(func(_ int, card *goquery.Selection) {
		item := RawItem{SourceURL: pageURL}

		if title := card.Find(`[class*="title"], h3, h4`).First(); title.Length() > 0 {
			item.Title = strings.TrimSpace(title.Text())
		}
		if date := card.Find(`[class*="date"], time`).First(); date.Length() > 0 {
			item.DateText = strings.TrimSpace(date.Text())
		}
		if venue := card.Find(`[class*="venue"]`).First(); venue.Length() > 0 {
			item.Venue = strings.TrimSpace(venue.Text())
		}
		if link := card.Find("a[href]").First(); link.Length() > 0 {
			item.TicketURL, _ = link.Attr("href")
		}
		if img := card.Find("img[src]").First(); img.Length() > 0 {
			item.ImageURL, _ = img.Attr("src")
		}

		if item.Title != "" {
			items = append(items, item)
		}
	})

	return items
}

// SquarespaceEventsExtractor recognizes Squarespace event collection pages
type SquarespaceEventsExtractor struct{}

func NewSquarespaceEventsExtractor() *SquarespaceEventsExtractor {
	return &SquarespaceEventsExtractor{}
}

func (e *SquarespaceEventsExtractor) Name() string { return "squarespace_events" }

func (e *SquarespaceEventsExtractor) CanExtract(doc *goquery.Document) bool {
	return doc.Find("article.eventlist-event, .eventlist-column-info").Length() > 0
}

func (e *SquarespaceEventsExtractor) Extract(doc *goquery.Document, pageURL string) []RawItem {
	var items []RawItem

	doc.Find("article.eventlist-event").Each(func(_ int, card *goquery.Selection) {
		item := RawItem{SourceURL: pageURL}

		if title := card.Find(".eventlist-title a, .eventlist-title").First(); title.Length() > 0 {
			item.Title = strings.TrimSpace(title.Text())
		}
		if date := card.Find("time.event-date, .eventlist-datetag-startdate").First(); date.Length() > 0 {
			if dt, ok := date.Attr("datetime"); ok && dt != "" {
				item.DateText = dt
			} else {
				item.DateText = strings.TrimSpace(date.Text())
			}
		}
		if desc := card.Find(".eventlist-excerpt").First(); desc.Length() > 0 {
			item.Description = strings.TrimSpace(desc.Text())
		}
		if link := card.Find(".eventlist-title a[href]").First(); link.Length() > 0 {
			item.TicketURL, _ = link.Attr("href")
		}
		if img := card.Find("img[data-src], img[src]").First(); img.Length() > 0 {
			if src, ok := img.Attr("data-src"); ok {
				item.ImageURL = src
			} else {
				item.ImageURL, _ = img.Attr("src")
			}
		}

		if item.Title != "" {
			items = append(items, item)
		}
	})

	return items
}
