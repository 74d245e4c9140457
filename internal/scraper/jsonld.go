package scraper

import (
	"encoding/json"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// JSONLDExtractor is the first tier-2 strategy: schema.org JSON-LD blocks.
// It understands Event and Article shapes plus @graph containers.
type JSONLDExtractor struct{}

// NewJSONLDExtractor creates a JSON-LD extractor
func NewJSONLDExtractor() *JSONLDExtractor {
	return &JSONLDExtractor{}
}

func (e *JSONLDExtractor) Name() string { return "jsonld" }

func (e *JSONLDExtractor) CanExtract(doc *goquery.Document) bool {
	return doc.Find(`script[type="application/ld+json"]`).Length() > 0
}

func (e *JSONLDExtractor) Extract(doc *goquery.Document, pageURL string) []RawItem {
	var items []RawItem

	doc.Find(`script[type="application/ld+json"]`).Each(func(_ int, sel *goquery.Selection) {
		raw := strings.TrimSpace(sel.Text())
		if raw == "" {
			return
		}

		var payload interface{}
		if err := json.Unmarshal([]byte(raw), &payload); err != nil {
			return // malformed block, ignore
		}

		for _, node := range flattenLD(payload) {
			if item, ok := itemFromLDNode(node, pageURL); ok {
				items = append(items, item)
			}
		}
	})

	return items
}

// flattenLD expands arrays and @graph containers into a flat node list
func flattenLD(payload interface{}) []map[string]interface{} {
	var nodes []map[string]interface{}
	switch v := payload.(type) {
	case []interface{}:
		for _, elem := range v {
			nodes = append(nodes, flattenLD(elem)...)
		}
	case map[string]interface{}:
		if graph, ok := v["@graph"].([]interface{}); ok {
			for _, elem := range graph {
				nodes = append(nodes, flattenLD(elem)...)
			}
			return nodes
		}
		nodes = append(nodes, v)
	}
	return nodes
}

// itemFromLDNode converts one schema.org node into a RawItem when its type
// is a supported content shape
func itemFromLDNode(node map[string]interface{}, pageURL string) (RawItem, bool) {
	typeName := ldString(node["@type"])
	switch typeName {
	case "Event", "MusicEvent", "TheaterEvent", "ComedyEvent", "Festival",
		"Article", "NewsArticle", "BlogPosting":
	default:
		return RawItem{}, false
	}

	item := RawItem{
		Title:       ldString(node["name"]),
		Description: ldString(node["description"]),
		DateText:    ldString(node["startDate"]),
		SourceURL:   pageURL,
		TicketURL:   ldString(node["url"]),
	}
	if item.Title == "" {
		item.Title = ldString(node["headline"])
	}
	if item.DateText == "" {
		item.DateText = ldString(node["datePublished"])
	}

	switch img := node["image"].(type) {
	case string:
		item.ImageURL = img
	case []interface{}:
		if len(img) > 0 {
			item.ImageURL = ldString(img[0])
		}
	case map[string]interface{}:
		item.ImageURL = ldString(img["url"])
	}

	if location, ok := node["location"].(map[string]interface{}); ok {
		item.Venue = ldString(location["name"])
	}

	if item.Title == "" {
		return RawItem{}, false
	}
	return item, true
}

// ldString coerces the loose typing of JSON-LD values into a string
func ldString(v interface{}) string {
	switch s := v.(type) {
	case string:
		return strings.TrimSpace(s)
	case []interface{}:
		if len(s) > 0 {
			return ldString(s[0])
		}
	case map[string]interface{}:
		// e.g. {"@id": "...", "name": "..."}
		if name, ok := s["name"].(string); ok {
			return strings.TrimSpace(name)
		}
	}
	return ""
}
