package scraper

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"strings"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/conduit/internal/interfaces"
	"github.com/ternarybob/conduit/internal/models"
)

// dateLayouts are tried in order when normalizing extracted date text
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
	"January 2, 2006",
	"Jan 2, 2006",
	"2 January 2006",
	"Monday, January 2, 2006",
	"01/02/2006",
}

// Overrides are handler-configured corrections applied during normalization
type Overrides struct {
	// Venue replaces the extracted venue when set
	Venue string
	// VenueMap rewrites specific extracted venue names
	VenueMap map[string]string
}

// StructuredDataProcessor is the single funnel every extraction tier feeds:
// it applies venue/taxonomy overrides, computes the dedup identifier from
// (title, normalized date, venue), and stores auxiliary engine fields in the
// per-job side channel.
type StructuredDataProcessor struct {
	engineData interfaces.EngineDataStorage
	logger     arbor.ILogger
}

// NewStructuredDataProcessor creates the processor
func NewStructuredDataProcessor(engineData interfaces.EngineDataStorage, logger arbor.ILogger) *StructuredDataProcessor {
	return &StructuredDataProcessor{engineData: engineData, logger: logger}
}

// Process normalizes one raw item. Tier-3 items pass through with a dedup
// identifier computed from their source URL since structured fields are not
// available yet.
func (p *StructuredDataProcessor) Process(raw RawItem, overrides Overrides) Item {
	item := Item{RawItem: raw}

	if overrides.Venue != "" {
		item.Venue = overrides.Venue
	} else if mapped, ok := overrides.VenueMap[item.Venue]; ok {
		item.Venue = mapped
	}

	item.NormalizedDate = normalizeDate(raw.DateText)

	if raw.NeedsAI {
		item.DedupID = dedupHash(raw.SourceURL, "", "")
	} else {
		item.DedupID = dedupHash(raw.Title, item.NormalizedDate, item.Venue)
	}
	return item
}

// StoreEngineData persists the item's auxiliary fields keyed by job ID for
// later attribution by output handlers
func (p *StructuredDataProcessor) StoreEngineData(ctx context.Context, jobID string, item Item) {
	if p.engineData == nil || jobID == "" {
		return
	}
	data := &models.EngineData{
		JobID:     jobID,
		SourceURL: item.SourceURL,
		ImageURL:  item.ImageURL,
		TicketURL: item.TicketURL,
		EventDate: item.NormalizedDate,
	}
	if err := p.engineData.Save(ctx, data); err != nil {
		p.logger.Warn().Err(err).Str("job_id", jobID).Msg("Failed to store engine data")
	}
}

// normalizeDate reduces free-form date text to YYYY-MM-DD where possible,
// falling back to the trimmed original
func normalizeDate(text string) string {
	text = strings.TrimSpace(text)
	if text == "" {
		return ""
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, text); err == nil {
			return t.Format("2006-01-02")
		}
	}
	return text
}

// dedupHash computes the stable dedup identifier
func dedupHash(title, date, venue string) string {
	normalized := strings.ToLower(strings.TrimSpace(title)) + "|" + date + "|" + strings.ToLower(strings.TrimSpace(venue))
	sum := sha1.Sum([]byte(normalized))
	return hex.EncodeToString(sum[:])
}
