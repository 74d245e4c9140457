package handlers

import (
	"context"
	"fmt"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/conduit/internal/engine"
	"github.com/ternarybob/conduit/internal/interfaces"
	"github.com/ternarybob/conduit/internal/models"
	"github.com/ternarybob/conduit/internal/scraper"
)

// WebScraperFetchHandler bridges the tiered extraction engine into the
// fetch-step contract. Pagination, tier selection and dedup claiming all
// happen inside the engine; this handler shapes the result.
type WebScraperFetchHandler struct {
	engine *scraper.Engine
	logger arbor.ILogger
}

// NewWebScraperFetchHandler creates the scraper fetch handler
func NewWebScraperFetchHandler(scrapeEngine *scraper.Engine, logger arbor.ILogger) *WebScraperFetchHandler {
	return &WebScraperFetchHandler{engine: scrapeEngine, logger: logger}
}

func (h *WebScraperFetchHandler) Fetch(ctx context.Context, req interfaces.FetchRequest) (*models.FetchResult, error) {
	pageURL, err := requireString(req.Settings, "url")
	if err != nil {
		return nil, err
	}

	item, err := h.engine.FetchOne(ctx, scraper.Request{
		JobID:      req.JobID,
		FlowStepID: req.FlowStepID,
		SourceType: "web_scraper",
		URL:        pageURL,
		PageParam:  stringSetting(req.Settings, "page_param"),
		Overrides: scraper.Overrides{
			Venue:    stringSetting(req.Settings, "venue"),
			VenueMap: stringMapSetting(req.Settings, "venue_map"),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", engine.ErrTransientSource, err)
	}
	if item == nil {
		return &models.FetchResult{}, nil
	}

	body := item.Description
	if item.NeedsAI {
		// tier-3 result: page markdown for a downstream AI step to structure
		body = item.Markdown
	}

	h.logger.Info().
		Str("title", item.Title).
		Str("source_url", item.SourceURL).
		Bool("needs_ai", item.NeedsAI).
		Msg("Scraped item selected")

	return &models.FetchResult{Item: &models.FetchItem{
		Title: item.Title,
		Body:  body,
		Metadata: map[string]interface{}{
			"source_url": item.SourceURL,
			"image_url":  item.ImageURL,
			"ticket_url": item.TicketURL,
			"event_date": item.NormalizedDate,
			"venue":      item.Venue,
			"needs_ai":   item.NeedsAI,
		},
	}}, nil
}
