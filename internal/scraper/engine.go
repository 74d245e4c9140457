package scraper

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/conduit/internal/common"
	"github.com/ternarybob/conduit/internal/interfaces"
)

// Request is one scraping invocation on behalf of a fetch step
type Request struct {
	JobID      string
	FlowStepID string
	SourceType string
	URL        string
	PageParam  string // query parameter for pagination, default "page"
	Overrides  Overrides
}

// Engine is the universal web scraper: a bounded pagination loop running
// tiered extraction per page. The single-item model applies: the first
// not-yet-processed eligible item stops the loop and is returned.
type Engine struct {
	fetcher   *PageFetcher
	tier1     []Extractor // platform-specific, probed in registration order
	tier2     []Extractor // generic structured data (JSON-LD, microdata)
	tier3     Extractor   // AI-assisted fallback
	processor *StructuredDataProcessor
	dedup     interfaces.ProcessedItemStorage
	maxPages  int
	logger    arbor.ILogger
}

// NewEngine wires the extraction tiers in priority order
func NewEngine(config *common.ScraperConfig, dedup interfaces.ProcessedItemStorage, engineData interfaces.EngineDataStorage, logger arbor.ILogger) *Engine {
	maxPages := config.MaxPages
	if maxPages <= 0 {
		maxPages = 20
	}
	return &Engine{
		fetcher: NewPageFetcher(config, logger),
		tier1: []Extractor{
			NewEventbriteExtractor(),
			NewDiceExtractor(),
			NewSquarespaceEventsExtractor(),
		},
		tier2: []Extractor{
			NewJSONLDExtractor(),
			NewMicrodataExtractor(),
		},
		tier3:     NewAIExtractor(),
		processor: NewStructuredDataProcessor(engineData, logger),
		dedup:     dedup,
		maxPages:  maxPages,
		logger:    logger,
	}
}

// FetchOne walks pages until it finds one unprocessed item. A nil item with
// nil error means the source has nothing new. Page-level failures advance
// pagination, except on page 1 where they surface as handler failure.
func (e *Engine) FetchOne(ctx context.Context, req Request) (*Item, error) {
	if req.URL == "" {
		return nil, fmt.Errorf("scrape URL is required")
	}

	for page := 1; page <= e.maxPages; page++ {
		pageURL, err := e.pageURL(req, page)
		if err != nil {
			return nil, err
		}

		html, err := e.fetcher.Fetch(ctx, pageURL)
		if err != nil {
			if page == 1 {
				return nil, fmt.Errorf("failed to fetch first page: %w", err)
			}
			e.logger.Warn().Err(err).Str("url", pageURL).Int("page", page).Msg("Page fetch failed, advancing")
			continue
		}

		doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
		if err != nil {
			if page == 1 {
				return nil, fmt.Errorf("failed to parse first page: %w", err)
			}
			e.logger.Warn().Err(err).Str("url", pageURL).Int("page", page).Msg("Page parse failed, advancing")
			continue
		}

		raws, tier := e.extract(doc, pageURL)
		if len(raws) == 0 {
			e.logger.Debug().Str("url", pageURL).Int("page", page).Msg("No items on page")
			continue
		}

		e.logger.Debug().
			Str("tier", tier).
			Int("candidates", len(raws)).
			Int("page", page).
			Msg("Extraction tier produced candidates")

		item, err := e.firstUnprocessed(ctx, req, raws)
		if err != nil {
			return nil, err
		}
		if item != nil {
			e.processor.StoreEngineData(ctx, req.JobID, *item)
			return item, nil
		}
	}

	return nil, nil
}

// extract runs the tiers in strict priority order; first success wins
func (e *Engine) extract(doc *goquery.Document, pageURL string) ([]RawItem, string) {
	for _, extractor := range e.tier1 {
		if !extractor.CanExtract(doc) {
			continue
		}
		if items := extractor.Extract(doc, pageURL); len(items) > 0 {
			return items, extractor.Name()
		}
	}
	for _, extractor := range e.tier2 {
		if !extractor.CanExtract(doc) {
			continue
		}
		if items := extractor.Extract(doc, pageURL); len(items) > 0 {
			return items, extractor.Name()
		}
	}
	if e.tier3 != nil {
		if items := e.tier3.Extract(doc, pageURL); len(items) > 0 {
			return items, e.tier3.Name()
		}
	}
	return nil, ""
}

// firstUnprocessed normalizes candidates in source order and claims the
// first one the dedup tracker has not seen. Claiming uses insert-or-fail so
// a concurrent run losing the race simply moves on.
func (e *Engine) firstUnprocessed(ctx context.Context, req Request, raws []RawItem) (*Item, error) {
	for _, raw := range raws {
		item := e.processor.Process(raw, req.Overrides)

		processed, err := e.dedup.IsProcessed(ctx, req.FlowStepID, req.SourceType, item.DedupID)
		if err != nil {
			return nil, fmt.Errorf("dedup query failed: %w", err)
		}
		if processed {
			continue
		}

		if err := e.dedup.MarkProcessed(ctx, req.FlowStepID, req.SourceType, item.DedupID); err != nil {
			if errors.Is(err, interfaces.ErrAlreadyProcessed) {
				continue // concurrent run claimed it first
			}
			return nil, fmt.Errorf("dedup mark failed: %w", err)
		}
		return &item, nil
	}
	return nil, nil
}

// pageURL builds the URL for a pagination step; page 1 is the base URL
func (e *Engine) pageURL(req Request, page int) (string, error) {
	if page == 1 {
		return req.URL, nil
	}
	parsed, err := url.Parse(req.URL)
	if err != nil {
		return "", fmt.Errorf("invalid scrape URL %s: %w", req.URL, err)
	}
	param := req.PageParam
	if param == "" {
		param = "page"
	}
	query := parsed.Query()
	query.Set(param, strconv.Itoa(page))
	parsed.RawQuery = query.Encode()
	return parsed.String(), nil
}
