package handlers

import (
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/conduit/internal/engine"
	"github.com/ternarybob/conduit/internal/interfaces"
	"github.com/ternarybob/conduit/internal/models"
)

// rssFeed is the subset of RSS 2.0 / Atom the fetcher consumes
type rssFeed struct {
	XMLName xml.Name   `xml:"rss"`
	Channel rssChannel `xml:"channel"`
}

type rssChannel struct {
	Title string    `xml:"title"`
	Items []rssItem `xml:"item"`
}

type rssItem struct {
	Title       string `xml:"title"`
	Link        string `xml:"link"`
	GUID        string `xml:"guid"`
	Description string `xml:"description"`
	Content     string `xml:"encoded"` // content:encoded
	PubDate     string `xml:"pubDate"`
	Author      string `xml:"creator"` // dc:creator
}

// RSSFetchHandler pulls the first unprocessed item from an RSS 2.0 feed.
// Feed order is the source's natural order; dedup keys on GUID, falling
// back to the item link.
type RSSFetchHandler struct {
	client *http.Client
	dedup  interfaces.ProcessedItemStorage
	logger arbor.ILogger
}

// NewRSSFetchHandler creates the RSS fetch handler
func NewRSSFetchHandler(client *http.Client, dedup interfaces.ProcessedItemStorage, logger arbor.ILogger) *RSSFetchHandler {
	return &RSSFetchHandler{client: client, dedup: dedup, logger: logger}
}

func (h *RSSFetchHandler) Fetch(ctx context.Context, req interfaces.FetchRequest) (*models.FetchResult, error) {
	feedURL, err := requireString(req.Settings, "feed_url")
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, feedURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid feed_url %s: %v", engine.ErrConfiguration, feedURL, err)
	}
	httpReq.Header.Set("Accept", "application/rss+xml, application/xml, text/xml")

	resp, err := h.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: feed request failed: %v", engine.ErrTransientSource, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: feed returned status %d", engine.ErrTransientSource, resp.StatusCode)
	}

	var feed rssFeed
	if err := xml.NewDecoder(resp.Body).Decode(&feed); err != nil {
		return nil, fmt.Errorf("%w: feed parse failed: %v", engine.ErrContentValidation, err)
	}

	for _, item := range feed.Channel.Items {
		itemID := item.GUID
		if itemID == "" {
			itemID = item.Link
		}
		if itemID == "" {
			continue
		}

		processed, err := h.dedup.IsProcessed(ctx, req.FlowStepID, "rss", itemID)
		if err != nil {
			return nil, fmt.Errorf("dedup query failed: %w", err)
		}
		if processed {
			continue
		}
		if err := h.dedup.MarkProcessed(ctx, req.FlowStepID, "rss", itemID); err != nil {
			if errors.Is(err, interfaces.ErrAlreadyProcessed) {
				continue
			}
			return nil, fmt.Errorf("dedup mark failed: %w", err)
		}

		body := item.Content
		if strings.TrimSpace(body) == "" {
			body = item.Description
		}

		h.logger.Info().
			Str("feed", feed.Channel.Title).
			Str("item_id", itemID).
			Msg("New RSS item selected")

		return &models.FetchResult{Item: &models.FetchItem{
			Title: strings.TrimSpace(item.Title),
			Body:  body,
			Metadata: map[string]interface{}{
				"source_url": item.Link,
				"guid":       itemID,
				"published":  item.PubDate,
				"author":     item.Author,
			},
		}}, nil
	}

	return &models.FetchResult{}, nil
}
