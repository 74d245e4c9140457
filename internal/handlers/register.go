package handlers

import (
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/conduit/internal/auth"
	"github.com/ternarybob/conduit/internal/httpclient"
	"github.com/ternarybob/conduit/internal/interfaces"
	"github.com/ternarybob/conduit/internal/models"
	"github.com/ternarybob/conduit/internal/scraper"
)

// Dependencies carries the shared services the built-in handlers need
type Dependencies struct {
	Dedup     interfaces.ProcessedItemStorage
	WordPress *auth.AppPasswordProvider
	Scraper   *scraper.Engine
	Timeout   time.Duration
	Logger    arbor.ILogger
}

// RegisterAll registers the built-in handler set. Called once at startup;
// a registration failure is a programming error and aborts boot.
func RegisterAll(registry interfaces.HandlerRegistry, deps Dependencies) error {
	timeout := deps.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	client := httpclient.NewDefaultHTTPClient(timeout)

	descriptors := []interfaces.HandlerDescriptor{
		{
			Slug:  "rss",
			Type:  models.StepTypeFetch,
			Label: "RSS Feed",
			SettingsSchema: []interfaces.SettingField{
				{Name: "feed_url", Type: "url", Required: true, Label: "Feed URL"},
			},
			Fetch: NewRSSFetchHandler(client, deps.Dedup, deps.Logger),
		},
		{
			Slug:  "github",
			Type:  models.StepTypeFetch,
			Label: "GitHub Issues",
			SettingsSchema: []interfaces.SettingField{
				{Name: "owner", Type: "string", Required: true, Label: "Repository owner"},
				{Name: "repo", Type: "string", Required: true, Label: "Repository name"},
				{Name: "state", Type: "string", Required: false, Label: "Issue state filter"},
				{Name: "labels", Type: "string", Required: false, Label: "Comma-separated labels"},
				{Name: "token", Type: "string", Required: false, Label: "Access token"},
			},
			Fetch: NewGitHubFetchHandler(deps.Dedup, deps.Logger),
		},
		{
			Slug:  "wordpress_local",
			Type:  models.StepTypeFetch,
			Label: "WordPress Posts",
			SettingsSchema: []interfaces.SettingField{
				{Name: "base_url", Type: "url", Required: false, Label: "Site base URL"},
				{Name: "status", Type: "string", Required: false, Label: "Post status filter"},
				{Name: "per_page", Type: "int", Required: false, Label: "Posts per query"},
			},
			AuthProvider: deps.WordPress.Name(),
			Fetch:        NewWordPressFetchHandler(client, deps.WordPress, deps.Dedup, deps.Logger),
		},
		{
			Slug:  "web_scraper",
			Type:  models.StepTypeFetch,
			Label: "Web Scraper",
			SettingsSchema: []interfaces.SettingField{
				{Name: "url", Type: "url", Required: true, Label: "Listing page URL"},
				{Name: "page_param", Type: "string", Required: false, Label: "Pagination query parameter"},
				{Name: "venue", Type: "string", Required: false, Label: "Venue override"},
			},
			Fetch: NewWebScraperFetchHandler(deps.Scraper, deps.Logger),
		},
		{
			Slug:  "wordpress",
			Type:  models.StepTypePublish,
			Label: "WordPress",
			SettingsSchema: []interfaces.SettingField{
				{Name: "base_url", Type: "url", Required: false, Label: "Site base URL"},
				{Name: "status", Type: "string", Required: false, Label: "Post status (default draft)"},
				{Name: "categories", Type: "string", Required: false, Label: "Comma-separated category IDs"},
			},
			AuthProvider: deps.WordPress.Name(),
			Publish:      NewWordPressPublishHandler(client, deps.WordPress, deps.Logger),
		},
		{
			Slug:  "webhook",
			Type:  models.StepTypePublish,
			Label: "Webhook",
			SettingsSchema: []interfaces.SettingField{
				{Name: "url", Type: "url", Required: true, Label: "Webhook URL"},
				{Name: "secret", Type: "string", Required: false, Label: "HMAC signing secret"},
			},
			Publish: NewWebhookPublishHandler(client, deps.Logger),
		},
		{
			Slug:  "wordpress_update",
			Type:  models.StepTypeUpdate,
			Label: "WordPress Update",
			SettingsSchema: []interfaces.SettingField{
				{Name: "base_url", Type: "url", Required: false, Label: "Site base URL"},
				{Name: "status", Type: "string", Required: false, Label: "Post status to set"},
			},
			AuthProvider: deps.WordPress.Name(),
			Update:       NewWordPressUpdateHandler(client, deps.WordPress, deps.Logger),
		},
	}

	for _, desc := range descriptors {
		if err := registry.Register(desc); err != nil {
			return err
		}
	}
	deps.Logger.Info().Int("handlers", len(descriptors)).Msg("Handler registry populated")
	return nil
}
