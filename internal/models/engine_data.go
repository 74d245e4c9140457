package models

import "time"

// EngineData is the scraper's side channel: auxiliary fields captured during
// extraction, keyed by job ID, read later by output handlers for attribution.
type EngineData struct {
	JobID     string    `json:"job_id" badgerhold:"key"`
	SourceURL string    `json:"source_url,omitempty"`
	ImageURL  string    `json:"image_url,omitempty"`
	TicketURL string    `json:"ticket_url,omitempty"`
	EventDate string    `json:"event_date,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
}
