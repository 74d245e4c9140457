package models

// FetchItem is one normalized item returned by a fetch handler
type FetchItem struct {
	Title    string                 `json:"title"`
	Body     string                 `json:"body"`
	Metadata map[string]interface{} `json:"metadata,omitempty"`
}

// FetchResult is the return contract of a fetch handler. Bulk sources fill
// ProcessedItems (the step consumes the first item); single-item sources
// fill Item. An empty result means "no new items" and is not a failure.
type FetchResult struct {
	ProcessedItems []FetchItem `json:"processed_items,omitempty"`
	Item           *FetchItem  `json:"item,omitempty"`
}

// First returns the single item the step will consume, or nil when the
// result carries no new content
func (r *FetchResult) First() *FetchItem {
	if r == nil {
		return nil
	}
	if r.Item != nil {
		return r.Item
	}
	if len(r.ProcessedItems) > 0 {
		return &r.ProcessedItems[0]
	}
	return nil
}

// HandlerResult is one output handler's outcome within a publish/update step.
// Handler faults are captured here rather than propagated; one handler's
// failure must not abort its siblings.
type HandlerResult struct {
	Slug    string                 `json:"slug"`
	Success bool                   `json:"success"`
	Error   string                 `json:"error,omitempty"`
	Fields  map[string]interface{} `json:"fields,omitempty"` // handler-specific result data (post_id, url, ...)
}

// StepOutcome aggregates per-handler results for a publish/update step.
// Overall success requires at least one successful handler.
type StepOutcome struct {
	Successful []string                 `json:"successful"`
	Failed     []string                 `json:"failed"`
	Results    map[string]HandlerResult `json:"results"`
}

// OverallSuccess reports whether at least one handler succeeded
func (o *StepOutcome) OverallSuccess() bool {
	return len(o.Successful) > 0
}
