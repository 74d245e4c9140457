package models

import "time"

// EntryContent is the structured body of a data entry
type EntryContent struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

// Attachment references a file or image associated with an entry
type Attachment struct {
	URL      string `json:"url"`
	MimeType string `json:"mime_type,omitempty"`
	Caption  string `json:"caption,omitempty"`
}

// DataEntry is the unit of content moving between steps within a job.
// Entries accumulate newest-first: a fetch step prepends exactly one entry
// per successful invocation and downstream steps consume entries[0].
type DataEntry struct {
	Type        string                 `json:"type"`    // originating step type: "fetch", "ai"
	Handler     string                 `json:"handler"` // handler slug that produced the entry
	Content     EntryContent           `json:"content"`
	Metadata    map[string]interface{} `json:"metadata,omitempty"`
	Attachments []Attachment           `json:"attachments,omitempty"`
	Timestamp   time.Time              `json:"timestamp"`
}

// Prepend returns a new packet with entry at index 0.
// Existing entries keep their relative order.
func Prepend(entries []*DataEntry, entry *DataEntry) []*DataEntry {
	packet := make([]*DataEntry, 0, len(entries)+1)
	packet = append(packet, entry)
	packet = append(packet, entries...)
	return packet
}

// Latest returns entries[0], the most recent entry, or nil for an empty packet
func Latest(entries []*DataEntry) *DataEntry {
	if len(entries) == 0 {
		return nil
	}
	return entries[0]
}
