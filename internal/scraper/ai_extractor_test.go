package scraper

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAIExtractor_EmitsMarkdownForUnstructuredPage(t *testing.T) {
	html := `<html><body>
	<script>window.tracker()</script>
	<nav>home | about</nav>
	<main class="event-list">
		<p>` + strings.Repeat("Upcoming shows at the hall, doors at eight. ", 5) + `</p>
	</main>
	<footer>copyright</footer>
	</body></html>`

	e := NewAIExtractor()
	items := e.Extract(docFromHTML(t, html), "https://venue.example.com/gigs")
	require.Len(t, items, 1)
	assert.True(t, items[0].NeedsAI)
	assert.Equal(t, "https://venue.example.com/gigs", items[0].SourceURL)
	assert.Contains(t, items[0].Markdown, "Upcoming shows at the hall")
	// stripped noise never reaches the model
	assert.NotContains(t, items[0].Markdown, "window.tracker")
	assert.NotContains(t, items[0].Markdown, "copyright")
}

func TestAIExtractor_SkipsThinPages(t *testing.T) {
	e := NewAIExtractor()
	items := e.Extract(docFromHTML(t, `<html><body><main>too short</main></body></html>`), "https://example.com")
	assert.Empty(t, items)
}

func TestAIExtractor_TruncatesOnRuneBoundary(t *testing.T) {
	// three-byte runes guarantee the byte cap lands mid-rune
	html := `<html><body><main>` + strings.Repeat("世", 8000) + `</main></body></html>`

	e := NewAIExtractor()
	items := e.Extract(docFromHTML(t, html), "https://example.com")
	require.Len(t, items, 1)
	assert.LessOrEqual(t, len(items[0].Markdown), 16000)
	assert.True(t, utf8.ValidString(items[0].Markdown))
}
