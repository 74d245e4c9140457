package handlers

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/conduit/internal/engine"
	"github.com/ternarybob/conduit/internal/httpclient"
	"github.com/ternarybob/conduit/internal/interfaces"
)

const testFeed = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0" xmlns:content="http://purl.org/rss/1.0/modules/content/" xmlns:dc="http://purl.org/dc/elements/1.1/">
<channel>
	<title>Test Feed</title>
	<item>
		<title>First Post</title>
		<link>https://example.com/first</link>
		<guid>guid-1</guid>
		<description>summary one</description>
		<content:encoded><![CDATA[<p>full body one</p>]]></content:encoded>
		<pubDate>Sat, 14 Mar 2026 10:00:00 GMT</pubDate>
		<dc:creator>alice</dc:creator>
	</item>
	<item>
		<title>Second Post</title>
		<link>https://example.com/second</link>
		<guid>guid-2</guid>
		<description>summary two</description>
	</item>
</channel>
</rss>`

func rssRequest(settings map[string]interface{}) interfaces.FetchRequest {
	return interfaces.FetchRequest{
		JobID:      "job_1",
		FlowStepID: "fstep_1",
		Settings:   settings,
	}
}

func TestRSSFetch_ReturnsOneItemPerInvocation(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, testFeed)
	}))
	defer server.Close()

	dedup := newMemDedup()
	handler := NewRSSFetchHandler(httpclient.NewDefaultHTTPClient(5*time.Second), dedup, testLogger())
	req := rssRequest(map[string]interface{}{"feed_url": server.URL})

	result, err := handler.Fetch(context.Background(), req)
	require.NoError(t, err)
	require.NotNil(t, result.Item)
	assert.Equal(t, "First Post", result.Item.Title)
	assert.Equal(t, "<p>full body one</p>", result.Item.Body)
	assert.Equal(t, "guid-1", result.Item.Metadata["guid"])
	assert.Equal(t, "alice", result.Item.Metadata["author"])

	// next invocation skips the claimed item
	result, err = handler.Fetch(context.Background(), req)
	require.NoError(t, err)
	require.NotNil(t, result.Item)
	assert.Equal(t, "Second Post", result.Item.Title)
	// no content:encoded: the description becomes the body
	assert.Equal(t, "summary two", result.Item.Body)

	// feed exhausted
	result, err = handler.Fetch(context.Background(), req)
	require.NoError(t, err)
	assert.Nil(t, result.Item)
}

func TestRSSFetch_MissingFeedURLIsConfigurationError(t *testing.T) {
	handler := NewRSSFetchHandler(httpclient.NewDefaultHTTPClient(time.Second), newMemDedup(), testLogger())

	_, err := handler.Fetch(context.Background(), rssRequest(nil))
	assert.ErrorIs(t, err, engine.ErrConfiguration)
}

func TestRSSFetch_ServerErrorIsTransient(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusBadGateway)
	}))
	defer server.Close()

	handler := NewRSSFetchHandler(httpclient.NewDefaultHTTPClient(time.Second), newMemDedup(), testLogger())
	_, err := handler.Fetch(context.Background(), rssRequest(map[string]interface{}{"feed_url": server.URL}))
	assert.ErrorIs(t, err, engine.ErrTransientSource)
}

func TestRSSFetch_MalformedFeedIsContentValidationError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "this is not xml")
	}))
	defer server.Close()

	handler := NewRSSFetchHandler(httpclient.NewDefaultHTTPClient(time.Second), newMemDedup(), testLogger())
	_, err := handler.Fetch(context.Background(), rssRequest(map[string]interface{}{"feed_url": server.URL}))
	assert.ErrorIs(t, err, engine.ErrContentValidation)
}

func TestRSSFetch_FallsBackToLinkWhenGUIDMissing(t *testing.T) {
	feed := `<?xml version="1.0"?>
<rss version="2.0"><channel><title>f</title>
<item><title>No GUID</title><link>https://example.com/no-guid</link><description>d</description></item>
</channel></rss>`
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, feed)
	}))
	defer server.Close()

	dedup := newMemDedup()
	handler := NewRSSFetchHandler(httpclient.NewDefaultHTTPClient(time.Second), dedup, testLogger())
	req := rssRequest(map[string]interface{}{"feed_url": server.URL})

	result, err := handler.Fetch(context.Background(), req)
	require.NoError(t, err)
	require.NotNil(t, result.Item)
	assert.Equal(t, "https://example.com/no-guid", result.Item.Metadata["guid"])

	processed, err := dedup.IsProcessed(context.Background(), "fstep_1", "rss", "https://example.com/no-guid")
	require.NoError(t, err)
	assert.True(t, processed)
}
