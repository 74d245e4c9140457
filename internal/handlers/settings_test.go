package handlers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/conduit/internal/engine"
)

func TestStringSetting(t *testing.T) {
	settings := map[string]interface{}{
		"url":     "  https://example.com  ",
		"numeric": 42,
	}

	assert.Equal(t, "https://example.com", stringSetting(settings, "url"))
	assert.Equal(t, "", stringSetting(settings, "numeric"))
	assert.Equal(t, "", stringSetting(settings, "absent"))
	assert.Equal(t, "", stringSetting(nil, "url"))
}

func TestRequireString(t *testing.T) {
	v, err := requireString(map[string]interface{}{"feed_url": "https://example.com/feed"}, "feed_url")
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/feed", v)

	_, err = requireString(nil, "feed_url")
	assert.ErrorIs(t, err, engine.ErrConfiguration)

	_, err = requireString(map[string]interface{}{"feed_url": "   "}, "feed_url")
	assert.ErrorIs(t, err, engine.ErrConfiguration)
}

func TestIntSetting_AcceptsDecodedShapes(t *testing.T) {
	// TOML decodes integers as int64, JSON as float64
	assert.Equal(t, 5, intSetting(map[string]interface{}{"n": 5}, "n", 1))
	assert.Equal(t, 5, intSetting(map[string]interface{}{"n": int64(5)}, "n", 1))
	assert.Equal(t, 5, intSetting(map[string]interface{}{"n": float64(5)}, "n", 1))
	assert.Equal(t, 5, intSetting(map[string]interface{}{"n": " 5 "}, "n", 1))
	assert.Equal(t, 1, intSetting(map[string]interface{}{"n": "five"}, "n", 1))
	assert.Equal(t, 1, intSetting(nil, "n", 1))
}

func TestBoolSetting(t *testing.T) {
	assert.True(t, boolSetting(map[string]interface{}{"b": true}, "b", false))
	assert.True(t, boolSetting(map[string]interface{}{"b": "true"}, "b", false))
	assert.False(t, boolSetting(map[string]interface{}{"b": "no such"}, "b", false))
	assert.True(t, boolSetting(nil, "b", true))
}

func TestStringMapSetting(t *testing.T) {
	settings := map[string]interface{}{
		"venue_map": map[string]interface{}{
			"corner":  "The Corner Hotel",
			"numeric": 3,
		},
	}

	m := stringMapSetting(settings, "venue_map")
	require.NotNil(t, m)
	assert.Equal(t, "The Corner Hotel", m["corner"])
	_, ok := m["numeric"]
	assert.False(t, ok)

	assert.Nil(t, stringMapSetting(settings, "absent"))
	assert.Nil(t, stringMapSetting(nil, "venue_map"))
}
