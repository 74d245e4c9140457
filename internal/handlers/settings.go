package handlers

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ternarybob/conduit/internal/engine"
)

// stringSetting reads an optional string setting
func stringSetting(settings map[string]interface{}, key string) string {
	if settings == nil {
		return ""
	}
	if v, ok := settings[key]; ok {
		if s, ok := v.(string); ok {
			return strings.TrimSpace(s)
		}
	}
	return ""
}

// requireString reads a mandatory string setting, returning a configuration
// error when absent
func requireString(settings map[string]interface{}, key string) (string, error) {
	v := stringSetting(settings, key)
	if v == "" {
		return "", fmt.Errorf("%w: missing required setting '%s'", engine.ErrConfiguration, key)
	}
	return v, nil
}

// intSetting reads an optional int setting with a default. TOML and JSON
// decode numbers differently so several shapes are accepted.
func intSetting(settings map[string]interface{}, key string, def int) int {
	if settings == nil {
		return def
	}
	switch v := settings[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	case string:
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			return n
		}
	}
	return def
}

// boolSetting reads an optional bool setting with a default
func boolSetting(settings map[string]interface{}, key string, def bool) bool {
	if settings == nil {
		return def
	}
	switch v := settings[key].(type) {
	case bool:
		return v
	case string:
		if b, err := strconv.ParseBool(strings.TrimSpace(v)); err == nil {
			return b
		}
	}
	return def
}

// stringMapSetting reads a map-of-strings setting (e.g. venue rewrites)
func stringMapSetting(settings map[string]interface{}, key string) map[string]string {
	if settings == nil {
		return nil
	}
	raw, ok := settings[key].(map[string]interface{})
	if !ok {
		return nil
	}
	out := make(map[string]string, len(raw))
	for k, v := range raw {
		if s, ok := v.(string); ok {
			out[k] = s
		}
	}
	return out
}
