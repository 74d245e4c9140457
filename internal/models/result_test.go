package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFetchResultFirst(t *testing.T) {
	var nilResult *FetchResult
	assert.Nil(t, nilResult.First())
	assert.Nil(t, (&FetchResult{}).First())

	// the single item wins over the bulk list
	result := &FetchResult{
		Item:           &FetchItem{Title: "single"},
		ProcessedItems: []FetchItem{{Title: "bulk"}},
	}
	assert.Equal(t, "single", result.First().Title)

	result = &FetchResult{ProcessedItems: []FetchItem{{Title: "bulk-1"}, {Title: "bulk-2"}}}
	assert.Equal(t, "bulk-1", result.First().Title)
}

func TestStepOutcomeOverallSuccess(t *testing.T) {
	outcome := &StepOutcome{
		Successful: []string{"wordpress"},
		Failed:     []string{"webhook", "threads"},
	}
	assert.True(t, outcome.OverallSuccess())

	outcome = &StepOutcome{Failed: []string{"wordpress"}}
	assert.False(t, outcome.OverallSuccess())
}
