package ai

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSuggestionJSON(t *testing.T) {
	got, err := parseSuggestionJSON(`{"suggested_time":"2026-01-05T14:00:00Z","reasoning":"after lunch","alternative_times":["2026-01-05T16:00:00Z","not-a-time"],"confidence":0.8}`)
	require.NoError(t, err)

	assert.Equal(t, time.Date(2026, 1, 5, 14, 0, 0, 0, time.UTC), got.SuggestedTime)
	assert.Equal(t, "after lunch", got.Reasoning)
	assert.Equal(t, 0.8, got.Confidence)
	// Unparseable alternatives are skipped, not fatal.
	require.Len(t, got.AlternativeTimes, 1)
}

func TestParseSuggestionJSON_StripsMarkdownFences(t *testing.T) {
	got, err := parseSuggestionJSON("```json\n{\"suggested_time\":\"2026-01-05T14:00:00Z\",\"reasoning\":\"r\",\"confidence\":0.6}\n```")
	require.NoError(t, err)
	assert.Equal(t, 0.6, got.Confidence)
}

func TestParseSuggestionJSON_Invalid(t *testing.T) {
	_, err := parseSuggestionJSON("I think you should check back tomorrow.")
	assert.Error(t, err)

	_, err = parseSuggestionJSON(`{"suggested_time":"tomorrow","reasoning":"r"}`)
	assert.Error(t, err)
}

func TestIsConnectionError(t *testing.T) {
	assert.True(t, isConnectionError(errors.New("dial tcp 127.0.0.1:11434: connection refused")))
	assert.True(t, isConnectionError(errors.New("request timeout exceeded")))
	assert.False(t, isConnectionError(errors.New("invalid suggested_time")))
	assert.False(t, isConnectionError(nil))
}

func TestIsQuotaError(t *testing.T) {
	assert.True(t, isQuotaError(errors.New("gemini API error: 429 Too Many Requests")))
	assert.True(t, isQuotaError(errors.New("RESOURCE EXHAUSTED: quota exceeded")))
	assert.False(t, isQuotaError(errors.New("connection refused")))
	assert.False(t, isQuotaError(nil))
}
