package snooze

import (
	"context"
	"errors"
	"testing"
	"time"

	"followup-backend/internal/followup/domain"
	"followup-backend/pkg/ai"
	"followup-backend/pkg/cache"
	"followup-backend/pkg/metrics"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticConfig struct {
	cfg domain.SLAConfig
}

func (s staticConfig) Config() domain.SLAConfig { return s.cfg }

type stubAIService struct {
	suggestion *ai.SnoozeSuggestion
	err        error
	calls      int
}

func (s *stubAIService) SuggestSnoozeTime(ctx context.Context, req ai.SuggestionRequest) (*ai.SnoozeSuggestion, error) {
	s.calls++
	return s.suggestion, s.err
}

func engineConfig() domain.SLAConfig {
	return domain.SLAConfig{
		CriticalHours:     4,
		HighHours:         8,
		MediumHours:       24,
		LowHours:          72,
		AdjustForWeekends: true,
		WorkingHoursStart: 9,
		WorkingHoursEnd:   17,
	}
}

// 2026-01-05 is a Monday
func newTestEngine(aiService ai.SnoozeSuggestionService, c *cache.Cache) (*Engine, time.Time) {
	now := time.Date(2026, 1, 5, 10, 0, 0, 0, time.UTC)
	e := NewEngine(aiService, c, metrics.New(), staticConfig{cfg: engineConfig()})
	e.now = func() time.Time { return now }
	return e, now
}

func TestSuggestSnoozeTime_FallbackOnAIError(t *testing.T) {
	stub := &stubAIService{err: errors.New("provider down")}
	e, now := newTestEngine(stub, nil)

	got := e.SuggestSnoozeTime(context.Background(), ai.SuggestionRequest{
		Subject:  "quarterly report",
		Priority: string(domain.PriorityHigh),
	})

	require.NotNil(t, got)
	assert.Equal(t, 0.5, got.Confidence)
	// HIGH falls back to +4 hours, inside the Monday working window.
	assert.Equal(t, now.Add(4*time.Hour), got.SuggestedTime)
	require.GreaterOrEqual(t, len(got.AlternativeTimes), 2)
	for _, alt := range got.AlternativeTimes {
		assert.True(t, alt.After(now))
	}
}

func TestSuggestSnoozeTime_NilAIServiceUsesFallback(t *testing.T) {
	e, now := newTestEngine(nil, nil)

	got := e.SuggestSnoozeTime(context.Background(), ai.SuggestionRequest{
		Priority: string(domain.PriorityCritical),
	})

	require.NotNil(t, got)
	assert.Equal(t, 0.5, got.Confidence)
	assert.Equal(t, now.Add(2*time.Hour), got.SuggestedTime)
}

func TestSuggestSnoozeTime_FallbackHoursByPriority(t *testing.T) {
	assert.Equal(t, 2*time.Hour, fallbackHours(string(domain.PriorityCritical)))
	assert.Equal(t, 4*time.Hour, fallbackHours(string(domain.PriorityHigh)))
	assert.Equal(t, 24*time.Hour, fallbackHours(string(domain.PriorityMedium)))
	assert.Equal(t, 72*time.Hour, fallbackHours(string(domain.PriorityLow)))
	assert.Equal(t, 24*time.Hour, fallbackHours("unknown"))
}

func TestSuggestSnoozeTime_FallbackSkipsWeekend(t *testing.T) {
	e, _ := newTestEngine(nil, nil)
	// Friday 10:00 + 72h lands on Monday, never Saturday or Sunday.
	e.now = func() time.Time { return time.Date(2026, 1, 9, 10, 0, 0, 0, time.UTC) }

	got := e.SuggestSnoozeTime(context.Background(), ai.SuggestionRequest{
		Priority: string(domain.PriorityLow),
	})

	require.NotNil(t, got)
	assert.NotEqual(t, time.Saturday, got.SuggestedTime.Weekday())
	assert.NotEqual(t, time.Sunday, got.SuggestedTime.Weekday())
}

func TestSuggestSnoozeTime_AISuggestionValidated(t *testing.T) {
	stub := &stubAIService{}
	e, now := newTestEngine(stub, nil)
	stub.suggestion = &ai.SnoozeSuggestion{
		SuggestedTime: now.Add(-time.Hour), // stale by the time it arrives
		Reasoning:     "reply after standup",
	}

	got := e.SuggestSnoozeTime(context.Background(), ai.SuggestionRequest{
		Priority: string(domain.PriorityMedium),
	})

	require.NotNil(t, got)
	// A past primary time is repaired to one hour out.
	assert.Equal(t, now.Add(time.Hour), got.SuggestedTime)
	// Missing alternatives are synthesized at 3-hour increments.
	require.Len(t, got.AlternativeTimes, 2)
	assert.Equal(t, now.Add(4*time.Hour), got.AlternativeTimes[0])
	assert.Equal(t, now.Add(7*time.Hour), got.AlternativeTimes[1])
}

func TestSuggestSnoozeTime_AIDefaultConfidence(t *testing.T) {
	stub := &stubAIService{}
	e, now := newTestEngine(stub, nil)
	stub.suggestion = &ai.SnoozeSuggestion{SuggestedTime: now.Add(3 * time.Hour)}

	got := e.SuggestSnoozeTime(context.Background(), ai.SuggestionRequest{
		Priority: string(domain.PriorityMedium),
	})

	require.NotNil(t, got)
	assert.Equal(t, 0.7, got.Confidence)
}

func TestSuggestSnoozeTime_CachesByContext(t *testing.T) {
	mr := miniredis.RunT(t)
	c, err := cache.New(mr.Addr(), "", 0)
	require.NoError(t, err)
	defer c.Close()

	stub := &stubAIService{}
	e, now := newTestEngine(stub, c)
	stub.suggestion = &ai.SnoozeSuggestion{SuggestedTime: now.Add(5 * time.Hour), Confidence: 0.9}

	req := ai.SuggestionRequest{Subject: "invoice", Priority: string(domain.PriorityMedium), Category: "finance"}

	first := e.SuggestSnoozeTime(context.Background(), req)
	second := e.SuggestSnoozeTime(context.Background(), req)

	assert.Equal(t, 1, stub.calls)
	assert.Equal(t, first.SuggestedTime.UTC(), second.SuggestedTime.UTC())

	// A different subject is a different cache entry.
	e.SuggestSnoozeTime(context.Background(), ai.SuggestionRequest{Subject: "other", Priority: string(domain.PriorityMedium)})
	assert.Equal(t, 2, stub.calls)
}

func TestGetQuickSnoozeOptions_Midweek(t *testing.T) {
	e, _ := newTestEngine(nil, nil)
	// Wednesday 2026-01-07 10:00
	e.now = func() time.Time { return time.Date(2026, 1, 7, 10, 0, 0, 0, time.UTC) }

	options := e.GetQuickSnoozeOptions("UTC")
	require.Len(t, options, 5)

	labels := make([]string, 0, len(options))
	for _, o := range options {
		labels = append(labels, o.Label)
	}
	assert.Equal(t, []string{"In 1 hour", "In 3 hours", "Tomorrow morning", "Next week", "End of week"}, labels)

	assert.Equal(t, time.Date(2026, 1, 8, 9, 0, 0, 0, time.UTC), options[2].Time)
	assert.Equal(t, time.Date(2026, 1, 14, 9, 0, 0, 0, time.UTC), options[3].Time)
	assert.Equal(t, time.Date(2026, 1, 9, 9, 0, 0, 0, time.UTC), options[4].Time)
}

func TestGetQuickSnoozeOptions_FridayOmitsEndOfWeek(t *testing.T) {
	e, _ := newTestEngine(nil, nil)
	// Friday 2026-01-09 10:00
	e.now = func() time.Time { return time.Date(2026, 1, 9, 10, 0, 0, 0, time.UTC) }

	options := e.GetQuickSnoozeOptions("UTC")
	require.Len(t, options, 4)

	// Tomorrow is Saturday; the morning preset rolls to Monday.
	assert.Equal(t, "Tomorrow morning", options[2].Label)
	assert.Equal(t, time.Date(2026, 1, 12, 9, 0, 0, 0, time.UTC), options[2].Time)
}
