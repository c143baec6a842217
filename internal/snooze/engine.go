package snooze

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"log"
	"strconv"
	"time"

	"followup-backend/internal/followup/domain"
	"followup-backend/pkg/ai"
	"followup-backend/pkg/cache"
	"followup-backend/pkg/metrics"
)

const (
	cacheLayer = "suggestions"
	cacheTTL   = 30 * time.Minute
)

// ConfigSource provides the current working-hours configuration.
// The SLA tracker implements it.
type ConfigSource interface {
	Config() domain.SLAConfig
}

// Engine produces preset and AI-assisted resurface-time suggestions.
// AI failures are always replaced by a deterministic fallback and never
// surfaced to the caller.
type Engine struct {
	aiService ai.SnoozeSuggestionService
	cache     *cache.Cache
	metrics   *metrics.Metrics
	cfgSrc    ConfigSource

	now func() time.Time
}

// NewEngine creates a snooze suggestion engine
func NewEngine(aiService ai.SnoozeSuggestionService, c *cache.Cache, m *metrics.Metrics, cfgSrc ConfigSource) *Engine {
	return &Engine{
		aiService: aiService,
		cache:     c,
		metrics:   m,
		cfgSrc:    cfgSrc,
		now:       time.Now,
	}
}

func suggestionCacheKey(req ai.SuggestionRequest) string {
	h := sha1.Sum([]byte(req.Subject + "|" + req.Priority + "|" + req.Category))
	return hex.EncodeToString(h[:])
}

// SuggestSnoozeTime returns a resurface-time suggestion for the given
// message context. Suggestions are cached for 30 minutes keyed by subject,
// priority and category. This never fails: any AI error substitutes the
// deterministic fallback.
func (e *Engine) SuggestSnoozeTime(ctx context.Context, req ai.SuggestionRequest) *ai.SnoozeSuggestion {
	now := e.now()
	cfg := e.cfgSrc.Config()
	req.WorkingHoursStart = cfg.WorkingHoursStart
	req.WorkingHoursEnd = cfg.WorkingHoursEnd

	key := suggestionCacheKey(req)
	if e.cache != nil {
		var cached ai.SnoozeSuggestion
		hit, err := e.cache.GetJSON(ctx, cacheLayer, key, &cached)
		if err != nil {
			log.Printf("[SnoozeEngine] suggestion cache read failed: %v", err)
		} else if hit {
			// A cached suggestion may have gone stale inside its TTL;
			// re-validation repairs any past times.
			e.validateSuggestion(&cached, now)
			return &cached
		}
	}

	suggestion, source := e.generate(ctx, req, now, cfg)
	e.validateSuggestion(suggestion, now)

	if e.cache != nil {
		if err := e.cache.SetJSON(ctx, cacheLayer, key, suggestion, cacheTTL); err != nil {
			log.Printf("[SnoozeEngine] suggestion cache write failed: %v", err)
		}
	}

	e.metrics.SuggestionRequests.WithLabelValues(
		req.Priority, source, fmt.Sprintf("%.1f", suggestion.Confidence)).Inc()

	return suggestion
}

// generate asks the AI provider and falls back deterministically on any failure
func (e *Engine) generate(ctx context.Context, req ai.SuggestionRequest, now time.Time, cfg domain.SLAConfig) (*ai.SnoozeSuggestion, string) {
	if e.aiService != nil {
		suggestion, err := e.aiService.SuggestSnoozeTime(ctx, req)
		if err == nil && suggestion != nil {
			if suggestion.Confidence <= 0 {
				suggestion.Confidence = 0.7
			}
			return suggestion, "ai"
		}
		log.Printf("[SnoozeEngine] AI suggestion failed, using fallback: %v", err)
	}

	return e.fallbackSuggestion(req.Priority, now, cfg), "fallback"
}

// fallbackHours maps priority to the deterministic hours-to-add default
func fallbackHours(priority string) time.Duration {
	switch domain.Priority(priority) {
	case domain.PriorityCritical:
		return 2 * time.Hour
	case domain.PriorityHigh:
		return 4 * time.Hour
	case domain.PriorityMedium:
		return 24 * time.Hour
	case domain.PriorityLow:
		return 72 * time.Hour
	default:
		return 24 * time.Hour
	}
}

// fallbackSuggestion is the deterministic default used whenever the AI port
// fails or is not configured. Confidence is fixed at 0.5.
func (e *Engine) fallbackSuggestion(priority string, now time.Time, cfg domain.SLAConfig) *ai.SnoozeSuggestion {
	primary := snapToWorkingHours(now.Add(fallbackHours(priority)), cfg)

	return &ai.SnoozeSuggestion{
		SuggestedTime: primary,
		Reasoning:     fmt.Sprintf("Default snooze for %s priority, adjusted to working hours", priority),
		AlternativeTimes: []time.Time{
			snapToWorkingHours(primary.Add(3*time.Hour), cfg),
			snapToWorkingHours(primary.Add(24*time.Hour), cfg),
		},
		Confidence: 0.5,
	}
}

// snapToWorkingHours moves a candidate time onto a working day inside the
// configured window: weekends advance to the next non-weekend day, early
// hours snap to the window start, late hours roll to the next day's start.
func snapToWorkingHours(t time.Time, cfg domain.SLAConfig) time.Time {
	for {
		if cfg.AdjustForWeekends && isWeekend(t) {
			t = t.AddDate(0, 0, 1)
			continue
		}
		if t.Hour() < cfg.WorkingHoursStart {
			t = atHour(t, cfg.WorkingHoursStart)
		}
		if t.Hour() >= cfg.WorkingHoursEnd {
			t = atHour(t.AddDate(0, 0, 1), cfg.WorkingHoursStart)
			continue
		}
		return t
	}
}

func isWeekend(t time.Time) bool {
	wd := t.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

func atHour(t time.Time, hour int) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), hour, 0, 0, 0, t.Location())
}

// validateSuggestion enforces the snooze response contract: the primary time
// is strictly in the future (else now+1h), stale alternatives are dropped and
// at least two alternatives exist, synthesized at +3h increments when needed.
func (e *Engine) validateSuggestion(s *ai.SnoozeSuggestion, now time.Time) {
	if !s.SuggestedTime.After(now) {
		s.SuggestedTime = now.Add(time.Hour)
	}

	valid := s.AlternativeTimes[:0]
	for _, alt := range s.AlternativeTimes {
		if alt.After(now) {
			valid = append(valid, alt)
		}
	}

	last := s.SuggestedTime
	if len(valid) > 0 {
		last = valid[len(valid)-1]
	}
	for len(valid) < 2 {
		last = last.Add(3 * time.Hour)
		valid = append(valid, last)
	}

	s.AlternativeTimes = valid
}

// LearnFromUserSnooze records the user's chosen resurface time as a metric
// for future tuning. It has no feedback effect on suggestion generation yet.
func (e *Engine) LearnFromUserSnooze(itemID string, chosenTime time.Time) {
	e.metrics.SnoozeChoices.WithLabelValues(
		strconv.Itoa(chosenTime.Hour()),
		chosenTime.Weekday().String(),
	).Inc()
	log.Printf("[SnoozeEngine] recorded snooze choice for item %s: %s", itemID, chosenTime.Format(time.RFC3339))
}
