package snooze

import (
	"time"
)

// QuickSnoozeOption is a precomputed, labeled preset resurface time
type QuickSnoozeOption struct {
	Label string    `json:"label"`
	Time  time.Time `json:"time"`
}

// GetQuickSnoozeOptions returns the fixed preset list: +1 hour, +3 hours,
// tomorrow morning, next week, and end of week when the current day is
// before Friday. Morning presets land at the working-hours start and skip
// weekends when configured.
func (e *Engine) GetQuickSnoozeOptions(timezone string) []QuickSnoozeOption {
	loc := time.Local
	if timezone != "" {
		if parsed, err := time.LoadLocation(timezone); err == nil {
			loc = parsed
		}
	}

	cfg := e.cfgSrc.Config()
	now := e.now().In(loc)

	tomorrow := atHour(now.AddDate(0, 0, 1), cfg.WorkingHoursStart)
	for cfg.AdjustForWeekends && isWeekend(tomorrow) {
		tomorrow = tomorrow.AddDate(0, 0, 1)
	}

	nextWeek := atHour(now.AddDate(0, 0, 7), cfg.WorkingHoursStart)
	for cfg.AdjustForWeekends && isWeekend(nextWeek) {
		nextWeek = nextWeek.AddDate(0, 0, 1)
	}

	options := []QuickSnoozeOption{
		{Label: "In 1 hour", Time: now.Add(time.Hour)},
		{Label: "In 3 hours", Time: now.Add(3 * time.Hour)},
		{Label: "Tomorrow morning", Time: tomorrow},
		{Label: "Next week", Time: nextWeek},
	}

	if now.Weekday() < time.Friday {
		daysUntilFriday := int(time.Friday - now.Weekday())
		endOfWeek := atHour(now.AddDate(0, 0, daysUntilFriday), cfg.WorkingHoursStart)
		options = append(options, QuickSnoozeOption{Label: "End of week", Time: endOfWeek})
	}

	return options
}
