package sla

import (
	"time"

	"followup-backend/internal/followup/domain"
)

func isWeekend(t time.Time) bool {
	wd := t.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

func atHour(t time.Time, hour int) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), hour, 0, 0, 0, t.Location())
}

func nextDayAtHour(t time.Time, hour int) time.Time {
	next := t.AddDate(0, 0, 1)
	return atHour(next, hour)
}

// AddBusinessHours advances start by the given number of hours, counting only
// time inside the configured working window and skipping weekends when
// adjustment is enabled. The result always lands on a working day inside
// [start, end).
func AddBusinessHours(start time.Time, hours float64, cfg domain.SLAConfig) time.Time {
	t := start
	remaining := hours

	for remaining > 0 {
		if cfg.AdjustForWeekends && isWeekend(t) {
			t = nextDayAtHour(t, cfg.WorkingHoursStart)
			continue
		}

		if t.Hour() < cfg.WorkingHoursStart {
			t = atHour(t, cfg.WorkingHoursStart)
		}

		if t.Hour() >= cfg.WorkingHoursEnd {
			t = nextDayAtHour(t, cfg.WorkingHoursStart)
			continue
		}

		endOfDay := atHour(t, cfg.WorkingHoursEnd)
		available := endOfDay.Sub(t).Hours()

		if remaining < available {
			t = t.Add(time.Duration(remaining * float64(time.Hour)))
			remaining = 0
		} else {
			remaining -= available
			t = nextDayAtHour(endOfDay, cfg.WorkingHoursStart)
		}
	}

	// An exact end-of-day fit leaves t on the next day's start; re-check the
	// weekend so the deadline never lands on a Saturday.
	for cfg.AdjustForWeekends && isWeekend(t) {
		t = nextDayAtHour(t, cfg.WorkingHoursStart)
	}

	return t
}
