package domain

// SLAConfig defines how SLA deadlines accrue: hours per priority and the
// business-hours window. Supplied at construction and hot-reloadable through
// the settings API.
type SLAConfig struct {
	CriticalHours float64 `json:"critical_hours"`
	HighHours     float64 `json:"high_hours"`
	MediumHours   float64 `json:"medium_hours"`
	LowHours      float64 `json:"low_hours"`

	AdjustForWeekends bool `json:"adjust_for_weekends"`
	WorkingHoursStart int  `json:"working_hours_start"`
	WorkingHoursEnd   int  `json:"working_hours_end"`
}

// DefaultSLAConfig returns the standard configuration: 9-17 working hours,
// weekends excluded.
func DefaultSLAConfig() SLAConfig {
	return SLAConfig{
		CriticalHours:     4,
		HighHours:         8,
		MediumHours:       24,
		LowHours:          72,
		AdjustForWeekends: true,
		WorkingHoursStart: 9,
		WorkingHoursEnd:   17,
	}
}

// HoursForPriority returns the SLA hours configured for the given priority
func (c SLAConfig) HoursForPriority(p Priority) float64 {
	switch p {
	case PriorityCritical:
		return c.CriticalHours
	case PriorityHigh:
		return c.HighHours
	case PriorityMedium:
		return c.MediumHours
	case PriorityLow:
		return c.LowHours
	default:
		return c.MediumHours
	}
}
