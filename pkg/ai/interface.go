package ai

import (
	"context"
	"time"
)

// SuggestionRequest carries the message context and user preferences an AI
// provider needs to propose a resurface time.
type SuggestionRequest struct {
	Subject  string `json:"subject"`
	From     string `json:"from"`
	Body     string `json:"body,omitempty"`
	Priority string `json:"priority"`
	Category string `json:"category,omitempty"`

	UserTimezone      string `json:"user_timezone,omitempty"`
	WorkingHoursStart int    `json:"working_hours_start"`
	WorkingHoursEnd   int    `json:"working_hours_end"`
}

// SnoozeSuggestion is a proposed resurface time with alternatives
type SnoozeSuggestion struct {
	SuggestedTime    time.Time   `json:"suggested_time"`
	Reasoning        string      `json:"reasoning,omitempty"`
	AlternativeTimes []time.Time `json:"alternative_times,omitempty"`
	Confidence       float64     `json:"confidence"`
}

// SnoozeSuggestionService is the interface for AI snooze suggestion providers.
// Implement this interface to add new providers (Gemini, Ollama, OpenAI, etc.)
type SnoozeSuggestionService interface {
	SuggestSnoozeTime(ctx context.Context, req SuggestionRequest) (*SnoozeSuggestion, error)
}

// ProviderType represents the AI provider type
type ProviderType string

const (
	ProviderGemini ProviderType = "gemini"
	ProviderOllama ProviderType = "ollama"
	ProviderAuto   ProviderType = "auto"
)
