package ai

import (
	"context"
	"fmt"
	"log"
	"net"
	"strings"
)

// FallbackService routes snooze suggestion requests to Gemini first (better
// time reasoning) and falls back to a local Ollama on quota or connection
// errors. The deterministic last-resort fallback lives in the snooze engine,
// not here; this wrapper only routes between AI providers.
type FallbackService struct {
	gemini SnoozeSuggestionService
	ollama *OllamaService
}

// NewFallbackService creates a new fallback service with both providers
func NewFallbackService(gemini SnoozeSuggestionService, ollama *OllamaService) *FallbackService {
	return &FallbackService{
		gemini: gemini,
		ollama: ollama,
	}
}

// isConnectionError checks if the error is a network/connection error
func isConnectionError(err error) bool {
	if err == nil {
		return false
	}

	if _, ok := err.(net.Error); ok {
		return true
	}

	errStr := strings.ToLower(err.Error())
	connectionIndicators := []string{
		"connection refused",
		"no such host",
		"network is unreachable",
		"connection reset",
		"timeout",
		"dial tcp",
		"eof",
	}

	for _, indicator := range connectionIndicators {
		if strings.Contains(errStr, indicator) {
			return true
		}
	}

	return false
}

// isQuotaError checks if the error indicates API quota exhaustion (429)
func isQuotaError(err error) bool {
	if err == nil {
		return false
	}

	errStr := strings.ToLower(err.Error())
	quotaIndicators := []string{
		"429",
		"quota",
		"rate limit",
		"too many requests",
		"resource exhausted",
	}

	for _, indicator := range quotaIndicators {
		if strings.Contains(errStr, indicator) {
			return true
		}
	}

	return false
}

// SuggestSnoozeTime tries Gemini first, falls back to Ollama on failure
func (f *FallbackService) SuggestSnoozeTime(ctx context.Context, req SuggestionRequest) (*SnoozeSuggestion, error) {
	if f.gemini != nil {
		result, err := f.gemini.SuggestSnoozeTime(ctx, req)
		if err == nil {
			return result, nil
		}

		if isQuotaError(err) {
			log.Printf("[AI] Gemini quota exhausted: %v, falling back to Ollama", err)
		} else {
			log.Printf("[AI] Gemini error: %v, falling back to Ollama", err)
		}
	}

	if f.ollama != nil {
		result, err := f.ollama.SuggestSnoozeTime(ctx, req)
		if err == nil {
			return result, nil
		}

		if isConnectionError(err) && f.gemini != nil {
			log.Printf("[AI] Ollama connection failed: %v, retrying Gemini", err)
			return f.gemini.SuggestSnoozeTime(ctx, req)
		}

		return nil, fmt.Errorf("ollama suggestion failed: %w", err)
	}

	return nil, fmt.Errorf("no AI provider available for snooze suggestions")
}
