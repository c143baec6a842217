package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// GeminiService implements SnoozeSuggestionService using the Gemini REST API
type GeminiService struct {
	ApiKey string
}

// NewGeminiService creates a new Gemini service
func NewGeminiService(apiKey string) *GeminiService {
	return &GeminiService{ApiKey: apiKey}
}

// geminiSuggestion is the JSON shape the model is asked to produce
type geminiSuggestion struct {
	SuggestedTime    string   `json:"suggested_time"`
	Reasoning        string   `json:"reasoning"`
	AlternativeTimes []string `json:"alternative_times"`
	Confidence       float64  `json:"confidence"`
}

// SuggestSnoozeTime implements SnoozeSuggestionService
func (g *GeminiService) SuggestSnoozeTime(ctx context.Context, req SuggestionRequest) (*SnoozeSuggestion, error) {
	url := "https://generativelanguage.googleapis.com/v1beta/models/gemini-2.5-flash:generateContent?key=" + g.ApiKey

	now := time.Now()
	prompt := fmt.Sprintf(`You are an email follow-up assistant. Suggest when a snoozed email should resurface so the user can act on it at the right moment.

CONTEXT:
- Current time: %s
- Working hours: %02d:00-%02d:00
- Email priority: %s
- Email category: %s
- Subject: %s
- From: %s

RULES:
- The suggested time must be in the future and inside working hours
- Higher priority means sooner resurfacing
- Provide exactly two alternative times, also in the future

Respond with ONLY a JSON object, no markdown:
{"suggested_time":"<RFC3339>","reasoning":"<one sentence>","alternative_times":["<RFC3339>","<RFC3339>"],"confidence":<0..1>}`,
		now.Format(time.RFC3339),
		req.WorkingHoursStart, req.WorkingHoursEnd,
		req.Priority, req.Category, req.Subject, req.From)

	payload := map[string]interface{}{
		"contents": []map[string]interface{}{
			{"parts": []map[string]string{{"text": prompt}}},
		},
	}

	body, _ := json.Marshal(payload)
	httpReq, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	client := &http.Client{}
	resp, err := client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("gemini request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("gemini API error: %s", string(respBody))
	}

	var result map[string]interface{}
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, err
	}

	text, err := extractCandidateText(result)
	if err != nil {
		return nil, err
	}

	return parseSuggestionJSON(text)
}

// extractCandidateText pulls the generated text out of a Gemini response
func extractCandidateText(result map[string]interface{}) (string, error) {
	if c, ok := result["candidates"].([]interface{}); ok && len(c) > 0 {
		if cand, ok := c[0].(map[string]interface{}); ok {
			if content, ok := cand["content"].(map[string]interface{}); ok {
				if parts, ok := content["parts"].([]interface{}); ok && len(parts) > 0 {
					if part, ok := parts[0].(map[string]interface{}); ok {
						if text, ok := part["text"].(string); ok {
							return text, nil
						}
					}
				}
			}
		}
	}
	return "", fmt.Errorf("no suggestion returned")
}

// parseSuggestionJSON decodes the model's JSON payload, tolerating markdown fences
func parseSuggestionJSON(text string) (*SnoozeSuggestion, error) {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	text = strings.TrimSpace(text)

	var raw geminiSuggestion
	if err := json.Unmarshal([]byte(text), &raw); err != nil {
		return nil, fmt.Errorf("unparseable suggestion: %w", err)
	}

	suggested, err := time.Parse(time.RFC3339, raw.SuggestedTime)
	if err != nil {
		return nil, fmt.Errorf("invalid suggested_time: %w", err)
	}

	suggestion := &SnoozeSuggestion{
		SuggestedTime: suggested,
		Reasoning:     raw.Reasoning,
		Confidence:    raw.Confidence,
	}
	for _, alt := range raw.AlternativeTimes {
		t, err := time.Parse(time.RFC3339, alt)
		if err != nil {
			continue
		}
		suggestion.AlternativeTimes = append(suggestion.AlternativeTimes, t)
	}

	return suggestion, nil
}
