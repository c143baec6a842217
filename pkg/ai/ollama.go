package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// OllamaService implements SnoozeSuggestionService using an Ollama local LLM
type OllamaService struct {
	getBaseURL func() string // Dynamic getter for BaseURL
	getModel   func() string // Dynamic getter for Model
}

// NewOllamaService creates a new Ollama service
func NewOllamaService(baseURL, model string) *OllamaService {
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}
	if model == "" {
		model = "llama3"
	}
	return &OllamaService{
		getBaseURL: func() string { return baseURL },
		getModel:   func() string { return model },
	}
}

// NewOllamaServiceWithGetters creates a new Ollama service with dynamic getters
// so the base URL and model can be changed at runtime through the settings API.
func NewOllamaServiceWithGetters(getBaseURL, getModel func() string) *OllamaService {
	return &OllamaService{
		getBaseURL: getBaseURL,
		getModel:   getModel,
	}
}

// SuggestSnoozeTime implements SnoozeSuggestionService
func (o *OllamaService) SuggestSnoozeTime(ctx context.Context, req SuggestionRequest) (*SnoozeSuggestion, error) {
	url := o.getBaseURL() + "/api/generate"

	now := time.Now()
	prompt := fmt.Sprintf(`You are an email follow-up assistant. Suggest when a snoozed email should resurface.

Current time: %s
Working hours: %02d:00-%02d:00
Priority: %s
Category: %s
Subject: %s

The suggested time must be in the future and inside working hours. Higher priority means sooner.

Respond with ONLY a JSON object, no markdown:
{"suggested_time":"<RFC3339>","reasoning":"<one sentence>","alternative_times":["<RFC3339>","<RFC3339>"],"confidence":<0..1>}`,
		now.Format(time.RFC3339),
		req.WorkingHoursStart, req.WorkingHoursEnd,
		req.Priority, req.Category, req.Subject)

	payload := map[string]interface{}{
		"model":  o.getModel(),
		"prompt": prompt,
		"stream": false,
		"options": map[string]interface{}{
			"temperature": 0.3,
			"num_predict": 200,
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	client := &http.Client{}
	resp, err := client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("ollama request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("ollama API error: %s", string(respBody))
	}

	var result struct {
		Response string `json:"response"`
	}
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, err
	}
	if result.Response == "" {
		return nil, fmt.Errorf("no suggestion returned")
	}

	return parseSuggestionJSON(result.Response)
}
