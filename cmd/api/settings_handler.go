package api

import (
	"net/http"
	"sync"

	"followup-backend/internal/followup/domain"
	"followup-backend/internal/sla"

	"github.com/gin-gonic/gin"
)

// RuntimeConfig holds runtime-configurable settings
type RuntimeConfig struct {
	OllamaBaseURL string `json:"ollama_base_url"`
	OllamaModel   string `json:"ollama_model,omitempty"`
}

var (
	runtimeConfig     RuntimeConfig
	runtimeConfigLock sync.RWMutex
)

// InitRuntimeConfig initializes runtime config from static config
func InitRuntimeConfig(ollamaBaseURL, ollamaModel string) {
	runtimeConfigLock.Lock()
	defer runtimeConfigLock.Unlock()
	runtimeConfig = RuntimeConfig{
		OllamaBaseURL: ollamaBaseURL,
		OllamaModel:   ollamaModel,
	}
}

// GetRuntimeOllamaBaseURL returns the current runtime Ollama base URL
func GetRuntimeOllamaBaseURL() string {
	runtimeConfigLock.RLock()
	defer runtimeConfigLock.RUnlock()
	return runtimeConfig.OllamaBaseURL
}

// GetRuntimeOllamaModel returns the current runtime Ollama model
func GetRuntimeOllamaModel() string {
	runtimeConfigLock.RLock()
	defer runtimeConfigLock.RUnlock()
	return runtimeConfig.OllamaModel
}

// UpdateOllamaSettingsRequest represents the request body for updating Ollama settings
type UpdateOllamaSettingsRequest struct {
	OllamaBaseURL string `json:"ollama_base_url" binding:"required"`
	OllamaModel   string `json:"ollama_model,omitempty"`
}

// GetOllamaSettings returns current Ollama configuration
// GET /api/settings/ollama
func GetOllamaSettings(c *gin.Context) {
	runtimeConfigLock.RLock()
	defer runtimeConfigLock.RUnlock()

	c.JSON(http.StatusOK, gin.H{
		"ollama_base_url": runtimeConfig.OllamaBaseURL,
		"ollama_model":    runtimeConfig.OllamaModel,
	})
}

// UpdateOllamaSettings updates Ollama configuration at runtime
// PUT /api/settings/ollama
func UpdateOllamaSettings(c *gin.Context) {
	var req UpdateOllamaSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	runtimeConfigLock.Lock()
	runtimeConfig.OllamaBaseURL = req.OllamaBaseURL
	if req.OllamaModel != "" {
		runtimeConfig.OllamaModel = req.OllamaModel
	}
	runtimeConfigLock.Unlock()

	c.JSON(http.StatusOK, gin.H{
		"message":         "Ollama settings updated successfully",
		"ollama_base_url": req.OllamaBaseURL,
		"ollama_model":    GetRuntimeOllamaModel(),
	})
}

// UpdateSLASettingsRequest represents the request body for updating SLA settings.
// Pointer fields are optional; absent fields keep their current value.
type UpdateSLASettingsRequest struct {
	CriticalHours     *float64 `json:"critical_hours,omitempty"`
	HighHours         *float64 `json:"high_hours,omitempty"`
	MediumHours       *float64 `json:"medium_hours,omitempty"`
	LowHours          *float64 `json:"low_hours,omitempty"`
	AdjustForWeekends *bool    `json:"adjust_for_weekends,omitempty"`
	WorkingHoursStart *int     `json:"working_hours_start,omitempty"`
	WorkingHoursEnd   *int     `json:"working_hours_end,omitempty"`
}

// GetSLASettings returns the current SLA configuration
// GET /api/settings/sla
func GetSLASettings(tracker *sla.Tracker) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, tracker.Config())
	}
}

// UpdateSLASettings applies a partial SLA configuration update at runtime.
// New deadlines use the updated config; existing deadlines are not recomputed.
func UpdateSLASettings(tracker *sla.Tracker) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req UpdateSLASettingsRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		cfg := tracker.Config()
		if req.CriticalHours != nil {
			cfg.CriticalHours = *req.CriticalHours
		}
		if req.HighHours != nil {
			cfg.HighHours = *req.HighHours
		}
		if req.MediumHours != nil {
			cfg.MediumHours = *req.MediumHours
		}
		if req.LowHours != nil {
			cfg.LowHours = *req.LowHours
		}
		if req.AdjustForWeekends != nil {
			cfg.AdjustForWeekends = *req.AdjustForWeekends
		}
		if req.WorkingHoursStart != nil {
			cfg.WorkingHoursStart = *req.WorkingHoursStart
		}
		if req.WorkingHoursEnd != nil {
			cfg.WorkingHoursEnd = *req.WorkingHoursEnd
		}

		if err := validateSLAConfig(cfg); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		tracker.UpdateConfig(cfg)
		c.JSON(http.StatusOK, gin.H{
			"message": "SLA settings updated successfully",
			"config":  cfg,
		})
	}
}

func validateSLAConfig(cfg domain.SLAConfig) error {
	if cfg.WorkingHoursStart < 0 || cfg.WorkingHoursEnd > 24 || cfg.WorkingHoursStart >= cfg.WorkingHoursEnd {
		return &domain.ValidationError{Violations: []string{"working hours window must satisfy 0 <= start < end <= 24"}}
	}
	if cfg.CriticalHours <= 0 || cfg.HighHours <= 0 || cfg.MediumHours <= 0 || cfg.LowHours <= 0 {
		return &domain.ValidationError{Violations: []string{"SLA hours must be positive"}}
	}
	return nil
}
