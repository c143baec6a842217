package delivery

import (
	"net/http"
	"time"

	"followup-backend/internal/snooze"
	"followup-backend/pkg/ai"

	"github.com/gin-gonic/gin"
)

// SnoozeHandler handles snooze suggestion HTTP requests
type SnoozeHandler struct {
	engine *snooze.Engine
}

// NewSnoozeHandler creates a new SnoozeHandler
func NewSnoozeHandler(engine *snooze.Engine) *SnoozeHandler {
	return &SnoozeHandler{engine: engine}
}

// LearnRequest records a user's chosen snooze time
type LearnRequest struct {
	ItemID     string    `json:"item_id" binding:"required"`
	ChosenTime time.Time `json:"chosen_time" binding:"required"`
}

// SuggestSnoozeTime returns a resurface-time suggestion for a message
// POST /api/snooze/suggest
func (h *SnoozeHandler) SuggestSnoozeTime(c *gin.Context) {
	var req ai.SuggestionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	suggestion := h.engine.SuggestSnoozeTime(c.Request.Context(), req)
	c.JSON(http.StatusOK, suggestion)
}

// GetQuickSnoozeOptions returns the preset snooze choices
// GET /api/snooze/options?timezone=Europe/Berlin
func (h *SnoozeHandler) GetQuickSnoozeOptions(c *gin.Context) {
	options := h.engine.GetQuickSnoozeOptions(c.Query("timezone"))
	c.JSON(http.StatusOK, gin.H{"options": options})
}

// LearnFromUserSnooze records which snooze time the user actually picked
// POST /api/snooze/learn
func (h *SnoozeHandler) LearnFromUserSnooze(c *gin.Context) {
	var req LearnRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	h.engine.LearnFromUserSnooze(req.ItemID, req.ChosenTime)
	c.JSON(http.StatusOK, gin.H{"message": "Snooze choice recorded"})
}
