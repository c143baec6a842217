package delivery

import (
	"net/http"
	"strconv"
	"time"

	"followup-backend/internal/followup/domain"
	"followup-backend/internal/followup/repository"
	"followup-backend/internal/followup/usecase"
	"followup-backend/internal/sla"

	"github.com/gin-gonic/gin"
)

// FollowUpHandler handles follow-up queue HTTP requests
type FollowUpHandler struct {
	queue   usecase.QueueUsecase
	tracker *sla.Tracker
}

// NewFollowUpHandler creates a new FollowUpHandler
func NewFollowUpHandler(queue usecase.QueueUsecase, tracker *sla.Tracker) *FollowUpHandler {
	return &FollowUpHandler{
		queue:   queue,
		tracker: tracker,
	}
}

// AddItemRequest represents the request body for adding a follow-up item
type AddItemRequest struct {
	EmailID      string     `json:"email_id" binding:"required"`
	ThreadID     string     `json:"thread_id" binding:"required"`
	Subject      string     `json:"subject"`
	From         string     `json:"from"`
	To           string     `json:"to"`
	ReceivedDate *time.Time `json:"received_date"`
	Category     string     `json:"category"`
	Labels       []string   `json:"labels"`
	Priority     string     `json:"priority"`
	Reason       string     `json:"reason"`
}

// MarkWaitingRequest represents the request body for marking an item waiting
type MarkWaitingRequest struct {
	WaitingOn string `json:"waiting_on" binding:"required"`
	Reason    string `json:"reason"`
}

// EscalateRequest represents the request body for a manual escalation
type EscalateRequest struct {
	Priority string `json:"priority" binding:"required"`
}

// BulkRequest represents the request body for bulk operations
type BulkRequest struct {
	IDs    []string               `json:"ids" binding:"required"`
	Snooze *usecase.SnoozeRequest `json:"snooze,omitempty"`
}

// ClassificationRequest pairs a classification result with email metadata
type ClassificationRequest struct {
	Classification domain.ClassificationResult `json:"classification" binding:"required"`
	Email          domain.EmailMetadata        `json:"email" binding:"required"`
}

func respondError(c *gin.Context, err error) {
	switch {
	case domain.IsValidationError(err):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case err == domain.ErrNotFound:
		c.JSON(http.StatusNotFound, gin.H{"error": "Follow-up item not found"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

// AddItem queues a new follow-up item
// POST /api/followups
func (h *FollowUpHandler) AddItem(c *gin.Context) {
	var req AddItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	item := &domain.FollowUpItem{
		EmailID:  req.EmailID,
		ThreadID: req.ThreadID,
		Subject:  req.Subject,
		From:     req.From,
		To:       req.To,
		Category: req.Category,
		Labels:   domain.LabelSet(req.Labels),
		Priority: domain.Priority(req.Priority),
		Reason:   domain.ItemReason(req.Reason),
	}
	if req.ReceivedDate != nil {
		item.ReceivedDate = *req.ReceivedDate
	}
	if req.Priority == "" {
		item.Priority = domain.PriorityMedium
	}

	created, err := h.queue.AddItem(c.Request.Context(), item)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, created)
}

// GetItem returns a single follow-up item
// GET /api/followups/:id
func (h *FollowUpHandler) GetItem(c *gin.Context) {
	item, err := h.queue.GetItem(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	if item == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Follow-up item not found"})
		return
	}
	c.JSON(http.StatusOK, item)
}

// GetActiveItems returns active items with optional filters
// GET /api/followups?priority=high&category=work&limit=50&offset=0
func (h *FollowUpHandler) GetActiveItems(c *gin.Context) {
	query := repository.ActiveItemsQuery{
		Category: c.Query("category"),
	}
	if p := c.Query("priority"); p != "" {
		priority := domain.Priority(p)
		query.Priority = &priority
	}
	query.Limit, _ = strconv.Atoi(c.DefaultQuery("limit", "50"))
	query.Offset, _ = strconv.Atoi(c.DefaultQuery("offset", "0"))

	items, err := h.queue.GetActiveItems(c.Request.Context(), query)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items, "count": len(items)})
}

// GetWaitingItems returns items waiting on others
// GET /api/followups/waiting
func (h *FollowUpHandler) GetWaitingItems(c *gin.Context) {
	items, err := h.queue.GetWaitingItems(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items, "count": len(items)})
}

// GetOverdueItems returns active items past their SLA deadline
// GET /api/followups/overdue
func (h *FollowUpHandler) GetOverdueItems(c *gin.Context) {
	items, err := h.queue.GetOverdueItems(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items, "count": len(items)})
}

// GetItemsByPriority returns active items at one priority level
// GET /api/followups/priority/:priority
func (h *FollowUpHandler) GetItemsByPriority(c *gin.Context) {
	items, err := h.queue.GetItemsByPriority(c.Request.Context(), domain.Priority(c.Param("priority")))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items, "count": len(items)})
}

// UpdateItem applies a partial update
// PUT /api/followups/:id
func (h *FollowUpHandler) UpdateItem(c *gin.Context) {
	var updates usecase.ItemUpdates
	if err := c.ShouldBindJSON(&updates); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	item, err := h.queue.UpdateItem(c.Request.Context(), c.Param("id"), updates)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

// RemoveItem deletes a follow-up item
// DELETE /api/followups/:id
func (h *FollowUpHandler) RemoveItem(c *gin.Context) {
	if err := h.queue.RemoveItem(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Follow-up item removed"})
}

// SnoozeItem hides an item until a future time
// POST /api/followups/:id/snooze
func (h *FollowUpHandler) SnoozeItem(c *gin.Context) {
	var req usecase.SnoozeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	item, err := h.queue.SnoozeItem(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

// MarkCompleted completes a follow-up item
// POST /api/followups/:id/complete
func (h *FollowUpHandler) MarkCompleted(c *gin.Context) {
	item, err := h.queue.MarkCompleted(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

// MarkWaiting marks an item as waiting on someone else
// POST /api/followups/:id/waiting
func (h *FollowUpHandler) MarkWaiting(c *gin.Context) {
	var req MarkWaitingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	item, err := h.queue.MarkWaiting(c.Request.Context(), c.Param("id"), req.WaitingOn, req.Reason)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

// Escalate raises an item's priority
// POST /api/followups/:id/escalate
func (h *FollowUpHandler) Escalate(c *gin.Context) {
	var req EscalateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	item, err := h.queue.Escalate(c.Request.Context(), c.Param("id"), domain.Priority(req.Priority))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

// BulkSnooze snoozes multiple items, reporting per-item outcomes
// POST /api/followups/bulk/snooze
func (h *FollowUpHandler) BulkSnooze(c *gin.Context) {
	var req BulkRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Snooze == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ids and snooze options are required"})
		return
	}

	result := h.queue.BulkSnooze(c.Request.Context(), req.IDs, *req.Snooze)
	c.JSON(http.StatusOK, result)
}

// BulkComplete completes multiple items, reporting per-item outcomes
// POST /api/followups/bulk/complete
func (h *FollowUpHandler) BulkComplete(c *gin.Context) {
	var req BulkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result := h.queue.BulkComplete(c.Request.Context(), req.IDs)
	c.JSON(http.StatusOK, result)
}

// ProcessClassification decides whether a classification warrants a queue entry
// POST /api/classifications
func (h *FollowUpHandler) ProcessClassification(c *gin.Context) {
	var req ClassificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	item, err := h.queue.ProcessNewClassification(c.Request.Context(), req.Classification, req.Email)
	if err != nil {
		respondError(c, err)
		return
	}
	if item == nil {
		c.JSON(http.StatusOK, gin.H{"queued": false})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"queued": true, "item": item})
}

// GetStatistics returns queue-wide aggregates
// GET /api/followups/stats
func (h *FollowUpHandler) GetStatistics(c *gin.Context) {
	stats, err := h.queue.GetStatistics(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// GetItemHistory returns the audit trail for an email, newest first
// GET /api/followups/history/:emailId
func (h *FollowUpHandler) GetItemHistory(c *gin.Context) {
	entries, err := h.queue.GetItemHistory(c.Request.Context(), c.Param("emailId"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"history": entries, "count": len(entries)})
}

// RunSnoozedSweep resurfaces elapsed snoozes
// POST /api/sweeps/snoozed
func (h *FollowUpHandler) RunSnoozedSweep(c *gin.Context) {
	resurfaced, err := h.queue.CheckSnoozedItems(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"resurfaced": resurfaced, "count": len(resurfaced)})
}

// RunSLASweep recomputes SLA statuses for all active items
// POST /api/sweeps/sla
func (h *FollowUpHandler) RunSLASweep(c *gin.Context) {
	updated, err := h.tracker.UpdateAllSLAStatuses(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"updated": updated})
}

// RunEscalationSweep escalates all at-risk items one level
// POST /api/sweeps/escalate
func (h *FollowUpHandler) RunEscalationSweep(c *gin.Context) {
	escalated, err := h.tracker.EscalateAtRisk(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"escalated": escalated})
}

// RunOverdueSweep reports all overdue active items
// POST /api/sweeps/overdue
func (h *FollowUpHandler) RunOverdueSweep(c *gin.Context) {
	overdue, err := h.tracker.CheckAndAlertOverdue(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"overdue": overdue, "count": len(overdue)})
}
