package domain

import "time"

// ClassificationResult is the output of the upstream message classifier.
// The classifier itself is an external collaborator; the queue only decides
// whether its result warrants a follow-up entry.
type ClassificationResult struct {
	NeedsReply      bool     `json:"needs_reply"`
	WaitingOnOthers bool     `json:"waiting_on_others"`
	Priority        Priority `json:"priority"`
	Category        string   `json:"category"`
	Labels          []string `json:"labels,omitempty"`
	IsVIP           bool     `json:"is_vip"`

	SuggestedSnoozeTime *time.Time `json:"suggested_snooze_time,omitempty"`
	SuggestedActions    []string   `json:"suggested_actions,omitempty"`
	AIReasoning         string     `json:"ai_reasoning,omitempty"`
}

// EmailMetadata carries the message identity and descriptive fields that
// accompany a classification result.
type EmailMetadata struct {
	EmailID      string    `json:"email_id"`
	ThreadID     string    `json:"thread_id"`
	Subject      string    `json:"subject"`
	From         string    `json:"from"`
	To           string    `json:"to"`
	ReceivedDate time.Time `json:"received_date"`
}
