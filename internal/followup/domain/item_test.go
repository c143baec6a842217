package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPriorityEscalate(t *testing.T) {
	assert.Equal(t, PriorityMedium, PriorityLow.Escalate())
	assert.Equal(t, PriorityHigh, PriorityMedium.Escalate())
	assert.Equal(t, PriorityCritical, PriorityHigh.Escalate())
	assert.Equal(t, PriorityCritical, PriorityCritical.Escalate())
	assert.Equal(t, PriorityCritical, Priority("bogus").Escalate())
}

func TestPriorityValid(t *testing.T) {
	for _, p := range []Priority{PriorityCritical, PriorityHigh, PriorityMedium, PriorityLow} {
		assert.True(t, p.Valid(), p)
	}
	assert.False(t, Priority("urgent").Valid())
	assert.False(t, Priority("").Valid())
}

func TestFollowUpItemValidate(t *testing.T) {
	now := time.Now()

	valid := FollowUpItem{
		EmailID:  "e1",
		ThreadID: "t1",
		Priority: PriorityMedium,
		Status:   StatusActive,
	}
	assert.NoError(t, valid.Validate(now))

	past := now.Add(-time.Hour)
	broken := FollowUpItem{
		Priority:     Priority("urgent"),
		Status:       ItemStatus("hidden"),
		SnoozedUntil: &past,
	}

	err := broken.Validate(now)
	require.Error(t, err)
	require.True(t, IsValidationError(err))

	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Len(t, ve.Violations, 5)
	assert.Contains(t, err.Error(), "email_id is required")
	assert.Contains(t, err.Error(), "snoozed_until must not be in the past")
}

func TestFollowUpItemValidate_FutureSnooze(t *testing.T) {
	now := time.Now()
	future := now.Add(time.Hour)
	item := FollowUpItem{
		EmailID:      "e1",
		ThreadID:     "t1",
		Priority:     PriorityLow,
		Status:       StatusSnoozed,
		SnoozedUntil: &future,
	}
	assert.NoError(t, item.Validate(now))
}
