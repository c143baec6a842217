package sla

import (
	"context"
	"testing"
	"time"

	"followup-backend/internal/followup/domain"
	"followup-backend/internal/followup/repository"
	"followup-backend/pkg/metrics"
	"followup-backend/pkg/vip"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeItemRepo struct {
	byStatus    map[domain.ItemStatus][]*domain.FollowUpItem
	bySLAStatus map[domain.SLAStatus][]*domain.FollowUpItem
	updated     []*domain.FollowUpItem
}

func newFakeItemRepo() *fakeItemRepo {
	return &fakeItemRepo{
		byStatus:    make(map[domain.ItemStatus][]*domain.FollowUpItem),
		bySLAStatus: make(map[domain.SLAStatus][]*domain.FollowUpItem),
	}
}

func (f *fakeItemRepo) Create(ctx context.Context, item *domain.FollowUpItem) error { return nil }
func (f *fakeItemRepo) FindByID(ctx context.Context, id string) (*domain.FollowUpItem, error) {
	return nil, nil
}
func (f *fakeItemRepo) FindByEmailID(ctx context.Context, emailID string) (*domain.FollowUpItem, error) {
	return nil, nil
}
func (f *fakeItemRepo) FindActive(ctx context.Context, query repository.ActiveItemsQuery) ([]*domain.FollowUpItem, error) {
	return nil, nil
}
func (f *fakeItemRepo) FindByStatus(ctx context.Context, status domain.ItemStatus) ([]*domain.FollowUpItem, error) {
	return f.byStatus[status], nil
}
func (f *fakeItemRepo) FindSnoozedBefore(ctx context.Context, t time.Time) ([]*domain.FollowUpItem, error) {
	return nil, nil
}
func (f *fakeItemRepo) FindActiveBySLAStatus(ctx context.Context, slaStatus domain.SLAStatus) ([]*domain.FollowUpItem, error) {
	return f.bySLAStatus[slaStatus], nil
}
func (f *fakeItemRepo) FindAll(ctx context.Context) ([]*domain.FollowUpItem, error) {
	return nil, nil
}
func (f *fakeItemRepo) Update(ctx context.Context, item *domain.FollowUpItem) error {
	f.updated = append(f.updated, item)
	return nil
}
func (f *fakeItemRepo) Delete(ctx context.Context, id string) error { return nil }

type fakeEscalator struct {
	calls map[string]domain.Priority
}

func (f *fakeEscalator) Escalate(ctx context.Context, id string, newPriority domain.Priority) (*domain.FollowUpItem, error) {
	if f.calls == nil {
		f.calls = make(map[string]domain.Priority)
	}
	f.calls[id] = newPriority
	return &domain.FollowUpItem{ID: id, Priority: newPriority, Status: domain.StatusEscalated}, nil
}

func newTestTracker(repo repository.ItemRepository) *Tracker {
	return NewTracker(testConfig(), repo, metrics.New())
}

func TestGetSLAStatus(t *testing.T) {
	tr := newTestTracker(newFakeItemRepo())

	tests := []struct {
		name     string
		deadline time.Time
		priority domain.Priority
		want     domain.SLAStatus
	}{
		{"overdue when past", time.Now().Add(-time.Minute), domain.PriorityMedium, domain.SLAOverdue},
		{"critical at risk within 1h", time.Now().Add(30 * time.Minute), domain.PriorityCritical, domain.SLAAtRisk},
		{"critical on time beyond 1h", time.Now().Add(90 * time.Minute), domain.PriorityCritical, domain.SLAOnTime},
		{"high at risk within 2h", time.Now().Add(time.Hour), domain.PriorityHigh, domain.SLAAtRisk},
		{"medium at risk within 4h", time.Now().Add(3 * time.Hour), domain.PriorityMedium, domain.SLAAtRisk},
		{"low at risk within 8h", time.Now().Add(7 * time.Hour), domain.PriorityLow, domain.SLAAtRisk},
		{"low on time beyond 8h", time.Now().Add(9 * time.Hour), domain.PriorityLow, domain.SLAOnTime},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tr.GetSLAStatus(tt.deadline, tt.priority))
		})
	}
}

func TestCalculateDeadline_UsesPriorityHours(t *testing.T) {
	tr := newTestTracker(newFakeItemRepo())
	received := time.Date(2026, 1, 5, 10, 0, 0, 0, time.UTC) // Monday

	item := &domain.FollowUpItem{Priority: domain.PriorityCritical, ReceivedDate: received}
	got := tr.CalculateDeadline(item, nil)
	assert.Equal(t, AddBusinessHours(received, 4, testConfig()), got)
}

func TestCalculateDeadline_VIPOverride(t *testing.T) {
	tr := newTestTracker(newFakeItemRepo())
	received := time.Date(2026, 1, 5, 10, 0, 0, 0, time.UTC)

	vipHours := 2.0
	contact := &vip.Contact{EmailAddress: "ceo@example.com", SLAHours: &vipHours}

	item := &domain.FollowUpItem{Priority: domain.PriorityLow, ReceivedDate: received}
	got := tr.CalculateDeadline(item, contact)

	assert.Equal(t, AddBusinessHours(received, 2, testConfig()), got)
	assert.True(t, got.Before(tr.CalculateDeadline(item, nil)))
}

func TestUpdateConfig_HotReload(t *testing.T) {
	tr := newTestTracker(newFakeItemRepo())

	cfg := tr.Config()
	cfg.CriticalHours = 1
	cfg.WorkingHoursEnd = 18
	tr.UpdateConfig(cfg)

	got := tr.Config()
	assert.Equal(t, 1.0, got.CriticalHours)
	assert.Equal(t, 18, got.WorkingHoursEnd)
}

func TestUpdateItemSLAStatus_SkipsUnchanged(t *testing.T) {
	repo := newFakeItemRepo()
	tr := newTestTracker(repo)

	deadline := time.Now().Add(48 * time.Hour)
	remaining := tr.GetTimeRemaining(deadline)
	item := &domain.FollowUpItem{
		ID:            "i1",
		Priority:      domain.PriorityMedium,
		SLADeadline:   &deadline,
		SLAStatus:     domain.SLAOnTime,
		TimeRemaining: &remaining,
	}

	changed, err := tr.UpdateItemSLAStatus(context.Background(), item)
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Empty(t, repo.updated)
}

func TestUpdateItemSLAStatus_WritesOnDrift(t *testing.T) {
	repo := newFakeItemRepo()
	tr := newTestTracker(repo)

	deadline := time.Now().Add(48 * time.Hour)
	stale := tr.GetTimeRemaining(deadline) - 2 // more than the 1h tolerance
	item := &domain.FollowUpItem{
		ID:            "i1",
		Priority:      domain.PriorityMedium,
		SLADeadline:   &deadline,
		SLAStatus:     domain.SLAOnTime,
		TimeRemaining: &stale,
	}

	changed, err := tr.UpdateItemSLAStatus(context.Background(), item)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Len(t, repo.updated, 1)
}

func TestUpdateItemSLAStatus_WritesOnStatusChange(t *testing.T) {
	repo := newFakeItemRepo()
	tr := newTestTracker(repo)

	deadline := time.Now().Add(-time.Hour)
	remaining := tr.GetTimeRemaining(deadline)
	item := &domain.FollowUpItem{
		ID:            "i1",
		Priority:      domain.PriorityMedium,
		SLADeadline:   &deadline,
		SLAStatus:     domain.SLAOnTime,
		TimeRemaining: &remaining,
	}

	changed, err := tr.UpdateItemSLAStatus(context.Background(), item)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, domain.SLAOverdue, item.SLAStatus)
}

func TestUpdateItemSLAStatus_NoDeadline(t *testing.T) {
	repo := newFakeItemRepo()
	tr := newTestTracker(repo)

	changed, err := tr.UpdateItemSLAStatus(context.Background(), &domain.FollowUpItem{ID: "i1"})
	require.NoError(t, err)
	assert.False(t, changed)
}

func TestEscalateAtRisk(t *testing.T) {
	repo := newFakeItemRepo()
	repo.bySLAStatus[domain.SLAAtRisk] = []*domain.FollowUpItem{
		{ID: "a", Priority: domain.PriorityHigh},
		{ID: "b", Priority: domain.PriorityCritical}, // already at ceiling
		{ID: "c", Priority: domain.PriorityLow},
	}

	tr := newTestTracker(repo)
	esc := &fakeEscalator{}
	tr.SetEscalator(esc)

	escalated, err := tr.EscalateAtRisk(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, escalated)
	assert.Equal(t, domain.PriorityCritical, esc.calls["a"])
	assert.Equal(t, domain.PriorityMedium, esc.calls["c"])
	assert.NotContains(t, esc.calls, "b")
}

func TestEscalateAtRisk_NoEscalatorWired(t *testing.T) {
	repo := newFakeItemRepo()
	repo.bySLAStatus[domain.SLAAtRisk] = []*domain.FollowUpItem{{ID: "a", Priority: domain.PriorityLow}}

	tr := newTestTracker(repo)
	escalated, err := tr.EscalateAtRisk(context.Background())
	require.NoError(t, err)
	assert.Zero(t, escalated)
}

func TestCheckAndAlertOverdue(t *testing.T) {
	repo := newFakeItemRepo()
	deadline := time.Now().Add(-3 * time.Hour)
	repo.bySLAStatus[domain.SLAOverdue] = []*domain.FollowUpItem{
		{ID: "a", Subject: "urgent", SLADeadline: &deadline},
		{ID: "b", Subject: "also urgent", SLADeadline: &deadline},
	}

	tr := newTestTracker(repo)
	overdue, err := tr.CheckAndAlertOverdue(context.Background())
	require.NoError(t, err)
	assert.Len(t, overdue, 2)
}
