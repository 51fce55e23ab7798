package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/zeenat-khan28/sports-dbms/internal/models"
)

type mockCountStores struct {
	approved   int64
	events     int64
	selections int64
	total      int64
	present    int64
	eventList  []models.EventDetail
	students   []models.Submission
	eventStats []models.EventAttendanceStats
}

func (m *mockCountStores) CountByStatus(ctx context.Context, status models.SubmissionStatus) (int64, error) {
	return m.approved, nil
}

func (m *mockCountStores) ListApproved(ctx context.Context, branch string) ([]models.Submission, error) {
	return m.students, nil
}

func (m *mockCountStores) Count(ctx context.Context) (int64, error) {
	return m.events, nil
}

func (m *mockCountStores) List(ctx context.Context, upcomingOnly bool) ([]models.EventDetail, error) {
	return m.eventList, nil
}

func (m *mockCountStores) CountSelected(ctx context.Context) (int64, error) {
	return m.selections, nil
}

func (m *mockCountStores) Stats(ctx context.Context) (int64, int64, error) {
	return m.total, m.present, nil
}

func (m *mockCountStores) StatsByEvent(ctx context.Context) ([]models.EventAttendanceStats, error) {
	return m.eventStats, nil
}

type mockAnalyticsCache struct {
	values map[string][]byte
	reads  int
	writes int
}

func (m *mockAnalyticsCache) Get(ctx context.Context, key string, dest interface{}) error {
	m.reads++
	data, ok := m.values[key]
	if !ok {
		return redis.Nil
	}
	return json.Unmarshal(data, dest)
}

func (m *mockAnalyticsCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	m.writes++
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	if m.values == nil {
		m.values = make(map[string][]byte)
	}
	m.values[key] = data
	return nil
}

func TestAnalyticsServiceOverviewComputesRate(t *testing.T) {
	stores := &mockCountStores{approved: 40, events: 6, selections: 25, total: 100, present: 80}
	svc := NewAnalyticsService(stores, stores, stores, stores, nil, AnalyticsConfig{}, zap.NewNop())

	overview, err := svc.Overview(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(40), overview.TotalStudents)
	assert.Equal(t, int64(6), overview.TotalEvents)
	assert.Equal(t, int64(25), overview.TotalRegistrations)
	assert.InDelta(t, 80.0, overview.AvgAttendanceRate, 0.001)
}

func TestAnalyticsServiceOverviewZeroAttendance(t *testing.T) {
	stores := &mockCountStores{}
	svc := NewAnalyticsService(stores, stores, stores, stores, nil, AnalyticsConfig{}, zap.NewNop())

	overview, err := svc.Overview(context.Background())
	require.NoError(t, err)
	assert.Zero(t, overview.AvgAttendanceRate)
}

func TestAnalyticsServiceOverviewUsesCache(t *testing.T) {
	stores := &mockCountStores{approved: 40}
	cache := &mockAnalyticsCache{}
	svc := NewAnalyticsService(stores, stores, stores, stores, cache, AnalyticsConfig{CacheEnabled: true, CacheTTL: time.Minute}, zap.NewNop())

	first, err := svc.Overview(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, cache.writes)

	stores.approved = 99
	second, err := svc.Overview(context.Background())
	require.NoError(t, err)
	assert.Equal(t, first.TotalStudents, second.TotalStudents)
	assert.Equal(t, 1, cache.writes)
	assert.Equal(t, 2, cache.reads)
}

func analyticsEvent(id int64, name string, start time.Time, participants int) models.EventDetail {
	return models.EventDetail{
		Event:            models.Event{ID: id, Name: name, StartDate: start, EndDate: start.AddDate(0, 0, 1)},
		ParticipantCount: participants,
	}
}

func TestAnalyticsServiceParticipationBreakdown(t *testing.T) {
	now := time.Now()
	stores := &mockCountStores{
		eventList: []models.EventDetail{
			analyticsEvent(1, "Athletics", now, 3),
			analyticsEvent(2, "Cricket", now, 12),
			analyticsEvent(3, "Chess", now, 0),
		},
		students: []models.Submission{
			{USN: "1RV23CS001", Branch: "CSE", Semester: 3},
			{USN: "1RV23CS002", Branch: "CSE", Semester: 5},
			{USN: "1RV23ME001", Branch: "ME", Semester: 3},
		},
	}
	svc := NewAnalyticsService(stores, stores, stores, stores, nil, AnalyticsConfig{}, zap.NewNop())

	breakdown, err := svc.Participation(context.Background())
	require.NoError(t, err)

	require.Len(t, breakdown.EventParticipation, 2)
	assert.Equal(t, "Cricket", breakdown.EventParticipation[0].Name)
	assert.Equal(t, int64(12), breakdown.EventParticipation[0].Participants)
	assert.Equal(t, "Athletics", breakdown.EventParticipation[1].Name)

	require.Len(t, breakdown.BranchDistribution, 2)
	assert.Equal(t, models.BranchCount{Name: "CSE", Value: 2}, breakdown.BranchDistribution[0])
	assert.Equal(t, models.BranchCount{Name: "ME", Value: 1}, breakdown.BranchDistribution[1])

	require.Len(t, breakdown.SemesterDistribution, 2)
	assert.Equal(t, models.SemesterCount{Semester: "3", Count: 2}, breakdown.SemesterDistribution[0])
	assert.Equal(t, models.SemesterCount{Semester: "5", Count: 1}, breakdown.SemesterDistribution[1])
}

func TestAnalyticsServiceEventsTrendAndTop(t *testing.T) {
	base := time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)
	stores := &mockCountStores{
		eventList: []models.EventDetail{
			analyticsEvent(2, "Cricket", base.AddDate(0, 1, 0), 12),
			analyticsEvent(1, "Athletics", base, 3),
		},
	}
	svc := NewAnalyticsService(stores, stores, stores, stores, nil, AnalyticsConfig{}, zap.NewNop())

	analytics, err := svc.Events(context.Background())
	require.NoError(t, err)

	require.Len(t, analytics.EventTrend, 2)
	assert.Equal(t, "2026-01-10", analytics.EventTrend[0].Date)
	assert.Equal(t, "Athletics", analytics.EventTrend[0].Name)
	assert.Equal(t, "Cricket", analytics.EventTrend[1].Name)

	require.Len(t, analytics.TopEvents, 2)
	assert.Equal(t, "Cricket", analytics.TopEvents[0].Name)
	assert.Equal(t, int64(12), analytics.TopEvents[0].Participants)
}

func TestAnalyticsServiceAttendanceRates(t *testing.T) {
	now := time.Now()
	stores := &mockCountStores{
		eventList: []models.EventDetail{
			analyticsEvent(1, "Athletics", now, 3),
			analyticsEvent(2, "Cricket", now, 12),
		},
		eventStats: []models.EventAttendanceStats{
			{EventID: 1, Total: 10, Present: 9},
			{EventID: 2, Total: 8, Present: 2},
			{EventID: 9, Total: 4, Present: 4},
		},
	}
	svc := NewAnalyticsService(stores, stores, stores, stores, nil, AnalyticsConfig{}, zap.NewNop())

	analytics, err := svc.Attendance(context.Background())
	require.NoError(t, err)

	require.Len(t, analytics.AttendanceRates, 3)
	assert.Equal(t, "Event 9", analytics.AttendanceRates[0].Name)
	assert.InDelta(t, 100.0, analytics.AttendanceRates[0].Rate, 0.001)
	assert.Equal(t, "Athletics", analytics.AttendanceRates[1].Name)
	assert.InDelta(t, 90.0, analytics.AttendanceRates[1].Rate, 0.001)
	assert.Equal(t, "Cricket", analytics.AttendanceRates[2].Name)
	assert.InDelta(t, 25.0, analytics.AttendanceRates[2].Rate, 0.001)
}
