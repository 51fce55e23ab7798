package service

import (
	"context"
	"errors"
	"math"
	"sort"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/zeenat-khan28/sports-dbms/internal/models"
	appErrors "github.com/zeenat-khan28/sports-dbms/pkg/errors"
)

const analyticsOverviewKey = "analytics:overview"

type analyticsCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
}

type submissionCounter interface {
	CountByStatus(ctx context.Context, status models.SubmissionStatus) (int64, error)
	ListApproved(ctx context.Context, branch string) ([]models.Submission, error)
}

type eventCounter interface {
	Count(ctx context.Context) (int64, error)
	List(ctx context.Context, upcomingOnly bool) ([]models.EventDetail, error)
}

type selectionCounter interface {
	CountSelected(ctx context.Context) (int64, error)
}

type attendanceStatsProvider interface {
	Stats(ctx context.Context) (total int64, present int64, err error)
	StatsByEvent(ctx context.Context) ([]models.EventAttendanceStats, error)
}

// AnalyticsConfig tunes caching of the dashboard overview.
type AnalyticsConfig struct {
	CacheEnabled bool
	CacheTTL     time.Duration
}

// AnalyticsService computes the dashboard analytics: the KPI overview
// (cached in Redis), participation breakdowns, the event timeline and
// per-event attendance rates.
type AnalyticsService struct {
	submissions submissionCounter
	events      eventCounter
	selections  selectionCounter
	attendance  attendanceStatsProvider
	cache       analyticsCache
	config      AnalyticsConfig
	logger      *zap.Logger
}

// NewAnalyticsService constructs the analytics service.
func NewAnalyticsService(submissions submissionCounter, events eventCounter, selections selectionCounter, attendance attendanceStatsProvider, cache analyticsCache, config AnalyticsConfig, logger *zap.Logger) *AnalyticsService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if config.CacheTTL <= 0 {
		config.CacheTTL = 10 * time.Minute
	}
	return &AnalyticsService{
		submissions: submissions,
		events:      events,
		selections:  selections,
		attendance:  attendance,
		cache:       cache,
		config:      config,
		logger:      logger,
	}
}

// Overview returns the KPI figures, served from cache when fresh. Cache
// failures degrade to a direct computation.
func (s *AnalyticsService) Overview(ctx context.Context) (*models.AnalyticsOverview, error) {
	if s.config.CacheEnabled && s.cache != nil {
		var cached models.AnalyticsOverview
		err := s.cache.Get(ctx, analyticsOverviewKey, &cached)
		if err == nil {
			return &cached, nil
		}
		if !errors.Is(err, redis.Nil) {
			s.logger.Warn("analytics cache read failed", zap.Error(err))
		}
	}

	overview, err := s.compute(ctx)
	if err != nil {
		return nil, err
	}

	if s.config.CacheEnabled && s.cache != nil {
		if err := s.cache.Set(ctx, analyticsOverviewKey, overview, s.config.CacheTTL); err != nil {
			s.logger.Warn("analytics cache write failed", zap.Error(err))
		}
	}
	return overview, nil
}

func (s *AnalyticsService) compute(ctx context.Context) (*models.AnalyticsOverview, error) {
	approved, err := s.submissions.CountByStatus(ctx, models.SubmissionApproved)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count approved students")
	}
	events, err := s.events.Count(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count events")
	}
	selections, err := s.selections.CountSelected(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count selections")
	}
	total, present, err := s.attendance.Stats(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to compute attendance stats")
	}

	rate := 0.0
	if total > 0 {
		rate = float64(present) / float64(total) * 100
	}
	return &models.AnalyticsOverview{
		TotalStudents:      approved,
		TotalEvents:        events,
		TotalRegistrations: selections,
		AvgAttendanceRate:  rate,
	}, nil
}

// Participation breaks selections down per event (top ten, busiest first)
// and approved students down per branch and semester.
func (s *AnalyticsService) Participation(ctx context.Context) (*models.ParticipationAnalytics, error) {
	events, err := s.events.List(ctx, false)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list events")
	}

	perEvent := make([]models.EventParticipationCount, 0, len(events))
	for _, event := range events {
		if event.ParticipantCount > 0 {
			perEvent = append(perEvent, models.EventParticipationCount{
				Name:         event.Name,
				Participants: int64(event.ParticipantCount),
			})
		}
	}
	sort.Slice(perEvent, func(i, j int) bool { return perEvent[i].Participants > perEvent[j].Participants })
	if len(perEvent) > 10 {
		perEvent = perEvent[:10]
	}

	students, err := s.submissions.ListApproved(ctx, "")
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list approved students")
	}

	branchCounts := map[string]int64{}
	semesterCounts := map[string]int64{}
	for _, student := range students {
		branch := student.Branch
		if branch == "" {
			branch = "Unknown"
		}
		branchCounts[branch]++
		semesterCounts[strconv.Itoa(student.Semester)]++
	}

	branches := make([]models.BranchCount, 0, len(branchCounts))
	for name, value := range branchCounts {
		branches = append(branches, models.BranchCount{Name: name, Value: value})
	}
	sort.Slice(branches, func(i, j int) bool { return branches[i].Name < branches[j].Name })

	semesters := make([]models.SemesterCount, 0, len(semesterCounts))
	for semester, count := range semesterCounts {
		semesters = append(semesters, models.SemesterCount{Semester: semester, Count: count})
	}
	sort.Slice(semesters, func(i, j int) bool { return semesters[i].Semester < semesters[j].Semester })

	return &models.ParticipationAnalytics{
		EventParticipation:   perEvent,
		BranchDistribution:   branches,
		SemesterDistribution: semesters,
	}, nil
}

// Events returns the selection count per event ordered along the calendar,
// plus the five most popular events.
func (s *AnalyticsService) Events(ctx context.Context) (*models.EventAnalytics, error) {
	events, err := s.events.List(ctx, false)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list events")
	}

	sort.Slice(events, func(i, j int) bool { return events[i].StartDate.Before(events[j].StartDate) })

	trend := make([]models.EventTrendPoint, 0, len(events))
	top := make([]models.EventParticipationCount, 0, len(events))
	for _, event := range events {
		trend = append(trend, models.EventTrendPoint{
			Date:         event.StartDate.Format("2006-01-02"),
			Name:         event.Name,
			Participants: int64(event.ParticipantCount),
		})
		top = append(top, models.EventParticipationCount{
			Name:         event.Name,
			Participants: int64(event.ParticipantCount),
		})
	}
	sort.Slice(top, func(i, j int) bool { return top[i].Participants > top[j].Participants })
	if len(top) > 5 {
		top = top[:5]
	}

	return &models.EventAnalytics{EventTrend: trend, TopEvents: top}, nil
}

// Attendance returns per-event attendance rates, best first. Events with no
// marked rows are omitted.
func (s *AnalyticsService) Attendance(ctx context.Context) (*models.AttendanceAnalytics, error) {
	stats, err := s.attendance.StatsByEvent(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to compute attendance stats")
	}
	events, err := s.events.List(ctx, false)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list events")
	}

	names := make(map[int64]string, len(events))
	for _, event := range events {
		names[event.ID] = event.Name
	}

	rates := make([]models.EventAttendanceRate, 0, len(stats))
	for _, stat := range stats {
		if stat.Total == 0 {
			continue
		}
		name, ok := names[stat.EventID]
		if !ok {
			name = "Event " + strconv.FormatInt(stat.EventID, 10)
		}
		rates = append(rates, models.EventAttendanceRate{
			Name:    name,
			Rate:    math.Round(float64(stat.Present)/float64(stat.Total)*1000) / 10,
			Present: stat.Present,
			Total:   stat.Total,
		})
	}
	sort.Slice(rates, func(i, j int) bool { return rates[i].Rate > rates[j].Rate })

	return &models.AttendanceAnalytics{AttendanceRates: rates}, nil
}
