package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/zeenat-khan28/sports-dbms/internal/models"
	"github.com/zeenat-khan28/sports-dbms/internal/workflow"
	appErrors "github.com/zeenat-khan28/sports-dbms/pkg/errors"
)

type attendanceRepository interface {
	ListByEventDate(ctx context.Context, eventID int64, date time.Time) ([]models.Attendance, error)
	Upsert(ctx context.Context, record *models.Attendance) error
}

type selectedParticipantLister interface {
	List(ctx context.Context, filter models.ParticipationFilter) ([]models.Participation, error)
}

// AttendanceMark is a single per-student mark within a bulk save.
type AttendanceMark struct {
	USN    string                  `json:"usn" validate:"required"`
	Status models.AttendanceStatus `json:"status" validate:"required"`
}

// SaveAttendanceRequest holds a bulk attendance save for one event and date.
type SaveAttendanceRequest struct {
	Date    time.Time        `json:"date" validate:"required"`
	Records []AttendanceMark `json:"records" validate:"required,min=1,dive"`
}

// AttendanceService manages per-day attendance for event participants.
type AttendanceService struct {
	repo          attendanceRepository
	events        eventFinder
	participation selectedParticipantLister
	validator     *validator.Validate
	logger        *zap.Logger
}

// NewAttendanceService constructs the attendance service.
func NewAttendanceService(repo attendanceRepository, events eventFinder, participation selectedParticipantLister, validate *validator.Validate, logger *zap.Logger) *AttendanceService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AttendanceService{repo: repo, events: events, participation: participation, validator: validate, logger: logger}
}

// Roster returns every selected participant of the event for the given date,
// joined with any attendance mark already recorded. Unmarked participants
// surface with a nil status so the UI can distinguish "absent" from "not yet
// marked".
func (s *AttendanceService) Roster(ctx context.Context, eventID int64, date time.Time) ([]models.AttendanceRosterRow, error) {
	if _, err := s.events.FindByID(ctx, eventID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "event not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load event")
	}

	selected := models.ParticipationSelected
	participants, err := s.participation.List(ctx, models.ParticipationFilter{EventID: eventID, Status: &selected})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list participants")
	}

	day := truncateToDay(date)
	marks, err := s.repo.ListByEventDate(ctx, eventID, day)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list attendance")
	}
	marked := make(map[string]models.Attendance, len(marks))
	for _, mark := range marks {
		marked[mark.USN] = mark
	}

	roster := make([]models.AttendanceRosterRow, 0, len(participants))
	for _, p := range participants {
		row := models.AttendanceRosterRow{
			EventID:     eventID,
			USN:         p.USN,
			StudentName: p.StudentName,
			Date:        day,
		}
		if mark, ok := marked[p.USN]; ok {
			row.Status = mark.Status
			row.MarkedAt = mark.MarkedAt
		}
		roster = append(roster, row)
	}
	return roster, nil
}

// BulkSave upserts attendance marks for an event and date. At most one row
// exists per (event, USN, date); re-marking overwrites the previous status.
func (s *AttendanceService) BulkSave(ctx context.Context, eventID, markedBy int64, req SaveAttendanceRequest) (int, error) {
	if err := s.validator.Struct(req); err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid attendance payload")
	}

	if _, err := s.events.FindByID(ctx, eventID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, appErrors.Clone(appErrors.ErrNotFound, "event not found")
		}
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load event")
	}

	for _, mark := range req.Records {
		if err := workflow.MarkAttendance(mark.Status); err != nil {
			return 0, err
		}
	}

	day := truncateToDay(req.Date)
	now := time.Now().UTC()
	saved := 0
	for _, mark := range req.Records {
		status := mark.Status
		record := &models.Attendance{
			EventID:  eventID,
			USN:      workflow.NormalizeUSN(mark.USN),
			Date:     day,
			Status:   &status,
			MarkedBy: &markedBy,
			MarkedAt: &now,
		}
		if err := s.repo.Upsert(ctx, record); err != nil {
			return saved, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save attendance")
		}
		saved++
	}

	s.logger.Info("attendance saved",
		zap.Int64("event_id", eventID),
		zap.Time("date", day),
		zap.Int("records", saved))
	return saved, nil
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
