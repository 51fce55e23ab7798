package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/zeenat-khan28/sports-dbms/internal/models"
	appErrors "github.com/zeenat-khan28/sports-dbms/pkg/errors"
	"github.com/zeenat-khan28/sports-dbms/pkg/mailer"
)

type eventRepository interface {
	List(ctx context.Context, upcomingOnly bool) ([]models.EventDetail, error)
	FindByID(ctx context.Context, id int64) (*models.EventDetail, error)
	Create(ctx context.Context, event *models.Event) error
	Update(ctx context.Context, event *models.Event) error
	Delete(ctx context.Context, id int64) error
}

type participationCleaner interface {
	DeleteByEvent(ctx context.Context, eventID int64) error
}

type approvedLister interface {
	ListApproved(ctx context.Context, branch string) ([]models.Submission, error)
}

// CreateEventRequest holds payload for creating events.
type CreateEventRequest struct {
	Name        string    `json:"name" validate:"required"`
	Location    *string   `json:"location"`
	StartDate   time.Time `json:"start_date" validate:"required"`
	EndDate     time.Time `json:"end_date" validate:"required"`
	Description *string   `json:"description"`
	Announce    bool      `json:"announce"`
}

// UpdateEventRequest holds payload for updating events.
type UpdateEventRequest struct {
	Name        string    `json:"name" validate:"required"`
	Location    *string   `json:"location"`
	StartDate   time.Time `json:"start_date" validate:"required"`
	EndDate     time.Time `json:"end_date" validate:"required"`
	Description *string   `json:"description"`
}

// EventService handles sports event use-cases.
type EventService struct {
	repo          eventRepository
	participation participationCleaner
	submissions   approvedLister
	notify        notifier
	validator     *validator.Validate
	logger        *zap.Logger
}

// NewEventService constructs the event service.
func NewEventService(repo eventRepository, participation participationCleaner, submissions approvedLister, notify notifier, validate *validator.Validate, logger *zap.Logger) *EventService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EventService{
		repo:          repo,
		participation: participation,
		submissions:   submissions,
		notify:        notify,
		validator:     validate,
		logger:        logger,
	}
}

// List returns events with their selected-participant counts.
func (s *EventService) List(ctx context.Context, upcomingOnly bool) ([]models.EventDetail, error) {
	events, err := s.repo.List(ctx, upcomingOnly)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list events")
	}
	return events, nil
}

// Get returns an event by ID.
func (s *EventService) Get(ctx context.Context, id int64) (*models.EventDetail, error) {
	event, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "event not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load event")
	}
	return event, nil
}

// Create registers a new event and, when requested, fans out an announcement
// email to every approved student through the background queue.
func (s *EventService) Create(ctx context.Context, createdBy int64, req CreateEventRequest) (*models.Event, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid event payload")
	}
	if req.EndDate.Before(req.StartDate) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "end_date must not be before start_date")
	}

	event := &models.Event{
		Name:        req.Name,
		Location:    req.Location,
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
		Description: req.Description,
		CreatedBy:   &createdBy,
	}
	if err := s.repo.Create(ctx, event); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create event")
	}

	if req.Announce && s.notify != nil {
		s.announce(ctx, event)
	}

	s.logger.Info("event created", zap.Int64("event_id", event.ID), zap.String("name", event.Name))
	return event, nil
}

// Update modifies an existing event.
func (s *EventService) Update(ctx context.Context, id int64, req UpdateEventRequest) (*models.Event, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid event payload")
	}
	if req.EndDate.Before(req.StartDate) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "end_date must not be before start_date")
	}

	detail, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "event not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load event")
	}

	event := detail.Event
	event.Name = req.Name
	event.Location = req.Location
	event.StartDate = req.StartDate
	event.EndDate = req.EndDate
	event.Description = req.Description
	if err := s.repo.Update(ctx, &event); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update event")
	}
	return &event, nil
}

// Delete removes an event, its relational participant and attendance rows,
// and its participation requests in the document store.
func (s *EventService) Delete(ctx context.Context, id int64) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "event not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load event")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete event")
	}

	if err := s.participation.DeleteByEvent(ctx, id); err != nil {
		s.logger.Warn("failed to delete participation requests for event",
			zap.Int64("event_id", id), zap.Error(err))
	}
	return nil
}

func (s *EventService) announce(ctx context.Context, event *models.Event) {
	students, err := s.submissions.ListApproved(ctx, "")
	if err != nil {
		s.logger.Warn("failed to load announcement recipients", zap.Error(err))
		return
	}

	dates := fmt.Sprintf("%s to %s",
		event.StartDate.Format("02 Jan 2006"), event.EndDate.Format("02 Jan 2006"))
	location := ""
	if event.Location != nil {
		location = *event.Location
	}
	for _, student := range students {
		if student.Email == "" {
			continue
		}
		s.notify.Notify(mailer.Message{
			To:      student.Email,
			Subject: "New Event: " + event.Name,
			Body: "Dear {{student_name}},\n\nA new sports event has been announced.\n\nEvent: " +
				event.Name + "\nDates: " + dates + "\nVenue: " + location +
				"\n\nSubmit your participation request from the portal.\n\nSports Department",
			Name:     student.StudentName,
			USN:      student.USN,
			Branch:   student.Branch,
			Semester: fmt.Sprintf("%d", student.Semester),
		})
	}
	s.logger.Info("event announcement queued",
		zap.Int64("event_id", event.ID),
		zap.Int("recipients", len(students)))
}
