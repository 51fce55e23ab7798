package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"github.com/zeenat-khan28/sports-dbms/internal/ledger"
	"github.com/zeenat-khan28/sports-dbms/internal/models"
	"github.com/zeenat-khan28/sports-dbms/internal/workflow"
	appErrors "github.com/zeenat-khan28/sports-dbms/pkg/errors"
	"github.com/zeenat-khan28/sports-dbms/pkg/mailer"
)

type participationRepository interface {
	Create(ctx context.Context, p *models.Participation) error
	FindByID(ctx context.Context, id string) (*models.Participation, error)
	List(ctx context.Context, filter models.ParticipationFilter) ([]models.Participation, error)
	Update(ctx context.Context, p *models.Participation) error
}

type eventFinder interface {
	FindByID(ctx context.Context, id int64) (*models.EventDetail, error)
}

type approvedStudentFinder interface {
	FindByUSN(ctx context.Context, usn string) (*models.Submission, error)
}

type participantMirror interface {
	UpsertParticipant(ctx context.Context, participant *models.ApprovedParticipant) error
}

type notifier interface {
	Notify(msg mailer.Message)
}

// CreateParticipationRequest holds a student's event participation request.
type CreateParticipationRequest struct {
	USN     string `json:"usn" validate:"required"`
	EventID int64  `json:"event_id" validate:"required"`
}

// DecideParticipationRequest carries the admin decision for a request.
type DecideParticipationRequest struct {
	Status models.ParticipationStatus `json:"status" validate:"required"`
}

// ParticipationService orchestrates event participation requests across the
// document store, the audit chain, the relational mirror and the notifier.
type ParticipationService struct {
	repo        participationRepository
	events      eventFinder
	submissions approvedStudentFinder
	mirror      participantMirror
	chain       auditChain
	notify      notifier
	metrics     *MetricsService
	validator   *validator.Validate
	logger      *zap.Logger
	now         func() time.Time
}

// NewParticipationService constructs the participation service.
func NewParticipationService(repo participationRepository, events eventFinder, submissions approvedStudentFinder, mirror participantMirror, chain auditChain, notify notifier, validate *validator.Validate, logger *zap.Logger) *ParticipationService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ParticipationService{
		repo:        repo,
		events:      events,
		submissions: submissions,
		mirror:      mirror,
		chain:       chain,
		notify:      notify,
		validator:   validate,
		logger:      logger,
		now:         time.Now,
	}
}

// WithMetrics attaches workflow instrumentation.
func (s *ParticipationService) WithMetrics(metrics *MetricsService) *ParticipationService {
	s.metrics = metrics
	return s
}

// Create files a new pending participation request. The student must hold an
// approved registration, the event must exist and must not have ended, and at
// most one request per (USN, event) pair is allowed.
func (s *ParticipationService) Create(ctx context.Context, req CreateParticipationRequest) (*models.Participation, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid participation payload")
	}

	usn := workflow.NormalizeUSN(req.USN)

	sub, err := s.submissions.FindByUSN(ctx, usn)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "no registration found for USN "+usn)
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load registration")
	}
	if sub.Status != models.SubmissionApproved {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "registration is not approved")
	}

	event, err := s.events.FindByID(ctx, req.EventID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "event not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load event")
	}
	if event.Ended(s.now()) {
		return nil, appErrors.Clone(appErrors.ErrEventEnded, "event has already ended")
	}

	p := &models.Participation{
		USN:         usn,
		StudentName: sub.StudentName,
		EventID:     event.ID,
		EventName:   event.Name,
		Status:      models.ParticipationPending,
		SubmittedAt: s.now().UTC(),
	}
	if err := s.repo.Create(ctx, p); err != nil {
		if appErrors.Is(err, appErrors.ErrDuplicate) {
			return nil, err
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create participation request")
	}

	s.logger.Info("participation requested",
		zap.String("usn", usn),
		zap.Int64("event_id", event.ID))
	return p, nil
}

// List returns participation requests matching the filter.
func (s *ParticipationService) List(ctx context.Context, filter models.ParticipationFilter) ([]models.Participation, error) {
	requests, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list participation requests")
	}
	return requests, nil
}

// Decide resolves a pending request to selected or dropped. Selecting appends
// an audit block, mirrors the participant to the relational store best-effort
// and queues a confirmation email; dropping only records the audit block.
// actorID is the deciding admin's user ID, recorded on the mirror row; 0
// leaves the column null.
func (s *ParticipationService) Decide(ctx context.Context, id, actor string, actorID int64, req DecideParticipationRequest) (*models.Participation, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid decision payload")
	}

	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "participation request not found")
		}
		if appErrors.Is(err, appErrors.ErrValidation) {
			return nil, err
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load participation request")
	}

	event, err := s.events.FindByID(ctx, p.EventID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "event not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load event")
	}

	decision, err := workflow.DecideParticipation(p.Status, req.Status, event.Ended(s.now()))
	if err != nil {
		return nil, err
	}

	hash, err := s.chain.Append(ctx, ledger.Entry{
		SubjectID: p.USN,
		EventID:   event.ID,
		EventName: event.Name,
		Action:    decision.AuditAction,
		Actor:     actor,
	})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to append audit block")
	}
	s.metrics.RecordAuditBlock()
	s.metrics.RecordDecision("participation", decision.AuditAction)

	now := s.now().UTC()
	p.Status = req.Status
	p.ProcessedAt = &now
	p.ProcessedBy = &actor
	p.AuditHash = &hash

	if err := s.repo.Update(ctx, p); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to persist decision")
	}

	if decision.MirrorParticipant {
		row := &models.ApprovedParticipant{
			USN:        p.USN,
			EventID:    p.EventID,
			Status:     string(models.ParticipationSelected),
			AuditHash:  &hash,
			ApprovedAt: &now,
		}
		if actorID != 0 {
			row.ApprovedBy = &actorID
		}
		if err := s.mirror.UpsertParticipant(ctx, row); err != nil {
			s.logger.Warn("relational mirror write failed",
				zap.String("usn", p.USN),
				zap.Int64("event_id", p.EventID),
				zap.Error(err))
		}
	}

	if decision.Notify && s.notify != nil {
		sub, err := s.submissions.FindByUSN(ctx, p.USN)
		if err != nil {
			s.logger.Warn("failed to resolve recipient for selection mail",
				zap.String("usn", p.USN), zap.Error(err))
		} else {
			s.notify.Notify(mailer.Message{
				To:      sub.Email,
				Subject: fmt.Sprintf("Selected for %s", event.Name),
				Body: "Dear {{student_name}},\n\nCongratulations! You have been selected for " +
					event.Name + ".\nPlease report to the sports department for further instructions.\n\nSports Department",
				Name:     sub.StudentName,
				USN:      sub.USN,
				Branch:   sub.Branch,
				Semester: fmt.Sprintf("%d", sub.Semester),
			})
		}
	}

	s.logger.Info("participation decided",
		zap.String("usn", p.USN),
		zap.Int64("event_id", p.EventID),
		zap.String("status", string(p.Status)),
		zap.String("actor", actor))
	return p, nil
}
