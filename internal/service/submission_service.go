package service

import (
	"context"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"github.com/zeenat-khan28/sports-dbms/internal/ledger"
	"github.com/zeenat-khan28/sports-dbms/internal/models"
	"github.com/zeenat-khan28/sports-dbms/internal/workflow"
	appErrors "github.com/zeenat-khan28/sports-dbms/pkg/errors"
)

// serialSequence names the registration serial number counter.
const serialSequence = "sln"

type submissionRepository interface {
	Create(ctx context.Context, sub *models.Submission) error
	FindByID(ctx context.Context, id string) (*models.Submission, error)
	FindByUSN(ctx context.Context, usn string) (*models.Submission, error)
	List(ctx context.Context, filter models.SubmissionFilter) ([]models.Submission, int, error)
	Update(ctx context.Context, sub *models.Submission) error
	Delete(ctx context.Context, id string) error
}

type serialAllocator interface {
	Next(ctx context.Context, name string) (int, error)
}

type studentMirror interface {
	UpsertStudent(ctx context.Context, student *models.ApprovedStudent) error
}

type auditChain interface {
	Append(ctx context.Context, e ledger.Entry) (string, error)
}

// CreateSubmissionRequest holds the student registration payload.
type CreateSubmissionRequest struct {
	StudentName     string  `json:"student_name" validate:"required"`
	USN             string  `json:"usn" validate:"required"`
	Email           string  `json:"email" validate:"required,email"`
	Branch          string  `json:"branch" validate:"required"`
	Semester        int     `json:"semester" validate:"required,min=1,max=8"`
	DateOfBirth     string  `json:"date_of_birth" validate:"required"`
	ContactAddress  string  `json:"contact_address" validate:"required"`
	BloodGroup      string  `json:"blood_group" validate:"required"`
	Phone           string  `json:"phone" validate:"required"`
	ParentName      string  `json:"parent_name" validate:"required"`
	MotherName      string  `json:"mother_name" validate:"required"`
	PhotoBase64     *string `json:"photo_base64,omitempty"`
	SignatureBase64 *string `json:"signature_base64,omitempty"`
}

// RejectSubmissionRequest carries the mandatory rejection reason.
type RejectSubmissionRequest struct {
	Reason string `json:"reason" validate:"required"`
}

// SubmissionService orchestrates the registration workflow across the
// document store (authoritative), the audit chain and the relational mirror.
type SubmissionService struct {
	repo      submissionRepository
	counters  serialAllocator
	mirror    studentMirror
	chain     auditChain
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewSubmissionService constructs the submission service.
func NewSubmissionService(repo submissionRepository, counters serialAllocator, mirror studentMirror, chain auditChain, validate *validator.Validate, logger *zap.Logger) *SubmissionService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SubmissionService{repo: repo, counters: counters, mirror: mirror, chain: chain, validator: validate, logger: logger}
}

// WithMetrics attaches workflow instrumentation. All recorders are nil-safe so
// tests can skip this.
func (s *SubmissionService) WithMetrics(metrics *MetricsService) *SubmissionService {
	s.metrics = metrics
	return s
}

// Create registers a new pending submission. The USN is upper-cased before it
// is used as an identity key; a duplicate USN surfaces as ErrDuplicate.
func (s *SubmissionService) Create(ctx context.Context, req CreateSubmissionRequest) (*models.Submission, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid submission payload")
	}

	sub := &models.Submission{
		StudentName:     req.StudentName,
		USN:             workflow.NormalizeUSN(req.USN),
		Email:           req.Email,
		Branch:          req.Branch,
		Semester:        req.Semester,
		DateOfBirth:     req.DateOfBirth,
		ContactAddress:  req.ContactAddress,
		BloodGroup:      req.BloodGroup,
		Phone:           req.Phone,
		ParentName:      req.ParentName,
		MotherName:      req.MotherName,
		PhotoBase64:     req.PhotoBase64,
		SignatureBase64: req.SignatureBase64,
		Status:          models.SubmissionPending,
		SubmittedAt:     time.Now().UTC(),
	}

	if err := s.repo.Create(ctx, sub); err != nil {
		if appErrors.Is(err, appErrors.ErrDuplicate) {
			return nil, err
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create submission")
	}

	s.logger.Info("submission created", zap.String("usn", sub.USN), zap.String("branch", sub.Branch))
	return sub, nil
}

// List returns submissions matching the filter plus pagination metadata.
func (s *SubmissionService) List(ctx context.Context, filter models.SubmissionFilter) ([]models.Submission, *models.Pagination, error) {
	subs, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list submissions")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 {
		size = 20
	}
	return subs, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// Get returns a single submission by ID.
func (s *SubmissionService) Get(ctx context.Context, id string) (*models.Submission, error) {
	sub, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, s.mapLoadError(err, "submission not found", "failed to load submission")
	}
	return sub, nil
}

// Approve moves a submission to approved. On first approval a serial number
// is allocated atomically and never changes afterwards; re-approving an
// already approved submission is an idempotent success that re-mirrors and
// appends a fresh audit block. The document-store write is authoritative; a
// relational mirror failure is logged and the approval still succeeds.
func (s *SubmissionService) Approve(ctx context.Context, id, actor string) (*models.Submission, error) {
	sub, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, s.mapLoadError(err, "submission not found", "failed to load submission")
	}

	decision, err := workflow.ApproveSubmission(sub.Status, sub.SerialNumber != nil)
	if err != nil {
		return nil, err
	}

	if decision.AssignSerial {
		sln, err := s.counters.Next(ctx, serialSequence)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to allocate serial number")
		}
		sub.SerialNumber = &sln
	}

	hash, err := s.chain.Append(ctx, ledger.Entry{
		SubjectID: sub.USN,
		Action:    decision.AuditAction,
		Actor:     actor,
	})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to append audit block")
	}
	s.metrics.RecordAuditBlock()
	s.metrics.RecordDecision("submission", decision.AuditAction)

	now := time.Now().UTC()
	sub.Status = models.SubmissionApproved
	sub.RejectionReason = nil
	sub.AuditHash = &hash
	sub.ReviewedAt = &now
	sub.ReviewedBy = &actor

	if err := s.repo.Update(ctx, sub); err != nil {
		return nil, s.mapLoadError(err, "submission not found", "failed to persist approval")
	}

	if decision.MirrorStudent {
		if err := s.mirror.UpsertStudent(ctx, mirrorStudentFrom(sub)); err != nil {
			s.logger.Warn("relational mirror write failed",
				zap.String("usn", sub.USN),
				zap.Error(err))
		}
	}

	s.logger.Info("submission approved",
		zap.String("usn", sub.USN),
		zap.Intp("sln", sub.SerialNumber),
		zap.String("actor", actor))
	return sub, nil
}

// Reject moves a pending submission to rejected. A reason is mandatory and no
// serial number is ever assigned.
func (s *SubmissionService) Reject(ctx context.Context, id, actor string, req RejectSubmissionRequest) (*models.Submission, error) {
	sub, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, s.mapLoadError(err, "submission not found", "failed to load submission")
	}

	decision, err := workflow.RejectSubmission(sub.Status, req.Reason)
	if err != nil {
		return nil, err
	}

	hash, err := s.chain.Append(ctx, ledger.Entry{
		SubjectID: sub.USN,
		Action:    decision.AuditAction,
		Actor:     actor,
	})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to append audit block")
	}
	s.metrics.RecordAuditBlock()
	s.metrics.RecordDecision("submission", decision.AuditAction)

	now := time.Now().UTC()
	sub.Status = models.SubmissionRejected
	sub.RejectionReason = &req.Reason
	sub.AuditHash = &hash
	sub.ReviewedAt = &now
	sub.ReviewedBy = &actor

	if err := s.repo.Update(ctx, sub); err != nil {
		return nil, s.mapLoadError(err, "submission not found", "failed to persist rejection")
	}

	s.logger.Info("submission rejected",
		zap.String("usn", sub.USN),
		zap.String("reason", req.Reason),
		zap.String("actor", actor))
	return sub, nil
}

// Delete removes a submission document. Administrative deletes bypass the
// audit chain.
func (s *SubmissionService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return appErrors.Clone(appErrors.ErrNotFound, "submission not found")
		}
		if appErrors.Is(err, appErrors.ErrValidation) {
			return err
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete submission")
	}
	return nil
}

func (s *SubmissionService) mapLoadError(err error, notFoundMsg, internalMsg string) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return appErrors.Clone(appErrors.ErrNotFound, notFoundMsg)
	}
	if appErrors.Is(err, appErrors.ErrValidation) {
		return err
	}
	return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, internalMsg)
}

func mirrorStudentFrom(sub *models.Submission) *models.ApprovedStudent {
	student := &models.ApprovedStudent{
		USN:      sub.USN,
		Name:     sub.StudentName,
		Branch:   sub.Branch,
		Semester: sub.Semester,
	}
	if sub.Email != "" {
		student.Email = &sub.Email
	}
	if sub.Phone != "" {
		student.Phone = &sub.Phone
	}
	if sub.DateOfBirth != "" {
		student.DOB = &sub.DateOfBirth
	}
	if sub.BloodGroup != "" {
		student.BloodGroup = &sub.BloodGroup
	}
	if sub.ParentName != "" {
		student.ParentName = &sub.ParentName
	}
	if sub.MotherName != "" {
		student.MotherName = &sub.MotherName
	}
	if sub.ContactAddress != "" {
		student.Address = &sub.ContactAddress
	}
	return student
}
