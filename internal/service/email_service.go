package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/zeenat-khan28/sports-dbms/internal/ledger"
	"github.com/zeenat-khan28/sports-dbms/internal/models"
	appErrors "github.com/zeenat-khan28/sports-dbms/pkg/errors"
	"github.com/zeenat-khan28/sports-dbms/pkg/mailer"
)

const bodyPreviewLength = 100

type bulkRecipientSource interface {
	ListApprovedMatching(ctx context.Context, filter models.BulkRecipientFilter) ([]models.Submission, error)
}

type emailLogStore interface {
	Create(ctx context.Context, log *models.EmailLog) error
	Finalize(ctx context.Context, id int64, success, failure int, chainHash string) error
	LastHash(ctx context.Context) (string, error)
	List(ctx context.Context) ([]models.EmailLog, error)
}

// SendEmailRequest describes a bulk email to approved students. Filters
// narrow the audience; DryRun resolves the recipient count without sending
// or logging anything.
type SendEmailRequest struct {
	Subject string                     `json:"subject" validate:"required"`
	Body    string                     `json:"body" validate:"required"`
	Filters models.BulkRecipientFilter `json:"filters"`
	DryRun  bool                       `json:"dry_run"`
}

// EmailService sends bulk email to filtered approved students and keeps a
// hash-linked log of every dispatch. Delivery runs synchronously so the log
// row carries real success and failure counts.
type EmailService struct {
	recipients bulkRecipientSource
	logs       emailLogStore
	sender     mailer.Sender
	validator  *validator.Validate
	logger     *zap.Logger
	now        func() time.Time
}

// NewEmailService constructs the email service.
func NewEmailService(recipients bulkRecipientSource, logs emailLogStore, sender mailer.Sender, validate *validator.Validate, logger *zap.Logger) *EmailService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EmailService{
		recipients: recipients,
		logs:       logs,
		sender:     sender,
		validator:  validate,
		logger:     logger,
		now:        time.Now,
	}
}

// Send resolves the filtered audience, delivers the message to every valid
// address and records a hash-linked log row. A dry run only reports how many
// approved students match.
func (s *EmailService) Send(ctx context.Context, adminID int64, req SendEmailRequest) (*models.EmailLog, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid email payload")
	}

	students, err := s.recipients.ListApprovedMatching(ctx, req.Filters)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve recipients")
	}

	filtersJSON, _ := json.Marshal(req.Filters)

	if req.DryRun {
		return &models.EmailLog{
			AdminID:        adminID,
			Subject:        req.Subject,
			RecipientCount: len(students),
			FiltersUsed:    string(filtersJSON),
			SentAt:         s.now().UTC(),
		}, nil
	}

	recipients := make([]models.Submission, 0, len(students))
	for _, student := range students {
		if strings.Contains(student.Email, "@") {
			recipients = append(recipients, student)
		}
	}
	if len(recipients) == 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "no approved students match the filters")
	}

	prevHash, err := s.logs.LastHash(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to read email log chain")
	}
	if prevHash == "" {
		prevHash = ledger.GenesisHash
	}

	log := &models.EmailLog{
		AdminID:        adminID,
		Subject:        req.Subject,
		BodyPreview:    preview(req.Body),
		FiltersUsed:    string(filtersJSON),
		RecipientCount: len(recipients),
		SentAt:         s.now().UTC(),
		ChainHash:      "pending",
	}
	if err := s.logs.Create(ctx, log); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create email log")
	}

	success, failure := 0, 0
	for _, student := range recipients {
		err := s.sender.Send(mailer.Message{
			To:       student.Email,
			Subject:  req.Subject,
			Body:     req.Body,
			Name:     student.StudentName,
			USN:      student.USN,
			Branch:   student.Branch,
			Semester: strconv.Itoa(student.Semester),
		})
		if err != nil {
			failure++
			s.logger.Warn("bulk email delivery failed",
				zap.String("to", student.Email), zap.Error(err))
			continue
		}
		success++
	}

	digest := sha256.Sum256([]byte(fmt.Sprintf("%s%d%s%s%d",
		prevHash, log.AdminID, log.SentAt.Format(time.RFC3339), log.Subject, success)))
	log.SuccessCount = success
	log.FailureCount = failure
	log.ChainHash = hex.EncodeToString(digest[:])

	if err := s.logs.Finalize(ctx, log.ID, success, failure, log.ChainHash); err != nil {
		s.logger.Warn("failed to finalize email log", zap.Int64("id", log.ID), zap.Error(err))
	}

	s.logger.Info("bulk email sent",
		zap.Int64("admin_id", adminID),
		zap.Int("recipients", log.RecipientCount),
		zap.Int("success", success),
		zap.Int("failure", failure))
	return log, nil
}

// Logs returns the send history, newest first.
func (s *EmailService) Logs(ctx context.Context) ([]models.EmailLog, error) {
	logs, err := s.logs.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list email logs")
	}
	return logs, nil
}

func preview(body string) string {
	if len(body) <= bodyPreviewLength {
		return body
	}
	return body[:bodyPreviewLength] + "..."
}
