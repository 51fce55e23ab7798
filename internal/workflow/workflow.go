// Package workflow holds the pure state-transition rules for submissions,
// participation requests and attendance marks. Services consult it before
// touching either store so the legal-transition table lives in one place.
package workflow

import (
	"strings"

	"github.com/zeenat-khan28/sports-dbms/internal/models"
	appErrors "github.com/zeenat-khan28/sports-dbms/pkg/errors"
)

// Decision carries the side-effect instructions computed for a legal
// transition. The synchronizer executes them in order: serial allocation,
// audit append, document write, relational mirror, notification.
type Decision struct {
	AuditAction       string
	AssignSerial      bool
	MirrorStudent     bool
	MirrorParticipant bool
	Notify            bool
}

// NormalizeUSN canonicalises a university serial number for use as an
// identity key.
func NormalizeUSN(usn string) string {
	return strings.ToUpper(strings.TrimSpace(usn))
}

// ApproveSubmission validates the pending→approved transition. Re-approving
// an already approved submission is treated as a no-op success that still
// re-mirrors and re-appends an audit block, but never reassigns the serial
// number.
func ApproveSubmission(current models.SubmissionStatus, serialAssigned bool) (Decision, error) {
	switch current {
	case models.SubmissionPending:
		return Decision{
			AuditAction:   models.AuditActionApproved,
			AssignSerial:  !serialAssigned,
			MirrorStudent: true,
		}, nil
	case models.SubmissionApproved:
		return Decision{
			AuditAction:   models.AuditActionApproved,
			AssignSerial:  false,
			MirrorStudent: true,
		}, nil
	default:
		return Decision{}, appErrors.Clone(appErrors.ErrInvalidTransition,
			"submission with status "+string(current)+" cannot be approved")
	}
}

// RejectSubmission validates the pending→rejected transition. A rejection
// reason is mandatory.
func RejectSubmission(current models.SubmissionStatus, reason string) (Decision, error) {
	if strings.TrimSpace(reason) == "" {
		return Decision{}, appErrors.Clone(appErrors.ErrValidation, "rejection reason is required")
	}
	if current != models.SubmissionPending {
		return Decision{}, appErrors.Clone(appErrors.ErrInvalidTransition,
			"submission with status "+string(current)+" cannot be rejected")
	}
	return Decision{AuditAction: models.AuditActionRejected}, nil
}

// DecideParticipation validates the pending→selected / pending→dropped
// transitions. Selecting requires the event to still be open.
func DecideParticipation(current, target models.ParticipationStatus, eventEnded bool) (Decision, error) {
	if target != models.ParticipationSelected && target != models.ParticipationDropped {
		return Decision{}, appErrors.Clone(appErrors.ErrValidation, "status must be 'selected' or 'dropped'")
	}
	if current != models.ParticipationPending {
		return Decision{}, appErrors.Clone(appErrors.ErrInvalidTransition,
			"participation with status "+string(current)+" cannot be "+string(target))
	}
	if target == models.ParticipationSelected {
		if eventEnded {
			return Decision{}, appErrors.Clone(appErrors.ErrInvalidTransition, "event has already ended")
		}
		return Decision{
			AuditAction:       models.AuditActionSelected,
			MirrorParticipant: true,
			Notify:            true,
		}, nil
	}
	return Decision{AuditAction: models.AuditActionDropped}, nil
}

// MarkAttendance validates an attendance mark. Attendance is an upsert per
// (event, USN, date) and produces no audit chain entry.
func MarkAttendance(status models.AttendanceStatus) error {
	if !status.Valid() {
		return appErrors.Clone(appErrors.ErrValidation, "attendance status must be 'present' or 'absent'")
	}
	return nil
}
