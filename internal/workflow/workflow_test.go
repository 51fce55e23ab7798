package workflow

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeenat-khan28/sports-dbms/internal/models"
	appErrors "github.com/zeenat-khan28/sports-dbms/pkg/errors"
)

func TestNormalizeUSN(t *testing.T) {
	assert.Equal(t, "1RV23CS001", NormalizeUSN("  1rv23cs001 "))
}

func TestApproveSubmissionFromPending(t *testing.T) {
	decision, err := ApproveSubmission(models.SubmissionPending, false)
	require.NoError(t, err)
	assert.Equal(t, models.AuditActionApproved, decision.AuditAction)
	assert.True(t, decision.AssignSerial)
	assert.True(t, decision.MirrorStudent)
}

func TestApproveSubmissionIdempotent(t *testing.T) {
	decision, err := ApproveSubmission(models.SubmissionApproved, true)
	require.NoError(t, err)
	assert.False(t, decision.AssignSerial, "serial number must never be reassigned")
	assert.True(t, decision.MirrorStudent)
	assert.Equal(t, models.AuditActionApproved, decision.AuditAction)
}

func TestApproveSubmissionFromRejected(t *testing.T) {
	_, err := ApproveSubmission(models.SubmissionRejected, false)
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrInvalidTransition))
}

func TestRejectSubmissionRequiresReason(t *testing.T) {
	_, err := RejectSubmission(models.SubmissionPending, "  ")
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))

	decision, err := RejectSubmission(models.SubmissionPending, "incomplete documents")
	require.NoError(t, err)
	assert.Equal(t, models.AuditActionRejected, decision.AuditAction)
}

func TestRejectSubmissionFromApproved(t *testing.T) {
	_, err := RejectSubmission(models.SubmissionApproved, "reason")
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrInvalidTransition))
}

func TestDecideParticipationSelect(t *testing.T) {
	decision, err := DecideParticipation(models.ParticipationPending, models.ParticipationSelected, false)
	require.NoError(t, err)
	assert.Equal(t, models.AuditActionSelected, decision.AuditAction)
	assert.True(t, decision.MirrorParticipant)
	assert.True(t, decision.Notify)
}

func TestDecideParticipationSelectEndedEvent(t *testing.T) {
	_, err := DecideParticipation(models.ParticipationPending, models.ParticipationSelected, true)
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrInvalidTransition))
}

func TestDecideParticipationDrop(t *testing.T) {
	decision, err := DecideParticipation(models.ParticipationPending, models.ParticipationDropped, true)
	require.NoError(t, err)
	assert.Equal(t, models.AuditActionDropped, decision.AuditAction)
	assert.False(t, decision.MirrorParticipant)
	assert.False(t, decision.Notify)
}

func TestDecideParticipationFromDecidedState(t *testing.T) {
	for _, current := range []models.ParticipationStatus{models.ParticipationSelected, models.ParticipationDropped} {
		_, err := DecideParticipation(current, models.ParticipationDropped, false)
		require.Error(t, err)
		assert.True(t, appErrors.Is(err, appErrors.ErrInvalidTransition))
	}
}

func TestDecideParticipationInvalidTarget(t *testing.T) {
	_, err := DecideParticipation(models.ParticipationPending, models.ParticipationPending, false)
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))
}

func TestMarkAttendance(t *testing.T) {
	require.NoError(t, MarkAttendance(models.AttendancePresent))
	require.NoError(t, MarkAttendance(models.AttendanceAbsent))
	err := MarkAttendance(models.AttendanceStatus("late"))
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))
}
