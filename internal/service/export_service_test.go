package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/zeenat-khan28/sports-dbms/internal/models"
	appErrors "github.com/zeenat-khan28/sports-dbms/pkg/errors"
	"github.com/zeenat-khan28/sports-dbms/pkg/export"
)

func newExportFixture() (*ExportService, *mockSubmissionRepo, *mockEventRepo, *mockParticipationRepo, *mockAttendanceRepo) {
	submissions := newMockSubmissionRepo()
	events := &mockEventRepo{events: make(map[int64]*models.EventDetail)}
	participation := newMockParticipationRepo()
	attendance := newMockAttendanceRepo()
	svc := NewExportService(submissions, events, participation, attendance, export.NewCSVExporter(), export.NewPDFExporter(), zap.NewNop())
	return svc, submissions, events, participation, attendance
}

func TestExportServiceApprovedStudentsCSV(t *testing.T) {
	svc, submissions, _, _, _ := newExportFixture()
	submissions.add(approvedSubmission("1RV23CS001"))

	result, err := svc.ApprovedStudents(context.Background(), "csv", "")
	require.NoError(t, err)
	assert.Equal(t, "text/csv", result.ContentType)
	assert.True(t, strings.HasSuffix(result.Filename, ".csv"))

	content := string(result.Content)
	assert.Contains(t, content, "RV College of Engineering")
	assert.Contains(t, content, "1RV23CS001")
	assert.Contains(t, content, "Asha R")
}

func TestExportServiceApprovedStudentsPDF(t *testing.T) {
	svc, submissions, _, _, _ := newExportFixture()
	submissions.add(approvedSubmission("1RV23CS001"))

	result, err := svc.ApprovedStudents(context.Background(), "pdf", "CSE")
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", result.ContentType)
	assert.True(t, strings.HasPrefix(string(result.Content), "%PDF"))
}

func TestExportServiceRejectsUnknownFormat(t *testing.T) {
	svc, _, _, _, _ := newExportFixture()

	_, err := svc.ApprovedStudents(context.Background(), "xlsx", "")
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))
}

func TestExportServiceEventParticipantsGrid(t *testing.T) {
	svc, _, events, participation, attendance := newExportFixture()

	start := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	location := "Main Ground"
	events.events[5] = &models.EventDetail{Event: models.Event{
		ID:        5,
		Name:      "Inter-College Athletics",
		Location:  &location,
		StartDate: start,
		EndDate:   start.AddDate(0, 0, 2),
	}}

	selectedAt := time.Date(2026, 2, 20, 10, 0, 0, 0, time.UTC)
	participation.add(&models.Participation{
		USN:         "1RV23CS001",
		EventID:     5,
		StudentName: "Asha R",
		Status:      models.ParticipationSelected,
		ProcessedAt: &selectedAt,
	})
	participation.add(&models.Participation{
		USN:     "1RV23ME001",
		EventID: 5,
		Status:  models.ParticipationPending,
	})

	present := models.AttendancePresent
	absent := models.AttendanceAbsent
	require.NoError(t, attendance.Upsert(context.Background(), &models.Attendance{
		EventID: 5, USN: "1RV23CS001", Date: start, Status: &present,
	}))
	require.NoError(t, attendance.Upsert(context.Background(), &models.Attendance{
		EventID: 5, USN: "1RV23CS001", Date: start.AddDate(0, 0, 1), Status: &absent,
	}))

	result, err := svc.EventParticipants(context.Background(), 5, "csv")
	require.NoError(t, err)
	assert.Equal(t, "text/csv", result.ContentType)
	assert.Contains(t, result.Filename, "event_5_participants_")

	content := string(result.Content)
	assert.Contains(t, content, "Event: Inter-College Athletics")
	assert.Contains(t, content, "Location: Main Ground")
	assert.Contains(t, content, "02/03")
	assert.Contains(t, content, "03/03")
	assert.Contains(t, content, "04/03")

	lines := strings.Split(strings.TrimSpace(content), "\n")
	row := lines[len(lines)-1]
	assert.Contains(t, row, "1RV23CS001")
	assert.Contains(t, row, "20/02/2026")
	assert.Contains(t, row, "P")
	assert.Contains(t, row, "Absent")
	assert.Contains(t, row, "-")
	assert.NotContains(t, content, "1RV23ME001")
}

func TestExportServiceEventParticipantsUnknownEvent(t *testing.T) {
	svc, _, _, _, _ := newExportFixture()

	_, err := svc.EventParticipants(context.Background(), 99, "csv")
	assert.True(t, appErrors.Is(err, appErrors.ErrNotFound))
}
