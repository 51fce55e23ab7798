package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/zeenat-khan28/sports-dbms/internal/models"
	appErrors "github.com/zeenat-khan28/sports-dbms/pkg/errors"
)

type mockAttendanceRepo struct {
	rows map[string]*models.Attendance
}

func newMockAttendanceRepo() *mockAttendanceRepo {
	return &mockAttendanceRepo{rows: make(map[string]*models.Attendance)}
}

func attendanceKey(eventID int64, usn string, date time.Time) string {
	return fmt.Sprintf("%d/%s/%s", eventID, usn, date.Format("2006-01-02"))
}

func (m *mockAttendanceRepo) ListByEventDate(ctx context.Context, eventID int64, date time.Time) ([]models.Attendance, error) {
	var records []models.Attendance
	for _, row := range m.rows {
		if row.EventID == eventID && row.Date.Equal(date) {
			records = append(records, *row)
		}
	}
	return records, nil
}

func (m *mockAttendanceRepo) ListByEvent(ctx context.Context, eventID int64) ([]models.Attendance, error) {
	var records []models.Attendance
	for _, row := range m.rows {
		if row.EventID == eventID {
			records = append(records, *row)
		}
	}
	return records, nil
}

func (m *mockAttendanceRepo) Upsert(ctx context.Context, record *models.Attendance) error {
	copied := *record
	m.rows[attendanceKey(record.EventID, record.USN, record.Date)] = &copied
	return nil
}

func newAttendanceFixture() (*AttendanceService, *mockAttendanceRepo, *mockEventRepo, *mockParticipationRepo) {
	repo := newMockAttendanceRepo()
	events := &mockEventRepo{events: make(map[int64]*models.EventDetail)}
	participation := newMockParticipationRepo()
	svc := NewAttendanceService(repo, events, participation, validator.New(), zap.NewNop())
	return svc, repo, events, participation
}

func TestAttendanceServiceRosterJoinsMarks(t *testing.T) {
	svc, repo, events, participation := newAttendanceFixture()
	events.events[5] = openEvent(5)
	participation.add(&models.Participation{USN: "1RV23CS001", StudentName: "Asha R", EventID: 5, Status: models.ParticipationSelected})
	participation.add(&models.Participation{USN: "1RV23CS002", StudentName: "Kiran M", EventID: 5, Status: models.ParticipationSelected})
	participation.add(&models.Participation{USN: "1RV23CS003", StudentName: "Devi S", EventID: 5, Status: models.ParticipationPending})

	date := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	present := models.AttendancePresent
	require.NoError(t, repo.Upsert(context.Background(), &models.Attendance{
		EventID: 5, USN: "1RV23CS001", Date: date, Status: &present,
	}))

	roster, err := svc.Roster(context.Background(), 5, date)
	require.NoError(t, err)
	require.Len(t, roster, 2)

	byUSN := make(map[string]models.AttendanceRosterRow)
	for _, row := range roster {
		byUSN[row.USN] = row
	}
	require.NotNil(t, byUSN["1RV23CS001"].Status)
	assert.Equal(t, models.AttendancePresent, *byUSN["1RV23CS001"].Status)
	// Unmarked participants are distinct from absent ones.
	assert.Nil(t, byUSN["1RV23CS002"].Status)
}

func TestAttendanceServiceRosterEventNotFound(t *testing.T) {
	svc, _, _, _ := newAttendanceFixture()

	_, err := svc.Roster(context.Background(), 99, time.Now())
	assert.True(t, appErrors.Is(err, appErrors.ErrNotFound))
}

func TestAttendanceServiceBulkSaveUpserts(t *testing.T) {
	svc, repo, events, _ := newAttendanceFixture()
	events.events[5] = openEvent(5)

	date := time.Date(2025, 3, 10, 14, 30, 0, 0, time.UTC)
	saved, err := svc.BulkSave(context.Background(), 5, 1, SaveAttendanceRequest{
		Date: date,
		Records: []AttendanceMark{
			{USN: "1rv23cs001", Status: models.AttendancePresent},
			{USN: "1RV23CS002", Status: models.AttendanceAbsent},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, saved)

	day := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	row := repo.rows[attendanceKey(5, "1RV23CS001", day)]
	require.NotNil(t, row)
	assert.Equal(t, models.AttendancePresent, *row.Status)

	// Re-marking the same (event, USN, date) overwrites, never duplicates.
	_, err = svc.BulkSave(context.Background(), 5, 1, SaveAttendanceRequest{
		Date:    date,
		Records: []AttendanceMark{{USN: "1RV23CS001", Status: models.AttendanceAbsent}},
	})
	require.NoError(t, err)
	assert.Len(t, repo.rows, 2)
	assert.Equal(t, models.AttendanceAbsent, *repo.rows[attendanceKey(5, "1RV23CS001", day)].Status)
}

func TestAttendanceServiceBulkSaveRejectsBadStatus(t *testing.T) {
	svc, _, events, _ := newAttendanceFixture()
	events.events[5] = openEvent(5)

	_, err := svc.BulkSave(context.Background(), 5, 1, SaveAttendanceRequest{
		Date:    time.Now(),
		Records: []AttendanceMark{{USN: "1RV23CS001", Status: "late"}},
	})
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))
}
