package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeenat-khan28/sports-dbms/internal/models"
)

func TestEventRepositoryList(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewEventRepository(db)

	rows := sqlmock.NewRows([]string{"id", "name", "location", "start_date", "end_date", "description", "created_by", "created_at", "participant_count"}).
		AddRow(int64(1), "Inter-College Athletics", "Main Ground", time.Now(), time.Now().AddDate(0, 0, 2), "Annual meet", int64(1), time.Now(), int64(12))
	mock.ExpectQuery("SELECT e.id, e.name, e.location, e.start_date, e.end_date").
		WillReturnRows(rows)

	events, err := repo.List(context.Background(), false)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, 12, events[0].ParticipantCount)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEventRepositoryFindByIDNotFound(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewEventRepository(db)

	mock.ExpectQuery("SELECT e.id, e.name, e.location, e.start_date, e.end_date").
		WithArgs(int64(99)).
		WillReturnError(sql.ErrNoRows)

	_, err := repo.FindByID(context.Background(), 99)
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEventRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewEventRepository(db)

	mock.ExpectQuery("INSERT INTO events").
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(7)))

	location := "Court 2"
	createdBy := int64(1)
	event := &models.Event{Name: "Kho-Kho Trials", Location: &location, StartDate: time.Now(), EndDate: time.Now().AddDate(0, 0, 1), CreatedBy: &createdBy}
	err := repo.Create(context.Background(), event)
	require.NoError(t, err)
	assert.Equal(t, int64(7), event.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEventRepositoryDelete(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewEventRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM approved_participants WHERE event_id").
		WithArgs(int64(3)).WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec("DELETE FROM event_attendance WHERE event_id").
		WithArgs(int64(3)).WillReturnResult(sqlmock.NewResult(0, 4))
	mock.ExpectExec("DELETE FROM events WHERE id").
		WithArgs(int64(3)).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repo.Delete(context.Background(), 3)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
