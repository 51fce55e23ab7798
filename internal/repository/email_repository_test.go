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

func TestEmailRepositoryCreateReturnsID(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewEmailRepository(db)

	mock.ExpectQuery("INSERT INTO email_logs").
		WithArgs(int64(7), "Practice schedule", "Report at 6 AM", "{}", 2, 0, 0, sqlmock.AnyArg(), "pending").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(3)))

	log := &models.EmailLog{
		AdminID:        7,
		Subject:        "Practice schedule",
		BodyPreview:    "Report at 6 AM",
		FiltersUsed:    "{}",
		RecipientCount: 2,
		SentAt:         time.Now(),
		ChainHash:      "pending",
	}
	err := repo.Create(context.Background(), log)
	require.NoError(t, err)
	assert.Equal(t, int64(3), log.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEmailRepositoryFinalize(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewEmailRepository(db)

	mock.ExpectExec("UPDATE email_logs SET success_count").
		WithArgs(int64(3), 2, 0, "deadbeef").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Finalize(context.Background(), 3, 2, 0, "deadbeef")
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEmailRepositoryLastHash(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewEmailRepository(db)

	mock.ExpectQuery("SELECT chain_hash FROM email_logs ORDER BY id DESC").
		WillReturnRows(sqlmock.NewRows([]string{"chain_hash"}).AddRow("deadbeef"))

	hash, err := repo.LastHash(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "deadbeef", hash)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEmailRepositoryLastHashEmptyLog(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewEmailRepository(db)

	mock.ExpectQuery("SELECT chain_hash FROM email_logs ORDER BY id DESC").
		WillReturnError(sql.ErrNoRows)

	hash, err := repo.LastHash(context.Background())
	require.NoError(t, err)
	assert.Empty(t, hash)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEmailRepositoryList(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewEmailRepository(db)

	rows := sqlmock.NewRows([]string{"id", "admin_id", "subject", "body_preview", "filters_used", "recipient_count", "success_count", "failure_count", "sent_at", "chain_hash"}).
		AddRow(int64(2), int64(7), "Second", "", "{}", 3, 3, 0, time.Now(), "hash2").
		AddRow(int64(1), int64(7), "First", "", "{}", 2, 1, 1, time.Now().Add(-time.Hour), "hash1")
	mock.ExpectQuery("SELECT (.+) FROM email_logs ORDER BY sent_at DESC").
		WillReturnRows(rows)

	logs, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, logs, 2)
	assert.Equal(t, "Second", logs[0].Subject)
	assert.Equal(t, 1, logs[1].FailureCount)
	assert.NoError(t, mock.ExpectationsWereMet())
}
