package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/zeenat-khan28/sports-dbms/internal/models"
)

// EmailRepository persists the hash-linked bulk email send log.
type EmailRepository struct {
	db *sqlx.DB
}

// NewEmailRepository constructs an EmailRepository.
func NewEmailRepository(db *sqlx.DB) *EmailRepository {
	return &EmailRepository{db: db}
}

// Create inserts a log row before delivery starts and fills in the generated
// ID. Counts and the chain hash are finalized after the batch completes.
func (r *EmailRepository) Create(ctx context.Context, log *models.EmailLog) error {
	const query = `INSERT INTO email_logs (admin_id, subject, body_preview, filters_used, recipient_count, success_count, failure_count, sent_at, chain_hash)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9) RETURNING id`
	if err := r.db.GetContext(ctx, &log.ID, query,
		log.AdminID, log.Subject, log.BodyPreview, log.FiltersUsed,
		log.RecipientCount, log.SuccessCount, log.FailureCount, log.SentAt, log.ChainHash); err != nil {
		return fmt.Errorf("create email log: %w", err)
	}
	return nil
}

// Finalize records the delivery outcome and the computed chain hash.
func (r *EmailRepository) Finalize(ctx context.Context, id int64, success, failure int, chainHash string) error {
	const query = `UPDATE email_logs SET success_count = $2, failure_count = $3, chain_hash = $4 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, success, failure, chainHash); err != nil {
		return fmt.Errorf("finalize email log: %w", err)
	}
	return nil
}

// LastHash returns the chain hash of the most recent log row, or "" when no
// emails have been sent yet.
func (r *EmailRepository) LastHash(ctx context.Context) (string, error) {
	var hash string
	err := r.db.GetContext(ctx, &hash, `SELECT chain_hash FROM email_logs ORDER BY id DESC LIMIT 1`)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("last email log hash: %w", err)
	}
	return hash, nil
}

// List returns send logs newest first.
func (r *EmailRepository) List(ctx context.Context) ([]models.EmailLog, error) {
	const query = `SELECT id, admin_id, subject, body_preview, filters_used, recipient_count, success_count, failure_count, sent_at, chain_hash
        FROM email_logs ORDER BY sent_at DESC`
	var logs []models.EmailLog
	if err := r.db.SelectContext(ctx, &logs, query); err != nil {
		return nil, fmt.Errorf("list email logs: %w", err)
	}
	return logs, nil
}
