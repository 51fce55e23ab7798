package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/zeenat-khan28/sports-dbms/internal/models"
)

// MirrorRepository writes the best-effort relational projections of
// document-store state: approved students keyed by USN and approved
// participants keyed by (USN, event). Failures here never abort the primary
// workflow; callers log and move on.
type MirrorRepository struct {
	db *sqlx.DB
}

// NewMirrorRepository constructs a MirrorRepository.
func NewMirrorRepository(db *sqlx.DB) *MirrorRepository {
	return &MirrorRepository{db: db}
}

// UpsertStudent inserts or refreshes the approved-student projection row.
func (r *MirrorRepository) UpsertStudent(ctx context.Context, student *models.ApprovedStudent) error {
	now := time.Now().UTC()
	if student.CreatedAt.IsZero() {
		student.CreatedAt = now
	}
	student.UpdatedAt = now
	const query = `INSERT INTO approved_students (usn, name, email, branch, semester, phone, dob, blood_group, parent_name, mother_name, address, created_at, updated_at)
        VALUES (:usn, :name, :email, :branch, :semester, :phone, :dob, :blood_group, :parent_name, :mother_name, :address, :created_at, :updated_at)
        ON CONFLICT (usn) DO UPDATE SET
            name = EXCLUDED.name, email = EXCLUDED.email, branch = EXCLUDED.branch,
            semester = EXCLUDED.semester, phone = EXCLUDED.phone, dob = EXCLUDED.dob,
            blood_group = EXCLUDED.blood_group, parent_name = EXCLUDED.parent_name,
            mother_name = EXCLUDED.mother_name, address = EXCLUDED.address,
            updated_at = EXCLUDED.updated_at`
	if _, err := r.db.NamedExecContext(ctx, query, student); err != nil {
		return fmt.Errorf("upsert approved student: %w", err)
	}
	return nil
}

// UpsertParticipant inserts or refreshes the approved-participant projection
// row for a selected participation request.
func (r *MirrorRepository) UpsertParticipant(ctx context.Context, participant *models.ApprovedParticipant) error {
	if participant.CreatedAt.IsZero() {
		participant.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO approved_participants (usn, event_id, approved_by, status, audit_hash, approved_at, created_at)
        VALUES (:usn, :event_id, :approved_by, :status, :audit_hash, :approved_at, :created_at)
        ON CONFLICT (usn, event_id) DO UPDATE SET
            approved_by = EXCLUDED.approved_by, status = EXCLUDED.status,
            audit_hash = EXCLUDED.audit_hash, approved_at = EXCLUDED.approved_at`
	if _, err := r.db.NamedExecContext(ctx, query, participant); err != nil {
		return fmt.Errorf("upsert approved participant: %w", err)
	}
	return nil
}

// CountSelected returns the number of selected participant rows.
func (r *MirrorRepository) CountSelected(ctx context.Context) (int64, error) {
	var total int64
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM approved_participants WHERE status = 'selected'`); err != nil {
		return 0, fmt.Errorf("count selected participants: %w", err)
	}
	return total, nil
}
