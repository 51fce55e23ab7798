package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/zeenat-khan28/sports-dbms/internal/models"
)

// AttendanceRepository manages per-day attendance rows for event
// participants.
type AttendanceRepository struct {
	db *sqlx.DB
}

// NewAttendanceRepository constructs an AttendanceRepository.
func NewAttendanceRepository(db *sqlx.DB) *AttendanceRepository {
	return &AttendanceRepository{db: db}
}

// ListByEventDate returns the marked rows for an event on a given date.
func (r *AttendanceRepository) ListByEventDate(ctx context.Context, eventID int64, date time.Time) ([]models.Attendance, error) {
	const query = `SELECT id, event_id, usn, student_name, attendance_date, status, marked_by, marked_at
        FROM event_attendance WHERE event_id = $1 AND attendance_date = $2`
	var records []models.Attendance
	if err := r.db.SelectContext(ctx, &records, query, eventID, date); err != nil {
		return nil, fmt.Errorf("list attendance: %w", err)
	}
	return records, nil
}

// Upsert writes an attendance mark, keeping at most one row per
// (event, USN, date).
func (r *AttendanceRepository) Upsert(ctx context.Context, record *models.Attendance) error {
	const query = `INSERT INTO event_attendance (event_id, usn, student_name, attendance_date, status, marked_by, marked_at)
        VALUES (:event_id, :usn, :student_name, :attendance_date, :status, :marked_by, :marked_at)
        ON CONFLICT (event_id, usn, attendance_date) DO UPDATE SET
            status = EXCLUDED.status, marked_by = EXCLUDED.marked_by, marked_at = EXCLUDED.marked_at`
	if _, err := r.db.NamedExecContext(ctx, query, record); err != nil {
		return fmt.Errorf("upsert attendance: %w", err)
	}
	return nil
}

// ListByEvent returns every marked row for an event across all dates, used
// by the participants export grid.
func (r *AttendanceRepository) ListByEvent(ctx context.Context, eventID int64) ([]models.Attendance, error) {
	const query = `SELECT id, event_id, usn, student_name, attendance_date, status, marked_by, marked_at
        FROM event_attendance WHERE event_id = $1 ORDER BY attendance_date`
	var records []models.Attendance
	if err := r.db.SelectContext(ctx, &records, query, eventID); err != nil {
		return nil, fmt.Errorf("list event attendance: %w", err)
	}
	return records, nil
}

// Stats returns the total number of marked rows and how many are present,
// for the analytics overview.
func (r *AttendanceRepository) Stats(ctx context.Context) (total int64, present int64, err error) {
	const query = `SELECT COUNT(*) AS total, COUNT(*) FILTER (WHERE status = 'present') AS present FROM event_attendance WHERE status IS NOT NULL`
	var row struct {
		Total   int64 `db:"total"`
		Present int64 `db:"present"`
	}
	if err := r.db.GetContext(ctx, &row, query); err != nil {
		return 0, 0, fmt.Errorf("attendance stats: %w", err)
	}
	return row.Total, row.Present, nil
}

// StatsByEvent aggregates marked rows per event for the attendance analytics.
func (r *AttendanceRepository) StatsByEvent(ctx context.Context) ([]models.EventAttendanceStats, error) {
	const query = `SELECT event_id, COUNT(*) AS total, COUNT(*) FILTER (WHERE status = 'present') AS present
        FROM event_attendance WHERE status IS NOT NULL GROUP BY event_id`
	var stats []models.EventAttendanceStats
	if err := r.db.SelectContext(ctx, &stats, query); err != nil {
		return nil, fmt.Errorf("attendance stats by event: %w", err)
	}
	return stats, nil
}
