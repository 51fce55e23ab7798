package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/zeenat-khan28/sports-dbms/internal/models"
)

// EventRepository manages persistence for sports events.
type EventRepository struct {
	db *sqlx.DB
}

// NewEventRepository constructs an EventRepository.
func NewEventRepository(db *sqlx.DB) *EventRepository {
	return &EventRepository{db: db}
}

// List returns events newest first, each with its selected-participant
// count. When upcomingOnly is set, events that already ended are skipped.
func (r *EventRepository) List(ctx context.Context, upcomingOnly bool) ([]models.EventDetail, error) {
	query := `SELECT e.id, e.name, e.location, e.start_date, e.end_date, e.description, e.created_by, e.created_at,
        COUNT(p.id) FILTER (WHERE p.status = 'selected') AS participant_count
        FROM events e
        LEFT JOIN approved_participants p ON p.event_id = e.id`
	args := []interface{}{}
	if upcomingOnly {
		query += " WHERE e.end_date >= $1"
		args = append(args, time.Now().UTC().Truncate(24*time.Hour))
	}
	query += " GROUP BY e.id ORDER BY e.start_date DESC"

	var events []models.EventDetail
	if err := r.db.SelectContext(ctx, &events, query, args...); err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	return events, nil
}

// FindByID fetches an event with its participant count.
func (r *EventRepository) FindByID(ctx context.Context, id int64) (*models.EventDetail, error) {
	const query = `SELECT e.id, e.name, e.location, e.start_date, e.end_date, e.description, e.created_by, e.created_at,
        COUNT(p.id) FILTER (WHERE p.status = 'selected') AS participant_count
        FROM events e
        LEFT JOIN approved_participants p ON p.event_id = e.id
        WHERE e.id = $1
        GROUP BY e.id`
	var detail models.EventDetail
	if err := r.db.GetContext(ctx, &detail, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find event: %w", err)
	}
	return &detail, nil
}

// Create inserts a new event and fills in the generated ID.
func (r *EventRepository) Create(ctx context.Context, event *models.Event) error {
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO events (name, location, start_date, end_date, description, created_by, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`
	if err := r.db.GetContext(ctx, &event.ID, query,
		event.Name, event.Location, event.StartDate, event.EndDate, event.Description, event.CreatedBy, event.CreatedAt); err != nil {
		return fmt.Errorf("create event: %w", err)
	}
	return nil
}

// Update modifies an existing event.
func (r *EventRepository) Update(ctx context.Context, event *models.Event) error {
	const query = `UPDATE events SET name = :name, location = :location, start_date = :start_date,
        end_date = :end_date, description = :description WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, event); err != nil {
		return fmt.Errorf("update event: %w", err)
	}
	return nil
}

// Delete removes an event together with its approved participants and
// attendance rows.
func (r *EventRepository) Delete(ctx context.Context, id int64) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin delete event: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx, `DELETE FROM approved_participants WHERE event_id = $1`, id); err != nil {
		return fmt.Errorf("delete event participants: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM event_attendance WHERE event_id = $1`, id); err != nil {
		return fmt.Errorf("delete event attendance: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM events WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete event: %w", err)
	}
	return tx.Commit()
}

// Count returns the total number of events.
func (r *EventRepository) Count(ctx context.Context) (int64, error) {
	var total int64
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM events`); err != nil {
		return 0, fmt.Errorf("count events: %w", err)
	}
	return total, nil
}
