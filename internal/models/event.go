package models

import "time"

// Event is a sports event stored in the relational store.
type Event struct {
	ID          int64     `db:"id" json:"id"`
	Name        string    `db:"name" json:"name"`
	Location    *string   `db:"location" json:"location,omitempty"`
	StartDate   time.Time `db:"start_date" json:"start_date"`
	EndDate     time.Time `db:"end_date" json:"end_date"`
	Description *string   `db:"description" json:"description,omitempty"`
	CreatedBy   *int64    `db:"created_by" json:"created_by,omitempty"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// Ended reports whether the event's end date is strictly before the given day.
func (e Event) Ended(now time.Time) bool {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	end := time.Date(e.EndDate.Year(), e.EndDate.Month(), e.EndDate.Day(), 0, 0, 0, 0, time.UTC)
	return end.Before(today)
}

// EventDetail augments an event with its selected participant count.
type EventDetail struct {
	Event
	ParticipantCount int `db:"participant_count" json:"participant_count"`
}
