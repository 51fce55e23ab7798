package models

import "time"

// ApprovedStudent is the relational projection of an approved submission,
// keyed by USN. It is a best-effort cache of the document store, not the
// source of truth.
type ApprovedStudent struct {
	USN        string    `db:"usn" json:"usn"`
	Name       string    `db:"name" json:"name"`
	Email      *string   `db:"email" json:"email,omitempty"`
	Branch     string    `db:"branch" json:"branch"`
	Semester   int       `db:"semester" json:"semester"`
	Phone      *string   `db:"phone" json:"phone,omitempty"`
	DOB        *string   `db:"dob" json:"dob,omitempty"`
	BloodGroup *string   `db:"blood_group" json:"blood_group,omitempty"`
	ParentName *string   `db:"parent_name" json:"parent_name,omitempty"`
	MotherName *string   `db:"mother_name" json:"mother_name,omitempty"`
	Address    *string   `db:"address" json:"address,omitempty"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time `db:"updated_at" json:"updated_at"`
}

// ApprovedParticipant is the relational projection of a selected
// participation request, keyed by (USN, event).
type ApprovedParticipant struct {
	ID         int64      `db:"id" json:"id"`
	USN        string     `db:"usn" json:"usn"`
	EventID    int64      `db:"event_id" json:"event_id"`
	ApprovedBy *int64     `db:"approved_by" json:"approved_by,omitempty"`
	Status     string     `db:"status" json:"status"`
	AuditHash  *string    `db:"audit_hash" json:"audit_hash,omitempty"`
	ApprovedAt *time.Time `db:"approved_at" json:"approved_at,omitempty"`
	CreatedAt  time.Time  `db:"created_at" json:"created_at"`
}
