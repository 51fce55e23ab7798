package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ParticipationStatus is the workflow status of an event participation request.
type ParticipationStatus string

const (
	ParticipationPending  ParticipationStatus = "pending"
	ParticipationSelected ParticipationStatus = "selected"
	ParticipationDropped  ParticipationStatus = "dropped"
)

// Valid returns true when the status is a supported value.
func (s ParticipationStatus) Valid() bool {
	switch s {
	case ParticipationPending, ParticipationSelected, ParticipationDropped:
		return true
	default:
		return false
	}
}

// Participation is an event participation request held in the document store.
// At most one document exists per (USN, event) pair.
type Participation struct {
	ID          primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	USN         string              `bson:"usn" json:"usn"`
	StudentName string              `bson:"student_name" json:"student_name"`
	EventID     int64               `bson:"event_id" json:"event_id"`
	EventName   string              `bson:"event_name" json:"event_name"`
	Status      ParticipationStatus `bson:"status" json:"status"`
	SubmittedAt time.Time           `bson:"submitted_at" json:"submitted_at"`
	ProcessedAt *time.Time          `bson:"processed_at" json:"processed_at,omitempty"`
	ProcessedBy *string             `bson:"processed_by" json:"processed_by,omitempty"`
	AuditHash   *string             `bson:"audit_hash" json:"audit_hash,omitempty"`
}

// ParticipationFilter captures filtering criteria for participation listings.
type ParticipationFilter struct {
	EventID int64
	USN     string
	Status  *ParticipationStatus
}
