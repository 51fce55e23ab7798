package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// SubmissionStatus is the workflow status of a registration submission.
type SubmissionStatus string

const (
	SubmissionPending  SubmissionStatus = "pending"
	SubmissionApproved SubmissionStatus = "approved"
	SubmissionRejected SubmissionStatus = "rejected"
)

// Valid returns true when the status is a supported value.
func (s SubmissionStatus) Valid() bool {
	switch s {
	case SubmissionPending, SubmissionApproved, SubmissionRejected:
		return true
	default:
		return false
	}
}

// Submission is a student registration document held in the document store.
// SerialNumber is set if and only if the submission is approved, and once
// assigned it never changes.
type Submission struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	StudentName     string             `bson:"student_name" json:"student_name"`
	USN             string             `bson:"usn" json:"usn"`
	Email           string             `bson:"email" json:"email"`
	Branch          string             `bson:"branch" json:"branch"`
	Semester        int                `bson:"semester" json:"semester"`
	DateOfBirth     string             `bson:"date_of_birth" json:"date_of_birth"`
	ContactAddress  string             `bson:"contact_address" json:"contact_address"`
	BloodGroup      string             `bson:"blood_group" json:"blood_group"`
	Phone           string             `bson:"phone" json:"phone"`
	ParentName      string             `bson:"parent_name" json:"parent_name"`
	MotherName      string             `bson:"mother_name" json:"mother_name"`
	PhotoBase64     *string            `bson:"photo_base64,omitempty" json:"photo_base64,omitempty"`
	SignatureBase64 *string            `bson:"signature_base64,omitempty" json:"signature_base64,omitempty"`
	Status          SubmissionStatus   `bson:"status" json:"status"`
	RejectionReason *string            `bson:"rejection_reason" json:"rejection_reason,omitempty"`
	SerialNumber    *int               `bson:"sln" json:"sln,omitempty"`
	AuditHash       *string            `bson:"audit_hash" json:"audit_hash,omitempty"`
	SubmittedAt     time.Time          `bson:"submitted_at" json:"submitted_at"`
	ReviewedAt      *time.Time         `bson:"reviewed_at" json:"reviewed_at,omitempty"`
	ReviewedBy      *string            `bson:"reviewed_by" json:"reviewed_by,omitempty"`
}

// SubmissionFilter captures filtering criteria for listing submissions.
type SubmissionFilter struct {
	Status   *SubmissionStatus
	Branch   string
	Semester *int
	Search   string
	Page     int
	PageSize int
}
