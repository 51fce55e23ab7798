package models

import "time"

// EmailLog records one bulk email dispatch to approved students. Rows are
// hash-linked (each chain_hash commits to the previous row's) so the send
// history can be checked for tampering like the workflow audit trail.
type EmailLog struct {
	ID             int64     `db:"id" json:"id"`
	AdminID        int64     `db:"admin_id" json:"admin_id"`
	Subject        string    `db:"subject" json:"subject"`
	BodyPreview    string    `db:"body_preview" json:"body_preview"`
	FiltersUsed    string    `db:"filters_used" json:"filters_used"`
	RecipientCount int       `db:"recipient_count" json:"recipient_count"`
	SuccessCount   int       `db:"success_count" json:"success_count"`
	FailureCount   int       `db:"failure_count" json:"failure_count"`
	SentAt         time.Time `db:"sent_at" json:"sent_at"`
	ChainHash      string    `db:"chain_hash" json:"chain_hash"`
}

// BulkRecipientFilter narrows which approved students receive a bulk email.
// Empty slices match everyone.
type BulkRecipientFilter struct {
	Branch   []string `json:"branch,omitempty"`
	Semester []int    `json:"semester,omitempty"`
	USN      []string `json:"usn,omitempty"`
}
