package models

// Audit actions recorded on the hash chain.
const (
	AuditActionApproved = "approved"
	AuditActionRejected = "rejected"
	AuditActionSelected = "selected"
	AuditActionDropped  = "dropped"
)

// AuditBlock is one link of the append-only audit chain. Hash is the SHA-256
// digest of the canonical serialization of the remaining fields; PreviousHash
// is the Hash of the preceding block (or the genesis constant for the first
// block).
type AuditBlock struct {
	Timestamp    string `bson:"timestamp" json:"timestamp"`
	SubjectID    string `bson:"subject_id" json:"subject_id"`
	EventID      int64  `bson:"event_id" json:"event_id"`
	EventName    string `bson:"event_name,omitempty" json:"event_name,omitempty"`
	Action       string `bson:"action" json:"action"`
	Actor        string `bson:"actor" json:"actor"`
	PreviousHash string `bson:"previous_hash" json:"previous_hash"`
	Hash         string `bson:"hash" json:"hash"`
}
